package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoRepository defines the read operations the notification engine needs on videos
type VideoRepository interface {
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
}

// MongoVideoRepository implements VideoRepository for MongoDB
type MongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new MongoVideoRepository
func NewMongoVideoRepository(db *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{collection: db.Collection("videos")}
}

// GetVideoByID retrieves title and playable URL of a video
func (r *MongoVideoRepository) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var video models.Video
	opts := options.FindOne().SetProjection(bson.M{"title": 1, "url": 1, "workspace_id": 1, "uploader_id": 1, "thumbnail_url": 1, "created_at": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}, opts).Decode(&video); err != nil {
		return nil, notFound(err, "video %s", id)
	}
	return &video, nil
}

// objectID parses a hex id; a malformed id can never match a document
func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, notify.ErrNotFound)
	}
	return objID, nil
}
