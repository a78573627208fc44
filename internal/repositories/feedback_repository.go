package repositories

import (
	"context"

	"github.com/anonto42/reelnote/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	FeedbackCollection = "feedbacks"
	ReplyCollection    = "replies"
)

// FeedbackRepository defines read access to feedback threads
type FeedbackRepository interface {
	GetFeedbackByID(ctx context.Context, id string) (*models.Feedback, error)
	GetReplyByID(ctx context.Context, id string) (*models.Reply, error)
}

// MongoFeedbackRepository implements FeedbackRepository for MongoDB
type MongoFeedbackRepository struct {
	feedbacks *mongo.Collection
	replies   *mongo.Collection
}

// NewMongoFeedbackRepository creates a new MongoFeedbackRepository
func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{
		feedbacks: db.Collection(FeedbackCollection),
		replies:   db.Collection(ReplyCollection),
	}
}

func (r *MongoFeedbackRepository) GetFeedbackByID(ctx context.Context, id string) (*models.Feedback, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var fb models.Feedback
	if err := r.feedbacks.FindOne(ctx, bson.M{"_id": objID}).Decode(&fb); err != nil {
		return nil, notFound(err, "feedback %s", id)
	}
	return &fb, nil
}

func (r *MongoFeedbackRepository) GetReplyByID(ctx context.Context, id string) (*models.Reply, error) {
	objID, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var reply models.Reply
	if err := r.replies.FindOne(ctx, bson.M{"_id": objID}).Decode(&reply); err != nil {
		return nil, notFound(err, "reply %s", id)
	}
	return &reply, nil
}
