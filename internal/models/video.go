package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video represents an uploaded workspace video stored in MongoDB
type Video struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	WorkspaceID  string             `json:"workspace_id" bson:"workspace_id"`
	UploaderID   string             `json:"uploader_id" bson:"uploader_id"`
	Title        string             `json:"title" bson:"title"`
	URL          string             `json:"url" bson:"url"`
	ThumbnailURL string             `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// VideoMeta is the subset of a video needed to render a notification
type VideoMeta struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Meta returns the display metadata of the video
func (v *Video) Meta() VideoMeta {
	return VideoMeta{ID: v.ID.Hex(), Title: v.Title, URL: v.URL}
}
