package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a timestamped comment left on a video (MongoDB)
type Feedback struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	WorkspaceID   string             `json:"workspace_id" bson:"workspace_id"`
	VideoID       string             `json:"video_id" bson:"video_id"`
	AuthorID      string             `json:"author_id" bson:"author_id"`
	Content       string             `json:"content" bson:"content"`
	TaggedUserIDs []string           `json:"tagged_user_ids,omitempty" bson:"tagged_user_ids,omitempty"`
	TimestampSec  float64            `json:"timestamp_sec" bson:"timestamp_sec"` // position in the video
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// Reply is a threaded answer to a Feedback (MongoDB)
type Reply struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FeedbackID    string             `json:"feedback_id" bson:"feedback_id"`
	AuthorID      string             `json:"author_id" bson:"author_id"`
	Content       string             `json:"content" bson:"content"`
	TaggedUserIDs []string           `json:"tagged_user_ids,omitempty" bson:"tagged_user_ids,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// FeedbackCreatedRequest is the body of the feedback trigger webhook
type FeedbackCreatedRequest struct {
	FeedbackID string `json:"feedback_id" validate:"required,len=24,hexadecimal"`
}

// ReplyCreatedRequest is the body of the reply trigger webhook
type ReplyCreatedRequest struct {
	ReplyID string `json:"reply_id" validate:"required,len=24,hexadecimal"`
}
