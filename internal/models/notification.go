package models

import (
	"time"

	"github.com/lib/pq"
)

// Notification is the canonical record written once per feedback or reply event.
// It is never updated after creation; read state lives in RecipientNotification.
type Notification struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	SenderID    string         `json:"sender_id" gorm:"size:128;index"`
	ReceiverIDs pq.StringArray `json:"receiver_ids" gorm:"type:text[]"`
	FeedbackID  string         `json:"feedback_id" gorm:"size:64;index"`
	ReplyID     *string        `json:"reply_id,omitempty" gorm:"size:64"`
	VideoID     string         `json:"video_id" gorm:"size:64"`
	WorkspaceID string         `json:"workspace_id" gorm:"size:64;index:idx_notifications_workspace_created,priority:1"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index:idx_notifications_workspace_created,priority:2"`
}

// IsReply reports whether the notification was produced by a reply rather than a feedback.
func (n *Notification) IsReply() bool {
	return n.ReplyID != nil && *n.ReplyID != ""
}

// HasReceiver reports whether userID is part of the audience resolved at creation time.
func (n *Notification) HasReceiver(userID string) bool {
	for _, id := range n.ReceiverIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RecipientNotification is the per-recipient fan-out row, keyed by the canonical id.
// It is the only place a recipient's read state is stored.
type RecipientNotification struct {
	NotificationID string    `json:"notification_id" gorm:"primaryKey;size:36"`
	UserID         string    `json:"user_id" gorm:"primaryKey;size:128;index:idx_recipient_unread,priority:1"`
	WorkspaceID    string    `json:"workspace_id" gorm:"size:64"`
	IsRead         bool      `json:"is_read" gorm:"default:false;index:idx_recipient_unread,priority:2"`
	CreatedAt      time.Time `json:"created_at" gorm:"index:idx_recipient_unread,priority:3"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NotificationPage is one page of canonical notifications returned by the inbox API.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	NextCursor    string         `json:"next_cursor,omitempty"`
}

// ReadState is the caller's read flag for a single notification.
type ReadState struct {
	NotificationID string `json:"notification_id"`
	IsRead         bool   `json:"is_read"`
}

// UnreadCount is the badge value as computed by the server.
type UnreadCount struct {
	Count       int       `json:"count"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
