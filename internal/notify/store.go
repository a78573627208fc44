package notify

import (
	"context"
	"errors"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/reelnote/backend/internal/models"
)

var (
	// ErrNotFound is returned by lookups when the referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoToken is returned by a TokenStore when the user has no registered device.
	ErrNoToken = errors.New("no device token")
)

// BlockRegistry answers whether recipientID has blocked senderID.
// Implementations must be safe for concurrent use.
type BlockRegistry interface {
	IsBlocked(ctx context.Context, recipientID, senderID string) (bool, error)
}

// NotificationStore persists canonical and per-recipient records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	CreateRecipientNotification(ctx context.Context, rn *models.RecipientNotification) error
}

// UnreadCounter counts a user's unread recipient rows created at or after since.
type UnreadCounter interface {
	CountUnreadSince(ctx context.Context, userID string, since time.Time) (int64, error)
}

// ReconcileStore finds canonical notifications that list userID as receiver
// but have no recipient row for that user.
type ReconcileStore interface {
	ListMissingRecipientNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	CreateRecipientNotification(ctx context.Context, rn *models.RecipientNotification) error
}

type FeedbackSource interface {
	GetFeedbackByID(ctx context.Context, id string) (*models.Feedback, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type VideoCatalog interface {
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
}

// TokenStore resolves the single device token of a user.
type TokenStore interface {
	DeviceToken(ctx context.Context, userID string) (string, error)
}

// Messenger sends one push message. *messaging.Client satisfies it.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}
