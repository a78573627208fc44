package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/reelnote/backend/internal/inbox"
	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	CreateRecipientNotification(ctx context.Context, rn *models.RecipientNotification) error
	CountUnreadSince(ctx context.Context, userID string, since time.Time) (int64, error)
	PageNotifications(ctx context.Context, userID, workspaceID string, after *inbox.Cursor, limit int) ([]models.Notification, error)
	GetRecipientNotification(ctx context.Context, userID, notificationID string) (*models.RecipientNotification, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID, workspaceID string) (int64, error)
	ListMissingRecipientNotifications(ctx context.Context, userID string) ([]models.Notification, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

// CreateNotification inserts the canonical record; created_at is assigned here
func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// CreateRecipientNotification inserts a fan-out row, ignoring an existing one
func (r *postgresNotificationRepository) CreateRecipientNotification(ctx context.Context, rn *models.RecipientNotification) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rn).Error
}

func (r *postgresNotificationRepository) CountUnreadSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RecipientNotification{}).
		Where("user_id = ? AND is_read = false AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// PageNotifications returns canonical notifications addressed to userID, newest first,
// continuing strictly after the given cursor document
func (r *postgresNotificationRepository) PageNotifications(ctx context.Context, userID, workspaceID string, after *inbox.Cursor, limit int) ([]models.Notification, error) {
	var notifications []models.Notification

	q := r.db.WithContext(ctx).
		Where("workspace_id = ? AND ? = ANY(receiver_ids)", workspaceID, userID)
	if after != nil {
		q = q.Where("(created_at, id) < (?, ?)", after.CreatedAt, after.ID)
	}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&notifications).Error

	return notifications, err
}

func (r *postgresNotificationRepository) GetRecipientNotification(ctx context.Context, userID, notificationID string) (*models.RecipientNotification, error) {
	var rn models.RecipientNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		First(&rn).Error
	if err != nil {
		return nil, notFound(err, "notification %s for user %s", notificationID, userID)
	}
	return &rn, nil
}

// MarkAsRead sets is_read on the caller's own row. Repeating it is not an error.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	res := r.db.WithContext(ctx).Model(&models.RecipientNotification{}).
		Where("user_id = ? AND notification_id = ?", userID, notificationID).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %s for user %s: %w", notificationID, userID, notify.ErrNotFound)
	}
	return nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, userID, workspaceID string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.RecipientNotification{}).
		Where("user_id = ? AND is_read = false", userID)
	if workspaceID != "" {
		q = q.Where("workspace_id = ?", workspaceID)
	}
	res := q.Updates(map[string]any{"is_read": true, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) ListMissingRecipientNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("? = ANY(receiver_ids)", userID).
		Where("NOT EXISTS (?)",
			r.db.Table("recipient_notifications AS rn").
				Select("1").
				Where("rn.notification_id = notifications.id AND rn.user_id = ?", userID),
		).
		Order("created_at ASC").
		Find(&notifications).Error
	return notifications, err
}
