package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/reelnote/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository defines the interface for block-list operations
type BlockRepository interface {
	CreateBlock(ctx context.Context, blockerID, blockedID string) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	IsBlocked(ctx context.Context, recipientID, senderID string) (bool, error)
	GetBlockedIDs(ctx context.Context, blockerID string) ([]string, error)
}

// PostgresBlockRepository implements BlockRepository for PostgreSQL
type PostgresBlockRepository struct {
	db *gorm.DB
}

// NewPostgresBlockRepository creates a new PostgresBlockRepository
func NewPostgresBlockRepository(db *gorm.DB) *PostgresBlockRepository {
	return &PostgresBlockRepository{db: db}
}

// CreateBlock records that blockerID blocks blockedID; blocking twice is a no-op
func (r *PostgresBlockRepository) CreateBlock(ctx context.Context, blockerID, blockedID string) error {
	edge := &models.BlockEdge{BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(edge).Error
}

func (r *PostgresBlockRepository) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.BlockEdge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "block %s -> %s", blockerID, blockedID)
	}
	return nil
}

// IsBlocked reports whether recipientID has blocked senderID. It only reads,
// so it can be called concurrently for many pairs.
func (r *PostgresBlockRepository) IsBlocked(ctx context.Context, recipientID, senderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlockEdge{}).
		Where("blocker_id = ? AND blocked_id = ?", recipientID, senderID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check block %s -> %s: %w", recipientID, senderID, err)
	}
	return count > 0, nil
}

func (r *PostgresBlockRepository) GetBlockedIDs(ctx context.Context, blockerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.BlockEdge{}).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Pluck("blocked_id", &ids).Error
	return ids, err
}
