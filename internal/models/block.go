package models

import "time"

// BlockEdge is a directed block: BlockerID is never notified about actions by BlockedID.
type BlockEdge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID string    `json:"blocker_id" gorm:"size:128;index;uniqueIndex:idx_blocker_blocked"`
	BlockedID string    `json:"blocked_id" gorm:"size:128;index;uniqueIndex:idx_blocker_blocked"`
	CreatedAt time.Time `json:"created_at"`
}
