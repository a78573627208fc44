package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a workspace member, keyed by Firebase UID
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;size:128"`
	DisplayName string    `json:"display_name" gorm:"size:100"`
	Email       string    `json:"email" gorm:"uniqueIndex"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the public shape returned to other members
type UserCompact struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// ToCompact strips private fields
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, DisplayName: u.DisplayName}
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

// ServiceClaims are carried by tokens presented to the internal trigger endpoints
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}
