package entity

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Token string `gorm:"type:varchar(255);uniqueIndex;not null"`

	ExpiresAt time.Time `gorm:"not null"`
	// IsActive is reserved for explicit revocation; expiry does not touch it.
	IsActive bool `gorm:"default:true;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
