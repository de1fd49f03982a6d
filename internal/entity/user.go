package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName    string    `gorm:"type:varchar(50);not null"`
	LastName     string    `gorm:"type:varchar(50);not null"`
	Email        string    `gorm:"column:email_address;type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Organisation string    `gorm:"type:varchar(100)"`
	JobRole      string    `gorm:"type:varchar(100)"`

	IsVerified bool `gorm:"default:false;not null"`
	IsActive   bool `gorm:"default:true;not null"`
	IsCSO      bool `gorm:"column:is_cso;default:false;not null"`

	// VerificationToken and VerificationTokenCreatedAt are written together.
	VerificationToken          *string `gorm:"type:varchar(128)"`
	VerificationTokenCreatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []Session
}

// HasVerificationToken reports whether a token and its issue time are stored.
func (u *User) HasVerificationToken() bool {
	return u.VerificationToken != nil && *u.VerificationToken != "" && u.VerificationTokenCreatedAt != nil
}
