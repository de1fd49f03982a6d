package repository

import (
	"context"

	"turva/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SecurityLogRepository is an append-only audit trail of authentication events.
type SecurityLogRepository interface {
	Log(ctx context.Context, log *entity.SecurityLog) error
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("User").Create(log).Error
}
