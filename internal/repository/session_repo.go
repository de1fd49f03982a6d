package repository

import (
	"context"
	"errors"
	"time"

	"turva/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository is the session store. Deletes are hard deletes and are
// idempotent: removing a row that is already gone is not an error.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindByToken(ctx context.Context, token string) (*entity.Session, error)
	UpdateExpiry(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Session, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
	if isUniqueViolation(err) {
		return ErrDuplicateToken
	}
	return err
}

// FindByToken loads the session and its owning user in one query.
func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("sessions.token = ?", token).
		First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) UpdateExpiry(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.Session{}).
		Where("id = ?", sessionID).
		Update("expires_at", expiresAt).
		Error
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		Delete(&entity.Session{}).
		Error
}

func (r *sessionRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entity.Session{}).
		Error
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&entity.Session{})
	return result.RowsAffected, result.Error
}
