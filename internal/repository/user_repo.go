package repository

import (
	"context"
	"errors"
	"time"

	"turva/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	SetVerificationToken(ctx context.Context, userID uuid.UUID, token string, createdAt time.Time) error
	ClearVerificationToken(ctx context.Context, userID uuid.UUID) error
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create relies on the unique index on email_address rather than a prior read.
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit("Sessions").Create(user).Error
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email_address = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) MarkVerified(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("is_verified", true).
		Error
}

func (r *userRepository) SetVerificationToken(ctx context.Context, userID uuid.UUID, token string, createdAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"verification_token":            token,
			"verification_token_created_at": createdAt,
		}).
		Error
}

func (r *userRepository) ClearVerificationToken(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"verification_token":            nil,
			"verification_token_created_at": nil,
		}).
		Error
}

func (r *userRepository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("is_active", active).
		Error
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).
		Error
}
