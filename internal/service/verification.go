package service

import (
	"context"
	"crypto/subtle"
	"time"

	"turva/internal/entity"
	"turva/internal/repository"
	"turva/internal/utils"

	"github.com/samber/oops"
)

const (
	// VerificationTokenLifetime is how long an emailed verification link stays valid.
	VerificationTokenLifetime = 8 * time.Hour
	// VerificationRecycleCooldown is the minimum age of the current token
	// before another resend is accepted.
	VerificationRecycleCooldown = 10 * time.Minute

	verificationTokenBytes = 48
)

// VerificationTokenManager drives the per-user email verification state:
// no token, active token, expired token, verified.
type VerificationTokenManager struct {
	users repository.UserRepository
	clock Clock
}

func NewVerificationTokenManager(users repository.UserRepository, clock Clock) *VerificationTokenManager {
	if clock == nil {
		clock = RealClock{}
	}
	return &VerificationTokenManager{users: users, clock: clock}
}

// IssueOrReuse returns the token to email to user. A token younger than the
// lifetime is re-sent unchanged; a missing or expired one is replaced. Within
// the cooldown it fails with ErrTooSoon. The cooldown check is read-then-write,
// so two concurrent resends can both pass it.
func (m *VerificationTokenManager) IssueOrReuse(ctx context.Context, user *entity.User) (string, error) {
	if user.IsVerified {
		return "", ErrAlreadyVerified
	}

	now := m.clock.Now()
	if user.HasVerificationToken() {
		if now.Sub(*user.VerificationTokenCreatedAt) < VerificationRecycleCooldown {
			return "", ErrTooSoon
		}
		if !m.HasExpired(user) {
			return *user.VerificationToken, nil
		}
	}

	token, err := utils.GenerateRandomToken(verificationTokenBytes)
	if err != nil {
		return "", oops.Code("VERIFICATION_TOKEN_GENERATE_FAILED").Wrap(err)
	}
	if err := m.users.SetVerificationToken(ctx, user.ID, token, now); err != nil {
		return "", oops.Code("VERIFICATION_TOKEN_STORE_FAILED").With("user_id", user.ID).Wrap(err)
	}
	user.VerificationToken = &token
	user.VerificationTokenCreatedAt = &now
	return token, nil
}

// Validate checks presented against the stored token. Missing, mismatched and
// expired tokens all yield ErrInvalidToken. The token is not cleared here;
// marking the user verified supersedes it.
func (m *VerificationTokenManager) Validate(user *entity.User, presented string) error {
	if !user.HasVerificationToken() || presented == "" {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(*user.VerificationToken), []byte(presented)) != 1 {
		return ErrInvalidToken
	}
	if m.HasExpired(user) {
		return ErrInvalidToken
	}
	return nil
}

// HasExpired is true when no issue time is stored or the token is older than
// VerificationTokenLifetime.
func (m *VerificationTokenManager) HasExpired(user *entity.User) bool {
	if user.VerificationTokenCreatedAt == nil {
		return true
	}
	return m.clock.Now().Sub(*user.VerificationTokenCreatedAt) > VerificationTokenLifetime
}
