package service

import (
	"context"
	"time"

	"turva/internal/entity"
)

type AuthConfig struct {
	// SessionLifetime is the sliding window added to a session on creation
	// and on every authenticated request.
	SessionLifetime time.Duration
}

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to string, subject string, html string) error
}

// VerificationDispatcher hands a verification email off for delivery. It must
// not block on the mail transport; delivery failures are the dispatcher's to log.
type VerificationDispatcher interface {
	DispatchVerification(ctx context.Context, user *entity.User, token string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. Malformed hashes verify as false.
	Verify(hash string, password string) bool
	NeedsRehash(hash string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
