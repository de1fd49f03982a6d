package service

import (
	"context"
	"errors"
	"time"

	"turva/internal/entity"
	"turva/internal/repository"
	"turva/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

const (
	// sessionTokenBytes is 256 bits of entropy, hex encoded to 64 characters.
	sessionTokenBytes = 32
	// sessionTokenAttempts bounds retries when the unique index on the token
	// column rejects a freshly generated token.
	sessionTokenAttempts = 3
)

// SessionManager issues, validates, extends and revokes opaque server-side
// sessions. The raw token is the only credential handed to the client and is
// stored as-is, so access to the session store is itself privileged.
type SessionManager struct {
	sessions repository.SessionRepository
	clock    Clock
	lifetime time.Duration
}

func NewSessionManager(sessions repository.SessionRepository, clock Clock, config AuthConfig) *SessionManager {
	if clock == nil {
		clock = RealClock{}
	}
	return &SessionManager{
		sessions: sessions,
		clock:    clock,
		lifetime: config.SessionLifetime,
	}
}

func (m *SessionManager) Lifetime() time.Duration {
	return m.lifetime
}

// CreateSession persists a new session for user and returns it with its raw token.
func (m *SessionManager) CreateSession(ctx context.Context, user *entity.User) (*entity.Session, string, error) {
	for attempt := 1; ; attempt++ {
		token, err := utils.GenerateHexToken(sessionTokenBytes)
		if err != nil {
			return nil, "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").Wrap(err)
		}

		session := &entity.Session{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: m.clock.Now().Add(m.lifetime),
			IsActive:  true,
		}
		err = m.sessions.Create(ctx, session)
		if err == nil {
			session.User = *user
			return session, token, nil
		}
		if !errors.Is(err, repository.ErrDuplicateToken) || attempt >= sessionTokenAttempts {
			return nil, "", oops.Code("SESSION_CREATE_FAILED").With("user_id", user.ID).Wrap(err)
		}
	}
}

// FindByToken returns the session with its owning user, or nil when no session matches.
func (m *SessionManager) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	session, err := m.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, oops.Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}
	return session, nil
}

func (m *SessionManager) IsExpired(session *entity.Session) bool {
	return !m.clock.Now().Before(session.ExpiresAt)
}

// Extend slides the session's expiry to now + lifetime.
func (m *SessionManager) Extend(ctx context.Context, session *entity.Session) error {
	expiresAt := m.clock.Now().Add(m.lifetime)
	if err := m.sessions.UpdateExpiry(ctx, session.ID, expiresAt); err != nil {
		return oops.Code("SESSION_EXTEND_FAILED").With("session_id", session.ID).Wrap(err)
	}
	session.ExpiresAt = expiresAt
	return nil
}

// Revoke hard-deletes the session. Revoking an already deleted session is a no-op.
func (m *SessionManager) Revoke(ctx context.Context, session *entity.Session) error {
	if err := m.sessions.Delete(ctx, session.ID); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").With("session_id", session.ID).Wrap(err)
	}
	return nil
}

func (m *SessionManager) ListForUser(ctx context.Context, userID uuid.UUID) ([]entity.Session, error) {
	sessions, err := m.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return sessions, nil
}

// PruneExpired deletes every session whose expiry has passed. It is only run
// on operator request; request handling evicts lazily.
func (m *SessionManager) PruneExpired(ctx context.Context) (int64, error) {
	deleted, err := m.sessions.DeleteExpired(ctx, m.clock.Now())
	if err != nil {
		return 0, oops.Code("SESSION_PRUNE_FAILED").Wrap(err)
	}
	return deleted, nil
}
