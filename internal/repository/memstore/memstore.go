// Package memstore keeps users, sessions and audit entries in process memory.
// It enforces the same uniqueness rules as the relational schema (email and
// session token) and is used for local development and tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"turva/internal/entity"
	"turva/internal/repository"

	"github.com/google/uuid"
)

// Store backs all three repositories with a single lock so that session
// lookups can resolve their owning user consistently.
type Store struct {
	mu sync.RWMutex

	users       map[uuid.UUID]entity.User
	usersByMail map[string]uuid.UUID

	sessions        map[uuid.UUID]entity.Session
	sessionsByToken map[string]uuid.UUID

	logs []entity.SecurityLog
}

func New() *Store {
	return &Store{
		users:           make(map[uuid.UUID]entity.User),
		usersByMail:     make(map[string]uuid.UUID),
		sessions:        make(map[uuid.UUID]entity.Session),
		sessionsByToken: make(map[string]uuid.UUID),
	}
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }

func (s *Store) Sessions() repository.SessionRepository { return sessionRepo{s} }

func (s *Store) SecurityLogs() repository.SecurityLogRepository { return securityLogRepo{s} }

// SecurityLogEntries returns a copy of the recorded audit entries in insertion order.
func (s *Store) SecurityLogEntries() []entity.SecurityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.SecurityLog, len(s.logs))
	copy(out, s.logs)
	return out
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.usersByMail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	stored := *user
	stored.Sessions = nil
	r.s.users[user.ID] = stored
	r.s.usersByMail[user.Email] = user.ID
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.usersByMail[email]
	if !ok {
		return nil, nil
	}
	user := r.s.users[id]
	return &user, nil
}

func (r userRepo) MarkVerified(_ context.Context, userID uuid.UUID) error {
	return r.update(userID, func(u *entity.User) { u.IsVerified = true })
}

func (r userRepo) SetVerificationToken(_ context.Context, userID uuid.UUID, token string, createdAt time.Time) error {
	return r.update(userID, func(u *entity.User) {
		u.VerificationToken = &token
		u.VerificationTokenCreatedAt = &createdAt
	})
}

func (r userRepo) ClearVerificationToken(_ context.Context, userID uuid.UUID) error {
	return r.update(userID, func(u *entity.User) {
		u.VerificationToken = nil
		u.VerificationTokenCreatedAt = nil
	})
}

func (r userRepo) SetActive(_ context.Context, userID uuid.UUID, active bool) error {
	return r.update(userID, func(u *entity.User) { u.IsActive = active })
}

func (r userRepo) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	return r.update(userID, func(u *entity.User) { u.PasswordHash = hash })
}

// update mirrors an UPDATE ... WHERE id = ?: a missing row is a no-op.
func (r userRepo) update(userID uuid.UUID, fn func(*entity.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[userID]
	if !ok {
		return nil
	}
	fn(&user)
	user.UpdatedAt = time.Now()
	r.s.users[userID] = user
	return nil
}

type sessionRepo struct{ s *Store }

func (r sessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.sessionsByToken[session.Token]; exists {
		return repository.ErrDuplicateToken
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	stored := *session
	stored.User = entity.User{}
	r.s.sessions[session.ID] = stored
	r.s.sessionsByToken[session.Token] = session.ID
	return nil
}

func (r sessionRepo) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.sessionsByToken[token]
	if !ok {
		return nil, nil
	}
	session := r.s.sessions[id]
	user, ok := r.s.users[session.UserID]
	if !ok {
		return nil, nil
	}
	session.User = user
	return &session, nil
}

func (r sessionRepo) UpdateExpiry(_ context.Context, sessionID uuid.UUID, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	session, ok := r.s.sessions[sessionID]
	if !ok {
		return nil
	}
	session.ExpiresAt = expiresAt
	session.UpdatedAt = time.Now()
	r.s.sessions[sessionID] = session
	return nil
}

func (r sessionRepo) Delete(_ context.Context, sessionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteSessionLocked(sessionID)
	return nil
}

func (r sessionRepo) DeleteAllByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, session := range r.s.sessions {
		if session.UserID == userID {
			r.s.deleteSessionLocked(id)
		}
	}
	return nil
}

func (r sessionRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sessions []entity.Session
	for _, session := range r.s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var deleted int64
	for id, session := range r.s.sessions {
		if !session.ExpiresAt.After(now) {
			r.s.deleteSessionLocked(id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) deleteSessionLocked(id uuid.UUID) {
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessionsByToken, session.Token)
	delete(s.sessions, id)
}

type securityLogRepo struct{ s *Store }

func (r securityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.s.logs = append(r.s.logs, *log)
	return nil
}
