package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"turva/internal/entity"
	"turva/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// testArgon2Params keeps hashing fast in tests.
var testArgon2Params = Argon2Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentVerification struct {
	UserID uuid.UUID
	Email  string
	Token  string
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []sentVerification
	err  error
}

func (d *recordingDispatcher) DispatchVerification(_ context.Context, user *entity.User, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, sentVerification{UserID: user.ID, Email: user.Email, Token: token})
	return nil
}

func (d *recordingDispatcher) Sent() []sentVerification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]sentVerification, len(d.sent))
	copy(out, d.sent)
	return out
}

type testEnv struct {
	store      *memstore.Store
	clock      *fakeClock
	sessions   *SessionManager
	verifier   *VerificationTokenManager
	gate       *AuthenticationGate
	auth       *AuthService
	dispatcher *recordingDispatcher
	hasher     *Argon2idHasher
	logHook    *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := memstore.New()
	clock := newFakeClock()
	sessions := NewSessionManager(store.Sessions(), clock, AuthConfig{SessionLifetime: time.Hour})
	verifier := NewVerificationTokenManager(store.Users(), clock)
	dispatcher := &recordingDispatcher{}
	hasher := NewArgon2idHasher(testArgon2Params)

	return &testEnv{
		store:      store,
		clock:      clock,
		sessions:   sessions,
		verifier:   verifier,
		gate:       NewAuthenticationGate(sessions, store.SecurityLogs(), logger),
		auth:       NewAuthService(store.Users(), sessions, verifier, store.SecurityLogs(), dispatcher, hasher, logger),
		dispatcher: dispatcher,
		hasher:     hasher,
		logHook:    hook,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) *entity.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func (e *testEnv) actions() []entity.SecurityAction {
	var out []entity.SecurityAction
	for _, entry := range e.store.SecurityLogEntries() {
		out = append(out, entry.Action)
	}
	return out
}
