package service

import (
	"context"
	"testing"
	"time"

	"turva/internal/entity"
	"turva/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) (*VerificationTokenManager, *memstore.Store, *fakeClock, *entity.User) {
	t.Helper()
	store := memstore.New()
	clock := newFakeClock()
	user := createUser(t, store, "ada@example.com")
	return NewVerificationTokenManager(store.Users(), clock), store, clock, user
}

func reload(t *testing.T, store *memstore.Store, user *entity.User) *entity.User {
	t.Helper()
	fresh, err := store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	return fresh
}

func TestVerification_IssueFromNoToken(t *testing.T) {
	verifier, store, clock, user := newVerifier(t)

	token, err := verifier.IssueOrReuse(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Len(t, token, 64, "48 random bytes, unpadded base64url")

	stored := reload(t, store, user)
	require.NotNil(t, stored.VerificationToken)
	assert.Equal(t, token, *stored.VerificationToken)
	assert.Equal(t, clock.Now(), *stored.VerificationTokenCreatedAt)
}

func TestVerification_CooldownAndReuse(t *testing.T) {
	ctx := context.Background()
	verifier, store, clock, user := newVerifier(t)

	first, err := verifier.IssueOrReuse(ctx, user)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, err = verifier.IssueOrReuse(ctx, reload(t, store, user))
	assert.ErrorIs(t, err, ErrTooSoon)

	clock.Advance(time.Minute)
	second, err := verifier.IssueOrReuse(ctx, reload(t, store, user))
	require.NoError(t, err)
	assert.Equal(t, first, second, "token younger than the lifetime is re-sent")

	stored := reload(t, store, user)
	assert.Equal(t, clock.Now().Add(-10*time.Minute), *stored.VerificationTokenCreatedAt)
}

func TestVerification_ExpiredTokenIsReplaced(t *testing.T) {
	ctx := context.Background()
	verifier, store, clock, user := newVerifier(t)

	first, err := verifier.IssueOrReuse(ctx, user)
	require.NoError(t, err)

	clock.Advance(VerificationTokenLifetime)
	same, err := verifier.IssueOrReuse(ctx, reload(t, store, user))
	require.NoError(t, err)
	assert.Equal(t, first, same, "a token exactly at the lifetime has not expired")

	clock.Advance(time.Second)
	replaced, err := verifier.IssueOrReuse(ctx, reload(t, store, user))
	require.NoError(t, err)
	assert.NotEqual(t, first, replaced)
	assert.Equal(t, clock.Now(), *reload(t, store, user).VerificationTokenCreatedAt)
}

func TestVerification_AlreadyVerified(t *testing.T) {
	verifier, _, _, user := newVerifier(t)
	user.IsVerified = true

	_, err := verifier.IssueOrReuse(context.Background(), user)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestVerification_Validate(t *testing.T) {
	ctx := context.Background()
	verifier, store, clock, user := newVerifier(t)

	assert.ErrorIs(t, verifier.Validate(user, "anything"), ErrInvalidToken, "no token issued")

	token, err := verifier.IssueOrReuse(ctx, user)
	require.NoError(t, err)
	current := reload(t, store, user)

	assert.NoError(t, verifier.Validate(current, token))
	assert.ErrorIs(t, verifier.Validate(current, ""), ErrInvalidToken)
	assert.ErrorIs(t, verifier.Validate(current, token+"x"), ErrInvalidToken)
	assert.ErrorIs(t, verifier.Validate(current, token[:len(token)-1]), ErrInvalidToken)

	clock.Advance(VerificationTokenLifetime + time.Second)
	assert.ErrorIs(t, verifier.Validate(current, token), ErrInvalidToken)
}

func TestVerification_HasExpired(t *testing.T) {
	verifier, _, clock, user := newVerifier(t)

	assert.True(t, verifier.HasExpired(user), "no issue time")

	issued := clock.Now()
	user.VerificationTokenCreatedAt = &issued
	assert.False(t, verifier.HasExpired(user))

	clock.Advance(VerificationTokenLifetime)
	assert.False(t, verifier.HasExpired(user))

	clock.Advance(time.Nanosecond)
	assert.True(t, verifier.HasExpired(user))
}
