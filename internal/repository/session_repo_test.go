package repository

import (
	"context"
	"testing"
	"time"

	"turva/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_FindByTokenJoinsUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	sessionID := uuid.New()
	userID := uuid.New()
	expires := time.Now().Add(time.Hour).UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "token", "expires_at", "is_active",
		"User__id", "User__email_address", "User__is_active", "User__is_verified",
	}).AddRow(sessionID, userID, "tok", expires, true, userID, "jane@example.com", true, false)

	mock.ExpectQuery(`SELECT .* FROM "sessions" LEFT JOIN "users" "User" ON .* WHERE sessions.token = \$1`).
		WillReturnRows(rows)

	session, err := repo.FindByToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, sessionID, session.ID)
	assert.Equal(t, userID, session.User.ID)
	assert.Equal(t, "jane@example.com", session.User.Email)
	assert.True(t, session.User.IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_FindByTokenNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	session, err := repo.FindByToken(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, session)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_CreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sessions"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &entity.Session{
		UserID:    uuid.New(),
		Token:     "dup",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrDuplicateToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteMissingRowIsNotAnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "sessions" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_UpdateExpiry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSessionRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "sessions" SET "expires_at"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateExpiry(context.Background(), id, time.Now().Add(time.Hour)))
	require.NoError(t, mock.ExpectationsWereMet())
}
