package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"turva/internal/entity"
	"turva/internal/repository"
	"turva/internal/utils"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

// dummyPassword is hashed once and verified against for unknown emails so
// that a missing account costs the same as a wrong password.
const dummyPassword = "turva-dummy-password-for-timing"

type AuthService struct {
	users         repository.UserRepository
	sessions      *SessionManager
	verifications *VerificationTokenManager
	dispatcher    VerificationDispatcher
	passwordHash  PasswordHasher
	audit         auditTrail
	log           logrus.FieldLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	sessions *SessionManager,
	verifications *VerificationTokenManager,
	securityLogs repository.SecurityLogRepository,
	dispatcher VerificationDispatcher,
	passwordHash PasswordHasher,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		users:         users,
		sessions:      sessions,
		verifications: verifications,
		dispatcher:    dispatcher,
		passwordHash:  passwordHash,
		audit:         auditTrail{logs: securityLogs, log: log},
		log:           log,
	}
}

// Register creates an unverified account and sends its first verification
// email. Email delivery runs detached; its failure does not fail registration.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" ||
		strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, ErrInvalidInput
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		Organisation: strings.TrimSpace(input.Organisation),
		JobRole:      strings.TrimSpace(input.JobRole),
		IsVerified:   false,
		IsActive:     true,
		IsCSO:        false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, oops.Code("USER_CREATE_FAILED").Wrap(err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")

	if err := s.sendVerification(ctx, user, input.IPAddress); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("initial verification email not sent")
	}
	return user, nil
}

// Login checks credentials and opens a new session. Every credential failure
// is ErrInvalidCredentials so callers cannot tell which part was wrong.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").Wrap(err)
	}
	if user == nil {
		_ = s.passwordHash.Verify(s.dummyPasswordHash(), input.Password)
		s.loginFailed(ctx, nil, input.IPAddress, "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if !s.passwordHash.Verify(user.PasswordHash, input.Password) {
		s.loginFailed(ctx, &user.ID, input.IPAddress, "bad_password")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.loginFailed(ctx, &user.ID, input.IPAddress, "inactive")
		return nil, ErrInvalidCredentials
	}

	if s.passwordHash.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, input.Password)
	}

	session, token, err := s.sessions.CreateSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, &user.ID, input.IPAddress, entity.LoginSuccess, map[string]any{
		"session_id": session.ID.String(),
	})
	recordAuthEvent(eventLogin, "success")
	s.log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": session.ID,
	}).Info("user logged in")

	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout revokes the session the principal was resolved from.
func (s *AuthService) Logout(ctx context.Context, principal Principal, ipAddress *string) error {
	if !principal.IsAuthenticated() || principal.Session == nil {
		return ErrNotAuthenticated
	}
	if err := s.sessions.Revoke(ctx, principal.Session); err != nil {
		return err
	}
	userID := principal.User.ID
	s.audit.record(ctx, &userID, ipAddress, entity.Logout, map[string]any{
		"session_id": principal.Session.ID.String(),
	})
	return nil
}

// VerifyEmail either confirms a verification token or, when Resend is set,
// re-sends the verification email to the signed-in owner of the account.
func (s *AuthService) VerifyEmail(ctx context.Context, input VerifyInput) (VerifyOutcome, error) {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return 0, ErrUserNotFound
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, oops.Code("USER_LOOKUP_FAILED").With("user_id", userID).Wrap(err)
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	if user.IsVerified {
		return VerifyOutcomeAlreadyVerified, nil
	}

	if input.Resend {
		if !input.Principal.IsAuthenticated() {
			return 0, ErrNotAuthenticated
		}
		if input.Principal.User.ID != user.ID {
			return 0, ErrForbidden
		}
		if err := s.sendVerification(ctx, user, input.IPAddress); err != nil {
			if errors.Is(err, ErrTooSoon) {
				recordAuthEvent(eventResend, "too_soon")
			}
			return 0, err
		}
		recordAuthEvent(eventResend, "sent")
		return VerifyOutcomeResent, nil
	}

	if input.Token == "" {
		return 0, ErrTokenRequired
	}
	if err := s.verifications.Validate(user, input.Token); err != nil {
		recordAuthEvent(eventVerify, "invalid_token")
		return 0, err
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return 0, oops.Code("USER_MARK_VERIFIED_FAILED").With("user_id", user.ID).Wrap(err)
	}

	recordAuthEvent(eventVerify, "verified")
	s.audit.record(ctx, &user.ID, input.IPAddress, entity.EmailVerified, nil)
	s.log.WithField("user_id", user.ID).Info("email verified")
	return VerifyOutcomeVerified, nil
}

// ListSessions returns the caller's sessions. Only verified users may list them.
func (s *AuthService) ListSessions(ctx context.Context, principal Principal) ([]entity.Session, error) {
	if err := RequireVerified(principal); err != nil {
		return nil, err
	}
	return s.sessions.ListForUser(ctx, principal.User.ID)
}

func (s *AuthService) sendVerification(ctx context.Context, user *entity.User, ipAddress *string) error {
	token, err := s.verifications.IssueOrReuse(ctx, user)
	if err != nil {
		return err
	}
	if err := s.dispatcher.DispatchVerification(ctx, user, token); err != nil {
		return oops.Code("VERIFICATION_DISPATCH_FAILED").With("user_id", user.ID).Wrap(err)
	}
	s.audit.record(ctx, &user.ID, ipAddress, entity.VerificationSent, nil)
	return nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID *uuid.UUID, ipAddress *string, reason string) {
	recordAuthEvent(eventLogin, "failure")
	s.audit.record(ctx, userID, ipAddress, entity.LoginFailed, map[string]any{"reason": reason})
}

// rehash upgrades a stored hash produced with older parameters or bcrypt.
// Failure keeps the old hash and does not block the login.
func (s *AuthService) rehash(ctx context.Context, user *entity.User, password string) {
	hash, err := s.passwordHash.Hash(password)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("password rehash failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("password rehash not stored")
		return
	}
	user.PasswordHash = hash
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.passwordHash.Hash(dummyPassword)
		if err != nil {
			s.log.WithError(err).Warn("dummy password hash unavailable")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
