package service

import (
	"context"

	"turva/internal/entity"
	"turva/internal/repository"

	"github.com/sirupsen/logrus"
)

// Principal is the identity attached to a request. The zero value is anonymous.
type Principal struct {
	User    *entity.User
	Session *entity.Session
	// Scopes is always empty; authorization beyond the verified flag is not modelled.
	Scopes []string
}

func (p Principal) IsAuthenticated() bool {
	return p.User != nil
}

// AuthenticationGate resolves a session cookie value to a Principal, evicting
// sessions that are expired or belong to an inactive user as it goes.
type AuthenticationGate struct {
	sessions *SessionManager
	audit    auditTrail
	log      logrus.FieldLogger
}

func NewAuthenticationGate(sessions *SessionManager, securityLogs repository.SecurityLogRepository, log logrus.FieldLogger) *AuthenticationGate {
	return &AuthenticationGate{
		sessions: sessions,
		audit:    auditTrail{logs: securityLogs, log: log},
		log:      log,
	}
}

// ResolvePrincipal never fails for unknown, stale or forged tokens; those
// resolve to the anonymous principal. Only storage failures are returned.
//
// Expiry check and delete are not atomic. Two requests carrying the same
// expired token may both delete it; the store treats the second as a no-op.
func (g *AuthenticationGate) ResolvePrincipal(ctx context.Context, cookieValue string) (Principal, error) {
	if cookieValue == "" {
		recordAuthEvent(eventSessionResolve, "anonymous")
		return Principal{}, nil
	}

	session, err := g.sessions.FindByToken(ctx, cookieValue)
	if err != nil {
		return Principal{}, err
	}
	if session == nil {
		recordAuthEvent(eventSessionResolve, "no_session")
		return Principal{}, nil
	}

	if !session.User.IsActive || g.sessions.IsExpired(session) {
		reason := "expired"
		if !session.User.IsActive {
			reason = "user_inactive"
		}
		if err := g.sessions.Revoke(ctx, session); err != nil {
			return Principal{}, err
		}
		g.log.WithFields(logrus.Fields{
			"session_id": session.ID,
			"user_id":    session.UserID,
			"reason":     reason,
		}).Debug("session evicted")
		userID := session.UserID
		g.audit.record(ctx, &userID, nil, entity.SessionEvicted, map[string]any{"reason": reason})
		recordAuthEvent(eventSessionResolve, "evicted")
		return Principal{}, nil
	}

	if err := g.sessions.Extend(ctx, session); err != nil {
		return Principal{}, err
	}
	user := session.User
	recordAuthEvent(eventSessionResolve, "authenticated")
	return Principal{User: &user, Session: session, Scopes: []string{}}, nil
}

// RequireVerified is the verified-user guard. It performs no I/O.
func RequireVerified(principal Principal) error {
	if !principal.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !principal.User.IsVerified {
		return ErrNotVerified
	}
	return nil
}
