package middleware

import (
	"net/http"

	"turva/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// SessionMiddleware resolves the session cookie on every request and attaches
// the resulting principal, anonymous or not.
type SessionMiddleware struct {
	Gate       *service.AuthenticationGate
	CookieName string
	Log        logrus.FieldLogger
}

func (m SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var token string
		if cookie, err := c.Cookie(m.CookieName); err == nil {
			token = cookie.Value
		}
		principal, err := m.Gate.ResolvePrincipal(c.Request().Context(), token)
		if err != nil {
			m.Log.WithError(err).Error("session resolution failed")
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		SetPrincipal(c, principal)
		return next(c)
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !PrincipalFromContext(c).IsAuthenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
		return next(c)
	}
}
