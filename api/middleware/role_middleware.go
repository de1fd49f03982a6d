package middleware

import (
	"errors"
	"net/http"

	"turva/internal/service"

	"github.com/labstack/echo/v4"
)

// RequireVerified admits only authenticated users whose email is verified.
func RequireVerified(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := service.RequireVerified(PrincipalFromContext(c))
		switch {
		case err == nil:
			return next(c)
		case errors.Is(err, service.ErrNotVerified):
			return echo.NewHTTPError(http.StatusForbidden, "User not validated")
		default:
			return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
		}
	}
}
