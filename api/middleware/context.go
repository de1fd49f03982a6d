package middleware

import (
	"turva/internal/service"

	"github.com/labstack/echo/v4"
)

const contextPrincipalKey = "auth_principal"

func SetPrincipal(c echo.Context, principal service.Principal) {
	c.Set(contextPrincipalKey, principal)
}

// PrincipalFromContext returns the anonymous principal when none was attached.
func PrincipalFromContext(c echo.Context) service.Principal {
	principal, _ := c.Get(contextPrincipalKey).(service.Principal)
	return principal
}

