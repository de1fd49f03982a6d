package routes

import (
	"net/http"
	"strings"
	"time"

	"turva/api/handler"
	"turva/api/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo        *echo.Echo
	Auth        *handler.AuthHandler
	Sessions    middleware.SessionMiddleware
	APIPath     string
	CORSOrigins []string
	AuthRate    *middleware.RateLimiter
	LoginRate   *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, sessions middleware.SessionMiddleware, apiPath string, corsOrigins []string) *Router {
	return &Router{
		Echo:        e,
		Auth:        authHandler,
		Sessions:    sessions,
		APIPath:     "/" + strings.Trim(apiPath, "/"),
		CORSOrigins: corsOrigins,
		AuthRate:    middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:   middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	e.Use(middleware.Metrics)
	if len(r.CORSOrigins) > 0 {
		e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
			AllowOrigins:     r.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	prefix := r.APIPath
	if prefix == "/" {
		prefix = ""
	}
	api := e.Group(prefix, r.Sessions.Authenticate)

	api.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	api.POST("/auth/login", r.Auth.Login, r.LoginRate.Middleware())
	api.POST("/auth/verify/:user_id", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	api.POST("/auth/logout", r.Auth.Logout, middleware.RequireAuth)

	api.GET("/auth/me", r.Auth.Me, middleware.RequireAuth)
	api.GET("/auth/me/sessions", r.Auth.MySessions, middleware.RequireVerified)
}
