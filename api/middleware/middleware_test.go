package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"turva/internal/entity"
	"turva/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newContext(remoteAddr string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

func TestRateLimiter_PerIP(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(0.001), 2, time.Minute)
	handler := limiter.Middleware()(ok)

	for i := 0; i < 2; i++ {
		c, _ := newContext("198.51.100.1:1000")
		require.NoError(t, handler(c))
	}
	c, _ := newContext("198.51.100.1:1000")
	assert.Equal(t, http.StatusTooManyRequests, statusOf(t, handler(c)))

	other, _ := newContext("198.51.100.2:1000")
	assert.NoError(t, handler(other), "buckets are per client")
}

func TestRequireAuth(t *testing.T) {
	c, _ := newContext("198.51.100.1:1000")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, RequireAuth(ok)(c)))

	c, rec := newContext("198.51.100.1:1000")
	SetPrincipal(c, service.Principal{User: &entity.User{}})
	require.NoError(t, RequireAuth(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireVerified(t *testing.T) {
	c, _ := newContext("198.51.100.1:1000")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, RequireVerified(ok)(c)))

	c, _ = newContext("198.51.100.1:1000")
	SetPrincipal(c, service.Principal{User: &entity.User{IsVerified: false}})
	err := RequireVerified(ok)(c)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Equal(t, "User not validated", err.(*echo.HTTPError).Message)

	c, rec := newContext("198.51.100.1:1000")
	SetPrincipal(c, service.Principal{User: &entity.User{IsVerified: true}})
	require.NoError(t, RequireVerified(ok)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrincipalFromContextDefaultsToAnonymous(t *testing.T) {
	c, _ := newContext("198.51.100.1:1000")
	assert.False(t, PrincipalFromContext(c).IsAuthenticated())
}
