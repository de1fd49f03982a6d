package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"turva/api/middleware"
	"turva/internal/dto"
	"turva/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var errInvalidEmailFormat = errors.New("invalid email format")

type AuthHandler struct {
	Service       *service.AuthService
	Validate      *validator.Validate
	Log           logrus.FieldLogger
	CookieName    string
	CookieDomain  string
	SecureCookies bool
	SameSite      http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate, cookieName string, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		Service:       svc,
		Validate:      validate,
		Log:           log,
		CookieName:    cookieName,
		SecureCookies: true,
		SameSite:      http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Password:     req.Password,
		Organisation: req.Organisation,
		JobRole:      req.JobRole,
		IPAddress:    stringPtr(c.RealIP()),
	}
	user, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message: "User registered successfully",
		ID:      user.ID.String(),
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeMessage(c, http.StatusBadRequest, "Username and password are required")
	}
	result, err := h.Service.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return h.writeServiceError(c, err)
	}
	h.setSessionCookie(c, result.Token)
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(result.User))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	principal := middleware.PrincipalFromContext(c)
	if err := h.Service.Logout(c.Request().Context(), principal, stringPtr(c.RealIP())); err != nil {
		return h.writeServiceError(c, err)
	}
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	outcome, err := h.Service.VerifyEmail(c.Request().Context(), service.VerifyInput{
		UserID:    c.Param("user_id"),
		Token:     req.Token,
		Resend:    req.Resend,
		Principal: middleware.PrincipalFromContext(c),
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: outcome.Message()})
}

func (h *AuthHandler) Me(c echo.Context) error {
	principal := middleware.PrincipalFromContext(c)
	if !principal.IsAuthenticated() {
		return h.writeServiceError(c, service.ErrNotAuthenticated)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(principal.User))
}

func (h *AuthHandler) MySessions(c echo.Context) error {
	principal := middleware.PrincipalFromContext(c)
	sessions, err := h.Service.ListSessions(c.Request().Context(), principal)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SessionResponsesFromEntities(sessions, principal.Session.ID))
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	err := h.Validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}
	first := fieldErrors[0]
	if first.Field() == "Email" && first.Tag() == "email" {
		return errInvalidEmailFormat
	}
	return fmt.Errorf("invalid %s: failed %s", strings.ToLower(first.Field()), first.Tag())
}

// setSessionCookie issues a browser-session cookie; expiry is enforced server side.
func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeError(c echo.Context, status int, err error) error {
	return writeMessage(c, status, err.Error())
}

func writeMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, dto.MessageResponse{Message: message})
}

func (h *AuthHandler) writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return writeMessage(c, http.StatusBadRequest, "invalid input")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeMessage(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrNotAuthenticated):
		return writeMessage(c, http.StatusUnauthorized, "User not authenticated")
	case errors.Is(err, service.ErrNotVerified):
		return writeMessage(c, http.StatusForbidden, "User not validated")
	case errors.Is(err, service.ErrForbidden):
		return writeMessage(c, http.StatusForbidden, "You can only resend verification email for your own account")
	case errors.Is(err, service.ErrUserNotFound):
		return writeMessage(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		return writeMessage(c, http.StatusConflict, "A user with this email already exists.")
	case errors.Is(err, service.ErrTokenRequired):
		return writeMessage(c, http.StatusBadRequest, "Verification token is required")
	case errors.Is(err, service.ErrInvalidToken):
		return writeMessage(c, http.StatusBadRequest, "Invalid verification token, please login and request a new email")
	case errors.Is(err, service.ErrTooSoon):
		return writeMessage(c, http.StatusBadRequest, "A verification token was recently sent, please wait before requesting another")
	case errors.Is(err, service.ErrAlreadyVerified):
		return c.JSON(http.StatusOK, dto.MessageResponse{Message: service.VerifyOutcomeAlreadyVerified.Message()})
	}
	h.Log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return writeMessage(c, http.StatusInternalServerError, "internal server error")
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
