package service

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrEmailAlreadyRegistered = errors.New("a user with this email already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrNotAuthenticated       = errors.New("user not authenticated")
	ErrNotVerified            = errors.New("user not validated")
	ErrInvalidToken           = errors.New("invalid verification token")
	ErrAlreadyVerified        = errors.New("user is already verified")
	ErrTooSoon                = errors.New("a verification token was recently sent")
	ErrTokenRequired          = errors.New("verification token is required")
	ErrUserNotFound           = errors.New("user not found")
	ErrForbidden              = errors.New("forbidden")
)
