package service

import (
	"turva/internal/entity"
)

type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Organisation string
	JobRole      string
	IPAddress    *string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
}

type LoginResult struct {
	User    *entity.User
	Session *entity.Session
	// Token is the raw session token; it is returned once and set as the cookie value.
	Token string
}

type VerifyInput struct {
	UserID    string
	Token     string
	Resend    bool
	Principal Principal
	IPAddress *string
}

type VerifyOutcome int

const (
	VerifyOutcomeVerified VerifyOutcome = iota + 1
	VerifyOutcomeAlreadyVerified
	VerifyOutcomeResent
)

func (o VerifyOutcome) Message() string {
	switch o {
	case VerifyOutcomeVerified:
		return "Email verified successfully"
	case VerifyOutcomeAlreadyVerified:
		return "User is already verified"
	case VerifyOutcomeResent:
		return "Verification email resent"
	default:
		return ""
	}
}
