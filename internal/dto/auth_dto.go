package dto

import (
	"time"

	"turva/internal/entity"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	FirstName    string `json:"first_name" validate:"required,max=50"`
	LastName     string `json:"last_name" validate:"required,max=50"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Password     string `json:"password" validate:"required,min=8"`
	Organisation string `json:"organisation" validate:"omitempty,max=100"`
	JobRole      string `json:"job_role" validate:"omitempty,max=100"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email_address" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Token  string `json:"token"`
	Resend bool   `json:"resend"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email_address"`
	Organisation string `json:"organisation,omitempty"`
	JobRole      string `json:"job_role,omitempty"`
	IsVerified   bool   `json:"is_verified"`
	IsCSO        bool   `json:"is_cso"`
}

func UserResponseFromEntity(user *entity.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Organisation: user.Organisation,
		JobRole:      user.JobRole,
		IsVerified:   user.IsVerified,
		IsCSO:        user.IsCSO,
	}
}

// SessionResponse never includes the session token.
type SessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

func SessionResponsesFromEntities(sessions []entity.Session, currentID uuid.UUID) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, SessionResponse{
			ID:        sessions[i].ID.String(),
			CreatedAt: sessions[i].CreatedAt,
			ExpiresAt: sessions[i].ExpiresAt,
			Current:   sessions[i].ID == currentID,
		})
	}
	return responses
}
