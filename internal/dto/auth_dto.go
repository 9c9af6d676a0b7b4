package dto

import (
	"time"

	"github.com/noah-isme/exam-portal-api/internal/models"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

// LoginRequest is the payload for credential login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token and the authenticated profile.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:         model.ID,
		Name:       model.Name,
		Email:      model.Email,
		Role:       model.Role,
		IsVerified: model.IsVerified,
		CreatedAt:  model.CreatedAt,
	}
}
