package dto

import "github.com/guttosm/mandipulse/internal/domain/models"

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name" example:"Ramesh"`
	Email    string `json:"email" example:"farmer@email.com"`
	Password string `json:"password" example:"secret123"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"farmer@email.com"`
	Password string `json:"password" example:"secret123"`
}

// AuthResponse carries the issued token and, on signup and /me, the user.
type AuthResponse struct {
	Token string       `json:"token,omitempty"`
	User  *models.User `json:"user,omitempty"`
}
