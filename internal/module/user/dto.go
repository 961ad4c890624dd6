package user

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username           string   `json:"username" binding:"required,min=3,max=30,username"`
	Email              string   `json:"email" binding:"required,email"`
	Password           string   `json:"password" binding:"required,min=6"`
	PreferredLanguages []string `json:"preferredLanguages" binding:"omitempty,dive,language"`
}

// LoginRequest represents an email/password login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Username           *string  `json:"username" binding:"omitempty,min=3,max=30,username"`
	PreferredLanguages []string `json:"preferredLanguages" binding:"omitempty,dive,language"`
}

// UserResponse is the public user representation.
type UserResponse struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PreferredLanguages []string  `json:"preferredLanguages"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

// ProfileResponse wraps a single user.
type ProfileResponse struct {
	Message string        `json:"message,omitempty"`
	User    *UserResponse `json:"user"`
}

// VerifyTokenResponse is returned by verify-token.
type VerifyTokenResponse struct {
	Valid bool          `json:"valid"`
	User  *UserResponse `json:"user"`
}
