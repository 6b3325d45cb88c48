package dto

import (
	"time"

	"github.com/spec-kit/amelio/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// InviteUserRequest payload for admins adding a user.
type InviteUserRequest struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// ActivateUserRequest payload for choosing the first password.
type ActivateUserRequest struct {
	Password string `json:"password"`
}

// UserResponse never carries password hash or invitation code.
type UserResponse struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	Active       bool        `json:"active"`
	InitialAdmin bool        `json:"initial_admin,omitempty"`
}

// UserListResponse splits users by activation state.
type UserListResponse struct {
	Active   []UserResponse `json:"active"`
	Inactive []UserResponse `json:"inactive"`
}

// UserNameResponse is the short form used in selections.
type UserNameResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
