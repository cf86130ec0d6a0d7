package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleUser   UserRole = "USER"
	UserRoleVendor UserRole = "VENDOR"
	UserRoleAdmin  UserRole = "ADMIN"
)

// User represents a global user account
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	IsBlocked    bool      `json:"isBlocked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user has the ADMIN role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// PromoteToVendor upgrades a plain user to VENDOR. It never changes ADMIN or
// an existing VENDOR and reports whether the role changed.
func (u *User) PromoteToVendor() bool {
	if u.Role != UserRoleUser && u.Role != "" {
		return false
	}
	u.Role = UserRoleVendor
	return true
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput represents input for a token refresh
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	User             *User     `json:"user"`
}

// Requester is the authenticated caller of a use case.
type Requester struct {
	UserID uuid.UUID
	Role   UserRole
}

// IsAdmin reports whether the requester acts with admin rights
func (r Requester) IsAdmin() bool {
	return r.Role == UserRoleAdmin
}
