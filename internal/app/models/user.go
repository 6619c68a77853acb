package models

import (
	"time"
)

// Role defines the access level of a user account
type Role string

const (
	// RoleAuthority is the role permitted to manage student records
	RoleAuthority Role = "authority"
)

// User defines the user model based on the 'users' table
type User struct {
	ID               int64      `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`                // Stored lowercase and trimmed
	Password         string     `json:"-" db:"password"`                 // Hashed password, excluded from JSON
	FullName         string     `json:"fullName" db:"full_name"`
	Role             Role       `json:"role" db:"role"`
	ResetToken       *string    `json:"-" db:"reset_token"`              // Single-use password reset token (nullable)
	ResetTokenExpiry *time.Time `json:"-" db:"reset_token_expiry"`       // Reset token expiry (nullable)
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}
