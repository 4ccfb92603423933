// Package auth handles credential verification and login sessions for the
// back office and the client area.
package auth

import "time"

// Role separates back-office staff from client-area users.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is an account that can sign in.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
