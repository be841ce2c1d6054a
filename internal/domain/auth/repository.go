package auth

import (
	"context"
)

// UserRepository defines persistence operations the auth service needs.
// The postgres implementation maps a unique-key breach on insert to a
// duplicate-entry domain error.
type UserRepository interface {
	// Create inserts a new user row.
	Create(ctx context.Context, user *User) error

	// GetByUsername retrieves a user, or a not-found domain error.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
