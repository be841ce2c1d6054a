package users

import (
	"context"
)

// Repository defines profile persistence operations.
type Repository interface {
	// GetProfile retrieves profile fields, or a not-found domain error.
	GetProfile(ctx context.Context, username string) (*ProfileRow, error)

	// LockUser acquires a row lock on the user inside the current
	// transaction, serializing concurrent self-mutations. Returns a
	// not-found domain error if the user does not exist.
	LockUser(ctx context.Context, username string) error

	// UpdateProfile applies the non-nil changes to the user row.
	UpdateProfile(ctx context.Context, username string, summary *string, profile, banner *ImageUpdate) error
}
