// Package favorites provides favoriting of posts.
package favorites

import (
	"context"
)

// Repository defines favorite persistence operations.
type Repository interface {
	// Upsert records the favorite. Re-favoriting refreshes the
	// favorite timestamp instead of erroring. A missing post surfaces
	// as a not-found domain error.
	Upsert(ctx context.Context, username, postID string) error

	// Delete removes the favorite. Deleting an absent pair is not an
	// error.
	Delete(ctx context.Context, username, postID string) error
}

// UserLocker acquires a row lock on the acting user inside the current
// transaction.
type UserLocker interface {
	LockUser(ctx context.Context, username string) error
}
