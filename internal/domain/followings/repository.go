package followings

import (
	"context"
)

// Repository defines follow-pair persistence operations.
type Repository interface {
	// Insert records that follower follows followed. Inserting an
	// existing pair is a no-op, not an error.
	Insert(ctx context.Context, follower, followed string) error

	// Delete removes the pair. Deleting an absent pair is not an error.
	Delete(ctx context.Context, follower, followed string) error

	// ListFollowing returns one page of users that follower follows,
	// ordered by username, plus the total count.
	ListFollowing(ctx context.Context, follower string, limit, offset int) ([]FollowedUser, int, error)
}

// UserLocker locks user rows inside the current transaction.
type UserLocker interface {
	// LockUsers locks the given users' rows and returns how many exist.
	// Locks are taken in sorted order to avoid lock-order deadlocks.
	LockUsers(ctx context.Context, usernames ...string) (int, error)
}
