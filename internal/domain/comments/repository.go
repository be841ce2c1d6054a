package comments

import (
	"context"
)

// Repository defines comment persistence operations.
type Repository interface {
	// Insert stores a comment and returns the row with its
	// server-assigned id and timestamp, read back inside the same
	// transaction. A missing post surfaces as a not-found domain error.
	Insert(ctx context.Context, postID, username, content string) (*Comment, error)

	// DeleteByAuthor removes a comment only when username authored it.
	// Matching zero rows is not an error.
	DeleteByAuthor(ctx context.Context, commentID int64, username string) error

	// ListForPost returns all comments on a post, newest first.
	ListForPost(ctx context.Context, postID string) ([]AuthorComment, error)
}

// UserLocker acquires a row lock on the acting user inside the current
// transaction.
type UserLocker interface {
	LockUser(ctx context.Context, username string) error
}
