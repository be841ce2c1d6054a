package posts

import (
	"context"

	"artfolio/internal/domain/comments"
	"artfolio/internal/domain/page"
)

// Repository is post storage. All listing methods return the window of
// rows plus the total count matching the same criteria; both are read
// inside the caller's transaction so they describe one snapshot.
type Repository interface {
	// Insert stores a new post for an existing user.
	Insert(ctx context.Context, post *Post) error

	// GetForUpdate loads a post row locked for the rest of the
	// transaction. Returns a not-found error when no row exists.
	GetForUpdate(ctx context.Context, publicID string) (*Post, error)

	// Delete removes a post and its dependent comments and favorites.
	Delete(ctx context.Context, publicID string) error

	// GetView loads one post joined with its artist, with the
	// favorited flag computed for viewer (empty viewer means
	// anonymous, flag always false).
	GetView(ctx context.Context, publicID, viewer string) (*Row, error)

	// ListByArtist pages the artist's posts, newest first.
	ListByArtist(ctx context.Context, artist, viewer string, req page.Request) ([]Row, int, error)

	// ListFavoritesOf pages posts the user favorited, most recently
	// favorited first.
	ListFavoritesOf(ctx context.Context, username string, req page.Request) ([]Row, int, error)

	// ListTrending pages recent posts ranked by engagement.
	ListTrending(ctx context.Context, viewer string, req page.Request) ([]Row, int, error)

	// Search pages posts whose title or description matches the
	// query, newest first.
	Search(ctx context.Context, query, viewer string, req page.Request) ([]Row, int, error)

	// ListFollowingFeed pages posts by artists the user follows,
	// newest first.
	ListFollowingFeed(ctx context.Context, username string, req page.Request) ([]Row, int, error)
}

// UserLocker locks the uploading user's row for the transaction.
type UserLocker interface {
	LockUser(ctx context.Context, username string) error
}

// CommentSource reads the comments shown on a post detail page.
type CommentSource interface {
	ListForPost(ctx context.Context, postID string) ([]comments.AuthorComment, error)
}
