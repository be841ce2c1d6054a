// Package comments provides commenting on posts.
package comments

import (
	"strings"
	"time"

	"artfolio/internal/core/apperror"
)

// Comment is a stored comment row.
type Comment struct {
	ID        int64     `db:"id"`
	PostID    string    `db:"post_public_id"`
	Username  string    `db:"username"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// AuthorComment is a comment joined with its author's profile image.
type AuthorComment struct {
	ID                int64     `db:"id"`
	Username          string    `db:"username"`
	ProfilePicID      *string   `db:"profile_pic_id"`
	ProfilePicVersion *int64    `db:"profile_pic_version"`
	Content           string    `db:"content"`
	CreatedAt         time.Time `db:"created_at"`
}

const maxContentLen = 5000

// ValidateContent enforces the comment content rules: at most 5000
// characters with at least one word of 3+ characters.
func ValidateContent(content string) error {
	if content == "" {
		return apperror.NewValidation("must provide a comment").
			WithDetail("field", "comment")
	}
	if len(content) > maxContentLen {
		return apperror.NewValidation("comment must be less than 5000 characters").
			WithDetail("field", "comment")
	}
	for _, token := range strings.Fields(content) {
		if len(token) >= 3 {
			return nil
		}
	}
	return apperror.NewValidation("comment must have at least one word 3 characters or longer").
		WithDetail("field", "comment")
}
