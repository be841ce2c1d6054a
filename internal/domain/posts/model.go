// Package posts provides artwork posts: upload, deletion and discovery.
package posts

import (
	"io"
	"time"

	"artfolio/internal/core/apperror"
)

// Post is a stored post row. PublicID doubles as the blob store object
// id of the uploaded image.
type Post struct {
	PublicID    string    `db:"public_id"`
	ArtistName  string    `db:"artist_name"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Width       int       `db:"width"`
	Height      int       `db:"height"`
	CreatedAt   time.Time `db:"created_at"`
}

// Row is the listing projection: a post joined with its artist's
// profile image, plus the viewer's favorite flag where relevant.
type Row struct {
	PublicID          string    `db:"public_id"`
	ArtistName        string    `db:"artist_name"`
	Title             string    `db:"title"`
	Description       string    `db:"description"`
	Width             int       `db:"width"`
	Height            int       `db:"height"`
	CreatedAt         time.Time `db:"created_at"`
	ProfilePicID      *string   `db:"profile_pic_id"`
	ProfilePicVersion *int64    `db:"profile_pic_version"`
	Favorited         bool      `db:"favorited"`
}

// Author is the resolved artist reference on a post view.
type Author struct {
	Username   string  `json:"user_name"`
	ProfilePic *string `json:"profile_pic"`
}

// View is the full post detail returned by Get.
type View struct {
	PostID      string    `json:"post_id"`
	Src         string    `json:"src"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Favorited   bool      `json:"favorited"`
	PostDate    time.Time `json:"post_date"`
	User        Author    `json:"user"`
}

// ListItem is the card view used by all listings.
type ListItem struct {
	PostID string `json:"post_id"`
	Src    string `json:"post_pic_url"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	User   Author `json:"user"`
}

// CommentView is a resolved comment on a post detail page.
type CommentView struct {
	CommentID int64     `json:"comment_id"`
	Poster    Author    `json:"poster"`
	Comment   string    `json:"comment"`
	PostDate  time.Time `json:"post_date"`
}

// UploadRequest carries a new post.
type UploadRequest struct {
	Title       string
	Description string
	Image       io.Reader
}

const (
	minTitleLen = 5
	maxTitleLen = 200
)

// Validate rejects malformed upload input before any storage work.
func (r UploadRequest) Validate() error {
	if r.Image == nil {
		return apperror.NewValidation("no image provided").
			WithDetail("field", "post_pic")
	}
	if r.Description == "" {
		return apperror.NewValidation("must provide description").
			WithDetail("field", "description")
	}
	if len(r.Title) < minTitleLen || len(r.Title) > maxTitleLen {
		return apperror.NewValidation("title too long or too short").
			WithDetail("field", "title")
	}
	return nil
}
