// Package auth provides registration, login and credential resolution.
package auth

import (
	"regexp"
	"time"

	"artfolio/internal/core/apperror"
)

var usernameRE = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// User is an account row. Image references point into the blob store;
// versions bust CDN caches after overwrites.
type User struct {
	Username          string     `db:"username"`
	PasswordHash      string     `db:"password_hash"`
	ProfilePicID      *string    `db:"profile_pic_id"`
	ProfilePicVersion *int64     `db:"profile_pic_version"`
	BannerPicID       *string    `db:"banner_pic_id"`
	BannerPicVersion  *int64     `db:"banner_pic_version"`
	Summary           *string    `db:"summary"`
	CreatedAt         time.Time  `db:"created_at"`
}

// Credentials is a login/registration request.
type Credentials struct {
	Username string
	Password string
}

// Validate checks username and password syntax before any database work.
func (c Credentials) Validate() error {
	if !usernameRE.MatchString(c.Username) {
		return apperror.NewValidation("username must be 3-30 characters of letters, digits or underscore").
			WithDetail("field", "user_name")
	}
	// bcrypt truncates beyond 72 bytes
	if len(c.Password) < 8 || len(c.Password) > 72 {
		return apperror.NewValidation("password must be between 8 and 72 characters").
			WithDetail("field", "password")
	}
	return nil
}

// TokenPair holds issued session credentials.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Account is the authenticated view of a user returned by login.
type Account struct {
	Username   string
	ProfilePic *string
	BannerPic  *string
}

// Identity is the result of credential resolution. When the access token
// had expired but the refresh token was still valid, ReissuedAccessToken
// carries a fresh access token the transport layer should hand back to
// the client.
type Identity struct {
	Username             string
	ReissuedAccessToken  string
}
