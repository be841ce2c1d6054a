// Package users provides profile viewing and editing.
package users

import (
	"io"

	"artfolio/internal/core/apperror"
)

// Profile is the public view of an account.
type Profile struct {
	Username   string  `json:"user_name"`
	ProfilePic *string `json:"profile_pic"`
	BannerPic  *string `json:"banner_pic"`
	Summary    string  `json:"summary"`
}

// ProfileRow is the storage projection of profile fields.
type ProfileRow struct {
	Username          string  `db:"username"`
	ProfilePicID      *string `db:"profile_pic_id"`
	ProfilePicVersion *int64  `db:"profile_pic_version"`
	BannerPicID       *string `db:"banner_pic_id"`
	BannerPicVersion  *int64  `db:"banner_pic_version"`
	Summary           *string `db:"summary"`
}

// EditRequest carries profile changes. Nil fields are left untouched.
type EditRequest struct {
	Summary    *string
	ProfilePic io.Reader
	BannerPic  io.Reader
}

const maxSummaryLen = 2000

// Validate rejects malformed input before any database work.
func (r EditRequest) Validate() error {
	if r.Summary != nil && len(*r.Summary) > maxSummaryLen {
		return apperror.NewValidation("summary too long").
			WithDetail("field", "summary").
			WithDetail("max_length", maxSummaryLen)
	}
	if r.Summary == nil && r.ProfilePic == nil && r.BannerPic == nil {
		return apperror.NewValidation("nothing to update")
	}
	return nil
}

// ImageUpdate is the persisted result of one image upload.
type ImageUpdate struct {
	ID      string
	Version int64
}
