// Package followings provides the follow relationship between users.
package followings

// FollowedUser is one entry of a following list, joined with the
// followed user's profile image.
type FollowedUser struct {
	Username          string  `db:"username"`
	ProfilePicID      *string `db:"profile_pic_id"`
	ProfilePicVersion *int64  `db:"profile_pic_version"`
}

// ListEntry is the resolved view of a followed user.
type ListEntry struct {
	Username   string  `json:"user_name"`
	ProfilePic *string `json:"profile_pic"`
}
