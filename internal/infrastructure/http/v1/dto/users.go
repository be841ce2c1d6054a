package dto

// EditProfileForm is the multipart PUT /users/me body. Image changes
// arrive as "profile_pic" and "banner_pic" file parts; a missing part
// leaves that image untouched.
type EditProfileForm struct {
	Summary *string `form:"summary"`
}

// FollowRequest is the POST /followings body.
type FollowRequest struct {
	Username string `json:"user_name" binding:"required"`
}
