package dto

// UploadPostForm is the multipart POST /posts body. The image itself
// arrives as the "post_pic" file part.
type UploadPostForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
}

// SearchRequest is the GET /posts/search query.
type SearchRequest struct {
	PaginationRequest
	Query string `form:"query" binding:"required"`
}

// AddCommentRequest is the POST /posts/:post_id/comments body.
type AddCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}
