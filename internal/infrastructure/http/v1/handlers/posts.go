package handlers

import (
	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/posts"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// PostsHandler handles post endpoints.
type PostsHandler struct {
	*BaseHandler
	service *posts.Service
}

// NewPostsHandler creates a new posts handler.
func NewPostsHandler(base *BaseHandler, service *posts.Service) *PostsHandler {
	return &PostsHandler{BaseHandler: base, service: service}
}

// Upload handles POST /posts (multipart).
func (h *PostsHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	var form dto.UploadPostForm
	if !h.BindForm(c, &form) {
		return
	}

	fileHeader, err := c.FormFile("post_pic")
	if err != nil {
		h.Error(c, apperror.NewValidation("no image provided").WithDetail("field", "post_pic"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewValidation("unreadable image").WithDetail("field", "post_pic"))
		return
	}
	defer file.Close()

	postID, err := h.service.Upload(ctx, username, posts.UploadRequest{
		Title:       form.Title,
		Description: form.Description,
		Image:       file,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, postID)
}

// Delete handles DELETE /posts/:post_id.
func (h *PostsHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, username, c.Param("post_id")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Get handles GET /posts/:post_id. Anonymous viewers get favorited=false.
func (h *PostsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	view, comments, err := h.service.Get(ctx, c.Param("post_id"), h.Username(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"post":     view,
		"comments": comments,
	})
}

// Trending handles GET /trending.
func (h *PostsHandler) Trending(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.BindPagination(c)
	if !ok {
		return
	}

	result, err := h.service.Trending(ctx, h.Username(c), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Search handles GET /search.
func (h *PostsHandler) Search(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.SearchRequest
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := q.ToPage()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Search(ctx, q.Query, h.Username(c), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Feed handles GET /feed: posts by artists the user follows.
func (h *PostsHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	req, ok := h.BindPagination(c)
	if !ok {
		return
	}

	result, err := h.service.FollowingFeed(ctx, username, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// ListByArtist handles GET /users/:username/posts.
func (h *PostsHandler) ListByArtist(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.BindPagination(c)
	if !ok {
		return
	}

	result, err := h.service.ListByArtist(ctx, c.Param("username"), h.Username(c), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// ListFavorites handles GET /users/:username/favorites.
func (h *PostsHandler) ListFavorites(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := h.BindPagination(c)
	if !ok {
		return
	}

	result, err := h.service.ListFavoritesOf(ctx, c.Param("username"), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
