package handlers

import (
	"github.com/gin-gonic/gin"

	"artfolio/internal/domain/followings"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// FollowingsHandler handles follow-relationship endpoints.
type FollowingsHandler struct {
	*BaseHandler
	service *followings.Service
}

// NewFollowingsHandler creates a new followings handler.
func NewFollowingsHandler(base *BaseHandler, service *followings.Service) *FollowingsHandler {
	return &FollowingsHandler{BaseHandler: base, service: service}
}

// Follow handles POST /followings.
func (h *FollowingsHandler) Follow(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	var req dto.FollowRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Follow(ctx, username, req.Username); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "followed")
}

// Unfollow handles DELETE /followings/:username.
func (h *FollowingsHandler) Unfollow(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	if err := h.service.Unfollow(ctx, username, c.Param("username")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /followings.
func (h *FollowingsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	req, ok := h.BindPagination(c)
	if !ok {
		return
	}

	result, err := h.service.List(ctx, username, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
