package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/comments"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// CommentsHandler handles comment endpoints.
type CommentsHandler struct {
	*BaseHandler
	service *comments.Service
}

// NewCommentsHandler creates a new comments handler.
func NewCommentsHandler(base *BaseHandler, service *comments.Service) *CommentsHandler {
	return &CommentsHandler{BaseHandler: base, service: service}
}

// Add handles POST /posts/:post_id/comments.
func (h *CommentsHandler) Add(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	var req dto.AddCommentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	comment, err := h.service.Add(ctx, username, c.Param("post_id"), req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"comment_id": comment.ID,
		"comment":    comment.Content,
		"post_date":  comment.CreatedAt,
	})
}

// Remove handles DELETE /comments/:comment_id. Removing a comment the
// user did not author succeeds without effect.
func (h *CommentsHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid comment id").WithDetail("comment_id", c.Param("comment_id")))
		return
	}

	if err := h.service.Remove(ctx, username, commentID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
