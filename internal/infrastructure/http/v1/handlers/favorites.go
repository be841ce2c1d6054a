package handlers

import (
	"github.com/gin-gonic/gin"

	"artfolio/internal/domain/favorites"
)

// FavoritesHandler handles favorite endpoints.
type FavoritesHandler struct {
	*BaseHandler
	service *favorites.Service
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(base *BaseHandler, service *favorites.Service) *FavoritesHandler {
	return &FavoritesHandler{BaseHandler: base, service: service}
}

// Favorite handles POST /posts/:post_id/favorite. Re-favoriting just
// refreshes the favorite timestamp.
func (h *FavoritesHandler) Favorite(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	if err := h.service.Favorite(ctx, username, c.Param("post_id")); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "favorited")
}

// Unfavorite handles DELETE /posts/:post_id/favorite.
func (h *FavoritesHandler) Unfavorite(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	if err := h.service.Unfavorite(ctx, username, c.Param("post_id")); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
