// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	appctx "artfolio/internal/core/context"
	"artfolio/internal/domain/page"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates a JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindForm binds and validates multipart form fields.
func (h *BaseHandler) BindForm(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid form data").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindPagination binds and validates page_no and limit.
func (h *BaseHandler) BindPagination(c *gin.Context) (page.Request, bool) {
	var q dto.PaginationRequest
	if !h.BindQuery(c, &q) {
		return page.Request{}, false
	}
	req, err := q.ToPage()
	if err != nil {
		h.Error(c, err)
		return page.Request{}, false
	}
	return req, true
}

// Error registers the error on the Gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Username extracts the authenticated username, empty when anonymous.
func (h *BaseHandler) Username(c *gin.Context) string {
	return appctx.GetUsername(c.Request.Context())
}

// MustUsername extracts the authenticated username or rejects with 401.
func (h *BaseHandler) MustUsername(c *gin.Context) (string, bool) {
	username := h.Username(c)
	if username == "" {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return "", false
	}
	return username, true
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with an ID.
func (h *BaseHandler) Created(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: id})
}

// NoContent sends a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Success sends a 200 success envelope.
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
