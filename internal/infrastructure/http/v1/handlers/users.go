package handlers

import (
	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	"artfolio/internal/domain/users"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// UsersHandler handles profile endpoints.
type UsersHandler struct {
	*BaseHandler
	service *users.Service
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(base *BaseHandler, service *users.Service) *UsersHandler {
	return &UsersHandler{BaseHandler: base, service: service}
}

// GetProfile handles GET /users/:username.
func (h *UsersHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.service.GetProfile(ctx, c.Param("username"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, profile)
}

// EditProfile handles PUT /users/me (multipart).
func (h *UsersHandler) EditProfile(c *gin.Context) {
	ctx := c.Request.Context()

	username, ok := h.MustUsername(c)
	if !ok {
		return
	}

	var form dto.EditProfileForm
	if !h.BindForm(c, &form) {
		return
	}

	req := users.EditRequest{Summary: form.Summary}

	if fileHeader, err := c.FormFile("profile_pic"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.Error(c, apperror.NewValidation("unreadable image").WithDetail("field", "profile_pic"))
			return
		}
		defer file.Close()
		req.ProfilePic = file
	}

	if fileHeader, err := c.FormFile("banner_pic"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.Error(c, apperror.NewValidation("unreadable image").WithDetail("field", "banner_pic"))
			return
		}
		defer file.Close()
		req.BannerPic = file
	}

	profile, err := h.service.EditProfile(ctx, username, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, profile)
}
