package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artfolio/internal/domain/auth"
	"artfolio/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, tokens, err := h.service.Register(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SessionResponse{
		User:   dto.FromAccount(account),
		Tokens: dto.FromTokenPair(tokens),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, tokens, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SessionResponse{
		User:   dto.FromAccount(account),
		Tokens: dto.FromTokenPair(tokens),
	})
}

// Me handles GET /auth/me. Reaching the handler means the auth
// middleware resolved the identity, possibly reissuing an access token
// on the response headers.
func (h *AuthHandler) Me(c *gin.Context) {
	username, ok := h.MustUsername(c)
	if !ok {
		return
	}
	h.OK(c, gin.H{"user_name": username})
}

// Logout handles POST /auth/logout. Sessions are stateless JWTs, so
// logout is an acknowledgement that the client drops its tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Success(c, "logged out")
}
