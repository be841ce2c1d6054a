package dto

import (
	"time"

	"artfolio/internal/domain/auth"
)

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Username string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request into domain credentials.
func (r RegisterRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Username string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request into domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// TokenResponse carries issued session credentials.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// FromTokenPair converts domain tokens into the response shape.
func FromTokenPair(t *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.ExpiresAt,
	}
}

// AccountResponse is the authenticated user view.
type AccountResponse struct {
	Username   string  `json:"user_name"`
	ProfilePic *string `json:"profile_pic"`
	BannerPic  *string `json:"banner_pic"`
}

// FromAccount converts a domain account into the response shape.
func FromAccount(a *auth.Account) AccountResponse {
	return AccountResponse{
		Username:   a.Username,
		ProfilePic: a.ProfilePic,
		BannerPic:  a.BannerPic,
	}
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User   AccountResponse `json:"user"`
	Tokens TokenResponse   `json:"tokens"`
}
