package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	appctx "artfolio/internal/core/context"
	"artfolio/internal/domain/auth"
)

const (
	// HeaderRefreshToken carries the long-lived refresh token.
	HeaderRefreshToken = "X-Refresh-Token"

	// HeaderAccessToken returns a reissued access token. Clients must
	// replace their stored token when this header is present.
	HeaderAccessToken = "X-Access-Token"
)

// CredentialResolver turns presented tokens into an identity,
// transparently reissued when only the refresh token is still valid.
type CredentialResolver interface {
	Resolve(ctx context.Context, accessToken, refreshToken string) (*auth.Identity, error)
}

// Auth validates session tokens and populates the user context.
// An expired access token with a valid refresh token passes, and the
// fresh access token rides back on the response headers.
func Auth(resolver CredentialResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c.Request.Context(),
			bearerToken(c), c.GetHeader(HeaderRefreshToken))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		applyIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth resolves the identity if tokens are present but lets
// anonymous requests through. Listing endpoints use it to compute
// viewer-specific fields like the favorited flag.
func OptionalAuth(resolver CredentialResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		access := bearerToken(c)
		refresh := c.GetHeader(HeaderRefreshToken)
		if access == "" && refresh == "" {
			c.Next()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), access, refresh)
		if err == nil && identity != nil {
			applyIdentity(c, identity)
		}

		c.Next()
	}
}

// RequireUser rejects requests whose identity was not resolved. Used
// after OptionalAuth on routes that mix both policies.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetUsername(c.Request.Context()) == "" {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func applyIdentity(c *gin.Context, identity *auth.Identity) {
	ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{Username: identity.Username})
	c.Request = c.Request.WithContext(ctx)
	c.Set("username", identity.Username)

	if identity.ReissuedAccessToken != "" {
		c.Header(HeaderAccessToken, identity.ReissuedAccessToken)
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
