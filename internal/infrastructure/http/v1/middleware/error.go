package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"artfolio/internal/core/apperror"
	"artfolio/pkg/logger"
)

// HeaderClearCredentials tells clients to drop stored tokens. Set on
// every 401 so a stale session cannot keep retrying itself.
const HeaderClearCredentials = "X-Clear-Credentials"

// ErrorHandler transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
// This is the single place where domain errors map to HTTP.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			if appErr.HTTPStatus == http.StatusUnauthorized {
				c.Header(HeaderClearCredentials, "true")
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
			return
		}

		// Unknown error - log and return generic message
		logger.Error(c.Request.Context(), "unhandled error",
			"error", err,
		)

		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{
				"request_id": c.GetString("request_id"),
			},
		})
	}
}
