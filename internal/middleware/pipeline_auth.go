package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "stocks/internal/errors"
)

// PipelineAuthMiddleware guards the endpoints that start fetch runs. It
// validates the X-API-Key header against the configured pipeline API key and
// refuses every request when no key is configured.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			RenderError(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			RenderError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
