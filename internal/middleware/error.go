package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stocks/internal/errors"
	"stocks/internal/logger"
)

const apiPrefix = "/api"

// IsAPIRequest reports whether the request is served by the JSON API rather
// than the HTML pages.
func IsAPIRequest(c *gin.Context) bool {
	p := c.Request.URL.Path
	return p == apiPrefix || strings.HasPrefix(p, apiPrefix+"/")
}

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into error responses: JSON under /api, the error page elsewhere.
// Unexpected errors are logged and rendered as a generic internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
		} else {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
			appErr = apperrors.ErrInternalServer
		}

		RenderError(c, appErr)
	}
}

// RenderError writes appErr in the representation the request expects.
func RenderError(c *gin.Context, appErr *apperrors.AppError) {
	if IsAPIRequest(c) {
		c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.HTML(appErr.StatusCode, "error.html", gin.H{
		"Status":  appErr.StatusCode,
		"Code":    appErr.Code,
		"Message": appErr.Message,
	})
	c.Abort()
}
