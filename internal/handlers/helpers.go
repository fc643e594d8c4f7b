package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "stocks/internal/errors"
	"stocks/internal/logger"
	"stocks/internal/middleware"
	"stocks/internal/pagination"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondWithError writes a consistent error response: JSON under /api, the
// error page elsewhere. If the error is an *AppError it uses the error's
// status code, code, and message. Otherwise it logs the unexpected error and
// returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		middleware.RenderError(c, appErr)
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	middleware.RenderError(c, apperrors.ErrInternalServer)
}

// render answers with payload as JSON for API requests and with the named
// template otherwise.
func render(c *gin.Context, name string, payload interface{}, page gin.H) {
	if middleware.IsAPIRequest(c) {
		c.JSON(http.StatusOK, payload)
		return
	}
	c.HTML(http.StatusOK, name, page)
}

// bindPage parses page and page_size query parameters.
func bindPage(c *gin.Context) (pagination.PageRequest, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return page, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return page, nil
}

// formErrors turns a binding error into messages shown next to a form.
func formErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "ticker":
		return fmt.Sprintf("%q is not a valid ticker", fe.Value())
	case "price_type":
		return fmt.Sprintf("%q is not a price type (open, close, low, high)", fe.Value())
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be a number", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
