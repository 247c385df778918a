package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/mtax/declaration-engine/internal/logger"
	"go.uber.org/zap"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var errInvalidBody = errors.New("invalid request body")

// ErrorHandlingMiddleware renders the last error attached to the context as
// the JSON error envelope, unless the handler already wrote a response.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			logger.FromGin(c).Error("request failed", zap.Error(lastErr.Err))
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, domain.ErrSettingsNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "settings_not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrInvalidDeduction),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidSettings),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
