package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"campaignhub/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// FromError maps a service error to a status code and a stable error code.
// Unknown errors are logged and reported as a generic 500.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		slog.Default().Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		Error(c, status, code, "Internal server error")
		return
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Details) > 0 {
		ErrorWithDetails(c, status, code, verr.Message, verr.Details)
		return
	}

	Error(c, status, code, err.Error())
}

func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
	case errors.Is(err, domain.ErrFileUpload):
		return http.StatusBadRequest, "FILE_UPLOAD_ERROR"
	case errors.Is(err, domain.ErrGeolocation):
		return http.StatusBadRequest, "GEOLOCATION_ERROR"
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
