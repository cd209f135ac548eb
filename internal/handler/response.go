package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"imagevault/internal/apperrors"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// respondSuccess wraps payloads in the shared envelope. Every endpoint
// answers with {success, message, data, timestamp}.
func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success":   true,
		"message":   message,
		"data":      data,
		"timestamp": timestamp(),
	})
}

// respondError renders any error through the taxonomy. Unknown errors
// become opaque 500s; the cause stays in the log.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(appErr))
	}

	body := gin.H{
		"success":    false,
		"message":    appErr.Message,
		"error_code": appErr.Code,
		"timestamp":  timestamp(),
	}
	if appErr.Details != nil {
		body["details"] = errorDetails(appErr.Details)
	}

	c.JSON(appErr.HTTPStatus, body)
}

func errorDetails(details any) any {
	if msg, ok := details.(string); ok {
		return gin.H{"errors": []gin.H{{"message": msg}}}
	}
	return details
}
