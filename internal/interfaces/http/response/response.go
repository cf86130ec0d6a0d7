package response

import (
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Success sends a success response. Map payloads are merged into the envelope,
// anything else is placed under "data".
func Success(c *gin.Context, status int, data interface{}) {
	body := gin.H{"ok": true}
	switch v := data.(type) {
	case nil:
	case gin.H:
		for k, val := range v {
			body[k] = val
		}
	default:
		body["data"] = v
	}
	c.JSON(status, body)
}

// Error sends an error response
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr.Code == domainerrors.CodeInternalError {
		logger.Error(c.Request.Context(), "Unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
	}

	body := gin.H{
		"ok":      false,
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
	}
	if appErr.Code == domainerrors.CodeNoLink {
		body["retry"] = true
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and code
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"ok":      false,
		"code":    code,
		"message": message,
		"error":   message,
	})
}
