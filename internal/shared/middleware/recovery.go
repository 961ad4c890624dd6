package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	apperrors "github.com/readmanga/server/internal/shared/errors"
	"github.com/readmanga/server/internal/shared/logger"
)

// Recovery returns a middleware that recovers from panics.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					"panic", rec,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				appErr := apperrors.Internal("", nil)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   appErr.Code,
					"message": appErr.Message,
				})
			}
		}()
		c.Next()
	}
}

// NotFound answers unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		appErr := apperrors.NotFound("")
		c.JSON(appErr.StatusCode, gin.H{"message": appErr.Message})
	}
}
