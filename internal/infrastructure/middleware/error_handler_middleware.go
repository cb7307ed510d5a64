package middleware

import (
	"net/http"

	apperrors "paystream/pkg/errors"
	"paystream/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware converts errors attached to the gin context into
// structured JSON responses with taxonomy codes.
func ErrorHandlerMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperrors.GetAppError(err)
		if appErr == nil {
			appErr = apperrors.NewInternal(err)
		}

		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"code", appErr.Code,
				"category", appErr.Category,
				"path", c.Request.URL.Path,
				"error", err,
			)
		} else {
			log.Debugw("request rejected",
				"code", appErr.Code,
				"category", appErr.Category,
				"path", c.Request.URL.Path,
			)
		}

		if !c.Writer.Written() {
			c.JSON(appErr.HTTPStatus, gin.H{
				"error": gin.H{
					"code":     appErr.Code,
					"category": appErr.Category,
					// Binding errors can embed long client payloads.
					"message": utils.TruncateString(appErr.Message, 256),
				},
			})
		}
	}
}

// RecoveryMiddleware recovers from panics and returns a 500 response.
func RecoveryMiddleware(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": gin.H{
							"code":     apperrors.ErrCodeInternal,
							"category": apperrors.CategoryInternal,
							"message":  "internal error",
						},
					})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
