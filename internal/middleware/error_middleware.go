package middleware

import (
	"net/http"

	"uslugo/internal/transport/httpdto"
	"uslugo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler is the fallback for errors attached via c.Error that no
// handler turned into a response. Handlers that already wrote a body
// pass through untouched.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}

		if l != nil {
			l.WithContext(c.Request.Context()).Error("request failed",
				zap.Int("status", status), zap.Error(err))
		}
		c.JSON(status, httpdto.NewStatusErrorResponse(status, err.Error()))
	}
}
