package middleware

import (
	"time"

	"uslugo/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one structured line per request once the
// handler chain finishes. Request-scoped fields (request id, user id)
// come off the context so lines correlate with the service and
// websocket logs. The query string is never logged; /ws carries its
// credential there.
func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log == nil {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		entry := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			entry.Error("request", fields...)
		case status >= 400:
			entry.Warn("request", fields...)
		default:
			entry.Info("request", fields...)
		}
	}
}
