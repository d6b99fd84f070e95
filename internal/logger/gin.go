package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware returns a Gin middleware that logs each request using slog.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"ip", c.ClientIP(),
			"latency_ms", float64(latency.Microseconds()) / 1000.0,
		}

		if len(c.Errors) > 0 {
			slog.Error("http request", append(attrs, "err", c.Errors.String())...)
			return
		}
		slog.Info("http request", attrs...)
	}
}
