package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoggingMiddleware assigns each request a short id, then logs method, route,
// status and latency once the handler chain finishes. Health probes are logged
// at debug so the load balancer does not flood the info stream.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()[:8]
		c.Set("request_id", requestID)

		c.Next()

		evt := log.Info()
		if c.FullPath() == "/v1/health" {
			evt = log.Debug()
		}
		evt = evt.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())
		if userID := c.GetString("user_id"); userID != "" {
			evt = evt.Str("user_id", userID)
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Msg("http request")
	}
}
