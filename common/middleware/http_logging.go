package middleware

import (
	"time"

	"restaurant-service/access"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger writes one "http_request" entry per request, at error level
// for 5xx and warn for 4xx. Authenticated requests also carry the caller's
// id and resolved role.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := make([]zap.Field, 0, 10)
		fields = append(fields,
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if rid := c.GetString("request_id"); rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}
		if v, ok := c.Get(access.ContextKey); ok {
			if actor, ok := v.(access.Actor); ok {
				fields = append(fields, zap.Uint("actor_id", actor.ID), zap.String("role", actor.Role.String()))
			}
		}

		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}
