package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/platform/ctxutil"
	"github.com/yungbote/scorecard-dashboard/internal/platform/logger"
)

// RequestLogger writes one line per request once the handler chain is done:
// errors for 5xx, warnings for 4xx.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", routeOf(c),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request served", fields...)
		}
	}
}

// routeOf is the matched route pattern, or the raw path when nothing matched.
func routeOf(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return c.Request.URL.Path
}
