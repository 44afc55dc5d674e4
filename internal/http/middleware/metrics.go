package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scorecard-dashboard/internal/observability"
)

// Metrics records API request counts, latency and in-flight requests. The
// scrape endpoint itself is not counted.
func Metrics(m *observability.Metrics, skipRoutes ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]bool, len(skipRoutes))
	for _, r := range skipRoutes {
		skip[r] = true
	}
	return func(c *gin.Context) {
		if skip[c.FullPath()] {
			c.Next()
			return
		}
		start := time.Now()
		defer m.TrackInflight()()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
