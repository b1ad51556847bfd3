package middleware

import (
	"strconv"
	"time"

	"github.com/SscSPs/host_ledger/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records the duration of each request by matched route.
func MetricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
