package middleware

import (
	"time"

	"digimarket.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts and latency per route template.
func MetricsMiddleware(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
