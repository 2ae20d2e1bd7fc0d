// Package middleware provides HTTP middleware for the Gin framework.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taman-digital/internal/metrics"
)

// unlabeledPaths are served without being recorded.
var unlabeledPaths = map[string]bool{
	"/metrics": true,
	"/live":    true,
}

// Metrics returns a Gin middleware that records Prometheus metrics for HTTP requests.
// Paths are labeled by route template so post ids do not create new series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if unlabeledPaths[c.FullPath()] {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
