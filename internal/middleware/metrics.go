package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/feedback-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided
// service. The scrape endpoint is not instrumented, and requests that match no
// route share one label so scanners cannot inflate path cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if path == "/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
