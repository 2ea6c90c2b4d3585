package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"transit-lc/internal/observability"
)

// Metrics records request counts and latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched paths share one label to bound cardinality.
			path = "unmatched"
		}
		observability.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
