package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IGRA27/conversations-api-cloudant/internal/metrics"
)

// RequestMetricsMiddleware records per-request counters and latency.
type RequestMetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewRequestMetricsMiddleware creates a new metrics middleware instance
func NewRequestMetricsMiddleware(m *metrics.Metrics) *RequestMetricsMiddleware {
	return &RequestMetricsMiddleware{metrics: m}
}

// RequestMetrics returns a gin middleware that records method, route template
// and status for every request. The route template (not the raw URL) keeps
// label cardinality bounded.
func (rm *RequestMetricsMiddleware) RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rm.metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
