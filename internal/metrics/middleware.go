package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GinMiddleware counts dashboard requests by matched route.
func GinMiddleware(collector *Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.ObserveHTTP(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	}
}
