package middleware

import (
	"strconv"
	"time"

	"birthdaybook/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics é um middleware Gin para coletar métricas Prometheus para requisições HTTP.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath mantém a cardinalidade baixa (/record/:id/update em vez de cada id).
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestCounter.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
