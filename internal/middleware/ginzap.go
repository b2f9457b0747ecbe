package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GinZap retorna um middleware que loga cada requisição com zap.
// Baseado em https://github.com/gin-contrib/zap (simplificado).
func GinZap(logger *zap.Logger, timeFormat string, utc bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		end := time.Now()
		latency := end.Sub(start)
		if utc {
			end = end.UTC()
		}

		status := c.Writer.Status()
		fields := []zapcore.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", logPath(c)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Duration("latency", latency),
		}
		if u := CurrentUser(c); u != nil {
			fields = append(fields, zap.Uint("user_id", u.ID))
		}
		if timeFormat != "" {
			fields = append(fields, zap.String("time", end.Format(timeFormat)))
		}

		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				logger.Error("Request error", append(fields, zap.String("error", e))...)
			}
			return
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("Client error", fields...)
		default:
			logger.Info("Request processed", fields...)
		}
	}
}

// GinRecovery recupera panics, loga com stacktrace e chama onPanic para
// responder 500. Com onPanic nil responde texto simples.
func GinRecovery(logger *zap.Logger, onPanic gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", logPath(c)),
					zap.String("ip", c.ClientIP()),
					zap.Stack("stacktrace"),
				)
				if onPanic != nil {
					onPanic(c)
				}
				if !c.Writer.Written() {
					c.String(http.StatusInternalServerError, "Internal Server Error")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// logPath keeps reset tokens out of the logs by using the route template.
func logPath(c *gin.Context) string {
	if route := c.FullPath(); strings.Contains(route, ":token") {
		return route
	}
	return c.Request.URL.Path
}
