package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request and recovers from panics. Panic
// details and stacks go to the log only, never to the client.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("module", "http"))

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("panic recovered",
					append(requestAttrs(c, start),
						slog.String("error", fmt.Sprintf("%v", recovered)),
						slog.String("stack", string(debug.Stack())),
					)...,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			attrs := requestAttrs(c, start)
			for _, err := range c.Errors {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				logger.Error("request failed", attrs...)
			case status >= http.StatusBadRequest:
				logger.Warn("request rejected", attrs...)
			default:
				logger.Info("request", attrs...)
			}
		}()

		c.Next()
	}
}

func requestAttrs(c *gin.Context, start time.Time) []any {
	attrs := []any{
		slog.Int("status", c.Writer.Status()),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("client_ip", c.ClientIP()),
		slog.Duration("latency", time.Since(start)),
	}
	if id, ok := CurrentIdentity(c); ok {
		attrs = append(attrs, slog.String("user_id", id.UserID), slog.String("role", string(id.Role)))
	}
	if rid := requestID(c); rid != "" {
		attrs = append(attrs, slog.String("request_id", rid))
	}
	return attrs
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
