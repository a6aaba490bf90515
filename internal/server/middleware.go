package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/TechharaInc/Tanaka/pkg/log/ctxlogger"
	"github.com/TechharaInc/Tanaka/pkg/telemetry/correlation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-Id"

// RequestLogger logs each request with its correlation id.
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := c.Request.Context()
		if rid := strings.TrimSpace(c.GetHeader(headerRequestID)); rid != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, rid)
		}
		ctx, rid := correlation.EnsureCorrelationID(ctx)
		c.Header(headerRequestID, rid)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, zap.String("error_type", classifyError(lastErr.Err)))
		}

		log := ctxlogger.WithContext(c.Request.Context(), base)
		switch {
		case route == "/metrics" || route == "/health":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}
