package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
	"github.com/veritype/veritype/internal/infrastructure/monitoring/prometheus"
)

// Logging logs one line per request and records HTTP metrics when metrics is
// non-nil.
func Logging(logger logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")

	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("request_id", GetRequestID(c)),
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("elapsed", elapsed),
			logging.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}

		if metrics != nil {
			prometheus.RecordHTTPRequest(metrics, c.Request.Method, path, status,
				elapsed, c.Request.ContentLength, int64(c.Writer.Size()))
		}
	}
}
