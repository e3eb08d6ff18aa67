package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roomie/internal/logging"
	"roomie/internal/metrics"
)

// RequestLogger logs each request once it completes and feeds the HTTP
// metrics. Successful probes of noisy paths are skipped.
func RequestLogger(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if logger == nil {
		logger = logging.Discard()
	}

	return func(c *gin.Context) {
		startedAt := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		defer func() {
			status := c.Writer.Status()
			latency := time.Since(startedAt)

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(method, route, status, latency)

			if status < http.StatusBadRequest && len(c.Errors) == 0 && isNoisyPath(path) {
				return
			}

			fields := []any{
				"request_id", GetRequestID(c),
				"method", method,
				"path", path,
				"status", status,
				"latency", latency,
				"bytes", c.Writer.Size(),
			}
			if len(c.Errors) > 0 {
				fields = append(fields, "errors", c.Errors.String())
			}

			switch {
			case status >= 500:
				logger.Error("http_request", fields...)
			case status >= 400:
				logger.Warn("http_request", fields...)
			default:
				logger.Info("http_request", fields...)
			}
		}()

		c.Next()
	}
}

func isNoisyPath(path string) bool {
	switch path {
	case "/health", "/version", "/metrics":
		return true
	default:
		return false
	}
}
