// Package middleware provides the HTTP middleware chain for the gateway:
// request ids, request logging, panic recovery and rate limiting.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FACorreiaa/wanderlog-api/pkg/observability"
)

// statusWriter captures the status code before it reaches the underlying
// response writer.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging logs every request with duration and status and feeds the request
// duration histogram.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", duration.String(),
				"duration_ms", duration.Milliseconds(),
				"peer", r.RemoteAddr,
			}
			if requestID, ok := RequestIDFromContext(r.Context()); ok && requestID != "" {
				fields = append(fields, "request_id", requestID)
			}

			if sw.status >= http.StatusInternalServerError {
				logger.Error("request failed", fields...)
			} else {
				logger.Info("request completed", fields...)
			}

			observability.HTTPRequestDuration.
				WithLabelValues(r.Method, strconv.Itoa(sw.status)).
				Observe(duration.Seconds())
		})
	}
}
