package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// written by the handler so we can log it after the fact.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// subjectHolder lets Identity, which runs further down the chain, report
// the authenticated subject back to RequestLogger.
type subjectHolder struct{ id string }

type subjectKey struct{}

// RequestLogger returns a middleware that emits a structured zap log line
// for every completed HTTP request, including the correlation ID.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			subject := &subjectHolder{}

			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), subjectKey{}, subject)))

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("correlation_id", reqctx.CorrelationID(r.Context())),
				zap.String("subject_id", subject.id),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
