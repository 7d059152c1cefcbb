package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// Identity validates the X-Token header and attaches the resulting
// RequestContext. Requests without a usable token never reach a handler.
// Must run after CorrelationID.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, err := reqctx.ParseToken(r.Header.Get(reqctx.HeaderToken))
			correlationID := reqctx.CorrelationID(r.Context())
			if err != nil {
				logger.Info("request rejected",
					zap.String("path", r.URL.Path),
					zap.String("correlation_id", correlationID),
					zap.Error(err),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":          err.Error(),
					"correlation_id": correlationID,
				})
				return
			}
			rc.CorrelationID = correlationID
			if h, ok := r.Context().Value(subjectKey{}).(*subjectHolder); ok {
				h.id = rc.SubjectID
			}
			next.ServeHTTP(w, r.WithContext(reqctx.WithRequestContext(r.Context(), rc)))
		})
	}
}
