package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// CorrelationID reads the X-Correlation-ID header from the incoming request.
// If absent, a new UUID is generated. The value is stored on the request
// context and echoed back in the response header so callers can trace
// their request through logs and into downstream services.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(reqctx.HeaderCorrelationID)
		if id == "" {
			id = uuid.New().String()
		}
		ctx := reqctx.WithCorrelationID(r.Context(), id)
		w.Header().Set(reqctx.HeaderCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
