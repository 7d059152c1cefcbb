package handler

import (
	"net/http"

	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	engine *queue.Engine
}

func NewMetricsHandler(engine *queue.Engine) *MetricsHandler {
	return &MetricsHandler{engine: engine}
}

// GetMetrics handles GET /api/v1/metrics
//
// @Summary  Real-time queue depth snapshot
// @Tags     metrics
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/metrics [get]
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	respondJSON(w, http.StatusOK, map[string]any{
		"queue": map[string]any{
			"active":      snap.Active,
			"address":     snap.Address,
			"depth":       len(snap.Items),
			"target_size": snap.TargetSize,
			"seen":        snap.Seen,
		},
	})
}
