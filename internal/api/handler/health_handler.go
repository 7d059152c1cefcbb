package handler

import (
	"net/http"

	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
)

// HealthHandler serves the liveness endpoint. It needs no token, so it only
// reveals whether a queue session exists, not whose it is.
type HealthHandler struct {
	engine *queue.Engine
}

func NewHealthHandler(engine *queue.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Health handles GET /health
//
// @Summary  Liveness and queue session state
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"queue_active": h.engine.Snapshot().Active,
	})
}
