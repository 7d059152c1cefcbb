package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/aggregator"
	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// CompositeHandler serves the aggregated read endpoints.
type CompositeHandler struct {
	agg    *aggregator.Aggregator
	logger *zap.Logger
}

func NewCompositeHandler(agg *aggregator.Aggregator, logger *zap.Logger) *CompositeHandler {
	return &CompositeHandler{agg: agg, logger: logger}
}

// ViewFullList handles GET /api/v1/composite/view_full_list?list_id=
//
// @Summary  Catalog details for every business on a list
// @Tags     composite
// @Produce  json
// @Param    list_id  query     int  true  "List ID"
// @Success  200      {array}   domain.CandidateItem
// @Failure  502      {object}  map[string]string
// @Router   /api/v1/composite/view_full_list [get]
func (h *CompositeHandler) ViewFullList(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "list_id", true)
	if err != nil {
		mapError(w, r, err)
		return
	}

	items, err := h.agg.ViewFullList(r.Context(), listID)
	if err != nil {
		reqctx.Logger(r.Context(), h.logger).Warn("view_full_list failed",
			zap.Int64("list_id", listID),
			zap.Error(err),
		)
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// ServeNext handles GET /api/v1/composite/serve_next?list_id=&location=
//
// @Summary  Next catalog business at a location not yet on the list
// @Tags     composite
// @Produce  json
// @Param    list_id   query     int     true  "List ID"
// @Param    location  query     string  true  "Location"
// @Success  200       {object}  domain.CandidateItem
// @Failure  404       {object}  map[string]string
// @Router   /api/v1/composite/serve_next [get]
func (h *CompositeHandler) ServeNext(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "list_id", true)
	if err != nil {
		mapError(w, r, err)
		return
	}
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" {
		respondError(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidInput.Error()+": location must not be empty")
		return
	}

	item, err := h.agg.ServeNext(r.Context(), listID, location)
	if err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}
