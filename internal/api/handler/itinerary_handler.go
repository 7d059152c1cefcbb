package handler

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

// ItineraryHandler passes itinerary reads and writes through to the store.
type ItineraryHandler struct {
	store    itinerary.Store
	schedule timeblock.Schedule
	logger   *zap.Logger
}

func NewItineraryHandler(store itinerary.Store, schedule timeblock.Schedule, logger *zap.Logger) *ItineraryHandler {
	return &ItineraryHandler{store: store, schedule: schedule, logger: logger}
}

type createEntryBody struct {
	BusinessID int64  `json:"business_id"`
	Day        string `json:"day"`
	Times      string `json:"times"`
}

type updateTimesBody struct {
	Times string `json:"times"`
}

// Create handles POST /api/v1/lists/{listID}/itineraries
//
// When times is omitted the default schedule is written.
func (h *ItineraryHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "listID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}
	var body createEntryBody
	if !decodeJSON(w, r, &body) {
		return
	}
	req := domain.CreateEntryRequest{ListID: listID, BusinessID: body.BusinessID, Day: body.Day, Times: body.Times}
	if err := req.Validate(); err != nil {
		mapError(w, r, err)
		return
	}

	times := strings.TrimSpace(req.Times)
	if times == "" {
		times = h.schedule.Generate()
	} else if err := validateTimes(times); err != nil {
		mapError(w, r, err)
		return
	}
	day, _ := domain.ParseDay(req.Day)

	entry, err := h.store.CreateEntry(r.Context(), listID, req.BusinessID, day, times)
	if err != nil {
		reqctx.Logger(r.Context(), h.logger).Warn("create itinerary entry failed",
			zap.Int64("list_id", listID),
			zap.Error(err),
		)
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// List handles GET /api/v1/lists/{listID}/itineraries?day=
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "listID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}
	var day domain.Day
	if raw := r.URL.Query().Get("day"); raw != "" {
		if day, err = domain.ParseDay(raw); err != nil {
			mapError(w, r, err)
			return
		}
	}

	entries, err := h.store.ListEntries(r.Context(), listID, day)
	if err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"count": len(entries),
	})
}

// UpdateTimes handles PUT /api/v1/lists/{listID}/itineraries/{itineraryID}/times
func (h *ItineraryHandler) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "listID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}
	itineraryID, err := int64Param(r, "itineraryID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}
	var body updateTimesBody
	if !decodeJSON(w, r, &body) {
		return
	}
	times := strings.TrimSpace(body.Times)
	if err := validateTimes(times); err != nil {
		mapError(w, r, err)
		return
	}

	entry, err := h.store.UpdateTimes(r.Context(), listID, itineraryID, times)
	if err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/v1/lists/{listID}/itineraries/{businessID}
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID, err := int64Param(r, "listID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}
	businessID, err := int64Param(r, "businessID", false)
	if err != nil {
		mapError(w, r, err)
		return
	}

	entry, err := h.store.DeleteEntry(r.Context(), listID, businessID)
	if err != nil {
		mapError(w, r, err)
		return
	}
	if entry == nil {
		mapError(w, r, fmt.Errorf("business %d on list %d: %w", businessID, listID, domain.ErrNotFound))
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func validateTimes(times string) error {
	_, err := timeblock.Parse(times)
	return err
}
