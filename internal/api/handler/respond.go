package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error":          msg,
		"correlation_id": reqctx.CorrelationID(r.Context()),
	})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrInvalidTokenFormat):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
	case domain.IsNotFound(err):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyActive),
		errors.Is(err, domain.ErrAddressMismatch):
		respondError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		respondError(w, r, status, domain.ErrUpstreamUnavailable.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// int64Param reads a positive integer from a URL parameter or, when
// fromQuery is set, the query string.
func int64Param(r *http.Request, name string, fromQuery bool) (int64, error) {
	raw := chi.URLParam(r, name)
	if fromQuery {
		raw = r.URL.Query().Get(name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return id, nil
}
