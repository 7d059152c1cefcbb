package itinerary_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary/itinerarytest"
	"github.com/wayfarer/itinerary-orchestrator/internal/ratelimiter"
	"github.com/wayfarer/itinerary-orchestrator/internal/upstream"
)

func TestContract_MockStore(t *testing.T) {
	itinerarytest.RunStore(t, func(t *testing.T) (itinerary.Store, int64, itinerarytest.CleanupFunc) {
		return itinerary.NewMockStore(10), 10, nil
	})
}

func TestContract_HTTPClient(t *testing.T) {
	itinerarytest.RunStore(t, func(t *testing.T) (itinerary.Store, int64, itinerarytest.CleanupFunc) {
		srv := httptest.NewServer(listService(itinerary.NewMockStore(10)))
		up := upstream.New(ratelimiter.UpstreamLists, srv.URL+"/lists", time.Second, upstream.Options{})
		return itinerary.NewClient(up), 10, srv.Close
	})
}

// listService is a minimal stand-in for the list service's itinerary routes.
func listService(store *itinerary.MockStore) http.Handler {
	r := chi.NewRouter()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	fail := func(w http.ResponseWriter, err error) {
		if errors.Is(err, domain.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}
	param := func(r *http.Request, name string) int64 {
		v, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
		return v
	}

	r.Get("/lists/{listID}/itineraries", func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.ListEntries(r.Context(), param(r, "listID"), domain.Day(r.URL.Query().Get("day")))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})
	r.Post("/lists/{listID}/itineraries", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			BusinessID int64      `json:"business_id"`
			Day        domain.Day `json:"day"`
			Times      string     `json:"times"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		e, err := store.CreateEntry(r.Context(), param(r, "listID"), body.BusinessID, body.Day, body.Times)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	})
	r.Put("/lists/{listID}/itineraries/{itineraryID}/times", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Times string `json:"times"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		e, err := store.UpdateTimes(r.Context(), param(r, "listID"), param(r, "itineraryID"), body.Times)
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})
	r.Delete("/lists/{listID}/itineraries/{businessID}", func(w http.ResponseWriter, r *http.Request) {
		e, err := store.DeleteEntry(r.Context(), param(r, "listID"), param(r, "businessID"))
		if err != nil {
			fail(w, err)
			return
		}
		if e == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})
	return r
}
