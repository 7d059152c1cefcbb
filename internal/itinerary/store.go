package itinerary

import (
	"context"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

// Store defines every itinerary operation the orchestrator needs.
// client.go talks to the list service over HTTP; repository.PgItineraryStore
// writes to Postgres directly. Tests use a hand-written mock (mock_store.go).
type Store interface {
	// ListEntries returns the entries of listID ordered by times, optionally
	// restricted to one day (day == "" means all days). An unknown list
	// yields domain.ErrNotFound.
	ListEntries(ctx context.Context, listID int64, day domain.Day) ([]domain.ItineraryEntry, error)
	CreateEntry(ctx context.Context, listID, businessID int64, day domain.Day, times string) (domain.ItineraryEntry, error)
	UpdateTimes(ctx context.Context, listID, itineraryID int64, times string) (domain.ItineraryEntry, error)
	// DeleteEntry returns (nil, nil) when no entry for businessID exists.
	DeleteEntry(ctx context.Context, listID, businessID int64) (*domain.ItineraryEntry, error)
}
