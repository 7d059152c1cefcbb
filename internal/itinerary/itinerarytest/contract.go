// Package itinerarytest holds the behavioural contract every itinerary.Store
// implementation must satisfy.
package itinerarytest

import (
	"context"
	"errors"
	"testing"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
)

type CleanupFunc = func()

// StoreFactory returns a store in which listID exists and has no entries.
type StoreFactory func(t *testing.T) (store itinerary.Store, listID int64, cleanup CleanupFunc)

func RunStore(t *testing.T, newStore StoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, listID, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	entries, err := store.ListEntries(ctx, listID, "")
	if err != nil {
		t.Fatalf("ListEntries(empty): %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}

	if _, err := store.ListEntries(ctx, listID+1_000_000, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ListEntries(unknown list): expected ErrNotFound, got %v", err)
	}

	late, err := store.CreateEntry(ctx, listID, 2, domain.DayMon, "11:00-13:00")
	if err != nil {
		t.Fatalf("CreateEntry(late): %v", err)
	}
	early, err := store.CreateEntry(ctx, listID, 1, domain.DayMon, "09:00-11:00")
	if err != nil {
		t.Fatalf("CreateEntry(early): %v", err)
	}
	if _, err := store.CreateEntry(ctx, listID, 3, domain.DayTue, "10:00-12:00"); err != nil {
		t.Fatalf("CreateEntry(tue): %v", err)
	}
	if late.ItineraryID == 0 || late.ListID != listID || late.BusinessID != 2 || late.Day != domain.DayMon {
		t.Fatalf("unexpected created entry: %+v", late)
	}

	mon, err := store.ListEntries(ctx, listID, domain.DayMon)
	if err != nil {
		t.Fatalf("ListEntries(mon): %v", err)
	}
	if len(mon) != 2 || mon[0].ItineraryID != early.ItineraryID || mon[1].ItineraryID != late.ItineraryID {
		t.Fatalf("expected mon entries ordered by times, got %+v", mon)
	}

	all, err := store.ListEntries(ctx, listID, "")
	if err != nil {
		t.Fatalf("ListEntries(all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}

	updated, err := store.UpdateTimes(ctx, listID, late.ItineraryID, "13:00-15:00")
	if err != nil {
		t.Fatalf("UpdateTimes: %v", err)
	}
	if updated.Times != "13:00-15:00" || updated.BusinessID != 2 {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}
	if _, err := store.UpdateTimes(ctx, listID, late.ItineraryID+1_000_000, "09:00-10:00"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateTimes(unknown): expected ErrNotFound, got %v", err)
	}

	deleted, err := store.DeleteEntry(ctx, listID, 1)
	if err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if deleted == nil || deleted.ItineraryID != early.ItineraryID {
		t.Fatalf("expected deleted entry %d, got %+v", early.ItineraryID, deleted)
	}
	again, err := store.DeleteEntry(ctx, listID, 1)
	if err != nil {
		t.Fatalf("DeleteEntry(again): %v", err)
	}
	if again != nil {
		t.Fatalf("expected absent on second delete, got %+v", again)
	}
}
