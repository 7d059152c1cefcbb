package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayfarer/itinerary-orchestrator/internal/db"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary/itinerarytest"
	"github.com/wayfarer/itinerary-orchestrator/internal/repository"
)

// TestPgItineraryStore runs the store contract against a real database.
// Set TEST_DATABASE_URL to enable it.
func TestPgItineraryStore(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if err := db.Migrate(url, "../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	itinerarytest.RunStore(t, func(t *testing.T) (itinerary.Store, int64, itinerarytest.CleanupFunc) {
		ctx := context.Background()
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		store := repository.NewPgItineraryStore(pool)
		listID, err := store.CreateList(ctx, t.Name())
		if err != nil {
			pool.Close()
			t.Fatalf("create list: %v", err)
		}
		return store, listID, func() {
			_, _ = pool.Exec(context.Background(), `DELETE FROM lists WHERE list_id = $1`, listID)
			pool.Close()
		}
	})
}
