package catalog

import (
	"context"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
)

// Catalog is the business catalog service as seen by the orchestrator.
// The HTTP implementation is in client.go.
// Tests use a hand-written mock (mock_catalog.go).
type Catalog interface {
	// ListItems returns up to limit businesses at address. exclude is
	// advisory: callers must still de-duplicate.
	ListItems(ctx context.Context, address string, limit int, exclude []int64) ([]domain.CandidateItem, error)
	// GetItem fails with domain.ErrNotFound for unknown ids.
	GetItem(ctx context.Context, id int64) (domain.CandidateItem, error)
	// NextUnseen fails with domain.ErrNotFound when nothing outside exclude
	// remains at location.
	NextUnseen(ctx context.Context, location string, listID int64, exclude []int64) (domain.CandidateItem, error)
}
