package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/catalog"
	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// Config bounds the view_full_list fan-out.
type Config struct {
	FanoutTimeout     time.Duration
	FanoutConcurrency int
}

var DefaultConfig = Config{
	FanoutTimeout:     3 * time.Second,
	FanoutConcurrency: 16,
}

// Aggregator composes itinerary entries with catalog details.
type Aggregator struct {
	catalog catalog.Catalog
	store   itinerary.Store
	cfg     Config
	logger  *zap.Logger

	// OnDropped is called with the number of lookups dropped from a
	// view_full_list result. Optional.
	OnDropped func(n int)
}

func New(cat catalog.Catalog, store itinerary.Store, cfg Config, logger *zap.Logger) *Aggregator {
	if cfg.FanoutTimeout <= 0 {
		cfg.FanoutTimeout = DefaultConfig.FanoutTimeout
	}
	if cfg.FanoutConcurrency <= 0 {
		cfg.FanoutConcurrency = DefaultConfig.FanoutConcurrency
	}
	return &Aggregator{catalog: cat, store: store, cfg: cfg, logger: logger}
}

type lookupResult struct {
	index int
	item  domain.CandidateItem
	err   error
}

// ViewFullList returns catalog details for every business on the list.
// Lookups run concurrently under a single timeout; lookups that fail or do
// not finish in time are left out of the result. The result keeps the
// list's order.
func (a *Aggregator) ViewFullList(ctx context.Context, listID int64) ([]domain.CandidateItem, error) {
	entries, err := a.store.ListEntries(ctx, listID, "")
	if err != nil {
		return nil, upstreamErr("list itinerary entries", err)
	}

	ids := distinctBusinessIDs(entries)
	if len(ids) == 0 {
		return []domain.CandidateItem{}, nil
	}

	fanCtx, cancel := context.WithTimeout(ctx, a.cfg.FanoutTimeout)
	defer cancel()

	// Buffered so late workers never block after the collector gives up.
	results := make(chan lookupResult, len(ids))
	sem := make(chan struct{}, a.cfg.FanoutConcurrency)

	for i, id := range ids {
		go func() {
			select {
			case sem <- struct{}{}:
			case <-fanCtx.Done():
				results <- lookupResult{index: i, err: fanCtx.Err()}
				return
			}
			defer func() { <-sem }()

			item, err := a.catalog.GetItem(fanCtx, id)
			results <- lookupResult{index: i, item: item, err: err}
		}()
	}

	collected := make([]lookupResult, 0, len(ids))
	log := reqctx.Logger(ctx, a.logger)
collect:
	for range ids {
		select {
		case r := <-results:
			if r.err != nil {
				log.Debug("business lookup dropped",
					zap.Int64("business_id", ids[r.index]),
					zap.Error(r.err),
				)
				continue
			}
			collected = append(collected, r)
		case <-fanCtx.Done():
			break collect
		}
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	items := make([]domain.CandidateItem, len(collected))
	for i, r := range collected {
		items[i] = r.item
	}

	if dropped := len(ids) - len(items); dropped > 0 {
		log.Warn("view_full_list returned partial result",
			zap.Int64("list_id", listID),
			zap.Int("requested", len(ids)),
			zap.Int("dropped", dropped),
		)
		if a.OnDropped != nil {
			a.OnDropped(dropped)
		}
	}
	return items, nil
}

// ServeNext asks the catalog for one business at location that is not yet
// on the list.
func (a *Aggregator) ServeNext(ctx context.Context, listID int64, location string) (domain.CandidateItem, error) {
	entries, err := a.store.ListEntries(ctx, listID, "")
	if err != nil {
		return domain.CandidateItem{}, upstreamErr("list itinerary entries", err)
	}

	item, err := a.catalog.NextUnseen(ctx, location, listID, distinctBusinessIDs(entries))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.CandidateItem{}, domain.ErrNoCandidateAvailable
	case err != nil:
		return domain.CandidateItem{}, upstreamErr("next unseen business", err)
	}
	return item, nil
}

func distinctBusinessIDs(entries []domain.ItineraryEntry) []int64 {
	seen := make(map[int64]bool, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if seen[e.BusinessID] {
			continue
		}
		seen[e.BusinessID] = true
		ids = append(ids, e.BusinessID)
	}
	return ids
}

func upstreamErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}
