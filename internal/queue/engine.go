package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/catalog"
	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

// maxIdleRounds bounds refill rounds that append nothing while the catalog
// still claims to have more, which happens when it ignores exclude_ids.
const maxIdleRounds = 3

// Config holds the engine's tunables.
type Config struct {
	TargetSize    int
	Schedule      timeblock.Schedule
	RefillTimeout time.Duration
}

// DefaultConfig matches the service defaults.
var DefaultConfig = Config{
	TargetSize:    5,
	Schedule:      timeblock.DefaultSchedule,
	RefillTimeout: 10 * time.Second,
}

// Hooks carries the metric callback functions injected by main.
// Any of them may be nil.
type Hooks struct {
	OnState  func(depth, seen int)
	OnEvent  func(event string)
	OnRefill func(appended int, exhausted bool)
}

// Engine owns the process-wide candidate queue.
//
// Every read or write of the session happens under mu. Catalog and store
// calls are made with mu released; refillMu serialises whole refills so two
// refills can never observe the same deficit.
type Engine struct {
	catalog catalog.Catalog
	store   itinerary.Store
	cfg     Config
	logger  *zap.Logger
	hooks   Hooks

	mu      sync.Mutex
	session *session // nil while Empty

	refillMu sync.Mutex
	wg       sync.WaitGroup
}

func NewEngine(cat catalog.Catalog, store itinerary.Store, cfg Config, logger *zap.Logger, hooks Hooks) *Engine {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultConfig.TargetSize
	}
	if cfg.Schedule.Count == 0 {
		cfg.Schedule = DefaultConfig.Schedule
	}
	if cfg.RefillTimeout <= 0 {
		cfg.RefillTimeout = DefaultConfig.RefillTimeout
	}
	if hooks.OnState == nil {
		hooks.OnState = func(int, int) {}
	}
	if hooks.OnEvent == nil {
		hooks.OnEvent = func(string) {}
	}
	if hooks.OnRefill == nil {
		hooks.OnRefill = func(int, bool) {}
	}
	return &Engine{catalog: cat, store: store, cfg: cfg, logger: logger, hooks: hooks}
}

// Start opens a session for address and fills it. Starting again for the
// same address keeps the existing session and tops it up; a different
// address fails with ErrAlreadyActive and leaves the session untouched.
func (e *Engine) Start(ctx context.Context, address string) (domain.QueueSnapshot, error) {
	log := reqctx.Logger(ctx, e.logger).With(zap.String("address", address))

	e.mu.Lock()
	s := e.session
	if s != nil && s.address != address {
		active := s.address
		e.mu.Unlock()
		return domain.QueueSnapshot{}, fmt.Errorf("%w: active address %q", domain.ErrAlreadyActive, active)
	}
	created := s == nil
	if created {
		owner, _ := reqctx.FromContext(ctx)
		s = newSession(address, owner)
		e.session = s
		e.reportLocked()
	}
	e.mu.Unlock()

	if err := e.refill(ctx); err != nil {
		e.mu.Lock()
		if created && e.session == s && len(s.items) == 0 {
			e.session = nil
			e.reportLocked()
			e.mu.Unlock()
			log.Warn("queue start failed", zap.Error(err))
			return domain.QueueSnapshot{}, err
		}
		e.mu.Unlock()
		log.Warn("queue start refill incomplete", zap.Error(err))
	}

	if created {
		e.hooks.OnEvent("start")
		log.Info("queue session started")
	}
	return e.Snapshot(), nil
}

// End clears the session. Ending an Empty engine is a no-op.
func (e *Engine) End(ctx context.Context) {
	e.mu.Lock()
	had := e.session != nil
	e.session = nil
	e.reportLocked()
	e.mu.Unlock()

	if had {
		e.hooks.OnEvent("end")
		reqctx.Logger(ctx, e.logger).Info("queue session ended")
	}
}

// Next returns the oldest unresolved candidate without removing it.
func (e *Engine) Next(_ context.Context) (domain.CandidateItem, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return domain.CandidateItem{}, fmt.Errorf("%w: %w", domain.ErrQueueEmpty, domain.ErrNoSession)
	}
	if len(e.session.items) == 0 {
		return domain.CandidateItem{}, domain.ErrQueueEmpty
	}
	return e.session.items[0], nil
}

// Commit moves itemID from the queue into listID's itinerary for day. If the
// store write fails the item goes back to the head of the queue.
func (e *Engine) Commit(ctx context.Context, itemID, listID int64, day domain.Day) (domain.ItineraryEntry, error) {
	log := reqctx.Logger(ctx, e.logger).With(zap.Int64("business_id", itemID), zap.Int64("list_id", listID))

	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return domain.ItineraryEntry{}, fmt.Errorf("%w: %w", domain.ErrItemNotFound, domain.ErrNoSession)
	}
	idx := s.indexOf(itemID)
	if idx < 0 {
		e.mu.Unlock()
		return domain.ItineraryEntry{}, fmt.Errorf("%w: business %d", domain.ErrItemNotFound, itemID)
	}
	item := s.removeAt(idx)
	e.reportLocked()
	e.mu.Unlock()

	times := e.cfg.Schedule.Generate()
	entry, err := e.store.CreateEntry(ctx, listID, itemID, day, times)
	if err != nil {
		e.mu.Lock()
		if e.session == s {
			s.pushFront(item)
			e.reportLocked()
		}
		e.mu.Unlock()

		e.hooks.OnEvent("commit_failed")
		log.Warn("commit failed, candidate restored", zap.Error(err))
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return domain.ItineraryEntry{}, err
	}

	e.hooks.OnEvent("commit")
	log.Info("candidate committed", zap.Int64("itinerary_id", entry.ItineraryID), zap.String("day", string(day)))
	e.refillAsync(ctx)
	return entry, nil
}

// Skip discards itemID and refills. Skipping an id that was already resolved
// in this session succeeds without touching the queue.
func (e *Engine) Skip(ctx context.Context, itemID int64, address string) error {
	e.mu.Lock()
	s := e.session
	if s == nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", domain.ErrItemNotFound, domain.ErrNoSession)
	}
	if address != "" && address != s.address {
		active := s.address
		e.mu.Unlock()
		return fmt.Errorf("%w: got %q, active %q", domain.ErrAddressMismatch, address, active)
	}
	idx := s.indexOf(itemID)
	if idx < 0 {
		seen := s.wasSeen(itemID)
		e.mu.Unlock()
		if seen {
			return nil
		}
		return fmt.Errorf("%w: business %d", domain.ErrItemNotFound, itemID)
	}
	s.removeAt(idx)
	e.reportLocked()
	e.mu.Unlock()

	e.hooks.OnEvent("skip")
	reqctx.Logger(ctx, e.logger).Info("candidate skipped", zap.Int64("business_id", itemID))
	e.refillAsync(ctx)
	return nil
}

// Snapshot copies the current session for read-only callers.
func (e *Engine) Snapshot() domain.QueueSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.QueueSnapshot{Items: []domain.CandidateItem{}, TargetSize: e.cfg.TargetSize}
	}
	return e.session.snapshot(e.cfg.TargetSize)
}

// Wait blocks until every background refill has returned.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// TopUp refills an active session that is below its target size. It is
// driven by worker.RefillWorker so a queue left short by a failed background
// refill recovers once the catalog is reachable again. Calls made here carry
// the identity of whoever started the session.
func (e *Engine) TopUp(ctx context.Context) error {
	e.mu.Lock()
	s := e.session
	if s == nil || len(s.items) >= e.cfg.TargetSize {
		e.mu.Unlock()
		return nil
	}
	owner := s.owner
	e.mu.Unlock()

	if _, ok := reqctx.FromContext(ctx); !ok {
		owner.CorrelationID = reqctx.CorrelationID(ctx)
		ctx = reqctx.WithRequestContext(ctx, owner)
	}
	ctx, cancel := context.WithTimeout(ctx, e.cfg.RefillTimeout)
	defer cancel()
	return e.refill(ctx)
}

// refillAsync runs a refill detached from the caller's cancellation but
// carrying its correlation id and identity.
func (e *Engine) refillAsync(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		rctx, cancel := context.WithTimeout(bg, e.cfg.RefillTimeout)
		defer cancel()
		if err := e.refill(rctx); err != nil {
			reqctx.Logger(bg, e.logger).Warn("background refill failed", zap.Error(err))
		}
	}()
}

// refill tops the session up to the target size. Each round computes the
// deficit and exclusion set under mu, calls the catalog unlocked, then merges
// under mu again. It stops when the target is met, when the catalog returns
// fewer items than asked for, or when the session it started on is gone.
// It also gives up after maxIdleRounds rounds that append nothing, which
// happens when the catalog ignores the exclusion set.
func (e *Engine) refill(ctx context.Context) error {
	e.refillMu.Lock()
	defer e.refillMu.Unlock()

	total, idle := 0, 0
	for {
		e.mu.Lock()
		s := e.session
		if s == nil {
			e.mu.Unlock()
			return nil
		}
		deficit := e.cfg.TargetSize - len(s.items)
		if deficit <= 0 {
			e.mu.Unlock()
			e.hooks.OnRefill(total, false)
			return nil
		}
		address := s.address
		exclude := s.seenIDs()
		e.mu.Unlock()

		fetched, err := e.catalog.ListItems(ctx, address, deficit, exclude)
		if err != nil {
			e.hooks.OnRefill(total, false)
			if !errors.Is(err, domain.ErrUpstreamUnavailable) {
				err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
			}
			return fmt.Errorf("refill %q: %w", address, err)
		}

		e.mu.Lock()
		if e.session != s {
			e.mu.Unlock()
			return nil
		}
		appended := s.merge(fetched, e.cfg.TargetSize)
		e.reportLocked()
		e.mu.Unlock()

		total += appended
		exhausted := len(fetched) < deficit
		if exhausted {
			e.hooks.OnRefill(total, true)
			return nil
		}
		if appended == 0 {
			idle++
			if idle >= maxIdleRounds {
				reqctx.Logger(ctx, e.logger).Warn("refill made no progress; catalog keeps returning seen businesses",
					zap.String("address", address))
				e.hooks.OnRefill(total, false)
				return nil
			}
		}
	}
}

// reportLocked publishes queue depth; callers hold mu.
func (e *Engine) reportLocked() {
	if e.session == nil {
		e.hooks.OnState(0, 0)
		return
	}
	e.hooks.OnState(len(e.session.items), len(e.session.seen))
}
