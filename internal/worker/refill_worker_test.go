package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/catalog"
	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
	"github.com/wayfarer/itinerary-orchestrator/internal/worker"
)

type countingEngine struct {
	mu    sync.Mutex
	calls int
	cids  []string
}

func (c *countingEngine) TopUp(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.cids = append(c.cids, reqctx.CorrelationID(ctx))
	return errors.New("catalog down")
}

func TestRefillWorker_TicksUntilCancelled(t *testing.T) {
	eng := &countingEngine{}
	w := worker.NewRefillWorker(eng, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		eng.mu.Lock()
		calls := eng.calls
		eng.mu.Unlock()
		if calls >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 ticks, got %d", calls)
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.cids[0] == "" || eng.cids[0] == eng.cids[1] {
		t.Fatalf("expected a fresh correlation id per tick, got %v", eng.cids)
	}
}

// TestRefillWorker_RecoversShortQueue runs the worker against a real engine
// whose first refill failed.
func TestRefillWorker_RecoversShortQueue(t *testing.T) {
	var items []domain.CandidateItem
	for id := int64(1); id <= 8; id++ {
		items = append(items, domain.CandidateItem{ID: id, Address: "Main St"})
	}
	cat := catalog.NewMockCatalog(items...)
	eng := queue.NewEngine(cat, itinerary.NewMockStore(), queue.DefaultConfig, zap.NewNop(), queue.Hooks{})

	ctx := reqctx.WithRequestContext(context.Background(), reqctx.RequestContext{IdentityToken: "t", SubjectID: "7"})
	if _, err := eng.Start(ctx, "Main St"); err != nil {
		t.Fatalf("start: %v", err)
	}
	cat.ListErr = errors.New("catalog down")
	if err := eng.Skip(ctx, 1, "Main St"); err != nil {
		t.Fatalf("skip: %v", err)
	}
	eng.Wait()
	if n := len(eng.Snapshot().Items); n != 4 {
		t.Fatalf("expected a short queue of 4, got %d", n)
	}
	cat.ListErr = nil

	wctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.NewRefillWorker(eng, 5*time.Millisecond, zap.NewNop()).Run(wctx)

	deadline := time.After(2 * time.Second)
	for len(eng.Snapshot().Items) < queue.DefaultConfig.TargetSize {
		select {
		case <-deadline:
			t.Fatalf("queue not topped up, depth %d", len(eng.Snapshot().Items))
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := eng.Snapshot().Items; got[len(got)-1].ID != 6 {
		t.Fatalf("expected business 6 appended, got %+v", got)
	}
}
