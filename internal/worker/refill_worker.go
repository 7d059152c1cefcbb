package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// ToppingUp is the part of queue.Engine the refill worker drives.
type ToppingUp interface {
	TopUp(ctx context.Context) error
}

// RefillWorker periodically tops up the active queue session.
//
// Refills normally run right after a commit or skip. If the catalog was
// unreachable at that moment the queue stays short; this worker retries on
// a fixed interval so the session recovers without user action.
type RefillWorker struct {
	engine   ToppingUp
	interval time.Duration
	logger   *zap.Logger
}

func NewRefillWorker(engine ToppingUp, interval time.Duration, logger *zap.Logger) *RefillWorker {
	return &RefillWorker{engine: engine, interval: interval, logger: logger}
}

// Run ticks every interval and tops up the queue.
// Stops cleanly when ctx is cancelled.
func (rw *RefillWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("refill worker started", zap.Duration("interval", rw.interval))

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("refill worker stopping")
			return
		case <-ticker.C:
			rw.poll(ctx)
		}
	}
}

func (rw *RefillWorker) poll(ctx context.Context) {
	ctx = reqctx.WithCorrelationID(ctx, uuid.New().String())
	if err := rw.engine.TopUp(ctx); err != nil {
		reqctx.Logger(ctx, rw.logger).Warn("queue top-up failed", zap.Error(err))
	}
}
