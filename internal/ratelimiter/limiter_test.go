package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/ratelimiter"
)

func TestUpstreamLimiters_BurstThenBlocks(t *testing.T) {
	l := ratelimiter.New(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Wait(ctx, ratelimiter.UpstreamCatalog); err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
	}

	// The bucket is empty; a deadline far shorter than the refill interval must fail.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(short, ratelimiter.UpstreamCatalog); err == nil {
		t.Fatal("expected Wait to fail once the bucket is drained")
	}

	// Other upstreams have their own bucket.
	if err := l.Wait(ctx, ratelimiter.UpstreamLists); err != nil {
		t.Fatalf("lists bucket: unexpected error: %v", err)
	}
}

func TestUpstreamLimiters_Disabled(t *testing.T) {
	l := ratelimiter.New(0)
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background(), ratelimiter.UpstreamCatalog); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var nilLimiter *ratelimiter.UpstreamLimiters
	if err := nilLimiter.Wait(context.Background(), ratelimiter.UpstreamLists); err != nil {
		t.Fatalf("nil limiter: unexpected error: %v", err)
	}
}
