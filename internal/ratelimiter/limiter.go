package ratelimiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Upstream names a downstream service that outbound calls are throttled against.
type Upstream string

const (
	UpstreamCatalog Upstream = "catalog"
	UpstreamLists   Upstream = "lists"
)

// UpstreamLimiters holds one token bucket per upstream service.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type UpstreamLimiters struct {
	mu       sync.Mutex
	r        rate.Limit
	burst    int
	limiters map[Upstream]*rate.Limiter
}

// New creates limiters granting ratePerSec tokens per second per upstream.
// A non-positive rate disables throttling.
func New(ratePerSec int) *UpstreamLimiters {
	r := rate.Limit(ratePerSec)
	burst := ratePerSec
	if ratePerSec <= 0 {
		r = rate.Inf
		burst = 1
	}
	return &UpstreamLimiters{
		r:        r,
		burst:    burst,
		limiters: make(map[Upstream]*rate.Limiter),
	}
}

// Wait blocks until the upstream's limiter grants a token. Called by the
// clients immediately before each request. Returns a non-nil error only if
// ctx is cancelled (or its deadline cannot be met) while waiting.
func (ul *UpstreamLimiters) Wait(ctx context.Context, u Upstream) error {
	if ul == nil {
		return nil
	}
	return ul.limiter(u).Wait(ctx)
}

func (ul *UpstreamLimiters) limiter(u Upstream) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	l, ok := ul.limiters[u]
	if !ok {
		l = rate.NewLimiter(ul.r, ul.burst)
		ul.limiters[u] = l
	}
	return l
}
