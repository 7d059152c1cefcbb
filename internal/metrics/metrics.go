package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	QueueDepth      prometheus.Gauge
	QueueSeen       prometheus.Gauge
	QueueEvents     *prometheus.CounterVec
	RefillAppended  prometheus.Counter
	RefillExhausted prometheus.Counter
	FanoutDropped   prometheus.Counter
	UpstreamLatency *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of candidate businesses waiting in the queue.",
		}),
		QueueSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_seen_ids",
			Help: "Number of distinct business ids offered in the current session.",
		}),
		QueueEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queue_events_total",
			Help: "Queue session operations by kind.",
		}, []string{"event"}),
		RefillAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_refill_appended_total",
			Help: "Candidates appended to the queue by refill.",
		}),
		RefillExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queue_refill_exhausted_total",
			Help: "Refills that stopped because the catalog returned fewer items than requested.",
		}),
		FanoutDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "composite_fanout_dropped_total",
			Help: "Business detail lookups dropped from view_full_list results (failed or timed out).",
		}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_seconds",
			Help:    "Outbound request latency by upstream service and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream", "outcome"}),
	}

	reg.MustRegister(
		m.QueueDepth,
		m.QueueSeen,
		m.QueueEvents,
		m.RefillAppended,
		m.RefillExhausted,
		m.FanoutDropped,
		m.UpstreamLatency,
	)

	return m
}

// QueueHooks returns the metric callbacks expected by queue.Hooks.
// Centralises the prometheus observation calls so the engine stays import-free.
func (m *Metrics) QueueHooks() (
	onState func(depth, seen int),
	onEvent func(event string),
	onRefill func(appended int, exhausted bool),
) {
	onState = func(depth, seen int) {
		m.QueueDepth.Set(float64(depth))
		m.QueueSeen.Set(float64(seen))
	}
	onEvent = func(event string) {
		m.QueueEvents.WithLabelValues(event).Inc()
	}
	onRefill = func(appended int, exhausted bool) {
		m.RefillAppended.Add(float64(appended))
		if exhausted {
			m.RefillExhausted.Inc()
		}
	}
	return
}

// OnDropped is the aggregator's dropped-lookup callback.
func (m *Metrics) OnDropped(n int) {
	m.FanoutDropped.Add(float64(n))
}

// ObserveUpstream is the clients' per-request callback.
func (m *Metrics) ObserveUpstream(upstream, outcome string, latency time.Duration) {
	m.UpstreamLatency.WithLabelValues(upstream, outcome).Observe(latency.Seconds())
}
