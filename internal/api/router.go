package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/aggregator"
	"github.com/wayfarer/itinerary-orchestrator/internal/api/handler"
	apimw "github.com/wayfarer/itinerary-orchestrator/internal/api/middleware"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

// Deps are the collaborators the HTTP surface dispatches to.
type Deps struct {
	Engine     *queue.Engine
	Aggregator *aggregator.Aggregator
	Store      itinerary.Store
	Schedule   timeblock.Schedule
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(d.Logger))

	// --- handler instances ---
	qh := handler.NewQueueHandler(d.Engine, d.Logger)
	ch := handler.NewCompositeHandler(d.Aggregator, d.Logger)
	ih := handler.NewItineraryHandler(d.Store, d.Schedule, d.Logger)
	mh := handler.NewMetricsHandler(d.Engine)
	hh := handler.NewHealthHandler(d.Engine)

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.Identity(d.Logger))

		// Queue session
		r.Get("/queue", qh.Snapshot)
		r.Post("/queue/start", qh.Start)
		r.Post("/queue/end", qh.End)
		r.Get("/queue/next", qh.Next)
		r.Post("/queue/commit", qh.Commit)
		r.Post("/queue/skip", qh.Skip)
		r.Post("/queue/decide", qh.Decide)

		// Aggregated reads
		r.Get("/composite/view_full_list", ch.ViewFullList)
		r.Get("/composite/serve_next", ch.ServeNext)

		// Itinerary entries
		r.Route("/lists/{listID}/itineraries", func(r chi.Router) {
			r.Get("/", ih.List)
			r.Post("/", ih.Create)
			r.Put("/{itineraryID}/times", ih.UpdateTimes)
			r.Delete("/{businessID}", ih.Delete)
		})

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
