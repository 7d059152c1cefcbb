package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wayfarer/itinerary-orchestrator/internal/aggregator"
	"github.com/wayfarer/itinerary-orchestrator/internal/api"
	"github.com/wayfarer/itinerary-orchestrator/internal/catalog"
	"github.com/wayfarer/itinerary-orchestrator/internal/config"
	"github.com/wayfarer/itinerary-orchestrator/internal/db"
	"github.com/wayfarer/itinerary-orchestrator/internal/itinerary"
	"github.com/wayfarer/itinerary-orchestrator/internal/metrics"
	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
	"github.com/wayfarer/itinerary-orchestrator/internal/ratelimiter"
	"github.com/wayfarer/itinerary-orchestrator/internal/repository"
	"github.com/wayfarer/itinerary-orchestrator/internal/upstream"
	"github.com/wayfarer/itinerary-orchestrator/internal/worker"
)

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")
	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func serve(parent context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	limiter := ratelimiter.New(cfg.UpstreamRateLimit)
	opts := upstream.Options{Limiter: limiter, Observe: m.ObserveUpstream}

	cat := catalog.NewClient(upstream.New(ratelimiter.UpstreamCatalog, cfg.CatalogBaseURL, cfg.UpstreamTimeout, opts))

	// ---- itinerary store ----
	var store itinerary.Store
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.Connect(parent, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
		store = repository.NewPgItineraryStore(pool)
	default:
		store = itinerary.NewClient(upstream.New(ratelimiter.UpstreamLists, cfg.ListBaseURL, cfg.UpstreamTimeout, opts))
	}
	logger.Info("itinerary store selected", zap.String("backend", cfg.StoreBackend))

	// ---- queue engine + aggregator ----
	onState, onEvent, onRefill := m.QueueHooks()
	engine := queue.NewEngine(cat, store, queue.Config{
		TargetSize:    cfg.QueueTargetSize,
		Schedule:      cfg.Schedule,
		RefillTimeout: cfg.RefillTimeout,
	}, logger, queue.Hooks{
		OnState:  onState,
		OnEvent:  onEvent,
		OnRefill: onRefill,
	})

	agg := aggregator.New(cat, store, aggregator.Config{
		FanoutTimeout:     cfg.FanoutTimeout,
		FanoutConcurrency: cfg.FanoutConcurrency,
	}, logger)
	agg.OnDropped = m.OnDropped

	// ---- background worker ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(parent)
	defer cancelWorkers()

	workerDone := make(chan struct{})
	if cfg.RefillRetryInterval > 0 {
		refillW := worker.NewRefillWorker(engine, cfg.RefillRetryInterval, logger)
		go func() {
			defer close(workerDone)
			refillW.Run(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ---- HTTP server ----
	router := api.NewRouter(api.Deps{
		Engine:     engine,
		Aggregator: agg,
		Store:      store,
		Schedule:   cfg.Schedule,
		Gatherer:   reg,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case <-parent.Done():
		logger.Info("context cancelled, shutting down")
	case runErr = <-serverErr:
		logger.Error("server error", zap.Error(runErr))
	}

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the top-up worker.
	cancelWorkers()
	<-workerDone

	// 3. Let in-flight background refills finish, bounded by the shutdown timeout.
	refillsDone := make(chan struct{})
	go func() {
		engine.Wait()
		close(refillsDone)
	}()
	select {
	case <-refillsDone:
	case <-shutdownCtx.Done():
		logger.Warn("background refills still running at shutdown deadline",
			zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	logger.Info("server stopped cleanly")
	return runErr
}
