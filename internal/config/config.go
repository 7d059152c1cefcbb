package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

// Store backends.
const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration. Values come from environment
// variables, optionally layered over a YAML file named by CONFIG_FILE.
// Every field has a sensible default.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Upstream services
	CatalogBaseURL    string
	ListBaseURL       string
	UpstreamTimeout   time.Duration
	UpstreamRateLimit int

	// Queue engine
	QueueTargetSize     int
	RefillTimeout       time.Duration
	RefillRetryInterval time.Duration // 0 disables the background top-up worker
	Schedule            timeblock.Schedule

	// Aggregator fan-out
	FanoutTimeout     time.Duration
	FanoutConcurrency int

	// Itinerary store
	StoreBackend   string
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrationsPath string

	LogLevel string
}

// Load reads configuration from the environment. If CONFIG_FILE is set, the
// YAML file it names supplies values for keys missing from the environment.
func Load() (*Config, error) {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	start, err := timeblock.ParseClock(src.getEnv("TIMEBLOCK_START", "09:00"))
	if err != nil {
		return nil, fmt.Errorf("TIMEBLOCK_START: %w", err)
	}

	cfg := &Config{
		HTTPPort:        src.getEnv("HTTP_PORT", "8003"),
		ReadTimeout:     src.getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    src.getDuration("WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: src.getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CatalogBaseURL:    src.getEnv("CATALOG_BASE_URL", "http://127.0.0.1:8002/businesses"),
		ListBaseURL:       src.getEnv("LIST_BASE_URL", "http://127.0.0.1:8001/lists"),
		UpstreamTimeout:   src.getDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		UpstreamRateLimit: src.getInt("UPSTREAM_RATE_LIMIT", 50),

		QueueTargetSize:     src.getInt("QUEUE_TARGET_SIZE", 5),
		RefillTimeout:       src.getDuration("REFILL_TIMEOUT", 10*time.Second),
		RefillRetryInterval: src.getDuration("REFILL_RETRY_INTERVAL", 30*time.Second),
		Schedule: timeblock.Schedule{
			Start:    start,
			Interval: src.getDuration("TIMEBLOCK_INTERVAL", 120*time.Minute),
			Count:    src.getInt("TIMEBLOCK_COUNT", 7),
		},

		FanoutTimeout:     src.getDuration("FANOUT_TIMEOUT", 3*time.Second),
		FanoutConcurrency: src.getInt("FANOUT_CONCURRENCY", 16),

		StoreBackend:   strings.ToLower(src.getEnv("STORE_BACKEND", BackendHTTP)),
		DatabaseURL:    src.getEnv("DATABASE_URL", ""),
		DBMaxConns:     int32(src.getInt("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(src.getInt("DB_MIN_CONNS", 2)),
		MigrationsPath: src.getEnv("MIGRATIONS_PATH", "migrations"),

		LogLevel: src.getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.QueueTargetSize <= 0 {
		errs = append(errs, errors.New("QUEUE_TARGET_SIZE must be positive"))
	}
	if err := c.Schedule.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("TIMEBLOCK_START/TIMEBLOCK_INTERVAL/TIMEBLOCK_COUNT: %w", err))
	}
	switch c.StoreBackend {
	case BackendHTTP:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q must be %q or %q", c.StoreBackend, BackendHTTP, BackendPostgres))
	}
	return errors.Join(errs...)
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	// Keys are matched case-insensitively against the env var names.
	file := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		file[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return file, nil
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) getEnv(key, defaultVal string) string {
	if v := s.lookup(key); v != "" {
		return v
	}
	return defaultVal
}

func (s source) getInt(key string, defaultVal int) int {
	if v := s.lookup(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s source) getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := s.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
