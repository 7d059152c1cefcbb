package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wayfarer/itinerary-orchestrator/internal/config"
	"github.com/wayfarer/itinerary-orchestrator/internal/timeblock"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "HTTP_PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"CATALOG_BASE_URL", "LIST_BASE_URL", "UPSTREAM_TIMEOUT", "UPSTREAM_RATE_LIMIT",
		"QUEUE_TARGET_SIZE", "REFILL_TIMEOUT", "REFILL_RETRY_INTERVAL", "TIMEBLOCK_START", "TIMEBLOCK_INTERVAL", "TIMEBLOCK_COUNT",
		"FANOUT_TIMEOUT", "FANOUT_CONCURRENCY", "STORE_BACKEND", "DATABASE_URL",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_PATH", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8003" || cfg.QueueTargetSize != 5 || cfg.StoreBackend != config.BackendHTTP {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Schedule.Generate() != timeblock.DefaultSchedule.Generate() {
		t.Fatalf("expected default schedule, got %q", cfg.Schedule.Generate())
	}
	if cfg.FanoutTimeout != 3*time.Second {
		t.Fatalf("expected 3s fan-out timeout, got %s", cfg.FanoutTimeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUEUE_TARGET_SIZE", "8")
	t.Setenv("TIMEBLOCK_START", "10:30")
	t.Setenv("TIMEBLOCK_INTERVAL", "60m")
	t.Setenv("TIMEBLOCK_COUNT", "2")
	t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.QueueTargetSize != 8 {
		t.Fatalf("expected target 8, got %d", cfg.QueueTargetSize)
	}
	if got := cfg.Schedule.Generate(); got != "10:30-11:30,11:30-12:30" {
		t.Fatalf("unexpected schedule %q", got)
	}
	if cfg.UpstreamTimeout != 5*time.Second {
		t.Fatalf("malformed duration should fall back to default, got %s", cfg.UpstreamTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "orchestrator.yaml")
	body := "http_port: 9000\nqueue_target_size: 3\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "9000" || cfg.QueueTargetSize != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("environment must win over file, got %q", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"zero target", map[string]string{"QUEUE_TARGET_SIZE": "0"}, "QUEUE_TARGET_SIZE"},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}, "DATABASE_URL"},
		{"unknown backend", map[string]string{"STORE_BACKEND": "redis"}, "STORE_BACKEND"},
		{"bad start", map[string]string{"TIMEBLOCK_START": "25:00"}, "TIMEBLOCK_START"},
		{"schedule past midnight", map[string]string{"TIMEBLOCK_START": "20:00"}, "past midnight"},
		{"sub-minute interval", map[string]string{"TIMEBLOCK_INTERVAL": "30s"}, "whole number of minutes"},
		{"missing file", map[string]string{"CONFIG_FILE": "/nonexistent/orchestrator.yaml"}, "read config file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}
