package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{"HKI_BASE_URL", "HOST", "EVENTS_PORT", "REDIS_URL",
		"DEBOUNCE_MS", "REQUEST_TIMEOUT_SECONDS", "SESSION_REFRESH_SECONDS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	expect := &Config{
		BaseURL:                "http://localhost:8080",
		Host:                   "0.0.0.0",
		EventsPort:             3001,
		DebounceWindow:         300 * time.Millisecond,
		RequestTimeout:         30 * time.Second,
		SessionRefreshInterval: 60 * time.Second,
		LogLevel:               slog.LevelInfo,
	}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Fatal(diff)
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("HKI_BASE_URL", "https://hki.example.org/")
	t.Setenv("REDIS_URL", "localhost:6379")
	t.Setenv("EVENTS_PORT", "4000")
	t.Setenv("DEBOUNCE_MS", "1000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if cfg.BaseURL != "https://hki.example.org" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.RedisURL != "localhost:6379" {
		t.Errorf("unexpected redis url %q", cfg.RedisURL)
	}
	if cfg.EventsPort != 4000 {
		t.Errorf("expected events port 4000, got %d", cfg.EventsPort)
	}
	if cfg.DebounceWindow != time.Second {
		t.Errorf("expected 1s debounce window, got %s", cfg.DebounceWindow)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
}

func TestNewConfigRejectsInvalidValues(t *testing.T) {
	testcases := map[string]string{
		"EVENTS_PORT":             "abc",
		"DEBOUNCE_MS":             "-1",
		"REQUEST_TIMEOUT_SECONDS": "soon",
		"LOG_LEVEL":               "loud",
	}

	for key, value := range testcases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := NewConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
