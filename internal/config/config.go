package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL string

	Host       string
	EventsPort int

	// RedisURL is optional. When empty the debounce limiter and the session
	// store are kept in memory.
	RedisURL string

	DebounceWindow         time.Duration
	RequestTimeout         time.Duration
	SessionRefreshInterval time.Duration

	LogLevel slog.Level
}

func NewConfig() (*Config, error) {
	godotenv.Load()

	eventsPort, err := strconv.Atoi(getEnvWithDefault("EVENTS_PORT", "3001"))
	if err != nil {
		return nil, fmt.Errorf("invalid events port: %w", err)
	}

	debounce, err := durationFromEnv("DEBOUNCE_MS", "300", time.Millisecond)
	if err != nil {
		return nil, err
	}

	timeout, err := durationFromEnv("REQUEST_TIMEOUT_SECONDS", "30", time.Second)
	if err != nil {
		return nil, err
	}

	refresh, err := durationFromEnv("SESSION_REFRESH_SECONDS", "60", time.Second)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvWithDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return &Config{
		BaseURL:                strings.TrimRight(getEnvWithDefault("HKI_BASE_URL", "http://localhost:8080"), "/"),
		Host:                   getEnvWithDefault("HOST", "0.0.0.0"),
		EventsPort:             eventsPort,
		RedisURL:               os.Getenv("REDIS_URL"),
		DebounceWindow:         debounce,
		RequestTimeout:         timeout,
		SessionRefreshInterval: refresh,
		LogLevel:               level,
	}, nil
}

func durationFromEnv(key, defaultValue string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.Atoi(getEnvWithDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToLower(key), err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", strings.ToLower(key))
	}
	return time.Duration(n) * unit, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultValue
}
