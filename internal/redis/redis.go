package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	redisi "github.com/redis/go-redis/v9"
	"github.com/whookdev/hki/internal/config"
)

// RedisServer owns the connection shared by the debounce limiter and the
// session store.
type RedisServer struct {
	cfg    *config.Config
	Client *redisi.Client
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*RedisServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis url cannot be empty")
	}
	logger = logger.With("component", "redis")

	rs := &RedisServer{
		cfg:    cfg,
		logger: logger,
	}

	return rs, nil
}

func (rs *RedisServer) Start(ctx context.Context) error {
	opts, err := options(rs.cfg.RedisURL)
	if err != nil {
		return err
	}
	rs.Client = redisi.NewClient(opts)

	if err := rs.Client.Ping(ctx).Err(); err != nil {
		rs.logger.Error("failed to connect to redis", "error", err)
		return err
	}

	rs.logger.Info("redis connection established successfully", "addr", opts.Addr)
	return nil
}

func (rs *RedisServer) Stop() error {
	if rs.Client != nil {
		if err := rs.Client.Close(); err != nil {
			rs.logger.Error("failed to close redis connection", "error", err)
			return fmt.Errorf("failed to close redis connection: %w", err)
		}
		rs.logger.Info("redis connection closed successfully")
	}
	return nil
}

// options accepts either a redis:// URL or a bare host:port.
func options(redisURL string) (*redisi.Options, error) {
	if strings.Contains(redisURL, "://") {
		opts, err := redisi.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	return &redisi.Options{
		Addr:     redisURL,
		Password: "",
		DB:       0,
	}, nil
}
