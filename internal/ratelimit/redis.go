package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares the coalescing window between processes. A key lives for one
// window; a repeat while it lives is refused and extends it.
type Redis struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, window time.Duration) (*Redis, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if prefix == "" {
		prefix = "debounce"
	}

	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		window: window,
	}, nil
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + ":" + key

	ok, err := r.rdb.SetNX(ctx, redisKey, 1, r.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim debounce key: %w", err)
	}
	if ok {
		return true, nil
	}

	if err := r.rdb.PExpire(ctx, redisKey, r.window).Err(); err != nil {
		return false, fmt.Errorf("failed to extend debounce key: %w", err)
	}

	return false, nil
}
