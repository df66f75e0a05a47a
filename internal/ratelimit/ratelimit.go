// Package ratelimit coalesces repeated actions that share a key into at most
// one per window. Every repeat inside the window pushes the window forward.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultWindow is the coalescing window used for error notifications.
const DefaultWindow = 300 * time.Millisecond

type Limiter interface {
	// Allow reports whether the action identified by key may run now.
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory keeps the window of each key in a go-cache entry. A repeat
// rewrites the entry, which restarts its expiration.
type Memory struct {
	window time.Duration

	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemory(window time.Duration) *Memory {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Memory{
		window: window,
		cache:  cache.New(window, 10*window),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, seen := m.cache.Get(key)
	m.cache.Set(key, struct{}{}, m.window)

	return !seen, nil
}
