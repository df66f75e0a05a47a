// Package session keeps track of the user currently logged in.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/whookdev/hki/internal/models"
)

type Store interface {
	// User returns the logged in user, or nil when there is none.
	User(ctx context.Context) (*models.User, error)

	// SetUser replaces the logged in user. A nil user logs out.
	SetUser(ctx context.Context, user *models.User) error
}

type Memory struct {
	mu   sync.RWMutex
	user *models.User
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) User(context.Context) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	u := *m.user
	return &u, nil
}

func (m *Memory) SetUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return nil
	}
	u := *user
	m.user = &u
	return nil
}

// Redis stores the user as JSON under a single key so several processes
// can share one login.
type Redis struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, key string, ttl time.Duration) (*Redis, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if key == "" {
		key = "session:user"
	}

	return &Redis{rdb: rdb, key: key, ttl: ttl}, nil
}

func (r *Redis) User(ctx context.Context) (*models.User, error) {
	val, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

func (r *Redis) SetUser(ctx context.Context, user *models.User) error {
	if user == nil {
		if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}

	val, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.rdb.Set(ctx, r.key, string(val), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
