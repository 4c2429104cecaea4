package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderdesk/crm-console/internal/core/domain"
)

const defaultConnectTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisStore persists the session under a single Redis key, for consoles that
// share a session across hosts (shared ops workstations). Reads are served
// from the snapshot loaded at construction and refreshed on every write, so
// Get stays synchronous.
type RedisStore struct {
	client *redis.Client
	key    string

	mu      sync.Mutex
	current domain.StoredSession
	present bool
}

// NewRedisStore loads any existing record stored under key.
func NewRedisStore(ctx context.Context, client *redis.Client, key string) (*RedisStore, error) {
	s := &RedisStore{client: client, key: key}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("credstore: load %s: %w", key, err)
	}

	var rec domain.StoredSession
	if err := json.Unmarshal(raw, &rec); err != nil {
		return s, nil
	}
	s.current = rec
	s.present = true
	return s, nil
}

func (s *RedisStore) Get() (domain.StoredSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.present
}

func (s *RedisStore) Set(ctx context.Context, rec domain.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("credstore: set %s: %w", s.key, err)
	}
	s.current = rec
	s.present = true
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("credstore: del %s: %w", s.key, err)
	}
	s.current = domain.StoredSession{}
	s.present = false
	return nil
}
