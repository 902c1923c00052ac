package buffer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// RedisStore buffers fragments in a Redis list per session key, so the
// debounce window survives across horizontally scaled workers.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed fragment store. The TTL is a safety
// net roughly an order of magnitude above the debounce window, so an
// abandoned buffer cannot leak.
func NewRedisStore(client *backend.Client, prefix string, window time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "beautyd:buffer:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: window * 10}
}

func (s *RedisStore) key(k domain.SessionKey) string {
	return s.prefix + k.String()
}

// Push appends a fragment to the session's buffer. first is true when this
// fragment created the buffer, i.e. opened the debounce window.
func (s *RedisStore) Push(ctx context.Context, key domain.SessionKey, f Fragment) (bool, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("marshaling fragment: %w", err)
	}

	pipe := s.client.TxPipeline()
	lenCmd := pipe.RPush(ctx, s.key(key), data)
	pipe.Expire(ctx, s.key(key), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("pushing fragment: %w", err)
	}
	return lenCmd.Val() == 1, nil
}

// Drain atomically removes and returns all buffered fragments in order.
func (s *RedisStore) Drain(ctx context.Context, key domain.SessionKey) ([]Fragment, error) {
	pipe := s.client.TxPipeline()
	listCmd := pipe.LRange(ctx, s.key(key), 0, -1)
	pipe.Del(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("draining buffer: %w", err)
	}

	raw := listCmd.Val()
	fragments := make([]Fragment, 0, len(raw))
	for _, item := range raw {
		var f Fragment
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("unmarshaling fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}
