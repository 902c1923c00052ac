package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

// ErrLockTimeout is returned when the per-session lock cannot be acquired
// before the context deadline.
var ErrLockTimeout = errors.New("timed out acquiring session lock")

// ReleaseFunc releases a held session lock.
type ReleaseFunc func(ctx context.Context) error

// SessionLocker serializes concurrent turns for the same session. The lock
// only orders throughput; the commit marker in the session store remains
// the source of truth for idempotence.
type SessionLocker interface {
	Acquire(ctx context.Context, key domain.SessionKey) (ReleaseFunc, error)
}

// RedisLocker implements SessionLocker with Redis SET NX PX and a
// value-checked Lua release, safe across multiple worker processes.
type RedisLocker struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// releaseScript deletes the lock key only if we still own it, so an
// expired-and-reacquired lock is never released by the previous holder.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// NewRedisLocker creates a distributed session locker. ttl bounds how long
// a crashed worker can hold a session hostage.
func NewRedisLocker(client *backend.Client, prefix string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire polls SET NX PX until the lock is held or the context expires.
func (l *RedisLocker) Acquire(ctx context.Context, key domain.SessionKey) (ReleaseFunc, error) {
	lockKey := l.prefix + "lock:" + key.String()
	val := uuid.NewString()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, val, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring session lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, releaseScript, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// NoopLocker is a no-op for single-process deployments and tests.
type NoopLocker struct{}

// Acquire implements SessionLocker.
func (NoopLocker) Acquire(context.Context, domain.SessionKey) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
