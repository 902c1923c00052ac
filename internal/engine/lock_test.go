package engine

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigiego-coder/beauty-manager/internal/domain"
)

func testLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, "beautyd:", time.Second), mr
}

var lockKey = domain.SessionKey{SalonID: "salon-1", Phone: "+5511988887777"}

func TestRedisLockerSerializesSameSession(t *testing.T) {
	locker, _ := testLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)

	// A second acquire for the same session must wait until release.
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, lockKey)
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, release(ctx))

	release2, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestRedisLockerIndependentSessions(t *testing.T) {
	locker, _ := testLocker(t)
	ctx := context.Background()

	release1, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)
	defer release1(ctx)

	other := domain.SessionKey{SalonID: "salon-1", Phone: "+5511900001111"}
	release2, err := locker.Acquire(ctx, other)
	require.NoError(t, err)
	defer release2(ctx)
}

func TestRedisLockerReleaseIsOwnershipChecked(t *testing.T) {
	locker, mr := testLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)

	// Simulate TTL expiry and reacquisition by another worker.
	mr.FastForward(2 * time.Second)
	release2, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)

	// The stale holder's release must not free the new holder's lock.
	require.NoError(t, release(ctx))
	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(waitCtx, lockKey)
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, release2(ctx))
}

func TestNoopLockerNeverBlocks(t *testing.T) {
	ctx := context.Background()
	var locker NoopLocker

	r1, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)
	r2, err := locker.Acquire(ctx, lockKey)
	require.NoError(t, err)
	assert.NoError(t, r1(ctx))
	assert.NoError(t, r2(ctx))
}
