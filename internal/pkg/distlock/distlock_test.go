package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLock(rdb, "batch-1", time.Minute)
	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second holder cannot take the same key
	second := NewRedisLock(rdb, "batch-1", time.Minute)
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ReleaseOnlyWhenOwned(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	first := NewRedisLock(rdb, "batch-2", time.Minute)
	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Releasing a lock we never acquired must not free it
	imposter := NewRedisLock(rdb, "batch-2", time.Minute)
	require.NoError(t, imposter.Release(ctx))

	ok, err = imposter.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLock_DifferentKeysIndependent(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	a := NewRedisLock(rdb, "batch-a", time.Minute)
	b := NewRedisLock(rdb, "batch-b", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
