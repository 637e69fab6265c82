package source

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	table := tabular.New(
		[]string{"Site ID", "Latitude", "Timestamp"},
		[][]string{{"A1", "24.7136", "2024-01-05"}, {"A2", "", ""}},
	)
	fetchedAt := time.Date(2024, 1, 5, 10, 15, 0, 0, time.UTC)

	_, _, ok := cache.Get(ctx, "http:registry")
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, cache.Set(ctx, "http:registry", table, fetchedAt, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL(redisKeyPrefix+"http:registry"))

	got, gotAt, ok := cache.Get(ctx, "http:registry")
	require.True(t, ok)
	assert.Equal(t, table, got)
	assert.True(t, fetchedAt.Equal(gotAt), "fetched at %s, got %s", fetchedAt, gotAt)

	mr.FastForward(30 * time.Second)
	_, _, ok = cache.Get(ctx, "http:registry")
	assert.False(t, ok, "entry expires with its ttl")
}

func TestRedisCacheCorruptEntryMisses(t *testing.T) {
	cache, mr := newTestRedisCache(t)

	require.NoError(t, mr.Set(redisKeyPrefix+"file:progress.csv#", "{not json"))
	_, _, ok := cache.Get(context.Background(), "file:progress.csv#")
	assert.False(t, ok)
}

func TestCachedReaderWithRedis(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()

	inner := &countingReader{}
	r := NewCachedReader(inner, cache, time.Minute, nil)

	first, err := r.Read(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisKeyPrefix+inner.Key()))

	second, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load(), "second read is served from redis")

	other := NewCachedReader(inner, cache, time.Minute, nil)
	_, err = other.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load(), "a second replica shares the entry")

	mr.FastForward(time.Minute)
	_, err = r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "expired entry is refetched")
}
