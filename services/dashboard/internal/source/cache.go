package source

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/tabular"
)

// Cache stores fetched tables with their fetch time. Entries expire after
// the TTL given to Set.
type Cache interface {
	Get(ctx context.Context, key string) (tabular.Table, time.Time, bool)
	Set(ctx context.Context, key string, t tabular.Table, fetchedAt time.Time, ttl time.Duration) error
}

type memoryEntry struct {
	table     tabular.Table
	fetchedAt time.Time
	expires   time.Time
}

// MemoryCache is the default in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (tabular.Table, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return tabular.Table{}, time.Time{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return tabular.Table{}, time.Time{}, false
	}
	return e.table.Clone(), e.fetchedAt, true
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, t tabular.Table, fetchedAt time.Time, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{table: t.Clone(), fetchedAt: fetchedAt, expires: fetchedAt.Add(ttl)}
	return nil
}

// CachedReader shields a Reader behind a staleness window. Concurrent misses
// for the same key share one fetch. Failed fetches are never cached.
type CachedReader struct {
	Reader
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewCachedReader wraps r. A ttl <= 0 disables caching.
func NewCachedReader(r Reader, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedReader{Reader: r, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Read implements Reader.
func (r *CachedReader) Read(ctx context.Context) (tabular.Table, error) {
	if r.ttl <= 0 || r.cache == nil {
		return r.Reader.Read(ctx)
	}

	key := r.Key()
	if t, fetchedAt, ok := r.cache.Get(ctx, key); ok && r.now().Sub(fetchedAt) < r.ttl {
		r.logger.Debug("source cache hit", zap.String("key", key), zap.Time("fetched_at", fetchedAt))
		return t, nil
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		if t, fetchedAt, ok := r.cache.Get(ctx, key); ok && r.now().Sub(fetchedAt) < r.ttl {
			return t, nil
		}
		t, err := r.Reader.Read(ctx)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, key, t, r.now(), r.ttl); err != nil {
			r.logger.Warn("source cache write failed", zap.String("key", key), zap.Error(err))
		}
		return t, nil
	})
	if err != nil {
		return tabular.Table{}, err
	}
	r.logger.Debug("source fetched", zap.String("key", key), zap.Bool("shared", shared))
	return v.(tabular.Table).Clone(), nil
}
