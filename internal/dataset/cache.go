package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"bikerental/internal/infrastructure"
	"bikerental/pkg/contracts/domain"
)

type cacheKey struct {
	kind   domain.TableKind
	source string
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%s", k.kind, k.source)
}

// entry is a published load result. Failures are published too.
type entry struct {
	table *Table
	err   error
}

// Cache memoizes loader results per (kind, source). The first lookup of a key
// loads it exactly once even under concurrent callers; the result, success or
// failure, is then served until Invalidate, InvalidateAll or Reload.
type Cache struct {
	loader  TableLoader
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics

	group singleflight.Group

	mu         sync.RWMutex
	entries    map[cacheKey]entry
	generation map[cacheKey]uint64
	// epoch is bumped by InvalidateAll so loads of keys never seen before
	// are discarded too.
	epoch uint64

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// NewCache creates an empty cache in front of loader. metrics may be nil.
func NewCache(loader TableLoader, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Cache {
	return &Cache{
		loader:     loader,
		logger:     infrastructure.WithComponent(logger, "table_cache"),
		metrics:    metrics,
		entries:    make(map[cacheKey]entry),
		generation: make(map[cacheKey]uint64),
	}
}

// Get returns the memoized table for (kind, source), loading it on first use.
func (c *Cache) Get(ctx context.Context, kind domain.TableKind, source string) (*Table, error) {
	key := cacheKey{kind: kind, source: source}

	if e, ok := c.lookup(key); ok {
		c.hits.Add(1)
		c.metrics.RecordCacheLookup(ctx, string(kind), true)
		return e.table, e.err
	}

	c.misses.Add(1)
	c.metrics.RecordCacheLookup(ctx, string(kind), false)

	v, _, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// another caller may have published while we waited for the group
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		st := c.currentStamp(key)
		e := c.load(ctx, key)
		c.publish(key, st, e)
		return e, nil
	})

	e := v.(entry)
	return e.table, e.err
}

// Reload loads (kind, source) again. On success the new table replaces the
// cached one; on failure the cached entry is left untouched and the error is
// returned.
func (c *Cache) Reload(ctx context.Context, kind domain.TableKind, source string) (*Table, error) {
	key := cacheKey{kind: kind, source: source}

	v, _, _ := c.group.Do("reload|"+key.String(), func() (interface{}, error) {
		e := c.load(ctx, key)
		if e.err == nil {
			c.mu.Lock()
			c.entries[key] = e
			c.generation[key]++
			c.mu.Unlock()
		}
		return e, nil
	})

	e := v.(entry)
	return e.table, e.err
}

// Invalidate drops the entry for (kind, source). The next Get reloads it.
func (c *Cache) Invalidate(kind domain.TableKind, source string) {
	key := cacheKey{kind: kind, source: source}

	c.mu.Lock()
	delete(c.entries, key)
	c.generation[key]++
	c.mu.Unlock()

	c.group.Forget(key.String())
	c.logger.Debug("cache entry invalidated", slog.String("kind", string(kind)), slog.String("source", source))
}

// InvalidateAll drops every entry. Loads in flight when it is called are not
// published.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.epoch++
	for key := range c.generation {
		c.group.Forget(key.String())
	}
	for key := range c.entries {
		c.group.Forget(key.String())
	}
	c.entries = make(map[cacheKey]entry)
	c.mu.Unlock()

	c.logger.Debug("cache cleared")
}

// Lookup returns the published entry without loading. ok is false when
// nothing has been published for the key.
func (c *Cache) Lookup(kind domain.TableKind, source string) (table *Table, ok bool, err error) {
	e, ok := c.lookup(cacheKey{kind: kind, source: source})
	return e.table, ok, e.err
}

// Stats reports cache activity.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	return domain.CacheStats{
		Entries: n,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
	}
}

func (c *Cache) lookup(key cacheKey) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// stamp identifies the invalidation state a load started under.
type stamp struct {
	epoch uint64
	gen   uint64
}

func (c *Cache) currentStamp(key cacheKey) stamp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return stamp{epoch: c.epoch, gen: c.generation[key]}
}

func (c *Cache) load(ctx context.Context, key cacheKey) entry {
	c.loads.Add(1)
	table, err := c.loader.Load(ctx, key.kind, key.source)
	if err != nil {
		return entry{err: err}
	}
	return entry{table: table}
}

// publish stores e unless the key was invalidated while it was loading.
func (c *Cache) publish(key cacheKey, st stamp, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != st.epoch || c.generation[key] != st.gen {
		return
	}
	c.entries[key] = e
}
