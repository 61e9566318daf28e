package hostid

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittosync/pkg/idmap"
)

// DefaultCacheTTL is the default lifetime of a cached lookup.
const DefaultCacheTTL = 5 * time.Minute

type lookupOp uint8

const (
	opName lookupOp = iota
	opID
	opGroups
)

type cacheKey struct {
	op   lookupOp
	kind idmap.Kind
	id   uint32
	name string
}

// cacheEntry stores a lookup result with its timestamp.
type cacheEntry struct {
	name     string
	id       uint32
	groups   []uint32
	found    bool
	err      error
	cachedAt time.Time
}

// CacheStats contains directory cache statistics.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int64
}

// CachedDirectory wraps any idmap.Directory with TTL-based caching.
//
// Results are cached including misses and errors, so a failing account
// service is queried at most once per key per TTL. IsSuperuser is never
// cached.
//
// Lookups take a read lock for the common hit path and upgrade to the write
// lock only to populate, re-checking after the upgrade.
type CachedDirectory struct {
	inner idmap.Directory
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]*cacheEntry

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

// NewCachedDirectory creates a caching wrapper around inner.
func NewCachedDirectory(inner idmap.Directory, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{
		inner: inner,
		ttl:   ttl,
		cache: make(map[cacheKey]*cacheEntry),
		now:   time.Now,
	}
}

// LookupName implements idmap.Directory.
func (c *CachedDirectory) LookupName(ctx context.Context, kind idmap.Kind, id uint32) (string, bool, error) {
	e := c.get(cacheKey{op: opName, kind: kind, id: id}, func() *cacheEntry {
		name, found, err := c.inner.LookupName(ctx, kind, id)
		return &cacheEntry{name: name, found: found, err: err}
	})
	return e.name, e.found, e.err
}

// LookupID implements idmap.Directory.
func (c *CachedDirectory) LookupID(ctx context.Context, kind idmap.Kind, name string) (uint32, bool, error) {
	e := c.get(cacheKey{op: opID, kind: kind, name: name}, func() *cacheEntry {
		id, found, err := c.inner.LookupID(ctx, kind, name)
		return &cacheEntry{id: id, found: found, err: err}
	})
	return e.id, e.found, e.err
}

// ProcessGroups implements idmap.Directory.
func (c *CachedDirectory) ProcessGroups(ctx context.Context) ([]uint32, error) {
	e := c.get(cacheKey{op: opGroups}, func() *cacheEntry {
		groups, err := c.inner.ProcessGroups(ctx)
		return &cacheEntry{groups: groups, err: err}
	})
	return slices.Clone(e.groups), e.err
}

// IsSuperuser implements idmap.Directory.
func (c *CachedDirectory) IsSuperuser() bool {
	return c.inner.IsSuperuser()
}

func (c *CachedDirectory) get(key cacheKey, load func() *cacheEntry) *cacheEntry {
	c.mu.RLock()
	if e, ok := c.cache[key]; ok && c.fresh(e) {
		c.mu.RUnlock()
		c.hits.Add(1)
		return e
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[key]; ok && c.fresh(e) {
		c.hits.Add(1)
		return e
	}

	e := load()
	e.cachedAt = c.now()
	c.cache[key] = e
	c.misses.Add(1)
	return e
}

func (c *CachedDirectory) fresh(e *cacheEntry) bool {
	return c.now().Sub(e.cachedAt) < c.ttl
}

// InvalidateAll clears the cache.
func (c *CachedDirectory) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[cacheKey]*cacheEntry)
	c.mu.Unlock()
}

// Stats returns current cache statistics.
func (c *CachedDirectory) Stats() CacheStats {
	c.mu.RLock()
	size := int64(len(c.cache))
	c.mu.RUnlock()

	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}
