package tenancy

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache stores resolved descriptors keyed by external org id. Entries are
// immutable once computed. Mappings are write-once in the normal lifecycle, so
// there is no TTL requirement; Invalidate exists for provisioning flows that
// reassign or revoke a mapping.
type Cache interface {
	Get(ctx context.Context, orgID string) (*Descriptor, bool)
	Set(ctx context.Context, orgID string, d *Descriptor)
	Invalidate(ctx context.Context, orgID string)
}

// ResolutionCache is a read-through cache over a Directory with
// single-flight semantics: concurrent first-time resolutions of the same org
// perform exactly one directory lookup and all callers observe the identical
// descriptor. It implements Directory so it can stand in wherever one is
// expected.
type ResolutionCache struct {
	dir   Directory
	store Cache
	group singleflight.Group
}

// NewResolutionCache wraps dir with an in-memory store.
func NewResolutionCache(dir Directory) *ResolutionCache {
	return NewResolutionCacheWithStore(dir, newMemoryCache())
}

// NewResolutionCacheWithStore wraps dir with a caller-provided store, e.g. a
// Redis-backed one shared across instances.
func NewResolutionCacheWithStore(dir Directory, store Cache) *ResolutionCache {
	if store == nil {
		store = newMemoryCache()
	}
	return &ResolutionCache{dir: dir, store: store}
}

// Resolve implements Directory. Lookup failures are not cached: a transient
// directory error for an org must not poison subsequent resolutions.
func (c *ResolutionCache) Resolve(ctx context.Context, orgID string) (*Descriptor, error) {
	if d, ok := c.store.Get(ctx, orgID); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(orgID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have populated
		// the store between our miss and winning the flight.
		if d, ok := c.store.Get(ctx, orgID); ok {
			return d, nil
		}
		d, err := c.dir.Resolve(ctx, orgID)
		if err != nil {
			return nil, err
		}
		c.store.Set(ctx, orgID, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

// Invalidate evicts one org's entry. Nothing in the request hot path calls
// this; it is for explicit tenant reassignment or deprovisioning.
func (c *ResolutionCache) Invalidate(ctx context.Context, orgID string) {
	c.store.Invalidate(ctx, orgID)
}

// NewMemoryCache returns the default in-process Cache store, for callers
// that wire the store themselves instead of using NewResolutionCache.
func NewMemoryCache() Cache {
	return newMemoryCache()
}

// memoryCache is the default in-process store. Descriptors are tiny and
// organizations are bounded in number, so there is no eviction.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*Descriptor)}
}

func (m *memoryCache) Get(_ context.Context, orgID string) (*Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.entries[orgID]
	return d, ok
}

func (m *memoryCache) Set(_ context.Context, orgID string, d *Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[orgID] = d
}

func (m *memoryCache) Invalidate(_ context.Context, orgID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, orgID)
}
