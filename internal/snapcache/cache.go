// Package snapcache keeps workspace snapshots alive between overview
// sessions so that reopening the overview can show thumbnails before the
// first capture of the new session lands.
package snapcache

import (
	"context"
	"sync"
	"time"

	"github.com/timvw/horza/internal/host"
	telem "github.com/timvw/horza/internal/otel"
)

// Key identifies a snapshot: one workspace as seen on one monitor.
type Key struct {
	Monitor   host.MonitorID
	Workspace host.WorkspaceID
}

// Policy bounds the cache. Caching is disabled unless Enabled is set and TTL
// is positive.
type Policy struct {
	Enabled    bool
	TTL        time.Duration
	MaxEntries int
}

func (p Policy) active() bool { return p.Enabled && p.TTL > 0 }

// Cache maps (monitor, workspace) to the most recent snapshot image.
//
// Entries expire TTL after they were last cached (stored or restored), not
// after they were captured. When the cache grows past MaxEntries, the entries
// with the oldest cache time are evicted first. Images are shared: a tile may
// keep drawing an image that the cache has already dropped.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	policy  Policy
	clock   host.Clock

	Metrics *telem.Metrics
}

type entry struct {
	image      host.Image
	capturedAt time.Time
	cachedAt   time.Time
}

// New creates a cache with the given policy. A nil clock uses wall time.
func New(policy Policy, clock host.Clock) *Cache {
	if clock == nil {
		clock = host.SystemClock{}
	}
	return &Cache{
		entries: make(map[Key]*entry),
		policy:  policy,
		clock:   clock,
	}
}

// SetPolicy replaces the policy and prunes immediately.
func (c *Cache) SetPolicy(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
	c.pruneLocked(c.clock.Now())
}

// Policy returns the current policy.
func (c *Cache) Policy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy
}

// Store saves img for key. Zero-area images are rejected and a disabled
// cache ignores the call. A zero capturedAt is replaced with now.
func (c *Cache) Store(key Key, img host.Image, capturedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.pruneLocked(now)
	if !c.policy.active() || host.Degenerate(img) {
		return false
	}
	if capturedAt.IsZero() {
		capturedAt = now
	}
	c.entries[key] = &entry{image: img, capturedAt: capturedAt, cachedAt: now}
	c.Metrics.RecordSnapshotCache(context.Background(), "store")
	c.pruneLocked(now)
	return true
}

// Restore returns the image cached for key. A hit refreshes the entry's
// cache time. Degenerate entries are evicted and reported as misses.
func (c *Cache) Restore(key Key) (host.Image, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.pruneLocked(now)
	defer c.pruneLocked(now)

	if !c.policy.active() {
		return nil, time.Time{}, false
	}
	e, ok := c.entries[key]
	if !ok {
		c.Metrics.RecordSnapshotCache(context.Background(), "miss")
		return nil, time.Time{}, false
	}
	if host.Degenerate(e.image) {
		delete(c.entries, key)
		c.Metrics.RecordSnapshotCache(context.Background(), "miss")
		return nil, time.Time{}, false
	}
	e.cachedAt = now
	c.Metrics.RecordSnapshotCache(context.Background(), "hit")
	return e.image, e.capturedAt, true
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Prune drops expired and degenerate entries, then trims the cache to
// MaxEntries by evicting the oldest-cached entries.
func (c *Cache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.clock.Now())
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys in no particular order.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache) pruneLocked(now time.Time) {
	if !c.policy.active() {
		if len(c.entries) > 0 {
			c.entries = make(map[Key]*entry)
		}
		return
	}
	for k, e := range c.entries {
		if host.Degenerate(e.image) || now.Sub(e.cachedAt) > c.policy.TTL {
			delete(c.entries, k)
			c.Metrics.RecordSnapshotCache(context.Background(), "expire")
		}
	}
	limit := c.policy.MaxEntries
	if limit < 0 {
		limit = 0
	}
	for len(c.entries) > limit {
		var oldest Key
		var oldestAt time.Time
		first := true
		for k, e := range c.entries {
			if first || e.cachedAt.Before(oldestAt) {
				oldest, oldestAt, first = k, e.cachedAt, false
			}
		}
		delete(c.entries, oldest)
		c.Metrics.RecordSnapshotCache(context.Background(), "evict")
	}
}
