package snapcache

import (
	"math"
	"testing"
	"time"

	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/host/hostfake"
)

func unbounded(n int) Policy {
	return Policy{Enabled: true, TTL: time.Duration(math.MaxInt64), MaxEntries: n}
}

func key(ws int) Key { return Key{Monitor: 1, Workspace: host.WorkspaceID(ws)} }

func TestCache_StoreAndRestore(t *testing.T) {
	clock := hostfake.NewClock()
	cache := New(Policy{Enabled: true, TTL: time.Second, MaxEntries: 8}, clock)

	img := &hostfake.Image{W: 10, H: 5, Label: "a"}
	captured := clock.Now().Add(-time.Minute)
	if !cache.Store(key(1), img, captured) {
		t.Fatal("expected store to succeed")
	}

	got, capturedAt, ok := cache.Restore(key(1))
	if !ok {
		t.Fatal("expected cache hit, got miss")
	}
	if got != img {
		t.Errorf("image: got %v, want %v", got, img)
	}
	if !capturedAt.Equal(captured) {
		t.Errorf("capturedAt: got %v, want %v", capturedAt, captured)
	}

	if _, _, ok := cache.Restore(key(2)); ok {
		t.Error("expected miss for unknown workspace")
	}
}

func TestCache_ZeroCapturedAtBecomesNow(t *testing.T) {
	clock := hostfake.NewClock()
	cache := New(unbounded(4), clock)
	cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, time.Time{})
	_, capturedAt, ok := cache.Restore(key(1))
	if !ok || !capturedAt.Equal(clock.Now()) {
		t.Errorf("capturedAt: got %v (hit=%v), want %v", capturedAt, ok, clock.Now())
	}
}

func TestCache_RejectsDegenerateImages(t *testing.T) {
	cache := New(unbounded(4), hostfake.NewClock())
	if cache.Store(key(1), &hostfake.Image{W: 0, H: 10}, time.Time{}) {
		t.Error("zero-width image must be rejected")
	}
	if cache.Store(key(1), nil, time.Time{}) {
		t.Error("nil image must be rejected")
	}
	if cache.Len() != 0 {
		t.Errorf("Len: got %d, want 0", cache.Len())
	}
}

func TestCache_DegenerateEntryIsEvictedOnRestore(t *testing.T) {
	cache := New(unbounded(4), hostfake.NewClock())
	img := &hostfake.Image{W: 4, H: 4}
	cache.Store(key(1), img, time.Time{})

	// The renderer released the image behind our back.
	img.W = 0

	if _, _, ok := cache.Restore(key(1)); ok {
		t.Fatal("expected miss for degenerate image")
	}
	if cache.Len() != 0 {
		t.Errorf("Len: got %d, want 0", cache.Len())
	}
}

func TestCache_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"persistence off", Policy{Enabled: false, TTL: time.Second, MaxEntries: 4}},
		{"zero ttl", Policy{Enabled: true, TTL: 0, MaxEntries: 4}},
		{"negative ttl", Policy{Enabled: true, TTL: -time.Second, MaxEntries: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := New(tt.policy, hostfake.NewClock())
			if cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, time.Time{}) {
				t.Error("store must be a no-op")
			}
			if _, _, ok := cache.Restore(key(1)); ok {
				t.Error("restore must miss")
			}
		})
	}
}

func TestCache_DisablingDropsEntries(t *testing.T) {
	cache := New(unbounded(4), hostfake.NewClock())
	cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, time.Time{})
	cache.SetPolicy(Policy{Enabled: false, TTL: time.Second, MaxEntries: 4})
	if cache.Len() != 0 {
		t.Errorf("Len: got %d, want 0", cache.Len())
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := hostfake.NewClock()
	cache := New(Policy{Enabled: true, TTL: 100 * time.Millisecond, MaxEntries: 8}, clock)
	cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, time.Time{})

	clock.Advance(100 * time.Millisecond)
	if _, _, ok := cache.Restore(key(1)); !ok {
		t.Fatal("entry exactly TTL old must survive")
	}

	// Restore refreshed cachedAt, so the entry lives another TTL.
	clock.Advance(90 * time.Millisecond)
	cache.Prune()
	if cache.Len() != 1 {
		t.Fatalf("Len after refresh: got %d, want 1", cache.Len())
	}

	clock.Advance(11 * time.Millisecond)
	cache.Prune()
	if cache.Len() != 0 {
		t.Errorf("Len after expiry: got %d, want 0", cache.Len())
	}
}

func TestCache_EvictsOldestCachedFirst(t *testing.T) {
	clock := hostfake.NewClock()
	cache := New(unbounded(2), clock)

	for _, ws := range []int{1, 2, 3} {
		cache.Store(key(ws), &hostfake.Image{W: 1, H: 1}, time.Time{})
		clock.Advance(time.Millisecond)
	}

	if cache.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", cache.Len())
	}
	if _, _, ok := cache.Restore(key(1)); ok {
		t.Error("A must be evicted")
	}
	for _, ws := range []int{2, 3} {
		if _, _, ok := cache.Restore(key(ws)); !ok {
			t.Errorf("workspace %d must remain", ws)
		}
	}
}

func TestCache_EvictionUsesCacheTimeNotCaptureTime(t *testing.T) {
	clock := hostfake.NewClock()
	cache := New(unbounded(2), clock)

	// A was captured long ago but restored recently, B is fresh.
	cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, clock.Now().Add(-time.Hour))
	clock.Advance(time.Millisecond)
	cache.Store(key(2), &hostfake.Image{W: 1, H: 1}, time.Time{})
	clock.Advance(time.Millisecond)
	cache.Restore(key(1))
	clock.Advance(time.Millisecond)
	cache.Store(key(3), &hostfake.Image{W: 1, H: 1}, time.Time{})

	if _, _, ok := cache.Restore(key(2)); ok {
		t.Error("B has the oldest cache time and must be evicted")
	}
	if _, _, ok := cache.Restore(key(1)); !ok {
		t.Error("A was refreshed by restore and must remain")
	}
}

func TestCache_PruneInvariant(t *testing.T) {
	clock := hostfake.NewClock()
	ttl := 50 * time.Millisecond
	cache := New(Policy{Enabled: true, TTL: ttl, MaxEntries: 3}, clock)

	for i := 0; i < 20; i++ {
		cache.Store(key(i%7), &hostfake.Image{W: 1, H: 1}, time.Time{})
		clock.Advance(time.Duration(i%4) * 10 * time.Millisecond)
		if i%3 == 0 {
			cache.Restore(key(i % 5))
		}
		cache.Prune()
		if cache.Len() > 3 {
			t.Fatalf("step %d: Len %d exceeds max", i, cache.Len())
		}
		for _, k := range cache.Keys() {
			e := cache.entries[k]
			if clock.Now().Sub(e.cachedAt) > ttl {
				t.Fatalf("step %d: entry %v older than TTL", i, k)
			}
		}
	}
}

func TestCache_Invalidate(t *testing.T) {
	cache := New(unbounded(4), hostfake.NewClock())
	cache.Store(key(1), &hostfake.Image{W: 1, H: 1}, time.Time{})
	cache.Invalidate(key(1))
	if _, _, ok := cache.Restore(key(1)); ok {
		t.Error("expected miss after invalidate")
	}
}
