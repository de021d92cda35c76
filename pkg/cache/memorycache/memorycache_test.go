package memorycache

import (
	"fmt"
	"sync"
	"testing"
)

func newTestCache(maxEntries int) *Cache[string] {
	return New[string](&Config{
		MaxEntries:    maxEntries,
		EnableMetrics: true,
	})
}

func TestCache_SetAndGet(t *testing.T) {
	cache := newTestCache(16)

	// Set a value
	cache.Set("angle", "float")

	// Get the value
	value, found := cache.Get("angle")
	if !found {
		t.Error("expected to find angle")
	}
	if value != "float" {
		t.Errorf("expected float, got %v", value)
	}

	// Get non-existent key
	value, found = cache.Get("nonexistent")
	if found {
		t.Error("expected not to find nonexistent key")
	}
	if value != "" {
		t.Errorf("expected zero value for a miss, got %q", value)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	cache := newTestCache(3)

	cache.Set("a", "string")
	cache.Set("b", "string")
	cache.Set("c", "string")

	// Touch "a" so that "b" becomes the least recently used entry
	cache.Get("a")
	cache.Set("d", "float")

	if cache.Len() != 3 {
		t.Errorf("expected 3 items after eviction, got %d", cache.Len())
	}
	if _, found := cache.Get("b"); found {
		t.Error("expected least recently used item 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("expected to find %q", key)
		}
	}
	if evicted := cache.Metrics().KeysEvicted; evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
}

func TestCache_Unbounded(t *testing.T) {
	cache := newTestCache(0)

	for i := 0; i < 100; i++ {
		cache.Set(fmt.Sprintf("key%d", i), "float")
	}

	if cache.Len() != 100 {
		t.Errorf("expected 100 items without a limit, got %d", cache.Len())
	}
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(16)

	// Set and verify
	cache.Set("key1", "string")
	if _, found := cache.Get("key1"); !found {
		t.Error("expected to find key1")
	}

	cache.Delete("key1")

	// Should not find it
	if _, found := cache.Get("key1"); found {
		t.Error("expected not to find key1 after deletion")
	}

	// Delete non-existent key is a no-op
	cache.Delete("nonexistent")
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache(16)

	// Add multiple items
	cache.Set("key1", "string")
	cache.Set("key2", "string")
	cache.Set("key3", "float")

	if cache.Len() != 3 {
		t.Errorf("expected 3 items, got %d", cache.Len())
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("expected 0 items after clear, got %d", cache.Len())
	}
}

func TestCache_Metrics(t *testing.T) {
	cache := newTestCache(16)

	// Initially no hits or misses
	metrics := cache.Metrics()
	if metrics.Hits != 0 || metrics.Misses != 0 {
		t.Errorf("expected 0 hits and misses initially, got %d hits and %d misses", metrics.Hits, metrics.Misses)
	}

	cache.Set("key1", "string")

	// Get should be a hit
	cache.Get("key1")
	metrics = cache.Metrics()
	if metrics.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", metrics.Hits)
	}

	// Get non-existent should be a miss
	cache.Get("nonexistent")
	metrics = cache.Metrics()
	if metrics.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", metrics.Misses)
	}

	// Verify hit rate
	expectedHitRate := 0.5 // 1 hit, 1 miss
	if metrics.HitRate() != expectedHitRate {
		t.Errorf("expected hit rate %f, got %f", expectedHitRate, metrics.HitRate())
	}

	cache.ResetMetrics()
	if m := cache.Metrics(); m.Hits != 0 || m.Misses != 0 || m.KeysAdded != 0 {
		t.Errorf("expected metrics to be reset, got %+v", m)
	}
}

func TestCache_MetricsDisabled(t *testing.T) {
	cache := New[string](&Config{MaxEntries: 4})

	cache.Set("key1", "string")
	cache.Get("key1")
	cache.Get("missing")

	if m := cache.Metrics(); m.Hits != 0 || m.Misses != 0 {
		t.Errorf("expected empty metrics when disabled, got %+v", m)
	}
}

func TestCache_UpdateExisting(t *testing.T) {
	cache := newTestCache(16)

	cache.Set("key1", "string")
	cache.Set("key1", "float")

	value, found := cache.Get("key1")
	if !found {
		t.Error("expected to find key1")
	}
	if value != "float" {
		t.Errorf("expected float, got %v", value)
	}

	// Should still be only 1 item
	if cache.Len() != 1 {
		t.Errorf("expected 1 item, got %d", cache.Len())
	}
	if added := cache.Metrics().KeysAdded; added != 1 {
		t.Errorf("expected 1 key added, got %d", added)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := newTestCache(8)
	var wg sync.WaitGroup

	// Concurrent writers and readers
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set(fmt.Sprintf("key%d", (id+j)%12), "float")
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Get(fmt.Sprintf("key%d", (id+j)%12))
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 8 {
		t.Errorf("expected at most 8 items, got %d", cache.Len())
	}
}
