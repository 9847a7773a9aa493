// Sailmap - Sailing Routes and Live AIS Vessel Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sailmap

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/sailmap/internal/metrics"
)

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, name string, ttl time.Duration) (*Cache[string], *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	return newCache[string](name, ttl, clock.Now), clock
}

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, "test-basic", time.Minute)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists || value != "value1" {
		t.Errorf("Get(key1) = %q, %v", value, exists)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, "test-expiry", 10*time.Minute)
	c.Set("key1", "value1")

	clock.Advance(10 * time.Minute)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("entry expired at exactly its TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("Expected key1 to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, Len = %d", c.Len())
	}
	if stats := c.GetStats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, "test-ttl", time.Hour)
	c.SetWithTTL("short", "v", time.Second)
	c.Set("long", "v")

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("short"); ok {
		t.Error("short entry should have expired")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("long entry should still be cached")
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, "test-clear", time.Minute)
	c.Set("key1", "value1")
	c.Delete("key1")
	c.Delete("missing")

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key%d", i), "v")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	if stats := c.GetStats(); stats.Evictions != 4 || stats.TotalKeys != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheCleanup(t *testing.T) {
	t.Parallel()

	c, clock := newTestCache(t, "test-cleanup", time.Minute)
	c.Set("old", "v")
	clock.Advance(30 * time.Second)
	c.Set("new", "v")
	clock.Advance(45 * time.Second)

	c.cleanup()

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if stats := c.GetStats(); !stats.LastCleanup.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v", stats.LastCleanup)
	}
}

func TestCacheHitRateAndMetrics(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t, "test-metrics", time.Minute)
	if c.HitRate() != 0 {
		t.Error("empty cache should report 0% hit rate")
	}

	c.Set("k", "v")
	c.Get("k")
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate = %v, want 75", got)
	}
	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues("test-metrics")); got != 3 {
		t.Errorf("cache_hits_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues("test-metrics")); got != 1 {
		t.Errorf("cache_misses_total = %v, want 1", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int]("test-concurrent", time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key%d", j%10)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Len = %d, want 10", c.Len())
	}
	c.Close()
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a := GenerateKey("conditions", map[string]float64{"lat": -35.3, "lon": 174.1})
	b := GenerateKey("conditions", map[string]float64{"lat": -35.3, "lon": 174.1})
	c := GenerateKey("conditions", map[string]float64{"lat": -35.4, "lon": 174.1})

	if a != b {
		t.Error("same params produced different keys")
	}
	if a == c {
		t.Error("different params produced the same key")
	}
	if len(a) != len("conditions:")+32 {
		t.Errorf("unexpected key %q", a)
	}
}
