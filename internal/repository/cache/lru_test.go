package cache

import (
	"fmt"
	"sync"
	"testing"
)

func val(s string) Value {
	return Value{Data: []byte(s), Extension: "png"}
}

func TestLRUGetSet(t *testing.T) {
	c := NewLRUCache(10)

	key := Key{Row: 1, Col: 2}
	if _, ok, _ := c.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	if err := c.Set(key, val("payload")); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	v, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit: ok=%v err=%v", ok, err)
	}
	if string(v.Data) != "payload" || v.Extension != "png" {
		t.Errorf("unexpected value: %+v", v)
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(3)

	k1 := Key{Row: 1}
	k2 := Key{Row: 2}
	k3 := Key{Row: 3}
	k4 := Key{Row: 4}

	c.Set(k1, val("1"))
	c.Set(k2, val("2"))
	c.Set(k3, val("3"))

	// touching k1 promotes it, leaving k2 the eviction candidate
	if _, ok, _ := c.Get(k1); !ok {
		t.Fatal("expected k1 hit")
	}

	c.Set(k4, val("4"))

	if _, ok, _ := c.Get(k2); ok {
		t.Error("k2 should have been evicted")
	}
	for _, k := range []Key{k1, k3, k4} {
		if _, ok, _ := c.Get(k); !ok {
			t.Errorf("key %+v should still be cached", k)
		}
	}
}

func TestLRUHoldsExactlyCapacity(t *testing.T) {
	const capacity = 5
	c := NewLRUCache(capacity)

	for i := 0; i < capacity*4; i++ {
		c.Set(Key{Row: i}, val(fmt.Sprintf("%d", i)))
	}

	if c.Len() != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, c.Len())
	}
	// exactly the most recently accessed distinct keys survive
	for i := capacity*4 - capacity; i < capacity*4; i++ {
		if _, ok, _ := c.Get(Key{Row: i}); !ok {
			t.Errorf("expected key %d among survivors", i)
		}
	}
}

func TestLRUSetUpdatesExisting(t *testing.T) {
	c := NewLRUCache(3)

	key := Key{Row: 1}
	c.Set(key, val("old"))
	c.Set(key, val("new"))

	if c.Len() != 1 {
		t.Fatalf("expected single entry, got %d", c.Len())
	}
	v, ok, _ := c.Get(key)
	if !ok || string(v.Data) != "new" {
		t.Errorf("expected updated value, got ok=%v %q", ok, v.Data)
	}
}

func TestLRUInvalidate(t *testing.T) {
	c := NewLRUCache(3)

	key := Key{Row: 5, Col: 10}
	c.Set(key, val("stale"))

	if err := c.Invalidate(key); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Error("expected entry to be gone after invalidate")
	}

	// absent key is a no-op
	if err := c.Invalidate(Key{Row: 404}); err != nil {
		t.Errorf("invalidate of absent key failed: %v", err)
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRUCache(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := Key{Row: i % 100, Col: g}
				switch i % 3 {
				case 0:
					c.Set(key, val("v"))
				case 1:
					c.Get(key)
				default:
					c.Invalidate(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("capacity exceeded: %d", c.Len())
	}
}
