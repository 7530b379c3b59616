package cache

import (
	"container/list"
	"sync"

	"github.com/jaennil/tileview/pkg/metrics"
)

type entry struct {
	key   Key
	value Value
}

// LRUCache is a bounded in-memory recency cache. Both Get hits and Sets
// count as an access. The mutex is held only across list/map bookkeeping,
// never across I/O.
type LRUCache struct {
	mu      sync.Mutex
	maxSize int
	items   map[Key]*list.Element
	lruList *list.List
}

var _ TileCache = (*LRUCache)(nil)

func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &LRUCache{
		maxSize: maxSize,
		items:   make(map[Key]*list.Element),
		lruList: list.New(),
	}
}

func (c *LRUCache) Get(key Key) (Value, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		metrics.CacheMisses.Inc()
		return Value{}, false, nil
	}

	c.lruList.MoveToFront(elem)
	metrics.CacheHits.Inc()
	return elem.Value.(*entry).value, true, nil
}

func (c *LRUCache) Set(key Key, value Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).value = value
		c.lruList.MoveToFront(elem)
		return nil
	}

	if c.lruList.Len() >= c.maxSize {
		oldest := c.lruList.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(*entry).key)
			c.lruList.Remove(oldest)
			metrics.CacheEvictions.Inc()
		}
	}

	ent := &entry{key: key, value: value}
	c.items[key] = c.lruList.PushFront(ent)
	metrics.CacheStores.Inc()
	return nil
}

// Invalidate drops the entry for key; a no-op if the key is absent.
func (c *LRUCache) Invalidate(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil
	}

	delete(c.items, key)
	c.lruList.Remove(elem)
	return nil
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
