// Package resultcache memoizes directivity results keyed by request digest.
// Hypocentre sweeps are deterministic, so two requests with the same digest
// always produce the same result and the second compute can be skipped.
package resultcache

import (
	"context"
	"sync"

	"github.com/seismoworks/directivity"
	"github.com/seismoworks/directivity/internal/job"
	"github.com/seismoworks/directivity/internal/observability"
)

// CachedComputer wraps a Computer with an in-memory LRU cache. Cached
// results are shared between jobs and must be treated as read-only.
type CachedComputer struct {
	inner   job.Computer
	metrics *observability.Metrics
	cache   *lruCache
}

// New creates a cache decorator around a computer.
func New(inner job.Computer, maxEntries int, metrics *observability.Metrics) *CachedComputer {
	return &CachedComputer{
		inner:   inner,
		metrics: metrics,
		cache:   newLRUCache(maxEntries),
	}
}

func (c *CachedComputer) Compute(ctx context.Context, req job.Request) (*directivity.Result, error) {
	key := req.RequestID()
	if res, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return res, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	res, err := c.inner.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, res)
	return res, nil
}

// lruCache is a simple thread-safe LRU cache for directivity results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *directivity.Result
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*directivity.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *directivity.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
