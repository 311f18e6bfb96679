package querylog

import (
	"container/list"
	"sync"
)

// CacheStats reports how often compiled filters were reused.
type CacheStats struct {
	Filters int
	Hits    int
	Misses  int
}

// filterCache keeps the most recently compiled filters keyed by their
// trimmed expression. The least recently used filter is dropped once the
// capacity is exceeded.
type filterCache struct {
	mu       sync.Mutex
	capacity int
	recent   *list.List // of *Filter, most recent first
	byExpr   map[string]*list.Element
	hits     int
	misses   int
}

func newFilterCache(capacity int) *filterCache {
	return &filterCache{
		capacity: capacity,
		recent:   list.New(),
		byExpr:   make(map[string]*list.Element, capacity),
	}
}

func (c *filterCache) lookup(expression string) (*Filter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byExpr[expression]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.recent.MoveToFront(el)
	return el.Value.(*Filter), true
}

// store keeps f under its own expression.
func (c *filterCache) store(f *Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byExpr[f.expression]; ok {
		el.Value = f
		c.recent.MoveToFront(el)
		return
	}
	c.byExpr[f.expression] = c.recent.PushFront(f)

	for c.recent.Len() > c.capacity {
		stale := c.recent.Remove(c.recent.Back()).(*Filter)
		delete(c.byExpr, stale.expression)
	}
}

func (c *filterCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{Filters: c.recent.Len(), Hits: c.hits, Misses: c.misses}
}
