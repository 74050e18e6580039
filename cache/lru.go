package cache

import (
	"fmt"
	"iter"
)

// LRU is a bounded key/value map that evicts the least recently used entry
// when an insertion would exceed its capacity.
//
// Get, Set and Contains count as a use and move the entry to the most
// recently used position. Peek and iteration never change the order.
//
// LRU is not safe for concurrent use, not even for concurrent reads, because
// reads reorder the recency list. Use Synced for shared access.
type LRU[K comparable, V any] struct {
	m   map[K]*node[K, V]
	ll  list[K, V]
	cap int

	onEvict func(k K, v V, reason EvictReason)
	metrics Metrics
}

// NewLRU constructs an empty LRU. Only Capacity, OnEvict and Metrics are used.
// It returns ErrInvalidCapacity if opt.Capacity < 1.
func NewLRU[K comparable, V any](opt Options[K, V]) (*LRU[K, V], error) {
	if err := checkCapacity(opt.Capacity); err != nil {
		return nil, err
	}
	opt = opt.withDefaults()
	return &LRU[K, V]{
		m:       make(map[K]*node[K, V], opt.Capacity),
		cap:     opt.Capacity,
		onEvict: opt.OnEvict,
		metrics: opt.Metrics,
	}, nil
}

func checkCapacity(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, n)
	}
	return nil
}

// Get returns the value for k and promotes it to most recently used.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	n, ok := c.m[k]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.ll.moveToFront(n)
	c.metrics.Hit()
	return n.val, true
}

// Peek returns the value for k without touching its recency.
func (c *LRU[K, V]) Peek(k K) (V, bool) {
	if n, ok := c.m[k]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is present. A present key is promoted to most
// recently used, exactly like Get.
func (c *LRU[K, V]) Contains(k K) bool {
	n, ok := c.m[k]
	if ok {
		c.ll.moveToFront(n)
	}
	return ok
}

// Set inserts or updates k→v and makes it the most recently used entry.
// Inserting a new key into a full cache evicts the least recently used entry.
func (c *LRU[K, V]) Set(k K, v V) {
	if n, ok := c.m[k]; ok {
		n.val = v
		c.ll.moveToFront(n)
		return
	}
	n := &node[K, V]{key: k, val: v}
	c.m[k] = n
	c.ll.pushFront(n)
	c.trim(EvictLRU)
}

// Delete removes k if present and reports whether it was.
func (c *LRU[K, V]) Delete(k K) bool {
	n, ok := c.m[k]
	if !ok {
		return false
	}
	c.ll.remove(n)
	delete(c.m, k)
	c.metrics.Size(c.ll.len, c.cap)
	return true
}

// Clear removes all entries. OnEvict is not called.
func (c *LRU[K, V]) Clear() {
	clear(c.m)
	c.ll = list[K, V]{}
	c.metrics.Size(0, c.cap)
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int { return c.ll.len }

// Capacity returns the current entry limit.
func (c *LRU[K, V]) Capacity() int { return c.cap }

// SetCapacity changes the entry limit. Shrinking below the current size evicts
// least recently used entries until the size equals n; growing never evicts.
// On ErrInvalidCapacity nothing changes.
func (c *LRU[K, V]) SetCapacity(n int) error {
	if err := checkCapacity(n); err != nil {
		return err
	}
	c.cap = n
	c.trim(EvictResize)
	return nil
}

// Keys yields every key in unspecified order.
func (c *LRU[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range c.m {
			if !yield(k) {
				return
			}
		}
	}
}

// Values yields every value in unspecified order.
func (c *LRU[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, n := range c.m {
			if !yield(n.val) {
				return
			}
		}
	}
}

// All yields every key/value pair in unspecified order.
func (c *LRU[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, n := range c.m {
			if !yield(k, n.val) {
				return
			}
		}
	}
}

// trim evicts from the LRU end until the size fits the capacity.
// The cost is O(evicted).
func (c *LRU[K, V]) trim(reason EvictReason) {
	for c.ll.len > c.cap {
		c.evict(c.ll.back(), reason)
	}
	c.metrics.Size(c.ll.len, c.cap)
}

func (c *LRU[K, V]) evict(n *node[K, V], reason EvictReason) {
	c.ll.remove(n)
	delete(c.m, n.key)
	c.metrics.Evict(reason)
	if cb := c.onEvict; cb != nil {
		cb(n.key, n.val, reason)
	}
}
