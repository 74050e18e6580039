package cache

import (
	"iter"
	"log/slog"
	"slices"
	"sync"
)

// Synced is an LRU guarded by a single mutex. It has the same operations and
// semantics as LRU and is safe for concurrent use.
//
// Every operation, including reads, takes the exclusive lock: reads reorder
// the recency list, so an RWMutex would buy nothing. The lock is held only for
// the O(1) map/list work (O(evicted) for SetCapacity) plus OnEvict callbacks.
type Synced[K comparable, V any] struct {
	mu  sync.Mutex
	lru *LRU[K, V] // guarded by mu

	log *slog.Logger
}

// NewSynced constructs an empty Synced cache.
// It returns ErrInvalidCapacity if opt.Capacity < 1.
func NewSynced[K comparable, V any](opt Options[K, V]) (*Synced[K, V], error) {
	opt = opt.withDefaults()
	lru, err := NewLRU(opt)
	if err != nil {
		return nil, err
	}
	return &Synced[K, V]{lru: lru, log: opt.Logger}, nil
}

// Get returns the value for k and promotes it to most recently used.
func (s *Synced[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Get(k)
}

// Peek returns the value for k without touching its recency.
func (s *Synced[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Peek(k)
}

// Contains reports whether k is present, promoting it like Get.
func (s *Synced[K, V]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Contains(k)
}

// Set inserts or updates k→v as most recently used.
func (s *Synced[K, V]) Set(k K, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Set(k, v)
}

// Delete removes k if present and reports whether it was.
func (s *Synced[K, V]) Delete(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Delete(k)
}

// Clear removes all entries.
func (s *Synced[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Clear()
}

// Len returns the number of resident entries.
func (s *Synced[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Capacity returns the current entry limit.
func (s *Synced[K, V]) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Capacity()
}

// SetCapacity changes the entry limit, evicting least recently used entries
// when shrinking below the current size.
func (s *Synced[K, V]) SetCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.lru.Len()
	if err := s.lru.SetCapacity(n); err != nil {
		return err
	}
	s.log.Debug("Cache capacity changed.", "capacity", n, "evicted", before-s.lru.Len())
	return nil
}

// Keys yields the keys present at call time, in unspecified order.
// The snapshot is taken under the lock; iteration runs without it.
func (s *Synced[K, V]) Keys() iter.Seq[K] {
	s.mu.Lock()
	keys := slices.Collect(s.lru.Keys())
	s.mu.Unlock()
	return slices.Values(keys)
}

// Values yields the values present at call time, in unspecified order.
func (s *Synced[K, V]) Values() iter.Seq[V] {
	s.mu.Lock()
	vals := slices.Collect(s.lru.Values())
	s.mu.Unlock()
	return slices.Values(vals)
}

// All yields the key/value pairs present at call time, in unspecified order.
func (s *Synced[K, V]) All() iter.Seq2[K, V] {
	type pair struct {
		k K
		v V
	}
	s.mu.Lock()
	pairs := make([]pair, 0, s.lru.Len())
	for k, v := range s.lru.All() {
		pairs = append(pairs, pair{k, v})
	}
	s.mu.Unlock()
	return func(yield func(K, V) bool) {
		for _, p := range pairs {
			if !yield(p.k, p.v) {
				return
			}
		}
	}
}

// update runs fn with the lock held. fn must not call caller-supplied code
// other than OnEvict.
func (s *Synced[K, V]) update(fn func(lru *LRU[K, V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.lru)
}
