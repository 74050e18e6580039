package cache

import (
	"context"
	"time"
)

// Decaying is a loading cache that also consults a freshness predicate on
// every Load. A stored value the predicate rejects is treated as a miss and
// reloaded; until the reload stores its result, the stale entry keeps its
// place in the recency order.
//
// Freshness never influences eviction: a fresh entry can still be evicted for
// being least recently used, and a stale entry nobody loads is never purged.
// Get, Peek and Contains from the embedded Synced ignore freshness.
type Decaying[K comparable, V any] struct {
	*Synced[K, V]
	l *loader[K, V]
}

// NewDecaying constructs a decaying loading cache. fresh is called outside
// the cache lock and may be called concurrently.
// It returns ErrInvalidCapacity, ErrNoLoader or ErrNoPredicate on bad arguments.
func NewDecaying[K comparable, V any](opt Options[K, V], load Loader[K, V], fresh func(V) bool) (*Decaying[K, V], error) {
	if fresh == nil {
		return nil, ErrNoPredicate
	}
	l, err := newLoader(opt, load, fresh)
	if err != nil {
		return nil, err
	}
	return &Decaying[K, V]{Synced: l.store, l: l}, nil
}

// Load returns the stored value for k if it is present and fresh, promoting
// it; otherwise it loads k with the same single-flight rules as Loading.Load.
func (c *Decaying[K, V]) Load(ctx context.Context, k K) (V, error) {
	return c.l.get(ctx, k, nil)
}

// Purge removes all entries and abandons loads in flight.
func (c *Decaying[K, V]) Purge() { c.l.purge() }

// Stats returns a snapshot of the load counters.
func (c *Decaying[K, V]) Stats() Stats { return c.l.stats() }

// Stamped pairs a value with the clock reading taken when it was produced.
type Stamped[V any] struct {
	Value V
	Born  int64 // UnixNano, or any monotonic tick count of the Clock in use
}

// Stamp wraps v with the current reading of clk.
func Stamp[V any](clk Clock, v V) Stamped[V] {
	return Stamped[V]{Value: v, Born: clk.NowUnixNano()}
}

// MaxAge returns a freshness predicate for Stamped values: a value is fresh
// while no more than maxAge has passed since it was stamped.
func MaxAge[V any](clk Clock, maxAge time.Duration) func(Stamped[V]) bool {
	return func(s Stamped[V]) bool {
		return clk.NowUnixNano()-s.Born <= int64(maxAge)
	}
}

// StampLoader adapts a Loader so that every produced value is stamped with clk.
func StampLoader[K comparable, V any](clk Clock, load Loader[K, V]) Loader[K, Stamped[V]] {
	return func(ctx context.Context, k K) (Stamped[V], bool, error) {
		v, ok, err := load(ctx, k)
		if err != nil || !ok {
			return Stamped[V]{}, ok, err
		}
		return Stamp(clk, v), true, nil
	}
}
