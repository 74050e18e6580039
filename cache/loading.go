package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/lrucache/internal/singleflight"
	"github.com/IvanBrykalov/lrucache/internal/util"
)

// Loader produces the value for a key on a cache miss.
// ok == false means the key has no value; it is not an error.
// A non-nil error is returned unchanged to every caller waiting on the load.
type Loader[K comparable, V any] func(ctx context.Context, k K) (v V, ok bool, err error)

// Stats is a point-in-time copy of a loading cache's counters.
type Stats struct {
	Hits      uint64 // Load served from storage
	Loads     uint64 // loader invocations
	Absent    uint64 // loader reported no value
	Failures  uint64 // loader returned an error or panicked
	Abandoned uint64 // loads dropped by Purge
}

// loader is the single-flight machinery shared by Loading and Decaying.
// It never calls load or fresh with the storage lock held.
type loader[K comparable, V any] struct {
	store   *Synced[K, V]
	load    Loader[K, V]
	fresh   func(V) bool // nil: every stored value is fresh
	flights singleflight.Group[K, V]

	// gen is bumped by purge under the storage lock; a load only stores its
	// result if gen is unchanged since it started.
	gen atomic.Uint64

	metrics Metrics
	log     *slog.Logger

	_         util.CacheLinePad
	hits      util.PaddedCounter
	loads     util.PaddedCounter
	absent    util.PaddedCounter
	failures  util.PaddedCounter
	abandoned util.PaddedCounter
}

func newLoader[K comparable, V any](opt Options[K, V], load Loader[K, V], fresh func(V) bool) (*loader[K, V], error) {
	if load == nil {
		return nil, ErrNoLoader
	}
	opt = opt.withDefaults()
	store, err := NewSynced(opt)
	if err != nil {
		return nil, err
	}
	return &loader[K, V]{
		store:   store,
		load:    load,
		fresh:   fresh,
		metrics: opt.Metrics,
		log:     opt.Logger,
	}, nil
}

// cached returns a stored value that may be served without loading.
// A stale value is reported as a miss and left in its recency slot.
func (l *loader[K, V]) cached(k K) (V, bool) {
	if l.fresh == nil {
		return l.store.Get(k)
	}
	v, ok := l.store.Peek(k)
	if !ok || !l.fresh(v) {
		l.metrics.Miss()
		var zero V
		return zero, false
	}
	// Touch. The entry may have been replaced by a newer load meanwhile;
	// that value is at least as recent, so serve it.
	return l.store.Get(k)
}

// recheck is cached without metrics: the caller already counted its miss.
func (l *loader[K, V]) recheck(k K) (v V, ok bool) {
	if v, ok = l.store.Peek(k); !ok || (l.fresh != nil && !l.fresh(v)) {
		var zero V
		return zero, false
	}
	ok = false
	l.store.update(func(lru *LRU[K, V]) {
		if n, found := lru.m[k]; found {
			lru.ll.moveToFront(n)
			v, ok = n.val, true
		}
	})
	return v, ok
}

// get implements Load: serve from storage or run (or join) the key's load.
// def is stored when the loader reports absence; nil means no default.
func (l *loader[K, V]) get(ctx context.Context, k K, def *V) (V, error) {
	for {
		if v, ok := l.cached(k); ok {
			l.hits.Inc()
			return v, nil
		}
		v, leader, err := l.flights.Do(ctx, k, func() (V, error) {
			return l.fill(ctx, k, def)
		})
		// A follower whose leader found nothing retries with its own
		// default instead of inheriting the leader's ErrAbsent.
		if !leader && def != nil && errors.Is(err, ErrAbsent) {
			continue
		}
		return v, err
	}
}

// fill runs the loader and stores its result. Only the flight leader calls it.
func (l *loader[K, V]) fill(ctx context.Context, k K, def *V) (V, error) {
	// Double-check after winning the flight: a previous leader may have
	// stored k between our miss and our Do.
	if v, ok := l.recheck(k); ok {
		l.hits.Inc()
		return v, nil
	}

	var zero V
	gen := l.gen.Load()
	l.loads.Inc()
	start := time.Now()

	outcome := LoadFailed
	returned := false
	defer func() {
		if !returned {
			l.log.Error("Cache loader panicked.", "key", k)
		}
		l.metrics.ObserveLoad(time.Since(start), outcome)
		if outcome == LoadFailed {
			l.failures.Inc()
		}
	}()

	v, ok, err := l.load(ctx, k)
	returned = true
	if err != nil {
		l.log.Debug("Cache loader failed.", "key", k, "error", err)
		return zero, err
	}
	if !ok {
		l.absent.Inc()
		if def == nil {
			outcome = LoadAbsent
			return zero, ErrAbsent
		}
		v = *def
	}

	stored := false
	l.store.update(func(lru *LRU[K, V]) {
		if l.gen.Load() == gen {
			lru.Set(k, v)
			stored = true
		}
	})
	if !stored {
		outcome = LoadAbandoned
		l.abandoned.Inc()
		l.log.Debug("Cache load abandoned by purge.", "key", k)
		return zero, ErrAbandoned
	}
	if ok {
		outcome = LoadOK
	} else {
		outcome = LoadAbsent
	}
	return v, nil
}

// purge clears storage and abandons loads in flight.
func (l *loader[K, V]) purge() {
	l.store.update(func(lru *LRU[K, V]) {
		l.gen.Add(1)
		lru.Clear()
	})
}

func (l *loader[K, V]) stats() Stats {
	return Stats{
		Hits:      l.hits.Load(),
		Loads:     l.loads.Load(),
		Absent:    l.absent.Load(),
		Failures:  l.failures.Load(),
		Abandoned: l.abandoned.Load(),
	}
}

// Loading is a Synced LRU that fills misses through a Loader. Concurrent
// Loads of the same missing key share one loader invocation; loads of
// different keys run independently. The embedded Synced exposes the plain
// query surface (Get, Peek, Set, SetCapacity, Keys, ...).
type Loading[K comparable, V any] struct {
	*Synced[K, V]
	l *loader[K, V]
}

// NewLoading constructs a loading cache.
// It returns ErrInvalidCapacity or ErrNoLoader on bad arguments.
func NewLoading[K comparable, V any](opt Options[K, V], load Loader[K, V]) (*Loading[K, V], error) {
	l, err := newLoader(opt, load, nil)
	if err != nil {
		return nil, err
	}
	return &Loading[K, V]{Synced: l.store, l: l}, nil
}

// Load returns the cached value for k, promoting it, or loads it on a miss.
// If the loader reports no value, nothing is stored and ErrAbsent is returned.
// Loader errors are returned unchanged and nothing is stored; the next Load
// retries. ctx is passed to the loader; a caller waiting on another caller's
// load stops waiting when its own ctx is done. Waiters share the result of
// the running load, so if the loading caller's ctx is cancelled and the
// loader honours it, waiters receive that ctx error too.
func (c *Loading[K, V]) Load(ctx context.Context, k K) (V, error) {
	return c.l.get(ctx, k, nil)
}

// LoadOr is Load, except that when the loader reports no value def is stored
// under k and returned, so later Loads serve def without reloading.
func (c *Loading[K, V]) LoadOr(ctx context.Context, k K, def V) (V, error) {
	return c.l.get(ctx, k, &def)
}

// Purge removes all entries and abandons loads in flight: their results are
// not stored and their callers get ErrAbandoned.
func (c *Loading[K, V]) Purge() { c.l.purge() }

// Stats returns a snapshot of the load counters.
func (c *Loading[K, V]) Stats() Stats { return c.l.stats() }
