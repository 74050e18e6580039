package cache

import (
	"log/slog"
	"time"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictLRU — the least recently used entry made room for an insertion.
	EvictLRU EvictReason = iota
	// EvictResize — removed because the capacity was lowered below the size.
	EvictResize
)

// String returns a stable lowercase name, suitable for metric labels.
func (r EvictReason) String() string {
	switch r {
	case EvictResize:
		return "resize"
	default:
		return "lru"
	}
}

// LoadOutcome classifies a finished loader invocation.
type LoadOutcome int

const (
	// LoadOK — the loader produced a value and it was stored.
	LoadOK LoadOutcome = iota
	// LoadAbsent — the loader reported that the key has no value.
	LoadAbsent
	// LoadFailed — the loader returned an error or panicked.
	LoadFailed
	// LoadAbandoned — the load finished after Purge; its result was dropped.
	LoadAbandoned
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadAbsent:
		return "absent"
	case LoadFailed:
		return "failed"
	case LoadAbandoned:
		return "abandoned"
	default:
		return "ok"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Evict and Size are called with the cache lock held. Hit and Miss may be
// called with or without it, and ObserveLoad never is. Implementations must
// not call back into the cache.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries, capacity int)
	ObserveLoad(d time.Duration, outcome LoadOutcome)
}

// Clock provides time in UnixNano; useful for deterministic tests.
// The cache itself never reads a clock: it is only consulted by the
// Stamp and MaxAge helpers that build decaying values and predicates.
type Clock interface{ NowUnixNano() int64 }

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowUnixNano implements Clock.
func (SystemClock) NowUnixNano() int64 { return time.Now().UnixNano() }

// Options configures a cache. Zero values are safe except Capacity;
// defaults are applied by the constructors:
//   - nil Metrics => NoopMetrics
//   - nil Logger  => slog.Default()
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. It must be >= 1.
	Capacity int

	// OnEvict is called on eviction under the cache lock; keep callbacks
	// lightweight and never call back into the cache. Explicit Delete and
	// Clear do not trigger it.
	OnEvict func(k K, v V, reason EvictReason)

	// Metrics receives hit/miss/evict/size/load signals.
	Metrics Metrics

	// Logger receives debug records about loads and capacity changes.
	Logger *slog.Logger
}

// withDefaults returns a copy of o with nil fields filled in.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
