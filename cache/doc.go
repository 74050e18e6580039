// Package cache provides a generic, bounded, in-memory LRU cache and three
// layers built on it: a mutex-guarded wrapper, a single-flight loading cache,
// and a decaying loading cache that reloads stale entries.
//
// Design
//
//   - LRU: a map[K]*node for lookups plus an intrusive MRU↔LRU doubly linked
//     list for recency. Get, Set and Contains promote; Peek and iteration do
//     not. Inserting past capacity evicts from the LRU end, and so does
//     lowering the capacity below the size (O(evicted)). Not goroutine-safe.
//
//   - Synced: the same operations behind one sync.Mutex. Reads take the
//     exclusive lock too because they reorder the list. Iteration copies a
//     snapshot under the lock and yields it without holding the lock.
//
//   - Loading: Load(ctx, k) serves a stored value or calls the Loader.
//     Concurrent Loads for the same key share one loader call (singleflight);
//     different keys never wait on each other. The loader runs without the
//     storage lock. A loader reporting "no value" yields ErrAbsent, unless
//     LoadOr supplied a default, which is then stored.
//
//   - Decaying: like Loading, but a stored value is only served if the
//     freshness predicate accepts it. Freshness is never consulted for
//     eviction. Stamped/MaxAge build timestamped values and a max-age
//     predicate on top of an injectable Clock.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size/ObserveLoad
//     signals. NoopMetrics is the default; metrics/prom exports to Prometheus.
//
// Basic usage
//
//	c, err := cache.NewSynced[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	if err != nil {
//	    return err
//	}
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	_ = c.SetCapacity(100) // evicts least recently used entries if needed
//
// Loading
//
//	c, err := cache.NewLoading(cache.Options[string, string]{Capacity: 1024},
//	    func(ctx context.Context, k string) (string, bool, error) {
//	        // e.g. fetch from DB; return ok=false when the row does not exist
//	        return "v:" + k, true, nil
//	    })
//	v, err := c.Load(ctx, "key")
//	if errors.Is(err, cache.ErrAbsent) {
//	    // no such key
//	}
//
// Decaying
//
//	clk := cache.SystemClock{}
//	c, err := cache.NewDecaying(cache.Options[string, cache.Stamped[string]]{Capacity: 1024},
//	    cache.StampLoader(clk, fetch),
//	    cache.MaxAge[string](clk, time.Minute))
package cache
