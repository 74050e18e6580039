// Package singleflight coalesces concurrent calls for the same key.
package singleflight

import (
	"context"
	"errors"
	"sync"
)

// ErrPanicked is delivered to followers when the leader's fn panicked.
var ErrPanicked = errors.New("singleflight: leader panicked")

// Group coalesces concurrent function calls for the same key K so that
// at most one fn per key is running at any instant. Other concurrent callers
// wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) and dropping the
//     in-flight record happen-before close(c.done), so a follower that
//     wakes up and calls Do again never joins the finished call.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn.
//   - The record is released even if fn panics; followers then get
//     ErrPanicked and the panic continues in the leader.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// Do runs fn once for the given key, or waits for the run already in flight.
// leader reports whether this caller ran fn. A follower whose ctx is done
// before the shared result is published returns ctx.Err().
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, leader bool, err error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, false, c.err
		case <-ctx.Done():
			var zero V
			return zero, false, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			var zero V
			c.val, c.err = zero, ErrPanicked
		}
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		close(c.done)
	}()

	// Execute fn outside the lock.
	c.val, c.err = fn()
	finished = true
	return c.val, true, c.err
}

// InFlight returns the number of keys with a running call.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
