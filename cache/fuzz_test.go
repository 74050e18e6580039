//go:build go1.18

package cache

import (
	"strings"
	"testing"
)

// Fuzz Set/Get/Peek/Delete and resizing under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: We cap key/value lengths to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzLRU_SetGetDelete(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "", uint8(1))
	f.Add("a", "1", uint8(2))
	f.Add("b", "2", uint8(3))
	f.Add("αβγ", "δ", uint8(4))
	f.Add("emoji🙂", "🙂🙂", uint8(16))
	f.Add("long", strings.Repeat("x", 1024), uint8(255))

	f.Fuzz(func(t *testing.T, k, v string, capByte uint8) {
		// Cap lengths to keep memory bounded during fuzzing.
		const limit = 1 << 12 // 4096
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}
		capacity := int(capByte%16) + 1

		c, err := NewLRU(Options[string, string]{Capacity: capacity})
		if err != nil {
			t.Fatalf("NewLRU(%d): %v", capacity, err)
		}

		// Fill past capacity with derived keys, then write k last.
		for i := 0; i < capacity+3; i++ {
			c.Set(k+strings.Repeat("#", i+1), v)
		}
		c.Set(k, v)
		if c.Len() > capacity {
			t.Fatalf("len %d > capacity %d", c.Len(), capacity)
		}

		// The most recent write always survives.
		if got, ok := c.Peek(k); !ok || got != v {
			t.Fatalf("after Set/Peek: want %q, got %q ok=%v", v, got, ok)
		}
		if got, ok := c.Get(k); !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// Shrinking to one keeps exactly the MRU entry.
		if err := c.SetCapacity(1); err != nil {
			t.Fatal(err)
		}
		if c.Len() != 1 || !c.Contains(k) {
			t.Fatalf("shrink must keep only %q, len=%d", k, c.Len())
		}

		// Delete must remove and return true once.
		if !c.Delete(k) {
			t.Fatalf("Delete must return true")
		}
		if c.Delete(k) {
			t.Fatalf("second Delete must return false")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Delete")
		}
	})
}
