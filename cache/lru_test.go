package cache

import (
	"iter"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLRU builds an LRU and records evicted keys in order.
func newTestLRU(t *testing.T, capacity int) (*LRU[int, string], *[]int) {
	t.Helper()
	var evicted []int
	c, err := NewLRU(Options[int, string]{
		Capacity: capacity,
		OnEvict:  func(k int, _ string, _ EvictReason) { evicted = append(evicted, k) },
	})
	require.NoError(t, err)
	return c, &evicted
}

// sortedKeys collects seq sorted, for order-insensitive comparisons.
func sortedKeys(seq iter.Seq[int]) []int {
	ks := slices.Collect(seq)
	slices.Sort(ks)
	return ks
}

func TestLRU_InvalidCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1, -100} {
		_, err := NewLRU(Options[int, string]{Capacity: capacity})
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}

	c, _ := newTestLRU(t, 3)
	c.Set(1, "a")
	c.Set(2, "b")
	require.ErrorIs(t, c.SetCapacity(0), ErrInvalidCapacity)
	assert.Equal(t, 3, c.Capacity(), "failed resize must keep capacity")
	assert.Equal(t, 2, c.Len(), "failed resize must keep entries")
}

// Capacity-1 map keeps only the latest insertion.
func TestLRU_CapacityOne(t *testing.T) {
	t.Parallel()

	c, evicted := newTestLRU(t, 1)
	c.Set(1, "First")
	c.Set(2, "Second")

	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
	assert.Equal(t, []int{1}, *evicted)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		touch   func(c *LRU[int, string])
		evicted int
	}{
		{name: "no touch evicts oldest insert", touch: func(*LRU[int, string]) {}, evicted: 1},
		{name: "get promotes", touch: func(c *LRU[int, string]) { c.Get(1) }, evicted: 2},
		{name: "contains promotes", touch: func(c *LRU[int, string]) { c.Contains(1) }, evicted: 2},
		{name: "set promotes", touch: func(c *LRU[int, string]) { c.Set(1, "a2") }, evicted: 2},
		{name: "peek does not promote", touch: func(c *LRU[int, string]) { c.Peek(1) }, evicted: 1},
		{name: "iteration does not promote", touch: func(c *LRU[int, string]) {
			for range c.All() {
			}
			for range c.Keys() {
			}
			for range c.Values() {
			}
		}, evicted: 1},
		{name: "miss has no effect", touch: func(c *LRU[int, string]) { c.Get(42) }, evicted: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, evicted := newTestLRU(t, 3)
			c.Set(1, "a")
			c.Set(2, "b")
			c.Set(3, "c")
			tc.touch(c)
			c.Set(4, "d")

			assert.Equal(t, []int{tc.evicted}, *evicted)
			assert.Equal(t, 3, c.Len())
			assert.False(t, c.Contains(tc.evicted))
		})
	}
}

func TestLRU_UpdateDoesNotGrow(t *testing.T) {
	t.Parallel()

	c, evicted := newTestLRU(t, 2)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(1, "a2")

	assert.Equal(t, 2, c.Len())
	assert.Empty(t, *evicted)
	v, ok := c.Peek(1)
	assert.True(t, ok)
	assert.Equal(t, "a2", v)
}

// Keys 1,2,3 inserted, 1 read, capacity lowered to 2: 2 is the least recent.
func TestLRU_ShrinkEvictsLeastRecentFirst(t *testing.T) {
	t.Parallel()

	c, evicted := newTestLRU(t, 3)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c")
	c.Get(1)

	require.NoError(t, c.SetCapacity(2))
	assert.Equal(t, []int{1, 3}, sortedKeys(c.Keys()))
	assert.Equal(t, []int{2}, *evicted)

	c, evicted = newTestLRU(t, 5)
	for k := 1; k <= 5; k++ {
		c.Set(k, "x")
	}
	c.Get(2)
	require.NoError(t, c.SetCapacity(1))
	assert.Equal(t, []int{1, 3, 4, 5}, *evicted, "evictions run least recent first")
	assert.Equal(t, []int{2}, sortedKeys(c.Keys()))
	assert.Equal(t, 1, c.Capacity())
}

func TestLRU_GrowKeepsEntries(t *testing.T) {
	t.Parallel()

	c, evicted := newTestLRU(t, 2)
	c.Set(1, "a")
	c.Set(2, "b")
	require.NoError(t, c.SetCapacity(10))

	assert.Equal(t, 2, c.Len())
	assert.Empty(t, *evicted)
	c.Set(3, "c")
	assert.Equal(t, 3, c.Len())
}

func TestLRU_DeleteAndClear(t *testing.T) {
	t.Parallel()

	c, evicted := newTestLRU(t, 3)
	c.Set(1, "a")
	c.Set(2, "b")

	assert.True(t, c.Delete(1))
	assert.False(t, c.Delete(1), "second delete is a no-op")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(2)
	assert.False(t, ok)
	assert.Empty(t, *evicted, "delete/clear are not evictions")

	// The cache is fully usable after Clear.
	for k := 1; k <= 4; k++ {
		c.Set(k, "x")
	}
	assert.Equal(t, []int{1}, *evicted)
}

func TestLRU_Iteration(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 4)
	want := map[int]string{1: "a", 2: "b", 3: "c"}
	for k, v := range want {
		c.Set(k, v)
	}

	assert.Equal(t, want, maps.Collect(c.All()))
	vals := slices.Collect(c.Values())
	slices.Sort(vals)
	assert.Equal(t, []string{"a", "b", "c"}, vals)

	// Early break stops the sequence.
	n := 0
	for range c.Keys() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

// After any sequence of operations the size never exceeds the capacity and
// the map and list agree.
func TestLRU_InvariantsUnderMixedOps(t *testing.T) {
	t.Parallel()

	c, _ := newTestLRU(t, 7)
	for i := 0; i < 5_000; i++ {
		k := (i * 7919) % 23
		switch i % 6 {
		case 0, 1, 2:
			c.Set(k, "v")
		case 3:
			c.Get(k)
		case 4:
			c.Delete(k)
		case 5:
			require.NoError(t, c.SetCapacity(1+i%11))
		}
		require.LessOrEqual(t, c.Len(), c.Capacity())
		require.Equal(t, len(c.m), c.ll.len)

		n := 0
		for nd := c.ll.head; nd != nil; nd = nd.next {
			require.Same(t, nd, c.m[nd.key])
			n++
		}
		require.Equal(t, c.ll.len, n)
	}
}
