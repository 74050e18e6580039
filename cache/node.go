package cache

// node is an intrusive doubly linked list element owned by an LRU.
// The list runs from head (most recently used) to tail (least recently used).
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]
}

// list is the recency order of an LRU. The zero value is an empty list.
type list[K comparable, V any] struct {
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	len  int
}

// pushFront inserts n at MRU in O(1).
func (l *list[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

// moveToFront promotes n to MRU in O(1).
func (l *list[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.len++ // unlink decremented; n is still resident
	n.next = l.head
	l.head.prev = n // list is non-empty: n was not the head
	l.head = n
}

// remove detaches n from the list in O(1).
func (l *list[K, V]) remove(n *node[K, V]) {
	l.unlink(n)
	n.prev, n.next = nil, nil
}

func (l *list[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	l.len--
}

// back returns the current LRU node (nil when empty).
func (l *list[K, V]) back() *node[K, V] { return l.tail }
