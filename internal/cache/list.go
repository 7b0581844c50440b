package cache

// node is an entry of the recency list. It carries its key so eviction can
// delete the map entry.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// list is a doubly-linked recency list, most recent first. It is not
// synchronized.
type list[K comparable, V any] struct {
	head, tail *node[K, V]
}

func (l *list[K, V]) pushFront(key K, value V) *node[K, V] {
	n := &node[K, V]{key: key, value: value}
	l.linkFront(n)
	return n
}

func (l *list[K, V]) linkFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *list[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.remove(n)
	l.linkFront(n)
}

// back returns the least recently used node, or nil.
func (l *list[K, V]) back() *node[K, V] {
	return l.tail
}

func (l *list[K, V]) remove(n *node[K, V]) {
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
	n.prev, n.next = nil, nil
}
