// Package splines holds cubics deferred by the fill tessellator until the
// stencil mask of their path is complete.
package splines

import (
	"fmt"
	"iter"

	"github.com/gogpu/gpath"
)

// embeddedCap is the capacity of the first chunk, which lives inside the
// Buffer itself.
const embeddedCap = 16

type chunk struct {
	data []gpath.Cubic
	next *chunk
}

// Buffer is an append-only sequence of cubics stored in a chain of chunks.
// The first chunk is embedded; every further chunk doubles the capacity of
// the one before it, so appends never copy stored curves.
//
// The zero value is an empty buffer with no budget. The first chunk points
// into the Buffer, so a Buffer must not be copied after first use; doing so
// panics on the next call through the copy.
type Buffer struct {
	addr     *Buffer // self pointer, set on first use
	embedded [embeddedCap]gpath.Cubic
	head     chunk
	tail     *chunk
	n        int
	budget   int
}

// New returns an empty buffer holding at most budget cubics. A budget of
// zero means unlimited.
func New(budget int) *Buffer {
	return &Buffer{budget: max(budget, 0)}
}

func (b *Buffer) copyCheck() {
	if b.addr == nil {
		b.addr = b
	} else if b.addr != b {
		panic("splines: illegal use of non-zero Buffer copied by value")
	}
}

func (b *Buffer) init() {
	b.copyCheck()
	if b.tail == nil {
		b.head = chunk{data: b.embedded[:0]}
		b.tail = &b.head
	}
}

// Add appends c. It fails with ErrOutOfMemory when the budget is exhausted.
func (b *Buffer) Add(c gpath.Cubic) error {
	b.init()
	if b.budget > 0 && b.n >= b.budget {
		return fmt.Errorf("splines: %d cubics buffered: %w", b.n, gpath.ErrOutOfMemory)
	}
	if len(b.tail.data) == cap(b.tail.data) {
		next := &chunk{data: make([]gpath.Cubic, 0, 2*cap(b.tail.data))}
		b.tail.next = next
		b.tail = next
	}
	b.tail.data = append(b.tail.data, c)
	b.n++
	return nil
}

// Len returns the number of buffered cubics.
func (b *Buffer) Len() int {
	return b.n
}

// IsEmpty reports whether the buffer holds no cubics.
func (b *Buffer) IsEmpty() bool {
	return b.n == 0
}

// Chunks returns the number of chunks in the chain.
func (b *Buffer) Chunks() int {
	if b.tail == nil {
		return 1
	}
	n := 0
	for c := &b.head; c != nil; c = c.next {
		n++
	}
	return n
}

// All yields the buffered cubics in insertion order.
func (b *Buffer) All() iter.Seq[gpath.Cubic] {
	return func(yield func(gpath.Cubic) bool) {
		if b.tail == nil {
			return
		}
		b.copyCheck()
		for c := &b.head; c != nil; c = c.next {
			for _, cubic := range c.data {
				if !yield(cubic) {
					return
				}
			}
		}
	}
}

// Reset empties the buffer and releases every chunk except the embedded one.
func (b *Buffer) Reset() {
	b.init()
	b.head.data = b.head.data[:0]
	b.head.next = nil
	b.tail = &b.head
	b.n = 0
}
