// This package contains the main [Buffer] interface and its implementations.
package buffer

import (
	"iter"
	"slices"
)

// Buffer holds events of unfinished sequences in memory until they can be archived together.
//
// Implementations are not considered thread-safe.
type Buffer[Item any] interface {
	// Push adds an item to the buffer.
	Push(item Item)
	// Size returns the number of items in the buffer.
	Size() int
	// Iter returns a sequence of all items in the buffer.
	Iter() iter.Seq[Item]
	// Reset clears all items from the buffer.
	Reset()
}

var _ Buffer[any] = (*AppendingBuffer[any])(nil)

// AppendingBuffer keeps items in push order.
type AppendingBuffer[Item any] struct {
	items []Item
}

// Appending returns an empty buffer with room for capacity items.
func Appending[Item any](capacity int) *AppendingBuffer[Item] {
	if capacity < 0 {
		panic("capacity can't be < 0")
	}
	return &AppendingBuffer[Item]{
		items: make([]Item, 0, capacity),
	}
}

func (b *AppendingBuffer[Item]) Push(item Item) {
	b.items = append(b.items, item)
}

func (b *AppendingBuffer[Item]) Size() int {
	return len(b.items)
}

func (b *AppendingBuffer[Item]) Iter() iter.Seq[Item] {
	return slices.Values(b.items)
}

// Items returns a copy of the buffered items.
func (b *AppendingBuffer[Item]) Items() []Item {
	return slices.Clone(b.items)
}

func (b *AppendingBuffer[Item]) Reset() {
	clear(b.items)
	b.items = b.items[:0]
}
