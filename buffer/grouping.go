package buffer

import (
	"iter"
	"slices"
)

var _ Buffer[any] = (*GroupingBuffer[any, int])(nil)

// GroupingBuffer splits items into groups by key, keeping push order inside each group. Groups
// are iterated in the order their first item was pushed.
type GroupingBuffer[Item any, Key comparable] struct {
	groups  map[Key]*AppendingBuffer[Item]
	keys    []Key
	keyFunc func(Item) Key
	size    int
}

func Grouping[Item any, Key comparable](keyFunc func(Item) Key) *GroupingBuffer[Item, Key] {
	if keyFunc == nil {
		panic("key func can't be nil")
	}
	return &GroupingBuffer[Item, Key]{
		groups:  make(map[Key]*AppendingBuffer[Item]),
		keys:    make([]Key, 0),
		keyFunc: keyFunc,
	}
}

func (b *GroupingBuffer[Item, Key]) Push(item Item) {
	key := b.keyFunc(item)
	group, ok := b.groups[key]
	if !ok {
		group = Appending[Item](4)
		b.groups[key] = group
		b.keys = append(b.keys, key)
	}
	group.Push(item)
	b.size += 1
}

// Size returns the number of items across all groups.
func (b *GroupingBuffer[Item, Key]) Size() int {
	return b.size
}

// Groups returns the number of groups.
func (b *GroupingBuffer[Item, Key]) Groups() int {
	return len(b.groups)
}

func (b *GroupingBuffer[Item, Key]) Iter() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, key := range b.keys {
			for item := range b.groups[key].Iter() {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Take removes the group of key and returns its items. It returns nil if there's no such group.
func (b *GroupingBuffer[Item, Key]) Take(key Key) []Item {
	group, ok := b.groups[key]
	if !ok {
		return nil
	}
	delete(b.groups, key)
	b.keys = slices.DeleteFunc(b.keys, func(k Key) bool { return k == key })
	b.size -= group.Size()
	return group.Items()
}

func (b *GroupingBuffer[Item, Key]) Reset() {
	clear(b.groups)
	clear(b.keys)
	b.keys = b.keys[:0]
	b.size = 0
}
