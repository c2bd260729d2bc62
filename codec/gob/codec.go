// Package gob encodes items as a single gob-encoded slice.
package gob

import (
	"bytes"
	"encoding/gob"
	"iter"
	"slices"

	"github.com/teenjuna/again/codec"
)

var _ codec.Codec[any] = (*Codec[any])(nil)

type Codec[Item any] struct {
	buf *bytes.Buffer
}

func New[Item any]() *Codec[Item] {
	return &Codec[Item]{
		buf: new(bytes.Buffer),
	}
}

func (c *Codec[Item]) Encode(items iter.Seq[Item]) ([]byte, error) {
	c.buf.Reset()

	// Always encode a non-nil slice, so that empty sequences round-trip.
	batch := append(make([]Item, 0), slices.Collect(items)...)
	if err := gob.NewEncoder(c.buf).Encode(batch); err != nil {
		return nil, err
	}

	return bytes.Clone(c.buf.Bytes()), nil
}

func (c *Codec[Item]) Decode(data []byte, push func(Item)) error {
	var batch []Item
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&batch); err != nil {
		return err
	}

	for _, item := range batch {
		push(item)
	}

	return nil
}

func (c *Codec[Item]) Derive() codec.Codec[Item] {
	return New[Item]()
}
