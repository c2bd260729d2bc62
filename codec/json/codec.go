// Package json encodes items as JSON Lines: one JSON document per item.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

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
	enc := json.NewEncoder(c.buf)
	enc.SetEscapeHTML(false)

	for item := range items {
		if err := enc.Encode(item); err != nil {
			return nil, err
		}
	}

	return bytes.Clone(c.buf.Bytes()), nil
}

func (c *Codec[Item]) Decode(data []byte, push func(Item)) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	for line := 1; ; line++ {
		var item Item
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		push(item)
	}
}

func (c *Codec[Item]) Derive() codec.Codec[Item] {
	return New[Item]()
}
