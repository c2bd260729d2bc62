// This package contains the main [Codec] interface. Implementations live in subpackages.
package codec

import "iter"

// Codec turns the events of one archived sequence into bytes and back.
//
// Implementations may reuse internal buffers and are not considered thread-safe: use [Codec.Derive]
// to get an independent instance for each writer.
type Codec[Item any] interface {
	// Encode serializes all items of the sequence.
	Encode(items iter.Seq[Item]) ([]byte, error)
	// Decode deserializes data, pushing items in their original order.
	Decode(data []byte, push func(Item)) error
	// Derive returns a new instance with the same settings.
	Derive() Codec[Item]
}
