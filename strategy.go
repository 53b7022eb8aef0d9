package serial

import (
	"reflect"

	"github.com/wippyai/serial/schema"
)

// SerializeStrategy is the write half of a type's codec: it drives an
// Encoder through the traversal of one value, using its descriptor to
// address elements. Strategies are supplied by generated or hand-written
// code; the protocol core never implements one for a concrete type.
type SerializeStrategy interface {
	Descriptor() *schema.Descriptor
	Serialize(e Encoder, v any) error
}

// DeserializeStrategy is the read half of a type's codec.
type DeserializeStrategy interface {
	Descriptor() *schema.Descriptor
	Deserialize(d Decoder) (any, error)
}

// Codec is a strategy covering both directions for one type.
type Codec interface {
	SerializeStrategy
	DeserializeStrategy
}

// Patcher is the optional update capability of a DeserializeStrategy: it
// receives the decoder and the old value and produces the merged result,
// typically overwriting only the elements present in the new data.
// Strategies without it reject patch-mode updates.
type Patcher interface {
	Patch(d Decoder, old any) (any, error)
}

// EnumFactory materializes enum values from wire ordinals or case names.
// Its descriptor declares the cases as elements in ordinal order.
type EnumFactory interface {
	Descriptor() *schema.Descriptor
	FromOrdinal(ordinal int) (any, error)
	FromName(name string) (any, error)
}

// Context is the codec lookup handle every Encoder and Decoder carries.
// Backends and strategies use it to resolve nested codecs by declared or
// runtime type. The protocol core consumes this interface and ships no
// registry behind it; EmptyContext is the default.
type Context interface {
	CodecFor(declared reflect.Type) (Codec, bool)
	CodecForValue(v any) (Codec, bool)
}

// EmptyContext carries no codecs; every lookup misses.
var EmptyContext Context = emptyContext{}

type emptyContext struct{}

func (emptyContext) CodecFor(reflect.Type) (Codec, bool) { return nil, false }
func (emptyContext) CodecForValue(any) (Codec, bool)     { return nil, false }
