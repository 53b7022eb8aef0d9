package codecs

import (
	"github.com/wippyai/serial"
	"github.com/wippyai/serial/schema"
)

// Nullable wraps inner with the null-mark discipline: serialization writes
// exactly one of the null marker or the not-null mark followed by the value,
// and deserialization mirrors it, yielding nil for absent values.
//
// Patch mode follows the nullable merge precedence: an absent old value
// decodes fresh, a present one is patched in place when the new data is not
// null, and an explicit new null is absorbed, keeping the old value.
func Nullable(inner serial.Codec) *NullableCodec {
	return &NullableCodec{inner: inner}
}

// NullableCodec is the strategy built by Nullable. It shares the inner
// codec's descriptor: nullability is a property of the position a value
// occupies, not of its shape.
type NullableCodec struct {
	inner serial.Codec
}

var (
	_ serial.Codec   = (*NullableCodec)(nil)
	_ serial.Patcher = (*NullableCodec)(nil)
)

func (c *NullableCodec) Descriptor() *schema.Descriptor { return c.inner.Descriptor() }

func (c *NullableCodec) Serialize(e serial.Encoder, v any) error {
	return serial.EncodeNullableValue(e, c.inner, v)
}

func (c *NullableCodec) Deserialize(d serial.Decoder) (any, error) {
	return serial.DecodeNullableValue(d, c.inner)
}

func (c *NullableCodec) Patch(d serial.Decoder, old any) (any, error) {
	return serial.UpdateNullableValue(d, c.inner, old)
}
