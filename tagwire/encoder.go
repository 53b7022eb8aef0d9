package tagwire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// encoder appends one traversal to buf. At the scalar state values are
// written bare (no tag), which is the payload form nested fields wrap in
// length-delimited frames.
type encoder struct {
	ctx serial.Context
	buf []byte
}

var _ serial.Encoder = (*encoder)(nil)

func (e *encoder) Context() serial.Context { return e.ctx }

// Nulls are presence-based: both halves of the null discipline write
// nothing, and null elements never reach the wire at all.
func (e *encoder) EncodeNotNullMark() error { return nil }
func (e *encoder) EncodeNull() error        { return nil }

func (e *encoder) EncodeBool(v bool) error {
	e.buf = protowire.AppendVarint(e.buf, boolBit(v))
	return nil
}

func (e *encoder) EncodeInt8(v int8) error {
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(int64(v)))
	return nil
}

func (e *encoder) EncodeInt16(v int16) error {
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(int64(v)))
	return nil
}

func (e *encoder) EncodeInt32(v int32) error {
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(int64(v)))
	return nil
}

func (e *encoder) EncodeInt64(v int64) error {
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(v))
	return nil
}

func (e *encoder) EncodeFloat32(v float32) error {
	e.buf = protowire.AppendFixed32(e.buf, math.Float32bits(v))
	return nil
}

func (e *encoder) EncodeFloat64(v float64) error {
	e.buf = protowire.AppendFixed64(e.buf, math.Float64bits(v))
	return nil
}

func (e *encoder) EncodeChar(v rune) error {
	e.buf = protowire.AppendVarint(e.buf, uint64(uint32(v)))
	return nil
}

func (e *encoder) EncodeString(v string) error {
	e.buf = append(e.buf, v...)
	return nil
}

func (e *encoder) EncodeUnit() error { return nil }

func (e *encoder) EncodeEnum(enum *schema.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= enum.NumElements() {
		return errors.InvalidEnum(errors.PhaseEncode, nil, ordinal, enum.Name())
	}
	e.buf = protowire.AppendVarint(e.buf, uint64(ordinal))
	return nil
}

func (e *encoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	c := &composite{enc: e, kind: desc.Kind()}
	switch desc.Kind() {
	case schema.KindStruct:
		c.tagged = schema.NewTagged(desc)
	case schema.KindList, schema.KindMap:
	default:
		return nil, errors.InvalidState(errors.PhaseEncode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
	return c, nil
}

func boolBit(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// composite writes tagged fields into the owning encoder's buffer. Structs
// map element indices through the Tagged projection; lists repeat tag 1;
// maps alternate tag 1 (key) and tag 2 (value).
type composite struct {
	enc    *encoder
	kind   schema.Kind
	tagged *schema.Tagged
}

var _ serial.CompositeEncoder = (*composite)(nil)

func (c *composite) number(index int) protowire.Number {
	switch c.kind {
	case schema.KindStruct:
		return protowire.Number(c.tagged.TagByIndex(index))
	case schema.KindMap:
		return protowire.Number(index%2 + 1)
	default:
		return 1
	}
}

func (c *composite) tag(index int, typ protowire.Type) {
	c.enc.buf = protowire.AppendTag(c.enc.buf, c.number(index), typ)
}

func (c *composite) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeBool(v)
}

func (c *composite) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeInt8(v)
}

func (c *composite) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeInt16(v)
}

func (c *composite) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeInt32(v)
}

func (c *composite) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeInt64(v)
}

func (c *composite) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	c.tag(index, protowire.Fixed32Type)
	return c.enc.EncodeFloat32(v)
}

func (c *composite) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	c.tag(index, protowire.Fixed64Type)
	return c.enc.EncodeFloat64(v)
}

func (c *composite) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	c.tag(index, protowire.VarintType)
	return c.enc.EncodeChar(v)
}

func (c *composite) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	c.tag(index, protowire.BytesType)
	c.enc.buf = protowire.AppendString(c.enc.buf, v)
	return nil
}

func (c *composite) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	c.tag(index, protowire.VarintType)
	c.enc.buf = protowire.AppendVarint(c.enc.buf, 0)
	return nil
}

// EncodeValueElement frames the nested traversal as a length-delimited
// field.
func (c *composite) EncodeValueElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	child := &encoder{ctx: c.enc.ctx}
	if err := serial.EncodeValue(child, s, v); err != nil {
		return err
	}
	c.tag(index, protowire.BytesType)
	c.enc.buf = protowire.AppendBytes(c.enc.buf, child.buf)
	return nil
}

// EncodeNullableElement writes nothing for a null value; absence is this
// format's null marker.
func (c *composite) EncodeNullableElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	if serial.IsNull(v) {
		return nil
	}
	return c.EncodeValueElement(desc, index, s, v)
}

func (c *composite) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	return errors.Unsupported(errors.PhaseEncode, "tagwire cannot encode values without a strategy")
}

func (c *composite) EndStructure(desc *schema.Descriptor) error { return nil }
