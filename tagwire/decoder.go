package tagwire

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// decoder consumes one traversal from buf. The scalar state reads bare
// payloads, the form EncodeValueElement framed as bytes fields.
type decoder struct {
	ctx  serial.Context
	mode serial.UpdateMode
	buf  []byte
}

var _ serial.Decoder = (*decoder)(nil)

func (d *decoder) Context() serial.Context       { return d.ctx }
func (d *decoder) UpdateMode() serial.UpdateMode { return d.mode }

func malformed(what string, n int) error {
	return errors.MalformedInput(errors.PhaseDecode, []string{what}, protowire.ParseError(n))
}

func (d *decoder) readVarint(what string) (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if n < 0 {
		return 0, malformed(what, n)
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *decoder) readZigZag(what string, min, max int64) (int64, error) {
	v, err := d.readVarint(what)
	if err != nil {
		return 0, err
	}
	z := protowire.DecodeZigZag(v)
	if z < min || z > max {
		return 0, errors.Overflow(errors.PhaseDecode, nil, z, what)
	}
	return z, nil
}

// Presence is this format's null marker: a null value occupies zero bytes.
func (d *decoder) DecodeNotNullMark() (bool, error) {
	return len(d.buf) > 0, nil
}

func (d *decoder) DecodeNull() error { return nil }

func (d *decoder) DecodeBool() (bool, error) {
	v, err := d.readVarint("bool")
	return v != 0, err
}

func (d *decoder) DecodeInt8() (int8, error) {
	v, err := d.readZigZag("int8", math.MinInt8, math.MaxInt8)
	return int8(v), err
}

func (d *decoder) DecodeInt16() (int16, error) {
	v, err := d.readZigZag("int16", math.MinInt16, math.MaxInt16)
	return int16(v), err
}

func (d *decoder) DecodeInt32() (int32, error) {
	v, err := d.readZigZag("int32", math.MinInt32, math.MaxInt32)
	return int32(v), err
}

func (d *decoder) DecodeInt64() (int64, error) {
	v, err := d.readZigZag("int64", math.MinInt64, math.MaxInt64)
	return v, err
}

func (d *decoder) DecodeFloat32() (float32, error) {
	v, n := protowire.ConsumeFixed32(d.buf)
	if n < 0 {
		return 0, malformed("float32", n)
	}
	d.buf = d.buf[n:]
	return math.Float32frombits(v), nil
}

func (d *decoder) DecodeFloat64() (float64, error) {
	v, n := protowire.ConsumeFixed64(d.buf)
	if n < 0 {
		return 0, malformed("float64", n)
	}
	d.buf = d.buf[n:]
	return math.Float64frombits(v), nil
}

func (d *decoder) DecodeChar() (rune, error) {
	v, err := d.readVarint("char")
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, errors.Overflow(errors.PhaseDecode, nil, v, "char")
	}
	return rune(v), nil
}

// DecodeString consumes the rest of the payload: bare strings are always
// the innermost frame.
func (d *decoder) DecodeString() (string, error) {
	s := string(d.buf)
	d.buf = nil
	return s, nil
}

func (d *decoder) DecodeUnit() error { return nil }

func (d *decoder) DecodeEnum(factory serial.EnumFactory) (any, error) {
	v, err := d.readVarint(factory.Descriptor().Name())
	if err != nil {
		return nil, err
	}
	if v > math.MaxInt32 {
		return nil, errors.InvalidEnum(errors.PhaseDecode, nil, v, factory.Descriptor().Name())
	}
	return factory.FromOrdinal(int(v))
}

func (d *decoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.DeserializeStrategy) (serial.CompositeDecoder, error) {
	c := &reader{dec: d, kind: desc.Kind()}
	switch desc.Kind() {
	case schema.KindStruct:
		c.tagged = schema.NewTagged(desc)
	case schema.KindList, schema.KindMap:
	default:
		return nil, errors.InvalidState(errors.PhaseDecode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
	return c, nil
}

// reader serves tagged fields back as element indices. Unknown tags are
// skipped through the IndexUnknown path, which is what keeps old readers
// compatible with new writers.
type reader struct {
	dec     *decoder
	kind    schema.Kind
	tagged  *schema.Tagged
	pending protowire.Type
	count   int
}

var _ serial.CompositeDecoder = (*reader)(nil)

func (r *reader) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if len(r.dec.buf) == 0 {
		return serial.IndexDone, nil
	}
	num, typ, n := protowire.ConsumeTag(r.dec.buf)
	if n < 0 {
		return serial.IndexDone, malformed(desc.Name(), n)
	}
	r.dec.buf = r.dec.buf[n:]

	idx := r.index(num)
	if idx == schema.UnknownIndex {
		skip := protowire.ConsumeFieldValue(num, typ, r.dec.buf)
		if skip < 0 {
			return serial.IndexDone, malformed(desc.Name(), skip)
		}
		r.dec.buf = r.dec.buf[skip:]
		Logger().Debug("skipping unknown tag",
			zap.Int32("tag", int32(num)),
			zap.String("type", desc.Name()))
		return serial.IndexUnknown, nil
	}
	r.pending = typ
	return serial.ElementIndex(idx), nil
}

// index maps a wire tag to the element index the caller addresses.
func (r *reader) index(num protowire.Number) int {
	switch r.kind {
	case schema.KindStruct:
		return r.tagged.IndexByTag(int32(num))
	case schema.KindMap:
		// Entries alternate tag 1 (key) and tag 2 (value); the element
		// index interleaves them as 2n and 2n+1.
		want := protowire.Number(r.count%2 + 1)
		if num != want {
			return schema.UnknownIndex
		}
		idx := r.count
		r.count++
		return idx
	default:
		if num != 1 {
			return schema.UnknownIndex
		}
		idx := r.count
		r.count++
		return idx
	}
}

func (r *reader) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return serial.SizeUnknown, nil
}

func (r *reader) expect(desc *schema.Descriptor, typ protowire.Type) error {
	if r.pending != typ {
		return errors.MalformedInput(errors.PhaseDecode, []string{desc.Name()},
			fmt.Errorf("field has wire type %d, expected %d", r.pending, typ))
	}
	return nil
}

func (r *reader) DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return false, err
	}
	return r.dec.DecodeBool()
}

func (r *reader) DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.dec.DecodeInt8()
}

func (r *reader) DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.dec.DecodeInt16()
}

func (r *reader) DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.dec.DecodeInt32()
}

func (r *reader) DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.dec.DecodeInt64()
}

func (r *reader) DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error) {
	if err := r.expect(desc, protowire.Fixed32Type); err != nil {
		return 0, err
	}
	return r.dec.DecodeFloat32()
}

func (r *reader) DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error) {
	if err := r.expect(desc, protowire.Fixed64Type); err != nil {
		return 0, err
	}
	return r.dec.DecodeFloat64()
}

func (r *reader) DecodeCharElement(desc *schema.Descriptor, index int) (rune, error) {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return 0, err
	}
	return r.dec.DecodeChar()
}

func (r *reader) DecodeStringElement(desc *schema.Descriptor, index int) (string, error) {
	if err := r.expect(desc, protowire.BytesType); err != nil {
		return "", err
	}
	b, n := protowire.ConsumeBytes(r.dec.buf)
	if n < 0 {
		return "", malformed(desc.Name(), n)
	}
	r.dec.buf = r.dec.buf[n:]
	return string(b), nil
}

func (r *reader) DecodeUnitElement(desc *schema.Descriptor, index int) error {
	if err := r.expect(desc, protowire.VarintType); err != nil {
		return err
	}
	_, err := r.dec.readVarint("unit")
	return err
}

// payload consumes the length-delimited frame of a nested value and spawns
// the child decoder over it.
func (r *reader) payload(desc *schema.Descriptor) (*decoder, error) {
	if err := r.expect(desc, protowire.BytesType); err != nil {
		return nil, err
	}
	b, n := protowire.ConsumeBytes(r.dec.buf)
	if n < 0 {
		return nil, malformed(desc.Name(), n)
	}
	r.dec.buf = r.dec.buf[n:]
	return &decoder{ctx: r.dec.ctx, mode: r.dec.mode, buf: b}, nil
}

func (r *reader) DecodeValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	child, err := r.payload(desc)
	if err != nil {
		return nil, err
	}
	return serial.DecodeValue(child, s)
}

func (r *reader) DecodeNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	child, err := r.payload(desc)
	if err != nil {
		return nil, err
	}
	return serial.DecodeNullableValue(child, s)
}

func (r *reader) UpdateValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	child, err := r.payload(desc)
	if err != nil {
		return nil, err
	}
	return serial.UpdateValue(child, s, old)
}

func (r *reader) UpdateNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	child, err := r.payload(desc)
	if err != nil {
		return nil, err
	}
	return serial.UpdateNullableValue(child, s, old)
}

func (r *reader) EndStructure(desc *schema.Descriptor) error { return nil }
