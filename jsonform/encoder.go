package jsonform

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// encoder writes one traversal onto a jsoniter stream. Nested scopes share
// the stream: JSON framing is purely textual, so a child value simply
// continues where the parent paused.
type encoder struct {
	ctx    serial.Context
	cfg    jsoniter.API
	stream *jsoniter.Stream
}

var _ serial.Encoder = (*encoder)(nil)

func (e *encoder) Context() serial.Context { return e.ctx }

func (e *encoder) err() error {
	if e.stream.Error != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindMalformedInput, e.stream.Error, "stream write failed")
	}
	return nil
}

func (e *encoder) EncodeNotNullMark() error { return nil }

func (e *encoder) EncodeNull() error {
	e.stream.WriteNil()
	return e.err()
}

func (e *encoder) EncodeBool(v bool) error {
	e.stream.WriteBool(v)
	return e.err()
}

func (e *encoder) EncodeInt8(v int8) error {
	e.stream.WriteInt8(v)
	return e.err()
}

func (e *encoder) EncodeInt16(v int16) error {
	e.stream.WriteInt16(v)
	return e.err()
}

func (e *encoder) EncodeInt32(v int32) error {
	e.stream.WriteInt32(v)
	return e.err()
}

func (e *encoder) EncodeInt64(v int64) error {
	e.stream.WriteInt64(v)
	return e.err()
}

func (e *encoder) EncodeFloat32(v float32) error {
	e.stream.WriteFloat32(v)
	return e.err()
}

func (e *encoder) EncodeFloat64(v float64) error {
	e.stream.WriteFloat64(v)
	return e.err()
}

func (e *encoder) EncodeChar(v rune) error {
	e.stream.WriteString(string(v))
	return e.err()
}

func (e *encoder) EncodeString(v string) error {
	e.stream.WriteString(v)
	return e.err()
}

func (e *encoder) EncodeUnit() error {
	e.stream.WriteEmptyObject()
	return e.err()
}

func (e *encoder) EncodeEnum(enum *schema.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= enum.NumElements() {
		return errors.InvalidEnum(errors.PhaseEncode, nil, ordinal, enum.Name())
	}
	e.stream.WriteString(enum.ElementName(ordinal))
	return e.err()
}

func (e *encoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	switch desc.Kind() {
	case schema.KindStruct:
		e.stream.WriteObjectStart()
		return &objectEncoder{enc: e}, nil
	case schema.KindMap:
		e.stream.WriteObjectStart()
		return &mapObjectEncoder{enc: e}, nil
	case schema.KindList:
		e.stream.WriteArrayStart()
		return &arrayEncoder{enc: e}, nil
	default:
		return nil, errors.InvalidState(errors.PhaseEncode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
}

// objectEncoder writes a struct as an object keyed by element name.
type objectEncoder struct {
	enc *encoder
	n   int
}

var _ serial.CompositeEncoder = (*objectEncoder)(nil)

func (o *objectEncoder) field(desc *schema.Descriptor, index int) {
	if o.n > 0 {
		o.enc.stream.WriteMore()
	}
	o.enc.stream.WriteObjectField(desc.ElementName(index))
	o.n++
}

func (o *objectEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	o.field(desc, index)
	return o.enc.EncodeBool(v)
}

func (o *objectEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	o.field(desc, index)
	return o.enc.EncodeInt8(v)
}

func (o *objectEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	o.field(desc, index)
	return o.enc.EncodeInt16(v)
}

func (o *objectEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	o.field(desc, index)
	return o.enc.EncodeInt32(v)
}

func (o *objectEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	o.field(desc, index)
	return o.enc.EncodeInt64(v)
}

func (o *objectEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	o.field(desc, index)
	return o.enc.EncodeFloat32(v)
}

func (o *objectEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	o.field(desc, index)
	return o.enc.EncodeFloat64(v)
}

func (o *objectEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	o.field(desc, index)
	return o.enc.EncodeChar(v)
}

func (o *objectEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	o.field(desc, index)
	return o.enc.EncodeString(v)
}

func (o *objectEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	o.field(desc, index)
	return o.enc.EncodeUnit()
}

func (o *objectEncoder) EncodeValueElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	o.field(desc, index)
	return serial.EncodeValue(o.enc, s, v)
}

func (o *objectEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	o.field(desc, index)
	return serial.EncodeNullableValue(o.enc, s, v)
}

// EncodeNonSerializableElement hands the raw value to jsoniter's own
// reflection encoder, which is this backend's opaque representation.
func (o *objectEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	o.field(desc, index)
	o.enc.stream.WriteVal(v)
	return o.enc.err()
}

func (o *objectEncoder) EndStructure(desc *schema.Descriptor) error {
	o.enc.stream.WriteObjectEnd()
	return o.enc.err()
}

// mapObjectEncoder writes a map as an object: even element indices carry
// keys, odd indices the value for the preceding key. Keys must render to
// strings; a key encoded as a JSON string is used verbatim, anything else
// is quoted.
type mapObjectEncoder struct {
	enc *encoder
	n   int
}

var _ serial.CompositeEncoder = (*mapObjectEncoder)(nil)

func (m *mapObjectEncoder) key(text string, quoted bool) error {
	if m.n > 0 {
		m.enc.stream.WriteMore()
	}
	m.n++
	if quoted {
		m.enc.stream.WriteRaw(text)
	} else {
		m.enc.stream.WriteRaw(`"` + text + `"`)
	}
	m.enc.stream.WriteRaw(":")
	return m.enc.err()
}

func (m *mapObjectEncoder) isKey(index int) bool { return index%2 == 0 }

func (m *mapObjectEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	if m.isKey(index) {
		return m.key(strconv.FormatBool(v), false)
	}
	return m.enc.EncodeBool(v)
}

func (m *mapObjectEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	if m.isKey(index) {
		return m.key(strconv.FormatInt(int64(v), 10), false)
	}
	return m.enc.EncodeInt8(v)
}

func (m *mapObjectEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	if m.isKey(index) {
		return m.key(strconv.FormatInt(int64(v), 10), false)
	}
	return m.enc.EncodeInt16(v)
}

func (m *mapObjectEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	if m.isKey(index) {
		return m.key(strconv.FormatInt(int64(v), 10), false)
	}
	return m.enc.EncodeInt32(v)
}

func (m *mapObjectEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	if m.isKey(index) {
		return m.key(strconv.FormatInt(v, 10), false)
	}
	return m.enc.EncodeInt64(v)
}

func (m *mapObjectEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	if m.isKey(index) {
		return m.key(strconv.FormatFloat(float64(v), 'g', -1, 32), false)
	}
	return m.enc.EncodeFloat32(v)
}

func (m *mapObjectEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	if m.isKey(index) {
		return m.key(strconv.FormatFloat(v, 'g', -1, 64), false)
	}
	return m.enc.EncodeFloat64(v)
}

func (m *mapObjectEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	if m.isKey(index) {
		return m.key(strconv.Quote(string(v)), true)
	}
	return m.enc.EncodeChar(v)
}

func (m *mapObjectEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	if m.isKey(index) {
		return m.key(strconv.Quote(v), true)
	}
	return m.enc.EncodeString(v)
}

func (m *mapObjectEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	if m.isKey(index) {
		return errors.Unsupported(errors.PhaseEncode, "unit cannot be a JSON object key")
	}
	return m.enc.EncodeUnit()
}

func (m *mapObjectEncoder) EncodeValueElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	if !m.isKey(index) {
		return serial.EncodeValue(m.enc, s, v)
	}
	// Render the key into a side buffer so it can be placed as a field name.
	sub := m.enc.cfg.BorrowStream(nil)
	defer m.enc.cfg.ReturnStream(sub)
	child := &encoder{ctx: m.enc.ctx, cfg: m.enc.cfg, stream: sub}
	if err := serial.EncodeValue(child, s, v); err != nil {
		return err
	}
	buf := sub.Buffer()
	if len(buf) == 0 {
		return errors.InvalidState(errors.PhaseEncode, "map key rendered empty for "+desc.Name())
	}
	return m.key(string(buf), buf[0] == '"')
}

func (m *mapObjectEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	if m.isKey(index) {
		return errors.Unsupported(errors.PhaseEncode, "JSON object keys cannot be null")
	}
	return serial.EncodeNullableValue(m.enc, s, v)
}

func (m *mapObjectEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	if m.isKey(index) {
		return errors.Unsupported(errors.PhaseEncode, "JSON object keys need a strategy")
	}
	m.enc.stream.WriteVal(v)
	return m.enc.err()
}

func (m *mapObjectEncoder) EndStructure(desc *schema.Descriptor) error {
	m.enc.stream.WriteObjectEnd()
	return m.enc.err()
}

// arrayEncoder writes a list as an array. Elements must arrive in ascending
// index order.
type arrayEncoder struct {
	enc *encoder
	n   int
}

var _ serial.CompositeEncoder = (*arrayEncoder)(nil)

func (a *arrayEncoder) next() {
	if a.n > 0 {
		a.enc.stream.WriteMore()
	}
	a.n++
}

func (a *arrayEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	a.next()
	return a.enc.EncodeBool(v)
}

func (a *arrayEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	a.next()
	return a.enc.EncodeInt8(v)
}

func (a *arrayEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	a.next()
	return a.enc.EncodeInt16(v)
}

func (a *arrayEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	a.next()
	return a.enc.EncodeInt32(v)
}

func (a *arrayEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	a.next()
	return a.enc.EncodeInt64(v)
}

func (a *arrayEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	a.next()
	return a.enc.EncodeFloat32(v)
}

func (a *arrayEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	a.next()
	return a.enc.EncodeFloat64(v)
}

func (a *arrayEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	a.next()
	return a.enc.EncodeChar(v)
}

func (a *arrayEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	a.next()
	return a.enc.EncodeString(v)
}

func (a *arrayEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	a.next()
	return a.enc.EncodeUnit()
}

func (a *arrayEncoder) EncodeValueElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	a.next()
	return serial.EncodeValue(a.enc, s, v)
}

func (a *arrayEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, s serial.SerializeStrategy, v any) error {
	a.next()
	return serial.EncodeNullableValue(a.enc, s, v)
}

func (a *arrayEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	a.next()
	a.enc.stream.WriteVal(v)
	return a.enc.err()
}

func (a *arrayEncoder) EndStructure(desc *schema.Descriptor) error {
	a.enc.stream.WriteArrayEnd()
	return a.enc.err()
}
