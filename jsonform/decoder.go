package jsonform

import (
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// decoder reads one traversal off a jsoniter iterator. Nested scopes share
// the iterator the same way nested encoder scopes share the stream.
type decoder struct {
	ctx  serial.Context
	cfg  jsoniter.API
	mode serial.UpdateMode
	iter *jsoniter.Iterator
}

var _ serial.Decoder = (*decoder)(nil)

func (d *decoder) Context() serial.Context       { return d.ctx }
func (d *decoder) UpdateMode() serial.UpdateMode { return d.mode }

// err surfaces iterator failures as this backend's malformed-input channel.
func (d *decoder) err() error {
	if d.iter.Error != nil && d.iter.Error != io.EOF {
		return errors.MalformedInput(errors.PhaseDecode, nil, d.iter.Error)
	}
	return nil
}

func (d *decoder) DecodeNotNullMark() (bool, error) {
	return d.iter.WhatIsNext() != jsoniter.NilValue, d.err()
}

func (d *decoder) DecodeNull() error {
	if !d.iter.ReadNil() {
		if err := d.err(); err != nil {
			return err
		}
		return errors.MalformedInput(errors.PhaseDecode, nil,
			fmt.Errorf("expected null"))
	}
	return nil
}

func (d *decoder) DecodeBool() (bool, error) {
	v := d.iter.ReadBool()
	return v, d.err()
}

func (d *decoder) DecodeInt8() (int8, error) {
	v := d.iter.ReadInt8()
	return v, d.err()
}

func (d *decoder) DecodeInt16() (int16, error) {
	v := d.iter.ReadInt16()
	return v, d.err()
}

func (d *decoder) DecodeInt32() (int32, error) {
	v := d.iter.ReadInt32()
	return v, d.err()
}

func (d *decoder) DecodeInt64() (int64, error) {
	v := d.iter.ReadInt64()
	return v, d.err()
}

func (d *decoder) DecodeFloat32() (float32, error) {
	v := d.iter.ReadFloat32()
	return v, d.err()
}

func (d *decoder) DecodeFloat64() (float64, error) {
	v := d.iter.ReadFloat64()
	return v, d.err()
}

func (d *decoder) DecodeChar() (rune, error) {
	s := d.iter.ReadString()
	if err := d.err(); err != nil {
		return 0, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, errors.MalformedInput(errors.PhaseDecode, nil,
			fmt.Errorf("char value %q holds %d runes", s, len(runes)))
	}
	return runes[0], nil
}

func (d *decoder) DecodeString() (string, error) {
	v := d.iter.ReadString()
	return v, d.err()
}

func (d *decoder) DecodeUnit() error {
	if next := d.iter.WhatIsNext(); next != jsoniter.ObjectValue {
		return errors.MalformedInput(errors.PhaseDecode, nil,
			fmt.Errorf("expected unit object, found %v", next))
	}
	d.iter.Skip()
	return d.err()
}

func (d *decoder) DecodeEnum(factory serial.EnumFactory) (any, error) {
	switch d.iter.WhatIsNext() {
	case jsoniter.StringValue:
		name := d.iter.ReadString()
		if err := d.err(); err != nil {
			return nil, err
		}
		return factory.FromName(name)
	case jsoniter.NumberValue:
		ordinal := d.iter.ReadInt()
		if err := d.err(); err != nil {
			return nil, err
		}
		return factory.FromOrdinal(ordinal)
	default:
		return nil, errors.MalformedInput(errors.PhaseDecode, []string{factory.Descriptor().Name()},
			fmt.Errorf("enum value is neither a name nor an ordinal"))
	}
}

func (d *decoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.DeserializeStrategy) (serial.CompositeDecoder, error) {
	switch desc.Kind() {
	case schema.KindStruct:
		return &objectDecoder{dec: d}, d.err()
	case schema.KindMap:
		return &mapObjectDecoder{dec: d}, d.err()
	case schema.KindList:
		return &arrayDecoder{dec: d}, d.err()
	default:
		return nil, errors.InvalidState(errors.PhaseDecode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
}

// objectDecoder reads a struct from an object, resolving field names
// through the descriptor so the document may deliver them in any order.
// Undeclared fields are skipped through the IndexUnknown path.
type objectDecoder struct {
	dec *decoder
}

var _ serial.CompositeDecoder = (*objectDecoder)(nil)

func (o *objectDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	field := o.dec.iter.ReadObject()
	if err := o.dec.err(); err != nil {
		return serial.IndexDone, err
	}
	if field == "" {
		return serial.IndexDone, nil
	}
	idx := desc.ElementIndex(field)
	if idx == schema.UnknownIndex {
		o.dec.iter.Skip()
		if err := o.dec.err(); err != nil {
			return serial.IndexDone, err
		}
		Logger().Debug("skipping unknown field",
			zap.String("field", field),
			zap.String("type", desc.Name()))
		return serial.IndexUnknown, nil
	}
	return serial.ElementIndex(idx), nil
}

func (o *objectDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return serial.SizeUnknown, nil
}

func (o *objectDecoder) DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error) {
	return o.dec.DecodeBool()
}

func (o *objectDecoder) DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error) {
	return o.dec.DecodeInt8()
}

func (o *objectDecoder) DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error) {
	return o.dec.DecodeInt16()
}

func (o *objectDecoder) DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error) {
	return o.dec.DecodeInt32()
}

func (o *objectDecoder) DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error) {
	return o.dec.DecodeInt64()
}

func (o *objectDecoder) DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error) {
	return o.dec.DecodeFloat32()
}

func (o *objectDecoder) DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error) {
	return o.dec.DecodeFloat64()
}

func (o *objectDecoder) DecodeCharElement(desc *schema.Descriptor, index int) (rune, error) {
	return o.dec.DecodeChar()
}

func (o *objectDecoder) DecodeStringElement(desc *schema.Descriptor, index int) (string, error) {
	return o.dec.DecodeString()
}

func (o *objectDecoder) DecodeUnitElement(desc *schema.Descriptor, index int) error {
	return o.dec.DecodeUnit()
}

func (o *objectDecoder) DecodeValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	return serial.DecodeValue(o.dec, s)
}

func (o *objectDecoder) DecodeNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	return serial.DecodeNullableValue(o.dec, s)
}

func (o *objectDecoder) UpdateValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	return serial.UpdateValue(o.dec, s, old)
}

func (o *objectDecoder) UpdateNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	return serial.UpdateNullableValue(o.dec, s, old)
}

func (o *objectDecoder) EndStructure(desc *schema.Descriptor) error {
	return o.dec.err()
}

// mapObjectDecoder reads a map from an object as alternating key/value
// elements: the field name is served at even indices, its value at the odd
// index that follows.
type mapObjectDecoder struct {
	dec         *decoder
	pendingKey  string
	expectValue bool
	next        int
}

var _ serial.CompositeDecoder = (*mapObjectDecoder)(nil)

func (m *mapObjectDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if m.expectValue {
		m.expectValue = false
		idx := m.next
		m.next++
		return serial.ElementIndex(idx), nil
	}
	field := m.dec.iter.ReadObject()
	if err := m.dec.err(); err != nil {
		return serial.IndexDone, err
	}
	if field == "" {
		return serial.IndexDone, nil
	}
	m.pendingKey = field
	m.expectValue = true
	idx := m.next
	m.next++
	return serial.ElementIndex(idx), nil
}

func (m *mapObjectDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return serial.SizeUnknown, nil
}

func (m *mapObjectDecoder) isKey(index int) bool { return index%2 == 0 }

// keyErr wraps a key parse failure.
func (m *mapObjectDecoder) keyErr(err error) error {
	return errors.MalformedInput(errors.PhaseDecode, []string{m.pendingKey}, err)
}

func (m *mapObjectDecoder) DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error) {
	if !m.isKey(index) {
		return m.dec.DecodeBool()
	}
	v, err := strconv.ParseBool(m.pendingKey)
	if err != nil {
		return false, m.keyErr(err)
	}
	return v, nil
}

func (m *mapObjectDecoder) keyInt(bits int) (int64, error) {
	v, err := strconv.ParseInt(m.pendingKey, 10, bits)
	if err != nil {
		return 0, m.keyErr(err)
	}
	return v, nil
}

func (m *mapObjectDecoder) DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error) {
	if !m.isKey(index) {
		return m.dec.DecodeInt8()
	}
	v, err := m.keyInt(8)
	return int8(v), err
}

func (m *mapObjectDecoder) DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error) {
	if !m.isKey(index) {
		return m.dec.DecodeInt16()
	}
	v, err := m.keyInt(16)
	return int16(v), err
}

func (m *mapObjectDecoder) DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error) {
	if !m.isKey(index) {
		return m.dec.DecodeInt32()
	}
	v, err := m.keyInt(32)
	return int32(v), err
}

func (m *mapObjectDecoder) DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error) {
	if !m.isKey(index) {
		return m.dec.DecodeInt64()
	}
	return m.keyInt(64)
}

func (m *mapObjectDecoder) DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error) {
	if !m.isKey(index) {
		return m.dec.DecodeFloat32()
	}
	v, err := strconv.ParseFloat(m.pendingKey, 32)
	if err != nil {
		return 0, m.keyErr(err)
	}
	return float32(v), nil
}

func (m *mapObjectDecoder) DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error) {
	if !m.isKey(index) {
		return m.dec.DecodeFloat64()
	}
	v, err := strconv.ParseFloat(m.pendingKey, 64)
	if err != nil {
		return 0, m.keyErr(err)
	}
	return v, nil
}

func (m *mapObjectDecoder) DecodeCharElement(desc *schema.Descriptor, index int) (rune, error) {
	if !m.isKey(index) {
		return m.dec.DecodeChar()
	}
	runes := []rune(m.pendingKey)
	if len(runes) != 1 {
		return 0, m.keyErr(fmt.Errorf("char key holds %d runes", len(runes)))
	}
	return runes[0], nil
}

func (m *mapObjectDecoder) DecodeStringElement(desc *schema.Descriptor, index int) (string, error) {
	if !m.isKey(index) {
		return m.dec.DecodeString()
	}
	return m.pendingKey, nil
}

func (m *mapObjectDecoder) DecodeUnitElement(desc *schema.Descriptor, index int) error {
	if m.isKey(index) {
		return errors.Unsupported(errors.PhaseDecode, "unit cannot be a JSON object key")
	}
	return m.dec.DecodeUnit()
}

func (m *mapObjectDecoder) DecodeValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	if !m.isKey(index) {
		return serial.DecodeValue(m.dec, s)
	}
	// Re-parse the field name as a standalone document for the key strategy.
	text := m.pendingKey
	switch s.Descriptor().Kind() {
	case schema.KindString, schema.KindChar, schema.KindEnum:
		text = strconv.Quote(text)
	}
	sub := m.dec.cfg.BorrowIterator([]byte(text))
	defer m.dec.cfg.ReturnIterator(sub)
	child := &decoder{ctx: m.dec.ctx, cfg: m.dec.cfg, mode: m.dec.mode, iter: sub}
	return serial.DecodeValue(child, s)
}

func (m *mapObjectDecoder) DecodeNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	if m.isKey(index) {
		return nil, errors.Unsupported(errors.PhaseDecode, "JSON object keys cannot be null")
	}
	return serial.DecodeNullableValue(m.dec, s)
}

func (m *mapObjectDecoder) UpdateValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	if m.isKey(index) {
		return nil, errors.Unsupported(errors.PhaseUpdate, "JSON object keys cannot be updated")
	}
	return serial.UpdateValue(m.dec, s, old)
}

func (m *mapObjectDecoder) UpdateNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	if m.isKey(index) {
		return nil, errors.Unsupported(errors.PhaseUpdate, "JSON object keys cannot be updated")
	}
	return serial.UpdateNullableValue(m.dec, s, old)
}

func (m *mapObjectDecoder) EndStructure(desc *schema.Descriptor) error {
	return m.dec.err()
}

// arrayDecoder reads a list from an array, serving ascending indices until
// the closing bracket.
type arrayDecoder struct {
	dec *decoder
	n   int
}

var _ serial.CompositeDecoder = (*arrayDecoder)(nil)

func (a *arrayDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if !a.dec.iter.ReadArray() {
		return serial.IndexDone, a.dec.err()
	}
	idx := a.n
	a.n++
	return serial.ElementIndex(idx), nil
}

func (a *arrayDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return serial.SizeUnknown, nil
}

func (a *arrayDecoder) DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error) {
	return a.dec.DecodeBool()
}

func (a *arrayDecoder) DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error) {
	return a.dec.DecodeInt8()
}

func (a *arrayDecoder) DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error) {
	return a.dec.DecodeInt16()
}

func (a *arrayDecoder) DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error) {
	return a.dec.DecodeInt32()
}

func (a *arrayDecoder) DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error) {
	return a.dec.DecodeInt64()
}

func (a *arrayDecoder) DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error) {
	return a.dec.DecodeFloat32()
}

func (a *arrayDecoder) DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error) {
	return a.dec.DecodeFloat64()
}

func (a *arrayDecoder) DecodeCharElement(desc *schema.Descriptor, index int) (rune, error) {
	return a.dec.DecodeChar()
}

func (a *arrayDecoder) DecodeStringElement(desc *schema.Descriptor, index int) (string, error) {
	return a.dec.DecodeString()
}

func (a *arrayDecoder) DecodeUnitElement(desc *schema.Descriptor, index int) error {
	return a.dec.DecodeUnit()
}

func (a *arrayDecoder) DecodeValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	return serial.DecodeValue(a.dec, s)
}

func (a *arrayDecoder) DecodeNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	return serial.DecodeNullableValue(a.dec, s)
}

func (a *arrayDecoder) UpdateValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	return serial.UpdateValue(a.dec, s, old)
}

func (a *arrayDecoder) UpdateNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	return serial.UpdateNullableValue(a.dec, s, old)
}

func (a *arrayDecoder) EndStructure(desc *schema.Descriptor) error {
	return a.dec.err()
}
