package mapform

import (
	"fmt"
	"math"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// decoder is the scalar state over one tree node. Hand-built trees are
// welcome, so integer reads tolerate any integer width (and whole floats)
// as long as the value fits the requested type.
type decoder struct {
	ctx  serial.Context
	mode serial.UpdateMode
	cur  any
}

var _ serial.Decoder = (*decoder)(nil)

func (d *decoder) Context() serial.Context        { return d.ctx }
func (d *decoder) UpdateMode() serial.UpdateMode  { return d.mode }
func (d *decoder) sub(v any) *decoder             { return &decoder{ctx: d.ctx, mode: d.mode, cur: v} }

func (d *decoder) DecodeNotNullMark() (bool, error) {
	return d.cur != nil, nil
}

func (d *decoder) DecodeNull() error {
	if d.cur != nil {
		return errors.InvalidState(errors.PhaseDecode,
			fmt.Sprintf("null marker requested but node holds %T", d.cur))
	}
	return nil
}

func (d *decoder) mismatch(want string) error {
	return errors.TypeMismatch(errors.PhaseDecode, nil, fmt.Sprintf("%T", d.cur), want)
}

// toInt64 widens any integer node (or a whole float from a hand-built tree)
// to int64.
func (d *decoder) toInt64() (int64, bool) {
	switch n := d.cur.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

func (d *decoder) decodeInt(want string, min, max int64) (int64, error) {
	n, ok := d.toInt64()
	if !ok {
		return 0, d.mismatch(want)
	}
	if n < min || n > max {
		return 0, errors.Overflow(errors.PhaseDecode, nil, n, want)
	}
	return n, nil
}

func (d *decoder) DecodeBool() (bool, error) {
	b, ok := d.cur.(bool)
	if !ok {
		return false, d.mismatch("bool")
	}
	return b, nil
}

func (d *decoder) DecodeInt8() (int8, error) {
	n, err := d.decodeInt("int8", math.MinInt8, math.MaxInt8)
	return int8(n), err
}

func (d *decoder) DecodeInt16() (int16, error) {
	n, err := d.decodeInt("int16", math.MinInt16, math.MaxInt16)
	return int16(n), err
}

func (d *decoder) DecodeInt32() (int32, error) {
	n, err := d.decodeInt("int32", math.MinInt32, math.MaxInt32)
	return int32(n), err
}

func (d *decoder) DecodeInt64() (int64, error) {
	return d.decodeInt("int64", math.MinInt64, math.MaxInt64)
}

func (d *decoder) DecodeFloat32() (float32, error) {
	switch f := d.cur.(type) {
	case float32:
		return f, nil
	case float64:
		return float32(f), nil
	}
	if n, ok := d.toInt64(); ok {
		return float32(n), nil
	}
	return 0, d.mismatch("float32")
}

func (d *decoder) DecodeFloat64() (float64, error) {
	switch f := d.cur.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	}
	if n, ok := d.toInt64(); ok {
		return float64(n), nil
	}
	return 0, d.mismatch("float64")
}

func (d *decoder) DecodeChar() (rune, error) {
	// Rune nodes are int32; hand-built trees may hold a one-rune string.
	if s, ok := d.cur.(string); ok {
		runes := []rune(s)
		if len(runes) != 1 {
			return 0, errors.MalformedInput(errors.PhaseDecode, nil,
				fmt.Errorf("char node holds %d runes", len(runes)))
		}
		return runes[0], nil
	}
	n, err := d.decodeInt("char", 0, math.MaxInt32)
	return rune(n), err
}

func (d *decoder) DecodeString() (string, error) {
	s, ok := d.cur.(string)
	if !ok {
		return "", d.mismatch("string")
	}
	return s, nil
}

func (d *decoder) DecodeUnit() error {
	switch d.cur.(type) {
	case struct{}, nil:
		return nil
	default:
		return d.mismatch("unit")
	}
}

func (d *decoder) DecodeEnum(factory serial.EnumFactory) (any, error) {
	if name, ok := d.cur.(string); ok {
		return factory.FromName(name)
	}
	if ordinal, ok := d.toInt64(); ok {
		return factory.FromOrdinal(int(ordinal))
	}
	return nil, d.mismatch(factory.Descriptor().Name())
}

func (d *decoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.DeserializeStrategy) (serial.CompositeDecoder, error) {
	switch desc.Kind() {
	case schema.KindStruct, schema.KindEnum:
		m, ok := d.cur.(map[string]any)
		if !ok {
			return nil, d.mismatch(desc.Name())
		}
		return newStructDecoder(d, desc, m), nil
	case schema.KindList:
		items, ok := d.cur.([]any)
		if !ok {
			return nil, d.mismatch(desc.Name())
		}
		return newListDecoder(d, items), nil
	case schema.KindMap:
		m, ok := d.cur.(map[any]any)
		if !ok {
			return nil, d.mismatch(desc.Name())
		}
		return newMapDecoder(d, m), nil
	default:
		return nil, errors.InvalidState(errors.PhaseDecode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
}

// elements carries the composite plumbing shared by all three tree shapes:
// each element read spawns a sub-decoder over the addressed node.
type elements struct {
	dec *decoder
}

// node is implemented per shape to address element index.
type nodeFunc func(desc *schema.Descriptor, index int) (any, error)

type composite struct {
	elements
	node nodeFunc
}

func (c *composite) at(desc *schema.Descriptor, index int) (*decoder, error) {
	v, err := c.node(desc, index)
	if err != nil {
		return nil, err
	}
	return c.dec.sub(v), nil
}

func (c *composite) DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return false, err
	}
	return sd.DecodeBool()
}

func (c *composite) DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeInt8()
}

func (c *composite) DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeInt16()
}

func (c *composite) DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeInt32()
}

func (c *composite) DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeInt64()
}

func (c *composite) DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeFloat32()
}

func (c *composite) DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeFloat64()
}

func (c *composite) DecodeCharElement(desc *schema.Descriptor, index int) (rune, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return 0, err
	}
	return sd.DecodeChar()
}

func (c *composite) DecodeStringElement(desc *schema.Descriptor, index int) (string, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return "", err
	}
	return sd.DecodeString()
}

func (c *composite) DecodeUnitElement(desc *schema.Descriptor, index int) error {
	sd, err := c.at(desc, index)
	if err != nil {
		return err
	}
	return sd.DecodeUnit()
}

func (c *composite) DecodeValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return nil, err
	}
	return serial.DecodeValue(sd, s)
}

func (c *composite) DecodeNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy) (any, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return nil, err
	}
	return serial.DecodeNullableValue(sd, s)
}

func (c *composite) UpdateValueElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return nil, err
	}
	return serial.UpdateValue(sd, s, old)
}

func (c *composite) UpdateNullableElement(desc *schema.Descriptor, index int, s serial.DeserializeStrategy, old any) (any, error) {
	sd, err := c.at(desc, index)
	if err != nil {
		return nil, err
	}
	return serial.UpdateNullableValue(sd, s, old)
}

func (c *composite) EndStructure(desc *schema.Descriptor) error { return nil }

// structDecoder serves a map[string]any tree. When every declared element
// is present it announces bulk delivery; otherwise it streams the indices
// of the elements that are present, in ascending order, which is what lets
// sparse trees drive patch-mode updates.
type structDecoder struct {
	composite
	m       map[string]any
	present []int
	started bool
	bulk    bool
	cursor  int
}

var _ serial.CompositeDecoder = (*structDecoder)(nil)

func newStructDecoder(dec *decoder, desc *schema.Descriptor, m map[string]any) *structDecoder {
	sd := &structDecoder{m: m}
	sd.dec = dec
	sd.node = func(desc *schema.Descriptor, index int) (any, error) {
		name := desc.ElementName(index)
		v, ok := sd.m[name]
		if !ok {
			return nil, errors.MalformedInput(errors.PhaseDecode, []string{desc.Name(), name},
				fmt.Errorf("element missing from tree"))
		}
		return v, nil
	}
	bulk := true
	for i := 0; i < desc.NumElements(); i++ {
		name := desc.ElementName(i)
		if _, ok := m[name]; ok {
			sd.present = append(sd.present, i)
		} else {
			bulk = false
		}
	}
	sd.bulk = bulk
	return sd
}

func (s *structDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if s.bulk {
		if s.started {
			return serial.IndexDone, nil
		}
		s.started = true
		return serial.IndexReadAll, nil
	}
	if s.cursor >= len(s.present) {
		return serial.IndexDone, nil
	}
	idx := s.present[s.cursor]
	s.cursor++
	return serial.ElementIndex(idx), nil
}

func (s *structDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	if s.bulk {
		return desc.NumElements(), nil
	}
	return serial.SizeUnknown, nil
}

// listDecoder serves a []any tree; delivery is always bulk, so the true
// size is always available.
type listDecoder struct {
	composite
	items   []any
	started bool
}

var _ serial.CompositeDecoder = (*listDecoder)(nil)

func newListDecoder(dec *decoder, items []any) *listDecoder {
	ld := &listDecoder{items: items}
	ld.dec = dec
	ld.node = func(desc *schema.Descriptor, index int) (any, error) {
		if index < 0 || index >= len(ld.items) {
			return nil, errors.MalformedInput(errors.PhaseDecode, []string{desc.Name()},
				fmt.Errorf("list index %d out of range (%d items)", index, len(ld.items)))
		}
		return ld.items[index], nil
	}
	return ld
}

func (l *listDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if l.started {
		return serial.IndexDone, nil
	}
	l.started = true
	return serial.IndexReadAll, nil
}

func (l *listDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return len(l.items), nil
}

// mapDecoder serves a map[any]any tree as bulk-delivered alternating
// key/value elements: entry n sits at indices 2n and 2n+1. The size counts
// entries.
type mapDecoder struct {
	composite
	entries [][2]any
	started bool
}

var _ serial.CompositeDecoder = (*mapDecoder)(nil)

func newMapDecoder(dec *decoder, tree map[any]any) *mapDecoder {
	md := &mapDecoder{}
	md.dec = dec
	for k, v := range tree {
		md.entries = append(md.entries, [2]any{k, v})
	}
	md.node = func(desc *schema.Descriptor, index int) (any, error) {
		entry := index / 2
		if index < 0 || entry >= len(md.entries) {
			return nil, errors.MalformedInput(errors.PhaseDecode, []string{desc.Name()},
				fmt.Errorf("map element index %d out of range (%d entries)", index, len(md.entries)))
		}
		return md.entries[entry][index%2], nil
	}
	return md
}

func (m *mapDecoder) DecodeElementIndex(desc *schema.Descriptor) (serial.ElementIndex, error) {
	if m.started {
		return serial.IndexDone, nil
	}
	m.started = true
	return serial.IndexReadAll, nil
}

func (m *mapDecoder) DecodeCollectionSize(desc *schema.Descriptor) (int, error) {
	return len(m.entries), nil
}
