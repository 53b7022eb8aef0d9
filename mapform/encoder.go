package mapform

import (
	"strconv"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// encoder is the scalar state: each primitive write lands in out, and
// BeginStructure hands off to a kind-specific composite that assembles the
// container and stores it in out on EndStructure.
type encoder struct {
	ctx serial.Context
	out any
}

var (
	_ serial.Encoder           = (*encoder)(nil)
	_ serial.CollectionEncoder = (*encoder)(nil)
)

func (e *encoder) Context() serial.Context { return e.ctx }

func (e *encoder) EncodeNotNullMark() error { return nil }

func (e *encoder) EncodeNull() error {
	e.out = nil
	return nil
}

func (e *encoder) EncodeBool(v bool) error       { e.out = v; return nil }
func (e *encoder) EncodeInt8(v int8) error       { e.out = v; return nil }
func (e *encoder) EncodeInt16(v int16) error     { e.out = v; return nil }
func (e *encoder) EncodeInt32(v int32) error     { e.out = v; return nil }
func (e *encoder) EncodeInt64(v int64) error     { e.out = v; return nil }
func (e *encoder) EncodeFloat32(v float32) error { e.out = v; return nil }
func (e *encoder) EncodeFloat64(v float64) error { e.out = v; return nil }
func (e *encoder) EncodeChar(v rune) error       { e.out = v; return nil }
func (e *encoder) EncodeString(v string) error   { e.out = v; return nil }
func (e *encoder) EncodeUnit() error             { e.out = struct{}{}; return nil }

func (e *encoder) EncodeEnum(enum *schema.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= enum.NumElements() {
		return errors.InvalidEnum(errors.PhaseEncode, nil, ordinal, enum.Name())
	}
	e.out = enum.ElementName(ordinal)
	return nil
}

func (e *encoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	return e.BeginCollection(desc, 0, typeParams...)
}

func (e *encoder) BeginCollection(desc *schema.Descriptor, size int, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	switch desc.Kind() {
	case schema.KindStruct, schema.KindEnum:
		return &structEncoder{enc: e, m: make(map[string]any, desc.NumElements())}, nil
	case schema.KindList:
		return &listEncoder{enc: e, items: make([]any, 0, max(size, 0))}, nil
	case schema.KindMap:
		return &mapEncoder{enc: e, m: make(map[any]any, max(size, 0))}, nil
	default:
		return nil, errors.InvalidState(errors.PhaseEncode,
			"cannot open a structure scope for "+desc.Kind().String()+" "+desc.Name())
	}
}

// sub spawns the scalar encoder used for one nested element traversal.
func (e *encoder) sub() *encoder {
	return &encoder{ctx: e.ctx}
}

// structEncoder assembles a map[string]any keyed by element name.
type structEncoder struct {
	enc *encoder
	m   map[string]any
}

var _ serial.CompositeEncoder = (*structEncoder)(nil)

func (s *structEncoder) put(desc *schema.Descriptor, index int, v any) error {
	s.m[desc.ElementName(index)] = v
	return nil
}

func (s *structEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	return s.put(desc, index, struct{}{})
}

func (s *structEncoder) EncodeValueElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := s.enc.sub()
	if err := serial.EncodeValue(child, strat, v); err != nil {
		return err
	}
	return s.put(desc, index, child.out)
}

func (s *structEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := s.enc.sub()
	if err := serial.EncodeNullableValue(child, strat, v); err != nil {
		return err
	}
	return s.put(desc, index, child.out)
}

// EncodeNonSerializableElement stores the raw value: a Go tree is mapform's
// native representation, so anything fits as-is.
func (s *structEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	return s.put(desc, index, v)
}

func (s *structEncoder) EndStructure(desc *schema.Descriptor) error {
	s.enc.out = s.m
	return nil
}

// listEncoder assembles a []any. Elements must arrive in ascending index
// order; the index itself only sanity-checks the position.
type listEncoder struct {
	enc   *encoder
	items []any
}

var _ serial.CompositeEncoder = (*listEncoder)(nil)

func (l *listEncoder) put(desc *schema.Descriptor, index int, v any) error {
	if index != len(l.items) {
		return errors.InvalidState(errors.PhaseEncode,
			"list elements must be written in ascending order: got index "+
				strconv.Itoa(index)+" after "+strconv.Itoa(len(l.items))+" items")
	}
	l.items = append(l.items, v)
	return nil
}

func (l *listEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	return l.put(desc, index, struct{}{})
}

func (l *listEncoder) EncodeValueElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := l.enc.sub()
	if err := serial.EncodeValue(child, strat, v); err != nil {
		return err
	}
	return l.put(desc, index, child.out)
}

func (l *listEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := l.enc.sub()
	if err := serial.EncodeNullableValue(child, strat, v); err != nil {
		return err
	}
	return l.put(desc, index, child.out)
}

func (l *listEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	return l.put(desc, index, v)
}

func (l *listEncoder) EndStructure(desc *schema.Descriptor) error {
	l.enc.out = l.items
	return nil
}

// mapEncoder assembles a map[any]any from alternating key/value elements:
// even indices carry keys, odd indices the value for the preceding key.
type mapEncoder struct {
	enc     *encoder
	m       map[any]any
	pending any
	hasKey  bool
}

var _ serial.CompositeEncoder = (*mapEncoder)(nil)

func (m *mapEncoder) put(desc *schema.Descriptor, index int, v any) error {
	if index%2 == 0 {
		if m.hasKey {
			return errors.InvalidState(errors.PhaseEncode,
				"map key written twice without a value for "+desc.Name())
		}
		m.pending = v
		m.hasKey = true
		return nil
	}
	if !m.hasKey {
		return errors.InvalidState(errors.PhaseEncode,
			"map value written without a key for "+desc.Name())
	}
	m.m[m.pending] = v
	m.pending = nil
	m.hasKey = false
	return nil
}

func (m *mapEncoder) EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeCharElement(desc *schema.Descriptor, index int, v rune) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeStringElement(desc *schema.Descriptor, index int, v string) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EncodeUnitElement(desc *schema.Descriptor, index int) error {
	return m.put(desc, index, struct{}{})
}

func (m *mapEncoder) EncodeValueElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := m.enc.sub()
	if err := serial.EncodeValue(child, strat, v); err != nil {
		return err
	}
	return m.put(desc, index, child.out)
}

func (m *mapEncoder) EncodeNullableElement(desc *schema.Descriptor, index int, strat serial.SerializeStrategy, v any) error {
	child := m.enc.sub()
	if err := serial.EncodeNullableValue(child, strat, v); err != nil {
		return err
	}
	return m.put(desc, index, child.out)
}

func (m *mapEncoder) EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error {
	return m.put(desc, index, v)
}

func (m *mapEncoder) EndStructure(desc *schema.Descriptor) error {
	if m.hasKey {
		return errors.InvalidState(errors.PhaseEncode,
			"map scope closed with a dangling key for "+desc.Name())
	}
	m.enc.out = m.m
	return nil
}
