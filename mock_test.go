package serial_test

import (
	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// mockEncoder records the protocol calls it receives. Its composite can be
// armed to fail on a chosen element index, which is how the scope
// discipline tests observe failure paths.
type mockEncoder struct {
	calls     []string
	composite *mockComposite
}

type mockComposite struct {
	enc       *mockEncoder
	failIndex int // element index that fails, -1 for none
	writes    int
	endCalls  int
}

func newMockEncoder() *mockEncoder {
	m := &mockEncoder{}
	m.composite = &mockComposite{enc: m, failIndex: -1}
	return m
}

func (m *mockEncoder) record(call string) { m.calls = append(m.calls, call) }

func (m *mockEncoder) Context() serial.Context { return serial.EmptyContext }

func (m *mockEncoder) EncodeNotNullMark() error { m.record("notnull"); return nil }
func (m *mockEncoder) EncodeNull() error        { m.record("null"); return nil }

func (m *mockEncoder) EncodeBool(v bool) error       { m.record("bool"); return nil }
func (m *mockEncoder) EncodeInt8(v int8) error       { m.record("int8"); return nil }
func (m *mockEncoder) EncodeInt16(v int16) error     { m.record("int16"); return nil }
func (m *mockEncoder) EncodeInt32(v int32) error     { m.record("int32"); return nil }
func (m *mockEncoder) EncodeInt64(v int64) error     { m.record("int64"); return nil }
func (m *mockEncoder) EncodeFloat32(v float32) error { m.record("float32"); return nil }
func (m *mockEncoder) EncodeFloat64(v float64) error { m.record("float64"); return nil }
func (m *mockEncoder) EncodeChar(v rune) error       { m.record("char"); return nil }
func (m *mockEncoder) EncodeString(v string) error   { m.record("string:" + v); return nil }
func (m *mockEncoder) EncodeUnit() error             { m.record("unit"); return nil }

func (m *mockEncoder) EncodeEnum(enum *schema.Descriptor, ordinal int) error {
	m.record("enum")
	return nil
}

func (m *mockEncoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	m.record("begin")
	return m.composite, nil
}

func (c *mockComposite) element(index int) error {
	c.writes++
	if index == c.failIndex {
		return errors.InvalidState(errors.PhaseEncode, "armed element failure")
	}
	return nil
}

func (c *mockComposite) EncodeBoolElement(d *schema.Descriptor, i int, v bool) error {
	return c.element(i)
}

func (c *mockComposite) EncodeInt8Element(d *schema.Descriptor, i int, v int8) error {
	return c.element(i)
}

func (c *mockComposite) EncodeInt16Element(d *schema.Descriptor, i int, v int16) error {
	return c.element(i)
}

func (c *mockComposite) EncodeInt32Element(d *schema.Descriptor, i int, v int32) error {
	return c.element(i)
}

func (c *mockComposite) EncodeInt64Element(d *schema.Descriptor, i int, v int64) error {
	return c.element(i)
}

func (c *mockComposite) EncodeFloat32Element(d *schema.Descriptor, i int, v float32) error {
	return c.element(i)
}

func (c *mockComposite) EncodeFloat64Element(d *schema.Descriptor, i int, v float64) error {
	return c.element(i)
}

func (c *mockComposite) EncodeCharElement(d *schema.Descriptor, i int, v rune) error {
	return c.element(i)
}

func (c *mockComposite) EncodeStringElement(d *schema.Descriptor, i int, v string) error {
	return c.element(i)
}

func (c *mockComposite) EncodeUnitElement(d *schema.Descriptor, i int) error {
	return c.element(i)
}

func (c *mockComposite) EncodeValueElement(d *schema.Descriptor, i int, s serial.SerializeStrategy, v any) error {
	return c.element(i)
}

func (c *mockComposite) EncodeNullableElement(d *schema.Descriptor, i int, s serial.SerializeStrategy, v any) error {
	return c.element(i)
}

func (c *mockComposite) EncodeNonSerializableElement(d *schema.Descriptor, i int, v any) error {
	return c.element(i)
}

func (c *mockComposite) EndStructure(d *schema.Descriptor) error {
	c.endCalls++
	c.enc.record("end")
	return nil
}

// mockCollectionEncoder adds the collection capability on top of
// mockEncoder.
type mockCollectionEncoder struct {
	*mockEncoder
	collectionCalls int
	announcedSize   int
}

func (m *mockCollectionEncoder) BeginCollection(desc *schema.Descriptor, size int, typeParams ...serial.SerializeStrategy) (serial.CompositeEncoder, error) {
	m.collectionCalls++
	m.announcedSize = size
	m.record("begin-collection")
	return m.composite, nil
}

// mockDecoder serves scripted null marks and a fixed string value, enough
// to drive the nullable and update helpers through every branch.
type mockDecoder struct {
	mode      serial.UpdateMode
	marks     []bool
	nullCalls int
	value     string
}

func (m *mockDecoder) Context() serial.Context       { return serial.EmptyContext }
func (m *mockDecoder) UpdateMode() serial.UpdateMode { return m.mode }

func (m *mockDecoder) DecodeNotNullMark() (bool, error) {
	if len(m.marks) == 0 {
		return true, nil
	}
	mark := m.marks[0]
	m.marks = m.marks[1:]
	return mark, nil
}

func (m *mockDecoder) DecodeNull() error {
	m.nullCalls++
	return nil
}

func (m *mockDecoder) DecodeBool() (bool, error)       { return false, nil }
func (m *mockDecoder) DecodeInt8() (int8, error)       { return 0, nil }
func (m *mockDecoder) DecodeInt16() (int16, error)     { return 0, nil }
func (m *mockDecoder) DecodeInt32() (int32, error)     { return 0, nil }
func (m *mockDecoder) DecodeInt64() (int64, error)     { return 0, nil }
func (m *mockDecoder) DecodeFloat32() (float32, error) { return 0, nil }
func (m *mockDecoder) DecodeFloat64() (float64, error) { return 0, nil }
func (m *mockDecoder) DecodeChar() (rune, error)       { return 0, nil }
func (m *mockDecoder) DecodeString() (string, error)   { return m.value, nil }
func (m *mockDecoder) DecodeUnit() error               { return nil }

func (m *mockDecoder) DecodeEnum(factory serial.EnumFactory) (any, error) {
	return factory.FromOrdinal(0)
}

func (m *mockDecoder) BeginStructure(desc *schema.Descriptor, typeParams ...serial.DeserializeStrategy) (serial.CompositeDecoder, error) {
	return nil, errors.Unsupported(errors.PhaseDecode, "mock decoder has no structure support")
}

// stringStrategy is a minimal codec over string values, optionally carrying
// patch logic that concatenates old and new.
type stringStrategy struct {
	desc    *schema.Descriptor
	patches bool
}

func newStringStrategy(patches bool) *stringStrategy {
	return &stringStrategy{
		desc:    schema.NewBuilder("mock.String", schema.KindString).MustBuild(),
		patches: patches,
	}
}

func (s *stringStrategy) Descriptor() *schema.Descriptor { return s.desc }

func (s *stringStrategy) Serialize(e serial.Encoder, v any) error {
	return e.EncodeString(v.(string))
}

func (s *stringStrategy) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeString()
}

// patchingStrategy layers the Patcher capability over stringStrategy.
type patchingStrategy struct {
	*stringStrategy
}

func (s *patchingStrategy) Patch(d serial.Decoder, old any) (any, error) {
	fresh, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	return old.(string) + "+" + fresh, nil
}
