package serial

import (
	"reflect"

	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// Encoder is the scalar-state half of the encoding protocol. A format
// backend implements it to receive the linear sequence of write calls a
// codec strategy produces while traversing one value.
//
// Primitive writes are unconditional single calls. Values that may be
// absent follow the null discipline: exactly one of EncodeNotNullMark
// (value present, its writes follow) or EncodeNull (value absent, terminal)
// per nullable position, never both, never neither. The bridging helpers
// (EncodeNullableValue) enforce this for strategies.
//
// Structural values switch to the structure state through BeginStructure;
// all element writes then go through the returned CompositeEncoder until
// its EndStructure.
type Encoder interface {
	// Context returns the codec lookup configuration the encoder carries.
	// It is read-only during traversal.
	Context() Context

	EncodeNotNullMark() error
	EncodeNull() error

	EncodeBool(v bool) error
	EncodeInt8(v int8) error
	EncodeInt16(v int16) error
	EncodeInt32(v int32) error
	EncodeInt64(v int64) error
	EncodeFloat32(v float32) error
	EncodeFloat64(v float64) error
	EncodeChar(v rune) error
	EncodeString(v string) error
	EncodeUnit() error

	// EncodeEnum writes the enum case identified by ordinal; enum carries
	// the case names as elements for backends that encode by name.
	EncodeEnum(enum *schema.Descriptor, ordinal int) error

	// BeginStructure opens a structure scope for desc. Every element of the
	// structure must be written through the returned CompositeEncoder, and
	// its EndStructure must run exactly once, on every exit path including
	// element-write failure.
	BeginStructure(desc *schema.Descriptor, typeParams ...SerializeStrategy) (CompositeEncoder, error)
}

// CompositeEncoder is the structure-state half of the encoding protocol,
// scoped between one BeginStructure and its EndStructure.
//
// Element write order is caller-determined. Generated codecs write in
// ascending declared order; a backend that requires ascending order must
// document it.
type CompositeEncoder interface {
	EncodeBoolElement(desc *schema.Descriptor, index int, v bool) error
	EncodeInt8Element(desc *schema.Descriptor, index int, v int8) error
	EncodeInt16Element(desc *schema.Descriptor, index int, v int16) error
	EncodeInt32Element(desc *schema.Descriptor, index int, v int32) error
	EncodeInt64Element(desc *schema.Descriptor, index int, v int64) error
	EncodeFloat32Element(desc *schema.Descriptor, index int, v float32) error
	EncodeFloat64Element(desc *schema.Descriptor, index int, v float64) error
	EncodeCharElement(desc *schema.Descriptor, index int, v rune) error
	EncodeStringElement(desc *schema.Descriptor, index int, v string) error
	EncodeUnitElement(desc *schema.Descriptor, index int) error

	// EncodeValueElement writes element index by driving s over v.
	EncodeValueElement(desc *schema.Descriptor, index int, s SerializeStrategy, v any) error

	// EncodeNullableElement is EncodeValueElement with the null discipline
	// applied around the value.
	EncodeNullableElement(desc *schema.Descriptor, index int, s SerializeStrategy, v any) error

	// EncodeNonSerializableElement writes a value that has no strategy, for
	// backends that can special-case it (an opaque reference, a raw tree).
	// Backends without such a representation reject it.
	EncodeNonSerializableElement(desc *schema.Descriptor, index int, v any) error

	// EndStructure closes the scope opened by the BeginStructure that
	// produced this encoder.
	EndStructure(desc *schema.Descriptor) error
}

// CollectionEncoder is an optional Encoder capability for backends with
// dedicated collection framing that can pre-announce the element count.
// Backends without it serve collections through plain BeginStructure.
type CollectionEncoder interface {
	BeginCollection(desc *schema.Descriptor, size int, typeParams ...SerializeStrategy) (CompositeEncoder, error)
}

// ValueEncoder is an optional Encoder capability to intercept whole-value
// serialization before the strategy runs, for backends that can represent
// some values natively.
type ValueEncoder interface {
	EncodeValue(s SerializeStrategy, v any) error
}

// EnumTypeEncoder is the optional capability behind EncodeEnumType.
//
// Deprecated: implement enum support through Encoder.EncodeEnum. The type
// token form exists for legacy callers and minimal backends omit it.
type EnumTypeEncoder interface {
	EncodeEnumType(t reflect.Type, ordinal int) error
}

// BeginCollection opens a collection scope on e, pre-announcing size when
// the backend has collection framing and degrading to BeginStructure when
// it does not. size counts entries: a map of n pairs has size n.
func BeginCollection(e Encoder, desc *schema.Descriptor, size int, typeParams ...SerializeStrategy) (CompositeEncoder, error) {
	if ce, ok := e.(CollectionEncoder); ok {
		return ce.BeginCollection(desc, size, typeParams...)
	}
	return e.BeginStructure(desc, typeParams...)
}

// EncodeValue serializes v through s on e, honoring the backend's
// ValueEncoder interception when present.
func EncodeValue(e Encoder, s SerializeStrategy, v any) error {
	if ve, ok := e.(ValueEncoder); ok {
		return ve.EncodeValue(s, v)
	}
	return s.Serialize(e, v)
}

// EncodeNullableValue applies the null discipline around EncodeValue:
// a null v writes the null marker and stops; anything else writes the
// not-null mark and then the value.
func EncodeNullableValue(e Encoder, s SerializeStrategy, v any) error {
	if IsNull(v) {
		return e.EncodeNull()
	}
	if err := e.EncodeNotNullMark(); err != nil {
		return err
	}
	return EncodeValue(e, s, v)
}

// EncodeEnumType writes an enum case through the type token capability.
//
// Deprecated: use Encoder.EncodeEnum with the enum's descriptor. Backends
// without EnumTypeEncoder reject this call as unsupported.
func EncodeEnumType(e Encoder, t reflect.Type, ordinal int) error {
	if ee, ok := e.(EnumTypeEncoder); ok {
		return ee.EncodeEnumType(t, ordinal)
	}
	return errors.Unsupported(errors.PhaseEncode, "enum type tokens are not supported by this format")
}

// IsNull reports whether v counts as null under the null discipline:
// untyped nil and nil pointers, maps, slices, interfaces, channels, and
// funcs. Backends use it to decide between the null marker and a value.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
