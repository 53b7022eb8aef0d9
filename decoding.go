package serial

import (
	"reflect"
	"strconv"

	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// ElementIndex is the result of CompositeDecoder.DecodeElementIndex: either
// a valid 0-based element index or one of three negative sentinels. The
// sentinel values are fixed and distinct from every valid index.
type ElementIndex int

const (
	// IndexDone signals that every element of the current structure has
	// been consumed; the caller stops reading and closes the scope.
	IndexDone ElementIndex = -1

	// IndexReadAll signals bulk delivery: the backend holds every element
	// already. The caller must then read elements 0..NumElements-1 in
	// ascending order without querying the index again, and may rely on
	// DecodeCollectionSize returning the true count.
	IndexReadAll ElementIndex = -2

	// IndexUnknown signals a field the descriptor does not declare. The
	// caller skips it and queries again; this is a designed-in control
	// path for forward compatibility, never an error.
	IndexUnknown ElementIndex = -3
)

// Valid reports whether the index addresses a declared element.
func (i ElementIndex) Valid() bool {
	return i >= 0
}

func (i ElementIndex) String() string {
	switch i {
	case IndexDone:
		return "done"
	case IndexReadAll:
		return "read-all"
	case IndexUnknown:
		return "unknown"
	default:
		return strconv.Itoa(int(i))
	}
}

// SizeUnknown is returned by DecodeCollectionSize when the backend cannot
// pre-announce the element count. Backends in bulk (IndexReadAll) mode must
// return the true count instead.
const SizeUnknown = -1

// UpdateMode is the policy governing how decoding merges freshly read data
// into an existing value.
type UpdateMode uint8

const (
	// UpdateBanned rejects every update attempt. It is the safe default
	// for strategies without patch logic.
	UpdateBanned UpdateMode = iota

	// UpdateOverwrite ignores the old value and decodes fresh.
	UpdateOverwrite

	// UpdatePatch delegates to the strategy's Patcher capability, merging
	// new data into the old value.
	UpdatePatch
)

var updateModeNames = [...]string{
	UpdateBanned:    "banned",
	UpdateOverwrite: "overwrite",
	UpdatePatch:     "patch",
}

func (m UpdateMode) String() string {
	if int(m) < len(updateModeNames) {
		return updateModeNames[m]
	}
	return "unknown"
}

// Decoder is the scalar-state half of the decoding protocol, the dual of
// Encoder. The null discipline mirrors encoding: DecodeNotNullMark is
// queried first, and DecodeNull is only valid when the mark reported false.
type Decoder interface {
	// Context returns the codec lookup configuration the decoder carries.
	// It is read-only during traversal.
	Context() Context

	// UpdateMode returns the merge policy for update operations driven
	// through this decoder.
	UpdateMode() UpdateMode

	// DecodeNotNullMark reports whether a value is present at the current
	// position. False means the position holds a null marker, which must
	// then be consumed with DecodeNull.
	DecodeNotNullMark() (bool, error)

	// DecodeNull consumes the null marker. Calling it when the mark
	// reported true is a protocol violation.
	DecodeNull() error

	DecodeBool() (bool, error)
	DecodeInt8() (int8, error)
	DecodeInt16() (int16, error)
	DecodeInt32() (int32, error)
	DecodeInt64() (int64, error)
	DecodeFloat32() (float32, error)
	DecodeFloat64() (float64, error)
	DecodeChar() (rune, error)
	DecodeString() (string, error)
	DecodeUnit() error

	// DecodeEnum reads an enum case and materializes it through factory.
	DecodeEnum(factory EnumFactory) (any, error)

	// BeginStructure opens a structure scope for desc. Elements are then
	// read through the returned CompositeDecoder until its EndStructure,
	// which must run exactly once, on every exit path including
	// element-read failure.
	BeginStructure(desc *schema.Descriptor, typeParams ...DeserializeStrategy) (CompositeDecoder, error)
}

// CompositeDecoder is the structure-state half of the decoding protocol,
// scoped between one BeginStructure and its EndStructure.
type CompositeDecoder interface {
	// DecodeElementIndex discovers which element comes next. It is the
	// sole source of element positions: callers loop on it, dispatch on
	// valid indices, skip on IndexUnknown, stop on IndexDone, and switch
	// to the ascending bulk read on IndexReadAll.
	DecodeElementIndex(desc *schema.Descriptor) (ElementIndex, error)

	// DecodeCollectionSize returns the element count when the backend
	// knows it, SizeUnknown otherwise. After IndexReadAll the true count
	// is mandatory, since the bulk path denies callers a per-element
	// index loop to count with.
	DecodeCollectionSize(desc *schema.Descriptor) (int, error)

	DecodeBoolElement(desc *schema.Descriptor, index int) (bool, error)
	DecodeInt8Element(desc *schema.Descriptor, index int) (int8, error)
	DecodeInt16Element(desc *schema.Descriptor, index int) (int16, error)
	DecodeInt32Element(desc *schema.Descriptor, index int) (int32, error)
	DecodeInt64Element(desc *schema.Descriptor, index int) (int64, error)
	DecodeFloat32Element(desc *schema.Descriptor, index int) (float32, error)
	DecodeFloat64Element(desc *schema.Descriptor, index int) (float64, error)
	DecodeCharElement(desc *schema.Descriptor, index int) (rune, error)
	DecodeStringElement(desc *schema.Descriptor, index int) (string, error)
	DecodeUnitElement(desc *schema.Descriptor, index int) error

	// DecodeValueElement reads element index by driving s.
	DecodeValueElement(desc *schema.Descriptor, index int, s DeserializeStrategy) (any, error)

	// DecodeNullableElement is DecodeValueElement with the null discipline
	// applied around the value.
	DecodeNullableElement(desc *schema.Descriptor, index int, s DeserializeStrategy) (any, error)

	// UpdateValueElement merges element index into old according to the
	// decoder's update mode.
	UpdateValueElement(desc *schema.Descriptor, index int, s DeserializeStrategy, old any) (any, error)

	// UpdateNullableElement is the nullable variant of UpdateValueElement,
	// with the merge precedence of UpdateNullableValue.
	UpdateNullableElement(desc *schema.Descriptor, index int, s DeserializeStrategy, old any) (any, error)

	// EndStructure closes the scope opened by the BeginStructure that
	// produced this decoder.
	EndStructure(desc *schema.Descriptor) error
}

// ValueDecoder is an optional Decoder capability to intercept whole-value
// deserialization before the strategy runs.
type ValueDecoder interface {
	DecodeValue(s DeserializeStrategy) (any, error)
}

// EnumTypeDecoder is the optional capability behind DecodeEnumType.
//
// Deprecated: implement enum support through Decoder.DecodeEnum. The type
// token form exists for legacy callers and minimal backends omit it.
type EnumTypeDecoder interface {
	DecodeEnumType(t reflect.Type) (int, error)
}

// DecodeValue deserializes one value through s on d, honoring the backend's
// ValueDecoder interception when present.
func DecodeValue(d Decoder, s DeserializeStrategy) (any, error) {
	if vd, ok := d.(ValueDecoder); ok {
		return vd.DecodeValue(s)
	}
	return s.Deserialize(d)
}

// DecodeNullableValue applies the null discipline around DecodeValue: a
// false not-null mark consumes the null marker and yields nil, a true mark
// reads the value.
func DecodeNullableValue(d Decoder, s DeserializeStrategy) (any, error) {
	present, err := d.DecodeNotNullMark()
	if err != nil {
		return nil, err
	}
	if !present {
		if err := d.DecodeNull(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return DecodeValue(d, s)
}

// UpdateValue merges freshly decoded data into old according to the
// decoder's update mode: banned fails naming the type, overwrite decodes
// fresh, patch delegates to the strategy's Patcher capability. A strategy
// without Patcher rejects patch mode the same way banned does.
func UpdateValue(d Decoder, s DeserializeStrategy, old any) (any, error) {
	switch d.UpdateMode() {
	case UpdateOverwrite:
		return DecodeValue(d, s)
	case UpdatePatch:
		if p, ok := s.(Patcher); ok {
			return p.Patch(d, old)
		}
		return nil, errors.UpdateNotSupported(s.Descriptor().Name())
	default:
		return nil, errors.UpdateNotSupported(s.Descriptor().Name())
	}
}

/// UpdateNullableValue merges a nullable value. The precedence is strict:
// banned mode fails first; overwrite mode or an absent old value falls back
// to a plain nullable decode; otherwise a true not-null mark patches the
// old value in place, and a false mark consumes the null marker and keeps
// the old value unchanged. Reordering these checks either loses the old
// value or misses an explicit new null.
func UpdateNullableValue(d Decoder, s DeserializeStrategy, old any) (any, error) {
	switch {
	case d.UpdateMode() == UpdateBanned:
		return nil, errors.UpdateNotSupported(s.Descriptor().Name())
	case d.UpdateMode() == UpdateOverwrite || IsNull(old):
		return DecodeNullableValue(d, s)
	default:
		present, err := d.DecodeNotNullMark()
		if err != nil {
			return nil, err
		}
		if present {
			return UpdateValue(d, s, old)
		}
		if err := d.DecodeNull(); err != nil {
			return nil, err
		}
		return old, nil
	}
}

// DecodeEnumType reads an enum ordinal through the type token capability.
//
/// Deprecated: use Decoder.DecodeEnum with an EnumFactory. Backends without
// EnumTypeDecoder reject this call as unsupported.
func DecodeEnumType(d Decoder, t reflect.Type) (int, error) {
	if ed, ok := d.(EnumTypeDecoder); ok {
		return ed.DecodeEnumType(t)
	}
	return 0, errors.Unsupported(errors.PhaseDecode, "enum type tokens are not supported by this format")
}
