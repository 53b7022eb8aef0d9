package codecs

import (
	"fmt"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// Singleton codecs for the primitive kinds. Each serializes exactly one Go
// type and fails with a type mismatch on anything else.
var (
	Bool    serial.Codec = boolCodec{}
	Int8    serial.Codec = int8Codec{}
	Int16   serial.Codec = int16Codec{}
	Int32   serial.Codec = int32Codec{}
	Int64   serial.Codec = int64Codec{}
	Float32 serial.Codec = float32Codec{}
	Float64 serial.Codec = float64Codec{}
	Char    serial.Codec = charCodec{}
	String  serial.Codec = stringCodec{}
	Unit    serial.Codec = unitCodec{}
)

var (
	boolDesc    = schema.NewBuilder("serial.Bool", schema.KindBool).MustBuild()
	int8Desc    = schema.NewBuilder("serial.Int8", schema.KindInt8).MustBuild()
	int16Desc   = schema.NewBuilder("serial.Int16", schema.KindInt16).MustBuild()
	int32Desc   = schema.NewBuilder("serial.Int32", schema.KindInt32).MustBuild()
	int64Desc   = schema.NewBuilder("serial.Int64", schema.KindInt64).MustBuild()
	float32Desc = schema.NewBuilder("serial.Float32", schema.KindFloat32).MustBuild()
	float64Desc = schema.NewBuilder("serial.Float64", schema.KindFloat64).MustBuild()
	charDesc    = schema.NewBuilder("serial.Char", schema.KindChar).MustBuild()
	stringDesc  = schema.NewBuilder("serial.String", schema.KindString).MustBuild()
	unitDesc    = schema.NewBuilder("serial.Unit", schema.KindUnit).MustBuild()
)

// mismatch builds the standard wrong-input error for a strategy.
func mismatch(phase errors.Phase, v any, descName string) error {
	return errors.TypeMismatch(phase, nil, fmt.Sprintf("%T", v), descName)
}

type boolCodec struct{}

func (boolCodec) Descriptor() *schema.Descriptor { return boolDesc }

func (boolCodec) Serialize(e serial.Encoder, v any) error {
	b, ok := v.(bool)
	if !ok {
		return mismatch(errors.PhaseEncode, v, boolDesc.Name())
	}
	return e.EncodeBool(b)
}

func (boolCodec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeBool()
}

type int8Codec struct{}

func (int8Codec) Descriptor() *schema.Descriptor { return int8Desc }

func (int8Codec) Serialize(e serial.Encoder, v any) error {
	n, ok := v.(int8)
	if !ok {
		return mismatch(errors.PhaseEncode, v, int8Desc.Name())
	}
	return e.EncodeInt8(n)
}

func (int8Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeInt8()
}

type int16Codec struct{}

func (int16Codec) Descriptor() *schema.Descriptor { return int16Desc }

func (int16Codec) Serialize(e serial.Encoder, v any) error {
	n, ok := v.(int16)
	if !ok {
		return mismatch(errors.PhaseEncode, v, int16Desc.Name())
	}
	return e.EncodeInt16(n)
}

func (int16Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeInt16()
}

type int32Codec struct{}

func (int32Codec) Descriptor() *schema.Descriptor { return int32Desc }

func (int32Codec) Serialize(e serial.Encoder, v any) error {
	n, ok := v.(int32)
	if !ok {
		return mismatch(errors.PhaseEncode, v, int32Desc.Name())
	}
	return e.EncodeInt32(n)
}

func (int32Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeInt32()
}

type int64Codec struct{}

func (int64Codec) Descriptor() *schema.Descriptor { return int64Desc }

func (int64Codec) Serialize(e serial.Encoder, v any) error {
	n, ok := v.(int64)
	if !ok {
		return mismatch(errors.PhaseEncode, v, int64Desc.Name())
	}
	return e.EncodeInt64(n)
}

func (int64Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeInt64()
}

type float32Codec struct{}

func (float32Codec) Descriptor() *schema.Descriptor { return float32Desc }

func (float32Codec) Serialize(e serial.Encoder, v any) error {
	f, ok := v.(float32)
	if !ok {
		return mismatch(errors.PhaseEncode, v, float32Desc.Name())
	}
	return e.EncodeFloat32(f)
}

func (float32Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeFloat32()
}

type float64Codec struct{}

func (float64Codec) Descriptor() *schema.Descriptor { return float64Desc }

func (float64Codec) Serialize(e serial.Encoder, v any) error {
	f, ok := v.(float64)
	if !ok {
		return mismatch(errors.PhaseEncode, v, float64Desc.Name())
	}
	return e.EncodeFloat64(f)
}

func (float64Codec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeFloat64()
}

type charCodec struct{}

func (charCodec) Descriptor() *schema.Descriptor { return charDesc }

func (charCodec) Serialize(e serial.Encoder, v any) error {
	// rune is an alias of int32, so this accepts both spellings.
	r, ok := v.(rune)
	if !ok {
		return mismatch(errors.PhaseEncode, v, charDesc.Name())
	}
	return e.EncodeChar(r)
}

func (charCodec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeChar()
}

type stringCodec struct{}

func (stringCodec) Descriptor() *schema.Descriptor { return stringDesc }

func (stringCodec) Serialize(e serial.Encoder, v any) error {
	s, ok := v.(string)
	if !ok {
		return mismatch(errors.PhaseEncode, v, stringDesc.Name())
	}
	return e.EncodeString(s)
}

func (stringCodec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeString()
}

type unitCodec struct{}

func (unitCodec) Descriptor() *schema.Descriptor { return unitDesc }

func (unitCodec) Serialize(e serial.Encoder, v any) error {
	return e.EncodeUnit()
}

func (unitCodec) Deserialize(d serial.Decoder) (any, error) {
	if err := d.DecodeUnit(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}
