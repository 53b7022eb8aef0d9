package codecs

import (
	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// Enum returns a codec for an enum-like type with the given case names in
// ordinal order. Values travel as case-name strings on the Go side; the
// wire form is up to the backend (ordinal for compact formats, name for
// textual ones). The codec doubles as the EnumFactory backends materialize
// decoded cases through.
func Enum(name string, caseNames ...string) *EnumCodec {
	b := schema.NewBuilder(name, schema.KindEnum)
	for _, c := range caseNames {
		b.AddElement(c, false)
	}
	return &EnumCodec{desc: b.MustBuild(), names: caseNames}
}

// EnumCodec is the strategy built by Enum.
type EnumCodec struct {
	desc  *schema.Descriptor
	names []string
}

var (
	_ serial.Codec       = (*EnumCodec)(nil)
	_ serial.EnumFactory = (*EnumCodec)(nil)
)

func (c *EnumCodec) Descriptor() *schema.Descriptor { return c.desc }

func (c *EnumCodec) Serialize(e serial.Encoder, v any) error {
	name, ok := v.(string)
	if !ok {
		return mismatch(errors.PhaseEncode, v, c.desc.Name())
	}
	ordinal := c.desc.ElementIndex(name)
	if ordinal == schema.UnknownIndex {
		return errors.InvalidEnum(errors.PhaseEncode, nil, name, c.desc.Name())
	}
	return e.EncodeEnum(c.desc, ordinal)
}

func (c *EnumCodec) Deserialize(d serial.Decoder) (any, error) {
	return d.DecodeEnum(c)
}

// FromOrdinal materializes the case with the given ordinal.
func (c *EnumCodec) FromOrdinal(ordinal int) (any, error) {
	if ordinal < 0 || ordinal >= len(c.names) {
		return nil, errors.InvalidEnum(errors.PhaseDecode, nil, ordinal, c.desc.Name())
	}
	return c.names[ordinal], nil
}

// FromName materializes the case with the given name.
func (c *EnumCodec) FromName(name string) (any, error) {
	if c.desc.ElementIndex(name) == schema.UnknownIndex {
		return nil, errors.InvalidEnum(errors.PhaseDecode, nil, name, c.desc.Name())
	}
	return name, nil
}
