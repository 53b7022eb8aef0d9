// Package testcodec provides the hand-written codec the backend tests
// drive: a Person structure covering every primitive kind, a list, a map,
// an enum, and a nullable optional element, written the way a generated
// codec would drive the protocol.
package testcodec

import (
	"fmt"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/codecs"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// Person is the value shape under test. Nickname is nil or a string.
type Person struct {
	Name     string
	Age      int32
	Active   bool
	Score    float64
	Initial  rune
	Tags     []any       // strings
	Attrs    map[any]any // string -> int64
	Role     string      // Role case name
	Nickname any
}

var (
	Role  = codecs.Enum("test.Role", "admin", "editor", "viewer")
	Tags  = codecs.List(codecs.String)
	Attrs = codecs.Map(codecs.String, codecs.Int64)
)

// Element indices of PersonDescriptor, in declaration order.
const (
	ElemName = iota
	ElemAge
	ElemActive
	ElemScore
	ElemInitial
	ElemTags
	ElemAttrs
	ElemRole
	ElemNickname
)

var PersonDescriptor = schema.NewBuilder("test.Person", schema.KindStruct).
	AddElement("name", false).
	AddElement("age", false).
	AddElement("active", false).
	AddElement("score", false).
	AddElement("initial", false).
	AddElement("tags", false).
	AddElement("attrs", false).
	AddElement("role", false).
	AddElement("nickname", true).
	PushDescriptor(codecs.String.Descriptor()).
	PushDescriptor(codecs.Int32.Descriptor()).
	PushDescriptor(codecs.Bool.Descriptor()).
	PushDescriptor(codecs.Float64.Descriptor()).
	PushDescriptor(codecs.Char.Descriptor()).
	PushDescriptor(Tags.Descriptor()).
	PushDescriptor(Attrs.Descriptor()).
	PushDescriptor(Role.Descriptor()).
	PushDescriptor(codecs.String.Descriptor()).
	MustBuild()

// Sample returns a fully populated Person.
func Sample() Person {
	return Person{
		Name:     "ada",
		Age:      36,
		Active:   true,
		Score:    99.5,
		Initial:  'a',
		Tags:     []any{"math", "engines"},
		Attrs:    map[any]any{"rank": int64(1), "papers": int64(12)},
		Role:     "admin",
		Nickname: "countess",
	}
}

// PersonCodec drives the full protocol surface for Person, including the
// patch capability.
type PersonCodec struct{}

var (
	_ serial.Codec   = PersonCodec{}
	_ serial.Patcher = PersonCodec{}
)

func (PersonCodec) Descriptor() *schema.Descriptor { return PersonDescriptor }

func (PersonCodec) Serialize(e serial.Encoder, v any) error {
	p, ok := v.(Person)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), PersonDescriptor.Name())
	}
	ce, err := e.BeginStructure(PersonDescriptor)
	if err != nil {
		return err
	}
	if err := writeElements(ce, p); err != nil {
		ce.EndStructure(PersonDescriptor)
		return err
	}
	return ce.EndStructure(PersonDescriptor)
}

func writeElements(ce serial.CompositeEncoder, p Person) error {
	d := PersonDescriptor
	if err := ce.EncodeStringElement(d, ElemName, p.Name); err != nil {
		return err
	}
	if err := ce.EncodeInt32Element(d, ElemAge, p.Age); err != nil {
		return err
	}
	if err := ce.EncodeBoolElement(d, ElemActive, p.Active); err != nil {
		return err
	}
	if err := ce.EncodeFloat64Element(d, ElemScore, p.Score); err != nil {
		return err
	}
	if err := ce.EncodeCharElement(d, ElemInitial, p.Initial); err != nil {
		return err
	}
	if err := ce.EncodeValueElement(d, ElemTags, Tags, p.Tags); err != nil {
		return err
	}
	if err := ce.EncodeValueElement(d, ElemAttrs, Attrs, p.Attrs); err != nil {
		return err
	}
	if err := ce.EncodeValueElement(d, ElemRole, Role, p.Role); err != nil {
		return err
	}
	return ce.EncodeNullableElement(d, ElemNickname, codecs.String, p.Nickname)
}

func (c PersonCodec) Deserialize(dec serial.Decoder) (any, error) {
	return c.decodeInto(dec, Person{})
}

// Patch overwrites only the elements actually present in the new data.
func (c PersonCodec) Patch(dec serial.Decoder, old any) (any, error) {
	p, ok := old.(Person)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseUpdate, nil, fmt.Sprintf("%T", old), PersonDescriptor.Name())
	}
	return c.decodeInto(dec, p)
}

func (c PersonCodec) decodeInto(dec serial.Decoder, p Person) (any, error) {
	d := PersonDescriptor
	cd, err := dec.BeginStructure(d)
	if err != nil {
		return nil, err
	}
	p, err = readElements(dec, cd, p)
	if err != nil {
		cd.EndStructure(d)
		return nil, err
	}
	if err := cd.EndStructure(d); err != nil {
		return nil, err
	}
	return p, nil
}

func readElements(dec serial.Decoder, cd serial.CompositeDecoder, p Person) (Person, error) {
	d := PersonDescriptor
	for {
		idx, err := cd.DecodeElementIndex(d)
		if err != nil {
			return p, err
		}
		switch idx {
		case serial.IndexDone:
			return p, nil
		case serial.IndexUnknown:
			continue
		case serial.IndexReadAll:
			return readAllElements(dec, cd, p)
		}
		p, err = readElement(dec, cd, p, int(idx))
		if err != nil {
			return p, err
		}
	}
}

// readAllElements is the bulk path: every element in ascending order.
func readAllElements(dec serial.Decoder, cd serial.CompositeDecoder, p Person) (Person, error) {
	var err error
	for i := 0; i < PersonDescriptor.NumElements(); i++ {
		p, err = readElement(dec, cd, p, i)
		if err != nil {
			return p, err
		}
	}
	return p, nil
}

func readElement(dec serial.Decoder, cd serial.CompositeDecoder, p Person, idx int) (Person, error) {
	d := PersonDescriptor
	patch := dec.UpdateMode() == serial.UpdatePatch
	var err error
	switch idx {
	case ElemName:
		p.Name, err = cd.DecodeStringElement(d, idx)
	case ElemAge:
		p.Age, err = cd.DecodeInt32Element(d, idx)
	case ElemActive:
		p.Active, err = cd.DecodeBoolElement(d, idx)
	case ElemScore:
		p.Score, err = cd.DecodeFloat64Element(d, idx)
	case ElemInitial:
		p.Initial, err = cd.DecodeCharElement(d, idx)
	case ElemTags:
		var v any
		if patch {
			v, err = cd.UpdateValueElement(d, idx, Tags, p.Tags)
		} else {
			v, err = cd.DecodeValueElement(d, idx, Tags)
		}
		if err == nil {
			p.Tags, _ = v.([]any)
		}
	case ElemAttrs:
		var v any
		if patch {
			v, err = cd.UpdateValueElement(d, idx, Attrs, p.Attrs)
		} else {
			v, err = cd.DecodeValueElement(d, idx, Attrs)
		}
		if err == nil {
			p.Attrs, _ = v.(map[any]any)
		}
	case ElemRole:
		var v any
		v, err = cd.DecodeValueElement(d, idx, Role)
		if err == nil {
			p.Role, _ = v.(string)
		}
	case ElemNickname:
		if patch {
			p.Nickname, err = cd.UpdateNullableElement(d, idx, codecs.String, p.Nickname)
		} else {
			p.Nickname, err = cd.DecodeNullableElement(d, idx, codecs.String)
		}
	default:
		return p, errors.InvalidState(errors.PhaseDecode,
			fmt.Sprintf("element index %d out of range for %s", idx, d.Name()))
	}
	return p, err
}
