package main

import (
	"fmt"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/codecs"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// entry is one inspectable type: a codec plus a sample value to render.
type entry struct {
	name   string
	codec  serial.Codec
	sample any
}

// registry lists the demo types in display order.
func registry() []entry {
	return []entry{
		{"role", demoRole, "editor"},
		{"address", addressCodec{}, sampleAddress()},
		{"profile", profileCodec{}, sampleProfile()},
		{"tags", demoTags, []any{"go", "serialization"}},
		{"scores", demoScores, map[any]any{"alpha": int64(10), "beta": int64(7)}},
	}
}

func lookup(name string) (entry, error) {
	for _, e := range registry() {
		if e.name == name {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("unknown type %q (try -list)", name)
}

var (
	demoRole   = codecs.Enum("demo.Role", "admin", "editor", "viewer")
	demoTags   = codecs.List(codecs.String)
	demoScores = codecs.Map(codecs.String, codecs.Int64)
)

// Address is a small nested structure.
type Address struct {
	Street string
	City   string
	Zip    int32
}

var addressDescriptor = schema.NewBuilder("demo.Address", schema.KindStruct).
	AddElement("street", false).
	AddElement("city", false).
	AddElement("zip", false).
	PushDescriptor(codecs.String.Descriptor()).
	PushDescriptor(codecs.String.Descriptor()).
	PushDescriptor(codecs.Int32.Descriptor()).
	MustBuild()

func sampleAddress() Address {
	return Address{Street: "12 Analytical Row", City: "London", Zip: 1843}
}

type addressCodec struct{}

var _ serial.Codec = addressCodec{}

func (addressCodec) Descriptor() *schema.Descriptor { return addressDescriptor }

func (addressCodec) Serialize(e serial.Encoder, v any) error {
	a, ok := v.(Address)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), addressDescriptor.Name())
	}
	d := addressDescriptor
	ce, err := e.BeginStructure(d)
	if err != nil {
		return err
	}
	if err := ce.EncodeStringElement(d, 0, a.Street); err != nil {
		ce.EndStructure(d)
		return err
	}
	if err := ce.EncodeStringElement(d, 1, a.City); err != nil {
		ce.EndStructure(d)
		return err
	}
	if err := ce.EncodeInt32Element(d, 2, a.Zip); err != nil {
		ce.EndStructure(d)
		return err
	}
	return ce.EndStructure(d)
}

func (c addressCodec) Deserialize(dec serial.Decoder) (any, error) {
	return c.decodeInto(dec, Address{})
}

func (c addressCodec) Patch(dec serial.Decoder, old any) (any, error) {
	a, ok := old.(Address)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseUpdate, nil, fmt.Sprintf("%T", old), addressDescriptor.Name())
	}
	return c.decodeInto(dec, a)
}

var _ serial.Patcher = addressCodec{}

func (addressCodec) decodeInto(dec serial.Decoder, a Address) (any, error) {
	d := addressDescriptor
	cd, err := dec.BeginStructure(d)
	if err != nil {
		return nil, err
	}
	read := func(idx int) error {
		var err error
		switch idx {
		case 0:
			a.Street, err = cd.DecodeStringElement(d, idx)
		case 1:
			a.City, err = cd.DecodeStringElement(d, idx)
		case 2:
			a.Zip, err = cd.DecodeInt32Element(d, idx)
		}
		return err
	}
	for {
		idx, err := cd.DecodeElementIndex(d)
		if err != nil {
			cd.EndStructure(d)
			return nil, err
		}
		if idx == serial.IndexDone {
			break
		}
		if idx == serial.IndexUnknown {
			continue
		}
		if idx == serial.IndexReadAll {
			for i := 0; i < d.NumElements(); i++ {
				if err := read(i); err != nil {
					cd.EndStructure(d)
					return nil, err
				}
			}
			break
		}
		if err := read(int(idx)); err != nil {
			cd.EndStructure(d)
			return nil, err
		}
	}
	if err := cd.EndStructure(d); err != nil {
		return nil, err
	}
	return a, nil
}

// Profile exercises the full element surface: primitives, a nested struct,
// a list, a map, an enum, and a nullable element.
type Profile struct {
	Name    string
	Age     int32
	Email   any // nil or string
	Role    string
	Address Address
	Tags    []any
	Scores  map[any]any
}

const (
	profName = iota
	profAge
	profEmail
	profRole
	profAddress
	profTags
	profScores
)

var profileDescriptor = schema.NewBuilder("demo.Profile", schema.KindStruct).
	AddElement("name", false).
	AddElement("age", false).
	AddElement("email", true).
	AddElement("role", false).
	AddElement("address", false).
	AddElement("tags", false).
	AddElement("scores", false).
	PushDescriptor(codecs.String.Descriptor()).
	PushDescriptor(codecs.Int32.Descriptor()).
	PushDescriptor(codecs.String.Descriptor()).
	PushDescriptor(demoRole.Descriptor()).
	PushDescriptor(addressDescriptor).
	PushDescriptor(demoTags.Descriptor()).
	PushDescriptor(demoScores.Descriptor()).
	MustBuild()

func sampleProfile() Profile {
	return Profile{
		Name:    "ada",
		Age:     36,
		Email:   "ada@example.net",
		Role:    "admin",
		Address: sampleAddress(),
		Tags:    []any{"go", "serialization"},
		Scores:  map[any]any{"alpha": int64(10), "beta": int64(7)},
	}
}

type profileCodec struct{}

var (
	_ serial.Codec   = profileCodec{}
	_ serial.Patcher = profileCodec{}
)

func (profileCodec) Descriptor() *schema.Descriptor { return profileDescriptor }

func (profileCodec) Serialize(e serial.Encoder, v any) error {
	p, ok := v.(Profile)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), profileDescriptor.Name())
	}
	d := profileDescriptor
	ce, err := e.BeginStructure(d)
	if err != nil {
		return err
	}
	write := func() error {
		if err := ce.EncodeStringElement(d, profName, p.Name); err != nil {
			return err
		}
		if err := ce.EncodeInt32Element(d, profAge, p.Age); err != nil {
			return err
		}
		if err := ce.EncodeNullableElement(d, profEmail, codecs.String, p.Email); err != nil {
			return err
		}
		if err := ce.EncodeValueElement(d, profRole, demoRole, p.Role); err != nil {
			return err
		}
		if err := ce.EncodeValueElement(d, profAddress, addressCodec{}, p.Address); err != nil {
			return err
		}
		if err := ce.EncodeValueElement(d, profTags, demoTags, p.Tags); err != nil {
			return err
		}
		return ce.EncodeValueElement(d, profScores, demoScores, p.Scores)
	}
	if err := write(); err != nil {
		ce.EndStructure(d)
		return err
	}
	return ce.EndStructure(d)
}

func (c profileCodec) Deserialize(dec serial.Decoder) (any, error) {
	return c.decodeInto(dec, Profile{})
}

func (c profileCodec) Patch(dec serial.Decoder, old any) (any, error) {
	p, ok := old.(Profile)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseUpdate, nil, fmt.Sprintf("%T", old), profileDescriptor.Name())
	}
	return c.decodeInto(dec, p)
}

func (profileCodec) decodeInto(dec serial.Decoder, p Profile) (any, error) {
	d := profileDescriptor
	patch := dec.UpdateMode() == serial.UpdatePatch
	cd, err := dec.BeginStructure(d)
	if err != nil {
		return nil, err
	}
	read := func(idx int) error {
		var err error
		switch idx {
		case profName:
			p.Name, err = cd.DecodeStringElement(d, idx)
		case profAge:
			p.Age, err = cd.DecodeInt32Element(d, idx)
		case profEmail:
			if patch {
				p.Email, err = cd.UpdateNullableElement(d, idx, codecs.String, p.Email)
			} else {
				p.Email, err = cd.DecodeNullableElement(d, idx, codecs.String)
			}
		case profRole:
			var v any
			v, err = cd.DecodeValueElement(d, idx, demoRole)
			if err == nil {
				p.Role, _ = v.(string)
			}
		case profAddress:
			var v any
			if patch {
				v, err = cd.UpdateValueElement(d, idx, addressCodec{}, p.Address)
			} else {
				v, err = cd.DecodeValueElement(d, idx, addressCodec{})
			}
			if err == nil {
				p.Address, _ = v.(Address)
			}
		case profTags:
			var v any
			if patch {
				v, err = cd.UpdateValueElement(d, idx, demoTags, p.Tags)
			} else {
				v, err = cd.DecodeValueElement(d, idx, demoTags)
			}
			if err == nil {
				p.Tags, _ = v.([]any)
			}
		case profScores:
			var v any
			if patch {
				v, err = cd.UpdateValueElement(d, idx, demoScores, p.Scores)
			} else {
				v, err = cd.DecodeValueElement(d, idx, demoScores)
			}
			if err == nil {
				p.Scores, _ = v.(map[any]any)
			}
		}
		return err
	}
	for {
		idx, err := cd.DecodeElementIndex(d)
		if err != nil {
			cd.EndStructure(d)
			return nil, err
		}
		if idx == serial.IndexDone {
			break
		}
		if idx == serial.IndexUnknown {
			continue
		}
		if idx == serial.IndexReadAll {
			for i := 0; i < d.NumElements(); i++ {
				if err := read(i); err != nil {
					cd.EndStructure(d)
					return nil, err
				}
			}
			break
		}
		if err := read(int(idx)); err != nil {
			cd.EndStructure(d)
			return nil, err
		}
	}
	if err := cd.EndStructure(d); err != nil {
		return nil, err
	}
	return p, nil
}
