package tagwire_test

import (
	goerrors "errors"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/codecs"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/internal/testcodec"
	"github.com/wippyai/serial/schema"
	"github.com/wippyai/serial/tagwire"
)

func TestPersonRoundTrip(t *testing.T) {
	want := testcodec.Sample()

	data, err := tagwire.Marshal(testcodec.PersonCodec{}, want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := tagwire.Unmarshal(testcodec.PersonCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestScalarRoundTrips(t *testing.T) {
	tests := []struct {
		name  string
		codec serial.Codec
		value any
	}{
		{"bool", codecs.Bool, true},
		{"negative int64", codecs.Int64, int64(-1 << 40)},
		{"int8", codecs.Int8, int8(-128)},
		{"float32", codecs.Float32, float32(1.5)},
		{"float64", codecs.Float64, -2.25},
		{"char", codecs.Char, 'é'},
		{"string", codecs.String, "hello"},
		{"unit", codecs.Unit, struct{}{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tagwire.Marshal(tt.codec, tt.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			got, err := tagwire.Unmarshal(tt.codec, data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("round trip = %v, want %v", got, tt.value)
			}
		})
	}
}

// Enums travel as bare varint ordinals.
func TestEnumOrdinalOnWire(t *testing.T) {
	data, err := tagwire.Marshal(testcodec.Role, "viewer")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	v, n := protowire.ConsumeVarint(data)
	if n != len(data) || v != 2 {
		t.Errorf("wire = %v, want single varint 2", data)
	}
	got, err := tagwire.Unmarshal(testcodec.Role, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != "viewer" {
		t.Errorf("got %v, want viewer", got)
	}
}

// Null elements never reach the wire; their absence is the null marker.
func TestNullIsAbsence(t *testing.T) {
	p := testcodec.Sample()
	full, err := tagwire.Marshal(testcodec.PersonCodec{}, p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	p.Nickname = nil
	bare, err := tagwire.Marshal(testcodec.PersonCodec{}, p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(bare) >= len(full) {
		t.Errorf("null element still occupies wire bytes: %d >= %d", len(bare), len(full))
	}
	got, err := tagwire.Unmarshal(testcodec.PersonCodec{}, bare)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}

// Unknown tags are skipped, so a reader built against an older descriptor
// still accepts documents written with extra fields.
func TestUnknownTagsSkipped(t *testing.T) {
	data, err := tagwire.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data = protowire.AppendTag(data, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	data = protowire.AppendTag(data, 100, protowire.BytesType)
	data = protowire.AppendBytes(data, []byte("future payload"))

	got, err := tagwire.Unmarshal(testcodec.PersonCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, testcodec.Sample()) {
		t.Errorf("decoded = %+v, want the known fields only", got)
	}
}

func TestUpdateWithSparseDocument(t *testing.T) {
	old := testcodec.Sample()

	// A document holding only the age field: tag 2 (index+1), zigzag 37.
	var data []byte
	data = protowire.AppendTag(data, protowire.Number(testcodec.ElemAge+1), protowire.VarintType)
	data = protowire.AppendVarint(data, protowire.EncodeZigZag(37))

	got, err := tagwire.Update(testcodec.PersonCodec{}, data, old)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	p := got.(testcodec.Person)
	if p.Age != 37 {
		t.Errorf("Age = %d, want 37", p.Age)
	}
	if p.Name != old.Name || p.Nickname != old.Nickname {
		t.Errorf("untouched elements changed: %+v", p)
	}
}

func TestUpdateBannedByDefault(t *testing.T) {
	data, err := tagwire.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	_, err = tagwire.Options{}.Update(testcodec.PersonCodec{}, data, testcodec.Sample())
	var serr *errors.Error
	if !goerrors.As(err, &serr) || serr.Kind != errors.KindUnsupportedUpdate {
		t.Fatalf("got %v, want unsupported update", err)
	}
}

func TestMalformedInput(t *testing.T) {
	data, err := tagwire.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, tt := range []struct {
		name string
		data []byte
	}{
		{"truncated frame", data[:len(data)-3]},
		{"dangling tag", protowire.AppendTag(nil, 1, protowire.BytesType)},
		{"overlong varint", []byte{0x08, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tagwire.Unmarshal(testcodec.PersonCodec{}, tt.data); err == nil {
				t.Error("Unmarshal succeeded")
			}
		})
	}
}

// pair carries explicit WireTag annotations, leaving a gap between its
// field numbers the way evolving schemas do.
type pair struct {
	ID    int64
	Label string
}

var pairDescriptor = schema.NewBuilder("test.Pair", schema.KindStruct).
	AddElement("id", false).
	PushAnnotation(schema.WireTag(10)).
	AddElement("label", false).
	PushAnnotation(schema.WireTag(20)).
	PushDescriptor(codecs.Int64.Descriptor()).
	PushDescriptor(codecs.String.Descriptor()).
	MustBuild()

type pairCodec struct{}

var _ serial.Codec = pairCodec{}

func (pairCodec) Descriptor() *schema.Descriptor { return pairDescriptor }

func (pairCodec) Serialize(e serial.Encoder, v any) error {
	p := v.(pair)
	ce, err := e.BeginStructure(pairDescriptor)
	if err != nil {
		return err
	}
	if err := ce.EncodeInt64Element(pairDescriptor, 0, p.ID); err != nil {
		ce.EndStructure(pairDescriptor)
		return err
	}
	if err := ce.EncodeStringElement(pairDescriptor, 1, p.Label); err != nil {
		ce.EndStructure(pairDescriptor)
		return err
	}
	return ce.EndStructure(pairDescriptor)
}

func (pairCodec) Deserialize(d serial.Decoder) (any, error) {
	cd, err := d.BeginStructure(pairDescriptor)
	if err != nil {
		return nil, err
	}
	var p pair
	for {
		idx, err := cd.DecodeElementIndex(pairDescriptor)
		if err != nil {
			cd.EndStructure(pairDescriptor)
			return nil, err
		}
		if idx == serial.IndexDone {
			break
		}
		switch idx {
		case 0:
			p.ID, err = cd.DecodeInt64Element(pairDescriptor, 0)
		case 1:
			p.Label, err = cd.DecodeStringElement(pairDescriptor, 1)
		default:
			continue
		}
		if err != nil {
			cd.EndStructure(pairDescriptor)
			return nil, err
		}
	}
	if err := cd.EndStructure(pairDescriptor); err != nil {
		return nil, err
	}
	return p, nil
}

func TestExplicitWireTags(t *testing.T) {
	want := pair{ID: 42, Label: "answer"}
	data, err := tagwire.Marshal(pairCodec{}, want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var numbers []protowire.Number
	rest := data
	for len(rest) > 0 {
		num, typ, n := protowire.ConsumeTag(rest)
		if n < 0 {
			t.Fatalf("ConsumeTag: %v", protowire.ParseError(n))
		}
		rest = rest[n:]
		numbers = append(numbers, num)
		skip := protowire.ConsumeFieldValue(num, typ, rest)
		if skip < 0 {
			t.Fatalf("ConsumeFieldValue: %v", protowire.ParseError(skip))
		}
		rest = rest[skip:]
	}
	if !reflect.DeepEqual(numbers, []protowire.Number{10, 20}) {
		t.Errorf("field numbers = %v, want [10 20] from the annotations", numbers)
	}

	got, err := tagwire.Unmarshal(pairCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}
