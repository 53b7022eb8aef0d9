package jsonform_test

import (
	"bytes"
	goerrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/wippyai/serial/codecs"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/internal/testcodec"
	"github.com/wippyai/serial/jsonform"
)

func TestPersonRoundTrip(t *testing.T) {
	want := testcodec.Sample()

	data, err := jsonform.Marshal(testcodec.PersonCodec{}, want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := jsonform.Unmarshal(testcodec.PersonCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v\njson: %s", got, want, data)
	}
}

// The document layout is the usual JSON one: field order must not matter,
// and fields the descriptor does not declare are skipped.
func TestFieldOrderAndUnknownFields(t *testing.T) {
	doc := `{
		"role": "viewer",
		"x-trace-id": "abc123",
		"nickname": null,
		"attrs": {"rank": 1},
		"score": 10.5,
		"initial": "g",
		"active": false,
		"extra": {"nested": [1, 2, 3]},
		"tags": ["x"],
		"age": 41,
		"name": "grace"
	}`
	got, err := jsonform.Unmarshal(testcodec.PersonCodec{}, []byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := testcodec.Person{
		Name:    "grace",
		Age:     41,
		Active:  false,
		Score:   10.5,
		Initial: 'g',
		Tags:    []any{"x"},
		Attrs:   map[any]any{"rank": int64(1)},
		Role:    "viewer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decoded = %+v, want %+v", got, want)
	}
}

func TestExplicitNull(t *testing.T) {
	p := testcodec.Sample()
	p.Nickname = nil

	data, err := jsonform.Marshal(testcodec.PersonCodec{}, p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"nickname":null`)) {
		t.Errorf("null element not written explicitly: %s", data)
	}
	got, err := jsonform.Unmarshal(testcodec.PersonCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip = %+v, want %+v", got, p)
	}
}

func TestEnumAsNameOrOrdinal(t *testing.T) {
	role := testcodec.Role

	data, err := jsonform.Marshal(role, "editor")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"editor"` {
		t.Errorf("enum json = %s, want the case name", data)
	}
	for _, doc := range []string{`"editor"`, `1`} {
		got, err := jsonform.Unmarshal(role, []byte(doc))
		if err != nil {
			t.Fatalf("Unmarshal(%s): %v", doc, err)
		}
		if got != "editor" {
			t.Errorf("Unmarshal(%s) = %v, want editor", doc, got)
		}
	}
	if _, err := jsonform.Unmarshal(role, []byte(`"root"`)); err == nil {
		t.Error("unknown case accepted")
	}
}

func TestMapKeysQuoted(t *testing.T) {
	scores := codecs.Map(codecs.Int64, codecs.String)
	value := map[any]any{int64(1): "one", int64(2): "two"}

	data, err := jsonform.Marshal(scores, value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"1":"one"`)) && !bytes.Contains(data, []byte(`"2":"two"`)) {
		t.Errorf("integer keys not rendered as quoted object keys: %s", data)
	}
	got, err := jsonform.Unmarshal(scores, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("round trip = %v, want %v", got, value)
	}
}

func TestUnitIsEmptyObject(t *testing.T) {
	data, err := jsonform.Marshal(codecs.Unit, struct{}{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("unit json = %s, want {}", data)
	}
	if _, err := jsonform.Unmarshal(codecs.Unit, data); err != nil {
		t.Errorf("Unmarshal: %v", err)
	}
}

func TestUpdateWithSparseDocument(t *testing.T) {
	old := testcodec.Sample()

	got, err := jsonform.Update(testcodec.PersonCodec{}, []byte(`{"age": 37, "nickname": null}`), old)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	p := got.(testcodec.Person)
	if p.Age != 37 {
		t.Errorf("Age = %d, want 37", p.Age)
	}
	if p.Nickname != "countess" {
		t.Errorf("Nickname = %v, want old value kept after explicit null", p.Nickname)
	}
	if p.Name != old.Name {
		t.Errorf("Name = %q, want untouched", p.Name)
	}
}

func TestUpdateBannedByDefault(t *testing.T) {
	_, err := jsonform.Options{}.Update(testcodec.PersonCodec{}, []byte(`{"age": 1}`), testcodec.Sample())
	var serr *errors.Error
	if !goerrors.As(err, &serr) || serr.Kind != errors.KindUnsupportedUpdate {
		t.Fatalf("got %v, want unsupported update", err)
	}
}

func TestMarshalIndent(t *testing.T) {
	data, err := jsonform.MarshalIndent(testcodec.PersonCodec{}, testcodec.Sample(), 2)
	if err != nil {
		t.Fatalf("MarshalIndent: %v", err)
	}
	if !bytes.Contains(data, []byte("\n  \"")) {
		t.Errorf("output not indented: %s", data)
	}
	got, err := jsonform.Unmarshal(testcodec.PersonCodec{}, data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, testcodec.Sample()) {
		t.Errorf("indented round trip = %+v", got)
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := jsonform.NewEncoder(&buf)
	first := testcodec.Sample()
	second := testcodec.Sample()
	second.Name = "grace"
	if err := enc.Encode(testcodec.PersonCodec{}, first); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Encode(testcodec.PersonCodec{}, second); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dec := jsonform.NewDecoder(&buf)
	for i, want := range []testcodec.Person{first, second} {
		got, err := dec.Decode(testcodec.PersonCodec{})
		if err != nil {
			t.Fatalf("Decode #%d: %v", i, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Decode #%d = %+v, want %+v", i, got, want)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	for _, doc := range []string{`[1,`, `{"name": }`, `{"age": "x"}`, `42`} {
		if _, err := jsonform.Unmarshal(testcodec.PersonCodec{}, []byte(doc)); err == nil {
			t.Errorf("Unmarshal(%q) succeeded", doc)
		}
	}
}

// The output must be plain JSON any other decoder can read.
func TestInteropWithSonic(t *testing.T) {
	data, err := jsonform.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc map[string]any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		t.Fatalf("sonic.Unmarshal: %v", err)
	}
	if doc["name"] != "ada" {
		t.Errorf(`doc["name"] = %v, want ada`, doc["name"])
	}
	if doc["age"] != float64(36) {
		t.Errorf(`doc["age"] = %v, want 36`, doc["age"])
	}
	if tags, ok := doc["tags"].([]any); !ok || len(tags) != 2 {
		t.Errorf(`doc["tags"] = %v, want two entries`, doc["tags"])
	}

	foreign, err := sonic.Marshal(map[string]any{
		"name": "grace", "age": 41, "active": true, "score": 1.5,
		"initial": "g", "tags": []string{}, "attrs": map[string]int{},
		"role": "admin", "nickname": nil,
	})
	if err != nil {
		t.Fatalf("sonic.Marshal: %v", err)
	}
	got, err := jsonform.Unmarshal(testcodec.PersonCodec{}, foreign)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.(testcodec.Person).Name != "grace" {
		t.Errorf("Name = %q, want grace", got.(testcodec.Person).Name)
	}
}

func FuzzUnmarshal(f *testing.F) {
	seed, err := jsonform.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		f.Fatalf("Marshal: %v", err)
	}
	f.Add(seed)
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"name": "x", "tags": [1, 2]}`))
	f.Add([]byte(`{"attrs": {"a": "not-an-int"}}`))
	f.Add([]byte(`null`))
	f.Add([]byte(strings.Repeat("[", 64)))
	f.Fuzz(func(t *testing.T, data []byte) {
		// Arbitrary bytes may fail, but must never panic.
		v, err := jsonform.Unmarshal(testcodec.PersonCodec{}, data)
		if err == nil {
			if _, ok := v.(testcodec.Person); !ok {
				t.Errorf("decoded %T without error", v)
			}
		}
	})
}

func BenchmarkMarshal(b *testing.B) {
	p := testcodec.Sample()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := jsonform.Marshal(testcodec.PersonCodec{}, p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	data, err := jsonform.Marshal(testcodec.PersonCodec{}, testcodec.Sample())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := jsonform.Unmarshal(testcodec.PersonCodec{}, data); err != nil {
			b.Fatal(err)
		}
	}
}
