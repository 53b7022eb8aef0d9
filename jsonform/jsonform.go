package jsonform

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/serial"
)

// Options configures jsonform traversals. The zero value uses the empty
// codec context, compact output, and the banned update mode.
type Options struct {
	// Context resolves nested codecs for strategies that look them up.
	// Nil means serial.EmptyContext.
	Context serial.Context

	// UpdateMode is the merge policy for Update calls.
	UpdateMode serial.UpdateMode

	// Indent is the number of spaces per nesting level; zero emits
	// compact JSON.
	Indent int
}

func (o Options) context() serial.Context {
	if o.Context == nil {
		return serial.EmptyContext
	}
	return o.Context
}

func (o Options) config() jsoniter.API {
	if o.Indent > 0 {
		return jsoniter.Config{IndentionStep: o.Indent, EscapeHTML: true}.Froze()
	}
	return jsoniter.ConfigDefault
}

// Marshal serializes v through s into JSON text.
func (o Options) Marshal(s serial.SerializeStrategy, v any) ([]byte, error) {
	cfg := o.config()
	stream := cfg.BorrowStream(nil)
	defer cfg.ReturnStream(stream)
	e := &encoder{ctx: o.context(), cfg: cfg, stream: stream}
	if err := serial.EncodeValue(e, s, v); err != nil {
		return nil, err
	}
	if err := e.err(); err != nil {
		return nil, err
	}
	// The stream buffer is pooled; hand back a copy.
	buf := stream.Buffer()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Unmarshal deserializes a value from JSON text through s.
func (o Options) Unmarshal(s serial.DeserializeStrategy, data []byte) (any, error) {
	cfg := o.config()
	iter := cfg.BorrowIterator(data)
	defer cfg.ReturnIterator(iter)
	d := &decoder{ctx: o.context(), cfg: cfg, mode: o.UpdateMode, iter: iter}
	v, err := serial.DecodeValue(d, s)
	if err != nil {
		return nil, err
	}
	if err := d.err(); err != nil {
		return nil, err
	}
	return v, nil
}

// Update merges JSON text into old through s, honoring o.UpdateMode.
func (o Options) Update(s serial.DeserializeStrategy, data []byte, old any) (any, error) {
	cfg := o.config()
	iter := cfg.BorrowIterator(data)
	defer cfg.ReturnIterator(iter)
	d := &decoder{ctx: o.context(), cfg: cfg, mode: o.UpdateMode, iter: iter}
	v, err := serial.UpdateValue(d, s, old)
	if err != nil {
		return nil, err
	}
	if err := d.err(); err != nil {
		return nil, err
	}
	return v, nil
}

// Marshal serializes v through s into compact JSON with default options.
func Marshal(s serial.SerializeStrategy, v any) ([]byte, error) {
	return Options{}.Marshal(s, v)
}

// MarshalIndent is Marshal with indented output.
func MarshalIndent(s serial.SerializeStrategy, v any, indent int) ([]byte, error) {
	return Options{Indent: indent}.Marshal(s, v)
}

// Unmarshal deserializes a value from JSON text through s with default
// options.
func Unmarshal(s serial.DeserializeStrategy, data []byte) (any, error) {
	return Options{}.Unmarshal(s, data)
}

// Update patches old with a (possibly sparse) JSON document through s. It
// is shorthand for Options{UpdateMode: serial.UpdatePatch}.Update.
func Update(s serial.DeserializeStrategy, data []byte, old any) (any, error) {
	return Options{UpdateMode: serial.UpdatePatch}.Update(s, data, old)
}

// Encoder writes values as JSON documents onto one underlying writer.
type Encoder struct {
	opts   Options
	cfg    jsoniter.API
	stream *jsoniter.Stream
}

// NewEncoder returns an encoder writing to w with default options.
func NewEncoder(w io.Writer) *Encoder {
	return Options{}.NewEncoder(w)
}

// NewEncoder returns an encoder writing to w.
func (o Options) NewEncoder(w io.Writer) *Encoder {
	cfg := o.config()
	return &Encoder{opts: o, cfg: cfg, stream: jsoniter.NewStream(cfg, w, 512)}
}

// Encode serializes v through s and flushes it to the writer.
func (enc *Encoder) Encode(s serial.SerializeStrategy, v any) error {
	e := &encoder{ctx: enc.opts.context(), cfg: enc.cfg, stream: enc.stream}
	if err := serial.EncodeValue(e, s, v); err != nil {
		return err
	}
	enc.stream.WriteRaw("\n")
	enc.stream.Flush()
	return e.err()
}

// Decoder reads values from JSON documents off one underlying reader.
type Decoder struct {
	opts Options
	cfg  jsoniter.API
	iter *jsoniter.Iterator
}

// NewDecoder returns a decoder reading from r with default options.
func NewDecoder(r io.Reader) *Decoder {
	return Options{}.NewDecoder(r)
}

// NewDecoder returns a decoder reading from r.
func (o Options) NewDecoder(r io.Reader) *Decoder {
	cfg := o.config()
	return &Decoder{opts: o, cfg: cfg, iter: jsoniter.Parse(cfg, r, 512)}
}

// Decode deserializes the next value through s.
func (dec *Decoder) Decode(s serial.DeserializeStrategy) (any, error) {
	d := &decoder{ctx: dec.opts.context(), cfg: dec.cfg, mode: dec.opts.UpdateMode, iter: dec.iter}
	v, err := serial.DecodeValue(d, s)
	if err != nil {
		return nil, err
	}
	if err := d.err(); err != nil {
		return nil, err
	}
	return v, nil
}
