package tagwire

import (
	"github.com/wippyai/serial"
)

// Options configures tagwire traversals. The zero value uses the empty
// codec context and the banned update mode.
type Options struct {
	// Context resolves nested codecs for strategies that look them up.
	// Nil means serial.EmptyContext.
	Context serial.Context

	// UpdateMode is the merge policy for Update calls.
	UpdateMode serial.UpdateMode
}

func (o Options) context() serial.Context {
	if o.Context == nil {
		return serial.EmptyContext
	}
	return o.Context
}

// Marshal serializes v through s into tag-keyed binary form.
func (o Options) Marshal(s serial.SerializeStrategy, v any) ([]byte, error) {
	e := &encoder{ctx: o.context()}
	if err := serial.EncodeValue(e, s, v); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Unmarshal deserializes a value from tag-keyed binary form through s.
func (o Options) Unmarshal(s serial.DeserializeStrategy, data []byte) (any, error) {
	d := &decoder{ctx: o.context(), mode: o.UpdateMode, buf: data}
	return serial.DecodeValue(d, s)
}

// Update merges tag-keyed binary data into old through s, honoring
// o.UpdateMode.
func (o Options) Update(s serial.DeserializeStrategy, data []byte, old any) (any, error) {
	d := &decoder{ctx: o.context(), mode: o.UpdateMode, buf: data}
	return serial.UpdateValue(d, s, old)
}

// Marshal serializes v through s with default options.
func Marshal(s serial.SerializeStrategy, v any) ([]byte, error) {
	return Options{}.Marshal(s, v)
}

// Unmarshal deserializes a value from data through s with default options.
func Unmarshal(s serial.DeserializeStrategy, data []byte) (any, error) {
	return Options{}.Unmarshal(s, data)
}

// Update patches old with the fields present in data through s. It is
// shorthand for Options{UpdateMode: serial.UpdatePatch}.Update.
func Update(s serial.DeserializeStrategy, data []byte, old any) (any, error) {
	return Options{UpdateMode: serial.UpdatePatch}.Update(s, data, old)
}
