package mapform

import (
	"github.com/wippyai/serial"
)

// Options configures a mapform traversal. The zero value uses the empty
// codec context and the banned update mode, which is the safe default for
// plain encode/decode.
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

// Encode serializes v through s into a plain Go tree.
func (o Options) Encode(s serial.SerializeStrategy, v any) (any, error) {
	e := &encoder{ctx: o.context()}
	if err := serial.EncodeValue(e, s, v); err != nil {
		return nil, err
	}
	return e.out, nil
}

// Decode deserializes a value from tree through s.
func (o Options) Decode(s serial.DeserializeStrategy, tree any) (any, error) {
	d := &decoder{ctx: o.context(), mode: o.UpdateMode, cur: tree}
	return serial.DecodeValue(d, s)
}

// Update merges tree into old through s, honoring o.UpdateMode.
func (o Options) Update(s serial.DeserializeStrategy, tree, old any) (any, error) {
	d := &decoder{ctx: o.context(), mode: o.UpdateMode, cur: tree}
	return serial.UpdateValue(d, s, old)
}

// Encode serializes v through s into a plain Go tree with default options.
func Encode(s serial.SerializeStrategy, v any) (any, error) {
	return Options{}.Encode(s, v)
}

// Decode deserializes a value from tree through s with default options.
func Decode(s serial.DeserializeStrategy, tree any) (any, error) {
	return Options{}.Decode(s, tree)
}

// Update patches old with the (possibly sparse) tree through s. It is
// shorthand for Options{UpdateMode: serial.UpdatePatch}.Update; strategies
// without patch support fail with an unsupported-update error.
func Update(s serial.DeserializeStrategy, tree, old any) (any, error) {
	return Options{UpdateMode: serial.UpdatePatch}.Update(s, tree, old)
}
