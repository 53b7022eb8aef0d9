package codecs

import (
	"fmt"

	"github.com/wippyai/serial"
	"github.com/wippyai/serial/errors"
	"github.com/wippyai/serial/schema"
)

// List returns a codec for []any slices whose items are handled by elem.
// Serialization drives the collection protocol with a pre-announced size;
// deserialization handles both the streaming index path and the bulk
// read-all path, pre-allocating from the collection size when the backend
// provides one.
//
// In patch mode decoded items are appended to the old slice.
func List(elem serial.Codec) *ListCodec {
	desc := schema.NewBuilder("serial.List<"+elem.Descriptor().Name()+">", schema.KindList).
		AddElement("element", false).
		PushDescriptor(elem.Descriptor()).
		MustBuild()
	return &ListCodec{desc: desc, elem: elem}
}

// ListCodec is the strategy built by List.
type ListCodec struct {
	desc *schema.Descriptor
	elem serial.Codec
}

var (
	_ serial.Codec   = (*ListCodec)(nil)
	_ serial.Patcher = (*ListCodec)(nil)
)

func (c *ListCodec) Descriptor() *schema.Descriptor { return c.desc }

func (c *ListCodec) Serialize(e serial.Encoder, v any) error {
	items, ok := v.([]any)
	if !ok {
		return mismatch(errors.PhaseEncode, v, c.desc.Name())
	}
	ce, err := serial.BeginCollection(e, c.desc, len(items), c.elem)
	if err != nil {
		return err
	}
	for i, item := range items {
		if err := ce.EncodeValueElement(c.desc, i, c.elem, item); err != nil {
			ce.EndStructure(c.desc)
			return err
		}
	}
	return ce.EndStructure(c.desc)
}

func (c *ListCodec) Deserialize(d serial.Decoder) (any, error) {
	return c.decodeInto(d, nil)
}

// Patch appends freshly decoded items to the old slice.
func (c *ListCodec) Patch(d serial.Decoder, old any) (any, error) {
	items, ok := old.([]any)
	if !ok && old != nil {
		return nil, mismatch(errors.PhaseUpdate, old, c.desc.Name())
	}
	return c.decodeInto(d, items)
}

func (c *ListCodec) decodeInto(d serial.Decoder, items []any) (any, error) {
	cd, err := d.BeginStructure(c.desc, c.elem)
	if err != nil {
		return nil, err
	}
	items, err = c.readElements(cd, items)
	if err != nil {
		cd.EndStructure(c.desc)
		return nil, err
	}
	if err := cd.EndStructure(c.desc); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *ListCodec) readElements(cd serial.CompositeDecoder, items []any) ([]any, error) {
	size, err := cd.DecodeCollectionSize(c.desc)
	if err != nil {
		return nil, err
	}
	if items == nil {
		if size > 0 {
			items = make([]any, 0, size)
		} else {
			items = []any{}
		}
	}
	for {
		idx, err := cd.DecodeElementIndex(c.desc)
		if err != nil {
			return nil, err
		}
		switch {
		case idx == serial.IndexDone:
			return items, nil
		case idx == serial.IndexReadAll:
			return c.readAll(cd, items, size)
		case idx == serial.IndexUnknown:
			continue
		case idx.Valid():
			item, err := cd.DecodeValueElement(c.desc, int(idx), c.elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			return nil, errors.InvalidState(errors.PhaseDecode,
				fmt.Sprintf("unexpected element index %d for %s", idx, c.desc.Name()))
		}
	}
}

// readAll is the bulk path: the backend holds every item already and has
// guaranteed a true collection size.
func (c *ListCodec) readAll(cd serial.CompositeDecoder, items []any, size int) ([]any, error) {
	if size < 0 {
		return nil, errors.InvalidState(errors.PhaseDecode,
			"bulk read of "+c.desc.Name()+" without a collection size")
	}
	for i := 0; i < size; i++ {
		item, err := cd.DecodeValueElement(c.desc, i, c.elem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Map returns a codec for map[any]any values. Entries travel as alternating
// key/value elements: entry n occupies indices 2n (key) and 2n+1 (value).
// The pre-announced collection size counts entries, not elements.
//
// In patch mode decoded entries are merged over the old map, overwriting
// colliding keys.
func Map(key, value serial.Codec) *MapCodec {
	desc := schema.NewBuilder("serial.Map<"+key.Descriptor().Name()+","+value.Descriptor().Name()+">", schema.KindMap).
		AddElement("key", false).
		AddElement("value", false).
		PushDescriptor(key.Descriptor()).
		PushDescriptor(value.Descriptor()).
		MustBuild()
	return &MapCodec{desc: desc, key: key, value: value}
}

// MapCodec is the strategy built by Map.
type MapCodec struct {
	desc  *schema.Descriptor
	key   serial.Codec
	value serial.Codec
}

var (
	_ serial.Codec   = (*MapCodec)(nil)
	_ serial.Patcher = (*MapCodec)(nil)
)

func (c *MapCodec) Descriptor() *schema.Descriptor { return c.desc }

func (c *MapCodec) Serialize(e serial.Encoder, v any) error {
	m, ok := v.(map[any]any)
	if !ok {
		return mismatch(errors.PhaseEncode, v, c.desc.Name())
	}
	ce, err := serial.BeginCollection(e, c.desc, len(m), c.key, c.value)
	if err != nil {
		return err
	}
	i := 0
	for k, val := range m {
		if err := ce.EncodeValueElement(c.desc, 2*i, c.key, k); err != nil {
			ce.EndStructure(c.desc)
			return err
		}
		if err := ce.EncodeValueElement(c.desc, 2*i+1, c.value, val); err != nil {
			ce.EndStructure(c.desc)
			return err
		}
		i++
	}
	return ce.EndStructure(c.desc)
}

func (c *MapCodec) Deserialize(d serial.Decoder) (any, error) {
	return c.decodeInto(d, nil)
}

// Patch merges freshly decoded entries over the old map.
func (c *MapCodec) Patch(d serial.Decoder, old any) (any, error) {
	m, ok := old.(map[any]any)
	if !ok && old != nil {
		return nil, mismatch(errors.PhaseUpdate, old, c.desc.Name())
	}
	return c.decodeInto(d, m)
}

func (c *MapCodec) decodeInto(d serial.Decoder, m map[any]any) (any, error) {
	cd, err := d.BeginStructure(c.desc, c.key, c.value)
	if err != nil {
		return nil, err
	}
	m, err = c.readEntries(cd, m)
	if err != nil {
		cd.EndStructure(c.desc)
		return nil, err
	}
	if err := cd.EndStructure(c.desc); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *MapCodec) readEntries(cd serial.CompositeDecoder, m map[any]any) (map[any]any, error) {
	size, err := cd.DecodeCollectionSize(c.desc)
	if err != nil {
		return nil, err
	}
	if m == nil {
		if size > 0 {
			m = make(map[any]any, size)
		} else {
			m = make(map[any]any)
		}
	}
	for {
		idx, err := cd.DecodeElementIndex(c.desc)
		if err != nil {
			return nil, err
		}
		switch {
		case idx == serial.IndexDone:
			return m, nil
		case idx == serial.IndexReadAll:
			return c.readAllEntries(cd, m, size)
		case idx == serial.IndexUnknown:
			continue
		case idx.Valid() && int(idx)%2 == 0:
			k, err := cd.DecodeValueElement(c.desc, int(idx), c.key)
			if err != nil {
				return nil, err
			}
			// Key and value arrive as consecutive indices.
			vidx, err := cd.DecodeElementIndex(c.desc)
			if err != nil {
				return nil, err
			}
			if vidx != idx+1 {
				return nil, errors.InvalidState(errors.PhaseDecode,
					fmt.Sprintf("map key at index %d not followed by its value (got %s)", idx, vidx))
			}
			val, err := cd.DecodeValueElement(c.desc, int(vidx), c.value)
			if err != nil {
				return nil, err
			}
			m[k] = val
		default:
			return nil, errors.InvalidState(errors.PhaseDecode,
				fmt.Sprintf("unexpected element index %d for %s", idx, c.desc.Name()))
		}
	}
}

func (c *MapCodec) readAllEntries(cd serial.CompositeDecoder, m map[any]any, size int) (map[any]any, error) {
	if size < 0 {
		return nil, errors.InvalidState(errors.PhaseDecode,
			"bulk read of "+c.desc.Name()+" without a collection size")
	}
	for i := 0; i < size; i++ {
		k, err := cd.DecodeValueElement(c.desc, 2*i, c.key)
		if err != nil {
			return nil, err
		}
		val, err := cd.DecodeValueElement(c.desc, 2*i+1, c.value)
		if err != nil {
			return nil, err
		}
		m[k] = val
	}
	return m, nil
}
