package schema

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/wippyai/serial/errors"
)

// UnknownIndex is returned by ElementIndex for names the descriptor does not
// declare. Its value matches the decoding protocol's unknown-field sentinel,
// so backends can forward lookup results directly to their callers.
const UnknownIndex = -3

// ElementProvider resolves the nested descriptor for the element at the
// given index. Providers run on first access instead of during construction,
// which lets self-referential type graphs terminate.
type ElementProvider func(index int) *Descriptor

type element struct {
	name        string
	optional    bool
	annotations []Annotation
}

type nestedSlot struct {
	once sync.Once
	desc *Descriptor
	err  error
}

// Descriptor describes the static shape of one type: its kind, its named
// elements, their optionality and annotations, and the descriptors of the
// element types themselves. A Descriptor is built once through a Builder,
// is immutable afterward, and may be shared across traversals; the lazy
// lookup caches are internally synchronized.
type Descriptor struct {
	name        string
	kind        Kind
	elements    []element
	annotations []Annotation
	provider    ElementProvider
	nested      []nestedSlot

	indexOnce sync.Once
	index     map[string]int

	hashOnce sync.Once
	hash     uint64
}

// Name returns the stable type identifier used in error messages and
// structural identity.
func (d *Descriptor) Name() string {
	return d.name
}

// Kind returns the shape category.
func (d *Descriptor) Kind() Kind {
	return d.kind
}

// NumElements returns the number of declared elements.
func (d *Descriptor) NumElements() int {
	return len(d.elements)
}

func (d *Descriptor) element(i int) *element {
	if i < 0 || i >= len(d.elements) {
		panic(fmt.Sprintf("schema: element index %d out of range for %s (%d elements)", i, d.name, len(d.elements)))
	}
	return &d.elements[i]
}

// ElementName returns the name of element i. It panics if i is out of
// range.
func (d *Descriptor) ElementName(i int) string {
	return d.element(i).name
}

// IsElementOptional reports whether decoded input may legitimately omit
// element i. It panics if i is out of range.
func (d *Descriptor) IsElementOptional(i int) bool {
	return d.element(i).optional
}

// ElementAnnotations returns the annotations attached to element i in push
// order. Callers must not mutate the returned slice. It panics if i is out
// of range.
func (d *Descriptor) ElementAnnotations(i int) []Annotation {
	return d.element(i).annotations
}

// Annotations returns the type-level annotations in push order. Callers
// must not mutate the returned slice.
func (d *Descriptor) Annotations() []Annotation {
	return d.annotations
}

// ElementDescriptor returns the descriptor of element i's type. Descriptors
// pushed during construction are returned directly; elements beyond the
// pushed range resolve through the element provider exactly once, then the
// result is cached. An element with neither fails with a missing-descriptor
// error, which signals a codec construction fault rather than bad input.
// It panics if i is out of range.
func (d *Descriptor) ElementDescriptor(i int) (*Descriptor, error) {
	d.element(i)
	slot := &d.nested[i]
	slot.once.Do(func() {
		if slot.desc != nil {
			return
		}
		if d.provider != nil {
			if nested := d.provider(i); nested != nil {
				slot.desc = nested
				return
			}
		}
		slot.err = errors.MissingDescriptor(d.name, i)
	})
	return slot.desc, slot.err
}

// ElementIndex returns the index of the named element, or UnknownIndex when
// the name is not declared. The name map is built once on first use; later
// lookups are O(1). Unknown names are a designed-in control path for
// forward-compatible field skipping, not an error.
func (d *Descriptor) ElementIndex(name string) int {
	d.indexOnce.Do(func() {
		d.index = make(map[string]int, len(d.elements))
		for i := range d.elements {
			d.index[d.elements[i].name] = i
		}
	})
	if i, ok := d.index[name]; ok {
		return i
	}
	return UnknownIndex
}

func (d *Descriptor) childIdentity(i int) (string, Kind, bool) {
	nested, err := d.ElementDescriptor(i)
	if err != nil {
		return "", 0, false
	}
	return nested.name, nested.kind, true
}

// Equal reports structural equality: same name, same kind, and the same
// nested descriptor sequence compared by element count and child identity
// (name and kind, one level deep, which keeps cyclic shapes terminating).
// Annotations and optionality flags are metadata, never identity.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if d.name != other.name || d.kind != other.kind || len(d.elements) != len(other.elements) {
		return false
	}
	for i := range d.elements {
		an, ak, aok := d.childIdentity(i)
		bn, bk, bok := other.childIdentity(i)
		if aok != bok || an != bn || ak != bk {
			return false
		}
	}
	return true
}

// Hash returns a structural hash consistent with Equal. It is computed once
// over the name, kind, and child names using FNV-1a, then cached.
func (d *Descriptor) Hash() uint64 {
	d.hashOnce.Do(func() {
		h := fnv.New64a()
		h.Write([]byte(d.name))
		h.Write([]byte{byte(d.kind), 0})
		for i := range d.elements {
			if name, _, ok := d.childIdentity(i); ok {
				h.Write([]byte(name))
			}
			h.Write([]byte{0})
		}
		d.hash = h.Sum64()
	})
	return d.hash
}

// String renders a debug form: name(kind){elem?: Child, ...}. Optional
// elements carry a trailing question mark.
func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.name)
	b.WriteByte('(')
	b.WriteString(d.kind.String())
	b.WriteByte(')')
	if len(d.elements) == 0 {
		return b.String()
	}
	b.WriteByte('{')
	for i := range d.elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.elements[i].name)
		if d.elements[i].optional {
			b.WriteByte('?')
		}
		if name, _, ok := d.childIdentity(i); ok {
			b.WriteString(": ")
			b.WriteString(name)
		}
	}
	b.WriteByte('}')
	return b.String()
}
