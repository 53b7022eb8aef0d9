package schema

import (
	"github.com/wippyai/serial/errors"
)

// Builder accumulates a structural description incrementally. It is the
// registration-time counterpart of Descriptor: generated or hand-written
// codec setup code calls it in a straight line, and any misuse is recorded
// and surfaced once by Build instead of failing mid-chain.
type Builder struct {
	name        string
	kind        Kind
	elements    []element
	annotations []Annotation
	descriptors []*Descriptor
	provider    ElementProvider
	err         error
}

// NewBuilder starts a descriptor for the named type.
func NewBuilder(name string, kind Kind) *Builder {
	return &Builder{name: name, kind: kind}
}

// AddElement appends one element and assigns it the next index. Element
// names must be unique within a descriptor; optional elements may
// legitimately be absent from decoded input.
func (b *Builder) AddElement(name string, optional bool) *Builder {
	if b.err != nil {
		return b
	}
	for i := range b.elements {
		if b.elements[i].name == name {
			b.err = errors.DuplicateElement(b.name, name)
			return b
		}
	}
	b.elements = append(b.elements, element{name: name, optional: optional})
	return b
}

// PushAnnotation attaches metadata to the most recently added element.
// Calling it before any AddElement is a build error.
func (b *Builder) PushAnnotation(a Annotation) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.elements) == 0 {
		b.err = errors.NoElement("push annotation")
		return b
	}
	last := &b.elements[len(b.elements)-1]
	last.annotations = append(last.annotations, a)
	return b
}

// PushTypeAnnotation attaches metadata to the whole type.
func (b *Builder) PushTypeAnnotation(a Annotation) *Builder {
	if b.err != nil {
		return b
	}
	b.annotations = append(b.annotations, a)
	return b
}

// PushDescriptor registers the nested descriptor for the next element in
// addition order: the first push describes element 0, the second element 1,
// and so on. Elements beyond the pushed range resolve through the element
// provider instead. Pushing more descriptors than elements is a build error.
func (b *Builder) PushDescriptor(d *Descriptor) *Builder {
	if b.err != nil {
		return b
	}
	if len(b.descriptors) >= len(b.elements) {
		b.err = errors.New(errors.PhaseBuild, errors.KindNoElement).
			Type(b.name).
			Detail("descriptor pushed for element %d but only %d elements defined", len(b.descriptors), len(b.elements)).
			Build()
		return b
	}
	b.descriptors = append(b.descriptors, d)
	return b
}

// SetElementProvider installs the lazy resolver used for elements without a
// pushed descriptor. Providers are invoked on first ElementDescriptor access
// and their results cached, which lets self-referential types register
// without recursing forever.
func (b *Builder) SetElementProvider(p ElementProvider) *Builder {
	if b.err != nil {
		return b
	}
	b.provider = p
	return b
}

// Build returns the immutable descriptor, or the first misuse recorded
// during construction.
func (b *Builder) Build() (*Descriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	d := &Descriptor{
		name:        b.name,
		kind:        b.kind,
		elements:    make([]element, len(b.elements)),
		annotations: b.annotations,
		provider:    b.provider,
		nested:      make([]nestedSlot, len(b.elements)),
	}
	copy(d.elements, b.elements)
	for i, nested := range b.descriptors {
		d.nested[i].desc = nested
	}
	return d, nil
}

// MustBuild is like Build but panics on misuse. It is intended for static
// codec registration, where a build error is a programming fault.
func (b *Builder) MustBuild() *Descriptor {
	d, err := b.Build()
	if err != nil {
		panic(err)
	}
	return d
}
