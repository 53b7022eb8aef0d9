package schema

import "fmt"

// WireTag is an element annotation assigning an explicit wire field number.
// Tag-keyed formats read it through the Tagged projection; elements without
// one default to their index plus one, keeping zero free for formats that
// reserve it as invalid.
type WireTag int

// Tagged projects a descriptor's elements onto external integer tags so
// tag-keyed wire formats can address fields independently of declaration
// order. Build it once per descriptor and reuse it; the annotation scan
// happens in NewTagged only.
type Tagged struct {
	desc  *Descriptor
	tags  []int32
	byTag map[int32]int
}

// NewTagged builds the tag projection for d. Explicit WireTag annotations
// must be unique within the descriptor; a duplicate is a registration-time
// programming fault and panics.
func NewTagged(d *Descriptor) *Tagged {
	t := &Tagged{
		desc:  d,
		tags:  make([]int32, d.NumElements()),
		byTag: make(map[int32]int, d.NumElements()),
	}
	for i := 0; i < d.NumElements(); i++ {
		tag := int32(i + 1)
		if wt, ok := FindAnnotation[WireTag](d.ElementAnnotations(i)); ok {
			tag = int32(wt)
		}
		if prev, exists := t.byTag[tag]; exists {
			panic(fmt.Sprintf("schema: duplicate wire tag %d on %s (elements %s and %s)",
				tag, d.Name(), d.ElementName(prev), d.ElementName(i)))
		}
		t.tags[i] = tag
		t.byTag[tag] = i
	}
	return t
}

// Descriptor returns the underlying descriptor.
func (t *Tagged) Descriptor() *Descriptor {
	return t.desc
}

// TagByIndex returns the wire tag for element i. Elements without an
// explicit WireTag annotation map to i+1. It panics if i is out of range.
func (t *Tagged) TagByIndex(i int) int32 {
	if i < 0 || i >= len(t.tags) {
		panic(fmt.Sprintf("schema: element index %d out of range for %s (%d elements)", i, t.desc.Name(), len(t.tags)))
	}
	return t.tags[i]
}

// IndexByTag returns the element index carrying the tag, or UnknownIndex
// when no element does. Unknown tags are the skip path for forward
// compatibility, not an error.
func (t *Tagged) IndexByTag(tag int32) int {
	if i, ok := t.byTag[tag]; ok {
		return i
	}
	return UnknownIndex
}
