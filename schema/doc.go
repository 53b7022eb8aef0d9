// Package schema provides the runtime descriptor model: the static shape
// description of a type that drives structural encoding and decoding
// without runtime type inspection.
//
// # Descriptor Overview
//
// A Descriptor records a type's kind, its named elements, per-element
// optionality and annotations, and the descriptors of the element types:
//
//	┌──────────────────────────────────────────────────────────┐
//	│ Codec ── describes ── Descriptor ── drives ── Backend    │
//	└──────────────────────────────────────────────────────────┘
//
// Element indices are dense, 0-based, and stable for the descriptor's
// lifetime; index and name form a bijection over the declared elements.
//
// # Building
//
// Descriptors are accumulated through a Builder, typically in codec
// registration code:
//
//	desc := schema.NewBuilder("Profile", schema.KindStruct).
//		AddElement("name", false).
//		AddElement("age", true).
//		PushAnnotation(schema.WireTag(5)).
//		MustBuild()
//
// Builder misuse (annotation before any element, duplicate element names,
// more pushed descriptors than elements) is recorded and surfaced once by
// Build.
//
// # Lazy Nested Descriptors
//
// Self-referential types cannot construct their element descriptors
// eagerly. A Builder accepts an ElementProvider callback instead; the
// provider runs on the first ElementDescriptor call for an element outside
// the pushed range, and its result is cached:
//
//	var nodeDesc *schema.Descriptor
//	nodeDesc = schema.NewBuilder("Node", schema.KindStruct).
//		AddElement("value", false).
//		AddElement("next", true).
//		PushDescriptor(valueDesc).
//		SetElementProvider(func(int) *schema.Descriptor { return nodeDesc }).
//		MustBuild()
//
// # Identity
//
// Equal and Hash are structural: two descriptors with the same name, kind,
// and nested shape are interchangeable regardless of annotations.
// Annotations are metadata riding along for formats and tooling, never part
// of the identity key.
//
// # Tags
//
// Tag-keyed wire formats address elements by integer tag instead of
// declaration order. The Tagged projection maps element indices to tags,
// honoring explicit WireTag annotations and defaulting to index+1.
//
// # Name Lookup
//
// ElementIndex resolves an element name to its index, returning
// UnknownIndex for undeclared names. Unknown names are a designed-in
// control path (skip the field, keep reading), which is what lets sparse or
// forward-versioned inputs decode against an older descriptor.
//
// # Thread Safety
//
// Descriptors are immutable after Build and safe for concurrent traversals;
// the lazy caches (name index, provider resolution, hash) are internally
// synchronized. Builders are not safe for concurrent use.
package schema
