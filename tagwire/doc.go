// Package tagwire is the tag-keyed binary backend: elements are written as
// protobuf-style fields keyed by wire tag, using the protowire primitives.
// Tags come from the schema.Tagged projection of the descriptor — an
// explicit WireTag annotation when one is registered, the element index
// plus one otherwise — so declaration order never matters on the wire and
// unknown tags are skipped for forward compatibility.
//
// # Wire Shape
//
//	bool, char, unit, enum ordinal   varint
//	int8..int64                      varint, zigzag encoded
//	float32                          fixed32
//	float64                          fixed64
//	string                           length-delimited bytes
//	nested structures, list items,
//	map keys and values              length-delimited sub-messages
//
// A structure scope at the top level writes its fields directly, like a
// protobuf root message; nested values are framed as bytes fields. Lists
// repeat tag 1 per item; maps alternate tag 1 (key) and tag 2 (value) per
// entry.
//
// Nulls are presence-based: a null element writes nothing at all, and an
// absent field never surfaces from DecodeElementIndex, so optional elements
// decode as null by omission. A consequence is that a present field always
// means a non-null value, and an empty payload (the empty string, an empty
// structure) inside a nullable position is indistinguishable from null.
//
// Encoder and decoder instances are single-traversal and not safe for
// concurrent use.
package tagwire
