// Package mapform is the in-memory backend: it encodes values into plain Go
// trees (map[string]any for structures, map[any]any for maps, []any for
// lists, bare primitives for scalars) and decodes values back out of them.
//
// Because the whole tree is in hand before decoding starts, mapform is the
// reference bulk-delivery backend: DecodeElementIndex returns IndexReadAll
// whenever every declared element is present, and DecodeCollectionSize then
// returns the true element count, never SizeUnknown. A structure tree with
// elements missing falls back to streaming per-element indices instead,
// which makes mapform the natural playground for sparse patch-mode updates:
// Update merges only the keys present in the tree into the old value.
//
// # Tree Shape
//
//	KindStruct  map[string]any keyed by element name
//	KindMap     map[any]any
//	KindList    []any
//	KindEnum    case name string
//	primitives  their Go values; null is untyped nil, unit is struct{}{}
//
// List elements must be encoded in ascending index order; trees deliver
// them back the same way.
//
// Encoder and decoder instances are single-traversal and not safe for
// concurrent use. The trees they produce are ordinary Go values.
package mapform
