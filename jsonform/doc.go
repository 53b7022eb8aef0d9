// Package jsonform is the JSON backend: structures and maps become objects,
// lists become arrays, enums become case-name strings, and null positions
// become JSON null. It is built on json-iterator's Stream and Iterator.
//
// jsonform is the reference for field-order independence: objects are
// decoded field by field through DecodeElementIndex, so a document may
// deliver fields in any order, and fields the descriptor does not declare
// are skipped through the IndexUnknown control path (logged at debug level,
// never an error). DecodeCollectionSize always reports SizeUnknown; JSON is
// a streaming format with no length framing.
//
// # Wire Shape
//
//	KindStruct  {"element": value, ...} in write order
//	KindMap     {"key": value, ...}; keys must render to strings
//	KindList    [value, ...] in ascending index order
//	KindEnum    the case name as a string
//	KindChar    a one-rune string
//	KindUnit    the empty object {}
//
// Nullable elements are written with explicit nulls rather than omitted, so
// a decoded null is distinguishable from an absent optional field.
//
// Malformed input surfaces as a structured malformed-input error wrapping
// the iterator's own error, which is this backend's error channel for
// unexpected tokens.
//
// Encoder and decoder instances are single-traversal and not safe for
// concurrent use.
package jsonform
