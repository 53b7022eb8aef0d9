// Package codecs provides ready-made codec strategies for primitive values
// and common containers, so hand-written and generated codecs can compose
// full value shapes without reimplementing the protocol plumbing.
//
// # Built-in Strategies
//
//	Bool, Int8..Int64, Float32, Float64, Char, String, Unit
//	                    primitive singletons
//	List(elem)          []any driven through the collection protocol
//	Map(key, value)     map[any]any with alternating key/value elements
//	Nullable(inner)     the null-mark discipline around any codec
//	Enum(name, cases)   string case names with ordinal wire form
//
// Values flow as `any`. Every strategy performs a checked type assertion on
// its input and fails with a type mismatch error rather than panicking, so
// a miswired codec surfaces as a structured error naming both types.
//
// # Patch Semantics
//
// List and Map implement the optional Patcher capability: a patch-mode
// update appends decoded items to the old slice, or merges decoded entries
// over the old map. Nullable delegates patching to its inner codec.
// Primitive and enum codecs do not patch; updating them in patch mode fails
// with an unsupported-update error, which is the safe default.
package codecs
