// Package serial provides a protocol-agnostic serialization core: the
// Encoder/Decoder contract a format backend implements and a codec strategy
// drives, so that one codec per data type works unmodified against any
// format.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	serial/              Root package with the Encoder/Decoder protocol contract
//	├── schema/          Descriptor model: kinds, elements, annotations, tags
//	├── codecs/          Built-in strategies: primitives, lists, maps, nullables, enums
//	├── jsonform/        JSON backend on json-iterator (order-independent fields)
//	├── tagwire/         Tag-keyed binary backend on protowire
//	├── mapform/         In-memory map tree backend (bulk read-all delivery)
//	└── errors/          Structured error types for debugging
//
// # Protocol Shape
//
// Encoding and decoding are two-state machines. The scalar state (Encoder,
// Decoder) carries primitive reads and writes; BeginStructure switches to
// the structure state (CompositeEncoder, CompositeDecoder), which addresses
// elements by descriptor index until EndStructure closes the scope:
//
//	strategy              backend
//	────────              ───────
//	BeginStructure(desc)  → open framing, return composite
//	Encode*Element(i, v)  → write element i
//	EndStructure(desc)    → close framing
//
// Scopes nest strictly, and EndStructure must run exactly once per scope on
// every exit path, including element failures; drivers use defer for this.
//
// # Field Order and Sentinels
//
// Decoding discovers element positions exclusively through
// DecodeElementIndex, which returns a valid index or one of three
// sentinels: IndexDone (stop), IndexUnknown (skip the unrecognized field
// and query again), or IndexReadAll (bulk delivery; read every element in
// ascending order, sized by DecodeCollectionSize). The tri-state result is
// what lets out-of-order JSON objects and strictly ordered binary records
// share one structural codec.
//
// # Null Discipline
//
// A nullable position writes exactly one of EncodeNotNullMark followed by
// the value, or EncodeNull. Decoding mirrors it: DecodeNotNullMark first,
// DecodeNull only when the mark reported false. The EncodeNullableValue and
// DecodeNullableValue helpers wrap strategies with this discipline.
//
// # Update Modes
//
// A Decoder carries an UpdateMode policy for merging into existing values:
// UpdateBanned rejects updates, UpdateOverwrite decodes fresh, UpdatePatch
// delegates to the strategy's optional Patcher capability. The nullable
// merge precedence lives in UpdateNullableValue.
//
// # Thread Safety
//
// Descriptors are immutable and shared. Encoder and Decoder instances hold
// in-progress traversal state and are NOT thread-safe; one traversal is one
// goroutine issuing strictly sequential calls.
package serial
