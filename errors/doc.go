// Package errors provides structured error types for the serial library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: element path, descriptor and Go type names,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
//		Path("profile", "age").
//		GoType("string").
//		Type("Int32").
//		Detail("cannot decode string into integer element").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseDecode, path, "string", "Int32")
//	err := errors.UpdateNotSupported("Profile")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
