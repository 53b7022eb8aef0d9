package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseBuild  Phase = "build"  // descriptor construction
	PhaseEncode Phase = "encode" // value to wire form
	PhaseDecode Phase = "decode" // wire form to value
	PhaseUpdate Phase = "update" // in-place patching
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch      Kind = "type_mismatch"
	KindMalformedInput    Kind = "malformed_input"
	KindMissingDescriptor Kind = "missing_descriptor"
	KindNoElement         Kind = "no_element"
	KindDuplicateElement  Kind = "duplicate_element"
	KindUnsupportedUpdate Kind = "unsupported_update"
	KindInvalidEnum       Kind = "invalid_enum"
	KindOverflow          Kind = "overflow"
	KindInvalidState      Kind = "invalid_state"
	KindUnsupported       Kind = "unsupported"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	GoType string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" || e.GoType != "" {
		b.WriteString(": ")
		if e.Type != "" && e.GoType != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
			b.WriteString(", Go type ")
			b.WriteString(e.GoType)
		} else if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		} else {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the descriptor type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Type:   typeName,
	}
}

// MalformedInput creates a malformed input error
func MalformedInput(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindMalformedInput,
		Path:  path,
		Cause: cause,
	}
}

// UpdateNotSupported creates an error for a type that rejects updates
func UpdateNotSupported(typeName string) *Error {
	return &Error{
		Phase:  PhaseUpdate,
		Kind:   KindUnsupportedUpdate,
		Type:   typeName,
		Detail: "update not supported",
	}
}

// MissingDescriptor creates an error for an unregistered element descriptor
func MissingDescriptor(typeName string, index int) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindMissingDescriptor,
		Type:   typeName,
		Detail: fmt.Sprintf("no descriptor for element %d", index),
		Value:  index,
	}
}

// NoElement creates an error for builder calls that require an element first
func NoElement(op string) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindNoElement,
		Detail: fmt.Sprintf("cannot %s: no elements defined", op),
	}
}

// DuplicateElement creates an error for a repeated element name
func DuplicateElement(typeName, element string) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindDuplicateElement,
		Type:   typeName,
		Detail: fmt.Sprintf("element %q already defined", element),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, path []string, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Path:   path,
		Type:   enumType,
		Detail: fmt.Sprintf("invalid enum value %v for %s", value, enumType),
		Value:  value,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Type:   targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidState creates a protocol misuse error
func InvalidState(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
