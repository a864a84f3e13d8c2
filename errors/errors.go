package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseHeader   Phase = "header"   // magic/version/offset-table validation
	PhaseResolve  Phase = "resolve"  // string and offset-array resolution
	PhaseValue    Phase = "value"    // typed value decoding
	PhaseLocation Phase = "location" // location record decoding
	PhaseParse    Phase = "parse"    // JSON catalog tree parsing
	PhaseExport   Phase = "export"   // report writing
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds        Kind = "out_of_bounds"
	KindUnsupportedVersion Kind = "unsupported_version"
	KindCorruptLength      Kind = "corrupt_length"
	KindInvalidData        Kind = "invalid_data"
	KindFieldMissing       Kind = "field_missing"
	KindNotFound           Kind = "not_found"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Detail    string
	Path      []string
	Offset    uint32
	HasOffset bool
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

	if e.HasOffset {
		fmt.Fprintf(&b, " (offset 0x%08x)", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the file offset the error refers to
func (b *Builder) Offset(off uint32) *Builder {
	b.err.Offset = off
	b.err.HasOffset = true
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

// OutOfBounds wraps a cursor bounds failure with the phase it occurred in
func OutOfBounds(phase Phase, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindOutOfBounds,
		Cause: cause,
	}
}

// UnsupportedVersion creates an unsupported schema version error
func UnsupportedVersion(version uint32) *Error {
	return &Error{
		Phase:  PhaseHeader,
		Kind:   KindUnsupportedVersion,
		Detail: fmt.Sprintf("schema version %d not in {1, 2}", version),
	}
}

// CorruptLength creates a corrupt length error for an offset array or
// string whose declared byte length is not sane
func CorruptLength(offset uint32, byteLength int32) *Error {
	return &Error{
		Phase:     PhaseResolve,
		Kind:      KindCorruptLength,
		Offset:    offset,
		HasOffset: true,
		Detail:    fmt.Sprintf("byte length %d is not a multiple of 4", byteLength),
	}
}

// FieldMissing creates a missing field error for the JSON catalog tree
func FieldMissing(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
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
