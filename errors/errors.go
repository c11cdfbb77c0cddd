package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode  Phase = "decode"  // binary module decoding
	PhaseResolve Phase = "resolve" // export to declaration mapping
	PhaseRender  Phase = "render"  // declaration text output
	PhaseIO      Phase = "io"      // reading input, writing output
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed             Kind = "malformed"
	KindDanglingReference     Kind = "dangling_reference"
	KindUnsupportedExportKind Kind = "unsupported_export_kind"
	KindIOFailure             Kind = "io_failure"
)

// Error is the structured error type used throughout the converter
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
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

// Is reports whether target matches this error. A target with an empty
// Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Targets for errors.Is that match a kind in any phase.
var (
	ErrMalformed             = &Error{Kind: KindMalformed}
	ErrDanglingReference     = &Error{Kind: KindDanglingReference}
	ErrUnsupportedExportKind = &Error{Kind: KindUnsupportedExportKind}
	ErrIOFailure             = &Error{Kind: KindIOFailure}
)

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

// Path sets the location, e.g. the export name
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
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

// Malformed creates an error for a structural violation of the binary format
func Malformed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindMalformed,
		Detail: detail,
		Cause:  cause,
	}
}

// DanglingReference creates an error for an index outside its index space
func DanglingReference(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDanglingReference,
		Path:   path,
		Detail: "index does not resolve",
		Cause:  cause,
	}
}

// UnsupportedExportKind creates an error for an export kind with no declaration form
func UnsupportedExportKind(name string, kind byte, kindName string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnsupportedExportKind,
		Path:   []string{name},
		Detail: fmt.Sprintf("cannot declare %s export (kind 0x%02x)", kindName, kind),
		Value:  kind,
	}
}

// IOFailure creates an error for a failed read or write
func IOFailure(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIOFailure,
		Detail: what,
		Cause:  cause,
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
