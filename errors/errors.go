package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode Phase = "encode" // Value to bytes
	PhaseDecode Phase = "decode" // bytes to Value
	PhaseBridge Phase = "bridge" // foreign format conversion
	PhaseHost   Phase = "host"   // guest memory exchange
	PhaseLoad   Phase = "load"   // packfile reading
)

// Kind categorizes the error
type Kind string

const (
	KindEmptyInput     Kind = "empty_input"
	KindTruncated      Kind = "truncated"
	KindInvalidBoolean Kind = "invalid_boolean"
	KindInvalidWidth   Kind = "invalid_width"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindDanglingKey    Kind = "dangling_key"
	KindUnknownType    Kind = "unknown_type"
	KindInvalidNone    Kind = "invalid_none"
	KindTrailingData   Kind = "trailing_data"
	KindTooDeep        Kind = "too_deep"
	KindOverflow       Kind = "overflow"
	KindTooLong        Kind = "too_long"
	KindUnsupported    Kind = "unsupported"
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindAllocation     Kind = "allocation"
	KindInvalidData    Kind = "invalid_data"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Offset int // absolute byte offset, -1 when unknown
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
		b.WriteString(strings.Join(e.Path, ""))
	}

	if e.Offset >= 0 && e.Phase == PhaseDecode {
		b.WriteString(" (offset ")
		b.WriteString(strconv.Itoa(e.Offset))
		b.WriteByte(')')
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

// Is reports whether target matches this error.
// An empty Phase on the target matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// AtOffset returns a copy of e positioned at the given absolute offset
// with the container path prefix prepended.
func (e *Error) AtOffset(base int, prefix ...string) *Error {
	c := e.Prefix(prefix...)
	if c.Offset >= 0 {
		c.Offset += base
	} else {
		c.Offset = base
	}
	return c
}

// Prefix returns a copy of e with the path segments prepended.
func (e *Error) Prefix(segs ...string) *Error {
	c := *e
	if len(segs) > 0 {
		c.Path = append(append(make([]string, 0, len(segs)+len(e.Path)), segs...), e.Path...)
	}
	return &c
}

// Sentinel targets for errors.Is. They match on Kind across all phases.
var (
	ErrEmptyInput     = &Error{Kind: KindEmptyInput, Offset: -1}
	ErrTruncated      = &Error{Kind: KindTruncated, Offset: -1}
	ErrInvalidBoolean = &Error{Kind: KindInvalidBoolean, Offset: -1}
	ErrInvalidWidth   = &Error{Kind: KindInvalidWidth, Offset: -1}
	ErrInvalidUTF8    = &Error{Kind: KindInvalidUTF8, Offset: -1}
	ErrDanglingKey    = &Error{Kind: KindDanglingKey, Offset: -1}
	ErrUnknownType    = &Error{Kind: KindUnknownType, Offset: -1}
	ErrInvalidNone    = &Error{Kind: KindInvalidNone, Offset: -1}
	ErrTrailingData   = &Error{Kind: KindTrailingData, Offset: -1}
	ErrTooDeep        = &Error{Kind: KindTooDeep, Offset: -1}
	ErrOverflow       = &Error{Kind: KindOverflow, Offset: -1}
	ErrTooLong        = &Error{Kind: KindTooLong, Offset: -1}
	ErrUnsupported    = &Error{Kind: KindUnsupported, Offset: -1}
)

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the container path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Offset sets the byte offset of the failing element
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
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

// EmptyInput creates an empty buffer error
func EmptyInput() *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindEmptyInput,
		Detail: "cannot unpack an empty buffer",
		Offset: 0,
	}
}

// Truncated creates a truncation error for a header tier or content run
func Truncated(what string, need, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncated,
		Detail: fmt.Sprintf("%s needs %d bytes, %d available", what, need, have),
		Offset: 0,
	}
}

// InvalidWidth creates an error for an illegal scalar content length
func InvalidWidth(typeName string, width uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidWidth,
		Detail: fmt.Sprintf("%s cannot have a %d byte payload", typeName, width),
		Value:  width,
		Offset: 0,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
		Offset: -1,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
		Offset: -1,
	}
}

// TooLong creates a content length ceiling error
func TooLong(typeName string, n uint64) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindTooLong,
		Detail: fmt.Sprintf("%s content of %d bytes exceeds the 32-bit length ceiling", typeName, n),
		Value:  n,
		Offset: -1,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
		Offset: -1,
	}
}

// TypeMismatch creates a shape mismatch error
func TypeMismatch(phase Phase, path []string, got, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("got %s, want %s", got, want),
		Offset: -1,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset, length, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) outside memory of %d bytes", offset, uint64(offset)+uint64(length), size),
		Value:  offset,
		Offset: -1,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
		Offset: -1,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
		Offset: -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}
