// Package errors provides structured error types for tinypacks.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the container path, the byte offset of the failing
// element and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidWidth).
//		Path("[2]", "{count}").
//		Offset(17).
//		Detail("integer cannot have a 3 byte payload").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated("extended-16 length", 2, 1)
//	err := errors.Overflow(errors.PhaseEncode, path, v, "int64")
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any error of the same Kind regardless of phase:
//
//	if errors.Is(err, errors.ErrDanglingKey) { ... }
package errors
