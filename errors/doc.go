// Package errors provides structured error types for the catalog-reader
// library.
//
// Errors are categorized by Phase (where in the decode the error occurred)
// and Kind (error category). The Error type includes rich context: the file
// offset involved, a field path, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindCorruptLength).
//		Offset(arrayOffset).
//		Detail("array byte length %d not divisible by 4", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedVersion(version)
//	err := errors.CorruptLength(offset, byteLength)
//
// All errors implement the standard error interface and support
// errors.Is/As.
package errors
