// Package errors provides structured error types for wasm2ts.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). A conversion fails with one of four kinds:
//
//	KindMalformed             the binary is not a well-formed module
//	KindDanglingReference     an index points outside its index space
//	KindUnsupportedExportKind an export kind has no declaration form
//	KindIOFailure             input could not be read or output written
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindDanglingReference).
//		Path("add").
//		Value(uint32(7)).
//		Detail("function %d not defined", 7).
//		Build()
//
// Match a kind regardless of phase with the Err* targets:
//
//	if errors.Is(err, errors.ErrMalformed) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
