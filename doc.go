// Package wasm2ts generates TypeScript declarations for the exports of a
// WebAssembly module.
//
// The conversion is a pure function of the input bytes. The binary is decoded
// by the wasm package, every export is mapped to a declaration in the dts
// package, and the declarations are printed one per line:
//
//	(module
//	  (func (export "add") (param i32 i32) (result i32) ...)
//	  (memory (export "mem") 1))
//
// becomes
//
//	export function add(arg0: number, arg1: number): number;
//	export var mem: WebAssembly.Memory;
//
// # Package Layout
//
//	wasm2ts/           Conversion entry points (this package)
//	├── wasm/          Core WebAssembly binary decoding and validation
//	├── dts/           Declaration tree and printer
//	├── errors/        Structured error types
//	└── cmd/wasm2ts/   Command line tool
//
// # Errors
//
// Every failure is an *errors.Error carrying a Kind:
//
//	decls, err := wasm2ts.ConvertToDeclarations(data)
//	if errors.Is(err, errors.ErrMalformed) {
//	    // not a well-formed module
//	}
//
// Conversions share no state and may run concurrently.
package wasm2ts
