// Package wasm decodes the parts of a WebAssembly binary module that describe
// its exports.
//
// The decoder reads the module header and frames every section. Sections that
// determine an export's shape are decoded:
//
//	module.Types     []FuncType    // Function signatures
//	module.Imports   []Import      // Imported definitions (index spaces only)
//	module.Funcs     []uint32      // Type indices for defined functions
//	module.Tables    []TableType   // Table definitions
//	module.Memories  []MemoryType  // Memory definitions
//	module.Globals   []Global      // Global definitions
//	module.Exports   []Export      // Exported definitions
//	module.Code      []FuncBody    // Function bodies, undecoded
//
// Element, data, data count and tag sections are kept as opaque payloads.
//
// # Parsing
//
//	module, err := wasm.ParseModule(data)
//
// DecodeModule additionally runs Validate, which checks that every type,
// function and export index resolves:
//
//	module, err := wasm.DecodeModule(data)
//	if errors.Is(err, wasm.ErrDanglingReference) {
//	    // an index points past the end of its section
//	}
//
// The decoder never panics on malformed input and never allocates more than
// the input can describe: declared section sizes and vector lengths are
// checked against the remaining bytes first.
//
// # Encoding
//
// Encode writes a module back to binary, which is mostly useful for building
// fixtures:
//
//	data := (&wasm.Module{
//	    Types:   []wasm.FuncType{{Params: []wasm.ValType{wasm.ValI32}}},
//	    Funcs:   []uint32{0},
//	    Exports: []wasm.Export{{Name: "f", Kind: wasm.KindFunc}},
//	    Code:    []wasm.FuncBody{{Body: []byte{0x00, wasm.OpEnd}}},
//	}).Encode()
package wasm
