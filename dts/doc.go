// Package dts models TypeScript ambient declarations for a WebAssembly
// module's exports and prints them as text.
//
// A Module is a flat list of exported declarations. Functions become bodiless
// signatures and runtime objects become variables typed by the WebAssembly JS
// API namespace, which is referenced by name and assumed to be ambient:
//
//	m := &dts.Module{Decls: []dts.Decl{
//	    dts.NewFunc("add", 2),
//	    dts.NewHandle("mem", dts.HandleMemory),
//	}}
//	fmt.Print(m)
//	// export function add(arg0: number, arg1: number): number;
//	// export var mem: WebAssembly.Memory;
package dts
