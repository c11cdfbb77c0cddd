package wasm2ts_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/Liamolucko/wasm2ts"
	"github.com/Liamolucko/wasm2ts/dts"
	"github.com/Liamolucko/wasm2ts/wasm"
)

func TestGolden(t *testing.T) {
	inputs, err := filepath.Glob(filepath.Join("testdata", "*.wasm"))
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) == 0 {
		t.Fatal("no golden inputs in testdata")
	}

	for _, in := range inputs {
		t.Run(filepath.Base(in), func(t *testing.T) {
			data, err := os.ReadFile(in)
			if err != nil {
				t.Fatal(err)
			}
			want, err := os.ReadFile(in + ".d.ts")
			if err != nil {
				t.Fatal(err)
			}

			got, err := wasm2ts.ConvertToText(data)
			if err != nil {
				t.Fatalf("ConvertToText: %v", err)
			}
			if got != string(want) {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

// TestAgainstWazero cross-checks declarations against wazero's own reading of
// the same binaries.
func TestAgainstWazero(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	golden, err := os.ReadFile(filepath.Join("testdata", "basic.wasm"))
	if err != nil {
		t.Fatal(err)
	}

	imported := &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI64, wasm.ValF32}, Results: []wasm.ValType{wasm.ValF64}},
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32, wasm.ValI32, wasm.ValI32}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "f", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}},
			{Module: "env", Name: "g", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 0}},
		},
		Funcs:    []uint32{0, 1},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Exports: []wasm.Export{
			{Name: "second_defined", Kind: wasm.KindFunc, Idx: 3},
			{Name: "first_import", Kind: wasm.KindFunc, Idx: 0},
			{Name: "first_defined", Kind: wasm.KindFunc, Idx: 2},
			{Name: "memory", Kind: wasm.KindMemory, Idx: 0},
		},
		Code: []wasm.FuncBody{trap, trap},
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"golden", golden},
		{"add and memory", addAndMemory().Encode()},
		{"imported functions", imported.Encode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := r.CompileModule(ctx, tt.data)
			if err != nil {
				t.Fatalf("wazero rejected fixture: %v", err)
			}
			defer compiled.Close(ctx)

			decls, err := wasm2ts.ConvertToDeclarations(tt.data)
			if err != nil {
				t.Fatalf("ConvertToDeclarations: %v", err)
			}

			funcs := compiled.ExportedFunctions()
			mems := compiled.ExportedMemories()
			for _, d := range decls.Decls {
				switch d := d.(type) {
				case *dts.FuncDecl:
					def, ok := funcs[d.Name]
					if !ok {
						t.Errorf("%s: wazero has no such exported function", d.Name)
						continue
					}
					if got, want := len(d.Params), len(def.ParamTypes()); got != want {
						t.Errorf("%s: arity %d, wazero says %d", d.Name, got, want)
					}
				case *dts.VarDecl:
					if d.Type == dts.HandleMemory.Type() {
						if _, ok := mems[d.Name]; !ok {
							t.Errorf("%s: wazero has no such exported memory", d.Name)
						}
					} else if _, ok := funcs[d.Name]; ok {
						t.Errorf("%s: declared as a variable but wazero exports a function", d.Name)
					}
				}
			}

			var numFuncs int
			for _, d := range decls.Decls {
				if _, ok := d.(*dts.FuncDecl); ok {
					numFuncs++
				}
			}
			if numFuncs != len(funcs) {
				t.Errorf("declared %d functions, wazero exports %d", numFuncs, len(funcs))
			}
		})
	}
}
