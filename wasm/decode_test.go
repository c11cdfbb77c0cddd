package wasm_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/Liamolucko/wasm2ts/wasm"
)

func ptrTo[T any](v T) *T { return &v }

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// trap is a function body valid for any signature: no locals, unreachable, end.
var trap = wasm.FuncBody{Body: []byte{0x00, wasm.OpUnreachable, wasm.OpEnd}}

// sampleModule exports one of each supported kind plus an imported function.
func sampleModule() *wasm.Module {
	return &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
			{},
			{Params: []wasm.ValType{wasm.ValF64}, Results: []wasm.ValType{wasm.ValI64}},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "log", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 2}},
		},
		Funcs:    []uint32{0, 1},
		Tables:   []wasm.TableType{{ElemType: wasm.ValFuncRef, Limits: wasm.Limits{Min: 1}}},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1, Max: ptrTo(uint64(16))}}},
		Globals: []wasm.Global{
			{Type: wasm.GlobalType{ValType: wasm.ValI32, Mutable: true}, Init: []byte{wasm.OpI32Const, 0x2A, wasm.OpEnd}},
		},
		Exports: []wasm.Export{
			{Name: "add", Kind: wasm.KindFunc, Idx: 1},
			{Name: "mem", Kind: wasm.KindMemory, Idx: 0},
			{Name: "noop", Kind: wasm.KindFunc, Idx: 2},
			{Name: "table", Kind: wasm.KindTable, Idx: 0},
			{Name: "counter", Kind: wasm.KindGlobal, Idx: 0},
			{Name: "log", Kind: wasm.KindFunc, Idx: 0},
		},
		Code: []wasm.FuncBody{trap, trap},
	}
}

func TestParseMinimalModule(t *testing.T) {
	m, err := wasm.ParseModule(header)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Types) != 0 || len(m.Funcs) != 0 || len(m.Exports) != 0 {
		t.Errorf("expected empty module, got %+v", m)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"invalid magic", []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidMagic},
		{"invalid version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, wasm.ErrInvalidVersion},
		{"component", []byte{0x00, 0x61, 0x73, 0x6D, 0x0d, 0x00, 0x01, 0x00}, wasm.ErrComponent},
		{"truncated magic", []byte{0x00, 0x61, 0x73}, io.ErrUnexpectedEOF},
		{"truncated version", []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00}, io.ErrUnexpectedEOF},
		{"empty", nil, io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ParseModule(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseModule: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	orig := sampleModule()
	m, err := wasm.DecodeModule(orig.Encode())
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}

	if len(m.Types) != 3 {
		t.Fatalf("types: got %d, want 3", len(m.Types))
	}
	if got := m.Types[0]; len(got.Params) != 2 || got.Params[1] != wasm.ValI32 || len(got.Results) != 1 {
		t.Errorf("type 0: got %+v", got)
	}
	if len(m.Imports) != 1 || m.Imports[0].Module != "env" || m.Imports[0].Name != "log" {
		t.Errorf("imports: got %+v", m.Imports)
	}
	if len(m.Funcs) != 2 || m.Funcs[1] != 1 {
		t.Errorf("funcs: got %v", m.Funcs)
	}
	if len(m.Memories) != 1 || m.Memories[0].Limits.Max == nil || *m.Memories[0].Limits.Max != 16 {
		t.Errorf("memories: got %+v", m.Memories)
	}
	if len(m.Globals) != 1 || !m.Globals[0].Type.Mutable || !bytes.Equal(m.Globals[0].Init, orig.Globals[0].Init) {
		t.Errorf("globals: got %+v", m.Globals)
	}
	if len(m.Code) != 2 {
		t.Errorf("code: got %d bodies, want 2", len(m.Code))
	}

	if len(m.Exports) != len(orig.Exports) {
		t.Fatalf("exports: got %d, want %d", len(m.Exports), len(orig.Exports))
	}
	for i, exp := range m.Exports {
		if exp != orig.Exports[i] {
			t.Errorf("export %d: got %+v, want %+v", i, exp, orig.Exports[i])
		}
	}
}

func TestFuncTypeIndexSpace(t *testing.T) {
	m, err := wasm.DecodeModule(sampleModule().Encode())
	if err != nil {
		t.Fatalf("DecodeModule: %v", err)
	}

	tests := []struct {
		funcIdx uint32
		params  int
		results int
	}{
		{0, 1, 1}, // imported env.log: (f64) -> i64
		{1, 2, 1}, // first defined: (i32, i32) -> i32
		{2, 0, 0}, // second defined: () -> ()
	}
	for _, tt := range tests {
		ft, err := m.FuncType(tt.funcIdx)
		if err != nil {
			t.Errorf("FuncType(%d): %v", tt.funcIdx, err)
			continue
		}
		if len(ft.Params) != tt.params || len(ft.Results) != tt.results {
			t.Errorf("FuncType(%d): got %d params %d results, want %d, %d",
				tt.funcIdx, len(ft.Params), len(ft.Results), tt.params, tt.results)
		}
	}

	if _, err := m.FuncType(3); !errors.Is(err, wasm.ErrDanglingReference) {
		t.Errorf("FuncType(3): expected ErrDanglingReference, got %v", err)
	}
}

func TestParseSectionErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"unknown section id", []byte{0x0E, 0x00}},
		{"duplicate section", []byte{0x01, 0x01, 0x00, 0x01, 0x01, 0x00}},
		{"out of order", []byte{0x07, 0x01, 0x00, 0x01, 0x01, 0x00}},
		{"size overruns buffer", []byte{0x01, 0x05, 0x00}},
		{"huge size", []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0x0f}},
		{"trailing bytes in section", []byte{0x01, 0x02, 0x00, 0x00}},
		{"unsupported type form", []byte{0x01, 0x02, 0x01, 0x5F}},
		{"invalid value type", []byte{0x01, 0x04, 0x01, 0x60, 0x01, 0x40}},
		{"count exceeds payload", []byte{0x03, 0x02, 0xff, 0x01}},
		{"invalid export kind", []byte{0x07, 0x05, 0x01, 0x01, 'x', 0x05, 0x00}},
		{"invalid utf8 export name", []byte{0x07, 0x05, 0x01, 0x01, 0xff, 0x00, 0x00}},
		{"section id without size", []byte{0x01}},
		{"limits min exceeds max", []byte{0x05, 0x04, 0x01, 0x01, 0x02, 0x01}},
		{"non-constant global init", []byte{0x06, 0x04, 0x01, 0x7F, 0x00, 0x20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, header...), tt.body...)
			if _, err := wasm.ParseModule(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseTruncationNeverSucceeds(t *testing.T) {
	data := sampleModule().Encode()

	// every prefix ending strictly inside a section must fail
	boundaries := sectionBoundaries(t, data)
	for n := len(header); n < len(data); n++ {
		if boundaries[n] {
			continue
		}
		if _, err := wasm.ParseModule(data[:n]); err == nil {
			t.Errorf("prefix of %d/%d bytes parsed without error", n, len(data))
		}
	}
}

// sectionBoundaries returns the offsets at which a section ends.
func sectionBoundaries(t *testing.T, data []byte) map[int]bool {
	t.Helper()
	ends := map[int]bool{len(header): true}
	pos := len(header)
	for pos < len(data) {
		pos++ // id
		var size, shift uint32
		for {
			b := data[pos]
			pos++
			size |= uint32(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
		}
		pos += int(size)
		ends[pos] = true
	}
	return ends
}

func TestParseOpaqueAndCustomSections(t *testing.T) {
	m := &wasm.Module{
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Opaque: []wasm.RawSection{
			{ID: wasm.SectionDataCount, Data: []byte{0x01}},
			{ID: wasm.SectionData, Data: []byte{0x01, 0x01, 0x03, 'a', 'b', 'c'}},
		},
		CustomSections: []wasm.CustomSection{{Name: "name", Data: []byte{0x00, 0x01}}},
	}

	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Opaque) != 2 {
		t.Fatalf("opaque sections: got %d, want 2", len(parsed.Opaque))
	}
	if parsed.Opaque[0].ID != wasm.SectionDataCount || parsed.Opaque[1].ID != wasm.SectionData {
		t.Errorf("opaque order: got %d, %d", parsed.Opaque[0].ID, parsed.Opaque[1].ID)
	}
	if len(parsed.CustomSections) != 1 || parsed.CustomSections[0].Name != "name" {
		t.Errorf("custom sections: got %+v", parsed.CustomSections)
	}
}

func TestParseCustomSectionBeforeType(t *testing.T) {
	data := append(append([]byte{}, header...),
		0x00, 0x03, 0x02, 'h', 'i', // custom "hi" with no payload
		0x01, 0x01, 0x00, // empty type section
	)
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.CustomSections) != 1 || m.CustomSections[0].Name != "hi" {
		t.Errorf("custom sections: got %+v", m.CustomSections)
	}
}

func TestParseTypedReferenceParam(t *testing.T) {
	data := append(append([]byte{}, header...),
		0x01, 0x06, 0x01, 0x60, 0x01, 0x63, 0x70, 0x00, // (ref null func) -> ()
	)
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(m.Types) != 1 || len(m.Types[0].Params) != 1 || m.Types[0].Params[0] != wasm.ValRefNull {
		t.Errorf("types: got %+v", m.Types)
	}
}

func TestParseTableWithInit(t *testing.T) {
	m := &wasm.Module{
		Tables: []wasm.TableType{{
			ElemType: wasm.ValFuncRef,
			Limits:   wasm.Limits{Min: 2},
			Init:     []byte{wasm.OpRefNull, 0x70, wasm.OpEnd},
		}},
	}
	parsed, err := wasm.ParseModule(m.Encode())
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	if len(parsed.Tables) != 1 || !bytes.Equal(parsed.Tables[0].Init, m.Tables[0].Init) {
		t.Errorf("tables: got %+v", parsed.Tables)
	}
}

func TestParseDoesNotAliasInput(t *testing.T) {
	data := sampleModule().Encode()
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}
	for i := range data {
		data[i] = 0
	}
	if m.Exports[0].Name != "add" || m.Code[0].Body[1] != wasm.OpUnreachable {
		t.Error("decoded module changed after input buffer was overwritten")
	}
}
