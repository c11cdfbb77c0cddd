package wasm

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Module is the decoded subset of a WebAssembly module needed to describe
// its exports. Sections that never influence an export's shape are framed
// and kept as opaque payloads.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // Type indices for defined functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Code     []FuncBody

	// Opaque holds element, data count, data and tag sections verbatim.
	Opaque []RawSection

	CustomSections []CustomSection
}

// FuncType represents a WebAssembly function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// ValType represents a WebAssembly value type.
// Typed references (ValRef, ValRefNull) lose their heap type when decoded.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValFuncRef:
		return "funcref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return api.ValueTypeName(api.ValueType(v))
	}
}

// Import represents an imported function, table, memory, global, or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32 // function or tag signature
	Kind    api.ExternType
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Init     []byte // Raw init expression, nil unless present
	Limits   Limits
	ElemType ValType
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global represents a global variable with type and initialization.
type Global struct {
	Type GlobalType
	Init []byte // Raw init expression bytes including end
}

// Export describes an exported item.
type Export struct {
	Name string
	Kind api.ExternType
	Idx  uint32
}

// KindName returns the text format name of the export kind.
func (e Export) KindName() string {
	if e.Kind == KindTag {
		return "tag"
	}
	return api.ExternTypeName(e.Kind)
}

// FuncBody holds one code section entry, locals and expression undecoded.
type FuncBody struct {
	Body []byte
}

// RawSection is a section carried through decoding without interpretation.
type RawSection struct {
	Data []byte
	ID   byte
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

func (m *Module) numImported(kind api.ExternType) int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			count++
		}
	}
	return count
}

// NumImportedFuncs returns the number of imported functions
func (m *Module) NumImportedFuncs() int { return m.numImported(KindFunc) }

// NumImportedTables returns the number of imported tables
func (m *Module) NumImportedTables() int { return m.numImported(KindTable) }

// NumImportedMemories returns the number of imported memories
func (m *Module) NumImportedMemories() int { return m.numImported(KindMemory) }

// NumImportedGlobals returns the number of imported globals
func (m *Module) NumImportedGlobals() int { return m.numImported(KindGlobal) }

// NumFuncs returns the size of the function index space.
func (m *Module) NumFuncs() int { return m.NumImportedFuncs() + len(m.Funcs) }

// IndexSpace returns the number of entries addressable by exports of kind.
// Unknown kinds have an empty index space.
func (m *Module) IndexSpace(kind api.ExternType) int {
	switch kind {
	case KindFunc:
		return m.NumFuncs()
	case KindTable:
		return m.NumImportedTables() + len(m.Tables)
	case KindMemory:
		return m.NumImportedMemories() + len(m.Memories)
	case KindGlobal:
		return m.NumImportedGlobals() + len(m.Globals)
	default:
		return 0
	}
}

// FuncTypeIndex returns the type index of a function in the function index
// space. Imported functions come first, then functions defined in the module.
func (m *Module) FuncTypeIndex(funcIdx uint32) (uint32, error) {
	n := funcIdx
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc {
			continue
		}
		if n == 0 {
			return imp.Desc.TypeIdx, nil
		}
		n--
	}
	if int(n) >= len(m.Funcs) {
		return 0, fmt.Errorf("%w: function %d (function index space has %d entries)",
			ErrDanglingReference, funcIdx, m.NumFuncs())
	}
	return m.Funcs[n], nil
}

// FuncType returns the signature of a function in the function index space.
func (m *Module) FuncType(funcIdx uint32) (*FuncType, error) {
	typeIdx, err := m.FuncTypeIndex(funcIdx)
	if err != nil {
		return nil, err
	}
	if int(typeIdx) >= len(m.Types) {
		return nil, fmt.Errorf("%w: function %d uses type %d (type section has %d entries)",
			ErrDanglingReference, funcIdx, typeIdx, len(m.Types))
	}
	return &m.Types[typeIdx], nil
}
