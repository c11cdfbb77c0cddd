package wasm

import "github.com/tetratelabs/wazero/api"

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01

	// componentVersion and componentLayer identify Component Model binaries,
	// which share the magic number but not the version word.
	componentVersion uint16 = 0x0d
	componentLayer   uint16 = 0x01
)

// Section IDs define the binary identifiers for each module section.
// Sections must appear in canonical order (except custom sections).
const (
	SectionCustom    byte = 0  // Custom section (can appear anywhere)
	SectionType      byte = 1  // Type section (function signatures)
	SectionImport    byte = 2  // Import section
	SectionFunction  byte = 3  // Function section (type indices)
	SectionTable     byte = 4  // Table section
	SectionMemory    byte = 5  // Memory section
	SectionGlobal    byte = 6  // Global section
	SectionExport    byte = 7  // Export section
	SectionStart     byte = 8  // Start section
	SectionElement   byte = 9  // Element section
	SectionCode      byte = 10 // Code section (function bodies)
	SectionData      byte = 11 // Data section
	SectionDataCount byte = 12 // Data count section (bulk memory)
	SectionTag       byte = 13 // Tag section (exception handling)
)

// Import/Export descriptor kinds. The first four share their encoding with
// wazero's api.ExternType.
const (
	KindFunc   = api.ExternTypeFunc
	KindTable  = api.ExternTypeTable
	KindMemory = api.ExternTypeMemory
	KindGlobal = api.ExternTypeGlobal

	// KindTag is an exception handling tag. wazero has no ExternType for it.
	KindTag api.ExternType = 0x04
)

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32     ValType = 0x7F // 32-bit integer
	ValI64     ValType = 0x7E // 64-bit integer
	ValF32     ValType = 0x7D // 32-bit float
	ValF64     ValType = 0x7C // 64-bit float
	ValV128    ValType = 0x7B // 128-bit vector (SIMD)
	ValFuncRef ValType = 0x70 // Function reference
	ValExtern  ValType = 0x6F // External reference

	// Typed reference prefixes; a heap type (s33) follows.
	ValRefNull ValType = 0x63 // (ref null ht)
	ValRef     ValType = 0x64 // (ref ht)
)

// FuncTypeByte introduces a function type in the type section.
const FuncTypeByte byte = 0x60

// Limits flags
const (
	LimitsNoMax    byte = 0x00
	LimitsHasMax   byte = 0x01
	LimitsShared   byte = 0x02
	LimitsMemory64 byte = 0x04
)

// tableInitPrefix marks a table type followed by an init expression.
const tableInitPrefix byte = 0x40

// Opcodes accepted in constant (init) expressions.
const (
	OpEnd       byte = 0x0B
	OpGlobalGet byte = 0x23
	OpI32Const  byte = 0x41
	OpI64Const  byte = 0x42
	OpF32Const  byte = 0x43
	OpF64Const  byte = 0x44
	OpI32Add    byte = 0x6A
	OpI32Sub    byte = 0x6B
	OpI32Mul    byte = 0x6C
	OpI64Add    byte = 0x7C
	OpI64Sub    byte = 0x7D
	OpI64Mul    byte = 0x7E
	OpRefNull   byte = 0xD0
	OpRefFunc   byte = 0xD2

	OpPrefixSIMD  byte   = 0xFD
	SimdV128Const uint32 = 0x0C
)

// OpUnreachable traps. A body of unreachable+end type-checks against any signature.
const OpUnreachable byte = 0x00
