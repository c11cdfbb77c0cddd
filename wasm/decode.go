package wasm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/Liamolucko/wasm2ts/wasm/internal/binary"
)

// Parsing errors returned by ParseModule and DecodeModule.
var (
	ErrInvalidMagic      = errors.New("invalid wasm magic number")
	ErrInvalidVersion    = errors.New("invalid wasm version")
	ErrComponent         = errors.New("binary is a component, not a core module")
	ErrDanglingReference = errors.New("dangling reference")
)

// DecodeModule parses a WebAssembly binary and checks that every index an
// export depends on resolves.
func DecodeModule(data []byte) (*Module, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseModule parses a WebAssembly binary module
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	version, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	layer, err := r.ReadU16LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version == componentVersion && layer == componentLayer {
		return nil, ErrComponent
	}
	if uint32(layer)<<16|uint32(version) != Version {
		return nil, fmt.Errorf("%w: 0x%x", ErrInvalidVersion, uint32(layer)<<16|uint32(version))
	}

	m := &Module{}

	var lastSectionOrder int

	for r.Len() > 0 {
		sectionID, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("section header", err)
		}

		// Custom sections can appear anywhere; everything else at most once, in order.
		if sectionID != SectionCustom {
			order := sectionOrder(sectionID)
			if order == 0 {
				return nil, r.WrapError("section header", fmt.Errorf("unknown section ID: 0x%02x", sectionID))
			}
			if order <= lastSectionOrder {
				return nil, r.WrapError("section header", fmt.Errorf("section %d appears out of order", sectionID))
			}
			lastSectionOrder = order
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}

		start := r.Position()
		sectionData, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError(sectionName(sectionID),
				fmt.Errorf("declared size %d overruns buffer (%d bytes left): %w", sectionSize, r.Len(), err))
		}

		sr := binary.NewReaderAt(sectionData, start)
		if err := parseSection(sr, m, sectionID); err != nil {
			return nil, fmt.Errorf("%s: %w", sectionName(sectionID), err)
		}
		if sr.Len() != 0 {
			return nil, sr.WrapError(sectionName(sectionID),
				fmt.Errorf("section size mismatch: %d unread bytes", sr.Len()))
		}
	}

	return m, nil
}

func parseSection(r *binary.Reader, m *Module, id byte) error {
	switch id {
	case SectionCustom:
		return parseCustomSection(r, m)
	case SectionType:
		return parseTypeSection(r, m)
	case SectionImport:
		return parseImportSection(r, m)
	case SectionFunction:
		return parseFunctionSection(r, m)
	case SectionTable:
		return parseTableSection(r, m)
	case SectionMemory:
		return parseMemorySection(r, m)
	case SectionGlobal:
		return parseGlobalSection(r, m)
	case SectionExport:
		return parseExportSection(r, m)
	case SectionStart:
		return parseStartSection(r, m)
	case SectionCode:
		return parseCodeSection(r, m)
	default:
		data, err := r.ReadRemaining()
		if err != nil {
			return err
		}
		m.Opaque = append(m.Opaque, RawSection{ID: id, Data: data})
		return nil
	}
}

// sectionOrder returns the canonical ordering for a section ID, or 0 for an
// unknown ID. The tag and data count sections are placed out of ID order.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionTag:
		return 6
	case SectionGlobal:
		return 7
	case SectionExport:
		return 8
	case SectionStart:
		return 9
	case SectionElement:
		return 10
	case SectionDataCount:
		return 11
	case SectionCode:
		return 12
	case SectionData:
		return 13
	default:
		return 0
	}
}

func sectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom section"
	case SectionType:
		return "type section"
	case SectionImport:
		return "import section"
	case SectionFunction:
		return "function section"
	case SectionTable:
		return "table section"
	case SectionMemory:
		return "memory section"
	case SectionGlobal:
		return "global section"
	case SectionExport:
		return "export section"
	case SectionStart:
		return "start section"
	case SectionElement:
		return "element section"
	case SectionCode:
		return "code section"
	case SectionData:
		return "data section"
	case SectionDataCount:
		return "data count section"
	case SectionTag:
		return "tag section"
	default:
		return fmt.Sprintf("section 0x%02x", id)
	}
}

func parseCustomSection(r *binary.Reader, m *Module) error {
	name, err := r.ReadName()
	if err != nil {
		return err
	}
	rest, err := r.ReadRemaining()
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, CustomSection{
		Name: name,
		Data: rest,
	})
	return nil
}

func parseTypeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Types = make([]FuncType, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("read type form at index %d: %w", i, err)
		}
		if form != FuncTypeByte {
			return r.WrapError("type section", fmt.Errorf("unsupported type form 0x%02x at index %d", form, i))
		}
		ft, err := readFuncType(r)
		if err != nil {
			return fmt.Errorf("type %d: %w", i, err)
		}
		m.Types[i] = ft
	}
	return nil
}

func readFuncType(r *binary.Reader) (FuncType, error) {
	params, err := readValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

func readValTypes(r *binary.Reader) ([]ValType, error) {
	count, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	types := make([]ValType, count)
	for i := uint32(0); i < count; i++ {
		vt, err := readValType(r)
		if err != nil {
			return nil, err
		}
		types[i] = vt
	}
	return types, nil
}

func readValType(r *binary.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch vt := ValType(b); vt {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern:
		return vt, nil
	case ValRefNull, ValRef:
		// heap type is irrelevant to the declaration; consume it
		if _, err := r.ReadS64(); err != nil {
			return 0, err
		}
		return vt, nil
	default:
		return 0, r.WrapError("value type", fmt.Errorf("invalid value type 0x%02x", b))
	}
}

func parseImportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Imports = make([]Import, count)
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return err
		}
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}

		imp := Import{Module: module, Name: name, Desc: ImportDesc{Kind: kind}}

		switch kind {
		case KindFunc:
			imp.Desc.TypeIdx, err = r.ReadU32()
			if err != nil {
				return err
			}
		case KindTable:
			table, err := readTableType(r)
			if err != nil {
				return err
			}
			imp.Desc.Table = &table
		case KindMemory:
			memory, err := readMemoryType(r)
			if err != nil {
				return err
			}
			imp.Desc.Memory = &memory
		case KindGlobal:
			global, err := readGlobalType(r)
			if err != nil {
				return err
			}
			imp.Desc.Global = &global
		case KindTag:
			if _, err := r.ReadByte(); err != nil { // attribute
				return err
			}
			imp.Desc.TypeIdx, err = r.ReadU32()
			if err != nil {
				return err
			}
		default:
			return r.WrapError("import section", fmt.Errorf("unknown import kind: %d", kind))
		}

		m.Imports[i] = imp
	}
	return nil
}

func parseFunctionSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Funcs = make([]uint32, count)
	for i := uint32(0); i < count; i++ {
		m.Funcs[i], err = r.ReadU32()
		if err != nil {
			return err
		}
	}
	return nil
}

func parseTableSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Tables = make([]TableType, count)
	for i := uint32(0); i < count; i++ {
		m.Tables[i], err = readTableType(r)
		if err != nil {
			return err
		}
	}
	return nil
}

func parseMemorySection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Memories = make([]MemoryType, count)
	for i := uint32(0); i < count; i++ {
		m.Memories[i], err = readMemoryType(r)
		if err != nil {
			return err
		}
	}
	return nil
}

func parseGlobalSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Globals = make([]Global, count)
	for i := uint32(0); i < count; i++ {
		globalType, err := readGlobalType(r)
		if err != nil {
			return err
		}
		init, err := readInitExpr(r)
		if err != nil {
			return fmt.Errorf("global %d init: %w", i, err)
		}
		m.Globals[i] = Global{
			Type: globalType,
			Init: init,
		}
	}
	return nil
}

func parseExportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Exports = make([]Export, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind > KindTag {
			return r.WrapError("export section", fmt.Errorf("invalid export kind: 0x%02x", kind))
		}
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		m.Exports[i] = Export{Name: name, Kind: api.ExternType(kind), Idx: idx}
	}
	return nil
}

func parseStartSection(r *binary.Reader, m *Module) error {
	idx, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

// parseCodeSection frames each function body without decoding it.
func parseCodeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadCount()
	if err != nil {
		return err
	}
	m.Code = make([]FuncBody, count)
	for i := uint32(0); i < count; i++ {
		size, err := r.ReadU32()
		if err != nil {
			return err
		}
		body, err := r.ReadBytes(int(size))
		if err != nil {
			return fmt.Errorf("function body %d: %w", i, err)
		}
		m.Code[i] = FuncBody{Body: body}
	}
	return nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags&^(LimitsHasMax|LimitsShared|LimitsMemory64) != 0 {
		return Limits{}, r.WrapError("limits", fmt.Errorf("invalid limits flags 0x%02x", flags))
	}

	l := Limits{
		Shared:   flags&LimitsShared != 0,
		Memory64: flags&LimitsMemory64 != 0,
	}

	read := func() (uint64, error) {
		if l.Memory64 {
			return r.ReadU64()
		}
		v, err := r.ReadU32()
		return uint64(v), err
	}

	l.Min, err = read()
	if err != nil {
		return Limits{}, err
	}
	if flags&LimitsHasMax != 0 {
		maxVal, err := read()
		if err != nil {
			return Limits{}, err
		}
		l.Max = &maxVal
	}

	if l.Max != nil && l.Min > *l.Max {
		return Limits{}, fmt.Errorf("limits min (%d) exceeds max (%d)", l.Min, *l.Max)
	}

	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	first, err := r.ReadByte()
	if err != nil {
		return TableType{}, err
	}

	withInit := first == tableInitPrefix
	if withInit {
		zero, err := r.ReadByte()
		if err != nil {
			return TableType{}, err
		}
		if zero != 0x00 {
			return TableType{}, fmt.Errorf("expected 0x00 after 0x40, got 0x%02x", zero)
		}
		first, err = r.ReadByte()
		if err != nil {
			return TableType{}, err
		}
	}
	elemType, err := readRefType(r, first)
	if err != nil {
		return TableType{}, err
	}

	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	tt := TableType{ElemType: elemType, Limits: limits}
	if withInit {
		tt.Init, err = readInitExpr(r)
		if err != nil {
			return TableType{}, err
		}
	}
	return tt, nil
}

// readRefType completes a reference type whose first byte was already read.
func readRefType(r *binary.Reader, first byte) (ValType, error) {
	switch vt := ValType(first); vt {
	case ValFuncRef, ValExtern:
		return vt, nil
	case ValRefNull, ValRef:
		if _, err := r.ReadS64(); err != nil {
			return 0, err
		}
		return vt, nil
	default:
		return 0, fmt.Errorf("invalid table element type 0x%02x", first)
	}
}

func readMemoryType(r *binary.Reader) (MemoryType, error) {
	limits, err := readLimits(r)
	if err != nil {
		return MemoryType{}, err
	}
	return MemoryType{Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	valType, err := readValType(r)
	if err != nil {
		return GlobalType{}, err
	}
	mut, err := r.ReadByte()
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, fmt.Errorf("invalid global mutability 0x%02x", mut)
	}
	return GlobalType{ValType: valType, Mutable: mut == 1}, nil
}

// readInitExpr copies a constant expression up to and including its end opcode.
func readInitExpr(r *binary.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(b)
		if b == OpEnd {
			break
		}
		if err := copyInitExprImmediate(r, &buf, b); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func copyInitExprImmediate(r *binary.Reader, buf *bytes.Buffer, opcode byte) error {
	switch opcode {
	case OpI32Const, OpI64Const, OpGlobalGet, OpRefNull, OpRefFunc:
		return copyLEB128(r, buf)
	case OpF32Const:
		return copyBytes(r, buf, 4)
	case OpF64Const:
		return copyBytes(r, buf, 8)
	case OpI32Add, OpI32Sub, OpI32Mul, OpI64Add, OpI64Sub, OpI64Mul:
		return nil
	case OpPrefixSIMD:
		start := buf.Len()
		if err := copyLEB128(r, buf); err != nil {
			return err
		}
		sub, err := binary.NewReader(buf.Bytes()[start:]).ReadU32()
		if err != nil {
			return err
		}
		if sub != SimdV128Const {
			return fmt.Errorf("opcode 0xfd 0x%x not allowed in constant expression", sub)
		}
		return copyBytes(r, buf, 16)
	default:
		return r.WrapError("constant expression", fmt.Errorf("opcode 0x%02x not allowed in constant expression", opcode))
	}
}

func copyLEB128(r *binary.Reader, buf *bytes.Buffer) error {
	for i := 0; ; i++ {
		if i == 10 {
			return binary.ErrOverflow
		}
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		buf.WriteByte(b)
		if b&0x80 == 0 {
			return nil
		}
	}
}

func copyBytes(r *binary.Reader, buf *bytes.Buffer, n int) error {
	data, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
