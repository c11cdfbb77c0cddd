package wasm

import (
	"github.com/Liamolucko/wasm2ts/wasm/internal/binary"
)

// encodeOrder lists section IDs in the order they must be written.
var encodeOrder = []byte{
	SectionType, SectionImport, SectionFunction, SectionTable, SectionMemory,
	SectionTag, SectionGlobal, SectionExport, SectionStart, SectionElement,
	SectionDataCount, SectionCode, SectionData,
}

// Encode encodes the module to WebAssembly binary format. Empty sections are
// omitted; opaque sections are written back at their canonical position.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()

	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	for _, id := range encodeOrder {
		if sec := m.encodeSection(id); sec != nil {
			w.Section(id, sec)
		}
	}

	for _, cs := range m.CustomSections {
		sec := binary.NewWriter()
		sec.WriteName(cs.Name)
		sec.WriteBytes(cs.Data)
		w.Section(SectionCustom, sec)
	}

	return w.Bytes()
}

func (m *Module) encodeSection(id byte) *binary.Writer {
	sec := binary.NewWriter()
	switch id {
	case SectionType:
		if len(m.Types) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Types)))
		for _, ft := range m.Types {
			sec.Byte(FuncTypeByte)
			writeValTypes(sec, ft.Params)
			writeValTypes(sec, ft.Results)
		}

	case SectionImport:
		if len(m.Imports) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Imports)))
		for _, imp := range m.Imports {
			sec.WriteName(imp.Module)
			sec.WriteName(imp.Name)
			sec.Byte(imp.Desc.Kind)
			switch imp.Desc.Kind {
			case KindFunc:
				sec.WriteU32(imp.Desc.TypeIdx)
			case KindTable:
				writeTableType(sec, *imp.Desc.Table)
			case KindMemory:
				writeLimits(sec, imp.Desc.Memory.Limits)
			case KindGlobal:
				writeGlobalType(sec, *imp.Desc.Global)
			case KindTag:
				sec.Byte(0)
				sec.WriteU32(imp.Desc.TypeIdx)
			}
		}

	case SectionFunction:
		if len(m.Funcs) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Funcs)))
		for _, typeIdx := range m.Funcs {
			sec.WriteU32(typeIdx)
		}

	case SectionTable:
		if len(m.Tables) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Tables)))
		for _, t := range m.Tables {
			writeTableType(sec, t)
		}

	case SectionMemory:
		if len(m.Memories) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Memories)))
		for _, mem := range m.Memories {
			writeLimits(sec, mem.Limits)
		}

	case SectionGlobal:
		if len(m.Globals) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Globals)))
		for _, g := range m.Globals {
			writeGlobalType(sec, g.Type)
			sec.WriteBytes(g.Init)
		}

	case SectionExport:
		if len(m.Exports) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Exports)))
		for _, exp := range m.Exports {
			sec.WriteName(exp.Name)
			sec.Byte(exp.Kind)
			sec.WriteU32(exp.Idx)
		}

	case SectionStart:
		if m.Start == nil {
			return nil
		}
		sec.WriteU32(*m.Start)

	case SectionCode:
		if len(m.Code) == 0 {
			return nil
		}
		sec.WriteU32(uint32(len(m.Code)))
		for _, fb := range m.Code {
			sec.WriteU32(uint32(len(fb.Body)))
			sec.WriteBytes(fb.Body)
		}

	default:
		for _, raw := range m.Opaque {
			if raw.ID == id {
				sec.WriteBytes(raw.Data)
				return sec
			}
		}
		return nil
	}
	return sec
}

func writeValTypes(w *binary.Writer, types []ValType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
		if t == ValRef || t == ValRefNull {
			// heap types are not retained; encode the abstract func heap type
			w.Byte(0x70)
		}
	}
}

func writeLimits(w *binary.Writer, l Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)
	w.WriteU64(l.Min)
	if l.Max != nil {
		w.WriteU64(*l.Max)
	}
}

func writeTableType(w *binary.Writer, t TableType) {
	if t.Init != nil {
		w.Byte(tableInitPrefix)
		w.Byte(0x00)
	}
	w.Byte(byte(t.ElemType))
	if t.ElemType == ValRef || t.ElemType == ValRefNull {
		w.Byte(0x70)
	}
	writeLimits(w, t.Limits)
	if t.Init != nil {
		w.WriteBytes(t.Init)
	}
}

func writeGlobalType(w *binary.Writer, g GlobalType) {
	w.Byte(byte(g.ValType))
	if g.ValType == ValRef || g.ValType == ValRefNull {
		w.Byte(0x70)
	}
	if g.Mutable {
		w.Byte(0x01)
	} else {
		w.Byte(0x00)
	}
}
