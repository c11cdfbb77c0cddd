package wasm

import (
	"errors"
	"fmt"
)

// Structural errors reported by Validate that are not dangling references.
var (
	ErrDuplicateExport = errors.New("duplicate export name")
	ErrCodeCount       = errors.New("function and code section counts differ")
)

// Validate checks the cross-section invariants that export resolution relies
// on. Index violations wrap ErrDanglingReference.
func (m *Module) Validate() error {
	if err := m.validateTypeIndices(); err != nil {
		return err
	}
	if err := m.validateExports(); err != nil {
		return err
	}
	if err := m.validateStart(); err != nil {
		return err
	}
	return m.validateCodeCount()
}

func (m *Module) validateTypeIndices() error {
	numTypes := uint32(len(m.Types))

	for i, typeIdx := range m.Funcs {
		if typeIdx >= numTypes {
			return fmt.Errorf("%w: function %d references type %d (type section has %d entries)",
				ErrDanglingReference, i, typeIdx, numTypes)
		}
	}

	for i, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc && imp.Desc.Kind != KindTag {
			continue
		}
		if imp.Desc.TypeIdx >= numTypes {
			return fmt.Errorf("%w: import %d (%s.%s) references type %d (type section has %d entries)",
				ErrDanglingReference, i, imp.Module, imp.Name, imp.Desc.TypeIdx, numTypes)
		}
	}

	return nil
}

func (m *Module) validateExports() error {
	seen := make(map[string]struct{}, len(m.Exports))
	for i, exp := range m.Exports {
		if _, dup := seen[exp.Name]; dup {
			return fmt.Errorf("%w %q at index %d", ErrDuplicateExport, exp.Name, i)
		}
		seen[exp.Name] = struct{}{}

		// tags have no index space here; the resolver rejects them by kind
		if exp.Kind == KindTag {
			continue
		}
		if n := m.IndexSpace(exp.Kind); exp.Idx >= uint32(n) {
			return fmt.Errorf("%w: export %d (%s) references %s %d (index space has %d entries)",
				ErrDanglingReference, i, exp.Name, exp.KindName(), exp.Idx, n)
		}
	}
	return nil
}

func (m *Module) validateStart() error {
	if m.Start == nil {
		return nil
	}
	if n := m.NumFuncs(); *m.Start >= uint32(n) {
		return fmt.Errorf("%w: start function %d (function index space has %d entries)",
			ErrDanglingReference, *m.Start, n)
	}
	return nil
}

func (m *Module) validateCodeCount() error {
	// a module may omit both sections, or declare functions with bodies
	if len(m.Code) > 0 && len(m.Code) != len(m.Funcs) {
		return fmt.Errorf("%w: code section has %d entries but function section has %d",
			ErrCodeCount, len(m.Code), len(m.Funcs))
	}
	return nil
}
