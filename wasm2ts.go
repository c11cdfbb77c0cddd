package wasm2ts

import (
	stderrors "errors"
	"strings"

	"github.com/Liamolucko/wasm2ts/dts"
	"github.com/Liamolucko/wasm2ts/errors"
	"github.com/Liamolucko/wasm2ts/wasm"
)

// Options configures text output. The zero value selects the defaults.
type Options struct {
	// Newline terminates each declaration. Defaults to "\n".
	Newline string
}

// ConvertToDeclarations decodes a WebAssembly binary and returns one
// declaration per export, in export order.
func ConvertToDeclarations(data []byte) (*dts.Module, error) {
	m, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Resolve(m)
}

// ConvertToText converts a WebAssembly binary to declaration text using the
// default options.
func ConvertToText(data []byte) (string, error) {
	return Convert(data, Options{})
}

// Convert converts a WebAssembly binary to declaration text.
func Convert(data []byte, opts Options) (string, error) {
	decls, err := ConvertToDeclarations(data)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := dts.Print(&b, decls, dts.PrintConfig{Newline: opts.Newline}); err != nil {
		return "", errors.IOFailure(errors.PhaseRender, "print declarations", err)
	}
	return b.String(), nil
}

// Resolve maps the exports of a decoded module to declarations. It does not
// assume m was validated, so every index is checked.
func Resolve(m *wasm.Module) (*dts.Module, error) {
	out := &dts.Module{Decls: make([]dts.Decl, 0, len(m.Exports))}
	for _, exp := range m.Exports {
		decl, err := resolveExport(m, exp)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, decl)
	}
	return out, nil
}

func resolveExport(m *wasm.Module, exp wasm.Export) (dts.Decl, error) {
	switch exp.Kind {
	case wasm.KindFunc:
		ft, err := m.FuncType(exp.Idx)
		if err != nil {
			return nil, errors.New(errors.PhaseResolve, errors.KindDanglingReference).
				Path(exp.Name).
				Value(exp.Idx).
				Cause(err).
				Detail("function %d does not resolve to a signature", exp.Idx).
				Build()
		}
		return dts.NewFunc(exp.Name, len(ft.Params)), nil
	case wasm.KindMemory:
		return dts.NewHandle(exp.Name, dts.HandleMemory), nil
	case wasm.KindTable:
		return dts.NewHandle(exp.Name, dts.HandleTable), nil
	case wasm.KindGlobal:
		return dts.NewHandle(exp.Name, dts.HandleGlobal), nil
	default:
		return nil, errors.UnsupportedExportKind(exp.Name, exp.Kind, exp.KindName())
	}
}

// Decode decodes and validates a WebAssembly binary, classifying failures as
// malformed input or dangling references.
func Decode(data []byte) (*wasm.Module, error) {
	m, err := wasm.DecodeModule(data)
	if err == nil {
		return m, nil
	}
	if stderrors.Is(err, wasm.ErrDanglingReference) {
		return nil, errors.DanglingReference(errors.PhaseDecode, nil, err)
	}
	return nil, errors.Malformed("decode module", err)
}
