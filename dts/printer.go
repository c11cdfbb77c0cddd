package dts

import (
	"fmt"
	"io"
	"strings"
)

// PrintConfig controls text layout. The zero value uses "\n" line endings.
type PrintConfig struct {
	// Newline terminates every statement.
	Newline string
}

func (c PrintConfig) newline() string {
	if c.Newline == "" {
		return "\n"
	}
	return c.Newline
}

// Print writes m to w as one export statement per line. Output depends only
// on m and cfg.
func Print(w io.Writer, m *Module, cfg PrintConfig) error {
	p := printer{nl: cfg.newline()}
	for _, d := range m.Decls {
		if err := p.decl(d); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, p.buf.String())
	return err
}

// String renders m with the default configuration.
func (m *Module) String() string {
	var b strings.Builder
	// strings.Builder never fails and the tree types are closed
	_ = Print(&b, m, PrintConfig{})
	return b.String()
}

type printer struct {
	buf strings.Builder
	nl  string
}

func (p *printer) decl(d Decl) error {
	switch d := d.(type) {
	case *FuncDecl:
		p.buf.WriteString("export function ")
		p.buf.WriteString(d.Name)
		p.buf.WriteByte('(')
		for i, param := range d.Params {
			if i > 0 {
				p.buf.WriteString(", ")
			}
			p.buf.WriteString(param.Name)
			p.annotation(param.Type)
		}
		p.buf.WriteByte(')')
		p.annotation(d.Result)
	case *VarDecl:
		p.buf.WriteString("export var ")
		p.buf.WriteString(d.Name)
		p.annotation(d.Type)
	default:
		return fmt.Errorf("dts: unknown declaration %T", d)
	}
	p.buf.WriteByte(';')
	p.buf.WriteString(p.nl)
	return nil
}

func (p *printer) annotation(t Type) {
	if t == nil {
		return
	}
	p.buf.WriteString(": ")
	switch t := t.(type) {
	case Keyword:
		p.buf.WriteString(string(t))
	case QualifiedName:
		p.buf.WriteString(t.Namespace)
		p.buf.WriteByte('.')
		p.buf.WriteString(t.Name)
	}
}
