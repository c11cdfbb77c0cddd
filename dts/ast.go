package dts

import "strconv"

// Namespace is the ambient namespace that holds the runtime object types.
const Namespace = "WebAssembly"

// Module is an ordered sequence of exported declarations.
type Module struct {
	Decls []Decl
}

// Decl is one exported declaration statement: *FuncDecl or *VarDecl.
type Decl interface {
	DeclName() string
	decl()
}

// FuncDecl declares a function signature without a body.
type FuncDecl struct {
	Result Type // nil omits the return annotation
	Name   string
	Params []Param
}

// Param is a named, annotated function parameter.
type Param struct {
	Type Type
	Name string
}

// VarDecl declares a variable with a type annotation and no initializer.
type VarDecl struct {
	Type Type
	Name string
}

func (d *FuncDecl) DeclName() string { return d.Name }
func (d *VarDecl) DeclName() string  { return d.Name }

func (*FuncDecl) decl() {}
func (*VarDecl) decl()  {}

// Type is a type annotation: Keyword or QualifiedName.
type Type interface {
	typ()
}

// Keyword is a built-in type keyword.
type Keyword string

// Number is the annotation every WebAssembly value type maps to.
const Number Keyword = "number"

// QualifiedName references a type through its namespace, e.g. WebAssembly.Memory.
type QualifiedName struct {
	Namespace string
	Name      string
}

func (Keyword) typ()       {}
func (QualifiedName) typ() {}

// Handle names a WebAssembly JS API object type.
type Handle string

const (
	HandleMemory Handle = "Memory"
	HandleTable  Handle = "Table"
	HandleGlobal Handle = "Global"
)

// Type returns the qualified reference to h in Namespace.
func (h Handle) Type() QualifiedName {
	return QualifiedName{Namespace: Namespace, Name: string(h)}
}

// NewFunc returns a function declaration with arity positional parameters
// named arg0, arg1, ... and every position typed as Number.
func NewFunc(name string, arity int) *FuncDecl {
	params := make([]Param, arity)
	for i := range params {
		params[i] = Param{Name: "arg" + strconv.Itoa(i), Type: Number}
	}
	return &FuncDecl{Name: name, Params: params, Result: Number}
}

// NewHandle returns a variable declaration typed as the given handle.
func NewHandle(name string, h Handle) *VarDecl {
	return &VarDecl{Name: name, Type: h.Type()}
}
