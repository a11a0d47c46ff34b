package types

import (
	"fmt"
	"github.com/benbjohnson/immutable"
	"github.com/cottand/tip/frontend/ast"
)

// Cons names the constructor of a Type.
// Two types can only unify if they share a Cons and an Arity.
type Cons uint8

const (
	ConsInt Cons = iota
	ConsBool
	ConsRef
	ConsFunc
	ConsArray
	ConsRecord
	ConsAbsent
	ConsVar
)

var consNames = [...]string{
	ConsInt:    "int",
	ConsBool:   "boolean",
	ConsRef:    "ref",
	ConsFunc:   "function",
	ConsArray:  "array",
	ConsRecord: "record",
	ConsAbsent: "absent",
	ConsVar:    "variable",
}

func (c Cons) String() string { return consNames[c] }

// Type is a term of the type algebra.
//
// Types are compared with Equal, never with ==, and may be cyclic once
// they come out of Unifier.Inferred: String and Equal are safe on cycles.
type Type interface {
	fmt.Stringer
	Cons() Cons
	// Args are the constructor arguments in a fixed order. Terminal types have none.
	Args() []Type
	Arity() int
}

// constructor is implemented by every Type but *Var.
// It lets Unifier.Inferred rebuild a term without knowing its concrete type,
// allocating the node before its arguments so that cycles can point back to it.
type constructor interface {
	Type
	shell() constructor
	setArg(i int, t Type)
}

var (
	_ constructor = (*Int)(nil)
	_ constructor = (*Bool)(nil)
	_ constructor = (*Ref)(nil)
	_ constructor = (*Func)(nil)
	_ constructor = (*Array)(nil)
	_ constructor = (*Record)(nil)
	_ constructor = (*Absent)(nil)

	_ Type = (*Var)(nil)
)

type Int struct{}

type Bool struct{}

// Absent fills the slot of a record field which is not present.
// It only unifies with itself or with a variable.
type Absent struct{}

var (
	IntType    = &Int{}
	BoolType   = &Bool{}
	AbsentType = &Absent{}
)

func (*Int) Cons() Cons           { return ConsInt }
func (*Int) Args() []Type         { return nil }
func (*Int) Arity() int           { return 0 }
func (t *Int) String() string     { return TypeString(t) }
func (t *Int) shell() constructor { return t }
func (*Int) setArg(int, Type)     { panic("int has no arguments") }

func (*Bool) Cons() Cons           { return ConsBool }
func (*Bool) Args() []Type         { return nil }
func (*Bool) Arity() int           { return 0 }
func (t *Bool) String() string     { return TypeString(t) }
func (t *Bool) shell() constructor { return t }
func (*Bool) setArg(int, Type)     { panic("boolean has no arguments") }

func (*Absent) Cons() Cons           { return ConsAbsent }
func (*Absent) Args() []Type         { return nil }
func (*Absent) Arity() int           { return 0 }
func (t *Absent) String() string     { return TypeString(t) }
func (t *Absent) shell() constructor { return t }
func (*Absent) setArg(int, Type)     { panic("absent has no arguments") }

// Ref is a pointer to a value of type Inner
type Ref struct {
	Inner Type
}

func NewRef(inner Type) *Ref {
	return &Ref{Inner: inner}
}

func (*Ref) Cons() Cons                 { return ConsRef }
func (t *Ref) Args() []Type             { return []Type{t.Inner} }
func (*Ref) Arity() int                 { return 1 }
func (t *Ref) String() string           { return TypeString(t) }
func (*Ref) shell() constructor         { return &Ref{} }
func (t *Ref) setArg(_ int, inner Type) { t.Inner = inner }

// Func is a function type. Its Args are the parameters followed by the return type,
// so that functions of different parameter counts have different arities.
type Func struct {
	Params []Type
	Ret    Type
}

func NewFunc(params []Type, ret Type) *Func {
	return &Func{Params: params, Ret: ret}
}

func (*Func) Cons() Cons { return ConsFunc }
func (t *Func) Args() []Type {
	args := make([]Type, 0, len(t.Params)+1)
	args = append(args, t.Params...)
	return append(args, t.Ret)
}
func (t *Func) Arity() int     { return len(t.Params) + 1 }
func (t *Func) String() string { return TypeString(t) }
func (t *Func) shell() constructor {
	return &Func{Params: make([]Type, len(t.Params))}
}
func (t *Func) setArg(i int, arg Type) {
	if i == len(t.Params) {
		t.Ret = arg
		return
	}
	t.Params[i] = arg
}

type Array struct {
	Elem Type
}

func NewArray(elem Type) *Array {
	return &Array{Elem: elem}
}

func (*Array) Cons() Cons                { return ConsArray }
func (t *Array) Args() []Type            { return []Type{t.Elem} }
func (*Array) Arity() int                { return 1 }
func (t *Array) String() string          { return TypeString(t) }
func (*Array) shell() constructor        { return &Array{} }
func (t *Array) setArg(_ int, elem Type) { t.Elem = elem }

// Record is a structural record type.
//
// Fields is aligned by index with Names, which is the field registry of the
// whole program: a record has a slot for every field name the program uses,
// and fields it does not have hold an Absent (or a variable).
type Record struct {
	Fields []Type
	Names  *immutable.List[string]
}

func NewRecord(fields []Type, names *immutable.List[string]) *Record {
	if len(fields) != names.Len() {
		panic(fmt.Sprintf("record with %d fields but %d names", len(fields), names.Len()))
	}
	return &Record{Fields: fields, Names: names}
}

func (*Record) Cons() Cons     { return ConsRecord }
func (t *Record) Args() []Type { return t.Fields }
func (t *Record) Arity() int   { return len(t.Fields) }
func (t *Record) String() string { return TypeString(t) }
func (t *Record) shell() constructor {
	return &Record{Fields: make([]Type, len(t.Fields)), Names: t.Names}
}
func (t *Record) setArg(i int, field Type) { t.Fields[i] = field }

// Field returns the type of the field called name
func (t *Record) Field(name string) (Type, bool) {
	for i := 0; i < t.Names.Len(); i++ {
		if t.Names.Get(i) == name {
			return t.Fields[i], true
		}
	}
	return nil, false
}

// sameNames reports whether two records are laid out over the same fields.
// Records built for one program share their Names, so this is usually a pointer comparison.
func sameNames(fst, snd *immutable.List[string]) bool {
	if fst == snd {
		return true
	}
	if fst.Len() != snd.Len() {
		return false
	}
	for i := 0; i < fst.Len(); i++ {
		if fst.Get(i) != snd.Get(i) {
			return false
		}
	}
	return true
}

// VarKind tells apart the two flavours of type variable
type VarKind uint8

const (
	// TermVar is [[n]], the type of node n. For uses of program variables and
	// functions, n is the canonical declaration.
	TermVar VarKind = iota
	// AlphaVar is a fresh variable introduced by the typing rule of node n,
	// for example the pointee of `null`.
	AlphaVar
)

// VarID is the identity of a type variable.
// Field is only set for the per-field alphas of a field access.
type VarID struct {
	Kind  VarKind
	Node  ast.NodeID
	Field string
}

func (id VarID) String() string {
	s := id.Node.String()
	if id.Kind == AlphaVar {
		s = "α" + s
	}
	if id.Field != "" {
		s += "." + id.Field
	}
	return s
}

// Var is a type variable. Two Vars are the same variable iff their ID is equal;
// Label is only used for printing.
type Var struct {
	ID    VarID
	Label string
}

// NewTermVar returns [[n]]
func NewTermVar(n ast.Node) *Var {
	return &Var{
		ID:    VarID{Kind: TermVar, Node: n.ID()},
		Label: ast.NodeString(n),
	}
}

// NewAlpha returns a fresh variable owned by n. Callers are expected to
// create it once per (n, field) and reuse it.
func NewAlpha(n ast.Node, field string) *Var {
	return &Var{
		ID:    VarID{Kind: AlphaVar, Node: n.ID(), Field: field},
		Label: ast.NodeString(n),
	}
}

func (*Var) Cons() Cons     { return ConsVar }
func (*Var) Args() []Type   { return nil }
func (*Var) Arity() int     { return 0 }
func (v *Var) String() string { return TypeString(v) }
func (v *Var) IsAlpha() bool { return v.ID.Kind == AlphaVar }
