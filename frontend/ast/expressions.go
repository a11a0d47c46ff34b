package ast

var (
	_ Expr = (*IntLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*Input)(nil)
	_ Expr = (*Null)(nil)
	_ Expr = (*Var)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Not)(nil)
	_ Expr = (*Neg)(nil)
	_ Expr = (*Call)(nil)
	_ Expr = (*Alloc)(nil)
	_ Expr = (*AddrOf)(nil)
	_ Expr = (*Deref)(nil)
	_ Expr = (*RecordLit)(nil)
	_ Expr = (*Access)(nil)
	_ Expr = (*ArrayLit)(nil)
	_ Expr = (*ArrayOf)(nil)
	_ Expr = (*Index)(nil)
	_ Expr = (*Len)(nil)
	_ Expr = (*Ternary)(nil)
)

func (*IntLit) exprNode()    {}
func (*BoolLit) exprNode()   {}
func (*Input) exprNode()     {}
func (*Null) exprNode()      {}
func (*Var) exprNode()       {}
func (*Binary) exprNode()    {}
func (*Not) exprNode()       {}
func (*Neg) exprNode()       {}
func (*Call) exprNode()      {}
func (*Alloc) exprNode()     {}
func (*AddrOf) exprNode()    {}
func (*Deref) exprNode()     {}
func (*RecordLit) exprNode() {}
func (*Access) exprNode()    {}
func (*ArrayLit) exprNode()  {}
func (*ArrayOf) exprNode()   {}
func (*Index) exprNode()     {}
func (*Len) exprNode()       {}
func (*Ternary) exprNode()   {}

func (e *IntLit) Describe() string    { return "int literal" }
func (e *BoolLit) Describe() string   { return "boolean literal" }
func (e *Input) Describe() string     { return "input" }
func (e *Null) Describe() string      { return "null" }
func (e *Var) Describe() string       { return "variable" }
func (e *Binary) Describe() string    { return "binary operation" }
func (e *Not) Describe() string       { return "negation" }
func (e *Neg) Describe() string       { return "arithmetic negation" }
func (e *Call) Describe() string      { return "function call" }
func (e *Alloc) Describe() string     { return "allocation" }
func (e *AddrOf) Describe() string    { return "address-of" }
func (e *Deref) Describe() string     { return "dereference" }
func (e *RecordLit) Describe() string { return "record literal" }
func (e *Access) Describe() string    { return "field access" }
func (e *ArrayLit) Describe() string  { return "array literal" }
func (e *ArrayOf) Describe() string   { return "fixed array" }
func (e *Index) Describe() string     { return "array index" }
func (e *Len) Describe() string       { return "array length" }
func (e *Ternary) Describe() string   { return "ternary" }

// IntLit is an integer literal. Syntax is kept as written.
type IntLit struct {
	Meta
	Syntax string
}

type BoolLit struct {
	Meta
	Value bool
}

// Input reads an integer from standard input
type Input struct {
	Meta
}

type Null struct {
	Meta
}

// Var is a use of a name, either a local variable, a formal or a function.
type Var struct {
	Meta
	Name string
}

type BinOp int

const (
	Mul BinOp = iota
	Div
	Mod
	Add
	Sub
	Gt
	Ge
	Lt
	Le
	Eq
	Ne
	And
	Or
)

var binOpSyntax = [...]string{
	Mul: "*",
	Div: "/",
	Mod: "%",
	Add: "+",
	Sub: "-",
	Gt:  ">",
	Ge:  ">=",
	Lt:  "<",
	Le:  "<=",
	Eq:  "==",
	Ne:  "!=",
	And: "and",
	Or:  "or",
}

func (o BinOp) String() string { return binOpSyntax[o] }

// IsArithmetic holds for operators over ints which produce an int.
func (o BinOp) IsArithmetic() bool { return o <= Sub }

// IsComparison holds for orderings over ints which produce a boolean.
func (o BinOp) IsComparison() bool { return o >= Gt && o <= Le }

func (o BinOp) IsEquality() bool { return o == Eq || o == Ne }
func (o BinOp) IsLogical() bool  { return o == And || o == Or }

type Binary struct {
	Meta
	Op          BinOp
	Left, Right Expr
}

type Not struct {
	Meta
	Operand Expr
}

type Neg struct {
	Meta
	Operand Expr
}

type Call struct {
	Meta
	Func Expr
	Args []Expr
}

type Alloc struct {
	Meta
	Init Expr
}

type AddrOf struct {
	Meta
	Operand Expr
}

type Deref struct {
	Meta
	Ptr Expr
}

// FieldInit is a single `name: value` entry of a RecordLit
type FieldInit struct {
	Meta
	Name  string
	Value Expr
}

func (f *FieldInit) Describe() string { return "field initializer" }

type RecordLit struct {
	Meta
	Fields []*FieldInit
}

// Field returns the initializer for name, if the literal has one.
func (e *RecordLit) Field(name string) (*FieldInit, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

type Access struct {
	Meta
	Record Expr
	Field  string
}

// ArrayLit is the default array form `[E1, ..., En]`
type ArrayLit struct {
	Meta
	Elems []Expr
}

// ArrayOf is the fixed array form `[Count of Elem]`
type ArrayOf struct {
	Meta
	Count Expr
	Elem  Expr
}

type Index struct {
	Meta
	Array Expr
	Index Expr
}

type Len struct {
	Meta
	Array Expr
}

type Ternary struct {
	Meta
	Cond, Then, Else Expr
}
