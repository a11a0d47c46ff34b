package ast

var (
	_ Stmt = (*Assign)(nil)
	_ Stmt = (*Block)(nil)
	_ Stmt = (*While)(nil)
	_ Stmt = (*If)(nil)
	_ Stmt = (*Output)(nil)
	_ Stmt = (*Error)(nil)
	_ Stmt = (*Incr)(nil)
	_ Stmt = (*Decr)(nil)
	_ Stmt = (*ForEach)(nil)
	_ Stmt = (*ForRange)(nil)
)

func (*Assign) stmtNode()   {}
func (*Block) stmtNode()    {}
func (*While) stmtNode()    {}
func (*If) stmtNode()       {}
func (*Output) stmtNode()   {}
func (*Error) stmtNode()    {}
func (*Incr) stmtNode()     {}
func (*Decr) stmtNode()     {}
func (*ForEach) stmtNode()  {}
func (*ForRange) stmtNode() {}

func (s *Assign) Describe() string   { return "assignment" }
func (s *Block) Describe() string    { return "block" }
func (s *While) Describe() string    { return "while loop" }
func (s *If) Describe() string       { return "if statement" }
func (s *Output) Describe() string   { return "output statement" }
func (s *Error) Describe() string    { return "error statement" }
func (s *Incr) Describe() string     { return "increment" }
func (s *Decr) Describe() string     { return "decrement" }
func (s *ForEach) Describe() string  { return "iterator for loop" }
func (s *ForRange) Describe() string { return "range for loop" }

type Assign struct {
	Meta
	LHS, RHS Expr
}

type Block struct {
	Meta
	Stmts []Stmt
}

type While struct {
	Meta
	Cond Expr
	Body Stmt
}

type If struct {
	Meta
	Cond Expr
	Then Stmt
	// Else may be nil
	Else Stmt
}

type Output struct {
	Meta
	Arg Expr
}

type Error struct {
	Meta
	Arg Expr
}

type Incr struct {
	Meta
	Target Expr
}

type Decr struct {
	Meta
	Target Expr
}

// ForEach is `for (Elem : Iterable) Body`
type ForEach struct {
	Meta
	Elem     Expr
	Iterable Expr
	Body     Stmt
}

// ForRange is `for (Elem : Lo .. Hi by Step) Body`
type ForRange struct {
	Meta
	Elem   Expr
	Lo, Hi Expr
	// Step may be nil when `by` is omitted
	Step Expr
	Body Stmt
}
