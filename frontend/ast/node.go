package ast

import "fmt"

// NodeID identifies a node for the whole lifetime of a Program.
// IDs are handed out once, when the node is built, and are never reused.
type NodeID uint32

// NoID is the zero NodeID, which no built node carries.
const NoID NodeID = 0

func (id NodeID) String() string {
	return fmt.Sprintf("n%d", uint32(id))
}

// IDs hands out NodeIDs in construction order.
// The zero value is ready to use.
type IDs struct {
	last NodeID
}

func (g *IDs) Next() NodeID {
	g.last++
	return g.last
}

// Meta is embedded by every node and carries its identity and source range.
type Meta struct {
	Range
	NodeID NodeID
}

func (m Meta) ID() NodeID { return m.NodeID }

// Node is the base interface for all AST nodes.
type Node interface {
	Positioner
	ID() NodeID
	// Describe is what to call this node in error messages
	Describe() string
}

// Expr is the interface for all expression nodes in the AST.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is the interface for all statement nodes in the AST.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// Decl declares a function, a formal parameter or a local variable.
//
// Symbol resolution maps every use of a name to exactly one Decl,
// which is then the canonical representative of that program entity.
type Decl struct {
	Meta
	Name string
}

func (d *Decl) Describe() string { return "declaration" }

// Function is a top-level function definition
//
//	name(formals) [poly] { var locals; body; return Return; }
type Function struct {
	Meta
	Decl *Decl
	// Poly marks the function as polymorphic. Inference does not depend on it
	Poly    bool
	Formals []*Decl
	Locals  []*Decl
	Body    []Stmt
	Return  Expr
}

func (f *Function) Describe() string { return "function" }
func (f *Function) Name() string     { return f.Decl.Name }

// Program is a parsed source file.
type Program struct {
	Meta
	Functions []*Function
}

func (p *Program) Describe() string { return "program" }

// Function returns the function called name, if any.
func (p *Program) Function(name string) (*Function, bool) {
	for _, f := range p.Functions {
		if f.Name() == name {
			return f, true
		}
	}
	return nil, false
}
