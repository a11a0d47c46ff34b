package ast

import "fmt"

// Children returns the direct children of n in source order.
// Nil optional children (If.Else, ForRange.Step) are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *Program:
		for _, f := range n.Functions {
			add(f)
		}
	case *Function:
		add(n.Decl)
		for _, f := range n.Formals {
			add(f)
		}
		for _, l := range n.Locals {
			add(l)
		}
		for _, s := range n.Body {
			add(s)
		}
		add(n.Return)
	case *Decl, *IntLit, *BoolLit, *Input, *Null, *Var:
	case *Binary:
		add(n.Left, n.Right)
	case *Not:
		add(n.Operand)
	case *Neg:
		add(n.Operand)
	case *Call:
		add(n.Func)
		for _, a := range n.Args {
			add(a)
		}
	case *Alloc:
		add(n.Init)
	case *AddrOf:
		add(n.Operand)
	case *Deref:
		add(n.Ptr)
	case *RecordLit:
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldInit:
		add(n.Value)
	case *Access:
		add(n.Record)
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *ArrayOf:
		add(n.Count, n.Elem)
	case *Index:
		add(n.Array, n.Index)
	case *Len:
		add(n.Array)
	case *Ternary:
		add(n.Cond, n.Then, n.Else)
	case *Assign:
		add(n.LHS, n.RHS)
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *While:
		add(n.Cond, n.Body)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *Output:
		add(n.Arg)
	case *Error:
		add(n.Arg)
	case *Incr:
		add(n.Target)
	case *Decr:
		add(n.Target)
	case *ForEach:
		add(n.Elem, n.Iterable, n.Body)
	case *ForRange:
		add(n.Elem, n.Lo, n.Hi, n.Step, n.Body)
	default:
		panic(fmt.Sprintf("unexpected node type %T", n))
	}
	return out
}

// Inspect traverses the tree rooted at n in pre-order, calling f on every node.
// If f returns false, the children of that node are not visited.
func Inspect(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
