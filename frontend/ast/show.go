package ast

import (
	"fmt"
	"strings"
)

// ExprString renders e compactly on one line, the way diagnostics quote
// program fragments: binary operations and dereferences are parenthesised,
// records and arrays print without spaces.
func ExprString(e Expr) string {
	sb := &strings.Builder{}
	writeExpr(sb, e)
	return sb.String()
}

// NodeString renders any node. Statements print their header only.
func NodeString(n Node) string {
	switch n := n.(type) {
	case Expr:
		return ExprString(n)
	case *Decl:
		return n.Name
	case *FieldInit:
		return n.Name + ":" + ExprString(n.Value)
	case *Function:
		formals := make([]string, len(n.Formals))
		for i, f := range n.Formals {
			formals[i] = f.Name
		}
		s := fmt.Sprintf("%s(%s)", n.Name(), strings.Join(formals, ","))
		if n.Poly {
			s += " poly"
		}
		return s
	case *Program:
		return "program"
	case *Assign:
		return ExprString(n.LHS) + " = " + ExprString(n.RHS)
	case *Block:
		return "{ ... }"
	case *While:
		return "while (" + ExprString(n.Cond) + ")"
	case *If:
		return "if (" + ExprString(n.Cond) + ")"
	case *Output:
		return "output " + ExprString(n.Arg)
	case *Error:
		return "error " + ExprString(n.Arg)
	case *Incr:
		return ExprString(n.Target) + "++"
	case *Decr:
		return ExprString(n.Target) + "--"
	case *ForEach:
		return "for (" + ExprString(n.Elem) + " : " + ExprString(n.Iterable) + ")"
	case *ForRange:
		s := "for (" + ExprString(n.Elem) + " : " + ExprString(n.Lo) + " .. " + ExprString(n.Hi)
		if n.Step != nil {
			s += " by " + ExprString(n.Step)
		}
		return s + ")"
	}
	return n.Describe()
}

func writeExprs(sb *strings.Builder, es []Expr) {
	for i, e := range es {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeExpr(sb, e)
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *IntLit:
		sb.WriteString(e.Syntax)
	case *BoolLit:
		if e.Value {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case *Input:
		sb.WriteString("input")
	case *Null:
		sb.WriteString("null")
	case *Var:
		sb.WriteString(e.Name)
	case *Binary:
		sb.WriteByte('(')
		writeExpr(sb, e.Left)
		if e.Op.IsLogical() {
			sb.WriteString(" " + e.Op.String() + " ")
		} else {
			sb.WriteString(e.Op.String())
		}
		writeExpr(sb, e.Right)
		sb.WriteByte(')')
	case *Not:
		sb.WriteString("(not ")
		writeExpr(sb, e.Operand)
		sb.WriteByte(')')
	case *Neg:
		sb.WriteString("(-")
		writeExpr(sb, e.Operand)
		sb.WriteByte(')')
	case *Call:
		writeExpr(sb, e.Func)
		sb.WriteByte('(')
		writeExprs(sb, e.Args)
		sb.WriteByte(')')
	case *Alloc:
		sb.WriteString("alloc ")
		writeExpr(sb, e.Init)
	case *AddrOf:
		sb.WriteByte('&')
		writeExpr(sb, e.Operand)
	case *Deref:
		sb.WriteString("(*")
		writeExpr(sb, e.Ptr)
		sb.WriteByte(')')
	case *RecordLit:
		sb.WriteByte('{')
		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			writeExpr(sb, f.Value)
		}
		sb.WriteByte('}')
	case *Access:
		writeExpr(sb, e.Record)
		sb.WriteByte('.')
		sb.WriteString(e.Field)
	case *ArrayLit:
		sb.WriteByte('[')
		writeExprs(sb, e.Elems)
		sb.WriteByte(']')
	case *ArrayOf:
		sb.WriteByte('[')
		writeExpr(sb, e.Count)
		sb.WriteString(" of ")
		writeExpr(sb, e.Elem)
		sb.WriteByte(']')
	case *Index:
		writeExpr(sb, e.Array)
		sb.WriteByte('[')
		writeExpr(sb, e.Index)
		sb.WriteByte(']')
	case *Len:
		sb.WriteByte('#')
		writeExpr(sb, e.Array)
	case *Ternary:
		sb.WriteByte('(')
		writeExpr(sb, e.Cond)
		sb.WriteString(" ? ")
		writeExpr(sb, e.Then)
		sb.WriteString(" : ")
		writeExpr(sb, e.Else)
		sb.WriteByte(')')
	default:
		panic(fmt.Sprintf("unexpected expression type %T", e))
	}
}
