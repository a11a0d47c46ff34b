package symbols

import (
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/ilerr"
)

// CheckAssignable checks that every assignment target, increment, decrement
// and loop variable is an l-value, and that only variables and fields have
// their address taken.
func CheckAssignable(prog *ast.Program) *ilerr.Errors {
	var errs *ilerr.Errors
	report := func(err *ilerr.NewNotAssignable) {
		if err != nil {
			errs = errs.With(ilerr.New(*err))
		}
	}
	ast.Inspect(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.Assign:
			report(checkLValue(n.LHS))
		case *ast.Incr:
			report(checkLValue(n.Target))
		case *ast.Decr:
			report(checkLValue(n.Target))
		case *ast.ForEach:
			report(checkVariable(n.Elem))
		case *ast.ForRange:
			report(checkVariable(n.Elem))
		case *ast.AddrOf:
			report(checkAddressable(n.Operand))
		}
		return true
	})
	return errs
}

func notAssignable(e ast.Expr, reason string) *ilerr.NewNotAssignable {
	return &ilerr.NewNotAssignable{
		Positioner: e,
		Syntax:     ast.ExprString(e),
		Reason:     reason,
	}
}

func checkLValue(e ast.Expr) *ilerr.NewNotAssignable {
	switch e := e.(type) {
	case *ast.Var, *ast.Deref, *ast.Index:
		return nil
	case *ast.Access:
		return checkRecordBase(e.Record)
	default:
		return notAssignable(e, "")
	}
}

func checkRecordBase(e ast.Expr) *ilerr.NewNotAssignable {
	switch e := e.(type) {
	case *ast.Var, *ast.Deref, *ast.Index:
		return nil
	case *ast.Access:
		return checkRecordBase(e.Record)
	default:
		return notAssignable(e, "is an expression, and not a variable corresponding to a record")
	}
}

func checkAddressable(e ast.Expr) *ilerr.NewNotAssignable {
	switch e := e.(type) {
	case *ast.Var:
		return nil
	case *ast.Access:
		return checkRecordBase(e.Record)
	default:
		return notAssignable(e, "")
	}
}

func checkVariable(e ast.Expr) *ilerr.NewNotAssignable {
	if _, ok := e.(*ast.Var); ok {
		return nil
	}
	return notAssignable(e, "is not a variable")
}
