package types

import (
	"github.com/cottand/tip/frontend/ast"
	"log/slog"
)

// Constraint asserts that Left and Right denote the same type.
type Constraint struct {
	Left, Right Type
	// Source is the node whose typing rule produced the constraint. It may be nil.
	Source ast.Node
}

func (c Constraint) String() string {
	return c.Left.String() + " = " + c.Right.String()
}

func (c Constraint) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("constraint", c.String())}
	if c.Source != nil {
		attrs = append(attrs, slog.Any("source", ast.Slog(c.Source)))
	}
	return slog.GroupValue(attrs...)
}
