package infer

import (
	"fmt"
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/symbols"
	"github.com/cottand/tip/frontend/types"
	"github.com/cottand/tip/internal/log"
	"log/slog"
)

var logger = ast.NodeLogger(log.DefaultLogger.With("section", "constraints"))

const DefaultEntryPoint = "main"

type Settings struct {
	// EntryPoint is the function whose formals and return value must be int
	EntryPoint string
}

func DefaultSettings() Settings {
	return Settings{EntryPoint: DefaultEntryPoint}
}

// Generator turns functions into the equality constraints of their typing rules.
//
// A Generator only reads the Table it was built with, so GenerateFunction may
// be called concurrently for different functions. The resulting constraints
// must still be solved by a single types.Unifier.
type Generator struct {
	table    *symbols.Table
	settings Settings
	logger   *slog.Logger
}

func NewGenerator(table *symbols.Table, settings Settings) *Generator {
	if settings.EntryPoint == "" {
		settings.EntryPoint = DefaultEntryPoint
	}
	return &Generator{
		table:    table,
		settings: settings,
		logger:   logger,
	}
}

// Generate returns the constraints of every function of prog, in source order.
// table must have been built from prog without errors.
func Generate(prog *ast.Program, table *symbols.Table, settings Settings) []types.Constraint {
	g := NewGenerator(table, settings)
	var all []types.Constraint
	for _, f := range prog.Functions {
		all = append(all, g.GenerateFunction(f)...)
	}
	g.logger.Debug("generated constraints", "functions", len(prog.Functions), "count", len(all))
	return all
}

// GenerateFunction returns the constraints of f, children before parents.
// The last constraint is always the one giving the type of f itself.
func (g *Generator) GenerateFunction(f *ast.Function) []types.Constraint {
	fg := &functionGen{
		Generator: g,
		fn:        f,
		vars:      make(map[types.VarID]*types.Var),
	}
	g.logger.Debug("generating", "function", f)
	for _, s := range f.Body {
		fg.stmt(s)
	}
	fg.expr(f.Return)
	fg.function(f)
	return fg.constraints
}

// functionGen accumulates the constraints of a single function
type functionGen struct {
	*Generator
	fn          *ast.Function
	constraints []types.Constraint
	// vars memoises type variables so each is allocated once per node (and field)
	vars map[types.VarID]*types.Var
}

func (g *functionGen) emit(source ast.Node, left, right types.Type) {
	c := types.Constraint{Left: left, Right: right, Source: source}
	g.logger.Debug("constraint", "c", c)
	g.constraints = append(g.constraints, c)
}

func (g *functionGen) memo(v *types.Var) *types.Var {
	if existing, ok := g.vars[v.ID]; ok {
		return existing
	}
	g.vars[v.ID] = v
	return v
}

// varOf is [[n]]. Names are resolved to their declaration so that every use
// of a variable or function shares one type variable.
func (g *functionGen) varOf(n ast.Node) *types.Var {
	if v, ok := n.(*ast.Var); ok {
		if decl, ok := g.table.Resolve(v.Name, g.fn.Decl); ok {
			n = decl
		}
	}
	return g.memo(types.NewTermVar(n))
}

func (g *functionGen) alpha(n ast.Node, field string) *types.Var {
	return g.memo(types.NewAlpha(n, field))
}

func (g *functionGen) function(f *ast.Function) {
	formals := make([]types.Type, 0, len(f.Formals))
	for _, formal := range f.Formals {
		formals = append(formals, g.varOf(formal))
	}
	ret := g.varOf(f.Return)
	if f.Name() == g.settings.EntryPoint {
		for _, formal := range formals {
			g.emit(f, formal, types.IntType)
		}
		g.emit(f, ret, types.IntType)
	}
	g.emit(f, g.varOf(f.Decl), types.NewFunc(formals, ret))
}

func (g *functionGen) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Assign:
		lhs := g.expr(s.LHS)
		rhs := g.expr(s.RHS)
		if deref, ok := s.LHS.(*ast.Deref); ok {
			g.emit(s, g.varOf(deref.Ptr), types.NewRef(rhs))
			return
		}
		g.emit(s, lhs, rhs)
	case *ast.Block:
		for _, inner := range s.Stmts {
			g.stmt(inner)
		}
	case *ast.While:
		cond := g.expr(s.Cond)
		g.stmt(s.Body)
		g.emit(s, cond, types.BoolType)
	case *ast.If:
		cond := g.expr(s.Cond)
		g.stmt(s.Then)
		if s.Else != nil {
			g.stmt(s.Else)
		}
		g.emit(s, cond, types.BoolType)
	case *ast.Output:
		g.emit(s, g.expr(s.Arg), types.IntType)
	case *ast.Error:
		g.emit(s, g.expr(s.Arg), types.IntType)
	case *ast.Incr:
		g.emit(s, g.expr(s.Target), types.IntType)
	case *ast.Decr:
		g.emit(s, g.expr(s.Target), types.IntType)
	case *ast.ForEach:
		elem := g.expr(s.Elem)
		iterable := g.expr(s.Iterable)
		g.stmt(s.Body)
		g.emit(s, iterable, types.NewArray(elem))
	case *ast.ForRange:
		bounds := []types.Type{g.expr(s.Elem), g.expr(s.Lo), g.expr(s.Hi)}
		if s.Step != nil {
			bounds = append(bounds, g.expr(s.Step))
		}
		g.stmt(s.Body)
		for _, b := range bounds {
			g.emit(s, b, types.IntType)
		}
	default:
		panic(fmt.Sprintf("unexpected statement %T", s))
	}
}

// expr emits the constraints of e and its children, and returns [[e]]
func (g *functionGen) expr(e ast.Expr) types.Type {
	self := g.varOf(e)
	switch e := e.(type) {
	case *ast.Var:
	case *ast.IntLit, *ast.Input:
		g.emit(e, self, types.IntType)
	case *ast.BoolLit:
		g.emit(e, self, types.BoolType)
	case *ast.Null:
		g.emit(e, self, types.NewRef(g.alpha(e, "")))

	case *ast.Binary:
		left, right := g.expr(e.Left), g.expr(e.Right)
		switch {
		case e.Op.IsArithmetic():
			g.emit(e, self, types.IntType)
			g.emit(e, left, types.IntType)
			g.emit(e, right, types.IntType)
		case e.Op.IsComparison():
			g.emit(e, self, types.BoolType)
			g.emit(e, left, types.IntType)
			g.emit(e, right, types.IntType)
		case e.Op.IsLogical():
			g.emit(e, self, types.BoolType)
			g.emit(e, left, types.BoolType)
			g.emit(e, right, types.BoolType)
		default:
			g.emit(e, self, types.BoolType)
			g.emit(e, left, right)
		}
	case *ast.Not:
		operand := g.expr(e.Operand)
		g.emit(e, self, types.BoolType)
		g.emit(e, operand, types.BoolType)
	case *ast.Neg:
		operand := g.expr(e.Operand)
		g.emit(e, self, types.IntType)
		g.emit(e, operand, types.IntType)

	case *ast.Call:
		fn := g.expr(e.Func)
		args := make([]types.Type, 0, len(e.Args))
		for _, arg := range e.Args {
			args = append(args, g.expr(arg))
		}
		g.emit(e, fn, types.NewFunc(args, self))

	case *ast.Alloc:
		g.emit(e, self, types.NewRef(g.expr(e.Init)))
	case *ast.AddrOf:
		g.emit(e, self, types.NewRef(g.expr(e.Operand)))
	case *ast.Deref:
		g.emit(e, g.expr(e.Ptr), types.NewRef(self))

	case *ast.RecordLit:
		for _, f := range e.Fields {
			g.expr(f.Value)
		}
		names := g.table.Fields()
		fields := make([]types.Type, names.Len())
		for i := range fields {
			if init, ok := e.Field(names.Get(i)); ok {
				fields[i] = g.varOf(init.Value)
			} else {
				fields[i] = types.AbsentType
			}
		}
		g.emit(e, self, types.NewRecord(fields, names))
	case *ast.Access:
		record := g.expr(e.Record)
		names := g.table.Fields()
		fields := make([]types.Type, names.Len())
		for i := range fields {
			if name := names.Get(i); name == e.Field {
				fields[i] = self
			} else {
				// every access has its own alphas, even for the same record
				fields[i] = g.alpha(e, name)
			}
		}
		g.emit(e, record, types.NewRecord(fields, names))

	case *ast.ArrayLit:
		elems := make([]types.Type, 0, len(e.Elems))
		for _, elem := range e.Elems {
			elems = append(elems, g.expr(elem))
		}
		g.emit(e, self, types.NewArray(g.alpha(e, "")))
		for _, elem := range elems {
			g.emit(e, self, types.NewArray(elem))
		}
	case *ast.ArrayOf:
		count, elem := g.expr(e.Count), g.expr(e.Elem)
		g.emit(e, count, types.IntType)
		g.emit(e, self, types.NewArray(elem))
	case *ast.Index:
		array, index := g.expr(e.Array), g.expr(e.Index)
		g.emit(e, array, types.NewArray(self))
		g.emit(e, index, types.IntType)
	case *ast.Len:
		array := g.expr(e.Array)
		g.emit(e, array, types.NewArray(g.alpha(e.Array, "")))
		g.emit(e, self, types.IntType)

	case *ast.Ternary:
		cond, then, els := g.expr(e.Cond), g.expr(e.Then), g.expr(e.Else)
		g.emit(e, cond, types.BoolType)
		g.emit(e, self, then)
		g.emit(e, self, els)
	default:
		panic(fmt.Sprintf("unexpected expression %T", e))
	}
	return self
}
