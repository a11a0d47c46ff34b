package symbols

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/ilerr"
	"github.com/cottand/tip/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = ast.NodeLogger(log.DefaultLogger.With("section", "symbols"))

// Table resolves names to their canonical declaration.
//
// A Table is read-only once built and may be shared between goroutines.
type Table struct {
	functions map[string]*ast.Decl
	// locals maps the declaration of a function to its formals and locals
	locals map[ast.NodeID]*immutable.Map[string, *ast.Decl]
	fields *immutable.List[string]
}

// Build collects the declarations of prog and checks every name use resolves.
// A Table is returned even when there are errors, with the duplicate
// declarations left out.
func Build(prog *ast.Program) (*Table, *ilerr.Errors) {
	var errs *ilerr.Errors
	t := &Table{
		functions: make(map[string]*ast.Decl, len(prog.Functions)),
		locals:    make(map[ast.NodeID]*immutable.Map[string, *ast.Decl], len(prog.Functions)),
	}

	for _, f := range prog.Functions {
		if _, exists := t.functions[f.Name()]; exists {
			errs = errs.With(ilerr.New(ilerr.NewDuplicateDeclaration{
				Positioner: f.Decl,
				Name:       f.Name(),
				Kind:       "function",
			}))
			continue
		}
		t.functions[f.Name()] = f.Decl
	}

	for _, f := range prog.Functions {
		scope := immutable.NewMapBuilder[string, *ast.Decl](nil)
		for _, decl := range append(append([]*ast.Decl{}, f.Formals...), f.Locals...) {
			if _, exists := scope.Get(decl.Name); exists {
				errs = errs.With(ilerr.New(ilerr.NewDuplicateDeclaration{
					Positioner: decl,
					Name:       decl.Name,
					Kind:       "local",
				}))
				continue
			}
			scope.Set(decl.Name, decl)
		}
		t.locals[f.Decl.ID()] = scope.Map()
		errs = errs.Merge(t.checkUses(f))
	}

	t.fields = collectFields(prog)
	logger.Debug("built symbol table", "functions", len(t.functions), "fields", t.fields.Len())
	return t, errs
}

func (t *Table) checkUses(f *ast.Function) *ilerr.Errors {
	var errs *ilerr.Errors
	ast.Inspect(f, func(n ast.Node) bool {
		v, ok := n.(*ast.Var)
		if !ok {
			return true
		}
		decl, ok := t.Resolve(v.Name, f.Decl)
		if ok {
			logger.Debug("resolved", "use", v, "decl", decl.ID())
		} else {
			errs = errs.With(ilerr.New(ilerr.NewUndefinedVariable{
				Positioner: v,
				Name:       v.Name,
			}))
		}
		return true
	})
	return errs
}

// collectFields lists every field name used by a record literal or a field
// access, in order of first occurrence in the program
func collectFields(prog *ast.Program) *immutable.List[string] {
	seen := set.New[string](0)
	var fields []string
	add := func(name string) {
		if seen.Insert(name) {
			fields = append(fields, name)
		}
	}
	ast.Inspect(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.RecordLit:
			for _, f := range n.Fields {
				add(f.Name)
			}
		case *ast.Access:
			add(n.Field)
		}
		return true
	})
	return immutable.NewList(fields...)
}

// Local returns the formal or local declared as name in the function declared by fn.
func (t *Table) Local(name string, fn *ast.Decl) (*ast.Decl, bool) {
	scope, ok := t.locals[fn.ID()]
	if !ok {
		return nil, false
	}
	return scope.Get(name)
}

// Function returns the declaration of the top-level function name.
func (t *Table) Function(name string) (*ast.Decl, bool) {
	decl, ok := t.functions[name]
	return decl, ok
}

// Resolve looks name up in fn first, and then amongst functions.
func (t *Table) Resolve(name string, fn *ast.Decl) (*ast.Decl, bool) {
	if decl, ok := t.Local(name, fn); ok {
		return decl, true
	}
	return t.Function(name)
}

// Fields is the program-wide field registry. Every record type of the program
// is laid out over this exact list.
func (t *Table) Fields() *immutable.List[string] {
	return t.fields
}
