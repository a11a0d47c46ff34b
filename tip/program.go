package tip

import (
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/ilerr"
	"github.com/cottand/tip/frontend/infer"
	"github.com/cottand/tip/frontend/parser"
	"github.com/cottand/tip/frontend/symbols"
	"github.com/cottand/tip/frontend/types"
	"github.com/cottand/tip/internal/log"
	"github.com/pkg/errors"
	"go/token"
	"io/fs"
)

var programLogger = log.DefaultLogger.With("section", "tip")

// Program is a single TIP source file after every frontend pass that could run on it.
//
// Passes stop at the first phase that reports errors: a program with syntax errors
// has no symbol table, and one with symbol errors has no constraints.
// Only the first unsolvable constraint is reported.
type Program struct {
	filename string
	fset     *token.FileSet
	settings Settings

	syntax      *ast.Program
	table       *symbols.Table
	constraints []types.Constraint
	unifier     *types.Unifier
	solved      bool

	errors *ilerr.Errors
}

// LoadProgram reads path from fsys and checks it.
// The returned error is only non-nil for failures unrelated to the program itself.
func LoadProgram(fsys fs.FS, path string, settings Settings) (*Program, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Check(path, string(data), settings)
}

// Check runs every pass end-to-end on src.
// Errors in src are reported through Program.Errors, and so are failures of the
// solver which are not type errors, as ilerr.Unclassified.
func Check(filename, src string, settings Settings) (*Program, error) {
	if settings.EntryPoint == "" {
		settings.EntryPoint = infer.DefaultEntryPoint
	}
	p := &Program{
		filename: filename,
		fset:     token.NewFileSet(),
		settings: settings,
	}
	logger := programLogger.With("file", filename)

	var errs *ilerr.Errors
	p.syntax, errs = parser.Parse(p.fset, filename, src)
	p.errors = p.errors.Merge(errs)
	if p.errors.HasError() {
		logger.Debug("syntax errors", "errors", p.errors)
		return p, nil
	}

	p.table, errs = symbols.Build(p.syntax)
	p.errors = p.errors.Merge(errs)
	p.errors = p.errors.Merge(symbols.CheckAssignable(p.syntax))
	if p.errors.HasError() {
		logger.Debug("symbol errors", "errors", p.errors)
		return p, nil
	}

	p.constraints = infer.Generate(p.syntax, p.table, settings.inferSettings())
	logger.Debug("generated constraints", "count", len(p.constraints))

	p.unifier = types.NewUnifier(p.constraints)
	if err := p.unifier.Solve(); err != nil {
		p.solveFailed(err)
		logger.Debug("type errors", "errors", p.errors)
		return p, nil
	}
	p.solved = true
	return p, nil
}

// solveFailed records err, which is normally a *types.UnifyError
func (p *Program) solveFailed(err error) {
	var unifyErr *types.UnifyError
	if !errors.As(err, &unifyErr) {
		programLogger.Warn("unexpected solver error", "file", p.filename, "err", err)
		p.errors = p.errors.With(ilerr.New(ilerr.Unclassified{
			From:       errors.Wrapf(err, "solve %s", p.filename),
			Positioner: p.syntax,
		}))
		return
	}
	var at ast.Positioner = p.syntax
	if unifyErr.Constraint.Source != nil {
		at = unifyErr.Constraint.Source
	}
	p.errors = p.errors.With(ilerr.New(ilerr.NewTypeMismatch{
		Positioner: at,
		Cause:      unifyErr,
	}))
}

func (p *Program) Errors() *ilerr.Errors {
	return p.errors
}

func (p *Program) Filename() string {
	return p.filename
}

func (p *Program) FileSet() *token.FileSet {
	return p.fset
}

// AST is nil when the program did not parse
func (p *Program) AST() *ast.Program {
	return p.syntax
}

func (p *Program) Settings() Settings {
	return p.settings
}

// Constraints are in the order they were generated and solved
func (p *Program) Constraints() []types.Constraint {
	return p.constraints
}

// Solved reports whether every constraint was unified, in which case types are available
func (p *Program) Solved() bool {
	return p.solved
}

// TypeOf is the inferred type of [[n]]. n should be a declaration or an expression
// other than an identifier: uses of a name share the type variable of their declaration.
//
// TypeOf returns nil if the program did not type check.
func (p *Program) TypeOf(n ast.Node) types.Type {
	if !p.solved {
		return nil
	}
	return p.unifier.Inferred(types.NewTermVar(n))
}

// FunctionType is the inferred type of the function called name
func (p *Program) FunctionType(name string) (types.Type, bool) {
	if !p.solved {
		return nil, false
	}
	decl, ok := p.table.Function(name)
	if !ok {
		return nil, false
	}
	return p.TypeOf(decl), true
}

// LocalType is the inferred type of the formal or local name of function fn
func (p *Program) LocalType(fn, name string) (types.Type, bool) {
	if !p.solved {
		return nil, false
	}
	f, ok := p.table.Function(fn)
	if !ok {
		return nil, false
	}
	decl, ok := p.table.Local(name, f)
	if !ok {
		return nil, false
	}
	return p.TypeOf(decl), true
}
