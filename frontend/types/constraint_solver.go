package types

import (
	"fmt"
	"github.com/cottand/tip/internal/log"
	"github.com/hashicorp/go-set/v3"
	"log/slog"
)

var unifyLogger = log.DefaultLogger.With("section", "unify")

// UnifyError is the first constraint which could not be solved.
// First and Second are the conflicting terms, expanded with what was known
// when unification failed.
type UnifyError struct {
	First, Second Type
	Constraint    Constraint
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify '%v' with '%v' (solving %v)", e.First, e.Second, e.Constraint)
}

// Unifier solves equality constraints with union-find over type variables.
//
// Each equivalence class of variables has at most one concrete representative,
// stored at the class root. There is no occurs check: a variable may be bound
// to a term containing it, which is how recursive types arise.
//
// A Unifier is not safe for concurrent use while solving. Once Solve returns,
// Inferred and TypeOf only read its state.
type Unifier struct {
	constraints []Constraint

	parent map[VarID]VarID
	rank   map[VarID]int
	// vars keeps the first *Var seen for every ID, used as the class representative when printing
	vars map[VarID]*Var
	// bound maps a class root to its concrete representative
	bound map[VarID]Type

	// unified holds the constructor pairs which have been (or are being) unified,
	// so that unifying cyclic terms terminates
	unified *set.Set[typePair]

	current Constraint
	logger  *slog.Logger
}

func NewUnifier(constraints []Constraint) *Unifier {
	return &Unifier{
		constraints: constraints,
		parent:      make(map[VarID]VarID),
		rank:        make(map[VarID]int),
		vars:        make(map[VarID]*Var),
		bound:       make(map[VarID]Type),
		unified:     set.New[typePair](len(constraints)),
		logger:      unifyLogger,
	}
}

// Solve unifies every constraint in order and stops at the first one that fails,
// returning a *UnifyError.
func (u *Unifier) Solve() error {
	u.logger.Debug("solving constraints", "count", len(u.constraints))
	for _, c := range u.constraints {
		u.current = c
		u.logger.Debug("unify", "constraint", c)
		if err := u.unify(c.Left, c.Right); err != nil {
			u.logger.Debug("unification failed", "err", err)
			return err
		}
	}
	u.current = Constraint{}
	return nil
}

// Unify adds a single constraint a = b to the solved state.
func (u *Unifier) Unify(a, b Type) error {
	u.current = Constraint{Left: a, Right: b}
	defer func() { u.current = Constraint{} }()
	return u.unify(a, b)
}

func (u *Unifier) register(v *Var) VarID {
	if _, ok := u.parent[v.ID]; !ok {
		u.parent[v.ID] = v.ID
		u.vars[v.ID] = v
	}
	return v.ID
}

// find returns the root of id's class, compressing the path to it
func (u *Unifier) find(id VarID) VarID {
	root := id
	for {
		next := u.parent[root]
		if next == root {
			break
		}
		root = next
	}
	for id != root {
		next := u.parent[id]
		u.parent[id] = root
		id = next
	}
	return root
}

// rootOf is find without path compression, for read-only queries
func (u *Unifier) rootOf(id VarID) VarID {
	for {
		next, ok := u.parent[id]
		if !ok || next == id {
			return id
		}
		id = next
	}
}

// union merges the classes rooted at a and b and returns the new root
func (u *Unifier) union(a, b VarID) VarID {
	if u.rank[a] < u.rank[b] {
		a, b = b, a
	}
	u.parent[b] = a
	if u.rank[a] == u.rank[b] {
		u.rank[a]++
	}
	return a
}

func (u *Unifier) unify(a, b Type) error {
	va, aIsVar := a.(*Var)
	vb, bIsVar := b.(*Var)
	switch {
	case aIsVar && bIsVar:
		ra, rb := u.find(u.register(va)), u.find(u.register(vb))
		if ra == rb {
			return nil
		}
		ta, tb := u.bound[ra], u.bound[rb]
		root := u.union(ra, rb)
		delete(u.bound, ra)
		delete(u.bound, rb)
		switch {
		case ta == nil && tb == nil:
			return nil
		case ta == nil:
			u.bound[root] = tb
			return nil
		case tb == nil:
			u.bound[root] = ta
			return nil
		default:
			u.bound[root] = ta
			return u.unifyConstructors(ta, tb)
		}
	case aIsVar:
		root := u.find(u.register(va))
		if bound, ok := u.bound[root]; ok {
			return u.unifyConstructors(bound, b)
		}
		u.bound[root] = b
		return nil
	case bIsVar:
		root := u.find(u.register(vb))
		if bound, ok := u.bound[root]; ok {
			return u.unifyConstructors(a, bound)
		}
		u.bound[root] = a
		return nil
	default:
		return u.unifyConstructors(a, b)
	}
}

func (u *Unifier) unifyConstructors(a, b Type) error {
	if a == b {
		return nil
	}
	_, aAbsent := a.(*Absent)
	_, bAbsent := b.(*Absent)
	if aAbsent || bAbsent {
		if aAbsent && bAbsent {
			return nil
		}
		return u.mismatch(a, b)
	}
	if a.Cons() != b.Cons() || a.Arity() != b.Arity() {
		return u.mismatch(a, b)
	}
	if ra, ok := a.(*Record); ok && !sameNames(ra.Names, b.(*Record).Names) {
		return u.mismatch(a, b)
	}
	if u.unified.Contains(typePair{b, a}) || !u.unified.Insert(typePair{a, b}) {
		return nil
	}
	aArgs, bArgs := a.Args(), b.Args()
	for i := range aArgs {
		if err := u.unify(aArgs[i], bArgs[i]); err != nil {
			// a failed pair must fail again when unified later
			u.unified.Remove(typePair{a, b})
			return err
		}
	}
	return nil
}

func (u *Unifier) mismatch(a, b Type) error {
	return &UnifyError{
		First:      u.Inferred(a),
		Second:     u.Inferred(b),
		Constraint: u.current,
	}
}

// Inferred expands t with everything the unifier knows: variables are replaced by
// the concrete representative of their class, recursively.
//
// A class seen a second time during the same expansion is not expanded again;
// the node built the first time is reused instead, so recursive types come out as
// cyclic values. Classes with no concrete representative expand to the
// representative *Var of the class.
func (u *Unifier) Inferred(t Type) Type {
	x := &expander{u: u, done: make(map[VarID]Type)}
	return x.expand(t)
}

// TypeOf is Inferred for the type variable [[n]] of an AST node or declaration.
func (u *Unifier) TypeOf(v *Var) Type {
	return u.Inferred(v)
}

type expander struct {
	u    *Unifier
	done map[VarID]Type
}

func (x *expander) expand(t Type) Type {
	switch t := t.(type) {
	case *Var:
		root := x.u.rootOf(t.ID)
		if built, ok := x.done[root]; ok {
			return built
		}
		bound, ok := x.u.bound[root]
		if !ok {
			rep := x.u.vars[root]
			if rep == nil {
				rep = t
			}
			x.done[root] = rep
			return rep
		}
		cons := bound.(constructor)
		shell := cons.shell()
		x.done[root] = shell
		x.fill(shell, cons)
		return shell
	case constructor:
		shell := t.shell()
		x.fill(shell, t)
		return shell
	default:
		panic(fmt.Sprintf("unexpected type %T", t))
	}
}

func (x *expander) fill(shell, from constructor) {
	for i, arg := range from.Args() {
		shell.setArg(i, x.expand(arg))
	}
}

// IsAlpha reports whether t, as returned by Unifier.Inferred, is still an
// unconstrained type variable, meaning the program is polymorphic at that point.
func IsAlpha(t Type) bool {
	_, isVar := t.(*Var)
	return isVar
}
