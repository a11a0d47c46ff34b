package types

import "github.com/hashicorp/go-set/v3"

// typePair is an ordered pair of type nodes, compared by node identity
type typePair struct {
	fst, snd Type
}

// Equal reports whether a and b denote the same type.
//
// Variables are equal when their IDs are. Constructors are compared
// structurally; a pair of nodes already under comparison is assumed equal,
// so that cyclic types compare equal when they unfold to the same infinite tree.
func Equal(a, b Type) bool {
	return (&comparer{assumed: set.New[typePair](0)}).equal(a, b)
}

type comparer struct {
	assumed *set.Set[typePair]
}

func (c *comparer) equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	if va, ok := a.(*Var); ok {
		vb, ok := b.(*Var)
		return ok && va.ID == vb.ID
	}
	if a.Cons() != b.Cons() || a.Arity() != b.Arity() {
		return false
	}
	if ra, ok := a.(*Record); ok && !sameNames(ra.Names, b.(*Record).Names) {
		return false
	}
	if !c.assumed.Insert(typePair{a, b}) {
		return true
	}
	aArgs, bArgs := a.Args(), b.Args()
	for i := range aArgs {
		if !c.equal(aArgs[i], bArgs[i]) {
			return false
		}
	}
	return true
}
