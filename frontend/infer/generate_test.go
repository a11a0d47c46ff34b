package infer

import (
	"errors"
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/parser"
	"github.com/cottand/tip/frontend/symbols"
	"github.com/cottand/tip/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go/token"
	"testing"
)

type solved struct {
	prog        *ast.Program
	table       *symbols.Table
	constraints []types.Constraint
	unifier     *types.Unifier
}

func testGenerate(t *testing.T, src string) *solved {
	t.Helper()
	prog, errs := parser.Parse(token.NewFileSet(), "test.tip", src)
	require.False(t, errs.HasError(), "parse errors: %v", errs)
	table, errs := symbols.Build(prog)
	require.False(t, errs.HasError(), "symbol errors: %v", errs)
	cs := Generate(prog, table, DefaultSettings())
	return &solved{prog: prog, table: table, constraints: cs, unifier: types.NewUnifier(cs)}
}

func testSolve(t *testing.T, src string) *solved {
	t.Helper()
	s := testGenerate(t, src)
	require.NoError(t, s.unifier.Solve())
	return s
}

func testSolveFails(t *testing.T, src string) *types.UnifyError {
	t.Helper()
	s := testGenerate(t, src)
	err := s.unifier.Solve()
	require.Error(t, err)
	var unifyErr *types.UnifyError
	require.True(t, errors.As(err, &unifyErr))
	return unifyErr
}

// typeOf looks up "fn" for a function, or "fn.x" for a formal or local of fn
func (s *solved) typeOf(t *testing.T, name string) types.Type {
	t.Helper()
	fnName, local := name, ""
	for i := range name {
		if name[i] == '.' {
			fnName, local = name[:i], name[i+1:]
			break
		}
	}
	fn, ok := s.prog.Function(fnName)
	require.True(t, ok, "no function %s", fnName)
	decl := fn.Decl
	if local != "" {
		decl, ok = s.table.Local(local, fn.Decl)
		require.True(t, ok, "no local %s in %s", local, fnName)
	}
	return s.unifier.TypeOf(types.NewTermVar(decl))
}

func (s *solved) assertTypes(t *testing.T, expected map[string]string) {
	t.Helper()
	for name, typ := range expected {
		assert.Equal(t, typ, s.typeOf(t, name).String(), "type of %s", name)
	}
}

func constraintStrings(cs []types.Constraint) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

func assertConflict(t *testing.T, err *types.UnifyError, fst, snd string) {
	t.Helper()
	assert.ElementsMatch(t, []string{fst, snd}, []string{err.First.String(), err.Second.String()})
}

func TestGeneratedConstraints(t *testing.T) {
	s := testGenerate(t, `deref(p) { return *p; }`)
	assert.Equal(t, []string{
		"[[p]] = ↑[[(*p)]]",
		"[[deref]] = ([[p]]) -> [[(*p)]]",
	}, constraintStrings(s.constraints))

	s = testGenerate(t, `main(x) { var p; p = null; return x; }`)
	assert.Equal(t, []string{
		"[[null]] = ↑α<null>",
		"[[p]] = [[null]]",
		"[[x]] = int",
		"[[x]] = int",
		"[[main]] = ([[x]]) -> [[x]]",
	}, constraintStrings(s.constraints))

	s = testGenerate(t, `get(r) { var x; x = {f: 1}; return r.g; }`)
	assert.Equal(t, []string{
		"[[1]] = int",
		"[[{f:1}]] = {f:[[1]],g:◇}",
		"[[x]] = [[{f:1}]]",
		"[[r]] = {f:α<r.g:f>,g:[[r.g]]}",
		"[[get]] = ([[r]]) -> [[r.g]]",
	}, constraintStrings(s.constraints))

	s = testGenerate(t, `len(a) { var b; b = [a, 2]; *b[0] = 1; return #b; }`)
	assert.Equal(t, []string{
		"[[2]] = int",
		"[[[a,2]]] = array[α<[a,2]>]",
		"[[[a,2]]] = array[[[a]]]",
		"[[[a,2]]] = array[[[2]]]",
		"[[b]] = [[[a,2]]]",
		"[[0]] = int",
		"[[b]] = array[[[b[0]]]]",
		"[[0]] = int",
		"[[b[0]]] = ↑[[(*b[0])]]",
		"[[1]] = int",
		"[[b[0]]] = ↑[[1]]",
		"[[b]] = array[α<b>]",
		"[[#b]] = int",
		"[[len]] = ([[a]]) -> [[#b]]",
	}, constraintStrings(s.constraints))
}

func TestConstraintSources(t *testing.T) {
	s := testGenerate(t, `main() { var x; x = 1 + 2; return x; }`)
	require.NotEmpty(t, s.constraints)
	for _, c := range s.constraints {
		assert.NotNil(t, c.Source, "constraint %v has no source", c)
	}
	last := s.constraints[len(s.constraints)-1]
	assert.IsType(t, &ast.Function{}, last.Source)
	assert.IsType(t, &ast.Binary{}, s.constraints[2].Source)
}

func TestEntryPointFromSettings(t *testing.T) {
	prog, _ := parser.Parse(token.NewFileSet(), "test.tip", `start(x) { return x; } main(y) { return y; }`)
	table, _ := symbols.Build(prog)

	cs := Generate(prog, table, Settings{EntryPoint: "start"})
	assert.Equal(t, []string{
		"[[x]] = int",
		"[[x]] = int",
		"[[start]] = ([[x]]) -> [[x]]",
		"[[main]] = ([[y]]) -> [[y]]",
	}, constraintStrings(cs))
}

func TestGenerateIsDeterministic(t *testing.T) {
	src := `
		foo(r) { var x; x = r.f + r.g; return {f: x, g: alloc null}; }
		main() { var a; a = [1 of foo({f: 1, g: 2})]; return #a; }
	`
	fst, snd := testGenerate(t, src), testGenerate(t, src)
	assert.Equal(t, constraintStrings(fst.constraints), constraintStrings(snd.constraints))

	// regenerating a single function reuses the same variables
	g := NewGenerator(fst.table, DefaultSettings())
	foo, _ := fst.prog.Function("foo")
	again := g.GenerateFunction(foo)
	once := g.GenerateFunction(foo)
	require.Equal(t, len(once), len(again))
	for i := range once {
		assert.True(t, types.Equal(once[i].Left, again[i].Left))
		assert.True(t, types.Equal(once[i].Right, again[i].Right))
	}
}

// Each field access gets its own alphas for the fields it does not read,
// so two accesses on the same record do not share them.
func TestFieldAccessAlphasArePerAccess(t *testing.T) {
	s := testGenerate(t, `get(r) { var x; x = r.f; return r.g; }`)
	var accessRecords []*types.Record
	for _, c := range s.constraints {
		if rec, ok := c.Right.(*types.Record); ok {
			accessRecords = append(accessRecords, rec)
		}
	}
	require.Len(t, accessRecords, 2)
	fstG, _ := accessRecords[0].Field("g")
	sndF, _ := accessRecords[1].Field("f")
	assert.True(t, types.IsAlpha(fstG))
	assert.True(t, types.IsAlpha(sndF))
	assert.Equal(t, "α<r.f:g>", fstG.String())
	assert.Equal(t, "α<r.g:f>", sndF.String())

	s = testSolve(t, `get(r) { var x; x = r.f; return r.g; }`)
	s.assertTypes(t, map[string]string{
		"get":   "({f:[[x]],g:α<r.f:g>}) -> α<r.f:g>",
		"get.x": "[[x]]",
	})
}

func TestScenarios(t *testing.T) {
	testSolve(t, `test() { var x, y; x = input; y = 3 + x; return y; }`).assertTypes(t, map[string]string{
		"test":   "() -> int",
		"test.x": "int",
		"test.y": "int",
	})

	s := testSolve(t, `deref(p) { return *p; }`)
	s.assertTypes(t, map[string]string{
		"deref":   "(↑[[(*p)]]) -> [[(*p)]]",
		"deref.p": "↑[[(*p)]]",
	})
	assert.True(t, types.IsAlpha(s.typeOf(t, "deref").(*types.Func).Ret))

	testSolve(t, `main() { var r; r = {f: 4, g: 13}; return r.g; }`).assertTypes(t, map[string]string{
		"main":   "() -> int",
		"main.r": "{f:int,g:int}",
	})

	testSolve(t, `foo() { var r1, r2; r1 = {f: 4, g: 13}; r2 = {n: alloc 3, f: 13}; return 0; }`).assertTypes(t, map[string]string{
		"foo.r1": "{f:int,g:int,n:◇}",
		"foo.r2": "{f:int,g:◇,n:↑int}",
	})

	err := testSolveFails(t, `main() { var x, p; x = 1; p = alloc true; *p = x; return 0; }`)
	assertConflict(t, err, "int", "boolean")
}

func TestPrograms(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		expected map[string]string
	}{
		{
			name: "alloc and deref",
			src:  `foo() { var x, y, z; x = input; y = alloc x; *y = x; z = *y; return z; }`,
			expected: map[string]string{
				"foo": "() -> int", "foo.x": "int", "foo.y": "↑int", "foo.z": "int",
			},
		},
		{
			name: "function values",
			src:  `foo(x) { return x + 1; } main() { var f, y; f = foo; y = f(3); return y; }`,
			expected: map[string]string{
				"foo": "(int) -> int", "main": "() -> int", "main.f": "(int) -> int",
			},
		},
		{
			name: "address of function",
			src:  `foo(x) { return x; } main() { var p; p = &foo; return (*p)(1); }`,
			expected: map[string]string{
				"foo": "(int) -> int", "main.p": "↑(int) -> int",
			},
		},
		{
			name: "if and relational operators",
			src:  `foo(x) { var y; if (x > 0) y = 1; else y = 2; return y; }`,
			expected: map[string]string{
				"foo": "(int) -> int",
			},
		},
		{
			name: "while",
			src:  `foo(n) { var i; i = 0; while (i < n) { i = i + 1; } return i; }`,
			expected: map[string]string{
				"foo": "(int) -> int",
			},
		},
		{
			name: "output and error",
			src:  `foo(x, y) { output x; error y; return true; }`,
			expected: map[string]string{
				"foo": "(int,int) -> boolean",
			},
		},
		{
			name: "identity is polymorphic",
			src:  `id(x) { return x; }`,
			expected: map[string]string{
				"id": "([[x]]) -> [[x]]",
			},
		},
		{
			name: "poly marker does not change inference",
			src:  `id(x) poly { return x; } main() { var y; y = id(1); return y; }`,
			expected: map[string]string{
				"id": "(int) -> int", "main.y": "int",
			},
		},
		{
			name: "equality unifies operands",
			src:  `eq(a, b) { return a == b; }`,
			expected: map[string]string{
				"eq": "([[a]],[[a]]) -> boolean",
			},
		},
		{
			name: "main takes and returns ints",
			src:  `main(a, b) { return a; }`,
			expected: map[string]string{
				"main": "(int,int) -> int",
			},
		},
		{
			name: "increment and decrement",
			src:  `f(x, y) { x++; y--; return x; }`,
			expected: map[string]string{
				"f": "(int,int) -> int",
			},
		},
		{
			name: "ternary",
			src:  `f(c, x) { return c ? x : 1; }`,
			expected: map[string]string{
				"f": "(boolean,int) -> int",
			},
		},
		{
			name: "booleans",
			src:  `f() { var b; b = not (1 > 2) and true or false; return b; }`,
			expected: map[string]string{
				"f": "() -> boolean", "f.b": "boolean",
			},
		},
		{
			name: "negation and modulo",
			src:  `f(x) { return -x % 2; }`,
			expected: map[string]string{
				"f": "(int) -> int",
			},
		},
		{
			name: "arrays",
			src:  `main() { var a, b, c, n; a = [1, 2, 3]; b = [3 of true]; c = []; n = #a + a[0]; return n; }`,
			expected: map[string]string{
				"main.a": "array[int]", "main.b": "array[boolean]", "main.c": "array[α<[]>]", "main.n": "int",
			},
		},
		{
			name: "nested arrays",
			src:  `f() { var x; x = [[1 of 2], [3, 4]]; return x[1][0]; }`,
			expected: map[string]string{
				"f": "() -> int", "f.x": "array[array[int]]",
			},
		},
		{
			name: "for each",
			src:  `sum(a) { var s, x; s = 0; for (x : a) { s = s + x; } return s; }`,
			expected: map[string]string{
				"sum": "(array[int]) -> int",
			},
		},
		{
			name: "for range",
			src:  `count(n) { var i, s; s = 0; for (i : 0 .. n by 1) s = s + i; return s; }`,
			expected: map[string]string{
				"count": "(int) -> int",
			},
		},
		{
			name: "field of unknown record",
			src:  `get(r) { return r.g; }`,
			expected: map[string]string{
				"get": "({g:[[r.g]]}) -> [[r.g]]",
			},
		},
		{
			name: "absent field read outside main",
			src:  `get() { var r; r = {f: 1}; return r.g; }`,
			expected: map[string]string{
				"get": "() -> ◇",
			},
		},
		{
			name: "global record",
			src: `
				mk() { return {a: 1, b: true}; }
				use() { var r; r = mk(); return r.b; }`,
			expected: map[string]string{
				"mk": "() -> {a:int,b:boolean}", "use": "() -> boolean",
			},
		},
		{
			name: "record field assignment",
			src:  `f() { var r; r = {x: 1, y: null}; r.y = alloc 2; return r; }`,
			expected: map[string]string{
				"f.r": "{x:int,y:↑int}",
			},
		},
		{
			name: "recursive function",
			src:  `fact(n) { var r; if (n == 0) r = 1; else r = n * fact(n - 1); return r; }`,
			expected: map[string]string{
				"fact": "(int) -> int",
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			testSolve(t, c.src).assertTypes(t, c.expected)
		})
	}
}

func TestRecursiveTypes(t *testing.T) {
	s := testSolve(t, `main() { var n, p; n = {v: 1, next: null}; p = alloc n; n.next = p; return 0; }`)
	s.assertTypes(t, map[string]string{
		"main.n": "μt0.{v:int,next:↑t0}",
		"main.p": "μt0.↑{v:int,next:t0}",
	})

	n := s.typeOf(t, "main.n").(*types.Record)
	next, _ := n.Field("next")
	assert.Same(t, n, next.(*types.Ref).Inner, "the expanded type must be cyclic")
	assert.True(t, types.Equal(s.typeOf(t, "main.p"), next))

	s = testSolve(t, `f(x) { x = alloc x; return x; }`)
	s.assertTypes(t, map[string]string{
		"f.x": "μt0.↑t0",
		"f":   "(μt0.↑t0) -> μt0.↑t0",
	})
}

func TestTypeErrors(t *testing.T) {
	cases := []struct {
		name     string
		src      string
		fst, snd string
	}{
		{"reassigned", `main() { var x; x = 1; x = true; return 0; }`, "int", "boolean"},
		{"ternary branches", `f(c) { return c ? 1 : false; }`, "int", "boolean"},
		{"condition", `f() { if (1) output 1; return 0; }`, "int", "boolean"},
		{"main returns bool", `main() { return true; }`, "boolean", "int"},
		{"absent field forced", `main() { var r; r = {f: 1}; return r.g; }`, "◇", "int"},
		{"deref an int", `f() { var x; x = 1; return *x; }`, "int", "↑[[(*x)]]"},
		{"index a record", `f() { var r; r = {a: 1}; return r[0]; }`, "{a:int}", "array[[[r[0]]]]"},
		{"logical on ints", `f() { return 1 and 2; }`, "int", "boolean"},
		{"range step", `f(b) { var i; for (i : 0 .. 10 by true) output i; return 0; }`, "boolean", "int"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assertConflict(t, testSolveFails(t, c.src), c.fst, c.snd)
		})
	}
}

func TestArityMismatch(t *testing.T) {
	err := testSolveFails(t, `f(x) { return x; } main() { return f(1, 2); }`)
	assert.Contains(t, []string{err.First.String(), err.Second.String()}, "([[x]]) -> [[x]]")
	assert.Equal(t, "[[f]] = ([[1]],[[2]]) -> [[f(1,2)]]", err.Constraint.String())
}
