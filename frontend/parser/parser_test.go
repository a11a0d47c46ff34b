package parser

import (
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/ilerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go/token"
	"testing"
)

func testParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := Parse(token.NewFileSet(), "test.tip", src)
	require.False(t, errs.HasError(), "unexpected errors: %v", errs)
	require.NotNil(t, prog)
	return prog
}

func testParseFails(t *testing.T, src string) ilerr.TipError {
	t.Helper()
	prog, errs := Parse(token.NewFileSet(), "test.tip", src)
	require.True(t, errs.HasError(), "expected %q not to parse", src)
	assert.Nil(t, prog)
	assert.Equal(t, ilerr.Parse, errs.First().Code())
	return errs.First()
}

// testReturn parses `main() { var ...; return <expr>; }` and prints the returned expression
func testReturn(t *testing.T, expr string) string {
	t.Helper()
	prog := testParse(t, "main() { var a,b,c,d,e,x,y,z; return "+expr+"; }")
	return ast.ExprString(prog.Functions[0].Return)
}

func TestFunctionShape(t *testing.T) {
	prog := testParse(t, `
		foo(p, q) {
			var x, y;
			var z;
			x = p;
			return x;
		}
		main() { return foo(1, 2); }
	`)
	require.Len(t, prog.Functions, 2)
	foo := prog.Functions[0]
	assert.Equal(t, "foo", foo.Name())
	assert.Equal(t, []string{"p", "q"}, names(foo.Formals))
	assert.Equal(t, []string{"x", "y", "z"}, names(foo.Locals))
	require.Len(t, foo.Body, 1)
	assert.IsType(t, &ast.Assign{}, foo.Body[0])
	assert.Equal(t, "x", ast.ExprString(foo.Return))

	main := prog.Functions[1]
	assert.Empty(t, main.Formals)
	assert.Empty(t, main.Locals)
	assert.Equal(t, "foo(1,2)", ast.ExprString(main.Return))
}

func TestPolyFunctions(t *testing.T) {
	prog := testParse(t, `
		poly_id(x) poly { return x; }
		main() { return poly_id(1); }
	`)
	assert.True(t, prog.Functions[0].Poly)
	assert.False(t, prog.Functions[1].Poly)
	assert.Equal(t, "poly_id(x) poly", ast.NodeString(prog.Functions[0]))
	assert.Equal(t, "main()", ast.NodeString(prog.Functions[1]))

	testParseFails(t, `f(x) poly poly { return x; }`)
	testParseFails(t, `f(x) { var poly; return x; }`)
}

func names(decls []*ast.Decl) []string {
	var ns []string
	for _, d := range decls {
		ns = append(ns, d.Name)
	}
	return ns
}

func TestPrecedence(t *testing.T) {
	cases := map[string]string{
		"x or y and z":             "(x or (y and z))",
		"not x or not y":           "((not x) or (not y))",
		"not x and not y":          "((not x) and (not y))",
		"-x + -y - -z":             "(((-x)+(-y))-(-z))",
		"-x * -y / -z":             "(((-x)*(-y))/(-z))",
		"-x % -y":                  "((-x)%(-y))",
		"a * b % c / d":            "(((a*b)%c)/d)",
		"1 + 2 % 3":                "(1+(2%3))",
		"a ? b ? c : d : e":        "(a ? (b ? c : d) : e)",
		"a ? b : c ? d : e":        "(a ? b : (c ? d : e))",
		"x + 1 > y == true":        "(((x+1)>y)==true)",
		"x <= y and y >= z":        "((x<=y) and (y>=z))",
		"*p.f":                     "(*p.f)",
		"(*p).f":                   "(*p).f",
		"&x":                       "&x",
		"alloc 1 + 2":              "(alloc 1+2)",
		"#a + 1":                   "(#a+1)",
		"a[1][2]":                  "a[1][2]",
		"f(1)(2)":                  "f(1)(2)",
		"- - -y":                   "(-(-(-y)))",
		"{f: 1, g: {h: 2}}.g.h":    "{f:1,g:{h:2}}.g.h",
		"[[1 of 2], [3, 4], []]":   "[[1 of 2],[3,4],[]]",
		"[3 of [1, 2]]":            "[3 of [1,2]]",
		"x != null":                "(x!=null)",
		"input":                    "input",
	}
	for src, expected := range cases {
		assert.Equal(t, expected, testReturn(t, src), "parsing %q", src)
	}
}

func TestStatements(t *testing.T) {
	prog := testParse(t, `
		stmts(a) {
			var x, y, z, r;
			x = 0;
			*y = 1;
			{f: 0, g: 1}.f = x;
			if (x > 1) output x; else { error x; }
			if (x == 1) x++;
			while (x < 10) { x = x + 1; y--; }
			for (z : a) { r = r + z; }
			for (z : 0 .. 10) r = r + z;
			for (z : 0 .. y by 2) {}
			return r;
		}
	`)
	body := prog.Functions[0].Body
	require.Len(t, body, 9)

	var shapes []string
	for _, s := range body {
		shapes = append(shapes, ast.NodeString(s))
	}
	assert.Equal(t, []string{
		"x = 0",
		"(*y) = 1",
		"{f:0,g:1}.f = x",
		"if ((x>1))",
		"if ((x==1))",
		"while ((x<10))",
		"for (z : a)",
		"for (z : 0 .. 10)",
		"for (z : 0 .. y by 2)",
	}, shapes)

	ifElse := body[3].(*ast.If)
	assert.IsType(t, &ast.Output{}, ifElse.Then)
	assert.IsType(t, &ast.Block{}, ifElse.Else)
	assert.Nil(t, body[4].(*ast.If).Else)
	assert.IsType(t, &ast.Incr{}, body[4].(*ast.If).Then)

	loop := body[5].(*ast.While).Body.(*ast.Block)
	assert.IsType(t, &ast.Decr{}, loop.Stmts[1])

	assert.Nil(t, body[7].(*ast.ForRange).Step)
	assert.Equal(t, "2", ast.ExprString(body[8].(*ast.ForRange).Step))
	assert.Empty(t, body[8].(*ast.ForRange).Body.(*ast.Block).Stmts)
}

func TestComments(t *testing.T) {
	prog := testParse(t, `
		// line comment
		main() { /* block
		comment */ var x; x = 1; // trailing
		return x; }
	`)
	assert.Len(t, prog.Functions[0].Body, 1)
}

func TestNodeIDsAreUnique(t *testing.T) {
	prog := testParse(t, `
		foo(p) { var x; x = {f: p, g: [1, 2]}; return x.f; }
		main() { var y; y = foo(alloc 3); return 0; }
	`)
	seen := map[ast.NodeID]ast.Node{}
	ast.Inspect(prog, func(n ast.Node) bool {
		assert.NotEqual(t, ast.NoID, n.ID(), "node %s has no ID", ast.NodeString(n))
		if other, dup := seen[n.ID()]; dup {
			t.Errorf("nodes %s and %s share ID %v", ast.NodeString(other), ast.NodeString(n), n.ID())
		}
		seen[n.ID()] = n
		return true
	})
}

func TestPositions(t *testing.T) {
	fset := token.NewFileSet()
	prog, errs := Parse(fset, "pos.tip", "main() {\n  var x;\n  x = 1 + 2;\n  return x;\n}\n")
	require.Nil(t, errs)

	assign := prog.Functions[0].Body[0].(*ast.Assign)
	start, end := fset.Position(assign.Pos()), fset.Position(assign.End())
	assert.Equal(t, 3, start.Line)
	assert.Equal(t, 3, start.Column)
	assert.Equal(t, 3, end.Line)
	assert.Equal(t, 13, end.Column)

	sum := assign.RHS.(*ast.Binary)
	assert.Equal(t, 7, fset.Position(sum.Pos()).Column)
	assert.Equal(t, 12, fset.Position(sum.End()).Column)
}

func TestSyntaxErrors(t *testing.T) {
	bad := []string{
		``,
		`main() { var x; x = true false; return x; }`,
		`main() { var x,y,z; x = y and or z; return x; }`,
		`main() { var x,y,z,a; a = [x, y,, z]; return a; }`,
		`main() { var x,y,z,a; a = [x, y z]; return a; }`,
		`main() { var x,y,a; a = [x y]; return a; }`,
		`main() { var x,y,z,a; a = [x, y, z]; return a[]; }`,
		`main() { var x,y,z; z = x % % y; return z; }`,
		`main() { var x,y,z; return x y : z; }`,
		`main() { var x,y,z; return x ? y z; }`,
		`main() { var x; return x+; }`,
		`main() { var x; return x-; }`,
		`main() { var x; return x+++; }`,
		`main() { var x; return x---; }`,
		`main() { var x, i; for (i : [1, 2, 3]); return x; }`,
		`main() { var i,x; for (i 0 .. 10 by 2) { x = x + i; } return x; }`,
		`main() { var i,x; for (i : 0 10 by 2) { x = x + i; } return x; }`,
		`main() { var i,x; for (i : 0 .. 10 by) { x = x + i; } return x; }`,
		`main() { var i,x; for (i : 0 .. 10); return x; }`,
		`main() { var x; x = 1; }`,
		`main() { var x; x = {f: 1,}; return x; }`,
		`main() { var x; x = 1 /* never closed`,
		`main() { var x; x = 1 ! 2; return x; }`,
		`main() { var x; x; return x; }`,
	}
	for _, src := range bad {
		t.Run(src, func(t *testing.T) {
			testParseFails(t, src)
		})
	}
}

func TestSyntaxErrorMessages(t *testing.T) {
	err := testParseFails(t, `main() { var x; x = 1; }`)
	assert.Contains(t, err.Error(), "missing return statement in function 'main'")

	err = testParseFails(t, `main() { var x; x = [1 2]; return x; }`)
	assert.Equal(t, "expected ']', found number '2'", err.Error())

	err = testParseFails(t, "main() { return 1; } /* open")
	assert.Equal(t, "comment not terminated", err.Error())

	fset := token.NewFileSet()
	_, errs := Parse(fset, "where.tip", "main() {\n  return 1 +;\n}")
	require.True(t, errs.HasError())
	assert.Equal(t, "where.tip:2:13: (E002) expected an expression, found ';'",
		ilerr.FormatWithCodeAndSource(errs.First(), fset))
}
