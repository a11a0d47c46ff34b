package parser

import (
	"fmt"
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/ilerr"
	"github.com/cottand/tip/internal/log"
	"go/token"
)

var logger = log.DefaultLogger.With("section", "parser")

// Parse parses a whole TIP program. The file is added to fset so that
// positions of the returned nodes and errors can be resolved.
//
// Parsing stops at the first syntax error, in which case the returned
// Program is nil.
func Parse(fset *token.FileSet, filename, src string) (prog *ast.Program, errs *ilerr.Errors) {
	file := fset.AddFile(filename, -1, len(src))
	file.SetLinesForContent([]byte(src))
	p := &parser{
		file: file,
		lex:  newLexer(src),
		ids:  &ast.IDs{},
	}
	p.advance()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		logger.Debug("parse failed", "file", filename, "err", p.err)
		prog, errs = nil, errs.With(p.err)
	}()

	prog = p.program()
	logger.Debug("parsed program", "file", filename, "functions", len(prog.Functions))
	return prog, nil
}

// bailout is panicked with to unwind the parser on the first error
type bailout struct{}

type parser struct {
	file *token.File
	lex  *lexer
	ids  *ast.IDs

	tok lexeme
	// ahead holds tokens read by peek but not yet consumed
	ahead []lexeme
	// prevEnd is the end offset of the last consumed token
	prevEnd int

	err ilerr.TipError
}

func (p *parser) advance() {
	p.prevEnd = p.tok.end
	if len(p.ahead) > 0 {
		p.tok, p.ahead = p.ahead[0], p.ahead[1:]
		return
	}
	p.tok = p.lex.Next()
}

// peek returns the token n positions after the current one
func (p *parser) peek(n int) lexeme {
	for len(p.ahead) < n {
		p.ahead = append(p.ahead, p.lex.Next())
	}
	return p.ahead[n-1]
}

func (p *parser) failAt(at lexeme, msg, hint string) {
	p.err = ilerr.New(ilerr.NewParse{
		Positioner:    ast.Range{PosStart: p.file.Pos(at.start), PosEnd: p.file.Pos(at.end)},
		ParserMessage: msg,
		Hint:          hint,
	})
	panic(bailout{})
}

func (p *parser) unexpected(expected string) {
	if p.tok.kind == tIllegal && p.tok.text == "/*" {
		p.failAt(p.tok, "comment not terminated", "")
	}
	p.failAt(p.tok, fmt.Sprintf("expected %s, found %v", expected, p.tok), "")
}

func (p *parser) expect(kind tokenKind) lexeme {
	tok := p.tok
	if tok.kind != kind {
		p.unexpected("'" + kind.String() + "'")
	}
	p.advance()
	return tok
}

// meta gives a fresh node the range from start to the end of the last consumed token
func (p *parser) meta(start int) ast.Meta {
	return ast.Meta{
		Range:  ast.Range{PosStart: p.file.Pos(start), PosEnd: p.file.Pos(p.prevEnd)},
		NodeID: p.ids.Next(),
	}
}

func (p *parser) program() *ast.Program {
	start := p.tok.start
	var functions []*ast.Function
	for p.tok.kind != tEOF {
		functions = append(functions, p.function())
	}
	if len(functions) == 0 {
		p.failAt(p.tok, "expected a function", "a program is one or more functions")
	}
	return &ast.Program{Meta: p.meta(start), Functions: functions}
}

func (p *parser) decl() *ast.Decl {
	name := p.expect(tIdent)
	return &ast.Decl{Meta: p.meta(name.start), Name: name.text}
}

// declList parses `decl (, decl)*`
func (p *parser) declList() []*ast.Decl {
	decls := []*ast.Decl{p.decl()}
	for p.tok.kind == tComma {
		p.advance()
		decls = append(decls, p.decl())
	}
	return decls
}

func (p *parser) function() *ast.Function {
	start := p.tok.start
	decl := p.decl()

	p.expect(tLParen)
	var formals []*ast.Decl
	if p.tok.kind != tRParen {
		formals = p.declList()
	}
	p.expect(tRParen)
	poly := p.tok.kind == tPoly
	if poly {
		p.advance()
	}

	p.expect(tLBrace)
	var locals []*ast.Decl
	for p.tok.kind == tVar {
		p.advance()
		locals = append(locals, p.declList()...)
		p.expect(tSemi)
	}

	var body []ast.Stmt
	for p.tok.kind != tReturn {
		if p.tok.kind == tRBrace || p.tok.kind == tEOF {
			p.failAt(p.tok, fmt.Sprintf("missing return statement in function '%s'", decl.Name),
				"a function body ends with 'return E;'")
		}
		body = append(body, p.stmt())
	}
	p.expect(tReturn)
	ret := p.expr()
	p.expect(tSemi)
	p.expect(tRBrace)

	return &ast.Function{
		Meta:    p.meta(start),
		Decl:    decl,
		Poly:    poly,
		Formals: formals,
		Locals:  locals,
		Body:    body,
		Return:  ret,
	}
}

func (p *parser) stmt() ast.Stmt {
	start := p.tok.start
	switch p.tok.kind {
	case tLBrace:
		// `{f: ...}.f = x;` starts like a block
		if !(p.peek(1).kind == tIdent && p.peek(2).kind == tColon) {
			return p.block()
		}
	case tIf:
		p.advance()
		p.expect(tLParen)
		cond := p.expr()
		p.expect(tRParen)
		then := p.stmt()
		var els ast.Stmt
		if p.tok.kind == tElse {
			p.advance()
			els = p.stmt()
		}
		return &ast.If{Meta: p.meta(start), Cond: cond, Then: then, Else: els}
	case tWhile:
		p.advance()
		p.expect(tLParen)
		cond := p.expr()
		p.expect(tRParen)
		body := p.stmt()
		return &ast.While{Meta: p.meta(start), Cond: cond, Body: body}
	case tOutput:
		p.advance()
		arg := p.expr()
		p.expect(tSemi)
		return &ast.Output{Meta: p.meta(start), Arg: arg}
	case tError:
		p.advance()
		arg := p.expr()
		p.expect(tSemi)
		return &ast.Error{Meta: p.meta(start), Arg: arg}
	case tFor:
		return p.forStmt()
	}

	target := p.expr()
	switch p.tok.kind {
	case tAssign:
		p.advance()
		rhs := p.expr()
		p.expect(tSemi)
		return &ast.Assign{Meta: p.meta(start), LHS: target, RHS: rhs}
	case tIncr:
		p.advance()
		p.expect(tSemi)
		return &ast.Incr{Meta: p.meta(start), Target: target}
	case tDecr:
		p.advance()
		p.expect(tSemi)
		return &ast.Decr{Meta: p.meta(start), Target: target}
	default:
		p.unexpected("'=', '++' or '--'")
		return nil
	}
}

func (p *parser) block() *ast.Block {
	start := p.expect(tLBrace).start
	var stmts []ast.Stmt
	for p.tok.kind != tRBrace {
		if p.tok.kind == tEOF {
			p.unexpected("'}'")
		}
		stmts = append(stmts, p.stmt())
	}
	p.advance()
	return &ast.Block{Meta: p.meta(start), Stmts: stmts}
}

// forStmt parses both `for (E : E) S` and `for (E : E .. E [by E]) S`
func (p *parser) forStmt() ast.Stmt {
	start := p.expect(tFor).start
	p.expect(tLParen)
	elem := p.expr()
	p.expect(tColon)
	first := p.expr()

	if p.tok.kind != tDotDot {
		p.expect(tRParen)
		body := p.stmt()
		return &ast.ForEach{Meta: p.meta(start), Elem: elem, Iterable: first, Body: body}
	}
	p.advance()
	hi := p.expr()
	var step ast.Expr
	if p.tok.kind == tBy {
		p.advance()
		step = p.expr()
	}
	p.expect(tRParen)
	body := p.stmt()
	return &ast.ForRange{Meta: p.meta(start), Elem: elem, Lo: first, Hi: hi, Step: step, Body: body}
}

func (p *parser) expr() ast.Expr {
	return p.ternary()
}

func (p *parser) ternary() ast.Expr {
	start := p.tok.start
	cond := p.binary(lowestPrec)
	if p.tok.kind != tQuestion {
		return cond
	}
	p.advance()
	then := p.ternary()
	p.expect(tColon)
	els := p.ternary()
	return &ast.Ternary{Meta: p.meta(start), Cond: cond, Then: then, Else: els}
}

type binaryOp struct {
	op   ast.BinOp
	prec int
}

const lowestPrec = 1

var binaryOps = map[tokenKind]binaryOp{
	tOr:      {ast.Or, 1},
	tAnd:     {ast.And, 2},
	tEq:      {ast.Eq, 3},
	tNe:      {ast.Ne, 3},
	tGt:      {ast.Gt, 4},
	tGe:      {ast.Ge, 4},
	tLt:      {ast.Lt, 4},
	tLe:      {ast.Le, 4},
	tPlus:    {ast.Add, 5},
	tMinus:   {ast.Sub, 5},
	tStar:    {ast.Mul, 6},
	tSlash:   {ast.Div, 6},
	tPercent: {ast.Mod, 6},
}

// binary parses left-associative binary operations binding at least as tight as minPrec
func (p *parser) binary(minPrec int) ast.Expr {
	start := p.tok.start
	left := p.unary()
	for {
		op, ok := binaryOps[p.tok.kind]
		if !ok || op.prec < minPrec {
			return left
		}
		p.advance()
		right := p.binary(op.prec + 1)
		left = &ast.Binary{Meta: p.meta(start), Op: op.op, Left: left, Right: right}
	}
}

func (p *parser) unary() ast.Expr {
	start := p.tok.start
	switch p.tok.kind {
	case tNot:
		p.advance()
		operand := p.unary()
		return &ast.Not{Meta: p.meta(start), Operand: operand}
	case tMinus:
		p.advance()
		operand := p.unary()
		return &ast.Neg{Meta: p.meta(start), Operand: operand}
	case tStar:
		p.advance()
		ptr := p.unary()
		return &ast.Deref{Meta: p.meta(start), Ptr: ptr}
	case tAmp:
		p.advance()
		operand := p.unary()
		return &ast.AddrOf{Meta: p.meta(start), Operand: operand}
	case tHash:
		p.advance()
		array := p.unary()
		return &ast.Len{Meta: p.meta(start), Array: array}
	case tAlloc:
		p.advance()
		init := p.unary()
		return &ast.Alloc{Meta: p.meta(start), Init: init}
	default:
		return p.postfix()
	}
}

func (p *parser) postfix() ast.Expr {
	start := p.tok.start
	e := p.primary()
	for {
		switch p.tok.kind {
		case tLParen:
			p.advance()
			var args []ast.Expr
			if p.tok.kind != tRParen {
				args = p.exprList()
			}
			p.expect(tRParen)
			e = &ast.Call{Meta: p.meta(start), Func: e, Args: args}
		case tDot:
			p.advance()
			field := p.expect(tIdent)
			e = &ast.Access{Meta: p.meta(start), Record: e, Field: field.text}
		case tLBracket:
			p.advance()
			index := p.expr()
			p.expect(tRBracket)
			e = &ast.Index{Meta: p.meta(start), Array: e, Index: index}
		default:
			return e
		}
	}
}

func (p *parser) exprList() []ast.Expr {
	exprs := []ast.Expr{p.expr()}
	for p.tok.kind == tComma {
		p.advance()
		exprs = append(exprs, p.expr())
	}
	return exprs
}

func (p *parser) primary() ast.Expr {
	tok := p.tok
	switch tok.kind {
	case tInt:
		p.advance()
		return &ast.IntLit{Meta: p.meta(tok.start), Syntax: tok.text}
	case tTrue, tFalse:
		p.advance()
		return &ast.BoolLit{Meta: p.meta(tok.start), Value: tok.kind == tTrue}
	case tInput:
		p.advance()
		return &ast.Input{Meta: p.meta(tok.start)}
	case tNull:
		p.advance()
		return &ast.Null{Meta: p.meta(tok.start)}
	case tIdent:
		p.advance()
		return &ast.Var{Meta: p.meta(tok.start), Name: tok.text}
	case tLParen:
		p.advance()
		e := p.expr()
		p.expect(tRParen)
		return e
	case tLBrace:
		return p.record()
	case tLBracket:
		return p.array()
	default:
		p.unexpected("an expression")
		return nil
	}
}

func (p *parser) record() *ast.RecordLit {
	start := p.expect(tLBrace).start
	var fields []*ast.FieldInit
	for p.tok.kind != tRBrace {
		if len(fields) > 0 {
			p.expect(tComma)
		}
		name := p.expect(tIdent)
		p.expect(tColon)
		value := p.expr()
		fields = append(fields, &ast.FieldInit{Meta: p.meta(name.start), Name: name.text, Value: value})
	}
	p.advance()
	return &ast.RecordLit{Meta: p.meta(start), Fields: fields}
}

// array parses `[]`, `[E, ..., E]` and `[E of E]`
func (p *parser) array() ast.Expr {
	start := p.expect(tLBracket).start
	if p.tok.kind == tRBracket {
		p.advance()
		return &ast.ArrayLit{Meta: p.meta(start)}
	}
	first := p.expr()
	if p.tok.kind == tOf {
		p.advance()
		elem := p.expr()
		p.expect(tRBracket)
		return &ast.ArrayOf{Meta: p.meta(start), Count: first, Elem: elem}
	}
	elems := []ast.Expr{first}
	for p.tok.kind == tComma {
		p.advance()
		elems = append(elems, p.expr())
	}
	p.expect(tRBracket)
	return &ast.ArrayLit{Meta: p.meta(start), Elems: elems}
}
