package parser

import (
	"fmt"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tEOF tokenKind = iota
	tIllegal
	tIdent
	tInt

	// keywords
	tVar
	tReturn
	tIf
	tElse
	tWhile
	tFor
	tBy
	tOf
	tOutput
	tError
	tInput
	tAlloc
	tNull
	tTrue
	tFalse
	tAnd
	tOr
	tNot
	tPoly

	// punctuation
	tLParen
	tRParen
	tLBrace
	tRBrace
	tLBracket
	tRBracket
	tComma
	tSemi
	tColon
	tDot
	tDotDot
	tQuestion
	tAssign
	tEq
	tNe
	tGt
	tGe
	tLt
	tLe
	tPlus
	tMinus
	tStar
	tSlash
	tPercent
	tAmp
	tHash
	tIncr
	tDecr
)

var tokenNames = [...]string{
	tEOF:      "end of file",
	tIllegal:  "illegal character",
	tIdent:    "identifier",
	tInt:      "number",
	tVar:      "var",
	tReturn:   "return",
	tIf:       "if",
	tElse:     "else",
	tWhile:    "while",
	tFor:      "for",
	tBy:       "by",
	tOf:       "of",
	tOutput:   "output",
	tError:    "error",
	tInput:    "input",
	tAlloc:    "alloc",
	tNull:     "null",
	tTrue:     "true",
	tFalse:    "false",
	tAnd:      "and",
	tOr:       "or",
	tNot:      "not",
	tPoly:     "poly",
	tLParen:   "(",
	tRParen:   ")",
	tLBrace:   "{",
	tRBrace:   "}",
	tLBracket: "[",
	tRBracket: "]",
	tComma:    ",",
	tSemi:     ";",
	tColon:    ":",
	tDot:      ".",
	tDotDot:   "..",
	tQuestion: "?",
	tAssign:   "=",
	tEq:       "==",
	tNe:       "!=",
	tGt:       ">",
	tGe:       ">=",
	tLt:       "<",
	tLe:       "<=",
	tPlus:     "+",
	tMinus:    "-",
	tStar:     "*",
	tSlash:    "/",
	tPercent:  "%",
	tAmp:      "&",
	tHash:     "#",
	tIncr:     "++",
	tDecr:     "--",
}

func (k tokenKind) String() string { return tokenNames[k] }

var keywords = map[string]tokenKind{
	"var":    tVar,
	"return": tReturn,
	"if":     tIf,
	"else":   tElse,
	"while":  tWhile,
	"for":    tFor,
	"by":     tBy,
	"of":     tOf,
	"output": tOutput,
	"error":  tError,
	"input":  tInput,
	"alloc":  tAlloc,
	"null":   tNull,
	"true":   tTrue,
	"false":  tFalse,
	"and":    tAnd,
	"or":     tOr,
	"not":    tNot,
	"poly":   tPoly,
}

// lexeme is a token together with its byte offsets in the source
type lexeme struct {
	kind       tokenKind
	text       string
	start, end int
}

func (l lexeme) String() string {
	switch l.kind {
	case tIdent, tInt, tIllegal:
		return fmt.Sprintf("%s '%s'", l.kind, l.text)
	case tEOF:
		return l.kind.String()
	default:
		return "'" + l.kind.String() + "'"
	}
}

type lexer struct {
	src string
	// offset of ch
	pos int
	// offset after ch
	next int
	ch   rune
	// unterminated is the start of a block comment which is never closed, or -1
	unterminated int
}

func newLexer(src string) *lexer {
	l := &lexer{src: src, unterminated: -1}
	l.read()
	return l
}

func (l *lexer) read() {
	l.pos = l.next
	if l.next >= len(l.src) {
		l.ch = -1
		return
	}
	r, w := utf8.DecodeRuneInString(l.src[l.next:])
	l.ch = r
	l.next += w
}

func (l *lexer) peek() rune {
	if l.next >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.next:])
	return r
}

func (l *lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.read()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != -1 {
				l.read()
			}
		case l.ch == '/' && l.peek() == '*':
			start := l.pos
			l.read()
			l.read()
			for !(l.ch == '*' && l.peek() == '/') {
				if l.ch == -1 {
					l.unterminated = start
					return
				}
				l.read()
			}
			l.read()
			l.read()
		default:
			return
		}
	}
}

// twoChar returns double when the character after the current one is second
func (l *lexer) twoChar(second rune, double, single tokenKind) tokenKind {
	if l.peek() == second {
		l.read()
		return double
	}
	return single
}

func (l *lexer) Next() lexeme {
	l.skipTrivia()
	start := l.pos
	if l.unterminated >= 0 {
		l.pos, l.next = len(l.src), len(l.src)
		l.ch = -1
		return lexeme{kind: tIllegal, text: "/*", start: l.unterminated, end: len(l.src)}
	}
	if l.ch == -1 {
		return lexeme{kind: tEOF, start: start, end: start}
	}

	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.read()
		}
		text := l.src[start:l.pos]
		kind, isKeyword := keywords[text]
		if !isKeyword {
			kind = tIdent
		}
		return lexeme{kind: kind, text: text, start: start, end: l.pos}
	}
	if isDigit(l.ch) {
		for isDigit(l.ch) {
			l.read()
		}
		return lexeme{kind: tInt, text: l.src[start:l.pos], start: start, end: l.pos}
	}

	var kind tokenKind
	switch l.ch {
	case '(':
		kind = tLParen
	case ')':
		kind = tRParen
	case '{':
		kind = tLBrace
	case '}':
		kind = tRBrace
	case '[':
		kind = tLBracket
	case ']':
		kind = tRBracket
	case ',':
		kind = tComma
	case ';':
		kind = tSemi
	case ':':
		kind = tColon
	case '?':
		kind = tQuestion
	case '.':
		kind = l.twoChar('.', tDotDot, tDot)
	case '=':
		kind = l.twoChar('=', tEq, tAssign)
	case '!':
		kind = l.twoChar('=', tNe, tIllegal)
	case '>':
		kind = l.twoChar('=', tGe, tGt)
	case '<':
		kind = l.twoChar('=', tLe, tLt)
	case '+':
		kind = l.twoChar('+', tIncr, tPlus)
	case '-':
		kind = l.twoChar('-', tDecr, tMinus)
	case '*':
		kind = tStar
	case '/':
		kind = tSlash
	case '%':
		kind = tPercent
	case '&':
		kind = tAmp
	case '#':
		kind = tHash
	default:
		kind = tIllegal
	}
	l.read()
	return lexeme{kind: kind, text: l.src[start:l.pos], start: start, end: l.pos}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}
