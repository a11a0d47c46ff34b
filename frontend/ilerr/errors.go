package ilerr

import (
	"fmt"
	"github.com/cottand/tip/frontend/ast"
	"github.com/cottand/tip/frontend/types"
	"go/token"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None         ErrCode = iota
	TypeMismatch ErrCode = iota
	Parse
	UndefinedVariable
	DuplicateDeclaration
	NotAssignable
)

type TipError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) TipError
	getStack() []byte
}

func FormatWithCode(e TipError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatWithCodeAndSource prefixes FormatWithCode with the file position of e,
// when fset knows about it
func FormatWithCodeAndSource(e TipError, fset *token.FileSet) string {
	if fset == nil || e.Pos() == token.NoPos {
		return FormatWithCode(e)
	}
	return fmt.Sprintf("%s: %s", fset.Position(e.Pos()), FormatWithCode(e))
}

func New[E TipError](err E) TipError {
	return err.withStack(debug.Stack())
}

type Unclassified struct {
	From error
	ast.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}

// NewTypeMismatch is the first constraint of a program which could not be solved.
type NewTypeMismatch struct {
	ast.Positioner
	Cause *types.UnifyError
	stack []byte
}

func (e NewTypeMismatch) Error() string {
	msg := fmt.Sprintf("type mismatch: cannot unify '%v' with '%v'", e.Cause.First, e.Cause.Second)
	if source := e.Cause.Constraint.Source; source != nil {
		msg += fmt.Sprintf(" in %s `%s`", source.Describe(), ast.NodeString(source))
	}
	return msg
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) Unwrap() error    { return e.Cause }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}

type NewParse struct {
	ast.Positioner
	ParserMessage string
	Hint          string
	stack         []byte
}

func (e NewParse) Error() string {
	if e.Hint != "" {
		return e.ParserMessage + " (" + e.Hint + ")"
	}
	return e.ParserMessage
}
func (e NewParse) Code() ErrCode    { return Parse }
func (e NewParse) getStack() []byte { return e.stack }
func (e NewParse) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}

type NewUndefinedVariable struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUndefinedVariable) Code() ErrCode { return UndefinedVariable }
func (e NewUndefinedVariable) Error() string {
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewUndefinedVariable) getStack() []byte { return e.stack }
func (e NewUndefinedVariable) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}

type NewDuplicateDeclaration struct {
	ast.Positioner
	Name string
	// Kind is what was declared twice, e.g. "function" or "local"
	Kind  string
	stack []byte
}

func (e NewDuplicateDeclaration) Code() ErrCode { return DuplicateDeclaration }
func (e NewDuplicateDeclaration) Error() string {
	return fmt.Sprintf("%s '%s' is declared more than once", e.Kind, e.Name)
}
func (e NewDuplicateDeclaration) getStack() []byte { return e.stack }
func (e NewDuplicateDeclaration) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}

type NewNotAssignable struct {
	ast.Positioner
	Syntax string
	// Reason replaces the default "not an l-value" explanation when set
	Reason string
	stack  []byte
}

func (e NewNotAssignable) Code() ErrCode { return NotAssignable }
func (e NewNotAssignable) Error() string {
	if e.Reason != "" {
		return e.Syntax + " " + e.Reason
	}
	return e.Syntax + " not an l-value"
}
func (e NewNotAssignable) getStack() []byte { return e.stack }
func (e NewNotAssignable) withStack(stack []byte) TipError {
	e.stack = stack
	return e
}
