package compiler

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Compile-time errors
// ---------------------------------------------------------------------------

// LexError reports a character outside the grammar.
type LexError struct {
	File    string
	Pos     Position
	Char    rune
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: lex error: %s", location(e.File, e.Pos), e.Message)
}

// ParseError reports a grammar violation: the construct expected and the
// token actually found.
type ParseError struct {
	File     string
	Pos      Position
	Expected string
	Found    Token
}

func (e *ParseError) Error() string {
	found := e.Found.String()
	if e.Found.Type == TokenEOF {
		found = "end of file"
	}
	return fmt.Sprintf("%s: parse error: expected %s, found %s", location(e.File, e.Pos), e.Expected, found)
}

// ResolveKind classifies a ResolveError.
type ResolveKind int

const (
	DuplicateProcName ResolveKind = iota + 1
	UndefinedProc
	UndefinedVariable
	Redeclaration
	TypeMismatch
	ArityMismatch
	MissingReturn
	LimitExceeded
)

var resolveKindNames = map[ResolveKind]string{
	DuplicateProcName: "DuplicateProcName",
	UndefinedProc:     "UndefinedProc",
	UndefinedVariable: "UndefinedVariable",
	Redeclaration:     "Redeclaration",
	TypeMismatch:      "TypeMismatch",
	ArityMismatch:     "ArityMismatch",
	MissingReturn:     "MissingReturn",
	LimitExceeded:     "LimitExceeded",
}

func (k ResolveKind) String() string {
	if name, ok := resolveKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ResolveKind(%d)", int(k))
}

// ResolveError reports a scoping, typing or call-compatibility violation.
type ResolveError struct {
	Kind    ResolveKind
	File    string
	Pos     Position
	Message string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %s: %s", location(e.File, e.Pos), e.Kind, e.Message)
}

// CodegenError is raised (as a panic) when the code generator meets an AST
// the resolver should have rejected.
type CodegenError struct {
	Pos     Position
	Message string
}

func (e *CodegenError) Error() string {
	return fmt.Sprintf("%d:%d: codegen: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func location(file string, pos Position) string {
	if file == "" {
		return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	return fmt.Sprintf("%s:%d:%d", file, pos.Line, pos.Column)
}

// ErrorPosition extracts the file and position from any compile-time error.
func ErrorPosition(err error) (string, Position, bool) {
	var lexErr *LexError
	var parseErr *ParseError
	var resolveErr *ResolveError
	switch {
	case errors.As(err, &lexErr):
		return lexErr.File, lexErr.Pos, true
	case errors.As(err, &parseErr):
		return parseErr.File, parseErr.Pos, true
	case errors.As(err, &resolveErr):
		return resolveErr.File, resolveErr.Pos, true
	}
	return "", Position{}, false
}
