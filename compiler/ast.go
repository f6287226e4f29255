package compiler

import "github.com/chazu/rsc/types"

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for scripts
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// Script is the parse result of one source file.
type Script struct {
	File  string
	Procs []*ProcDecl
}

// Param is one declared parameter.
type Param struct {
	Name string
	Type types.Type
	Pos  Position
}

// ProcDecl is a procedure declaration: header and body.
type ProcDecl struct {
	SpanVal Span
	Trigger string // proc, label, clientscript, debugproc
	Name    string
	Params  []Param
	Returns []types.Type
	Body    []Stmt
	File    string

	// Set by the resolver.
	LocalCount int
}

func (n *ProcDecl) Span() Span { return n.SpanVal }
func (n *ProcDecl) node()      {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// IfStmt is if (cond) { ... } else { ... }. Else is nil, a single *IfStmt
// for else-if chains, or the else block.
type IfStmt struct {
	SpanVal Span
	Cond    Expr
	Then    []Stmt
	Else    []Stmt
}

func (n *IfStmt) Span() Span { return n.SpanVal }
func (n *IfStmt) node()      {}
func (n *IfStmt) stmt()      {}

// WhileStmt is while (cond) { ... }.
type WhileStmt struct {
	SpanVal Span
	Cond    Expr
	Body    []Stmt
}

func (n *WhileStmt) Span() Span { return n.SpanVal }
func (n *WhileStmt) node()      {}
func (n *WhileStmt) stmt()      {}

// VarDecl is def_<type> $name (= value)?;
type VarDecl struct {
	SpanVal Span
	Type    types.Type
	Name    string
	Init    Expr // nil means the type's default

	Slot int // set by the resolver
}

func (n *VarDecl) Span() Span { return n.SpanVal }
func (n *VarDecl) node()      {}
func (n *VarDecl) stmt()      {}

// AssignStmt is $a, $b = v1, v2;
type AssignStmt struct {
	SpanVal Span
	Targets []*LocalRef
	Values  []Expr
}

func (n *AssignStmt) Span() Span { return n.SpanVal }
func (n *AssignStmt) node()      {}
func (n *AssignStmt) stmt()      {}

// ReturnStmt is return(v, ...); or return;
type ReturnStmt struct {
	SpanVal Span
	Values  []Expr
}

func (n *ReturnStmt) Span() Span { return n.SpanVal }
func (n *ReturnStmt) node()      {}
func (n *ReturnStmt) stmt()      {}

// ExprStmt is a procedure call used as a statement; its results are
// discarded.
type ExprStmt struct {
	SpanVal Span
	Expr    Expr
}

func (n *ExprStmt) Span() Span { return n.SpanVal }
func (n *ExprStmt) node()      {}
func (n *ExprStmt) stmt()      {}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	SpanVal Span
	Value   int64

	Type types.Type // int or long, set by the resolver
}

func (n *IntLiteral) Span() Span { return n.SpanVal }
func (n *IntLiteral) node()      {}
func (n *IntLiteral) expr()      {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	SpanVal Span
	Value   string
}

func (n *StringLiteral) Span() Span { return n.SpanVal }
func (n *StringLiteral) node()      {}
func (n *StringLiteral) expr()      {}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	SpanVal Span
	Value   bool
}

func (n *BoolLiteral) Span() Span { return n.SpanVal }
func (n *BoolLiteral) node()      {}
func (n *BoolLiteral) expr()      {}

// NullLiteral represents null. Its type comes from context.
type NullLiteral struct {
	SpanVal Span

	Type types.Type // set by the resolver
}

func (n *NullLiteral) Span() Span { return n.SpanVal }
func (n *NullLiteral) node()      {}
func (n *NullLiteral) expr()      {}

// LocalRef is a $name reference.
type LocalRef struct {
	SpanVal Span
	Name    string

	// Set by the resolver.
	Slot int
	Type types.Type
}

func (n *LocalRef) Span() Span { return n.SpanVal }
func (n *LocalRef) node()      {}
func (n *LocalRef) expr()      {}

// CalcExpr is calc(...), the only place arithmetic may appear.
type CalcExpr struct {
	SpanVal Span
	Expr    Expr // an *ArithExpr or a single value

	Type types.Type // set by the resolver
}

func (n *CalcExpr) Span() Span { return n.SpanVal }
func (n *CalcExpr) node()      {}
func (n *CalcExpr) expr()      {}

// ArithExpr is a binary arithmetic operation inside calc.
type ArithExpr struct {
	SpanVal Span
	Op      TokenType // + - * / %
	Left    Expr
	Right   Expr

	Type types.Type // set by the resolver
}

func (n *ArithExpr) Span() Span { return n.SpanVal }
func (n *ArithExpr) node()      {}
func (n *ArithExpr) expr()      {}

// Comparison is a binary comparison, valid only in conditions.
type Comparison struct {
	SpanVal Span
	Op      TokenType // = ! < > <= >=
	Left    Expr
	Right   Expr
}

func (n *Comparison) Span() Span { return n.SpanVal }
func (n *Comparison) node()      {}
func (n *Comparison) expr()      {}

// LogicalExpr joins conditions with & or |.
type LogicalExpr struct {
	SpanVal Span
	Op      TokenType // & |
	Left    Expr
	Right   Expr
}

func (n *LogicalExpr) Span() Span { return n.SpanVal }
func (n *LogicalExpr) node()      {}
func (n *LogicalExpr) expr()      {}

// ProcCall is ~name(args).
type ProcCall struct {
	SpanVal Span
	Name    string
	Args    []Expr

	Sig *ProcSignature // set by the resolver
}

func (n *ProcCall) Span() Span { return n.SpanVal }
func (n *ProcCall) node()      {}
func (n *ProcCall) expr()      {}

// ---------------------------------------------------------------------------
// Visitor helpers
// ---------------------------------------------------------------------------

// Walk calls fn for n and every node beneath it, depth first. Returning false
// from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	walkStmts := func(list []Stmt) {
		for _, s := range list {
			Walk(s, fn)
		}
	}
	switch n := n.(type) {
	case *ProcDecl:
		walkStmts(n.Body)
	case *IfStmt:
		Walk(n.Cond, fn)
		walkStmts(n.Then)
		walkStmts(n.Else)
	case *WhileStmt:
		Walk(n.Cond, fn)
		walkStmts(n.Body)
	case *VarDecl:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
	case *AssignStmt:
		for _, t := range n.Targets {
			Walk(t, fn)
		}
		for _, v := range n.Values {
			Walk(v, fn)
		}
	case *ReturnStmt:
		for _, v := range n.Values {
			Walk(v, fn)
		}
	case *ExprStmt:
		Walk(n.Expr, fn)
	case *CalcExpr:
		Walk(n.Expr, fn)
	case *ArithExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Comparison:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *LogicalExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *ProcCall:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}
