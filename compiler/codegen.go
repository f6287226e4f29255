package compiler

import (
	"fmt"

	"github.com/chazu/rsc/types"
	"github.com/chazu/rsc/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Compile a checked AST to bytecode
// ---------------------------------------------------------------------------

// CodeGen lowers a resolved Unit into a vm.Program. It trusts the resolver:
// any inconsistency it meets panics with a *CodegenError.
type CodeGen struct {
	unit *Unit
	b    *vm.ProgramBuilder
	proc *ProcDecl
}

// NewCodeGen creates a code generator for unit.
func NewCodeGen(unit *Unit) *CodeGen {
	return &CodeGen{
		unit: unit,
		b:    vm.NewProgramBuilder(),
	}
}

// Generate lowers a resolved unit into a program.
func Generate(unit *Unit) *vm.Program {
	return NewCodeGen(unit).Generate()
}

// Generate emits every procedure and returns the program.
func (g *CodeGen) Generate() *vm.Program {
	// Declare the whole table first so calls can reference later procs.
	for _, sig := range g.unit.Sigs {
		names := make([]string, len(sig.Params))
		for i, p := range sig.Params {
			names[i] = p.Name
		}
		idx := g.b.DeclareProc(vm.ProcEntry{
			Name:        sig.Name,
			Trigger:     sig.Trigger,
			ParamTypes:  sig.ParamTypes(),
			ReturnTypes: sig.Returns,
			ParamNames:  names,
		})
		if idx != sig.Index {
			g.failf(sig.Pos, "~%s declared at index %d, resolved as %d", sig.Name, idx, sig.Index)
		}
	}

	for i, decl := range g.unit.Procs {
		g.proc = decl
		g.b.BeginProc(i)
		g.compileStmts(decl.Body)
		if len(decl.Returns) == 0 {
			g.b.Emit(vm.OpReturn)
		}
		g.b.EndProc(decl.LocalCount)
	}
	return g.b.Build()
}

func (g *CodeGen) failf(pos Position, format string, args ...any) {
	panic(&CodegenError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (g *CodeGen) compileStmts(stmts []Stmt) {
	for _, s := range stmts {
		g.compileStmt(s)
	}
}

func (g *CodeGen) compileStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *IfStmt:
		g.compileIf(s)

	case *WhileStmt:
		head := g.b.NewLabel()
		end := g.b.NewLabel()
		g.b.Mark(head)
		g.jumpIfFalse(s.Cond, end)
		g.compileStmts(s.Body)
		g.b.EmitJump(vm.OpJump, head)
		g.b.Mark(end)

	case *VarDecl:
		if s.Init != nil {
			g.compileValue(s.Init)
		} else {
			g.b.EmitConstant(vm.ZeroValue(s.Type))
		}
		g.b.EmitUint16(vm.OpStoreLocal, uint16(s.Slot))

	case *AssignStmt:
		// Values land on the stack in order; store the last target first.
		for _, v := range s.Values {
			g.compileValue(v)
		}
		for i := len(s.Targets) - 1; i >= 0; i-- {
			g.b.EmitUint16(vm.OpStoreLocal, uint16(s.Targets[i].Slot))
		}

	case *ReturnStmt:
		for _, v := range s.Values {
			g.compileValue(v)
		}
		g.b.Emit(vm.OpReturn)

	case *ExprStmt:
		call, ok := s.Expr.(*ProcCall)
		if !ok || call.Sig == nil {
			g.failf(s.Span().Start, "unresolved statement call")
		}
		g.compileCall(call)
		for range call.Sig.Returns {
			g.b.Emit(vm.OpPOP)
		}

	default:
		g.failf(stmt.Span().Start, "unhandled statement %T", stmt)
	}
}

// compileIf lowers if/else. A branch that always returns gets no jump to
// the end, so no jump ever targets the end of a procedure body.
func (g *CodeGen) compileIf(s *IfStmt) {
	end := g.b.NewLabel()
	if s.Else == nil {
		g.jumpIfFalse(s.Cond, end)
		g.compileStmts(s.Then)
		g.b.Mark(end)
		return
	}

	elseLabel := g.b.NewLabel()
	g.jumpIfFalse(s.Cond, elseLabel)
	g.compileStmts(s.Then)
	if !terminates(s.Then) {
		g.b.EmitJump(vm.OpJump, end)
	}
	g.b.Mark(elseLabel)
	g.compileStmts(s.Else)
	g.b.Mark(end)
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

var compareOps = map[TokenType]vm.Opcode{
	TokenEquals:       vm.OpEq,
	TokenNotEquals:    vm.OpNe,
	TokenLess:         vm.OpLt,
	TokenGreater:      vm.OpGt,
	TokenLessEqual:    vm.OpLe,
	TokenGreaterEqual: vm.OpGe,
}

// jumpIfFalse branches to target when cond is false. & and | short-circuit.
func (g *CodeGen) jumpIfFalse(cond Expr, target *vm.Label) {
	switch c := cond.(type) {
	case *Comparison:
		g.compileComparison(c)
		g.b.EmitJump(vm.OpJumpFalse, target)
	case *LogicalExpr:
		if c.Op == TokenAnd {
			g.jumpIfFalse(c.Left, target)
			g.jumpIfFalse(c.Right, target)
			return
		}
		skip := g.b.NewLabel()
		g.jumpIfTrue(c.Left, skip)
		g.jumpIfFalse(c.Right, target)
		g.b.Mark(skip)
	default:
		g.failf(cond.Span().Start, "condition %T", cond)
	}
}

// jumpIfTrue branches to target when cond is true.
func (g *CodeGen) jumpIfTrue(cond Expr, target *vm.Label) {
	switch c := cond.(type) {
	case *Comparison:
		g.compileComparison(c)
		g.b.EmitJump(vm.OpJumpTrue, target)
	case *LogicalExpr:
		if c.Op == TokenOr {
			g.jumpIfTrue(c.Left, target)
			g.jumpIfTrue(c.Right, target)
			return
		}
		skip := g.b.NewLabel()
		g.jumpIfFalse(c.Left, skip)
		g.jumpIfTrue(c.Right, target)
		g.b.Mark(skip)
	default:
		g.failf(cond.Span().Start, "condition %T", cond)
	}
}

func (g *CodeGen) compileComparison(c *Comparison) {
	op, ok := compareOps[c.Op]
	if !ok {
		g.failf(c.Span().Start, "comparison operator %s", c.Op)
	}
	g.compileValue(c.Left)
	g.compileValue(c.Right)
	g.b.Emit(op)
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

var intOps = map[TokenType]vm.Opcode{
	TokenPlus:    vm.OpAdd,
	TokenMinus:   vm.OpSub,
	TokenStar:    vm.OpMul,
	TokenSlash:   vm.OpDiv,
	TokenPercent: vm.OpMod,
}

var longOps = map[TokenType]vm.Opcode{
	TokenPlus:    vm.OpLAdd,
	TokenMinus:   vm.OpLSub,
	TokenStar:    vm.OpLMul,
	TokenSlash:   vm.OpLDiv,
	TokenPercent: vm.OpLMod,
}

// compileValue pushes the value of e. A call pushes all of its results.
func (g *CodeGen) compileValue(e Expr) {
	switch e := e.(type) {
	case *IntLiteral:
		switch e.Type {
		case types.Int:
			g.b.EmitConstant(vm.IntValue(int32(e.Value)))
		case types.Long:
			g.b.EmitConstant(vm.LongValue(e.Value))
		default:
			g.failf(e.Span().Start, "untyped integer literal %d", e.Value)
		}

	case *StringLiteral:
		g.b.EmitConstant(vm.StringValue(e.Value))

	case *BoolLiteral:
		g.b.EmitConstant(vm.BoolValue(e.Value))

	case *NullLiteral:
		if !e.Type.IsDomain() {
			g.failf(e.Span().Start, "null of type %s", e.Type)
		}
		g.b.EmitConstant(vm.DomainValue(e.Type, types.Null))

	case *LocalRef:
		g.b.EmitUint16(vm.OpLoadLocal, uint16(e.Slot))

	case *CalcExpr:
		g.compileValue(e.Expr)

	case *ArithExpr:
		ops := intOps
		if e.Type == types.Long {
			ops = longOps
		}
		op, ok := ops[e.Op]
		if !ok {
			g.failf(e.Span().Start, "arithmetic operator %s on %s", e.Op, e.Type)
		}
		g.compileValue(e.Left)
		g.compileValue(e.Right)
		g.b.Emit(op)

	case *ProcCall:
		g.compileCall(e)

	default:
		g.failf(e.Span().Start, "unhandled value %T", e)
	}
}

// compileCall pushes arguments left to right, then calls.
func (g *CodeGen) compileCall(call *ProcCall) {
	if call.Sig == nil {
		g.failf(call.Span().Start, "unresolved call to ~%s", call.Name)
	}
	for _, arg := range call.Args {
		g.compileValue(arg)
	}
	g.b.EmitCall(uint16(call.Sig.Index), uint8(len(call.Sig.Params)))
}
