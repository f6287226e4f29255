package compiler

import (
	"fmt"
	"math"

	"github.com/chazu/rsc/types"
)

// ---------------------------------------------------------------------------
// Resolver: two-pass symbol resolution and type checking
// ---------------------------------------------------------------------------

// ProcSignature is the registered interface of one procedure.
type ProcSignature struct {
	Name    string
	Trigger string
	Params  []Param
	Returns []types.Type
	Index   int // position in the procedure table
	File    string
	Pos     Position
}

// ParamTypes returns the declared parameter types in order.
func (s *ProcSignature) ParamTypes() []types.Type {
	list := make([]types.Type, len(s.Params))
	for i, p := range s.Params {
		list[i] = p.Type
	}
	return list
}

// Symbol is a local variable or parameter.
type Symbol struct {
	Name  string
	Type  types.Type
	Depth int // scope depth, 0 for parameters
	Slot  int
	Pos   Position
}

// Unit is a checked translation unit: every procedure with its signature,
// in declaration order.
type Unit struct {
	Procs []*ProcDecl
	Sigs  []*ProcSignature

	byName map[string]*ProcSignature
}

// Signature returns the signature registered for name.
func (u *Unit) Signature(name string) (*ProcSignature, bool) {
	sig, ok := u.byName[name]
	return sig, ok
}

// Resolver checks scripts as one translation unit. It stops at the first
// error.
type Resolver struct {
	unit *Unit

	// Body pass state.
	proc     *ProcDecl
	sig      *ProcSignature
	scopes   []map[string]*Symbol
	nextSlot int

	err error
}

// NewResolver creates a resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve runs both passes over scripts. On success every reference in the
// AST is annotated with its slot, type or signature.
func (r *Resolver) Resolve(scripts ...*Script) (unit *Unit, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(bailout); !ok {
				panic(rec)
			}
			unit, err = nil, r.err
		}
	}()

	r.unit = &Unit{byName: make(map[string]*ProcSignature)}

	// Pass 1: signatures.
	for _, script := range scripts {
		for _, decl := range script.Procs {
			r.register(decl)
		}
	}

	// Pass 2: bodies.
	for _, decl := range r.unit.Procs {
		r.checkProc(decl)
	}
	return r.unit, nil
}

// Resolve checks scripts with a fresh Resolver.
func Resolve(scripts ...*Script) (*Unit, error) {
	return NewResolver().Resolve(scripts...)
}

func (r *Resolver) fail(kind ResolveKind, file string, pos Position, format string, args ...any) {
	r.err = &ResolveError{
		Kind:    kind,
		File:    file,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
	panic(bailout{})
}

// failAt reports an error inside the body being checked.
func (r *Resolver) failAt(kind ResolveKind, n Node, format string, args ...any) {
	r.fail(kind, r.proc.File, n.Span().Start, format, args...)
}

// ---------------------------------------------------------------------------
// Pass 1
// ---------------------------------------------------------------------------

func (r *Resolver) register(decl *ProcDecl) {
	pos := decl.Span().Start
	if prev, ok := r.unit.byName[decl.Name]; ok {
		r.fail(DuplicateProcName, decl.File, pos,
			"[%s,%s] already declared at %s", decl.Trigger, decl.Name, location(prev.File, prev.Pos))
	}
	if len(r.unit.Procs) > math.MaxUint16 {
		r.fail(LimitExceeded, decl.File, pos, "too many procedures, at most %d allowed", math.MaxUint16+1)
	}
	if len(decl.Params) > math.MaxUint8 {
		r.fail(ArityMismatch, decl.File, pos, "~%s declares %d parameters, at most %d allowed",
			decl.Name, len(decl.Params), math.MaxUint8)
	}
	sig := &ProcSignature{
		Name:    decl.Name,
		Trigger: decl.Trigger,
		Params:  decl.Params,
		Returns: decl.Returns,
		Index:   len(r.unit.Procs),
		File:    decl.File,
		Pos:     pos,
	}
	r.unit.byName[decl.Name] = sig
	r.unit.Procs = append(r.unit.Procs, decl)
	r.unit.Sigs = append(r.unit.Sigs, sig)
}

// ---------------------------------------------------------------------------
// Scopes
// ---------------------------------------------------------------------------

func (r *Resolver) pushScope() {
	r.scopes = append(r.scopes, make(map[string]*Symbol))
}

func (r *Resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds a symbol to the innermost scope with a fresh slot.
func (r *Resolver) declare(name string, t types.Type, n Node, pos Position) *Symbol {
	scope := r.scopes[len(r.scopes)-1]
	if prev, ok := scope[name]; ok {
		r.fail(Redeclaration, r.proc.File, pos,
			"$%s already declared in this scope at %d:%d", name, prev.Pos.Line, prev.Pos.Column)
	}
	if r.nextSlot > math.MaxUint16 {
		r.failAt(LimitExceeded, n, "too many locals in ~%s, at most %d allowed", r.proc.Name, math.MaxUint16+1)
	}
	sym := &Symbol{
		Name:  name,
		Type:  t,
		Depth: len(r.scopes) - 1,
		Slot:  r.nextSlot,
		Pos:   pos,
	}
	r.nextSlot++
	scope[name] = sym
	return sym
}

// lookup searches scopes innermost first.
func (r *Resolver) lookup(name string) (*Symbol, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if sym, ok := r.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Pass 2
// ---------------------------------------------------------------------------

func (r *Resolver) checkProc(decl *ProcDecl) {
	r.proc = decl
	r.sig = r.unit.byName[decl.Name]
	r.scopes = r.scopes[:0]
	r.nextSlot = 0

	// Parameters and top-level locals share the body's outermost scope.
	r.pushScope()
	for _, p := range decl.Params {
		r.declare(p.Name, p.Type, decl, p.Pos)
	}
	r.checkStmts(decl.Body)
	r.popScope()

	if len(decl.Returns) > 0 && !terminates(decl.Body) {
		r.fail(MissingReturn, decl.File, decl.Span().End,
			"~%s can reach its end without returning %d values", decl.Name, len(decl.Returns))
	}
	decl.LocalCount = r.nextSlot
}

func (r *Resolver) checkStmts(stmts []Stmt) {
	for _, s := range stmts {
		r.checkStmt(s)
	}
}

func (r *Resolver) checkBlock(stmts []Stmt) {
	r.pushScope()
	r.checkStmts(stmts)
	r.popScope()
}

func (r *Resolver) checkStmt(s Stmt) {
	switch s := s.(type) {
	case *IfStmt:
		r.checkCondition(s.Cond)
		r.checkBlock(s.Then)
		r.checkBlock(s.Else)

	case *WhileStmt:
		r.checkCondition(s.Cond)
		r.checkBlock(s.Body)

	case *VarDecl:
		// The initializer cannot see the variable it initializes.
		if s.Init != nil {
			r.checkAssignable(s.Init, s.Type)
		}
		s.Slot = r.declare(s.Name, s.Type, s, s.Span().Start).Slot

	case *AssignStmt:
		want := make([]types.Type, len(s.Targets))
		for i, target := range s.Targets {
			r.resolveLocal(target)
			want[i] = target.Type
		}
		r.checkValueList(s.Values, want, s, "assignment")

	case *ReturnStmt:
		r.checkValueList(s.Values, r.sig.Returns, s, "~"+r.sig.Name+" return")

	case *ExprStmt:
		call, ok := s.Expr.(*ProcCall)
		if !ok {
			r.failAt(TypeMismatch, s, "only a procedure call can be used as a statement")
		}
		r.checkCall(call)

	default:
		panic(fmt.Sprintf("resolver: unhandled statement %T", s))
	}
}

// terminates reports whether control cannot fall off the end of stmts.
func terminates(stmts []Stmt) bool {
	for _, s := range stmts {
		switch s := s.(type) {
		case *ReturnStmt:
			return true
		case *IfStmt:
			if s.Else != nil && terminates(s.Then) && terminates(s.Else) {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) resolveLocal(ref *LocalRef) {
	sym, ok := r.lookup(ref.Name)
	if !ok {
		r.failAt(UndefinedVariable, ref, "$%s is not declared", ref.Name)
	}
	ref.Slot = sym.Slot
	ref.Type = sym.Type
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

func (r *Resolver) checkCondition(e Expr) {
	switch e := e.(type) {
	case *LogicalExpr:
		r.checkCondition(e.Left)
		r.checkCondition(e.Right)
	case *Comparison:
		r.checkComparison(e)
	default:
		r.failAt(TypeMismatch, e, "condition must be a comparison")
	}
}

func (r *Resolver) checkComparison(c *Comparison) {
	_, leftNull := c.Left.(*NullLiteral)
	_, rightNull := c.Right.(*NullLiteral)

	var t types.Type
	switch {
	case leftNull && rightNull:
		r.failAt(TypeMismatch, c, "cannot compare null with null")
	case leftNull:
		t = r.typeOf(c.Right)
		r.checkAssignable(c.Left, t)
	case rightNull:
		t = r.typeOf(c.Left)
		r.checkAssignable(c.Right, t)
	default:
		t = r.operandType(c, c.Left, c.Right)
	}

	if c.Op != TokenEquals && c.Op != TokenNotEquals && !t.IsNumeric() {
		r.failAt(TypeMismatch, c, "operator %s needs int or long operands, got %s", c.Op, t)
	}
}

// operandType types a pair of operands that must agree. An int literal
// widens to long when the other side is long.
func (r *Resolver) operandType(n Node, left, right Expr) types.Type {
	lt, rt := r.typeOf(left), r.typeOf(right)
	if lt == rt {
		return lt
	}
	if lt == types.Long && isIntLiteral(right) {
		right.(*IntLiteral).Type = types.Long
		return types.Long
	}
	if rt == types.Long && isIntLiteral(left) {
		left.(*IntLiteral).Type = types.Long
		return types.Long
	}
	r.failAt(TypeMismatch, n, "operands have different types: %s and %s", lt, rt)
	return types.Invalid
}

func isIntLiteral(e Expr) bool {
	_, ok := e.(*IntLiteral)
	return ok
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// typeOf types a single-value expression that has no expected type.
func (r *Resolver) typeOf(e Expr) types.Type {
	switch e := e.(type) {
	case *IntLiteral:
		e.Type = literalType(e.Value)
		return e.Type
	case *StringLiteral:
		return types.String
	case *BoolLiteral:
		return types.Boolean
	case *NullLiteral:
		r.failAt(TypeMismatch, e, "type of null cannot be inferred here")
	case *LocalRef:
		r.resolveLocal(e)
		return e.Type
	case *CalcExpr:
		if e.Type != types.Invalid {
			return e.Type
		}
		e.Type = r.checkCalc(e)
		return e.Type
	case *ProcCall:
		r.checkCall(e)
		if len(e.Sig.Returns) != 1 {
			r.failAt(ArityMismatch, e, "~%s returns %d values, expected 1", e.Name, len(e.Sig.Returns))
		}
		return e.Sig.Returns[0]
	case *ArithExpr, *Comparison, *LogicalExpr:
		r.failAt(TypeMismatch, e, "%s is not a value here", describe(e))
	}
	panic(fmt.Sprintf("resolver: unhandled expression %T", e))
}

func literalType(n int64) types.Type {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return types.Int
	}
	return types.Long
}

// checkAssignable checks a single value against the type it is stored as.
func (r *Resolver) checkAssignable(e Expr, want types.Type) {
	switch e := e.(type) {
	case *IntLiteral:
		got := literalType(e.Value)
		if got == want || (got == types.Int && want == types.Long) {
			e.Type = want
			return
		}
		r.failAt(TypeMismatch, e, "cannot use %d (%s) as %s", e.Value, got, want)
	case *NullLiteral:
		if !want.IsDomain() {
			r.failAt(TypeMismatch, e, "null cannot be used as %s", want)
		}
		e.Type = want
	case *CalcExpr:
		if want == types.Long {
			if e.Type != types.Long {
				e.Type = r.checkCalcAs(e, types.Long)
			}
			return
		}
		r.expectType(e, want)
	default:
		r.expectType(e, want)
	}
}

func (r *Resolver) expectType(e Expr, want types.Type) {
	if got := r.typeOf(e); got != want {
		r.failAt(TypeMismatch, e, "cannot use %s as %s", got, want)
	}
}

// checkValueList checks values against want. A call in the list contributes
// all of its results.
func (r *Resolver) checkValueList(values []Expr, want []types.Type, n Node, what string) {
	count := 0
	for _, v := range values {
		if call, ok := v.(*ProcCall); ok {
			r.checkCall(call)
			count += len(call.Sig.Returns)
			continue
		}
		count++
	}
	if count != len(want) {
		r.failAt(ArityMismatch, n, "%s wants %d values, got %d", what, len(want), count)
	}

	i := 0
	for _, v := range values {
		if call, ok := v.(*ProcCall); ok {
			for _, got := range call.Sig.Returns {
				if got != want[i] {
					r.failAt(TypeMismatch, v, "%s value %d: ~%s gives %s, want %s",
						what, i+1, call.Name, got, want[i])
				}
				i++
			}
			continue
		}
		r.checkAssignable(v, want[i])
		i++
	}
}

// checkCall resolves the call target and checks its arguments.
func (r *Resolver) checkCall(call *ProcCall) {
	if call.Sig != nil {
		return
	}
	sig, ok := r.unit.byName[call.Name]
	if !ok {
		r.failAt(UndefinedProc, call, "~%s is not declared", call.Name)
	}
	if sig.Trigger != "proc" {
		r.failAt(UndefinedProc, call, "[%s,%s] cannot be called with ~", sig.Trigger, sig.Name)
	}
	call.Sig = sig
	r.checkValueList(call.Args, sig.ParamTypes(), call, "~"+call.Name)
}

// ---------------------------------------------------------------------------
// calc
// ---------------------------------------------------------------------------

// checkCalc types a calc expression: all operands int, or all long with int
// literals widened.
func (r *Resolver) checkCalc(e *CalcExpr) types.Type {
	leaves := calcLeaves(e.Expr)
	leafTypes := r.leafTypes(leaves)
	t := types.Int
	for _, lt := range leafTypes {
		if lt == types.Long {
			t = types.Long
		}
	}
	return r.checkLeaves(e, leaves, leafTypes, t)
}

// checkCalcAs checks e as a calc of type t.
func (r *Resolver) checkCalcAs(e *CalcExpr, t types.Type) types.Type {
	leaves := calcLeaves(e.Expr)
	return r.checkLeaves(e, leaves, r.leafTypes(leaves), t)
}

// checkLeaves checks every operand against t and annotates the tree. Each
// leaf is typed exactly once, by leafTypes.
func (r *Resolver) checkLeaves(e *CalcExpr, leaves []Expr, leafTypes []types.Type, t types.Type) types.Type {
	for i, leaf := range leaves {
		if lit, ok := leaf.(*IntLiteral); ok {
			r.checkAssignable(lit, t)
			continue
		}
		if lt := leafTypes[i]; lt != t {
			if !lt.IsNumeric() {
				r.failAt(TypeMismatch, leaf, "calc needs int or long operands, got %s", lt)
			}
			r.failAt(TypeMismatch, leaf, "calc mixes %s and %s", lt, t)
		}
	}
	annotateArith(e.Expr, t)
	e.Type = t
	return t
}

func (r *Resolver) leafTypes(leaves []Expr) []types.Type {
	list := make([]types.Type, len(leaves))
	for i, leaf := range leaves {
		if lit, ok := leaf.(*IntLiteral); ok {
			list[i] = literalType(lit.Value)
			continue
		}
		list[i] = r.typeOf(leaf)
	}
	return list
}

func calcLeaves(e Expr) []Expr {
	if a, ok := e.(*ArithExpr); ok {
		return append(calcLeaves(a.Left), calcLeaves(a.Right)...)
	}
	return []Expr{e}
}

func annotateArith(e Expr, t types.Type) {
	if a, ok := e.(*ArithExpr); ok {
		a.Type = t
		annotateArith(a.Left, t)
		annotateArith(a.Right, t)
	}
}

func describe(e Expr) string {
	switch e.(type) {
	case *ArithExpr:
		return "arithmetic outside calc"
	case *Comparison:
		return "a comparison"
	case *LogicalExpr:
		return "a logical expression"
	}
	return fmt.Sprintf("%T", e)
}
