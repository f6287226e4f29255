package vm

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/chazu/rsc/types"
)

// ---------------------------------------------------------------------------
// Hand-assembled programs
// ---------------------------------------------------------------------------

// buildFactorial assembles:
//
//	[proc,fact](int $n)(int)
//	if ($n <= 1) { return(1); }
//	return(calc($n * ~fact(calc($n - 1))));
func buildFactorial() *Program {
	b := NewProgramBuilder()
	fact := b.DeclareProc(ProcEntry{
		Name:        "fact",
		Trigger:     "proc",
		ParamTypes:  []types.Type{types.Int},
		ParamNames:  []string{"n"},
		ReturnTypes: []types.Type{types.Int},
	})

	b.BeginProc(fact)
	recurse := b.NewLabel()
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitInt32(OpPushInt32, 1)
	b.Emit(OpLe)
	b.EmitJump(OpJumpFalse, recurse)
	b.EmitInt32(OpPushInt32, 1)
	b.Emit(OpReturn)
	b.Mark(recurse)
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitInt32(OpPushInt32, 1)
	b.Emit(OpSub)
	b.EmitCall(uint16(fact), 1)
	b.Emit(OpMul)
	b.Emit(OpReturn)
	b.EndProc(1)

	return b.Build()
}

// buildCountdown assembles a loop that runs $n iterations:
//
//	[proc,countdown](int $n)(int)
//	def_int $i = 0;
//	while ($n > 0) { $n = calc($n - 1); $i = calc($i + 1); }
//	return($i);
func buildCountdown() *Program {
	b := NewProgramBuilder()
	idx := b.DeclareProc(ProcEntry{
		Name:        "countdown",
		Trigger:     "proc",
		ParamTypes:  []types.Type{types.Int},
		ReturnTypes: []types.Type{types.Int},
	})

	b.BeginProc(idx)
	b.EmitInt32(OpPushInt32, 0)
	b.EmitUint16(OpStoreLocal, 1)
	head := b.NewLabel()
	end := b.NewLabel()
	b.Mark(head)
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitInt32(OpPushInt32, 0)
	b.Emit(OpGt)
	b.EmitJump(OpJumpFalse, end)
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitInt32(OpPushInt32, 1)
	b.Emit(OpSub)
	b.EmitUint16(OpStoreLocal, 0)
	b.EmitUint16(OpLoadLocal, 1)
	b.EmitInt32(OpPushInt32, 1)
	b.Emit(OpAdd)
	b.EmitUint16(OpStoreLocal, 1)
	b.EmitJump(OpJump, head)
	b.Mark(end)
	b.EmitUint16(OpLoadLocal, 1)
	b.Emit(OpReturn)
	b.EndProc(2)

	return b.Build()
}

// buildBinary assembles a two-argument procedure applying op.
func buildBinary(op Opcode, t types.Type) *Program {
	b := NewProgramBuilder()
	idx := b.DeclareProc(ProcEntry{
		Name:        "op",
		Trigger:     "proc",
		ParamTypes:  []types.Type{t, t},
		ReturnTypes: []types.Type{t},
	})
	b.BeginProc(idx)
	b.EmitUint16(OpLoadLocal, 0)
	b.EmitUint16(OpLoadLocal, 1)
	b.Emit(op)
	b.Emit(OpReturn)
	b.EndProc(2)
	return b.Build()
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

func TestFactorial(t *testing.T) {
	p := buildFactorial()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		n    int32
		want int64
	}{
		{0, 1},
		{1, 1},
		{5, 120},
		{10, 3628800},
	}
	for _, tc := range tests {
		got, err := NewInterpreter(p).Call(context.Background(), "fact", []Value{IntValue(tc.n)})
		if err != nil {
			t.Fatalf("fact(%d): %v", tc.n, err)
		}
		if len(got) != 1 || got[0].Int != tc.want {
			t.Errorf("fact(%d) = %v, want %d", tc.n, got, tc.want)
		}
	}
}

func TestWhileLoop(t *testing.T) {
	p := buildCountdown()
	got, err := NewInterpreter(p).Call(context.Background(), "countdown", []Value{IntValue(25)})
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	if got[0].Int != 25 {
		t.Errorf("countdown(25) = %d, want 25", got[0].Int)
	}
}

func TestIntArithmeticWraps(t *testing.T) {
	tests := []struct {
		op   Opcode
		a, b int32
		want int32
	}{
		{OpAdd, math.MaxInt32, 1, math.MinInt32},
		{OpSub, math.MinInt32, 1, math.MaxInt32},
		{OpMul, 65536, 65536, 0},
		{OpDiv, math.MinInt32, -1, math.MinInt32},
		{OpDiv, -7, 2, -3},
		{OpMod, -7, 2, -1},
	}

	for _, tc := range tests {
		p := buildBinary(tc.op, types.Int)
		got, err := NewInterpreter(p).Call(context.Background(), "op", []Value{IntValue(tc.a), IntValue(tc.b)})
		if err != nil {
			t.Fatalf("%s(%d, %d): %v", tc.op, tc.a, tc.b, err)
		}
		if int32(got[0].Int) != tc.want || got[0].Int != int64(tc.want) {
			t.Errorf("%s(%d, %d) = %d, want %d", tc.op, tc.a, tc.b, got[0].Int, tc.want)
		}
	}
}

func TestLongArithmeticWraps(t *testing.T) {
	p := buildBinary(OpLAdd, types.Long)
	got, err := NewInterpreter(p).Call(context.Background(), "op", []Value{LongValue(math.MaxInt64), LongValue(1)})
	if err != nil {
		t.Fatalf("LADD: %v", err)
	}
	if got[0].Int != math.MinInt64 {
		t.Errorf("LADD overflow = %d, want %d", got[0].Int, int64(math.MinInt64))
	}

	p = buildBinary(OpLMul, types.Long)
	got, err = NewInterpreter(p).Call(context.Background(), "op", []Value{LongValue(1 << 40), IntValue(3)})
	if err != nil {
		t.Fatalf("LMUL: %v", err)
	}
	if got[0].Int != 3<<40 {
		t.Errorf("LMUL = %d, want %d", got[0].Int, int64(3<<40))
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, op := range []Opcode{OpDiv, OpMod, OpLDiv, OpLMod} {
		typ := types.Int
		if op >= OpLAdd {
			typ = types.Long
		}
		p := buildBinary(op, typ)
		_, err := NewInterpreter(p).Call(context.Background(), "op", []Value{{Type: typ, Int: 1}, {Type: typ}})

		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) {
			t.Fatalf("%s by zero: expected RuntimeError, got %v", op, err)
		}
		if rtErr.Kind != DivisionByZero {
			t.Errorf("%s by zero: kind = %s, want DivisionByZero", op, rtErr.Kind)
		}
		if len(rtErr.CallChain) != 1 || rtErr.CallChain[0].Proc != "op" {
			t.Errorf("%s by zero: call chain = %+v", op, rtErr.CallChain)
		}
	}
}

// ---------------------------------------------------------------------------
// Stack Overflow Protection
// ---------------------------------------------------------------------------

func TestRecursionOverflowsAtMaxFrameDepth(t *testing.T) {
	p := buildFactorial()
	interp := NewInterpreter(p, WithMaxFrameDepth(50))

	// fact(49) needs 49 frames and fits.
	if _, err := interp.Call(context.Background(), "fact", []Value{IntValue(49)}); err != nil {
		t.Fatalf("fact(49) with depth 50: %v", err)
	}

	_, err := interp.Call(context.Background(), "fact", []Value{IntValue(100)})
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rtErr.Kind != StackOverflow {
		t.Fatalf("kind = %s, want StackOverflow", rtErr.Kind)
	}
	if len(rtErr.CallChain) != 50 {
		t.Errorf("call chain length = %d, want 50", len(rtErr.CallChain))
	}
	if rtErr.CallChain[0].Depth != 50 || rtErr.CallChain[49].Depth != 1 {
		t.Errorf("call chain should run innermost first, got depths %d..%d",
			rtErr.CallChain[0].Depth, rtErr.CallChain[49].Depth)
	}
	if !strings.Contains(rtErr.Error(), "at ~fact") {
		t.Errorf("error text should list frames: %s", rtErr.Error())
	}
}

func TestInterpreterReusableAfterError(t *testing.T) {
	p := buildFactorial()
	interp := NewInterpreter(p, WithMaxFrameDepth(10))

	if _, err := interp.Call(context.Background(), "fact", []Value{IntValue(20)}); err == nil {
		t.Fatal("expected overflow")
	}
	got, err := interp.Call(context.Background(), "fact", []Value{IntValue(5)})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if got[0].Int != 120 {
		t.Errorf("fact(5) after overflow = %d, want 120", got[0].Int)
	}
}

// ---------------------------------------------------------------------------
// Instruction budget and cancellation
// ---------------------------------------------------------------------------

func TestInstructionBudget(t *testing.T) {
	p := buildCountdown()

	interp := NewInterpreter(p, WithMaxInstructions(100))
	_, err := interp.Call(context.Background(), "countdown", []Value{IntValue(1000)})
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Kind != InstructionBudget {
		t.Fatalf("expected InstructionBudget, got %v", err)
	}
	if interp.Steps() != 100 {
		t.Errorf("steps = %d, want 100", interp.Steps())
	}

	unlimited := NewInterpreter(p, WithMaxInstructions(-1))
	if _, err := unlimited.Call(context.Background(), "countdown", []Value{IntValue(1000)}); err != nil {
		t.Errorf("negative budget should disable the limit: %v", err)
	}
}

func TestCancellation(t *testing.T) {
	p := buildCountdown()
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewInterpreter(p, WithMaxInstructions(-1)).Call(ctx, "countdown", []Value{IntValue(math.MaxInt32)})
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Kind != Cancelled {
		t.Fatalf("expected Cancelled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cancelled error should wrap the context error")
	}
}

// ---------------------------------------------------------------------------
// Entry checks
// ---------------------------------------------------------------------------

func TestCallArgumentChecks(t *testing.T) {
	p := buildFactorial()
	interp := NewInterpreter(p)

	tests := []struct {
		name string
		proc string
		args []Value
	}{
		{"unknown proc", "nope", nil},
		{"too few", "fact", nil},
		{"too many", "fact", []Value{IntValue(1), IntValue(2)}},
		{"wrong type", "fact", []Value{StringValue("5")}},
	}
	for _, tc := range tests {
		_, err := interp.Call(context.Background(), tc.proc, tc.args)
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) || rtErr.Kind != ArgumentError {
			t.Errorf("%s: expected ArgumentError, got %v", tc.name, err)
		}
	}
}
