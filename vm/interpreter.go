package vm

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/rsc/types"
)

var log = commonlog.GetLogger("rsc.vm")

const (
	// DefaultMaxFrameDepth bounds script recursion.
	DefaultMaxFrameDepth = 10_000
	// DefaultMaxInstructions bounds the work of one execution.
	DefaultMaxInstructions = 10_000_000

	// cancelCheckInterval is how many instructions run between context polls.
	cancelCheckInterval = 1024
)

// CallFrame represents one activation of a procedure.
type CallFrame struct {
	Proc *ProcEntry // the procedure being executed
	IP   int        // instruction pointer (absolute offset into Program.Code)
	BP   int        // base pointer (first local slot on the value stack)

	index int // procedure table index, -1 unless profiling
}

// Interpreter executes a Program. An Interpreter is not safe for concurrent
// use; concurrent executions each need their own Interpreter, and may share
// the Program.
type Interpreter struct {
	// MaxFrameDepth is the deepest the frame stack may grow. Zero means
	// DefaultMaxFrameDepth.
	MaxFrameDepth int
	// MaxInstructions bounds the instructions one Call may execute. Zero
	// means DefaultMaxInstructions; negative disables the budget.
	MaxInstructions int64
	// Trace logs every instruction at debug level.
	Trace bool

	profiler *Profiler
	program  *Program
	stack   []Value     // locals and operands of every frame
	frames  []CallFrame // call stack
	steps   int64       // instructions executed by the last Call
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxFrameDepth sets the frame-stack bound.
func WithMaxFrameDepth(n int) Option {
	return func(i *Interpreter) { i.MaxFrameDepth = n }
}

// WithMaxInstructions sets the instruction budget.
func WithMaxInstructions(n int64) Option {
	return func(i *Interpreter) { i.MaxInstructions = n }
}

// WithTrace enables per-instruction debug logging.
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.Trace = on }
}

// NewInterpreter creates an interpreter for p.
func NewInterpreter(p *Program, opts ...Option) *Interpreter {
	interp := &Interpreter{
		program: p,
		stack:   make([]Value, 0, 256),
		frames:  make([]CallFrame, 0, 64),
	}
	for _, opt := range opts {
		opt(interp)
	}
	return interp
}

// Program returns the program being executed.
func (i *Interpreter) Program() *Program {
	return i.program
}

// Steps returns how many instructions the last Call executed.
func (i *Interpreter) Steps() int64 {
	return i.steps
}

func (i *Interpreter) maxFrameDepth() int {
	if i.MaxFrameDepth > 0 {
		return i.MaxFrameDepth
	}
	return DefaultMaxFrameDepth
}

func (i *Interpreter) maxInstructions() int64 {
	if i.MaxInstructions == 0 {
		return DefaultMaxInstructions
	}
	return i.MaxInstructions
}

// ---------------------------------------------------------------------------
// Stack helpers
// ---------------------------------------------------------------------------

func (i *Interpreter) push(v Value) {
	i.stack = append(i.stack, v)
}

func (i *Interpreter) pop() Value {
	n := len(i.stack)
	if n == 0 {
		panic("stack underflow")
	}
	v := i.stack[n-1]
	i.stack = i.stack[:n-1]
	return v
}

func (i *Interpreter) pop2() (a, b Value) {
	b = i.pop()
	a = i.pop()
	return a, b
}

func (i *Interpreter) readUint16(f *CallFrame) uint16 {
	v := binary.LittleEndian.Uint16(i.program.Code[f.IP:])
	f.IP += 2
	return v
}

func (i *Interpreter) readInt32(f *CallFrame) int32 {
	v := int32(binary.LittleEndian.Uint32(i.program.Code[f.IP:]))
	f.IP += 4
	return v
}

// ---------------------------------------------------------------------------
// Frames
// ---------------------------------------------------------------------------

// pushFrame activates proc with its arguments already on top of the stack.
func (i *Interpreter) pushFrame(proc *ProcEntry) error {
	if len(i.frames) >= i.maxFrameDepth() {
		log.Debugf("frame depth %d exceeded calling %s", i.maxFrameDepth(), proc.Name)
		return i.fail(StackOverflow, fmt.Sprintf("frame depth exceeded %d calling ~%s", i.maxFrameDepth(), proc.Name))
	}

	bp := len(i.stack) - proc.ParamCount
	for j := proc.ParamCount; j < proc.LocalCount; j++ {
		i.push(Value{})
	}

	index := -1
	if i.profiler != nil {
		index = i.profiler.recordCall(proc)
	}

	i.frames = append(i.frames, CallFrame{
		Proc:  proc,
		IP:    proc.Entry,
		BP:    bp,
		index: index,
	})
	return nil
}

// popFrame moves the callee's results down over its locals and discards the
// frame. It returns true when the entry frame was popped.
func (i *Interpreter) popFrame() bool {
	f := i.frames[len(i.frames)-1]
	n := f.Proc.ReturnCount
	top := len(i.stack)
	copy(i.stack[f.BP:], i.stack[top-n:top])
	i.stack = i.stack[:f.BP+n]
	i.frames = i.frames[:len(i.frames)-1]
	return len(i.frames) == 0
}

// callChain snapshots the active frames, innermost first.
func (i *Interpreter) callChain() []CallSite {
	chain := make([]CallSite, 0, len(i.frames))
	for d := len(i.frames) - 1; d >= 0; d-- {
		f := i.frames[d]
		chain = append(chain, CallSite{Proc: f.Proc.Name, Depth: d + 1, PC: f.IP})
	}
	return chain
}

func (i *Interpreter) fail(kind ErrorKind, msg string) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: msg, CallChain: i.callChain()}
}

// ---------------------------------------------------------------------------
// Entry point
// ---------------------------------------------------------------------------

// Call runs the named procedure with already-typed arguments and returns its
// results in declaration order. Argument count and types are checked against
// the procedure's signature.
func (i *Interpreter) Call(ctx context.Context, name string, args []Value) ([]Value, error) {
	idx, ok := i.program.Lookup(name)
	if !ok {
		return nil, argumentErrorf("unknown procedure %q", name)
	}
	proc := &i.program.Procs[idx]
	if len(args) != proc.ParamCount {
		return nil, argumentErrorf("~%s takes %d arguments, got %d", name, proc.ParamCount, len(args))
	}
	for j, arg := range args {
		if want := proc.ParamTypes[j]; !assignable(arg.Type, want) {
			return nil, argumentErrorf("~%s argument %d: want %s, got %s", name, j+1, want, arg.Type)
		}
	}

	i.stack = i.stack[:0]
	i.frames = i.frames[:0]
	i.steps = 0
	for j, arg := range args {
		arg.Type = proc.ParamTypes[j]
		i.push(arg)
	}
	if err := i.pushFrame(proc); err != nil {
		return nil, err
	}
	return i.run(ctx)
}

func assignable(got, want types.Type) bool {
	return got == want || (got == types.Int && want == types.Long)
}

// run executes until the entry frame returns.
func (i *Interpreter) run(ctx context.Context) ([]Value, error) {
	budget := i.maxInstructions()
	code := i.program.Code
	done := ctx.Done()

	for {
		if budget > 0 && i.steps >= budget {
			log.Debugf("instruction budget %d exhausted", budget)
			return nil, i.fail(InstructionBudget, fmt.Sprintf("exceeded %d instructions", budget))
		}
		i.steps++
		if done != nil && i.steps%cancelCheckInterval == 0 {
			select {
			case <-done:
				err := i.fail(Cancelled, "execution cancelled")
				err.Cause = ctx.Err()
				return nil, err
			default:
			}
		}

		f := &i.frames[len(i.frames)-1]
		if f.index >= 0 {
			i.profiler.recordStep(f.index)
		}
		if i.Trace {
			r := NewBytecodeReader(code)
			r.Seek(f.IP)
			log.Debugf("[%d] %s", len(i.frames), DisassembleInstruction(r, i.program))
		}

		pc := f.IP
		op := Opcode(code[f.IP])
		f.IP++

		switch op {
		case OpNOP:

		case OpPOP:
			i.pop()

		// Constants
		case OpPushConst:
			i.push(i.program.Constants[i.readUint16(f)])
		case OpPushInt32:
			i.push(IntValue(i.readInt32(f)))
		case OpPushTrue:
			i.push(BoolValue(true))
		case OpPushFalse:
			i.push(BoolValue(false))

		// Locals
		case OpLoadLocal:
			i.push(i.stack[f.BP+int(i.readUint16(f))])
		case OpStoreLocal:
			slot := f.BP + int(i.readUint16(f))
			i.stack[slot] = i.pop()

		// Arithmetic
		case OpAdd, OpSub, OpMul, OpDiv, OpMod:
			a, b := i.pop2()
			r, err := arithInt(op, int32(a.Int), int32(b.Int))
			if err != nil {
				f.IP = pc
				return nil, i.fail(DivisionByZero, err.Error())
			}
			i.push(IntValue(r))
		case OpLAdd, OpLSub, OpLMul, OpLDiv, OpLMod:
			a, b := i.pop2()
			r, err := arithLong(op, a.Int, b.Int)
			if err != nil {
				f.IP = pc
				return nil, i.fail(DivisionByZero, err.Error())
			}
			i.push(LongValue(r))

		// Comparison
		case OpEq:
			a, b := i.pop2()
			i.push(BoolValue(a.Equal(b)))
		case OpNe:
			a, b := i.pop2()
			i.push(BoolValue(!a.Equal(b)))
		case OpLt:
			a, b := i.pop2()
			i.push(BoolValue(a.Int < b.Int))
		case OpGt:
			a, b := i.pop2()
			i.push(BoolValue(a.Int > b.Int))
		case OpLe:
			a, b := i.pop2()
			i.push(BoolValue(a.Int <= b.Int))
		case OpGe:
			a, b := i.pop2()
			i.push(BoolValue(a.Int >= b.Int))

		// Control flow
		case OpJump:
			offset := i.readInt32(f)
			f.IP += int(offset)
		case OpJumpFalse:
			offset := i.readInt32(f)
			if !i.pop().Truthy() {
				f.IP += int(offset)
			}
		case OpJumpTrue:
			offset := i.readInt32(f)
			if i.pop().Truthy() {
				f.IP += int(offset)
			}

		// Calls
		case OpCall:
			idx := i.readUint16(f)
			f.IP++ // argc is fixed by the callee's entry
			if err := i.pushFrame(&i.program.Procs[idx]); err != nil {
				return nil, err
			}
		case OpReturn:
			if i.popFrame() {
				results := make([]Value, len(i.stack))
				copy(results, i.stack)
				i.stack = i.stack[:0]
				return results, nil
			}

		default:
			panic(fmt.Sprintf("unknown opcode 0x%02X at %d", byte(op), pc))
		}
	}
}

var errDivByZero = fmt.Errorf("division by zero")

// arithInt applies op with 32-bit wraparound.
func arithInt(op Opcode, a, b int32) (int32, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if b == 0 {
			return 0, errDivByZero
		}
		return a / b, nil
	default:
		if b == 0 {
			return 0, errDivByZero
		}
		return a % b, nil
	}
}

// arithLong applies op with 64-bit wraparound.
func arithLong(op Opcode, a, b int64) (int64, error) {
	switch op {
	case OpLAdd:
		return a + b, nil
	case OpLSub:
		return a - b, nil
	case OpLMul:
		return a * b, nil
	case OpLDiv:
		if b == 0 {
			return 0, errDivByZero
		}
		return a / b, nil
	default:
		if b == 0 {
			return 0, errDivByZero
		}
		return a % b, nil
	}
}
