package vm

import (
	"fmt"
	"strings"

	"github.com/chazu/rsc/types"
)

// ---------------------------------------------------------------------------
// Program: the output of code generation
// ---------------------------------------------------------------------------

// ProcEntry describes one procedure in a Program.
type ProcEntry struct {
	Name        string       `cbor:"1,keyasint"`
	Trigger     string       `cbor:"2,keyasint"`
	Entry       int          `cbor:"3,keyasint"`  // offset of first instruction in Code
	ParamCount  int          `cbor:"4,keyasint"`  // arguments occupy the first ParamCount slots
	LocalCount  int          `cbor:"5,keyasint"`  // total slots, params included
	ReturnCount int          `cbor:"6,keyasint"`  // values left by RETURN
	ParamTypes  []types.Type `cbor:"7,keyasint"`  // declared parameter types
	ReturnTypes []types.Type `cbor:"8,keyasint"`  // declared return types
	ParamNames  []string     `cbor:"9,keyasint"`  // for listings and diagnostics
	End         int          `cbor:"10,keyasint"` // offset just past the last instruction
}

// Signature renders the entry the way it is declared in source.
func (e *ProcEntry) Signature() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s,%s](", e.Trigger, e.Name)
	for i, t := range e.ParamTypes {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
		if i < len(e.ParamNames) {
			sb.WriteString(" $")
			sb.WriteString(e.ParamNames[i])
		}
	}
	sb.WriteString(")")
	if len(e.ReturnTypes) > 0 {
		sb.WriteString("(")
		for i, t := range e.ReturnTypes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.String())
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// Program is a compiled translation unit: a procedure table, a flat
// instruction array and a constant pool. A Program is immutable once built
// and may be shared by any number of interpreters.
type Program struct {
	Procs     []ProcEntry `cbor:"1,keyasint"`
	Code      []byte      `cbor:"2,keyasint"`
	Constants []Value     `cbor:"3,keyasint"`

	index map[string]int
}

func (p *Program) reindex() {
	p.index = make(map[string]int, len(p.Procs))
	for i := range p.Procs {
		p.index[p.Procs[i].Name] = i
	}
}

// Lookup returns the procedure table index for name.
func (p *Program) Lookup(name string) (int, bool) {
	idx, ok := p.index[name]
	return idx, ok
}

// Proc returns the entry for name, or nil.
func (p *Program) Proc(name string) *ProcEntry {
	if idx, ok := p.index[name]; ok {
		return &p.Procs[idx]
	}
	return nil
}

// ProcNames returns procedure names in table order.
func (p *Program) ProcNames() []string {
	names := make([]string, len(p.Procs))
	for i := range p.Procs {
		names[i] = p.Procs[i].Name
	}
	return names
}

// Validate checks the structural soundness of a program: every procedure
// range is in bounds, every instruction decodes, and every operand refers
// to an existing slot, constant, procedure or instruction boundary.
func (p *Program) Validate() error {
	seen := make(map[string]bool, len(p.Procs))
	for i := range p.Procs {
		e := &p.Procs[i]
		if seen[e.Name] {
			return fmt.Errorf("duplicate procedure %q", e.Name)
		}
		seen[e.Name] = true
		if e.Entry < 0 || e.End > len(p.Code) || e.Entry > e.End {
			return fmt.Errorf("procedure %q: code range [%d,%d) out of bounds", e.Name, e.Entry, e.End)
		}
		if e.ParamCount != len(e.ParamTypes) || e.ReturnCount != len(e.ReturnTypes) {
			return fmt.Errorf("procedure %q: signature counts disagree with type lists", e.Name)
		}
		if e.LocalCount < e.ParamCount {
			return fmt.Errorf("procedure %q: %d locals cannot hold %d params", e.Name, e.LocalCount, e.ParamCount)
		}
		if err := p.validateBody(e); err != nil {
			return fmt.Errorf("procedure %q: %w", e.Name, err)
		}
	}
	return nil
}

func (p *Program) validateBody(e *ProcEntry) error {
	body := p.Code[e.Entry:e.End]
	boundaries := make(map[int]bool)
	var jumps []int

	r := NewBytecodeReader(body)
	for r.HasMore() {
		pos := r.Position()
		boundaries[pos] = true
		op := r.ReadOpcode()
		if !op.Valid() {
			return fmt.Errorf("offset %d: unknown opcode 0x%02X", e.Entry+pos, byte(op))
		}
		if r.Remaining() < op.OperandBytes() {
			return fmt.Errorf("offset %d: truncated %s", e.Entry+pos, op)
		}
		switch op {
		case OpPushConst:
			if idx := int(r.ReadUint16()); idx >= len(p.Constants) {
				return fmt.Errorf("offset %d: constant %d out of range", e.Entry+pos, idx)
			}
		case OpLoadLocal, OpStoreLocal:
			if slot := int(r.ReadUint16()); slot >= e.LocalCount {
				return fmt.Errorf("offset %d: slot %d out of range", e.Entry+pos, slot)
			}
		case OpJump, OpJumpFalse, OpJumpTrue:
			offset := int(r.ReadInt32())
			jumps = append(jumps, r.Position()+offset)
		case OpCall:
			idx := int(r.ReadUint16())
			argc := int(r.ReadByte())
			if idx >= len(p.Procs) {
				return fmt.Errorf("offset %d: procedure %d out of range", e.Entry+pos, idx)
			}
			if argc != p.Procs[idx].ParamCount {
				return fmt.Errorf("offset %d: call to %q passes %d args, want %d",
					e.Entry+pos, p.Procs[idx].Name, argc, p.Procs[idx].ParamCount)
			}
		default:
			r.Skip(op.OperandBytes())
		}
	}

	for _, target := range jumps {
		if !boundaries[target] {
			return fmt.Errorf("jump target %d is not an instruction boundary", e.Entry+target)
		}
	}
	return nil
}

// Disassemble renders the whole program, one procedure at a time.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	for i := range p.Procs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.DisassembleProc(&p.Procs[i]))
	}
	return sb.String()
}

// DisassembleProc renders one procedure with a header describing its frame.
func (p *Program) DisassembleProc(e *ProcEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; === %s ===\n", e.Signature())
	fmt.Fprintf(&sb, "; entry=%04d params=%d locals=%d returns=%d\n",
		e.Entry, e.ParamCount, e.LocalCount, e.ReturnCount)

	r := NewBytecodeReader(p.Code[:e.End])
	r.Seek(e.Entry)
	for r.HasMore() {
		sb.WriteString(DisassembleInstruction(r, p))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// ProgramBuilder: assembles a Program procedure by procedure
// ---------------------------------------------------------------------------

// ProgramBuilder accumulates code, constants and procedure entries. All
// procedures must be declared before any body is emitted so that calls can
// reference procedures that are emitted later.
type ProgramBuilder struct {
	*BytecodeBuilder

	procs     []ProcEntry
	constants []Value
	current   int
}

// NewProgramBuilder creates an empty builder.
func NewProgramBuilder() *ProgramBuilder {
	return &ProgramBuilder{
		BytecodeBuilder: NewBytecodeBuilder(),
		current:         -1,
	}
}

// DeclareProc registers a procedure entry and returns its table index.
// Entry, End and LocalCount are filled in by BeginProc and EndProc.
func (b *ProgramBuilder) DeclareProc(e ProcEntry) int {
	e.ParamCount = len(e.ParamTypes)
	e.ReturnCount = len(e.ReturnTypes)
	b.procs = append(b.procs, e)
	return len(b.procs) - 1
}

// BeginProc starts emitting the body of a declared procedure.
func (b *ProgramBuilder) BeginProc(index int) {
	if b.current >= 0 {
		panic(fmt.Sprintf("BeginProc(%d) while %q is open", index, b.procs[b.current].Name))
	}
	b.current = index
	b.procs[index].Entry = b.Len()
}

// EndProc closes the current procedure body and records its slot count.
func (b *ProgramBuilder) EndProc(localCount int) {
	if b.current < 0 {
		panic("EndProc without BeginProc")
	}
	e := &b.procs[b.current]
	e.End = b.Len()
	e.LocalCount = localCount
	b.current = -1
}

// AddConstant adds a value to the pool and returns its index. Identical
// values share one slot.
func (b *ProgramBuilder) AddConstant(v Value) uint16 {
	for i, c := range b.constants {
		if c == v {
			return uint16(i)
		}
	}
	if len(b.constants) > 0xFFFF {
		panic("constant pool overflow")
	}
	b.constants = append(b.constants, v)
	return uint16(len(b.constants) - 1)
}

// EmitConstant emits the cheapest push for v.
func (b *ProgramBuilder) EmitConstant(v Value) {
	switch {
	case v.Type == types.Boolean && v.Truthy():
		b.Emit(OpPushTrue)
	case v.Type == types.Boolean:
		b.Emit(OpPushFalse)
	case v.Type == types.Int:
		b.EmitInt32(OpPushInt32, int32(v.Int))
	default:
		b.EmitUint16(OpPushConst, b.AddConstant(v))
	}
}

// Build returns the finished program.
func (b *ProgramBuilder) Build() *Program {
	if b.current >= 0 {
		panic(fmt.Sprintf("Build with %q still open", b.procs[b.current].Name))
	}
	p := &Program{
		Procs:     b.procs,
		Code:      b.Bytes(),
		Constants: b.constants,
	}
	p.reindex()
	return p
}
