package vm

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
type Opcode byte

// Stack Operations
const (
	OpNOP Opcode = 0x00 // no operation
	OpPOP Opcode = 0x01 // discard top of stack
)

// Push Constants
const (
	OpPushConst Opcode = 0x10 // push constant from pool (16-bit index)
	OpPushInt32 Opcode = 0x11 // push inline 32-bit int
	OpPushTrue  Opcode = 0x12 // push boolean true
	OpPushFalse Opcode = 0x13 // push boolean false
)

// Local Variables
const (
	OpLoadLocal  Opcode = 0x20 // push local slot (16-bit index)
	OpStoreLocal Opcode = 0x21 // pop into local slot (16-bit index)
)

// Arithmetic on int (32-bit, wrapping)
const (
	OpAdd Opcode = 0x30
	OpSub Opcode = 0x31
	OpMul Opcode = 0x32
	OpDiv Opcode = 0x33
	OpMod Opcode = 0x34
)

// Arithmetic on long (64-bit, wrapping)
const (
	OpLAdd Opcode = 0x38
	OpLSub Opcode = 0x39
	OpLMul Opcode = 0x3A
	OpLDiv Opcode = 0x3B
	OpLMod Opcode = 0x3C
)

// Comparison (pop two, push boolean)
const (
	OpEq Opcode = 0x40 // =
	OpNe Opcode = 0x41 // !
	OpLt Opcode = 0x42 // <
	OpGt Opcode = 0x43 // >
	OpLe Opcode = 0x44 // <=
	OpGe Opcode = 0x45 // >=
)

// Control Flow
const (
	OpJump      Opcode = 0x60 // unconditional jump (32-bit relative offset)
	OpJumpFalse Opcode = 0x61 // pop, jump if false (32-bit relative offset)
	OpJumpTrue  Opcode = 0x62 // pop, jump if true (32-bit relative offset)
)

// Calls
const (
	OpCall   Opcode = 0x70 // call procedure (16-bit proc index, 8-bit argc)
	OpReturn Opcode = 0x71 // return the procedure's declared results
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name         string // human-readable name
	OperandBytes int    // number of operand bytes
	StackEffect  int    // net effect on stack (-1 = variable)
}

// opcodeTable maps opcodes to their metadata.
var opcodeTable = map[Opcode]OpcodeInfo{
	OpNOP: {"NOP", 0, 0},
	OpPOP: {"POP", 0, -1},

	OpPushConst: {"PUSH_CONST", 2, 1},
	OpPushInt32: {"PUSH_INT32", 4, 1},
	OpPushTrue:  {"PUSH_TRUE", 0, 1},
	OpPushFalse: {"PUSH_FALSE", 0, 1},

	OpLoadLocal:  {"LOAD_LOCAL", 2, 1},
	OpStoreLocal: {"STORE_LOCAL", 2, -1},

	OpAdd: {"ADD", 0, -1},
	OpSub: {"SUB", 0, -1},
	OpMul: {"MUL", 0, -1},
	OpDiv: {"DIV", 0, -1},
	OpMod: {"MOD", 0, -1},

	OpLAdd: {"LADD", 0, -1},
	OpLSub: {"LSUB", 0, -1},
	OpLMul: {"LMUL", 0, -1},
	OpLDiv: {"LDIV", 0, -1},
	OpLMod: {"LMOD", 0, -1},

	OpEq: {"EQ", 0, -1},
	OpNe: {"NE", 0, -1},
	OpLt: {"LT", 0, -1},
	OpGt: {"GT", 0, -1},
	OpLe: {"LE", 0, -1},
	OpGe: {"GE", 0, -1},

	OpJump:      {"JUMP", 4, 0},
	OpJumpFalse: {"JUMP_FALSE", 4, -1},
	OpJumpTrue:  {"JUMP_TRUE", 4, -1},

	OpCall:   {"CALL", 3, -1}, // variable: pops argc, pushes return count
	OpReturn: {"RETURN", 0, -1},
}

// Info returns the metadata for an opcode.
func (op Opcode) Info() OpcodeInfo {
	if info, ok := opcodeTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN_%02X", byte(op)), OperandBytes: 0, StackEffect: 0}
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	return op.Info().Name
}

// OperandBytes returns the number of operand bytes for an opcode.
func (op Opcode) OperandBytes() int {
	return op.Info().OperandBytes
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// ---------------------------------------------------------------------------
// BytecodeBuilder: Helper for constructing bytecode
// ---------------------------------------------------------------------------

// BytecodeBuilder helps construct bytecode sequences.
type BytecodeBuilder struct {
	bytes []byte
}

// NewBytecodeBuilder creates a new bytecode builder.
func NewBytecodeBuilder() *BytecodeBuilder {
	return &BytecodeBuilder{
		bytes: make([]byte, 0, 256),
	}
}

// Bytes returns the constructed bytecode.
func (b *BytecodeBuilder) Bytes() []byte {
	return b.bytes
}

// Len returns the current length.
func (b *BytecodeBuilder) Len() int {
	return len(b.bytes)
}

// Emit appends an opcode with no operands.
func (b *BytecodeBuilder) Emit(op Opcode) {
	b.bytes = append(b.bytes, byte(op))
}

// EmitUint16 appends an opcode with a 16-bit operand.
func (b *BytecodeBuilder) EmitUint16(op Opcode, operand uint16) {
	b.bytes = append(b.bytes, byte(op))
	b.bytes = binary.LittleEndian.AppendUint16(b.bytes, operand)
}

// EmitInt32 appends an opcode with a 32-bit operand.
func (b *BytecodeBuilder) EmitInt32(op Opcode, operand int32) {
	b.bytes = append(b.bytes, byte(op))
	b.bytes = binary.LittleEndian.AppendUint32(b.bytes, uint32(operand))
}

// EmitCall appends a CALL with its procedure index and argument count.
func (b *BytecodeBuilder) EmitCall(proc uint16, argc uint8) {
	b.bytes = append(b.bytes, byte(OpCall))
	b.bytes = binary.LittleEndian.AppendUint16(b.bytes, proc)
	b.bytes = append(b.bytes, argc)
}

// ---------------------------------------------------------------------------
// Label management for jumps
// ---------------------------------------------------------------------------

// Label represents a jump target that may not be known yet.
type Label struct {
	resolved bool
	position int   // target (if resolved)
	refs     []int // operand positions that reference this label
}

// NewLabel creates an unresolved label.
func (b *BytecodeBuilder) NewLabel() *Label {
	return &Label{refs: make([]int, 0, 2)}
}

// Mark resolves a label to the current position.
func (b *BytecodeBuilder) Mark(label *Label) {
	if label.resolved {
		panic("label already resolved")
	}
	label.resolved = true
	label.position = len(b.bytes)

	// Patch all forward references
	for _, ref := range label.refs {
		offset := label.position - (ref + 4) // offset from after the operand
		binary.LittleEndian.PutUint32(b.bytes[ref:], uint32(int32(offset)))
	}
	label.refs = nil
}

// EmitJump emits a jump instruction with a label.
func (b *BytecodeBuilder) EmitJump(op Opcode, label *Label) {
	b.bytes = append(b.bytes, byte(op))
	if label.resolved {
		// Backward jump: calculate offset
		offset := label.position - (len(b.bytes) + 4)
		b.bytes = binary.LittleEndian.AppendUint32(b.bytes, uint32(int32(offset)))
	} else {
		// Forward jump: record position for later patching
		label.refs = append(label.refs, len(b.bytes))
		b.bytes = append(b.bytes, 0, 0, 0, 0)
	}
}

// Unresolved reports whether the label still has pending references.
func (l *Label) Unresolved() bool {
	return !l.resolved && len(l.refs) > 0
}

// ---------------------------------------------------------------------------
// Bytecode reader for disassembly
// ---------------------------------------------------------------------------

// BytecodeReader reads bytecode for disassembly and validation.
type BytecodeReader struct {
	bytes []byte
	pos   int
}

// NewBytecodeReader creates a reader for bytecode.
func NewBytecodeReader(bc []byte) *BytecodeReader {
	return &BytecodeReader{bytes: bc, pos: 0}
}

// Position returns the current read position.
func (r *BytecodeReader) Position() int {
	return r.pos
}

// HasMore returns true if there are more bytes to read.
func (r *BytecodeReader) HasMore() bool {
	return r.pos < len(r.bytes)
}

// Remaining returns the number of unread bytes.
func (r *BytecodeReader) Remaining() int {
	return len(r.bytes) - r.pos
}

// ReadOpcode reads the next opcode.
func (r *BytecodeReader) ReadOpcode() Opcode {
	op := Opcode(r.bytes[r.pos])
	r.pos++
	return op
}

// ReadByte reads a single byte.
func (r *BytecodeReader) ReadByte() byte {
	b := r.bytes[r.pos]
	r.pos++
	return b
}

// ReadUint16 reads a 16-bit unsigned integer (little-endian).
func (r *BytecodeReader) ReadUint16() uint16 {
	v := binary.LittleEndian.Uint16(r.bytes[r.pos:])
	r.pos += 2
	return v
}

// ReadInt32 reads a 32-bit signed integer (little-endian).
func (r *BytecodeReader) ReadInt32() int32 {
	v := int32(binary.LittleEndian.Uint32(r.bytes[r.pos:]))
	r.pos += 4
	return v
}

// Skip advances the reader by n bytes.
func (r *BytecodeReader) Skip(n int) {
	r.pos += n
}

// Seek sets the read position.
func (r *BytecodeReader) Seek(pos int) {
	r.pos = pos
}

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction disassembles a single instruction at the reader's
// position. Constants and procedure names are resolved against p when it is
// non-nil.
func DisassembleInstruction(r *BytecodeReader, p *Program) string {
	pos := r.Position()
	op := r.ReadOpcode()
	info := op.Info()

	switch op {
	case OpPushConst:
		idx := r.ReadUint16()
		if p != nil && int(idx) < len(p.Constants) {
			return fmt.Sprintf("%04d  %-12s %d (%s)", pos, info.Name, idx, p.Constants[idx].Quoted())
		}
		return fmt.Sprintf("%04d  %-12s %d", pos, info.Name, idx)

	case OpPushInt32:
		return fmt.Sprintf("%04d  %-12s %d", pos, info.Name, r.ReadInt32())

	case OpLoadLocal, OpStoreLocal:
		return fmt.Sprintf("%04d  %-12s %d", pos, info.Name, r.ReadUint16())

	case OpJump, OpJumpFalse, OpJumpTrue:
		offset := r.ReadInt32()
		target := r.Position() + int(offset)
		return fmt.Sprintf("%04d  %-12s %d (-> %04d)", pos, info.Name, offset, target)

	case OpCall:
		idx := r.ReadUint16()
		argc := r.ReadByte()
		if p != nil && int(idx) < len(p.Procs) {
			return fmt.Sprintf("%04d  %-12s %s argc=%d", pos, info.Name, p.Procs[idx].Name, argc)
		}
		return fmt.Sprintf("%04d  %-12s proc=%d argc=%d", pos, info.Name, idx, argc)

	default:
		r.Skip(info.OperandBytes)
		return fmt.Sprintf("%04d  %s", pos, info.Name)
	}
}

// Disassemble returns a full disassembly of raw bytecode.
func Disassemble(bc []byte) string {
	r := NewBytecodeReader(bc)
	var sb strings.Builder
	for r.HasMore() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(DisassembleInstruction(r, nil))
	}
	return sb.String()
}
