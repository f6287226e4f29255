package hash

import (
	"encoding/binary"
	"fmt"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/types"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of a checked AST.
//
// Encoding conventions:
//   - First byte: HashVersion (0x01)
//   - Integers: big-endian fixed-width (int64=8B, uint16=2B)
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Booleans: single byte (0/1)
//   - Lists: uint32 big-endian count + elements
//   - Child nodes: serialized inline (flat)
//
// Parameter names are written since programs carry them for diagnostics.
// Positions and the names of declared locals are never written.
// ---------------------------------------------------------------------------

// SerializeUnit produces the serialization of every procedure in order.
func SerializeUnit(unit *compiler.Unit) []byte {
	s := &serializer{buf: make([]byte, 0, 1024)}
	s.writeByte(HashVersion)
	s.writeByte(TagUnit)
	s.writeUint32(uint32(len(unit.Procs)))
	for _, decl := range unit.Procs {
		s.serializeProc(decl)
	}
	return s.buf
}

// SerializeProc produces the serialization of one procedure.
func SerializeProc(decl *compiler.ProcDecl) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(HashVersion)
	s.serializeProc(decl)
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeBool(v bool) {
	if v {
		s.writeByte(1)
	} else {
		s.writeByte(0)
	}
}

func (s *serializer) writeUint16(v uint16) {
	s.buf = binary.BigEndian.AppendUint16(s.buf, v)
}

func (s *serializer) writeUint32(v uint32) {
	s.buf = binary.BigEndian.AppendUint32(s.buf, v)
}

func (s *serializer) writeInt64(v int64) {
	s.buf = binary.BigEndian.AppendUint64(s.buf, uint64(v))
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeType(t types.Type) {
	s.writeByte(byte(t))
}

func (s *serializer) writeTypes(list []types.Type) {
	s.writeUint32(uint32(len(list)))
	for _, t := range list {
		s.writeType(t)
	}
}

func (s *serializer) serializeProc(decl *compiler.ProcDecl) {
	s.writeByte(TagProc)
	s.writeString(decl.Trigger)
	s.writeString(decl.Name)
	s.writeUint32(uint32(len(decl.Params)))
	for _, p := range decl.Params {
		s.writeType(p.Type)
		s.writeString(p.Name)
	}
	s.writeTypes(decl.Returns)
	s.writeUint16(uint16(decl.LocalCount))
	s.serializeStmts(decl.Body)
}

func (s *serializer) serializeStmts(stmts []compiler.Stmt) {
	s.writeUint32(uint32(len(stmts)))
	for _, st := range stmts {
		s.serializeStmt(st)
	}
}

func (s *serializer) serializeExprs(exprs []compiler.Expr) {
	s.writeUint32(uint32(len(exprs)))
	for _, e := range exprs {
		s.serializeExpr(e)
	}
}

func (s *serializer) serializeStmt(stmt compiler.Stmt) {
	switch n := stmt.(type) {
	case *compiler.IfStmt:
		s.writeByte(TagIf)
		s.serializeExpr(n.Cond)
		s.serializeStmts(n.Then)
		s.writeBool(n.Else != nil)
		if n.Else != nil {
			s.serializeStmts(n.Else)
		}

	case *compiler.WhileStmt:
		s.writeByte(TagWhile)
		s.serializeExpr(n.Cond)
		s.serializeStmts(n.Body)

	case *compiler.VarDecl:
		s.writeByte(TagVarDecl)
		s.writeType(n.Type)
		s.writeUint16(uint16(n.Slot))
		s.writeBool(n.Init != nil)
		if n.Init != nil {
			s.serializeExpr(n.Init)
		}

	case *compiler.AssignStmt:
		s.writeByte(TagAssign)
		s.writeUint32(uint32(len(n.Targets)))
		for _, t := range n.Targets {
			s.writeUint16(uint16(t.Slot))
		}
		s.serializeExprs(n.Values)

	case *compiler.ReturnStmt:
		s.writeByte(TagReturn)
		s.serializeExprs(n.Values)

	case *compiler.ExprStmt:
		s.writeByte(TagExprStmt)
		s.serializeExpr(n.Expr)

	default:
		panic(fmt.Sprintf("hash: unhandled statement %T", stmt))
	}
}

func (s *serializer) serializeExpr(expr compiler.Expr) {
	switch n := expr.(type) {
	case *compiler.IntLiteral:
		s.writeByte(TagIntLiteral)
		s.writeType(n.Type)
		s.writeInt64(n.Value)

	case *compiler.StringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)

	case *compiler.BoolLiteral:
		s.writeByte(TagBoolLiteral)
		s.writeBool(n.Value)

	case *compiler.NullLiteral:
		s.writeByte(TagNullLiteral)
		s.writeType(n.Type)

	case *compiler.LocalRef:
		s.writeByte(TagLocalRef)
		s.writeUint16(uint16(n.Slot))

	case *compiler.CalcExpr:
		s.writeByte(TagCalc)
		s.writeType(n.Type)
		s.serializeExpr(n.Expr)

	case *compiler.ArithExpr:
		s.writeByte(TagArith)
		s.writeByte(byte(n.Op))
		s.serializeExpr(n.Left)
		s.serializeExpr(n.Right)

	case *compiler.Comparison:
		s.writeByte(TagComparison)
		s.writeByte(byte(n.Op))
		s.serializeExpr(n.Left)
		s.serializeExpr(n.Right)

	case *compiler.LogicalExpr:
		s.writeByte(TagLogical)
		s.writeByte(byte(n.Op))
		s.serializeExpr(n.Left)
		s.serializeExpr(n.Right)

	case *compiler.ProcCall:
		s.writeByte(TagProcCall)
		s.writeString(n.Name)
		s.serializeExprs(n.Args)

	default:
		panic(fmt.Sprintf("hash: unhandled expression %T", expr))
	}
}
