package hash

// ---------------------------------------------------------------------------
// Frozen tag bytes for the hashing AST serialization format.
//
// IMPORTANT: These tags are FROZEN. Once assigned, a tag byte must never
// change meaning. Adding new tags is fine; changing existing ones breaks
// all previously computed content hashes and every cache entry keyed by them.
// ---------------------------------------------------------------------------

// HashVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const HashVersion byte = 1

// AST node type tags. Each tag uniquely identifies a node kind in the
// serialized byte stream.
const (
	TagReservedZero byte = 0x00 // version prefix / reserved

	// Literal values
	TagIntLiteral    byte = 0x01
	TagStringLiteral byte = 0x02
	TagBoolLiteral   byte = 0x03
	TagNullLiteral   byte = 0x04

	// Variable references (by slot, never by name)
	TagLocalRef byte = 0x08

	// Expressions
	TagCalc       byte = 0x10
	TagArith      byte = 0x11
	TagComparison byte = 0x12
	TagLogical    byte = 0x13
	TagProcCall   byte = 0x14

	// Statements
	TagIf       byte = 0x20
	TagWhile    byte = 0x21
	TagVarDecl  byte = 0x22
	TagAssign   byte = 0x23
	TagReturn   byte = 0x24
	TagExprStmt byte = 0x25

	// Structure
	TagProc byte = 0x30
	TagUnit byte = 0x31

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagReservedZero,
	TagIntLiteral, TagStringLiteral, TagBoolLiteral, TagNullLiteral,
	TagLocalRef,
	TagCalc, TagArith, TagComparison, TagLogical, TagProcCall,
	TagIf, TagWhile, TagVarDecl, TagAssign, TagReturn, TagExprStmt,
	TagProc, TagUnit,
}
