package hash

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/chazu/rsc/compiler"
)

// HashUnit computes the SHA-256 content hash of a resolved translation unit.
//
// The hash is computed over a deterministic serialization of the checked AST
// with locals referenced by slot. Two units that differ only in layout,
// comments or local variable names produce the same hash, and therefore the
// same compiled program.
func HashUnit(unit *compiler.Unit) [32]byte {
	return sha256.Sum256(SerializeUnit(unit))
}

// HashProc computes the content hash of one resolved procedure.
func HashProc(decl *compiler.ProcDecl) [32]byte {
	return sha256.Sum256(SerializeProc(decl))
}

// Hex renders a hash the way it is stored and displayed.
func Hex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}
