package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// ErrorKind classifies a RuntimeError.
type ErrorKind int

const (
	// StackOverflow - frame depth exceeded MaxFrameDepth
	StackOverflow ErrorKind = iota + 1
	// InstructionBudget - executed more than MaxInstructions
	InstructionBudget
	// DivisionByZero - / or % with a zero divisor
	DivisionByZero
	// ArgumentError - entry arguments disagree with the target signature
	ArgumentError
	// Cancelled - the context was cancelled or its deadline passed
	Cancelled
)

var errorKindNames = map[ErrorKind]string{
	StackOverflow:     "StackOverflow",
	InstructionBudget: "InstructionBudget",
	DivisionByZero:    "DivisionByZero",
	ArgumentError:     "ArgumentError",
	Cancelled:         "Cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// CallSite is one entry of a runtime call chain.
type CallSite struct {
	Proc  string `json:"proc"`
	Depth int    `json:"depth"` // 1 for the entry procedure
	PC    int    `json:"pc"`    // next instruction offset in that frame
}

// RuntimeError aborts one execution. CallChain lists the active frames at
// the point of failure, innermost first. It is empty for argument errors
// raised before any frame exists.
type RuntimeError struct {
	Kind      ErrorKind
	Message   string
	CallChain []CallSite
	Cause     error
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Kind, e.Message)
	for _, site := range e.CallChain {
		fmt.Fprintf(&sb, "\n    at ~%s (depth %d, pc %04d)", site.Proc, site.Depth, site.PC)
	}
	return sb.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func argumentErrorf(format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: ArgumentError, Message: fmt.Sprintf(format, args...)}
}
