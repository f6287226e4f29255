package vm

import (
	"context"
	"strconv"
	"strings"

	"github.com/chazu/rsc/types"
)

// ParseArgs converts command-line style string arguments into values of the
// named procedure's parameter types. Any disagreement in count or any
// unparsable argument is an ArgumentError.
func (p *Program) ParseArgs(name string, args []string) ([]Value, error) {
	proc := p.Proc(name)
	if proc == nil {
		return nil, argumentErrorf("unknown procedure %q", name)
	}
	if len(args) != proc.ParamCount {
		return nil, argumentErrorf("~%s takes %d arguments, got %d", name, proc.ParamCount, len(args))
	}

	values := make([]Value, len(args))
	for j, raw := range args {
		v, err := ParseValue(proc.ParamTypes[j], raw)
		if err != nil {
			return nil, argumentErrorf("~%s argument %d ($%s): %v", name, j+1, paramName(proc, j), err)
		}
		values[j] = v
	}
	return values, nil
}

func paramName(proc *ProcEntry, j int) string {
	if j < len(proc.ParamNames) {
		return proc.ParamNames[j]
	}
	return strconv.Itoa(j)
}

// ParseValue parses the textual form of a value of type t.
func ParseValue(t types.Type, raw string) (Value, error) {
	switch {
	case t == types.Int:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Value{}, numError(raw, t, err)
		}
		return IntValue(int32(n)), nil

	case t == types.Long:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, numError(raw, t, err)
		}
		return LongValue(n), nil

	case t == types.Boolean:
		switch raw {
		case "true", "1":
			return BoolValue(true), nil
		case "false", "0":
			return BoolValue(false), nil
		}
		return Value{}, &parseError{raw: raw, want: t, reason: "expected true or false"}

	case t == types.String:
		return StringValue(raw), nil

	case t == types.Coord && strings.Count(raw, "_") == 4:
		return parseCoord(raw)

	case t.IsDomain():
		if raw == "null" {
			return DomainValue(t, types.Null), nil
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Value{}, numError(raw, t, err)
		}
		if n < types.Null {
			return Value{}, &parseError{raw: raw, want: t, reason: "ids cannot be negative"}
		}
		return DomainValue(t, int32(n)), nil
	}
	return Value{}, &parseError{raw: raw, want: t, reason: "no textual form"}
}

// parseCoord parses level_mx_mz_lx_lz.
func parseCoord(raw string) (Value, error) {
	parts := strings.Split(raw, "_")
	limits := []int64{3, 255, 255, 63, 63}
	var n [5]int32
	for j, part := range parts {
		v, err := strconv.ParseInt(part, 10, 32)
		if err != nil || v < 0 || v > limits[j] {
			return Value{}, &parseError{raw: raw, want: types.Coord, reason: "expected level_mx_mz_lx_lz"}
		}
		n[j] = int32(v)
	}
	return DomainValue(types.Coord, PackCoord(n[0], n[1]*64+n[3], n[2]*64+n[4])), nil
}

type parseError struct {
	raw    string
	want   types.Type
	reason string
}

func (e *parseError) Error() string {
	return "cannot parse " + strconv.Quote(e.raw) + " as " + e.want.String() + ": " + e.reason
}

func numError(raw string, t types.Type, err error) error {
	reason := "not an integer"
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		reason = "out of range"
	}
	return &parseError{raw: raw, want: t, reason: reason}
}

// Invoke parses string arguments for the named procedure and runs it on a
// fresh interpreter.
func (p *Program) Invoke(ctx context.Context, name string, args []string, opts ...Option) ([]Value, error) {
	values, err := p.ParseArgs(name, args)
	if err != nil {
		return nil, err
	}
	return NewInterpreter(p, opts...).Call(ctx, name, values)
}
