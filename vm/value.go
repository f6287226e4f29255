package vm

import (
	"fmt"
	"strconv"

	"github.com/chazu/rsc/types"
)

// Value is a script value. Integer-backed types (int, long, boolean and the
// domain scalars) live in Int; strings live in Str. Type records the static
// type the value was produced as and only matters for formatting.
type Value struct {
	Type types.Type `cbor:"1,keyasint"`
	Int  int64      `cbor:"2,keyasint,omitempty"`
	Str  string     `cbor:"3,keyasint,omitempty"`
}

// IntValue returns an int value.
func IntValue(n int32) Value {
	return Value{Type: types.Int, Int: int64(n)}
}

// LongValue returns a long value.
func LongValue(n int64) Value {
	return Value{Type: types.Long, Int: n}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	if b {
		return Value{Type: types.Boolean, Int: 1}
	}
	return Value{Type: types.Boolean}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{Type: types.String, Str: s}
}

// DomainValue returns an integer-backed value of a domain type.
func DomainValue(t types.Type, id int32) Value {
	return Value{Type: t, Int: int64(id)}
}

// ZeroValue returns the value an uninitialized local of type t holds.
func ZeroValue(t types.Type) Value {
	switch {
	case t == types.String:
		return StringValue("")
	case t == types.Boolean:
		return BoolValue(false)
	case t.IsDomain():
		return DomainValue(t, types.Null)
	default:
		return Value{Type: t}
	}
}

// Truthy reports whether a boolean value is true.
func (v Value) Truthy() bool {
	return v.Int != 0
}

// IsNull reports whether v is a null domain reference.
func (v Value) IsNull() bool {
	return v.Type.IsDomain() && v.Int == types.Null
}

// Equal compares two values by content. Strings compare by text, everything
// else by integer payload.
func (v Value) Equal(o Value) bool {
	if v.Type == types.String || o.Type == types.String {
		return v.Type == o.Type && v.Str == o.Str
	}
	return v.Int == o.Int
}

func (v Value) String() string {
	switch {
	case v.Type == types.String:
		return v.Str
	case v.Type == types.Boolean:
		if v.Truthy() {
			return "true"
		}
		return "false"
	case v.IsNull():
		return "null"
	case v.Type == types.Coord:
		return FormatCoord(int32(v.Int))
	default:
		return strconv.FormatInt(v.Int, 10)
	}
}

// Quoted formats v for listings, quoting strings.
func (v Value) Quoted() string {
	if v.Type == types.String {
		return strconv.Quote(v.Str)
	}
	return fmt.Sprintf("%s %s", v.Type, v.String())
}

// ---------------------------------------------------------------------------
// Coordinates
// ---------------------------------------------------------------------------

// Coordinates pack level, x and z into one int:
// level in bits 28-29, x in bits 14-27, z in bits 0-13. The source and
// argument form is level_mx_mz_lx_lz where x = mx*64+lx and z = mz*64+lz.

// PackCoord packs a level/x/z triple.
func PackCoord(level, x, z int32) int32 {
	return (level&0x3)<<28 | (x&0x3FFF)<<14 | z&0x3FFF
}

// UnpackCoord splits a packed coordinate.
func UnpackCoord(c int32) (level, x, z int32) {
	return (c >> 28) & 0x3, (c >> 14) & 0x3FFF, c & 0x3FFF
}

// FormatCoord renders a packed coordinate as level_mx_mz_lx_lz.
func FormatCoord(c int32) string {
	level, x, z := UnpackCoord(c)
	return fmt.Sprintf("%d_%d_%d_%d_%d", level, x/64, z/64, x%64, z%64)
}
