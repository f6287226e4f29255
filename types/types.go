// Package types defines the closed set of script value types.
package types

import "fmt"

// Type is a script value type. Types are compared by tag; there are no
// user-defined types.
type Type uint8

const (
	Invalid Type = iota
	Int
	Long
	Boolean
	String

	// Integer-backed domain scalars. Each holds an id (or a packed
	// coordinate) and -1 for null.
	Coord
	Loc
	Obj
	Npc
	NamedObj
	PlayerUID
	NpcUID
	Stat
	Component
	Interface
	Inv
	Enum
	Struct
	Param
	DBTable
	DBRow
	DBColumn
	Varp
	MesAnim
)

var typeNames = [...]string{
	Invalid:   "<invalid>",
	Int:       "int",
	Long:      "long",
	Boolean:   "boolean",
	String:    "string",
	Coord:     "coord",
	Loc:       "loc",
	Obj:       "obj",
	Npc:       "npc",
	NamedObj:  "namedobj",
	PlayerUID: "playeruid",
	NpcUID:    "npcuid",
	Stat:      "stat",
	Component: "component",
	Interface: "interface",
	Inv:       "inv",
	Enum:      "enum",
	Struct:    "struct",
	Param:     "param",
	DBTable:   "dbtable",
	DBRow:     "dbrow",
	DBColumn:  "dbcolumn",
	Varp:      "varp",
	MesAnim:   "mesanim",
}

var byName map[string]Type

func init() {
	byName = make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		if Type(t) != Invalid {
			byName[name] = Type(t)
		}
	}
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Lookup returns the type with the given source name ("int", "coord", ...).
func Lookup(name string) (Type, bool) {
	t, ok := byName[name]
	return t, ok
}

// LookupDef returns the type declared by a def_ keyword such as "def_int".
func LookupDef(keyword string) (Type, bool) {
	const prefix = "def_"
	if len(keyword) <= len(prefix) || keyword[:len(prefix)] != prefix {
		return Invalid, false
	}
	return Lookup(keyword[len(prefix):])
}

// All returns every valid type in declaration order.
func All() []Type {
	out := make([]Type, 0, len(typeNames)-1)
	for t := Int; int(t) < len(typeNames); t++ {
		out = append(out, t)
	}
	return out
}

// IsNumeric reports whether arithmetic and ordering apply to t.
func (t Type) IsNumeric() bool {
	return t == Int || t == Long
}

// IsDomain reports whether t is an integer-backed domain scalar.
func (t Type) IsDomain() bool {
	return t >= Coord && int(t) < len(typeNames)
}

// IsStringLike reports whether values of t are carried as strings.
func (t Type) IsStringLike() bool {
	return t == String
}

// Null is the integer value of a null domain reference.
const Null = -1
