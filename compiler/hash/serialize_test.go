package hash

import (
	"bytes"
	"testing"

	"github.com/chazu/rsc/compiler"
)

func mustUnit(t *testing.T, src string) *compiler.Unit {
	t.Helper()
	unit, err := compiler.Check([]compiler.SourceFile{{Name: "test.rs2", Text: src}})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return unit
}

func TestSerialize_Deterministic(t *testing.T) {
	src := `[proc,add](int $a, int $b)(int) return(calc($a + $b));`
	data1 := SerializeUnit(mustUnit(t, src))
	data2 := SerializeUnit(mustUnit(t, src))

	if !bytes.Equal(data1, data2) {
		t.Error("serialization is not deterministic")
	}
}

func TestSerialize_VersionPrefix(t *testing.T) {
	data := SerializeUnit(mustUnit(t, `[proc,noop]`))

	if len(data) < 2 {
		t.Fatal("short serialization")
	}
	if data[0] != HashVersion {
		t.Errorf("version prefix: got 0x%02X, want 0x%02X", data[0], HashVersion)
	}
	if data[1] != TagUnit {
		t.Errorf("unit tag: got 0x%02X, want 0x%02X", data[1], TagUnit)
	}
}

func TestSerialize_ProcHeader(t *testing.T) {
	unit := mustUnit(t, `[proc,noop]`)
	data := SerializeProc(unit.Procs[0])

	// version(1) + tag(1) + "proc"(4+4) + "noop"(4+4) + params(4) + returns(4)
	// + locals(2) + body(4) = 32
	if len(data) != 32 {
		t.Fatalf("length: got %d, want 32", len(data))
	}
	if data[1] != TagProc {
		t.Errorf("tag: got 0x%02X, want 0x%02X", data[1], TagProc)
	}
}

func TestSerialize_ParamNames(t *testing.T) {
	unit := mustUnit(t, `[proc,id](int $value)(int) return($value);`)
	data := SerializeProc(unit.Procs[0])
	// Each parameter is its type byte followed by its length-prefixed name.
	want := append([]byte{0, 0, 0, 1, byte(unit.Procs[0].Params[0].Type), 0, 0, 0, 5}, "value"...)
	if !bytes.Contains(data, want) {
		t.Errorf("serialization % X does not contain parameter % X", data, want)
	}
}
