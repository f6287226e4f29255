package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chazu/rsc/types"
)

func TestProgramLookup(t *testing.T) {
	p := buildFactorial()
	idx, ok := p.Lookup("fact")
	if !ok || idx != 0 {
		t.Fatalf("Lookup(fact) = %d, %v", idx, ok)
	}
	if p.Proc("missing") != nil {
		t.Error("Proc(missing) should be nil")
	}
	e := p.Proc("fact")
	if e.ParamCount != 1 || e.ReturnCount != 1 || e.LocalCount != 1 {
		t.Errorf("fact entry = %+v", e)
	}
	if got := e.Signature(); got != "[proc,fact](int $n)(int)" {
		t.Errorf("Signature = %q", got)
	}
}

func TestAddConstantDedups(t *testing.T) {
	b := NewProgramBuilder()
	a := b.AddConstant(StringValue("hello"))
	c := b.AddConstant(LongValue(1 << 40))
	d := b.AddConstant(StringValue("hello"))
	if a != d {
		t.Errorf("identical constants got indices %d and %d", a, d)
	}
	if a == c {
		t.Error("distinct constants share an index")
	}
}

func TestDisassemble(t *testing.T) {
	p := buildFactorial()
	listing := p.Disassemble()

	for _, want := range []string{
		"; === [proc,fact](int $n)(int) ===",
		"LOAD_LOCAL",
		"JUMP_FALSE",
		"fact argc=1",
		"RETURN",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}

func TestValidateRejectsCorruptPrograms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Program)
		want   string
	}{
		{"unknown opcode", func(p *Program) { p.Code[0] = 0xEE }, "unknown opcode"},
		{"slot out of range", func(p *Program) { p.Procs[0].LocalCount = 0; p.Procs[0].ParamCount = 0; p.Procs[0].ParamTypes = nil }, "slot 0 out of range"},
		{"range out of bounds", func(p *Program) { p.Procs[0].End = len(p.Code) + 10 }, "out of bounds"},
		{"truncated", func(p *Program) { p.Code = p.Code[:len(p.Code)-1]; p.Procs[0].End--; p.Code[len(p.Code)-1] = byte(OpLoadLocal) }, "truncated"},
		{"bad argc", func(p *Program) { p.Procs[0].ParamCount = 2; p.Procs[0].LocalCount = 2; p.Procs[0].ParamTypes = []types.Type{types.Int, types.Int} }, "passes 1 args"},
	}

	for _, tc := range tests {
		p := buildFactorial()
		p.Code = append([]byte(nil), p.Code...)
		tc.mutate(p)
		err := p.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestProgramEncodingIsByteExact(t *testing.T) {
	b := NewProgramBuilder()
	idx := b.DeclareProc(ProcEntry{
		Name:        "greet",
		Trigger:     "proc",
		ParamTypes:  []types.Type{types.Coord},
		ParamNames:  []string{"where"},
		ReturnTypes: []types.Type{types.String, types.Long},
	})
	b.BeginProc(idx)
	b.EmitConstant(StringValue("hello"))
	b.EmitConstant(LongValue(1 << 40))
	b.Emit(OpReturn)
	b.EndProc(1)
	p := b.Build()

	first, err := MarshalProgram(p)
	if err != nil {
		t.Fatalf("MarshalProgram: %v", err)
	}
	decoded, err := UnmarshalProgram(first)
	if err != nil {
		t.Fatalf("UnmarshalProgram: %v", err)
	}
	second, err := MarshalProgram(decoded)
	if err != nil {
		t.Fatalf("MarshalProgram (second): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-encoding a decoded program changed its bytes")
	}
	if decoded.Proc("greet") == nil {
		t.Error("decoded program lost its procedure index")
	}
	if !bytes.Equal(decoded.Code, p.Code) {
		t.Error("decoded code differs")
	}
}

func TestUnmarshalProgramRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalProgram([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("expected error for malformed CBOR")
	}
}
