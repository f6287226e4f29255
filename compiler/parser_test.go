package compiler

import (
	"errors"
	"testing"

	"github.com/chazu/rsc/types"
)

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	script, err := ParseScript("test.rs2", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return script
}

func TestParseProcHeader(t *testing.T) {
	script := mustParse(t, `
[proc,add](int $a, long $b)(long, boolean)
return(calc($b + 1), true);

[label,greet]
[clientscript,show](string $text)
`)
	if len(script.Procs) != 3 {
		t.Fatalf("got %d procs, want 3", len(script.Procs))
	}

	add := script.Procs[0]
	if add.Trigger != "proc" || add.Name != "add" {
		t.Errorf("header = [%s,%s], want [proc,add]", add.Trigger, add.Name)
	}
	if len(add.Params) != 2 || add.Params[0].Name != "a" || add.Params[0].Type != types.Int ||
		add.Params[1].Name != "b" || add.Params[1].Type != types.Long {
		t.Errorf("params = %+v", add.Params)
	}
	if len(add.Returns) != 2 || add.Returns[0] != types.Long || add.Returns[1] != types.Boolean {
		t.Errorf("returns = %v", add.Returns)
	}
	if len(add.Body) != 1 {
		t.Errorf("body has %d statements, want 1", len(add.Body))
	}

	greet := script.Procs[1]
	if greet.Trigger != "label" || len(greet.Params) != 0 || len(greet.Body) != 0 {
		t.Errorf("greet = %+v", greet)
	}
	show := script.Procs[2]
	if show.Trigger != "clientscript" || len(show.Params) != 1 || show.Params[0].Type != types.String {
		t.Errorf("show = %+v", show)
	}
}

func TestParseStatements(t *testing.T) {
	script := mustParse(t, `[proc,f](int $n)(int)
def_int $x = 1;
def_string $s;
$x, $n = ~pair;
if ($x = 1) {
	~noop;
} else if ($x > 2) {
	$x = 3;
} else {
	$x = 4;
}
while ($x < 10) {
	$x = calc($x + 1);
}
return($x);
`)
	body := script.Procs[0].Body
	if len(body) != 6 {
		t.Fatalf("got %d statements, want 6", len(body))
	}

	if decl, ok := body[0].(*VarDecl); !ok || decl.Name != "x" || decl.Type != types.Int || decl.Init == nil {
		t.Errorf("stmt 0 = %#v, want def_int $x = 1", body[0])
	}
	if decl, ok := body[1].(*VarDecl); !ok || decl.Type != types.String || decl.Init != nil {
		t.Errorf("stmt 1 = %#v, want def_string $s", body[1])
	}
	assign, ok := body[2].(*AssignStmt)
	if !ok || len(assign.Targets) != 2 || len(assign.Values) != 1 {
		t.Fatalf("stmt 2 = %#v, want multi-assign", body[2])
	}
	if _, ok := assign.Values[0].(*ProcCall); !ok {
		t.Errorf("assign value = %T, want *ProcCall", assign.Values[0])
	}

	ifStmt, ok := body[3].(*IfStmt)
	if !ok {
		t.Fatalf("stmt 3 = %T, want *IfStmt", body[3])
	}
	if _, ok := ifStmt.Then[0].(*ExprStmt); !ok {
		t.Errorf("then[0] = %T, want *ExprStmt", ifStmt.Then[0])
	}
	if len(ifStmt.Else) != 1 {
		t.Fatalf("else has %d statements, want one nested if", len(ifStmt.Else))
	}
	if nested, ok := ifStmt.Else[0].(*IfStmt); !ok || nested.Else == nil {
		t.Errorf("else-if chain not nested: %#v", ifStmt.Else[0])
	}

	if _, ok := body[4].(*WhileStmt); !ok {
		t.Errorf("stmt 4 = %T, want *WhileStmt", body[4])
	}
	if ret, ok := body[5].(*ReturnStmt); !ok || len(ret.Values) != 1 {
		t.Errorf("stmt 5 = %#v, want return($x)", body[5])
	}
}

func TestParseEmptyReturn(t *testing.T) {
	script := mustParse(t, `[proc,f] return; return();`)
	for i, s := range script.Procs[0].Body {
		if ret, ok := s.(*ReturnStmt); !ok || len(ret.Values) != 0 {
			t.Errorf("stmt %d = %#v, want empty return", i, s)
		}
	}
}

func TestParseCalcPrecedence(t *testing.T) {
	script := mustParse(t, `[proc,f](int $a)(int) return(calc(1 + $a * 2 - 6 / (3 % 2)));`)
	calc := script.Procs[0].Body[0].(*ReturnStmt).Values[0].(*CalcExpr)

	// ((1 + ($a * 2)) - (6 / (3 % 2)))
	sub, ok := calc.Expr.(*ArithExpr)
	if !ok || sub.Op != TokenMinus {
		t.Fatalf("root = %#v, want -", calc.Expr)
	}
	add, ok := sub.Left.(*ArithExpr)
	if !ok || add.Op != TokenPlus {
		t.Fatalf("left = %#v, want +", sub.Left)
	}
	if mul, ok := add.Right.(*ArithExpr); !ok || mul.Op != TokenStar {
		t.Errorf("add.Right = %#v, want *", add.Right)
	}
	div, ok := sub.Right.(*ArithExpr)
	if !ok || div.Op != TokenSlash {
		t.Fatalf("right = %#v, want /", sub.Right)
	}
	if mod, ok := div.Right.(*ArithExpr); !ok || mod.Op != TokenPercent {
		t.Errorf("div.Right = %#v, want %%", div.Right)
	}
}

func TestParseConditionPrecedence(t *testing.T) {
	script := mustParse(t, `[proc,f](int $a) if ($a = 1 | $a > 2 & $a < 5) { return; }`)
	cond := script.Procs[0].Body[0].(*IfStmt).Cond

	or, ok := cond.(*LogicalExpr)
	if !ok || or.Op != TokenOr {
		t.Fatalf("root = %#v, want |", cond)
	}
	if _, ok := or.Left.(*Comparison); !ok {
		t.Errorf("or.Left = %T, want *Comparison", or.Left)
	}
	if and, ok := or.Right.(*LogicalExpr); !ok || and.Op != TokenAnd {
		t.Errorf("or.Right = %#v, want &", or.Right)
	}

	script = mustParse(t, `[proc,g](int $a) if (($a = 1 | $a = 2) & $a ! 3) { return; }`)
	and, ok := script.Procs[0].Body[0].(*IfStmt).Cond.(*LogicalExpr)
	if !ok || and.Op != TokenAnd {
		t.Fatalf("grouped root = %#v, want &", script.Procs[0].Body[0].(*IfStmt).Cond)
	}
	if inner, ok := and.Left.(*LogicalExpr); !ok || inner.Op != TokenOr {
		t.Errorf("and.Left = %#v, want grouped |", and.Left)
	}
}

func TestParseLiterals(t *testing.T) {
	script := mustParse(t, `[proc,f] ~g(42, -7, 0xFF, "hi", true, false, null, $x, ~h);`)
	call := script.Procs[0].Body[0].(*ExprStmt).Expr.(*ProcCall)
	if call.Name != "g" || len(call.Args) != 9 {
		t.Fatalf("call = %#v", call)
	}

	ints := []int64{42, -7, 255}
	for i, want := range ints {
		lit, ok := call.Args[i].(*IntLiteral)
		if !ok || lit.Value != want {
			t.Errorf("arg %d = %#v, want %d", i, call.Args[i], want)
		}
	}
	if s, ok := call.Args[3].(*StringLiteral); !ok || s.Value != "hi" {
		t.Errorf("arg 3 = %#v", call.Args[3])
	}
	if b, ok := call.Args[4].(*BoolLiteral); !ok || !b.Value {
		t.Errorf("arg 4 = %#v", call.Args[4])
	}
	if b, ok := call.Args[5].(*BoolLiteral); !ok || b.Value {
		t.Errorf("arg 5 = %#v", call.Args[5])
	}
	if _, ok := call.Args[6].(*NullLiteral); !ok {
		t.Errorf("arg 6 = %#v", call.Args[6])
	}
	if l, ok := call.Args[7].(*LocalRef); !ok || l.Name != "x" {
		t.Errorf("arg 7 = %#v", call.Args[7])
	}
	if c, ok := call.Args[8].(*ProcCall); !ok || c.Name != "h" || len(c.Args) != 0 {
		t.Errorf("arg 8 = %#v", call.Args[8])
	}
}

func TestParseSpans(t *testing.T) {
	script := mustParse(t, "[proc,f](int $a)(int)\nreturn($a);\n")
	ret := script.Procs[0].Body[0]
	span := ret.Span()
	if span.Start.Line != 2 || span.Start.Column != 1 {
		t.Errorf("return starts at %d:%d, want 2:1", span.Start.Line, span.Start.Column)
	}
	if span.End.Line != 2 || span.End.Column != 12 {
		t.Errorf("return ends at %d:%d, want 2:12", span.End.Line, span.End.Column)
	}
	if end := script.Procs[0].Span().End; end.Line != 2 {
		t.Errorf("proc ends on line %d, want 2", end.Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		line     int
		col      int
	}{
		{"missing header", `return;`, "'['", 1, 1},
		{"bad trigger", `[func,f]`, "trigger (proc, label, clientscript, debugproc)", 1, 2},
		{"missing name", `[proc,]`, "procedure name", 1, 7},
		{"unknown param type", `[proc,f](float $x)`, "type name", 1, 10},
		{"param without sigil", `[proc,f](int x)`, "local variable", 1, 14},
		{"unknown def type", `[proc,f] def_float $x;`, "known def_ type", 1, 10},
		{"missing semicolon", "[proc,f] def_int $x = 1\n$x = 2;", "';'", 2, 1},
		{"arith outside calc", `[proc,f](int $a)(int) return($a + 1);`, "',' or ')'", 1, 33},
		{"comparison required", `[proc,f](int $a) if ($a) { return; }`, "comparison operator", 1, 24},
		{"bare value statement", `[proc,f] 42;`, "statement", 1, 10},
		{"unclosed block", `[proc,f](int $a) while ($a > 0) {`, "'}'", 1, 34},
		{"minus without integer", `[proc,f](int $a) $a = -$a;`, "integer after '-'", 1, 24},
		{"integer overflow", `[proc,f] ~g(99999999999999999999);`, "integer within 64 bits", 1, 13},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScript("test.rs2", tc.input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if parseErr.Expected != tc.expected {
				t.Errorf("expected = %q, want %q", parseErr.Expected, tc.expected)
			}
			if parseErr.Pos.Line != tc.line || parseErr.Pos.Column != tc.col {
				t.Errorf("error at %d:%d, want %d:%d", parseErr.Pos.Line, parseErr.Pos.Column, tc.line, tc.col)
			}
			if parseErr.File != "test.rs2" {
				t.Errorf("file = %q", parseErr.File)
			}
		})
	}
}

func TestParseLexErrorSurfaces(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
	}{
		{"mid file", "[proc,f]\n$a = \"open;", 2, 6},
		{"bare local sigil first", "$", 1, 1},
		{"bare call sigil first", "~", 1, 1},
		{"unknown character first", "@", 1, 1},
		{"unterminated comment first", "/* open", 1, 1},
		{"unterminated string first", "\"unterminated", 1, 1},
		{"second token", "[@", 1, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseScript("x.rs2", tc.src)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("error = %v, want *LexError", err)
			}
			if lexErr.File != "x.rs2" || lexErr.Pos.Line != tc.line || lexErr.Pos.Column != tc.col {
				t.Errorf("lex error at %s:%d:%d, want x.rs2:%d:%d", lexErr.File, lexErr.Pos.Line, lexErr.Pos.Column, tc.line, tc.col)
			}

			if _, err := Compile(tc.src); !errors.As(err, &lexErr) {
				t.Errorf("Compile error = %v, want *LexError", err)
			}
		})
	}
}
