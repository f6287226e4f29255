package compiler

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( ) [ ] { } , ; + - * / % = ! < > <= >= & |`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenComma, ","},
		{TokenSemicolon, ";"},
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenEquals, "="},
		{TokenNotEquals, "!"},
		{TokenLess, "<"},
		{TokenGreater, ">"},
		{TokenLessEqual, "<="},
		{TokenGreaterEqual, ">="},
		{TokenAnd, "&"},
		{TokenOr, "|"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"0", "0"},
		{"0xFF", "0xFF"},
		{"0x7fffffff", "0x7fffffff"},
		{"2147483648", "2147483648"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenInteger {
			t.Errorf("Lexer(%q): type = %v, want INTEGER", tc.input, tok.Type)
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%q): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"say \"hi\""`, `say "hi"`},
		{`"a\\b"`, `a\b`},
		{`"line\nnext\ttab"`, "line\nnext\ttab"},
		{`"café"`, "café"},
	}

	for _, tc := range tests {
		l := NewLexer(tc.input)
		tok := l.NextToken()
		if tok.Type != TokenString {
			t.Errorf("Lexer(%s): type = %v, want STRING", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("Lexer(%s): literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerSigilsAndKeywords(t *testing.T) {
	input := `$count ~fib def_int def_coord if else while return calc true false null proc`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLocal, "count"},
		{TokenGosub, "fib"},
		{TokenDef, "def_int"},
		{TokenDef, "def_coord"},
		{TokenIf, "if"},
		{TokenElse, "else"},
		{TokenWhile, "while"},
		{TokenReturn, "return"},
		{TokenCalc, "calc"},
		{TokenTrue, "true"},
		{TokenFalse, "false"},
		{TokenNull, "null"},
		{TokenIdentifier, "proc"},
		{TokenEOF, ""},
	}

	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != len(expected) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(expected))
	}
	for i, exp := range expected {
		if toks[i].Type != exp.typ || toks[i].Literal != exp.lit {
			t.Errorf("token[%d] = %v %q, want %v %q", i, toks[i].Type, toks[i].Literal, exp.typ, exp.lit)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := `// line comment
$a /* block /* nested */ still comment */ $b
// trailing`
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	if toks[0].Literal != "a" || toks[1].Literal != "b" || toks[2].Type != TokenEOF {
		t.Errorf("unexpected tokens %v", toks)
	}
}

func TestLexerPositions(t *testing.T) {
	input := "[proc,a]\n  $x = 1;"
	toks, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	tests := []struct {
		idx  int
		line int
		col  int
	}{
		{0, 1, 1}, // [
		{1, 1, 2}, // proc
		{2, 1, 6}, // ,
		{3, 1, 7}, // a
		{5, 2, 3}, // $x
		{6, 2, 6}, // =
		{7, 2, 8}, // 1
	}
	for _, tc := range tests {
		pos := toks[tc.idx].Pos
		if pos.Line != tc.line || pos.Column != tc.col {
			t.Errorf("token[%d] %v at %d:%d, want %d:%d", tc.idx, toks[tc.idx], pos.Line, pos.Column, tc.line, tc.col)
		}
	}
	if end := toks[1].End; end.Column != 6 {
		t.Errorf("proc ends at column %d, want 6", end.Column)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		col   int
		char  rune
	}{
		{"unexpected character", "$a @", 1, 4, '@'},
		{"unterminated string", `"abc`, 1, 1, '"'},
		{"newline in string", "\"ab\ncd\"", 1, 1, '"'},
		{"bad escape", `"a\qb"`, 1, 3, 'q'},
		{"bare local sigil", "$ x", 1, 1, '$'},
		{"bare gosub sigil", "~(", 1, 1, '~'},
		{"unterminated block comment", "$a\n/* /* */", 2, 1, '/'},
		{"malformed hex", "0x", 1, 1, '0'},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.input)
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("Tokenize(%q) error = %v, want *LexError", tc.input, err)
			}
			if lexErr.Pos.Line != tc.line || lexErr.Pos.Column != tc.col {
				t.Errorf("error at %d:%d, want %d:%d", lexErr.Pos.Line, lexErr.Pos.Column, tc.line, tc.col)
			}
			if lexErr.Char != tc.char {
				t.Errorf("error char = %q, want %q", lexErr.Char, tc.char)
			}
		})
	}
}

func TestLexerRestartable(t *testing.T) {
	input := `[proc,f](int $n)(int) return(calc($n * 2));`
	first, err := Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Tokenize(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("token counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token[%d] differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := NewLexer("$a")
	l.NextToken()
	for i := 0; i < 3; i++ {
		if tok := l.NextToken(); tok.Type != TokenEOF {
			t.Fatalf("call %d after end: %v, want EOF", i, tok)
		}
	}
}

func TestTokenStringTruncatesOnRunes(t *testing.T) {
	tests := []struct {
		lit  string
		want string
	}{
		{"short", `"short"`},
		{strings.Repeat("é", 20), `"` + strings.Repeat("é", 20) + `"`},
		{strings.Repeat("é", 25), `"` + strings.Repeat("é", 20) + `"...`},
		{"abcdefghijklmnopqrs日本語", `"abcdefghijklmnopqrs日"...`},
	}
	for _, tc := range tests {
		got := Token{Type: TokenString, Literal: tc.lit}.String()
		if got != tc.want {
			t.Errorf("String() = %s, want %s", got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("String() = %q is not valid UTF-8", got)
		}
	}
}
