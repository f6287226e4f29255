package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the script lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInteger    // 42, 0xFF
	TokenString     // "hello"
	TokenIdentifier // proc, int, fib

	// Sigils
	TokenLocal // $name (literal is the name without the sigil)
	TokenGosub // ~name (literal is the name without the sigil)

	// Keywords
	TokenDef    // def_int, def_string, ...
	TokenIf     // if
	TokenElse   // else
	TokenWhile  // while
	TokenReturn // return
	TokenCalc   // calc
	TokenTrue   // true
	TokenFalse  // false
	TokenNull   // null

	// Arithmetic operators
	TokenPlus    // +
	TokenMinus   // -
	TokenStar    // *
	TokenSlash   // /
	TokenPercent // %

	// Comparison operators (= doubles as assignment)
	TokenEquals       // =
	TokenNotEquals    // !
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Logical operators (conditions only)
	TokenAnd // &
	TokenOr  // |

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLBrace    // {
	TokenRBrace    // }
	TokenComma     // ,
	TokenSemicolon // ;
)

var tokenNames = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenError:        "ERROR",
	TokenInteger:      "INTEGER",
	TokenString:       "STRING",
	TokenIdentifier:   "IDENTIFIER",
	TokenLocal:        "LOCAL",
	TokenGosub:        "GOSUB",
	TokenDef:          "DEF",
	TokenIf:           "if",
	TokenElse:         "else",
	TokenWhile:        "while",
	TokenReturn:       "return",
	TokenCalc:         "calc",
	TokenTrue:         "true",
	TokenFalse:        "false",
	TokenNull:         "null",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenPercent:      "%",
	TokenEquals:       "=",
	TokenNotEquals:    "!",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenAnd:          "&",
	TokenOr:           "|",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBracket:     "[",
	TokenRBracket:     "]",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
	TokenComma:        ",",
	TokenSemicolon:    ";",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text, or the name for sigil tokens
	Pos     Position // start position
	End     Position // position just past the token
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	case TokenLocal:
		return "$" + t.Literal
	case TokenGosub:
		return "~" + t.Literal
	case TokenString:
		if r := []rune(t.Literal); len(r) > 20 {
			return fmt.Sprintf("%q...", string(r[:20]))
		}
		return fmt.Sprintf("%q", t.Literal)
	}
	return t.Literal
}

// Reserved words mapped to their token types. def_ keywords are matched
// by prefix in the lexer.
var reservedWords = map[string]TokenType{
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"return": TokenReturn,
	"calc":   TokenCalc,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"null":   TokenNull,
}

// Keywords returns every reserved word, for completion.
func Keywords() []string {
	words := make([]string, 0, len(reservedWords))
	for w := range reservedWords {
		words = append(words, w)
	}
	return words
}

// IsComparison reports whether t is a comparison operator.
func (t TokenType) IsComparison() bool {
	return t >= TokenEquals && t <= TokenGreaterEqual
}
