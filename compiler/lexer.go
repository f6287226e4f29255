package compiler

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for script source
// ---------------------------------------------------------------------------

const eof = -1

// Lexer tokenizes script source. It is lazy: each NextToken call scans one
// token. A Lexer holds no state beyond its position, so a new Lexer over the
// same input yields the same sequence.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character, eof at end of input
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based, in runes)

	err *LexError // set when a TokenError is produced
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		if l.ch != eof {
			l.col++
		}
		l.ch = eof
		l.pos = len(l.input)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the position of the current character.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// Err returns the error behind the most recent TokenError, if any.
func (l *Lexer) Err() *LexError {
	return l.err
}

func (l *Lexer) errorToken(pos Position, ch rune, format string, args ...any) Token {
	msg := fmt.Sprintf(format, args...)
	l.err = &LexError{Pos: pos, Char: ch, Message: msg}
	return Token{Type: TokenError, Literal: msg, Pos: pos}
}

// single consumes one character and returns a token of type t.
func (l *Lexer) single(t TokenType, pos Position) Token {
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: pos}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	tok.End = l.position()
	return tok
}

func (l *Lexer) scan() Token {
	if errTok, ok := l.skipWhitespaceAndComments(); !ok {
		return errTok
	}

	pos := l.position()

	switch {
	case l.ch == eof:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '(':
		return l.single(TokenLParen, pos)
	case l.ch == ')':
		return l.single(TokenRParen, pos)
	case l.ch == '[':
		return l.single(TokenLBracket, pos)
	case l.ch == ']':
		return l.single(TokenRBracket, pos)
	case l.ch == '{':
		return l.single(TokenLBrace, pos)
	case l.ch == '}':
		return l.single(TokenRBrace, pos)
	case l.ch == ',':
		return l.single(TokenComma, pos)
	case l.ch == ';':
		return l.single(TokenSemicolon, pos)
	case l.ch == '+':
		return l.single(TokenPlus, pos)
	case l.ch == '-':
		return l.single(TokenMinus, pos)
	case l.ch == '*':
		return l.single(TokenStar, pos)
	case l.ch == '/':
		return l.single(TokenSlash, pos)
	case l.ch == '%':
		return l.single(TokenPercent, pos)
	case l.ch == '=':
		return l.single(TokenEquals, pos)
	case l.ch == '!':
		return l.single(TokenNotEquals, pos)
	case l.ch == '&':
		return l.single(TokenAnd, pos)
	case l.ch == '|':
		return l.single(TokenOr, pos)

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenLessEqual, Literal: "<=", Pos: pos}
		}
		return Token{Type: TokenLess, Literal: "<", Pos: pos}

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenGreaterEqual, Literal: ">=", Pos: pos}
		}
		return Token{Type: TokenGreater, Literal: ">", Pos: pos}

	case l.ch == '"':
		return l.readString(pos)

	case l.ch == '$':
		return l.readSigil(TokenLocal, pos)

	case l.ch == '~':
		return l.readSigil(TokenGosub, pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case isIdentStart(l.ch):
		return l.readIdentifierOrKeyword(pos)

	default:
		ch := l.ch
		l.readChar()
		return l.errorToken(pos, ch, "unexpected character %q", ch)
	}
}

// skipWhitespaceAndComments skips whitespace, // line comments and nestable
// /* */ block comments. It returns an error token for an unterminated block
// comment.
func (l *Lexer) skipWhitespaceAndComments() (Token, bool) {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != eof {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.position()
			l.readChar() // /
			l.readChar() // *
			depth := 1
			for depth > 0 {
				switch {
				case l.ch == eof:
					return l.errorToken(start, '/', "unterminated block comment"), false
				case l.ch == '/' && l.peekChar() == '*':
					l.readChar()
					l.readChar()
					depth++
				case l.ch == '*' && l.peekChar() == '/':
					l.readChar()
					l.readChar()
					depth--
				default:
					l.readChar()
				}
			}
			continue
		}

		return Token{}, true
	}
}

// readString reads a double-quoted string literal.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // consume opening "

	var sb strings.Builder
	for {
		switch l.ch {
		case eof, '\n':
			return l.errorToken(pos, '"', "unterminated string")
		case '"':
			l.readChar()
			return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
		case '\\':
			escPos := l.position()
			l.readChar()
			switch l.ch {
			case '"', '\\':
				sb.WriteRune(l.ch)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				return l.errorToken(escPos, l.ch, "unknown escape \\%c", l.ch)
			}
			l.readChar()
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readSigil reads $name or ~name.
func (l *Lexer) readSigil(t TokenType, pos Position) Token {
	sigil := l.ch
	l.readChar()
	if !isIdentStart(l.ch) {
		return l.errorToken(pos, sigil, "expected a name after %q", sigil)
	}
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return Token{Type: t, Literal: l.input[start:l.pos], Pos: pos}
}

// readNumber reads a decimal or 0x-prefixed hexadecimal integer.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		if !isHexDigit(l.ch) {
			return l.errorToken(pos, '0', "malformed hex literal")
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenInteger, Literal: l.input[start:l.pos], Pos: pos}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenInteger, Literal: l.input[start:l.pos], Pos: pos}
}

// readIdentifierOrKeyword reads an identifier, reserved word or def_ keyword.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.pos]

	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}
	if strings.HasPrefix(literal, "def_") {
		return Token{Type: TokenDef, Literal: literal, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: literal, Pos: pos}
}

// Helper functions

func isIdentStart(r rune) bool {
	return r == '_' || (r != eof && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Tokenize returns all tokens from the input, ending with TokenEOF, or the
// first lexical error.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenError {
			return tokens, l.Err()
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
