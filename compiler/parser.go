package compiler

import (
	"strconv"
	"strings"

	"github.com/chazu/rsc/types"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for script source
// ---------------------------------------------------------------------------

// Triggers lists the accepted procedure header triggers.
var Triggers = []string{"proc", "label", "clientscript", "debugproc"}

// Parser parses script source into an AST. It stops at the first error.
type Parser struct {
	lexer     *Lexer
	file      string
	curToken  Token
	peekToken Token
	prevEnd   Position // end of the last consumed token
	err       error
}

// bailout unwinds the parser after the first error.
type bailout struct{}

// NewParser creates a new parser for the given input. file is used only in
// error messages.
func NewParser(file, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		file:  file,
	}
	p.prime()
	return p
}

// prime reads two tokens to fill curToken and peekToken. A lexical error in
// the first token is kept in p.err for ParseScript to return.
func (p *Parser) prime() {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
		}
	}()
	p.peekToken = p.lexer.NextToken()
	p.nextToken()
}

// nextToken advances to the next token. A lexical error in the new current
// token aborts the parse.
func (p *Parser) nextToken() {
	p.prevEnd = p.curToken.End
	p.curToken = p.peekToken
	if p.curToken.Type != TokenEOF && p.curToken.Type != TokenError {
		p.peekToken = p.lexer.NextToken()
	}
	if p.curToken.Type == TokenError {
		lexErr := *p.lexer.Err()
		lexErr.File = p.file
		p.err = &lexErr
		panic(bailout{})
	}
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

// expect consumes the current token if it matches, otherwise aborts.
func (p *Parser) expect(t TokenType) Token {
	if !p.curTokenIs(t) {
		p.fail(quoteTokenType(t))
	}
	tok := p.curToken
	p.nextToken()
	return tok
}

// fail records a ParseError at the current token and aborts.
func (p *Parser) fail(expected string) {
	p.err = &ParseError{
		File:     p.file,
		Pos:      p.curToken.Pos,
		Expected: expected,
		Found:    p.curToken,
	}
	panic(bailout{})
}

func (p *Parser) span(start Position) Span {
	return Span{Start: start, End: p.prevEnd}
}

func quoteTokenType(t TokenType) string {
	switch t {
	case TokenIdentifier:
		return "identifier"
	case TokenLocal:
		return "local variable"
	case TokenInteger:
		return "integer"
	}
	return "'" + t.String() + "'"
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseScript parses a whole source file.
func (p *Parser) ParseScript() (script *Script, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			script, err = nil, p.err
		}
	}()

	if p.err != nil {
		return nil, p.err
	}
	script = &Script{File: p.file}
	for !p.curTokenIs(TokenEOF) {
		script.Procs = append(script.Procs, p.parseProc())
	}
	return script, nil
}

// ParseScript parses src as a single file.
func ParseScript(file, src string) (*Script, error) {
	return NewParser(file, src).ParseScript()
}

// parseProc parses [trigger,name](params)(returns) followed by statements up
// to the next header.
func (p *Parser) parseProc() *ProcDecl {
	start := p.curToken.Pos
	p.expect(TokenLBracket)

	trigger := p.curToken
	if !trigger.Type.isWord() || !isTrigger(trigger.Literal) {
		p.fail("trigger (" + strings.Join(Triggers, ", ") + ")")
	}
	p.nextToken()
	p.expect(TokenComma)

	if !p.curToken.Type.isWord() {
		p.fail("procedure name")
	}
	name := p.curToken.Literal
	p.nextToken()
	p.expect(TokenRBracket)

	decl := &ProcDecl{
		Trigger: trigger.Literal,
		Name:    name,
		File:    p.file,
	}

	if p.curTokenIs(TokenLParen) {
		decl.Params = p.parseParams()
		if p.curTokenIs(TokenLParen) {
			decl.Returns = p.parseTypeList()
		}
	}
	decl.SpanVal = p.span(start)

	for !p.curTokenIs(TokenLBracket) && !p.curTokenIs(TokenEOF) {
		decl.Body = append(decl.Body, p.parseStatement())
	}
	decl.SpanVal.End = p.prevEnd
	return decl
}

func isTrigger(s string) bool {
	for _, t := range Triggers {
		if t == s {
			return true
		}
	}
	return false
}

// isWord reports whether the token can serve as a bare name.
func (t TokenType) isWord() bool {
	return t == TokenIdentifier || (t >= TokenIf && t <= TokenNull)
}

// parseParams parses (type $name, ...).
func (p *Parser) parseParams() []Param {
	p.expect(TokenLParen)
	var params []Param
	for !p.curTokenIs(TokenRParen) {
		if len(params) > 0 {
			p.expect(TokenComma)
		}
		pos := p.curToken.Pos
		t := p.parseType()
		local := p.expect(TokenLocal)
		params = append(params, Param{Name: local.Literal, Type: t, Pos: pos})
	}
	p.expect(TokenRParen)
	return params
}

// parseTypeList parses (type, ...).
func (p *Parser) parseTypeList() []types.Type {
	p.expect(TokenLParen)
	var list []types.Type
	for !p.curTokenIs(TokenRParen) {
		if len(list) > 0 {
			p.expect(TokenComma)
		}
		list = append(list, p.parseType())
	}
	p.expect(TokenRParen)
	return list
}

func (p *Parser) parseType() types.Type {
	if p.curTokenIs(TokenIdentifier) {
		if t, ok := types.Lookup(p.curToken.Literal); ok {
			p.nextToken()
			return t
		}
	}
	p.fail("type name")
	return types.Invalid
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() Stmt {
	switch p.curToken.Type {
	case TokenIf:
		return p.parseIf()
	case TokenWhile:
		return p.parseWhile()
	case TokenDef:
		return p.parseVarDecl()
	case TokenReturn:
		return p.parseReturn()
	case TokenLocal:
		return p.parseAssign()
	case TokenGosub:
		start := p.curToken.Pos
		call := p.parseCall()
		p.expect(TokenSemicolon)
		return &ExprStmt{SpanVal: p.span(start), Expr: call}
	}
	p.fail("statement")
	return nil
}

func (p *Parser) parseBlock() []Stmt {
	p.expect(TokenLBrace)
	var stmts []Stmt
	for !p.curTokenIs(TokenRBrace) {
		if p.curTokenIs(TokenEOF) {
			p.fail("'}'")
		}
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(TokenRBrace)
	return stmts
}

func (p *Parser) parseIf() *IfStmt {
	start := p.curToken.Pos
	p.expect(TokenIf)
	p.expect(TokenLParen)
	cond := p.parseCondition()
	p.expect(TokenRParen)

	stmt := &IfStmt{Cond: cond, Then: p.parseBlock()}
	if p.curTokenIs(TokenElse) {
		p.nextToken()
		if p.curTokenIs(TokenIf) {
			stmt.Else = []Stmt{p.parseIf()}
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	stmt.SpanVal = p.span(start)
	return stmt
}

func (p *Parser) parseWhile() *WhileStmt {
	start := p.curToken.Pos
	p.expect(TokenWhile)
	p.expect(TokenLParen)
	cond := p.parseCondition()
	p.expect(TokenRParen)
	body := p.parseBlock()
	return &WhileStmt{SpanVal: p.span(start), Cond: cond, Body: body}
}

// parseVarDecl parses def_<type> $name (= value)?;
func (p *Parser) parseVarDecl() *VarDecl {
	start := p.curToken.Pos
	t, ok := types.LookupDef(p.curToken.Literal)
	if !ok {
		p.fail("known def_ type")
	}
	p.nextToken()
	name := p.expect(TokenLocal).Literal

	decl := &VarDecl{Type: t, Name: name}
	if p.curTokenIs(TokenEquals) {
		p.nextToken()
		decl.Init = p.parseValue()
	}
	p.expect(TokenSemicolon)
	decl.SpanVal = p.span(start)
	return decl
}

// parseAssign parses $a (, $b)* = value (, value)*;
func (p *Parser) parseAssign() *AssignStmt {
	start := p.curToken.Pos
	stmt := &AssignStmt{}
	for {
		tok := p.expect(TokenLocal)
		stmt.Targets = append(stmt.Targets, &LocalRef{
			SpanVal: Span{Start: tok.Pos, End: tok.End},
			Name:    tok.Literal,
		})
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(TokenEquals)
	stmt.Values = p.parseValueList(TokenSemicolon)
	p.expect(TokenSemicolon)
	stmt.SpanVal = p.span(start)
	return stmt
}

// parseReturn parses return; or return(values);
func (p *Parser) parseReturn() *ReturnStmt {
	start := p.curToken.Pos
	p.expect(TokenReturn)
	stmt := &ReturnStmt{}
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		if !p.curTokenIs(TokenRParen) {
			stmt.Values = p.parseValueList(TokenRParen)
		}
		p.expect(TokenRParen)
	}
	p.expect(TokenSemicolon)
	stmt.SpanVal = p.span(start)
	return stmt
}

// parseValueList parses one or more comma separated values. end is only
// used to word the error for a missing value.
func (p *Parser) parseValueList(end TokenType) []Expr {
	values := []Expr{p.parseValue()}
	for p.curTokenIs(TokenComma) {
		p.nextToken()
		values = append(values, p.parseValue())
	}
	if !p.curTokenIs(end) {
		p.fail("',' or " + quoteTokenType(end))
	}
	return values
}

// ---------------------------------------------------------------------------
// Conditions
// ---------------------------------------------------------------------------

// parseCondition parses a condition: comparisons joined by & and |, with &
// binding tighter.
func (p *Parser) parseCondition() Expr {
	start := p.curToken.Pos
	left := p.parseAndCondition()
	for p.curTokenIs(TokenOr) {
		p.nextToken()
		right := p.parseAndCondition()
		left = &LogicalExpr{SpanVal: p.span(start), Op: TokenOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAndCondition() Expr {
	start := p.curToken.Pos
	left := p.parseConditionAtom()
	for p.curTokenIs(TokenAnd) {
		p.nextToken()
		right := p.parseConditionAtom()
		left = &LogicalExpr{SpanVal: p.span(start), Op: TokenAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseConditionAtom() Expr {
	start := p.curToken.Pos
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		cond := p.parseCondition()
		p.expect(TokenRParen)
		return cond
	}

	left := p.parseValue()
	op := p.curToken.Type
	if !op.IsComparison() {
		p.fail("comparison operator")
	}
	p.nextToken()
	right := p.parseValue()
	return &Comparison{SpanVal: p.span(start), Op: op, Left: left, Right: right}
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// parseValue parses a value expression: a literal, a local, calc(...) or a
// procedure call.
func (p *Parser) parseValue() Expr {
	start := p.curToken.Pos
	switch p.curToken.Type {
	case TokenInteger:
		return p.parseInteger(false)

	case TokenMinus:
		p.nextToken()
		if !p.curTokenIs(TokenInteger) {
			p.fail("integer after '-'")
		}
		lit := p.parseInteger(true)
		lit.SpanVal.Start = start
		return lit

	case TokenString:
		tok := p.curToken
		p.nextToken()
		return &StringLiteral{SpanVal: p.span(start), Value: tok.Literal}

	case TokenTrue, TokenFalse:
		value := p.curTokenIs(TokenTrue)
		p.nextToken()
		return &BoolLiteral{SpanVal: p.span(start), Value: value}

	case TokenNull:
		p.nextToken()
		return &NullLiteral{SpanVal: p.span(start)}

	case TokenLocal:
		tok := p.curToken
		p.nextToken()
		return &LocalRef{SpanVal: p.span(start), Name: tok.Literal}

	case TokenCalc:
		p.nextToken()
		p.expect(TokenLParen)
		arith := p.parseArith()
		p.expect(TokenRParen)
		return &CalcExpr{SpanVal: p.span(start), Expr: arith}

	case TokenGosub:
		return p.parseCall()
	}

	p.fail("value")
	return nil
}

func (p *Parser) parseInteger(negative bool) *IntLiteral {
	tok := p.curToken
	lit := tok.Literal
	if negative {
		lit = "-" + lit
	}
	base := 10
	if strings.HasPrefix(tok.Literal, "0x") || strings.HasPrefix(tok.Literal, "0X") {
		base = 0
	}
	n, err := strconv.ParseInt(lit, base, 64)
	if err != nil {
		p.fail("integer within 64 bits")
	}
	p.nextToken()
	return &IntLiteral{SpanVal: p.span(tok.Pos), Value: n}
}

// parseCall parses ~name or ~name(args).
func (p *Parser) parseCall() *ProcCall {
	start := p.curToken.Pos
	name := p.expect(TokenGosub).Literal
	call := &ProcCall{Name: name}
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		if !p.curTokenIs(TokenRParen) {
			call.Args = p.parseValueList(TokenRParen)
		}
		p.expect(TokenRParen)
	}
	call.SpanVal = p.span(start)
	return call
}

// ---------------------------------------------------------------------------
// Arithmetic (inside calc only)
// ---------------------------------------------------------------------------

func (p *Parser) parseArith() Expr {
	start := p.curToken.Pos
	left := p.parseTerm()
	for p.curTokenIs(TokenPlus) || p.curTokenIs(TokenMinus) {
		op := p.curToken.Type
		p.nextToken()
		right := p.parseTerm()
		left = &ArithExpr{SpanVal: p.span(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() Expr {
	start := p.curToken.Pos
	left := p.parseFactor()
	for p.curTokenIs(TokenStar) || p.curTokenIs(TokenSlash) || p.curTokenIs(TokenPercent) {
		op := p.curToken.Type
		p.nextToken()
		right := p.parseFactor()
		left = &ArithExpr{SpanVal: p.span(start), Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() Expr {
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		inner := p.parseArith()
		p.expect(TokenRParen)
		return inner
	}
	return p.parseValue()
}
