package parser

import (
	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/diag"
	"github.com/nust-lang/nust/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

const (
	precedenceLowest = iota
	precedenceAssign
	precedenceOr
	precedenceAnd
	precedenceEquality
	precedenceComparison
	precedenceSum
	precedenceProduct
	precedencePrefix
	precedenceCall
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   precedenceAssign,
	lexer.OR:       precedenceOr,
	lexer.AND:      precedenceAnd,
	lexer.EQ:       precedenceEquality,
	lexer.NOT_EQ:   precedenceEquality,
	lexer.LT:       precedenceComparison,
	lexer.LE:       precedenceComparison,
	lexer.GT:       precedenceComparison,
	lexer.GE:       precedenceComparison,
	lexer.PLUS:     precedenceSum,
	lexer.MINUS:    precedenceSum,
	lexer.ASTERISK: precedenceProduct,
	lexer.SLASH:    precedenceProduct,
	lexer.LPAREN:   precedenceCall,
}

// Parser implements a Pratt-style recursive descent parser for Nust.
// Parsing is fail-fast: the first mismatch records a diagnostic and
// every production unwinds by returning nil. curTok/peekTok form the
// sole lookahead window and are only mutated via nextToken.
//
// The parser also builds the lexical scope tree: function bodies,
// blocks, if arms and while bodies each push a scope, let statements
// append the declared name to the current scope, and every statement
// node records the scope it was created in.
type Parser struct {
	lx      *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token

	err *diag.Diagnostic

	scope *ast.Scope

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New returns a parser initialised with the provided source input.
func New(input string) *Parser {
	p := &Parser{
		lx:        lexer.New(input),
		scope:     ast.NewScope(nil),
		prefixFns: make(map[lexer.TokenType]prefixParseFn),
		infixFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.registerPrefix(lexer.INT, p.parseIntLit)
	p.registerPrefix(lexer.TRUE, p.parseBoolLit)
	p.registerPrefix(lexer.FALSE, p.parseBoolLit)
	p.registerPrefix(lexer.STRING, p.parseStringLit)
	p.registerPrefix(lexer.IDENT, p.parseIdent)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpr)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpr)
	p.registerPrefix(lexer.AMPERSAND, p.parseBorrowExpr)
	p.registerPrefix(lexer.AND, p.parseDoubleBorrowExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)

	p.registerInfix(lexer.ASSIGN, p.parseAssignExpr)
	p.registerInfix(lexer.OR, p.parseInfixExpr)
	p.registerInfix(lexer.AND, p.parseInfixExpr)
	p.registerInfix(lexer.EQ, p.parseInfixExpr)
	p.registerInfix(lexer.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(lexer.LT, p.parseInfixExpr)
	p.registerInfix(lexer.LE, p.parseInfixExpr)
	p.registerInfix(lexer.GT, p.parseInfixExpr)
	p.registerInfix(lexer.GE, p.parseInfixExpr)
	p.registerInfix(lexer.PLUS, p.parseInfixExpr)
	p.registerInfix(lexer.MINUS, p.parseInfixExpr)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpr)
	p.registerInfix(lexer.SLASH, p.parseInfixExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// Parse parses a full compilation unit. On failure it returns the
// first error encountered; there is no recovery.
func (p *Parser) Parse() (*ast.Program, error) {
	start := p.curTok.Span
	end := start

	var items []*ast.FunctionDecl

	for p.err == nil && p.curTok.Type != lexer.EOF {
		if p.curTok.Type != lexer.FN {
			p.fail("Expected 'fn'", p.curTok.Span.Start)
			break
		}
		fn := p.parseFunction()
		if fn == nil {
			break
		}
		items = append(items, fn)
		end = fn.Span()
	}

	if p.err != nil {
		return nil, *p.err
	}

	return ast.NewProgram(items, mergeSpan(start, end)), nil
}

// parseFunction parses one function declaration. curTok is the `fn`
// keyword on entry and the first token after the body on return.
func (p *Parser) parseFunction() *ast.FunctionDecl {
	start := p.curTok.Span

	p.nextToken()
	if p.curTok.Type != lexer.IDENT {
		p.fail("Expected identifier", p.curTok.Span.Start)
		return nil
	}
	name := p.curTok.Literal

	if !p.expect(lexer.LPAREN) {
		return nil
	}

	params := p.parseParams()
	if p.err != nil {
		return nil
	}

	var returnType *ast.Type
	if p.peekTok.Type == lexer.ARROW {
		p.nextToken() // move to '->'
		p.nextToken() // move to return type start
		returnType = p.parseType()
		if returnType == nil {
			return nil
		}
	} else {
		// A missing `->` defaults the return type to i32.
		pos := p.peekTok.Span.Start
		returnType = ast.NewType(ast.KindI32, lexer.Span{Start: pos, End: pos})
	}

	fnScope := p.enterScope()
	for _, param := range params {
		fnScope.Declare(param.Name)
	}

	if !p.expect(lexer.LBRACE) {
		p.exitScope()
		return nil
	}

	body := p.parseBlock()
	p.exitScope()
	if body == nil {
		return nil
	}

	return ast.NewFunctionDecl(name, params, returnType, body, mergeSpan(start, body.Span()))
}

// parseParams parses the parenthesized parameter list. curTok is '('
// on entry and ')' on return.
func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
		return params
	}

	for {
		p.nextToken()

		start := p.curTok.Span
		mutable := false
		if p.curTok.Type == lexer.MUT {
			mutable = true
			p.nextToken()
		}

		if p.curTok.Type != lexer.IDENT {
			p.fail("Expected identifier", p.curTok.Span.Start)
			return nil
		}
		name := p.curTok.Literal

		if !p.expect(lexer.COLON) {
			return nil
		}

		p.nextToken()
		typ := p.parseType()
		if typ == nil {
			return nil
		}

		params = append(params, ast.Param{
			Mutable: mutable,
			Name:    name,
			Type:    typ,
			Span:    mergeSpan(start, typ.Span),
		})

		if p.peekTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	if !p.expect(lexer.RPAREN) {
		return nil
	}

	return params
}

// nextToken advances the parser's token window. An ILLEGAL token is a
// lexical error; its message becomes the fatal parse error.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()

	if p.curTok.Type == lexer.ILLEGAL {
		p.fail(p.curTok.Literal, p.curTok.Span.Start)
	}
}

// expect asserts that the peek token matches the provided type and
// promotes it into curTok on success.
func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.peekTok.Type == tt {
		p.nextToken()
		return true
	}
	p.fail("Expected '"+string(tt)+"'", p.peekTok.Span.Start)
	return false
}

// fail records the first fatal parse error; later failures are the
// fallout of unwinding and are dropped.
func (p *Parser) fail(msg string, pos int) {
	if p.err != nil {
		return
	}
	d := diag.New(diag.StageParser, msg, pos, pos)
	p.err = &d
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixFns[tokenType] = fn
}

func (p *Parser) enterScope() *ast.Scope {
	p.scope = ast.NewScope(p.scope)
	return p.scope
}

func (p *Parser) exitScope() {
	if p.scope.Parent != nil {
		p.scope = p.scope.Parent
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curTok.Type]; ok {
		return prec
	}
	return precedenceLowest
}

// mergeSpan returns a span covering both arguments. Callers pass the
// earliest span first; lexer spans are half-open.
func mergeSpan(start, end lexer.Span) lexer.Span {
	span := start
	if end.End > span.End {
		span.End = end.End
	}
	return span
}
