package parser

import (
	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/lexer"
)

// parseStatement parses one statement. curTok is the statement's
// first token on entry and the first token after it on return.
func (p *Parser) parseStatement() ast.Stmt {
	switch p.curTok.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.LBRACE:
		if block := p.parseBlock(); block != nil {
			return block
		}
		return nil
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.curTok.Span

	mutable := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		mutable = true
	}

	if p.peekTok.Type != lexer.IDENT {
		p.fail("Expected identifier", p.peekTok.Span.Start)
		return nil
	}
	p.nextToken()
	name := p.curTok.Literal

	if !p.expect(lexer.COLON) {
		return nil
	}

	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		return nil
	}

	if !p.expect(lexer.ASSIGN) {
		return nil
	}

	p.nextToken()
	init := p.parseExpr()
	if init == nil {
		return nil
	}

	if !p.expect(lexer.SEMICOLON) {
		return nil
	}

	p.scope.Declare(name)

	stmt := ast.NewLetStmt(mutable, name, typ, init, p.scope, mergeSpan(start, p.curTok.Span))
	p.nextToken()
	return stmt
}

func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.curTok.Span

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	span := mergeSpan(start, expr.Span())

	// A trailing ';' is required unless the expression immediately
	// precedes '}' or end of input, so a block-final expression can
	// stand as the block's value.
	switch p.peekTok.Type {
	case lexer.SEMICOLON:
		p.nextToken()
		span = mergeSpan(span, p.curTok.Span)
	case lexer.RBRACE, lexer.EOF:
	default:
		p.fail("Expected ';'", p.peekTok.Span.Start)
		return nil
	}

	stmt := ast.NewExprStmt(expr, p.scope, span)
	p.nextToken()
	return stmt
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.curTok.Span
	outer := p.scope

	p.nextToken()
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	p.enterScope()
	then := p.parseBlock()
	p.exitScope()
	if then == nil {
		return nil
	}

	var els ast.Stmt
	if p.curTok.Type == lexer.ELSE {
		p.nextToken()

		p.enterScope()
		switch p.curTok.Type {
		case lexer.IF:
			els = p.parseIfStmt()
		case lexer.LBRACE:
			if block := p.parseBlock(); block != nil {
				els = block
			}
		default:
			p.fail("Expected '{'", p.curTok.Span.Start)
		}
		p.exitScope()
		if els == nil {
			return nil
		}
	}

	span := mergeSpan(start, then.Span())
	if els != nil {
		span = mergeSpan(span, els.Span())
	}
	return ast.NewIfStmt(cond, then, els, outer, span)
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.curTok.Span
	outer := p.scope

	p.nextToken()
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}

	if !p.expect(lexer.LBRACE) {
		return nil
	}

	p.enterScope()
	body := p.parseBlock()
	p.exitScope()
	if body == nil {
		return nil
	}

	return ast.NewWhileStmt(cond, body, outer, mergeSpan(start, body.Span()))
}

// parseBlock parses a braced statement list. curTok is '{' on entry
// and the first token after '}' on return. The block statement
// carries the scope created for it.
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.curTok.Span

	scope := p.enterScope()

	var stmts []ast.Stmt
	p.nextToken()
	for p.err == nil && p.curTok.Type != lexer.RBRACE && p.curTok.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			p.exitScope()
			return nil
		}
		stmts = append(stmts, stmt)
	}

	if p.curTok.Type != lexer.RBRACE {
		p.fail("Expected '}'", p.curTok.Span.Start)
		p.exitScope()
		return nil
	}

	span := mergeSpan(start, p.curTok.Span)
	p.nextToken()
	p.exitScope()

	return ast.NewBlockStmt(stmts, scope, span)
}
