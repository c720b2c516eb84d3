package parser

import (
	"strconv"

	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/lexer"
)

// parseExpr parses an expression. curTok is the expression's first
// token on entry and its last token on return.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseExprPrecedence(precedenceLowest)
}

func (p *Parser) parseExprPrecedence(precedence int) ast.Expr {
	prefix := p.prefixFns[p.curTok.Type]
	if prefix == nil {
		p.fail("Expected expression", p.curTok.Span.Start)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekTok.Type != lexer.SEMICOLON && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekTok.Type]
		if infix == nil {
			break
		}

		p.nextToken()

		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIntLit() ast.Expr {
	value, err := strconv.ParseInt(p.curTok.Literal, 10, 32)
	if err != nil {
		p.fail("Integer literal out of range", p.curTok.Span.Start)
		return nil
	}
	return ast.NewIntLit(int32(value), p.curTok.Span)
}

func (p *Parser) parseBoolLit() ast.Expr {
	return ast.NewBoolLit(p.curTok.Type == lexer.TRUE, p.curTok.Span)
}

func (p *Parser) parseStringLit() ast.Expr {
	return ast.NewStringLit(p.curTok.Literal, p.curTok.Span)
}

func (p *Parser) parseIdent() ast.Expr {
	return ast.NewIdent(p.curTok.Literal, p.curTok.Span)
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	operatorTok := p.curTok

	p.nextToken()

	operand := p.parseExprPrecedence(precedencePrefix)
	if operand == nil {
		return nil
	}

	op := ast.OpNeg
	if operatorTok.Type == lexer.BANG {
		op = ast.OpNot
	}

	return ast.NewUnaryExpr(op, operand, mergeSpan(operatorTok.Span, operand.Span()))
}

// parseBorrowExpr handles `&expr` and `&mut expr` in prefix position.
func (p *Parser) parseBorrowExpr() ast.Expr {
	start := p.curTok.Span

	mutable := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		mutable = true
	}

	p.nextToken()

	operand := p.parseExprPrecedence(precedencePrefix)
	if operand == nil {
		return nil
	}

	return ast.NewBorrowExpr(mutable, operand, mergeSpan(start, operand.Span()))
}

// parseDoubleBorrowExpr handles `&&` in prefix position: two nested
// shared borrows, so `&&x` is `&(&x)` and `&&mut x` is `&(&mut x)`.
func (p *Parser) parseDoubleBorrowExpr() ast.Expr {
	start := p.curTok.Span

	innerMut := false
	if p.peekTok.Type == lexer.MUT {
		p.nextToken()
		innerMut = true
	}

	p.nextToken()

	operand := p.parseExprPrecedence(precedencePrefix)
	if operand == nil {
		return nil
	}

	span := mergeSpan(start, operand.Span())
	inner := ast.NewBorrowExpr(innerMut, operand, span)
	return ast.NewBorrowExpr(false, inner, span)
}

// parseGroupedExpr parses "(expr)" without introducing a paren node:
// the inner expression is returned as-is. This is what makes a
// parenthesized assignment target transparent.
func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken()

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	if !p.expect(lexer.RPAREN) {
		return nil
	}

	return expr
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	operatorTok := p.curTok
	precedence := p.curPrecedence()

	p.nextToken()

	right := p.parseExprPrecedence(precedence)
	if right == nil {
		return nil
	}

	return ast.NewBinaryExpr(binaryOps[operatorTok.Type], left, right, mergeSpan(left.Span(), right.Span()))
}

var binaryOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS:     ast.OpAdd,
	lexer.MINUS:    ast.OpSub,
	lexer.ASTERISK: ast.OpMul,
	lexer.SLASH:    ast.OpDiv,
	lexer.EQ:       ast.OpEq,
	lexer.NOT_EQ:   ast.OpNe,
	lexer.LT:       ast.OpLt,
	lexer.GT:       ast.OpGt,
	lexer.LE:       ast.OpLe,
	lexer.GE:       ast.OpGe,
	lexer.AND:      ast.OpAnd,
	lexer.OR:       ast.OpOr,
}

// parseAssignExpr parses `target = value`. The target must be an
// identifier; parentheses around it are transparent because grouped
// expressions never wrap. The right side is parsed one level below
// the assignment precedence, making `a = b = c` right-associative.
func (p *Parser) parseAssignExpr(target ast.Expr) ast.Expr {
	assignTok := p.curTok

	if _, ok := target.(*ast.Ident); !ok {
		p.fail("Invalid assignment target", assignTok.Span.Start)
		return nil
	}

	p.nextToken()

	right := p.parseExprPrecedence(precedenceAssign - 1)
	if right == nil {
		return nil
	}

	return ast.NewBinaryExpr(ast.OpAssign, target, right, mergeSpan(target.Span(), right.Span()))
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	var args []ast.Expr

	if p.peekTok.Type == lexer.RPAREN {
		p.nextToken()
	} else {
		for {
			p.nextToken()

			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)

			if p.peekTok.Type != lexer.COMMA {
				break
			}
			p.nextToken()
		}

		if !p.expect(lexer.RPAREN) {
			return nil
		}
	}

	return ast.NewCallExpr(callee, args, mergeSpan(callee.Span(), p.curTok.Span))
}
