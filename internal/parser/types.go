package parser

import (
	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/lexer"
)

// parseType parses a type annotation. curTok is the type's first
// token on entry and its last token on return. Reference types nest
// arbitrarily: `&&i32` is `&(&i32)`.
func (p *Parser) parseType() *ast.Type {
	start := p.curTok.Span

	switch p.curTok.Type {
	case lexer.AMPERSAND:
		mutable := false
		if p.peekTok.Type == lexer.MUT {
			p.nextToken()
			mutable = true
		}

		p.nextToken()
		base := p.parseType()
		if base == nil {
			return nil
		}
		return ast.NewRefType(mutable, base, mergeSpan(start, base.Span))

	case lexer.AND:
		// '&&' opens two shared references, the inner of which may
		// itself be mutable: `&&mut i32` is `&(&mut i32)`.
		innerMut := false
		if p.peekTok.Type == lexer.MUT {
			p.nextToken()
			innerMut = true
		}

		p.nextToken()
		base := p.parseType()
		if base == nil {
			return nil
		}
		span := mergeSpan(start, base.Span)
		return ast.NewRefType(false, ast.NewRefType(innerMut, base, span), span)

	case lexer.TYPE_I32:
		return ast.NewType(ast.KindI32, start)
	case lexer.TYPE_BOOL:
		return ast.NewType(ast.KindBool, start)
	case lexer.TYPE_STR:
		return ast.NewType(ast.KindStr, start)

	default:
		p.fail("Expected type", p.curTok.Span.Start)
		return nil
	}
}
