package types

import "github.com/nust-lang/nust/internal/ast"

// checkStmt checks one statement. It reports false at the first fatal
// point; the caller stops walking the enclosing function.
func (c *Checker) checkStmt(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return c.checkLet(s)

	case *ast.ExprStmt:
		return c.checkExpr(s.Expr)

	case *ast.IfStmt:
		if !c.checkExpr(s.Cond) {
			return false
		}
		if t := c.ExprTypes[s.Cond]; t == nil || t.Kind != ast.KindBool {
			c.error("If condition must be boolean", s.Cond.Span())
			return false
		}

		c.enterScope()
		thenOK := c.checkStmt(s.Then)
		c.exitScope()
		if !thenOK {
			return false
		}

		if s.Else != nil {
			c.enterScope()
			elseOK := c.checkStmt(s.Else)
			c.exitScope()
			return elseOK
		}
		return true

	case *ast.WhileStmt:
		if !c.checkExpr(s.Cond) {
			return false
		}
		if t := c.ExprTypes[s.Cond]; t == nil || t.Kind != ast.KindBool {
			c.error("While condition must be boolean", s.Cond.Span())
			return false
		}

		c.enterScope()
		ok := c.checkStmt(s.Body)
		c.exitScope()
		return ok

	case *ast.BlockStmt:
		c.enterScope()
		defer c.exitScope()
		for _, inner := range s.Stmts {
			if !c.checkStmt(inner) {
				return false
			}
		}
		return true
	}

	return true
}

func (c *Checker) checkLet(s *ast.LetStmt) bool {
	if !c.checkExpr(s.Init) {
		return false
	}

	initType := c.ExprTypes[s.Init]
	if initType == nil || !assignable(s.Type, initType) {
		c.error("Type mismatch in let binding", s.Span())
		return false
	}

	if !c.declare(s.Name, s.Type.Clone(), s.Mutable) {
		c.error("Duplicate variable name: "+s.Name, s.Span())
		return false
	}

	return true
}
