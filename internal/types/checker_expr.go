package types

import (
	"fmt"

	"github.com/nust-lang/nust/internal/ast"
)

// checkExpr checks one expression and, on success, records its
// inferred type in ExprTypes. An identifier naming a top-level
// function checks successfully but gets no type: it is only valid as
// a call's callee, and any other use trips over the missing type.
func (c *Checker) checkExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.IntLit:
		c.ExprTypes[e] = ast.NewType(ast.KindI32, e.Span())
		return true

	case *ast.BoolLit:
		c.ExprTypes[e] = ast.NewType(ast.KindBool, e.Span())
		return true

	case *ast.StringLit:
		c.ExprTypes[e] = ast.NewType(ast.KindStr, e.Span())
		return true

	case *ast.Ident:
		return c.checkIdent(e)

	case *ast.BinaryExpr:
		return c.checkBinary(e)

	case *ast.UnaryExpr:
		return c.checkUnary(e)

	case *ast.BorrowExpr:
		return c.checkBorrow(e)

	case *ast.CallExpr:
		return c.checkCall(e)
	}

	return true
}

func (c *Checker) checkIdent(e *ast.Ident) bool {
	// Top-level functions shadow variables of the same name.
	if c.program.Function(e.Name) != nil {
		return true
	}

	vi := c.lookup(e.Name)
	if vi == nil {
		c.error("Undefined variable: "+e.Name, e.Span())
		return false
	}

	t := vi.typ.Clone()
	t.Span = e.Span()
	c.ExprTypes[e] = t
	e.MutBinding = vi.isMut
	return true
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) bool {
	if e.Op == ast.OpAssign {
		return c.checkAssign(e)
	}

	if !c.checkExpr(e.Left) || !c.checkExpr(e.Right) {
		return false
	}

	leftType := c.ExprTypes[e.Left]
	rightType := c.ExprTypes[e.Right]
	if leftType == nil || rightType == nil {
		c.error("Invalid operands in binary expression", e.Span())
		return false
	}

	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		if leftType.Kind != ast.KindI32 || rightType.Kind != ast.KindI32 {
			c.error("Arithmetic operations require integer operands", e.Span())
			return false
		}
		c.ExprTypes[e] = ast.NewType(ast.KindI32, e.Span())

	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
		if !compatible(leftType, rightType) {
			c.error("Incompatible types in comparison", e.Span())
			return false
		}
		c.ExprTypes[e] = ast.NewType(ast.KindBool, e.Span())

	case ast.OpAnd, ast.OpOr:
		if leftType.Kind != ast.KindBool || rightType.Kind != ast.KindBool {
			c.error("Logical operations require boolean operands", e.Span())
			return false
		}
		c.ExprTypes[e] = ast.NewType(ast.KindBool, e.Span())
	}

	return true
}

func (c *Checker) checkAssign(e *ast.BinaryExpr) bool {
	ident, ok := e.Left.(*ast.Ident)
	if !ok {
		c.error("Left side of assignment must be an identifier", e.Span())
		return false
	}

	vi := c.lookup(ident.Name)
	if vi == nil {
		c.error("Undefined variable: "+ident.Name, e.Span())
		return false
	}

	targetType := vi.typ.Clone()
	targetType.Span = ident.Span()
	c.ExprTypes[ident] = targetType
	ident.MutBinding = vi.isMut

	if vi.typ.Kind == ast.KindMutRef {
		c.error("Cannot use variable while mutably borrowed: "+ident.Name, e.Span())
		return false
	}

	if !vi.isMut {
		c.error("Cannot assign to immutable variable: "+ident.Name, e.Span())
		return false
	}

	if !c.checkExpr(e.Right) {
		return false
	}

	rightType := c.ExprTypes[e.Right]
	if rightType == nil || !assignable(vi.typ, rightType) {
		c.error("Type mismatch in assignment", e.Span())
		return false
	}

	c.ExprTypes[e] = rightType.Clone()
	return true
}

func (c *Checker) checkUnary(e *ast.UnaryExpr) bool {
	if !c.checkExpr(e.Operand) {
		return false
	}

	t := c.ExprTypes[e.Operand]
	if t == nil {
		c.error("Invalid operand in unary expression", e.Span())
		return false
	}

	switch e.Op {
	case ast.OpNeg:
		if t.Kind != ast.KindI32 {
			c.error("Negation requires integer operand", e.Span())
			return false
		}
		c.ExprTypes[e] = ast.NewType(ast.KindI32, e.Span())

	case ast.OpNot:
		if t.Kind != ast.KindBool {
			c.error("Logical not requires boolean operand", e.Span())
			return false
		}
		c.ExprTypes[e] = ast.NewType(ast.KindBool, e.Span())
	}

	return true
}

func (c *Checker) checkBorrow(e *ast.BorrowExpr) bool {
	if !c.checkExpr(e.Operand) {
		return false
	}

	operandType := c.ExprTypes[e.Operand]
	if operandType == nil {
		c.error("Invalid operand in borrow expression", e.Span())
		return false
	}

	if e.Mutable {
		if ident, ok := e.Operand.(*ast.Ident); ok {
			if !ident.MutBinding {
				c.error("Cannot borrow immutable variable as mutable", e.Span())
				return false
			}

			vi := c.lookup(ident.Name)
			if vi != nil && vi.typ.Kind == ast.KindMutRef {
				c.error("Variable already mutably borrowed: "+ident.Name, e.Span())
				return false
			}

			if vi != nil {
				c.markMutablyBorrowed(ident.Name, e.Span())
			}
		}
	}

	// The borrow's type wraps the operand's type as recorded before
	// the variable was locked.
	c.ExprTypes[e] = ast.NewRefType(e.Mutable, operandType.Clone(), e.Span())
	return true
}

func (c *Checker) checkCall(e *ast.CallExpr) bool {
	ident, ok := e.Callee.(*ast.Ident)
	if !ok {
		if !c.checkExpr(e.Callee) {
			return false
		}
		c.error("Function call requires a function name", e.Span())
		return false
	}

	fn := c.program.Function(ident.Name)
	if fn == nil {
		c.error("Undefined function: "+ident.Name, e.Span())
		return false
	}

	if len(e.Args) != len(fn.Params) {
		c.error("Wrong number of arguments for function "+ident.Name, e.Span())
		return false
	}

	for i, arg := range e.Args {
		if !c.checkExpr(arg) {
			return false
		}

		argType := c.ExprTypes[arg]
		if argType == nil {
			c.error("Invalid argument in function call", e.Span())
			return false
		}

		if !assignable(fn.Params[i].Type, argType) {
			c.error(fmt.Sprintf("Type mismatch in argument %d of function %s", i+1, ident.Name), arg.Span())
			return false
		}
	}

	t := fn.ReturnType.Clone()
	t.Span = e.Span()
	c.ExprTypes[e] = t
	return true
}
