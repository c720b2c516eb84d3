package types

import (
	"fmt"
	"io"
	"os"

	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/diag"
	"github.com/nust-lang/nust/internal/lexer"
)

// varInfo is what a scope frame records per variable. The stored type
// doubles as the borrow state: taking `&mut v` rewrites it to
// `&mut T`, which locks the variable against assignment and
// reborrowing until the end of the function.
type varInfo struct {
	typ   *ast.Type
	isMut bool
}

// Checker performs type and borrow checking on the AST.
//
// Expression result types are recorded in ExprTypes rather than on
// the nodes; after a successful check every expression of the program
// has an entry, except a callee identifier naming a function, which
// gets none. The checker's only AST mutation is filling in
// Ident.MutBinding.
type Checker struct {
	program *ast.Program
	scopes  []map[string]*varInfo

	// ExprTypes maps each checked expression to its inferred type.
	ExprTypes map[ast.Expr]*ast.Type

	// Errors accumulates every diagnostic, in production order.
	Errors []diag.Diagnostic

	stderr io.Writer
}

// NewChecker creates a new type checker. Diagnostics are echoed to
// standard error as they are produced.
func NewChecker() *Checker {
	return &Checker{
		ExprTypes: make(map[ast.Expr]*ast.Type),
		stderr:    os.Stderr,
	}
}

// SetErrorOutput redirects the immediate diagnostic echo.
func (c *Checker) SetErrorOutput(w io.Writer) {
	c.stderr = w
}

// Check validates the whole program. A fatal error stops the walk of
// the current function only; subsequent functions are still checked.
// It reports whether the program is error-free.
func (c *Checker) Check(program *ast.Program) bool {
	c.program = program
	for _, fn := range program.Items {
		c.checkFunction(fn)
	}
	return len(c.Errors) == 0
}

func (c *Checker) checkFunction(fn *ast.FunctionDecl) bool {
	c.enterScope()
	defer c.exitScope()

	for i := range fn.Params {
		param := &fn.Params[i]
		if !c.declare(param.Name, param.Type.Clone(), param.Mutable) {
			c.error("Duplicate parameter name: "+param.Name, param.Span)
			return false
		}
	}

	ok := c.checkStmt(fn.Body)

	// When the body ends in an expression statement, that expression
	// is the function's value and must fit the declared return type.
	// Its type was recorded during the body walk; a missing entry
	// means the walk never got there (or the trailing expression was
	// a bare function name) and the body errors already cover it.
	if stmts := fn.Body.Stmts; len(stmts) > 0 {
		if exprStmt, isExpr := stmts[len(stmts)-1].(*ast.ExprStmt); isExpr {
			if t := c.ExprTypes[exprStmt.Expr]; t != nil && !assignable(fn.ReturnType, t) {
				c.error("Function return type mismatch", exprStmt.Span())
				ok = false
			}
		}
	}

	return ok
}

// assignable reports whether a value of type source may be bound to a
// target of type target. Reference types recurse; a mutable borrow
// weakens to a shared one.
func assignable(target, source *ast.Type) bool {
	if target.Kind == source.Kind {
		if target.IsRef() {
			return assignable(target.Base, source.Base)
		}
		return true
	}
	if target.Kind == ast.KindRef && source.Kind == ast.KindMutRef {
		return assignable(target.Base, source.Base)
	}
	return false
}

// compatible reports whether two types may be compared. Shared and
// mutable references to compatible base types compare in either
// order.
func compatible(a, b *ast.Type) bool {
	if a.Kind == b.Kind {
		if a.IsRef() {
			return compatible(a.Base, b.Base)
		}
		return true
	}
	if (a.Kind == ast.KindRef && b.Kind == ast.KindMutRef) ||
		(a.Kind == ast.KindMutRef && b.Kind == ast.KindRef) {
		return compatible(a.Base, b.Base)
	}
	return false
}

func (c *Checker) enterScope() {
	c.scopes = append(c.scopes, make(map[string]*varInfo))
}

func (c *Checker) exitScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare binds name in the innermost scope. It fails only if the
// name already exists there; shadowing an outer scope is permitted.
func (c *Checker) declare(name string, typ *ast.Type, isMut bool) bool {
	scope := c.scopes[len(c.scopes)-1]
	if _, exists := scope[name]; exists {
		return false
	}
	scope[name] = &varInfo{typ: typ, isMut: isMut}
	return true
}

// lookup walks the scope stack from innermost outward.
func (c *Checker) lookup(name string) *varInfo {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if vi, ok := c.scopes[i][name]; ok {
			return vi
		}
	}
	return nil
}

// markMutablyBorrowed rewrites the stored type of name to `&mut T` in
// every scope frame that holds the name. This is the aliasing guard:
// there is no scope-based re-opening, so the variable stays locked
// for the rest of the function.
func (c *Checker) markMutablyBorrowed(name string, span lexer.Span) {
	for _, scope := range c.scopes {
		if vi, ok := scope[name]; ok {
			vi.typ = ast.NewRefType(true, vi.typ.Clone(), span)
		}
	}
}

func (c *Checker) error(msg string, span lexer.Span) {
	d := diag.New(diag.StageTypeCheck, msg, span.Start, span.End)
	c.Errors = append(c.Errors, d)
	fmt.Fprintf(c.stderr, "Error: %s\n", d.Error())
}
