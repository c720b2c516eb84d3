package ast

import "github.com/nust-lang/nust/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Stmt represents a statement node. Every statement records a lexical
// scope: the scope it appears in, except a block, which records the
// scope it opens.
type Stmt interface {
	Node
	Scope() *Scope
	stmtNode()
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program represents a parsed compilation unit: an ordered sequence of
// top-level items. Function declarations are the only item kind today.
type Program struct {
	Items []*FunctionDecl
	span  lexer.Span
}

// Span returns the span covering the entire program.
func (p *Program) Span() lexer.Span { return p.span }

// NewProgram constructs a program node.
func NewProgram(items []*FunctionDecl, span lexer.Span) *Program {
	return &Program{Items: items, span: span}
}

// Function returns the declaration of the named function, or nil.
func (p *Program) Function(name string) *FunctionDecl {
	for _, fn := range p.Items {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Param represents a function parameter.
type Param struct {
	Mutable bool
	Name    string
	Type    *Type
	Span    lexer.Span
}

// FunctionDecl represents a top-level function declaration.
type FunctionDecl struct {
	Name       string
	Params     []Param
	ReturnType *Type
	Body       *BlockStmt
	span       lexer.Span
}

// Span returns the declaration span.
func (d *FunctionDecl) Span() lexer.Span { return d.span }

// NewFunctionDecl constructs a function declaration node.
func NewFunctionDecl(name string, params []Param, returnType *Type, body *BlockStmt, span lexer.Span) *FunctionDecl {
	return &FunctionDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		span:       span,
	}
}

// LetStmt represents a let binding.
type LetStmt struct {
	Mutable bool
	Name    string
	Type    *Type
	Init    Expr
	scope   *Scope
	span    lexer.Span
}

func (s *LetStmt) Span() lexer.Span { return s.span }
func (s *LetStmt) Scope() *Scope    { return s.scope }
func (*LetStmt) stmtNode()          {}

// NewLetStmt constructs a let statement node.
func NewLetStmt(mutable bool, name string, typ *Type, init Expr, scope *Scope, span lexer.Span) *LetStmt {
	return &LetStmt{Mutable: mutable, Name: name, Type: typ, Init: init, scope: scope, span: span}
}

// ExprStmt represents an expression statement.
type ExprStmt struct {
	Expr  Expr
	scope *Scope
	span  lexer.Span
}

func (s *ExprStmt) Span() lexer.Span { return s.span }
func (s *ExprStmt) Scope() *Scope    { return s.scope }
func (*ExprStmt) stmtNode()          {}

// NewExprStmt constructs an expression statement node.
func NewExprStmt(expr Expr, scope *Scope, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, scope: scope, span: span}
}

// IfStmt represents a conditional. Else is nil, a *BlockStmt, or a
// nested *IfStmt (an else-if chain).
type IfStmt struct {
	Cond  Expr
	Then  *BlockStmt
	Else  Stmt
	scope *Scope
	span  lexer.Span
}

func (s *IfStmt) Span() lexer.Span { return s.span }
func (s *IfStmt) Scope() *Scope    { return s.scope }
func (*IfStmt) stmtNode()          {}

// NewIfStmt constructs an if statement node.
func NewIfStmt(cond Expr, then *BlockStmt, els Stmt, scope *Scope, span lexer.Span) *IfStmt {
	return &IfStmt{Cond: cond, Then: then, Else: els, scope: scope, span: span}
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Cond  Expr
	Body  *BlockStmt
	scope *Scope
	span  lexer.Span
}

func (s *WhileStmt) Span() lexer.Span { return s.span }
func (s *WhileStmt) Scope() *Scope    { return s.scope }
func (*WhileStmt) stmtNode()          {}

// NewWhileStmt constructs a while statement node.
func NewWhileStmt(cond Expr, body *BlockStmt, scope *Scope, span lexer.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, scope: scope, span: span}
}

// BlockStmt represents a braced sequence of statements.
type BlockStmt struct {
	Stmts []Stmt
	scope *Scope
	span  lexer.Span
}

func (s *BlockStmt) Span() lexer.Span { return s.span }
func (s *BlockStmt) Scope() *Scope    { return s.scope }
func (*BlockStmt) stmtNode()          {}

// NewBlockStmt constructs a block statement node.
func NewBlockStmt(stmts []Stmt, scope *Scope, span lexer.Span) *BlockStmt {
	return &BlockStmt{Stmts: stmts, scope: scope, span: span}
}

// Ident represents an identifier expression. MutBinding is filled in
// by the type checker when the identifier resolves to a variable.
type Ident struct {
	Name       string
	MutBinding bool
	span       lexer.Span
}

func (e *Ident) Span() lexer.Span { return e.span }
func (*Ident) exprNode()          {}

// NewIdent constructs an identifier node.
func NewIdent(name string, span lexer.Span) *Ident {
	return &Ident{Name: name, span: span}
}

// IntLit represents a 32-bit integer literal.
type IntLit struct {
	Value int32
	span  lexer.Span
}

func (e *IntLit) Span() lexer.Span { return e.span }
func (*IntLit) exprNode()          {}

// NewIntLit constructs an integer literal node.
func NewIntLit(value int32, span lexer.Span) *IntLit {
	return &IntLit{Value: value, span: span}
}

// BoolLit represents a boolean literal.
type BoolLit struct {
	Value bool
	span  lexer.Span
}

func (e *BoolLit) Span() lexer.Span { return e.span }
func (*BoolLit) exprNode()          {}

// NewBoolLit constructs a boolean literal node.
func NewBoolLit(value bool, span lexer.Span) *BoolLit {
	return &BoolLit{Value: value, span: span}
}

// StringLit represents a string literal. Value is the inner text
// between the quotes, kept verbatim.
type StringLit struct {
	Value string
	span  lexer.Span
}

func (e *StringLit) Span() lexer.Span { return e.span }
func (*StringLit) exprNode()          {}

// NewStringLit constructs a string literal node.
func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
	OpAssign
)

// BinaryExpr represents a binary expression, assignment included.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	span  lexer.Span
}

func (e *BinaryExpr) Span() lexer.Span { return e.span }
func (*BinaryExpr) exprNode()          {}

// NewBinaryExpr constructs a binary expression node.
func NewBinaryExpr(op BinaryOp, left, right Expr, span lexer.Span) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, span: span}
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

// UnaryExpr represents a unary expression.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	span    lexer.Span
}

func (e *UnaryExpr) Span() lexer.Span { return e.span }
func (*UnaryExpr) exprNode()          {}

// NewUnaryExpr constructs a unary expression node.
func NewUnaryExpr(op UnaryOp, operand Expr, span lexer.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, span: span}
}

// BorrowExpr represents &expr or &mut expr.
type BorrowExpr struct {
	Mutable bool
	Operand Expr
	span    lexer.Span
}

func (e *BorrowExpr) Span() lexer.Span { return e.span }
func (*BorrowExpr) exprNode()          {}

// NewBorrowExpr constructs a borrow expression node.
func NewBorrowExpr(mutable bool, operand Expr, span lexer.Span) *BorrowExpr {
	return &BorrowExpr{Mutable: mutable, Operand: operand, span: span}
}

// CallExpr represents a function call.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   lexer.Span
}

func (e *CallExpr) Span() lexer.Span { return e.span }
func (*CallExpr) exprNode()          {}

// NewCallExpr constructs a call expression node.
func NewCallExpr(callee Expr, args []Expr, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}
