package compiler

import (
	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/bytecode"
	"github.com/nust-lang/nust/internal/diag"
)

// Compiler lowers a type-checked program to a flat stack-VM
// instruction stream plus a function table and string-constant pool.
//
// Lowering errors are invariant violations: everything they report is
// unreachable after a successful type check, so the first one aborts
// compilation.
type Compiler struct {
	instructions []bytecode.Instruction
	strings      []string
	table        *FunctionTable

	// Per-function state: name → local slot. Slots are assigned
	// sequentially and never reused across scopes.
	locals    map[string]int
	nextLocal int
}

// New creates a compiler.
func New() *Compiler {
	return &Compiler{table: NewFunctionTable()}
}

// Compile lowers the whole program. The first pass registers every
// top-level function so forward references resolve; the second pass
// lowers bodies and fills in entry points and local counts.
func (c *Compiler) Compile(program *ast.Program) ([]bytecode.Instruction, error) {
	c.instructions = nil
	c.strings = nil
	c.locals = nil
	c.nextLocal = 0
	c.table = NewFunctionTable()

	for _, fn := range program.Items {
		c.table.Add(fn, 0)
	}

	for _, fn := range program.Items {
		entryPoint := len(c.instructions)
		if err := c.compileFunction(fn); err != nil {
			return nil, err
		}

		index, err := c.table.Index(fn.Name)
		if err != nil {
			return nil, err
		}
		info, err := c.table.Get(index)
		if err != nil {
			return nil, err
		}
		info.EntryPoint = entryPoint
		info.NumLocals = c.nextLocal
	}

	return c.instructions, nil
}

// StringConstants returns the string-constant pool.
func (c *Compiler) StringConstants() []string {
	return c.strings
}

// Functions returns the function table.
func (c *Compiler) Functions() *FunctionTable {
	return c.table
}

func (c *Compiler) compileFunction(fn *ast.FunctionDecl) error {
	c.locals = make(map[string]int)
	c.nextLocal = 0

	for _, param := range fn.Params {
		c.locals[param.Name] = c.nextLocal
		c.nextLocal++
	}

	if err := c.compileStmt(fn.Body); err != nil {
		return err
	}

	// Fall off the end with a plain RET unless the body already
	// returned a value.
	if n := len(c.instructions); n == 0 || c.instructions[n-1].Op != bytecode.RET_VAL {
		c.emit(bytecode.Inst(bytecode.RET))
	}

	return nil
}

func (c *Compiler) compileStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return c.compileLet(s)

	case *ast.ExprStmt:
		if err := c.compileExpr(s.Expr); err != nil {
			return err
		}
		// The result is unused; every expression statement pops it,
		// the block-final one included.
		c.emit(bytecode.Inst(bytecode.POP))
		return nil

	case *ast.IfStmt:
		return c.compileIf(s)

	case *ast.WhileStmt:
		return c.compileWhile(s)

	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			if err := c.compileStmt(inner); err != nil {
				return err
			}
		}
		return nil
	}

	return nil
}

func (c *Compiler) compileLet(s *ast.LetStmt) error {
	if err := c.compileExpr(s.Init); err != nil {
		return err
	}

	// Redeclarations reuse the slot; real collisions were already
	// rejected upstream.
	index, ok := c.locals[s.Name]
	if !ok {
		index = c.nextLocal
		c.locals[s.Name] = index
		c.nextLocal++
	}

	c.emit(bytecode.InstN(bytecode.STORE, uint64(index)))
	return nil
}

func (c *Compiler) compileIf(s *ast.IfStmt) error {
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}

	elseJump := c.emitPatch(bytecode.JMP_IF_NOT)

	if err := c.compileStmt(s.Then); err != nil {
		return err
	}

	if s.Else == nil {
		c.patch(elseJump)
		return nil
	}

	endJump := c.emitPatch(bytecode.JMP)
	c.patch(elseJump)

	if err := c.compileStmt(s.Else); err != nil {
		return err
	}
	c.patch(endJump)
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStmt) error {
	loopStart := len(c.instructions)

	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}

	exitJump := c.emitPatch(bytecode.JMP_IF_NOT)

	if err := c.compileStmt(s.Body); err != nil {
		return err
	}

	c.emit(bytecode.InstN(bytecode.JMP, uint64(loopStart)))
	c.patch(exitJump)
	return nil
}

func (c *Compiler) compileExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.IntLit:
		c.emit(bytecode.PushI32(e.Value))
		return nil

	case *ast.BoolLit:
		var operand uint64
		if e.Value {
			operand = 1
		}
		c.emit(bytecode.InstN(bytecode.PUSH_BOOL, operand))
		return nil

	case *ast.StringLit:
		index := len(c.strings)
		c.strings = append(c.strings, e.Value)
		c.emit(bytecode.InstN(bytecode.PUSH_STR, uint64(index)))
		return nil

	case *ast.Ident:
		index, err := c.localIndex(e.Name)
		if err != nil {
			return err
		}
		c.emit(bytecode.InstN(bytecode.LOAD, uint64(index)))
		return nil

	case *ast.BinaryExpr:
		return c.compileBinary(e)

	case *ast.UnaryExpr:
		if err := c.compileExpr(e.Operand); err != nil {
			return err
		}
		if e.Op == ast.OpNeg {
			c.emit(bytecode.Inst(bytecode.NEG_I32))
		} else {
			c.emit(bytecode.Inst(bytecode.NOT))
		}
		return nil

	case *ast.BorrowExpr:
		if err := c.compileExpr(e.Operand); err != nil {
			return err
		}
		if e.Mutable {
			c.emit(bytecode.Inst(bytecode.BORROW_MUT))
		} else {
			c.emit(bytecode.Inst(bytecode.BORROW))
		}
		return nil

	case *ast.CallExpr:
		return c.compileCall(e)
	}

	return nil
}

var binaryOpcodes = map[ast.BinaryOp]bytecode.Opcode{
	ast.OpAdd: bytecode.ADD_I32,
	ast.OpSub: bytecode.SUB_I32,
	ast.OpMul: bytecode.MUL_I32,
	ast.OpDiv: bytecode.DIV_I32,
	ast.OpEq:  bytecode.EQ_I32,
	ast.OpNe:  bytecode.NE_I32,
	ast.OpLt:  bytecode.LT_I32,
	ast.OpGt:  bytecode.GT_I32,
	ast.OpLe:  bytecode.LE_I32,
	ast.OpGe:  bytecode.GE_I32,
	ast.OpAnd: bytecode.AND,
	ast.OpOr:  bytecode.OR,
}

func (c *Compiler) compileBinary(e *ast.BinaryExpr) error {
	if e.Op == ast.OpAssign {
		// Lower the value, store it, then load it back so the
		// assignment is itself an r-value.
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}

		target, ok := e.Left.(*ast.Ident)
		if !ok {
			return diag.New(diag.StageCompile, "Assignment target must be an identifier", e.Span().Start, e.Span().End)
		}

		index, err := c.localIndex(target.Name)
		if err != nil {
			return err
		}
		c.emit(bytecode.InstN(bytecode.STORE, uint64(index)))
		c.emit(bytecode.InstN(bytecode.LOAD, uint64(index)))
		return nil
	}

	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}

	op, ok := binaryOpcodes[e.Op]
	if !ok {
		return diag.New(diag.StageCompile, "Unknown binary operator", e.Span().Start, e.Span().End)
	}
	c.emit(bytecode.Inst(op))
	return nil
}

func (c *Compiler) compileCall(e *ast.CallExpr) error {
	// Arguments are lowered rightmost-first.
	for i := len(e.Args) - 1; i >= 0; i-- {
		if err := c.compileExpr(e.Args[i]); err != nil {
			return err
		}
	}

	callee, ok := e.Callee.(*ast.Ident)
	if !ok {
		return diag.New(diag.StageCompile, "Function callee must be an identifier", e.Span().Start, e.Span().End)
	}

	index, err := c.table.Index(callee.Name)
	if err != nil {
		return err
	}

	c.emit(bytecode.InstN(bytecode.CALL, uint64(index)))
	return nil
}

func (c *Compiler) localIndex(name string) (int, error) {
	index, ok := c.locals[name]
	if !ok {
		return 0, diag.New(diag.StageCompile, "Undefined variable: "+name, 0, 0)
	}
	return index, nil
}

func (c *Compiler) emit(in bytecode.Instruction) {
	c.instructions = append(c.instructions, in)
}

// emitPatch emits a jump with a placeholder target and returns its
// index for patching.
func (c *Compiler) emitPatch(op bytecode.Opcode) int {
	index := len(c.instructions)
	c.instructions = append(c.instructions, bytecode.InstN(op, 0))
	return index
}

// patch points the jump at index to the current instruction count.
// Jump operands are absolute instruction indices.
func (c *Compiler) patch(index int) {
	c.instructions[index].Operand = uint64(len(c.instructions))
}
