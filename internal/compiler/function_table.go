package compiler

import (
	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/diag"
)

// FunctionInfo describes one compiled function for the dispatcher:
// where it starts, how many parameters and locals it has, and its
// signature. Parameters occupy the first local slots in declaration
// order.
type FunctionInfo struct {
	Name       string
	EntryPoint int
	NumParams  int
	NumLocals  int
	ParamTypes []*ast.Type
	ReturnType *ast.Type
}

// FunctionTable indexes functions in declaration order with name
// lookup on the side.
type FunctionTable struct {
	funcs  []*FunctionInfo
	byName map[string]int
}

// NewFunctionTable creates an empty function table.
func NewFunctionTable() *FunctionTable {
	return &FunctionTable{byName: make(map[string]int)}
}

// Add registers a function and returns its index. Parameter and
// return types are cloned; the entry point is a placeholder until
// the body is lowered.
func (t *FunctionTable) Add(fn *ast.FunctionDecl, entryPoint int) int {
	info := &FunctionInfo{
		Name:       fn.Name,
		EntryPoint: entryPoint,
		NumParams:  len(fn.Params),
		ReturnType: fn.ReturnType.Clone(),
	}
	for _, param := range fn.Params {
		info.ParamTypes = append(info.ParamTypes, param.Type.Clone())
	}

	index := len(t.funcs)
	t.funcs = append(t.funcs, info)
	t.byName[fn.Name] = index
	return index
}

// Get returns the function at index.
func (t *FunctionTable) Get(index int) (*FunctionInfo, error) {
	if index < 0 || index >= len(t.funcs) {
		return nil, diag.New(diag.StageCompile, "Invalid function index", 0, 0)
	}
	return t.funcs[index], nil
}

// Index returns the table index of the named function.
func (t *FunctionTable) Index(name string) (int, error) {
	index, ok := t.byName[name]
	if !ok {
		return 0, diag.New(diag.StageCompile, "Function not found: "+name, 0, 0)
	}
	return index, nil
}

// Len returns the number of registered functions.
func (t *FunctionTable) Len() int {
	return len(t.funcs)
}
