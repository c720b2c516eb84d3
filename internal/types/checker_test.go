package types

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/nust-lang/nust/internal/ast"
	"github.com/nust-lang/nust/internal/lexer"
	"github.com/nust-lang/nust/internal/parser"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()

	program, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return program
}

// checkSource type-checks src and returns the checker and whether the
// program was accepted. The immediate stderr echo is discarded.
func checkSource(t *testing.T, src string) (*Checker, bool) {
	t.Helper()

	checker := NewChecker()
	checker.SetErrorOutput(io.Discard)
	ok := checker.Check(parse(t, src))
	return checker, ok
}

func wantAccepted(t *testing.T, src string) *Checker {
	t.Helper()

	checker, ok := checkSource(t, src)
	if !ok {
		for _, d := range checker.Errors {
			t.Logf("error: %s", d.Error())
		}
		t.Fatal("expected program to type-check")
	}
	return checker
}

func wantError(t *testing.T, src, msg string) {
	t.Helper()

	checker, ok := checkSource(t, src)
	if ok {
		t.Fatalf("expected type error %q, program was accepted", msg)
	}
	for _, d := range checker.Errors {
		if strings.Contains(d.Message, msg) {
			return
		}
	}
	t.Fatalf("no error containing %q; got %v", msg, checker.Errors)
}

func TestCheck_ValidLiterals(t *testing.T) {
	wantAccepted(t, `
fn main() {
	let a: i32 = 42;
	let b: bool = true;
	let c: str = "hello";
}
`)
}

func TestCheck_LetTypeMismatch(t *testing.T) {
	wantError(t, "fn main() { let x: i32 = true; }", "Type mismatch in let binding")
}

func TestCheck_ArithmeticRequiresIntegers(t *testing.T) {
	wantError(t, "fn main() { true + 42; }", "Arithmetic operations require integer operands")
}

func TestCheck_LogicalRequiresBooleans(t *testing.T) {
	wantError(t, "fn main() { true && 1; }", "Logical operations require boolean operands")
}

func TestCheck_ComparisonCompatibility(t *testing.T) {
	wantError(t, `fn main() { 1 == "one"; }`, "Incompatible types in comparison")

	// &T and &mut T compare in either order.
	wantAccepted(t, `
fn main() {
	let mut x: i32 = 1;
	let a: &i32 = &x;
	let b: &mut i32 = &mut x;
	let same: bool = a == b;
}
`)
}

func TestCheck_IfConditionMustBeBool(t *testing.T) {
	wantError(t, "fn main() { if 1 { } }", "If condition must be boolean")
}

func TestCheck_WhileConditionMustBeBool(t *testing.T) {
	wantError(t, `fn main() { while "yes" { } }`, "While condition must be boolean")
}

func TestCheck_UnaryOperands(t *testing.T) {
	wantError(t, "fn main() { -true; }", "Negation requires integer operand")
	wantError(t, "fn main() { !1; }", "Logical not requires boolean operand")
}

func TestCheck_UndefinedVariable(t *testing.T) {
	wantError(t, "fn main() { missing; }", "Undefined variable: missing")
}

func TestCheck_AssignToImmutable(t *testing.T) {
	wantError(t, `
fn main() {
	let x: i32 = 1;
	x = 2;
}
`, "Cannot assign to immutable variable: x")
}

func TestCheck_AssignTypeMismatch(t *testing.T) {
	wantError(t, `
fn main() {
	let mut x: i32 = 1;
	x = true;
}
`, "Type mismatch in assignment")
}

func TestCheck_MutBorrowOfImmutable(t *testing.T) {
	wantError(t, `
fn main() {
	let x: i32 = 1;
	&mut x;
}
`, "Cannot borrow immutable variable as mutable")
}

func TestCheck_DoubleMutableBorrow(t *testing.T) {
	wantError(t, `
fn main() {
	let mut v: i32 = 1;
	let a: &mut i32 = &mut v;
	let b: &mut i32 = &mut v;
}
`, "Variable already mutably borrowed: v")
}

func TestCheck_UseWhileMutablyBorrowed(t *testing.T) {
	wantError(t, `
fn main() {
	let mut z: i32 = 10;
	let w: &mut i32 = &mut z;
	z = 20;
}
`, "Cannot use variable while mutably borrowed: z")
}

func TestCheck_BorrowLocksForRestOfFunction(t *testing.T) {
	// There is no scope-based release: a mutable borrow taken inside
	// a nested block still locks the variable afterwards.
	wantError(t, `
fn main() {
	let mut z: i32 = 10;
	{
		let w: &mut i32 = &mut z;
	}
	z = 20;
}
`, "Cannot use variable while mutably borrowed: z")
}

func TestCheck_NestedBorrows(t *testing.T) {
	wantAccepted(t, `
fn main() {
	let x: i32 = 1;
	let a: &&i32 = &&x;
	let mut y: i32 = 2;
	let b: &mut &mut i32 = &mut &mut y;
}
`)
}

func TestCheck_MutBorrowWeakensToShared(t *testing.T) {
	wantAccepted(t, `
fn main() {
	let mut x: i32 = 1;
	let r: &i32 = &mut x;
}
`)
}

func TestCheck_ForwardCall(t *testing.T) {
	wantAccepted(t, `
fn main() {
	let r: i32 = add(1, 2);
}

fn add(x: i32, y: i32) -> i32 {
	x + y
}
`)
}

func TestCheck_CallErrors(t *testing.T) {
	wantError(t, "fn main() { missing(1); }", "Undefined function: missing")
	wantError(t, `
fn id(x: i32) -> i32 { x }
fn main() { id(1, 2); }
`, "Wrong number of arguments for function id")
	wantError(t, `
fn id(x: i32) -> i32 { x }
fn main() { id(true); }
`, "Type mismatch in argument 1 of function id")
}

func TestCheck_FunctionNameAsValue(t *testing.T) {
	// A function name is only meaningful as a callee; in any other
	// position its missing type surfaces downstream.
	wantError(t, `
fn helper() { }
fn main() { helper + 1; }
`, "Invalid operands in binary expression")
}

func TestCheck_ReturnTypeMismatch(t *testing.T) {
	wantError(t, "fn flag() -> i32 { true }", "Function return type mismatch")
}

func TestCheck_ReturnTypeMatches(t *testing.T) {
	wantAccepted(t, "fn flag() -> bool { true }")
	// A body ending in a let is not subject to the trailing check,
	// which is what lets a default-i32 main type-check.
	wantAccepted(t, "fn main() { let x: i32 = 42; }")
}

func TestCheck_DuplicateNames(t *testing.T) {
	wantError(t, "fn f(x: i32, x: i32) { }", "Duplicate parameter name: x")
	wantError(t, `
fn main() {
	let x: i32 = 1;
	let x: i32 = 2;
}
`, "Duplicate variable name: x")
}

func TestCheck_ShadowingInInnerScope(t *testing.T) {
	wantAccepted(t, `
fn main() {
	let x: i32 = 1;
	{
		let x: bool = true;
		if x { }
	}
	let y: i32 = x + 1;
}
`)
}

func TestCheck_ContinuesWithNextFunction(t *testing.T) {
	checker, ok := checkSource(t, `
fn bad() { missing; }
fn alsoBad() { 1 + true; }
`)
	if ok {
		t.Fatal("expected errors")
	}
	if len(checker.Errors) != 2 {
		t.Fatalf("got %d errors, want one per function", len(checker.Errors))
	}
}

func TestCheck_StopsInsideFunctionAfterFirstError(t *testing.T) {
	checker, ok := checkSource(t, `
fn bad() {
	missing;
	alsoMissing;
}
`)
	if ok {
		t.Fatal("expected errors")
	}
	if len(checker.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(checker.Errors))
	}
}

func TestCheck_ErrorFormatAndEcho(t *testing.T) {
	var echoed bytes.Buffer
	checker := NewChecker()
	checker.SetErrorOutput(&echoed)

	src := "fn main() { missing; }"
	if checker.Check(parse(t, src)) {
		t.Fatal("expected errors")
	}

	msg := checker.Errors[0].Error()
	if !strings.HasPrefix(msg, "Type error at ") {
		t.Fatalf("got %q, want type error format", msg)
	}
	start := strings.Index(src, "missing")
	want := "Undefined variable: missing"
	if !strings.Contains(msg, want) {
		t.Fatalf("got %q, want %q", msg, want)
	}
	if checker.Errors[0].Span.Start != start || checker.Errors[0].Span.End != start+len("missing") {
		t.Fatalf("error span %d:%d, want %d:%d",
			checker.Errors[0].Span.Start, checker.Errors[0].Span.End, start, start+len("missing"))
	}

	if got := echoed.String(); !strings.Contains(got, "Error: "+msg) {
		t.Fatalf("stderr echo %q does not contain %q", got, "Error: "+msg)
	}
}

func TestCheck_EveryExpressionGetsAType(t *testing.T) {
	src := `
fn add(x: i32, y: i32) -> i32 {
	x + y
}

fn main() {
	let mut n: i32 = 10;
	let mut acc: i32 = 0;
	while n > 0 {
		acc = acc + add(n, -1);
		n = n - 1;
	}
	if acc >= 0 && !false {
		let s: str = "done";
		let r: &i32 = &acc;
	}
}
`
	program := parse(t, src)
	checker := NewChecker()
	checker.SetErrorOutput(io.Discard)
	if !checker.Check(program) {
		t.Fatal("program did not check")
	}

	calleeOf := make(map[ast.Expr]bool)
	ast.Walk(program, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			calleeOf[call.Callee] = true
		}
		return true
	})

	ast.Walk(program, func(n ast.Node) bool {
		expr, ok := n.(ast.Expr)
		if !ok {
			return true
		}
		// A callee identifier names a function and gets no type;
		// everything else must have one.
		if calleeOf[expr] {
			return true
		}
		if checker.ExprTypes[expr] == nil {
			t.Errorf("no inferred type for %T at %d:%d", expr, expr.Span().Start, expr.Span().End)
		}
		return true
	})
}

func TestCheck_IdentMutBindingAnnotation(t *testing.T) {
	src := `
fn main() {
	let mut x: i32 = 1;
	let y: i32 = 2;
	x = y;
}
`
	program := parse(t, src)
	checker := NewChecker()
	checker.SetErrorOutput(io.Discard)
	if !checker.Check(program) {
		t.Fatal("program did not check")
	}

	ast.Walk(program, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok {
			switch ident.Name {
			case "x":
				if !ident.MutBinding {
					t.Error("x should be flagged as a mutable binding")
				}
			case "y":
				if ident.MutBinding {
					t.Error("y should not be flagged as a mutable binding")
				}
			}
		}
		return true
	})
}

func TestAssignable(t *testing.T) {
	span := lexer.Span{}
	i32 := ast.NewType(ast.KindI32, span)
	boolType := ast.NewType(ast.KindBool, span)
	refI32 := ast.NewRefType(false, i32.Clone(), span)
	mutRefI32 := ast.NewRefType(true, i32.Clone(), span)

	if !assignable(i32, i32.Clone()) {
		t.Error("i32 should accept i32")
	}
	if !assignable(refI32, mutRefI32) {
		t.Error("&i32 should accept &mut i32")
	}
	if assignable(mutRefI32, refI32) {
		t.Error("&mut i32 must not accept &i32")
	}
	if assignable(i32, boolType) {
		t.Error("i32 must not accept bool")
	}

	nested := ast.NewRefType(false, refI32.Clone(), span)
	nestedMut := ast.NewRefType(false, mutRefI32.Clone(), span)
	if !assignable(nested, nestedMut) {
		t.Error("&&i32 should accept &(&mut i32) via base recursion")
	}
}
