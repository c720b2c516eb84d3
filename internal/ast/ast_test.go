package ast

import (
	"testing"

	"github.com/nust-lang/nust/internal/lexer"
)

func TestType_String(t *testing.T) {
	span := lexer.Span{}
	cases := []struct {
		typ  *Type
		want string
	}{
		{NewType(KindI32, span), "i32"},
		{NewType(KindBool, span), "bool"},
		{NewType(KindStr, span), "str"},
		{NewRefType(false, NewType(KindI32, span), span), "&i32"},
		{NewRefType(true, NewType(KindStr, span), span), "&mut str"},
		{NewRefType(false, NewRefType(true, NewType(KindI32, span), span), span), "&&mut i32"},
	}

	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestType_CloneIsDeep(t *testing.T) {
	span := lexer.Span{Start: 1, End: 5}
	orig := NewRefType(true, NewRefType(false, NewType(KindI32, span), span), span)

	clone := orig.Clone()
	clone.Base.Kind = KindMutRef
	clone.Base.Base.Kind = KindBool

	if orig.Base.Kind != KindRef || orig.Base.Base.Kind != KindI32 {
		t.Fatal("mutating the clone changed the original")
	}
	if clone.Span != orig.Span {
		t.Fatal("clone lost the span")
	}
}

func TestScope_ResolveWalksToParent(t *testing.T) {
	root := NewScope(nil)
	root.Declare("x")

	inner := NewScope(root)
	inner.Declare("y")

	if inner.Resolve("x") != root {
		t.Fatal("x should resolve to the root scope")
	}
	if inner.Resolve("y") != inner {
		t.Fatal("y should resolve to the inner scope")
	}
	if root.Resolve("y") != nil {
		t.Fatal("y must not be visible from the root")
	}
	if inner.Resolve("z") != nil {
		t.Fatal("z is undeclared")
	}
}

func TestWalk_VisitsEveryNode(t *testing.T) {
	span := lexer.Span{}
	body := NewBlockStmt([]Stmt{
		NewLetStmt(false, "x", NewType(KindI32, span),
			NewBinaryExpr(OpAdd, NewIntLit(1, span), NewIntLit(2, span), span), nil, span),
		NewExprStmt(NewCallExpr(NewIdent("f", span), []Expr{NewBoolLit(true, span)}, span), nil, span),
	}, nil, span)
	program := NewProgram([]*FunctionDecl{
		NewFunctionDecl("main", nil, NewType(KindI32, span), body, span),
	}, span)

	counts := make(map[string]int)
	Walk(program, func(n Node) bool {
		switch n.(type) {
		case *Program:
			counts["program"]++
		case *FunctionDecl:
			counts["fn"]++
		case *BlockStmt:
			counts["block"]++
		case *LetStmt:
			counts["let"]++
		case *ExprStmt:
			counts["exprstmt"]++
		case *BinaryExpr:
			counts["binary"]++
		case *IntLit:
			counts["int"]++
		case *CallExpr:
			counts["call"]++
		case *Ident:
			counts["ident"]++
		case *BoolLit:
			counts["bool"]++
		}
		return true
	})

	want := map[string]int{
		"program": 1, "fn": 1, "block": 1, "let": 1, "exprstmt": 1,
		"binary": 1, "int": 2, "call": 1, "ident": 1, "bool": 1,
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("visited %d %s nodes, want %d", counts[k], k, v)
		}
	}
}

func TestWalk_StopsBranch(t *testing.T) {
	span := lexer.Span{}
	expr := NewBinaryExpr(OpMul, NewIntLit(2, span), NewIntLit(3, span), span)

	visited := 0
	Walk(expr, func(n Node) bool {
		visited++
		_, isBinary := n.(*BinaryExpr)
		return !isBinary
	})

	if visited != 1 {
		t.Fatalf("visited %d nodes, want 1", visited)
	}
}
