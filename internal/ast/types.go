package ast

import "github.com/nust-lang/nust/internal/lexer"

// TypeKind identifies the kind of a type.
type TypeKind int

const (
	KindI32 TypeKind = iota
	KindBool
	KindStr
	KindRef    // &T
	KindMutRef // &mut T
)

// Type is a Nust type. Base is non-nil exactly for the reference
// kinds, and reference types nest arbitrarily. Every type value
// carries the span where it was written (or, for inferred types, the
// span of the expression that produced it).
type Type struct {
	Kind TypeKind
	Base *Type
	Span lexer.Span
}

// NewType constructs a primitive type.
func NewType(kind TypeKind, span lexer.Span) *Type {
	return &Type{Kind: kind, Span: span}
}

// NewRefType constructs a reference type over base.
func NewRefType(mutable bool, base *Type, span lexer.Span) *Type {
	kind := KindRef
	if mutable {
		kind = KindMutRef
	}
	return &Type{Kind: kind, Base: base, Span: span}
}

// IsRef reports whether t is a shared or mutable reference.
func (t *Type) IsRef() bool {
	return t.Kind == KindRef || t.Kind == KindMutRef
}

// Clone returns a deep copy of t.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := &Type{Kind: t.Kind, Span: t.Span}
	if t.Base != nil {
		c.Base = t.Base.Clone()
	}
	return c
}

// String renders the type the way it is written in source.
func (t *Type) String() string {
	switch t.Kind {
	case KindI32:
		return "i32"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindRef:
		return "&" + t.Base.String()
	case KindMutRef:
		return "&mut " + t.Base.String()
	default:
		return "unknown"
	}
}
