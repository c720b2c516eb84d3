package ast

// Scope is a node in the lexical scope tree built by the parser. It
// records the names declared directly inside the scope and links to
// its parent. The tree is only ever traversed child to parent.
type Scope struct {
	Parent       *Scope
	Declarations []string
}

// NewScope creates a scope with the given parent (nil for the root).
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent}
}

// Declare records a name as declared directly in this scope.
func (s *Scope) Declare(name string) {
	s.Declarations = append(s.Declarations, name)
}

// DeclaredHere reports whether name was declared directly in this
// scope, not in an ancestor.
func (s *Scope) DeclaredHere(name string) bool {
	for _, d := range s.Declarations {
		if d == name {
			return true
		}
	}
	return false
}

// Resolve walks from this scope toward the root and returns the
// innermost scope declaring name, or nil.
func (s *Scope) Resolve(name string) *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.DeclaredHere(name) {
			return sc
		}
	}
	return nil
}
