// Package symbols implements the hierarchical scope context of one
// compilation unit: name-to-binding tables, the scope tree, and the trait
// implementation registry used by overload resolution.
package symbols

import (
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// BindingKind distinguishes what a name is bound to.
type BindingKind int

const (
	VariableSymbol BindingKind = iota
	SubroutineSymbol
	TraitMethodSymbol
)

func (k BindingKind) String() string {
	switch k {
	case SubroutineSymbol:
		return "subroutine"
	case TraitMethodSymbol:
		return "trait method"
	default:
		return "variable"
	}
}

// ScopeType classifies a scope for generalization and slot numbering.
type ScopeType int

const (
	ScopePrelude ScopeType = iota // built-in types, subroutines, traits
	ScopeGlobal                   // unit top level
	ScopeFunction
	ScopeBlock
)

// Symbol is one name binding.
type Symbol struct {
	Name  string
	Type  typesystem.Type
	Kind  BindingKind
	Token token.Token // declaration site
	Used  bool        // set by Lookup, read by the unused-binding warning
}

// InstanceDef is a registered trait implementation: Trait for Target, with
// per-method signatures. Index is the implementation's slot in the resolved
// trait-method table the code generator indexes at run time; it is assigned
// in registration order and therefore deterministic.
type InstanceDef struct {
	Trait   string
	Target  typesystem.Type
	Methods map[string]typesystem.Type
	Index   int
}
