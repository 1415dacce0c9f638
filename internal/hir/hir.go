// Package hir is the typed intermediate representation. Lowering builds it
// once per compilation unit; the effect and ownership checkers only
// annotate tags on it, and the code generator reads it. Every node carries
// a resolved type and an effect tag; binding-introducing nodes additionally
// carry an ownership state written only by the ownership pass.
package hir

import (
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Node is the base interface of typed tree nodes.
type Node interface {
	GetToken() token.Token
	SetToken(token.Token)
	Type() typesystem.Type
	SetType(typesystem.Type)
	EffectTag() typesystem.Effect
	SetEffect(typesystem.Effect)
}

// base carries the fields every node shares.
type base struct {
	Tok token.Token
	Typ typesystem.Type
	Eff typesystem.Effect
}

func (b *base) GetToken() token.Token         { return b.Tok }
func (b *base) SetToken(t token.Token)        { b.Tok = t }
func (b *base) Type() typesystem.Type         { return b.Typ }
func (b *base) SetType(t typesystem.Type)     { b.Typ = t }
func (b *base) EffectTag() typesystem.Effect  { return b.Eff }
func (b *base) SetEffect(e typesystem.Effect) { b.Eff = e }

// OwnershipState is the per-binding linear state. A binding is Owned until
// it is consumed; Borrows counts the live borrows lent out of it.
type OwnershipState struct {
	Moved   bool
	MovedAt token.Token
	Borrows int
}

func (s OwnershipState) String() string {
	switch {
	case s.Moved:
		return "moved"
	case s.Borrows > 0:
		return "borrowed"
	default:
		return "owned"
	}
}

// Unit is the typed counterpart of one compilation unit.
type Unit struct {
	File  string
	Exprs []Node
}

// LitKind tags the literal variants.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitBool
	LitUnit
)

// Literal is a constant with a known monomorphic type.
type Literal struct {
	base
	Kind  LitKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

// VarRef reads a binding. Kind mirrors the scope context entry the name
// resolved to. Dispatch is populated when the reference names a trait
// method outside call position.
type VarRef struct {
	base
	Name     string
	Kind     symbols.BindingKind
	Dispatch Dispatch
}

// FieldAccess reads a record field.
type FieldAccess struct {
	base
	Target Node
	Field  string
}

// DispatchKind says how a call's callee was resolved.
type DispatchKind int

const (
	// DispatchDirect calls a binding (definition, parameter or builtin).
	DispatchDirect DispatchKind = iota
	// DispatchStatic calls a single trait implementation selected at
	// compile time.
	DispatchStatic
	// DispatchTable calls through the unit's resolved trait-method table;
	// used inside polymorphic bodies where the receiver type stays generic.
	DispatchTable
)

// Dispatch is the resolved callee of a trait-method call.
type Dispatch struct {
	Kind      DispatchKind
	Trait     string
	Method    string
	ImplIndex int // valid for DispatchStatic; -1 otherwise
}

// Call applies a callee to arguments. Sig is the callee's fully resolved
// monomorphic signature at this site (parameter modes included), which the
// ownership pass reads to classify argument positions.
type Call struct {
	base
	Callee   Node
	Args     []Node
	Sig      typesystem.TFunc
	Dispatch Dispatch
}

// CalleeName renders the callee for effect-chain diagnostics.
func (c *Call) CalleeName() string {
	switch callee := c.Callee.(type) {
	case *VarRef:
		return callee.Name
	case *Lambda:
		return "<lambda>"
	default:
		return "<expr>"
	}
}

// Param is a formal parameter binding of a definition or lambda.
type Param struct {
	Tok  token.Token
	Name string
	Typ  typesystem.Type
	Own  OwnershipState
}

// Def binds a name. Scheme is the generalized (possibly quantified) type
// recorded at the definition boundary; Type() holds the monomorphic body
// type. Declared is the effect class the '!' naming convention promises.
type Def struct {
	base
	Name     string
	Params   []*Param
	Body     Node
	Declared typesystem.Effect
	Scheme   typesystem.Type
	Own      OwnershipState
	Captures []Capture
}

// IsSubroutine reports whether the definition has a parameter list.
func (d *Def) IsSubroutine() bool { return d.Params != nil }

// Capture is one binding captured by a closure, tagged by-value (moved
// into the closure's private environment) or by-reference (borrowed).
type Capture struct {
	Name    string
	Tok     token.Token
	ByValue bool
}

// Lambda is an anonymous subroutine with its resolved capture list.
type Lambda struct {
	base
	Params      []*Param
	Body        Node
	MoveCapture bool
	Captures    []Capture
}

// ArrayLit constructs a list.
type ArrayLit struct {
	base
	Elems []Node
}

// RecordEntry is one field of a record literal, in source order.
type RecordEntry struct {
	Name  string
	Value Node
}

// RecordLit constructs a record.
type RecordLit struct {
	base
	Fields []RecordEntry
}

// Comprehension builds a list from Source, binding each element to Binding
// and keeping elements passing Filter (nil = keep all).
type Comprehension struct {
	base
	Binding *Param
	Source  Node
	Filter  Node
	Body    Node
	Own     OwnershipState
}

// Block is a scoped expression sequence evaluating to its last expression.
type Block struct {
	base
	Exprs []Node
}
