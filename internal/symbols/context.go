package symbols

import (
	"fmt"

	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// scopeRecord is one scope in the context's arena. Scopes reference their
// parent by index, never by owning pointer, so the whole tree tears down in
// one pass when the unit's context is dropped.
type scopeRecord struct {
	parent int // -1 for the prelude root
	kind   ScopeType
	store  map[string]Symbol
	// order keeps declaration order for deterministic iteration.
	order []string
}

// Context owns the scope tree of one compilation unit, plus the
// unit-scoped trait and implementation registries. It is created at
// BeginUnit and no state survives past EndUnit.
type Context struct {
	scopes  []scopeRecord
	current int

	traits       map[string][]string // trait -> method names
	methodTraits map[string]string   // method -> trait
	impls        map[string][]InstanceDef
	implCount    int
}

// NewContext creates a context positioned at the prelude scope. The caller
// registers built-ins there, then enters the unit's global scope, so user
// code can shadow any built-in without tripping the redeclaration check.
func NewContext() *Context {
	c := &Context{
		traits:       make(map[string][]string),
		methodTraits: make(map[string]string),
		impls:        make(map[string][]InstanceDef),
	}
	c.scopes = append(c.scopes, scopeRecord{parent: -1, kind: ScopePrelude, store: make(map[string]Symbol)})
	c.current = 0
	return c
}

// EnterScope pushes a new scope under the current one and returns its index.
func (c *Context) EnterScope(kind ScopeType) int {
	idx := len(c.scopes)
	c.scopes = append(c.scopes, scopeRecord{parent: c.current, kind: kind, store: make(map[string]Symbol)})
	c.current = idx
	return idx
}

// ExitScope pops the current scope. The record stays in the arena (closure
// capture resolution may still consult it) but its bindings are no longer
// reachable by Lookup.
func (c *Context) ExitScope() {
	parent := c.scopes[c.current].parent
	if parent < 0 {
		panic("symbols: exiting the prelude scope")
	}
	c.current = parent
}

// Current returns the index of the current scope.
func (c *Context) Current() int { return c.current }

// ScopeKind returns the kind of scope idx.
func (c *Context) ScopeKind(idx int) ScopeType { return c.scopes[idx].kind }

// Declare binds name in the current scope. Shadowing an ancestor is
// allowed; a second declaration in the same scope is not.
func (c *Context) Declare(name string, t typesystem.Type, kind BindingKind, tok token.Token) error {
	scope := &c.scopes[c.current]
	if _, exists := scope.store[name]; exists {
		return fmt.Errorf("redeclaration of %q in the same scope", name)
	}
	scope.store[name] = Symbol{Name: name, Type: t, Kind: kind, Token: tok}
	scope.order = append(scope.order, name)
	return nil
}

// Update replaces the type of an existing binding, searching the parent
// chain. Lowering uses it to narrow a pending definition to its inferred
// type.
func (c *Context) Update(name string, t typesystem.Type) bool {
	for idx := c.current; idx >= 0; idx = c.scopes[idx].parent {
		if sym, ok := c.scopes[idx].store[name]; ok {
			sym.Type = t
			c.scopes[idx].store[name] = sym
			return true
		}
	}
	return false
}

// Lookup climbs the parent chain for name and marks the binding used.
func (c *Context) Lookup(name string) (Symbol, bool) {
	for idx := c.current; idx >= 0; idx = c.scopes[idx].parent {
		if sym, ok := c.scopes[idx].store[name]; ok {
			sym.Used = true
			c.scopes[idx].store[name] = sym
			return sym, true
		}
	}
	return Symbol{}, false
}

// LookupWithScope is Lookup plus the index of the scope the name resolved
// in. Closure capture resolution compares it against the lambda's entry
// scope.
func (c *Context) LookupWithScope(name string) (Symbol, int, bool) {
	for idx := c.current; idx >= 0; idx = c.scopes[idx].parent {
		if sym, ok := c.scopes[idx].store[name]; ok {
			sym.Used = true
			c.scopes[idx].store[name] = sym
			return sym, idx, true
		}
	}
	return Symbol{}, -1, false
}

// LookupLocal checks only the current scope.
func (c *Context) LookupLocal(name string) (Symbol, bool) {
	sym, ok := c.scopes[c.current].store[name]
	return sym, ok
}

// ScopeSymbols returns the current scope's bindings in declaration order.
func (c *Context) ScopeSymbols() []Symbol {
	scope := c.scopes[c.current]
	out := make([]Symbol, 0, len(scope.order))
	for _, name := range scope.order {
		out = append(out, scope.store[name])
	}
	return out
}

// EnvFreeTypeVars collects the free type variables of every binding
// reachable from the current scope, after resolving through the arena,
// skipping ignored (the definition being generalized). A variable free in
// the environment must not be generalized.
func (c *Context) EnvFreeTypeVars(arena *typesystem.VarArena, ignored string) map[int]bool {
	free := make(map[int]bool)
	for idx := c.current; idx >= 0; idx = c.scopes[idx].parent {
		for _, name := range c.scopes[idx].order {
			sym := c.scopes[idx].store[name]
			if sym.Name == ignored || sym.Type == nil {
				continue
			}
			resolved := arena.Resolve(sym.Type)
			for _, tv := range resolved.FreeTypeVariables() {
				free[tv.ID] = true
			}
		}
	}
	return free
}
