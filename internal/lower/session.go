// Package lower walks the desugared syntax tree, allocates type variables,
// emits unification constraints and builds the typed intermediate
// representation. Type errors are collected across the whole unit (up to a
// cap) rather than aborting at the first failure.
package lower

import (
	"fmt"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// Session is the stateful lowering context of one compilation unit. It is
// created by BeginUnit, passed by reference through the pass, and torn
// down by EndUnit; no state survives across units.
type Session struct {
	arena *typesystem.VarArena
	ctx   *symbols.Context
	opts  config.Options

	errorSet map[string]*diagnostics.DiagnosticError
	errs     []*diagnostics.DiagnosticError
	warns    []diagnostics.Warning

	// generalized marks arena roots bound by some definition's quantifier.
	// Finalize treats them as bound, not incomplete.
	generalized map[int]bool

	// Staged overload resolution and deferred checks, resolved after the
	// whole unit is walked.
	dispatches  []*pendingDispatch
	constraints []pendingConstraint
	fields      []pendingField

	// frames tracks enclosing subroutine boundaries for capture
	// resolution.
	frames []*funcFrame

	file string
}

// pendingDispatch defers selecting a trait implementation until the
// receiver's type is fully resolved.
type pendingDispatch struct {
	call     *hir.Call   // set when the method appears in call position
	ref      *hir.VarRef // set when the method value is referenced bare
	trait    string
	method   string
	receiver typesystem.TVar
	tok      token.Token
}

// pendingConstraint defers checking a trait constraint until its variable
// resolves.
type pendingConstraint struct {
	tv    typesystem.TVar
	trait string
	tok   token.Token
}

// pendingField defers typing a field access until the target resolves.
type pendingField struct {
	node   *hir.FieldAccess
	target typesystem.Type
	result typesystem.TVar
	tok    token.Token
}

// funcFrame tracks one subroutine boundary (definition body or lambda).
type funcFrame struct {
	entryScope  int
	moveCapture bool
	captures    []hir.Capture
	seen        map[string]bool
}

// BeginUnit creates a fresh session: private type-variable arena, private
// scope context with the prelude registered.
func BeginUnit(file string, opts config.Options) *Session {
	s := &Session{
		arena:       typesystem.NewVarArena(),
		ctx:         symbols.NewContext(),
		opts:        opts,
		errorSet:    make(map[string]*diagnostics.DiagnosticError),
		generalized: make(map[int]bool),
		file:        file,
	}
	s.registerPrelude()
	s.ctx.EnterScope(symbols.ScopeGlobal)
	return s
}

// EndUnit releases the session. The arena and scope tree are dropped in
// one pass; types already written into the typed tree stay valid because
// finalize resolved them to self-contained values.
func (s *Session) EndUnit() {
	s.arena = nil
	s.ctx = nil
	s.errorSet = nil
}

// Arena exposes the unit's variable arena to tests.
func (s *Session) Arena() *typesystem.VarArena { return s.arena }

// Context exposes the unit's scope context to later passes (the code
// generator reads the implementation table from it).
func (s *Session) Context() *symbols.Context { return s.ctx }

// Lower runs the whole pass: walk, deferred resolution, finalize.
func (s *Session) Lower(prog *ast.Program) (*hir.Unit, []diagnostics.Warning, []*diagnostics.DiagnosticError) {
	unit := &hir.Unit{File: prog.File}
	for _, e := range prog.Exprs {
		unit.Exprs = append(unit.Exprs, s.lowerExpr(e))
	}

	s.resolveFields()
	s.applyDefaults()
	s.resolveDispatches()
	s.checkConstraints()
	s.finalize(unit)
	s.warnUnusedGlobals()

	return unit, s.warns, s.collected()
}

// addError records a diagnostic, deduplicating by site and code, capped.
func (s *Session) addError(err *diagnostics.DiagnosticError) {
	if len(s.errorSet) >= s.opts.MaxErrors {
		return
	}
	if err.File == "" {
		err.File = s.file
	}
	key := fmt.Sprintf("%d:%d:%s", err.Token.Line, err.Token.Column, err.Code)
	if _, dup := s.errorSet[key]; dup {
		return
	}
	s.errorSet[key] = err
	s.errs = append(s.errs, err)
}

func (s *Session) addWarning(code diagnostics.Code, tok token.Token, msg string) {
	s.warns = append(s.warns, diagnostics.Warning{Code: code, Token: tok, File: s.file, Message: msg})
}

// collected returns the diagnostics in source order.
func (s *Session) collected() []*diagnostics.DiagnosticError {
	diagnostics.Sort(s.errs)
	return s.errs
}

// unifyAt unifies expected with found and converts a failure into a sited
// diagnostic.
func (s *Session) unifyAt(expected, found typesystem.Type, tok token.Token) bool {
	err := typesystem.Unify(s.arena, expected, found)
	if err == nil {
		return true
	}
	code := diagnostics.ErrT001
	if err.Kind == typesystem.KindOccurs {
		code = diagnostics.ErrT002
	}
	s.addError(diagnostics.NewError(code, tok, err.Error()))
	return false
}

// warnUnusedGlobals reports unused top-level value bindings.
func (s *Session) warnUnusedGlobals() {
	for _, sym := range s.ctx.ScopeSymbols() {
		if sym.Kind == symbols.VariableSymbol && !sym.Used {
			s.addWarning(diagnostics.WarnW001, sym.Token, fmt.Sprintf("binding %q is never used", sym.Name))
		}
	}
}
