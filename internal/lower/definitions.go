package lower

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/typesystem"
)

func (s *Session) lowerDef(n *ast.Definition) hir.Node {
	if n.IsSubroutine() {
		return s.lowerSubroutine(n)
	}
	return s.lowerValueDef(n)
}

// lowerValueDef types a value binding. The binding generalizes only when
// its body is a lambda (value restriction): generalizing an arbitrary
// expression would let an unresolved inner variable escape the binding.
func (s *Session) lowerValueDef(n *ast.Definition) hir.Node {
	body := s.lowerExpr(n.Body)

	declared := typesystem.EffectPure
	if n.DeclaredEffectful() {
		declared = typesystem.EffectProc
		// A '!' name promises a procedure. Stamp the promise on the
		// closure signature so the binding's scheme carries it to every
		// call site.
		if sig, ok := body.Type().(typesystem.TFunc); ok {
			sig.Effect = typesystem.EffectProc
			body.SetType(sig)
		}
	}

	def := &hir.Def{Name: n.Name, Body: body, Declared: declared}
	s.seed(def, n.Token, typesystem.UnitType)

	scheme := s.arena.Resolve(body.Type())
	if lambda, ok := body.(*hir.Lambda); ok {
		scheme = s.generalize(body.Type(), n.Name)
		def.Captures = lambda.Captures
	}
	def.Scheme = scheme

	if err := s.ctx.Declare(n.Name, scheme, symbols.VariableSymbol, n.Token); err != nil {
		s.addError(diagnostics.NewError(diagnostics.ErrT006, n.Token, err.Error()))
	}
	return def
}

// lowerSubroutine types a named subroutine definition. The name is
// pre-declared with a monomorphic signature so the body can recurse, then
// narrowed to the generalized scheme once the body is typed.
func (s *Session) lowerSubroutine(n *ast.Definition) hir.Node {
	declared := typesystem.EffectPure
	if n.DeclaredEffectful() {
		declared = typesystem.EffectProc
	}

	paramVars := make([]typesystem.Type, len(n.Params))
	for i := range paramVars {
		paramVars[i] = s.arena.Fresh()
	}
	retVar := s.arena.Fresh()
	mono := typesystem.TFunc{Params: paramVars, Return: retVar, Effect: declared}

	if err := s.ctx.Declare(n.Name, mono, symbols.SubroutineSymbol, n.Token); err != nil {
		s.addError(diagnostics.NewError(diagnostics.ErrT006, n.Token, err.Error()))
	}

	entry := s.ctx.EnterScope(symbols.ScopeFunction)
	frame := &funcFrame{entryScope: entry, seen: make(map[string]bool)}
	s.frames = append(s.frames, frame)

	params := make([]*hir.Param, len(n.Params))
	for i, p := range n.Params {
		if err := s.ctx.Declare(p.Name, paramVars[i], symbols.VariableSymbol, p.Token); err != nil {
			s.addError(diagnostics.NewError(diagnostics.ErrT006, p.Token, err.Error()))
		}
		params[i] = &hir.Param{Tok: p.Token, Name: p.Name, Typ: paramVars[i]}
	}

	body := s.lowerExpr(n.Body)
	s.unifyAt(retVar, body.Type(), n.Body.GetToken())

	s.warnUnusedLocals()
	s.frames = s.frames[:len(s.frames)-1]
	s.ctx.ExitScope()

	def := &hir.Def{
		Name:     n.Name,
		Params:   params,
		Body:     body,
		Declared: declared,
		Captures: frame.captures,
	}
	s.seed(def, n.Token, mono)

	scheme := s.generalize(mono, n.Name)
	def.Scheme = scheme
	s.ctx.Update(n.Name, scheme)
	return def
}

func (s *Session) lowerLambda(n *ast.Lambda) hir.Node {
	entry := s.ctx.EnterScope(symbols.ScopeFunction)
	frame := &funcFrame{entryScope: entry, moveCapture: n.MoveCapture, seen: make(map[string]bool)}
	s.frames = append(s.frames, frame)

	params := make([]*hir.Param, len(n.Params))
	paramVars := make([]typesystem.Type, len(n.Params))
	for i, p := range n.Params {
		tv := s.arena.Fresh()
		paramVars[i] = tv
		if err := s.ctx.Declare(p.Name, tv, symbols.VariableSymbol, p.Token); err != nil {
			s.addError(diagnostics.NewError(diagnostics.ErrT006, p.Token, err.Error()))
		}
		params[i] = &hir.Param{Tok: p.Token, Name: p.Name, Typ: tv}
	}

	body := s.lowerExpr(n.Body)

	s.warnUnusedLocals()
	s.frames = s.frames[:len(s.frames)-1]
	s.ctx.ExitScope()

	lambda := &hir.Lambda{
		Params:      params,
		Body:        body,
		MoveCapture: n.MoveCapture,
		Captures:    frame.captures,
	}
	// The effect class of a lambda is inferred from its body by the effect
	// checker; the wildcard lets it unify with both pure and effectful
	// signature positions until then.
	s.seed(lambda, n.Token, typesystem.TFunc{
		Params: paramVars,
		Return: body.Type(),
		Effect: typesystem.EffectAny,
	})
	return lambda
}
