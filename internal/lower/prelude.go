package lower

import (
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// registerPrelude declares the built-in traits, their implementations for
// the built-in types, and the built-in subroutines. All of it lands in the
// prelude scope so user code can shadow freely.
func (s *Session) registerPrelude() {
	ts := s.ctx

	// Traits.
	_ = ts.RegisterTrait(config.NumTraitName, []string{"add", "sub", "mul", "div", "neg"})
	_ = ts.RegisterTrait(config.EqTraitName, []string{"eq", "ne"})
	_ = ts.RegisterTrait(config.OrdTraitName, []string{"lt", "le", "gt", "ge"})
	_ = ts.RegisterTrait(config.ShowTraitName, []string{"show"})

	// Implementations for the built-in types. Registration order fixes
	// the resolved trait-method table layout, so keep it stable.
	numMethods := func(t typesystem.Type) map[string]typesystem.Type {
		bin := typesystem.TFunc{Params: []typesystem.Type{t, t}, Return: t, Effect: typesystem.EffectPure}
		return map[string]typesystem.Type{
			"add": bin, "sub": bin, "mul": bin, "div": bin,
			"neg": typesystem.TFunc{Params: []typesystem.Type{t}, Return: t, Effect: typesystem.EffectPure},
		}
	}
	cmpMethods := func(t typesystem.Type, names ...string) map[string]typesystem.Type {
		sig := typesystem.TFunc{Params: []typesystem.Type{t, t}, Return: typesystem.BoolType, Effect: typesystem.EffectPure}
		out := make(map[string]typesystem.Type, len(names))
		for _, n := range names {
			out[n] = sig
		}
		return out
	}
	showMethods := func(t typesystem.Type) map[string]typesystem.Type {
		return map[string]typesystem.Type{
			"show": typesystem.TFunc{Params: []typesystem.Type{t}, Return: typesystem.StringType, Effect: typesystem.EffectPure},
		}
	}

	_, _ = ts.RegisterImpl(config.NumTraitName, typesystem.IntType, numMethods(typesystem.IntType))
	_, _ = ts.RegisterImpl(config.NumTraitName, typesystem.FloatType, numMethods(typesystem.FloatType))
	for _, t := range []typesystem.Type{typesystem.IntType, typesystem.FloatType, typesystem.BoolType, typesystem.StringType} {
		_, _ = ts.RegisterImpl(config.EqTraitName, t, cmpMethods(t, "eq", "ne"))
	}
	for _, t := range []typesystem.Type{typesystem.IntType, typesystem.FloatType, typesystem.StringType} {
		_, _ = ts.RegisterImpl(config.OrdTraitName, t, cmpMethods(t, "lt", "le", "gt", "ge"))
	}
	for _, t := range []typesystem.Type{typesystem.IntType, typesystem.FloatType, typesystem.BoolType, typesystem.StringType} {
		_, _ = ts.RegisterImpl(config.ShowTraitName, t, showMethods(t))
	}

	// Trait method bindings: forall a: Trait. signatures.
	s.declareTraitMethod("add", config.NumTraitName, 2, nil)
	s.declareTraitMethod("sub", config.NumTraitName, 2, nil)
	s.declareTraitMethod("mul", config.NumTraitName, 2, nil)
	s.declareTraitMethod("div", config.NumTraitName, 2, nil)
	s.declareTraitMethod("neg", config.NumTraitName, 1, nil)
	s.declareTraitMethod("eq", config.EqTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("ne", config.EqTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("lt", config.OrdTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("le", config.OrdTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("gt", config.OrdTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("ge", config.OrdTraitName, 2, typesystem.BoolType)
	s.declareTraitMethod("show", config.ShowTraitName, 1, typesystem.StringType)

	// Built-in subroutines.
	a := s.arena.Fresh()
	s.declareBuiltin(config.MoveFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{a},
		Type: typesystem.TFunc{
			Params: []typesystem.Type{a},
			Return: a,
			Effect: typesystem.EffectPure,
			Modes:  []typesystem.ParamMode{typesystem.ByOwn},
		},
	})

	b := s.arena.Fresh()
	thunk := typesystem.TFunc{Params: nil, Return: b, Effect: typesystem.EffectAny}
	s.declareBuiltin(config.IfFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{b},
		Type: typesystem.TFunc{
			Params: []typesystem.Type{typesystem.BoolType, thunk, thunk},
			Return: b,
			Effect: typesystem.EffectPure,
		},
	})

	cv := s.arena.Fresh()
	s.declareBuiltin(config.LenFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{cv},
		Type: typesystem.TFunc{
			Params: []typesystem.Type{typesystem.ListOf(cv)},
			Return: typesystem.IntType,
			Effect: typesystem.EffectPure,
		},
	})

	dv := s.arena.Fresh()
	s.declareBuiltin(config.IdFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{dv},
		Type: typesystem.TFunc{Params: []typesystem.Type{dv}, Return: dv, Effect: typesystem.EffectPure},
	})

	ev := s.arena.Fresh()
	s.declareBuiltin(config.DiscardFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{ev},
		Type: typesystem.TFunc{Params: []typesystem.Type{ev}, Return: typesystem.UnitType, Effect: typesystem.EffectPure},
	})

	// Procedures: the I/O and mutation primitives.
	pv := s.arena.Fresh(typesystem.Constraint{Trait: config.ShowTraitName})
	s.declareBuiltin(config.PrintFuncName, typesystem.TForall{
		Vars:        []typesystem.TVar{pv},
		Constraints: map[int][]typesystem.Constraint{pv.ID: {{Trait: config.ShowTraitName}}},
		Type: typesystem.TFunc{
			Params: []typesystem.Type{pv},
			Return: typesystem.UnitType,
			Effect: typesystem.EffectProc,
		},
	})

	s.declareBuiltin(config.ReadFuncName, typesystem.TFunc{
		Params: nil,
		Return: typesystem.StringType,
		Effect: typesystem.EffectProc,
	})

	uv := s.arena.Fresh()
	s.declareBuiltin(config.MutateFuncName, typesystem.TForall{
		Vars: []typesystem.TVar{uv},
		Type: typesystem.TFunc{
			Params: []typesystem.Type{typesystem.ListOf(uv), typesystem.IntType, uv},
			Return: typesystem.UnitType,
			Effect: typesystem.EffectProc,
		},
	})
}

// declareTraitMethod binds a trait method name to its quantified
// signature: forall a: Trait. (a, ... n times) -> ret, where a nil ret
// means the method returns the receiver type.
func (s *Session) declareTraitMethod(name, trait string, arity int, ret typesystem.Type) {
	a := s.arena.Fresh(typesystem.Constraint{Trait: trait})

	params := make([]typesystem.Type, arity)
	for i := range params {
		params[i] = a
	}
	if ret == nil {
		ret = a
	}

	scheme := typesystem.TForall{
		Vars:        []typesystem.TVar{a},
		Constraints: map[int][]typesystem.Constraint{a.ID: {{Trait: trait}}},
		Type:        typesystem.TFunc{Params: params, Return: ret, Effect: typesystem.EffectPure},
	}
	_ = s.ctx.Declare(name, scheme, symbols.TraitMethodSymbol, token.Token{})
}

func (s *Session) declareBuiltin(name string, t typesystem.Type) {
	_ = s.ctx.Declare(name, t, symbols.SubroutineSymbol, token.Token{})
}
