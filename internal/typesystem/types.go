// Package typesystem holds the type representation, substitution and
// unification used by the lowering engine. Types are immutable values;
// mutable inference state (variable links, bindings, constraints) lives in
// the VarArena.
package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quill-lang/quill/internal/config"
)

// Type is the interface for all types in the system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Effect is the effect-class tag carried by function types and typed tree
// nodes. EffectAny is the inference wildcard: it unifies with either class
// and never appears in a finalized tree.
type Effect uint8

const (
	EffectAny Effect = iota
	EffectPure
	EffectProc
)

func (e Effect) String() string {
	switch e {
	case EffectPure:
		return "pure"
	case EffectProc:
		return "proc"
	default:
		return "any"
	}
}

// ParamMode describes how a subroutine takes a parameter: borrowed for the
// duration of the call, or consumed (ownership transfer). Modes are
// ownership metadata and do not participate in unification.
type ParamMode uint8

const (
	ByBorrow ParamMode = iota
	ByOwn
)

// Constraint requires a type variable to have a registered implementation
// of a trait.
type Constraint struct {
	Trait string
}

// TVar is a type variable. The value is just the arena index; constraints,
// defaults and union-find links live on the arena record.
type TVar struct {
	ID int
}

func (t TVar) String() string {
	if config.IsTestMode {
		return "t?"
	}
	return fmt.Sprintf("t%d", t.ID)
}

func (t TVar) Apply(s Subst) Type {
	if r, ok := s[t.ID]; ok {
		return r
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon is a named concrete type (built-in or user nominal).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(Subst) Type { return t }

func (t TCon) FreeTypeVariables() []TVar { return nil }

// TApp is a named type applied to type arguments, e.g. List<Int>.
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Constructor.String(), strings.Join(args, ", "))
}

func (t TApp) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: args}
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := t.Constructor.FreeTypeVariables()
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TRecord is a structural record type with a closed field set.
type TRecord struct {
	Fields map[string]Type
}

func (t TRecord) String() string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k].String())
	}
	return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
}

func (t TRecord) Apply(s Subst) Type {
	fields := make(map[string]Type, len(t.Fields))
	for k, v := range t.Fields {
		fields[k] = v.Apply(s)
	}
	return TRecord{Fields: fields}
}

func (t TRecord) FreeTypeVariables() []TVar {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var vars []TVar
	for _, k := range keys {
		vars = append(vars, t.Fields[k].FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc is a subroutine type: ordered parameters, return type, effect class.
// Modes, when non-nil, mark each parameter's ownership passing mode.
type TFunc struct {
	Params []Type
	Return Type
	Effect Effect
	Modes  []ParamMode
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	arrow := "->"
	if t.Effect == EffectProc {
		arrow = "=>"
	}
	return fmt.Sprintf("(%s) %s %s", strings.Join(params, ", "), arrow, t.Return.String())
}

func (t TFunc) Apply(s Subst) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(s)
	}
	return TFunc{Params: params, Return: t.Return.Apply(s), Effect: t.Effect, Modes: t.Modes}
}

func (t TFunc) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.Return.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// Mode returns the passing mode of parameter i, borrowing by default.
func (t TFunc) Mode(i int) ParamMode {
	if i < len(t.Modes) {
		return t.Modes[i]
	}
	return ByBorrow
}

// TForall is a quantified type: the result of generalization at a
// definition boundary. Bound variables carry their constraints with them.
type TForall struct {
	Vars        []TVar
	Constraints map[int][]Constraint // keyed by bound variable ID
	Type        Type
}

func (t TForall) String() string {
	vars := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		s := v.String()
		for _, c := range t.Constraints[v.ID] {
			s += ": " + c.Trait
		}
		vars[i] = s
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(vars, " "), t.Type.String())
}

func (t TForall) Apply(s Subst) Type {
	// Bound variables are not substitutable from outside.
	inner := make(Subst, len(s))
	for k, v := range s {
		inner[k] = v
	}
	for _, v := range t.Vars {
		delete(inner, v.ID)
	}
	return TForall{Vars: t.Vars, Constraints: t.Constraints, Type: t.Type.Apply(inner)}
}

func (t TForall) FreeTypeVariables() []TVar {
	bound := make(map[int]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.ID] = true
	}

	var free []TVar
	for _, v := range t.Type.FreeTypeVariables() {
		if !bound[v.ID] {
			free = append(free, v)
		}
	}
	return uniqueTVars(free)
}

func uniqueTVars(vars []TVar) []TVar {
	seen := make(map[int]bool, len(vars))
	out := vars[:0]
	for _, v := range vars {
		if !seen[v.ID] {
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	return out
}

// Builtin monomorphic types.
var (
	IntType    = TCon{Name: config.IntTypeName}
	FloatType  = TCon{Name: config.FloatTypeName}
	BoolType   = TCon{Name: config.BoolTypeName}
	StringType = TCon{Name: config.StringTypeName}
	UnitType   = TCon{Name: config.UnitTypeName}
)

// ListOf builds List<elem>.
func ListOf(elem Type) TApp {
	return TApp{Constructor: TCon{Name: config.ListTypeName}, Args: []Type{elem}}
}
