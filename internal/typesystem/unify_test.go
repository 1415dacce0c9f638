package typesystem

import (
	"testing"
)

func TestUnifyConcrete(t *testing.T) {
	arena := NewVarArena()

	if err := Unify(arena, IntType, IntType); err != nil {
		t.Errorf("Int ~ Int should unify, got %v", err)
	}
	if err := Unify(arena, IntType, BoolType); err == nil {
		t.Errorf("Int ~ Bool should fail")
	} else if err.Kind != KindMismatch {
		t.Errorf("Int ~ Bool kind = %v, want mismatch", err.Kind)
	}
}

func TestUnifyBindsVariable(t *testing.T) {
	arena := NewVarArena()
	tv := arena.Fresh()

	if err := Unify(arena, tv, IntType); err != nil {
		t.Fatalf("unify: %v", err)
	}
	if got := arena.Resolve(tv).String(); got != "Int" {
		t.Errorf("resolved = %s, want Int", got)
	}
}

func TestUnifyCommutative(t *testing.T) {
	// Unifying in either order resolves both sides to the same structure.
	left := func(arena *VarArena, a, b Type) *UnifyError { return Unify(arena, a, b) }
	right := func(arena *VarArena, a, b Type) *UnifyError { return Unify(arena, b, a) }

	for _, unify := range []func(*VarArena, Type, Type) *UnifyError{left, right} {
		arena := NewVarArena()
		tv0 := arena.Fresh()
		tv1 := arena.Fresh()

		a := TFunc{Params: []Type{IntType}, Return: tv0, Effect: EffectPure}
		b := TFunc{Params: []Type{tv1}, Return: BoolType, Effect: EffectPure}

		if err := unify(arena, a, b); err != nil {
			t.Fatalf("unify: %v", err)
		}
		if got := arena.Resolve(tv0).String(); got != "Bool" {
			t.Errorf("return var = %s, want Bool", got)
		}
		if got := arena.Resolve(tv1).String(); got != "Int" {
			t.Errorf("param var = %s, want Int", got)
		}
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	arena := NewVarArena()
	tv := arena.Fresh()

	err := Unify(arena, tv, ListOf(tv))
	if err == nil {
		t.Fatalf("t ~ List<t> should fail the occurs check")
	}
	if err.Kind != KindOccurs {
		t.Errorf("kind = %v, want occurs", err.Kind)
	}
}

func TestUnifyFunctions(t *testing.T) {
	tests := []struct {
		name    string
		a, b    func(arena *VarArena) Type
		wantErr bool
	}{
		{
			name:    "same shape",
			a:       func(*VarArena) Type { return TFunc{Params: []Type{IntType}, Return: BoolType, Effect: EffectPure} },
			b:       func(*VarArena) Type { return TFunc{Params: []Type{IntType}, Return: BoolType, Effect: EffectPure} },
			wantErr: false,
		},
		{
			name:    "arity differs",
			a:       func(*VarArena) Type { return TFunc{Params: []Type{IntType}, Return: BoolType} },
			b:       func(*VarArena) Type { return TFunc{Params: []Type{IntType, IntType}, Return: BoolType} },
			wantErr: true,
		},
		{
			name:    "effect class differs",
			a:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectPure} },
			b:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectProc} },
			wantErr: true,
		},
		{
			name:    "wildcard effect accepts pure",
			a:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectAny} },
			b:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectPure} },
			wantErr: false,
		},
		{
			name:    "wildcard effect accepts proc",
			a:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectAny} },
			b:       func(*VarArena) Type { return TFunc{Params: nil, Return: UnitType, Effect: EffectProc} },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena := NewVarArena()
			err := Unify(arena, tt.a(arena), tt.b(arena))
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnifyRecords(t *testing.T) {
	arena := NewVarArena()
	tv := arena.Fresh()

	a := TRecord{Fields: map[string]Type{"x": IntType, "y": tv}}
	b := TRecord{Fields: map[string]Type{"x": IntType, "y": BoolType}}
	if err := Unify(arena, a, b); err != nil {
		t.Fatalf("unify: %v", err)
	}
	if got := arena.Resolve(tv).String(); got != "Bool" {
		t.Errorf("field var = %s, want Bool", got)
	}

	c := TRecord{Fields: map[string]Type{"x": IntType}}
	if err := Unify(arena, a, c); err == nil {
		t.Errorf("records with different field sets should not unify")
	}
}

func TestUnifyForallAlphaEquivalence(t *testing.T) {
	arena := NewVarArena()
	v0 := arena.Fresh()
	v1 := arena.Fresh()

	a := TForall{Vars: []TVar{v0}, Type: TFunc{Params: []Type{v0}, Return: v0, Effect: EffectPure}}
	b := TForall{Vars: []TVar{v1}, Type: TFunc{Params: []Type{v1}, Return: v1, Effect: EffectPure}}

	if err := Unify(arena, a, b); err != nil {
		t.Errorf("alpha-equivalent schemes should unify, got %v", err)
	}

	c := TForall{Vars: []TVar{v1}, Type: TFunc{Params: []Type{v1}, Return: IntType, Effect: EffectPure}}
	if err := Unify(arena, a, c); err == nil {
		t.Errorf("structurally different schemes should not unify")
	}
}
