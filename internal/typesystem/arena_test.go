package typesystem

import (
	"testing"
)

func TestArenaLinkOrderIndependence(t *testing.T) {
	// Linking a pair in either order leaves the same representative.
	first := NewVarArena()
	a1, b1 := first.Fresh(), first.Fresh()
	first.link(a1.ID, b1.ID)

	second := NewVarArena()
	a2, b2 := second.Fresh(), second.Fresh()
	second.link(b2.ID, a2.ID)

	if first.Root(a1.ID) != first.Root(b1.ID) {
		t.Fatalf("linked variables should share a root")
	}
	if first.Root(b1.ID).ID != second.Root(b2.ID).ID {
		t.Errorf("representative depends on link order: %d vs %d",
			first.Root(b1.ID).ID, second.Root(b2.ID).ID)
	}
}

func TestArenaLinkMergesConstraints(t *testing.T) {
	arena := NewVarArena()
	a := arena.Fresh(Constraint{Trait: "Num"})
	b := arena.Fresh(Constraint{Trait: "Show"})

	arena.link(a.ID, b.ID)

	cs := arena.Constraints(a.ID)
	if len(cs) != 2 {
		t.Fatalf("merged constraints = %v, want Num and Show", cs)
	}

	// Duplicates collapse.
	arena.AddConstraint(b.ID, Constraint{Trait: "Num"})
	if got := len(arena.Constraints(b.ID)); got != 2 {
		t.Errorf("constraint set grew on duplicate: %d", got)
	}
}

func TestArenaLinkKeepsDefault(t *testing.T) {
	arena := NewVarArena()
	lit := arena.FreshWithDefault(IntType, Constraint{Trait: "Num"})
	other := arena.Fresh()

	arena.link(other.ID, lit.ID)

	if def := arena.Default(other.ID); def == nil || def.String() != "Int" {
		t.Errorf("default lost across link: %v", def)
	}
}

func TestArenaResolveDeep(t *testing.T) {
	arena := NewVarArena()
	a := arena.Fresh()
	b := arena.Fresh()

	arena.bind(a.ID, ListOf(b))
	arena.bind(b.ID, IntType)

	if got := arena.Resolve(a).String(); got != "List<Int>" {
		t.Errorf("deep resolve = %s, want List<Int>", got)
	}
}

func TestArenaResolveLeavesBoundQuantifiers(t *testing.T) {
	arena := NewVarArena()
	v := arena.Fresh()
	arena.bind(v.ID, IntType)

	scheme := TForall{Vars: []TVar{v}, Type: TFunc{Params: []Type{v}, Return: v, Effect: EffectPure}}
	resolved := arena.Resolve(scheme).(TForall)

	if got := resolved.Type.(TFunc).Return.(TVar); got.ID != v.ID {
		t.Errorf("quantified variable was substituted to %v", resolved.Type)
	}
}
