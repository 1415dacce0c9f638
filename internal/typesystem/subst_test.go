package typesystem

import "testing"

func TestComposeAppliesLeftThenRight(t *testing.T) {
	v0, v1 := TVar{ID: 0}, TVar{ID: 1}
	s1 := Subst{0: ListOf(v1)}
	s2 := Subst{1: IntType}

	out := s1.Compose(s2)
	if got := v0.Apply(out).String(); got != "List<Int>" {
		t.Errorf("composed apply = %s, want List<Int>", got)
	}
	if got := v1.Apply(out).String(); got != "Int" {
		t.Errorf("entry only in s2 = %s, want Int", got)
	}

	// Composing then applying matches applying one after the other.
	seq := v0.Apply(s1).Apply(s2)
	if got := v0.Apply(out); got.String() != seq.String() {
		t.Errorf("composed = %s, sequential = %s", got, seq)
	}
}
