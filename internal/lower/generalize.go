package lower

import (
	"sort"

	"github.com/quill-lang/quill/internal/typesystem"
)

// generalize closes over the type variables free in t but not free in the
// enclosing environment, producing a quantified scheme. Constraints
// accumulated on a quantified variable move into the scheme and are
// re-checked at each instantiation site instead of once here. Quantified
// roots are recorded so finalize does not flag them as unresolved.
func (s *Session) generalize(t typesystem.Type, name string) typesystem.Type {
	resolved := s.arena.Resolve(t)

	envFree := s.ctx.EnvFreeTypeVars(s.arena, name)

	var ids []int
	seen := make(map[int]bool)
	for _, tv := range resolved.FreeTypeVariables() {
		root := s.arena.Root(tv.ID).ID
		if envFree[root] || seen[root] {
			continue
		}
		seen[root] = true
		ids = append(ids, root)
	}
	if len(ids) == 0 {
		return resolved
	}

	// Sorting by arena index makes the quantifier order, and with it the
	// rendered scheme, independent of traversal order.
	sort.Ints(ids)

	vars := make([]typesystem.TVar, len(ids))
	constraints := make(map[int][]typesystem.Constraint)
	for i, id := range ids {
		vars[i] = typesystem.TVar{ID: id}
		if cs := s.arena.Constraints(id); len(cs) > 0 {
			constraints[id] = append([]typesystem.Constraint(nil), cs...)
		}
		s.generalized[id] = true
	}

	return typesystem.TForall{Vars: vars, Constraints: constraints, Type: resolved}
}
