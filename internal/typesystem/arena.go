package typesystem

// VarArena owns every type variable of one compilation unit. Records are
// addressed by index and linked union-find style with path compression:
// merging two variables links one root under the other, and binding a
// variable stores the bound type on its root. The arena is the accumulated
// substitution of the unit; it is created at BeginUnit and dropped whole at
// EndUnit.
type varRecord struct {
	parent      int // self when root
	bound       Type
	constraints []Constraint
	def         Type // literal default, applied at finalize when unbound
}

type VarArena struct {
	records []varRecord
}

func NewVarArena() *VarArena {
	return &VarArena{}
}

// Fresh allocates a new unbound type variable carrying the given trait
// constraints.
func (a *VarArena) Fresh(constraints ...Constraint) TVar {
	id := len(a.records)
	a.records = append(a.records, varRecord{parent: id, constraints: constraints})
	return TVar{ID: id}
}

// FreshWithDefault allocates a constrained variable with a fallback type
// applied at finalize if inference leaves it unbound (numeric literals
// default to Int).
func (a *VarArena) FreshWithDefault(def Type, constraints ...Constraint) TVar {
	tv := a.Fresh(constraints...)
	a.records[tv.ID].def = def
	return tv
}

// Len returns the number of allocated variables.
func (a *VarArena) Len() int { return len(a.records) }

// find returns the root index of id, compressing the path.
func (a *VarArena) find(id int) int {
	root := id
	for a.records[root].parent != root {
		root = a.records[root].parent
	}
	for a.records[id].parent != id {
		next := a.records[id].parent
		a.records[id].parent = root
		id = next
	}
	return root
}

// Root returns the representative variable for id.
func (a *VarArena) Root(id int) TVar {
	return TVar{ID: a.find(id)}
}

// Binding returns the type bound to id's root, or nil when unbound.
func (a *VarArena) Binding(id int) Type {
	return a.records[a.find(id)].bound
}

// Constraints returns the constraint set accumulated on id's root.
func (a *VarArena) Constraints(id int) []Constraint {
	return a.records[a.find(id)].constraints
}

// Default returns the literal default of id's root, or nil.
func (a *VarArena) Default(id int) Type {
	return a.records[a.find(id)].def
}

// AddConstraint attaches a trait constraint to id's root.
func (a *VarArena) AddConstraint(id int, c Constraint) {
	root := a.find(id)
	for _, have := range a.records[root].constraints {
		if have == c {
			return
		}
	}
	a.records[root].constraints = append(a.records[root].constraints, c)
}

// link merges two unbound variables, keeping the lower root as
// representative so resolution order cannot influence the result. The
// merged root carries the union of both constraint sets and either default.
func (a *VarArena) link(x, y int) {
	rx, ry := a.find(x), a.find(y)
	if rx == ry {
		return
	}
	if ry < rx {
		rx, ry = ry, rx
	}

	for _, c := range a.records[ry].constraints {
		a.AddConstraint(rx, c)
	}
	if a.records[rx].def == nil {
		a.records[rx].def = a.records[ry].def
	}
	a.records[ry].parent = rx
	a.records[ry].constraints = nil
	a.records[ry].def = nil
}

// bind stores t as the resolution of id's root. The caller has already run
// the occurs check.
func (a *VarArena) bind(id int, t Type) {
	a.records[a.find(id)].bound = t
}

// Resolve replaces every bound variable in t with its resolution, deeply,
// and maps unbound variables to their root representatives. The result of
// resolving a type is stable regardless of the order in which the bindings
// were produced.
func (a *VarArena) Resolve(t Type) Type {
	return a.resolve(t, make(map[int]bool))
}

func (a *VarArena) resolve(t Type, visiting map[int]bool) Type {
	switch t := t.(type) {
	case TVar:
		root := a.find(t.ID)
		if visiting[root] {
			return TVar{ID: root}
		}
		if bound := a.records[root].bound; bound != nil {
			visiting[root] = true
			out := a.resolve(bound, visiting)
			delete(visiting, root)
			return out
		}
		return TVar{ID: root}

	case TCon:
		return t

	case TApp:
		args := make([]Type, len(t.Args))
		for i, arg := range t.Args {
			args[i] = a.resolve(arg, visiting)
		}
		return TApp{Constructor: a.resolve(t.Constructor, visiting), Args: args}

	case TRecord:
		fields := make(map[string]Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = a.resolve(v, visiting)
		}
		return TRecord{Fields: fields}

	case TFunc:
		params := make([]Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolve(p, visiting)
		}
		return TFunc{Params: params, Return: a.resolve(t.Return, visiting), Effect: t.Effect, Modes: t.Modes}

	case TForall:
		// Bound variables are never unified, so marking them as visiting
		// keeps them untouched while the body resolves.
		for _, v := range t.Vars {
			visiting[v.ID] = true
		}
		inner := a.resolve(t.Type, visiting)
		for _, v := range t.Vars {
			delete(visiting, v.ID)
		}
		return TForall{Vars: t.Vars, Constraints: t.Constraints, Type: inner}

	default:
		return t
	}
}
