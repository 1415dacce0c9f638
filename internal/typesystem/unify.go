package typesystem

// Unify makes a and b structurally equal by binding variables in the arena.
// It is commutative up to variable renaming: Unify(a, b) and Unify(b, a)
// leave the arena in states where both types resolve to the same structure.
// On failure the arena may hold partial bindings; the lowering engine
// collects the error and keeps going, which at worst cascades into further
// mismatches at later sites, never into unsoundness.
func Unify(arena *VarArena, a, b Type) *UnifyError {
	a = arena.Resolve(a)
	b = arena.Resolve(b)

	if av, ok := a.(TVar); ok {
		if bv, ok := b.(TVar); ok {
			arena.link(av.ID, bv.ID)
			return nil
		}
		return bindVar(arena, av, b)
	}
	if bv, ok := b.(TVar); ok {
		return bindVar(arena, bv, a)
	}

	switch a := a.(type) {
	case TCon:
		if bc, ok := b.(TCon); ok && a.Name == bc.Name {
			return nil
		}
		return errMismatch(a, b, "")

	case TApp:
		bApp, ok := b.(TApp)
		if !ok {
			return errMismatch(a, b, "")
		}
		if len(a.Args) != len(bApp.Args) {
			return errMismatch(a, b, "type argument count differs")
		}
		if err := Unify(arena, a.Constructor, bApp.Constructor); err != nil {
			return errMismatch(a, b, err.Error())
		}
		for i := range a.Args {
			if err := Unify(arena, a.Args[i], bApp.Args[i]); err != nil {
				return err
			}
		}
		return nil

	case TRecord:
		bRec, ok := b.(TRecord)
		if !ok {
			return errMismatch(a, b, "")
		}
		if len(a.Fields) != len(bRec.Fields) {
			return errMismatch(a, b, "record field count differs")
		}
		for k, av := range a.Fields {
			bv, ok := bRec.Fields[k]
			if !ok {
				return errMismatch(a, b, "missing field "+k)
			}
			if err := Unify(arena, av, bv); err != nil {
				return err
			}
		}
		return nil

	case TFunc:
		bFn, ok := b.(TFunc)
		if !ok {
			return errMismatch(a, b, "")
		}
		if len(a.Params) != len(bFn.Params) {
			return errMismatch(a, b, "parameter count differs")
		}
		if a.Effect != EffectAny && bFn.Effect != EffectAny && a.Effect != bFn.Effect {
			return errMismatch(a, b, "effect class differs")
		}
		for i := range a.Params {
			if err := Unify(arena, a.Params[i], bFn.Params[i]); err != nil {
				return err
			}
		}
		return Unify(arena, a.Return, bFn.Return)

	case TForall:
		bAll, ok := b.(TForall)
		if !ok {
			return errMismatch(a, b, "cannot unify quantified type with monotype")
		}
		if len(a.Vars) != len(bAll.Vars) {
			return errMismatch(a, b, "quantified variable count differs")
		}
		// Alpha-equivalence: rename both sides' bound variables to a
		// shared set of fresh rigids and compare bodies.
		subA := make(Subst, len(a.Vars))
		subB := make(Subst, len(bAll.Vars))
		for i := range a.Vars {
			rigid := TCon{Name: "$rigid_" + a.Vars[i].String()}
			subA[a.Vars[i].ID] = rigid
			subB[bAll.Vars[i].ID] = rigid
		}
		return Unify(arena, a.Type.Apply(subA), bAll.Type.Apply(subB))

	default:
		return errMismatch(a, b, "unknown type form")
	}
}

// bindVar binds tv to t after the occurs check. t is already resolved.
func bindVar(arena *VarArena, tv TVar, t Type) *UnifyError {
	if occurs(tv, t) {
		return errOccurs(tv, t)
	}
	arena.bind(tv.ID, t)
	return nil
}

// occurs reports whether tv appears free in t, preventing infinite types
// such as t1 = List<t1>.
func occurs(tv TVar, t Type) bool {
	for _, v := range t.FreeTypeVariables() {
		if v.ID == tv.ID {
			return true
		}
	}
	return false
}
