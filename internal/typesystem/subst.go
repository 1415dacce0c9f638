package typesystem

// Subst is an immutable mapping from type-variable ID to Type. It is used
// for instantiation and generalization renaming; the accumulated inference
// substitution lives in the VarArena instead.
type Subst map[int]Type

// Compose combines two substitutions so that applying the result equals
// applying s1 first, then s2. Composition is confluent with respect to the
// arena: both orders agree up to variable renaming.
func (s1 Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	return out
}
