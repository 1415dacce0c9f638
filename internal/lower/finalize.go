package lower

import (
	"fmt"

	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/typesystem"
)

// resolveFields settles the field accesses whose record type was unknown
// when the access was walked.
func (s *Session) resolveFields() {
	for _, f := range s.fields {
		switch resolved := s.arena.Resolve(f.target).(type) {
		case typesystem.TRecord:
			ft, ok := resolved.Fields[f.node.Field]
			if !ok {
				s.addError(diagnostics.NewError(diagnostics.ErrT001, f.tok,
					fmt.Sprintf("record %s has no field %q", resolved, f.node.Field)))
				continue
			}
			s.unifyAt(f.result, ft, f.tok)

		case typesystem.TVar:
			s.addError(diagnostics.NewError(diagnostics.ErrT005, f.tok,
				fmt.Sprintf("cannot infer the record type of field %q", f.node.Field)))

		default:
			s.addError(diagnostics.NewError(diagnostics.ErrT001, f.tok,
				fmt.Sprintf("field access on non-record type %s", resolved)))
		}
	}
}

// applyDefaults binds every still-unbound variable that carries a literal
// default, so a lone numeric literal settles on Int. Strict mode keeps
// defaults off and lets finalize report the unresolved variable instead.
func (s *Session) applyDefaults() {
	if s.opts.Strict {
		return
	}
	for id := 0; id < s.arena.Len(); id++ {
		if s.arena.Root(id).ID != id || s.generalized[id] {
			continue
		}
		if s.arena.Binding(id) != nil {
			continue
		}
		def := s.arena.Default(id)
		if def == nil {
			continue
		}
		_ = typesystem.Unify(s.arena, typesystem.TVar{ID: id}, def)
	}
}

// resolveDispatches selects an implementation for each trait-method use.
// A receiver quantified by the enclosing definition dispatches through the
// unit's trait-method table at run time; a concrete receiver selects its
// single implementation statically.
func (s *Session) resolveDispatches() {
	for _, d := range s.dispatches {
		if d.receiver.ID < 0 {
			continue
		}

		root := s.arena.Root(d.receiver.ID).ID
		if s.generalized[root] {
			s.applyDispatch(d, hir.Dispatch{Kind: hir.DispatchTable, Trait: d.trait, Method: d.method, ImplIndex: -1})
			continue
		}

		resolved := s.arena.Resolve(typesystem.TVar{ID: root})
		if _, unbound := resolved.(typesystem.TVar); unbound {
			s.addError(diagnostics.NewError(diagnostics.ErrT005, d.tok,
				fmt.Sprintf("cannot infer the receiver type of %q", d.method)))
			continue
		}

		var matches []symbols.InstanceDef
		for _, impl := range s.ctx.Implementations(d.trait) {
			if typesEqual(impl.Target, resolved) {
				matches = append(matches, impl)
			}
		}
		switch len(matches) {
		case 1:
			s.applyDispatch(d, hir.Dispatch{Kind: hir.DispatchStatic, Trait: d.trait, Method: d.method, ImplIndex: matches[0].Index})
		case 0:
			s.addError(diagnostics.NewError(diagnostics.ErrT003, d.tok,
				fmt.Sprintf("type %s does not implement trait %s", resolved, d.trait)))
		default:
			s.addError(diagnostics.NewError(diagnostics.ErrT004, d.tok,
				fmt.Sprintf("ambiguous use of %q: %d implementations of %s match %s", d.method, len(matches), d.trait, resolved)))
		}
	}
}

func (s *Session) applyDispatch(d *pendingDispatch, dispatch hir.Dispatch) {
	if d.call != nil {
		d.call.Dispatch = dispatch
	}
	if d.ref != nil {
		d.ref.Dispatch = dispatch
	}
}

// typesEqual compares fully resolved types structurally. Rendering is
// canonical for resolved types, so string comparison suffices.
func typesEqual(a, b typesystem.Type) bool {
	return a.String() == b.String()
}

// checkConstraints verifies every trait constraint whose variable resolved
// to a concrete type. Constraints on quantified variables moved into their
// scheme and are re-checked per instantiation.
func (s *Session) checkConstraints() {
	for _, c := range s.constraints {
		root := s.arena.Root(c.tv.ID).ID
		if s.generalized[root] {
			continue
		}
		resolved := s.arena.Resolve(typesystem.TVar{ID: root})
		if _, unbound := resolved.(typesystem.TVar); unbound {
			continue
		}

		satisfied := false
		for _, impl := range s.ctx.Implementations(c.trait) {
			if typesEqual(impl.Target, resolved) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			s.addError(diagnostics.NewError(diagnostics.ErrT003, c.tok,
				fmt.Sprintf("type %s does not satisfy the %s constraint", resolved, c.trait)))
		}
	}
}

// finalize resolves every node's type against the arena so the typed tree
// becomes self-contained, and reports any type that still contains an
// unbound variable not closed over by a definition's quantifier.
func (s *Session) finalize(unit *hir.Unit) {
	for _, n := range unit.Exprs {
		s.eachNode(n, s.finalizeNode)
	}
}

func (s *Session) finalizeNode(n hir.Node) {
	resolved := s.arena.Resolve(n.Type())
	n.SetType(resolved)
	s.checkComplete(resolved, n)

	switch n := n.(type) {
	case *hir.Call:
		if sig, ok := s.arena.Resolve(n.Sig).(typesystem.TFunc); ok {
			n.Sig = sig
		}
	case *hir.Def:
		n.Scheme = s.arena.Resolve(n.Scheme)
		for _, p := range n.Params {
			p.Typ = s.arena.Resolve(p.Typ)
		}
	case *hir.Lambda:
		for _, p := range n.Params {
			p.Typ = s.arena.Resolve(p.Typ)
		}
	case *hir.Comprehension:
		n.Binding.Typ = s.arena.Resolve(n.Binding.Typ)
	}
}

// checkComplete reports an unbound, non-quantified variable left in a
// node's resolved type.
func (s *Session) checkComplete(t typesystem.Type, n hir.Node) {
	for _, tv := range t.FreeTypeVariables() {
		root := s.arena.Root(tv.ID).ID
		if s.generalized[root] {
			continue
		}
		s.addError(diagnostics.NewError(diagnostics.ErrT005, n.GetToken(),
			fmt.Sprintf("cannot fully infer this type: %s", t)))
		return
	}
}

// eachNode applies f to n and every node below it, pre-order.
func (s *Session) eachNode(n hir.Node, f func(hir.Node)) {
	if n == nil {
		return
	}
	f(n)
	switch n := n.(type) {
	case *hir.FieldAccess:
		s.eachNode(n.Target, f)
	case *hir.Call:
		s.eachNode(n.Callee, f)
		for _, a := range n.Args {
			s.eachNode(a, f)
		}
	case *hir.Def:
		s.eachNode(n.Body, f)
	case *hir.Lambda:
		s.eachNode(n.Body, f)
	case *hir.ArrayLit:
		for _, e := range n.Elems {
			s.eachNode(e, f)
		}
	case *hir.RecordLit:
		for _, field := range n.Fields {
			s.eachNode(field.Value, f)
		}
	case *hir.Comprehension:
		s.eachNode(n.Source, f)
		s.eachNode(n.Filter, f)
		s.eachNode(n.Body, f)
	case *hir.Block:
		for _, e := range n.Exprs {
			s.eachNode(e, f)
		}
	}
}
