// Package effects classifies every typed node as pure or effectful and
// enforces the naming convention: a subroutine whose name does not end in
// '!' must not perform effects. The pass only annotates effect tags on the
// typed tree; it never rewrites its structure.
package effects

import (
	"fmt"

	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/typesystem"
)

type checker struct {
	errs []*diagnostics.DiagnosticError
	// defStack names the enclosing definitions, outermost first, for the
	// call chain attached to a violation.
	defStack []string
}

// Check annotates the minimal effect of every node bottom-up, then reports
// a violation for each pure-named subroutine whose body performs effects.
// The traversal is deterministic left-to-right, so diagnostics come out in
// source order.
func Check(unit *hir.Unit) []*diagnostics.DiagnosticError {
	c := &checker{}
	for _, n := range unit.Exprs {
		c.infer(n)
	}
	for _, n := range unit.Exprs {
		c.verify(n)
	}
	return c.errs
}

func join(a, b typesystem.Effect) typesystem.Effect {
	if a == typesystem.EffectProc || b == typesystem.EffectProc {
		return typesystem.EffectProc
	}
	return typesystem.EffectPure
}

// infer computes and tags the minimal effect of evaluating n.
func (c *checker) infer(n hir.Node) typesystem.Effect {
	if n == nil {
		return typesystem.EffectPure
	}

	eff := typesystem.EffectPure
	switch n := n.(type) {
	case *hir.Literal, *hir.VarRef:
		// reads are pure

	case *hir.FieldAccess:
		eff = c.infer(n.Target)

	case *hir.ArrayLit:
		for _, e := range n.Elems {
			eff = join(eff, c.infer(e))
		}

	case *hir.RecordLit:
		for _, f := range n.Fields {
			eff = join(eff, c.infer(f.Value))
		}

	case *hir.Block:
		for _, e := range n.Exprs {
			eff = join(eff, c.infer(e))
		}

	case *hir.Comprehension:
		eff = join(c.infer(n.Source), c.infer(n.Filter))
		eff = join(eff, c.infer(n.Body))

	case *hir.Lambda:
		// Creating a closure is pure; the body's effect becomes the
		// closure's signature effect and surfaces where it is invoked.
		body := c.infer(n.Body)
		if sig, ok := n.Type().(typesystem.TFunc); ok && sig.Effect == typesystem.EffectAny {
			sig.Effect = body
			n.SetType(sig)
		}

	case *hir.Def:
		body := c.infer(n.Body)
		if !n.IsSubroutine() {
			// A value binding's initializer runs at the binding site.
			eff = body
		}

	case *hir.Call:
		eff = c.callEffect(n)
	}

	n.SetEffect(eff)
	return eff
}

// callEffect joins the effects of evaluating the callee and arguments with
// the effect class of the call itself.
func (c *checker) callEffect(n *hir.Call) typesystem.Effect {
	eff := c.infer(n.Callee)
	for _, a := range n.Args {
		eff = join(eff, c.infer(a))
	}

	if n.Sig.Effect == typesystem.EffectProc {
		eff = typesystem.EffectProc
	}
	if sig, ok := n.Callee.Type().(typesystem.TFunc); ok && sig.Effect == typesystem.EffectProc {
		eff = typesystem.EffectProc
	}

	// The conditional builtin invokes one of its branch thunks, so their
	// signature effects count as the call's own.
	if ref, ok := n.Callee.(*hir.VarRef); ok && ref.Name == config.IfFuncName && ref.Kind == symbols.SubroutineSymbol {
		for _, a := range n.Args[1:] {
			if sig, ok := a.Type().(typesystem.TFunc); ok && sig.Effect == typesystem.EffectProc {
				eff = typesystem.EffectProc
			}
		}
	}
	return eff
}

// verify reports effectful bodies of pure-named subroutines. Effects in a
// procedure, or at the top level, are fine.
func (c *checker) verify(n hir.Node) {
	switch n := n.(type) {
	case *hir.Def:
		c.defStack = append(c.defStack, n.Name)
		if n.Declared == typesystem.EffectPure {
			if n.IsSubroutine() && n.Body.EffectTag() == typesystem.EffectProc {
				c.reportViolation(n, n.Body)
			} else if lambda, ok := n.Body.(*hir.Lambda); ok && lambda.Body.EffectTag() == typesystem.EffectProc {
				// A pure-named binding holding a closure promises a pure
				// closure.
				c.reportViolation(n, lambda.Body)
			}
		}
		c.verify(n.Body)
		c.defStack = c.defStack[:len(c.defStack)-1]

	case *hir.FieldAccess:
		c.verify(n.Target)
	case *hir.Call:
		c.verify(n.Callee)
		for _, a := range n.Args {
			c.verify(a)
		}
	case *hir.Lambda:
		c.verify(n.Body)
	case *hir.ArrayLit:
		for _, e := range n.Elems {
			c.verify(e)
		}
	case *hir.RecordLit:
		for _, f := range n.Fields {
			c.verify(f.Value)
		}
	case *hir.Comprehension:
		c.verify(n.Source)
		c.verify(n.Filter)
		c.verify(n.Body)
	case *hir.Block:
		for _, e := range n.Exprs {
			c.verify(e)
		}
	}
}

// reportViolation locates the first effectful call inside the pure body
// and attaches the call path from the definition down to it.
func (c *checker) reportViolation(def *hir.Def, body hir.Node) {
	call, path := findEffectfulCall(body, nil)
	if call == nil {
		// The body is effectful through a non-call construct; report at
		// the definition itself.
		err := diagnostics.NewError(diagnostics.ErrE001, def.GetToken(),
			fmt.Sprintf("pure definition %q performs side effects", def.Name))
		err.Chain = append([]string(nil), c.defStack...)
		c.errs = append(c.errs, err)
		return
	}

	err := diagnostics.NewError(diagnostics.ErrE001, call.GetToken(),
		fmt.Sprintf("pure definition %q calls the procedure %q", def.Name, call.CalleeName()))
	err.Chain = append(append([]string(nil), c.defStack...), path...)
	c.errs = append(c.errs, err)
}

// findEffectfulCall descends into the leftmost effectful subtree and
// returns the effectful call it bottoms out at, with the callee names
// passed through on the way down.
func findEffectfulCall(n hir.Node, path []string) (*hir.Call, []string) {
	if n == nil || n.EffectTag() != typesystem.EffectProc {
		return nil, nil
	}

	switch n := n.(type) {
	case *hir.Call:
		for _, a := range n.Args {
			if call, p := findEffectfulCall(a, path); call != nil {
				return call, p
			}
		}
		if call, p := findEffectfulCall(n.Callee, path); call != nil {
			return call, p
		}
		return n, append(path, n.CalleeName())

	case *hir.FieldAccess:
		return findEffectfulCall(n.Target, path)
	case *hir.Def:
		return findEffectfulCall(n.Body, append(path, n.Name))
	case *hir.ArrayLit:
		for _, e := range n.Elems {
			if call, p := findEffectfulCall(e, path); call != nil {
				return call, p
			}
		}
	case *hir.RecordLit:
		for _, f := range n.Fields {
			if call, p := findEffectfulCall(f.Value, path); call != nil {
				return call, p
			}
		}
	case *hir.Comprehension:
		for _, sub := range []hir.Node{n.Source, n.Filter, n.Body} {
			if call, p := findEffectfulCall(sub, path); call != nil {
				return call, p
			}
		}
	case *hir.Block:
		for _, e := range n.Exprs {
			if call, p := findEffectfulCall(e, path); call != nil {
				return call, p
			}
		}
	}
	return nil, nil
}
