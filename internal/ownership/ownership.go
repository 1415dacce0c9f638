// Package ownership enforces the linear discipline on the typed tree:
// a binding consumed by an owning position cannot be used again, and a
// binding cannot be consumed while a borrow of it is live. Like the effect
// pass it only annotates ownership states; the tree structure is shared
// with the code generator untouched.
package ownership

import (
	"fmt"

	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/typesystem"
)

// bindingState is the mutable linear state of one binding. It lives in the
// scope that declared the binding but is mutated through inner scopes,
// so a move inside a block still poisons the outer binding.
type bindingState struct {
	name string
	st   hir.OwnershipState
}

// borrowRec is one live borrow, released when the scope at depth exits.
type borrowRec struct {
	b     *bindingState
	depth int
}

type checker struct {
	scopes  []map[string]*bindingState
	borrows []borrowRec
	errs    []*diagnostics.DiagnosticError
}

// Check walks the unit in evaluation order (left to right, depth first)
// and reports every use of a moved binding and every move of a borrowed
// one. Traversal order is the evaluation order, so the diagnostics are
// deterministic.
func Check(unit *hir.Unit) []*diagnostics.DiagnosticError {
	c := &checker{}
	c.pushScope()
	for _, n := range unit.Exprs {
		c.walk(n)
	}
	c.popScope()
	return c.errs
}

func (c *checker) pushScope() {
	c.scopes = append(c.scopes, make(map[string]*bindingState))
}

// popScope drops the scope's bindings and releases the borrows taken out
// during it. A binding moved inside the scope stays moved; a borrow taken
// inside it ends here, so a later move of the lender is fine.
func (c *checker) popScope() {
	depth := len(c.scopes) - 1
	kept := c.borrows[:0]
	for _, rec := range c.borrows {
		if rec.depth >= depth {
			rec.b.st.Borrows--
			continue
		}
		kept = append(kept, rec)
	}
	c.borrows = kept
	c.scopes = c.scopes[:depth]
}

func (c *checker) declare(name string) *bindingState {
	b := &bindingState{name: name}
	c.scopes[len(c.scopes)-1][name] = b
	return b
}

func (c *checker) lookup(name string) *bindingState {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b
		}
	}
	return nil
}

// use checks a non-consuming read.
func (c *checker) use(b *bindingState, ref *hir.VarRef) {
	if b == nil {
		return
	}
	if b.st.Moved {
		err := diagnostics.NewError(diagnostics.ErrO001, ref.GetToken(),
			fmt.Sprintf("%q used after being moved", b.name))
		err.Related = b.st.MovedAt
		c.errs = append(c.errs, err)
	}
}

// consume moves the binding out. The passed token becomes the move site
// reported by later uses.
func (c *checker) consume(b *bindingState, n hir.Node) {
	if b == nil {
		return
	}
	if b.st.Moved {
		err := diagnostics.NewError(diagnostics.ErrO001, n.GetToken(),
			fmt.Sprintf("%q moved after already being moved", b.name))
		err.Related = b.st.MovedAt
		c.errs = append(c.errs, err)
		return
	}
	if b.st.Borrows > 0 {
		c.errs = append(c.errs, diagnostics.NewError(diagnostics.ErrO002, n.GetToken(),
			fmt.Sprintf("cannot move %q while it is borrowed", b.name)))
		return
	}
	b.st.Moved = true
	b.st.MovedAt = n.GetToken()
}

// borrow lends the binding out until the current scope exits.
func (c *checker) borrow(b *bindingState, n hir.Node) {
	if b == nil {
		return
	}
	if b.st.Moved {
		err := diagnostics.NewError(diagnostics.ErrO001, n.GetToken(),
			fmt.Sprintf("%q borrowed after being moved", b.name))
		err.Related = b.st.MovedAt
		c.errs = append(c.errs, err)
		return
	}
	b.st.Borrows++
	c.borrows = append(c.borrows, borrowRec{b: b, depth: len(c.scopes) - 1})
}

func (c *checker) walk(n hir.Node) {
	switch n := n.(type) {
	case *hir.Literal:

	case *hir.VarRef:
		c.use(c.lookup(n.Name), n)

	case *hir.FieldAccess:
		c.walk(n.Target)

	case *hir.Call:
		c.walkCall(n)

	case *hir.Def:
		c.walkDef(n)

	case *hir.Lambda:
		c.captureAll(n.Captures, n)
		c.pushScope()
		// Inside the body a captured name refers to the closure's own
		// environment, not the lender.
		for _, cap := range n.Captures {
			c.declare(cap.Name)
		}
		for _, p := range n.Params {
			c.declare(p.Name)
		}
		c.walk(n.Body)
		c.snapshotParams(n.Params)
		c.popScope()

	case *hir.ArrayLit:
		for _, e := range n.Elems {
			c.walk(e)
		}

	case *hir.RecordLit:
		for _, f := range n.Fields {
			c.walk(f.Value)
		}

	case *hir.Comprehension:
		c.walk(n.Source)
		c.pushScope()
		c.declare(n.Binding.Name)
		c.walk(n.Filter)
		c.walk(n.Body)
		if b := c.lookup(n.Binding.Name); b != nil {
			n.Own = b.st
		}
		c.popScope()

	case *hir.Block:
		c.pushScope()
		for _, e := range n.Exprs {
			c.walk(e)
		}
		c.popScope()
	}
}

// walkCall evaluates arguments left to right. A by-borrow argument naming
// a binding lends it for the duration of the call; a by-own argument
// consumes it, and consuming a binding lent earlier in the same argument
// list is a borrow conflict.
func (c *checker) walkCall(n *hir.Call) {
	c.walk(n.Callee)

	var transient []*bindingState
	for i, a := range n.Args {
		ref, isRef := a.(*hir.VarRef)
		if !isRef {
			c.walk(a)
			continue
		}

		b := c.lookup(ref.Name)
		if b == nil {
			continue
		}
		switch n.Sig.Mode(i) {
		case typesystem.ByOwn:
			c.consume(b, a)
		default:
			c.use(b, ref)
			b.st.Borrows++
			transient = append(transient, b)
		}
	}
	for _, b := range transient {
		b.st.Borrows--
	}
}

func (c *checker) walkDef(n *hir.Def) {
	if !n.IsSubroutine() {
		c.walk(n.Body)
		b := c.declare(n.Name)
		n.Own = b.st
		return
	}

	// The subroutine value itself is a binding too; recursion may read it.
	c.declare(n.Name)

	c.captureAll(n.Captures, n)
	c.pushScope()
	for _, cap := range n.Captures {
		c.declare(cap.Name)
	}
	for _, p := range n.Params {
		c.declare(p.Name)
	}
	c.walk(n.Body)
	c.snapshotParams(n.Params)
	c.popScope()
}

// captureAll applies a closure's capture list at its creation site:
// by-value captures move the bindings into the closure's environment,
// by-reference captures borrow them for the enclosing scope's lifetime.
func (c *checker) captureAll(captures []hir.Capture, n hir.Node) {
	for _, cap := range captures {
		b := c.lookup(cap.Name)
		if b == nil {
			continue
		}
		if cap.ByValue {
			c.consume(b, n)
		} else {
			c.borrow(b, n)
		}
	}
}

// snapshotParams records the final linear state of each parameter so later
// passes and tests can observe which parameters were consumed.
func (c *checker) snapshotParams(params []*hir.Param) {
	for _, p := range params {
		if b := c.lookup(p.Name); b != nil {
			p.Own = b.st
		}
	}
}
