package lower

import (
	"fmt"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

// lowerExpr builds the typed node for one expression, emitting unification
// constraints as it goes.
func (s *Session) lowerExpr(e ast.Expression) hir.Node {
	switch n := e.(type) {
	case *ast.IntLiteral:
		// Integer literals are numeric-polymorphic with an Int default:
		// add(1, 2.5) types the literal as Float, a lone 1 settles on Int
		// at finalize.
		tv := s.arena.FreshWithDefault(typesystem.IntType, typesystem.Constraint{Trait: config.NumTraitName})
		s.constraints = append(s.constraints, pendingConstraint{tv: tv, trait: config.NumTraitName, tok: n.Token})
		lit := &hir.Literal{Kind: hir.LitInt, Int: n.Value}
		s.seed(lit, n.Token, tv)
		return lit

	case *ast.FloatLiteral:
		lit := &hir.Literal{Kind: hir.LitFloat, Float: n.Value}
		s.seed(lit, n.Token, typesystem.FloatType)
		return lit

	case *ast.StringLiteral:
		lit := &hir.Literal{Kind: hir.LitString, Str: n.Value}
		s.seed(lit, n.Token, typesystem.StringType)
		return lit

	case *ast.BoolLiteral:
		lit := &hir.Literal{Kind: hir.LitBool, Bool: n.Value}
		s.seed(lit, n.Token, typesystem.BoolType)
		return lit

	case *ast.UnitLiteral:
		lit := &hir.Literal{Kind: hir.LitUnit}
		s.seed(lit, n.Token, typesystem.UnitType)
		return lit

	case *ast.Identifier:
		return s.lowerIdent(n)

	case *ast.Accessor:
		return s.lowerAccessor(n)

	case *ast.CallExpression:
		return s.lowerCall(n)

	case *ast.Definition:
		return s.lowerDef(n)

	case *ast.Lambda:
		return s.lowerLambda(n)

	case *ast.ArrayLiteral:
		return s.lowerArray(n)

	case *ast.RecordLiteral:
		return s.lowerRecord(n)

	case *ast.Comprehension:
		return s.lowerComprehension(n)

	case *ast.Block:
		return s.lowerBlock(n)

	default:
		s.addError(diagnostics.NewError(diagnostics.ErrT001, e.GetToken(),
			fmt.Sprintf("unexpected node %T in desugared tree", e)))
		return s.poison(e.GetToken())
	}
}

// seed fills a node's shared fields.
func (s *Session) seed(n hir.Node, tok token.Token, t typesystem.Type) {
	n.SetToken(tok)
	n.SetType(t)
	n.SetEffect(typesystem.EffectPure)
}

// poison produces a placeholder node after an unrecoverable local error so
// lowering can keep collecting diagnostics.
func (s *Session) poison(tok token.Token) hir.Node {
	lit := &hir.Literal{Kind: hir.LitUnit}
	s.seed(lit, tok, s.arena.Fresh())
	return lit
}

func (s *Session) lowerIdent(n *ast.Identifier) *hir.VarRef {
	sym, scopeIdx, ok := s.ctx.LookupWithScope(n.Value)
	if !ok {
		s.addError(diagnostics.NewError(diagnostics.ErrT007, n.Token,
			fmt.Sprintf("unknown name %q", n.Value)))
		ref := &hir.VarRef{Name: n.Value, Kind: symbols.VariableSymbol}
		s.seed(ref, n.Token, s.arena.Fresh())
		return ref
	}

	s.recordCapture(sym, scopeIdx, n.Token)

	t := sym.Type
	ref := &hir.VarRef{Name: n.Value, Kind: sym.Kind}

	if sym.Kind == symbols.TraitMethodSymbol {
		sig, receiver := s.instantiateTraitMethod(sym, n.Token)
		s.seed(ref, n.Token, sig)
		s.dispatches = append(s.dispatches, &pendingDispatch{
			ref:      ref,
			trait:    s.traitOf(n.Value),
			method:   n.Value,
			receiver: receiver,
			tok:      n.Token,
		})
		return ref
	}

	s.seed(ref, n.Token, s.instantiate(t, n.Token))
	return ref
}

func (s *Session) traitOf(method string) string {
	trait, _ := s.ctx.TraitOfMethod(method)
	return trait
}

// instantiate replaces a quantified type's bound variables with fresh ones
// for this use site, carrying the constraints over.
func (s *Session) instantiate(t typesystem.Type, tok token.Token) typesystem.Type {
	forall, ok := t.(typesystem.TForall)
	if !ok {
		return t
	}

	sub := make(typesystem.Subst, len(forall.Vars))
	for _, v := range forall.Vars {
		cs := forall.Constraints[v.ID]
		fresh := s.arena.Fresh(cs...)
		sub[v.ID] = fresh
		for _, c := range cs {
			s.constraints = append(s.constraints, pendingConstraint{tv: fresh, trait: c.Trait, tok: tok})
		}
	}
	return forall.Type.Apply(sub)
}

// instantiateTraitMethod instantiates a trait method scheme and reports
// which fresh variable is the dispatch receiver (the constrained one).
func (s *Session) instantiateTraitMethod(sym symbols.Symbol, tok token.Token) (typesystem.Type, typesystem.TVar) {
	forall, ok := sym.Type.(typesystem.TForall)
	if !ok {
		return sym.Type, typesystem.TVar{ID: -1}
	}

	receiver := typesystem.TVar{ID: -1}
	sub := make(typesystem.Subst, len(forall.Vars))
	for _, v := range forall.Vars {
		cs := forall.Constraints[v.ID]
		fresh := s.arena.Fresh(cs...)
		sub[v.ID] = fresh
		if len(cs) > 0 && receiver.ID < 0 {
			receiver = fresh
		}
	}
	return forall.Type.Apply(sub), receiver
}

// recordCapture notes a reference to an outer local inside enclosing
// subroutine frames. The binding is captured by every frame between the
// use and the declaration.
func (s *Session) recordCapture(sym symbols.Symbol, scopeIdx int, tok token.Token) {
	if sym.Kind != symbols.VariableSymbol {
		return
	}
	kind := s.ctx.ScopeKind(scopeIdx)
	if kind == symbols.ScopeGlobal || kind == symbols.ScopePrelude {
		return
	}

	for _, frame := range s.frames {
		if scopeIdx >= frame.entryScope {
			continue
		}
		if frame.seen[sym.Name] {
			continue
		}
		frame.seen[sym.Name] = true
		frame.captures = append(frame.captures, hir.Capture{
			Name:    sym.Name,
			Tok:     tok,
			ByValue: frame.moveCapture,
		})
	}
}

func (s *Session) lowerAccessor(n *ast.Accessor) hir.Node {
	target := s.lowerExpr(n.Target)
	result := s.arena.Fresh()

	acc := &hir.FieldAccess{Target: target, Field: n.Field}
	s.seed(acc, n.Token, result)

	// If the record type is already known, check eagerly; otherwise defer
	// to the finalize step when the target has resolved.
	resolved := s.arena.Resolve(target.Type())
	if rec, ok := resolved.(typesystem.TRecord); ok {
		ft, ok := rec.Fields[n.Field]
		if !ok {
			s.addError(diagnostics.NewError(diagnostics.ErrT001, n.Token,
				fmt.Sprintf("record %s has no field %q", rec, n.Field)))
			return acc
		}
		s.unifyAt(result, ft, n.Token)
		return acc
	}

	s.fields = append(s.fields, pendingField{node: acc, target: target.Type(), result: result, tok: n.Token})
	return acc
}

func (s *Session) lowerCall(n *ast.CallExpression) hir.Node {
	call := &hir.Call{Dispatch: hir.Dispatch{Kind: hir.DispatchDirect, ImplIndex: -1}}

	var callee hir.Node
	switch c := n.Callee.(type) {
	case *ast.Identifier:
		sym, scopeIdx, ok := s.ctx.LookupWithScope(c.Value)
		if !ok {
			s.addError(diagnostics.NewError(diagnostics.ErrT007, c.Token,
				fmt.Sprintf("unknown name %q", c.Value)))
			callee = s.poison(c.Token)
			break
		}
		s.recordCapture(sym, scopeIdx, c.Token)

		ref := &hir.VarRef{Name: c.Value, Kind: sym.Kind}
		if sym.Kind == symbols.TraitMethodSymbol {
			sig, receiver := s.instantiateTraitMethod(sym, c.Token)
			s.seed(ref, c.Token, sig)
			trait := s.traitOf(c.Value)
			call.Dispatch = hir.Dispatch{Kind: hir.DispatchTable, Trait: trait, Method: c.Value, ImplIndex: -1}
			s.dispatches = append(s.dispatches, &pendingDispatch{
				call:     call,
				trait:    trait,
				method:   c.Value,
				receiver: receiver,
				tok:      n.Token,
			})
		} else {
			s.seed(ref, c.Token, s.instantiate(sym.Type, c.Token))
		}
		callee = ref

	default:
		callee = s.lowerExpr(n.Callee)
	}

	// Coerce the callee type to a signature.
	var sig typesystem.TFunc
	switch ct := s.arena.Resolve(callee.Type()).(type) {
	case typesystem.TFunc:
		sig = ct
	default:
		params := make([]typesystem.Type, len(n.Args))
		for i := range params {
			params[i] = s.arena.Fresh()
		}
		sig = typesystem.TFunc{Params: params, Return: s.arena.Fresh(), Effect: typesystem.EffectAny}
		s.unifyAt(callee.Type(), sig, n.Token)
	}

	if len(sig.Params) != len(n.Args) {
		s.addError(diagnostics.NewError(diagnostics.ErrT001, n.Token,
			fmt.Sprintf("call expects %d arguments, got %d", len(sig.Params), len(n.Args))))
	}

	args := make([]hir.Node, len(n.Args))
	for i, argExpr := range n.Args {
		arg := s.lowerExpr(argExpr)
		args[i] = arg
		if i < len(sig.Params) {
			s.unifyAt(sig.Params[i], arg.Type(), argExpr.GetToken())
		}
	}

	call.Callee = callee
	call.Args = args
	call.Sig = sig
	s.seed(call, n.Token, sig.Return)
	return call
}

func (s *Session) lowerArray(n *ast.ArrayLiteral) hir.Node {
	elem := s.arena.Fresh()

	arr := &hir.ArrayLit{}
	for _, e := range n.Elements {
		node := s.lowerExpr(e)
		s.unifyAt(elem, node.Type(), e.GetToken())
		arr.Elems = append(arr.Elems, node)
	}
	s.seed(arr, n.Token, typesystem.ListOf(elem))
	return arr
}

func (s *Session) lowerRecord(n *ast.RecordLiteral) hir.Node {
	rec := &hir.RecordLit{}
	fields := make(map[string]typesystem.Type, len(n.Fields))

	for _, f := range n.Fields {
		if _, dup := fields[f.Name]; dup {
			s.addError(diagnostics.NewError(diagnostics.ErrT006, f.Token,
				fmt.Sprintf("duplicate field %q in record literal", f.Name)))
			continue
		}
		value := s.lowerExpr(f.Value)
		fields[f.Name] = value.Type()
		rec.Fields = append(rec.Fields, hir.RecordEntry{Name: f.Name, Value: value})
	}

	s.seed(rec, n.Token, typesystem.TRecord{Fields: fields})
	return rec
}

func (s *Session) lowerComprehension(n *ast.Comprehension) hir.Node {
	source := s.lowerExpr(n.Source)
	elem := s.arena.Fresh()
	s.unifyAt(typesystem.ListOf(elem), source.Type(), n.Source.GetToken())

	s.ctx.EnterScope(symbols.ScopeBlock)
	if err := s.ctx.Declare(n.Binding.Name, elem, symbols.VariableSymbol, n.Binding.Token); err != nil {
		s.addError(diagnostics.NewError(diagnostics.ErrT006, n.Binding.Token, err.Error()))
	}

	var filter hir.Node
	if n.Filter != nil {
		filter = s.lowerExpr(n.Filter)
		s.unifyAt(typesystem.BoolType, filter.Type(), n.Filter.GetToken())
	}
	body := s.lowerExpr(n.Body)

	s.warnUnusedLocals()
	s.ctx.ExitScope()

	comp := &hir.Comprehension{
		Binding: &hir.Param{Tok: n.Binding.Token, Name: n.Binding.Name, Typ: elem},
		Source:  source,
		Filter:  filter,
		Body:    body,
	}
	s.seed(comp, n.Token, typesystem.ListOf(body.Type()))
	return comp
}

func (s *Session) lowerBlock(n *ast.Block) hir.Node {
	s.ctx.EnterScope(symbols.ScopeBlock)

	block := &hir.Block{}
	var last hir.Node
	for _, e := range n.Exprs {
		last = s.lowerExpr(e)
		block.Exprs = append(block.Exprs, last)
	}

	s.warnUnusedLocals()
	s.ctx.ExitScope()

	var t typesystem.Type = typesystem.UnitType
	if last != nil {
		t = last.Type()
	}
	s.seed(block, n.Token, t)
	return block
}

// warnUnusedLocals reports unused bindings of the scope about to exit.
func (s *Session) warnUnusedLocals() {
	for _, sym := range s.ctx.ScopeSymbols() {
		if sym.Kind == symbols.VariableSymbol && !sym.Used {
			s.addWarning(diagnostics.WarnW001, sym.Token, fmt.Sprintf("binding %q is never used", sym.Name))
		}
	}
}
