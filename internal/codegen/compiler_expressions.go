package codegen

import (
	"fmt"

	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
)

// compileNode emits code that evaluates n, leaving exactly one value on
// the stack.
func (g *Generator) compileNode(n hir.Node) {
	switch n := n.(type) {
	case *hir.Literal:
		g.compileLiteral(n)
	case *hir.VarRef:
		g.compileVarRef(n)
	case *hir.FieldAccess:
		g.compileNode(n.Target)
		tok := n.GetToken()
		g.emitOp(OP_GET_FIELD, tok)
		g.emitU16(g.current.obj.AddName(n.Field), tok)
	case *hir.Call:
		g.compileCall(n)
	case *hir.Def:
		g.compileLocalDef(n)
	case *hir.Lambda:
		g.compileFunction("<lambda>", n.Params, n.Body, n.GetToken())
	case *hir.ArrayLit:
		g.compileArray(n)
	case *hir.RecordLit:
		g.compileRecord(n)
	case *hir.Comprehension:
		g.compileComprehension(n)
	case *hir.Block:
		g.compileBlock(n)
	default:
		g.internal(diagnostics.ErrG001, n.GetToken(), fmt.Sprintf("cannot emit node %T", n))
		g.emitOp(OP_UNIT, n.GetToken())
		g.stackInc(1, n.GetToken())
	}
}

func (g *Generator) compileLiteral(n *hir.Literal) {
	tok := n.GetToken()
	switch n.Kind {
	case hir.LitInt:
		g.emitOp(OP_CONST, tok)
		g.emitU16(g.current.obj.AddConstant(Constant{Kind: ConstInt, Int: n.Int}), tok)
	case hir.LitFloat:
		g.emitOp(OP_CONST, tok)
		g.emitU16(g.current.obj.AddConstant(Constant{Kind: ConstFloat, Float: n.Float}), tok)
	case hir.LitString:
		g.emitOp(OP_CONST, tok)
		g.emitU16(g.current.obj.AddConstant(Constant{Kind: ConstString, Str: n.Str}), tok)
	case hir.LitBool:
		if n.Bool {
			g.emitOp(OP_TRUE, tok)
		} else {
			g.emitOp(OP_FALSE, tok)
		}
	case hir.LitUnit:
		g.emitOp(OP_UNIT, tok)
	}
	g.stackInc(1, tok)
}

func (g *Generator) compileVarRef(n *hir.VarRef) {
	tok := n.GetToken()
	fc := g.current

	// A bare trait-method reference with a resolved implementation pushes
	// that implementation's method as a value. Table-dispatched references
	// keep the global path below and resolve against the trait table at
	// run time by method name.
	if n.Dispatch.Kind == hir.DispatchStatic {
		g.emitOp(OP_METHOD_VALUE, tok)
		g.emitU16(n.Dispatch.ImplIndex, tok)
		g.emitU16(fc.obj.AddName(n.Dispatch.Method), tok)
		g.stackInc(1, tok)
		return
	}

	if slot := resolveLocal(fc, n.Name); slot >= 0 {
		g.emitOp(OP_GET_LOCAL, tok)
		g.emitByte(byte(slot), tok)
		g.stackInc(1, tok)
		return
	}
	if idx := g.resolveUpvalue(fc, n.Name); idx >= 0 {
		g.emitOp(OP_GET_UPVALUE, tok)
		g.emitByte(byte(idx), tok)
		g.stackInc(1, tok)
		return
	}
	if g.globals[n.Name] || preludeGlobal(n) {
		g.emitOp(OP_GET_GLOBAL, tok)
		g.emitU16(fc.obj.AddName(n.Name), tok)
		g.stackInc(1, tok)
		return
	}

	g.internal(diagnostics.ErrG001, tok, fmt.Sprintf("name %q survived to emission unresolved", n.Name))
	g.emitOp(OP_UNIT, tok)
	g.stackInc(1, tok)
}

// preludeGlobal reports whether a reference that resolved to no frame slot
// or user global names a prelude binding, which the runtime resolves.
func preludeGlobal(n *hir.VarRef) bool {
	return n.Kind == symbols.SubroutineSymbol || n.Kind == symbols.TraitMethodSymbol
}

func (g *Generator) compileCall(n *hir.Call) {
	tok := n.GetToken()
	argc := len(n.Args)

	switch n.Dispatch.Kind {
	case hir.DispatchStatic:
		for _, a := range n.Args {
			g.compileNode(a)
		}
		g.emitOp(OP_CALL_STATIC, tok)
		g.emitU16(n.Dispatch.ImplIndex, tok)
		g.emitU16(g.current.obj.AddName(n.Dispatch.Method), tok)
		g.emitByte(byte(argc), tok)
		g.stackDec(argc, tok)
		g.stackInc(1, tok)
		return

	case hir.DispatchTable:
		for _, a := range n.Args {
			g.compileNode(a)
		}
		g.emitOp(OP_CALL_TRAIT, tok)
		g.emitU16(g.current.obj.AddName(n.Dispatch.Trait), tok)
		g.emitU16(g.current.obj.AddName(n.Dispatch.Method), tok)
		g.emitByte(byte(argc), tok)
		g.stackDec(argc, tok)
		g.stackInc(1, tok)
		return
	}

	if ref, ok := n.Callee.(*hir.VarRef); ok && g.isBuiltinCall(ref) {
		g.compileBuiltin(ref.Name, n)
		return
	}

	g.compileNode(n.Callee)
	for _, a := range n.Args {
		g.compileNode(a)
	}
	g.emitOp(OP_CALL, tok)
	g.emitByte(byte(argc), tok)
	g.stackDec(argc+1, tok)
	g.stackInc(1, tok)
}

// isBuiltinCall reports whether the callee is one of the primitives with a
// dedicated opcode, and is not shadowed by a user binding.
func (g *Generator) isBuiltinCall(ref *hir.VarRef) bool {
	switch ref.Name {
	case config.IfFuncName, config.MoveFuncName, config.IdFuncName, config.DiscardFuncName,
		config.LenFuncName, config.PrintFuncName, config.ReadFuncName, config.MutateFuncName:
	default:
		return false
	}
	if resolveLocal(g.current, ref.Name) >= 0 {
		return false
	}
	if g.resolveUpvalue(g.current, ref.Name) >= 0 {
		return false
	}
	return !g.globals[ref.Name]
}

func (g *Generator) compileBuiltin(name string, n *hir.Call) {
	tok := n.GetToken()
	switch name {
	case config.IfFuncName:
		g.compileIf(n)

	case config.MoveFuncName, config.IdFuncName:
		// Ownership transfer and identity are compile-time notions; at
		// run time the value passes through untouched.
		g.compileNode(n.Args[0])

	case config.DiscardFuncName:
		g.compileNode(n.Args[0])
		g.emitOp(OP_POP, tok)
		g.stackDec(1, tok)
		g.emitOp(OP_UNIT, tok)
		g.stackInc(1, tok)

	case config.LenFuncName:
		g.compileNode(n.Args[0])
		g.emitOp(OP_LEN, tok)

	case config.PrintFuncName:
		g.compileNode(n.Args[0])
		g.emitOp(OP_PRINT, tok)

	case config.ReadFuncName:
		g.emitOp(OP_READ, tok)
		g.stackInc(1, tok)

	case config.MutateFuncName:
		for _, a := range n.Args {
			g.compileNode(a)
		}
		g.emitOp(OP_UPDATE, tok)
		g.stackDec(len(n.Args), tok)
		g.stackInc(1, tok)
	}
}

// compileIf lowers the conditional builtin to jumps: the branch thunks are
// only entered on the taken side. The stack counter rewinds between the
// branches so the bound reflects one branch, not both.
func (g *Generator) compileIf(n *hir.Call) {
	tok := n.GetToken()
	if len(n.Args) != 3 {
		g.internal(diagnostics.ErrG001, tok, "conditional call with wrong arity survived to emission")
		g.emitOp(OP_UNIT, tok)
		g.stackInc(1, tok)
		return
	}

	g.compileNode(n.Args[0])
	elseJump := g.emitJump(OP_JUMP_IF_FALSE, tok)
	g.stackDec(1, tok)

	base := g.current.cur
	g.compileNode(n.Args[1])
	g.emitOp(OP_CALL, tok)
	g.emitByte(0, tok)
	endJump := g.emitJump(OP_JUMP, tok)

	g.patchJump(elseJump, tok)
	afterThen := g.current.cur
	g.current.cur = base
	g.compileNode(n.Args[2])
	g.emitOp(OP_CALL, tok)
	g.emitByte(0, tok)
	g.patchJump(endJump, tok)
	g.current.cur = afterThen
}

func (g *Generator) compileArray(n *hir.ArrayLit) {
	tok := n.GetToken()
	for _, e := range n.Elems {
		g.compileNode(e)
	}
	g.emitOp(OP_MAKE_LIST, tok)
	g.emitU16(len(n.Elems), tok)
	g.stackDec(len(n.Elems), tok)
	g.stackInc(1, tok)
}

// compileRecord pushes (name constant, value) pairs in source order, which
// both fixes the runtime field layout and keeps emission deterministic.
func (g *Generator) compileRecord(n *hir.RecordLit) {
	tok := n.GetToken()
	for _, f := range n.Fields {
		g.emitOp(OP_CONST, tok)
		g.emitU16(g.current.obj.AddConstant(Constant{Kind: ConstString, Str: f.Name}), tok)
		g.stackInc(1, tok)
		g.compileNode(f.Value)
	}
	g.emitOp(OP_MAKE_RECORD, tok)
	g.emitU16(len(n.Fields), tok)
	g.stackDec(2*len(n.Fields), tok)
	g.stackInc(1, tok)
}

// compileComprehension compiles the filter and body as arity-1 nested
// objects over the element binding; free names inside them capture through
// the regular upvalue path.
func (g *Generator) compileComprehension(n *hir.Comprehension) {
	tok := n.GetToken()
	g.compileNode(n.Source)

	hasFilter := byte(0)
	pops := 2
	if n.Filter != nil {
		hasFilter = 1
		pops = 3
		g.compileFunction("<filter>", []*hir.Param{n.Binding}, n.Filter, tok)
	}
	g.compileFunction("<body>", []*hir.Param{n.Binding}, n.Body, tok)

	g.emitOp(OP_COMPREHEND, tok)
	g.emitByte(hasFilter, tok)
	g.stackDec(pops, tok)
	g.stackInc(1, tok)
}

// compileBlock evaluates the expressions in order, discarding every value
// but the last, then closes the scope's locals out from under the result.
func (g *Generator) compileBlock(n *hir.Block) {
	tok := n.GetToken()
	fc := g.current
	fc.scopeDepth++

	if len(n.Exprs) == 0 {
		fc.scopeDepth--
		g.emitOp(OP_UNIT, tok)
		g.stackInc(1, tok)
		return
	}

	for i, e := range n.Exprs {
		g.compileNode(e)
		if i < len(n.Exprs)-1 {
			g.emitOp(OP_POP, e.GetToken())
			g.stackDec(1, e.GetToken())
		}
	}

	count := 0
	for i := len(fc.locals) - 1; i >= 0 && fc.locals[i].depth == fc.scopeDepth; i-- {
		count++
	}
	if count > 0 {
		g.emitOp(OP_CLOSE_SCOPE, tok)
		g.emitByte(byte(count), tok)
		g.stackDec(count, tok)
		fc.locals = fc.locals[:len(fc.locals)-count]
	}
	fc.scopeDepth--
}
