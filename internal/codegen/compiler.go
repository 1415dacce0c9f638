package codegen

import (
	"fmt"

	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
)

// local is a frame slot occupied by a named binding.
type local struct {
	name  string
	depth int
}

// upvalue is one captured binding: a slot of the directly enclosing frame,
// or an upvalue of it.
type upvalue struct {
	index   uint8
	isLocal bool
}

// funcCompiler is the per-frame emission state. Frames nest through
// enclosing, mirroring the closure nesting of the source.
type funcCompiler struct {
	obj        *CodeObject
	enclosing  *funcCompiler
	locals     []local
	scopeDepth int
	upvalues   []upvalue

	// cur tracks the frame's stack occupancy at the current emission
	// point; max is the recorded high-water mark that becomes MaxStack.
	cur int
	max int
}

// Generator compiles one typed unit into a tree of code objects.
type Generator struct {
	opts    config.Options
	file    string
	globals map[string]bool
	current *funcCompiler
	errs    []*diagnostics.DiagnosticError
}

// Generate compiles the unit's top-level code and everything nested in it.
// The diagnostics it can produce are internal invariant failures: earlier
// passes guarantee a well-typed tree, so any G-coded error here is a
// compiler defect, not a user mistake.
func Generate(unit *hir.Unit, ctx *symbols.Context, opts config.Options) (*CodeObject, []*diagnostics.DiagnosticError) {
	g := &Generator{
		opts:    opts,
		file:    unit.File,
		globals: make(map[string]bool),
	}

	root := NewCodeObject("<unit>", unit.File)
	g.current = &funcCompiler{obj: root}

	for _, impl := range ctx.AllImplementations() {
		root.Traits = append(root.Traits, TraitEntry{
			Trait:  impl.Trait,
			Target: impl.Target.String(),
			Index:  impl.Index,
		})
	}

	for _, n := range unit.Exprs {
		if def, ok := n.(*hir.Def); ok {
			g.compileGlobalDef(def)
			continue
		}
		g.compileNode(n)
		g.emitOp(OP_POP, n.GetToken())
		g.stackDec(1, n.GetToken())
	}
	g.emitOp(OP_HALT, token.Token{Line: lastLine(unit)})

	g.finishFrame(root, token.Token{Line: lastLine(unit)})
	return root, g.errs
}

func lastLine(unit *hir.Unit) int {
	if len(unit.Exprs) == 0 {
		return 0
	}
	return unit.Exprs[len(unit.Exprs)-1].GetToken().Line
}

// finishFrame seals a frame's object: records the stack bound and checks
// it against the configured limit.
func (g *Generator) finishFrame(obj *CodeObject, tok token.Token) {
	fc := g.current
	obj.MaxStack = fc.max
	obj.UpvalueCount = len(fc.upvalues)
	if fc.max > g.opts.MaxStackDepth {
		g.internal(diagnostics.ErrG002, tok,
			fmt.Sprintf("%s needs %d stack slots, limit is %d", obj.Name, fc.max, g.opts.MaxStackDepth))
	}
}

func (g *Generator) internal(code diagnostics.Code, tok token.Token, msg string) {
	err := diagnostics.NewError(code, tok, msg)
	err.File = g.file
	g.errs = append(g.errs, err)
}

// Emission helpers. Every push and pop goes through stackInc/stackDec so
// the recorded maximum is a sound bound on the frame's stack use.

func (g *Generator) emitOp(op Opcode, tok token.Token) {
	g.current.obj.Chunk.WriteOp(op, tok.Line, tok.Column)
}

func (g *Generator) emitByte(b byte, tok token.Token) {
	g.current.obj.Chunk.Write(b, tok.Line, tok.Column)
}

func (g *Generator) emitU16(v int, tok token.Token) {
	g.current.obj.Chunk.WriteU16(v, tok.Line, tok.Column)
}

func (g *Generator) stackInc(n int, _ token.Token) {
	fc := g.current
	fc.cur += n
	if fc.cur > fc.max {
		fc.max = fc.cur
	}
}

func (g *Generator) stackDec(n int, tok token.Token) {
	fc := g.current
	fc.cur -= n
	if fc.cur < 0 {
		g.internal(diagnostics.ErrG002, tok, "stack underflow during emission")
		fc.cur = 0
	}
}

// emitJump writes op with a placeholder distance and returns the operand
// offset to patch.
func (g *Generator) emitJump(op Opcode, tok token.Token) int {
	g.emitOp(op, tok)
	g.emitU16(0xffff, tok)
	return g.current.obj.Chunk.Len() - 2
}

// patchJump completes a forward jump to the current emission point.
func (g *Generator) patchJump(offset int, tok token.Token) {
	dist := g.current.obj.Chunk.Len() - (offset + 2)
	if dist > 0xffff {
		g.internal(diagnostics.ErrG002, tok, "jump distance exceeds the 16-bit operand")
		return
	}
	g.current.obj.Chunk.PatchU16(offset, dist)
}

// Binding resolution. Locals resolve innermost first; a miss walks the
// enclosing frames building the upvalue chain; a miss there falls back to
// the globals defined so far, then the prelude names.

func resolveLocal(fc *funcCompiler, name string) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			return i
		}
	}
	return -1
}

func (g *Generator) resolveUpvalue(fc *funcCompiler, name string) int {
	if fc.enclosing == nil {
		return -1
	}
	if slot := resolveLocal(fc.enclosing, name); slot >= 0 {
		return addUpvalue(fc, uint8(slot), true)
	}
	if idx := g.resolveUpvalue(fc.enclosing, name); idx >= 0 {
		return addUpvalue(fc, uint8(idx), false)
	}
	return -1
}

func addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	fc.upvalues = append(fc.upvalues, upvalue{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}

// declareLocal reserves the next frame slot for name. The caller arranges
// for the binding's value to land exactly there.
func (g *Generator) declareLocal(name string, tok token.Token) int {
	fc := g.current
	if len(fc.locals) >= config.MaxLocals {
		g.internal(diagnostics.ErrG002, tok,
			fmt.Sprintf("more than %d locals in one frame", config.MaxLocals))
		return len(fc.locals) - 1
	}
	fc.locals = append(fc.locals, local{name: name, depth: fc.scopeDepth})
	return len(fc.locals) - 1
}

// compileGlobalDef emits a top-level definition. A subroutine registers
// its name before its body compiles so recursive references resolve.
func (g *Generator) compileGlobalDef(def *hir.Def) {
	tok := def.GetToken()
	if def.IsSubroutine() {
		g.globals[def.Name] = true
		g.compileFunction(def.Name, def.Params, def.Body, tok)
	} else {
		g.compileNode(def.Body)
		g.globals[def.Name] = true
	}
	g.emitOp(OP_DEF_GLOBAL, tok)
	g.emitU16(g.current.obj.AddName(def.Name), tok)
	g.stackDec(1, tok)
}

// compileLocalDef emits a definition in frame scope: the bound value stays
// on the stack as the binding's slot, and the definition expression itself
// evaluates to unit.
func (g *Generator) compileLocalDef(def *hir.Def) {
	tok := def.GetToken()
	if def.IsSubroutine() {
		g.declareLocal(def.Name, tok)
		g.compileFunction(def.Name, def.Params, def.Body, tok)
	} else {
		g.compileNode(def.Body)
		g.declareLocal(def.Name, tok)
	}
	g.emitOp(OP_UNIT, tok)
	g.stackInc(1, tok)
}

// compileFunction compiles a nested frame and emits the OP_CLOSURE that
// instantiates it, with one (isLocal, index) operand pair per capture.
func (g *Generator) compileFunction(name string, params []*hir.Param, body hir.Node, tok token.Token) {
	fc := &funcCompiler{
		obj:       NewCodeObject(name, g.file),
		enclosing: g.current,
	}
	fc.obj.Arity = len(params)
	for _, p := range params {
		fc.locals = append(fc.locals, local{name: p.Name, depth: 0})
	}
	fc.cur = len(params)
	fc.max = fc.cur

	g.current = fc
	g.compileNode(body)
	g.emitOp(OP_RETURN, body.GetToken())
	g.stackDec(1, body.GetToken())
	g.finishFrame(fc.obj, tok)
	g.current = fc.enclosing

	idx := g.current.obj.AddNested(fc.obj)
	g.emitOp(OP_CLOSURE, tok)
	g.emitU16(idx, tok)
	for _, uv := range fc.upvalues {
		if uv.isLocal {
			g.emitByte(1, tok)
		} else {
			g.emitByte(0, tok)
		}
		g.emitByte(uv.index, tok)
	}
	g.stackInc(1, tok)
}
