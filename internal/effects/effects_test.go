package effects

import (
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/lower"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

func tok(line int, lexeme string) token.Token {
	return token.Token{Type: token.IDENT, Lexeme: lexeme, Line: line, Column: 1}
}

func ident(line int, n string) *ast.Identifier {
	return &ast.Identifier{Token: tok(line, n), Value: n}
}

func callTo(line int, callee string, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Token: tok(line, callee), Callee: ident(line, callee), Args: args}
}

// typed lowers a program and requires it to be type-correct, so effect
// tests never run on a broken tree.
func typed(t *testing.T, exprs ...ast.Expression) *hir.Unit {
	t.Helper()
	s := lower.BeginUnit("test.ql", config.Default())
	t.Cleanup(s.EndUnit)
	unit, _, errs := s.Lower(&ast.Program{File: "test.ql", Exprs: exprs})
	if len(errs) != 0 {
		t.Fatalf("lowering errors: %v", errs)
	}
	return unit
}

func TestPureLambdaBindingWithEffectfulBody(t *testing.T) {
	// log = (msg) -> print!(msg) promises a pure closure and breaks it.
	prog := &ast.Definition{
		Token: tok(1, "log"),
		Name:  "log",
		Body: &ast.Lambda{
			Token:  tok(1, "->"),
			Params: []*ast.Param{{Token: tok(1, "msg"), Name: "msg"}},
			Body:   callTo(1, "print!", ident(1, "msg")),
		},
	}
	unit := typed(t, prog)
	errs := Check(unit)

	if len(errs) != 1 {
		t.Fatalf("errors = %v, want one E001", errs)
	}
	if errs[0].Code != diagnostics.ErrE001 {
		t.Fatalf("code = %s, want E001", errs[0].Code)
	}
	want := []string{"log", "print!"}
	if len(errs[0].Chain) != len(want) {
		t.Fatalf("chain = %v, want %v", errs[0].Chain, want)
	}
	for i, n := range want {
		if errs[0].Chain[i] != n {
			t.Errorf("chain[%d] = %q, want %q", i, errs[0].Chain[i], n)
		}
	}
}

func TestProcedureMayPerformEffects(t *testing.T) {
	// greet!(name) = print!(name) is declared effectful by its name.
	prog := &ast.Definition{
		Token:  tok(1, "greet!"),
		Name:   "greet!",
		Params: []*ast.Param{{Token: tok(1, "name"), Name: "name"}},
		Body:   callTo(1, "print!", ident(1, "name")),
	}
	unit := typed(t, prog)

	if errs := Check(unit); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	def := unit.Exprs[0].(*hir.Def)
	if def.Body.EffectTag() != typesystem.EffectProc {
		t.Errorf("body tagged %v, want proc", def.Body.EffectTag())
	}
}

func TestPureSubroutineWithEffectfulBody(t *testing.T) {
	prog := &ast.Definition{
		Token:  tok(1, "greet"),
		Name:   "greet",
		Params: []*ast.Param{{Token: tok(1, "name"), Name: "name"}},
		Body:   callTo(1, "print!", ident(1, "name")),
	}
	unit := typed(t, prog)
	errs := Check(unit)

	if len(errs) != 1 || errs[0].Code != diagnostics.ErrE001 {
		t.Fatalf("errors = %v, want one E001", errs)
	}
}

func TestEffectfulBindingSeenThroughItsScheme(t *testing.T) {
	// q! = () -> read!() declares a procedure; the promise must reach the
	// call site in pure p, even though q!'s body is a closure literal.
	progQ := &ast.Definition{
		Token: tok(1, "q!"),
		Name:  "q!",
		Body: &ast.Lambda{
			Token:  tok(1, "->"),
			Params: []*ast.Param{},
			Body:   callTo(1, "read!"),
		},
	}
	progP := &ast.Definition{
		Token:  tok(2, "p"),
		Name:   "p",
		Params: []*ast.Param{{Token: tok(2, "x"), Name: "x"}},
		Body:   callTo(2, "q!"),
	}
	unit := typed(t, progQ, progP)
	errs := Check(unit)

	if len(errs) != 1 || errs[0].Code != diagnostics.ErrE001 {
		t.Fatalf("errors = %v, want one E001", errs)
	}
	want := []string{"p", "q!"}
	if len(errs[0].Chain) != len(want) {
		t.Fatalf("chain = %v, want %v", errs[0].Chain, want)
	}
	for i, n := range want {
		if errs[0].Chain[i] != n {
			t.Errorf("chain[%d] = %q, want %q", i, errs[0].Chain[i], n)
		}
	}
}

func TestTopLevelEffectsAllowed(t *testing.T) {
	unit := typed(t,
		callTo(1, "print!", &ast.StringLiteral{Token: tok(1, "str"), Value: "hi"}),
		&ast.Definition{Token: tok(2, "line"), Name: "line", Body: callTo(2, "read!")},
	)

	if errs := Check(unit); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestConditionalPropagatesBranchEffects(t *testing.T) {
	// f(c) = if(c, () -> print!("x"), () -> ()) invokes a branch thunk,
	// so the thunk's effect is the call's effect.
	thunk := func(line int, body ast.Expression) *ast.Lambda {
		return &ast.Lambda{Token: tok(line, "->"), Params: []*ast.Param{}, Body: body}
	}
	prog := &ast.Definition{
		Token:  tok(1, "f"),
		Name:   "f",
		Params: []*ast.Param{{Token: tok(1, "c"), Name: "c"}},
		Body: callTo(1, "if",
			ident(1, "c"),
			thunk(1, callTo(1, "print!", &ast.StringLiteral{Token: tok(1, "str"), Value: "x"})),
			thunk(1, &ast.UnitLiteral{Token: tok(1, "()")}),
		),
	}
	unit := typed(t, prog)
	errs := Check(unit)

	if len(errs) != 1 || errs[0].Code != diagnostics.ErrE001 {
		t.Fatalf("errors = %v, want one E001", errs)
	}
	if len(errs[0].Chain) != 2 || errs[0].Chain[0] != "f" || errs[0].Chain[1] != "if" {
		t.Errorf("chain = %v, want [f if]", errs[0].Chain)
	}
}

func TestLambdaSignatureEffectRewritten(t *testing.T) {
	// A lambda's inferred body effect replaces the wildcard on its
	// signature, in both directions.
	pure := &ast.Definition{
		Token: tok(1, "p"),
		Name:  "p",
		Body: &ast.Lambda{
			Token:  tok(1, "->"),
			Params: []*ast.Param{{Token: tok(1, "x"), Name: "x"}},
			Body:   ident(1, "x"),
		},
	}
	effectful := &ast.Definition{
		Token: tok(2, "q!"),
		Name:  "q!",
		Body: &ast.Lambda{
			Token:  tok(2, "->"),
			Params: []*ast.Param{},
			Body:   callTo(2, "read!"),
		},
	}
	unit := typed(t, pure, effectful)
	if errs := Check(unit); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	pureSig := unit.Exprs[0].(*hir.Def).Body.Type().(typesystem.TFunc)
	if pureSig.Effect != typesystem.EffectPure {
		t.Errorf("pure lambda signature effect = %v", pureSig.Effect)
	}
	procSig := unit.Exprs[1].(*hir.Def).Body.Type().(typesystem.TFunc)
	if procSig.Effect != typesystem.EffectProc {
		t.Errorf("effectful lambda signature effect = %v", procSig.Effect)
	}
}

func TestEffectThroughValueBindingInBlock(t *testing.T) {
	// A subroutine is effectful if any sequenced expression is.
	prog := &ast.Definition{
		Token:  tok(1, "run"),
		Name:   "run",
		Params: []*ast.Param{{Token: tok(1, "x"), Name: "x"}},
		Body: &ast.Block{Token: tok(1, "{"), Exprs: []ast.Expression{
			&ast.Definition{Token: tok(2, "line"), Name: "line", Body: callTo(2, "read!")},
			ident(3, "x"),
		}},
	}
	unit := typed(t, prog)
	errs := Check(unit)

	if len(errs) != 1 || errs[0].Code != diagnostics.ErrE001 {
		t.Fatalf("errors = %v, want one E001", errs)
	}
	if len(errs[0].Chain) != 3 || errs[0].Chain[2] != "read!" {
		t.Errorf("chain = %v, want it to end in read!", errs[0].Chain)
	}
}
