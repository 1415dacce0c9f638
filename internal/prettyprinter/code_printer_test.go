package prettyprinter

import (
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/symbols"
	"github.com/quill-lang/quill/internal/token"
	"github.com/quill-lang/quill/internal/typesystem"
)

func typedNode(n hir.Node, t typesystem.Type, eff typesystem.Effect) hir.Node {
	n.SetToken(token.Token{Line: 1, Column: 1})
	n.SetType(t)
	n.SetEffect(eff)
	return n
}

func TestPrintLiteral(t *testing.T) {
	lit := typedNode(&hir.Literal{Kind: hir.LitInt, Int: 5}, typesystem.IntType, typesystem.EffectPure)

	out := NewCodePrinter().PrintNode(lit)
	if strings.TrimSpace(out) != "lit 5: Int" {
		t.Errorf("output = %q", out)
	}
}

func TestEffectfulNodeMarked(t *testing.T) {
	call := &hir.Call{
		Callee: typedNode(&hir.VarRef{Name: "read!", Kind: symbols.SubroutineSymbol},
			typesystem.TFunc{Return: typesystem.StringType, Effect: typesystem.EffectProc},
			typesystem.EffectPure),
	}
	typedNode(call, typesystem.StringType, typesystem.EffectProc)

	out := NewCodePrinter().PrintNode(call)
	if !strings.Contains(out, "call: String !") {
		t.Errorf("missing effect marker in %q", out)
	}
}

func TestDispatchAnnotations(t *testing.T) {
	static := &hir.Call{
		Callee:   typedNode(&hir.VarRef{Name: "show", Kind: symbols.TraitMethodSymbol}, typesystem.StringType, typesystem.EffectPure),
		Dispatch: hir.Dispatch{Kind: hir.DispatchStatic, Trait: "Show", Method: "show", ImplIndex: 9},
	}
	typedNode(static, typesystem.StringType, typesystem.EffectPure)

	out := NewCodePrinter().PrintNode(static)
	if !strings.Contains(out, "static(Show.show#9)") {
		t.Errorf("static dispatch not rendered in %q", out)
	}

	static.Dispatch = hir.Dispatch{Kind: hir.DispatchTable, Trait: "Num", Method: "add", ImplIndex: -1}
	out = NewCodePrinter().PrintNode(static)
	if !strings.Contains(out, "table(Num.add)") {
		t.Errorf("table dispatch not rendered in %q", out)
	}
}

func TestDefWithParamsAndCaptures(t *testing.T) {
	body := typedNode(&hir.VarRef{Name: "x", Kind: symbols.VariableSymbol}, typesystem.IntType, typesystem.EffectPure)
	lambda := &hir.Lambda{
		Body:     body,
		Captures: []hir.Capture{{Name: "x", ByValue: true}},
	}
	typedNode(lambda, typesystem.TFunc{Return: typesystem.IntType, Effect: typesystem.EffectPure}, typesystem.EffectPure)

	def := &hir.Def{
		Name:   "f",
		Params: []*hir.Param{{Name: "n", Typ: typesystem.IntType}},
		Body:   lambda,
		Scheme: typesystem.TFunc{Params: []typesystem.Type{typesystem.IntType}, Return: typesystem.IntType, Effect: typesystem.EffectPure},
	}
	typedNode(def, typesystem.UnitType, typesystem.EffectPure)

	out := NewCodePrinter().PrintNode(def)
	for _, want := range []string{"def f ::", "param n: Int", "[move:x]", "ref x: Int"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// Nested nodes indent under their parent.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if !strings.HasPrefix(lines[1], "  ") {
		t.Errorf("no indentation in:\n%s", out)
	}
}

func TestPrintUnitSeparatesTopLevel(t *testing.T) {
	unit := &hir.Unit{File: "test.ql", Exprs: []hir.Node{
		typedNode(&hir.Literal{Kind: hir.LitBool, Bool: true}, typesystem.BoolType, typesystem.EffectPure),
		typedNode(&hir.Literal{Kind: hir.LitUnit}, typesystem.UnitType, typesystem.EffectPure),
	}}

	out := NewCodePrinter().PrintUnit(unit)
	if !strings.Contains(out, "lit true: Bool") || !strings.Contains(out, "lit (): Unit") {
		t.Errorf("output = %q", out)
	}
}
