package pipeline

import (
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/token"
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

func run(t *testing.T, exprs ...ast.Expression) *Context {
	t.Helper()
	ctx := NewContext(&ast.Program{File: "test.ql", Exprs: exprs}, config.Default())
	t.Cleanup(ctx.Close)
	return Default().Run(ctx)
}

func TestCleanUnitProducesCode(t *testing.T) {
	ctx := run(t, callTo(1, "show", &ast.IntLiteral{Token: tok(1, "int"), Value: 1}))

	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if ctx.Code == nil {
		t.Fatal("clean unit produced no code object")
	}
	if ctx.Unit == nil {
		t.Fatal("typed tree missing from context")
	}
}

func TestWarningsDoNotGateCodeGen(t *testing.T) {
	ctx := run(t, &ast.Definition{
		Token: tok(1, "x"),
		Name:  "x",
		Body:  &ast.IntLiteral{Token: tok(1, "int"), Value: 5},
	})

	if ctx.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	if len(ctx.Warnings) != 1 {
		t.Fatalf("warnings = %v, want the unused binding", ctx.Warnings)
	}
	if ctx.Code == nil {
		t.Fatal("warnings alone must not suppress code generation")
	}
}

func TestErrorsSuppressCodeGenButNotLaterChecks(t *testing.T) {
	// One type error and one purity violation in the same unit: the
	// effect check still runs, code generation does not.
	ctx := run(t,
		callTo(1, "ghost", &ast.IntLiteral{Token: tok(1, "int"), Value: 1}),
		&ast.Definition{
			Token:  tok(2, "greet"),
			Name:   "greet",
			Params: []*ast.Param{{Token: tok(2, "name"), Name: "name"}},
			Body:   callTo(2, "print!", ident(2, "name")),
		},
	)

	if ctx.Code != nil {
		t.Fatal("code generated despite errors")
	}

	var sawUnknown, sawEffect bool
	for _, e := range ctx.Errors {
		switch e.Code {
		case diagnostics.ErrT007:
			sawUnknown = true
		case diagnostics.ErrE001:
			sawEffect = true
		}
	}
	if !sawUnknown || !sawEffect {
		t.Errorf("errors = %v, want both T007 and E001", ctx.Errors)
	}
}

func TestDiagnosticsCarryFile(t *testing.T) {
	ctx := run(t, &ast.Definition{
		Token:  tok(1, "greet"),
		Name:   "greet",
		Params: []*ast.Param{{Token: tok(1, "name"), Name: "name"}},
		Body:   callTo(1, "print!", ident(1, "name")),
	})

	if len(ctx.Errors) == 0 {
		t.Fatal("expected a purity violation")
	}
	for _, e := range ctx.Errors {
		if e.File != "test.ql" {
			t.Errorf("diagnostic %s has file %q", e.Code, e.File)
		}
	}
}

func TestProcessorNames(t *testing.T) {
	names := []string{
		LowerProcessor{}.Name(),
		EffectProcessor{}.Name(),
		OwnershipProcessor{}.Name(),
		CodeGenProcessor{}.Name(),
	}
	want := []string{"lower", "effects", "ownership", "codegen"}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("processor %d named %q, want %q", i, n, want[i])
		}
	}
}
