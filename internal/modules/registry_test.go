package modules

import (
	"context"
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/token"
)

func prog(file string, exprs ...ast.Expression) *ast.Program {
	return &ast.Program{File: file, Exprs: exprs}
}

func show(v int64) ast.Expression {
	at := token.Token{Type: token.IDENT, Lexeme: "show", Line: 1, Column: 1}
	return &ast.CallExpression{
		Token:  at,
		Callee: &ast.Identifier{Token: at, Value: "show"},
		Args:   []ast.Expression{&ast.IntLiteral{Token: at, Value: v}},
	}
}

func unknown() ast.Expression {
	at := token.Token{Type: token.IDENT, Lexeme: "ghost", Line: 1, Column: 1}
	return &ast.Identifier{Token: at, Value: "ghost"}
}

func TestNameFromFile(t *testing.T) {
	cases := map[string]string{
		"util.ql":         "util",
		"src/lib/util.ql": "util",
		"plain":           "plain",
	}
	for file, want := range cases {
		if got := NameFromFile(file); got != want {
			t.Errorf("NameFromFile(%q) = %q, want %q", file, got, want)
		}
	}
}

func TestCompileAllPublishesSuccesses(t *testing.T) {
	r := NewRegistry()
	results := r.CompileAll(context.Background(), []*ast.Program{
		prog("alpha.ql", show(1)),
		prog("beta.ql", show(2)),
		prog("gamma.ql", unknown()),
	}, config.Default())

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	// Submission order survives concurrent completion.
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if results[i].Name != want {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, want)
		}
	}

	if results[0].Module == nil || results[1].Module == nil {
		t.Fatal("successful units were not published")
	}
	if results[2].Module != nil {
		t.Fatal("failed unit came back with a module")
	}
	if len(results[2].Errors) == 0 {
		t.Fatal("failed unit carries no diagnostics")
	}

	if _, ok := r.Get("alpha"); !ok {
		t.Error("alpha missing from registry")
	}
	if _, ok := r.Get("gamma"); ok {
		t.Error("failed gamma was published")
	}
	if names := r.Names(); len(names) != 2 {
		t.Errorf("Names() = %v, want two entries", names)
	}
}

func TestPublishedModuleCarriesBuild(t *testing.T) {
	r := NewRegistry()
	r.CompileAll(context.Background(), []*ast.Program{prog("src/lib/one.ql", show(1))}, config.Default())

	m, ok := r.Get("one")
	if !ok {
		t.Fatal("module not published")
	}
	if m.File != "src/lib/one.ql" {
		t.Errorf("file = %q", m.File)
	}
	if m.Dir != "src/lib" {
		t.Errorf("dir = %q", m.Dir)
	}
	if m.Code == nil {
		t.Error("published module has no code")
	}
	if m.BuildID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("build id is zero")
	}
}

func TestRecompilationReplacesModule(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.CompileAll(ctx, []*ast.Program{prog("one.ql", show(1))}, config.Default())
	first, _ := r.Get("one")

	r.CompileAll(ctx, []*ast.Program{prog("one.ql", show(2))}, config.Default())
	second, _ := r.Get("one")

	if first.BuildID == second.BuildID {
		t.Error("recompilation kept the old build id")
	}

	// A failed recompile leaves the previous build visible.
	r.CompileAll(ctx, []*ast.Program{prog("one.ql", unknown())}, config.Default())
	kept, ok := r.Get("one")
	if !ok || kept.BuildID != second.BuildID {
		t.Error("failed recompile disturbed the published build")
	}
}
