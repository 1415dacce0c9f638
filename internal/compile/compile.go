// Package compile is the front door of the semantic core: it runs the
// pass pipeline over a desugared program and packages the outcome.
package compile

import (
	"context"
	"io"

	"github.com/google/uuid"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/codegen"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/pipeline"
	"github.com/quill-lang/quill/internal/prettyprinter"
)

// Result is the outcome of compiling one unit. Code is nil when Errors is
// not empty; Warnings may accompany either outcome.
type Result struct {
	BuildID uuid.UUID
	File    string

	Unit *hir.Unit
	Code *codegen.CodeObject

	Warnings []diagnostics.Warning
	Errors   []*diagnostics.DiagnosticError

	color string
}

// Report writes the unit's diagnostics to out, colored per the options the
// unit was compiled with.
func (r *Result) Report(out io.Writer) {
	diagnostics.NewRenderer(out, r.color).Render(r.Errors, r.Warnings)
}

// Unit compiles one desugared program. The returned error summarizes a
// failed compile; per-site diagnostics are in Result.Errors either way.
func Unit(ctx context.Context, prog *ast.Program, opts config.Options) (*Result, error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "compile unit", "file", prog.File)
	defer tr.Finish()

	pctx := pipeline.NewContext(prog, opts)
	defer pctx.Close()

	pctx = pipeline.Default().Run(pctx)

	res := &Result{
		BuildID:  uuid.New(),
		File:     prog.File,
		Unit:     pctx.Unit,
		Code:     pctx.Code,
		Warnings: pctx.Warnings,
		Errors:   pctx.Errors,
		color:    opts.Color,
	}

	if tr.If("dump_typed_tree") && pctx.Unit != nil {
		tr.Printw("typed tree", "dump", prettyprinter.NewCodePrinter().PrintUnit(pctx.Unit))
	}
	if tr.If("dump_code") && pctx.Code != nil {
		tr.Printw("bytecode", "dump", codegen.Disassemble(pctx.Code))
	}

	tr.Printw("unit compiled",
		"build_id", res.BuildID,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings))

	if len(res.Errors) > 0 {
		return res, errors.New("%v: %d errors", prog.File, len(res.Errors))
	}
	return res, nil
}
