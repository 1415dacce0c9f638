package pipeline

import (
	"github.com/quill-lang/quill/internal/codegen"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/effects"
	"github.com/quill-lang/quill/internal/lower"
	"github.com/quill-lang/quill/internal/ownership"
)

// LowerProcessor runs type inference and builds the typed tree.
type LowerProcessor struct{}

func (LowerProcessor) Name() string { return "lower" }

func (LowerProcessor) Process(ctx *Context) *Context {
	session := lower.BeginUnit(ctx.File, ctx.Options)
	unit, warns, errs := session.Lower(ctx.Program)

	ctx.Unit = unit
	ctx.Session = session
	ctx.Warnings = append(ctx.Warnings, warns...)
	ctx.Errors = append(ctx.Errors, errs...)
	return ctx
}

// EffectProcessor classifies node effects and reports violations of the
// purity convention. It runs even when lowering reported errors: effect
// diagnostics on the well-typed parts of the unit are still useful.
type EffectProcessor struct{}

func (EffectProcessor) Name() string { return "effects" }

func (EffectProcessor) Process(ctx *Context) *Context {
	if ctx.Unit == nil {
		return ctx
	}
	ctx.Errors = append(ctx.Errors, stamp(ctx.File, effects.Check(ctx.Unit))...)
	return ctx
}

// OwnershipProcessor enforces the linear discipline on moves and borrows.
type OwnershipProcessor struct{}

func (OwnershipProcessor) Name() string { return "ownership" }

func (OwnershipProcessor) Process(ctx *Context) *Context {
	if ctx.Unit == nil {
		return ctx
	}
	ctx.Errors = append(ctx.Errors, stamp(ctx.File, ownership.Check(ctx.Unit))...)
	return ctx
}

// CodeGenProcessor emits bytecode. It only runs on a clean unit: any
// earlier error leaves Code nil.
type CodeGenProcessor struct{}

func (CodeGenProcessor) Name() string { return "codegen" }

func (CodeGenProcessor) Process(ctx *Context) *Context {
	if ctx.Unit == nil || ctx.Session == nil || ctx.HasErrors() {
		return ctx
	}
	code, errs := codegen.Generate(ctx.Unit, ctx.Session.Context(), ctx.Options)
	ctx.Errors = append(ctx.Errors, errs...)
	if len(errs) == 0 {
		ctx.Code = code
	}
	return ctx
}

func stamp(file string, errs []*diagnostics.DiagnosticError) []*diagnostics.DiagnosticError {
	for _, e := range errs {
		if e.File == "" {
			e.File = file
		}
	}
	return errs
}
