package pipeline

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/codegen"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/hir"
	"github.com/quill-lang/quill/internal/lower"
)

// Context carries one unit's state between processors.
type Context struct {
	File    string
	Options config.Options

	Program *ast.Program

	// Unit and Session are produced by lowering; the session stays open
	// until the pipeline finishes because code generation reads the
	// trait-implementation registry from its scope context.
	Unit    *hir.Unit
	Session *lower.Session

	Code *codegen.CodeObject

	Errors   []*diagnostics.DiagnosticError
	Warnings []diagnostics.Warning
}

// NewContext prepares a pipeline context for one desugared program.
func NewContext(prog *ast.Program, opts config.Options) *Context {
	return &Context{
		File:    prog.File,
		Options: opts,
		Program: prog,
	}
}

// HasErrors reports whether any processor recorded an error. Warnings do
// not count.
func (c *Context) HasErrors() bool {
	return len(c.Errors) > 0
}

// Close releases the session's arena and scope tree. Call it once, after
// the pipeline output has been consumed.
func (c *Context) Close() {
	if c.Session != nil {
		c.Session.EndUnit()
		c.Session = nil
	}
}
