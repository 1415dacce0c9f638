package modules

import (
	"context"
	"sync"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/compile"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/utils"
)

// Registry is the read-mostly store of published modules. Lookups vastly
// outnumber publishes, so readers share an RLock.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Get returns the published module by name.
func (r *Registry) Get(name string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Names returns the published module names, unordered.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for name := range r.modules {
		out = append(out, name)
	}
	return out
}

func (r *Registry) publish(m *Module) {
	r.mu.Lock()
	r.modules[m.Name] = m
	r.mu.Unlock()
}

// BatchResult pairs one input program with its compile outcome, in the
// order the programs were submitted.
type BatchResult struct {
	Name   string
	File   string
	Module *Module
	Errors []*diagnostics.DiagnosticError
}

// CompileAll compiles the programs concurrently, publishing each success.
// Results come back in submission order regardless of completion order.
func (r *Registry) CompileAll(ctx context.Context, progs []*ast.Program, opts config.Options) []BatchResult {
	results := make([]BatchResult, len(progs))

	var wg sync.WaitGroup
	for i, prog := range progs {
		wg.Add(1)
		go func(i int, prog *ast.Program) {
			defer wg.Done()
			results[i] = r.compileOne(ctx, prog, opts)
		}(i, prog)
	}
	wg.Wait()

	return results
}

func (r *Registry) compileOne(ctx context.Context, prog *ast.Program, opts config.Options) BatchResult {
	name := NameFromFile(prog.File)
	res, err := compile.Unit(ctx, prog, opts)
	if err != nil {
		return BatchResult{Name: name, File: prog.File, Errors: res.Errors}
	}

	m := &Module{
		Name:     name,
		File:     prog.File,
		Dir:      utils.GetModuleDir(prog.File),
		BuildID:  res.BuildID,
		Code:     res.Code,
		Warnings: res.Warnings,
	}
	r.publish(m)
	return BatchResult{Name: name, File: prog.File, Module: m}
}
