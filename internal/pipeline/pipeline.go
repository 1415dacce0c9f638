// Package pipeline chains the semantic passes over one compilation unit.
// The set of processors is closed: lowering, the effect check, the
// ownership check and code generation, in that order. Passes keep running
// after errors so one attempt reports diagnostics from every stage that
// can still produce them; only code generation requires a clean unit.
package pipeline

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// Processor is one pass over the pipeline context.
type Processor interface {
	Name() string
	Process(ctx *Context) *Context
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default builds the full pass sequence. The effect and ownership checks
// both read the typed tree and write disjoint annotations, so their
// relative order does not change any diagnostic.
func Default() *Pipeline {
	return New(
		LowerProcessor{},
		EffectProcessor{},
		OwnershipProcessor{},
		CodeGenProcessor{},
	)
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
