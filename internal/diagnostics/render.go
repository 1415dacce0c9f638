package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Renderer formats diagnostics for a terminal or a plain writer.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a renderer writing to out. The mode is the
// configured color setting: "always" and "never" force coloring on or off,
// anything else falls back to terminal detection on out.
func NewRenderer(out io.Writer, mode string) *Renderer {
	color := false
	switch mode {
	case "always":
		color = true
	case "never":
	default:
		if f, ok := out.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &Renderer{out: out, color: color}
}

const (
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
	ansiReset  = "\033[0m"
)

func (r *Renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

// Render writes every diagnostic and warning, errors first, in source order.
func (r *Renderer) Render(errs []*DiagnosticError, warns []Warning) {
	Sort(errs)
	for _, e := range errs {
		r.renderError(e)
	}
	for _, w := range warns {
		fmt.Fprintf(r.out, "%s %s\n", r.paint(ansiYellow, "warning:"), w.String())
	}
}

func (r *Renderer) renderError(e *DiagnosticError) {
	label := "error:"
	if e.Code.IsInternal() {
		label = "internal error:"
	}
	fmt.Fprintf(r.out, "%s %s\n", r.paint(ansiRed+ansiBold, label), e.Error())

	if len(e.Chain) > 0 {
		fmt.Fprintf(r.out, "  call chain: %s\n", strings.Join(e.Chain, " -> "))
	}
	if !e.Related.IsZero() {
		fmt.Fprintf(r.out, "  see also: %s\n", e.Related.Pos())
	}
}
