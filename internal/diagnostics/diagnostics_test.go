package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/token"
)

func site(line, col int) token.Token {
	return token.Token{Line: line, Column: col}
}

func TestSortOrdersBySiteThenCode(t *testing.T) {
	errs := []*DiagnosticError{
		NewError(ErrT007, site(3, 1), "c"),
		NewError(ErrT005, site(1, 9), "b"),
		NewError(ErrT001, site(1, 2), "a"),
		NewError(ErrT005, site(1, 2), "a2"),
	}
	Sort(errs)

	want := []Code{ErrT001, ErrT005, ErrT005, ErrT007}
	for i, e := range errs {
		if e.Code != want[i] {
			t.Errorf("position %d holds %s, want %s", i, e.Code, want[i])
		}
	}
	if errs[0].Token.Column != 2 || errs[2].Token.Column != 9 {
		t.Error("same-line diagnostics not ordered by column")
	}
}

func TestCodeClassification(t *testing.T) {
	if !ErrG001.IsInternal() || !ErrG002.IsInternal() {
		t.Error("G codes are internal")
	}
	if ErrT001.IsInternal() || ErrO001.IsInternal() {
		t.Error("user-facing codes misclassified as internal")
	}
	if !WarnW001.IsWarning() {
		t.Error("W001 is a warning")
	}
	if ErrE001.IsWarning() {
		t.Error("E001 is not a warning")
	}
}

func TestErrorFormatting(t *testing.T) {
	e := NewError(ErrO001, site(4, 7), `"x" used after being moved`)
	if got := e.Error(); got != `4:7: [O001] "x" used after being moved` {
		t.Errorf("bare format = %q", got)
	}

	e.File = "main.ql"
	if got := e.Error(); !strings.HasPrefix(got, "main.ql:4:7:") {
		t.Errorf("with file = %q", got)
	}
}

func TestRendererPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "auto")

	chainErr := NewError(ErrE001, site(2, 1), `pure definition "log" calls the procedure "print!"`)
	chainErr.Chain = []string{"log", "print!"}
	moveErr := NewError(ErrO001, site(5, 3), `"x" used after being moved`)
	moveErr.Related = site(4, 1)

	r.Render(
		[]*DiagnosticError{moveErr, chainErr},
		[]Warning{{Code: WarnW001, Token: site(1, 1), Message: `binding "y" is never used`}},
	)

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Error("color codes written to a non-terminal")
	}
	if !strings.Contains(out, "call chain: log -> print!") {
		t.Errorf("missing call chain in:\n%s", out)
	}
	if !strings.Contains(out, "see also: 4:1") {
		t.Errorf("missing related site in:\n%s", out)
	}
	if !strings.Contains(out, "warning:") || !strings.Contains(out, "[W001]") {
		t.Errorf("missing warning in:\n%s", out)
	}

	// Errors render in source order regardless of collection order.
	if strings.Index(out, "[E001]") > strings.Index(out, "[O001]") {
		t.Errorf("errors out of source order:\n%s", out)
	}
}

func TestRendererInternalLabelAndColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, "always")

	r.Render([]*DiagnosticError{NewError(ErrG002, site(1, 1), "stack underflow during emission")}, nil)

	out := buf.String()
	if !strings.Contains(out, "internal error:") {
		t.Errorf("missing internal label in:\n%s", out)
	}
	if !strings.Contains(out, "\033[31m") {
		t.Error("color mode \"always\" produced no ANSI codes")
	}
}

func TestRendererColorModes(t *testing.T) {
	render := func(mode string) string {
		var buf bytes.Buffer
		r := NewRenderer(&buf, mode)
		r.Render([]*DiagnosticError{NewError(ErrT001, site(1, 1), "type mismatch")}, nil)
		return buf.String()
	}

	if out := render("always"); !strings.Contains(out, "\033[31m") {
		t.Errorf("mode always wrote no color:\n%q", out)
	}
	if out := render("never"); strings.Contains(out, "\033[") {
		t.Errorf("mode never wrote color:\n%q", out)
	}
	// A buffer is not a terminal, so auto stays plain.
	if out := render("auto"); strings.Contains(out, "\033[") {
		t.Errorf("mode auto wrote color to a non-terminal:\n%q", out)
	}
}
