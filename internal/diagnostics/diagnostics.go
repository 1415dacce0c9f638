// Package diagnostics defines the error and warning values produced by the
// semantic passes. Diagnostics are collected per compilation unit rather than
// aborting at the first failure, so a user sees a batch per compile attempt.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/quill-lang/quill/internal/token"
)

// Code identifies a diagnostic kind. The letter groups by pass:
// T = type inference, E = effect check, O = ownership check, G = code
// generation (internal invariants), W = warnings.
type Code string

const (
	// Type errors (lowering).
	ErrT001 Code = "T001" // type mismatch
	ErrT002 Code = "T002" // occurs check (infinite type)
	ErrT003 Code = "T003" // unresolved trait constraint
	ErrT004 Code = "T004" // ambiguous overload
	ErrT005 Code = "T005" // incomplete inference (unbound type variable)
	ErrT006 Code = "T006" // redeclaration in the same scope
	ErrT007 Code = "T007" // unknown name

	// Effect errors.
	ErrE001 Code = "E001" // side-effect violation in a pure definition

	// Ownership errors.
	ErrO001 Code = "O001" // use after move
	ErrO002 Code = "O002" // borrow conflict

	// Code generation internal invariants. These indicate a defect in an
	// earlier pass, never a user mistake, and abort the unit.
	ErrG001 Code = "G001" // unresolved name during emission
	ErrG002 Code = "G002" // stack depth overflow

	// Warnings.
	WarnW001 Code = "W001" // unused binding
)

// IsInternal reports whether the code marks an internal invariant failure.
func (c Code) IsInternal() bool {
	return c == ErrG001 || c == ErrG002
}

// IsWarning reports whether the code is a warning, which never gates
// code generation.
func (c Code) IsWarning() bool {
	return c == WarnW001
}

// DiagnosticError is a single collected problem with enough context to
// render a human message.
type DiagnosticError struct {
	Code    Code
	Token   token.Token
	File    string
	Message string

	// Chain names the call path to the offending site, outermost first.
	// Populated for side-effect violations.
	Chain []string

	// Related points at a second site involved in the problem, e.g. the
	// move site of a use-after-move.
	Related token.Token
}

// NewError creates a diagnostic at the given site.
func NewError(code Code, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

func (e *DiagnosticError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", e.File, e.Token.Line, e.Token.Column, e.Code, e.Message)
	}
	return fmt.Sprintf("%d:%d: [%s] %s", e.Token.Line, e.Token.Column, e.Code, e.Message)
}

// Warning is a non-fatal note attached to a successful unit.
type Warning struct {
	Code    Code
	Token   token.Token
	File    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%d:%d: [%s] %s", w.Token.Line, w.Token.Column, w.Code, w.Message)
}

// Sort orders diagnostics by line, then column, then code, for
// deterministic output.
func Sort(errs []*DiagnosticError) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i], errs[j]
		if a.Token.Line != b.Token.Line {
			return a.Token.Line < b.Token.Line
		}
		if a.Token.Column != b.Token.Column {
			return a.Token.Column < b.Token.Column
		}
		return a.Code < b.Code
	})
}
