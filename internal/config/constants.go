package config

import "strings"

const SourceFileExt = ".ql"

// HasSourceExt reports whether path names a source file.
func HasSourceExt(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}

// TrimSourceExt strips the source extension if present.
func TrimSourceExt(name string) string {
	return strings.TrimSuffix(name, SourceFileExt)
}

// IsTestMode normalizes type-variable rendering for deterministic test
// output. Set once at startup.
var IsTestMode = false

// Built-in subroutine names. Names ending in '!' are procedures: their
// signatures are tagged effectful and calling them from a pure definition
// is a side-effect violation.
const (
	PrintFuncName   = "print!"
	ReadFuncName    = "read!"
	MutateFuncName  = "update!"
	MoveFuncName    = "move"
	IfFuncName      = "if"
	LenFuncName     = "len"
	IdFuncName      = "id"
	DiscardFuncName = "discard"
)

// Built-in type names.
const (
	IntTypeName    = "Int"
	FloatTypeName  = "Float"
	BoolTypeName   = "Bool"
	StringTypeName = "String"
	UnitTypeName   = "Unit"
	ListTypeName   = "List"
)

// Built-in trait names.
const (
	NumTraitName  = "Num"
	EqTraitName   = "Eq"
	OrdTraitName  = "Ord"
	ShowTraitName = "Show"
)

// Limits. MaxLocals is bounded by the one-byte slot operand; MaxStackDepth
// bounds the declared stack of a single code object.
const (
	MaxLocals     = 256
	MaxStackDepth = 1 << 16
	MaxErrors     = 50
	MaxConstants  = 1 << 16
)
