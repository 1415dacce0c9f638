// Package modules keeps compiled units available to concurrent readers.
// Units have no cross-unit dependencies, so a batch compiles in parallel;
// a unit is published only after the whole pipeline succeeded, and a
// failed compile leaves any previously published build visible.
package modules

import (
	"github.com/google/uuid"

	"github.com/quill-lang/quill/internal/codegen"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/utils"
)

// Module is one published compilation result. Dir is the directory the
// unit was compiled from, for locating sibling sources of the same module.
type Module struct {
	Name    string
	File    string
	Dir     string
	BuildID uuid.UUID

	Code     *codegen.CodeObject
	Warnings []diagnostics.Warning
}

// NameFromFile derives the module name from its source path: the base
// name without the source extension.
func NameFromFile(file string) string {
	return utils.ExtractModuleName(file)
}
