package utils

import (
	"path/filepath"

	"github.com/quill-lang/quill/internal/config"
)

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes any recognized source extension.
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}

// GetModuleDir returns the directory a module's sources live in: the
// containing directory when path names a source file, path itself when it
// already names a directory.
func GetModuleDir(path string) string {
	if config.HasSourceExt(path) {
		return filepath.Dir(path)
	}
	return path
}
