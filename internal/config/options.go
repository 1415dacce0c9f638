package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the quill.yaml build configuration consumed by the semantic
// core. Every field has a working default; the file is optional.
type Options struct {
	// MaxErrors caps the number of diagnostics collected per unit before
	// the collectors stop recording (the unit still fails).
	MaxErrors int `yaml:"max_errors,omitempty"`

	// Strict disables literal defaulting: an unconstrained numeric literal
	// variable is reported as incomplete inference instead of defaulting
	// to Int.
	Strict bool `yaml:"strict,omitempty"`

	// Color forces diagnostic coloring on or off. "auto" (default)
	// follows terminal detection.
	Color string `yaml:"color,omitempty"`

	// MaxStackDepth overrides the per-code-object stack bound.
	MaxStackDepth int `yaml:"max_stack_depth,omitempty"`
}

// Default returns the options used when no quill.yaml is present.
func Default() Options {
	return Options{
		MaxErrors:     MaxErrors,
		Color:         "auto",
		MaxStackDepth: MaxStackDepth,
	}
}

// Load reads options from path, filling unset fields with defaults.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse %s: %w", path, err)
	}

	if opts.MaxErrors <= 0 {
		opts.MaxErrors = MaxErrors
	}
	if opts.MaxStackDepth <= 0 {
		opts.MaxStackDepth = MaxStackDepth
	}
	switch opts.Color {
	case "", "auto", "always", "never":
	default:
		return opts, fmt.Errorf("parse %s: invalid color mode %q", path, opts.Color)
	}

	return opts, nil
}
