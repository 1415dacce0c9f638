package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "quill.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts != Default() {
		t.Errorf("opts = %+v, want defaults", opts)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	data := "max_errors: 10\nstrict: true\ncolor: never\nmax_stack_depth: 512\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.MaxErrors != 10 || !opts.Strict || opts.Color != "never" || opts.MaxStackDepth != 512 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestLoadFillsZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	if err := os.WriteFile(path, []byte("strict: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.MaxErrors != MaxErrors {
		t.Errorf("MaxErrors = %d, want default %d", opts.MaxErrors, MaxErrors)
	}
	if opts.MaxStackDepth != MaxStackDepth {
		t.Errorf("MaxStackDepth = %d, want default %d", opts.MaxStackDepth, MaxStackDepth)
	}
}

func TestLoadRejectsBadColorMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	if err := os.WriteFile(path, []byte("color: sometimes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("invalid color mode accepted")
	}
}

func TestSourceExtHelpers(t *testing.T) {
	if !HasSourceExt("main.ql") || HasSourceExt("main.go") {
		t.Error("HasSourceExt misdetects")
	}
	if TrimSourceExt("main.ql") != "main" || TrimSourceExt("main") != "main" {
		t.Error("TrimSourceExt misbehaves")
	}
}
