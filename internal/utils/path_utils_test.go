package utils

import "testing"

func TestExtractModuleName(t *testing.T) {
	cases := map[string]string{
		"util.ql":           "util",
		"src/lib/parser.ql": "parser",
		"noext":             "noext",
		"dir/noext":         "noext",
	}
	for path, want := range cases {
		if got := ExtractModuleName(path); got != want {
			t.Errorf("ExtractModuleName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestGetModuleDir(t *testing.T) {
	if got := GetModuleDir("src/lib/parser.ql"); got != "src/lib" {
		t.Errorf("file dir = %q", got)
	}
	if got := GetModuleDir("src/lib"); got != "src/lib" {
		t.Errorf("dir passthrough = %q", got)
	}
}
