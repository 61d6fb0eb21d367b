package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInlineQueriesCarryMarkers(t *testing.T) {
	violations, err := lintPaths([]string{"../../sqlinline"})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}

func TestLintFileReportsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	src := "package q\n\n" +
		"const QGood = `--sql 0f4c6b1e-8a51-4d59-9f0e-2b1f0a3c9d11\nselect 1;`\n\n" +
		"const QBad = `select * from saved_flyers;`\n\n" +
		"const Label = \"not sql\"\n"
	path := filepath.Join(dir, "q.go")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	violations, err := lintPaths([]string{dir})
	if err != nil {
		t.Fatalf("lintPaths() error = %v", err)
	}
	if len(violations) != 1 || violations[0].name != "QBad" {
		t.Fatalf("violations = %+v, want one for QBad", violations)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct{ in, want string }{
		{"\n  --sql abc\nselect 1", "--sql abc"},
		{"select 1", "select 1"},
	}
	for _, tc := range tests {
		if got := firstLine(tc.in); got != tc.want {
			t.Fatalf("firstLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
