package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFile(t *testing.T) {
	path := writeTempScript(t, "let x = 1 + 2;")

	out := captureStdout(t, func() {
		if err := parseFile(parseCmd, []string{path}); err != nil {
			t.Fatalf("parseFile: %v", err)
		}
	})

	for _, want := range []string{"VariableDeclaration", "BinaryExpression"} {
		if !strings.Contains(out, want) {
			t.Errorf("AST dump missing %q:\n%s", want, out)
		}
	}
}

func TestParseFileReportsSyntaxErrors(t *testing.T) {
	path := writeTempScript(t, "let let =")

	if err := parseFile(parseCmd, []string{path}); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestParseFileMissingFile(t *testing.T) {
	if err := parseFile(parseCmd, []string{filepath.Join(t.TempDir(), "missing.js")}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
