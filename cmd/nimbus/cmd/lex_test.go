package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempScript(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.js")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp script: %v", err)
	}
	return path
}

func TestLexFile(t *testing.T) {
	path := writeTempScript(t, "let x = 1 + 2;")

	out := captureStdout(t, func() {
		if err := lexFile(lexCmd, []string{path}); err != nil {
			t.Fatalf("lexFile: %v", err)
		}
	})

	for _, want := range []string{"LET", "IDENT", "NUMBER", "SEMICOLON", "EOF"} {
		if !strings.Contains(out, want) {
			t.Errorf("lex output missing %q token:\n%s", want, out)
		}
	}
}

func TestLexFileReportsSyntaxErrors(t *testing.T) {
	path := writeTempScript(t, "let x = \"unterminated")

	_ = captureStdout(t, func() {
		err := lexFile(lexCmd, []string{path})
		if err == nil {
			t.Fatal("expected a lexical error for an unterminated string")
		}
	})
}

func TestLexFileMissingFile(t *testing.T) {
	if err := lexFile(lexCmd, []string{filepath.Join(t.TempDir(), "missing.js")}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
