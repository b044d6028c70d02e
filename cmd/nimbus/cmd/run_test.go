package cmd

import (
	"io"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// everything written to it. console.log writes to the real os.Stdout
// handle (see internal/builtins/console.go), so capturing output means
// swapping the file descriptor rather than passing in a writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}

func TestRunScriptEval(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "hello", src: "console.log('hello, nimbus')"},
		{name: "arithmetic", src: "console.log(21 * 2)"},
		{name: "array_methods", src: "console.log([1, 2, 3].map(x => x * 2).join(','))"},
		{name: "process_argv", src: "console.log(process.argv.length >= 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalExpr = tt.src
			defer func() { evalExpr = "" }()

			out := captureStdout(t, func() {
				if err := runScript(runCmd, nil); err != nil {
					t.Fatalf("runScript(%q): %v", tt.src, err)
				}
			})
			snaps.MatchSnapshot(t, out)
		})
	}
}

func TestRunScriptPropagatesEvalError(t *testing.T) {
	evalExpr = "throw new Error('boom')"
	defer func() { evalExpr = "" }()

	err := runScript(runCmd, nil)
	if err == nil {
		t.Fatal("expected an error from a thrown uncaught exception")
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode(%v) = %d, want 1", err, ExitCode(err))
	}
}

func TestRunScriptPropagatesParseError(t *testing.T) {
	evalExpr = "let let ="
	defer func() { evalExpr = "" }()

	err := runScript(runCmd, nil)
	if err == nil {
		t.Fatal("expected an error from invalid syntax")
	}
	if ExitCode(err) != 2 {
		t.Errorf("ExitCode(%v) = %d, want 2", err, ExitCode(err))
	}
}

func TestRunScriptRequiresInput(t *testing.T) {
	evalExpr = ""
	if err := runScript(runCmd, nil); err == nil {
		t.Fatal("expected an error when neither a file nor -e is given")
	}
}
