package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nimbus-lang/nimbus/pkg/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "parse error", err: &engine.ParseError{}, want: 2},
		{name: "eval error", err: &engine.EvalError{}, want: 1},
		{name: "other error", err: errors.New("boom"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoadEngineOptionsNoConfig(t *testing.T) {
	configPath = ""
	opts, cfg, err := loadEngineOptions()
	if err != nil {
		t.Fatalf("loadEngineOptions: %v", err)
	}
	if opts != nil || cfg != nil {
		t.Errorf("expected nil opts/cfg with no --config, got %v %v", opts, cfg)
	}
}

func TestLoadEngineOptionsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nimbus.yaml")
	yamlBody := "strict: true\nmaxCallDepth: 500\nmaxIterations: 1000\nglobals:\n  FOO: bar\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	configPath = path
	defer func() { configPath = "" }()

	opts, cfg, err := loadEngineOptions()
	if err != nil {
		t.Fatalf("loadEngineOptions: %v", err)
	}
	if cfg == nil || !cfg.Strict || cfg.MaxCallDepth != 500 || cfg.MaxIterations != 1000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Globals["FOO"] != "bar" {
		t.Errorf("Globals[FOO] = %q, want bar", cfg.Globals["FOO"])
	}
	if len(opts) != 3 {
		t.Errorf("len(opts) = %d, want 3 (strict, maxCallDepth, maxIterations)", len(opts))
	}

	e := engine.New(opts...)
	if _, err := e.Evaluate("undeclared = 1", "<test>"); err == nil {
		t.Error("expected strict mode (from config) to reject an undeclared assignment")
	}
}

func TestLoadEngineOptionsMissingFile(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	defer func() { configPath = "" }()

	if _, _, err := loadEngineOptions(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
