package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/nimbus-lang/nimbus/pkg/engine"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "nimbus ECMAScript interpreter",
	Long: `nimbus is a tree-walking ECMAScript (ES2015+) interpreter.

It runs scripts from a file or inline expression, tokenizes/parses source
for debugging, and offers an interactive REPL.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (strict mode, iteration cap, stack depth; its globals map is parsed but not applied)")
}

// fileConfig is the shape of --config's YAML document, following the
// teacher's pattern of using goccy/go-yaml for structured configuration
// rather than hand-rolled flag parsing for nested settings.
type fileConfig struct {
	Strict        bool              `yaml:"strict"`
	MaxCallDepth  int               `yaml:"maxCallDepth"`
	MaxIterations int               `yaml:"maxIterations"`
	Globals       map[string]string `yaml:"globals"` // parsed only; no subcommand applies it to the engine
}

// loadEngineOptions reads --config (if given) and turns it into
// engine.Option values, so every subcommand that builds an engine.Engine
// shares one config-file format instead of reimplementing YAML loading.
func loadEngineOptions() ([]engine.Option, *fileConfig, error) {
	if configPath == "" {
		return nil, nil, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	var opts []engine.Option
	opts = append(opts, engine.WithStrict(cfg.Strict))
	if cfg.MaxCallDepth > 0 {
		opts = append(opts, engine.WithMaxCallDepth(cfg.MaxCallDepth))
	}
	if cfg.MaxIterations > 0 {
		opts = append(opts, engine.WithMaxIterations(cfg.MaxIterations))
	}
	return opts, &cfg, nil
}

// ExitCode maps a host-facing error to the process exit code this CLI
// specifies: 0 on success (handled by main's normal return), 1 on an
// uncaught script exception, 2 on a parse error.
func ExitCode(err error) int {
	switch err.(type) {
	case *engine.ParseError:
		return 2
	case *engine.EvalError:
		return 1
	default:
		return 1
	}
}
