package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbus-lang/nimbus/internal/runtime"
	"github.com/nimbus-lang/nimbus/pkg/engine"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file] [-- script-args...]",
	Short: "Run a script file or inline expression",
	Long: `Execute a script from a file or an inline expression.

Examples:
  # Run a script file
  nimbus run script.js

  # Evaluate an inline expression
  nimbus run -e "console.log('hello')"

  # Pass arguments through process.argv
  nimbus run script.js -- one two`,
	Args: cobra.MinimumNArgs(0),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(_ *cobra.Command, args []string) error {
	var source, sourceName string
	var scriptArgs []string

	switch {
	case evalExpr != "":
		source = evalExpr
		sourceName = "<eval>"
		scriptArgs = args
	case len(args) >= 1:
		sourceName = args[0]
		scriptArgs = args[1:]
		raw, err := os.ReadFile(sourceName)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", sourceName, err)
		}
		decoded, err := engine.DecodeSource(raw)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", sourceName, err)
		}
		source = decoded
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	opts, _, err := loadEngineOptions()
	if err != nil {
		return err
	}
	e := engine.New(opts...)
	seedNodeHostGlobals(e, sourceName, scriptArgs)

	if verbose {
		fmt.Fprintf(os.Stderr, "running %s\n", sourceName)
	}

	if _, err := e.Evaluate(source, sourceName); err != nil {
		return err
	}
	e.RunMicrotasks()
	return nil
}

// seedNodeHostGlobals installs the minimal CommonJS-like surface
// (require, module.exports, process.argv) a script run from the CLI
// expects, layered outside the core evaluator through the same
// DefineGlobal/RegisterNativeFunction surface any embedder would use
// (an "external collaborator" boundary for module loading —
// `require` only resolves through whatever ModuleLoader the engine was
// configured with, it never implements resolution itself).
func seedNodeHostGlobals(e *engine.Engine, sourceName string, scriptArgs []string) {
	rt := e.Runtime()

	module := runtime.NewObject(rt.ObjectPrototype)
	exports := runtime.NewObject(rt.ObjectPrototype)
	module.DefineDataProperty("exports", exports, runtime.DefaultDataAttributes)
	e.DefineGlobal("module", module)
	e.DefineGlobal("exports", exports)

	e.RegisterNativeFunction("require", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if len(args) == 0 {
			return runtime.Undefined, ctx.NewTypeError("require expects a module specifier")
		}
		specifier, exc := runtime.ToString(ctx, args[0])
		if exc != nil {
			return runtime.Undefined, exc
		}
		if rt.ModuleLoader == nil {
			return runtime.Undefined, ctx.NewEngineError("require(%q): no module loader configured", string(specifier))
		}
		mod, err := rt.ModuleLoader(string(specifier))
		if err != nil {
			return runtime.Undefined, ctx.NewEngineError("require(%q): %v", string(specifier), err)
		}
		return mod, nil
	})

	argv := make([]runtime.Value, 0, len(scriptArgs)+2)
	argv = append(argv, runtime.String("nimbus"), runtime.String(sourceName))
	for _, a := range scriptArgs {
		argv = append(argv, runtime.String(a))
	}
	process := runtime.NewObject(rt.ObjectPrototype)
	process.DefineDataProperty("argv", runtime.NewArray(rt.ArrayPrototype, argv), runtime.DefaultDataAttributes)
	e.DefineGlobal("process", process)
}
