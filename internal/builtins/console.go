package builtins

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installConsole wires console.log/info/warn/error/debug, coloring
// warn/error the way a terminal host environment would (fatih/color,
// shared with cmd/nimbus's CLI output) and falling back to plain text
// when stdout isn't a TTY, which color.NoColor already detects.
func installConsole(engine *runtime.Engine, functionProto *runtime.Object) {
	c := runtime.NewObject(engine.ObjectPrototype)

	logFn := func(w *os.File, colorize func(format string, a ...interface{}) string) runtime.CallableFunc {
		return func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
			parts := make([]string, len(args))
			for i, a := range args {
				s, exc := consoleFormat(ctx, a)
				if exc != nil {
					return runtime.Undefined, exc
				}
				parts[i] = s
			}
			line := strings.Join(parts, " ")
			if colorize != nil {
				line = colorize("%s", line)
			}
			fmt.Fprintln(w, line)
			return runtime.Undefined, nil
		}
	}

	nativeMethodOn(c, functionProto, "log", 0, logFn(os.Stdout, nil))
	nativeMethodOn(c, functionProto, "info", 0, logFn(os.Stdout, color.CyanString))
	nativeMethodOn(c, functionProto, "debug", 0, logFn(os.Stdout, color.HiBlackString))
	nativeMethodOn(c, functionProto, "warn", 0, logFn(os.Stderr, color.YellowString))
	nativeMethodOn(c, functionProto, "error", 0, logFn(os.Stderr, color.RedString))

	defineGlobal(engine, "console", c)
}

// consoleFormat renders a value the way console.log does: strings print
// without surrounding quotes; a non-callable object prints as the string
// its toString method returns (plain objects and arrays therefore print in
// Object.prototype.toString's "[object Tag]" form); every other value, and
// an object whose toString throws or returns a non-string, uses the
// value's String() form.
func consoleFormat(ctx *runtime.Context, v runtime.Value) (string, *runtime.Exception) {
	if s, ok := v.(runtime.String); ok {
		return string(s), nil
	}
	if o, ok := v.(*runtime.Object); ok && !o.IsCallable() {
		if toString, exc := o.Get(ctx, "toString", o); exc == nil {
			if fn, ok := toString.(*runtime.Object); ok && fn.IsCallable() {
				r, exc := ctx.CallFunction(fn, o, nil)
				if exc == nil {
					if s, ok := r.(runtime.String); ok {
						return string(s), nil
					}
				}
			}
		}
	}
	return v.String(), nil
}
