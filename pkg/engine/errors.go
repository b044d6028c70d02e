package engine

import (
	nimerrors "github.com/nimbus-lang/nimbus/internal/errors"
	"github.com/nimbus-lang/nimbus/internal/runtime"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// ParseError wraps every recoverable lexical/syntax error a script
// produced, formatted with source context and a caret by internal/errors.
// A host distinguishes this from a runtime EvalError to choose its process
// exit code.
type ParseError struct {
	Errors []*nimerrors.CompilerError
}

func (e *ParseError) Error() string {
	return nimerrors.FormatErrors(e.Errors, false)
}

// EvalError reports an uncaught exception that propagated out of a script:
// either a `throw`n value or a host-raised TypeError/RangeError/.../
// EngineError. Kind names the error taxonomy; Value is the thrown value
// itself (an Error instance for host-raised exceptions, anything for a
// user `throw`). Stack is the call chain active when the exception was
// raised, outermost call first, empty if it was raised at the top level.
type EvalError struct {
	Kind    runtime.ErrorKind
	Value   runtime.Value
	Message string
	Stack   nimerrors.StackTrace
}

func (e *EvalError) Error() string {
	if len(e.Stack) == 0 {
		return e.Message
	}
	return e.Message + "\n" + e.Stack.String()
}

// exceptionError converts an in-flight *runtime.Exception into the Go
// error a host-facing method returns, coercing the thrown value to a
// string with the same ToString algorithm the evaluator itself uses (so
// an Error instance renders as "TypeError: message", same as
// Error.prototype.toString, rather than a bare object dump), and
// capturing ctx's call stack at the moment the exception unwound back to
// the top level.
func (e *Engine) exceptionError(ctx *runtime.Context, exc *runtime.Exception) error {
	msg, convExc := runtime.ToString(ctx, exc.Value)
	if convExc != nil {
		msg = runtime.String(exc.Value.String())
	}
	return &EvalError{Kind: exc.Kind, Value: exc.Value, Message: string(msg), Stack: callStack(ctx)}
}

// callStack converts ctx's live call-frame stack into the reporting
// representation internal/errors formats, innermost call last (the order
// StackTrace.String expects to print newest-first).
func callStack(ctx *runtime.Context) nimerrors.StackTrace {
	frames := ctx.Frames()
	if len(frames) == 0 {
		return nil
	}
	trace := make(nimerrors.StackTrace, len(frames))
	for i, f := range frames {
		trace[i] = nimerrors.NewStackFrame(f.FunctionName, "", &token.Position{Line: f.Line, Column: f.Column})
	}
	return trace
}
