// Package engine is nimbus's embedding API: the surface a host program
// uses to create an interpreter, run scripts against it, and exchange
// values and native functions with the running script. New(options
// ...Option) builds a ready-to-use engine, Evaluate runs source text, and
// DefineGlobal/RegisterNativeFunction let the host extend the global
// object before or between Evaluate calls.
package engine

import (
	"strings"

	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/builtins"
	nimerrors "github.com/nimbus-lang/nimbus/internal/errors"
	"github.com/nimbus-lang/nimbus/internal/interp"
	"github.com/nimbus-lang/nimbus/internal/parser"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// Engine owns one interpreter's heap: its global object/environment,
// prototype chain, and microtask queue. Scripts evaluated against the same
// Engine share all of that state; spawn a second Engine for an isolated
// sandbox, since nothing here is safe to share across engines or goroutines
// without external synchronization.
type Engine struct {
	rt  *runtime.Engine
	it  *interp.Interpreter
	cfg config
}

type config struct {
	strict        bool
	maxCallDepth  int
	maxIterations int
	moduleLoader  func(specifier string) (*runtime.Object, error)
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithStrict sets the default strict-mode flag every top-level Evaluate
// call starts with; a script's own "use strict" directive prologue can
// still turn strict mode on regardless of this setting.
func WithStrict(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithMaxCallDepth bounds recursive script calls, turning runaway
// recursion into a RangeError instead of a Go stack overflow.
func WithMaxCallDepth(depth int) Option {
	return func(c *config) { c.maxCallDepth = depth }
}

// WithMaxIterations bounds loop iterations per Context, a cooperative
// cancellation knob in place of a true cancellation primitive. Zero selects
// the interpreter's default cap of 10^9.
func WithMaxIterations(n int) Option {
	return func(c *config) { c.maxIterations = n }
}

// WithModuleLoader installs the host's import/require resolver. Module
// loading lives outside the interpreter core; leaving this unset means
// `import`/`require` raise instead of resolving anything.
func WithModuleLoader(loader func(specifier string) (*runtime.Object, error)) Option {
	return func(c *config) { c.moduleLoader = loader }
}

// defaultMaxIterations is a large cap (~10^9) past which an unbounded
// loop throws an engine error rather than hanging the host forever.
const defaultMaxIterations = 1_000_000_000

// New builds an Engine with its full prototype chain, Error hierarchy, and
// global bindings installed (console, Math, JSON, Array/String/Object
// statics, Promise, Symbol, RegExp, Date, ...), ready to Evaluate scripts.
func New(opts ...Option) *Engine {
	cfg := config{maxCallDepth: 2000, maxIterations: defaultMaxIterations}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := runtime.NewEngine()
	// interp.New must run before builtins.Install: Install's Array/String/
	// Generator prototypes wire Symbol.iterator through
	// rt.SetSymbolProperty, which interp.New is what populates.
	it := interp.New(rt)
	builtins.Install(rt)

	if cfg.moduleLoader != nil {
		rt.ModuleLoader = cfg.moduleLoader
	}

	e := &Engine{rt: rt, it: it, cfg: cfg}
	rt.EvalSource = e.evalInScope
	rt.CompileFunction = e.compileFunction
	return e
}

// newContext builds a fresh top-level Context rooted at the global scope,
// carrying this Engine's configured strictness and resource caps.
func (e *Engine) newContext() *runtime.Context {
	ctx := e.it.NewContext()
	ctx.Strict = e.cfg.strict
	ctx.MaxCallDepth = e.cfg.maxCallDepth
	ctx.MaxIterations = e.cfg.maxIterations
	return ctx
}

// parse tokenizes and parses source, returning every recoverable syntax
// error as a single *ParseError rather than a bare *ast.Program on failure.
func (e *Engine) parse(source, sourceName string) (*ast.Program, error) {
	p := parser.NewFromSource(source)
	prog := p.ParseProgram()
	if perrs := p.Errors(); len(perrs) > 0 {
		cerrs := make([]*nimerrors.CompilerError, len(perrs))
		for i, pe := range perrs {
			cerrs[i] = nimerrors.NewCompilerError(pe.Pos, pe.Message, source, sourceName)
		}
		return nil, &ParseError{Errors: cerrs}
	}
	return prog, nil
}

// Evaluate parses and runs source (labeled sourceName for diagnostics)
// against the engine's global scope, returning its completion value. A
// malformed script surfaces as a *ParseError; an uncaught `throw` or
// host-raised exception surfaces as an *EvalError.
func (e *Engine) Evaluate(source, sourceName string) (runtime.Value, error) {
	prog, err := e.parse(source, sourceName)
	if err != nil {
		return runtime.Undefined, err
	}
	ctx := e.newContext()
	v, exc := e.it.EvalProgram(ctx, prog)
	if exc != nil {
		return runtime.Undefined, e.exceptionError(ctx, exc)
	}
	return v, nil
}

// evalInScope backs the global `eval` function: it parses source and runs
// it against ctx's own environment, so `eval` mutates the caller's scope
// the way direct eval does (the indirect-eval distinction is not
// modeled — every eval call here behaves as a direct eval).
func (e *Engine) evalInScope(ctx *runtime.Context, source string) (runtime.Value, *runtime.Exception) {
	prog, err := e.parse(source, "<eval>")
	if err != nil {
		return runtime.Undefined, ctx.NewSyntaxError("%s", err.Error())
	}
	return e.it.EvalProgram(ctx, prog)
}

// compileFunction backs the dynamic `Function(...)` constructor: it wraps
// params/body in a parenthesized function expression and evaluates it
// against a fresh global context, since Function-constructed functions
// always close over the global scope, never the caller's local scope.
func (e *Engine) compileFunction(ctx *runtime.Context, params []string, body string) (*runtime.Object, *runtime.Exception) {
	src := "(function anonymous(" + strings.Join(params, ", ") + ") {\n" + body + "\n})"
	prog, err := e.parse(src, "<function>")
	if err != nil {
		return nil, ctx.NewSyntaxError("%s", err.Error())
	}
	v, exc := e.it.EvalProgram(e.newContext(), prog)
	if exc != nil {
		return nil, exc
	}
	fn, ok := v.(*runtime.Object)
	if !ok || !fn.IsCallable() {
		return nil, ctx.NewEngineError("Function constructor produced a non-function value")
	}
	return fn, nil
}

// DefineGlobal binds name to value in both the global environment (for
// unqualified identifier lookups) and the global object (for
// `globalThis.name`), mirroring internal/builtins' own bootstrap helper.
func (e *Engine) DefineGlobal(name string, value runtime.Value) {
	e.rt.GlobalEnv.DeclareVar(name)
	_, _, _ = e.rt.GlobalEnv.Set(name, value)
	e.rt.GlobalObject.DefineDataProperty(name, value, runtime.PropertyAttributes{Writable: true, Configurable: true})
}

// GetGlobal resolves name in the global environment, reporting whether it
// is bound at all (as opposed to bound-but-undefined).
func (e *Engine) GetGlobal(name string) (runtime.Value, bool) {
	v, ok, _ := e.rt.GlobalEnv.Get(name)
	return v, ok
}

// RegisterNativeFunction defines a global function backed by a Go
// callback. fn receives the Context, `this`, and the argument slice the
// same way every other native method in internal/builtins does, and
// returns a Value or an *Exception for the host to throw into the script.
func (e *Engine) RegisterNativeFunction(name string, length int, fn runtime.CallableFunc) {
	e.DefineGlobal(name, runtime.NewNativeFunction(e.rt.FunctionPrototype, name, length, fn))
}

// CallFunction invokes fn (typically a Value previously returned from
// Evaluate or GetGlobal) with the given `this` and arguments, using a
// fresh top-level Context.
func (e *Engine) CallFunction(fn runtime.Value, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	ctx := e.newContext()
	v, exc := ctx.CallFunction(fn, this, args)
	if exc != nil {
		return runtime.Undefined, e.exceptionError(ctx, exc)
	}
	return v, nil
}

// RunMicrotasks drains the Promise/queueMicrotask job queue, running every
// job (and any jobs those jobs enqueue) until the queue is empty. It
// returns the number of jobs run. Hosts call this after Evaluate to settle
// any Promises the script created, since the engine runs in-process with
// no implicit scheduler of its own.
func (e *Engine) RunMicrotasks() int {
	return e.rt.Microtasks.Drain()
}

// Runtime exposes the underlying *runtime.Engine for callers that need
// lower-level access (constructing Values to pass into RegisterNativeFunction
// callbacks, reaching well-known prototypes). Most hosts never need this.
func (e *Engine) Runtime() *runtime.Engine { return e.rt }
