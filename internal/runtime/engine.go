package runtime

// ErrorFactoryFunc builds a properly-prototyped Error instance (TypeError,
// RangeError, ...) for host-raised exceptions. internal/builtins installs
// this at startup once it has built the Error.prototype chain; runtime
// itself only knows how to format the fallback plain-string exception
// used before that wiring exists (e.g. while bootstrapping globals).
type ErrorFactoryFunc func(kind ErrorKind, format string, args ...interface{}) Value

// Engine is the shared, long-lived state behind every Evaluate call: the
// global object/environment, the microtask queue driving Promise
// resolution, and the error-construction hook above. internal/interp's
// evaluator and pkg/engine's embedding API both hold a *Engine; this type
// stays dependency-free so internal/runtime never imports either of them.
type Engine struct {
	GlobalObject *Object
	GlobalEnv    *Environment

	ErrorFactory ErrorFactoryFunc

	// SymbolPropertyLookup resolves a well-known/user symbol-keyed
	// property on an object (Symbol.iterator, Symbol.toPrimitive, ...).
	// internal/interp owns the actual symbol-property side table and
	// installs this hook at startup; it returns (Undefined, nil) for "no
	// such property" rather than a bool, since Undefined is itself a
	// legal stored value.
	SymbolPropertyLookup func(o *Object, sym *Symbol) (Value, *Exception)

	// SetSymbolProperty mirrors SymbolPropertyLookup for writes (used by
	// `obj[Symbol.iterator] = fn` and class/object-literal computed-symbol
	// members). Left nil means symbol-keyed writes are silently dropped,
	// which only happens before internal/interp has installed its side
	// table during early bootstrap.
	SetSymbolProperty func(o *Object, sym *Symbol, value Value)

	Microtasks *MicrotaskQueue

	// NextSymbolID seeds an incrementing counter consulted by debug
	// printers that want a stable, human-readable Symbol label
	// (`Symbol(foo)#3`) without using identity-hash tricks.
	NextSymbolID int

	// Well-known prototypes, installed by internal/builtins' Install during
	// bootstrap and consulted by internal/interp when it allocates a new
	// object/array/function/generator/promise so every value is born with
	// the right prototype chain without interp hard-depending on builtins.
	ObjectPrototype    *Object
	FunctionPrototype  *Object
	ArrayPrototype     *Object
	StringPrototype    *Object
	NumberPrototype    *Object
	BooleanPrototype   *Object
	SymbolPrototype    *Object
	BigIntPrototype    *Object
	GeneratorPrototype *Object
	PromisePrototype   *Object
	RegExpPrototype    *Object
	DatePrototype      *Object

	// ModuleLoader resolves an import/require source specifier to a module
	// namespace-like Object. Module loading is an external collaborator
	// lives outside the interpreter core; it only calls this hook, never implements
	// resolution itself. Left nil means `import`/`require` raise.
	ModuleLoader func(specifier string) (*Object, error)

	// ErrorPrototypes maps each error kind's name ("Error", "TypeError",
	// "RangeError", "ReferenceError", "SyntaxError", "EvalError",
	// "URIError") to its constructor's `.prototype` object, consulted by
	// ErrorFactory so a host-raised TypeError is `instanceof TypeError`.
	ErrorPrototypes map[ErrorKind]*Object

	// EvalSource compiles and runs source text against ctx's current scope,
	// backing the global `eval` function. pkg/engine installs this once it
	// has wired the lexer/parser/interpreter together; internal/runtime and
	// internal/interp never depend on those packages directly, so direct
	// eval is unavailable until the embedding API finishes bootstrapping.
	EvalSource func(ctx *Context, source string) (Value, *Exception)

	// CompileFunction parses params and body into a callable Object, backing
	// the dynamic `Function(...)` constructor. Installed by pkg/engine for
	// the same reason as EvalSource.
	CompileFunction func(ctx *Context, params []string, body string) (*Object, *Exception)
}

// NewEngine allocates an Engine with an empty microtask queue. Callers
// (pkg/engine.New) populate GlobalObject/GlobalEnv/ErrorFactory during
// bootstrap.
func NewEngine() *Engine {
	return &Engine{Microtasks: NewMicrotaskQueue()}
}
