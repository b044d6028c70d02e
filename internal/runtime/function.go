package runtime

import "github.com/nimbus-lang/nimbus/internal/ast"

// ParamDescriptor describes one formal parameter: a plain binding, a
// destructuring pattern, a default expression, or a rest parameter.
type ParamDescriptor struct {
	Pattern ast.Pattern // Identifier for a plain name, Object/ArrayPattern for destructuring
	Default ast.Expression // nil if no default
	Rest    bool
}

// FunctionValue is the payload behind a function Object's Internal field
// for script-defined (non-native) functions: the closure environment, the
// parameter list, and the flags that change call semantics (arrow
// functions skip their own this/arguments binding; generators run as
// coroutines; strict functions reject sloppy-mode forgiveness).
type FunctionValue struct {
	Name       string
	Params     []ParamDescriptor
	Body       *ast.BlockStatement
	ExprBody   ast.Expression // set instead of Body for concise arrow bodies
	Closure    *Environment
	Strict     bool
	IsArrow    bool
	IsGenerator bool
	IsAsync    bool
	IsClassConstructor bool
	HomeObject *Object // [[HomeObject]], used to resolve `super` inside methods

	// For arrow functions, This/NewTarget are captured at creation time
	// instead of being rebound per call.
	This      Value
	NewTarget *Object
}

// BoundFunction is the payload for Function.prototype.bind results.
type BoundFunction struct {
	Target    *Object
	BoundThis Value
	BoundArgs []Value
}

// NewFunctionObject wraps fn in a callable Object whose [[Call]] (and,
// unless fn is an arrow/generator-incompatible shape, [[Construct]])
// dispatch through invoke, which the interp package supplies since only it
// can execute a function body against the AST.
func NewFunctionObject(proto *Object, fn *FunctionValue, invoke CallableFunc, construct ConstructFunc) *Object {
	o := &Object{
		shape:      RootShape,
		prototype:  proto,
		Class:      "Function",
		Extensible: true,
		Call:       invoke,
		Construct:  construct,
		Internal:   fn,
	}
	return o
}

// NewNativeFunction wraps a Go-implemented builtin in a callable Object.
// Native functions have no FunctionValue; Internal is left nil and the
// closure captured by impl carries whatever state the builtin needs.
func NewNativeFunction(proto *Object, name string, length int, impl CallableFunc) *Object {
	o := &Object{
		shape:      RootShape,
		prototype:  proto,
		Class:      "Function",
		Extensible: true,
		Call:       impl,
	}
	o.DefineDataProperty("name", String(name), PropertyAttributes{Configurable: true})
	o.DefineDataProperty("length", Number(length), PropertyAttributes{Configurable: true})
	return o
}

// AsFunctionValue returns o's FunctionValue payload, or nil if o is a
// native function, a bound function, or not callable at all.
func AsFunctionValue(o *Object) *FunctionValue {
	fn, _ := o.Internal.(*FunctionValue)
	return fn
}
