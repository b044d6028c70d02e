package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// paramDescriptors converts the parser's raw Param patterns into the
// runtime's ParamDescriptor list, splitting out defaults and the trailing
// rest parameter the way the call-binding step (bindParams) expects.
func paramDescriptors(params []ast.Param) []runtime.ParamDescriptor {
	out := make([]runtime.ParamDescriptor, 0, len(params))
	for _, p := range params {
		switch n := p.(type) {
		case *ast.RestElement:
			out = append(out, runtime.ParamDescriptor{Pattern: n.Argument, Rest: true})
		case *ast.AssignmentPattern:
			out = append(out, runtime.ParamDescriptor{Pattern: n.Target, Default: n.Default})
		default:
			out = append(out, runtime.ParamDescriptor{Pattern: n})
		}
	}
	return out
}

func countExpectedArgs(params []ast.Param) int {
	n := 0
	for _, p := range params {
		switch p.(type) {
		case *ast.RestElement, *ast.AssignmentPattern:
			return n
		default:
			n++
		}
	}
	return n
}

// makeFunction builds the callable Object for a function declaration or
// function expression, closing over env. Object-literal and class methods
// build their FunctionValue in their own evaluators instead.
func (it *Interpreter) makeFunction(ctx *runtime.Context, fn *ast.FunctionLiteral, env *runtime.Environment) runtime.Value {
	fnVal := &runtime.FunctionValue{
		Name:        fn.Name,
		Params:      paramDescriptors(fn.Params),
		Body:        fn.Body,
		Closure:     env,
		Strict:      fn.Strict || ctx.Strict,
		IsGenerator: fn.IsGenerator,
		IsAsync:     fn.IsAsync,
	}
	return it.wrapFunction(fn.Name, countExpectedArgs(fn.Params), fnVal, !fn.IsGenerator && !fn.IsAsync)
}

// makeArrowFunction builds an arrow function's Object, capturing `this`,
// `new.target`, and (since arrows have no `arguments` of their own) letting
// lookups of `arguments` fall through to the enclosing function's binding.
func (it *Interpreter) makeArrowFunction(ctx *runtime.Context, fn *ast.ArrowFunctionExpression, env *runtime.Environment) runtime.Value {
	fnVal := &runtime.FunctionValue{
		Params:   paramDescriptors(fn.Params),
		Closure:  env,
		Strict:   fn.Strict || ctx.Strict,
		IsArrow:  true,
		IsAsync:  fn.IsAsync,
		This:     ctx.This,
		NewTarget: ctx.NewTarget,
	}
	if fn.ExpressionBody {
		fnVal.ExprBody = fn.Body.(ast.Expression)
	} else {
		fnVal.Body = fn.Body.(*ast.BlockStatement)
	}
	return it.wrapFunction("", countExpectedArgs(fn.Params), fnVal, false)
}

func (it *Interpreter) wrapFunction(name string, length int, fnVal *runtime.FunctionValue, constructible bool) *runtime.Object {
	var obj *runtime.Object
	obj = runtime.NewFunctionObject(it.Engine.FunctionPrototype, fnVal,
		func(c *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
			return it.invoke(c, obj, fnVal, this, args, nil)
		},
		func(c *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
			if !constructible {
				return runtime.Undefined, c.NewTypeError("%s is not a constructor", describeFunc(name))
			}
			return it.construct(c, obj, fnVal, args, newTarget)
		})
	obj.DefineDataProperty("name", runtime.String(name), runtime.PropertyAttributes{Configurable: true})
	obj.DefineDataProperty("length", runtime.Number(length), runtime.PropertyAttributes{Configurable: true})
	if constructible && !fnVal.IsArrow {
		proto := runtime.NewObject(it.Engine.ObjectPrototype)
		proto.DefineDataProperty("constructor", obj, runtime.PropertyAttributes{Writable: true, Configurable: true})
		obj.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{Writable: true})
	}
	if fnVal.IsGenerator {
		proto := runtime.NewObject(it.Engine.GeneratorPrototype)
		obj.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{Writable: true})
	}
	return obj
}

func describeFunc(name string) string {
	if name == "" {
		return "function"
	}
	return name
}

// invoke runs fnVal's body as an ordinary (or generator/async) call,
// implementing the call protocol: a fresh function-scope
// environment, parameter binding, `this`/`arguments` setup, then either
// straight-line execution or coroutine dispatch for generator/async bodies.
func (it *Interpreter) invoke(ctx *runtime.Context, fnObj *runtime.Object, fnVal *runtime.FunctionValue, this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
	if ctx.CallDepth >= ctx.MaxCallDepth {
		return runtime.Undefined, ctx.NewRangeError("Maximum call stack size exceeded")
	}

	if fnVal.IsArrow {
		this = fnVal.This
		newTarget = fnVal.NewTarget
	}

	callEnv := runtime.NewEnvironment(fnVal.Closure)
	callEnv.IsFunctionScope = true
	callCtx := ctx.Child(callEnv, this, newTarget, fnVal.Strict)

	if !fnVal.IsArrow {
		callCtx.Env.DeclareVar("arguments")
		_, _, _ = callCtx.Env.Set("arguments", it.makeArgumentsObject(args, fnObj))
	}

	if exc := it.bindParams(callCtx, fnVal.Params, args); exc != nil {
		return runtime.Undefined, exc
	}

	if fnVal.IsGenerator {
		return it.invokeGenerator(callCtx, fnVal), nil
	}
	if fnVal.IsAsync {
		return it.invokeAsync(callCtx, fnVal), nil
	}
	return it.runBody(callCtx, fnVal)
}

// runBody executes a non-generator, non-async function body to completion,
// returning its completion value (Undefined unless a `return` fired).
func (it *Interpreter) runBody(ctx *runtime.Context, fnVal *runtime.FunctionValue) (runtime.Value, *runtime.Exception) {
	if fnVal.ExprBody != nil {
		v, exc := it.evalExpression(ctx, fnVal.ExprBody)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return v, nil
	}
	it.hoist(ctx, fnVal.Body.Body, ctx.Env, true)
	for _, s := range fnVal.Body.Body {
		it.execStatement(ctx, s)
		if ctx.Signal == runtime.SignalReturn {
			v := ctx.ReturnValue
			ctx.ClearSignal()
			return v, nil
		}
		if ctx.Signal == runtime.SignalThrow {
			exc := ctx.Exception
			ctx.ClearSignal()
			return runtime.Undefined, exc
		}
		if ctx.Signal != runtime.SignalNone {
			ctx.ClearSignal()
		}
	}
	return runtime.Undefined, nil
}

// invokeGenerator returns a fresh Generator object whose GeneratorState body
// is the function body itself; execution is lazy, starting only on the
// first next() call (runtime.GeneratorState.Start's contract).
func (it *Interpreter) invokeGenerator(ctx *runtime.Context, fnVal *runtime.FunctionValue) runtime.Value {
	genObj := runtime.NewGeneratorObject(it.Engine.GeneratorPrototype)
	state := genObj.Internal.(*runtime.GeneratorState)
	ctx.InGenerator = true

	state.Start(func(yield func(runtime.Value) runtime.ResumeSignal) (runtime.Value, *runtime.Exception) {
		ctx.Suspend = yield
		return it.runBody(ctx, fnVal)
	})
	return genObj
}

// invokeAsync drives fnVal's body on its own coroutine exactly like a
// generator, except the consumer is the microtask queue rather than
// explicit next() calls: each `await` suspends the coroutine, and the
// driver resumes it once the awaited value's promise settles.
func (it *Interpreter) invokeAsync(ctx *runtime.Context, fnVal *runtime.FunctionValue) runtime.Value {
	promise := runtime.NewPromiseObject(it.Engine.PromisePrototype)
	state := runtime.NewGeneratorState()
	ctx.InAsync = true

	state.Start(func(yield func(runtime.Value) runtime.ResumeSignal) (runtime.Value, *runtime.Exception) {
		ctx.Suspend = yield
		return it.runBody(ctx, fnVal)
	})

	queue := it.Engine.Microtasks
	var step func(kind runtime.ResumeKind, value runtime.Value, exc *runtime.Exception)
	step = func(kind runtime.ResumeKind, value runtime.Value, exc *runtime.Exception) {
		out := state.Resume(kind, value, exc)
		if out.Done {
			if out.Exc != nil {
				promise.Reject(queue, out.Exc.Value)
			} else {
				promise.Resolve(queue, out.Value)
			}
			return
		}
		awaited := it.promiseResolveValue(ctx, out.Value)
		awaited.Then(queue,
			func(v runtime.Value) { step(runtime.ResumeNext, v, nil) },
			func(r runtime.Value) { step(runtime.ResumeThrow, runtime.Undefined, runtime.NewException(r)) })
	}
	step(runtime.ResumeNext, runtime.Undefined, nil)
	return promise
}

// promiseResolveValue wraps v in an already-settled Promise unless it is
// already one, matching `Promise.resolve`'s behavior for await's operand.
func (it *Interpreter) promiseResolveValue(ctx *runtime.Context, v runtime.Value) *runtime.Object {
	if p, ok := v.(*runtime.Object); ok && p.Class == "Promise" {
		return p
	}
	p := runtime.NewPromiseObject(it.Engine.PromisePrototype)
	p.Resolve(it.Engine.Microtasks, v)
	return p
}

// construct implements [[Construct]] for a script function: a fresh object
// with the function's `.prototype` as its own prototype, `this` bound to
// it, and (unless the body explicitly returns an object) that object as the
// result (OrdinaryCreateFromConstructor + invoke).
func (it *Interpreter) construct(ctx *runtime.Context, fnObj *runtime.Object, fnVal *runtime.FunctionValue, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
	if fnVal.IsClassConstructor && fnVal.HomeObject != nil {
		return it.constructClassInstance(ctx, fnObj, fnVal, args, newTarget)
	}

	protoVal, exc := fnObj.Get(ctx, "prototype", fnObj)
	if exc != nil {
		return runtime.Undefined, exc
	}
	proto, _ := protoVal.(*runtime.Object)
	if proto == nil {
		proto = it.Engine.ObjectPrototype
	}
	inst := runtime.NewObject(proto)

	result, exc := it.invoke(ctx, fnObj, fnVal, inst, args, newTarget)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if obj, ok := result.(*runtime.Object); ok {
		return obj, nil
	}
	return inst, nil
}

// makeArgumentsObject builds a non-strict-sloppy-enough arguments object: an
// ordinary Array-like (not a live mapped-arguments exotic object, which
// scopes that mapping behavior out as a non-goal) carrying `length` and
// indexed elements plus `callee`.
func (it *Interpreter) makeArgumentsObject(args []runtime.Value, callee *runtime.Object) *runtime.Object {
	obj := runtime.NewObject(it.Engine.ObjectPrototype)
	obj.Class = "Arguments"
	for i, a := range args {
		obj.DefineDataProperty(runtime.Number(i).String(), a, runtime.DefaultDataAttributes)
	}
	obj.DefineDataProperty("length", runtime.Number(len(args)), runtime.PropertyAttributes{Writable: true, Configurable: true})
	obj.DefineDataProperty("callee", callee, runtime.PropertyAttributes{Writable: true, Configurable: true})
	return obj
}

// bindParams destructures args into callCtx.Env per fnVal's parameter
// descriptors, applying defaults for missing/undefined arguments and
// collecting the rest parameter.
func (it *Interpreter) bindParams(ctx *runtime.Context, params []runtime.ParamDescriptor, args []runtime.Value) *runtime.Exception {
	for i, p := range params {
		if p.Rest {
			var rest []runtime.Value
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			arr := runtime.NewArray(it.Engine.ArrayPrototype, rest)
			if exc := it.bindAstPattern(ctx, p.Pattern, arr); exc != nil {
				return exc
			}
			return nil
		}
		var v runtime.Value = runtime.Undefined
		if i < len(args) {
			v = args[i]
		}
		if v == runtime.Undefined && p.Default != nil {
			dv, exc := it.evalExpression(ctx, p.Default)
			if exc != nil {
				return exc
			}
			v = dv
		}
		if exc := it.bindAstPattern(ctx, p.Pattern, v); exc != nil {
			return exc
		}
	}
	return nil
}

// bindAstPattern declares each name within pattern p as a fresh `let`-like
// binding in ctx.Env holding (a destructured view of) value — the shape
// parameter binding needs, distinct from bindPattern's var/let/const
// dispatch since parameters are always simple declarative bindings.
func (it *Interpreter) bindAstPattern(ctx *runtime.Context, p ast.Pattern, value runtime.Value) *runtime.Exception {
	for _, name := range patternNames(p) {
		ctx.Env.DeclareLexical(name, true)
	}
	return it.bindPattern(ctx, p, value, ast.DeclLet)
}

// toObject delegates to runtime.ToObject; kept as a method so call sites
// elsewhere in this package don't need to thread ctx.Engine explicitly.
func (it *Interpreter) toObject(ctx *runtime.Context, v runtime.Value) (*runtime.Object, *runtime.Exception) {
	return runtime.ToObject(ctx, v)
}
