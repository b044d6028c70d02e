package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// installFunction wires Function.prototype's call/apply/bind/toString.
// Binding machinery (runtime.BoundFunction) lives in internal/runtime since
// invoking a bound function still has to go through the evaluator's normal
// [[Call]]/[[Construct]] dispatch; this file only builds the closures that
// create one.
func installFunction(engine *runtime.Engine, proto *runtime.Object) {
	nativeMethod(proto, "call", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		fn, ok := this.(*runtime.Object)
		if !ok || !fn.IsCallable() {
			return runtime.Undefined, ctx.NewTypeError("Function.prototype.call called on non-function")
		}
		var thisArg runtime.Value = runtime.Undefined
		var rest []runtime.Value
		if len(args) > 0 {
			thisArg = args[0]
			rest = args[1:]
		}
		return ctx.CallFunction(fn, thisArg, rest)
	})
	nativeMethod(proto, "apply", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		fn, ok := this.(*runtime.Object)
		if !ok || !fn.IsCallable() {
			return runtime.Undefined, ctx.NewTypeError("Function.prototype.apply called on non-function")
		}
		var thisArg runtime.Value = runtime.Undefined
		if len(args) > 0 {
			thisArg = args[0]
		}
		var rest []runtime.Value
		if argList, ok := arg(args, 1).(*runtime.Object); ok {
			n := argList.Length()
			for i := uint32(0); i < n; i++ {
				rest = append(rest, argList.GetElement(i))
			}
		}
		return ctx.CallFunction(fn, thisArg, rest)
	})
	nativeMethod(proto, "bind", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		target, ok := this.(*runtime.Object)
		if !ok || !target.IsCallable() {
			return runtime.Undefined, ctx.NewTypeError("Function.prototype.bind called on non-function")
		}
		var boundThis runtime.Value = runtime.Undefined
		var boundArgs []runtime.Value
		if len(args) > 0 {
			boundThis = args[0]
			boundArgs = append([]runtime.Value(nil), args[1:]...)
		}
		name, _ := target.Get(ctx, "name", target)
		nameStr, _ := runtime.ToString(ctx, name)

		bound := runtime.NewNativeFunction(proto, "bound "+string(nameStr), 0, func(c *runtime.Context, _ runtime.Value, callArgs []runtime.Value) (runtime.Value, *runtime.Exception) {
			return c.CallFunction(target, boundThis, append(append([]runtime.Value(nil), boundArgs...), callArgs...))
		})
		bound.Internal = &runtime.BoundFunction{Target: target, BoundThis: boundThis, BoundArgs: boundArgs}
		if target.Construct != nil {
			bound.Construct = func(c *runtime.Context, callArgs []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
				return target.Construct(c, append(append([]runtime.Value(nil), boundArgs...), callArgs...), newTarget)
			}
		}
		return bound, nil
	})
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		fn, ok := this.(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("Function.prototype.toString called on non-function")
		}
		name, _ := fn.Get(ctx, "name", fn)
		nameStr, _ := runtime.ToString(ctx, name)
		if runtime.AsFunctionValue(fn) == nil {
			return runtime.String("function " + string(nameStr) + "() { [native code] }"), nil
		}
		return runtime.String("function " + string(nameStr) + "() { [script code] }"), nil
	})

	build := func(ctx *runtime.Context, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if ctx.Engine.CompileFunction == nil {
			return runtime.Undefined, ctx.NewEngineError("dynamic Function construction requires the embedding API's eval hook")
		}
		var params []string
		var body string
		if len(args) > 0 {
			b, exc := toStr(ctx, args[len(args)-1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			body = b
			for _, p := range args[:len(args)-1] {
				s, exc := toStr(ctx, p)
				if exc != nil {
					return runtime.Undefined, exc
				}
				params = append(params, s)
			}
		}
		return ctx.Engine.CompileFunction(ctx, params, body)
	}
	ctor := runtime.NewNativeFunction(proto, "Function", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return build(ctx, args)
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		return build(ctx, args)
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	defineGlobal(engine, "Function", ctor)
}
