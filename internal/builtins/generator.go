package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// installGenerator wires Generator.prototype.next/return/throw onto
// runtime.GeneratorState (internal/interp is what actually starts the
// coroutine body when a generator function is called; this file only
// exposes the three ways script code can drive it forward) plus
// Symbol.iterator returning the generator itself, so `for...of` over a
// generator and manual `.next()` driving share one object.
func installGenerator(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "next", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return driveGenerator(ctx, this, func(g *runtime.GeneratorState) (runtime.Value, bool, *runtime.Exception) {
			return g.Next(arg(args, 0))
		})
	})
	nativeMethod(proto, "return", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return driveGenerator(ctx, this, func(g *runtime.GeneratorState) (runtime.Value, bool, *runtime.Exception) {
			return g.ReturnEarly(arg(args, 0))
		})
	})
	nativeMethod(proto, "throw", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return driveGenerator(ctx, this, func(g *runtime.GeneratorState) (runtime.Value, bool, *runtime.Exception) {
			return g.Throw(runtime.NewException(arg(args, 0)))
		})
	})
	engine.SetSymbolProperty(proto, runtime.SymbolIterator, runtime.NewNativeFunction(functionProto, "[Symbol.iterator]", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return this, nil
	}))
}

func driveGenerator(ctx *runtime.Context, this runtime.Value, step func(*runtime.GeneratorState) (runtime.Value, bool, *runtime.Exception)) (runtime.Value, *runtime.Exception) {
	o, ok := this.(*runtime.Object)
	if !ok {
		return runtime.Undefined, ctx.NewTypeError("Generator method called on non-generator")
	}
	g, ok := o.Internal.(*runtime.GeneratorState)
	if !ok {
		return runtime.Undefined, ctx.NewTypeError("Generator method called on non-generator")
	}
	value, done, exc := step(g)
	if exc != nil {
		return runtime.Undefined, exc
	}
	result := runtime.NewObject(ctx.Engine.ObjectPrototype)
	result.DefineDataProperty("value", value, runtime.DefaultDataAttributes)
	result.DefineDataProperty("done", runtime.BoolValue(done), runtime.DefaultDataAttributes)
	return result, nil
}
