package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// installPromise wires the Promise constructor (executor-driven, per
// API), then/catch/finally, and the Promise.resolve/reject/all/race/
// allSettled/any statics, all routed through runtime.PromiseState and
// Engine.Microtasks — the single-threaded microtask-queue model ECMAScript
// substitutes for a real event loop.
func installPromise(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "then", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		p, exc := requirePromise(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		onFulfilled, _ := arg(args, 0).(*runtime.Object)
		onRejected, _ := arg(args, 1).(*runtime.Object)
		result := runtime.NewPromiseObject(engine.PromisePrototype)
		p.Then(engine.Microtasks,
			func(v runtime.Value) { settleReaction(ctx, result, onFulfilled, v, false) },
			func(r runtime.Value) { settleReaction(ctx, result, onRejected, r, true) })
		return result, nil
	})
	nativeMethod(proto, "catch", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		thenFn, exc := ctx.Engine.PromisePrototype.Get(ctx, "then", this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		fn, ok := thenFn.(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("Promise.prototype.catch internal error")
		}
		return ctx.CallFunction(fn, this, []runtime.Value{runtime.Undefined, arg(args, 0)})
	})
	nativeMethod(proto, "finally", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		onFinally, _ := arg(args, 0).(*runtime.Object)
		wrap := func(passthrough runtime.Value, isReject bool) (runtime.Value, *runtime.Exception) {
			if onFinally != nil && onFinally.IsCallable() {
				if _, exc := ctx.CallFunction(onFinally, runtime.Undefined, nil); exc != nil {
					return runtime.Undefined, exc
				}
			}
			if isReject {
				return runtime.Undefined, runtime.NewException(passthrough)
			}
			return passthrough, nil
		}
		onFulfilled := runtime.NewNativeFunction(functionProto, "", 1, func(c *runtime.Context, _ runtime.Value, a []runtime.Value) (runtime.Value, *runtime.Exception) {
			return wrap(arg(a, 0), false)
		})
		onRejected := runtime.NewNativeFunction(functionProto, "", 1, func(c *runtime.Context, _ runtime.Value, a []runtime.Value) (runtime.Value, *runtime.Exception) {
			return wrap(arg(a, 0), true)
		})
		thenFn, exc := ctx.Engine.PromisePrototype.Get(ctx, "then", this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		fn, ok := thenFn.(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("Promise.prototype.finally internal error")
		}
		return ctx.CallFunction(fn, this, []runtime.Value{onFulfilled, onRejected})
	})

	ctor := runtime.NewNativeFunction(functionProto, "Promise", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.Undefined, ctx.NewTypeError("Constructor Promise requires 'new'")
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		executor, ok := arg(args, 0).(*runtime.Object)
		if !ok || !executor.IsCallable() {
			return runtime.Undefined, ctx.NewTypeError("Promise resolver is not a function")
		}
		p := runtime.NewPromiseObject(proto)
		resolveFn := runtime.NewNativeFunction(functionProto, "", 1, func(c *runtime.Context, _ runtime.Value, a []runtime.Value) (runtime.Value, *runtime.Exception) {
			p.Resolve(engine.Microtasks, arg(a, 0))
			return runtime.Undefined, nil
		})
		rejectFn := runtime.NewNativeFunction(functionProto, "", 1, func(c *runtime.Context, _ runtime.Value, a []runtime.Value) (runtime.Value, *runtime.Exception) {
			p.Reject(engine.Microtasks, arg(a, 0))
			return runtime.Undefined, nil
		})
		if _, exc := ctx.CallFunction(executor, runtime.Undefined, []runtime.Value{resolveFn, rejectFn}); exc != nil {
			p.Reject(engine.Microtasks, exc.Value)
		}
		return p, nil
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})

	nativeMethodOn(ctor, functionProto, "resolve", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if p, ok := arg(args, 0).(*runtime.Object); ok && p.Class == "Promise" {
			return p, nil
		}
		p := runtime.NewPromiseObject(proto)
		p.Resolve(engine.Microtasks, arg(args, 0))
		return p, nil
	})
	nativeMethodOn(ctor, functionProto, "reject", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		p := runtime.NewPromiseObject(proto)
		p.Reject(engine.Microtasks, arg(args, 0))
		return p, nil
	})
	nativeMethodOn(ctor, functionProto, "all", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		items, exc := promiseInputList(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		result := runtime.NewPromiseObject(proto)
		results := make([]runtime.Value, len(items))
		remaining := len(items)
		if remaining == 0 {
			result.Resolve(engine.Microtasks, runtime.NewArray(engine.ArrayPrototype, nil))
			return result, nil
		}
		for i, item := range items {
			i := i
			p := toPromise(engine, proto, item)
			p.Then(engine.Microtasks, func(v runtime.Value) {
				results[i] = v
				remaining--
				if remaining == 0 {
					result.Resolve(engine.Microtasks, runtime.NewArray(engine.ArrayPrototype, results))
				}
			}, func(r runtime.Value) {
				result.Reject(engine.Microtasks, r)
			})
		}
		return result, nil
	})
	nativeMethodOn(ctor, functionProto, "allSettled", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		items, exc := promiseInputList(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		result := runtime.NewPromiseObject(proto)
		results := make([]runtime.Value, len(items))
		remaining := len(items)
		if remaining == 0 {
			result.Resolve(engine.Microtasks, runtime.NewArray(engine.ArrayPrototype, nil))
			return result, nil
		}
		settle := func(i int, status string, key string, v runtime.Value) {
			o := runtime.NewObject(engine.ObjectPrototype)
			o.DefineDataProperty("status", runtime.String(status), runtime.DefaultDataAttributes)
			o.DefineDataProperty(key, v, runtime.DefaultDataAttributes)
			results[i] = o
			remaining--
			if remaining == 0 {
				result.Resolve(engine.Microtasks, runtime.NewArray(engine.ArrayPrototype, results))
			}
		}
		for i, item := range items {
			i := i
			p := toPromise(engine, proto, item)
			p.Then(engine.Microtasks,
				func(v runtime.Value) { settle(i, "fulfilled", "value", v) },
				func(r runtime.Value) { settle(i, "rejected", "reason", r) })
		}
		return result, nil
	})
	nativeMethodOn(ctor, functionProto, "race", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		items, exc := promiseInputList(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		result := runtime.NewPromiseObject(proto)
		for _, item := range items {
			p := toPromise(engine, proto, item)
			p.Then(engine.Microtasks,
				func(v runtime.Value) { result.Resolve(engine.Microtasks, v) },
				func(r runtime.Value) { result.Reject(engine.Microtasks, r) })
		}
		return result, nil
	})
	nativeMethodOn(ctor, functionProto, "any", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		items, exc := promiseInputList(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		result := runtime.NewPromiseObject(proto)
		errors := make([]runtime.Value, len(items))
		remaining := len(items)
		if remaining == 0 {
			result.Reject(engine.Microtasks, runtime.String("All promises were rejected"))
			return result, nil
		}
		for i, item := range items {
			i := i
			p := toPromise(engine, proto, item)
			p.Then(engine.Microtasks,
				func(v runtime.Value) { result.Resolve(engine.Microtasks, v) },
				func(r runtime.Value) {
					errors[i] = r
					remaining--
					if remaining == 0 {
						agg := runtime.NewObject(engine.ErrorPrototypes[runtime.KindUserError])
						agg.DefineDataProperty("errors", runtime.NewArray(engine.ArrayPrototype, errors), runtime.DefaultDataAttributes)
						agg.DefineDataProperty("message", runtime.String("All promises were rejected"), runtime.DefaultDataAttributes)
						result.Reject(engine.Microtasks, agg)
					}
				})
		}
		return result, nil
	})
	defineGlobal(engine, "Promise", ctor)
}

func requirePromise(ctx *runtime.Context, this runtime.Value) (*runtime.Object, *runtime.Exception) {
	o, ok := this.(*runtime.Object)
	if !ok || o.Class != "Promise" {
		return nil, ctx.NewTypeError("Promise.prototype method called on non-Promise")
	}
	return o, nil
}

func toPromise(engine *runtime.Engine, proto *runtime.Object, v runtime.Value) *runtime.Object {
	if p, ok := v.(*runtime.Object); ok && p.Class == "Promise" {
		return p
	}
	p := runtime.NewPromiseObject(proto)
	p.Resolve(engine.Microtasks, v)
	return p
}

func promiseInputList(ctx *runtime.Context, v runtime.Value) ([]runtime.Value, *runtime.Exception) {
	o, ok := v.(*runtime.Object)
	if !ok {
		return nil, ctx.NewTypeError("Promise combinator argument must be iterable")
	}
	if o.IsArray() {
		return o.Elements(), nil
	}
	lenVal, exc := o.Get(ctx, "length", o)
	if exc != nil {
		return nil, exc
	}
	n, exc := runtime.ToIntegerOrInfinity(ctx, lenVal)
	if exc != nil {
		return nil, exc
	}
	out := make([]runtime.Value, 0, int(n))
	for i := 0; i < int(n); i++ {
		item, exc := o.Get(ctx, runtime.Number(i).String(), o)
		if exc != nil {
			return nil, exc
		}
		out = append(out, item)
	}
	return out, nil
}

// settleReaction implements one arm of Promise.prototype.then: if a
// handler is present, call it and chain result's settlement to the
// returned value; otherwise propagate v/r through unchanged.
func settleReaction(ctx *runtime.Context, result *runtime.Object, handler *runtime.Object, v runtime.Value, isRejection bool) {
	if handler == nil || !handler.IsCallable() {
		if isRejection {
			result.Reject(ctx.Engine.Microtasks, v)
		} else {
			result.Resolve(ctx.Engine.Microtasks, v)
		}
		return
	}
	r, exc := ctx.CallFunction(handler, runtime.Undefined, []runtime.Value{v})
	if exc != nil {
		result.Reject(ctx.Engine.Microtasks, exc.Value)
		return
	}
	result.Resolve(ctx.Engine.Microtasks, r)
}
