// Package builtins installs the host-provided global surface a script
// sees: console, Math, JSON, the Array/String/Object prototypes, Promise,
// Symbol, RegExp, Date, and the Error hierarchy. It depends only on
// internal/runtime (for the value/object model); callbacks into script
// code go through runtime.Context.CallFunction, so neither this package
// nor internal/interp imports the other and internal/interp stays
// ignorant of which concrete builtins exist.
package builtins

import (
	"math"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// arg returns args[i], or Undefined if the call was given fewer arguments
// than the builtin's arity — every built-in method call goes through this
// rather than panicking on a short args slice.
func arg(args []runtime.Value, i int) runtime.Value {
	if i < 0 || i >= len(args) {
		return runtime.Undefined
	}
	return args[i]
}

// toStr is a small ToString wrapper so call sites read `toStr(ctx, v)`
// instead of unpacking the (String, *Exception) pair inline.
func toStr(ctx *runtime.Context, v runtime.Value) (string, *runtime.Exception) {
	s, exc := runtime.ToString(ctx, v)
	return string(s), exc
}

// toInt clamps ToIntegerOrInfinity's float64 result into a plain Go int,
// saturating at the platform int range — used for array/string indices
// where ECMAScript arithmetic is defined over doubles but Go slices need int.
func toInt(ctx *runtime.Context, v runtime.Value) (int, *runtime.Exception) {
	f, exc := runtime.ToIntegerOrInfinity(ctx, v)
	if exc != nil {
		return 0, exc
	}
	return clampInt(f), nil
}

func clampInt(f float64) int {
	const maxInt = int(^uint(0) >> 1)
	if math.IsInf(f, 1) || f > float64(maxInt) {
		return maxInt
	}
	if math.IsInf(f, -1) || f < float64(-maxInt-1) {
		return -maxInt - 1
	}
	return int(f)
}

// relativeIndex resolves a possibly-negative `start`/`end`-style argument
// (as used by slice/splice/substring-family methods) against length,
// clamping into [0, length].
func relativeIndex(f float64, length int) int {
	if f < 0 {
		f = math.Max(float64(length)+f, 0)
	}
	if f > float64(length) {
		f = float64(length)
	}
	return int(f)
}

// nativeMethod installs a native function as a non-enumerable own property
// of proto, matching how prototype methods are never enumerable
// (so `for...in`/`Object.keys` on an instance doesn't surface them).
func nativeMethod(proto *runtime.Object, name string, length int, fn runtime.CallableFunc) {
	f := runtime.NewNativeFunction(proto.Prototype(), name, length, fn)
	proto.DefineDataProperty(name, f, runtime.PropertyAttributes{Writable: true, Configurable: true})
}

// nativeMethodOn is nativeMethod but lets the caller pass the function's own
// prototype explicitly (used before FunctionPrototype exists yet, during
// bootstrap, and for statics hung off a constructor rather than a
// `.prototype` object).
func nativeMethodOn(target *runtime.Object, funcProto *runtime.Object, name string, length int, fn runtime.CallableFunc) *runtime.Object {
	f := runtime.NewNativeFunction(funcProto, name, length, fn)
	target.DefineDataProperty(name, f, runtime.PropertyAttributes{Writable: true, Configurable: true})
	return f
}

// accessor installs a getter-only accessor property (used for lazily
// computed, read-only members like Array.prototype.length would be if it
// weren't handled specially by the element-storage layer — used here for
// things like RegExp.prototype.source).
func accessor(proto *runtime.Object, name string, funcProto *runtime.Object, get runtime.CallableFunc) {
	getter := runtime.NewNativeFunction(funcProto, "get "+name, 0, get)
	proto.DefineAccessorProperty(name, getter, nil, runtime.PropertyAttributes{Configurable: true})
}

// defineGlobal binds name in both the global environment (so unqualified
// identifier lookups resolve it) and the global object (so `globalThis.name`
// and host `get_global`/`define_global` calls see it too).
func defineGlobal(engine *runtime.Engine, name string, value runtime.Value) {
	engine.GlobalEnv.DeclareVar(name)
	_, _, _ = engine.GlobalEnv.Set(name, value)
	engine.GlobalObject.DefineDataProperty(name, value, runtime.PropertyAttributes{Writable: true, Configurable: true})
}

// requireObject raises a TypeError unless v is an *Object, for methods that
// operate on object-only operands (Object.keys, Object.freeze, ...).
func requireObject(ctx *runtime.Context, v runtime.Value, who string) (*runtime.Object, *runtime.Exception) {
	o, ok := v.(*runtime.Object)
	if !ok {
		return nil, ctx.NewTypeError("%s called on non-object", who)
	}
	return o, nil
}

// thisObject boxes a primitive `this` (so `"abc".length` works) or passes an
// object through, the shared first step of nearly every prototype method.
func thisObject(ctx *runtime.Context, this runtime.Value) (*runtime.Object, *runtime.Exception) {
	if runtime.IsNullOrUndefined(this) {
		return nil, ctx.NewTypeError("this is not an object")
	}
	return runtime.ToObject(ctx, this)
}
