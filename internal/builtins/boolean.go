package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// installBoolean wires Boolean.prototype's toString/valueOf and the
// Boolean constructor; ECMAScript gives Boolean no methods beyond these two,
// so this file stays deliberately small next to Number/String's larger
// surface.
func installBoolean(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		b, exc := thisBooleanValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if b {
			return runtime.String("true"), nil
		}
		return runtime.String("false"), nil
	})
	nativeMethod(proto, "valueOf", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		b, exc := thisBooleanValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(b), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "Boolean", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.BoolValue(runtime.ToBoolean(arg(args, 0))), nil
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		o := runtime.NewObject(proto)
		o.Class = "Boolean"
		o.Primitive = runtime.BoolValue(runtime.ToBoolean(arg(args, 0)))
		return o, nil
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	defineGlobal(engine, "Boolean", ctor)
}

func thisBooleanValue(ctx *runtime.Context, this runtime.Value) (bool, *runtime.Exception) {
	switch t := this.(type) {
	case runtime.Boolean:
		return bool(t), nil
	case *runtime.Object:
		if b, ok := t.Primitive.(runtime.Boolean); ok {
			return bool(b), nil
		}
	}
	return false, ctx.NewTypeError("Boolean.prototype method called on incompatible receiver")
}
