package builtins

import (
	"math"
	"strconv"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installNumber wires Number.prototype's toFixed/toPrecision/toString(radix)
// and the Number constructor's statics (isInteger/isFinite/isNaN/isSafeInteger
// plus the MAX_SAFE_INTEGER family of constants).
func installNumber(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "toString", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := thisNumberValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		radix := 10
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			radix, exc = toInt(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
		}
		if radix < 2 || radix > 36 {
			return runtime.Undefined, ctx.NewRangeError("toString() radix must be between 2 and 36")
		}
		if radix == 10 {
			return runtime.String(n.String()), nil
		}
		f := float64(n)
		if math.IsNaN(f) {
			return runtime.String("NaN"), nil
		}
		neg := f < 0
		if neg {
			f = -f
		}
		s := strconv.FormatInt(int64(f), radix)
		if neg {
			s = "-" + s
		}
		return runtime.String(s), nil
	})
	nativeMethod(proto, "valueOf", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := thisNumberValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return n, nil
	})
	nativeMethod(proto, "toFixed", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := thisNumberValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		digits := 0
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			digits, exc = toInt(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
		}
		if digits < 0 || digits > 100 {
			return runtime.Undefined, ctx.NewRangeError("toFixed() digits argument must be between 0 and 100")
		}
		f := float64(n)
		if math.IsNaN(f) {
			return runtime.String("NaN"), nil
		}
		return runtime.String(strconv.FormatFloat(f, 'f', digits, 64)), nil
	})
	nativeMethod(proto, "toPrecision", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := thisNumberValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if len(args) == 0 || arg(args, 0) == runtime.Undefined {
			return runtime.String(n.String()), nil
		}
		precision, exc := toInt(ctx, args[0])
		if exc != nil {
			return runtime.Undefined, exc
		}
		f := float64(n)
		if math.IsNaN(f) {
			return runtime.String("NaN"), nil
		}
		return runtime.String(strconv.FormatFloat(f, 'g', precision, 64)), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "Number", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if len(args) == 0 {
			return runtime.Number(0), nil
		}
		n, exc := runtime.ToNumber(ctx, args[0])
		if exc != nil {
			return runtime.Undefined, exc
		}
		return n, nil
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		var n runtime.Number
		if len(args) > 0 {
			var exc *runtime.Exception
			n, exc = runtime.ToNumber(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
		}
		o := runtime.NewObject(proto)
		o.Class = "Number"
		o.Primitive = n
		return o, nil
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})

	ctor.DefineDataProperty("MAX_SAFE_INTEGER", runtime.Number(9007199254740991), runtime.PropertyAttributes{})
	ctor.DefineDataProperty("MIN_SAFE_INTEGER", runtime.Number(-9007199254740991), runtime.PropertyAttributes{})
	ctor.DefineDataProperty("MAX_VALUE", runtime.Number(math.MaxFloat64), runtime.PropertyAttributes{})
	ctor.DefineDataProperty("MIN_VALUE", runtime.Number(5e-324), runtime.PropertyAttributes{})
	ctor.DefineDataProperty("EPSILON", runtime.Number(2.220446049250313e-16), runtime.PropertyAttributes{})
	ctor.DefineDataProperty("POSITIVE_INFINITY", runtime.PosInf, runtime.PropertyAttributes{})
	ctor.DefineDataProperty("NEGATIVE_INFINITY", runtime.NegInf, runtime.PropertyAttributes{})
	ctor.DefineDataProperty("NaN", runtime.NaN, runtime.PropertyAttributes{})

	nativeMethodOn(ctor, functionProto, "isInteger", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, ok := arg(args, 0).(runtime.Number)
		if !ok {
			return runtime.False, nil
		}
		f := float64(n)
		return runtime.BoolValue(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)), nil
	})
	nativeMethodOn(ctor, functionProto, "isSafeInteger", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, ok := arg(args, 0).(runtime.Number)
		if !ok {
			return runtime.False, nil
		}
		f := float64(n)
		return runtime.BoolValue(!math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f) && math.Abs(f) <= 9007199254740991), nil
	})
	nativeMethodOn(ctor, functionProto, "isFinite", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, ok := arg(args, 0).(runtime.Number)
		if !ok {
			return runtime.False, nil
		}
		f := float64(n)
		return runtime.BoolValue(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	})
	nativeMethodOn(ctor, functionProto, "isNaN", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, ok := arg(args, 0).(runtime.Number)
		if !ok {
			return runtime.False, nil
		}
		return runtime.BoolValue(math.IsNaN(float64(n))), nil
	})
	nativeMethodOn(ctor, functionProto, "parseFloat", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(parseFloatString(s)), nil
	})
	nativeMethodOn(ctor, functionProto, "parseInt", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		radix, exc := toInt(ctx, arg(args, 1))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(parseIntString(s, radix)), nil
	})
	defineGlobal(engine, "Number", ctor)
}

func thisNumberValue(ctx *runtime.Context, this runtime.Value) (runtime.Number, *runtime.Exception) {
	switch t := this.(type) {
	case runtime.Number:
		return t, nil
	case *runtime.Object:
		if n, ok := t.Primitive.(runtime.Number); ok {
			return n, nil
		}
	}
	return 0, ctx.NewTypeError("Number.prototype method called on incompatible receiver")
}
