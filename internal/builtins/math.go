package builtins

import (
	"math"
	"math/rand"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installMath builds the global Math object. Per the Non-goals, the
// interpreter does not implement Math's algorithms from scratch in any
// special way beyond what Go's standard math package already gives us;
// Math here is purely a facade the evaluator calls into, same as console
// and JSON.
func installMath(engine *runtime.Engine, functionProto *runtime.Object) {
	m := runtime.NewObject(engine.ObjectPrototype)

	m.DefineDataProperty("PI", runtime.Number(math.Pi), runtime.PropertyAttributes{})
	m.DefineDataProperty("E", runtime.Number(math.E), runtime.PropertyAttributes{})
	m.DefineDataProperty("LN2", runtime.Number(math.Ln2), runtime.PropertyAttributes{})
	m.DefineDataProperty("LN10", runtime.Number(math.Log(10)), runtime.PropertyAttributes{})
	m.DefineDataProperty("LOG2E", runtime.Number(1/math.Ln2), runtime.PropertyAttributes{})
	m.DefineDataProperty("LOG10E", runtime.Number(1/math.Log(10)), runtime.PropertyAttributes{})
	m.DefineDataProperty("SQRT2", runtime.Number(math.Sqrt2), runtime.PropertyAttributes{})
	m.DefineDataProperty("SQRT1_2", runtime.Number(math.Sqrt(0.5)), runtime.PropertyAttributes{})

	unary := func(name string, fn func(float64) float64) {
		nativeMethodOn(m, functionProto, name, 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
			n, exc := runtime.ToNumber(ctx, arg(args, 0))
			if exc != nil {
				return runtime.Undefined, exc
			}
			return runtime.Number(fn(float64(n))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return f
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("round", func(f float64) float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return f
		}
		return math.Floor(f + 0.5)
	})

	nativeMethodOn(m, functionProto, "pow", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		base, exc := runtime.ToNumber(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		exp, exc := runtime.ToNumber(ctx, arg(args, 1))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(math.Pow(float64(base), float64(exp))), nil
	})
	nativeMethodOn(m, functionProto, "atan2", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		y, exc := runtime.ToNumber(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		x, exc := runtime.ToNumber(ctx, arg(args, 1))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(math.Atan2(float64(y), float64(x))), nil
	})
	nativeMethodOn(m, functionProto, "hypot", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		sum := 0.0
		for _, a := range args {
			n, exc := runtime.ToNumber(ctx, a)
			if exc != nil {
				return runtime.Undefined, exc
			}
			sum += float64(n) * float64(n)
		}
		return runtime.Number(math.Sqrt(sum)), nil
	})
	nativeMethodOn(m, functionProto, "max", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return minMax(ctx, args, math.Inf(-1), func(a, b float64) bool { return b > a })
	})
	nativeMethodOn(m, functionProto, "min", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return minMax(ctx, args, math.Inf(1), func(a, b float64) bool { return b < a })
	})
	nativeMethodOn(m, functionProto, "random", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.Number(rand.Float64()), nil
	})

	defineGlobal(engine, "Math", m)
}

func minMax(ctx *runtime.Context, args []runtime.Value, identity float64, better func(best, candidate float64) bool) (runtime.Value, *runtime.Exception) {
	best := identity
	for _, a := range args {
		n, exc := runtime.ToNumber(ctx, a)
		if exc != nil {
			return runtime.Undefined, exc
		}
		f := float64(n)
		if math.IsNaN(f) {
			return runtime.NaN, nil
		}
		if better(best, f) {
			best = f
		}
	}
	return runtime.Number(best), nil
}
