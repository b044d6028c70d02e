package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// Install bootstraps engine's prototype chain and global object: every
// well-known prototype field on *runtime.Engine, the Error taxonomy (wired
// through Engine.ErrorFactory/ErrorPrototypes so host-raised exceptions are
// `instanceof` the right constructor), and the global bindings
// names (console, Math, JSON, Object, Array, String, ..., plus the
// top-level parseInt/parseFloat/isNaN/isFinite functions). Call this once,
// after runtime.NewEngine and before evaluating any script.
func Install(engine *runtime.Engine) {
	objectProto := runtime.NewObject(nil)
	functionProto := runtime.NewObject(objectProto)
	functionProto.Class = "Function"
	functionProto.Call = func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.Undefined, nil
	}
	arrayProto := runtime.NewArray(objectProto, nil)
	stringProto := runtime.NewObject(objectProto)
	stringProto.Class = "String"
	stringProto.Primitive = runtime.String("")
	numberProto := runtime.NewObject(objectProto)
	numberProto.Class = "Number"
	numberProto.Primitive = runtime.Number(0)
	booleanProto := runtime.NewObject(objectProto)
	booleanProto.Class = "Boolean"
	booleanProto.Primitive = runtime.False
	symbolProto := runtime.NewObject(objectProto)
	bigIntProto := runtime.NewObject(objectProto)
	generatorProto := runtime.NewObject(objectProto)
	promiseProto := runtime.NewObject(objectProto)
	regexpProto := runtime.NewObject(objectProto)
	dateProto := runtime.NewObject(objectProto)

	engine.ObjectPrototype = objectProto
	engine.FunctionPrototype = functionProto
	engine.ArrayPrototype = arrayProto
	engine.StringPrototype = stringProto
	engine.NumberPrototype = numberProto
	engine.BooleanPrototype = booleanProto
	engine.SymbolPrototype = symbolProto
	engine.BigIntPrototype = bigIntProto
	engine.GeneratorPrototype = generatorProto
	engine.PromisePrototype = promiseProto
	engine.RegExpPrototype = regexpProto
	engine.DatePrototype = dateProto

	globalObj := runtime.NewObject(objectProto)
	globalEnv := runtime.NewEnvironment(nil)
	globalEnv.IsFunctionScope = true
	engine.GlobalObject = globalObj
	engine.GlobalEnv = globalEnv

	installObject(engine, objectProto, functionProto)
	installFunction(engine, functionProto)
	installErrors(engine, functionProto, objectProto)
	installArray(engine, arrayProto, functionProto)
	installString(engine, stringProto, functionProto)
	installNumber(engine, numberProto, functionProto)
	installBoolean(engine, booleanProto, functionProto)
	installSymbol(engine, symbolProto, functionProto)
	installMath(engine, functionProto)
	installJSON(engine, functionProto)
	installGenerator(engine, generatorProto, functionProto)
	installPromise(engine, promiseProto, functionProto)
	installRegExp(engine, regexpProto, functionProto)
	installDate(engine, dateProto, functionProto)
	installConsole(engine, functionProto)
	installGlobalFunctions(engine, functionProto)

	defineGlobal(engine, "globalThis", globalObj)
	defineGlobal(engine, "undefined", runtime.Undefined)
	defineGlobal(engine, "NaN", runtime.NaN)
	defineGlobal(engine, "Infinity", runtime.PosInf)
}

// installGlobalFunctions wires the free functions every
// host environment provides even though it only names them in passing
// (parseInt/parseFloat/isNaN/isFinite are consulted by ToNumber-adjacent
// coercions throughout real-world scripts, so the facade is incomplete
// without them).
func installGlobalFunctions(engine *runtime.Engine, functionProto *runtime.Object) {
	defineGlobal(engine, "parseInt", runtime.NewNativeFunction(functionProto, "parseInt", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		radix, exc := toInt(ctx, arg(args, 1))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(parseIntString(s, radix)), nil
	}))
	defineGlobal(engine, "parseFloat", runtime.NewNativeFunction(functionProto, "parseFloat", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(parseFloatString(s)), nil
	}))
	defineGlobal(engine, "isNaN", runtime.NewNativeFunction(functionProto, "isNaN", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := runtime.ToNumber(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(math.IsNaN(float64(n))), nil
	}))
	defineGlobal(engine, "isFinite", runtime.NewNativeFunction(functionProto, "isFinite", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		n, exc := runtime.ToNumber(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		f := float64(n)
		return runtime.BoolValue(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	}))
	defineGlobal(engine, "queueMicrotask", runtime.NewNativeFunction(functionProto, "queueMicrotask", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		fn, ok := arg(args, 0).(*runtime.Object)
		if !ok || !fn.IsCallable() {
			return runtime.Undefined, ctx.NewTypeError("queueMicrotask argument must be a function")
		}
		engine.Microtasks.Enqueue(func() { _, _ = ctx.CallFunction(fn, runtime.Undefined, nil) })
		return runtime.Undefined, nil
	}))
	defineGlobal(engine, "eval", runtime.NewNativeFunction(functionProto, "eval", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		src, ok := arg(args, 0).(runtime.String)
		if !ok {
			return arg(args, 0), nil
		}
		if ctx.Engine.EvalSource == nil {
			return runtime.Undefined, ctx.NewEngineError("eval requires the embedding API's eval hook")
		}
		return ctx.Engine.EvalSource(ctx, string(src))
	}))
}

// parseIntString implements the parseInt global: optional leading
// whitespace and sign, an optional "0x"/"0X" prefix selecting radix 16 when
// radix is 0, and the longest valid digit run in the given radix; any
// unparseable input yields NaN.
func parseIntString(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if radix == 0 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			radix = 16
			s = s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		// Overflow of int64: fall back to float accumulation.
		f := 0.0
		for i := 0; i < end; i++ {
			f = f*float64(radix) + float64(digitValue(s[i]))
		}
		if neg {
			f = -f
		}
		return f
	}
	if neg {
		n = -n
	}
	return float64(n)
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

// parseFloatString implements the parseFloat global: the longest valid
// floating-point prefix of s, ignoring leading whitespace; NaN if none.
func parseFloatString(s string) float64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		case (c == '+' || c == '-') && end > 0 && (s[end-1] == 'e' || s[end-1] == 'E'):
		case (c == '+' || c == '-') && end == 0:
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return math.NaN()
	}
	for end > 0 {
		f, err := strconv.ParseFloat(s[:end], 64)
		if err == nil {
			return f
		}
		end--
	}
	return math.NaN()
}
