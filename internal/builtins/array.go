package builtins

import (
	"sort"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installArray wires Array.prototype's full method list and the Array
// constructor's isArray/from/of statics. Every mutating method
// (push/pop/shift/unshift/splice/reverse/sort) operates through
// runtime.Object's element-storage helpers directly rather than going
// through [[Set]], matching how internal/interp's own array-literal
// evaluation bypasses the generic property path for the same reason: array
// elements are not ordinary named properties.
func installArray(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "push", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.push")
		if exc != nil {
			return runtime.Undefined, exc
		}
		n := o.Length()
		for _, v := range args {
			if exc := o.SetElement(ctx, n, v, ctx.Strict); exc != nil {
				return runtime.Undefined, exc
			}
			n++
		}
		return runtime.Number(o.Length()), nil
	})
	nativeMethod(proto, "pop", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.pop")
		if exc != nil {
			return runtime.Undefined, exc
		}
		n := o.Length()
		if n == 0 {
			return runtime.Undefined, nil
		}
		v := o.GetElement(n - 1)
		o.SetLength(n - 1)
		return v, nil
	})
	nativeMethod(proto, "shift", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.shift")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		if len(elems) == 0 {
			return runtime.Undefined, nil
		}
		first := elems[0]
		rest := append([]runtime.Value(nil), elems[1:]...)
		replaceElements(o, rest)
		return first, nil
	})
	nativeMethod(proto, "unshift", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.unshift")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := append(append([]runtime.Value(nil), args...), o.Elements()...)
		replaceElements(o, elems)
		return runtime.Number(len(elems)), nil
	})
	nativeMethod(proto, "slice", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.slice")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		n := len(elems)
		start, end := 0, n
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = relativeIndex(f, n)
		}
		if len(args) > 1 && arg(args, 1) != runtime.Undefined {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			end = relativeIndex(f, n)
		}
		if start > end {
			start = end
		}
		return runtime.NewArray(engine.ArrayPrototype, append([]runtime.Value(nil), elems[start:end]...)), nil
	})
	nativeMethod(proto, "splice", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.splice")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		n := len(elems)
		start := n
		if len(args) > 0 {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = relativeIndex(f, n)
		}
		deleteCount := n - start
		if len(args) > 1 {
			f, exc := toInt(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			if f < 0 {
				f = 0
			}
			if f > n-start {
				f = n - start
			}
			deleteCount = f
		}
		removed := append([]runtime.Value(nil), elems[start:start+deleteCount]...)
		var inserted []runtime.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		newElems := append([]runtime.Value(nil), elems[:start]...)
		newElems = append(newElems, inserted...)
		newElems = append(newElems, elems[start+deleteCount:]...)
		replaceElements(o, newElems)
		return runtime.NewArray(engine.ArrayPrototype, removed), nil
	})
	nativeMethod(proto, "concat", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.concat")
		if exc != nil {
			return runtime.Undefined, exc
		}
		out := append([]runtime.Value(nil), o.Elements()...)
		for _, a := range args {
			if ao, ok := a.(*runtime.Object); ok && ao.IsArray() {
				out = append(out, ao.Elements()...)
			} else {
				out = append(out, a)
			}
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethod(proto, "join", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.join")
		if exc != nil {
			return runtime.Undefined, exc
		}
		sep := ","
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			s, exc := toStr(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			sep = s
		}
		var parts []string
		for _, v := range o.Elements() {
			if runtime.IsNullOrUndefined(v) {
				parts = append(parts, "")
				continue
			}
			s, exc := toStr(ctx, v)
			if exc != nil {
				return runtime.Undefined, exc
			}
			parts = append(parts, s)
		}
		return runtime.String(strings.Join(parts, sep)), nil
	})
	nativeMethod(proto, "reverse", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.reverse")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		replaceElements(o, elems)
		return o, nil
	})
	nativeMethod(proto, "sort", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.sort")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		cmp, _ := arg(args, 0).(*runtime.Object)
		var sortExc *runtime.Exception
		sort.SliceStable(elems, func(i, j int) bool {
			if sortExc != nil {
				return false
			}
			a, b := elems[i], elems[j]
			if a == runtime.Undefined {
				return false
			}
			if b == runtime.Undefined {
				return true
			}
			if cmp != nil && cmp.IsCallable() {
				r, exc := ctx.CallFunction(cmp, runtime.Undefined, []runtime.Value{a, b})
				if exc != nil {
					sortExc = exc
					return false
				}
				n, exc := runtime.ToNumber(ctx, r)
				if exc != nil {
					sortExc = exc
					return false
				}
				return float64(n) < 0
			}
			as, _ := toStr(ctx, a)
			bs, _ := toStr(ctx, b)
			return as < bs
		})
		if sortExc != nil {
			return runtime.Undefined, sortExc
		}
		replaceElements(o, elems)
		return o, nil
	})

	nativeMethod(proto, "indexOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.indexOf")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		start := 0
		if len(args) > 1 {
			f, exc := toInt(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = relativeIndex(float64(f), len(elems))
		}
		target := arg(args, 0)
		for i := start; i < len(elems); i++ {
			if strictEq(elems[i], target) {
				return runtime.Number(i), nil
			}
		}
		return runtime.Number(-1), nil
	})
	nativeMethod(proto, "lastIndexOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.lastIndexOf")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		target := arg(args, 0)
		for i := len(elems) - 1; i >= 0; i-- {
			if strictEq(elems[i], target) {
				return runtime.Number(i), nil
			}
		}
		return runtime.Number(-1), nil
	})
	nativeMethod(proto, "includes", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.includes")
		if exc != nil {
			return runtime.Undefined, exc
		}
		target := arg(args, 0)
		for _, v := range o.Elements() {
			if runtime.SameValueZero(v, target) {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})

	nativeMethod(proto, "forEach", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			_, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), this})
			return runtime.Undefined, false, exc
		})
	})
	nativeMethod(proto, "map", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		var out []runtime.Value
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			out = append(out, r)
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethod(proto, "filter", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		var out []runtime.Value
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			if runtime.ToBoolean(r) {
				out = append(out, v)
			}
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethod(proto, "some", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		found := false
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			if runtime.ToBoolean(r) {
				found = true
				return runtime.Undefined, true, nil
			}
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(found), nil
	})
	nativeMethod(proto, "every", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		all := true
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			if !runtime.ToBoolean(r) {
				all = false
				return runtime.Undefined, true, nil
			}
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(all), nil
	})
	nativeMethod(proto, "find", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		var result runtime.Value = runtime.Undefined
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			if runtime.ToBoolean(r) {
				result = v
				return runtime.Undefined, true, nil
			}
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return result, nil
	})
	nativeMethod(proto, "findIndex", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, _ := this.(*runtime.Object)
		result := -1
		_, exc := iterateArray(ctx, this, args, func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception) {
			r, exc := ctx.CallFunction(cb, thisArg, []runtime.Value{v, runtime.Number(i), o})
			if exc != nil {
				return runtime.Undefined, false, exc
			}
			if runtime.ToBoolean(r) {
				result = i
				return runtime.Undefined, true, nil
			}
			return runtime.Undefined, false, nil
		})
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(result), nil
	})
	nativeMethod(proto, "reduce", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return reduceArray(ctx, this, args, false)
	})
	nativeMethod(proto, "reduceRight", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return reduceArray(ctx, this, args, true)
	})
	nativeMethod(proto, "flat", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.flat")
		if exc != nil {
			return runtime.Undefined, exc
		}
		depth := 1
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			d, exc := toInt(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			depth = d
		}
		return runtime.NewArray(engine.ArrayPrototype, flatten(o.Elements(), depth)), nil
	})
	nativeMethod(proto, "fill", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.fill")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		n := len(elems)
		start, end := 0, n
		if len(args) > 1 {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = relativeIndex(f, n)
		}
		if len(args) > 2 {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[2])
			if exc != nil {
				return runtime.Undefined, exc
			}
			end = relativeIndex(f, n)
		}
		v := arg(args, 0)
		for i := start; i < end; i++ {
			elems[i] = v
		}
		replaceElements(o, elems)
		return o, nil
	})

	engine.SetSymbolProperty(proto, runtime.SymbolIterator, runtime.NewNativeFunction(functionProto, "[Symbol.iterator]", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype[Symbol.iterator]")
		if exc != nil {
			return runtime.Undefined, exc
		}
		return newArrayIterator(engine, functionProto, o.Elements()), nil
	}))
	nativeMethod(proto, "values", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.values")
		if exc != nil {
			return runtime.Undefined, exc
		}
		return newArrayIterator(engine, functionProto, o.Elements()), nil
	})
	nativeMethod(proto, "entries", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Array.prototype.entries")
		if exc != nil {
			return runtime.Undefined, exc
		}
		elems := o.Elements()
		pairs := make([]runtime.Value, len(elems))
		for i, v := range elems {
			pairs[i] = runtime.NewArray(engine.ArrayPrototype, []runtime.Value{runtime.Number(i), v})
		}
		return newArrayIterator(engine, functionProto, pairs), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "Array", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return buildArray(ctx, engine, args)
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		return buildArray(ctx, engine, args)
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	nativeMethodOn(ctor, functionProto, "isArray", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, ok := arg(args, 0).(*runtime.Object)
		return runtime.BoolValue(ok && o.IsArray()), nil
	})
	nativeMethodOn(ctor, functionProto, "of", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.NewArray(engine.ArrayPrototype, append([]runtime.Value(nil), args...)), nil
	})
	nativeMethodOn(ctor, functionProto, "from", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return arrayFrom(ctx, engine, args)
	})
	defineGlobal(engine, "Array", ctor)
}

func strictEq(a, b runtime.Value) bool {
	if an, ok := a.(runtime.Number); ok {
		if bn, ok := b.(runtime.Number); ok {
			return an == bn
		}
		return false
	}
	return a == b
}

// replaceElements rebuilds o's dense element run from elems by truncating
// o and writing each element back with SetElement; the methods above that
// rearrange elements wholesale use it (they already took a private copy
// via Elements()).
func replaceElements(o *runtime.Object, elems []runtime.Value) {
	o.SetLength(0)
	for i, v := range elems {
		if v == nil {
			v = runtime.Undefined
		}
		_ = o.SetElement(nil, uint32(i), v, false)
	}
}

func buildArray(ctx *runtime.Context, engine *runtime.Engine, args []runtime.Value) (runtime.Value, *runtime.Exception) {
	if len(args) == 1 {
		if n, ok := args[0].(runtime.Number); ok {
			length, exc := runtime.ToUint32(ctx, n)
			if exc != nil {
				return runtime.Undefined, exc
			}
			if float64(length) != float64(n) {
				return runtime.Undefined, ctx.NewRangeError("Invalid array length")
			}
			arr := runtime.NewArray(engine.ArrayPrototype, nil)
			arr.SetLength(length)
			return arr, nil
		}
	}
	return runtime.NewArray(engine.ArrayPrototype, append([]runtime.Value(nil), args...)), nil
}

func arrayFrom(ctx *runtime.Context, engine *runtime.Engine, args []runtime.Value) (runtime.Value, *runtime.Exception) {
	source := arg(args, 0)
	mapFn, _ := arg(args, 1).(*runtime.Object)

	var items []runtime.Value
	if o, ok := source.(*runtime.Object); ok && o.IsArray() {
		items = o.Elements()
	} else if s, ok := source.(runtime.String); ok {
		for _, r := range string(s) {
			items = append(items, runtime.String(string(r)))
		}
	} else if o, ok := source.(*runtime.Object); ok {
		lenVal, exc := o.Get(ctx, "length", o)
		if exc != nil {
			return runtime.Undefined, exc
		}
		n, exc := runtime.ToIntegerOrInfinity(ctx, lenVal)
		if exc != nil {
			return runtime.Undefined, exc
		}
		for i := 0; i < int(n); i++ {
			v, exc := o.Get(ctx, runtime.Number(i).String(), o)
			if exc != nil {
				return runtime.Undefined, exc
			}
			items = append(items, v)
		}
	}
	if mapFn != nil && mapFn.IsCallable() {
		for i, v := range items {
			r, exc := ctx.CallFunction(mapFn, runtime.Undefined, []runtime.Value{v, runtime.Number(i)})
			if exc != nil {
				return runtime.Undefined, exc
			}
			items[i] = r
		}
	}
	return runtime.NewArray(engine.ArrayPrototype, items), nil
}

func flatten(elems []runtime.Value, depth int) []runtime.Value {
	var out []runtime.Value
	for _, v := range elems {
		if o, ok := v.(*runtime.Object); ok && o.IsArray() && depth > 0 {
			out = append(out, flatten(o.Elements(), depth-1)...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

// iterateArray drives forEach/map/filter/some/every/find/findIndex's shared
// "call the callback on each element, with an optional thisArg, stopping
// early if visit reports stop=true" shape.
func iterateArray(ctx *runtime.Context, this runtime.Value, args []runtime.Value, visit func(v runtime.Value, i int, cb *runtime.Object, thisArg runtime.Value) (runtime.Value, bool, *runtime.Exception)) (runtime.Value, *runtime.Exception) {
	o, exc := requireObject(ctx, this, "Array.prototype iteration method")
	if exc != nil {
		return runtime.Undefined, exc
	}
	cb, ok := arg(args, 0).(*runtime.Object)
	if !ok || !cb.IsCallable() {
		return runtime.Undefined, ctx.NewTypeError("callback is not a function")
	}
	thisArg := arg(args, 1)
	for i, v := range o.Elements() {
		_, stop, exc := visit(v, i, cb, thisArg)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if stop {
			break
		}
	}
	return runtime.Undefined, nil
}

func reduceArray(ctx *runtime.Context, this runtime.Value, args []runtime.Value, fromRight bool) (runtime.Value, *runtime.Exception) {
	o, exc := requireObject(ctx, this, "Array.prototype.reduce")
	if exc != nil {
		return runtime.Undefined, exc
	}
	cb, ok := arg(args, 0).(*runtime.Object)
	if !ok || !cb.IsCallable() {
		return runtime.Undefined, ctx.NewTypeError("reduce callback is not a function")
	}
	elems := o.Elements()
	indices := make([]int, len(elems))
	for i := range elems {
		if fromRight {
			indices[i] = len(elems) - 1 - i
		} else {
			indices[i] = i
		}
	}
	var acc runtime.Value
	start := 0
	if len(args) > 1 {
		acc = args[1]
	} else {
		if len(indices) == 0 {
			return runtime.Undefined, ctx.NewTypeError("Reduce of empty array with no initial value")
		}
		acc = elems[indices[0]]
		start = 1
	}
	for _, idx := range indices[start:] {
		r, exc := ctx.CallFunction(cb, runtime.Undefined, []runtime.Value{acc, elems[idx], runtime.Number(idx), o})
		if exc != nil {
			return runtime.Undefined, exc
		}
		acc = r
	}
	return acc, nil
}

// newArrayIterator builds an iterator-protocol object (a `next()` method
// returning `{value, done}`) over a snapshot of values, used by
// Array.prototype.values/entries and the Symbol.iterator method arrays
// expose for `for...of`/spread.
func newArrayIterator(engine *runtime.Engine, functionProto *runtime.Object, values []runtime.Value) *runtime.Object {
	iter := runtime.NewObject(engine.ObjectPrototype)
	iter.Class = "Array Iterator"
	i := 0
	nativeMethod(iter, "next", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		result := runtime.NewObject(engine.ObjectPrototype)
		if i >= len(values) {
			result.DefineDataProperty("value", runtime.Undefined, runtime.DefaultDataAttributes)
			result.DefineDataProperty("done", runtime.True, runtime.DefaultDataAttributes)
			return result, nil
		}
		v := values[i]
		i++
		result.DefineDataProperty("value", v, runtime.DefaultDataAttributes)
		result.DefineDataProperty("done", runtime.False, runtime.DefaultDataAttributes)
		return result, nil
	})
	engine.SetSymbolProperty(iter, runtime.SymbolIterator, runtime.NewNativeFunction(functionProto, "[Symbol.iterator]", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return iter, nil
	}))
	return iter
}
