package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// installObject wires Object.prototype (toString/valueOf/hasOwnProperty/
// isPrototypeOf/propertyIsEnumerable) and the Object constructor's statics
// (keys/values/entries/assign/create/freeze/isFrozen/defineProperty/
// getPrototypeOf/setPrototypeOf).
func installObject(engine *runtime.Engine, proto, functionProto *runtime.Object) {
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if this == runtime.Undefined {
			return runtime.String("[object Undefined]"), nil
		}
		if this == runtime.Null {
			return runtime.String("[object Null]"), nil
		}
		o, exc := thisObject(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		tag := o.Class
		if tag == "" {
			tag = "Object"
		}
		return runtime.String("[object " + tag + "]"), nil
	})
	nativeMethod(proto, "toLocaleString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := thisObject(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		fn, exc := o.Get(ctx, "toString", o)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return ctx.CallFunction(fn, o, nil)
	})
	nativeMethod(proto, "valueOf", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return thisObjectValue(ctx, this)
	})
	nativeMethod(proto, "hasOwnProperty", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := thisObject(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		key, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if idx, ok := parseArrayIndexKey(key); ok {
			return runtime.BoolValue(o.HasElement(idx)), nil
		}
		return runtime.BoolValue(o.HasOwn(key)), nil
	})
	nativeMethod(proto, "isPrototypeOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		self, exc := thisObject(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		other, ok := arg(args, 0).(*runtime.Object)
		if !ok {
			return runtime.False, nil
		}
		for cur := other.Prototype(); cur != nil; cur = cur.Prototype() {
			if cur == self {
				return runtime.True, nil
			}
		}
		return runtime.False, nil
	})
	nativeMethod(proto, "propertyIsEnumerable", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := thisObject(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		key, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		info, _, ok := o.GetOwnProperty(key)
		return runtime.BoolValue(ok && info.Attrs.Enumerable), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "Object", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		v := arg(args, 0)
		if runtime.IsNullOrUndefined(v) {
			return runtime.NewObject(proto), nil
		}
		return runtime.ToObject(ctx, v)
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		v := arg(args, 0)
		if runtime.IsNullOrUndefined(v) {
			return runtime.NewObject(proto), nil
		}
		return runtime.ToObject(ctx, v)
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})

	nativeMethodOn(ctor, functionProto, "keys", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.keys")
		if exc != nil {
			return runtime.Undefined, exc
		}
		keys := o.KeysInEnumerationOrder(true)
		out := make([]runtime.Value, 0, len(keys))
		for _, k := range keys {
			if _, isIdx := parseArrayIndexKey(k); isIdx || isEnumerableOwn(o, k) {
				out = append(out, runtime.String(k))
			}
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethodOn(ctor, functionProto, "values", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.values")
		if exc != nil {
			return runtime.Undefined, exc
		}
		var out []runtime.Value
		for _, k := range enumerableOwnKeys(o) {
			v, exc := o.Get(ctx, k, o)
			if exc != nil {
				return runtime.Undefined, exc
			}
			out = append(out, v)
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethodOn(ctor, functionProto, "entries", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.entries")
		if exc != nil {
			return runtime.Undefined, exc
		}
		var out []runtime.Value
		for _, k := range enumerableOwnKeys(o) {
			v, exc := o.Get(ctx, k, o)
			if exc != nil {
				return runtime.Undefined, exc
			}
			out = append(out, runtime.NewArray(engine.ArrayPrototype, []runtime.Value{runtime.String(k), v}))
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethodOn(ctor, functionProto, "assign", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		target, exc := requireObject(ctx, arg(args, 0), "Object.assign")
		if exc != nil {
			return runtime.Undefined, exc
		}
		for _, src := range args[1:] {
			if runtime.IsNullOrUndefined(src) {
				continue
			}
			srcObj, exc := runtime.ToObject(ctx, src)
			if exc != nil {
				return runtime.Undefined, exc
			}
			for _, k := range enumerableOwnKeys(srcObj) {
				v, exc := srcObj.Get(ctx, k, srcObj)
				if exc != nil {
					return runtime.Undefined, exc
				}
				if exc := target.Set(ctx, k, v, target, ctx.Strict); exc != nil {
					return runtime.Undefined, exc
				}
			}
		}
		return target, nil
	})
	nativeMethodOn(ctor, functionProto, "create", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		protoArg := arg(args, 0)
		var newProto *runtime.Object
		switch p := protoArg.(type) {
		case *runtime.Object:
			newProto = p
		case runtime.Value:
			if p != runtime.Null {
				return runtime.Undefined, ctx.NewTypeError("Object prototype may only be an Object or null")
			}
		}
		o := runtime.NewObject(newProto)
		if props, ok := arg(args, 1).(*runtime.Object); ok {
			if exc := applyPropertyDescriptors(ctx, o, props); exc != nil {
				return runtime.Undefined, exc
			}
		}
		return o, nil
	})
	nativeMethodOn(ctor, functionProto, "freeze", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if o, ok := arg(args, 0).(*runtime.Object); ok {
			o.Frozen = true
			o.Sealed = true
			o.Extensible = false
		}
		return arg(args, 0), nil
	})
	nativeMethodOn(ctor, functionProto, "isFrozen", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, ok := arg(args, 0).(*runtime.Object)
		if !ok {
			return runtime.True, nil
		}
		return runtime.BoolValue(o.Frozen), nil
	})
	nativeMethodOn(ctor, functionProto, "seal", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if o, ok := arg(args, 0).(*runtime.Object); ok {
			o.Sealed = true
			o.Extensible = false
		}
		return arg(args, 0), nil
	})
	nativeMethodOn(ctor, functionProto, "isSealed", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, ok := arg(args, 0).(*runtime.Object)
		if !ok {
			return runtime.True, nil
		}
		return runtime.BoolValue(o.Sealed), nil
	})
	nativeMethodOn(ctor, functionProto, "defineProperty", 3, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.defineProperty")
		if exc != nil {
			return runtime.Undefined, exc
		}
		key, exc := toStr(ctx, arg(args, 1))
		if exc != nil {
			return runtime.Undefined, exc
		}
		desc, exc := requireObject(ctx, arg(args, 2), "Object.defineProperty")
		if exc != nil {
			return runtime.Undefined, exc
		}
		if exc := defineOneProperty(ctx, o, key, desc); exc != nil {
			return runtime.Undefined, exc
		}
		return o, nil
	})
	nativeMethodOn(ctor, functionProto, "defineProperties", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.defineProperties")
		if exc != nil {
			return runtime.Undefined, exc
		}
		props, exc := requireObject(ctx, arg(args, 1), "Object.defineProperties")
		if exc != nil {
			return runtime.Undefined, exc
		}
		if exc := applyPropertyDescriptors(ctx, o, props); exc != nil {
			return runtime.Undefined, exc
		}
		return o, nil
	})
	nativeMethodOn(ctor, functionProto, "getPrototypeOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := runtime.ToObject(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if p := o.Prototype(); p != nil {
			return p, nil
		}
		return runtime.Null, nil
	})
	nativeMethodOn(ctor, functionProto, "setPrototypeOf", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.setPrototypeOf")
		if exc != nil {
			return runtime.Undefined, exc
		}
		switch p := arg(args, 1).(type) {
		case *runtime.Object:
			o.SetPrototype(p)
		default:
			o.SetPrototype(nil)
		}
		return o, nil
	})
	nativeMethodOn(ctor, functionProto, "getOwnPropertyNames", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, arg(args, 0), "Object.getOwnPropertyNames")
		if exc != nil {
			return runtime.Undefined, exc
		}
		keys := o.KeysInEnumerationOrder(true)
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			out[i] = runtime.String(k)
		}
		return runtime.NewArray(engine.ArrayPrototype, out), nil
	})
	nativeMethodOn(ctor, functionProto, "fromEntries", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o := runtime.NewObject(proto)
		entries, ok := arg(args, 0).(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("Object.fromEntries argument must be iterable")
		}
		if entries.IsArray() {
			for i := uint32(0); i < entries.Length(); i++ {
				pair, ok := entries.GetElement(i).(*runtime.Object)
				if !ok {
					continue
				}
				k, exc := toStr(ctx, pair.GetElement(0))
				if exc != nil {
					return runtime.Undefined, exc
				}
				o.DefineDataProperty(k, pair.GetElement(1), runtime.DefaultDataAttributes)
			}
		}
		return o, nil
	})

	defineGlobal(engine, "Object", ctor)
}

func thisObjectValue(ctx *runtime.Context, this runtime.Value) (runtime.Value, *runtime.Exception) {
	if runtime.IsNullOrUndefined(this) {
		return runtime.Undefined, ctx.NewTypeError("Object.prototype.valueOf called on null or undefined")
	}
	return runtime.ToObject(ctx, this)
}

func enumerableOwnKeys(o *runtime.Object) []string {
	var out []string
	for _, k := range o.KeysInEnumerationOrder(true) {
		if _, isIdx := parseArrayIndexKey(k); isIdx || isEnumerableOwn(o, k) {
			out = append(out, k)
		}
	}
	return out
}

func isEnumerableOwn(o *runtime.Object, key string) bool {
	info, _, ok := o.GetOwnProperty(key)
	return ok && info.Attrs.Enumerable
}

func parseArrayIndexKey(key string) (uint32, bool) {
	if key == "" {
		return 0, false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	var n uint64
	for _, c := range key {
		n = n*10 + uint64(c-'0')
		if n > 1<<32-1 {
			return 0, false
		}
	}
	return uint32(n), true
}

// defineOneProperty applies one ECMAScript property descriptor object (as
// passed to Object.defineProperty) onto o[key].
func defineOneProperty(ctx *runtime.Context, o *runtime.Object, key string, desc *runtime.Object) *runtime.Exception {
	getV, setV := desc.HasOwn("get"), desc.HasOwn("set")
	if getV || setV {
		var get, set runtime.Value
		if getV {
			g, exc := desc.Get(ctx, "get", desc)
			if exc != nil {
				return exc
			}
			get = g
		}
		if setV {
			s, exc := desc.Get(ctx, "set", desc)
			if exc != nil {
				return exc
			}
			set = s
		}
		attrs := descriptorAttrs(ctx, desc)
		o.DefineAccessorProperty(key, get, set, attrs)
		return nil
	}
	value := runtime.Value(runtime.Undefined)
	if desc.HasOwn("value") {
		v, exc := desc.Get(ctx, "value", desc)
		if exc != nil {
			return exc
		}
		value = v
	}
	o.DefineDataProperty(key, value, descriptorAttrs(ctx, desc))
	return nil
}

func descriptorAttrs(ctx *runtime.Context, desc *runtime.Object) runtime.PropertyAttributes {
	boolFlag := func(name string) bool {
		if !desc.HasOwn(name) {
			return false
		}
		v, _ := desc.Get(ctx, name, desc)
		return runtime.ToBoolean(v)
	}
	return runtime.PropertyAttributes{
		Writable:     boolFlag("writable"),
		Enumerable:   boolFlag("enumerable"),
		Configurable: boolFlag("configurable"),
	}
}

func applyPropertyDescriptors(ctx *runtime.Context, o *runtime.Object, props *runtime.Object) *runtime.Exception {
	for _, k := range enumerableOwnKeys(props) {
		descVal, exc := props.Get(ctx, k, props)
		if exc != nil {
			return exc
		}
		desc, ok := descVal.(*runtime.Object)
		if !ok {
			return ctx.NewTypeError("Property description must be an object")
		}
		if exc := defineOneProperty(ctx, o, k, desc); exc != nil {
			return exc
		}
	}
	return nil
}
