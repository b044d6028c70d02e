package builtins

import "github.com/nimbus-lang/nimbus/internal/runtime"

// symbolRegistry backs Symbol.for/Symbol.keyFor's global symbol registry
// (the Symbol facade), kept here rather than in internal/runtime
// since it is a host-environment-level concept, not part of the core value
// model runtime.Symbol describes.
var symbolRegistry = map[string]*runtime.Symbol{}

// installSymbol wires the Symbol() factory (primitive-only, throws under
// `new`), the well-known symbol statics (Symbol.iterator and friends,
// reusing runtime's interned instances so `Symbol.iterator === x` checks
// against internally-produced iterators agree), and the for/keyFor global
// registry.
func installSymbol(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		sym, exc := thisSymbolValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(sym.String()), nil
	})
	accessor(proto, "description", functionProto, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		sym, exc := thisSymbolValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(sym.Description), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "Symbol", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		desc := ""
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			s, exc := toStr(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			desc = s
		}
		return runtime.NewSymbol(desc), nil
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		return runtime.Undefined, ctx.NewTypeError("Symbol is not a constructor")
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})

	ctor.DefineDataProperty("iterator", runtime.SymbolIterator, runtime.PropertyAttributes{})
	ctor.DefineDataProperty("asyncIterator", runtime.SymbolAsyncIterator, runtime.PropertyAttributes{})
	ctor.DefineDataProperty("toPrimitive", runtime.SymbolToPrimitive, runtime.PropertyAttributes{})
	ctor.DefineDataProperty("hasInstance", runtime.SymbolHasInstance, runtime.PropertyAttributes{})

	nativeMethodOn(ctor, functionProto, "for", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		key, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if sym, ok := symbolRegistry[key]; ok {
			return sym, nil
		}
		sym := runtime.NewSymbol(key)
		symbolRegistry[key] = sym
		return sym, nil
	})
	nativeMethodOn(ctor, functionProto, "keyFor", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		target, ok := arg(args, 0).(*runtime.Symbol)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("Symbol.keyFor argument must be a symbol")
		}
		for key, sym := range symbolRegistry {
			if sym == target {
				return runtime.String(key), nil
			}
		}
		return runtime.Undefined, nil
	})
	defineGlobal(engine, "Symbol", ctor)
}

func thisSymbolValue(ctx *runtime.Context, this runtime.Value) (*runtime.Symbol, *runtime.Exception) {
	switch t := this.(type) {
	case *runtime.Symbol:
		return t, nil
	case *runtime.Object:
		if s, ok := t.Primitive.(*runtime.Symbol); ok {
			return s, nil
		}
	}
	return nil, ctx.NewTypeError("Symbol.prototype method called on incompatible receiver")
}
