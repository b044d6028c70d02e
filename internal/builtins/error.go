package builtins

import (
	"fmt"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installErrors builds the Error/TypeError/RangeError/ReferenceError/
// SyntaxError/EvalError/URIError constructor hierarchy and wires
// Engine.ErrorFactory so host-raised exceptions (ctx.NewTypeError, ...) come
// back as real, properly-prototyped Error instances rather than the plain
// string fallback runtime.Context.newError uses before this runs.
func installErrors(engine *runtime.Engine, functionProto, objectProto *runtime.Object) {
	errorProto := runtime.NewObject(objectProto)
	errorProto.DefineDataProperty("name", runtime.String("Error"), runtime.PropertyAttributes{Writable: true, Configurable: true})
	errorProto.DefineDataProperty("message", runtime.String(""), runtime.PropertyAttributes{Writable: true, Configurable: true})
	nativeMethod(errorProto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "Error.prototype.toString")
		if exc != nil {
			return runtime.Undefined, exc
		}
		nameVal, exc := o.Get(ctx, "name", o)
		if exc != nil {
			return runtime.Undefined, exc
		}
		name, exc := toStr(ctx, nameVal)
		if exc != nil {
			return runtime.Undefined, exc
		}
		msgVal, exc := o.Get(ctx, "message", o)
		if exc != nil {
			return runtime.Undefined, exc
		}
		msg, exc := toStr(ctx, msgVal)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if msg == "" {
			return runtime.String(name), nil
		}
		if name == "" {
			return runtime.String(msg), nil
		}
		return runtime.String(name + ": " + msg), nil
	})

	errorCtor := makeErrorConstructor(engine, functionProto, errorProto, "Error", errorProto)
	defineGlobal(engine, "Error", errorCtor)

	protos := map[runtime.ErrorKind]*runtime.Object{
		runtime.KindTypeError:      nil,
		runtime.KindRangeError:     nil,
		runtime.KindReferenceError: nil,
		runtime.KindSyntaxError:    nil,
		runtime.KindEvalError:      nil,
		runtime.KindURIError:       nil,
	}
	names := map[runtime.ErrorKind]string{
		runtime.KindTypeError:      "TypeError",
		runtime.KindRangeError:     "RangeError",
		runtime.KindReferenceError: "ReferenceError",
		runtime.KindSyntaxError:    "SyntaxError",
		runtime.KindEvalError:      "EvalError",
		runtime.KindURIError:       "URIError",
	}
	engine.ErrorPrototypes = map[runtime.ErrorKind]*runtime.Object{
		"Error": errorProto,
	}
	for kind := range protos {
		name := names[kind]
		subProto := runtime.NewObject(errorProto)
		subProto.DefineDataProperty("name", runtime.String(name), runtime.PropertyAttributes{Writable: true, Configurable: true})
		subCtor := makeErrorConstructor(engine, functionProto, subProto, name, errorProto)
		subCtor.SetPrototype(errorCtor)
		defineGlobal(engine, name, subCtor)
		engine.ErrorPrototypes[runtime.ErrorKind(name)] = subProto
	}

	engine.ErrorFactory = func(kind runtime.ErrorKind, format string, args ...interface{}) runtime.Value {
		proto := engine.ErrorPrototypes[runtime.ErrorKind(names[kind])]
		if proto == nil {
			proto = errorProto
		}
		o := runtime.NewObject(proto)
		o.Class = "Error"
		o.DefineDataProperty("message", runtime.String(fmt.Sprintf(format, args...)), runtime.PropertyAttributes{Writable: true, Configurable: true})
		o.DefineDataProperty("stack", runtime.String(string(names[kind])+": "+fmt.Sprintf(format, args...)), runtime.PropertyAttributes{Writable: true, Configurable: true})
		return o
	}
}

// makeErrorConstructor builds one Error-family constructor: calling it
// without `new` behaves the same as calling it with `new` (`Error(...)`
// and `new Error(...)` both produce an Error instance).
func makeErrorConstructor(engine *runtime.Engine, functionProto, proto *runtime.Object, name string, _errorProto *runtime.Object) *runtime.Object {
	build := func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		instProto := proto
		if newTarget != nil {
			if p, exc := newTarget.Get(ctx, "prototype", newTarget); exc == nil {
				if po, ok := p.(*runtime.Object); ok {
					instProto = po
				}
			}
		}
		o := runtime.NewObject(instProto)
		o.Class = "Error"
		if msg := arg(args, 0); msg != runtime.Undefined {
			s, exc := toStr(ctx, msg)
			if exc != nil {
				return runtime.Undefined, exc
			}
			o.DefineDataProperty("message", runtime.String(s), runtime.PropertyAttributes{Writable: true, Configurable: true})
		}
		if opts, ok := arg(args, 1).(*runtime.Object); ok && opts.HasOwn("cause") {
			cause, exc := opts.Get(ctx, "cause", opts)
			if exc != nil {
				return runtime.Undefined, exc
			}
			o.DefineDataProperty("cause", cause, runtime.PropertyAttributes{Writable: true, Configurable: true})
		}
		nameVal, _ := o.Get(ctx, "name", o)
		nameStr, _ := runtime.ToString(ctx, nameVal)
		msgVal, _ := o.Get(ctx, "message", o)
		msgStr, _ := runtime.ToString(ctx, msgVal)
		stack := string(nameStr)
		if msgStr != "" {
			stack += ": " + string(msgStr)
		}
		o.DefineDataProperty("stack", runtime.String(stack), runtime.PropertyAttributes{Writable: true, Configurable: true})
		return o, nil
	}
	ctor := runtime.NewNativeFunction(functionProto, name, 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return build(ctx, args, nil)
	})
	ctor.Construct = build
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	return ctor
}
