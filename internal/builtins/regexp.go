package builtins

import (
	"regexp"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// regexData is the RegExp object's Internal payload: the compiled pattern
// plus the bookkeeping test/exec need (lastIndex, and the flag letters for
// source/flags accessors). Per the Non-goals, the interpreter itself
// never implements regex *matching*; this wraps Go's standard regexp
// package (RE2 semantics) as that "external library" collaborator — no
// third-party regex engine appears anywhere in the example corpus, so
// there is nothing from the pack to wire here instead, and stdlib regexp
// is the only engine needed to satisfy the interface-only Non-goal.
type regexData struct {
	re         *regexp.Regexp
	source     string
	flags      string
	lastIndex  int
	global     bool
	sticky     bool
}

// installRegExp wires the RegExp constructor and RegExp.prototype's
// test/exec/toString plus the source/flags/global/ignoreCase accessors.
func installRegExp(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "test", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		loc := matchFrom(r, s)
		return runtime.BoolValue(loc != nil), nil
	})
	nativeMethod(proto, "exec", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		o, exc := requireObject(ctx, this, "RegExp.prototype.exec")
		if exc != nil {
			return runtime.Undefined, exc
		}
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		s, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		groups := matchFrom(r, s)
		if groups == nil {
			r.lastIndex = 0
			return runtime.Null, nil
		}
		result := runtime.NewArray(engine.ArrayPrototype, nil)
		names := r.re.SubexpNames()
		namedGroups := runtime.NewObject(nil)
		hasNamed := false
		for i := 0; i*2 < len(groups); i++ {
			start, end := groups[i*2], groups[i*2+1]
			var v runtime.Value = runtime.Undefined
			if start >= 0 {
				v = runtime.String(s[start:end])
			}
			_ = result.SetElement(ctx, uint32(i), v, false)
			if i < len(names) && names[i] != "" {
				namedGroups.DefineDataProperty(names[i], v, runtime.DefaultDataAttributes)
				hasNamed = true
			}
		}
		result.DefineDataProperty("index", runtime.Number(groups[0]), runtime.DefaultDataAttributes)
		result.DefineDataProperty("input", runtime.String(s), runtime.DefaultDataAttributes)
		if hasNamed {
			result.DefineDataProperty("groups", namedGroups, runtime.DefaultDataAttributes)
		} else {
			result.DefineDataProperty("groups", runtime.Undefined, runtime.DefaultDataAttributes)
		}
		if r.global || r.sticky {
			r.lastIndex = groups[1]
			o.DefineDataProperty("lastIndex", runtime.Number(r.lastIndex), runtime.PropertyAttributes{Writable: true})
		}
		return result, nil
	})
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String("/" + r.source + "/" + r.flags), nil
	})
	accessor(proto, "source", functionProto, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(r.source), nil
	})
	accessor(proto, "flags", functionProto, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(r.flags), nil
	})
	accessor(proto, "global", functionProto, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(r.global), nil
	})
	accessor(proto, "ignoreCase", functionProto, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		r, exc := requireRegExp(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(strings.Contains(r.flags, "i")), nil
	})

	ctor := runtime.NewNativeFunction(functionProto, "RegExp", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return buildRegExp(ctx, proto, args)
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		return buildRegExp(ctx, proto, args)
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	defineGlobal(engine, "RegExp", ctor)
}

func buildRegExp(ctx *runtime.Context, proto *runtime.Object, args []runtime.Value) (runtime.Value, *runtime.Exception) {
	source, exc := toStr(ctx, arg(args, 0))
	if exc != nil {
		return runtime.Undefined, exc
	}
	flags := ""
	if len(args) > 1 && arg(args, 1) != runtime.Undefined {
		flags, exc = toStr(ctx, args[1])
		if exc != nil {
			return runtime.Undefined, exc
		}
	}
	goPattern := translatePattern(source, flags)
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return runtime.Undefined, ctx.NewSyntaxError("Invalid regular expression: %v", err)
	}
	o := runtime.NewObject(proto)
	o.Class = "RegExp"
	o.Internal = &regexData{
		re:     re,
		source: source,
		flags:  flags,
		global: strings.Contains(flags, "g"),
		sticky: strings.Contains(flags, "y"),
	}
	o.DefineDataProperty("lastIndex", runtime.Number(0), runtime.PropertyAttributes{Writable: true})
	return o, nil
}

// translatePattern prefixes Go's inline-flag syntax for the flags RE2
// supports natively (case-insensitive, dotall, multiline); flags RE2 has
// no equivalent for (unicode property escapes, sticky-as-anchor) are
// accepted but not specially translated, a best-effort facade consistent
// with regex internals being out of scope.
func translatePattern(source, flags string) string {
	var prefix string
	if strings.Contains(flags, "i") {
		prefix += "i"
	}
	if strings.Contains(flags, "s") {
		prefix += "s"
	}
	if strings.Contains(flags, "m") {
		prefix += "m"
	}
	if prefix == "" {
		return source
	}
	return "(?" + prefix + ")" + source
}

func requireRegExp(ctx *runtime.Context, this runtime.Value) (*regexData, *runtime.Exception) {
	o, ok := this.(*runtime.Object)
	if !ok {
		return nil, ctx.NewTypeError("RegExp.prototype method called on non-RegExp")
	}
	r, ok := o.Internal.(*regexData)
	if !ok {
		return nil, ctx.NewTypeError("RegExp.prototype method called on non-RegExp")
	}
	return r, nil
}

func matchFrom(r *regexData, s string) []int {
	start := 0
	if r.global || r.sticky {
		start = r.lastIndex
	}
	if start < 0 || start > len(s) {
		r.lastIndex = 0
		return nil
	}
	loc := r.re.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		return nil
	}
	if r.sticky && loc[0] != 0 {
		return nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += start
		}
	}
	return loc
}
