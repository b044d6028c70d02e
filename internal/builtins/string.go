package builtins

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installString wires String.prototype's full method list plus the
// String constructor's fromCharCode/fromCodePoint/raw statics.
// localeCompare uses golang.org/x/text/collate for locale-aware comparison
// rather than the ordinal byte comparison `<`/`>` would give.
func installString(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(s), nil
	})
	nativeMethod(proto, "valueOf", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(s), nil
	})
	nativeMethod(proto, "charAt", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		units := utf16.Encode([]rune(s))
		i, exc := toInt(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if i < 0 || i >= len(units) {
			return runtime.String(""), nil
		}
		return runtime.String(utf16.Decode(units[i : i+1])), nil
	})
	nativeMethod(proto, "charCodeAt", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		units := utf16.Encode([]rune(s))
		i, exc := toInt(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if i < 0 || i >= len(units) {
			return runtime.NaN, nil
		}
		return runtime.Number(units[i]), nil
	})
	nativeMethod(proto, "codePointAt", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		runes := []rune(s)
		i, exc := toInt(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if i < 0 || i >= len(runes) {
			return runtime.Undefined, nil
		}
		return runtime.Number(runes[i]), nil
	})
	nativeMethod(proto, "indexOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		search, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		start := 0
		if len(args) > 1 {
			start, exc = toInt(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
		}
		runes := []rune(s)
		start = relativeIndex(float64(start), len(runes))
		idx := strings.Index(string(runes[start:]), search)
		if idx < 0 {
			return runtime.Number(-1), nil
		}
		return runtime.Number(start + utf8.RuneCountInString(string(runes[start:])[:idx])), nil
	})
	nativeMethod(proto, "lastIndexOf", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		search, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		idx := strings.LastIndex(s, search)
		if idx < 0 {
			return runtime.Number(-1), nil
		}
		return runtime.Number(utf8.RuneCountInString(s[:idx])), nil
	})
	nativeMethod(proto, "includes", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		search, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(strings.Contains(s, search)), nil
	})
	nativeMethod(proto, "startsWith", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		search, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(strings.HasPrefix(s, search)), nil
	})
	nativeMethod(proto, "endsWith", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		search, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.BoolValue(strings.HasSuffix(s, search)), nil
	})
	nativeMethod(proto, "slice", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		runes := []rune(s)
		n := len(runes)
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
		return runtime.String(string(runes[start:end])), nil
	})
	nativeMethod(proto, "substring", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		runes := []rune(s)
		n := len(runes)
		start, end := 0, n
		if len(args) > 0 && arg(args, 0) != runtime.Undefined {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = clampNonNeg(f, n)
		}
		if len(args) > 1 && arg(args, 1) != runtime.Undefined {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			end = clampNonNeg(f, n)
		}
		if start > end {
			start, end = end, start
		}
		return runtime.String(string(runes[start:end])), nil
	})
	nativeMethod(proto, "substr", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		runes := []rune(s)
		n := len(runes)
		start := 0
		if len(args) > 0 {
			f, exc := runtime.ToIntegerOrInfinity(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
			start = relativeIndex(f, n)
		}
		length := n - start
		if len(args) > 1 && arg(args, 1) != runtime.Undefined {
			l, exc := toInt(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			if l < 0 {
				l = 0
			}
			if l < length {
				length = l
			}
		}
		end := start + length
		if end > n {
			end = n
		}
		return runtime.String(string(runes[start:end])), nil
	})
	nativeMethod(proto, "toUpperCase", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(strings.ToUpper(s)), nil
	})
	nativeMethod(proto, "toLowerCase", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(strings.ToLower(s)), nil
	})
	nativeMethod(proto, "trim", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(strings.TrimSpace(s)), nil
	})
	nativeMethod(proto, "trimStart", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(strings.TrimLeft(s, " \t\n\r\v\f")), nil
	})
	nativeMethod(proto, "trimEnd", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(strings.TrimRight(s, " \t\n\r\v\f")), nil
	})
	nativeMethod(proto, "repeat", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		n, exc := toInt(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if n < 0 {
			return runtime.Undefined, ctx.NewRangeError("Invalid count value")
		}
		return runtime.String(strings.Repeat(s, n)), nil
	})
	nativeMethod(proto, "padStart", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return padString(ctx, this, args, true)
	})
	nativeMethod(proto, "padEnd", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return padString(ctx, this, args, false)
	})
	nativeMethod(proto, "concat", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			str, exc := toStr(ctx, a)
			if exc != nil {
				return runtime.Undefined, exc
			}
			b.WriteString(str)
		}
		return runtime.String(b.String()), nil
	})
	nativeMethod(proto, "split", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		sep := arg(args, 0)
		if sep == runtime.Undefined {
			return runtime.NewArray(ctx.Engine.ArrayPrototype, []runtime.Value{runtime.String(s)}), nil
		}
		sepStr, exc := toStr(ctx, sep)
		if exc != nil {
			return runtime.Undefined, exc
		}
		var parts []string
		if sepStr == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sepStr)
		}
		if len(args) > 1 && arg(args, 1) != runtime.Undefined {
			limit, exc := toInt(ctx, args[1])
			if exc != nil {
				return runtime.Undefined, exc
			}
			if limit < len(parts) {
				parts = parts[:limit]
			}
		}
		out := make([]runtime.Value, len(parts))
		for i, p := range parts {
			out[i] = runtime.String(p)
		}
		return runtime.NewArray(ctx.Engine.ArrayPrototype, out), nil
	})
	nativeMethod(proto, "replace", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return replaceString(ctx, this, args, false)
	})
	nativeMethod(proto, "replaceAll", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return replaceString(ctx, this, args, true)
	})
	nativeMethod(proto, "localeCompare", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		other, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		tag := language.Und
		if len(args) > 1 {
			if loc, exc := toStr(ctx, args[1]); exc == nil && loc != "" {
				if t, err := language.Parse(loc); err == nil {
					tag = t
				}
			}
		}
		c := collate.New(tag)
		return runtime.Number(c.CompareString(s, other)), nil
	})
	nativeMethod(proto, "at", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		runes := []rune(s)
		f, exc := runtime.ToIntegerOrInfinity(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		i := int(f)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return runtime.Undefined, nil
		}
		return runtime.String(string(runes[i])), nil
	})

	engine.SetSymbolProperty(proto, runtime.SymbolIterator, runtime.NewNativeFunction(functionProto, "[Symbol.iterator]", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		s, exc := thisStringValue(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		var vals []runtime.Value
		for _, r := range s {
			vals = append(vals, runtime.String(string(r)))
		}
		return newArrayIterator(engine, functionProto, vals), nil
	}))

	ctor := runtime.NewNativeFunction(functionProto, "String", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		if len(args) == 0 {
			return runtime.String(""), nil
		}
		s, exc := toStr(ctx, args[0])
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(s), nil
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		s := ""
		if len(args) > 0 {
			var exc *runtime.Exception
			s, exc = toStr(ctx, args[0])
			if exc != nil {
				return runtime.Undefined, exc
			}
		}
		o := runtime.NewObject(proto)
		o.Class = "String"
		o.Primitive = runtime.String(s)
		o.DefineDataProperty("length", runtime.Number(len([]rune(s))), runtime.PropertyAttributes{})
		return o, nil
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	nativeMethodOn(ctor, functionProto, "fromCharCode", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		units := make([]uint16, len(args))
		for i, a := range args {
			n, exc := toInt(ctx, a)
			if exc != nil {
				return runtime.Undefined, exc
			}
			units[i] = uint16(n)
		}
		return runtime.String(utf16.Decode(units)), nil
	})
	nativeMethodOn(ctor, functionProto, "fromCodePoint", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		var b strings.Builder
		for _, a := range args {
			n, exc := toInt(ctx, a)
			if exc != nil {
				return runtime.Undefined, exc
			}
			b.WriteRune(rune(n))
		}
		return runtime.String(b.String()), nil
	})
	nativeMethodOn(ctor, functionProto, "raw", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		tmpl, ok := arg(args, 0).(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("String.raw called on non-object")
		}
		rawVal, exc := tmpl.Get(ctx, "raw", tmpl)
		if exc != nil {
			return runtime.Undefined, exc
		}
		raw, ok := rawVal.(*runtime.Object)
		if !ok {
			return runtime.Undefined, ctx.NewTypeError("String.raw template has no raw property")
		}
		n := raw.Length()
		var b strings.Builder
		subs := args[1:]
		for i := uint32(0); i < n; i++ {
			s, exc := toStr(ctx, raw.GetElement(i))
			if exc != nil {
				return runtime.Undefined, exc
			}
			b.WriteString(s)
			if int(i) < len(subs) {
				sub, exc := toStr(ctx, subs[i])
				if exc != nil {
					return runtime.Undefined, exc
				}
				b.WriteString(sub)
			}
		}
		return runtime.String(b.String()), nil
	})
	defineGlobal(engine, "String", ctor)
}

func clampNonNeg(f float64, length int) int {
	if f < 0 {
		return 0
	}
	if f > float64(length) {
		return length
	}
	return int(f)
}

// thisStringValue unwraps a String primitive or boxed String object this
// value, the shared first step of nearly every String.prototype method.
func thisStringValue(ctx *runtime.Context, this runtime.Value) (string, *runtime.Exception) {
	switch t := this.(type) {
	case runtime.String:
		return string(t), nil
	case *runtime.Object:
		if s, ok := t.Primitive.(runtime.String); ok {
			return string(s), nil
		}
	}
	return "", ctx.NewTypeError("String.prototype method called on incompatible receiver")
}

func padString(ctx *runtime.Context, this runtime.Value, args []runtime.Value, start bool) (runtime.Value, *runtime.Exception) {
	s, exc := thisStringValue(ctx, this)
	if exc != nil {
		return runtime.Undefined, exc
	}
	targetLen, exc := toInt(ctx, arg(args, 0))
	if exc != nil {
		return runtime.Undefined, exc
	}
	pad := " "
	if len(args) > 1 && arg(args, 1) != runtime.Undefined {
		pad, exc = toStr(ctx, args[1])
		if exc != nil {
			return runtime.Undefined, exc
		}
	}
	runes := []rune(s)
	if pad == "" || targetLen <= len(runes) {
		return runtime.String(s), nil
	}
	need := targetLen - len(runes)
	padRunes := []rune(strings.Repeat(pad, need/len([]rune(pad))+1))[:need]
	if start {
		return runtime.String(string(padRunes) + s), nil
	}
	return runtime.String(s + string(padRunes)), nil
}

// replaceString implements replace/replaceAll's shared path. The search
// argument is converted with ToString and matched literally; a RegExp
// argument is not matched as a pattern. The replacement is either a
// callback, called with (match, index, string), or a string in which only
// the "$&" pattern is expanded.
func replaceString(ctx *runtime.Context, this runtime.Value, args []runtime.Value, all bool) (runtime.Value, *runtime.Exception) {
	s, exc := thisStringValue(ctx, this)
	if exc != nil {
		return runtime.Undefined, exc
	}
	search, exc := toStr(ctx, arg(args, 0))
	if exc != nil {
		return runtime.Undefined, exc
	}
	replacement := arg(args, 1)
	replaceOne := func(match string, index int) (string, *runtime.Exception) {
		if fn, ok := replacement.(*runtime.Object); ok && fn.IsCallable() {
			r, exc := ctx.CallFunction(fn, runtime.Undefined, []runtime.Value{runtime.String(match), runtime.Number(index), runtime.String(s)})
			if exc != nil {
				return "", exc
			}
			return toStr(ctx, r)
		}
		rep, exc := toStr(ctx, replacement)
		if exc != nil {
			return "", exc
		}
		return strings.ReplaceAll(rep, "$&", match), nil
	}
	if search == "" {
		if !all {
			rep, exc := replaceOne("", 0)
			if exc != nil {
				return runtime.Undefined, exc
			}
			return runtime.String(rep + s), nil
		}
		return runtime.String(s), nil
	}
	var b strings.Builder
	rest := s
	offset := 0
	count := 0
	for {
		idx := strings.Index(rest, search)
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		rep, exc := replaceOne(search, offset+idx)
		if exc != nil {
			return runtime.Undefined, exc
		}
		b.WriteString(rep)
		consumed := idx + len(search)
		rest = rest[consumed:]
		offset += consumed
		count++
		if !all {
			b.WriteString(rest)
			break
		}
	}
	_ = count
	return runtime.String(b.String()), nil
}
