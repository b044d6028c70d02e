package builtins

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installJSON wires the JSON global: parse walks a gjson.Result tree into
// runtime Values, stringify builds JSON text by repeatedly calling
// sjson.SetRaw against an accumulator starting from "{}"/"[]", mirroring
// how sjson is meant to be driven (incremental path-based writes) rather
// than hand-rolling a JSON encoder.
func installJSON(engine *runtime.Engine, functionProto *runtime.Object) {
	j := runtime.NewObject(engine.ObjectPrototype)

	nativeMethodOn(j, functionProto, "parse", 2, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		text, exc := toStr(ctx, arg(args, 0))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if !gjson.Valid(text) {
			return runtime.Undefined, ctx.NewSyntaxError("Unexpected token in JSON")
		}
		result := gjson.Parse(text)
		v := gjsonToValue(engine, result)
		if reviver, ok := arg(args, 1).(*runtime.Object); ok && reviver.IsCallable() {
			return applyReviver(ctx, reviver, "", v)
		}
		return v, nil
	})
	nativeMethodOn(j, functionProto, "stringify", 3, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		indent := ""
		switch sp := arg(args, 2).(type) {
		case runtime.Number:
			n := int(sp)
			if n > 10 {
				n = 10
			}
			if n > 0 {
				indent = strings.Repeat(" ", n)
			}
		case runtime.String:
			indent = string(sp)
		}
		raw, exc := stringifyValue(ctx, arg(args, 0), make(map[*runtime.Object]bool))
		if exc != nil {
			return runtime.Undefined, exc
		}
		if raw == "" {
			return runtime.Undefined, nil
		}
		if indent != "" {
			return runtime.String(prettyJSON(raw, indent)), nil
		}
		return runtime.String(raw), nil
	})

	defineGlobal(engine, "JSON", j)
}

func gjsonToValue(engine *runtime.Engine, r gjson.Result) runtime.Value {
	switch r.Type {
	case gjson.Null:
		return runtime.Null
	case gjson.False:
		return runtime.False
	case gjson.True:
		return runtime.True
	case gjson.Number:
		return runtime.Number(r.Num)
	case gjson.String:
		return runtime.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			var elems []runtime.Value
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, gjsonToValue(engine, v))
				return true
			})
			return runtime.NewArray(engine.ArrayPrototype, elems)
		}
		o := runtime.NewObject(engine.ObjectPrototype)
		r.ForEach(func(k, v gjson.Result) bool {
			o.DefineDataProperty(k.String(), gjsonToValue(engine, v), runtime.DefaultDataAttributes)
			return true
		})
		return o
	default:
		return runtime.Undefined
	}
}

func applyReviver(ctx *runtime.Context, reviver *runtime.Object, key string, v runtime.Value) (runtime.Value, *runtime.Exception) {
	if o, ok := v.(*runtime.Object); ok {
		if o.IsArray() {
			elems := o.Elements()
			for i, e := range elems {
				r, exc := applyReviver(ctx, reviver, strconv.Itoa(i), e)
				if exc != nil {
					return runtime.Undefined, exc
				}
				_ = o.SetElement(ctx, uint32(i), r, false)
			}
		} else {
			for _, name := range o.OwnPropertyNames() {
				child, exc := o.Get(ctx, name, o)
				if exc != nil {
					return runtime.Undefined, exc
				}
				r, exc := applyReviver(ctx, reviver, name, child)
				if exc != nil {
					return runtime.Undefined, exc
				}
				if exc := o.Set(ctx, name, r, o, false); exc != nil {
					return runtime.Undefined, exc
				}
			}
		}
	}
	holder := runtime.NewObject(ctx.Engine.ObjectPrototype)
	holder.DefineDataProperty(key, v, runtime.DefaultDataAttributes)
	return ctx.CallFunction(reviver, holder, []runtime.Value{runtime.String(key), v})
}

// stringifyValue implements the JSON.stringify algorithm's value-to-text
// step: unsupported values (undefined, functions, symbols) at the top
// level yield no output, and nested in arrays/objects they serialize as
// null/are omitted respectively, matching standard JSON semantics.
func stringifyValue(ctx *runtime.Context, v runtime.Value, seen map[*runtime.Object]bool) (string, *runtime.Exception) {
	switch t := v.(type) {
	case nil:
		return "null", nil
	case runtime.Boolean:
		if t {
			return "true", nil
		}
		return "false", nil
	case runtime.Number:
		if t.String() == "NaN" || t.String() == "Infinity" || t.String() == "-Infinity" {
			return "null", nil
		}
		return t.String(), nil
	case runtime.String:
		return strconv.Quote(string(t)), nil
	case *runtime.Object:
		if t == nil {
			return "null", nil
		}
		if t.IsCallable() {
			return "", nil
		}
		if toJSON, exc := t.Get(ctx, "toJSON", t); exc == nil {
			if fn, ok := toJSON.(*runtime.Object); ok && fn.IsCallable() {
				r, exc := ctx.CallFunction(fn, t, nil)
				if exc != nil {
					return "", exc
				}
				return stringifyValue(ctx, r, seen)
			}
		}
		if seen[t] {
			return "", ctx.NewTypeError("Converting circular structure to JSON")
		}
		seen[t] = true
		defer delete(seen, t)
		if t.IsArray() {
			acc := "[]"
			for i, e := range t.Elements() {
				s, exc := stringifyValue(ctx, e, seen)
				if exc != nil {
					return "", exc
				}
				if s == "" {
					s = "null"
				}
				var err error
				acc, err = sjson.SetRaw(acc, strconv.Itoa(i), s)
				if err != nil {
					return "", ctx.NewTypeError("JSON.stringify: %v", err)
				}
			}
			return acc, nil
		}
		if s, ok := t.Primitive.(runtime.String); ok && t.Class == "String" {
			return strconv.Quote(string(s)), nil
		}
		acc := "{}"
		for _, name := range t.OwnEnumerablePropertyNames() {
			child, exc := t.Get(ctx, name, t)
			if exc != nil {
				return "", exc
			}
			s, exc := stringifyValue(ctx, child, seen)
			if exc != nil {
				return "", exc
			}
			if s == "" {
				continue
			}
			var err error
			acc, err = sjson.SetRaw(acc, escapeSjsonPath(name), s)
			if err != nil {
				return "", ctx.NewTypeError("JSON.stringify: %v", err)
			}
		}
		return acc, nil
	default:
		return "", nil
	}
}

// prettyJSON re-indents compact JSON text: it walks the parsed tree with
// gjson and re-emits it with indent, since sjson has no public
// pretty-printer.
func prettyJSON(raw string, indent string) string {
	var b strings.Builder
	writeIndented(&b, gjson.Parse(raw), indent, 0)
	return b.String()
}

func writeIndented(b *strings.Builder, r gjson.Result, indent string, depth int) {
	pad := strings.Repeat(indent, depth+1)
	closePad := strings.Repeat(indent, depth)
	switch {
	case r.IsArray():
		items := r.Array()
		if len(items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range items {
			b.WriteString(pad)
			writeIndented(b, item, indent, depth+1)
			if i < len(items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(closePad + "]")
	case r.IsObject():
		var keys []string
		var vals []gjson.Result
		r.ForEach(func(k, v gjson.Result) bool {
			keys = append(keys, k.String())
			vals = append(vals, v)
			return true
		})
		if len(keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(pad)
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			writeIndented(b, vals[i], indent, depth+1)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(closePad + "}")
	default:
		b.WriteString(r.Raw)
	}
}

// escapeSjsonPath backslash-escapes sjson/gjson's path metacharacters so
// arbitrary property names (including ones containing '.') round-trip
// through SetRaw's path syntax intact.
func escapeSjsonPath(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '#', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
