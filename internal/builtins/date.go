package builtins

import (
	"time"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// installDate wires a minimal Date: constructors from no
// arguments (now), a millisecond timestamp, or year/month/day/...
// components, plus the getters/toISOString/getTime/valueOf the evaluator
// needs to support `new Date()` showing up in scripts that just want a
// timestamp. Internal storage is a time.Time in the object's Internal
// field, consistent with regexData/GeneratorState/PromiseState all using
// Internal for engine-private payloads.
func installDate(engine *runtime.Engine, proto *runtime.Object, functionProto *runtime.Object) {
	nativeMethod(proto, "getTime", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		t, exc := requireDate(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(float64(t.UnixMilli())), nil
	})
	nativeMethod(proto, "valueOf", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		t, exc := requireDate(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.Number(float64(t.UnixMilli())), nil
	})
	nativeMethod(proto, "toISOString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		t, exc := requireDate(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
	})
	nativeMethod(proto, "toString", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		t, exc := requireDate(ctx, this)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return runtime.String(t.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")), nil
	})
	dateGetter := func(name string, get func(time.Time) int) {
		nativeMethod(proto, name, 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
			t, exc := requireDate(ctx, this)
			if exc != nil {
				return runtime.Undefined, exc
			}
			return runtime.Number(get(t)), nil
		})
	}
	dateGetter("getFullYear", func(t time.Time) int { return t.Year() })
	dateGetter("getMonth", func(t time.Time) int { return int(t.Month()) - 1 })
	dateGetter("getDate", func(t time.Time) int { return t.Day() })
	dateGetter("getDay", func(t time.Time) int { return int(t.Weekday()) })
	dateGetter("getHours", func(t time.Time) int { return t.Hour() })
	dateGetter("getMinutes", func(t time.Time) int { return t.Minute() })
	dateGetter("getSeconds", func(t time.Time) int { return t.Second() })
	dateGetter("getMilliseconds", func(t time.Time) int { return t.Nanosecond() / 1e6 })

	ctor := runtime.NewNativeFunction(functionProto, "Date", 7, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.String(time.Now().Format(time.RFC1123)), nil
	})
	ctor.Construct = func(ctx *runtime.Context, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
		t, exc := buildDateTime(ctx, args)
		if exc != nil {
			return runtime.Undefined, exc
		}
		o := runtime.NewObject(proto)
		o.Class = "Date"
		o.Internal = t
		return o, nil
	}
	ctor.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctor, runtime.PropertyAttributes{Writable: true, Configurable: true})
	nativeMethodOn(ctor, functionProto, "now", 0, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		return runtime.Number(float64(time.Now().UnixMilli())), nil
	})
	defineGlobal(engine, "Date", ctor)
}

func buildDateTime(ctx *runtime.Context, args []runtime.Value) (time.Time, *runtime.Exception) {
	switch len(args) {
	case 0:
		return time.Now(), nil
	case 1:
		switch v := args[0].(type) {
		case runtime.Number:
			return time.UnixMilli(int64(v)).UTC(), nil
		case runtime.String:
			if t, err := time.Parse(time.RFC3339, string(v)); err == nil {
				return t, nil
			}
			if t, err := time.Parse("2006-01-02", string(v)); err == nil {
				return t, nil
			}
			return time.Time{}, ctx.NewRangeError("Invalid time value")
		default:
			return time.Time{}, ctx.NewRangeError("Invalid time value")
		}
	default:
		parts := make([]int, 7)
		parts[2] = 1 // day defaults to 1
		for i := 0; i < len(args) && i < 7; i++ {
			n, exc := toInt(ctx, args[i])
			if exc != nil {
				return time.Time{}, exc
			}
			parts[i] = n
		}
		return time.Date(parts[0], time.Month(parts[1]+1), parts[2], parts[3], parts[4], parts[5], parts[6]*1e6, time.UTC), nil
	}
}

func requireDate(ctx *runtime.Context, this runtime.Value) (time.Time, *runtime.Exception) {
	o, ok := this.(*runtime.Object)
	if !ok {
		return time.Time{}, ctx.NewTypeError("Date.prototype method called on non-Date")
	}
	t, ok := o.Internal.(time.Time)
	if !ok {
		return time.Time{}, ctx.NewTypeError("Date.prototype method called on non-Date")
	}
	return t, nil
}
