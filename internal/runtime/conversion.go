package runtime

import (
	"math"
	"strconv"
	"strings"
)

// PreferredType steers ToPrimitive's default-hint ordering.
type PreferredType int

const (
	PreferDefault PreferredType = iota
	PreferNumber
	PreferString
)

// ToPrimitive implements the abstract ToPrimitive operation: an
// object consults Symbol.toPrimitive first if present, then falls back to
// valueOf/toString (or toString/valueOf for PreferString) in order,
// taking the first result that isn't itself an object.
func ToPrimitive(ctx *Context, v Value, hint PreferredType) (Value, *Exception) {
	o, ok := v.(*Object)
	if !ok {
		return v, nil
	}
	if sym, excSym := lookupSymbolToPrimitive(ctx, o); excSym != nil {
		return Undefined, excSym
	} else if sym != Undefined && sym != nil {
		hintStr := "default"
		switch hint {
		case PreferNumber:
			hintStr = "number"
		case PreferString:
			hintStr = "string"
		}
		result, exc := ctx.CallFunction(sym, o, []Value{String(hintStr)})
		if exc != nil {
			return Undefined, exc
		}
		if _, isObj := result.(*Object); isObj {
			return Undefined, ctx.NewTypeError("Cannot convert object to primitive value")
		}
		return result, nil
	}

	methods := []string{"valueOf", "toString"}
	if hint == PreferString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, exc := o.Get(ctx, name, o)
		if exc != nil {
			return Undefined, exc
		}
		if fnObj, ok := fn.(*Object); ok && fnObj.Call != nil {
			result, exc := ctx.CallFunction(fn, o, nil)
			if exc != nil {
				return Undefined, exc
			}
			if _, isObj := result.(*Object); !isObj {
				return result, nil
			}
		}
	}
	return Undefined, ctx.NewTypeError("Cannot convert object to primitive value")
}

func lookupSymbolToPrimitive(ctx *Context, o *Object) (Value, *Exception) {
	// Symbol-keyed properties are not stored in the named-property shape
	// table; internal/interp's symbol-property layer (built atop a side
	// table keyed by *Symbol) is consulted via this hook so runtime stays
	// ignorant of that representation. Until interp installs the hook,
	// treat every object as lacking Symbol.toPrimitive.
	if ctx == nil || ctx.Engine == nil || ctx.Engine.SymbolPropertyLookup == nil {
		return Undefined, nil
	}
	return ctx.Engine.SymbolPropertyLookup(o, SymbolToPrimitive)
}

// ToNumber implements the ToNumber abstract operation.
func ToNumber(ctx *Context, v Value) (Number, *Exception) {
	switch t := v.(type) {
	case nil:
		return NaN, nil
	case undefinedValue:
		return NaN, nil
	case nullValue:
		return 0, nil
	case Boolean:
		if t {
			return 1, nil
		}
		return 0, nil
	case Number:
		return t, nil
	case String:
		return stringToNumber(string(t)), nil
	case BigInt:
		return NaN, ctx.NewTypeError("Cannot convert a BigInt value to a number")
	case *Symbol:
		return NaN, ctx.NewTypeError("Cannot convert a Symbol value to a number")
	case *Object:
		prim, exc := ToPrimitive(ctx, t, PreferNumber)
		if exc != nil {
			return NaN, exc
		}
		return ToNumber(ctx, prim)
	}
	return NaN, nil
}

func stringToNumber(s string) Number {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	if trimmed == "Infinity" || trimmed == "+Infinity" {
		return PosInf
	}
	if trimmed == "-Infinity" {
		return NegInf
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		if n, err := strconv.ParseUint(trimmed[2:], 16, 64); err == nil {
			return Number(n)
		}
		return NaN
	}
	if strings.HasPrefix(trimmed, "0o") || strings.HasPrefix(trimmed, "0O") {
		if n, err := strconv.ParseUint(trimmed[2:], 8, 64); err == nil {
			return Number(n)
		}
		return NaN
	}
	if strings.HasPrefix(trimmed, "0b") || strings.HasPrefix(trimmed, "0B") {
		if n, err := strconv.ParseUint(trimmed[2:], 2, 64); err == nil {
			return Number(n)
		}
		return NaN
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return NaN
	}
	return Number(f)
}

// ToString implements ToString for primitives; objects route
// through ToPrimitive(PreferString) first.
func ToString(ctx *Context, v Value) (String, *Exception) {
	switch t := v.(type) {
	case nil, undefinedValue:
		return "undefined", nil
	case nullValue:
		return "null", nil
	case Boolean, Number:
		return String(t.String()), nil
	case String:
		return t, nil
	case BigInt:
		return String(t.String()), nil
	case *Symbol:
		return "", ctx.NewTypeError("Cannot convert a Symbol value to a string")
	case *Object:
		prim, exc := ToPrimitive(ctx, t, PreferString)
		if exc != nil {
			return "", exc
		}
		return ToString(ctx, prim)
	}
	return "", nil
}

// ToBoolean implements ToBoolean: every value is truthy except
// undefined, null, false, +0/-0, NaN, and "".
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case nil, undefinedValue, nullValue:
		return false
	case Boolean:
		return bool(t)
	case Number:
		f := float64(t)
		return f != 0 && !math.IsNaN(f)
	case String:
		return len(t) > 0
	case BigInt:
		return t.V.Sign() != 0
	default:
		return true
	}
}

// ToInt32 implements ToInt32 (used by bitwise/shift operators).
func ToInt32(ctx *Context, v Value) (int32, *Exception) {
	n, exc := ToNumber(ctx, v)
	if exc != nil {
		return 0, exc
	}
	return numberToInt32(n), nil
}

func numberToInt32(n Number) int32 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	f = math.Trunc(f)
	m := math.Mod(f, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	u := uint32(m)
	return int32(u)
}

// ToUint32 implements ToUint32 (array length, bitwise results
// that must stay unsigned).
func ToUint32(ctx *Context, v Value) (uint32, *Exception) {
	n, exc := ToNumber(ctx, v)
	if exc != nil {
		return 0, exc
	}
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0, nil
	}
	f = math.Trunc(f)
	m := math.Mod(f, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m), nil
}

// ToObject implements ToObject: wraps primitives in their boxed
// form using the engine's well-known prototypes, passes objects through,
// and rejects null/undefined. Lives in runtime (rather than only in
// internal/interp, which also exposes a thin wrapper for its own call
// sites) so internal/builtins can box a `this` value without depending on
// internal/interp.
func ToObject(ctx *Context, v Value) (*Object, *Exception) {
	switch t := v.(type) {
	case *Object:
		return t, nil
	case String:
		o := NewObject(ctx.Engine.StringPrototype)
		o.Class = "String"
		o.Primitive = t
		o.DefineDataProperty("length", Number(len([]rune(string(t)))), PropertyAttributes{})
		return o, nil
	case Number:
		o := NewObject(ctx.Engine.NumberPrototype)
		o.Class = "Number"
		o.Primitive = t
		return o, nil
	case Boolean:
		o := NewObject(ctx.Engine.BooleanPrototype)
		o.Class = "Boolean"
		o.Primitive = t
		return o, nil
	case BigInt:
		o := NewObject(ctx.Engine.BigIntPrototype)
		o.Class = "BigInt"
		o.Primitive = t
		return o, nil
	case *Symbol:
		o := NewObject(ctx.Engine.SymbolPrototype)
		o.Class = "Symbol"
		o.Primitive = t
		return o, nil
	default:
		return nil, ctx.NewTypeError("Cannot convert undefined or null to object")
	}
}

// ToIntegerOrInfinity implements ToIntegerOrInfinity: ToNumber,
// then NaN collapses to 0, and finite values truncate toward zero,
// preserving infinities. Array/string index and length arithmetic throughout
// internal/builtins goes through this rather than ToInt32/ToUint32, which
// wrap rather than clamp.
func ToIntegerOrInfinity(ctx *Context, v Value) (float64, *Exception) {
	n, exc := ToNumber(ctx, v)
	if exc != nil {
		return 0, exc
	}
	f := float64(n)
	if math.IsNaN(f) {
		return 0, nil
	}
	if math.IsInf(f, 0) {
		return f, nil
	}
	return math.Trunc(f), nil
}

// SameValueZero implements the SameValueZero algorithm, used by
// Array.prototype.includes, Set/Map key comparison, and `===` except for
// NaN (which SameValueZero treats as equal to itself and `===` does not;
// StrictEquals in internal/interp implements the `===` variant directly).
func SameValueZero(a, b Value) bool {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv
	default:
		return a == b
	}
}
