package runtime

import (
	"math"
	"sort"
	"strconv"
)

// Accessor is an own accessor property's getter/setter pair. Occupies a
// slot the same way a data property would, but the slot holds this
// instead of a Value.
type Accessor struct {
	Get Value // function Value or nil
	Set Value // function Value or nil
}

// Object is the runtime representation backing every non-primitive value:
// plain objects, arrays, functions, errors, and boxed primitives.
//
// Property storage contract:
//   - shape + slots hold named (string-keyed) properties.
//   - elements hold dense, numeric-index (array) storage; sparse indices
//     beyond the dense run spill into overflow.
//   - prototype is consulted on a miss in Get/Has, never in own-property
//     operations (GetOwn/HasOwn/DefineOwn/Delete).
type Object struct {
	shape     *Shape
	slots     []interface{} // Value for data properties, *Accessor for accessor properties
	prototype *Object       // nil means no prototype (Object.prototype chain ends here)

	elements []Value         // dense array storage, index i holds key i
	overflow map[uint32]Value // sparse indices beyond len(elements)

	Class string // "Object", "Array", "Function", "Error", "RegExp", "Date", "Promise", "Generator", ...

	Extensible bool
	Sealed     bool
	Frozen     bool

	// Callable/Construct are non-nil for function objects. They are set by
	// the interp package when creating FunctionValue-backed objects;
	// runtime itself only stores and dispatches through them.
	Call      CallableFunc
	Construct ConstructFunc

	// Primitive, if non-nil, is the boxed primitive value for a
	// Boolean/Number/String/Symbol/BigInt wrapper object (`new Number(1)`,
	// or the throwaway view synthesized for `"abc".length`).
	Primitive Value

	// Internal holds engine-private data: *GeneratorState, *PromiseState,
	// *RegexData, time.Time for Date, etc. Opaque to property access.
	Internal interface{}
}

// CallableFunc is the [[Call]] internal method.
type CallableFunc func(ctx *Context, this Value, args []Value) (Value, *Exception)

// ConstructFunc is the [[Construct]] internal method.
type ConstructFunc func(ctx *Context, args []Value, newTarget *Object) (Value, *Exception)

// NewObject allocates a plain object with the given prototype (nil for
// none) and registers it with the engine's allocator ("the engine exposes
// allocate(object) which registers with the GC" — Go's garbage collector
// plays that role here, so registration is a no-op hook rather than a
// tracked root set).
func NewObject(proto *Object) *Object {
	return &Object{
		shape:      RootShape,
		prototype:  proto,
		Class:      "Object",
		Extensible: true,
	}
}

// Type implements Value: objects report "object" except for callable
// function objects, which report "function" (the typeof table).
func (o *Object) Type() string {
	if o.Call != nil {
		return "function"
	}
	return "object"
}

// String implements Value's default ToString-adjacent stringification for
// contexts (like error messages) that don't go through the full
// ToPrimitive/Symbol.toPrimitive protocol in internal/interp.
func (o *Object) String() string {
	if o.IsArray() {
		return "[object Array]"
	}
	if o.Call != nil {
		return "function " + o.Class + "() { [native code] }"
	}
	return "[object " + o.Class + "]"
}

func (*Object) valueMarker() {}

// Prototype returns the object's [[Prototype]], or nil.
func (o *Object) Prototype() *Object { return o.prototype }

// SetPrototype changes the object's [[Prototype]] (used by class setup and
// Object.setPrototypeOf).
func (o *Object) SetPrototype(proto *Object) { o.prototype = proto }

// IsArray reports whether this object is an Array exotic object.
func (o *Object) IsArray() bool { return o.Class == "Array" }

// IsCallable reports whether the object has a [[Call]] method.
func (o *Object) IsCallable() bool { return o.Call != nil }

// ---- named property access -------------------------------------------

// GetOwnProperty returns the PropertyInfo and slot contents for an own
// named property, without walking the prototype chain.
func (o *Object) GetOwnProperty(name string) (PropertyInfo, interface{}, bool) {
	info, ok := o.shape.Lookup(name)
	if !ok {
		return PropertyInfo{}, nil, false
	}
	return info, o.slots[info.Offset], true
}

// HasOwn reports whether name is an own named property (not counting
// elements).
func (o *Object) HasOwn(name string) bool {
	_, ok := o.shape.Lookup(name)
	return ok
}

// Get implements the [[Get]] protocol: walk own property,
// then the prototype chain; invoke an accessor's getter with `this`
// bound to receiver (not necessarily o, to support Reflect.get-style
// calls — ordinary property reads pass o for both).
func (o *Object) Get(ctx *Context, name string, receiver Value) (Value, *Exception) {
	if idx, ok := arrayIndex(name); ok {
		return o.GetElement(idx), nil
	}
	cur := o
	for cur != nil {
		if info, slot, ok := cur.GetOwnProperty(name); ok {
			if info.Attrs.Accessor {
				acc := slot.(*Accessor)
				if acc.Get == nil || acc.Get == Value(Undefined) {
					return Undefined, nil
				}
				return ctx.CallFunction(acc.Get, receiver, nil)
			}
			return slot.(Value), nil
		}
		cur = cur.prototype
	}
	return Undefined, nil
}

// Has implements [[HasProperty]]: own or inherited, named or element.
func (o *Object) Has(name string) bool {
	if idx, ok := arrayIndex(name); ok {
		return o.HasElement(idx)
	}
	cur := o
	for cur != nil {
		if cur.HasOwn(name) {
			return true
		}
		cur = cur.prototype
	}
	return false
}

// Set implements the [[Set]] protocol. strict controls
// whether a failed write (read-only inherited property, frozen object)
// raises a TypeError or silently no-ops.
func (o *Object) Set(ctx *Context, name string, value Value, receiver Value, strict bool) *Exception {
	if idx, ok := arrayIndex(name); ok {
		return o.SetElement(ctx, idx, value, strict)
	}

	// Own accessor: invoke the setter (or fail per strict mode).
	if info, slot, ok := o.GetOwnProperty(name); ok {
		if info.Attrs.Accessor {
			acc := slot.(*Accessor)
			if acc.Set == nil || acc.Set == Value(Undefined) {
				return o.rejectWrite(ctx, name, strict)
			}
			_, exc := ctx.CallFunction(acc.Set, receiver, []Value{value})
			return exc
		}
		if !info.Attrs.Writable {
			return o.rejectWrite(ctx, name, strict)
		}
		o.slots[info.Offset] = value
		return nil
	}

	// Inherited accessor/read-only property.
	for cur := o.prototype; cur != nil; cur = cur.prototype {
		if info, slot, ok := cur.GetOwnProperty(name); ok {
			if info.Attrs.Accessor {
				acc := slot.(*Accessor)
				if acc.Set == nil || acc.Set == Value(Undefined) {
					return o.rejectWrite(ctx, name, strict)
				}
				_, exc := ctx.CallFunction(acc.Set, receiver, []Value{value})
				return exc
			}
			if !info.Attrs.Writable {
				return o.rejectWrite(ctx, name, strict)
			}
			break
		}
	}

	if o.Frozen || o.Sealed || !o.Extensible {
		return o.rejectWrite(ctx, name, strict)
	}

	o.defineDataSlot(name, value, DefaultDataAttributes)
	return nil
}

func (o *Object) rejectWrite(ctx *Context, name string, strict bool) *Exception {
	if strict {
		return ctx.NewTypeError("Cannot assign to read only property '%s'", name)
	}
	return nil
}

// defineDataSlot transitions to a new shape with an extra data slot and
// appends the value.
func (o *Object) defineDataSlot(name string, value Value, attrs PropertyAttributes) {
	o.shape = o.shape.Transition(name, attrs)
	o.slots = append(o.slots, value)
}

// DefineDataProperty creates or overwrites an own data property directly
// (used by object-literal evaluation and Object.defineProperty), bypassing
// the inherited-read-only/frozen checks Set applies.
func (o *Object) DefineDataProperty(name string, value Value, attrs PropertyAttributes) {
	if idx, ok := arrayIndex(name); ok {
		o.setElementRaw(idx, value)
		return
	}
	if info, _, ok := o.GetOwnProperty(name); ok {
		o.slots[info.Offset] = value
		if info.Attrs != attrs {
			o.redefineAttrs(name, attrs)
		}
		return
	}
	o.defineDataSlot(name, value, attrs)
}

// DefineAccessorProperty installs or merges a getter/setter pair.
func (o *Object) DefineAccessorProperty(name string, get, set Value, attrs PropertyAttributes) {
	attrs.Accessor = true
	if info, slot, ok := o.GetOwnProperty(name); ok && info.Attrs.Accessor {
		acc := slot.(*Accessor)
		if get != nil {
			acc.Get = get
		}
		if set != nil {
			acc.Set = set
		}
		return
	}
	o.shape = o.shape.Transition(name, attrs)
	o.slots = append(o.slots, &Accessor{Get: get, Set: set})
}

// redefineAttrs rebuilds the shape chain for a changed-attribute property.
// Rare path (Object.defineProperty changing writable/enumerable/
// configurable on an existing key), so a private shape is fine here too.
func (o *Object) redefineAttrs(name string, attrs PropertyAttributes) {
	info, _, _ := o.GetOwnProperty(name)
	names := o.shape.Names()
	values := append([]interface{}(nil), o.slots...)
	old := o.shape
	o.shape = RootShape
	o.slots = nil
	for i, n := range names {
		a := DefaultDataAttributes
		if n == name {
			a = attrs
		} else if existing, ok := old.parentLookup(n); ok {
			a = existing
		}
		_ = i
		o.shape = o.shape.Transition(n, a)
		o.slots = append(o.slots, values[i])
	}
	_ = info
}

// Delete implements [[Delete]]: non-configurable properties fail (and the
// caller decides, per strict mode, whether that is an exception or a
// `false` result).
func (o *Object) Delete(name string) bool {
	if idx, ok := arrayIndex(name); ok {
		return o.deleteElement(idx)
	}
	info, ok := o.shape.Lookup(name)
	if !ok {
		return true
	}
	if !info.Attrs.Configurable {
		return false
	}
	names := o.shape.Names()
	values := make([]interface{}, 0, len(names)-1)
	newShape := RootShape
	for i, n := range names {
		if n == name {
			continue
		}
		attrs := DefaultDataAttributes
		if existing, ok2 := o.shape.Lookup(n); ok2 {
			attrs = existing.Attrs
		}
		newShape = newShape.Transition(n, attrs)
		values = append(values, o.slots[i])
	}
	o.shape = newShape
	o.slots = values
	return true
}

// OwnPropertyNames returns own named-property keys in insertion order
// (the standard enumeration ordering for string keys).
func (o *Object) OwnPropertyNames() []string {
	return o.shape.Names()
}

// OwnEnumerablePropertyNames filters OwnPropertyNames to enumerable ones,
// used by for-in, Object.keys/values/entries, and JSON.stringify.
func (o *Object) OwnEnumerablePropertyNames() []string {
	var out []string
	for _, n := range o.shape.Names() {
		if info, ok := o.shape.Lookup(n); ok && info.Attrs.Enumerable {
			out = append(out, n)
		}
	}
	return out
}

// parentLookup is a helper so redefineAttrs can read attrs for untouched
// keys while rebuilding the shape from scratch.
func (s *Shape) parentLookup(name string) (PropertyAttributes, bool) {
	if info, ok := s.table[name]; ok {
		return info.Attrs, true
	}
	return PropertyAttributes{}, false
}

func arrayIndex(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	if name == "0" {
		return 0, true
	}
	if name[0] < '1' || name[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// KeysInEnumerationOrder returns own enumerable string keys in insertion
// order, then (if includeElements) numeric element keys by ascending
// integer value.
func (o *Object) KeysInEnumerationOrder(includeElements bool) []string {
	var out []string
	out = append(out, o.OwnEnumerablePropertyNames()...)
	if includeElements {
		n := o.ElementCount()
		nums := make([]int, 0, n)
		for i := range o.elements {
			nums = append(nums, i)
		}
		for k := range o.overflow {
			nums = append(nums, int(k))
		}
		sort.Ints(nums)
		for _, i := range nums {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out
}
