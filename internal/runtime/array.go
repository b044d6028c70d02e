package runtime

// Array element storage. Indices below len(elements) are dense; indices at
// or beyond that but still tracked live in overflow. NewArray objects carry
// a "length" accessor-like behavior: GetOwnProperty("length") is special
// cased by the interp package's Array.prototype wiring, not stored as a
// regular slot, so truncating length here is the only place array shrink
// semantics live.

// NewArray allocates an Array exotic object with the given initial elements
// and the Array.prototype passed by the caller (the engine's global Array
// constructor prototype).
func NewArray(proto *Object, elements []Value) *Object {
	o := &Object{
		shape:      RootShape,
		prototype:  proto,
		Class:      "Array",
		Extensible: true,
		elements:   append([]Value(nil), elements...),
	}
	return o
}

// Length returns the array's current length, one past the highest
// populated index.
func (o *Object) Length() uint32 {
	n := uint32(len(o.elements))
	for k := range o.overflow {
		if k+1 > n {
			n = k + 1
		}
	}
	return n
}

// ElementCount is the number of populated element slots (dense + sparse),
// used for size estimates and iteration planning, not the array's length.
func (o *Object) ElementCount() int {
	return len(o.elements) + len(o.overflow)
}

// GetElement reads element index idx, or Undefined if unset.
func (o *Object) GetElement(idx uint32) Value {
	if idx < uint32(len(o.elements)) {
		v := o.elements[idx]
		if v == nil {
			return Undefined
		}
		return v
	}
	if o.overflow != nil {
		if v, ok := o.overflow[idx]; ok {
			return v
		}
	}
	return Undefined
}

// HasElement reports whether idx is a populated element.
func (o *Object) HasElement(idx uint32) bool {
	if idx < uint32(len(o.elements)) {
		return o.elements[idx] != nil
	}
	if o.overflow != nil {
		_, ok := o.overflow[idx]
		return ok
	}
	return false
}

// setElementRaw writes idx unconditionally (no frozen/extensible checks),
// used by literal evaluation and internal array-builtin implementations.
func (o *Object) setElementRaw(idx uint32, v Value) {
	const sparseThreshold = 1 << 16

	if idx < uint32(len(o.elements)) {
		o.elements[idx] = v
		return
	}
	if idx == uint32(len(o.elements)) && idx < sparseThreshold {
		o.elements = append(o.elements, v)
		// Pull in any overflow entries that are now contiguous.
		for {
			next := uint32(len(o.elements))
			ov, ok := o.overflow[next]
			if !ok {
				break
			}
			o.elements = append(o.elements, ov)
			delete(o.overflow, next)
		}
		return
	}
	if o.overflow == nil {
		o.overflow = make(map[uint32]Value)
	}
	o.overflow[idx] = v
}

// SetElement implements [[Set]] for a numeric index, honoring
// frozen/sealed/extensible and array-length growth.
func (o *Object) SetElement(ctx *Context, idx uint32, v Value, strict bool) *Exception {
	if o.Frozen {
		return o.rejectWrite(ctx, elementKeyString(idx), strict)
	}
	if !o.HasElement(idx) && (o.Sealed || !o.Extensible) {
		return o.rejectWrite(ctx, elementKeyString(idx), strict)
	}
	o.setElementRaw(idx, v)
	return nil
}

// deleteElement removes idx, leaving a hole (dense slot becomes nil rather
// than being compacted, matching ECMAScript's sparse-array delete
// semantics).
func (o *Object) deleteElement(idx uint32) bool {
	if idx < uint32(len(o.elements)) {
		o.elements[idx] = nil
		return true
	}
	if o.overflow != nil {
		delete(o.overflow, idx)
	}
	return true
}

// SetLength implements the array-exotic length setter for shrinking: it
// discards elements at or above the new length (the standard array
// length-truncation behavior). A length at or above the current one leaves
// the elements unchanged, so Length, which is derived from the highest
// populated index, does not grow.
func (o *Object) SetLength(n uint32) {
	switch {
	case n >= uint32(len(o.elements)):
		// growth: drop any overflow entries now inside the dense range's
		// reach is unnecessary since they already are; nothing to do for
		// the dense slice itself.
	default:
		o.elements = o.elements[:n]
	}
	for k := range o.overflow {
		if k >= n {
			delete(o.overflow, k)
		}
	}
}

// Elements returns a copy of the dense run, Undefined substituted for
// holes, for iteration helpers that want a plain slice (e.g. Array.from on
// an already-dense array, or the spread operator).
func (o *Object) Elements() []Value {
	out := make([]Value, len(o.elements))
	for i, v := range o.elements {
		if v == nil {
			out[i] = Undefined
		} else {
			out[i] = v
		}
	}
	return out
}

func elementKeyString(idx uint32) string {
	return uitoa(idx)
}

func uitoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
