package runtime

// PropertyAttributes are the ECMAScript property attribute flags.
type PropertyAttributes struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
	Accessor     bool // true if this property is a getter/setter pair, not a data slot
}

// DefaultDataAttributes is the attribute set for an ordinary `obj.x = v`
// write that creates a new own property.
var DefaultDataAttributes = PropertyAttributes{Writable: true, Enumerable: true, Configurable: true}

// PropertyInfo locates one property within an object's slot vector.
type PropertyInfo struct {
	Name   string
	Offset int
	Attrs  PropertyAttributes
}

// Shape is a node in the hidden-class transition tree: each Shape is
// immutable once reachable from another Shape's
// transition table; Objects sharing a construction history share a Shape,
// which is what lets the evaluator's inline cache key on a shape pointer
// plus a slot offset instead of a property name.
type Shape struct {
	parent *Shape
	name   string // property name added by the transition into this shape ("" for the root)
	attrs  PropertyAttributes
	offset int // slot offset of `name` within objects of this shape (-1 for the root)

	// table is the cumulative name -> PropertyInfo map for this shape and
	// all of its ancestors. Built once when the shape is created so
	// property lookup is O(1) rather than a walk to the root.
	table map[string]PropertyInfo

	// transitions maps (name, attrs) -> child Shape. Transitions are
	// de-duplicated so two objects that add the same properties in the
	// same order end up on the same Shape.
	transitions map[transitionKey]*Shape
}

type transitionKey struct {
	name  string
	attrs PropertyAttributes
}

// RootShape is the empty shape shared by every freshly allocated object
// before any property is added.
var RootShape = &Shape{
	offset:      -1,
	table:       map[string]PropertyInfo{},
	transitions: map[transitionKey]*Shape{},
}

// SlotCount is the number of data/accessor slots an object with this shape
// must allocate.
func (s *Shape) SlotCount() int { return len(s.table) }

// Lookup returns the PropertyInfo for name if this shape (or an ancestor)
// declares it.
func (s *Shape) Lookup(name string) (PropertyInfo, bool) {
	info, ok := s.table[name]
	return info, ok
}

// Transition returns the child shape reached by adding a property named
// name with the given attributes, creating and caching it if necessary.
func (s *Shape) Transition(name string, attrs PropertyAttributes) *Shape {
	key := transitionKey{name: name, attrs: attrs}
	if child, ok := s.transitions[key]; ok {
		return child
	}

	offset := len(s.table)
	child := &Shape{
		parent: s,
		name:   name,
		attrs:  attrs,
		offset: offset,
		table:  make(map[string]PropertyInfo, offset+1),
	}
	for k, v := range s.table {
		child.table[k] = v
	}
	child.table[name] = PropertyInfo{Name: name, Offset: offset, Attrs: attrs}
	child.transitions = map[transitionKey]*Shape{}

	s.transitions[key] = child
	return child
}

// WithoutProperty returns a shape describing the same properties as s
// minus name, renumbering slot offsets contiguously. Removal is not an
// append, so the result is an object-private shape outside the transition
// tree. Object.Delete does not call it; it rebuilds its shape through
// Transition instead.
func (s *Shape) WithoutProperty(name string) *Shape {
	remaining := make([]PropertyInfo, 0, len(s.table))
	for _, info := range s.table {
		if info.Name != name {
			remaining = append(remaining, info)
		}
	}
	child := &Shape{
		parent:      RootShape,
		offset:      -1,
		table:       make(map[string]PropertyInfo, len(remaining)),
		transitions: map[transitionKey]*Shape{},
	}
	for i, info := range remaining {
		info.Offset = i
		child.table[info.Name] = info
	}
	return child
}

// Names returns property names in insertion (slot) order: the order
// ECMAScript's ordering guarantees require for enumeration of string keys.
func (s *Shape) Names() []string {
	out := make([]string, len(s.table))
	for _, info := range s.table {
		out[info.Offset] = info.Name
	}
	return out
}
