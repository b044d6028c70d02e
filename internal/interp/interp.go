// Package interp is the tree-walking evaluator: AST node dispatch, operator
// semantics, closures, classes, destructuring, generators, and the
// property-access inline cache described in expressions.go. It depends on
// internal/ast and internal/runtime but not on internal/builtins — the
// well-known prototypes builtins installs are consulted through fields on
// runtime.Engine so there is no import cycle.
package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// Interpreter owns the per-engine state the evaluator needs beyond what
// runtime.Context already threads through: the symbol-property side table
// (symbol-keyed properties are not stored in an Object's named-property
// shape, since shapes are keyed on plain strings) and the tagged-template
// strings-array cache keyed by call site.
type Interpreter struct {
	Engine *runtime.Engine

	// symbolProps holds symbol-keyed own properties per object, since
	// Shape only indexes string keys. A nil/missing inner map means the
	// object has no symbol-keyed properties yet.
	symbolProps map[*runtime.Object]map[*runtime.Symbol]runtime.Value

	// templateCache caches the frozen strings array (with `.raw`) built
	// for a tagged-template call site, reused across invocations of the
	// same call site.
	templateCache map[*ast.TemplateLiteral]*runtime.Object

	// classInfos/classSupers hold the bits a class constructor Object
	// needs beyond what FunctionValue has fields for: its instance field
	// initializer list and (for a derived class) the superclass
	// constructor to dispatch `super(...)` to.
	classInfos  map[*runtime.Object]*classInfo
	classSupers map[*runtime.Object]*runtime.Object
}

// New creates an Interpreter bound to engine and installs the
// SymbolPropertyLookup/SetSymbolProperty hooks runtime.Object.Get/ToPrimitive
// and friends consult.
func New(engine *runtime.Engine) *Interpreter {
	it := &Interpreter{
		Engine:        engine,
		symbolProps:   make(map[*runtime.Object]map[*runtime.Symbol]runtime.Value),
		templateCache: make(map[*ast.TemplateLiteral]*runtime.Object),
		classInfos:    make(map[*runtime.Object]*classInfo),
		classSupers:   make(map[*runtime.Object]*runtime.Object),
	}
	engine.SymbolPropertyLookup = it.getSymbolProperty
	engine.SetSymbolProperty = it.setSymbolProperty
	return it
}

func (it *Interpreter) getSymbolProperty(o *runtime.Object, sym *runtime.Symbol) (runtime.Value, *runtime.Exception) {
	if m, ok := it.symbolProps[o]; ok {
		if v, ok := m[sym]; ok {
			return v, nil
		}
	}
	if proto := o.Prototype(); proto != nil {
		return it.getSymbolProperty(proto, sym)
	}
	return runtime.Undefined, nil
}

func (it *Interpreter) setSymbolProperty(o *runtime.Object, sym *runtime.Symbol, value runtime.Value) {
	m, ok := it.symbolProps[o]
	if !ok {
		m = make(map[*runtime.Symbol]runtime.Value)
		it.symbolProps[o] = m
	}
	m[sym] = value
}

// HasOwnSymbolProperty reports whether o itself (not via prototype) has a
// value stored under sym, used by `in`/hasOwnProperty-style checks over
// symbol keys.
func (it *Interpreter) HasOwnSymbolProperty(o *runtime.Object, sym *runtime.Symbol) bool {
	m, ok := it.symbolProps[o]
	if !ok {
		return false
	}
	_, ok = m[sym]
	return ok
}

// NewContext builds the top-level Context for evaluating a Program against
// the engine's global scope.
func (it *Interpreter) NewContext() *runtime.Context {
	return runtime.NewContext(it.Engine, it.Engine.GlobalEnv, it.Engine.GlobalObject)
}

// EvalProgram hoists and evaluates every statement of prog in order,
// returning the completion value of the last ExpressionStatement evaluated
// (the embedding API's `evaluate` return value) or the exception that
// propagated to the top.
func (it *Interpreter) EvalProgram(ctx *runtime.Context, prog *ast.Program) (runtime.Value, *runtime.Exception) {
	ctx.Strict = ctx.Strict || prog.StrictMode
	it.hoist(ctx, prog.Body, ctx.Env, true)

	var last runtime.Value = runtime.Undefined
	for _, stmt := range prog.Body {
		v := it.execStatement(ctx, stmt)
		if v != nil {
			last = v
		}
		if ctx.Signal == runtime.SignalThrow {
			return runtime.Undefined, ctx.Exception
		}
		if ctx.Signal != runtime.SignalNone {
			// A bare top-level return/break/continue is a parse-time error
			// in real engines; defensively treat it as completion here.
			ctx.ClearSignal()
		}
	}
	return last, nil
}

// Eval is the full expression+statement dispatch entry point: it evaluates
// a single expression or statement node against ctx.
func (it *Interpreter) Eval(ctx *runtime.Context, node ast.Node) (runtime.Value, *runtime.Exception) {
	switch n := node.(type) {
	case ast.Expression:
		return it.evalExpression(ctx, n)
	case ast.Statement:
		v := it.execStatement(ctx, n)
		if ctx.Signal == runtime.SignalThrow {
			return runtime.Undefined, ctx.Exception
		}
		return v, nil
	default:
		return runtime.Undefined, ctx.NewTypeError("cannot evaluate node")
	}
}
