package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// getIterator resolves v's Symbol.iterator method and calls it, implementing
// the GetIterator abstract operation. Strings get a fast path that
// iterates Unicode code points directly rather than requiring
// String.prototype[Symbol.iterator] to be separately installed as a real
// generator (internal/builtins still exposes that method for explicit use).
func (it *Interpreter) getIterator(ctx *runtime.Context, v runtime.Value) (iterNext func() (runtime.Value, bool, *runtime.Exception), exc *runtime.Exception) {
	if s, ok := v.(runtime.String); ok {
		runes := []rune(string(s))
		i := 0
		return func() (runtime.Value, bool, *runtime.Exception) {
			if i >= len(runes) {
				return runtime.Undefined, true, nil
			}
			r := runes[i]
			i++
			return runtime.String(string(r)), false, nil
		}, nil
	}

	obj, isObj := v.(*runtime.Object)
	if !isObj {
		return nil, ctx.NewTypeError("value is not iterable")
	}
	if obj.IsArray() {
		idx := uint32(0)
		return func() (runtime.Value, bool, *runtime.Exception) {
			if idx >= obj.Length() {
				return runtime.Undefined, true, nil
			}
			v := obj.GetElement(idx)
			idx++
			return v, false, nil
		}, nil
	}

	iterFnVal, exc := it.getSymbolProperty(obj, runtime.SymbolIterator)
	if exc != nil {
		return nil, exc
	}
	iterFn, ok := iterFnVal.(*runtime.Object)
	if !ok || !iterFn.IsCallable() {
		return nil, ctx.NewTypeError("value is not iterable")
	}
	iterResult, exc := ctx.CallFunction(iterFn, obj, nil)
	if exc != nil {
		return nil, exc
	}
	iterObj, ok := iterResult.(*runtime.Object)
	if !ok {
		return nil, ctx.NewTypeError("Result of the Symbol.iterator method is not an object")
	}
	nextFnVal, exc := iterObj.Get(ctx, "next", iterObj)
	if exc != nil {
		return nil, exc
	}
	nextFn, ok := nextFnVal.(*runtime.Object)
	if !ok || !nextFn.IsCallable() {
		return nil, ctx.NewTypeError("iterator result has no callable 'next' method")
	}
	return func() (runtime.Value, bool, *runtime.Exception) {
		res, exc := ctx.CallFunction(nextFn, iterObj, nil)
		if exc != nil {
			return runtime.Undefined, false, exc
		}
		resObj, ok := res.(*runtime.Object)
		if !ok {
			return runtime.Undefined, false, ctx.NewTypeError("iterator result is not an object")
		}
		doneVal, exc := resObj.Get(ctx, "done", resObj)
		if exc != nil {
			return runtime.Undefined, false, exc
		}
		if runtime.ToBoolean(doneVal) {
			// The final result's value is the iterator's return value,
			// which `yield*` evaluates to.
			retVal, exc := resObj.Get(ctx, "value", resObj)
			if exc != nil {
				return runtime.Undefined, true, exc
			}
			return retVal, true, nil
		}
		val, exc := resObj.Get(ctx, "value", resObj)
		if exc != nil {
			return runtime.Undefined, false, exc
		}
		return val, false, nil
	}, nil
}

// iterableToSlice drains v's iterator into a slice, used by array
// destructuring, spread-in-array-literal, and Array.from-style call sites
// that need every element materialized up front. sizeHint only pre-sizes
// the backing slice.
func (it *Interpreter) iterableToSlice(ctx *runtime.Context, v runtime.Value, sizeHint int) ([]runtime.Value, *runtime.Exception) {
	next, exc := it.getIterator(ctx, v)
	if exc != nil {
		return nil, exc
	}
	out := make([]runtime.Value, 0, sizeHint)
	for {
		val, done, exc := next()
		if exc != nil {
			return nil, exc
		}
		if done {
			return out, nil
		}
		out = append(out, val)
	}
}

// forInKeys collects the enumerable (own + inherited) string property names
// of obj, per object string keys in insertion order then integer keys
// ascending, skipping duplicates already visited on a
// nearer object in the prototype chain.
func forInKeys(obj *runtime.Object) []string {
	seen := make(map[string]bool)
	var out []string
	for cur := obj; cur != nil; cur = cur.Prototype() {
		for _, k := range cur.KeysInEnumerationOrder(true) {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func (it *Interpreter) execForIn(ctx *runtime.Context, n *ast.ForInStatement, labels []string) {
	rightVal, exc := it.evalExpression(ctx, n.Right)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}
	if runtime.IsNullOrUndefined(rightVal) {
		return // for-in over null/undefined is a silent no-op
	}
	obj, exc := it.toObject(ctx, rightVal)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}

	outer := ctx.Env
	for _, key := range forInKeys(obj) {
		if !it.checkIterationCap(ctx) {
			ctx.Env = outer
			return
		}
		iterEnv := runtime.NewEnvironment(outer)
		ctx.Env = iterEnv
		if exc := it.bindForTarget(ctx, n.Left, runtime.String(key)); exc != nil {
			it.raise(ctx, exc)
			ctx.Env = outer
			return
		}
		if ctx.Signal != runtime.SignalNone {
			ctx.Env = outer
			return
		}
		it.execStatement(ctx, n.Body)
		if loopControl(ctx, labels) {
			ctx.Env = outer
			return
		}
	}
	ctx.Env = outer
}

func (it *Interpreter) execForOf(ctx *runtime.Context, n *ast.ForOfStatement, labels []string) {
	rightVal, exc := it.evalExpression(ctx, n.Right)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}
	next, exc := it.getIterator(ctx, rightVal)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}

	outer := ctx.Env
	for {
		val, done, exc := next()
		if exc != nil {
			it.raise(ctx, exc)
			ctx.Env = outer
			return
		}
		if done {
			break
		}
		if !it.checkIterationCap(ctx) {
			ctx.Env = outer
			return
		}
		iterEnv := runtime.NewEnvironment(outer)
		ctx.Env = iterEnv
		if exc := it.bindForTarget(ctx, n.Left, val); exc != nil {
			it.raise(ctx, exc)
			ctx.Env = outer
			return
		}
		if ctx.Signal != runtime.SignalNone {
			ctx.Env = outer
			return
		}
		it.execStatement(ctx, n.Body)
		if loopControl(ctx, labels) {
			ctx.Env = outer
			return
		}
	}
	ctx.Env = outer
}

// bindForTarget handles for-in/for-of's Left, which is either a fresh
// `var|let|const` declaration or (re-used from a prior assignment target)
// an existing binding/member expression.
func (it *Interpreter) bindForTarget(ctx *runtime.Context, left ast.Node, value runtime.Value) *runtime.Exception {
	if decl, ok := left.(*ast.VariableDeclaration); ok {
		target := decl.Declarations[0].Target
		for _, name := range patternNames(target) {
			if decl.Kind == ast.DeclVar {
				ctx.Env.DeclareVar(name)
			} else {
				ctx.Env.DeclareLexical(name, decl.Kind != ast.DeclConst)
			}
		}
		return it.bindPattern(ctx, target, value, decl.Kind)
	}
	pat, ok := left.(ast.Pattern)
	if !ok {
		return ctx.NewSyntaxError("invalid for-in/for-of target")
	}
	return it.assignToTarget(ctx, pat, value)
}

// spreadIntoSlice appends v's iterated elements to out, used by array
// literal and call-argument spread evaluation.
func (it *Interpreter) spreadIntoSlice(ctx *runtime.Context, out []runtime.Value, v runtime.Value) ([]runtime.Value, *runtime.Exception) {
	items, exc := it.iterableToSlice(ctx, v, 4)
	if exc != nil {
		return nil, exc
	}
	return append(out, items...), nil
}
