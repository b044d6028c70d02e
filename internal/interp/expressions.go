package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// evalExpression is the expression dispatch entry point. Optional-chaining
// member/call expressions route through evalChain so a short-circuited
// `?.` collapses the whole chain to undefined without evaluating the rest.
func (it *Interpreter) evalExpression(ctx *runtime.Context, node ast.Expression) (runtime.Value, *runtime.Exception) {
	switch n := node.(type) {
	case *ast.MemberExpression, *ast.CallExpression:
		v, short, exc := it.evalChain(ctx, node)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if short {
			return runtime.Undefined, nil
		}
		return v, nil

	case *ast.Identifier:
		v, ok, tdz := ctx.Env.Get(n.Name)
		if tdz {
			return runtime.Undefined, ctx.NewReferenceError("Cannot access '%s' before initialization", n.Name)
		}
		if !ok {
			return runtime.Undefined, ctx.NewReferenceError("%s is not defined", n.Name)
		}
		return v, nil

	case *ast.ThisExpression:
		if ctx.ThisTDZ {
			return runtime.Undefined, ctx.NewReferenceError("Must call super constructor before accessing 'this'")
		}
		return ctx.This, nil

	case *ast.SuperExpression:
		return runtime.Undefined, ctx.NewSyntaxError("'super' keyword is only valid inside a method or constructor")

	case *ast.MetaProperty:
		if n.Meta == "new" && n.Property == "target" {
			if ctx.NewTarget == nil {
				return runtime.Undefined, nil
			}
			return ctx.NewTarget, nil
		}
		return runtime.Undefined, ctx.NewSyntaxError("unsupported meta property %s.%s", n.Meta, n.Property)

	case *ast.NumberLiteral:
		return runtime.Number(n.Value), nil

	case *ast.BigIntLiteral:
		bi, ok := new(bigIntType).SetString(n.Digits, 10)
		if !ok {
			return runtime.Undefined, ctx.NewSyntaxError("invalid BigInt literal %q", n.Raw)
		}
		return runtime.NewBigInt(bi), nil

	case *ast.StringLiteral:
		return runtime.String(n.Value), nil

	case *ast.BooleanLiteral:
		return runtime.BoolValue(n.Value), nil

	case *ast.NullLiteral:
		return runtime.Null, nil

	case *ast.UndefinedLiteral:
		return runtime.Undefined, nil

	case *ast.RegexLiteral:
		return it.makeRegExp(ctx, n.Pattern, n.Flags)

	case *ast.TemplateLiteral:
		return it.evalTemplateLiteral(ctx, n)

	case *ast.TaggedTemplateExpression:
		return it.evalTaggedTemplate(ctx, n)

	case *ast.ArrayLiteral:
		return it.evalArrayLiteral(ctx, n)

	case *ast.ObjectLiteral:
		return it.evalObjectLiteral(ctx, n)

	case *ast.BinaryExpression:
		left, exc := it.evalExpression(ctx, n.Left)
		if exc != nil {
			return runtime.Undefined, exc
		}
		right, exc := it.evalExpression(ctx, n.Right)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return it.evalBinary(ctx, n.Operator, left, right)

	case *ast.LogicalExpression:
		return it.evalLogical(ctx, n)

	case *ast.UnaryExpression:
		return it.evalUnary(ctx, n)

	case *ast.UpdateExpression:
		return it.evalUpdate(ctx, n)

	case *ast.AssignmentExpression:
		return it.evalAssignment(ctx, n)

	case *ast.ConditionalExpression:
		test, exc := it.evalExpression(ctx, n.Test)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if runtime.ToBoolean(test) {
			return it.evalExpression(ctx, n.Consequent)
		}
		return it.evalExpression(ctx, n.Alternate)

	case *ast.SequenceExpression:
		var v runtime.Value = runtime.Undefined
		for _, e := range n.Expressions {
			val, exc := it.evalExpression(ctx, e)
			if exc != nil {
				return runtime.Undefined, exc
			}
			v = val
		}
		return v, nil

	case *ast.NewExpression:
		return it.evalNew(ctx, n)

	case *ast.YieldExpression:
		return it.evalYield(ctx, n)

	case *ast.AwaitExpression:
		return it.evalAwait(ctx, n)

	case *ast.FunctionLiteral:
		return it.makeFunction(ctx, n, ctx.Env), nil

	case *ast.ArrowFunctionExpression:
		return it.makeArrowFunction(ctx, n, ctx.Env), nil

	case *ast.ClassLiteral:
		return it.evalClass(ctx, n)

	case *ast.SpreadElement:
		return runtime.Undefined, ctx.NewSyntaxError("unexpected spread element outside array/object/call")

	default:
		return runtime.Undefined, ctx.NewSyntaxError("unsupported expression %T", n)
	}
}

// evalChain evaluates a member/call expression, honoring `?.` short-circuit:
// once any link of a chain short-circuits (its object/callee was
// null/undefined through an optional operator), every subsequent link in
// the same chain reports short=true without further evaluation, matching
// optional-chaining semantics.
func (it *Interpreter) evalChain(ctx *runtime.Context, node ast.Expression) (value runtime.Value, short bool, exc *runtime.Exception) {
	switch n := node.(type) {
	case *ast.MemberExpression:
		objVal, short, exc := it.evalChainOperand(ctx, n.Object)
		if exc != nil || short {
			return runtime.Undefined, short, exc
		}
		if n.Optional && runtime.IsNullOrUndefined(objVal) {
			return runtime.Undefined, true, nil
		}
		if runtime.IsNullOrUndefined(objVal) {
			return runtime.Undefined, false, ctx.NewTypeError("Cannot read properties of %s (reading '%s')", objVal.String(), memberPropertyName(n))
		}
		v, exc := it.readMember(ctx, n, objVal)
		return v, false, exc

	case *ast.CallExpression:
		calleeVal, thisVal, short, exc := it.evalCallee(ctx, n.Callee)
		if exc != nil || short {
			return runtime.Undefined, short, exc
		}
		if n.Optional && runtime.IsNullOrUndefined(calleeVal) {
			return runtime.Undefined, true, nil
		}
		args, exc := it.evalArguments(ctx, n.Arguments)
		if exc != nil {
			return runtime.Undefined, false, exc
		}
		if _, isSuper := n.Callee.(*ast.SuperExpression); isSuper {
			v, exc := it.callSuper(ctx, args)
			return v, false, exc
		}
		fn, ok := calleeVal.(*runtime.Object)
		if !ok || !fn.IsCallable() {
			return runtime.Undefined, false, ctx.NewTypeError("%s is not a function", describeCallee(n.Callee))
		}
		pos := n.Pos()
		ctx.PushFrame(describeCallee(n.Callee), pos.Line, pos.Column)
		v, exc := ctx.CallFunction(fn, thisVal, args)
		ctx.PopFrame()
		return v, false, exc

	default:
		v, exc := it.evalExpression(ctx, node)
		return v, false, exc
	}
}

// evalChainOperand evaluates the object/callee sub-expression of a chain
// link, recursing through evalChain when that sub-expression is itself a
// member/call so short-circuit status threads through.
func (it *Interpreter) evalChainOperand(ctx *runtime.Context, node ast.Expression) (runtime.Value, bool, *runtime.Exception) {
	switch node.(type) {
	case *ast.MemberExpression, *ast.CallExpression:
		return it.evalChain(ctx, node)
	case *ast.SuperExpression:
		if ctx.This == nil {
			return runtime.Undefined, false, ctx.NewSyntaxError("'super' keyword is unexpected here")
		}
		return ctx.This, false, nil
	default:
		v, exc := it.evalExpression(ctx, node)
		return v, false, exc
	}
}

// evalCallee resolves a call expression's callee, returning the `this`
// value a method call must bind (the member expression's object) alongside
// the callable value itself.
func (it *Interpreter) evalCallee(ctx *runtime.Context, callee ast.Expression) (fn runtime.Value, this runtime.Value, short bool, exc *runtime.Exception) {
	if sup, ok := callee.(*ast.SuperExpression); ok {
		_ = sup
		return runtime.Undefined, runtime.Undefined, false, nil // handled directly by evalChain's CallExpression case
	}
	if member, ok := callee.(*ast.MemberExpression); ok {
		objVal, short, exc := it.evalChainOperand(ctx, member.Object)
		if exc != nil || short {
			return runtime.Undefined, runtime.Undefined, short, exc
		}
		if member.Optional && runtime.IsNullOrUndefined(objVal) {
			return runtime.Undefined, runtime.Undefined, true, nil
		}
		if runtime.IsNullOrUndefined(objVal) {
			return runtime.Undefined, runtime.Undefined, false, ctx.NewTypeError("Cannot read properties of %s (reading '%s')", objVal.String(), memberPropertyName(member))
		}
		v, exc := it.readMember(ctx, member, objVal)
		if exc != nil {
			return runtime.Undefined, runtime.Undefined, false, exc
		}
		return v, objVal, false, nil
	}
	v, exc := it.evalExpression(ctx, callee)
	return v, runtime.Undefined, false, exc
}

func describeCallee(callee ast.Expression) string {
	if id, ok := callee.(*ast.Identifier); ok {
		return id.Name
	}
	if member, ok := callee.(*ast.MemberExpression); ok {
		return memberPropertyName(member)
	}
	return "value"
}

func memberPropertyName(n *ast.MemberExpression) string {
	if !n.Computed {
		if id, ok := n.Property.(*ast.Identifier); ok {
			return id.Name
		}
	}
	return "property"
}

// memberKey computes the string property key a MemberExpression addresses.
func (it *Interpreter) memberKey(ctx *runtime.Context, n *ast.MemberExpression) (string, *runtime.Exception) {
	if !n.Computed {
		id, ok := n.Property.(*ast.Identifier)
		if !ok {
			return "", ctx.NewSyntaxError("invalid non-computed member property")
		}
		return id.Name, nil
	}
	v, exc := it.evalExpression(ctx, n.Property)
	if exc != nil {
		return "", exc
	}
	if sym, ok := v.(*runtime.Symbol); ok {
		return "", ctx.NewSyntaxError("symbol-keyed access must not route through memberKey: %s", sym.String())
	}
	return coerceToPropertyKey(ctx, v)
}

// readMember implements `objVal.prop`/`objVal[expr]`, including the
// per-call-site inline property cache: a non-computed access
// remembers the last (shape, slot offset) pair it observed and reuses the
// offset directly when the receiver's current shape matches, skipping the
// shape's name-to-offset map lookup.
func (it *Interpreter) readMember(ctx *runtime.Context, n *ast.MemberExpression, objVal runtime.Value) (runtime.Value, *runtime.Exception) {
	if n.Computed {
		keyVal, exc := it.evalExpression(ctx, n.Property)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if sym, ok := keyVal.(*runtime.Symbol); ok {
			obj, exc := it.toObject(ctx, objVal)
			if exc != nil {
				return runtime.Undefined, exc
			}
			return it.getSymbolProperty(obj, sym)
		}
		key, exc := coerceToPropertyKey(ctx, keyVal)
		if exc != nil {
			return runtime.Undefined, exc
		}
		obj, exc := it.toObject(ctx, objVal)
		if exc != nil {
			return runtime.Undefined, exc
		}
		return obj.Get(ctx, key, obj)
	}

	id, ok := n.Property.(*ast.Identifier)
	if !ok {
		return runtime.Undefined, ctx.NewSyntaxError("invalid member property")
	}
	obj, exc := it.toObject(ctx, objVal)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if !obj.IsArray() {
		for i := range n.CacheSlots {
			slot := &n.CacheSlots[i]
			if slot.Valid && slot.Shape == interface{}(obj.ShapeForCache()) {
				if v, ok := obj.GetSlotAt(slot.Offset); ok {
					return v, nil
				}
				break
			}
		}
	}
	v, exc := obj.Get(ctx, id.Name, obj)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if !obj.IsArray() {
		if info, _, ok := obj.GetOwnProperty(id.Name); ok && !info.Attrs.Accessor {
			it.storeCacheSlot(n, obj.ShapeForCache(), info.Offset)
		}
	}
	return v, nil
}

// storeCacheSlot writes into the first empty cache slot; once all 4 slots
// of the bounded per-call-site cache are in use it overwrites slot 0.
func (it *Interpreter) storeCacheSlot(n *ast.MemberExpression, shape interface{}, offset int) {
	for i := range n.CacheSlots {
		if !n.CacheSlots[i].Valid {
			n.CacheSlots[i] = ast.InlineCacheSlot{Shape: shape, Offset: offset, Valid: true}
			return
		}
	}
	// All slots full: evict slot 0. A real LRU isn't worth the bookkeeping
	// for a 4-entry cache.
	n.CacheSlots[0] = ast.InlineCacheSlot{Shape: shape, Offset: offset, Valid: true}
}

func (it *Interpreter) evalArguments(ctx *runtime.Context, args []ast.Expression) ([]runtime.Value, *runtime.Exception) {
	out := make([]runtime.Value, 0, len(args))
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			v, exc := it.evalExpression(ctx, spread.Argument)
			if exc != nil {
				return nil, exc
			}
			out, exc = it.spreadIntoSlice(ctx, out, v)
			if exc != nil {
				return nil, exc
			}
			continue
		}
		v, exc := it.evalExpression(ctx, a)
		if exc != nil {
			return nil, exc
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Interpreter) evalNew(ctx *runtime.Context, n *ast.NewExpression) (runtime.Value, *runtime.Exception) {
	calleeVal, exc := it.evalExpression(ctx, n.Callee)
	if exc != nil {
		return runtime.Undefined, exc
	}
	ctor, ok := calleeVal.(*runtime.Object)
	if !ok || ctor.Construct == nil {
		return runtime.Undefined, ctx.NewTypeError("%s is not a constructor", describeCallee(n.Callee))
	}
	args, exc := it.evalArguments(ctx, n.Arguments)
	if exc != nil {
		return runtime.Undefined, exc
	}
	pos := n.Pos()
	ctx.PushFrame("new "+describeCallee(n.Callee), pos.Line, pos.Column)
	v, exc := ctor.Construct(ctx, args, ctor)
	ctx.PopFrame()
	return v, exc
}

func (it *Interpreter) evalLogical(ctx *runtime.Context, n *ast.LogicalExpression) (runtime.Value, *runtime.Exception) {
	left, exc := it.evalExpression(ctx, n.Left)
	if exc != nil {
		return runtime.Undefined, exc
	}
	switch n.Operator {
	case "&&":
		if !runtime.ToBoolean(left) {
			return left, nil
		}
	case "||":
		if runtime.ToBoolean(left) {
			return left, nil
		}
	case "??":
		if !runtime.IsNullOrUndefined(left) {
			return left, nil
		}
	default:
		return runtime.Undefined, ctx.NewSyntaxError("unsupported logical operator %q", n.Operator)
	}
	return it.evalExpression(ctx, n.Right)
}

func (it *Interpreter) evalUpdate(ctx *runtime.Context, n *ast.UpdateExpression) (runtime.Value, *runtime.Exception) {
	old, exc := it.evalExpression(ctx, n.Argument)
	if exc != nil {
		return runtime.Undefined, exc
	}
	oldNum, exc := numericUpdateOperand(ctx, old)
	if exc != nil {
		return runtime.Undefined, exc
	}
	var next runtime.Value
	if bi, ok := oldNum.(runtime.BigInt); ok {
		delta := int64(1)
		if n.Operator == "--" {
			delta = -1
		}
		next = runtime.NewBigInt(addInt64(bi.V, delta))
	} else {
		num := oldNum.(runtime.Number)
		if n.Operator == "++" {
			next = num + 1
		} else {
			next = num - 1
		}
	}
	pat, exc := reinterpretExprAsPattern(ctx, n.Argument)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if exc := it.assignToTarget(ctx, pat, next); exc != nil {
		return runtime.Undefined, exc
	}
	if n.Prefix {
		return next, nil
	}
	return oldNum, nil
}

func numericUpdateOperand(ctx *runtime.Context, v runtime.Value) (runtime.Value, *runtime.Exception) {
	if bi, ok := v.(runtime.BigInt); ok {
		return bi, nil
	}
	n, exc := runtime.ToNumber(ctx, v)
	if exc != nil {
		return runtime.Undefined, exc
	}
	return n, nil
}

func (it *Interpreter) evalAssignment(ctx *runtime.Context, n *ast.AssignmentExpression) (runtime.Value, *runtime.Exception) {
	if n.Operator == "=" {
		value, exc := it.evalExpression(ctx, n.Value)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if id, ok := n.Target.(*ast.Identifier); ok {
			if fnVal, ok := value.(*runtime.Object); ok && fnVal.IsCallable() {
				nameIdentifier(id, fnVal)
			}
		}
		if exc := it.assignToTarget(ctx, n.Target, value); exc != nil {
			return runtime.Undefined, exc
		}
		return value, nil
	}

	if n.Operator == "&&=" || n.Operator == "||=" || n.Operator == "??=" {
		targetExpr, exc := patternToExpr(n.Target)
		if exc != nil {
			return runtime.Undefined, exc
		}
		cur, exc := it.evalExpression(ctx, targetExpr)
		if exc != nil {
			return runtime.Undefined, exc
		}
		shortCircuit := false
		switch n.Operator {
		case "&&=":
			shortCircuit = !runtime.ToBoolean(cur)
		case "||=":
			shortCircuit = runtime.ToBoolean(cur)
		case "??=":
			shortCircuit = !runtime.IsNullOrUndefined(cur)
		}
		if shortCircuit {
			return cur, nil
		}
		value, exc := it.evalExpression(ctx, n.Value)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if exc := it.assignToTarget(ctx, n.Target, value); exc != nil {
			return runtime.Undefined, exc
		}
		return value, nil
	}

	targetExpr, exc := patternToExpr(n.Target)
	if exc != nil {
		return runtime.Undefined, exc
	}
	cur, exc := it.evalExpression(ctx, targetExpr)
	if exc != nil {
		return runtime.Undefined, exc
	}
	rhs, exc := it.evalExpression(ctx, n.Value)
	if exc != nil {
		return runtime.Undefined, exc
	}
	op := n.Operator[:len(n.Operator)-1] // strip trailing "="
	result, exc := it.evalBinary(ctx, op, cur, rhs)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if exc := it.assignToTarget(ctx, n.Target, result); exc != nil {
		return runtime.Undefined, exc
	}
	return result, nil
}

// patternToExpr views a simple assignment target (identifier or member
// expression — compound assignment never targets a destructuring pattern)
// back as the Expression it already is, since both implement both
// interfaces.
func patternToExpr(p ast.Pattern) (ast.Expression, *runtime.Exception) {
	if e, ok := p.(ast.Expression); ok {
		return e, nil
	}
	return nil, runtime.NewException(runtime.String("invalid compound-assignment target"))
}

func (it *Interpreter) evalYield(ctx *runtime.Context, n *ast.YieldExpression) (runtime.Value, *runtime.Exception) {
	if ctx.Suspend == nil {
		return runtime.Undefined, ctx.NewSyntaxError("yield is only valid inside a generator function")
	}
	var arg runtime.Value = runtime.Undefined
	if n.Argument != nil {
		v, exc := it.evalExpression(ctx, n.Argument)
		if exc != nil {
			return runtime.Undefined, exc
		}
		arg = v
	}
	if n.Delegate {
		return it.evalYieldDelegate(ctx, arg)
	}
	sig := ctx.Suspend(arg)
	return it.resumeSignalToResult(ctx, sig)
}

// evalYieldDelegate implements `yield* iterable`: forward every value the
// inner iterable produces as its own yield, then complete with the inner
// iterator's final return value.
func (it *Interpreter) evalYieldDelegate(ctx *runtime.Context, iterable runtime.Value) (runtime.Value, *runtime.Exception) {
	next, exc := it.getIterator(ctx, iterable)
	if exc != nil {
		return runtime.Undefined, exc
	}
	for {
		v, done, exc := next()
		if exc != nil {
			return runtime.Undefined, exc
		}
		if done {
			return v, nil
		}
		sig := ctx.Suspend(v)
		if sig.Kind != runtime.ResumeNext {
			return it.resumeSignalToResult(ctx, sig)
		}
	}
}

func (it *Interpreter) resumeSignalToResult(ctx *runtime.Context, sig runtime.ResumeSignal) (runtime.Value, *runtime.Exception) {
	switch sig.Kind {
	case runtime.ResumeThrow:
		return runtime.Undefined, sig.Exc
	case runtime.ResumeReturn:
		ctx.Signal = runtime.SignalReturn
		ctx.ReturnValue = sig.Value
		return sig.Value, nil
	default:
		return sig.Value, nil
	}
}

func (it *Interpreter) evalAwait(ctx *runtime.Context, n *ast.AwaitExpression) (runtime.Value, *runtime.Exception) {
	if ctx.Suspend == nil {
		return runtime.Undefined, ctx.NewSyntaxError("await is only valid inside an async function")
	}
	v, exc := it.evalExpression(ctx, n.Argument)
	if exc != nil {
		return runtime.Undefined, exc
	}
	sig := ctx.Suspend(v)
	return it.resumeSignalToResult(ctx, sig)
}

func (it *Interpreter) evalArrayLiteral(ctx *runtime.Context, n *ast.ArrayLiteral) (runtime.Value, *runtime.Exception) {
	elements := make([]runtime.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		if el == nil {
			elements = append(elements, nil) // elision: a genuine hole
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			v, exc := it.evalExpression(ctx, spread.Argument)
			if exc != nil {
				return runtime.Undefined, exc
			}
			elements, exc = it.spreadIntoSlice(ctx, elements, v)
			if exc != nil {
				return runtime.Undefined, exc
			}
			continue
		}
		v, exc := it.evalExpression(ctx, el)
		if exc != nil {
			return runtime.Undefined, exc
		}
		elements = append(elements, v)
	}
	return runtime.NewArray(it.Engine.ArrayPrototype, elements), nil
}

func (it *Interpreter) evalObjectLiteral(ctx *runtime.Context, n *ast.ObjectLiteral) (runtime.Value, *runtime.Exception) {
	obj := runtime.NewObject(it.Engine.ObjectPrototype)
	for _, prop := range n.Properties {
		if prop.Kind == ast.PropSpread {
			v, exc := it.evalExpression(ctx, prop.Value)
			if exc != nil {
				return runtime.Undefined, exc
			}
			if src, ok := v.(*runtime.Object); ok {
				for _, name := range src.OwnEnumerablePropertyNames() {
					pv, exc := src.Get(ctx, name, src)
					if exc != nil {
						return runtime.Undefined, exc
					}
					obj.DefineDataProperty(name, pv, runtime.DefaultDataAttributes)
				}
			}
			continue
		}

		key, exc := it.propertyKeyOf(ctx, prop.Key, prop.Computed)
		if exc != nil {
			return runtime.Undefined, exc
		}

		switch prop.Kind {
		case ast.PropGet, ast.PropSet:
			fnLit := prop.Value.(*ast.FunctionLiteral)
			fnVal := &runtime.FunctionValue{
				Name: key, Params: paramDescriptors(fnLit.Params), Body: fnLit.Body,
				Closure: ctx.Env, Strict: fnLit.Strict || ctx.Strict, HomeObject: obj,
			}
			methodObj := it.wrapFunction(key, countExpectedArgs(fnLit.Params), fnVal, false)
			if prop.Kind == ast.PropGet {
				obj.DefineAccessorProperty(key, methodObj, nil, runtime.PropertyAttributes{Enumerable: true, Configurable: true})
			} else {
				obj.DefineAccessorProperty(key, nil, methodObj, runtime.PropertyAttributes{Enumerable: true, Configurable: true})
			}

		case ast.PropMethod:
			fnLit := prop.Value.(*ast.FunctionLiteral)
			fnVal := &runtime.FunctionValue{
				Name: key, Params: paramDescriptors(fnLit.Params), Body: fnLit.Body,
				Closure: ctx.Env, Strict: fnLit.Strict || ctx.Strict, HomeObject: obj,
				IsGenerator: fnLit.IsGenerator, IsAsync: fnLit.IsAsync,
			}
			methodObj := it.wrapFunction(key, countExpectedArgs(fnLit.Params), fnVal, false)
			obj.DefineDataProperty(key, methodObj, runtime.DefaultDataAttributes)

		default:
			v, exc := it.evalExpression(ctx, prop.Value)
			if exc != nil {
				return runtime.Undefined, exc
			}
			if fnVal, ok := v.(*runtime.Object); ok && fnVal.IsCallable() && !prop.Computed {
				nameIdentifier(keyAsIdentifier(prop.Key), fnVal)
			}
			obj.DefineDataProperty(key, v, runtime.DefaultDataAttributes)
		}
	}
	return obj, nil
}

func keyAsIdentifier(key ast.Expression) ast.Pattern {
	if id, ok := key.(*ast.Identifier); ok {
		return id
	}
	return nil
}

func (it *Interpreter) evalTemplateLiteral(ctx *runtime.Context, n *ast.TemplateLiteral) (runtime.Value, *runtime.Exception) {
	var sb []byte
	for i, q := range n.Quasis {
		sb = append(sb, q.Cooked...)
		if i < len(n.Expressions) {
			v, exc := it.evalExpression(ctx, n.Expressions[i])
			if exc != nil {
				return runtime.Undefined, exc
			}
			s, exc := runtime.ToString(ctx, v)
			if exc != nil {
				return runtime.Undefined, exc
			}
			sb = append(sb, s...)
		}
	}
	return runtime.String(sb), nil
}

func (it *Interpreter) evalTaggedTemplate(ctx *runtime.Context, n *ast.TaggedTemplateExpression) (runtime.Value, *runtime.Exception) {
	calleeVal, thisVal, short, exc := it.evalCallee(ctx, n.Tag)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if short {
		return runtime.Undefined, nil
	}
	fn, ok := calleeVal.(*runtime.Object)
	if !ok || !fn.IsCallable() {
		return runtime.Undefined, ctx.NewTypeError("tag is not a function")
	}

	strings, ok := it.templateCache[n.Template]
	if !ok {
		cooked := make([]runtime.Value, len(n.Template.Quasis))
		raw := make([]runtime.Value, len(n.Template.Quasis))
		for i, q := range n.Template.Quasis {
			cooked[i] = runtime.String(q.Cooked)
			raw[i] = runtime.String(q.Raw)
		}
		strings = runtime.NewArray(it.Engine.ArrayPrototype, cooked)
		rawArr := runtime.NewArray(it.Engine.ArrayPrototype, raw)
		strings.Frozen = true
		rawArr.Frozen = true
		strings.DefineDataProperty("raw", rawArr, runtime.PropertyAttributes{})
		it.templateCache[n.Template] = strings
	}

	args := []runtime.Value{strings}
	for _, e := range n.Template.Expressions {
		v, exc := it.evalExpression(ctx, e)
		if exc != nil {
			return runtime.Undefined, exc
		}
		args = append(args, v)
	}
	return ctx.CallFunction(fn, thisVal, args)
}
