package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// bindPattern destructures value into target, declaring fresh bindings in
// ctx.Env according to kind (var/let/const). Used by variable declarators,
// function parameters (kind is always DeclLet there), and catch clause
// parameters.
func (it *Interpreter) bindPattern(ctx *runtime.Context, target ast.Pattern, value runtime.Value, kind ast.DeclKind) *runtime.Exception {
	switch t := target.(type) {
	case *ast.Identifier:
		return it.declareOrInitialize(ctx, t.Name, value, kind)

	case *ast.AssignmentPattern:
		if value == runtime.Undefined {
			v, exc := it.evalExpression(ctx, t.Default)
			if exc != nil {
				return exc
			}
			if fnVal, ok := v.(*runtime.Object); ok && fnVal.IsCallable() {
				nameIdentifier(t.Target, fnVal)
			}
			value = v
		}
		return it.bindPattern(ctx, t.Target, value, kind)

	case *ast.ArrayPattern:
		return it.bindArrayPattern(ctx, t, value, kind)

	case *ast.ObjectPattern:
		return it.bindObjectPattern(ctx, t, value, kind)

	case *ast.RestElement:
		return it.bindPattern(ctx, t.Argument, value, kind)

	default:
		return ctx.NewSyntaxError("invalid binding target %T", target)
	}
}

func (it *Interpreter) declareOrInitialize(ctx *runtime.Context, name string, value runtime.Value, kind ast.DeclKind) *runtime.Exception {
	switch kind {
	case ast.DeclVar:
		ctx.Env.DeclareVar(name)
		if value != nil {
			_, _, _ = ctx.Env.Set(name, value)
		}
	default:
		ctx.Env.InitializeBinding(name, value)
	}
	return nil
}

func (it *Interpreter) bindArrayPattern(ctx *runtime.Context, t *ast.ArrayPattern, value runtime.Value, kind ast.DeclKind) *runtime.Exception {
	items, exc := it.iterableToSlice(ctx, value, len(t.Elements)+1)
	if exc != nil {
		return exc
	}
	for i, el := range t.Elements {
		if el == nil {
			continue
		}
		var v runtime.Value = runtime.Undefined
		if i < len(items) {
			v = items[i]
		}
		if exc := it.bindPattern(ctx, el, v, kind); exc != nil {
			return exc
		}
	}
	if t.Rest != nil {
		var restItems []runtime.Value
		if len(t.Elements) < len(items) {
			restItems = items[len(t.Elements):]
		}
		arr := runtime.NewArray(it.Engine.ArrayPrototype, restItems)
		if exc := it.bindPattern(ctx, t.Rest, arr, kind); exc != nil {
			return exc
		}
	}
	return nil
}

func (it *Interpreter) bindObjectPattern(ctx *runtime.Context, t *ast.ObjectPattern, value runtime.Value, kind ast.DeclKind) *runtime.Exception {
	if runtime.IsNullOrUndefined(value) {
		return ctx.NewTypeError("Cannot destructure '%s' as it is %s", value.String(), value.Type())
	}
	obj, exc := it.toObject(ctx, value)
	if exc != nil {
		return exc
	}
	used := make(map[string]bool, len(t.Properties))
	for _, prop := range t.Properties {
		key, exc := it.propertyKeyOf(ctx, prop.Key, prop.Computed)
		if exc != nil {
			return exc
		}
		used[key] = true
		v, exc := obj.Get(ctx, key, obj)
		if exc != nil {
			return exc
		}
		if exc := it.bindPattern(ctx, prop.Value, v, kind); exc != nil {
			return exc
		}
	}
	if t.Rest != nil {
		rest := runtime.NewObject(it.Engine.ObjectPrototype)
		for _, name := range obj.OwnEnumerablePropertyNames() {
			if used[name] {
				continue
			}
			v, exc := obj.Get(ctx, name, obj)
			if exc != nil {
				return exc
			}
			rest.DefineDataProperty(name, v, runtime.DefaultDataAttributes)
		}
		if exc := it.bindPattern(ctx, t.Rest, rest, kind); exc != nil {
			return exc
		}
	}
	return nil
}

// propertyKeyOf resolves an ObjectPattern/ObjectLiteral property key to its
// string form, evaluating it if computed.
func (it *Interpreter) propertyKeyOf(ctx *runtime.Context, key ast.Expression, computed bool) (string, *runtime.Exception) {
	if computed {
		v, exc := it.evalExpression(ctx, key)
		if exc != nil {
			return "", exc
		}
		return coerceToPropertyKey(ctx, v)
	}
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, nil
	case *ast.StringLiteral:
		return k.Value, nil
	case *ast.NumberLiteral:
		return runtime.Number(k.Value).String(), nil
	default:
		v, exc := it.evalExpression(ctx, key)
		if exc != nil {
			return "", exc
		}
		return coerceToPropertyKey(ctx, v)
	}
}

// assignToTarget implements DestructuringAssignmentTarget for `=` and
// compound-assignment targets that are not simple identifiers: member
// expressions write through Set, patterns destructure recursively.
func (it *Interpreter) assignToTarget(ctx *runtime.Context, target ast.Pattern, value runtime.Value) *runtime.Exception {
	switch t := target.(type) {
	case *ast.Identifier:
		ok, mutated, tdz := ctx.Env.Set(t.Name, value)
		if tdz {
			return ctx.NewReferenceError("Cannot access '%s' before initialization", t.Name)
		}
		if !ok {
			if ctx.Strict {
				return ctx.NewReferenceError("%s is not defined", t.Name)
			}
			ctx.Engine.GlobalEnv.DeclareVar(t.Name)
			_, _, _ = ctx.Engine.GlobalEnv.Set(t.Name, value)
			return nil
		}
		if !mutated {
			return ctx.NewTypeError("Assignment to constant variable '%s'", t.Name)
		}
		return nil

	case *ast.MemberExpression:
		obj, exc := it.evalExpression(ctx, t.Object)
		if exc != nil {
			return exc
		}
		key, exc := it.memberKey(ctx, t)
		if exc != nil {
			return exc
		}
		o, exc := it.toObject(ctx, obj)
		if exc != nil {
			return exc
		}
		return o.Set(ctx, key, value, o, ctx.Strict)

	case *ast.ArrayPattern:
		return it.assignArrayPattern(ctx, t, value)

	case *ast.ArrayLiteral:
		pat, exc := reinterpretArrayLiteral(ctx, t)
		if exc != nil {
			return exc
		}
		return it.assignArrayPattern(ctx, pat, value)

	case *ast.ObjectPattern:
		return it.assignObjectPattern(ctx, t, value)

	case *ast.ObjectLiteral:
		pat, exc := reinterpretObjectLiteral(ctx, t)
		if exc != nil {
			return exc
		}
		return it.assignObjectPattern(ctx, pat, value)

	case *ast.AssignmentPattern:
		if value == runtime.Undefined {
			v, exc := it.evalExpression(ctx, t.Default)
			if exc != nil {
				return exc
			}
			value = v
		}
		return it.assignToTarget(ctx, t.Target, value)

	default:
		return ctx.NewSyntaxError("invalid assignment target %T", target)
	}
}

func (it *Interpreter) assignArrayPattern(ctx *runtime.Context, t *ast.ArrayPattern, value runtime.Value) *runtime.Exception {
	items, exc := it.iterableToSlice(ctx, value, len(t.Elements)+1)
	if exc != nil {
		return exc
	}
	for i, el := range t.Elements {
		if el == nil {
			continue
		}
		var v runtime.Value = runtime.Undefined
		if i < len(items) {
			v = items[i]
		}
		if exc := it.assignToTarget(ctx, el, v); exc != nil {
			return exc
		}
	}
	if t.Rest != nil {
		var restItems []runtime.Value
		if len(t.Elements) < len(items) {
			restItems = items[len(t.Elements):]
		}
		arr := runtime.NewArray(it.Engine.ArrayPrototype, restItems)
		if exc := it.assignToTarget(ctx, t.Rest, arr); exc != nil {
			return exc
		}
	}
	return nil
}

func (it *Interpreter) assignObjectPattern(ctx *runtime.Context, t *ast.ObjectPattern, value runtime.Value) *runtime.Exception {
	obj, exc := it.toObject(ctx, value)
	if exc != nil {
		return exc
	}
	used := make(map[string]bool, len(t.Properties))
	for _, prop := range t.Properties {
		key, exc := it.propertyKeyOf(ctx, prop.Key, prop.Computed)
		if exc != nil {
			return exc
		}
		used[key] = true
		v, exc := obj.Get(ctx, key, obj)
		if exc != nil {
			return exc
		}
		if exc := it.assignToTarget(ctx, prop.Value, v); exc != nil {
			return exc
		}
	}
	if t.Rest != nil {
		rest := runtime.NewObject(it.Engine.ObjectPrototype)
		for _, name := range obj.OwnEnumerablePropertyNames() {
			if used[name] {
				continue
			}
			v, exc := obj.Get(ctx, name, obj)
			if exc != nil {
				return exc
			}
			rest.DefineDataProperty(name, v, runtime.DefaultDataAttributes)
		}
		if exc := it.assignToTarget(ctx, t.Rest, rest); exc != nil {
			return exc
		}
	}
	return nil
}

// reinterpretArrayLiteral converts a parenthesis-free array literal used as
// an assignment target (`[a, b] = x`) into the equivalent ArrayPattern,
// since the parser produces ArrayLiteral for `[...]` uniformly and only
// reinterprets it when assignment proves it was a pattern all along.
func reinterpretArrayLiteral(ctx *runtime.Context, lit *ast.ArrayLiteral) (*ast.ArrayPattern, *runtime.Exception) {
	pat := &ast.ArrayPattern{}
	for _, el := range lit.Elements {
		if el == nil {
			pat.Elements = append(pat.Elements, nil)
			continue
		}
		if spread, ok := el.(*ast.SpreadElement); ok {
			target, exc := reinterpretExprAsPattern(ctx, spread.Argument)
			if exc != nil {
				return nil, exc
			}
			pat.Rest = target
			continue
		}
		target, exc := reinterpretExprAsPattern(ctx, el)
		if exc != nil {
			return nil, exc
		}
		pat.Elements = append(pat.Elements, target)
	}
	return pat, nil
}

// reinterpretObjectLiteral is reinterpretArrayLiteral's counterpart for
// `{a, b: c} = x`.
func reinterpretObjectLiteral(ctx *runtime.Context, lit *ast.ObjectLiteral) (*ast.ObjectPattern, *runtime.Exception) {
	pat := &ast.ObjectPattern{}
	for _, prop := range lit.Properties {
		if prop.Kind == ast.PropSpread {
			target, exc := reinterpretExprAsPattern(ctx, prop.Value)
			if exc != nil {
				return nil, exc
			}
			pat.Rest = target
			continue
		}
		target, exc := reinterpretExprAsPattern(ctx, prop.Value)
		if exc != nil {
			return nil, exc
		}
		pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{
			Key: prop.Key, Value: target, Computed: prop.Computed, Shorthand: prop.Shorthand,
		})
	}
	return pat, nil
}

// reinterpretExprAsPattern converts a single destructuring-assignment
// target expression (Identifier, MemberExpression, nested Array/Object
// literal, or a `target = default` AssignmentExpression) into a Pattern.
func reinterpretExprAsPattern(ctx *runtime.Context, e ast.Expression) (ast.Pattern, *runtime.Exception) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n, nil
	case *ast.MemberExpression:
		return n, nil
	case *ast.ArrayLiteral:
		return reinterpretArrayLiteral(ctx, n)
	case *ast.ObjectLiteral:
		return reinterpretObjectLiteral(ctx, n)
	case *ast.AssignmentExpression:
		if n.Operator != "=" {
			return nil, ctx.NewSyntaxError("invalid destructuring default")
		}
		return &ast.AssignmentPattern{Target: n.Target, Default: n.Value}, nil
	default:
		if p, ok := e.(ast.Pattern); ok {
			return p, nil
		}
		return nil, ctx.NewSyntaxError("invalid assignment target")
	}
}
