package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// classFieldInit pairs an instance field's key with the initializer
// expression to run at construction time, captured alongside the
// environment it closes over (the class body's own scope, so field
// initializers can reference other class-scoped names).
type classFieldInit struct {
	key      string
	computed bool
	keyExpr  ast.Expression
	value    ast.Expression
	env      *runtime.Environment
}

// classInfo is stashed on the constructor Object's Internal-adjacent side
// table (via FunctionValue, reusing its HomeObject/IsClassConstructor
// fields) plus this package-private map, keyed by the constructor Object,
// holding what invoke()/construct() need that FunctionValue has no field
// for: the instance field initializer list and whether the class declared
// its own constructor or needs the default relay.
type classInfo struct {
	fields        []classFieldInit
	hasExplicitCtor bool
	isDerived     bool
}

// evalClass implements class declaration/expression evaluation: building
// the prototype chain from `extends`, installing methods/accessors/static
// members, and wiring `super` resolution via each method's HomeObject
// per the class-field initialization order.
func (it *Interpreter) evalClass(ctx *runtime.Context, n *ast.ClassLiteral) (runtime.Value, *runtime.Exception) {
	classEnv := runtime.NewEnvironment(ctx.Env)
	if n.Name != "" {
		classEnv.DeclareLexical(n.Name, false)
	}
	classCtx := ctx.Child(classEnv, ctx.This, ctx.NewTarget, true)

	var superCtor *runtime.Object
	protoParent := it.Engine.ObjectPrototype
	ctorParent := it.Engine.FunctionPrototype
	isDerived := n.SuperClass != nil
	if isDerived {
		superVal, exc := it.evalExpression(classCtx, n.SuperClass)
		if exc != nil {
			return runtime.Undefined, exc
		}
		if superVal == runtime.Null {
			protoParent = nil
		} else {
			sc, ok := superVal.(*runtime.Object)
			if !ok || !sc.IsCallable() {
				return runtime.Undefined, ctx.NewTypeError("Class extends value is not a constructor")
			}
			superCtor = sc
			ctorParent = sc
			if pv, exc := sc.Get(classCtx, "prototype", sc); exc != nil {
				return runtime.Undefined, exc
			} else if p, ok := pv.(*runtime.Object); ok {
				protoParent = p
			}
		}
	}

	proto := runtime.NewObject(protoParent)

	var ctorMember *ast.ClassMember
	var fields []classFieldInit
	var staticFields []classFieldInit
	for i := range n.Body {
		m := &n.Body[i]
		if m.Kind == ast.MethodConstructor {
			ctorMember = m
			continue
		}
		if m.IsField {
			key, computed := m.Key, m.Computed
			fi := classFieldInit{keyExpr: key, computed: computed, value: m.Value, env: classEnv}
			if m.Static {
				staticFields = append(staticFields, fi)
			} else {
				fields = append(fields, fi)
			}
			continue
		}
	}

	var fnVal *runtime.FunctionValue
	var ctorObj *runtime.Object
	if ctorMember != nil {
		fnVal = &runtime.FunctionValue{
			Name:    n.Name,
			Params:  paramDescriptors(ctorMember.Method.Params),
			Body:    ctorMember.Method.Body,
			Closure: classEnv,
			Strict:  true,
			IsClassConstructor: true,
			HomeObject: proto,
		}
	} else {
		// Default constructor: a derived class relays all arguments to
		// super(); a base class takes no action.
		fnVal = &runtime.FunctionValue{
			Name: n.Name, Closure: classEnv, Strict: true,
			IsClassConstructor: true, HomeObject: proto,
		}
	}
	length := 0
	if ctorMember != nil {
		length = countExpectedArgs(ctorMember.Method.Params)
	}
	ctorObj = it.wrapFunction(n.Name, length, fnVal, true)
	ctorObj.SetPrototype(ctorParent)
	ctorObj.DefineDataProperty("prototype", proto, runtime.PropertyAttributes{})
	proto.DefineDataProperty("constructor", ctorObj, runtime.PropertyAttributes{Writable: true, Configurable: true})

	it.classInfos[ctorObj] = &classInfo{fields: fields, hasExplicitCtor: ctorMember != nil, isDerived: isDerived}
	it.classSupers[ctorObj] = superCtor

	for i := range n.Body {
		m := &n.Body[i]
		if m.Kind == ast.MethodConstructor || m.IsField {
			continue // constructor handled above; fields installed below
		}
		target := proto
		if m.Static {
			target = ctorObj
		}
		key, exc := it.propertyKeyOf(classCtx, m.Key, m.Computed)
		if exc != nil {
			return runtime.Undefined, exc
		}
		methodVal := &runtime.FunctionValue{
			Name: key, Params: paramDescriptors(m.Method.Params), Body: m.Method.Body,
			Closure: classEnv, Strict: true, HomeObject: target,
			IsGenerator: m.Method.IsGenerator, IsAsync: m.Method.IsAsync,
		}
		methodObj := it.wrapFunction(key, countExpectedArgs(m.Method.Params), methodVal, false)
		switch m.Kind {
		case ast.MethodGetter:
			target.DefineAccessorProperty(key, methodObj, nil, runtime.PropertyAttributes{Configurable: true})
		case ast.MethodSetter:
			target.DefineAccessorProperty(key, nil, methodObj, runtime.PropertyAttributes{Configurable: true})
		default:
			target.DefineDataProperty(key, methodObj, runtime.PropertyAttributes{Writable: true, Configurable: true})
		}
	}

	for i := range n.Body {
		m := &n.Body[i]
		if m.IsField && m.Static {
			key, exc := it.propertyKeyOf(classCtx, m.Key, m.Computed)
			if exc != nil {
				return runtime.Undefined, exc
			}
			var v runtime.Value = runtime.Undefined
			if m.Value != nil {
				fieldCtx := classCtx.Child(classEnv, ctorObj, nil, true)
				fieldCtx.HomeObject = ctorObj
				v, exc = it.evalExpression(fieldCtx, m.Value)
				if exc != nil {
					return runtime.Undefined, exc
				}
			}
			ctorObj.DefineDataProperty(key, v, runtime.DefaultDataAttributes)
		}
	}

	if n.Name != "" {
		classEnv.InitializeBinding(n.Name, ctorObj)
	}
	return ctorObj, nil
}

// constructClassInstance implements [[Construct]] for a class constructor:
// derived classes start with `this` in the TDZ until their body's `super()`
// call runs; base classes get `this` immediately and then run field
// initializers before the constructor body.
func (it *Interpreter) constructClassInstance(ctx *runtime.Context, ctorObj *runtime.Object, fnVal *runtime.FunctionValue, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, *runtime.Exception) {
	info := it.classInfos[ctorObj]
	superCtor := it.classSupers[ctorObj]

	callEnv := runtime.NewEnvironment(fnVal.Closure)
	callEnv.IsFunctionScope = true
	callCtx := ctx.Child(callEnv, runtime.Undefined, newTarget, true)
	callCtx.HomeObject = fnVal.HomeObject
	callCtx.SuperConstructor = superCtor
	callCtx.Env.DeclareVar("arguments")
	_, _, _ = callCtx.Env.Set("arguments", it.makeArgumentsObject(args, ctorObj))

	if info != nil && info.isDerived {
		callCtx.ThisTDZ = true
		if !info.hasExplicitCtor {
			// Default derived constructor: super(...args) then fall through
			// to field initializers with no further body statements.
			inst, exc := it.callSuper(callCtx, args)
			if exc != nil {
				return runtime.Undefined, exc
			}
			if exc := it.runFieldInits(callCtx, info, inst); exc != nil {
				return runtime.Undefined, exc
			}
			return inst, nil
		}
	} else {
		protoVal, exc := ctorObj.Get(ctx, "prototype", ctorObj)
		if exc != nil {
			return runtime.Undefined, exc
		}
		proto, _ := protoVal.(*runtime.Object)
		if proto == nil {
			proto = it.Engine.ObjectPrototype
		}
		inst := runtime.NewObject(proto)
		callCtx.This = inst
		if exc := it.runFieldInits(callCtx, info, inst); exc != nil {
			return runtime.Undefined, exc
		}
	}

	if exc := it.bindParams(callCtx, fnVal.Params, args); exc != nil {
		return runtime.Undefined, exc
	}
	result, exc := it.runConstructorBody(callCtx, fnVal, info)
	if exc != nil {
		return runtime.Undefined, exc
	}
	if obj, ok := result.(*runtime.Object); ok {
		return obj, nil
	}
	if callCtx.ThisTDZ {
		return runtime.Undefined, ctx.NewReferenceError("Must call super constructor before returning from derived constructor")
	}
	return callCtx.This, nil
}

// runConstructorBody is runBody plus super()-call interception: a bare
// `super(...)` CallExpression with a SuperExpression callee, found while
// executing a derived constructor, resolves `this` (ending its TDZ) and
// runs field initializers before continuing the rest of the body.
func (it *Interpreter) runConstructorBody(ctx *runtime.Context, fnVal *runtime.FunctionValue, info *classInfo) (runtime.Value, *runtime.Exception) {
	if fnVal.Body == nil {
		return runtime.Undefined, nil
	}
	it.hoist(ctx, fnVal.Body.Body, ctx.Env, true)
	fieldsPending := info != nil && info.isDerived && ctx.ThisTDZ
	for _, s := range fnVal.Body.Body {
		it.execStatement(ctx, s)
		if fieldsPending && !ctx.ThisTDZ && ctx.Signal != runtime.SignalThrow {
			fieldsPending = false
			if exc := it.runFieldInits(ctx, info, ctx.This); exc != nil {
				return runtime.Undefined, exc
			}
		}
		if ctx.Signal == runtime.SignalReturn {
			v := ctx.ReturnValue
			ctx.ClearSignal()
			return v, nil
		}
		if ctx.Signal == runtime.SignalThrow {
			exc := ctx.Exception
			ctx.ClearSignal()
			return runtime.Undefined, exc
		}
		if ctx.Signal != runtime.SignalNone {
			ctx.ClearSignal()
		}
	}
	return runtime.Undefined, nil
}

// callSuper invokes the superclass constructor with args, sets ctx.This to
// the resulting instance, and clears ThisTDZ — the effect of a `super(...)`
// call.
func (it *Interpreter) callSuper(ctx *runtime.Context, args []runtime.Value) (runtime.Value, *runtime.Exception) {
	if ctx.SuperConstructor == nil || ctx.SuperConstructor.Construct == nil {
		return runtime.Undefined, ctx.NewSyntaxError("'super' keyword is only valid inside a derived class constructor")
	}
	inst, exc := ctx.SuperConstructor.Construct(ctx, args, ctx.NewTarget)
	if exc != nil {
		return runtime.Undefined, exc
	}
	ctx.This = inst
	ctx.ThisTDZ = false
	return inst, nil
}

func (it *Interpreter) runFieldInits(ctx *runtime.Context, info *classInfo, inst runtime.Value) *runtime.Exception {
	if info == nil {
		return nil
	}
	for _, f := range info.fields {
		key, exc := it.propertyKeyOf(ctx, f.keyExpr, f.computed)
		if exc != nil {
			return exc
		}
		var v runtime.Value = runtime.Undefined
		if f.value != nil {
			fieldCtx := ctx.Child(f.env, inst, ctx.NewTarget, true)
			fieldCtx.HomeObject = ctx.HomeObject
			v, exc = it.evalExpression(fieldCtx, f.value)
			if exc != nil {
				return exc
			}
		}
		if obj, ok := inst.(*runtime.Object); ok {
			obj.DefineDataProperty(key, v, runtime.DefaultDataAttributes)
		}
	}
	return nil
}
