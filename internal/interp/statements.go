package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// execStatement dispatches on statement kind, returning the completion
// value of an ExpressionStatement (nil for every other kind) the way
// Script evaluation is expected to expose a program's last
// expression value back. Control-flow statements mutate ctx.Signal instead
// of returning early through Go's call stack.
func (it *Interpreter) execStatement(ctx *runtime.Context, stmt ast.Statement) runtime.Value {
	switch n := stmt.(type) {
	case *ast.ExpressionStatement:
		v, exc := it.evalExpression(ctx, n.Expression)
		if exc != nil {
			it.raise(ctx, exc)
			return runtime.Undefined
		}
		return v

	case *ast.BlockStatement:
		it.execBlock(ctx, n.Body, runtime.NewEnvironment(ctx.Env))
		return nil

	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return nil

	case *ast.VariableDeclaration:
		it.execVariableDeclaration(ctx, n)
		return nil

	case *ast.FunctionLiteral:
		// Declaration already bound by hoisting; nothing to do when
		// reached in statement position.
		return nil

	case *ast.ClassLiteral:
		val, exc := it.evalClass(ctx, n)
		if exc != nil {
			it.raise(ctx, exc)
			return nil
		}
		if n.Name != "" {
			ctx.Env.InitializeBinding(n.Name, val)
		}
		return nil

	case *ast.IfStatement:
		it.execIf(ctx, n)
		return nil

	case *ast.WhileStatement:
		it.execWhile(ctx, n, nil)
		return nil

	case *ast.DoWhileStatement:
		it.execDoWhile(ctx, n, nil)
		return nil

	case *ast.ForStatement:
		it.execFor(ctx, n, nil)
		return nil

	case *ast.ForInStatement:
		it.execForIn(ctx, n, nil)
		return nil

	case *ast.ForOfStatement:
		it.execForOf(ctx, n, nil)
		return nil

	case *ast.ReturnStatement:
		var v runtime.Value = runtime.Undefined
		if n.Argument != nil {
			val, exc := it.evalExpression(ctx, n.Argument)
			if exc != nil {
				it.raise(ctx, exc)
				return nil
			}
			v = val
		}
		ctx.Signal = runtime.SignalReturn
		ctx.ReturnValue = v
		return nil

	case *ast.ThrowStatement:
		v, exc := it.evalExpression(ctx, n.Argument)
		if exc != nil {
			it.raise(ctx, exc)
			return nil
		}
		it.raise(ctx, runtime.NewException(v))
		return nil

	case *ast.BreakStatement:
		ctx.Signal = runtime.SignalBreak
		ctx.Label = n.Label
		return nil

	case *ast.ContinueStatement:
		ctx.Signal = runtime.SignalContinue
		ctx.Label = n.Label
		return nil

	case *ast.LabeledStatement:
		it.execLabeled(ctx, n)
		return nil

	case *ast.WithStatement:
		it.execWith(ctx, n)
		return nil

	case *ast.SwitchStatement:
		it.execSwitch(ctx, n)
		return nil

	case *ast.TryStatement:
		it.execTry(ctx, n)
		return nil

	case *ast.ImportDeclaration:
		it.execImport(ctx, n)
		return nil

	case *ast.ExportDeclaration:
		it.execExport(ctx, n)
		return nil

	default:
		it.raise(ctx, ctx.NewSyntaxError("unsupported statement %T", n))
		return nil
	}
}

// raise sets the context's throw signal from exc, the single place a Go
// side exception becomes an in-flight script exception.
func (it *Interpreter) raise(ctx *runtime.Context, exc *runtime.Exception) {
	ctx.Signal = runtime.SignalThrow
	ctx.Exception = exc
}

// execBlock runs stmts against a fresh block environment (already hoisted
// lexical/function bindings go in env), stopping early if any statement
// sets a non-None signal.
func (it *Interpreter) execBlock(ctx *runtime.Context, stmts []ast.Statement, env *runtime.Environment) {
	outer := ctx.Env
	ctx.Env = env
	it.hoist(ctx, stmts, env, false)
	for _, s := range stmts {
		it.execStatement(ctx, s)
		if ctx.Signal != runtime.SignalNone {
			break
		}
	}
	ctx.Env = outer
}

func (it *Interpreter) execVariableDeclaration(ctx *runtime.Context, n *ast.VariableDeclaration) {
	for _, d := range n.Declarations {
		var val runtime.Value = runtime.Undefined
		if d.Init != nil {
			v, exc := it.evalExpression(ctx, d.Init)
			if exc != nil {
				it.raise(ctx, exc)
				return
			}
			val = v
			if n.Kind != ast.DeclVar {
				if fnVal, ok := val.(*runtime.Object); ok && fnVal.IsCallable() {
					nameIdentifier(d.Target, fnVal)
				}
			}
		}
		if exc := it.bindPattern(ctx, d.Target, val, n.Kind); exc != nil {
			it.raise(ctx, exc)
			return
		}
		if ctx.Signal != runtime.SignalNone {
			return
		}
	}
}

// nameIdentifier sets an anonymous function/class's `name` own property
// from the identifier it is being bound to (`const f = function(){}`),
// matching ECMAScript's "NamedEvaluation" for anonymous function
// expressions assigned directly to a simple binding.
func nameIdentifier(target ast.Pattern, fnVal *runtime.Object) {
	id, ok := target.(*ast.Identifier)
	if !ok {
		return
	}
	if info, slot, ok := fnVal.GetOwnProperty("name"); ok {
		if s, ok2 := slot.(runtime.Value); ok2 {
			if str, ok3 := s.(runtime.String); ok3 && str == "" {
				_ = info
				fnVal.DefineDataProperty("name", runtime.String(id.Name), runtime.PropertyAttributes{Configurable: true})
			}
		}
		return
	}
	fnVal.DefineDataProperty("name", runtime.String(id.Name), runtime.PropertyAttributes{Configurable: true})
}

func (it *Interpreter) execIf(ctx *runtime.Context, n *ast.IfStatement) {
	test, exc := it.evalExpression(ctx, n.Test)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}
	if runtime.ToBoolean(test) {
		it.execStatement(ctx, n.Consequent)
	} else if n.Alternate != nil {
		it.execStatement(ctx, n.Alternate)
	}
}

// loopControl interprets ctx.Signal after one loop-body iteration and
// reports whether the loop should stop. A break or continue naming a label
// that is not in labels is left set, so it keeps propagating to an
// enclosing labeled statement. labels holds every label
// directly attached to this loop (`a: b: for(...)` attaches both "a" and
// "b" to the same loop), so a `continue`/`break` naming any of them is
// this loop's own, not an outer one's.
func loopControl(ctx *runtime.Context, labels []string) (stop bool) {
	switch ctx.Signal {
	case runtime.SignalBreak:
		if ctx.Label == "" || hasLabel(labels, ctx.Label) {
			ctx.ClearSignal()
			return true
		}
		return true // propagate: still a signal, caller must stop and forward it
	case runtime.SignalContinue:
		if ctx.Label == "" || hasLabel(labels, ctx.Label) {
			ctx.ClearSignal()
			return false
		}
		return true
	case runtime.SignalReturn, runtime.SignalThrow:
		return true
	default:
		return false
	}
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func (it *Interpreter) checkIterationCap(ctx *runtime.Context) bool {
	ctx.LoopIterations++
	cap := ctx.MaxIterations
	if cap <= 0 {
		cap = DefaultIterationCap
	}
	if ctx.LoopIterations > cap {
		it.raise(ctx, ctx.NewEngineError("loop exceeded the configured iteration cap"))
		return false
	}
	return true
}

// DefaultIterationCap is a conservative 10^9 bound on loop bodies,
// used when Context.MaxIterations is left at zero (unconfigured).
const DefaultIterationCap = 1_000_000_000

func (it *Interpreter) execWhile(ctx *runtime.Context, n *ast.WhileStatement, labels []string) {
	for {
		test, exc := it.evalExpression(ctx, n.Test)
		if exc != nil {
			it.raise(ctx, exc)
			return
		}
		if !runtime.ToBoolean(test) {
			return
		}
		if !it.checkIterationCap(ctx) {
			return
		}
		it.execStatement(ctx, n.Body)
		if loopControl(ctx, labels) {
			return
		}
	}
}

func (it *Interpreter) execDoWhile(ctx *runtime.Context, n *ast.DoWhileStatement, labels []string) {
	for {
		if !it.checkIterationCap(ctx) {
			return
		}
		it.execStatement(ctx, n.Body)
		if loopControl(ctx, labels) {
			return
		}
		test, exc := it.evalExpression(ctx, n.Test)
		if exc != nil {
			it.raise(ctx, exc)
			return
		}
		if !runtime.ToBoolean(test) {
			return
		}
	}
}

// execFor implements the classic three-clause for loop with per-iteration
// `let`/`const` scoping: CreatePerIterationEnvironment runs *between* the
// body and Update, not at the top of the loop — the body (and any closure
// it creates) runs in iteration N's environment, which is then cloned into
// iteration N+1's environment, and only that clone sees Update's mutation.
// Running the clone before Update would let Update mutate the very
// binding the body's closures just captured.
func (it *Interpreter) execFor(ctx *runtime.Context, n *ast.ForStatement, labels []string) {
	outer := ctx.Env
	loopEnv := runtime.NewEnvironment(outer)
	ctx.Env = loopEnv

	isLexical := false
	if decl, ok := n.Init.(*ast.VariableDeclaration); ok {
		isLexical = decl.Kind != ast.DeclVar
		it.execVariableDeclaration(ctx, decl)
	} else if exprStmt, ok := n.Init.(*ast.ExpressionStatement); ok {
		if _, exc := it.evalExpression(ctx, exprStmt.Expression); exc != nil {
			it.raise(ctx, exc)
			ctx.Env = outer
			return
		}
	}
	if ctx.Signal != runtime.SignalNone {
		ctx.Env = outer
		return
	}

	// The first iteration gets its own copy of the init environment, so it
	// never shares a binding with anything outside the loop either.
	if isLexical {
		loopEnv = loopEnv.Clone()
		ctx.Env = loopEnv
	}

	for {
		if n.Test != nil {
			test, exc := it.evalExpression(ctx, n.Test)
			if exc != nil {
				it.raise(ctx, exc)
				break
			}
			if !runtime.ToBoolean(test) {
				break
			}
		}
		if !it.checkIterationCap(ctx) {
			break
		}
		it.execStatement(ctx, n.Body)
		if loopControl(ctx, labels) {
			break
		}
		if isLexical {
			loopEnv = loopEnv.Clone()
			ctx.Env = loopEnv
		}
		if n.Update != nil {
			if _, exc := it.evalExpression(ctx, n.Update); exc != nil {
				it.raise(ctx, exc)
				break
			}
		}
	}
	ctx.Env = outer
}

// execLabeled handles a labeled statement. Consecutive labels stacked
// directly on one loop (`outer: inner: for (...) { continue outer }`) all
// name that same loop, so labels are collected down to the first
// non-label statement and, when that is a loop, handed to it directly —
// otherwise `continue outer` would propagate past the loop it was meant
// to target instead of advancing it.
func (it *Interpreter) execLabeled(ctx *runtime.Context, n *ast.LabeledStatement) {
	labels := []string{n.Label}
	body := n.Body
	for {
		inner, ok := body.(*ast.LabeledStatement)
		if !ok {
			break
		}
		labels = append(labels, inner.Label)
		body = inner.Body
	}

	for _, l := range labels {
		ctx.PushLabel(l)
	}
	it.execLabeledBody(ctx, body, labels)
	for range labels {
		ctx.PopLabel()
	}

	if ctx.Signal == runtime.SignalBreak && hasLabel(labels, ctx.Label) {
		ctx.ClearSignal()
	} else if ctx.Signal == runtime.SignalContinue && hasLabel(labels, ctx.Label) {
		ctx.ClearSignal()
	}
}

// execLabeledBody runs body with labels bound as the enclosing loop's own
// labels (so loopControl inside it recognizes a matching continue/break as
// its own instead of always requiring an unlabeled signal); non-loop
// bodies fall back to plain execStatement, since only break (handled above
// by execLabeled itself) applies to them.
func (it *Interpreter) execLabeledBody(ctx *runtime.Context, body ast.Statement, labels []string) {
	switch n := body.(type) {
	case *ast.WhileStatement:
		it.execWhile(ctx, n, labels)
	case *ast.DoWhileStatement:
		it.execDoWhile(ctx, n, labels)
	case *ast.ForStatement:
		it.execFor(ctx, n, labels)
	case *ast.ForInStatement:
		it.execForIn(ctx, n, labels)
	case *ast.ForOfStatement:
		it.execForOf(ctx, n, labels)
	default:
		it.execStatement(ctx, body)
	}
}

func (it *Interpreter) execWith(ctx *runtime.Context, n *ast.WithStatement) {
	obj, exc := it.evalExpression(ctx, n.Object)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}
	objRef, exc2 := it.toObject(ctx, obj)
	if exc2 != nil {
		it.raise(ctx, exc2)
		return
	}
	outer := ctx.Env
	ctx.Env = runtime.NewObjectEnvironment(outer, objRef)
	it.execStatement(ctx, n.Body)
	ctx.Env = outer
}

func (it *Interpreter) execSwitch(ctx *runtime.Context, n *ast.SwitchStatement) {
	disc, exc := it.evalExpression(ctx, n.Discriminant)
	if exc != nil {
		it.raise(ctx, exc)
		return
	}

	outer := ctx.Env
	env := runtime.NewEnvironment(outer)
	ctx.Env = env
	var all []ast.Statement
	for _, c := range n.Cases {
		all = append(all, c.Consequent...)
	}
	it.hoist(ctx, all, env, false)

	matchedIdx := -1
	defaultIdx := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		tv, exc := it.evalExpression(ctx, c.Test)
		if exc != nil {
			it.raise(ctx, exc)
			ctx.Env = outer
			return
		}
		if StrictEquals(disc, tv) {
			matchedIdx = i
			break
		}
	}
	if matchedIdx == -1 {
		matchedIdx = defaultIdx
	}
	if matchedIdx != -1 {
		for i := matchedIdx; i < len(n.Cases); i++ {
			for _, s := range n.Cases[i].Consequent {
				it.execStatement(ctx, s)
				if ctx.Signal != runtime.SignalNone {
					goto done
				}
			}
		}
	}
done:
	if ctx.Signal == runtime.SignalBreak && ctx.Label == "" {
		ctx.ClearSignal()
	}
	ctx.Env = outer
}

func (it *Interpreter) execTry(ctx *runtime.Context, n *ast.TryStatement) {
	it.execBlock(ctx, n.Block.Body, runtime.NewEnvironment(ctx.Env))

	if ctx.Signal == runtime.SignalThrow && n.Handler != nil {
		exc := ctx.Exception
		ctx.ClearSignal()
		env := runtime.NewEnvironment(ctx.Env)
		if n.Handler.Param != nil {
			if bindExc := it.bindPattern(ctx, n.Handler.Param, excValue(exc), ast.DeclLet); bindExc != nil {
				it.raise(ctx, bindExc)
			}
		}
		if ctx.Signal == runtime.SignalNone {
			it.execBlock(ctx, n.Handler.Body.Body, env)
		}
	}

	if n.Finally != nil {
		// The finally block must run regardless of how the try/catch
		// completed; a completion produced inside finally overrides
		// whatever was pending ("finally runs regardless and may
		// re-raise").
		pending := captureSignal(ctx)
		ctx.ClearSignal()
		it.execBlock(ctx, n.Finally.Body, runtime.NewEnvironment(ctx.Env))
		if ctx.Signal == runtime.SignalNone {
			restoreSignal(ctx, pending)
		}
	}
}

// signalState snapshots the bits of Context a finally block must be able
// to override only if it produces its own completion.
type signalState struct {
	kind  runtime.SignalKind
	ret   runtime.Value
	exc   *runtime.Exception
	label string
}

func captureSignal(ctx *runtime.Context) signalState {
	return signalState{kind: ctx.Signal, ret: ctx.ReturnValue, exc: ctx.Exception, label: ctx.Label}
}

func restoreSignal(ctx *runtime.Context, s signalState) {
	ctx.Signal = s.kind
	ctx.ReturnValue = s.ret
	ctx.Exception = s.exc
	ctx.Label = s.label
}

func excValue(exc *runtime.Exception) runtime.Value {
	if exc == nil {
		return runtime.Undefined
	}
	return exc.Value
}

func (it *Interpreter) execImport(ctx *runtime.Context, n *ast.ImportDeclaration) {
	if it.Engine.ModuleLoader == nil {
		it.raise(ctx, ctx.NewReferenceError("no module loader registered for import of %q", n.Source))
		return
	}
	mod, err := it.Engine.ModuleLoader(n.Source)
	if err != nil {
		it.raise(ctx, ctx.NewReferenceError("cannot resolve module %q: %s", n.Source, err.Error()))
		return
	}
	for _, spec := range n.Specifiers {
		var val runtime.Value = runtime.Undefined
		if spec.Imported == "*" {
			val = mod
		} else if mod != nil {
			v, exc := mod.Get(ctx, spec.Imported, mod)
			if exc != nil {
				it.raise(ctx, exc)
				return
			}
			val = v
		}
		ctx.Env.DeclareVar(spec.Local)
		_, _, _ = ctx.Env.Set(spec.Local, val)
	}
}

func (it *Interpreter) execExport(ctx *runtime.Context, n *ast.ExportDeclaration) {
	if n.Declaration != nil {
		it.execStatement(ctx, n.Declaration)
	}
	// Export bookkeeping itself (populating a module namespace object) is
	// the embedder's concern; the core only needs the
	// declaration's bindings to exist in the current scope, which the
	// statement dispatch above already guarantees.
}
