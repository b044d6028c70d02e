package interp

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/runtime"
)

// hoist performs the two-phase var/function setup required before a
// block/function body/script starts executing its statements in order:
// `var`/function declarations are hoisted (var to the nearest function
// scope, function declarations bound with their value already in env),
// and `let`/`const` declarations enter the temporal dead zone in env.
func (it *Interpreter) hoist(ctx *runtime.Context, stmts []ast.Statement, env *runtime.Environment, top bool) {
	it.hoistVars(stmts, env.NearestFunctionScope())
	it.hoistLexicalAndFunctions(ctx, stmts, env)
}

// hoistVars recursively collects every `var` binding name reachable from
// stmts without descending into nested function/arrow bodies or class
// bodies (those hoist to their own scope), and declares each in
// funcScope as an initialized `undefined` binding (a no-op if the name
// already exists, so re-running hoist for sibling blocks is safe).
func (it *Interpreter) hoistVars(stmts []ast.Statement, funcScope *runtime.Environment) {
	for _, s := range stmts {
		hoistVarsInStmt(s, funcScope)
	}
}

func hoistVarsInStmt(s ast.Statement, funcScope *runtime.Environment) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Kind == ast.DeclVar {
			for _, d := range n.Declarations {
				for _, name := range patternNames(d.Target) {
					funcScope.DeclareVar(name)
				}
			}
		}
	case *ast.BlockStatement:
		for _, st := range n.Body {
			hoistVarsInStmt(st, funcScope)
		}
	case *ast.IfStatement:
		hoistVarsInStmt(n.Consequent, funcScope)
		if n.Alternate != nil {
			hoistVarsInStmt(n.Alternate, funcScope)
		}
	case *ast.WhileStatement:
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.DoWhileStatement:
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.ForStatement:
		if n.Init != nil {
			hoistVarsInStmt(n.Init, funcScope)
		}
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.ForInStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
			hoistVarsInStmt(decl, funcScope)
		}
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.ForOfStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
			hoistVarsInStmt(decl, funcScope)
		}
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.WithStatement:
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.LabeledStatement:
		hoistVarsInStmt(n.Body, funcScope)
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			for _, st := range c.Consequent {
				hoistVarsInStmt(st, funcScope)
			}
		}
	case *ast.TryStatement:
		hoistVarsInStmt(n.Block, funcScope)
		if n.Handler != nil && n.Handler.Body != nil {
			hoistVarsInStmt(n.Handler.Body, funcScope)
		}
		if n.Finally != nil {
			hoistVarsInStmt(n.Finally, funcScope)
		}
	case *ast.FunctionLiteral:
		// A function declaration's name is bound by hoistLexicalAndFunctions,
		// not here; nothing var-hoists from its own body.
	}
}

// hoistLexicalAndFunctions declares this block's own `let`/`const` names
// (uninitialized, TDZ) and creates+binds every function declaration
// appearing directly in stmts, in source order, with its value already
// set (function declarations, unlike `var`, hoist fully initialized).
func (it *Interpreter) hoistLexicalAndFunctions(ctx *runtime.Context, stmts []ast.Statement, env *runtime.Environment) {
	for _, s := range stmts {
		if decl, ok := s.(*ast.VariableDeclaration); ok && decl.Kind != ast.DeclVar {
			for _, d := range decl.Declarations {
				for _, name := range patternNames(d.Target) {
					env.DeclareLexical(name, decl.Kind != ast.DeclConst)
				}
			}
		}
		if cls, ok := s.(*ast.ClassLiteral); ok && cls.Name != "" {
			env.DeclareLexical(cls.Name, true)
		}
	}
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionLiteral); ok && fn.Name != "" {
			fnVal := it.makeFunction(ctx, fn, env)
			env.DeclareVar(fn.Name)
			_, _, _ = env.Set(fn.Name, fnVal)
		}
	}
}

// patternNames collects every identifier name bound by pattern p
// (identifier, object/array destructuring, defaults, rest), used both by
// hoisting and by the destructuring binder.
func patternNames(p ast.Pattern) []string {
	switch n := p.(type) {
	case nil:
		return nil
	case *ast.Identifier:
		return []string{n.Name}
	case *ast.AssignmentPattern:
		return patternNames(n.Target)
	case *ast.RestElement:
		return patternNames(n.Argument)
	case *ast.ArrayPattern:
		var out []string
		for _, el := range n.Elements {
			out = append(out, patternNames(el)...)
		}
		if n.Rest != nil {
			out = append(out, patternNames(n.Rest)...)
		}
		return out
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range n.Properties {
			out = append(out, patternNames(prop.Value)...)
		}
		if n.Rest != nil {
			out = append(out, patternNames(n.Rest)...)
		}
		return out
	default:
		return nil
	}
}
