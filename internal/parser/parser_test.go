package parser

import (
	"testing"

	"github.com/nimbus-lang/nimbus/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := NewFromSource(src)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors())
	}
	return prog
}

func TestParseVariableDeclarations(t *testing.T) {
	prog := mustParse(t, "let x = 1, y = 2; const z = x + y; var w;")
	if len(prog.Body) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Body))
	}
	decl, ok := prog.Body[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.VariableDeclaration", prog.Body[0])
	}
	if decl.Kind != ast.DeclLet {
		t.Errorf("kind = %v, want DeclLet", decl.Kind)
	}
	if len(decl.Declarations) != 2 {
		t.Fatalf("got %d declarators, want 2", len(decl.Declarations))
	}
}

func TestParseBinaryPrecedence(t *testing.T) {
	prog := mustParse(t, "1 + 2 * 3;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin, ok := stmt.Expression.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.BinaryExpression", stmt.Expression)
	}
	if bin.Operator != "+" {
		t.Fatalf("top operator = %q, want %q", bin.Operator, "+")
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("right side should be a '*' expression, got %#v", bin.Right)
	}
}

func TestParseExponentiationRightAssociative(t *testing.T) {
	prog := mustParse(t, "2 ** 3 ** 2;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin := stmt.Expression.(*ast.BinaryExpression)
	if bin.Operator != "**" {
		t.Fatalf("top operator = %q, want **", bin.Operator)
	}
	if _, ok := bin.Right.(*ast.BinaryExpression); !ok {
		t.Fatalf("exponentiation should nest on the right for right-associativity, got %#v", bin.Right)
	}
	if _, ok := bin.Left.(*ast.NumberLiteral); !ok {
		t.Fatalf("left side should be the literal 2, got %#v", bin.Left)
	}
}

func TestParseConditionalExpression(t *testing.T) {
	prog := mustParse(t, "a ? b : c;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.ConditionalExpression); !ok {
		t.Fatalf("expression is %T, want *ast.ConditionalExpression", stmt.Expression)
	}
}

func TestParseArrowFunctionSingleParam(t *testing.T) {
	prog := mustParse(t, "const f = x => x + 1;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if !ok {
		t.Fatalf("init is %T, want *ast.ArrowFunctionExpression", decl.Declarations[0].Init)
	}
	if !arrow.ExpressionBody {
		t.Errorf("expected concise expression body")
	}
	if len(arrow.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(arrow.Params))
	}
}

func TestParseArrowFunctionParenParams(t *testing.T) {
	prog := mustParse(t, "const f = (a, b = 1, ...rest) => { return a; };")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	if !ok {
		t.Fatalf("init is %T, want *ast.ArrowFunctionExpression", decl.Declarations[0].Init)
	}
	if arrow.ExpressionBody {
		t.Errorf("expected block body")
	}
	if len(arrow.Params) != 3 {
		t.Fatalf("got %d params, want 3", len(arrow.Params))
	}
	if _, ok := arrow.Params[1].(*ast.AssignmentPattern); !ok {
		t.Errorf("param 1 is %T, want *ast.AssignmentPattern", arrow.Params[1])
	}
	if _, ok := arrow.Params[2].(*ast.RestElement); !ok {
		t.Errorf("param 2 is %T, want *ast.RestElement", arrow.Params[2])
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := mustParse(t, "function* gen(a, b) { yield a; return b; }")
	fn, ok := prog.Body[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("statement is %T, want *ast.FunctionLiteral", prog.Body[0])
	}
	if fn.Name != "gen" || !fn.IsGenerator {
		t.Errorf("got name=%q isGenerator=%v, want gen/true", fn.Name, fn.IsGenerator)
	}
	if len(fn.Body.Body) != 2 {
		t.Fatalf("got %d body statements, want 2", len(fn.Body.Body))
	}
}

func TestParseClassDeclaration(t *testing.T) {
	src := `
	class Animal {
		static count = 0;
		constructor(name) { this.name = name; }
		get label() { return this.name; }
		set label(v) { this.name = v; }
		speak() { return "..."; }
	}`
	prog := mustParse(t, src)
	cls, ok := prog.Body[0].(*ast.ClassLiteral)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ClassLiteral", prog.Body[0])
	}
	if cls.Name != "Animal" {
		t.Errorf("name = %q, want Animal", cls.Name)
	}
	var ctor, getter, setter, method *ast.ClassMember
	for i := range cls.Body {
		m := &cls.Body[i]
		switch {
		case m.Kind == ast.MethodConstructor:
			ctor = m
		case m.Kind == ast.MethodGetter:
			getter = m
		case m.Kind == ast.MethodSetter:
			setter = m
		case m.Kind == ast.MethodNormal && !m.IsField:
			method = m
		}
	}
	if ctor == nil || getter == nil || setter == nil || method == nil {
		t.Fatalf("missing a member kind: ctor=%v getter=%v setter=%v method=%v", ctor, getter, setter, method)
	}
}

func TestParseClassWithExtends(t *testing.T) {
	prog := mustParse(t, "class Dog extends Animal { constructor() { super(); } }")
	cls := prog.Body[0].(*ast.ClassLiteral)
	if cls.SuperClass == nil {
		t.Fatalf("expected a superclass expression")
	}
	if _, ok := cls.SuperClass.(*ast.Identifier); !ok {
		t.Fatalf("superclass is %T, want *ast.Identifier", cls.SuperClass)
	}
}

func TestParseObjectLiteral(t *testing.T) {
	prog := mustParse(t, `const o = { a: 1, [k]: 2, b, c() { return 1; }, ...rest };`)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	obj, ok := decl.Declarations[0].Init.(*ast.ObjectLiteral)
	if !ok {
		t.Fatalf("init is %T, want *ast.ObjectLiteral", decl.Declarations[0].Init)
	}
	if len(obj.Properties) != 5 {
		t.Fatalf("got %d properties, want 5", len(obj.Properties))
	}
	if !obj.Properties[1].Computed {
		t.Errorf("property 1 should be computed")
	}
	if !obj.Properties[2].Shorthand {
		t.Errorf("property 2 should be shorthand")
	}
	if obj.Properties[3].Kind != ast.PropMethod {
		t.Errorf("property 3 kind = %v, want PropMethod", obj.Properties[3].Kind)
	}
	if obj.Properties[4].Kind != ast.PropSpread {
		t.Errorf("property 4 kind = %v, want PropSpread", obj.Properties[4].Kind)
	}
}

func TestParseArrayDestructuringAssignment(t *testing.T) {
	prog := mustParse(t, "[a, , b = 1, ...rest] = arr;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	assign, ok := stmt.Expression.(*ast.AssignmentExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignmentExpression", stmt.Expression)
	}
	pat, ok := assign.Target.(*ast.ArrayPattern)
	if !ok {
		t.Fatalf("target is %T, want *ast.ArrayPattern", assign.Target)
	}
	if len(pat.Elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(pat.Elements))
	}
	if pat.Elements[1] != nil {
		t.Errorf("element 1 should be an elision (nil)")
	}
	if _, ok := pat.Elements[2].(*ast.AssignmentPattern); !ok {
		t.Errorf("element 2 is %T, want *ast.AssignmentPattern", pat.Elements[2])
	}
	if pat.Rest == nil {
		t.Fatalf("expected a rest binding")
	}
}

func TestParseObjectDestructuringAssignment(t *testing.T) {
	prog := mustParse(t, "({ a, b: renamed, ...rest } = obj);")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	assign, ok := stmt.Expression.(*ast.AssignmentExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.AssignmentExpression", stmt.Expression)
	}
	pat, ok := assign.Target.(*ast.ObjectPattern)
	if !ok {
		t.Fatalf("target is %T, want *ast.ObjectPattern", assign.Target)
	}
	if len(pat.Properties) != 2 {
		t.Fatalf("got %d properties, want 2", len(pat.Properties))
	}
	if pat.Rest == nil {
		t.Fatalf("expected a rest binding")
	}
}

func TestParseForClassicLoop(t *testing.T) {
	prog := mustParse(t, "for (let i = 0; i < 10; i++) { sum += i; }")
	forStmt, ok := prog.Body[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ForStatement", prog.Body[0])
	}
	if forStmt.Init == nil || forStmt.Test == nil || forStmt.Update == nil {
		t.Fatalf("expected all three for-clauses present")
	}
}

func TestParseForOfLoop(t *testing.T) {
	prog := mustParse(t, "for (const x of items) { console.log(x); }")
	forOf, ok := prog.Body[0].(*ast.ForOfStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ForOfStatement", prog.Body[0])
	}
	if _, ok := forOf.Left.(*ast.VariableDeclaration); !ok {
		t.Fatalf("left is %T, want *ast.VariableDeclaration", forOf.Left)
	}
}

func TestParseForInLoop(t *testing.T) {
	prog := mustParse(t, "for (let k in obj) { use(k); }")
	forIn, ok := prog.Body[0].(*ast.ForInStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ForInStatement", prog.Body[0])
	}
	if forIn.Right == nil {
		t.Fatalf("expected a right-hand expression")
	}
}

func TestParseForInDisambiguationVsForOf(t *testing.T) {
	prog := mustParse(t, "for (a in b) {}")
	if _, ok := prog.Body[0].(*ast.ForInStatement); !ok {
		t.Fatalf("statement is %T, want *ast.ForInStatement", prog.Body[0])
	}
}

func TestParseTryCatchFinally(t *testing.T) {
	prog := mustParse(t, "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }")
	tr, ok := prog.Body[0].(*ast.TryStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.TryStatement", prog.Body[0])
	}
	if tr.Handler == nil || tr.Finally == nil {
		t.Fatalf("expected both handler and finally present")
	}
	if tr.Handler.Param == nil {
		t.Fatalf("expected a catch parameter")
	}
}

func TestParseSwitchStatement(t *testing.T) {
	prog := mustParse(t, `
	switch (x) {
		case 1:
		case 2:
			doA();
			break;
		default:
			doB();
	}`)
	sw, ok := prog.Body[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.SwitchStatement", prog.Body[0])
	}
	if len(sw.Cases) != 3 {
		t.Fatalf("got %d cases, want 3", len(sw.Cases))
	}
	if sw.Cases[2].Test != nil {
		t.Errorf("default case should have a nil test")
	}
}

func TestParseTemplateLiteral(t *testing.T) {
	prog := mustParse(t, "const s = `hello ${name}!`;")
	decl := prog.Body[0].(*ast.VariableDeclaration)
	tmpl, ok := decl.Declarations[0].Init.(*ast.TemplateLiteral)
	if !ok {
		t.Fatalf("init is %T, want *ast.TemplateLiteral", decl.Declarations[0].Init)
	}
	if len(tmpl.Quasis) != 2 || len(tmpl.Expressions) != 1 {
		t.Fatalf("got %d quasis / %d expressions, want 2/1", len(tmpl.Quasis), len(tmpl.Expressions))
	}
	if tmpl.Quasis[0].Cooked != "hello " {
		t.Errorf("quasi 0 = %q, want %q", tmpl.Quasis[0].Cooked, "hello ")
	}
	if _, ok := tmpl.Expressions[0].(*ast.Identifier); !ok {
		t.Errorf("embedded expression is %T, want *ast.Identifier", tmpl.Expressions[0])
	}
}

func TestParseOptionalChainingAndNullish(t *testing.T) {
	prog := mustParse(t, "a?.b?.[c]?.() ?? d;")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	logical, ok := stmt.Expression.(*ast.LogicalExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.LogicalExpression", stmt.Expression)
	}
	if logical.Operator != "??" {
		t.Errorf("operator = %q, want ??", logical.Operator)
	}
	call, ok := logical.Left.(*ast.CallExpression)
	if !ok || !call.Optional {
		t.Fatalf("left side should be an optional call, got %#v", logical.Left)
	}
}

func TestParseNewExpression(t *testing.T) {
	prog := mustParse(t, "new Foo.Bar(1, 2);")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	n, ok := stmt.Expression.(*ast.NewExpression)
	if !ok {
		t.Fatalf("expression is %T, want *ast.NewExpression", stmt.Expression)
	}
	if len(n.Arguments) != 2 {
		t.Fatalf("got %d arguments, want 2", len(n.Arguments))
	}
	if _, ok := n.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("callee is %T, want *ast.MemberExpression", n.Callee)
	}
}

func TestParseLabeledAndBreakContinue(t *testing.T) {
	prog := mustParse(t, "outer: for (;;) { break outer; }")
	label, ok := prog.Body[0].(*ast.LabeledStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.LabeledStatement", prog.Body[0])
	}
	if label.Label != "outer" {
		t.Errorf("label = %q, want outer", label.Label)
	}
}

func TestParseAutomaticSemicolonInsertion(t *testing.T) {
	prog := mustParse(t, "let a = 1\nlet b = 2\n")
	if len(prog.Body) != 2 {
		t.Fatalf("got %d statements, want 2 (ASI should split these)", len(prog.Body))
	}
}

func TestParseReturnWithNewlineInsertsASI(t *testing.T) {
	prog := mustParse(t, "function f() {\n  return\n  1\n}")
	fn := prog.Body[0].(*ast.FunctionLiteral)
	ret, ok := fn.Body.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ReturnStatement", fn.Body.Body[0])
	}
	if ret.Argument != nil {
		t.Errorf("newline after return should yield a bare return, got argument %#v", ret.Argument)
	}
}

func TestParseUseStrictDirective(t *testing.T) {
	prog := mustParse(t, "\"use strict\";\nlet x = 1;")
	if !prog.StrictMode {
		t.Errorf("expected StrictMode to be set by the directive prologue")
	}
}

func TestParseStrictModeDoesNotLeakOutOfFunction(t *testing.T) {
	prog := mustParse(t, "function f() { \"use strict\"; }\nwith (x) {}")
	fn := prog.Body[0].(*ast.FunctionLiteral)
	if !fn.Strict {
		t.Fatalf("expected the function body to be marked strict")
	}
	if _, ok := prog.Body[1].(*ast.WithStatement); !ok {
		t.Fatalf("statement is %T, want *ast.WithStatement (should still parse outside the function's strict scope)", prog.Body[1])
	}
}

func TestParseSequenceExpression(t *testing.T) {
	prog := mustParse(t, "a = (1, 2, 3);")
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	assign := stmt.Expression.(*ast.AssignmentExpression)
	seq, ok := assign.Value.(*ast.SequenceExpression)
	if !ok {
		t.Fatalf("value is %T, want *ast.SequenceExpression", assign.Value)
	}
	if len(seq.Expressions) != 3 {
		t.Fatalf("got %d expressions, want 3", len(seq.Expressions))
	}
}

func TestParseErrorRecoveryCollectsMultipleDiagnostics(t *testing.T) {
	p := NewFromSource("let = ; let y = 2;")
	p.ParseProgram()
	if len(p.Errors()) < 2 {
		t.Fatalf("expected multiple parse errors, got %d: %v", len(p.Errors()), p.Errors())
	}
}
