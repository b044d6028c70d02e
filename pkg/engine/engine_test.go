package engine

import (
	"strings"
	"testing"

	"github.com/nimbus-lang/nimbus/internal/runtime"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{name: "arithmetic", source: "1 + 2 * 3", want: "7"},
		{name: "string concat", source: "'a' + 'b'", want: "ab"},
		{name: "array literal", source: "[1, 2, 3].length", want: "3"},
		{name: "closures", source: "(function(){ let x = 1; return (function(){ return x + 1; })(); })()", want: "2"},
		{name: "template literal", source: "`${1 + 1} apples`", want: "2 apples"},
		{name: "syntax error", source: "let let =", wantErr: true},
		{name: "uncaught throw", source: "throw new TypeError('bad')", wantErr: true},
		{name: "reference error", source: "notDefined", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			v, err := e.Evaluate(tt.source, "<test>")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Evaluate(%q): expected an error, got %v", tt.source, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate(%q): unexpected error: %v", tt.source, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrorKinds(t *testing.T) {
	e := New()

	if _, err := e.Evaluate("(", "<test>"); err == nil {
		t.Fatal("expected a parse error")
	} else if _, ok := err.(*ParseError); !ok {
		t.Errorf("expected *ParseError, got %T", err)
	}

	_, err := e.Evaluate("null.x", "<test>")
	if err == nil {
		t.Fatal("expected an eval error")
	}
	evalErr, ok := err.(*EvalError)
	if !ok {
		t.Fatalf("expected *EvalError, got %T", err)
	}
	if evalErr.Kind != runtime.KindTypeError {
		t.Errorf("Kind = %v, want TypeError", evalErr.Kind)
	}
	if !strings.Contains(evalErr.Message, "TypeError") {
		t.Errorf("Message = %q, want it to mention TypeError", evalErr.Message)
	}
}

func TestDefineAndGetGlobal(t *testing.T) {
	e := New()
	e.DefineGlobal("answer", runtime.Number(42))

	v, ok := e.GetGlobal("answer")
	if !ok {
		t.Fatal("answer should be bound")
	}
	if n, ok := v.(runtime.Number); !ok || n != 42 {
		t.Errorf("GetGlobal(answer) = %v, want 42", v)
	}

	v, err := e.Evaluate("answer * 2", "<test>")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "84" {
		t.Errorf("answer * 2 = %s, want 84", v.String())
	}
}

func TestRegisterNativeFunction(t *testing.T) {
	e := New()
	var received []runtime.Value
	e.RegisterNativeFunction("record", 1, func(ctx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.Exception) {
		received = append(received, args...)
		return runtime.Undefined, nil
	})

	if _, err := e.Evaluate("record(1, 'two')", "<test>"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(received) != 2 {
		t.Fatalf("record called with %d args, want 2", len(received))
	}
}

func TestDynamicFunctionAndEval(t *testing.T) {
	e := New()

	v, err := e.Evaluate("new Function('a', 'b', 'return a + b')(3, 4)", "<test>")
	if err != nil {
		t.Fatalf("dynamic Function: %v", err)
	}
	if v.String() != "7" {
		t.Errorf("dynamic Function result = %s, want 7", v.String())
	}

	v, err = e.Evaluate("eval('1 + 1')", "<test>")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.String() != "2" {
		t.Errorf("eval result = %s, want 2", v.String())
	}
}

func TestEvalSeesCallerScope(t *testing.T) {
	e := New()
	v, err := e.Evaluate("(function(){ let x = 10; return eval('x + 1'); })()", "<test>")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "11" {
		t.Errorf("direct eval result = %s, want 11 (should see caller's local scope)", v.String())
	}
}

func TestFunctionConstructorDoesNotSeeCallerScope(t *testing.T) {
	e := New()
	_, err := e.Evaluate("(function(){ let x = 10; return new Function('return x')(); })()", "<test>")
	if err == nil {
		t.Fatal("expected a ReferenceError: Function-constructed bodies must not see the caller's locals")
	}
}

func TestCallFunction(t *testing.T) {
	e := New()
	v, err := e.Evaluate("(function(a, b){ return a * b; })", "<test>")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	result, err := e.CallFunction(v, runtime.Undefined, []runtime.Value{runtime.Number(6), runtime.Number(7)})
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if result.String() != "42" {
		t.Errorf("CallFunction result = %s, want 42", result.String())
	}
}

func TestRunMicrotasks(t *testing.T) {
	e := New()
	e.DefineGlobal("seen", runtime.Boolean(false))

	if _, err := e.Evaluate("Promise.resolve().then(() => { seen = true; })", "<test>"); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	v, _ := e.GetGlobal("seen")
	if v != runtime.Boolean(false) {
		t.Fatal("the .then callback should not have run before RunMicrotasks")
	}

	e.RunMicrotasks()

	v, _ = e.GetGlobal("seen")
	if v != runtime.Boolean(true) {
		t.Error("RunMicrotasks should have settled the promise and run its callback")
	}
}

func TestWithStrict(t *testing.T) {
	e := New(WithStrict(true))
	_, err := e.Evaluate("undeclared = 1", "<test>")
	if err == nil {
		t.Fatal("strict mode should reject an assignment to an undeclared variable")
	}
}

func TestWithMaxIterations(t *testing.T) {
	e := New(WithMaxIterations(1000))
	_, err := e.Evaluate("let i = 0; while (true) { i++; }", "<test>")
	if err == nil {
		t.Fatal("expected the iteration cap to abort the infinite loop")
	}
}
