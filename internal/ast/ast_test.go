package ast

import "testing"

func TestCloneIsIndependent(t *testing.T) {
	orig := &BlockStatement{
		Body: []Statement{
			&ExpressionStatement{Expression: &Identifier{Name: "x"}},
		},
	}

	clone := orig.Clone().(*BlockStatement)
	clone.Body[0].(*ExpressionStatement).Expression.(*Identifier).Name = "y"

	if orig.Body[0].(*ExpressionStatement).Expression.(*Identifier).Name != "x" {
		t.Fatalf("mutating the clone affected the original")
	}
}

func TestMemberExpressionCacheStartsCold(t *testing.T) {
	m := &MemberExpression{
		Object:   &Identifier{Name: "obj"},
		Property: &Identifier{Name: "prop"},
	}
	m.CacheSlots[0] = InlineCacheSlot{Valid: true, Offset: 3}

	clone := m.Clone().(*MemberExpression)
	if clone.CacheSlots[0].Valid {
		t.Fatalf("clone must not inherit inline-cache state")
	}
}

func TestDeclKindString(t *testing.T) {
	cases := map[DeclKind]string{DeclVar: "var", DeclLet: "let", DeclConst: "const"}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("DeclKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
