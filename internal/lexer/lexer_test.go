package lexer

import (
	"testing"

	"github.com/nimbus-lang/nimbus/internal/token"
)

func typesOf(t *testing.T, toks []token.Token) []token.Type {
	t.Helper()
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizePunctuatorsAndKeywords(t *testing.T) {
	toks, errs := Tokenize("let x = 1 + 2;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{token.LET, token.IDENT, token.ASSIGN, token.NUMBER, token.PLUS, token.NUMBER, token.SEMICOLON, token.EOF}
	got := typesOf(t, toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"0xFF", 255},
		{"0b101", 5},
		{"0o17", 15},
		{"1.5e2", 150},
		{".5", 0.5},
	}
	for _, tc := range tests {
		toks, errs := Tokenize(tc.src)
		if len(errs) != 0 {
			t.Fatalf("%s: unexpected errors: %v", tc.src, errs)
		}
		if toks[0].Type != token.NUMBER {
			t.Fatalf("%s: got type %s, want NUMBER", tc.src, toks[0].Type)
		}
		if toks[0].NumberValue != tc.want {
			t.Errorf("%s: got %v, want %v", tc.src, toks[0].NumberValue, tc.want)
		}
	}
}

func TestBigIntLiteral(t *testing.T) {
	toks, _ := Tokenize("9007199254740993n")
	if toks[0].Type != token.BIGINT {
		t.Fatalf("got %s, want BIGINT", toks[0].Type)
	}
	if toks[0].BigIntText != "9007199254740993" {
		t.Errorf("got %q", toks[0].BigIntText)
	}
}

func TestStringEscapes(t *testing.T) {
	toks, errs := Tokenize(`"a\nbA\x42"`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Cooked != "a\nbAB" {
		t.Errorf("got %q", toks[0].Cooked)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, errs := Tokenize("\"abc")
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	if errs[0].Kind != "UnterminatedString" {
		t.Errorf("got kind %s", errs[0].Kind)
	}
}

func TestTemplateLiteralRaw(t *testing.T) {
	toks, errs := Tokenize("`hello ${1 + 1} world`")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Type != token.TEMPLATE {
		t.Fatalf("got %s", toks[0].Type)
	}
	if toks[0].Raw != "`hello ${1 + 1} world`" {
		t.Errorf("got %q", toks[0].Raw)
	}
}

func TestTemplateWithNestedBraces(t *testing.T) {
	toks, errs := Tokenize("`${ {a:1}.a }`")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Type != token.TEMPLATE {
		t.Fatalf("got %s", toks[0].Type)
	}
}

func TestRegexVsDivision(t *testing.T) {
	toks, errs := Tokenize("a / b / /re/g")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.Type{token.IDENT, token.SLASH, token.IDENT, token.SLASH, token.REGEX, token.EOF}
	got := typesOf(t, toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestRegexAfterReturn(t *testing.T) {
	toks, _ := Tokenize("return /x/;")
	if toks[1].Type != token.REGEX {
		t.Fatalf("got %s, want REGEX", toks[1].Type)
	}
}

func TestASINewlineTracking(t *testing.T) {
	toks, _ := Tokenize("a\nb")
	if toks[1].PrecededByNewline != true {
		t.Errorf("expected second token to be marked PrecededByNewline")
	}
}

func TestShebangStripped(t *testing.T) {
	toks, errs := Tokenize("#!/usr/bin/env nimbus\nlet x = 1;")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].Type != token.LET {
		t.Fatalf("got %s, want LET", toks[0].Type)
	}
}

func TestPreserveComments(t *testing.T) {
	toks, _ := Tokenize("// hi\nlet x", WithPreserveComments(true))
	if toks[0].Type != token.COMMENT {
		t.Fatalf("got %s, want COMMENT", toks[0].Type)
	}
}
