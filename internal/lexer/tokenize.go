package lexer

import "github.com/nimbus-lang/nimbus/internal/token"

// Tokenize scans src eagerly and returns every token up to and including
// EOF, along with any lexical errors collected along the way.
func Tokenize(src string, opts ...Option) ([]token.Token, []*Error) {
	l := New(src, opts...)
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	return toks, l.Errors()
}
