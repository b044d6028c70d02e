// Package parser implements a recursive-descent, Pratt-precedence parser
// that turns a nimbus token stream into an *ast.Program.
//
// The parser buffers the full token stream up front and walks it with a
// cursor, rather than re-lexing on demand. Errors are collected rather
// than raised as Go panics/errors so one call to ParseProgram can surface
// every recoverable mistake in a script, not just the first.
package parser

import (
	"fmt"

	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/lexer"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// Error is one recoverable parse failure.
type Error struct {
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// Parser consumes a token stream and produces an AST.
type Parser struct {
	toks []token.Token
	pos  int // index of the current token

	errors []*Error

	// inFunction/inGenerator/inAsync/noIn track grammar context that
	// changes what a few tokens mean: `return` outside any function is an
	// error, `yield`/`await` are only expression-forming inside a
	// generator/async function, and `in` is ambiguous with `for (x in y)`
	// while parsing a classic for-statement's init clause.
	inFunction  bool
	inGenerator bool
	inAsync     bool
	inLoop      bool
	inSwitch    bool
	noIn        bool

	strict bool
}

// New creates a Parser over the tokens produced by l.
func New(l *lexer.Lexer) *Parser {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == token.EOF {
			break
		}
	}
	p := &Parser{toks: toks}
	for _, e := range l.Errors() {
		p.errors = append(p.errors, &Error{Message: e.Message, Pos: e.Pos})
	}
	return p
}

// NewFromSource tokenizes src directly, a convenience for callers that
// don't need their own Lexer (REPL, embedding API).
func NewFromSource(src string) *Parser {
	return New(lexer.New(src))
}

// Errors returns every parse error collected so far.
func (p *Parser) Errors() []*Error { return p.errors }

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &Error{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt token.Type) bool { return p.cur().Type == tt }

func (p *Parser) atAny(tts ...token.Type) bool {
	c := p.cur().Type
	for _, tt := range tts {
		if c == tt {
			return true
		}
	}
	return false
}

// atWord reports whether the current token is the contextual keyword
// word (e.g. "as", "from" in module syntax), which the lexer classifies
// as a plain IDENT since it is not reserved everywhere.
func (p *Parser) atWord(word string) bool {
	return p.cur().Type == token.IDENT && p.cur().Literal == word
}

// expectWord consumes the current token if it is the contextual keyword
// word, reporting an error otherwise.
func (p *Parser) expectWord(word string) {
	if p.atWord(word) {
		p.advance()
		return
	}
	p.errorf(p.cur().Pos, "expected '%s', got %s", word, p.cur().Type)
}

// expect consumes the current token if it has type tt, reporting an error
// and leaving the cursor in place otherwise (the caller's subsequent
// parsing typically resynchronizes at the next statement boundary).
func (p *Parser) expect(tt token.Type) token.Token {
	if p.at(tt) {
		return p.advance()
	}
	p.errorf(p.cur().Pos, "expected %s, got %s", tt, p.cur().Type)
	return p.cur()
}

// consumeSemicolon implements Automatic Semicolon Insertion:
// an explicit `;` is consumed; otherwise ASI fires when the current token
// is `}`, EOF, or preceded by a newline.
func (p *Parser) consumeSemicolon() {
	if p.at(token.SEMICOLON) {
		p.advance()
		return
	}
	if p.at(token.RBRACE) || p.at(token.EOF) || p.cur().PrecededByNewline {
		return
	}
	p.errorf(p.cur().Pos, "expected ';', got %s", p.cur().Type)
}

// identName treats contextual keywords (let, static, async, of, get, set,
// await, yield) as plain identifiers wherever the grammar calls for a
// BindingIdentifier/IdentifierReference outside their special contexts.
func identName(t token.Token) (string, bool) {
	switch t.Type {
	case token.IDENT, token.LET, token.STATIC, token.ASYNC, token.OF, token.GET, token.SET, token.YIELD, token.AWAIT:
		return t.Literal, true
	}
	return "", false
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	t := p.cur()
	name, ok := identName(t)
	if !ok {
		p.errorf(t.Pos, "expected identifier, got %s", t.Type)
		name = ""
	} else {
		p.advance()
	}
	id := &ast.Identifier{Name: name}
	id.SetPos(t.Pos, t.End)
	return id
}

// ParseProgram parses the entire token stream as a Program, collecting
// recoverable errors along the way.
func (p *Parser) ParseProgram() *ast.Program {
	start := p.cur().Pos
	prog := &ast.Program{}
	prog.StrictMode = p.parseDirectivePrologue(&prog.Body)
	p.strict = p.strict || prog.StrictMode
	for !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
	}
	prog.SetPos(start, p.cur().Pos)
	return prog
}

// parseDirectivePrologue consumes leading string-literal-expression
// statements, appending each as a plain ExpressionStatement to body (so
// they still evaluate normally), and reports whether "use strict" was
// among them.
func (p *Parser) parseDirectivePrologue(body *[]ast.Statement) bool {
	strict := false
	for p.at(token.STRING) {
		// Only a bare string-literal statement (immediately followed by `;`,
		// a newline, `}`, or EOF) counts as a directive.
		litTok := p.cur()
		next := p.peek()
		isDirective := next.Type == token.SEMICOLON || next.Type == token.RBRACE ||
			next.Type == token.EOF || next.PrecededByNewline
		if !isDirective {
			break
		}
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		*body = append(*body, stmt)
		if litTok.Cooked == "use strict" {
			strict = true
		}
	}
	return strict
}

// synchronize skips tokens until a likely statement boundary, used after a
// parse error to avoid cascading failures.
func (p *Parser) synchronize() {
	for !p.at(token.EOF) {
		if p.at(token.SEMICOLON) {
			p.advance()
			return
		}
		if p.atAny(token.RBRACE, token.VAR, token.LET, token.CONST, token.FUNCTION, token.CLASS,
			token.IF, token.FOR, token.WHILE, token.RETURN, token.TRY, token.SWITCH) {
			return
		}
		p.advance()
	}
}
