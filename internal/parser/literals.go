package parser

import (
	"strconv"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.cur().Pos
	p.expect(token.LBRACKET)
	var elems []ast.Expression
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		if p.at(token.COMMA) {
			elems = append(elems, nil)
			p.advance()
			continue
		}
		if p.at(token.DOTDOTDOT) {
			sStart := p.cur().Pos
			p.advance()
			arg := p.parseAssignmentExpression()
			sp := &ast.SpreadElement{Argument: arg}
			sp.SetPos(sStart, p.prevEnd())
			elems = append(elems, sp)
		} else {
			elems = append(elems, p.parseAssignmentExpression())
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)
	arr := &ast.ArrayLiteral{Elements: elems}
	arr.SetPos(start, p.prevEnd())
	return arr
}

// peekStartsPropertyEnd reports whether the token after the current one
// closes or separates a property (so `get`/`set`/`async` must be the
// property's actual key rather than an accessor/async marker).
func (p *Parser) peekStartsPropertyEnd() bool {
	switch p.peek().Type {
	case token.COLON, token.LPAREN, token.COMMA, token.RBRACE, token.ASSIGN, token.SEMICOLON:
		return true
	}
	return false
}

func (p *Parser) parsePropertyKey() ast.Expression {
	t := p.cur()
	switch t.Type {
	case token.STRING:
		p.advance()
		n := &ast.StringLiteral{Value: t.Cooked, Raw: t.Literal}
		n.SetPos(t.Pos, t.End)
		return n
	case token.NUMBER:
		p.advance()
		n := &ast.NumberLiteral{Value: t.NumberValue, Raw: t.Literal}
		n.SetPos(t.Pos, t.End)
		return n
	default:
		return p.parseIdentifierName()
	}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.cur().Pos
	p.expect(token.LBRACE)
	var props []ast.ObjectProperty
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		props = append(props, p.parseObjectProperty())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	obj := &ast.ObjectLiteral{Properties: props}
	obj.SetPos(start, p.prevEnd())
	return obj
}

func (p *Parser) parseObjectProperty() ast.ObjectProperty {
	if p.at(token.DOTDOTDOT) {
		p.advance()
		arg := p.parseAssignmentExpression()
		return ast.ObjectProperty{Value: arg, Kind: ast.PropSpread}
	}

	isAsync := false
	isGenerator := false
	kind := ast.PropInit

	if p.at(token.ASYNC) && !p.peekStartsPropertyEnd() && !p.peek().PrecededByNewline {
		isAsync = true
		p.advance()
	}
	if p.at(token.STAR) {
		isGenerator = true
		p.advance()
	}
	if (p.at(token.GET) || p.at(token.SET)) && !p.peekStartsPropertyEnd() {
		if p.at(token.GET) {
			kind = ast.PropGet
		} else {
			kind = ast.PropSet
		}
		p.advance()
	}

	computed := false
	var key ast.Expression
	if p.at(token.LBRACKET) {
		computed = true
		p.advance()
		key = p.parseAssignmentExpression()
		p.expect(token.RBRACKET)
	} else {
		key = p.parsePropertyKey()
	}

	if p.at(token.LPAREN) {
		fn := p.parseMethodBody(isAsync, isGenerator)
		if kind == ast.PropInit {
			kind = ast.PropMethod
		}
		return ast.ObjectProperty{Key: key, Value: fn, Computed: computed, Kind: kind}
	}

	if p.at(token.COLON) {
		p.advance()
		val := p.parseAssignmentExpression()
		return ast.ObjectProperty{Key: key, Value: val, Computed: computed, Kind: ast.PropInit}
	}

	// Shorthand `{ x }` or `{ x = default }` (the latter only legal when
	// this literal is later reinterpreted as a destructuring pattern).
	id, ok := key.(*ast.Identifier)
	if !ok {
		p.errorf(p.cur().Pos, "invalid shorthand property")
		return ast.ObjectProperty{Key: key, Value: key, Computed: computed, Kind: ast.PropInit, Shorthand: true}
	}
	ref := &ast.Identifier{Name: id.Name}
	ref.SetPos(id.Pos(), id.End())
	if p.at(token.ASSIGN) {
		p.advance()
		def := p.parseAssignmentExpression()
		ap := &ast.AssignmentPattern{Target: ref, Default: def}
		ap.SetPos(id.Pos(), p.prevEnd())
		return ast.ObjectProperty{Key: key, Value: ap, Computed: false, Kind: ast.PropInit, Shorthand: true}
	}
	return ast.ObjectProperty{Key: key, Value: ref, Computed: false, Kind: ast.PropInit, Shorthand: true}
}

// parseMethodBody parses the `(params) { body }` tail shared by object
// methods, accessors, and class members.
func (p *Parser) parseMethodBody(isAsync, isGenerator bool) *ast.FunctionLiteral {
	start := p.cur().Pos
	params := p.parseParamList()
	body, strict := p.parseFunctionBody(isGenerator, isAsync)
	fn := &ast.FunctionLiteral{Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync, Strict: strict}
	fn.SetPos(start, p.prevEnd())
	return fn
}

// --- template literals ---

// templateScanner splits the raw body of a backtick literal (braces
// already stripped of the delimiting backticks) into alternating cooked
// text runs and embedded-expression source spans, tracking `${...}`
// nesting the same way the lexer's own scanTemplate does.
type templateScanner struct {
	s string
	i int
}

func (ts *templateScanner) eof() bool { return ts.i >= len(ts.s) }

func (ts *templateScanner) scanSegments() (texts []string, exprs []string) {
	var buf strings.Builder
	for !ts.eof() {
		c := ts.s[ts.i]
		if c == '\\' {
			buf.WriteByte(c)
			ts.i++
			if !ts.eof() {
				buf.WriteByte(ts.s[ts.i])
				ts.i++
			}
			continue
		}
		if c == '$' && ts.i+1 < len(ts.s) && ts.s[ts.i+1] == '{' {
			texts = append(texts, buf.String())
			buf.Reset()
			ts.i += 2
			exprs = append(exprs, ts.scanExpr())
			continue
		}
		buf.WriteByte(c)
		ts.i++
	}
	texts = append(texts, buf.String())
	return
}

func (ts *templateScanner) scanExpr() string {
	start := ts.i
	depth := 1
	for !ts.eof() && depth > 0 {
		c := ts.s[ts.i]
		switch {
		case c == '\\':
			ts.i++
			if !ts.eof() {
				ts.i++
			}
		case c == '`':
			ts.skipNestedTemplate()
		case c == '{':
			depth++
			ts.i++
		case c == '}':
			depth--
			ts.i++
		default:
			ts.i++
		}
	}
	end := ts.i - 1
	if end < start {
		end = start
	}
	return ts.s[start:end]
}

func (ts *templateScanner) skipNestedTemplate() {
	ts.i++ // opening `
	depth := 0
	for !ts.eof() {
		c := ts.s[ts.i]
		if c == '\\' {
			ts.i++
			if !ts.eof() {
				ts.i++
			}
			continue
		}
		if depth == 0 && c == '`' {
			ts.i++
			return
		}
		if depth == 0 && c == '$' && ts.i+1 < len(ts.s) && ts.s[ts.i+1] == '{' {
			depth = 1
			ts.i += 2
			continue
		}
		if depth > 0 && c == '{' {
			depth++
		} else if depth > 0 && c == '}' {
			depth--
		}
		ts.i++
	}
}

// cookTemplateText applies standard escape decoding to one raw template
// text segment, matching the lexer's own string-escape rules.
func cookTemplateText(raw string) string {
	var sb strings.Builder
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		r := runes[i]
		if r != '\\' {
			sb.WriteRune(r)
			i++
			continue
		}
		i++
		if i >= len(runes) {
			break
		}
		switch runes[i] {
		case 'n':
			sb.WriteRune('\n')
			i++
		case 't':
			sb.WriteRune('\t')
			i++
		case 'r':
			sb.WriteRune('\r')
			i++
		case 'b':
			sb.WriteRune('\b')
			i++
		case 'f':
			sb.WriteRune('\f')
			i++
		case 'v':
			sb.WriteRune('\v')
			i++
		case '0':
			sb.WriteRune(0)
			i++
		case '\n':
			i++
		case 'x':
			i++
			if i+2 <= len(runes) {
				if n, err := strconv.ParseInt(string(runes[i:i+2]), 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 2
					continue
				}
			}
		case 'u':
			i++
			if i < len(runes) && runes[i] == '{' {
				i++
				j := i
				for j < len(runes) && runes[j] != '}' {
					j++
				}
				if n, err := strconv.ParseInt(string(runes[i:j]), 16, 32); err == nil {
					sb.WriteRune(rune(n))
				}
				i = j
				if i < len(runes) {
					i++
				}
			} else if i+4 <= len(runes) {
				if n, err := strconv.ParseInt(string(runes[i:i+4]), 16, 32); err == nil {
					sb.WriteRune(rune(n))
					i += 4
				}
			}
		default:
			sb.WriteRune(runes[i])
			i++
		}
	}
	return sb.String()
}

func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	t := p.cur()
	p.advance()
	body := t.Literal
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	ts := &templateScanner{s: body}
	texts, exprSrcs := ts.scanSegments()

	tmpl := &ast.TemplateLiteral{}
	for i, txt := range texts {
		tmpl.Quasis = append(tmpl.Quasis, ast.TemplateElement{
			Cooked: cookTemplateText(txt),
			Raw:    txt,
			Tail:   i == len(texts)-1,
		})
	}
	for _, src := range exprSrcs {
		sub := NewFromSource(src)
		expr := sub.parseExpression()
		p.errors = append(p.errors, sub.Errors()...)
		tmpl.Expressions = append(tmpl.Expressions, expr)
	}
	tmpl.SetPos(t.Pos, t.End)
	return tmpl
}
