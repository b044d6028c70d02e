package parser

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// parseParamList parses a `(param, param = default, ...rest)` list shared
// by function declarations/expressions, arrow functions, and methods.
func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		if p.at(token.DOTDOTDOT) {
			start := p.cur().Pos
			p.advance()
			target := p.parseBindingTarget()
			rest := &ast.RestElement{Argument: target}
			rest.SetPos(start, p.prevEnd())
			params = append(params, rest)
			break // rest parameter must be last
		}
		params = append(params, p.parseBindingElement())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseFunctionBody parses `{ statements }`, tracking the grammar-context
// flags that change how `return`/`yield`/`await`/`break`/`continue` parse
// inside the new function, then restores the caller's context. The
// returned bool is whether this function's body runs in strict mode
// (inherited from an enclosing strict scope, or its own "use strict"
// directive) — scoped to this function only, it is never written back to
// the caller's p.strict, since a nested function's own directive must not
// make its enclosing scope's later statements strict.
func (p *Parser) parseFunctionBody(isGenerator, isAsync bool) (*ast.BlockStatement, bool) {
	savedFn, savedGen, savedAsync, savedLoop, savedSwitch, savedStrict :=
		p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch, p.strict
	p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch = true, isGenerator, isAsync, false, false

	start := p.cur().Pos
	p.expect(token.LBRACE)
	block := &ast.BlockStatement{}
	ownStrict := p.parseDirectivePrologue(&block.Body)
	p.strict = p.strict || ownStrict
	bodyStrict := p.strict
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	p.expect(token.RBRACE)
	block.SetPos(start, p.prevEnd())

	p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch = savedFn, savedGen, savedAsync, savedLoop, savedSwitch
	p.strict = savedStrict
	return block, bodyStrict
}

// parseFunctionDeclaration parses `function name(params) { body }`,
// optionally `async`-prefixed and/or a generator (`function*`).
func (p *Parser) parseFunctionDeclaration() ast.Statement {
	start := p.cur().Pos
	isAsync := false
	if p.at(token.ASYNC) {
		isAsync = true
		p.advance()
	}
	p.expect(token.FUNCTION)
	isGenerator := false
	if p.at(token.STAR) {
		isGenerator = true
		p.advance()
	}
	name := p.parseIdentifier()
	params := p.parseParamList()
	body, strict := p.parseFunctionBody(isGenerator, isAsync)
	fn := &ast.FunctionLiteral{Name: name.Name, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync, Strict: strict}
	fn.SetPos(start, p.prevEnd())
	return fn
}

// parseFunctionExpression parses a function expression, whose name is
// optional (anonymous function expressions are common as callback
// arguments and IIFEs).
func (p *Parser) parseFunctionExpression() ast.Expression {
	start := p.cur().Pos
	isAsync := false
	if p.at(token.ASYNC) {
		isAsync = true
		p.advance()
	}
	p.expect(token.FUNCTION)
	isGenerator := false
	if p.at(token.STAR) {
		isGenerator = true
		p.advance()
	}
	name := ""
	if _, ok := identName(p.cur()); ok && !p.at(token.LPAREN) {
		name = p.parseIdentifier().Name
	}
	params := p.parseParamList()
	body, strict := p.parseFunctionBody(isGenerator, isAsync)
	fn := &ast.FunctionLiteral{Name: name, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync, Strict: strict}
	fn.SetPos(start, p.prevEnd())
	return fn
}

// lookaheadArrow reports whether the tokens starting at the current
// position form an arrow function's parameter list (`ident =>` or
// `(params) =>`, optionally `async`-prefixed), without consuming them.
func (p *Parser) lookaheadArrow() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if p.at(token.ASYNC) && !p.peek().PrecededByNewline {
		switch p.peek().Type {
		case token.IDENT, token.LPAREN:
			p.advance()
		}
	}

	if name, ok := identName(p.cur()); ok && name != "" {
		if p.peek().Type == token.ARROW && !p.peek().PrecededByNewline {
			return true
		}
		return false
	}

	if !p.at(token.LPAREN) {
		return false
	}
	depth := 0
	for !p.at(token.EOF) {
		switch p.cur().Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				p.advance()
				return p.at(token.ARROW) && !p.cur().PrecededByNewline
			}
		}
		p.advance()
	}
	return false
}

// parseArrowFunction parses `ident => body` or `(params) => body`,
// including the concise-expression-body form.
func (p *Parser) parseArrowFunction() ast.Expression {
	start := p.cur().Pos
	isAsync := false
	if p.at(token.ASYNC) {
		isAsync = true
		p.advance()
	}

	var params []ast.Param
	if p.at(token.LPAREN) {
		params = p.parseParamList()
	} else {
		id := p.parseIdentifier()
		params = []ast.Param{id}
	}
	p.expect(token.ARROW)

	savedFn, savedGen, savedAsync, savedLoop, savedSwitch :=
		p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch
	p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch = true, false, isAsync, false, false

	var body ast.Node
	exprBody := false
	strict := p.strict
	if p.at(token.LBRACE) {
		var blockStrict bool
		body, blockStrict = p.parseFunctionBody(false, isAsync)
		strict = blockStrict
	} else {
		exprBody = true
		body = p.parseAssignmentExpression()
	}

	p.inFunction, p.inGenerator, p.inAsync, p.inLoop, p.inSwitch = savedFn, savedGen, savedAsync, savedLoop, savedSwitch

	arrow := &ast.ArrowFunctionExpression{Params: params, Body: body, ExpressionBody: exprBody, IsAsync: isAsync, Strict: strict}
	arrow.SetPos(start, p.prevEnd())
	return arrow
}
