package parser

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// parseExpression parses a full Expression, including the comma operator.
func (p *Parser) parseExpression() ast.Expression {
	start := p.cur().Pos
	first := p.parseAssignmentExpression()
	if !p.at(token.COMMA) {
		return first
	}
	exprs := []ast.Expression{first}
	for p.at(token.COMMA) {
		p.advance()
		exprs = append(exprs, p.parseAssignmentExpression())
	}
	seq := &ast.SequenceExpression{Expressions: exprs}
	seq.SetPos(start, p.prevEnd())
	return seq
}

func (p *Parser) prevEnd() token.Position {
	if p.pos == 0 {
		return p.cur().Pos
	}
	return p.toks[p.pos-1].End
}

// parseAssignmentExpression is the entry point for AssignmentExpression:
// arrow functions, `yield`, and the `=`-family operators all branch here
// before falling through to the conditional/binary chain (the
// precedence hierarchy starts at assignment).
func (p *Parser) parseAssignmentExpression() ast.Expression {
	if p.at(token.YIELD) && p.inGenerator {
		return p.parseYieldExpression()
	}
	if p.lookaheadArrow() {
		return p.parseArrowFunction()
	}

	start := p.cur().Pos
	left := p.parseConditionalExpression()

	if assignmentOperators[p.cur().Type] {
		op := p.advance()
		target := p.toAssignmentTarget(left)
		value := p.parseAssignmentExpression()
		assign := &ast.AssignmentExpression{Operator: op.Type.String(), Target: target, Value: value}
		assign.SetPos(start, p.prevEnd())
		return assign
	}
	return left
}

func (p *Parser) parseYieldExpression() ast.Expression {
	start := p.cur().Pos
	p.advance() // yield
	delegate := false
	if p.at(token.STAR) {
		delegate = true
		p.advance()
	}
	var arg ast.Expression
	if !p.cur().PrecededByNewline && p.canStartYieldArgument() {
		arg = p.parseAssignmentExpression()
	}
	y := &ast.YieldExpression{Argument: arg, Delegate: delegate}
	y.SetPos(start, p.prevEnd())
	return y
}

// canStartYieldArgument reports whether the current token can begin an
// expression, so bare `yield;`/`yield)` (no operand) parses correctly.
func (p *Parser) canStartYieldArgument() bool {
	switch p.cur().Type {
	case token.SEMICOLON, token.RPAREN, token.RBRACE, token.RBRACKET, token.COMMA, token.COLON, token.EOF:
		return false
	}
	return true
}

// parseConditionalExpression handles `test ? cons : alt`, right-associative.
func (p *Parser) parseConditionalExpression() ast.Expression {
	start := p.cur().Pos
	test := p.parseBinaryExpression(1)
	if !p.at(token.QUESTION) {
		return test
	}
	p.advance()
	noIn := p.noIn
	p.noIn = false
	cons := p.parseAssignmentExpression()
	p.noIn = noIn
	p.expect(token.COLON)
	alt := p.parseAssignmentExpression()
	cond := &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}
	cond.SetPos(start, p.prevEnd())
	return cond
}

// parseBinaryExpression implements precedence-climbing over the binary and
// logical operators, starting at minPrec.
func (p *Parser) parseBinaryExpression(minPrec int) ast.Expression {
	start := p.cur().Pos
	left := p.parseUnaryExpression()

	for {
		prec, ok := binaryPrecedence(p.cur().Type, p.noIn)
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		nextMin := prec + 1
		if isRightAssociative(opTok.Type) {
			nextMin = prec
		}
		right := p.parseBinaryExpression(nextMin)
		if isLogical(opTok.Type) {
			n := &ast.LogicalExpression{Operator: opTok.Type.String(), Left: left, Right: right}
			n.SetPos(start, p.prevEnd())
			left = n
		} else {
			n := &ast.BinaryExpression{Operator: opTok.Type.String(), Left: left, Right: right}
			n.SetPos(start, p.prevEnd())
			left = n
		}
	}
}

var unaryOps = map[token.Type]bool{
	token.PLUS: true, token.MINUS: true, token.NOT: true, token.TILDE: true,
	token.TYPEOF: true, token.VOID: true, token.DELETE: true,
}

// parseUnaryExpression handles prefix `+ - ! ~ typeof void delete` and
// prefix `++`/`--`, then falls through to postfix update expressions.
func (p *Parser) parseUnaryExpression() ast.Expression {
	start := p.cur().Pos
	if unaryOps[p.cur().Type] {
		op := p.advance()
		arg := p.parseUnaryExpression()
		n := &ast.UnaryExpression{Operator: op.Type.String(), Argument: arg}
		n.SetPos(start, p.prevEnd())
		return n
	}
	if p.at(token.PLUSPLUS) || p.at(token.MINUSMINUS) {
		op := p.advance()
		arg := p.parseUnaryExpression()
		n := &ast.UpdateExpression{Operator: op.Type.String(), Argument: arg, Prefix: true}
		n.SetPos(start, p.prevEnd())
		return n
	}
	if p.at(token.AWAIT) && p.inAsync {
		p.advance()
		arg := p.parseUnaryExpression()
		n := &ast.AwaitExpression{Argument: arg}
		n.SetPos(start, p.prevEnd())
		return n
	}
	return p.parsePostfixExpression()
}

// parsePostfixExpression handles trailing `++`/`--`, which bind tighter
// than prefix unary but must not apply across a newline (ASI rule: a
// newline before `++`/`--` ends the statement instead).
func (p *Parser) parsePostfixExpression() ast.Expression {
	start := p.cur().Pos
	expr := p.parseLeftHandSideExpression()
	if (p.at(token.PLUSPLUS) || p.at(token.MINUSMINUS)) && !p.cur().PrecededByNewline {
		op := p.advance()
		n := &ast.UpdateExpression{Operator: op.Type.String(), Argument: expr, Prefix: false}
		n.SetPos(start, p.prevEnd())
		return n
	}
	return expr
}

// parseLeftHandSideExpression handles `new`, calls, member access
// (`.`/`[]`/`?.`), and tagged templates chained onto a primary expression.
func (p *Parser) parseLeftHandSideExpression() ast.Expression {
	start := p.cur().Pos
	var expr ast.Expression
	if p.at(token.NEW) {
		expr = p.parseNewExpression()
	} else {
		expr = p.parsePrimaryExpression()
	}
	return p.parseCallTail(expr, start)
}

// parseNewExpression parses `new callee(args)` or, with no argument list,
// `new callee`. `new.target` is handled here too, since both start with
// the `new` keyword.
func (p *Parser) parseNewExpression() ast.Expression {
	start := p.cur().Pos
	p.advance() // new
	if p.at(token.DOT) {
		p.advance()
		prop := p.parseIdentifier()
		if prop.Name != "target" {
			p.errorf(prop.Pos(), "expected 'target' after 'new.'")
		}
		mp := &ast.MetaProperty{Meta: "new", Property: "target"}
		mp.SetPos(start, p.prevEnd())
		return mp
	}

	var callee ast.Expression
	if p.at(token.NEW) {
		callee = p.parseNewExpression()
	} else {
		callee = p.parsePrimaryExpression()
	}
	// member access binds into the callee before the argument list is
	// considered, e.g. `new a.b.C(x)`.
	callee = p.parseMemberTail(callee, start)

	var args []ast.Expression
	if p.at(token.LPAREN) {
		args = p.parseArguments()
	}
	n := &ast.NewExpression{Callee: callee, Arguments: args}
	n.SetPos(start, p.prevEnd())
	return n
}

// parseMemberTail consumes only member-access (`.`/`[]`) continuations,
// stopping before a call `(...)` or a tagged template — used while building a
// `new` callee, which binds tighter than the call that follows it.
func (p *Parser) parseMemberTail(expr ast.Expression, start token.Position) ast.Expression {
	for {
		switch {
		case p.at(token.DOT):
			p.advance()
			prop := p.parseIdentifierName()
			m := &ast.MemberExpression{Object: expr, Property: prop, Computed: false}
			m.SetPos(start, p.prevEnd())
			expr = m
		case p.at(token.LBRACKET):
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			m := &ast.MemberExpression{Object: expr, Property: idx, Computed: true}
			m.SetPos(start, p.prevEnd())
			expr = m
		default:
			return expr
		}
	}
}

// parseCallTail consumes calls, member access, optional-chaining, and
// tagged templates following a primary/new expression.
func (p *Parser) parseCallTail(expr ast.Expression, start token.Position) ast.Expression {
	for {
		switch {
		case p.at(token.DOT):
			p.advance()
			prop := p.parseIdentifierName()
			m := &ast.MemberExpression{Object: expr, Property: prop, Computed: false}
			m.SetPos(start, p.prevEnd())
			expr = m
		case p.at(token.QUESTIONDOT):
			p.advance()
			switch {
			case p.at(token.LPAREN):
				args := p.parseArguments()
				c := &ast.CallExpression{Callee: expr, Arguments: args, Optional: true}
				c.SetPos(start, p.prevEnd())
				expr = c
			case p.at(token.LBRACKET):
				p.advance()
				idx := p.parseExpression()
				p.expect(token.RBRACKET)
				m := &ast.MemberExpression{Object: expr, Property: idx, Computed: true, Optional: true}
				m.SetPos(start, p.prevEnd())
				expr = m
			default:
				prop := p.parseIdentifierName()
				m := &ast.MemberExpression{Object: expr, Property: prop, Computed: false, Optional: true}
				m.SetPos(start, p.prevEnd())
				expr = m
			}
		case p.at(token.LBRACKET):
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACKET)
			m := &ast.MemberExpression{Object: expr, Property: idx, Computed: true}
			m.SetPos(start, p.prevEnd())
			expr = m
		case p.at(token.LPAREN):
			args := p.parseArguments()
			c := &ast.CallExpression{Callee: expr, Arguments: args}
			c.SetPos(start, p.prevEnd())
			expr = c
		case p.at(token.TEMPLATE):
			tmpl := p.parseTemplateLiteral()
			tt := &ast.TaggedTemplateExpression{Tag: expr, Template: tmpl}
			tt.SetPos(start, p.prevEnd())
			expr = tt
		default:
			return expr
		}
	}
}

// parseIdentifierName parses a property name after `.`/`?.`, where
// reserved words are legal (`obj.class`, `obj.new`).
func (p *Parser) parseIdentifierName() *ast.Identifier {
	t := p.cur()
	name := t.Literal
	if t.Type != token.IDENT && !t.Type.IsKeyword() && t.Type != token.TRUE && t.Type != token.FALSE &&
		t.Type != token.NULL && t.Type != token.UNDEFINED {
		p.errorf(t.Pos, "expected property name, got %s", t.Type)
	}
	p.advance()
	id := &ast.Identifier{Name: name}
	id.SetPos(t.Pos, t.End)
	return id
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		start := p.cur().Pos
		if p.at(token.DOTDOTDOT) {
			p.advance()
			arg := p.parseAssignmentExpression()
			sp := &ast.SpreadElement{Argument: arg}
			sp.SetPos(start, p.prevEnd())
			args = append(args, sp)
		} else {
			args = append(args, p.parseAssignmentExpression())
		}
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

// parsePrimaryExpression parses literals, identifiers, `this`/`super`,
// parenthesized expressions, array/object literals, function/class
// expressions, and templates.
func (p *Parser) parsePrimaryExpression() ast.Expression {
	t := p.cur()
	switch t.Type {
	case token.NUMBER:
		p.advance()
		n := &ast.NumberLiteral{Value: t.NumberValue, Raw: t.Literal}
		n.SetPos(t.Pos, t.End)
		return n
	case token.BIGINT:
		p.advance()
		n := &ast.BigIntLiteral{Digits: t.BigIntText, Raw: t.Literal}
		n.SetPos(t.Pos, t.End)
		return n
	case token.STRING:
		p.advance()
		n := &ast.StringLiteral{Value: t.Cooked, Raw: t.Literal}
		n.SetPos(t.Pos, t.End)
		return n
	case token.TRUE, token.FALSE:
		p.advance()
		n := &ast.BooleanLiteral{Value: t.Type == token.TRUE}
		n.SetPos(t.Pos, t.End)
		return n
	case token.NULL:
		p.advance()
		n := &ast.NullLiteral{}
		n.SetPos(t.Pos, t.End)
		return n
	case token.UNDEFINED:
		p.advance()
		n := &ast.UndefinedLiteral{}
		n.SetPos(t.Pos, t.End)
		return n
	case token.REGEX:
		p.advance()
		n := &ast.RegexLiteral{Pattern: regexPatternOf(t.Literal), Flags: t.RegexFlags}
		n.SetPos(t.Pos, t.End)
		return n
	case token.TEMPLATE:
		return p.parseTemplateLiteral()
	case token.THIS:
		p.advance()
		n := &ast.ThisExpression{}
		n.SetPos(t.Pos, t.End)
		return n
	case token.SUPER:
		p.advance()
		n := &ast.SuperExpression{}
		n.SetPos(t.Pos, t.End)
		return n
	case token.FUNCTION:
		return p.parseFunctionExpression()
	case token.CLASS:
		return p.parseClassExpression()
	case token.ASYNC:
		if p.peek().Type == token.FUNCTION && !p.peek().PrecededByNewline {
			return p.parseFunctionExpression()
		}
		return p.parseIdentifierExpression()
	case token.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RPAREN)
		return expr
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	}

	if _, ok := identName(t); ok {
		return p.parseIdentifierExpression()
	}

	p.errorf(t.Pos, "unexpected token %s", t.Type)
	p.advance()
	bad := &ast.Identifier{Name: "<error>"}
	bad.SetPos(t.Pos, t.End)
	return bad
}

func (p *Parser) parseIdentifierExpression() ast.Expression {
	return p.parseIdentifier()
}

// regexPatternOf strips the delimiting slashes from a REGEX token's raw
// literal text, leaving the pattern body.
func regexPatternOf(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	end := len(raw) - 1
	for end > 0 && raw[end] != '/' {
		end--
	}
	return raw[1:end]
}
