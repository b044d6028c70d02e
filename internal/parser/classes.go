package parser

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// parseClassDeclaration parses `class Name [extends Super] { body }` as a
// statement.
func (p *Parser) parseClassDeclaration() ast.Statement {
	cls := p.parseClassTail(true)
	return cls
}

// parseClassExpression parses a class expression, whose name is optional.
func (p *Parser) parseClassExpression() ast.Expression {
	return p.parseClassTail(false)
}

func (p *Parser) parseClassTail(requireName bool) *ast.ClassLiteral {
	start := p.cur().Pos
	p.expect(token.CLASS)
	name := ""
	if _, ok := identName(p.cur()); ok && !p.at(token.EXTENDS) && !p.at(token.LBRACE) {
		name = p.parseIdentifier().Name
	} else if requireName {
		p.errorf(p.cur().Pos, "class declaration requires a name")
	}

	var super ast.Expression
	if p.at(token.EXTENDS) {
		p.advance()
		super = p.parseLeftHandSideExpression()
	}

	savedStrict := p.strict
	p.strict = true // class bodies are always strict

	p.expect(token.LBRACE)
	var members []ast.ClassMember
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.SEMICOLON) {
			p.advance()
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.expect(token.RBRACE)

	p.strict = savedStrict

	cls := &ast.ClassLiteral{Name: name, SuperClass: super, Body: members}
	cls.SetPos(start, p.prevEnd())
	return cls
}

func (p *Parser) parseClassMember() ast.ClassMember {
	static := false
	if p.at(token.STATIC) && !p.peekStartsPropertyEnd() && p.peek().Type != token.ASSIGN {
		static = true
		p.advance()
	}

	isAsync := false
	isGenerator := false
	kind := ast.MethodNormal

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
			kind = ast.MethodGetter
		} else {
			kind = ast.MethodSetter
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
		if !computed && kind == ast.MethodNormal {
			if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" && !static {
				kind = ast.MethodConstructor
			}
		}
		method := p.parseMethodBody(isAsync, isGenerator)
		return ast.ClassMember{Key: key, Computed: computed, Static: static, Kind: kind, Method: method}
	}

	// Field declaration: `key [= value];`
	var value ast.Expression
	if p.at(token.ASSIGN) {
		p.advance()
		value = p.parseAssignmentExpression()
	}
	p.consumeSemicolon()
	return ast.ClassMember{Key: key, Computed: computed, Static: static, IsField: true, Value: value}
}
