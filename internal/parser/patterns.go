package parser

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// parseBindingTarget parses one binding target without a default:
// an identifier, or a destructuring array/object pattern.
func (p *Parser) parseBindingTarget() ast.Pattern {
	switch p.cur().Type {
	case token.LBRACKET:
		return p.parseArrayPattern()
	case token.LBRACE:
		return p.parseObjectPattern()
	default:
		return p.parseIdentifier()
	}
}

// parseBindingElement parses a binding target with an optional default
// value, the form used inside parameter lists, array patterns, and
// variable declarators.
func (p *Parser) parseBindingElement() ast.Pattern {
	start := p.cur().Pos
	target := p.parseBindingTarget()
	if p.at(token.ASSIGN) {
		p.advance()
		def := p.parseAssignmentExpression()
		ap := &ast.AssignmentPattern{Target: target, Default: def}
		ap.SetPos(start, p.prevEnd())
		return ap
	}
	return target
}

func (p *Parser) parseArrayPattern() *ast.ArrayPattern {
	start := p.cur().Pos
	p.expect(token.LBRACKET)
	pat := &ast.ArrayPattern{}
	for !p.at(token.RBRACKET) && !p.at(token.EOF) {
		if p.at(token.COMMA) {
			pat.Elements = append(pat.Elements, nil)
			p.advance()
			continue
		}
		if p.at(token.DOTDOTDOT) {
			p.advance()
			pat.Rest = p.parseBindingTarget()
			break
		}
		pat.Elements = append(pat.Elements, p.parseBindingElement())
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)
	pat.SetPos(start, p.prevEnd())
	return pat
}

func (p *Parser) parseObjectPattern() *ast.ObjectPattern {
	start := p.cur().Pos
	p.expect(token.LBRACE)
	pat := &ast.ObjectPattern{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		if p.at(token.DOTDOTDOT) {
			p.advance()
			pat.Rest = p.parseBindingTarget()
			break
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

		var value ast.Pattern
		shorthand := false
		if p.at(token.COLON) {
			p.advance()
			value = p.parseBindingElement()
		} else {
			shorthand = true
			id, ok := key.(*ast.Identifier)
			if !ok {
				p.errorf(p.cur().Pos, "invalid shorthand binding")
			} else {
				ref := &ast.Identifier{Name: id.Name}
				ref.SetPos(id.Pos(), id.End())
				value = ref
			}
			if p.at(token.ASSIGN) {
				p.advance()
				def := p.parseAssignmentExpression()
				ap := &ast.AssignmentPattern{Target: value, Default: def}
				ap.SetPos(key.Pos(), p.prevEnd())
				value = ap
			}
		}
		pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{
			Key: key, Value: value, Computed: computed, Shorthand: shorthand,
		})
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	pat.SetPos(start, p.prevEnd())
	return pat
}

// toAssignmentTarget reinterprets an already-parsed expression as an
// assignment pattern, the way the grammar requires for destructuring
// assignment (`[a, b] = x`, `({a} = x)`): array/object literals parsed as
// expressions are converted in place to array/object patterns, spreads to
// rest elements, and plain identifiers/member expressions pass through
// unchanged since both already implement Pattern.
func (p *Parser) toAssignmentTarget(expr ast.Expression) ast.Pattern {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e
	case *ast.MemberExpression:
		return e
	case *ast.ArrayLiteral:
		pat := &ast.ArrayPattern{}
		pat.SetPos(e.Pos(), e.End())
		for i, el := range e.Elements {
			if el == nil {
				pat.Elements = append(pat.Elements, nil)
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok {
				if i != len(e.Elements)-1 {
					p.errorf(sp.Pos(), "rest element must be last in array pattern")
				}
				pat.Rest = p.toAssignmentTarget(sp.Argument)
				continue
			}
			pat.Elements = append(pat.Elements, p.toAssignmentPatternElement(el))
		}
		return pat
	case *ast.ObjectLiteral:
		pat := &ast.ObjectPattern{}
		pat.SetPos(e.Pos(), e.End())
		for _, prop := range e.Properties {
			if prop.Kind == ast.PropSpread {
				pat.Rest = p.toAssignmentTarget(prop.Value)
				continue
			}
			pat.Properties = append(pat.Properties, ast.ObjectPatternProperty{
				Key:       prop.Key,
				Value:     p.toAssignmentPatternElement(prop.Value),
				Computed:  prop.Computed,
				Shorthand: prop.Shorthand,
			})
		}
		return pat
	case ast.Pattern:
		return e
	default:
		p.errorf(expr.Pos(), "invalid assignment target")
		id := &ast.Identifier{Name: "<error>"}
		id.SetPos(expr.Pos(), expr.End())
		return id
	}
}

// toAssignmentPatternElement handles one array/object pattern element that
// may carry a default value. A default shows up as a plain `=`
// AssignmentExpression at this point (e.g. `[a = 1] = x`, `{a = 1} = x`)
// since it was parsed via parseAssignmentExpression before anyone knew
// this literal would be reinterpreted as a pattern; its Target is already
// a Pattern because parseAssignmentExpression itself calls
// toAssignmentTarget on the left-hand side.
func (p *Parser) toAssignmentPatternElement(expr ast.Expression) ast.Pattern {
	if ae, ok := expr.(*ast.AssignmentExpression); ok && ae.Operator == "=" {
		ap := &ast.AssignmentPattern{Target: ae.Target, Default: ae.Value}
		ap.SetPos(ae.Pos(), ae.End())
		return ap
	}
	return p.toAssignmentTarget(expr)
}
