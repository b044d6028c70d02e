package parser

import (
	"github.com/nimbus-lang/nimbus/internal/ast"
	"github.com/nimbus-lang/nimbus/internal/token"
)

// parseStatement dispatches on the current token to the right statement
// parser. It resynchronizes at the next likely statement boundary only when
// a production reports an error and returns no statement; a statement that
// reports an error but still returns a node is kept, and parsing resumes
// from the current token.
func (p *Parser) parseStatement() ast.Statement {
	before := len(p.errors)
	stmt := p.parseStatementInner()
	if len(p.errors) > before && stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseStatementInner() ast.Statement {
	switch p.cur().Type {
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.VAR, token.LET, token.CONST:
		if p.cur().Type == token.LET && !p.letStartsDeclaration() {
			break // `let` used as a plain identifier
		}
		return p.parseVariableStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.ASYNC:
		if p.peek().Type == token.FUNCTION && !p.peek().PrecededByNewline {
			return p.parseFunctionDeclaration()
		}
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.THROW:
		return p.parseThrowStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.WITH:
		return p.parseWithStatement()
	case token.DEBUGGER:
		return p.parseDebuggerStatement()
	case token.SEMICOLON:
		t := p.advance()
		n := &ast.EmptyStatement{}
		n.SetPos(t.Pos, t.End)
		return n
	case token.IMPORT:
		return p.parseImportDeclaration()
	case token.EXPORT:
		return p.parseExportDeclaration()
	}

	if name, ok := identName(p.cur()); ok && name != "" && p.peek().Type == token.COLON {
		return p.parseLabeledStatement()
	}

	return p.parseExpressionStatement()
}

// letStartsDeclaration disambiguates `let` as a declaration keyword from
// `let` used as an ordinary identifier (legal outside strict mode):
// `let` begins a declaration when followed by an identifier, `[`, or `{`.
func (p *Parser) letStartsDeclaration() bool {
	switch p.peek().Type {
	case token.LBRACKET, token.LBRACE:
		return true
	default:
		_, ok := identName(p.peek())
		return ok
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur().Pos
	p.expect(token.LBRACE)
	block := &ast.BlockStatement{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
	}
	p.expect(token.RBRACE)
	block.SetPos(start, p.prevEnd())
	return block
}

func declKindOf(tt token.Type) ast.DeclKind {
	switch tt {
	case token.LET:
		return ast.DeclLet
	case token.CONST:
		return ast.DeclConst
	default:
		return ast.DeclVar
	}
}

func (p *Parser) parseVariableStatement() ast.Statement {
	decl := p.parseVariableDeclaration()
	p.consumeSemicolon()
	return decl
}

// parseVariableDeclaration parses `var|let|const decl, decl, ...` without
// consuming the trailing semicolon, so for-statement init clauses can
// reuse it.
func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	start := p.cur().Pos
	kind := declKindOf(p.advance().Type)
	decl := &ast.VariableDeclaration{Kind: kind}
	for {
		target := p.parseBindingTarget()
		var init ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			noIn := p.noIn
			p.noIn = false
			init = p.parseAssignmentExpression()
			p.noIn = noIn
		} else if kind == ast.DeclConst {
			p.errorf(target.Pos(), "missing initializer in const declaration")
		}
		decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: target, Init: init})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	decl.SetPos(start, p.prevEnd())
	return decl
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // if
	p.expect(token.LPAREN)
	test := p.parseExpression()
	p.expect(token.RPAREN)
	cons := p.parseStatement()
	var alt ast.Statement
	if p.at(token.ELSE) {
		p.advance()
		alt = p.parseStatement()
	}
	n := &ast.IfStatement{Test: test, Consequent: cons, Alternate: alt}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // while
	p.expect(token.LPAREN)
	test := p.parseExpression()
	p.expect(token.RPAREN)
	savedLoop := p.inLoop
	p.inLoop = true
	body := p.parseStatement()
	p.inLoop = savedLoop
	n := &ast.WhileStatement{Test: test, Body: body}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // do
	savedLoop := p.inLoop
	p.inLoop = true
	body := p.parseStatement()
	p.inLoop = savedLoop
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	test := p.parseExpression()
	p.expect(token.RPAREN)
	p.consumeSemicolon()
	n := &ast.DoWhileStatement{Body: body, Test: test}
	n.SetPos(start, p.prevEnd())
	return n
}

// parseForStatement handles the three `for` forms: classic
// `for (init; test; update)`, `for (left in right)`, and
// `for (left of right)`, disambiguated by scanning the init clause with
// noIn set and then checking which keyword/token follows it.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // for
	isAwait := false
	if p.at(token.AWAIT) {
		isAwait = true
		p.advance()
	}
	p.expect(token.LPAREN)

	savedLoop := p.inLoop
	defer func() { p.inLoop = savedLoop }()
	p.inLoop = true

	if p.at(token.SEMICOLON) {
		return p.finishClassicFor(start, nil)
	}

	if p.atAny(token.VAR, token.LET, token.CONST) {
		declStart := p.cur().Pos
		kind := declKindOf(p.cur().Type)
		p.advance()
		target := p.parseBindingTarget()

		if p.at(token.IN) || p.at(token.OF) {
			isOf := p.at(token.OF)
			p.advance()
			var right ast.Expression
			if isOf {
				right = p.parseAssignmentExpression()
			} else {
				right = p.parseExpression()
			}
			p.expect(token.RPAREN)
			body := p.parseStatement()
			declNode := &ast.VariableDeclaration{Kind: kind, Declarations: []ast.VariableDeclarator{{Target: target}}}
			declNode.SetPos(declStart, target.End())
			if isOf {
				n := &ast.ForOfStatement{Left: declNode, Right: right, Body: body, Await: isAwait}
				n.SetPos(start, p.prevEnd())
				return n
			}
			n := &ast.ForInStatement{Left: declNode, Right: right, Body: body}
			n.SetPos(start, p.prevEnd())
			return n
		}

		decl := &ast.VariableDeclaration{Kind: kind}
		var init ast.Expression
		if p.at(token.ASSIGN) {
			p.advance()
			p.noIn = true
			init = p.parseAssignmentExpression()
			p.noIn = false
		}
		decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: target, Init: init})
		for p.at(token.COMMA) {
			p.advance()
			t2 := p.parseBindingTarget()
			var i2 ast.Expression
			if p.at(token.ASSIGN) {
				p.advance()
				p.noIn = true
				i2 = p.parseAssignmentExpression()
				p.noIn = false
			}
			decl.Declarations = append(decl.Declarations, ast.VariableDeclarator{Target: t2, Init: i2})
		}
		decl.SetPos(declStart, p.prevEnd())
		return p.finishClassicFor(start, decl)
	}

	// Expression init clause: parse with noIn, then check for in/of.
	p.noIn = true
	initExpr := p.parseExpression()
	p.noIn = false

	if p.at(token.IN) || p.at(token.OF) {
		isOf := p.at(token.OF)
		p.advance()
		target := p.toAssignmentTarget(initExpr)
		var right ast.Expression
		if isOf {
			right = p.parseAssignmentExpression()
		} else {
			right = p.parseExpression()
		}
		p.expect(token.RPAREN)
		body := p.parseStatement()
		if isOf {
			n := &ast.ForOfStatement{Left: target, Right: right, Body: body, Await: isAwait}
			n.SetPos(start, p.prevEnd())
			return n
		}
		n := &ast.ForInStatement{Left: target, Right: right, Body: body}
		n.SetPos(start, p.prevEnd())
		return n
	}

	exprStmt := &ast.ExpressionStatement{Expression: initExpr}
	exprStmt.SetPos(initExpr.Pos(), initExpr.End())
	return p.finishClassicFor(start, exprStmt)
}

// finishClassicFor parses the `; test; update) body` tail once the init
// clause (possibly nil) has already been consumed.
func (p *Parser) finishClassicFor(start token.Position, init ast.Statement) ast.Statement {
	p.expect(token.SEMICOLON)
	var test ast.Expression
	if !p.at(token.SEMICOLON) {
		test = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	var update ast.Expression
	if !p.at(token.RPAREN) {
		update = p.parseExpression()
	}
	p.expect(token.RPAREN)
	body := p.parseStatement()
	n := &ast.ForStatement{Init: init, Test: test, Update: update, Body: body}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // return
	if !p.inFunction {
		p.errorf(start, "'return' outside of function")
	}
	var arg ast.Expression
	if !p.at(token.SEMICOLON) && !p.at(token.RBRACE) && !p.at(token.EOF) && !p.cur().PrecededByNewline {
		arg = p.parseExpression()
	}
	p.consumeSemicolon()
	n := &ast.ReturnStatement{Argument: arg}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseBreakStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // break
	label := ""
	if !p.cur().PrecededByNewline {
		if name, ok := identName(p.cur()); ok && !p.at(token.SEMICOLON) {
			label = name
			p.advance()
		}
	}
	p.consumeSemicolon()
	n := &ast.BreakStatement{Label: label}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseContinueStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // continue
	label := ""
	if !p.cur().PrecededByNewline {
		if name, ok := identName(p.cur()); ok && !p.at(token.SEMICOLON) {
			label = name
			p.advance()
		}
	}
	p.consumeSemicolon()
	n := &ast.ContinueStatement{Label: label}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // throw
	if p.cur().PrecededByNewline {
		p.errorf(start, "illegal newline after 'throw'")
	}
	arg := p.parseExpression()
	p.consumeSemicolon()
	n := &ast.ThrowStatement{Argument: arg}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // try
	block := p.parseBlockStatement()
	n := &ast.TryStatement{Block: block}

	if p.at(token.CATCH) {
		p.advance()
		h := &ast.CatchClause{}
		if p.at(token.LPAREN) {
			p.advance()
			h.Param = p.parseBindingTarget()
			p.expect(token.RPAREN)
		}
		h.Body = p.parseBlockStatement()
		n.Handler = h
	}
	if p.at(token.FINALLY) {
		p.advance()
		n.Finally = p.parseBlockStatement()
	}
	if n.Handler == nil && n.Finally == nil {
		p.errorf(start, "missing catch or finally after try")
	}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // switch
	p.expect(token.LPAREN)
	disc := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)

	savedSwitch := p.inSwitch
	p.inSwitch = true

	n := &ast.SwitchStatement{Discriminant: disc}
	seenDefault := false
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		var c ast.SwitchCase
		if p.at(token.CASE) {
			p.advance()
			c.Test = p.parseExpression()
		} else if p.at(token.DEFAULT) {
			if seenDefault {
				p.errorf(p.cur().Pos, "duplicate default clause in switch")
			}
			seenDefault = true
			p.advance()
		} else {
			p.errorf(p.cur().Pos, "expected 'case' or 'default', got %s", p.cur().Type)
			p.advance()
			continue
		}
		p.expect(token.COLON)
		for !p.atAny(token.CASE, token.DEFAULT, token.RBRACE) && !p.at(token.EOF) {
			stmt := p.parseStatement()
			if stmt != nil {
				c.Consequent = append(c.Consequent, stmt)
			}
		}
		n.Cases = append(n.Cases, c)
	}
	p.expect(token.RBRACE)

	p.inSwitch = savedSwitch
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseWithStatement() ast.Statement {
	start := p.cur().Pos
	p.advance() // with
	if p.strict {
		p.errorf(start, "'with' statement is not allowed in strict mode")
	}
	p.expect(token.LPAREN)
	obj := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	n := &ast.WithStatement{Object: obj, Body: body}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseDebuggerStatement() ast.Statement {
	t := p.advance()
	p.consumeSemicolon()
	n := &ast.DebuggerStatement{}
	n.SetPos(t.Pos, p.prevEnd())
	return n
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.cur().Pos
	label := p.parseIdentifier()
	p.expect(token.COLON)
	body := p.parseStatement()
	n := &ast.LabeledStatement{Label: label.Name, Body: body}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur().Pos
	expr := p.parseExpression()
	p.consumeSemicolon()
	n := &ast.ExpressionStatement{Expression: expr}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseImportDeclaration() ast.Statement {
	start := p.cur().Pos
	p.advance() // import

	if p.at(token.STRING) {
		src := p.cur()
		p.advance()
		p.consumeSemicolon()
		n := &ast.ImportDeclaration{Source: src.Cooked}
		n.SetPos(start, p.prevEnd())
		return n
	}

	var specs []ast.ImportSpecifier
	if _, ok := identName(p.cur()); ok {
		def := p.parseIdentifier()
		specs = append(specs, ast.ImportSpecifier{Imported: "default", Local: def.Name})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	if p.at(token.STAR) {
		p.advance()
		p.expectWord("as")
		local := p.parseIdentifier()
		specs = append(specs, ast.ImportSpecifier{Imported: "*", Local: local.Name})
	} else if p.at(token.LBRACE) {
		p.advance()
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			imported := p.parseIdentifierName()
			local := imported.Name
			if p.atWord("as") {
				p.advance()
				local = p.parseIdentifier().Name
			}
			specs = append(specs, ast.ImportSpecifier{Imported: imported.Name, Local: local})
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
	}

	p.expectWord("from")
	src := p.expect(token.STRING)
	p.consumeSemicolon()
	n := &ast.ImportDeclaration{Specifiers: specs, Source: src.Cooked}
	n.SetPos(start, p.prevEnd())
	return n
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	start := p.cur().Pos
	p.advance() // export

	if p.at(token.DEFAULT) {
		p.advance()
		var decl ast.Statement
		switch p.cur().Type {
		case token.FUNCTION:
			decl = p.parseFunctionDeclaration()
		case token.CLASS:
			decl = p.parseClassDeclaration()
		default:
			expr := p.parseAssignmentExpression()
			p.consumeSemicolon()
			es := &ast.ExpressionStatement{Expression: expr}
			es.SetPos(expr.Pos(), expr.End())
			decl = es
		}
		n := &ast.ExportDeclaration{Declaration: decl, Default: true}
		n.SetPos(start, p.prevEnd())
		return n
	}

	if p.at(token.LBRACE) {
		p.advance()
		var specs []ast.ImportSpecifier
		for !p.at(token.RBRACE) && !p.at(token.EOF) {
			local := p.parseIdentifierName()
			exported := local.Name
			if p.atWord("as") {
				p.advance()
				exported = p.parseIdentifier().Name
			}
			specs = append(specs, ast.ImportSpecifier{Imported: local.Name, Local: exported})
			if p.at(token.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBRACE)
		p.consumeSemicolon()
		n := &ast.ExportDeclaration{Specifiers: specs}
		n.SetPos(start, p.prevEnd())
		return n
	}

	decl := p.parseStatementInner()
	n := &ast.ExportDeclaration{Declaration: decl}
	n.SetPos(start, p.prevEnd())
	return n
}
