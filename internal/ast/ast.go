// Package ast defines the abstract syntax tree produced by the parser.
//
// Every node carries source positions and implements Clone, since a
// function or class expression captures a copy of its body that must
// outlive the parser that produced it (closures retain bodies past the
// lifetime of the Program they were parsed from).
package ast

import "github.com/nimbus-lang/nimbus/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
	End() token.Position
	Clone() Node
	nodeMarker()
}

// Statement is a Node that appears in statement position.
type Statement interface {
	Node
	stmtMarker()
}

// Expression is a Node that appears in expression position.
type Expression interface {
	Node
	exprMarker()
}

// Pattern is an assignment target: an Identifier, or a destructuring
// ObjectPattern/ArrayPattern, possibly wrapped in AssignmentPattern
// (default value) or RestElement.
type Pattern interface {
	Node
	patternMarker()
}

// base is embedded by every concrete node to provide position tracking.
type base struct {
	StartPos token.Position
	EndPos   token.Position
}

func (b base) Pos() token.Position { return b.StartPos }
func (b base) End() token.Position { return b.EndPos }
func (base) nodeMarker()           {}

// SetPos stamps a node's source span. Exported so package parser (which
// cannot name the unexported base field directly) can position nodes
// after building them with an ordinary struct literal.
func (b *base) SetPos(start, end token.Position) {
	b.StartPos = start
	b.EndPos = end
}

// Program is the root of every parsed source file.
type Program struct {
	base
	Body       []Statement
	StrictMode bool
}

func (p *Program) Clone() Node {
	cp := *p
	cp.Body = cloneStmts(p.Body)
	return &cp
}

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func (n *Identifier) exprMarker()    {}
func (n *Identifier) patternMarker() {}
func (n *Identifier) Clone() Node    { cp := *n; return &cp }

// ThisExpression is the `this` keyword.
type ThisExpression struct{ base }

func (n *ThisExpression) exprMarker() {}
func (n *ThisExpression) Clone() Node { cp := *n; return &cp }

// SuperExpression is the `super` keyword, valid only as the object of a
// member/call expression inside a derived class method or constructor.
type SuperExpression struct{ base }

func (n *SuperExpression) exprMarker() {}
func (n *SuperExpression) Clone() Node { cp := *n; return &cp }

// MetaProperty represents `new.target`.
type MetaProperty struct {
	base
	Meta     string // "new"
	Property string // "target"
}

func (n *MetaProperty) exprMarker() {}
func (n *MetaProperty) Clone() Node { cp := *n; return &cp }

func cloneStmts(in []Statement) []Statement {
	if in == nil {
		return nil
	}
	out := make([]Statement, len(in))
	for i, s := range in {
		out[i] = s.Clone().(Statement)
	}
	return out
}

func cloneExprs(in []Expression) []Expression {
	if in == nil {
		return nil
	}
	out := make([]Expression, len(in))
	for i, e := range in {
		if e == nil {
			continue
		}
		out[i] = e.Clone().(Expression)
	}
	return out
}

func clonePatterns(in []Pattern) []Pattern {
	if in == nil {
		return nil
	}
	out := make([]Pattern, len(in))
	for i, p := range in {
		if p == nil {
			continue
		}
		out[i] = p.Clone().(Pattern)
	}
	return out
}

func cloneExpr(e Expression) Expression {
	if e == nil {
		return nil
	}
	return e.Clone().(Expression)
}

func clonePattern(p Pattern) Pattern {
	if p == nil {
		return nil
	}
	return p.Clone().(Pattern)
}

func cloneStmt(s Statement) Statement {
	if s == nil {
		return nil
	}
	return s.Clone().(Statement)
}
