package parser

import "github.com/nimbus-lang/nimbus/internal/token"

// binaryPrecedence maps an infix operator token to its precedence level
// (higher binds tighter), following the standard precedence hierarchy. `in` is
// omitted when the parser is inside a classic for-statement's init clause
// (noIn), where it would otherwise be ambiguous with `for (x in y)`.
func binaryPrecedence(tt token.Type, noIn bool) (prec int, ok bool) {
	switch tt {
	case token.OROR, token.QUESTIONQUESTION:
		return 1, true
	case token.ANDAND:
		return 2, true
	case token.PIPE:
		return 3, true
	case token.CARET:
		return 4, true
	case token.AMP:
		return 5, true
	case token.EQ, token.NOTEQ, token.STRICTEQ, token.STRICTNOTEQ:
		return 6, true
	case token.LT, token.GT, token.LTE, token.GTE, token.INSTANCEOF:
		return 7, true
	case token.IN:
		if noIn {
			return 0, false
		}
		return 7, true
	case token.SHL, token.SHR, token.USHR:
		return 8, true
	case token.PLUS, token.MINUS:
		return 9, true
	case token.STAR, token.SLASH, token.PERCENT:
		return 10, true
	case token.POW:
		return 11, true
	}
	return 0, false
}

// isLogical reports whether tt produces a short-circuiting
// ast.LogicalExpression rather than an eagerly-evaluated
// ast.BinaryExpression.
func isLogical(tt token.Type) bool {
	return tt == token.OROR || tt == token.ANDAND || tt == token.QUESTIONQUESTION
}

// isRightAssociative is true only for `**` among the binary-precedence
// operators (assignment and conditional are handled separately, outside
// this table, since they aren't part of the binary-precedence chain).
func isRightAssociative(tt token.Type) bool { return tt == token.POW }

// assignmentOperators lists every `=`-family token the parser treats as
// producing an AssignmentExpression.
var assignmentOperators = map[token.Type]bool{
	token.ASSIGN: true, token.PLUSASSIGN: true, token.MINUSASSIGN: true,
	token.STARASSIGN: true, token.SLASHASSIGN: true, token.PERCENTASSIGN: true,
	token.POWASSIGN: true, token.SHLASSIGN: true, token.SHRASSIGN: true,
	token.USHRASSIGN: true, token.ANDASSIGN: true, token.ORASSIGN: true,
	token.XORASSIGN: true, token.ANDANDASSIGN: true, token.OROASSIGN: true,
	token.QQASSIGN: true,
}
