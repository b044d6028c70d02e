package lexer

import (
	"strconv"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/token"
)

// scanNumber decodes decimal, hex (0x), octal (0o), binary (0b) and legacy
// octal (leading 0) integer/float literals, plus an optional trailing `n`
// BigInt suffix.
func (l *Lexer) scanNumber(start token.Position, nl bool) token.Token {
	s := l.pos
	isFloat := false
	isBig := false

	if l.ch == '0' && (l.peekRune() == 'x' || l.peekRune() == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.advance()
		}
	} else if l.ch == '0' && (l.peekRune() == 'o' || l.peekRune() == 'O') {
		l.advance()
		l.advance()
		for (l.ch >= '0' && l.ch <= '7') || l.ch == '_' {
			l.advance()
		}
	} else if l.ch == '0' && (l.peekRune() == 'b' || l.peekRune() == 'B') {
		l.advance()
		l.advance()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.advance()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.advance()
		}
		if l.ch == '.' {
			isFloat = true
			l.advance()
			for isDigit(l.ch) || l.ch == '_' {
				l.advance()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			isFloat = true
			l.advance()
			if l.ch == '+' || l.ch == '-' {
				l.advance()
			}
			for isDigit(l.ch) {
				l.advance()
			}
		}
	}

	if l.ch == 'n' && !isFloat {
		isBig = true
		l.advance()
	}

	lit := l.input[s:l.pos]

	if isBig {
		digits := strings.ReplaceAll(strings.TrimSuffix(lit, "n"), "_", "")
		tok := l.emit(token.BIGINT, lit, start, nl)
		tok.BigIntText = digits
		return tok
	}

	clean := strings.ReplaceAll(lit, "_", "")
	val, err := parseNumericLiteral(clean)
	if err != nil {
		l.errorf("InvalidNumber", start, "invalid number literal %q: %v", lit, err)
	}

	tok := l.emit(token.NUMBER, lit, start, nl)
	tok.NumberValue = val
	return tok
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// parseNumericLiteral decodes a cleaned (underscore-free) numeric literal
// per ECMAScript NumericLiteral grammar.
func parseNumericLiteral(s string) (float64, error) {
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err := strconv.ParseUint(s[2:], 16, 64)
		return float64(n), err
	case strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O"):
		n, err := strconv.ParseUint(s[2:], 8, 64)
		return float64(n), err
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		n, err := strconv.ParseUint(s[2:], 2, 64)
		return float64(n), err
	default:
		return strconv.ParseFloat(s, 64)
	}
}
