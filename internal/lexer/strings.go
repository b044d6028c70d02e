package lexer

import (
	"strconv"
	"strings"

	"github.com/nimbus-lang/nimbus/internal/token"
)

// scanString decodes a single- or double-quoted string literal, applying
// standard ECMAScript escapes (\n, \t, \xHH, \uHHHH, \u{H...}, line
// continuations).
func (l *Lexer) scanString(start token.Position, nl bool) token.Token {
	quote := l.ch
	rawStart := l.pos
	l.advance()

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.errorf("UnterminatedString", start, "unterminated string literal")
			break
		}
		if l.ch == '\\' {
			l.advance()
			r, ok := l.decodeEscape(start)
			if ok && r >= 0 {
				sb.WriteRune(r)
			}
			continue
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	if l.ch == quote {
		l.advance()
	}

	raw := l.input[rawStart:l.pos]
	tok := l.emit(token.STRING, raw, start, nl)
	tok.Cooked = sb.String()
	return tok
}

// decodeEscape decodes the escape sequence following a consumed backslash.
// Returns (-1, true) for a line-continuation (escaped newline, contributes
// nothing to the cooked value).
func (l *Lexer) decodeEscape(start token.Position) (rune, bool) {
	switch l.ch {
	case 'n':
		l.advance()
		return '\n', true
	case 't':
		l.advance()
		return '\t', true
	case 'r':
		l.advance()
		return '\r', true
	case 'b':
		l.advance()
		return '\b', true
	case 'f':
		l.advance()
		return '\f', true
	case 'v':
		l.advance()
		return '\v', true
	case '0':
		l.advance()
		return 0, true
	case '\n':
		l.advance()
		return -1, true
	case 'x':
		l.advance()
		return l.decodeHexEscape(2, start)
	case 'u':
		l.advance()
		if l.ch == '{' {
			l.advance()
			s := l.pos
			for l.ch != '}' && l.ch != 0 {
				l.advance()
			}
			hex := l.input[s:l.pos]
			if l.ch == '}' {
				l.advance()
			}
			n, err := strconv.ParseInt(hex, 16, 32)
			if err != nil {
				l.errorf("InvalidEscape", start, "invalid unicode escape \\u{%s}", hex)
				return 0, false
			}
			return rune(n), true
		}
		return l.decodeHexEscape(4, start)
	default:
		r := l.ch
		l.advance()
		return r, true
	}
}

func (l *Lexer) decodeHexEscape(digits int, start token.Position) (rune, bool) {
	s := l.pos
	for i := 0; i < digits; i++ {
		if !isHexDigit(l.ch) {
			l.errorf("InvalidEscape", start, "invalid hex escape")
			return 0, false
		}
		l.advance()
	}
	hex := l.input[s:l.pos]
	n, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}
