package lexer

import (
	"strconv"
	"strings"

	"github.com/tskoda/go-swiftc/pkg/token"
)

// tokenizeNumber scans a decimal integer or float, or an integer with a
// 0x/0o/0b base prefix.
//
// A '.' immediately followed by a non-digit terminates the integer (so
// "10.field" lexes as INT DOT IDENT), and a '.' opening a range operator
// never becomes a fraction (so "1...3" lexes as INT RANGE INT).
func (l *Lexer) tokenizeNumber() error {
	start, line, column := l.position, l.line, l.column

	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			return l.tokenizeBasedNumber(start, line, column, 16, isHexDigit)
		case 'o', 'O':
			return l.tokenizeBasedNumber(start, line, column, 8, isOctalDigit)
		case 'b', 'B':
			return l.tokenizeBasedNumber(start, line, column, 2, isBinaryDigit)
		}
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	isFloat := false

	// Fractional part: only when the dot is followed by a digit.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent part with an optional sign.
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(1))) {
			isFloat = true
			l.readChar() // 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		} else {
			l.readChar()
			return l.fail("expected a digit in the exponent of a numeric literal",
				l.markerFrom(start, line, column))
		}
	}

	lexeme := l.input[start:l.position]
	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}

	if isFloat {
		value, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return l.fail("invalid floating-point literal '"+lexeme+"'", l.markerFrom(start, line, column))
		}
		l.emit(token.FLOAT, rng, token.Value{Float: value})
		return nil
	}

	value, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return l.fail("integer literal '"+lexeme+"' out of range", l.markerFrom(start, line, column))
	}
	l.emit(token.INT, rng, token.Value{Int: value})
	return nil
}

// tokenizeBasedNumber scans an integer with a 0x/0o/0b prefix.
func (l *Lexer) tokenizeBasedNumber(start, line, column, base int, isValid func(rune) bool) error {
	l.readChar() // '0'
	prefix := l.ch
	l.readChar() // base letter

	if !isValid(l.ch) {
		return l.fail("expected a digit after '0"+string(prefix)+"' in numeric literal",
			l.markerFrom(start, line, column))
	}
	digitsStart := l.position
	for isValid(l.ch) || l.ch == '_' {
		l.readChar()
	}

	lexeme := strings.ReplaceAll(l.input[digitsStart:l.position], "_", "")
	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}

	value, err := strconv.ParseInt(lexeme, base, 64)
	if err != nil {
		return l.fail("integer literal '"+l.input[start:l.position]+"' out of range",
			l.markerFrom(start, line, column))
	}
	l.emit(token.INT, rng, token.Value{Int: value})
	return nil
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctalDigit(ch rune) bool { return ch >= '0' && ch <= '7' }

func isBinaryDigit(ch rune) bool { return ch == '0' || ch == '1' }
