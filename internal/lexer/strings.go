package lexer

import (
	"strings"

	"github.com/tskoda/go-swiftc/pkg/token"
)

// tokenizeString scans a single-line or triple-quoted multi-line string
// literal.
//
// Interpolation in a single-line string produces a run of tokens instead of
// one: the accumulated segment as STRING, a STRING_HEAD marker, the tokens
// of the embedded expression (the tokenizer re-enters itself and consumes
// them in a parenthesis-balanced walk), then a STRING_SPAN marker, and the
// scan of the literal continues. Once the closing quote is seen the last
// SPAN marker is rewritten to STRING_TAIL, and the final segment follows as
// the last STRING token.
func (l *Lexer) tokenizeString() error {
	if l.peekChar() == '"' && l.peekAt(1) == '"' {
		return l.tokenizeMultilineString()
	}

	start, line, column := l.position, l.line, l.column
	l.readChar() // opening '"'

	var sb strings.Builder
	for l.ch != '"' {
		switch {
		case l.ch == 0 || l.ch == '\n':
			return l.fail("unterminated string literal", l.markerFrom(start, line, column))
		case l.ch < 0x20 || l.ch == 0x7F:
			return l.fail("unprintable ASCII character in string literal", l.markerHere())
		case l.ch == '\\' && l.peekChar() == '(':
			if err := l.tokenizeInterpolation(&sb, &start, &line, &column); err != nil {
				return err
			}
		case l.ch == '\\':
			if err := l.decodeEscape(&sb); err != nil {
				return err
			}
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
	l.readChar() // closing '"'

	// A SPAN emitted by the last interpolation of this literal becomes the
	// TAIL once the closing quote is seen.
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type == token.STRING_SPAN {
		l.tokens[n-1].Type = token.STRING_TAIL
	}

	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}
	l.emit(token.STRING, rng, token.Value{String: sb.String()})
	return nil
}

// tokenizeInterpolation handles one \(expr) occurrence: it flushes the
// accumulated segment, emits the opening marker, re-enters the tokenizer to
// drain the expression, and emits the closing marker.
func (l *Lexer) tokenizeInterpolation(sb *strings.Builder, start, line, column *int) error {
	segRng := token.Range{Start: *start, End: l.position, Line: *line, Column: *column}
	l.emit(token.STRING, segRng, token.Value{String: sb.String()})
	sb.Reset()

	headRng := token.Range{Start: l.position, End: l.position, Line: l.line, Column: l.column}
	l.emit(token.STRING_HEAD, headRng, token.Value{})

	l.readChar() // '\'
	l.readChar() // '('

	// The opening parenthesis counts as depth 1; parentheses inside arrive
	// as ordinary tokens. The matching ')' is consumed directly so that the
	// string text following it is not skimmed as whitespace.
	depth := 1
	for {
		if err := l.skipWhitespace(); err != nil {
			return err
		}
		if l.ch == 0 {
			return l.fail("cannot find ')' to match opening '(' in string interpolation")
		}
		if l.ch == ')' && depth == 1 {
			l.readChar()
			break
		}
		if err := l.tokenizeNext(); err != nil {
			return err
		}
		switch l.tokens[len(l.tokens)-1].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.EOF:
			return l.fail("cannot find ')' to match opening '(' in string interpolation")
		}
	}
	l.pending = token.WhitespaceNone

	spanRng := token.Range{Start: l.position, End: l.position, Line: l.line, Column: l.column}
	l.emit(token.STRING_SPAN, spanRng, token.Value{})

	// The next segment of the literal starts here.
	*start, *line, *column = l.position, l.line, l.column
	return nil
}

// decodeEscape consumes one backslash escape and appends the decoded
// character.
func (l *Lexer) decodeEscape(sb *strings.Builder) error {
	escStart, escLine, escColumn := l.position, l.line, l.column
	l.readChar() // '\'

	switch l.ch {
	case '0':
		sb.WriteByte(0)
	case 'n', '\n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case '\\':
		sb.WriteByte('\\')
	case '\'':
		sb.WriteByte('\'')
	case '"':
		sb.WriteByte('"')
	case 'u':
		l.readChar() // 'u'
		return l.decodeUnicodeEscape(sb, escStart, escLine, escColumn)
	default:
		l.readChar()
		return l.fail("invalid escape sequence in string literal",
			l.markerFrom(escStart, escLine, escColumn))
	}
	l.readChar()
	return nil
}

// decodeUnicodeEscape consumes the {HHHHHHHH} part of a \u escape: one to
// eight hex digits naming a scalar no greater than 0x10FFFF.
func (l *Lexer) decodeUnicodeEscape(sb *strings.Builder, start, line, column int) error {
	if l.ch != '{' {
		return l.fail("expected hexadecimal code in braces after unicode escape",
			l.markerFrom(start, line, column))
	}
	l.readChar() // '{'

	digits := 0
	var code int64
	for isHexDigit(l.ch) {
		code = code*16 + int64(hexValue(l.ch))
		digits++
		if digits > 8 {
			return l.fail("\\u{...} escape sequence expects between 1 and 8 hex digits",
				l.markerFrom(start, line, column))
		}
		l.readChar()
	}
	if digits == 0 {
		return l.fail("\\u{...} escape sequence expects between 1 and 8 hex digits",
			l.markerFrom(start, line, column))
	}
	if l.ch != '}' {
		return l.fail("expected closing brace '}' after unicode escape",
			l.markerFrom(start, line, column))
	}
	if code > 0x10FFFF {
		return l.fail("invalid unicode scalar in \\u{...} escape sequence",
			l.markerFrom(start, line, column))
	}
	l.readChar() // '}'
	sb.WriteRune(rune(code))
	return nil
}

func hexValue(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

// tokenizeMultilineString scans a triple-quoted literal. The content must
// start on a new line, the terminating quote must sit on its own line, and
// the whitespace prefix of the terminator line is stripped from every
// content line.
func (l *Lexer) tokenizeMultilineString() error {
	start, line, column := l.position, l.line, l.column
	l.readChar() // '"'
	l.readChar() // '"'
	l.readChar() // '"'

	var sb strings.Builder
	for {
		if l.ch == 0 {
			return l.fail("unterminated multi-line string literal", l.markerFrom(start, line, column))
		}
		if l.ch == '"' && l.peekChar() == '"' && l.peekAt(1) == '"' {
			l.readChar()
			l.readChar()
			l.readChar()
			break
		}
		if l.ch == '\\' {
			if l.peekChar() == '(' {
				return l.fail("string interpolation is not supported in multi-line string literals",
					l.markerHere())
			}
			if err := l.decodeEscape(&sb); err != nil {
				return err
			}
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	content, err := l.stripMultilineIndent(sb.String(), start, line, column)
	if err != nil {
		return err
	}

	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}
	l.emit(token.STRING, rng, token.Value{String: content})
	return nil
}

// stripMultilineIndent validates the layout of a multi-line literal and
// removes the terminator line's indentation from every content line.
func (l *Lexer) stripMultilineIndent(raw string, start, line, column int) (string, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 || lines[0] != "" {
		return "", l.fail("multi-line string literal content must begin on a new line",
			l.markerFrom(start, line, column))
	}
	lines = lines[1:]

	indent := lines[len(lines)-1]
	for _, ch := range indent {
		if ch != ' ' && ch != '\t' && ch != '\v' {
			return "", l.fail("multi-line string literal closing delimiter must begin on a new line",
				l.markerFrom(start, line, column))
		}
	}
	lines = lines[:len(lines)-1]

	for i, ln := range lines {
		if !strings.HasPrefix(ln, indent) {
			return "", l.fail("insufficient indentation of line in multi-line string literal",
				l.markerFrom(start, line, column))
		}
		lines[i] = ln[len(indent):]
	}

	return strings.Join(lines, "\n"), nil
}
