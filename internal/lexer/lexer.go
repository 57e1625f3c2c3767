// Package lexer implements the hand-written tokenizer for IFJ23 source
// code.
//
// The lexer owns a growing cache of every token it has produced; the parser
// may peek arbitrary positive or negative offsets without regenerating
// work. Tokens carry a whitespace profile (space/newline flags on both
// sides) which downstream code uses to enforce rules like "consecutive
// statements must be separated by a newline".
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// Lexer is a lexical scanner over one source buffer. Column positions are
// reported as rune counts from the start of the line, matching the way
// ranges are rendered in diagnostics.
type Lexer struct {
	input        string
	position     int  // byte offset of ch
	readPosition int  // byte offset after ch
	line         int  // 1-based line of ch
	column       int  // 1-based rune column of ch
	ch           rune // current character, 0 at end of input

	tokens  []token.Token // cache of every produced token
	cursor  int           // index of the next token Next will hand out
	atEnd   bool          // EOF token has been produced
	pending token.Whitespace
	err     *errors.CompilerError // sticky first error
}

// New creates a Lexer for the given input. A UTF-8 BOM is stripped if
// present.
func New(input string) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// readChar advances to the next character, handling UTF-8 multi-byte
// sequences.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.position = l.readPosition
	l.readPosition += size
	l.ch = r
	l.column++
}

// peekChar returns the character after the current one without advancing.
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// peekAt returns the n-th character after the current one (peekAt(0) ==
// peekChar).
func (l *Lexer) peekAt(n int) rune {
	pos := l.readPosition
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

// ============================================================================
// Token stream
// ============================================================================

// Next consumes and returns the next token. After the end of input it keeps
// returning the EOF token.
func (l *Lexer) Next() (token.Token, error) {
	tok, err := l.Peek(1)
	if err != nil {
		return tok, err
	}
	if l.cursor < len(l.tokens) {
		l.cursor++
	}
	return tok, nil
}

// Peek returns a token relative to the cursor without consuming anything.
// Peek(1) is the token Next would return, Peek(2) the one after it; Peek(0)
// is the most recently consumed token and negative offsets address earlier
// ones. Peeking before the start or past the end of input yields the first
// or the EOF token respectively.
func (l *Lexer) Peek(offset int) (token.Token, error) {
	// One extra token past the requested one so that the requested token's
	// right-hand whitespace flags are final (they are filled in while
	// scanning the whitespace in front of its successor).
	if err := l.ensure(l.cursor + offset + 1); err != nil {
		return l.markerHere(), err
	}
	idx := l.cursor + offset - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(l.tokens) {
		idx = len(l.tokens) - 1
	}
	return l.tokens[idx], nil
}

// Tokenize drains the whole input and returns the cached token slice,
// ending in an EOF token.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	if err := l.ensure(1 << 30); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

// ensure tokenizes until the cache holds at least n tokens or the EOF token
// has been produced.
func (l *Lexer) ensure(n int) error {
	for len(l.tokens) < n && !l.atEnd {
		if err := l.tokenizeNext(); err != nil {
			return err
		}
	}
	return l.errOrNil()
}

func (l *Lexer) errOrNil() error {
	if l.err != nil {
		return l.err
	}
	return nil
}

// emit appends a token to the cache, attaching the pending left-hand
// whitespace flags and mirroring them onto the previous token's right side.
func (l *Lexer) emit(typ token.Type, rng token.Range, val token.Value) {
	ws := l.pending & token.WhitespaceLeft
	l.pending = token.WhitespaceNone
	if n := len(l.tokens); n > 0 {
		prev := &l.tokens[n-1]
		if ws&token.WhitespaceLeftSpace != 0 {
			prev.Whitespace |= token.WhitespaceRightSpace
		}
		if ws&token.WhitespaceLeftNewline != 0 {
			prev.Whitespace |= token.WhitespaceRightNewline
		}
	}
	l.tokens = append(l.tokens, token.New(typ, ws, rng, val))
}

// fail records the sticky diagnostic and returns it.
func (l *Lexer) fail(message string, markers ...token.Token) error {
	if len(markers) == 0 {
		markers = []token.Token{l.markerHere()}
	}
	l.err = errors.New(errors.KindLexical, message, markers...)
	return l.err
}

// markerHere builds a marker token covering the current character.
func (l *Lexer) markerHere() token.Token {
	end := l.readPosition
	if end > len(l.input) {
		end = len(l.input)
	}
	rng := token.Range{Start: l.position, End: end, Line: l.line, Column: l.column}
	return token.New(token.MARKER, token.WhitespaceNone, rng, token.Value{})
}

// markerFrom builds a marker token covering [start, current).
func (l *Lexer) markerFrom(start, line, column int) token.Token {
	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}
	return token.New(token.MARKER, token.WhitespaceNone, rng, token.Value{})
}

// ============================================================================
// Whitespace and comments
// ============================================================================

// skipWhitespace consumes whitespace and comments in front of the next
// lexeme, accumulating the pending left-hand flags. A single-line comment
// and a block comment spanning more than one line both count as newlines;
// an in-line block comment counts as a space.
func (l *Lexer) skipWhitespace() error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\v':
			l.pending |= token.WhitespaceLeftSpace
			l.readChar()
		case l.ch == '\n' || l.ch == '\r':
			l.pending |= token.WhitespaceLeftNewline
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			l.pending |= token.WhitespaceLeftNewline
		case l.ch == '/' && l.peekChar() == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// skipBlockComment consumes one (possibly nested) block comment.
func (l *Lexer) skipBlockComment() error {
	startLine := l.line
	start, line, column := l.position, l.line, l.column
	l.readChar() // '/'
	l.readChar() // '*'

	depth := 1
	for depth > 0 {
		switch {
		case l.ch == 0:
			return l.fail("unterminated block comment", l.markerFrom(start, line, column))
		case l.ch == '/' && l.peekChar() == '*':
			depth++
			l.readChar()
			l.readChar()
		case l.ch == '*' && l.peekChar() == '/':
			depth--
			l.readChar()
			l.readChar()
		default:
			l.readChar()
		}
	}

	if l.line > startLine {
		l.pending |= token.WhitespaceLeftNewline
	} else {
		l.pending |= token.WhitespaceLeftSpace
	}
	return nil
}

// ============================================================================
// Main scanner
// ============================================================================

// tokenizeNext scans whitespace and then one lexeme, appending at least one
// token to the cache. String literals with interpolation append several.
func (l *Lexer) tokenizeNext() error {
	if err := l.skipWhitespace(); err != nil {
		return err
	}

	if l.ch == 0 {
		rng := token.Range{Start: len(l.input), End: len(l.input), Line: l.line, Column: l.column}
		l.emit(token.EOF, rng, token.Value{})
		l.atEnd = true
		return nil
	}

	// A block comment terminator with no opener reaches the scanner as a
	// stray '*/'.
	if l.ch == '*' && l.peekChar() == '/' {
		start, line, column := l.position, l.line, l.column
		l.readChar()
		l.readChar()
		return l.fail("unmatched '*/' block comment terminator", l.markerFrom(start, line, column))
	}

	switch {
	case isIdentifierStart(l.ch):
		return l.tokenizeIdentifier()
	case isDigit(l.ch):
		return l.tokenizeNumber()
	case l.ch == '"':
		return l.tokenizeString()
	case l.ch == '.' && isDigit(l.peekChar()):
		return l.fail("expected a digit before '.' in numeric literal", l.markerHere())
	default:
		return l.tokenizeOperator()
	}
}

func isIdentifierStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierPart(ch rune) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

// tokenizeIdentifier scans an identifier or keyword.
func (l *Lexer) tokenizeIdentifier() error {
	start, line, column := l.position, l.line, l.column
	for isIdentifierPart(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	rng := token.Range{Start: start, End: l.position, Line: line, Column: column}

	typ := token.LookupIdent(lexeme)
	switch typ {
	case token.BOOL:
		l.emit(typ, rng, token.Value{Bool: lexeme == "true"})
	case token.IDENT:
		l.emit(typ, rng, token.Value{String: lexeme})
	default:
		l.emit(typ, rng, token.Value{})
	}
	return nil
}

// operatorTable maps lexemes to token types, scanned from the longest
// lexeme to the shortest so that '...' wins over '..<' fragments and '.'.
var operatorTable = []struct {
	lexeme string
	typ    token.Type
}{
	{"<<=", token.SHL_ASSIGN},
	{">>=", token.SHR_ASSIGN},
	{"...", token.RANGE},
	{"..<", token.HALF_OPEN_RANGE},
	{"+=", token.PLUS_ASSIGN},
	{"-=", token.MINUS_ASSIGN},
	{"*=", token.MULT_ASSIGN},
	{"/=", token.DIV_ASSIGN},
	{"%=", token.MOD_ASSIGN},
	{"&=", token.BIT_AND_ASSIGN},
	{"|=", token.BIT_OR_ASSIGN},
	{"^=", token.BIT_XOR_ASSIGN},
	{"==", token.EQ},
	{"!=", token.NOT_EQ},
	{"<=", token.LESS_EQ},
	{">=", token.GREATER_EQ},
	{"++", token.INCREMENT},
	{"--", token.DECREMENT},
	{"<<", token.SHL},
	{">>", token.SHR},
	{"&&", token.AND},
	{"||", token.OR},
	{"??", token.COALESCE},
	{"->", token.ARROW},
	{"(", token.LPAREN},
	{")", token.RPAREN},
	{"{", token.LBRACE},
	{"}", token.RBRACE},
	{"[", token.LBRACKET},
	{"]", token.RBRACKET},
	{".", token.DOT},
	{",", token.COMMA},
	{":", token.COLON},
	{";", token.SEMICOLON},
	{"=", token.ASSIGN},
	{"@", token.AT},
	{"#", token.HASH},
	{"&", token.AMPERSAND},
	{"`", token.BACKTICK},
	{"?", token.QUESTION},
	{"!", token.BANG},
	{"/", token.SLASH},
	{"-", token.MINUS},
	{"+", token.PLUS},
	{"*", token.STAR},
	{"%", token.PERCENT},
	{"<", token.LESS},
	{">", token.GREATER},
	{"|", token.PIPE},
	{"^", token.CARET},
	{"~", token.TILDE},
}

// tokenizeOperator scans an operator or punctuator with longest-match.
func (l *Lexer) tokenizeOperator() error {
	start, line, column := l.position, l.line, l.column
	rest := l.input[l.position:]

	for _, entry := range operatorTable {
		if strings.HasPrefix(rest, entry.lexeme) {
			for range entry.lexeme {
				l.readChar()
			}
			rng := token.Range{Start: start, End: l.position, Line: line, Column: column}
			l.emit(entry.typ, rng, token.Value{})
			return nil
		}
	}

	marker := l.markerHere()
	ch := l.ch
	l.readChar()
	return l.fail("unexpected character "+quoteRune(ch), marker)
}

func quoteRune(ch rune) string {
	return "'" + string(ch) + "'"
}
