package lexer

import (
	"strings"
	"testing"

	"github.com/tskoda/go-swiftc/pkg/token"
)

func TestNestedBlockComments(t *testing.T) {
	for n := 0; n <= 5; n++ {
		input := strings.Repeat("/*", n) + strings.Repeat("*/", n) + " x"
		tokens, err := New(input).Tokenize()
		if err != nil {
			t.Fatalf("depth %d: unexpected error: %v", n, err)
		}
		if tokens[0].Type != token.IDENT || tokens[0].Value.String != "x" {
			t.Errorf("depth %d: expected IDENT(x), got %v", n, tokens[0])
		}
	}
}

func TestUnterminatedNestedComment(t *testing.T) {
	for n := 1; n <= 5; n++ {
		input := strings.Repeat("/*", n) + strings.Repeat("*/", n-1)
		_, err := New(input).Tokenize()
		if err == nil {
			t.Errorf("depth %d: expected an unterminated-comment error", n)
		}
	}
}

func TestUnmatchedCommentTerminator(t *testing.T) {
	for n := 1; n <= 5; n++ {
		input := strings.Repeat("/*", n-1) + strings.Repeat("*/", n)
		_, err := New(input).Tokenize()
		if err == nil {
			t.Errorf("depth %d: expected an unmatched '*/' error", n)
		}
	}
}

func TestCommentsDoNotProduceTokens(t *testing.T) {
	tokens := tokenize(t, "// full line\na /* inline */ b /* multi\nline */ c")
	got := tokenTypes(tokens)
	expected := []token.Type{token.IDENT, token.IDENT, token.IDENT, token.EOF}
	if len(got) != len(expected) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(expected), got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], expected[i])
		}
	}
}

func TestStarSlashInsideExpression(t *testing.T) {
	// '*' and '/' separated by whitespace are ordinary operators; only the
	// exact adjacency '*/' is an unmatched terminator.
	expectTypes(t, "a * / b", token.IDENT, token.STAR, token.SLASH, token.IDENT)

	if _, err := New("a */ b").Tokenize(); err == nil {
		t.Error("expected an unmatched '*/' error")
	}
}
