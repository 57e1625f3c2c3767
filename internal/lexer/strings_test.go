package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tskoda/go-swiftc/pkg/token"
)

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `"hello"`, "hello"},
		{"empty", `""`, ""},
		{"newline", `"a\nb"`, "a\nb"},
		{"tab and return", `"a\tb\rc"`, "a\tb\rc"},
		{"backslash", `"a\\b"`, `a\b`},
		{"quotes", `"say \"hi\""`, `say "hi"`},
		{"single quote", `"it\'s"`, "it's"},
		{"null", `"a\0b"`, "a\x00b"},
		{"unicode short", `"\u{48}"`, "H"},
		{"unicode long", `"\u{1F600}"`, "\U0001F600"},
		{"unicode max digits", `"\u{00000048}"`, "H"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if tokens[0].Type != token.STRING {
				t.Fatalf("type = %v, want STRING", tokens[0].Type)
			}
			if tokens[0].Value.String != tt.expected {
				t.Errorf("value = %q, want %q", tokens[0].Value.String, tt.expected)
			}
		})
	}
}

func TestStringErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated", `"abc`},
		{"newline inside", "\"ab\ncd\""},
		{"control character", "\"a\x01b\""},
		{"delete character", "\"a\x7fb\""},
		{"invalid escape", `"\q"`},
		{"unicode missing braces", `"\u48"`},
		{"unicode empty braces", `"\u{}"`},
		{"unicode too many digits", `"\u{123456789}"`},
		{"unicode out of range", `"\u{110000}"`},
		{"unterminated interpolation", `"a\(1 + 2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.input).Tokenize(); err == nil {
				t.Errorf("expected a lexical error for %q", tt.input)
			}
		})
	}
}

func TestInterpolationTokenRun(t *testing.T) {
	tokens := tokenize(t, `"a\(x)b"`)
	got := tokenTypes(tokens)
	expected := []token.Type{
		token.STRING, token.STRING_HEAD, token.IDENT, token.STRING_TAIL,
		token.STRING, token.EOF,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("token run differs (-want +got):\n%s", diff)
	}
	if tokens[0].Value.String != "a" || tokens[4].Value.String != "b" {
		t.Errorf("segments = %q, %q; want a, b", tokens[0].Value.String, tokens[4].Value.String)
	}
}

func TestMultipleInterpolations(t *testing.T) {
	tokens := tokenize(t, `"a\(x)b\(y)c"`)
	got := tokenTypes(tokens)
	expected := []token.Type{
		token.STRING, token.STRING_HEAD, token.IDENT, token.STRING_SPAN,
		token.STRING, token.STRING_HEAD, token.IDENT, token.STRING_TAIL,
		token.STRING, token.EOF,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("token run differs (-want +got):\n%s", diff)
	}
}

func TestInterpolationBalancesParentheses(t *testing.T) {
	tokens := tokenize(t, `"v: \(f((1), 2)) end"`)
	got := tokenTypes(tokens)
	expected := []token.Type{
		token.STRING, token.STRING_HEAD,
		token.IDENT, token.LPAREN, token.LPAREN, token.INT, token.RPAREN,
		token.COMMA, token.INT, token.RPAREN,
		token.STRING_TAIL, token.STRING, token.EOF,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("token run differs (-want +got):\n%s", diff)
	}
	if tokens[len(tokens)-2].Value.String != " end" {
		t.Errorf("trailing segment = %q, want %q", tokens[len(tokens)-2].Value.String, " end")
	}
}

func TestInterpolationOnlyString(t *testing.T) {
	tokens := tokenize(t, `"\(x)"`)
	got := tokenTypes(tokens)
	expected := []token.Type{
		token.STRING, token.STRING_HEAD, token.IDENT, token.STRING_TAIL,
		token.STRING, token.EOF,
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatalf("token run differs (-want +got):\n%s", diff)
	}
	if tokens[0].Value.String != "" || tokens[4].Value.String != "" {
		t.Errorf("expected empty segments, got %q and %q",
			tokens[0].Value.String, tokens[4].Value.String)
	}
}

func TestMultilineString(t *testing.T) {
	input := "\"\"\"\nhello\n  world\n\"\"\""
	tokens := tokenize(t, input)
	if tokens[0].Type != token.STRING {
		t.Fatalf("type = %v, want STRING", tokens[0].Type)
	}
	if tokens[0].Value.String != "hello\n  world" {
		t.Errorf("value = %q, want %q", tokens[0].Value.String, "hello\n  world")
	}
}

func TestMultilineStringIndentStripping(t *testing.T) {
	input := "\"\"\"\n  hello\n    world\n  \"\"\""
	tokens := tokenize(t, input)
	if tokens[0].Value.String != "hello\n  world" {
		t.Errorf("value = %q, want %q", tokens[0].Value.String, "hello\n  world")
	}
}

func TestMultilineStringErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"content on first line", "\"\"\"abc\n\"\"\""},
		{"terminator not on own line", "\"\"\"\nabc\ndef\"\"\""},
		{"insufficient indentation", "\"\"\"\nabc\n  \"\"\""},
		{"unterminated", "\"\"\"\nabc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.input).Tokenize(); err == nil {
				t.Errorf("expected a lexical error for %q", tt.input)
			}
		})
	}
}
