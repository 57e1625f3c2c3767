package lexer

import (
	"testing"

	"github.com/tskoda/go-swiftc/pkg/token"
)

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"7", 7},
		{"123456789", 123456789},
		{"0xFF", 255},
		{"0x10", 16},
		{"0o17", 15},
		{"0b1010", 10},
		{"0xDEAD_BEEF", 0xDEADBEEF},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if tokens[0].Type != token.INT {
				t.Fatalf("type = %v, want INT", tokens[0].Type)
			}
			if tokens[0].Value.Int != tt.expected {
				t.Errorf("value = %d, want %d", tokens[0].Value.Int, tt.expected)
			}
		})
	}
}

func TestFloatLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1.5", 1.5},
		{"0.25", 0.25},
		{"1e3", 1000},
		{"1.5e3", 1500},
		{"1.5e+3", 1500},
		{"2e-2", 0.02},
		{"123.456", 123.456},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := tokenize(t, tt.input)
			if tokens[0].Type != token.FLOAT {
				t.Fatalf("type = %v, want FLOAT", tokens[0].Type)
			}
			if tokens[0].Value.Float != tt.expected {
				t.Errorf("value = %g, want %g", tokens[0].Value.Float, tt.expected)
			}
		})
	}
}

func TestDotAfterIntegerTerminatesIt(t *testing.T) {
	// A dot not followed by a digit ends the number.
	expectTypes(t, "10.field", token.INT, token.DOT, token.IDENT)
	// The range operators win over a fractional part.
	expectTypes(t, "10...20", token.INT, token.RANGE, token.INT)
	expectTypes(t, "1.5..<9", token.FLOAT, token.HALF_OPEN_RANGE, token.INT)
}

func TestNumberErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"leading dot", ".5"},
		{"exponent without digits", "1e"},
		{"signed exponent without digits", "1e+"},
		{"hex prefix without digits", "0x"},
		{"binary prefix without digits", "0b"},
		{"int out of range", "99999999999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.input).Tokenize(); err == nil {
				t.Errorf("expected a lexical error for %q", tt.input)
			}
		})
	}
}
