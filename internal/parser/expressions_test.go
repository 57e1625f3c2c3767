package parser

import (
	"testing"

	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/lexer"
)

// parseExpr runs the precedence machine over a lone expression by parsing
// it as a variable initializer.
func parseExpr(t *testing.T, input string) ast.Expression {
	t.Helper()
	program := parse(t, "let v = "+input)
	decl := program.Block.Statements[0].(*ast.VariableDeclaration)
	return decl.Declarators.Declarators[0].Initializer
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 + 2 - 3", "((1 + 2) - 3)"},
		{"1 / 2 / 3", "((1 / 2) / 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a + b < c * d", "((a + b) < (c * d))"},
		{"a < b && c > d", "((a < b) && (c > d))"},
		{"a && b || c && d", "((a && b) || (c && d))"},
		{"a ?? b ?? c", "(a ?? (b ?? c))"},
		{"a + b ?? c", "((a + b) ?? c)"},
		{"a == b ?? c", "((a == b) ?? c)"},
		{"!a && !b", "((!a) && (!b))"},
		{"!!a", "(!(!a))"},
		{"a! + b", "((a!) + b)"},
		{"a!", "(a!)"},
		{"!a!", "(!(a!))"},
		{"f() + g(x)", "(f() + g(x))"},
		{"f(x)!", "(f(x)!)"},
		{"a == nil", "(a == nil)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := parseExpr(t, tt.input)
			if got := expr.String(); got != tt.expected {
				t.Errorf("String() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestRelationalIsNonAssociative(t *testing.T) {
	_, err := New(lexer.New("let v = a < b < c")).ParseProgram()
	if err == nil {
		t.Fatal("chained relational operators should be rejected")
	}
}

func TestDoubleUnwrapIsRejected(t *testing.T) {
	_, err := New(lexer.New("let v = a!!")).ParseProgram()
	if err == nil {
		t.Fatal("a!! should be rejected")
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing operand", "let v = 1 +"},
		{"two operands", "let v = a b"},
		{"unbalanced paren", "let v = (1 + 2"},
		{"empty parens", "let v = ()"},
		{"operator only", "let v = *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(lexer.New(tt.input)).ParseProgram(); err == nil {
				t.Errorf("expected a syntax error for %q", tt.input)
			}
		})
	}
}

func TestPostfixBangNeedsAdjacency(t *testing.T) {
	// A '!' hugging its operand unwraps; detached it is the prefix not and
	// cannot follow a complete operand.
	expr := parseExpr(t, "a!")
	unary := expr.(*ast.UnaryExpression)
	if unary.Operator != ast.OperatorUnwrap {
		t.Errorf("operator = %v, want unwrap", unary.Operator)
	}

	if _, err := New(lexer.New("let v = a !")).ParseProgram(); err == nil {
		t.Error("detached '!' after an operand should be rejected")
	}
}

func TestFunctionCallParsing(t *testing.T) {
	expr := parseExpr(t, "f(1, x: 2 + 3, g())")
	call := expr.(*ast.FunctionCall)

	args := call.Arguments.Arguments
	if len(args) != 3 {
		t.Fatalf("argument count = %d, want 3", len(args))
	}
	if args[0].Label != nil {
		t.Errorf("argument 0 should be unlabeled, got %s", args[0].Label)
	}
	if args[1].Label == nil || args[1].Label.Name != "x" {
		t.Errorf("argument 1 label = %v, want x", args[1].Label)
	}
	if _, ok := args[2].Value.(*ast.FunctionCall); !ok {
		t.Errorf("argument 2 is %T, want a nested call", args[2].Value)
	}
}

func TestCallRequiresAdjacentParen(t *testing.T) {
	// With whitespace before '(' the identifier is a plain operand and the
	// parenthesis cannot extend the expression.
	if _, err := New(lexer.New("let v = f (1)")).ParseProgram(); err == nil {
		t.Error("expected a syntax error for a detached argument list")
	}
}

func TestInterpolationParsing(t *testing.T) {
	expr := parseExpr(t, `"a\(x)b\(1 + 2)c"`)
	interp := expr.(*ast.InterpolationExpression)

	if len(interp.Strings) != 3 || len(interp.Expressions) != 2 {
		t.Fatalf("shape = %d strings / %d expressions, want 3/2",
			len(interp.Strings), len(interp.Expressions))
	}
	if interp.Strings[0] != "a" || interp.Strings[1] != "b" || interp.Strings[2] != "c" {
		t.Errorf("segments = %q", interp.Strings)
	}
	if _, ok := interp.Expressions[0].(*ast.Identifier); !ok {
		t.Errorf("expression 0 is %T, want identifier", interp.Expressions[0])
	}
	if _, ok := interp.Expressions[1].(*ast.BinaryExpression); !ok {
		t.Errorf("expression 1 is %T, want binary", interp.Expressions[1])
	}
}

func TestPlainStringIsLiteral(t *testing.T) {
	expr := parseExpr(t, `"plain"`)
	literal, ok := expr.(*ast.LiteralExpression)
	if !ok {
		t.Fatalf("expression is %T, want literal", expr)
	}
	if literal.Value.String != "plain" {
		t.Errorf("value = %q, want plain", literal.Value.String)
	}
}
