package parser

import (
	"testing"

	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/lexer"
)

// parse builds the AST and fails the test on error.
func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := New(lexer.New(input)).ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram(%q) failed: %v", input, err)
	}
	return program
}

// parseError expects parsing to fail and returns the diagnostic.
func parseError(t *testing.T, input string) *errors.CompilerError {
	t.Helper()
	_, err := New(lexer.New(input)).ParseProgram()
	if err == nil {
		t.Fatalf("ParseProgram(%q) unexpectedly succeeded", input)
	}
	return errors.AsCompilerError(err)
}

func TestVariableDeclarations(t *testing.T) {
	program := parse(t, "let a = 7\nvar b: Int = 2\nvar c: Double?\nlet d: String, e = 1")

	if len(program.Block.Statements) != 4 {
		t.Fatalf("statement count = %d, want 4", len(program.Block.Statements))
	}

	first, ok := program.Block.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.VariableDeclaration", program.Block.Statements[0])
	}
	if !first.IsConstant {
		t.Error("let declaration should be constant")
	}
	decl := first.Declarators.Declarators[0]
	if decl.Pattern.Name.Name != "a" || decl.Pattern.Type != nil || decl.Initializer == nil {
		t.Errorf("unexpected declarator shape: %s", decl)
	}

	second := program.Block.Statements[1].(*ast.VariableDeclaration)
	if second.IsConstant {
		t.Error("var declaration should not be constant")
	}
	if typ := second.Declarators.Declarators[0].Pattern.Type; typ == nil || typ.Name.Name != "Int" || typ.Nullable {
		t.Errorf("unexpected annotation: %v", typ)
	}

	third := program.Block.Statements[2].(*ast.VariableDeclaration)
	if typ := third.Declarators.Declarators[0].Pattern.Type; typ == nil || !typ.Nullable {
		t.Errorf("expected a nullable annotation, got %v", typ)
	}

	fourth := program.Block.Statements[3].(*ast.VariableDeclaration)
	if len(fourth.Declarators.Declarators) != 2 {
		t.Errorf("declarator count = %d, want 2", len(fourth.Declarators.Declarators))
	}
}

func TestFunctionDeclaration(t *testing.T) {
	program := parse(t, "func f(of s: String, _ i: Int, x: Double = 1.5) -> Int? { return nil }")

	fn := program.Block.Statements[0].(*ast.FunctionDeclaration)
	if fn.Name.Name != "f" {
		t.Errorf("name = %q, want f", fn.Name.Name)
	}
	if fn.ReturnType == nil || fn.ReturnType.Name.Name != "Int" || !fn.ReturnType.Nullable {
		t.Errorf("return type = %v, want Int?", fn.ReturnType)
	}

	params := fn.Parameters.Parameters
	if len(params) != 3 {
		t.Fatalf("parameter count = %d, want 3", len(params))
	}
	if params[0].ExternalLabel == nil || params[0].ExternalLabel.Name != "of" ||
		params[0].InternalName.Name != "s" {
		t.Errorf("parameter 0 = %s, want of s: String", params[0])
	}
	if !params[1].Labeless || params[1].InternalName.Name != "i" {
		t.Errorf("parameter 1 = %s, want _ i: Int", params[1])
	}
	if params[2].Labeless || params[2].ExternalLabel != nil || params[2].Initializer == nil {
		t.Errorf("parameter 2 = %s, want single-name with default", params[2])
	}
}

func TestControlFlow(t *testing.T) {
	program := parse(t, `
if a { f() } else if b { g() } else { h() }
while let opt { f() }
for i in 1...10 { f() }
for j in lo..<hi { g() }
`)

	ifStmt := program.Block.Statements[0].(*ast.IfStatement)
	elseIf, ok := ifStmt.Alternate.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternate is %T, want *ast.IfStatement", ifStmt.Alternate)
	}
	if _, ok := elseIf.Alternate.(*ast.Block); !ok {
		t.Fatalf("final alternate is %T, want *ast.Block", elseIf.Alternate)
	}

	whileStmt := program.Block.Statements[1].(*ast.WhileStatement)
	if _, ok := whileStmt.Test.(*ast.OptionalBindingCondition); !ok {
		t.Errorf("while test is %T, want optional binding", whileStmt.Test)
	}

	forStmt := program.Block.Statements[2].(*ast.ForStatement)
	if forStmt.Iterator.Name != "i" || forStmt.Range.HalfOpen {
		t.Errorf("unexpected for statement: %s", forStmt)
	}

	halfOpen := program.Block.Statements[3].(*ast.ForStatement)
	if !halfOpen.Range.HalfOpen {
		t.Error("..< should parse as a half-open range")
	}
}

func TestReturnStatements(t *testing.T) {
	program := parse(t, "func f() -> Int {\nreturn 1\n}\nfunc g() {\nreturn\nf()\n}")

	f := program.Block.Statements[0].(*ast.FunctionDeclaration)
	ret := f.Body.Statements[0].(*ast.ReturnStatement)
	if ret.Value == nil {
		t.Error("expected a return value")
	}

	g := program.Block.Statements[1].(*ast.FunctionDeclaration)
	bare := g.Body.Statements[0].(*ast.ReturnStatement)
	if bare.Value != nil {
		t.Errorf("a value on the next line belongs to the next statement, got %s", bare.Value)
	}
	if len(g.Body.Statements) != 2 {
		t.Errorf("body statement count = %d, want 2", len(g.Body.Statements))
	}
}

func TestStatementSeparation(t *testing.T) {
	// Statements on one line must be rejected.
	err := parseError(t, "let a = 1 let b = 2")
	if err.Kind != errors.KindSyntax {
		t.Errorf("kind = %v, want syntax", err.Kind)
	}

	// A semicolon is not a statement separator.
	err = parseError(t, "let a = 1; let b = 2")
	if err.Kind != errors.KindSyntax {
		t.Errorf("kind = %v, want syntax", err.Kind)
	}

	// Newlines and EOF separate fine.
	parse(t, "let a = 1\nlet b = 2")
}

func TestRejectedStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"compound assignment", "a += 1"},
		{"shift assignment", "a <<= 1"},
		{"increment", "a++"},
		{"bare expression statement", "a + 1"},
		{"bare identifier", "a\nb"},
		{"optional binding with annotation", "if let a: Int { }"},
		{"optional binding with initializer", "if let a = b { }"},
		{"for without range", "for i in xs { }"},
		{"missing block", "if a f()"},
		{"labeless without name", "func f(_: Int) { }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.input)
			if err.Kind != errors.KindSyntax {
				t.Errorf("kind = %v, want syntax", err.Kind)
			}
		})
	}
}

func TestCallStatement(t *testing.T) {
	program := parse(t, `write("a", 1, x)`)

	stmt := program.Block.Statements[0].(*ast.ExpressionStatement)
	call := stmt.Expression.(*ast.FunctionCall)
	if call.Name.Name != "write" {
		t.Errorf("callee = %q, want write", call.Name.Name)
	}
	if len(call.Arguments.Arguments) != 3 {
		t.Errorf("argument count = %d, want 3", len(call.Arguments.Arguments))
	}
}

func TestLabeledArguments(t *testing.T) {
	program := parse(t, `let s = substring(of: str, startingAt: 0, endingBefore: 3)`)

	decl := program.Block.Statements[0].(*ast.VariableDeclaration)
	call := decl.Declarators.Declarators[0].Initializer.(*ast.FunctionCall)
	labels := []string{"of", "startingAt", "endingBefore"}
	for i, arg := range call.Arguments.Arguments {
		if arg.Label == nil || arg.Label.Name != labels[i] {
			t.Errorf("argument %d label = %v, want %s", i, arg.Label, labels[i])
		}
	}
}
