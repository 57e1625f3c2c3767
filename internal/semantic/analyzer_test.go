package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/lexer"
	"github.com/tskoda/go-swiftc/internal/parser"
	"github.com/tskoda/go-swiftc/internal/types"
)

// analyze parses and analyses a program, failing the test on any error.
func analyze(t *testing.T, source string) (*Analyzer, *ast.Program) {
	t.Helper()
	program, err := parser.New(lexer.New(source)).ParseProgram()
	require.NoError(t, err, "parse failed")

	analyzer := NewAnalyzer()
	require.NoError(t, analyzer.Analyze(program), "analysis failed")
	return analyzer, program
}

// analyzeError parses and analyses a program expected to fail, returning
// the diagnostic kind.
func analyzeError(t *testing.T, source string) errors.Kind {
	t.Helper()
	program, err := parser.New(lexer.New(source)).ParseProgram()
	require.NoError(t, err, "parse failed")

	err = NewAnalyzer().Analyze(program)
	require.Error(t, err, "analysis unexpectedly succeeded")
	return errors.AsCompilerError(err).Kind
}

// userStatements skips the prelude the analyser prepends to the program.
func userStatements(program *ast.Program) []ast.Statement {
	stmts := program.Block.Statements
	for i, stmt := range stmts {
		if fn, ok := stmt.(*ast.FunctionDeclaration); ok && fn.BuiltIn != ast.BuiltInNone {
			continue
		}
		return stmts[i:]
	}
	return nil
}

func TestGlobalVariableResolution(t *testing.T) {
	analyzer, program := analyze(t, "let a = 7\nlet b: Int = a")

	stmts := userStatements(program)
	aDecl := stmts[0].(*ast.VariableDeclaration).Declarators.Declarators[0]
	bDecl := stmts[1].(*ast.VariableDeclaration).Declarators.Declarators[0]

	require.NotZero(t, aDecl.Pattern.Name.ID)
	require.NotZero(t, bDecl.Pattern.Name.ID)
	assert.Less(t, aDecl.Pattern.Name.ID, bDecl.Pattern.Name.ID)

	// b's initializer references a's declaration.
	ref := bDecl.Initializer.(*ast.Identifier)
	assert.Equal(t, aDecl.Pattern.Name.ID, ref.ID)

	a := analyzer.VariableByID(aDecl.Pattern.Name.ID)
	require.NotNil(t, a)
	assert.Equal(t, types.Int, a.Type)
	assert.True(t, a.IsConstant)
	assert.True(t, a.IsInitialized)
	assert.True(t, analyzer.IsDeclarationGlobal(a.ID))
}

func TestUninitializedVariableUse(t *testing.T) {
	kind := analyzeError(t, "let a: Int\nlet b: Int = a")
	assert.Equal(t, errors.KindUndefinedVariable, kind)
}

func TestOverloadSelectionByReturnType(t *testing.T) {
	_, program := analyze(t, `
func f() -> Int {return 1}
func f() -> Double {return 1.5}
let v: Double = f() + 5
`)

	stmts := userStatements(program)
	v := stmts[2].(*ast.VariableDeclaration).Declarators.Declarators[0]
	sum := v.Initializer.(*ast.BinaryExpression)
	assert.Equal(t, types.Double, sum.Type)

	// The call selected the Double overload.
	call := sum.Left.(*ast.FunctionCall)
	double := stmts[1].(*ast.FunctionDeclaration)
	assert.Equal(t, double.ID, call.Name.ID)

	// The literal 5 was promoted in place, keeping its original for
	// rollback.
	literal := sum.Right.(*ast.LiteralExpression)
	assert.Equal(t, types.Double, literal.Type)
	assert.Equal(t, float64(5), literal.Value.Float)
	assert.Equal(t, types.Int, literal.Original.Type)
	assert.Equal(t, int64(5), literal.Original.Value.Int)
}

func TestAmbiguousOverloadWithoutContext(t *testing.T) {
	kind := analyzeError(t, `
func f() -> Int {return 1}
func f() -> Double {return 1.5}
func g() -> Int {return 1}
func g() -> Double {return 1.5}
let v = f() + g()
`)
	assert.Equal(t, errors.KindSemanticOther, kind)
}

func TestOptionalBindingShadows(t *testing.T) {
	analyzer, program := analyze(t, "var a: Int? = nil\nif let a {\nvar b: Int = a\n}")

	stmts := userStatements(program)
	outer := stmts[0].(*ast.VariableDeclaration).Declarators.Declarators[0]
	ifStmt := stmts[1].(*ast.IfStatement)
	binding := ifStmt.Test.(*ast.OptionalBindingCondition)

	// The binding unwraps the outer variable into a fresh shadow.
	assert.Equal(t, outer.Pattern.Name.ID, binding.FromID)
	require.NotZero(t, binding.Name.ID)
	assert.NotEqual(t, outer.Pattern.Name.ID, binding.Name.ID)

	shadow := analyzer.VariableByID(binding.Name.ID)
	require.NotNil(t, shadow)
	assert.Equal(t, types.Int, shadow.Type)

	// Inside the body, a resolves to the shadow.
	b := ifStmt.Consequent.Statements[0].(*ast.VariableDeclaration).Declarators.Declarators[0]
	ref := b.Initializer.(*ast.Identifier)
	assert.Equal(t, binding.Name.ID, ref.ID)
}

func TestMissingReturnInBranch(t *testing.T) {
	kind := analyzeError(t, "func f() -> Int {\nif true { return 1 }\n}")
	assert.Equal(t, errors.KindInvalidReturn, kind)
}

func TestReturnReachability(t *testing.T) {
	// Every branch of the chain terminates.
	analyze(t, `
func f(_ x: Int) -> Int {
	if x < 0 { return 0 } else if x < 10 { return 1 } else { return 2 }
}
`)

	// A while loop does not count as terminating.
	kind := analyzeError(t, `
func f() -> Int {
	while true { return 1 }
}
`)
	assert.Equal(t, errors.KindInvalidReturn, kind)
}

func TestSemanticErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected errors.Kind
	}{
		{"undefined variable", "let a = b", errors.KindUndefinedVariable},
		{"undefined function", "foo()", errors.KindUndefinedFunction},
		{"redeclaration", "let a = 1\nlet a = 2", errors.KindUndefinedFunction},
		{"variable vs zero-arity function", "func f() -> Int {return 1}\nlet f = 1", errors.KindUndefinedFunction},
		{"function vs global variable", "let f = 1\nfunc f() -> Int {return 1}", errors.KindUndefinedFunction},
		{"exact function redeclaration", "func f(a b: Int) { }\nfunc f(a c: Int) { }", errors.KindUndefinedFunction},
		{"assignment to constant", "let a = 1\na = 2", errors.KindSemanticOther},
		{"assignment to undeclared", "a = 2", errors.KindUndefinedVariable},
		{"assignment type mismatch", "var a = 1\na = \"s\"", errors.KindTypeIncompatibility},
		{"nil needs context", "let a = nil", errors.KindInference},
		{"missing annotation and initializer", "var a", errors.KindInference},
		{"void initializer", "func v() { }\nlet x: Void = v()", errors.KindTypeIncompatibility},
		{"unknown type name", "let a: Strnig = \"x\"", errors.KindSyntax},
		{"arity mismatch", "func f(_ a: Int) { }\nf(1, 2)", errors.KindInvalidCall},
		{"missing argument", "func f(_ a: Int) { }\nf()", errors.KindInvalidCall},
		{"argument type mismatch", "func f(_ a: Int) { }\nf(\"s\")", errors.KindInvalidCall},
		{"missing label", "func f(a b: Int) { }\nf(1)", errors.KindSemanticOther},
		{"wrong label", "func f(a b: Int) { }\nf(c: 1)", errors.KindSemanticOther},
		{"extraneous label", "func f(_ b: Int) { }\nf(a: 1)", errors.KindSemanticOther},
		{"duplicate parameter", "func f(a b: Int, c b: Int) { }", errors.KindSemanticOther},
		{"parameter label equals name", "func f(a a: Int) { }", errors.KindSemanticOther},
		{"missing external label", "func f(a: Int) { }", errors.KindSyntax},
		{"return outside function", "return 1", errors.KindSyntax},
		{"break outside loop", "break", errors.KindSyntax},
		{"value in void return", "func f() {\nreturn 1\n}", errors.KindInvalidReturn},
		{"missing return value", "func f() -> Int {\nreturn\n}", errors.KindInvalidReturn},
		{"wrong return type", "func f() -> Int {\nreturn \"s\"\n}", errors.KindInvalidCall},
		{"non-bool test", "if 1 { }", errors.KindTypeIncompatibility},
		{"binding of non-optional", "let a = 1\nif let a { }", errors.KindSemanticOther},
		{"binding of undefined", "if let q { }", errors.KindUndefinedVariable},
		{"arithmetic on optionals", "var a: Int? = nil\nlet b = a + 1", errors.KindTypeIncompatibility},
		{"mixed arithmetic variables", "let a = 1\nlet b = 1.5\nlet c = a + b", errors.KindTypeIncompatibility},
		{"string minus", `let a = "x" - "y"`, errors.KindTypeIncompatibility},
		{"relational mixed types", `let a = 1 < "s"`, errors.KindTypeIncompatibility},
		{"logical on ints", "let a = 1 && 2", errors.KindTypeIncompatibility},
		{"coalesce non-nullable right", "var a: Int? = nil\nvar b: Int? = nil\nlet c = a ?? b", errors.KindTypeIncompatibility},
		{"unwrap non-optional", "let a = 1\nlet b = a!", errors.KindTypeIncompatibility},
		{"non-int range", "for i in 1...\"s\" { }", errors.KindTypeIncompatibility},
		{"write rejects void", "func v() { }\nwrite(v())", errors.KindInvalidCall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, analyzeError(t, tt.source), "source: %s", tt.source)
		})
	}
}

func TestAcceptedPrograms(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"literal promotion in annotation", "let v: Double = 5"},
		{"void call initializer without annotation", "func v() { }\nlet x = v()"},
		{"nullable default init", "var a: Int?\nlet b = a ?? 0"},
		{"int division", "let a = 7 / 2"},
		{"mixed literal arithmetic", "let a = 1.5 + 1"},
		{"string concatenation", `let a = "x" + "y"`},
		{"equality with nil", "var a: Int? = nil\nif a == nil { }"},
		{"equality of mixed literal", "if 1 == 1.5 { }"},
		{"write variadic", `write("a", 1, 1.5, true)`},
		{"builtin calls", `let s = readString()
let n = readInt()
let d = Int2Double(length(s!))
let c = chr(65)
let o = ord(c)
let sub = substring(of: "hello", startingAt: 0, endingBefore: 2)`},
		{"recursion", "func fact(_ n: Int) -> Int {\nif n < 2 { return 1 }\nreturn n * fact(n - 1)\n}\nwrite(fact(5))"},
		{"loop controls", "for i in 1...10 {\nif i == 5 { break }\nif i == 2 { continue }\nwrite(i)\n}"},
		{"while with binding", "var a: Int? = 1\nwhile let a {\nwrite(a)\n}"},
		{"branch-scoped initialization", "var a: Int\nif true {\na = 1\n} else {\na = 2\n}\na = 3"},
		{"interpolation", `let x = 5
write("value \(x + 1) of \(x)")`},
		{"shadowing in nested block", "let a = 1\nif true {\nlet a = 2.5\nwrite(a)\n}\nwrite(a)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyze(t, tt.source)
		})
	}
}

func TestConstantAssignableWhenUninitialized(t *testing.T) {
	// A constant without an initializer may be assigned exactly once.
	analyze(t, "let a: Int\na = 1")

	kind := analyzeError(t, "let a: Int\na = 1\na = 2")
	assert.Equal(t, errors.KindSemanticOther, kind)
}

func TestBranchInitializationDoesNotLeak(t *testing.T) {
	kind := analyzeError(t, "var a: Int\nif true {\na = 1\n}\nlet b = a")
	assert.Equal(t, errors.KindUndefinedVariable, kind)
}

func TestIdStability(t *testing.T) {
	analyzer, program := analyze(t, `
let a = 1
func f(_ x: Int) -> Int {
	let y = x + a
	return y
}
let r = f(2)
`)

	// Every resolved identifier's id names exactly one declaration.
	var check func(expr ast.Expression)
	check = func(expr ast.Expression) {
		switch e := expr.(type) {
		case *ast.Identifier:
			if e.ID != 0 {
				assert.NotNil(t, analyzer.DeclarationByID(e.ID), "id %d of %s", e.ID, e.Name)
			}
		case *ast.BinaryExpression:
			check(e.Left)
			check(e.Right)
		case *ast.UnaryExpression:
			check(e.Operand)
		case *ast.FunctionCall:
			assert.NotNil(t, analyzer.FunctionByID(e.Name.ID))
			for _, arg := range e.Arguments.Arguments {
				check(arg.Value)
			}
		}
	}
	for _, stmt := range userStatements(program) {
		if decl, ok := stmt.(*ast.VariableDeclaration); ok {
			for _, d := range decl.Declarators.Declarators {
				if d.Initializer != nil {
					check(d.Initializer)
				}
			}
		}
	}

	// Locals of f include the parameter and y.
	stmts := userStatements(program)
	f := stmts[1].(*ast.FunctionDeclaration)
	fn := analyzer.FunctionByID(f.ID)
	require.NotNil(t, fn)
	assert.Len(t, fn.Variables, 2)
	for id := range fn.Variables {
		assert.False(t, analyzer.IsDeclarationGlobal(id))
	}
}

func TestOverloadUniquenessProperty(t *testing.T) {
	analyzer, _ := analyze(t, `
func f() -> Int {return 1}
func f() -> Double {return 1.5}
func f(_ x: Int) -> Int {return x}
func f(a x: Int) -> Int {return x}
`)

	overloads := analyzer.FunctionsByName("f")
	require.Len(t, overloads, 4)

	for i, left := range overloads {
		for _, right := range overloads[i+1:] {
			leftParams := left.Node.Parameters.Parameters
			rightParams := right.Node.Parameters.Parameters

			if len(leftParams) != len(rightParams) || !left.ReturnType.Equal(right.ReturnType) {
				continue
			}
			same := true
			for j := range leftParams {
				if !leftParams[j].Type.Type.Equal(rightParams[j].Type.Type) ||
					externalLabel(leftParams[j]) != externalLabel(rightParams[j]) {
					same = false
					break
				}
			}
			assert.False(t, same, "overloads %d and %d are indistinguishable", left.ID, right.ID)
		}
	}
}

func TestBuiltinsAreRegistered(t *testing.T) {
	analyzer, _ := analyze(t, "write(1)")

	for _, name := range []string{
		"readString", "readInt", "readDouble", "write", "Int2Double",
		"Double2Int", "length", "substring", "ord", "chr",
	} {
		overloads := analyzer.FunctionsByName(name)
		require.NotEmpty(t, overloads, "builtin %s missing", name)
		assert.NotEqual(t, ast.BuiltInNone, overloads[0].BuiltIn())
	}

	assert.Len(t, analyzer.FunctionsByName("__stringify__"), 4)
}
