package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/lexer"
	"github.com/tskoda/go-swiftc/internal/parser"
)

// builtinsSource declares the signatures of the built-in functions plus the
// helper functions the code generator relies on. It is compiled like user
// source and prepended to the program; the functions whose discriminant
// names a native operation keep dummy bodies (the generator emits
// instructions for them directly), while __stringify__ and __modulo__ are
// real implementations compiled to target code.
const builtinsSource = `func readString() -> String? {return nil}
func readInt() -> Int? {return nil}
func readDouble() -> Double? {return nil}
func write() {}
func Int2Double(_ term: Int) -> Double {return 0.0}
func Double2Int(_ term: Double) -> Int {return 0}
func length(_ s: String) -> Int {return 0}
func substring(of s: String, startingAt i: Int, endingBefore j: Int) -> String? {return nil}
func ord(_ c: String) -> Int {return 0}
func chr(_ i: Int) -> String {return ""}

func __stringify__(_ n: Double?) -> String {
	if(n == nil) { return "nil" }
	if(n == 0) { return "0" }

	var num = n!

	var isNegative = false
	if(num < 0) {
		isNegative = true
		num = 0 - num
	}

	var integerPart = Int2Double(Double2Int(num))
	var fractionalPart = num - integerPart
	var hasFractionalPart = fractionalPart > 0

	var integerResult = ""
	var divisor = 1.0

	while(integerPart / divisor >= 10) {
		divisor = divisor * 10
	}

	while(divisor >= 1) {
		let digit = Double2Int(integerPart / divisor)
		integerResult = integerResult + chr(digit + 48)
		integerPart = Int2Double(__modulo__(integerPart, divisor))
		divisor = divisor / 10
	}

	let precision = 15
	var position = 0
	var fractionalResult = ""

	var floatOffset = length(integerResult) + 1
	var zeroIndex = 0

	while(precision > position && fractionalPart > 0) {
		fractionalPart = fractionalPart * 10
		let digit = Double2Int(fractionalPart)
		fractionalResult = fractionalResult + chr(digit + 48)
		fractionalPart = fractionalPart - Int2Double(digit)
		position = position + 1

		if(digit == 0) {
			if(zeroIndex == 0) {
				zeroIndex = position
			}
		} else {
			zeroIndex = 0
		}
	}

	if(hasFractionalPart) {
		integerResult = integerResult + "." + fractionalResult
	}

	if(zeroIndex > 0) {
		integerResult = substring(of: integerResult, startingAt: 0, endingBefore: floatOffset + zeroIndex - 1)!
	}

	if(isNegative) {
		integerResult = "-" + integerResult
	}

	return integerResult
}

func __stringify__(_ n: Int?) -> String {
	if(n == nil) { return "nil" }

	return __stringify__(Int2Double(n!))
}

func __stringify__(_ b: Bool?) -> String {
	if(b == nil) { return "nil" }

	if(b!) {
		return "true"
	} else {
		return "false"
	}
}

func __stringify__(_ s: String?) -> String {
	if(s == nil) { return "nil" }

	return s!
}

func __modulo__(_ a: Double, _ b: Double) -> Int {
	return Double2Int(a - Int2Double(Double2Int(a / b)) * b)
}
`

// registerBuiltInFunctions parses the embedded prelude, tags each function
// with its discriminant and prepends the declarations to the program block
// so the ordinary passes register and analyse them.
func (a *Analyzer) registerBuiltInFunctions(program *ast.Program) error {
	p := parser.New(lexer.New(builtinsSource))
	prelude, err := p.ParseProgram()
	if err != nil {
		return errors.Newf(errors.KindInternal,
			"failed to parse built-in function declarations: %v", err)
	}

	declarations := make([]ast.Statement, 0, len(prelude.Block.Statements))
	for _, stmt := range prelude.Block.Statements {
		fn, ok := stmt.(*ast.FunctionDeclaration)
		if !ok {
			return errors.New(errors.KindInternal,
				"built-in prelude may only contain function declarations")
		}
		fn.BuiltIn = ast.LookupBuiltIn(fn.Name.Name)
		if fn.BuiltIn == ast.BuiltInNone {
			return errors.Newf(errors.KindInternal,
				"built-in prelude declares unknown function '%s'", fn.Name.Name)
		}
		declarations = append(declarations, fn)
	}

	program.Block.Statements = append(declarations, program.Block.Statements...)
	return nil
}
