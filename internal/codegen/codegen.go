// Package codegen emits IFJcode23 from the analysed AST. The generated
// program is purely stack-based: expressions evaluate onto the data stack,
// statements pop their operands, and every declaration-backed variable is
// addressed by its analyser id.
package codegen

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/semantic"
	"github.com/tskoda/go-swiftc/internal/types"
)

// Generator walks the annotated program and writes the target assembly.
type Generator struct {
	analyzer *semantic.Analyzer
	out      writer
	frame    Frame
}

// New creates a Generator over an analysed program.
func New(analyzer *semantic.Analyzer) *Generator {
	return &Generator{analyzer: analyzer, frame: FrameGlobal}
}

// Generate emits the whole program and returns the assembly text.
func (g *Generator) Generate(program *ast.Program) (string, error) {
	g.out.line(".IFJcode23")
	g.generateHelperVariables()
	g.out.line("JUMP $main")
	g.out.blank()

	g.generateNativeFunctions()
	if err := g.generateFunctions(program); err != nil {
		return "", err
	}

	g.out.line("LABEL $main")
	for _, variable := range g.analyzer.GlobalVariables() {
		g.out.line("DEFVAR %s", varID(FrameGlobal, variable.ID))
	}
	if err := g.generateBlock(program.Block); err != nil {
		return "", err
	}

	return g.out.String(), nil
}

// generateHelperVariables declares the scratch globals the stack helpers
// use.
func (g *Generator) generateHelperVariables() {
	for _, name := range []string{
		"WRITE_TMP", "READINT_TMP", "READSTRING_TMP", "READDOUBLE_TMP",
		"CONCAT_ARG1", "CONCAT_ARG2", "CONCAT_OUTPUT",
	} {
		g.out.line("DEFVAR %s", varName(FrameGlobal, name))
	}
}

// generateFunctions emits every function with a compilable body: user
// functions and the prelude helpers. Functions backed by native
// instruction sequences are skipped here.
func (g *Generator) generateFunctions(program *ast.Program) error {
	g.out.comment("--- functions ---")
	for _, stmt := range program.Block.Statements {
		node, ok := stmt.(*ast.FunctionDeclaration)
		if !ok || !isGenerable(node.BuiltIn) {
			continue
		}

		decl := g.analyzer.FunctionByID(node.ID)
		if decl == nil {
			return errors.Newf(errors.KindInternal, "function '%s' has no declaration", node.Name.Name)
		}

		g.frame = FrameLocal
		g.out.comment("func %s", node.Name.Name)
		g.out.line("LABEL %s", funcLabel(decl.ID))
		g.out.line("PUSHFRAME")

		// Parameters already live in the frame: the caller defined them in
		// TF before the call.
		params := make(map[int]bool, len(node.Parameters.Parameters))
		for _, p := range node.Parameters.Parameters {
			params[p.InternalName.ID] = true
		}
		for _, variable := range sortedVariables(decl.Variables) {
			if !params[variable.ID] {
				g.out.line("DEFVAR %s", varID(FrameLocal, variable.ID))
			}
		}

		if err := g.generateBlock(node.Body); err != nil {
			return err
		}

		g.out.line("POPFRAME")
		g.out.line("RETURN")
		g.frame = FrameGlobal
		g.out.blank()
	}
	return nil
}

// isGenerable reports whether a function's body is compiled rather than
// emitted as a native instruction sequence.
func isGenerable(builtin ast.BuiltInFunction) bool {
	switch builtin {
	case ast.BuiltInNone, ast.BuiltInStringify, ast.BuiltInModulo:
		return true
	}
	return false
}

// sortedVariables returns a function's locals in id order so the emitted
// DEFVAR sequence is deterministic.
func sortedVariables(vars map[int]*semantic.VariableDeclaration) []*semantic.VariableDeclaration {
	out := make([]*semantic.VariableDeclaration, 0, len(vars))
	for id := 1; len(out) < len(vars); id++ {
		if v, ok := vars[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// frameOf picks the frame a declaration id is addressed through.
func (g *Generator) frameOf(id int) Frame {
	if g.analyzer.IsDeclarationGlobal(id) {
		return FrameGlobal
	}
	return g.frame
}

// ============================================================================
// Statements
// ============================================================================

func (g *Generator) generateBlock(block *ast.Block) error {
	for _, stmt := range block.Statements {
		if err := g.generateStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return g.generateVariableDeclaration(s)
	case *ast.AssignmentStatement:
		return g.generateAssignment(s)
	case *ast.IfStatement:
		return g.generateIf(s)
	case *ast.WhileStatement:
		return g.generateWhile(s)
	case *ast.ForStatement:
		return g.generateFor(s)
	case *ast.ReturnStatement:
		return g.generateReturn(s)
	case *ast.BreakStatement:
		g.out.line("JUMP %s", stmtLabel("loop_end", s.LoopID))
		return nil
	case *ast.ContinueStatement:
		g.out.line("JUMP %s", stmtLabel("loop_start", s.LoopID))
		return nil
	case *ast.ExpressionStatement:
		if err := g.generateExpression(s.Expression); err != nil {
			return err
		}
		g.out.line("CLEARS")
		return nil
	case *ast.FunctionDeclaration:
		// Function bodies are emitted ahead of main.
		return nil
	default:
		return errors.Newf(errors.KindInternal, "cannot generate statement %T", stmt)
	}
}

func (g *Generator) generateVariableDeclaration(stmt *ast.VariableDeclaration) error {
	for _, declarator := range stmt.Declarators.Declarators {
		if declarator.Initializer == nil {
			continue
		}
		if err := g.generateExpression(declarator.Initializer); err != nil {
			return err
		}
		id := declarator.Pattern.Name.ID
		g.out.line("POPS %s", varID(g.frameOf(id), id))
	}
	return nil
}

func (g *Generator) generateAssignment(stmt *ast.AssignmentStatement) error {
	id := stmt.Target.ID
	target := varID(g.frameOf(id), id)

	// Literal sources move directly, everything else goes over the stack.
	if literal, ok := stmt.Value.(*ast.LiteralExpression); ok {
		g.out.line("MOVE %s %s", target, literalConst(literal))
		return nil
	}
	if err := g.generateExpression(stmt.Value); err != nil {
		return err
	}
	g.out.line("POPS %s", target)
	return nil
}

// generateCondition leaves the Bool test outcome on the stack. An optional
// binding moves the unwrapped value into its shadow variable and tests the
// source against nil.
func (g *Generator) generateCondition(test ast.Expression) error {
	binding, ok := test.(*ast.OptionalBindingCondition)
	if !ok {
		return g.generateExpression(test)
	}

	shadowID := binding.Name.ID
	fromID := binding.FromID
	g.out.line("MOVE %s %s", varID(g.frameOf(shadowID), shadowID), varID(g.frameOf(fromID), fromID))
	g.out.line("PUSHS %s", varID(g.frameOf(fromID), fromID))
	g.out.line("PUSHS nil@nil")
	g.out.line("EQS")
	g.out.line("NOTS")
	return nil
}

func (g *Generator) generateIf(stmt *ast.IfStatement) error {
	if err := g.generateCondition(stmt.Test); err != nil {
		return err
	}
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFNEQS %s", stmtLabel("if_else", stmt.ID))

	if err := g.generateBlock(stmt.Consequent); err != nil {
		return err
	}
	g.out.line("JUMP %s", stmtLabel("if_end", stmt.ID))

	g.out.line("LABEL %s", stmtLabel("if_else", stmt.ID))
	switch alt := stmt.Alternate.(type) {
	case nil:
	case *ast.Block:
		if err := g.generateBlock(alt); err != nil {
			return err
		}
	case *ast.IfStatement:
		if err := g.generateIf(alt); err != nil {
			return err
		}
	}

	g.out.line("LABEL %s", stmtLabel("if_end", stmt.ID))
	return nil
}

func (g *Generator) generateWhile(stmt *ast.WhileStatement) error {
	g.out.line("LABEL %s", stmtLabel("loop_start", stmt.ID))
	if err := g.generateCondition(stmt.Test); err != nil {
		return err
	}
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFNEQS %s", stmtLabel("loop_end", stmt.ID))

	if err := g.generateBlock(stmt.Body); err != nil {
		return err
	}
	g.out.line("JUMP %s", stmtLabel("loop_start", stmt.ID))
	g.out.line("LABEL %s", stmtLabel("loop_end", stmt.ID))
	return nil
}

func (g *Generator) generateFor(stmt *ast.ForStatement) error {
	iterator := varID(g.frameOf(stmt.IteratorID), stmt.IteratorID)
	bound := varID(g.frameOf(stmt.Range.EndID), stmt.Range.EndID)

	if err := g.generateExpression(stmt.Range.Start); err != nil {
		return err
	}
	g.out.line("POPS %s", iterator)
	if err := g.generateExpression(stmt.Range.End); err != nil {
		return err
	}
	g.out.line("POPS %s", bound)

	// The increment sits at the loop head, so the iterator starts one off.
	g.out.line("SUB %s %s int@1", iterator, iterator)
	g.out.line("LABEL %s", stmtLabel("loop_start", stmt.ID))
	g.out.line("ADD %s %s int@1", iterator, iterator)

	g.out.line("PUSHS %s", bound)
	g.out.line("PUSHS %s", iterator)
	if stmt.Range.HalfOpen {
		// bound <= iterator terminates
		g.out.line("GTS")
		g.out.line("NOTS")
	} else {
		// bound < iterator terminates
		g.out.line("LTS")
	}
	g.out.line("PUSHS bool@true")
	g.out.line("JUMPIFEQS %s", stmtLabel("loop_end", stmt.ID))

	if err := g.generateBlock(stmt.Body); err != nil {
		return err
	}
	g.out.line("JUMP %s", stmtLabel("loop_start", stmt.ID))
	g.out.line("LABEL %s", stmtLabel("loop_end", stmt.ID))
	return nil
}

func (g *Generator) generateReturn(stmt *ast.ReturnStatement) error {
	fn := g.analyzer.FunctionByID(stmt.FunctionID)
	if fn == nil {
		return errors.Newf(errors.KindInternal, "return bound to unknown function id %d", stmt.FunctionID)
	}

	if stmt.Value != nil {
		if err := g.generateExpression(stmt.Value); err != nil {
			return err
		}
		if !fn.ReturnType.IsVoid() {
			g.out.line("POPS %s", retVar(FrameLocal, fn.ID))
		}
	}
	g.out.line("POPFRAME")
	g.out.line("RETURN")
	return nil
}

// ============================================================================
// Expressions
// ============================================================================

func (g *Generator) generateExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		g.out.line("PUSHS %s", literalConst(e))
		return nil

	case *ast.Identifier:
		g.out.line("PUSHS %s", varID(g.frameOf(e.ID), e.ID))
		return nil

	case *ast.FunctionCall:
		return g.generateCall(e)

	case *ast.UnaryExpression:
		if err := g.generateExpression(e.Operand); err != nil {
			return err
		}
		if e.Operator == ast.OperatorNot {
			g.out.line("NOTS")
		}
		// The force unwrap is a no-op at runtime: the wrapped value is the
		// value itself.
		return nil

	case *ast.BinaryExpression:
		if err := g.generateExpression(e.Left); err != nil {
			return err
		}
		if err := g.generateExpression(e.Right); err != nil {
			return err
		}
		return g.generateBinaryOperator(e)

	case *ast.InterpolationExpression:
		return g.generateInterpolation(e)

	default:
		return errors.Newf(errors.KindInternal, "cannot generate expression %T", expr)
	}
}

func literalConst(literal *ast.LiteralExpression) string {
	switch literal.Type.Primitive {
	case types.PrimitiveInt:
		return intConst(literal.Value.Int)
	case types.PrimitiveDouble:
		return floatConst(literal.Value.Float)
	case types.PrimitiveBool:
		return boolConst(literal.Value.Bool)
	case types.PrimitiveString:
		return stringConst(literal.Value.String)
	default:
		return "nil@nil"
	}
}

func (g *Generator) generateBinaryOperator(e *ast.BinaryExpression) error {
	switch e.Operator {
	case ast.OperatorPlus:
		if e.Type.Primitive == types.PrimitiveString {
			g.concatTopOfStack()
			return nil
		}
		g.out.line("ADDS")
	case ast.OperatorMinus:
		g.out.line("SUBS")
	case ast.OperatorMul:
		g.out.line("MULS")
	case ast.OperatorDiv:
		if e.Type.Primitive == types.PrimitiveInt {
			g.out.line("IDIVS")
		} else {
			g.out.line("DIVS")
		}
	case ast.OperatorEqual:
		g.out.line("EQS")
	case ast.OperatorNotEqual:
		g.out.line("EQS")
		g.out.line("NOTS")
	case ast.OperatorLess:
		g.out.line("LTS")
	case ast.OperatorGreater:
		g.out.line("GTS")
	case ast.OperatorLessEqual:
		g.out.line("GTS")
		g.out.line("NOTS")
	case ast.OperatorGreaterEqual:
		g.out.line("LTS")
		g.out.line("NOTS")
	case ast.OperatorAnd:
		g.out.line("ANDS")
	case ast.OperatorOr:
		g.out.line("ORS")
	case ast.OperatorNilCoalescing:
		g.out.line("CREATEFRAME")
		g.out.line("DEFVAR %s", varName(FrameTemporary, "ARG_RIGHT_COA"))
		g.out.line("POPS %s", varName(FrameTemporary, "ARG_RIGHT_COA"))
		g.out.line("DEFVAR %s", varName(FrameTemporary, "ARG_LEFT_COA"))
		g.out.line("POPS %s", varName(FrameTemporary, "ARG_LEFT_COA"))
		g.out.line("CALL $coalescing")
		g.out.line("PUSHS %s", varName(FrameTemporary, "RETVAL_COA"))
	default:
		return errors.Newf(errors.KindInternal, "cannot generate binary operator '%s'", e.Operator)
	}
	return nil
}

// concatTopOfStack concatenates the two topmost stack strings through the
// global scratch variables.
func (g *Generator) concatTopOfStack() {
	g.out.line("POPS %s", varName(FrameGlobal, "CONCAT_ARG2"))
	g.out.line("POPS %s", varName(FrameGlobal, "CONCAT_ARG1"))
	g.out.line("CONCAT %s %s %s",
		varName(FrameGlobal, "CONCAT_OUTPUT"),
		varName(FrameGlobal, "CONCAT_ARG1"),
		varName(FrameGlobal, "CONCAT_ARG2"))
	g.out.line("PUSHS %s", varName(FrameGlobal, "CONCAT_OUTPUT"))
}

// generateInterpolation lowers an interpolated string to concatenation of
// its segments with every expression routed through __stringify__.
func (g *Generator) generateInterpolation(e *ast.InterpolationExpression) error {
	g.out.line("PUSHS %s", stringConst(e.Strings[0]))

	for i, expr := range e.Expressions {
		if err := g.generateExpression(expr); err != nil {
			return err
		}
		if err := g.callStringify(expr); err != nil {
			return err
		}
		g.concatTopOfStack()

		g.out.line("PUSHS %s", stringConst(e.Strings[i+1]))
		g.concatTopOfStack()
	}
	return nil
}

// callStringify routes the stack top through the __stringify__ overload
// matching the expression's primitive type.
func (g *Generator) callStringify(expr ast.Expression) error {
	typ, err := g.expressionType(expr)
	if err != nil {
		return err
	}

	var fn *semantic.FunctionDeclaration
	for _, overload := range g.analyzer.FunctionsByName("__stringify__") {
		params := overload.Node.Parameters.Parameters
		if len(params) == 1 && params[0].Type.Type.Primitive == typ.Primitive {
			fn = overload
			break
		}
	}
	if fn == nil {
		return errors.Newf(errors.KindInternal,
			"no __stringify__ overload for type '%s'", typ)
	}

	paramID := fn.Node.Parameters.Parameters[0].InternalName.ID
	g.out.line("CREATEFRAME")
	g.out.line("DEFVAR %s", varID(FrameTemporary, paramID))
	g.out.line("POPS %s", varID(FrameTemporary, paramID))
	g.out.line("DEFVAR %s", retVar(FrameTemporary, fn.ID))
	g.out.line("CALL %s", funcLabel(fn.ID))
	g.out.line("PUSHS %s", retVar(FrameTemporary, fn.ID))
	return nil
}

// expressionType reads the type annotation the analyser left on a node.
func (g *Generator) expressionType(expr ast.Expression) (types.ValueType, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		return e.Type, nil
	case *ast.Identifier:
		if v := g.analyzer.VariableByID(e.ID); v != nil {
			return v.Type, nil
		}
	case *ast.FunctionCall:
		return e.Type, nil
	case *ast.UnaryExpression:
		return e.Type, nil
	case *ast.BinaryExpression:
		return e.Type, nil
	case *ast.InterpolationExpression:
		return types.String, nil
	}
	return types.Invalid, errors.Newf(errors.KindInternal,
		"expression %T carries no resolved type", expr)
}
