package codegen

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
)

// generateCall dispatches a resolved function call to a native instruction
// sequence or the common calling convention.
func (g *Generator) generateCall(call *ast.FunctionCall) error {
	builtin := g.analyzer.BuiltInFunctionByID(call.Name.ID)

	switch builtin {
	case ast.BuiltInReadString:
		g.out.line("READ %s string", varName(FrameGlobal, "READSTRING_TMP"))
		g.out.line("PUSHS %s", varName(FrameGlobal, "READSTRING_TMP"))
		return nil

	case ast.BuiltInReadInt:
		g.out.line("READ %s int", varName(FrameGlobal, "READINT_TMP"))
		g.out.line("PUSHS %s", varName(FrameGlobal, "READINT_TMP"))
		return nil

	case ast.BuiltInReadDouble:
		g.out.line("READ %s float", varName(FrameGlobal, "READDOUBLE_TMP"))
		g.out.line("PUSHS %s", varName(FrameGlobal, "READDOUBLE_TMP"))
		return nil

	case ast.BuiltInWrite:
		for _, arg := range call.Arguments.Arguments {
			if err := g.generateExpression(arg.Value); err != nil {
				return err
			}
			g.out.line("POPS %s", varName(FrameGlobal, "WRITE_TMP"))
			g.out.line("WRITE %s", varName(FrameGlobal, "WRITE_TMP"))
		}
		return nil

	case ast.BuiltInInt2Double:
		if err := g.generateExpression(call.Arguments.Arguments[0].Value); err != nil {
			return err
		}
		g.out.line("INT2FLOATS")
		return nil

	case ast.BuiltInDouble2Int:
		if err := g.generateExpression(call.Arguments.Arguments[0].Value); err != nil {
			return err
		}
		g.out.line("FLOAT2INTS")
		return nil

	case ast.BuiltInLength:
		return g.callNative(call, "length", "ARG1_LEN", "RETVAL_LEN")

	case ast.BuiltInOrd:
		return g.callNative(call, "ord", "ARG1_ORD", "RETVAL_ORD")

	case ast.BuiltInChr:
		return g.callNative(call, "chr", "ARG1_CHR", "RETVAL_CHR")

	case ast.BuiltInSubstring:
		for _, arg := range call.Arguments.Arguments {
			if err := g.generateExpression(arg.Value); err != nil {
				return err
			}
		}
		g.out.line("CREATEFRAME")
		for _, name := range []string{"ARG1_SUBSTR", "ARG2_SUBSTR", "ARG3_SUBSTR"} {
			g.out.line("DEFVAR %s", varName(FrameTemporary, name))
		}
		g.out.line("POPS %s", varName(FrameTemporary, "ARG3_SUBSTR"))
		g.out.line("POPS %s", varName(FrameTemporary, "ARG2_SUBSTR"))
		g.out.line("POPS %s", varName(FrameTemporary, "ARG1_SUBSTR"))
		g.out.line("CALL $substr")
		g.out.line("PUSHS %s", varName(FrameTemporary, "RETVAL_SUBSTR"))
		return nil

	default:
		return g.generateUserCall(call)
	}
}

// callNative routes a single-argument call through a native helper label.
func (g *Generator) callNative(call *ast.FunctionCall, label, argName, retName string) error {
	if err := g.generateExpression(call.Arguments.Arguments[0].Value); err != nil {
		return err
	}
	g.out.line("CREATEFRAME")
	g.out.line("DEFVAR %s", varName(FrameTemporary, argName))
	g.out.line("POPS %s", varName(FrameTemporary, argName))
	g.out.line("CALL $%s", label)
	g.out.line("PUSHS %s", varName(FrameTemporary, retName))
	return nil
}

// generateUserCall applies the common calling convention: arguments are
// evaluated left to right onto the stack, popped into the parameters'
// id-variables in a fresh temporary frame, and the callee's PUSHFRAME
// adopts that frame as its locals.
func (g *Generator) generateUserCall(call *ast.FunctionCall) error {
	decl := g.analyzer.FunctionByID(call.Name.ID)
	if decl == nil {
		return errors.Newf(errors.KindInternal,
			"call of '%s' bound to unknown id %d", call.Name.Name, call.Name.ID)
	}
	parameters := decl.Node.Parameters.Parameters

	for _, arg := range call.Arguments.Arguments {
		if err := g.generateExpression(arg.Value); err != nil {
			return err
		}
	}

	g.out.line("CREATEFRAME")
	for i := len(call.Arguments.Arguments) - 1; i >= 0; i-- {
		paramID := parameters[i].InternalName.ID
		g.out.line("DEFVAR %s", varID(FrameTemporary, paramID))
		g.out.line("POPS %s", varID(FrameTemporary, paramID))
	}

	if !decl.ReturnType.IsVoid() {
		g.out.line("DEFVAR %s", retVar(FrameTemporary, decl.ID))
	}
	g.out.line("CALL %s", funcLabel(decl.ID))
	if !decl.ReturnType.IsVoid() {
		g.out.line("PUSHS %s", retVar(FrameTemporary, decl.ID))
	}
	return nil
}
