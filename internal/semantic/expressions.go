package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/types"
)

// resolveExpression walks an expression, annotates its nodes with resolved
// types and declaration ids, and returns the overall type. The preferred
// type expresses the constraint from context: it drives Int-literal
// promotion and overload selection but never forces a variable conversion.
func (a *Analyzer) resolveExpression(node ast.Expression, scope *BlockScope, preferred types.ValueType) (types.ValueType, error) {
	switch n := node.(type) {
	case *ast.LiteralExpression:
		return a.resolveLiteral(n, preferred), nil
	case *ast.Identifier:
		return a.resolveIdentifier(n, scope)
	case *ast.FunctionCall:
		return a.resolveFunctionCall(n, scope, preferred)
	case *ast.UnaryExpression:
		return a.resolveUnary(n, scope, preferred)
	case *ast.BinaryExpression:
		return a.resolveBinary(n, scope, preferred)
	case *ast.InterpolationExpression:
		return a.resolveInterpolation(n, scope)
	default:
		return types.Invalid, errors.Newf(errors.KindInternal,
			"cannot resolve type of expression %T", node)
	}
}

// resolveLiteral retypes an Int literal to Double when the context asks for
// one, rewriting the stored value in place; any other context restores the
// parse-time value first, so a speculative promotion from an earlier
// overload attempt rolls back.
func (a *Analyzer) resolveLiteral(literal *ast.LiteralExpression, preferred types.ValueType) types.ValueType {
	if preferred.Primitive == types.PrimitiveDouble && literal.Original.Type.Primitive == types.PrimitiveInt {
		literal.Value.Float = float64(literal.Original.Value.Int)
		literal.Type = types.Double
	} else {
		literal.Value = literal.Original.Value
		literal.Type = literal.Original.Type
	}
	return literal.Type
}

// resolveIdentifier resolves a name up the scope chain, binding the node to
// the declaration id and marking the declaration used.
func (a *Analyzer) resolveIdentifier(identifier *ast.Identifier, scope *BlockScope) (types.ValueType, error) {
	if identifier.ID != 0 {
		decl := a.VariableByID(identifier.ID)
		if decl == nil {
			return types.Invalid, errors.Newf(errors.KindInternal,
				"identifier '%s' bound to unknown id %d", identifier.Name, identifier.ID)
		}
		return decl.Type, nil
	}

	decl := scope.Lookup(identifier.Name)
	if decl == nil {
		return types.Invalid, semErrorf(errors.KindUndefinedVariable,
			"cannot find '%s' in scope", identifier.Name).WithMarkers(identifier.Token)
	}
	if decl.Type.IsUnknown() {
		return types.Invalid, semErrorf(errors.KindInference,
			"cannot infer type of '%s'", identifier.Name).WithMarkers(identifier.Token)
	}
	if !decl.Type.Nullable && !decl.IsInitialized {
		return types.Invalid, semErrorf(errors.KindUndefinedVariable,
			"variable '%s' used before being initialized", identifier.Name).
			WithMarkers(identifier.Token)
	}

	identifier.ID = decl.ID
	decl.IsUsed = true
	return decl.Type, nil
}

// resolveUnary handles the postfix force unwrap and the prefix logical not.
func (a *Analyzer) resolveUnary(unary *ast.UnaryExpression, scope *BlockScope, preferred types.ValueType) (types.ValueType, error) {
	switch unary.Operator {
	case ast.OperatorUnwrap:
		operand, err := a.resolveExpression(unary.Operand, scope, preferred.AsNullable())
		if err != nil {
			return types.Invalid, err
		}
		if !operand.Nullable {
			return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
				"cannot force unwrap value of non-optional type '%s'", operand).
				WithMarkers(unary.Token)
		}
		unary.Type = operand.NonNullable()

	case ast.OperatorNot:
		operand, err := a.resolveExpression(unary.Operand, scope, types.Bool)
		if err != nil {
			return types.Invalid, err
		}
		if operand.Primitive != types.PrimitiveBool {
			return types.Invalid, formatBooleanTestError(operand).WithMarkers(unary.Token)
		}
		if operand.Nullable {
			return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
				"value of optional type '%s' must be unwrapped to a value of type 'Bool'", operand).
				WithMarkers(unary.Token)
		}
		unary.Type = types.Bool

	default:
		return types.Invalid, semErrorf(errors.KindSyntax,
			"'%s' is not a valid unary operator", unary.Operator).WithMarkers(unary.Token)
	}
	return unary.Type, nil
}

// resolveInterpolation resolves every embedded expression of an
// interpolated string; the result is always a String.
func (a *Analyzer) resolveInterpolation(node *ast.InterpolationExpression, scope *BlockScope) (types.ValueType, error) {
	for _, expr := range node.Expressions {
		if _, err := a.resolveExpression(expr, scope, types.Unknown); err != nil {
			return types.Invalid, err
		}
	}
	return types.String, nil
}

// ============================================================================
// Binary expressions
// ============================================================================

// resolveBinary resolves both operands and applies the typing rule of the
// operator.
func (a *Analyzer) resolveBinary(binary *ast.BinaryExpression, scope *BlockScope, preferred types.ValueType) (types.ValueType, error) {
	var left, right types.ValueType
	var err error

	switch binary.Operator {
	case ast.OperatorAnd, ast.OperatorOr:
		if left, err = a.resolveExpression(binary.Left, scope, types.Bool); err != nil {
			return types.Invalid, err
		}
		if right, err = a.resolveExpression(binary.Right, scope, types.Bool); err != nil {
			return types.Invalid, err
		}

	case ast.OperatorPlus, ast.OperatorMinus, ast.OperatorMul, ast.OperatorDiv,
		ast.OperatorNilCoalescing:
		if preferred.IsUnknown() {
			left, right, err = a.resolveOperandsWithoutContext(binary, scope)
		} else {
			left, right, err = a.resolveOperandsWithPreferred(binary, scope, preferred)
		}
		if err != nil {
			return types.Invalid, err
		}

	default:
		// Comparisons never propagate their Bool context into the operands.
		left, right, err = a.resolveOperandsWithoutContext(binary, scope)
		if err != nil {
			return types.Invalid, err
		}
	}

	switch binary.Operator {
	case ast.OperatorPlus, ast.OperatorMinus, ast.OperatorMul, ast.OperatorDiv:
		return a.checkArithmetic(binary, scope, left, right)
	case ast.OperatorEqual, ast.OperatorNotEqual:
		return a.checkEquality(binary, scope, left, right)
	case ast.OperatorLess, ast.OperatorGreater, ast.OperatorLessEqual, ast.OperatorGreaterEqual:
		return a.checkRelational(binary, scope, left, right)
	case ast.OperatorNilCoalescing:
		return a.checkCoalescing(binary, left, right)
	case ast.OperatorAnd, ast.OperatorOr:
		return a.checkLogical(binary, left, right)
	default:
		return types.Invalid, errors.Newf(errors.KindInternal,
			"cannot resolve binary operator '%s'", binary.Operator)
	}
}

// resolveOperandsWithPreferred pushes the context type into both operands.
func (a *Analyzer) resolveOperandsWithPreferred(binary *ast.BinaryExpression, scope *BlockScope, preferred types.ValueType) (types.ValueType, types.ValueType, error) {
	left, err := a.resolveExpression(binary.Left, scope, preferred)
	if err != nil {
		return types.Invalid, types.Invalid, err
	}
	right, err := a.resolveExpression(binary.Right, scope, preferred)
	if err != nil {
		return types.Invalid, types.Invalid, err
	}
	return left, right, nil
}

// resolveOperandsWithoutContext resolves the operands of a binary
// expression when no constraint flows from the context. When one side holds
// an overloaded function call, the other side is resolved first and its
// type drives the call; when both sides are calls, the left is tried first
// and retried against the right's type if it fails. Int/Double literal
// mismatches are harmonised by re-resolving the Int side with a Double
// context.
func (a *Analyzer) resolveOperandsWithoutContext(binary *ast.BinaryExpression, scope *BlockScope) (types.ValueType, types.ValueType, error) {
	invalid := types.Invalid
	_, leftIsCall := binary.Left.(*ast.FunctionCall)
	_, rightIsCall := binary.Right.(*ast.FunctionCall)

	switch {
	case leftIsCall && !rightIsCall:
		right, err := a.resolveExpression(binary.Right, scope, types.Unknown)
		if err != nil {
			return invalid, invalid, err
		}
		left, err := a.resolveExpression(binary.Left, scope, right)
		if err != nil {
			return invalid, invalid, err
		}
		return left, right, nil

	case rightIsCall && !leftIsCall:
		left, err := a.resolveExpression(binary.Left, scope, types.Unknown)
		if err != nil {
			return invalid, invalid, err
		}
		right, err := a.resolveExpression(binary.Right, scope, left)
		if err != nil {
			return invalid, invalid, err
		}
		return left, right, nil

	case leftIsCall && rightIsCall:
		left, leftErr := a.resolveExpression(binary.Left, scope, types.Unknown)
		if leftErr == nil {
			right, err := a.resolveExpression(binary.Right, scope, left)
			if err != nil {
				return invalid, invalid, err
			}
			return left, right, nil
		}
		right, rightErr := a.resolveExpression(binary.Right, scope, types.Unknown)
		if rightErr != nil {
			return invalid, invalid, leftErr
		}
		left, err := a.resolveExpression(binary.Left, scope, right)
		if err != nil {
			return invalid, invalid, err
		}
		return left, right, nil

	default:
		left, err := a.resolveExpression(binary.Left, scope, types.Unknown)
		if err != nil {
			return invalid, invalid, err
		}
		right, err := a.resolveExpression(binary.Right, scope, types.Unknown)
		if err != nil {
			return invalid, invalid, err
		}

		// Harmonise a lone Int literal with a Double on the other side.
		if left.Primitive == types.PrimitiveInt && right.Primitive == types.PrimitiveDouble {
			if left, err = a.resolveExpression(binary.Left, scope, right); err != nil {
				return invalid, invalid, err
			}
		} else if left.Primitive == types.PrimitiveDouble && right.Primitive == types.PrimitiveInt {
			if right, err = a.resolveExpression(binary.Right, scope, left); err != nil {
				return invalid, invalid, err
			}
		}
		return left, right, nil
	}
}

// checkArithmetic types + - * /. Nullable operands must be unwrapped first;
// a lone Int literal promotes to Double against a Double operand, except
// under division.
func (a *Analyzer) checkArithmetic(binary *ast.BinaryExpression, scope *BlockScope, left, right types.ValueType) (types.ValueType, error) {
	if left.Nullable || right.Nullable {
		optional := left
		if !left.Nullable {
			optional = right
		}
		return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
			"value of optional type '%s' must be unwrapped to a value of type '%s'",
			optional, optional.NonNullable()).WithMarkers(binary.Token)
	}

	switch {
	case binary.Operator == ast.OperatorPlus &&
		left.Primitive == types.PrimitiveString && right.Primitive == types.PrimitiveString:
		binary.Type = types.String
	case left.Primitive == types.PrimitiveInt && right.Primitive == types.PrimitiveInt:
		binary.Type = types.Int
	case left.Primitive == types.PrimitiveDouble && right.Primitive == types.PrimitiveDouble:
		binary.Type = types.Double
	case binary.Operator != ast.OperatorDiv && isIntLiteral(binary.Left) &&
		left.Primitive == types.PrimitiveInt && right.Primitive == types.PrimitiveDouble:
		if _, err := a.resolveExpression(binary.Left, scope, types.Double); err != nil {
			return types.Invalid, err
		}
		binary.Type = types.Double
	case binary.Operator != ast.OperatorDiv && isIntLiteral(binary.Right) &&
		left.Primitive == types.PrimitiveDouble && right.Primitive == types.PrimitiveInt:
		if _, err := a.resolveExpression(binary.Right, scope, types.Double); err != nil {
			return types.Invalid, err
		}
		binary.Type = types.Double
	default:
		return types.Invalid, operandTypeError(binary, left, right)
	}
	return binary.Type, nil
}

// checkEquality types == and !=. Operands must share a primitive or one
// side must be nil; the result is Bool, nullable when either operand is.
func (a *Analyzer) checkEquality(binary *ast.BinaryExpression, scope *BlockScope, left, right types.ValueType) (types.ValueType, error) {
	switch {
	case left.Primitive == right.Primitive:
	case left.IsNil() || right.IsNil():
	case isIntLiteral(binary.Left) &&
		left.Primitive == types.PrimitiveInt && right.Primitive == types.PrimitiveDouble:
		if _, err := a.resolveExpression(binary.Left, scope, types.Double); err != nil {
			return types.Invalid, err
		}
	case isIntLiteral(binary.Right) &&
		left.Primitive == types.PrimitiveDouble && right.Primitive == types.PrimitiveInt:
		if _, err := a.resolveExpression(binary.Right, scope, types.Double); err != nil {
			return types.Invalid, err
		}
	default:
		return types.Invalid, operandTypeError(binary, left, right)
	}

	binary.Type = types.New(types.PrimitiveBool, left.Nullable || right.Nullable)
	return binary.Type, nil
}

// checkRelational types < > <= >=: both operands must share one
// non-nullable scalar type, with the usual lone-literal promotion.
func (a *Analyzer) checkRelational(binary *ast.BinaryExpression, scope *BlockScope, left, right types.ValueType) (types.ValueType, error) {
	switch {
	case left.Primitive == right.Primitive && left.IsScalar():
	case isIntLiteral(binary.Left) &&
		left.Primitive == types.PrimitiveInt && right.Primitive == types.PrimitiveDouble:
		if _, err := a.resolveExpression(binary.Left, scope, types.Double); err != nil {
			return types.Invalid, err
		}
	case isIntLiteral(binary.Right) &&
		left.Primitive == types.PrimitiveDouble && right.Primitive == types.PrimitiveInt:
		if _, err := a.resolveExpression(binary.Right, scope, types.Double); err != nil {
			return types.Invalid, err
		}
	default:
		return types.Invalid, operandTypeError(binary, left, right)
	}

	if left.Nullable || right.Nullable {
		optional := left
		if !left.Nullable {
			optional = right
		}
		return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
			"cannot use relational operator '%s' with optional type '%s'",
			binary.Operator, optional).WithMarkers(binary.Token)
	}

	binary.Type = types.Bool
	return binary.Type, nil
}

// checkCoalescing types ??: a nullable left, a non-nullable right of the
// same primitive; the result keeps the left side's nullability.
func (a *Analyzer) checkCoalescing(binary *ast.BinaryExpression, left, right types.ValueType) (types.ValueType, error) {
	if left.Primitive != right.Primitive {
		return types.Invalid, operandTypeError(binary, left, right)
	}
	if !left.Nullable {
		return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
			"left side of '%s' operator has non-optional type '%s'",
			binary.Operator, left).WithMarkers(binary.Token)
	}
	if right.Nullable {
		return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
			"cannot use '%s' operator with optional type '%s' on right side",
			binary.Operator, right).WithMarkers(binary.Token)
	}

	binary.Type = types.New(right.Primitive, left.Nullable)
	return binary.Type, nil
}

// checkLogical types && and ||: both sides non-nullable Bool.
func (a *Analyzer) checkLogical(binary *ast.BinaryExpression, left, right types.ValueType) (types.ValueType, error) {
	if left.Primitive != types.PrimitiveBool || right.Primitive != types.PrimitiveBool {
		bad := left
		if left.Primitive == types.PrimitiveBool {
			bad = right
		}
		return types.Invalid, formatBooleanTestError(bad).WithMarkers(binary.Token)
	}
	if left.Nullable || right.Nullable {
		optional := left
		if !left.Nullable {
			optional = right
		}
		return types.Invalid, semErrorf(errors.KindTypeIncompatibility,
			"value of optional type '%s' must be unwrapped to a value of type 'Bool'", optional).
			WithMarkers(binary.Token)
	}

	binary.Type = types.Bool
	return binary.Type, nil
}

func isIntLiteral(node ast.Expression) bool {
	literal, ok := node.(*ast.LiteralExpression)
	return ok && literal.Original.Type.Primitive == types.PrimitiveInt
}

func operandTypeError(binary *ast.BinaryExpression, left, right types.ValueType) *errors.CompilerError {
	return semErrorf(errors.KindTypeIncompatibility,
		"binary operator '%s' cannot be applied to operands of type '%s' and '%s'",
		binary.Operator, left, right).WithMarkers(binary.Token)
}
