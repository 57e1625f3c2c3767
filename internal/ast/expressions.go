package ast

import (
	"strconv"
	"strings"

	"github.com/tskoda/go-swiftc/internal/types"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// Operator enumerates the binary and unary operators of the expression
// grammar.
type Operator int

const (
	OperatorInvalid Operator = iota
	OperatorPlus
	OperatorMinus
	OperatorMul
	OperatorDiv
	OperatorEqual
	OperatorNotEqual
	OperatorLess
	OperatorGreater
	OperatorLessEqual
	OperatorGreaterEqual
	OperatorNilCoalescing
	OperatorAnd
	OperatorOr
	OperatorNot    // prefix !
	OperatorUnwrap // postfix !
)

var operatorLexemes = map[Operator]string{
	OperatorPlus:          "+",
	OperatorMinus:         "-",
	OperatorMul:           "*",
	OperatorDiv:           "/",
	OperatorEqual:         "==",
	OperatorNotEqual:      "!=",
	OperatorLess:          "<",
	OperatorGreater:       ">",
	OperatorLessEqual:     "<=",
	OperatorGreaterEqual:  ">=",
	OperatorNilCoalescing: "??",
	OperatorAnd:           "&&",
	OperatorOr:            "||",
	OperatorNot:           "!",
	OperatorUnwrap:        "!",
}

func (op Operator) String() string {
	if s, ok := operatorLexemes[op]; ok {
		return s
	}
	return "<invalid op>"
}

// Identifier is a name reference. ID is bound by the analyser to the id of
// the declaration the name resolves to; it is zero until resolution.
type Identifier struct {
	Token token.Token // the IDENT token
	Name  string
	ID    int
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Name }
func (i *Identifier) String() string       { return i.Name }

// LiteralExpression is an Int, Double, Bool, String or nil literal. The
// analyser may retype an Int literal to Double during resolution; Original
// keeps the parsed (value, type) pair so a speculative promotion can be
// rolled back when the literal is revisited with a different preferred type.
type LiteralExpression struct {
	Token    token.Token
	Value    token.Value
	Type     types.ValueType
	Original LiteralOrigin
}

// LiteralOrigin is the parse-time value and type of a literal.
type LiteralOrigin struct {
	Value token.Value
	Type  types.ValueType
}

func (l *LiteralExpression) expressionNode()      {}
func (l *LiteralExpression) TokenLiteral() string { return l.Token.String() }

func (l *LiteralExpression) String() string {
	switch l.Type.Primitive {
	case types.PrimitiveInt:
		return strconv.FormatInt(l.Value.Int, 10)
	case types.PrimitiveDouble:
		return strconv.FormatFloat(l.Value.Float, 'g', -1, 64)
	case types.PrimitiveBool:
		return strconv.FormatBool(l.Value.Bool)
	case types.PrimitiveString:
		return strconv.Quote(l.Value.String)
	case types.PrimitiveNil:
		return "nil"
	}
	return l.Token.String()
}

// BinaryExpression applies an infix operator to two operands.
type BinaryExpression struct {
	Token    token.Token // the operator token
	Operator Operator
	Left     Expression
	Right    Expression
	Type     types.ValueType // resolved result type
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Operator.String() }

func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator.String() + " " + b.Right.String() + ")"
}

// UnaryExpression applies the prefix logical not or the postfix force
// unwrap to an operand.
type UnaryExpression struct {
	Token    token.Token // the operator token
	Operator Operator
	Operand  Expression
	Type     types.ValueType
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Operator.String() }

func (u *UnaryExpression) String() string {
	if u.Operator == OperatorUnwrap {
		return "(" + u.Operand.String() + "!)"
	}
	return "(!" + u.Operand.String() + ")"
}

// Argument is a single call argument with an optional label.
type Argument struct {
	Token token.Token
	Label *Identifier // nil for unlabeled arguments
	Value Expression
}

func (a *Argument) expressionNode()      {}
func (a *Argument) TokenLiteral() string { return a.Token.String() }

func (a *Argument) String() string {
	if a.Label != nil {
		return a.Label.Name + ": " + a.Value.String()
	}
	return a.Value.String()
}

// ArgumentList collects the arguments of one call.
type ArgumentList struct {
	Token     token.Token // the '(' token
	Arguments []*Argument
}

func (a *ArgumentList) expressionNode()      {}
func (a *ArgumentList) TokenLiteral() string { return "(" }

func (a *ArgumentList) String() string {
	parts := make([]string, len(a.Arguments))
	for i, arg := range a.Arguments {
		parts[i] = arg.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FunctionCall invokes a function by name. The callee identifier's ID is
// bound to the selected overload during analysis.
type FunctionCall struct {
	Token     token.Token
	Name      *Identifier
	Arguments *ArgumentList
	Type      types.ValueType // resolved return type
}

func (f *FunctionCall) expressionNode()      {}
func (f *FunctionCall) TokenLiteral() string { return f.Name.Name }

func (f *FunctionCall) String() string {
	return f.Name.String() + f.Arguments.String()
}

// InterpolationExpression is a string literal with embedded expressions.
// Strings always has exactly one more element than Expressions; the two
// interleave as Strings[0], Expressions[0], Strings[1], ...
type InterpolationExpression struct {
	Token       token.Token
	Strings     []string
	Expressions []Expression
}

func (s *InterpolationExpression) expressionNode()      {}
func (s *InterpolationExpression) TokenLiteral() string { return s.Token.String() }

func (s *InterpolationExpression) String() string {
	var sb strings.Builder
	sb.WriteString(`"`)
	for i, str := range s.Strings {
		sb.WriteString(str)
		if i < len(s.Expressions) {
			sb.WriteString(`\(`)
			sb.WriteString(s.Expressions[i].String())
			sb.WriteString(`)`)
		}
	}
	sb.WriteString(`"`)
	return sb.String()
}
