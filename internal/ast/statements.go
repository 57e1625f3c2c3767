package ast

import (
	"github.com/tskoda/go-swiftc/pkg/token"
)

// ExpressionStatement wraps an expression used in statement position; the
// grammar only admits function calls here, which the parser enforces.
type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()       {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.String() }
func (e *ExpressionStatement) String() string       { return e.Expression.String() }

// AssignmentStatement stores a value into a named variable.
type AssignmentStatement struct {
	Token  token.Token // the '=' token
	Target *Identifier
	Value  Expression
}

func (a *AssignmentStatement) statementNode()       {}
func (a *AssignmentStatement) TokenLiteral() string { return "=" }

func (a *AssignmentStatement) String() string {
	return a.Target.String() + " = " + a.Value.String()
}

// OptionalBindingCondition is the `let name` form of an if/while test. The
// analyser binds Name to the unwrapped shadow variable it synthesises in
// the body scope, and FromID to the outer nullable variable the value is
// unwrapped from.
type OptionalBindingCondition struct {
	Token  token.Token // the 'let' token
	Name   *Identifier // resolved to the unwrapped shadow variable
	FromID int         // id of the outer nullable variable
}

func (o *OptionalBindingCondition) expressionNode()      {}
func (o *OptionalBindingCondition) TokenLiteral() string { return "let" }
func (o *OptionalBindingCondition) String() string       { return "let " + o.Name.String() }

// IfStatement is a conditional with an optional alternate. Alternate is
// either *Block or *IfStatement (else-if chain), or nil. ID labels the
// statement for code generation.
type IfStatement struct {
	Token      token.Token // the 'if' token
	Test       Expression  // plain expression or *OptionalBindingCondition
	Consequent *Block
	Alternate  Statement // *Block, *IfStatement or nil
	ID         int
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) TokenLiteral() string { return "if" }

func (i *IfStatement) String() string {
	s := "if " + i.Test.String() + " " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}

// WhileStatement is a pre-tested loop. ID labels the statement for code
// generation.
type WhileStatement struct {
	Token token.Token // the 'while' token
	Test  Expression  // plain expression or *OptionalBindingCondition
	Body  *Block
	ID    int
}

func (w *WhileStatement) statementNode()       {}
func (w *WhileStatement) TokenLiteral() string { return "while" }

func (w *WhileStatement) String() string {
	return "while " + w.Test.String() + " " + w.Body.String()
}

// Range is the bounds pair of a for-in loop. EndID names the synthetic
// variable the code generator stores the evaluated upper bound in.
type Range struct {
	Token    token.Token // the range operator token
	Start    Expression
	End      Expression
	HalfOpen bool // ..< excludes the upper bound
	EndID    int
}

func (r *Range) expressionNode()      {}
func (r *Range) TokenLiteral() string { return r.Token.Type.String() }

func (r *Range) String() string {
	op := "..."
	if r.HalfOpen {
		op = "..<"
	}
	return r.Start.String() + op + r.End.String()
}

// ForStatement iterates an Int variable over a range. IteratorID is the id
// of the synthesised iterator variable in the body scope.
type ForStatement struct {
	Token      token.Token // the 'for' token
	Iterator   *Identifier
	Range      *Range
	Body       *Block
	ID         int
	IteratorID int
}

func (f *ForStatement) statementNode()       {}
func (f *ForStatement) TokenLiteral() string { return "for" }

func (f *ForStatement) String() string {
	return "for " + f.Iterator.String() + " in " + f.Range.String() + " " + f.Body.String()
}

// ReturnStatement exits the nearest enclosing function. FunctionID is bound
// by the analyser to that function's id.
type ReturnStatement struct {
	Token      token.Token // the 'return' token
	Value      Expression  // nil for a bare return
	FunctionID int
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) TokenLiteral() string { return "return" }

func (r *ReturnStatement) String() string {
	if r.Value != nil {
		return "return " + r.Value.String()
	}
	return "return"
}

// BreakStatement exits the nearest enclosing loop; LoopID is that loop's id.
type BreakStatement struct {
	Token  token.Token
	LoopID int
}

func (b *BreakStatement) statementNode()       {}
func (b *BreakStatement) TokenLiteral() string { return "break" }
func (b *BreakStatement) String() string       { return "break" }

// ContinueStatement restarts the nearest enclosing loop; LoopID is that
// loop's id.
type ContinueStatement struct {
	Token  token.Token
	LoopID int
}

func (c *ContinueStatement) statementNode()       {}
func (c *ContinueStatement) TokenLiteral() string { return "continue" }
func (c *ContinueStatement) String() string       { return "continue" }
