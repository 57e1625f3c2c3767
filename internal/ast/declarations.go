package ast

import (
	"strings"

	"github.com/tskoda/go-swiftc/internal/types"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// TypeReference is a type annotation: a primitive name with an optional '?'.
type TypeReference struct {
	Token    token.Token // the type name token
	Name     *Identifier
	Nullable bool
	Type     types.ValueType // resolved by the analyser
}

func (t *TypeReference) expressionNode()      {}
func (t *TypeReference) TokenLiteral() string { return t.Name.Name }

func (t *TypeReference) String() string {
	if t.Nullable {
		return t.Name.Name + "?"
	}
	return t.Name.Name
}

// Pattern is a declared name with an optional type annotation.
type Pattern struct {
	Token token.Token
	Name  *Identifier
	Type  *TypeReference // nil when no annotation was written
}

func (p *Pattern) expressionNode()      {}
func (p *Pattern) TokenLiteral() string { return p.Name.Name }

func (p *Pattern) String() string {
	if p.Type != nil {
		return p.Name.String() + ": " + p.Type.String()
	}
	return p.Name.String()
}

// VariableDeclarator is one name-initialiser pair of a declaration.
type VariableDeclarator struct {
	Token       token.Token
	Pattern     *Pattern
	Initializer Expression // nil when absent
}

func (v *VariableDeclarator) expressionNode()      {}
func (v *VariableDeclarator) TokenLiteral() string { return v.Pattern.TokenLiteral() }

func (v *VariableDeclarator) String() string {
	if v.Initializer != nil {
		return v.Pattern.String() + " = " + v.Initializer.String()
	}
	return v.Pattern.String()
}

// VariableDeclarationList holds the declarators of one let/var statement.
type VariableDeclarationList struct {
	Token       token.Token
	Declarators []*VariableDeclarator
}

func (v *VariableDeclarationList) expressionNode()      {}
func (v *VariableDeclarationList) TokenLiteral() string { return v.Token.String() }

func (v *VariableDeclarationList) String() string {
	parts := make([]string, len(v.Declarators))
	for i, d := range v.Declarators {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

// VariableDeclaration is a let/var statement.
type VariableDeclaration struct {
	Token       token.Token // the 'let' or 'var' token
	IsConstant  bool
	Declarators *VariableDeclarationList
}

func (v *VariableDeclaration) statementNode()       {}
func (v *VariableDeclaration) TokenLiteral() string { return v.Token.Type.String() }

func (v *VariableDeclaration) String() string {
	kw := "var"
	if v.IsConstant {
		kw = "let"
	}
	return kw + " " + v.Declarators.String()
}

// Parameter is one formal parameter of a function declaration. The external
// label is what call sites must spell; '_' suppresses it (Labeless). A
// parameter written with a single name has neither: the analyser rejects it.
type Parameter struct {
	Token         token.Token
	ExternalLabel *Identifier // nil when labeless or when only one name was written
	Labeless      bool        // external label written as '_'
	InternalName  *Identifier
	Type          *TypeReference
	Initializer   Expression // default value, nil when absent
}

func (p *Parameter) expressionNode()      {}
func (p *Parameter) TokenLiteral() string { return p.InternalName.Name }

func (p *Parameter) String() string {
	s := p.InternalName.Name + ": " + p.Type.String()
	if p.Labeless {
		s = "_ " + s
	} else if p.ExternalLabel != nil {
		s = p.ExternalLabel.Name + " " + s
	}
	if p.Initializer != nil {
		s += " = " + p.Initializer.String()
	}
	return s
}

// ParameterList holds the formal parameters of one function.
type ParameterList struct {
	Token      token.Token
	Parameters []*Parameter
}

func (p *ParameterList) expressionNode()      {}
func (p *ParameterList) TokenLiteral() string { return "(" }

func (p *ParameterList) String() string {
	parts := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		parts[i] = param.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// BuiltInFunction names the built-in a function declaration implements, or
// BuiltInNone for user functions.
type BuiltInFunction int

const (
	BuiltInNone BuiltInFunction = iota
	BuiltInReadString
	BuiltInReadInt
	BuiltInReadDouble
	BuiltInWrite
	BuiltInInt2Double
	BuiltInDouble2Int
	BuiltInLength
	BuiltInSubstring
	BuiltInOrd
	BuiltInChr

	// Internal helpers declared by the embedded prelude, compiled like user
	// functions but not callable from user source by normal means.
	BuiltInStringify
	BuiltInModulo
)

var builtInNames = map[string]BuiltInFunction{
	"readString":    BuiltInReadString,
	"readInt":       BuiltInReadInt,
	"readDouble":    BuiltInReadDouble,
	"write":         BuiltInWrite,
	"Int2Double":    BuiltInInt2Double,
	"Double2Int":    BuiltInDouble2Int,
	"length":        BuiltInLength,
	"substring":     BuiltInSubstring,
	"ord":           BuiltInOrd,
	"chr":           BuiltInChr,
	"__stringify__": BuiltInStringify,
	"__modulo__":    BuiltInModulo,
}

// LookupBuiltIn maps a function name to its built-in discriminant.
func LookupBuiltIn(name string) BuiltInFunction {
	if b, ok := builtInNames[name]; ok {
		return b
	}
	return BuiltInNone
}

// FunctionDeclaration declares a function. ID is the declaration id bound
// during pre-registration; BuiltIn tags declarations coming from the
// embedded prelude.
type FunctionDeclaration struct {
	Token      token.Token // the 'func' token
	Name       *Identifier
	Parameters *ParameterList
	ReturnType *TypeReference // nil means Void
	Body       *Block
	ID         int
	BuiltIn    BuiltInFunction
}

func (f *FunctionDeclaration) statementNode()       {}
func (f *FunctionDeclaration) TokenLiteral() string { return "func" }

func (f *FunctionDeclaration) String() string {
	s := "func " + f.Name.String() + f.Parameters.String()
	if f.ReturnType != nil {
		s += " -> " + f.ReturnType.String()
	}
	return s + " " + f.Body.String()
}
