package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/types"
)

// Declaration is either a variable or a function declaration. Every
// declaration owns a stable id, assigned once and never reused; identifier
// nodes refer to declarations by id rather than by pointer.
type Declaration interface {
	DeclarationID() int
}

// VariableDeclaration describes one variable known to the analyser. The
// synthetic declarations (parameters, loop iterators, optional-binding
// shadows) carry no declarator node.
type VariableDeclaration struct {
	ID            int
	Name          string
	Type          types.ValueType
	IsConstant    bool
	IsUserDefined bool
	IsUsed        bool
	IsInitialized bool
	Node          *ast.VariableDeclarator // nil for synthetic declarations
}

func (v *VariableDeclaration) DeclarationID() int { return v.ID }

// FunctionDeclaration describes one function overload. Variables maps the
// ids of its parameters and locals to their declarations, for the code
// generator's frame layout.
type FunctionDeclaration struct {
	ID         int
	Node       *ast.FunctionDeclaration
	ReturnType types.ValueType
	Variables  map[int]*VariableDeclaration
	IsUsed     bool
}

func (f *FunctionDeclaration) DeclarationID() int { return f.ID }

// Name returns the declared function name.
func (f *FunctionDeclaration) Name() string { return f.Node.Name.Name }

// BuiltIn returns the built-in discriminant of the declaration.
func (f *FunctionDeclaration) BuiltIn() ast.BuiltInFunction { return f.Node.BuiltIn }

// BlockScope is the name-resolution scope of one block. Function marks the
// scope of a function body, Loop the scope of a loop body; both are found
// by walking the parent chain.
type BlockScope struct {
	Parent    *BlockScope
	Variables map[string]*VariableDeclaration
	Function  *FunctionDeclaration
	Loop      ast.Statement // *ast.WhileStatement or *ast.ForStatement
}

// NewBlockScope allocates a scope chained to its parent (nil at global
// scope).
func NewBlockScope(parent *BlockScope) *BlockScope {
	return &BlockScope{
		Parent:    parent,
		Variables: make(map[string]*VariableDeclaration),
	}
}

// Lookup resolves a variable name up the scope chain.
func (s *BlockScope) Lookup(name string) *VariableDeclaration {
	for scope := s; scope != nil; scope = scope.Parent {
		if decl, ok := scope.Variables[name]; ok {
			return decl
		}
	}
	return nil
}

// IsGlobal reports whether this is the global scope.
func (s *BlockScope) IsGlobal() bool { return s.Parent == nil }

// NearestFunction returns the function owning the closest enclosing
// function-body scope, or nil outside any function.
func (s *BlockScope) NearestFunction() *FunctionDeclaration {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Function != nil {
			return scope.Function
		}
	}
	return nil
}

// NearestLoop returns the closest enclosing loop statement, or nil.
func (s *BlockScope) NearestLoop() ast.Statement {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Loop != nil {
			return scope.Loop
		}
	}
	return nil
}
