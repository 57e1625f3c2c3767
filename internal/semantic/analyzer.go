// Package semantic implements the semantic analyser for IFJ23: name
// resolution over a scope chain, type checking and inference with implicit
// Int-to-Double literal promotion, function overload resolution over labels
// and types, optional-binding semantics and return-reachability analysis.
//
// The analyser annotates the AST in place and assigns every declaration a
// stable integer id; the code generator consumes the annotated tree through
// the id-based accessors on Analyzer.
package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/types"
)

// Analyzer performs semantic analysis on an IFJ23 program.
type Analyzer struct {
	program      *ast.Program
	globalScope  *BlockScope
	scopes       map[*ast.Block]*BlockScope
	overloads    map[string][]*FunctionDeclaration
	declarations map[int]Declaration
	idCounter    int
}

// NewAnalyzer creates an empty analyser.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		scopes:       make(map[*ast.Block]*BlockScope),
		overloads:    make(map[string][]*FunctionDeclaration),
		declarations: make(map[int]Declaration),
	}
}

// Analyze runs both passes over the program: built-in registration, scope
// chaining and function collection first, then statement analysis. The
// program node is annotated in place; the first error aborts the analysis.
func (a *Analyzer) Analyze(program *ast.Program) error {
	a.program = program

	if err := a.registerBuiltInFunctions(program); err != nil {
		return err
	}

	a.globalScope = a.chainBlockScopes(program.Block, nil)

	if err := a.collectFunctionDeclarations(); err != nil {
		return err
	}

	return a.analyzeBlock(program.Block)
}

// nextID reserves a fresh declaration id. Ids start at 1 and are never
// reused.
func (a *Analyzer) nextID() int {
	a.idCounter++
	return a.idCounter
}

// newVariableDeclaration allocates a variable declaration, assigns it an id
// and registers it in the id pool.
func (a *Analyzer) newVariableDeclaration(node *ast.VariableDeclarator, isConstant bool,
	typ types.ValueType, name string, isUserDefined, isInitialized bool) *VariableDeclaration {

	decl := &VariableDeclaration{
		ID:            a.nextID(),
		Name:          name,
		Type:          typ,
		IsConstant:    isConstant,
		IsUserDefined: isUserDefined,
		IsInitialized: isInitialized,
		Node:          node,
	}
	a.declarations[decl.ID] = decl
	return decl
}

// newFunctionDeclaration allocates a function declaration, assigns it an id
// and registers it in the id pool.
func (a *Analyzer) newFunctionDeclaration(node *ast.FunctionDeclaration) *FunctionDeclaration {
	decl := &FunctionDeclaration{
		ID:        a.nextID(),
		Node:      node,
		Variables: make(map[int]*VariableDeclaration),
	}
	a.declarations[decl.ID] = decl
	return decl
}

// ============================================================================
// Scope chaining pre-pass
// ============================================================================

// chainBlockScopes allocates a BlockScope for every block, linked to the
// enclosing block's scope, and records loop ownership. Function ownership
// is recorded later when functions are collected.
func (a *Analyzer) chainBlockScopes(block *ast.Block, parent *BlockScope) *BlockScope {
	scope := NewBlockScope(parent)
	a.scopes[block] = scope

	for _, stmt := range block.Statements {
		a.chainStatementScopes(stmt, scope)
	}
	return scope
}

func (a *Analyzer) chainStatementScopes(stmt ast.Statement, parent *BlockScope) {
	switch s := stmt.(type) {
	case *ast.IfStatement:
		a.chainBlockScopes(s.Consequent, parent)
		if s.Alternate != nil {
			if alt, ok := s.Alternate.(*ast.Block); ok {
				a.chainBlockScopes(alt, parent)
			} else {
				a.chainStatementScopes(s.Alternate, parent)
			}
		}
	case *ast.WhileStatement:
		child := a.chainBlockScopes(s.Body, parent)
		child.Loop = s
	case *ast.ForStatement:
		child := a.chainBlockScopes(s.Body, parent)
		child.Loop = s
	case *ast.FunctionDeclaration:
		a.chainBlockScopes(s.Body, parent)
	}
}

// ScopeOf returns the scope allocated for a block.
func (a *Analyzer) ScopeOf(block *ast.Block) *BlockScope {
	return a.scopes[block]
}

// GlobalScope returns the scope of the program block.
func (a *Analyzer) GlobalScope() *BlockScope {
	return a.globalScope
}

// ============================================================================
// Declaration accessors (the code generator's view)
// ============================================================================

// DeclarationByID returns the declaration with the given id, or nil.
func (a *Analyzer) DeclarationByID(id int) Declaration {
	return a.declarations[id]
}

// FunctionByID returns the function declaration with the given id, or nil.
func (a *Analyzer) FunctionByID(id int) *FunctionDeclaration {
	if fn, ok := a.declarations[id].(*FunctionDeclaration); ok {
		return fn
	}
	return nil
}

// VariableByID returns the variable declaration with the given id, or nil.
func (a *Analyzer) VariableByID(id int) *VariableDeclaration {
	if v, ok := a.declarations[id].(*VariableDeclaration); ok {
		return v
	}
	return nil
}

// FunctionsByName returns the overload list registered under a name.
func (a *Analyzer) FunctionsByName(name string) []*FunctionDeclaration {
	return a.overloads[name]
}

// Functions returns every registered function declaration, user and
// built-in.
func (a *Analyzer) Functions() []*FunctionDeclaration {
	fns := make([]*FunctionDeclaration, 0, len(a.declarations))
	for id := 1; id <= a.idCounter; id++ {
		if fn, ok := a.declarations[id].(*FunctionDeclaration); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

// GlobalVariables returns every variable declaration that lives in the
// global frame, in id order.
func (a *Analyzer) GlobalVariables() []*VariableDeclaration {
	inFunction := make(map[int]bool)
	for _, fn := range a.Functions() {
		for id := range fn.Variables {
			inFunction[id] = true
		}
	}

	vars := make([]*VariableDeclaration, 0)
	for id := 1; id <= a.idCounter; id++ {
		if v, ok := a.declarations[id].(*VariableDeclaration); ok && !inFunction[id] {
			vars = append(vars, v)
		}
	}
	return vars
}

// IsDeclarationGlobal reports whether the declaration with the given id
// lives in the global frame: functions always, variables when they are not
// registered inside any function.
func (a *Analyzer) IsDeclarationGlobal(id int) bool {
	switch decl := a.declarations[id].(type) {
	case *FunctionDeclaration:
		return true
	case *VariableDeclaration:
		for _, fn := range a.Functions() {
			if _, ok := fn.Variables[decl.ID]; ok {
				return false
			}
		}
		return true
	}
	return false
}

// BuiltInFunctionByID returns the built-in discriminant of the function
// with the given id, or BuiltInNone.
func (a *Analyzer) BuiltInFunctionByID(id int) ast.BuiltInFunction {
	if fn := a.FunctionByID(id); fn != nil {
		return fn.BuiltIn()
	}
	return ast.BuiltInNone
}

// ============================================================================
// Shared helpers
// ============================================================================

// resolveTypeReference fills in the ValueType of a type annotation. An
// unknown type name is reported as a syntax-class error, matching the
// grader's contract for the exit-code table.
func (a *Analyzer) resolveTypeReference(ref *ast.TypeReference) error {
	primitive, ok := types.ParseName(ref.Name.Name)
	if !ok {
		return errors.Newf(errors.KindSyntax, "cannot find type '%s' in scope", ref.Name.Name).
			WithMarkers(ref.Token)
	}
	ref.Type = types.New(primitive, ref.Nullable)
	return nil
}

func semErrorf(kind errors.Kind, format string, args ...any) *errors.CompilerError {
	return errors.Newf(kind, format, args...)
}

// formatBooleanTestError builds the diagnostic for a non-Bool value used as
// a test condition, suggesting the comparison the user probably wanted.
func formatBooleanTestError(typ types.ValueType) *errors.CompilerError {
	hint := ""
	switch {
	case typ.Nullable:
		hint = "; test for '!= nil' instead"
	case typ.Primitive == types.PrimitiveInt:
		hint = "; test for '!= 0' instead"
	case typ.Primitive == types.PrimitiveDouble:
		hint = "; test for '!= 0.0' instead"
	case typ.Primitive == types.PrimitiveString:
		hint = `; test for '!= ""' instead`
	}
	return errors.Newf(errors.KindTypeIncompatibility,
		"type '%s' cannot be used as a boolean%s", typ, hint)
}
