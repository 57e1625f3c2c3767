package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/types"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// analyzeBlock analyses a block statement by statement.
func (a *Analyzer) analyzeBlock(block *ast.Block) error {
	scope := a.scopes[block]

	for _, stmt := range block.Statements {
		var err error
		switch s := stmt.(type) {
		case *ast.VariableDeclaration:
			err = a.analyzeVariableDeclaration(s, scope)
		case *ast.AssignmentStatement:
			err = a.analyzeAssignment(s, scope)
		case *ast.IfStatement:
			err = a.analyzeIf(s, scope)
		case *ast.WhileStatement:
			err = a.analyzeWhile(s, scope)
		case *ast.ForStatement:
			err = a.analyzeFor(s, scope)
		case *ast.FunctionDeclaration:
			err = a.analyzeFunctionDeclaration(s, scope)
		case *ast.ReturnStatement:
			err = a.analyzeReturn(s, scope)
		case *ast.BreakStatement:
			err = a.analyzeLoopControl(s, scope)
		case *ast.ContinueStatement:
			err = a.analyzeLoopControl(s, scope)
		case *ast.ExpressionStatement:
			_, err = a.resolveExpression(s.Expression, scope, types.Unknown)
		default:
			err = errors.Newf(errors.KindInternal, "cannot analyse statement of type %T", stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// analyzeVariableDeclaration handles one let/var statement.
func (a *Analyzer) analyzeVariableDeclaration(stmt *ast.VariableDeclaration, scope *BlockScope) error {
	function := scope.NearestFunction()

	for _, declarator := range stmt.Declarators.Declarators {
		pattern := declarator.Pattern
		name := pattern.Name.Name

		var annotated types.ValueType
		if pattern.Type != nil {
			if err := a.resolveTypeReference(pattern.Type); err != nil {
				return err
			}
			annotated = pattern.Type.Type
		}

		if pattern.Type == nil && declarator.Initializer == nil {
			return semErrorf(errors.KindInference,
				"type annotation missing in pattern").WithMarkers(pattern.Name.Token)
		}

		decl := a.newVariableDeclaration(declarator, stmt.IsConstant, annotated, name, true, false)
		pattern.Name.ID = decl.ID

		if declarator.Initializer != nil {
			preferred := types.Unknown
			if pattern.Type != nil {
				preferred = annotated
			}
			typ, err := a.resolveExpression(declarator.Initializer, scope, preferred)
			if err != nil {
				return err
			}

			if pattern.Type != nil {
				if annotated.IsVoid() {
					return semErrorf(errors.KindTypeIncompatibility,
						"cannot use initializer for variable of type 'Void'").
						WithMarkers(pattern.Name.Token)
				}
				if !typ.AssignableTo(annotated) {
					return semErrorf(errors.KindTypeIncompatibility,
						"cannot convert value of type '%s' to specified type '%s'", typ, annotated).
						WithMarkers(pattern.Name.Token)
				}
			} else {
				if typ.IsNil() {
					return semErrorf(errors.KindInference,
						"'nil' requires a contextual type").WithMarkers(pattern.Name.Token)
				}
				decl.Type = typ
			}
			decl.IsInitialized = true
		}

		// Nullable variables lacking an initializer default to nil.
		if decl.Type.Nullable && !decl.IsInitialized {
			declarator.Initializer = &ast.LiteralExpression{
				Token:    pattern.Name.Token,
				Type:     types.Nil,
				Original: ast.LiteralOrigin{Type: types.Nil},
			}
			decl.IsInitialized = true
		}

		if existing, ok := scope.Variables[name]; ok && existing.IsUserDefined {
			return semErrorf(errors.KindUndefinedFunction,
				"invalid redeclaration of '%s'", name).WithMarkers(pattern.Name.Token)
		}

		// A global variable may not share its name with a zero-arity
		// function: calls and reads would be indistinguishable.
		if scope.IsGlobal() {
			for _, fn := range a.overloads[name] {
				if len(fn.Node.Parameters.Parameters) == 0 {
					return semErrorf(errors.KindUndefinedFunction,
						"invalid redeclaration of '%s'", name).WithMarkers(pattern.Name.Token)
				}
			}
		}

		scope.Variables[name] = decl
		if function != nil {
			function.Variables[decl.ID] = decl
		}
	}
	return nil
}

// analyzeAssignment handles `name = expr`.
func (a *Analyzer) analyzeAssignment(stmt *ast.AssignmentStatement, scope *BlockScope) error {
	variable := scope.Lookup(stmt.Target.Name)
	if variable == nil {
		return semErrorf(errors.KindUndefinedVariable,
			"cannot find '%s' in scope", stmt.Target.Name).WithMarkers(stmt.Target.Token)
	}

	if variable.IsConstant && variable.IsInitialized {
		return semErrorf(errors.KindSemanticOther,
			"cannot assign to constant '%s'", stmt.Target.Name).WithMarkers(stmt.Target.Token)
	}

	typ, err := a.resolveExpression(stmt.Value, scope, variable.Type)
	if err != nil {
		return err
	}
	if !typ.AssignableTo(variable.Type) {
		return semErrorf(errors.KindTypeIncompatibility,
			"cannot convert value of type '%s' to specified type '%s'", typ, variable.Type).
			WithMarkers(stmt.Target.Token)
	}

	// Initialisation inside a nested branch must not leak out: the flag is
	// raised only when the variable belongs to this very scope.
	if _, sameScope := scope.Variables[variable.Name]; sameScope {
		variable.IsInitialized = true
	}
	variable.IsUsed = true
	stmt.Target.ID = variable.ID
	return nil
}

// analyzeCondition validates the test of an if/while statement. For an
// optional binding it synthesises the unwrapped shadow variable in the body
// scope; for a plain expression it requires a Bool result.
func (a *Analyzer) analyzeCondition(test ast.Expression, scope, bodyScope *BlockScope) error {
	binding, ok := test.(*ast.OptionalBindingCondition)
	if !ok {
		typ, err := a.resolveExpression(test, scope, types.Bool)
		if err != nil {
			return err
		}
		if typ.Primitive != types.PrimitiveBool {
			return formatBooleanTestError(typ)
		}
		return nil
	}

	outer := scope.Lookup(binding.Name.Name)
	if outer == nil {
		return semErrorf(errors.KindUndefinedVariable,
			"cannot find '%s' in scope", binding.Name.Name).WithMarkers(binding.Name.Token)
	}
	if !outer.Type.Nullable {
		return semErrorf(errors.KindSemanticOther,
			"initializer for conditional binding must have Optional type, not '%s'", outer.Type).
			WithMarkers(binding.Name.Token)
	}

	shadow := a.newVariableDeclaration(nil, true, outer.Type.NonNullable(), outer.Name, false, true)
	bodyScope.Variables[shadow.Name] = shadow
	if fn := scope.NearestFunction(); fn != nil {
		fn.Variables[shadow.ID] = shadow
	}

	binding.Name.ID = shadow.ID
	binding.FromID = outer.ID
	outer.IsUsed = true
	return nil
}

// analyzeIf handles an if statement and its else-if chain.
func (a *Analyzer) analyzeIf(stmt *ast.IfStatement, scope *BlockScope) error {
	for {
		if err := a.analyzeCondition(stmt.Test, scope, a.scopes[stmt.Consequent]); err != nil {
			return err
		}
		stmt.ID = a.nextID()

		if err := a.analyzeBlock(stmt.Consequent); err != nil {
			return err
		}

		switch alt := stmt.Alternate.(type) {
		case nil:
			return nil
		case *ast.Block:
			return a.analyzeBlock(alt)
		case *ast.IfStatement:
			stmt = alt
		default:
			return errors.Newf(errors.KindInternal, "invalid alternate of type %T", stmt.Alternate)
		}
	}
}

// analyzeWhile handles a while statement.
func (a *Analyzer) analyzeWhile(stmt *ast.WhileStatement, scope *BlockScope) error {
	if err := a.analyzeCondition(stmt.Test, scope, a.scopes[stmt.Body]); err != nil {
		return err
	}
	stmt.ID = a.nextID()
	return a.analyzeBlock(stmt.Body)
}

// analyzeFor handles a for-in statement over an integer range.
func (a *Analyzer) analyzeFor(stmt *ast.ForStatement, scope *BlockScope) error {
	startType, err := a.resolveExpression(stmt.Range.Start, scope, types.Int)
	if err != nil {
		return err
	}
	endType, err := a.resolveExpression(stmt.Range.End, scope, types.Int)
	if err != nil {
		return err
	}

	if !startType.AssignableTo(types.Int) || !endType.AssignableTo(types.Int) {
		bad := startType
		if startType.AssignableTo(types.Int) {
			bad = endType
		}
		return semErrorf(errors.KindTypeIncompatibility,
			"cannot convert value of type '%s' to specified type '%s'", bad, types.Int).
			WithMarkers(stmt.Range.Token)
	}

	iterator := a.newVariableDeclaration(nil, true, types.Int, stmt.Iterator.Name, false, true)
	a.scopes[stmt.Body].Variables[iterator.Name] = iterator

	// The upper bound is evaluated once into a synthetic variable so the
	// loop re-tests against a stable value.
	bound := a.newVariableDeclaration(nil, true, types.Int, "", false, true)
	stmt.Range.EndID = bound.ID

	if fn := scope.NearestFunction(); fn != nil {
		fn.Variables[iterator.ID] = iterator
		fn.Variables[bound.ID] = bound
	}

	stmt.Iterator.ID = iterator.ID
	stmt.IteratorID = iterator.ID
	stmt.ID = a.nextID()

	return a.analyzeBlock(stmt.Body)
}

// analyzeFunctionDeclaration analyses a function body; the declaration
// itself was registered during pre-collection.
func (a *Analyzer) analyzeFunctionDeclaration(stmt *ast.FunctionDeclaration, scope *BlockScope) error {
	if err := a.analyzeBlock(stmt.Body); err != nil {
		return err
	}

	decl := a.FunctionByID(stmt.ID)
	if decl == nil {
		return errors.Newf(errors.KindInternal, "function '%s' was never collected", stmt.Name.Name)
	}

	// A zero-arity function may not share its name with a global variable.
	if len(stmt.Parameters.Parameters) == 0 {
		if variable := scope.Lookup(stmt.Name.Name); variable != nil {
			return semErrorf(errors.KindUndefinedFunction,
				"invalid redeclaration of '%s'", stmt.Name.Name).WithMarkers(stmt.Name.Token)
		}
	}

	if !decl.ReturnType.IsVoid() && !isReturnReachable(stmt.Body) {
		return semErrorf(errors.KindInvalidReturn,
			"missing return in global function expected to return '%s'", decl.ReturnType).
			WithMarkers(stmt.Name.Token)
	}
	return nil
}

// analyzeReturn handles a return statement against the nearest enclosing
// function.
func (a *Analyzer) analyzeReturn(stmt *ast.ReturnStatement, scope *BlockScope) error {
	function := scope.NearestFunction()
	if function == nil {
		return semErrorf(errors.KindSyntax, "return invalid outside of a func").
			WithMarkers(stmt.Token)
	}

	if !function.ReturnType.IsVoid() && stmt.Value == nil {
		return semErrorf(errors.KindInvalidReturn,
			"non-void function should return a value").WithMarkers(stmt.Token)
	}

	if stmt.Value != nil {
		typ, err := a.resolveExpression(stmt.Value, scope, function.ReturnType)
		if err != nil {
			return err
		}
		if !typ.AssignableTo(function.ReturnType) {
			if function.ReturnType.IsVoid() {
				return semErrorf(errors.KindInvalidReturn,
					"unexpected non-void return value in void function").WithMarkers(stmt.Token)
			}
			return semErrorf(errors.KindInvalidCall,
				"cannot convert return value of type '%s' to return type '%s'",
				typ, function.ReturnType).WithMarkers(stmt.Token)
		}
	}

	stmt.FunctionID = function.ID
	function.IsUsed = true
	return nil
}

// analyzeLoopControl handles break and continue against the nearest
// enclosing loop.
func (a *Analyzer) analyzeLoopControl(stmt ast.Statement, scope *BlockScope) error {
	loop := scope.NearestLoop()

	keyword := "break"
	if _, ok := stmt.(*ast.ContinueStatement); ok {
		keyword = "continue"
	}
	if loop == nil {
		return semErrorf(errors.KindSyntax,
			"'%s' is only allowed inside a loop", keyword).WithMarkers(stmtToken(stmt))
	}

	loopID := 0
	switch l := loop.(type) {
	case *ast.WhileStatement:
		loopID = l.ID
	case *ast.ForStatement:
		loopID = l.ID
	}

	switch s := stmt.(type) {
	case *ast.BreakStatement:
		s.LoopID = loopID
	case *ast.ContinueStatement:
		s.LoopID = loopID
	}
	return nil
}

func stmtToken(stmt ast.Statement) token.Token {
	switch s := stmt.(type) {
	case *ast.BreakStatement:
		return s.Token
	case *ast.ContinueStatement:
		return s.Token
	}
	return token.Token{}
}
