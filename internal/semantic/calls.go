package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/types"
)

// resolveFunctionCall resolves the callee among the overloads registered
// under its name and validates labels, arity and argument types. With more
// than one overload the candidates are filtered by argument compatibility
// first and by the preferred return type second; several survivors mean the
// call is ambiguous.
func (a *Analyzer) resolveFunctionCall(call *ast.FunctionCall, scope *BlockScope, preferred types.ValueType) (types.ValueType, error) {
	if call.Name.ID != 0 {
		decl := a.FunctionByID(call.Name.ID)
		if decl == nil {
			return types.Invalid, errors.Newf(errors.KindInternal,
				"call of '%s' bound to unknown id %d", call.Name.Name, call.Name.ID)
		}
		return decl.ReturnType, nil
	}

	name := call.Name.Name

	// Inside a function a local variable shadows the function namespace.
	if !scope.IsGlobal() {
		if variable := scope.Lookup(name); variable != nil {
			return types.Invalid, semErrorf(errors.KindInvalidCall,
				"cannot call value of non-function type '%s'", variable.Type).
				WithMarkers(call.Name.Token)
		}
	}

	overloads := a.overloads[name]
	if len(overloads) == 0 {
		return types.Invalid, semErrorf(errors.KindUndefinedFunction,
			"cannot find '%s' in scope", name).WithMarkers(call.Name.Token)
	}

	var decl *FunctionDeclaration
	ambiguous := false

	if len(overloads) > 1 {
		candidates, err := a.resolveOverloadCandidates(call, scope, overloads)
		if err != nil {
			return types.Invalid, err
		}
		for _, candidate := range candidates {
			if preferred.IsUnknown() || preferred.Equal(candidate.ReturnType) ||
				candidate.ReturnType.AssignableTo(preferred) {
				if decl != nil {
					ambiguous = true
					break
				}
				decl = candidate
			}
		}
	} else {
		decl = overloads[0]
	}

	// The built-in write is variadic over every scalar type, nullable or
	// not, and returns Void.
	if decl != nil && decl.BuiltIn() == ast.BuiltInWrite {
		return a.resolveWriteCall(call, scope, decl)
	}

	if decl == nil {
		return types.Invalid, semErrorf(errors.KindUndefinedFunction,
			"no exact matches in call to global function '%s'", name).
			WithMarkers(call.Name.Token)
	}
	if ambiguous {
		return types.Invalid, semErrorf(errors.KindSemanticOther,
			"ambiguous use of '%s'", name).WithMarkers(call.Name.Token)
	}

	if err := a.checkCallArguments(call, scope, decl); err != nil {
		return types.Invalid, err
	}

	call.Name.ID = decl.ID
	decl.IsUsed = true
	call.Type = decl.ReturnType
	return decl.ReturnType, nil
}

// resolveWriteCall accepts any number of scalar arguments.
func (a *Analyzer) resolveWriteCall(call *ast.FunctionCall, scope *BlockScope, decl *FunctionDeclaration) (types.ValueType, error) {
	for _, arg := range call.Arguments.Arguments {
		if arg.Label != nil {
			return types.Invalid, semErrorf(errors.KindSemanticOther,
				"extraneous argument label '%s:' in call", arg.Label.Name).
				WithMarkers(arg.Label.Token)
		}
		typ, err := a.resolveExpression(arg.Value, scope, types.Unknown)
		if err != nil {
			return types.Invalid, err
		}
		if !typ.IsScalar() && !typ.IsNil() {
			return types.Invalid, semErrorf(errors.KindInvalidCall,
				"cannot convert value of type '%s' to expected argument type 'Int? | Double? | String? | Bool?'",
				typ).WithMarkers(call.Name.Token)
		}
	}

	call.Name.ID = decl.ID
	decl.IsUsed = true
	call.Type = decl.ReturnType
	return decl.ReturnType, nil
}

// resolveOverloadCandidates returns every overload whose arity, labels and
// argument types accept the call. Argument expressions are resolved
// speculatively with each candidate's parameter type as the context;
// literal promotions performed here are rolled back by the next resolution.
func (a *Analyzer) resolveOverloadCandidates(call *ast.FunctionCall, scope *BlockScope, overloads []*FunctionDeclaration) ([]*FunctionDeclaration, error) {
	arguments := call.Arguments.Arguments
	var candidates []*FunctionDeclaration

	for _, overload := range overloads {
		parameters := overload.Node.Parameters.Parameters
		if len(parameters) != len(arguments) {
			continue
		}

		matched := true
		for i, param := range parameters {
			argument := arguments[i]

			if param.Labeless && argument.Label != nil {
				matched = false
				break
			}
			if !param.Labeless &&
				(argument.Label == nil || argument.Label.Name != externalLabel(param)) {
				matched = false
				break
			}

			argType, err := a.resolveExpression(argument.Value, scope, param.Type.Type)
			if err != nil {
				return nil, err
			}
			if !argType.AssignableTo(param.Type.Type) {
				matched = false
				break
			}
		}

		if matched {
			candidates = append(candidates, overload)
		}
	}
	return candidates, nil
}

// checkCallArguments validates the call against the selected overload:
// matching arity, exact labels and assignable argument types. Arguments are
// re-resolved with the final parameter types so that any speculative
// literal promotion from the candidate walk settles on the right value.
func (a *Analyzer) checkCallArguments(call *ast.FunctionCall, scope *BlockScope, decl *FunctionDeclaration) error {
	arguments := call.Arguments.Arguments
	parameters := decl.Node.Parameters.Parameters

	if len(arguments) < len(parameters) {
		param := parameters[len(arguments)]
		return semErrorf(errors.KindInvalidCall,
			"missing argument for parameter '%s' in call", externalOrInternalName(param)).
			WithMarkers(call.Name.Token)
	}
	if len(arguments) > len(parameters) {
		return semErrorf(errors.KindInvalidCall, "extra argument in call").
			WithMarkers(arguments[len(parameters)].Token)
	}

	for i, param := range parameters {
		argument := arguments[i]

		if param.Labeless && argument.Label != nil {
			return semErrorf(errors.KindSemanticOther,
				"extraneous argument label '%s:' in call", argument.Label.Name).
				WithMarkers(argument.Label.Token)
		}
		if !param.Labeless && argument.Label == nil {
			return semErrorf(errors.KindSemanticOther,
				"missing argument label '%s:' in call", externalOrInternalName(param)).
				WithMarkers(argument.Token)
		}
		if !param.Labeless && argument.Label.Name != externalLabel(param) {
			return semErrorf(errors.KindSemanticOther,
				"incorrect argument label in call (have '%s', expected '%s')",
				argument.Label.Name, externalLabel(param)).
				WithMarkers(argument.Label.Token)
		}

		argType, err := a.resolveExpression(argument.Value, scope, param.Type.Type)
		if err != nil {
			return err
		}
		if !argType.AssignableTo(param.Type.Type) {
			return semErrorf(errors.KindInvalidCall,
				"cannot convert value of type '%s' to expected argument type '%s'",
				argType, param.Type.Type).WithMarkers(argument.Token)
		}
	}
	return nil
}

// externalOrInternalName names a parameter in diagnostics.
func externalOrInternalName(param *ast.Parameter) string {
	if label := externalLabel(param); label != "" {
		return label
	}
	return param.InternalName.Name
}
