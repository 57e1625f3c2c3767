package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/types"
)

// collectFunctionDeclarations pre-registers every top-level function before
// statement analysis so that calls may precede declarations textually. For
// each function it assigns an id, resolves the return type, registers the
// parameters as local variables of the body scope and appends the
// declaration to the overload list under its name.
func (a *Analyzer) collectFunctionDeclarations() error {
	for _, stmt := range a.program.Block.Statements {
		node, ok := stmt.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}

		decl := a.newFunctionDeclaration(node)
		node.ID = decl.ID
		node.Name.ID = decl.ID

		bodyScope := a.scopes[node.Body]
		bodyScope.Function = decl

		if node.ReturnType != nil {
			if err := a.resolveTypeReference(node.ReturnType); err != nil {
				return err
			}
			decl.ReturnType = node.ReturnType.Type
		} else {
			decl.ReturnType = types.Void
		}

		if err := a.registerParameters(decl, bodyScope); err != nil {
			return err
		}

		if err := a.registerOverload(decl); err != nil {
			return err
		}
	}
	return nil
}

// registerParameters validates the parameters of one function and declares
// each as an initialised constant local of the body scope.
func (a *Analyzer) registerParameters(decl *FunctionDeclaration, bodyScope *BlockScope) error {
	for _, param := range decl.Node.Parameters.Parameters {
		name := param.InternalName.Name

		if param.ExternalLabel == nil && !param.Labeless {
			return errors.Newf(errors.KindSyntax,
				"external parameter name missing in parameter '%s'", name).
				WithMarkers(param.Token)
		}
		if param.ExternalLabel != nil && param.ExternalLabel.Name == name {
			return errors.Newf(errors.KindSemanticOther,
				"parameter name same as external label '%s'", name).
				WithMarkers(param.Token)
		}
		if err := a.resolveTypeReference(param.Type); err != nil {
			return err
		}

		if _, exists := bodyScope.Variables[name]; exists {
			return errors.Newf(errors.KindSemanticOther,
				"invalid redeclaration of '%s'", name).
				WithMarkers(param.InternalName.Token)
		}

		variable := a.newVariableDeclaration(nil, true, param.Type.Type, name, false, true)
		param.InternalName.ID = variable.ID
		bodyScope.Variables[name] = variable
		decl.Variables[variable.ID] = variable

		// A default value only has to type-check; arity matching never
		// exercises it.
		if param.Initializer != nil {
			typ, err := a.resolveExpression(param.Initializer, bodyScope, param.Type.Type)
			if err != nil {
				return err
			}
			if !typ.AssignableTo(param.Type.Type) {
				return semErrorf(errors.KindInvalidCall,
					"default value of type '%s' cannot be converted to parameter type '%s'",
					typ, param.Type.Type).WithMarkers(param.Token)
			}
		}
	}
	return nil
}

// registerOverload appends a function to the overload list under its name,
// rejecting an exact redeclaration: same arity, same external labels, same
// parameter types and same return type.
func (a *Analyzer) registerOverload(decl *FunctionDeclaration) error {
	name := decl.Name()
	existing := a.overloads[name]

	params := decl.Node.Parameters.Parameters
	for _, overload := range existing {
		otherParams := overload.Node.Parameters.Parameters
		if len(otherParams) != len(params) {
			continue
		}
		if !overload.ReturnType.Equal(decl.ReturnType) {
			continue
		}

		matching := true
		for i, param := range params {
			other := otherParams[i]
			if !param.Type.Type.Equal(other.Type.Type) || externalLabel(param) != externalLabel(other) {
				matching = false
				break
			}
		}

		if matching {
			return errors.Newf(errors.KindUndefinedFunction,
				"invalid redeclaration of '%s'", name).
				WithMarkers(decl.Node.Name.Token)
		}
	}

	a.overloads[name] = append(existing, decl)
	return nil
}

// externalLabel returns the label a call site must spell for a parameter,
// or the empty string for a labeless one.
func externalLabel(param *ast.Parameter) string {
	if param.Labeless {
		return ""
	}
	if param.ExternalLabel != nil {
		return param.ExternalLabel.Name
	}
	return param.InternalName.Name
}
