package parser

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// parseVariableDeclaration parses `('let'|'var') Declarator (',' Declarator)*`.
func (p *Parser) parseVariableDeclaration() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}

	list := &ast.VariableDeclarationList{Token: kw}
	for {
		decl, err := p.parseVariableDeclarator()
		if err != nil {
			return nil, err
		}
		list.Declarators = append(list.Declarators, decl)

		sep, err := p.peek(1)
		if err != nil {
			return nil, err
		}
		if sep.Type != token.COMMA {
			break
		}
		p.next()
	}

	return &ast.VariableDeclaration{
		Token:       kw,
		IsConstant:  kw.Type == token.LET,
		Declarators: list,
	}, nil
}

// parseVariableDeclarator parses `Ident [ ':' TypeRef ] [ '=' Expr ]`.
func (p *Parser) parseVariableDeclarator() (*ast.VariableDeclarator, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	pattern := &ast.Pattern{Token: name.Token, Name: name}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.COLON {
		p.next()
		ref, err := p.parseTypeReference()
		if err != nil {
			return nil, err
		}
		pattern.Type = ref
	}

	decl := &ast.VariableDeclarator{Token: name.Token, Pattern: pattern}

	tok, err = p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.ASSIGN {
		p.next()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		decl.Initializer = init
	}
	return decl, nil
}

// parseFunctionDeclaration parses
// `'func' Ident '(' [ Params ] ')' [ '->' TypeRef ] Block`.
func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}

	fn := &ast.FunctionDeclaration{Token: kw, Name: name, Parameters: params}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.ARROW {
		p.next()
		ret, err := p.parseTypeReference()
		if err != nil {
			return nil, err
		}
		fn.ReturnType = ret
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// parseParameterList parses `'(' [ Param (',' Param)* ] ')'`.
func (p *Parser) parseParameterList() (*ast.ParameterList, error) {
	open, err := p.expect(token.LPAREN, "expected '(' after function name")
	if err != nil {
		return nil, err
	}
	list := &ast.ParameterList{Token: open}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.RPAREN {
		p.next()
		return list, nil
	}

	for {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		list.Parameters = append(list.Parameters, param)

		sep, err := p.next()
		if err != nil {
			return nil, err
		}
		switch sep.Type {
		case token.COMMA:
			continue
		case token.RPAREN:
			return list, nil
		default:
			return nil, p.fail("expected ',' or ')' in parameter list", sep)
		}
	}
}

// parseParameter parses `[ ExtLabel ] IntLabel ':' TypeRef [ '=' Expr ]`.
// A single name becomes the internal name only and leaves the external label
// unset (the analyser rejects such a parameter); '_' as the external label
// makes the parameter labeless.
func (p *Parser) parseParameter() (*ast.Parameter, error) {
	first, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	param := &ast.Parameter{Token: first.Token}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.IDENT {
		second, _ := p.parseIdentifier()
		if first.Name == "_" {
			param.Labeless = true
		} else {
			param.ExternalLabel = first
		}
		param.InternalName = second
	} else {
		if first.Name == "_" {
			return nil, p.fail("expected an internal parameter name after '_'", tok)
		}
		param.InternalName = first
	}

	if _, err := p.expect(token.COLON, "expected ':' before parameter type"); err != nil {
		return nil, err
	}
	ref, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}
	param.Type = ref

	tok, err = p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.ASSIGN {
		p.next()
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		param.Initializer = init
	}
	return param, nil
}

// parseArgumentList parses `'(' [ Arg (',' Arg)* ] ')'` where
// `Arg = [ Label ':' ] Expr`.
func (p *Parser) parseArgumentList() (*ast.ArgumentList, error) {
	open, err := p.expect(token.LPAREN, "expected '(' in function call")
	if err != nil {
		return nil, err
	}
	list := &ast.ArgumentList{Token: open}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.RPAREN {
		p.next()
		return list, nil
	}

	for {
		arg := &ast.Argument{}

		first, err := p.peek(1)
		if err != nil {
			return nil, err
		}
		second, err := p.peek(2)
		if err != nil {
			return nil, err
		}
		arg.Token = first
		if first.Type == token.IDENT && second.Type == token.COLON {
			label, _ := p.parseIdentifier()
			p.next() // ':'
			arg.Label = label
		}

		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		arg.Value = value
		list.Arguments = append(list.Arguments, arg)

		sep, err := p.next()
		if err != nil {
			return nil, err
		}
		switch sep.Type {
		case token.COMMA:
			continue
		case token.RPAREN:
			return list, nil
		default:
			return nil, p.fail("expected ',' or ')' in argument list", sep)
		}
	}
}
