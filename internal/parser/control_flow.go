package parser

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// parseCondition parses the test of an if/while statement: either an
// optional-binding condition `let name` or a plain expression.
func (p *Parser) parseCondition() (ast.Expression, error) {
	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type != token.LET {
		return p.parseExpression()
	}

	kw, _ := p.next()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	// An optional binding admits no type annotation and no initializer.
	after, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	switch after.Type {
	case token.COLON:
		return nil, p.fail("an optional binding condition cannot carry a type annotation", after)
	case token.ASSIGN:
		return nil, p.fail("an optional binding condition cannot carry an initializer", after)
	}

	return &ast.OptionalBindingCondition{Token: kw, Name: name}, nil
}

// parseIfStatement parses `'if' Test Block [ 'else' (IfStmt | Block) ]`.
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{Token: kw, Test: test, Consequent: consequent}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type != token.ELSE {
		return stmt, nil
	}
	p.next()

	tok, err = p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Type == token.IF {
		alternate, err := p.parseIfStatement()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alternate
	} else {
		alternate, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Alternate = alternate
	}
	return stmt, nil
}

// parseWhileStatement parses `'while' Test Block`.
func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	test, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: kw, Test: test, Body: body}, nil
}

// parseForStatement parses
// `'for' Ident 'in' Expr ('...'|'..<') Expr Block`.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	iterator, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN, "expected 'in' in for statement"); err != nil {
		return nil, err
	}

	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	op, err := p.next()
	if err != nil {
		return nil, err
	}
	if op.Type != token.RANGE && op.Type != token.HALF_OPEN_RANGE {
		return nil, p.fail("expected '...' or '..<' in for statement range", op)
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForStatement{
		Token:    kw,
		Iterator: iterator,
		Range:    &ast.Range{Token: op, Start: start, End: end, HalfOpen: op.Type == token.HALF_OPEN_RANGE},
		Body:     body,
	}, nil
}

// parseReturnStatement parses `'return' [ Expr ]`. The value, when present,
// must start on the same line as the keyword; anything on the next line is
// the following statement.
func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	kw, err := p.next()
	if err != nil {
		return nil, err
	}
	stmt := &ast.ReturnStatement{Token: kw}

	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	if tok.Whitespace.HasLeftNewline() || !canStartExpression(tok.Type) {
		return stmt, nil
	}

	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Value = value
	return stmt, nil
}

// canStartExpression reports whether a token type may open an expression.
func canStartExpression(typ token.Type) bool {
	switch typ {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.BOOL, token.NIL,
		token.LPAREN, token.BANG:
		return true
	}
	return false
}
