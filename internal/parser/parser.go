// Package parser builds the IFJ23 AST: a recursive-descent parser for
// statements and declarations combined with an operator-precedence parser
// for expressions.
//
// The parser is whitespace-sensitive: two consecutive statements must be
// separated by at least one newline (a semicolon is a syntax error), and the
// expression and type parsers also read adjacency (a postfix '!' and a
// call's '(' must hug the preceding operand, a '?' must hug its type name).
// These checks read the whitespace profile the lexer recorded on each token.
package parser

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/errors"
	"github.com/tskoda/go-swiftc/internal/lexer"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// Parser consumes the lexer's cached token stream and produces a Program.
// The first error aborts parsing; there is no recovery.
type Parser struct {
	lexer *lexer.Lexer
}

// New creates a Parser over a lexer.
func New(l *lexer.Lexer) *Parser {
	return &Parser{lexer: l}
}

// ParseProgram parses the whole input as the global block.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	first, err := p.peek(1)
	if err != nil {
		return nil, err
	}

	block := &ast.Block{Token: first}
	if err := p.parseStatementList(block, token.EOF); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EOF, "expected end of input"); err != nil {
		return nil, err
	}
	return &ast.Program{Block: block}, nil
}

// ============================================================================
// Token access
// ============================================================================

func (p *Parser) next() (token.Token, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, err
	}
	return tok, nil
}

func (p *Parser) peek(offset int) (token.Token, error) {
	return p.lexer.Peek(offset)
}

// expect consumes the next token and checks its type, failing with the
// given message otherwise.
func (p *Parser) expect(typ token.Type, message string) (token.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Type != typ {
		return tok, p.fail(message, tok)
	}
	return tok, nil
}

func (p *Parser) fail(message string, markers ...token.Token) error {
	return errors.New(errors.KindSyntax, message, markers...)
}

// ============================================================================
// Blocks and statement dispatch
// ============================================================================

// parseBlock parses a braced statement list.
func (p *Parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(token.LBRACE, "expected '{'")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Token: open}
	if err := p.parseStatementList(block, token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseStatementList fills a block until the terminator token, enforcing
// newline separation between consecutive statements.
func (p *Parser) parseStatementList(block *ast.Block, terminator token.Type) error {
	for {
		tok, err := p.peek(1)
		if err != nil {
			return err
		}
		if tok.Type == terminator || tok.Type == token.EOF {
			return nil
		}
		if len(block.Statements) > 0 && !tok.Whitespace.HasLeftNewline() {
			return p.fail("consecutive statements must be separated by a newline", tok)
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

// parseStatement dispatches on the first token of a statement.
func (p *Parser) parseStatement() (ast.Statement, error) {
	tok, err := p.peek(1)
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case token.FUNC:
		return p.parseFunctionDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		brk, _ := p.next()
		return &ast.BreakStatement{Token: brk}, nil
	case token.CONTINUE:
		cont, _ := p.next()
		return &ast.ContinueStatement{Token: cont}, nil
	case token.LET, token.VAR:
		return p.parseVariableDeclaration()
	case token.IDENT:
		return p.parseIdentifierStatement()
	case token.SEMICOLON:
		return nil, p.fail("statements cannot be separated by ';'", tok)
	default:
		return nil, p.fail("expected a statement", tok)
	}
}

// parseIdentifierStatement handles statements opening with an identifier:
// an assignment or a function call in statement position.
func (p *Parser) parseIdentifierStatement() (ast.Statement, error) {
	after, err := p.peek(2)
	if err != nil {
		return nil, err
	}

	switch after.Type {
	case token.ASSIGN:
		return p.parseAssignment()
	case token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.MULT_ASSIGN, token.DIV_ASSIGN,
		token.MOD_ASSIGN, token.BIT_AND_ASSIGN, token.BIT_OR_ASSIGN, token.BIT_XOR_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN:
		return nil, p.fail("compound assignment operators are not supported", after)
	case token.INCREMENT, token.DECREMENT:
		return nil, p.fail("increment and decrement operators are not supported", after)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.FunctionCall)
	if !ok {
		first, _ := p.peek(0)
		return nil, p.fail("only function calls may stand as expression statements", first)
	}
	return &ast.ExpressionStatement{Token: call.Token, Expression: call}, nil
}

// parseAssignment parses `Ident = Expr`.
func (p *Parser) parseAssignment() (ast.Statement, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	assign, err := p.expect(token.ASSIGN, "expected '=' in assignment")
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.AssignmentStatement{Token: assign, Target: name, Value: value}, nil
}

// parseIdentifier consumes one IDENT token.
func (p *Parser) parseIdentifier() (*ast.Identifier, error) {
	tok, err := p.expect(token.IDENT, "expected an identifier")
	if err != nil {
		return nil, err
	}
	return &ast.Identifier{Token: tok, Name: tok.Value.String}, nil
}

// parseTypeReference parses `Ident [ '?' ]`.
func (p *Parser) parseTypeReference() (*ast.TypeReference, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	ref := &ast.TypeReference{Token: name.Token, Name: name}

	q, err := p.peek(1)
	if err != nil {
		return nil, err
	}
	// The '?' must hug the type name; detached it belongs to an expression.
	if q.Type == token.QUESTION && !q.Whitespace.HasLeft() {
		p.next()
		ref.Nullable = true
	}
	return ref, nil
}
