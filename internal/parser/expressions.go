package parser

import (
	"github.com/tskoda/go-swiftc/internal/ast"
	"github.com/tskoda/go-swiftc/internal/types"
	"github.com/tskoda/go-swiftc/pkg/token"
)

// ============================================================================
// Operator-precedence expression parser
// ============================================================================

// precIndex classifies a token into the precedence-table alphabet.
type precIndex int

const (
	iAdd      precIndex = iota // + -
	iMul                       // * /
	iUnwrap                    // postfix !
	iCoalesce                  // ??
	iRel                       // == != < > <= >=
	iOperand                   // identifier or literal
	iLParen                    // (
	iRParen                    // )
	iNot                       // prefix !
	iAnd                       // &&
	iOr                        // ||
	iDollar                    // anything that cannot extend an expression
)

// action is one cell of the precedence table.
type action byte

const (
	aS action = iota // shift
	aR               // reduce
	aE               // equal: push without a reduction marker ('(' vs ')')
	aX               // error / accept boundary
)

// precedenceTable maps (stack-top terminal, input terminal) to an action.
// Binding strength, tightest first: postfix '!', prefix '!', '*' '/',
// '+' '-', relational (non-associative), '??' (right-associative), '&&',
// '||'.
var precedenceTable = [12][12]action{
	//           +-  */  x!  ??  rel  i   (   )   !x  &&  ||  $
	iAdd:      {aR, aS, aS, aR, aR, aS, aS, aR, aS, aR, aR, aR},
	iMul:      {aR, aR, aS, aR, aR, aS, aS, aR, aS, aR, aR, aR},
	iUnwrap:   {aR, aR, aX, aR, aR, aX, aX, aR, aX, aR, aR, aR},
	iCoalesce: {aS, aS, aS, aS, aS, aS, aS, aR, aS, aR, aR, aR},
	iRel:      {aS, aS, aS, aR, aX, aS, aS, aR, aS, aR, aR, aR},
	iOperand:  {aR, aR, aR, aR, aR, aX, aX, aR, aX, aR, aR, aR},
	iLParen:   {aS, aS, aS, aS, aS, aS, aS, aE, aS, aS, aS, aX},
	iRParen:   {aR, aR, aR, aR, aR, aX, aX, aR, aX, aR, aR, aR},
	iNot:      {aR, aR, aS, aR, aR, aS, aS, aR, aS, aR, aR, aR},
	iAnd:      {aS, aS, aS, aS, aS, aS, aS, aR, aS, aR, aR, aR},
	iOr:       {aS, aS, aS, aS, aS, aS, aS, aR, aS, aS, aR, aR},
	iDollar:   {aS, aS, aS, aS, aS, aS, aS, aX, aS, aS, aS, aX},
}

// stackItemKind discriminates the four flavours of parse-stack items.
type stackItemKind int

const (
	itemBottom stackItemKind = iota
	itemStop                 // reduction boundary marker
	itemTerminal
	itemNonTerminal
)

type stackItem struct {
	kind stackItemKind
	tok  token.Token
	idx  precIndex
	node ast.Expression
}

// parseExpression runs the precedence machine until the lookahead can no
// longer extend the expression. The terminating token is not consumed.
func (p *Parser) parseExpression() (ast.Expression, error) {
	stack := []*stackItem{{kind: itemBottom}}

	for {
		cur, err := p.peek(1)
		if err != nil {
			return nil, err
		}

		complete := expressionComplete(stack)
		topIdx := topTerminalIndex(stack)
		curIdx := classify(cur, complete)

		act := precedenceTable[topIdx][curIdx]

		if act == aX {
			// The machine accepts exactly when one finished expression sits
			// on the bottom marker; the lookahead stays in the stream.
			if len(stack) == 2 && stack[1].kind == itemNonTerminal {
				return stack[1].node, nil
			}
			if curIdx == iDollar {
				return nil, p.fail("expected an expression", cur)
			}
			return nil, p.fail("unexpected token in expression", cur)
		}

		switch act {
		case aS:
			if curIdx == iOperand {
				// Operands shift as terminals carrying their finished node;
				// calls and interpolations arrive pre-assembled.
				node, err := p.parseOperand(cur)
				if err != nil {
					return nil, err
				}
				pushAfterTopTerminal(&stack, &stackItem{kind: itemStop})
				stack = append(stack, &stackItem{kind: itemTerminal, tok: cur, idx: iOperand, node: node})
				continue
			}
			p.next()
			pushAfterTopTerminal(&stack, &stackItem{kind: itemStop})
			stack = append(stack, &stackItem{kind: itemTerminal, tok: cur, idx: curIdx})

		case aE:
			p.next()
			stack = append(stack, &stackItem{kind: itemTerminal, tok: cur, idx: curIdx})

		case aR:
			node, err := p.reduce(&stack, cur)
			if err != nil {
				return nil, err
			}
			stack = append(stack, &stackItem{kind: itemNonTerminal, node: node})
		}
	}
}

// expressionComplete reports whether the item on top of the stack already
// ends an operand; it decides whether a '!' is the postfix unwrap and
// whether an operand on a fresh line starts the next statement instead.
func expressionComplete(stack []*stackItem) bool {
	top := stack[len(stack)-1]
	switch top.kind {
	case itemNonTerminal:
		return true
	case itemTerminal:
		return top.idx == iOperand || top.idx == iRParen || top.idx == iUnwrap
	}
	return false
}

// topTerminalIndex finds the topmost terminal (or bottom) on the stack.
func topTerminalIndex(stack []*stackItem) precIndex {
	for i := len(stack) - 1; i >= 0; i-- {
		switch stack[i].kind {
		case itemTerminal:
			return stack[i].idx
		case itemBottom:
			return iDollar
		}
	}
	return iDollar
}

// pushAfterTopTerminal inserts a reduction marker directly above the
// topmost terminal (or the bottom), below any nonterminal resting on it.
func pushAfterTopTerminal(stack *[]*stackItem, stop *stackItem) {
	s := *stack
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].kind == itemTerminal || s[i].kind == itemBottom {
			s = append(s, nil)
			copy(s[i+2:], s[i+1:])
			s[i+1] = stop
			*stack = s
			return
		}
	}
}

// classify maps a lookahead token onto the precedence alphabet. Tokens that
// cannot extend an expression map to the end sentinel, as does an operand
// that starts on a fresh line once an expression is already complete (it
// belongs to the next statement).
func classify(tok token.Token, complete bool) precIndex {
	switch tok.Type {
	case token.PLUS, token.MINUS:
		return iAdd
	case token.STAR, token.SLASH:
		return iMul
	case token.COALESCE:
		return iCoalesce
	case token.EQ, token.NOT_EQ, token.LESS, token.GREATER, token.LESS_EQ, token.GREATER_EQ:
		return iRel
	case token.AND:
		return iAnd
	case token.OR:
		return iOr
	case token.BANG:
		if complete && !tok.Whitespace.HasLeft() {
			return iUnwrap
		}
		if complete && tok.Whitespace.HasLeftNewline() {
			return iDollar
		}
		return iNot
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.BOOL, token.NIL:
		if complete && tok.Whitespace.HasLeftNewline() {
			return iDollar
		}
		return iOperand
	case token.LPAREN:
		if complete && tok.Whitespace.HasLeftNewline() {
			return iDollar
		}
		return iLParen
	case token.RPAREN:
		return iRParen
	default:
		return iDollar
	}
}

// ============================================================================
// Operands
// ============================================================================

// parseOperand consumes one operand: an identifier, a literal, a function
// call (an identifier hugged by an argument list) or an interpolated
// string (a STRING token followed by a STRING_HEAD marker).
func (p *Parser) parseOperand(cur token.Token) (ast.Expression, error) {
	after, err := p.peek(2)
	if err != nil {
		return nil, err
	}

	if cur.Type == token.IDENT && after.Type == token.LPAREN && !after.Whitespace.HasLeft() {
		return p.parseFunctionCall()
	}
	if cur.Type == token.STRING && after.Type == token.STRING_HEAD {
		return p.parseInterpolation()
	}

	p.next()
	switch cur.Type {
	case token.IDENT:
		return &ast.Identifier{Token: cur, Name: cur.Value.String}, nil
	case token.INT:
		return newLiteral(cur, types.Int), nil
	case token.FLOAT:
		return newLiteral(cur, types.Double), nil
	case token.BOOL:
		return newLiteral(cur, types.Bool), nil
	case token.STRING:
		return newLiteral(cur, types.String), nil
	case token.NIL:
		return newLiteral(cur, types.Nil), nil
	}
	return nil, p.fail("expected an expression", cur)
}

func newLiteral(tok token.Token, typ types.ValueType) *ast.LiteralExpression {
	return &ast.LiteralExpression{
		Token:    tok,
		Value:    tok.Value,
		Type:     typ,
		Original: ast.LiteralOrigin{Value: tok.Value, Type: typ},
	}
}

// parseFunctionCall parses `Ident ArgumentList` in expression position.
func (p *Parser) parseFunctionCall() (ast.Expression, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	args, err := p.parseArgumentList()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Token: name.Token, Name: name, Arguments: args}, nil
}

// parseInterpolation reconstructs one interpolated string from the token
// run STRING, HEAD, Expr, SPAN, STRING, HEAD, Expr, ..., TAIL, STRING.
func (p *Parser) parseInterpolation() (ast.Expression, error) {
	first, err := p.expect(token.STRING, "expected a string literal")
	if err != nil {
		return nil, err
	}

	node := &ast.InterpolationExpression{Token: first, Strings: []string{first.Value.String}}
	for {
		tok, err := p.peek(1)
		if err != nil {
			return nil, err
		}
		if tok.Type != token.STRING_HEAD {
			return node, nil
		}
		p.next() // HEAD

		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		node.Expressions = append(node.Expressions, expr)

		marker, err := p.next()
		if err != nil {
			return nil, err
		}
		if marker.Type != token.STRING_SPAN && marker.Type != token.STRING_TAIL {
			return nil, p.fail("malformed string interpolation", marker)
		}

		segment, err := p.expect(token.STRING, "malformed string interpolation")
		if err != nil {
			return nil, err
		}
		node.Strings = append(node.Strings, segment.Value.String)
	}
}

// ============================================================================
// Reductions
// ============================================================================

var binaryOperators = map[token.Type]ast.Operator{
	token.PLUS:       ast.OperatorPlus,
	token.MINUS:      ast.OperatorMinus,
	token.STAR:       ast.OperatorMul,
	token.SLASH:      ast.OperatorDiv,
	token.EQ:         ast.OperatorEqual,
	token.NOT_EQ:     ast.OperatorNotEqual,
	token.LESS:       ast.OperatorLess,
	token.GREATER:    ast.OperatorGreater,
	token.LESS_EQ:    ast.OperatorLessEqual,
	token.GREATER_EQ: ast.OperatorGreaterEqual,
	token.COALESCE:   ast.OperatorNilCoalescing,
	token.AND:        ast.OperatorAnd,
	token.OR:         ast.OperatorOr,
}

// reduce pops the handle above the most recent reduction marker and applies
// one reduction rule to it.
func (p *Parser) reduce(stack *[]*stackItem, cur token.Token) (ast.Expression, error) {
	s := *stack
	stop := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].kind == itemStop {
			stop = i
			break
		}
		if s[i].kind == itemBottom {
			break
		}
	}
	if stop < 0 {
		return nil, p.fail("unexpected token in expression", cur)
	}
	handle := s[stop+1:]
	*stack = s[:stop]

	switch len(handle) {
	case 1:
		// E -> i
		it := handle[0]
		if it.kind == itemNonTerminal {
			return it.node, nil
		}
		if it.kind == itemTerminal && it.idx == iOperand && it.node != nil {
			return it.node, nil
		}

	case 2:
		// E -> E!   (postfix unwrap)
		if handle[0].kind == itemNonTerminal &&
			handle[1].kind == itemTerminal && handle[1].idx == iUnwrap {
			return &ast.UnaryExpression{
				Token:    handle[1].tok,
				Operator: ast.OperatorUnwrap,
				Operand:  handle[0].node,
			}, nil
		}
		// E -> !E   (prefix logical not)
		if handle[0].kind == itemTerminal && handle[0].idx == iNot &&
			handle[1].kind == itemNonTerminal {
			return &ast.UnaryExpression{
				Token:    handle[0].tok,
				Operator: ast.OperatorNot,
				Operand:  handle[1].node,
			}, nil
		}

	case 3:
		// E -> ( E )
		if handle[0].kind == itemTerminal && handle[0].idx == iLParen &&
			handle[1].kind == itemNonTerminal &&
			handle[2].kind == itemTerminal && handle[2].idx == iRParen {
			return handle[1].node, nil
		}
		// E -> E op E
		if handle[0].kind == itemNonTerminal && handle[2].kind == itemNonTerminal &&
			handle[1].kind == itemTerminal {
			if op, ok := binaryOperators[handle[1].tok.Type]; ok {
				return &ast.BinaryExpression{
					Token:    handle[1].tok,
					Operator: op,
					Left:     handle[0].node,
					Right:    handle[2].node,
				}, nil
			}
		}
	}

	markers := make([]token.Token, 0, 1)
	for _, it := range handle {
		if it.kind == itemTerminal {
			markers = append(markers, it.tok)
			break
		}
	}
	if len(markers) == 0 {
		markers = append(markers, cur)
	}
	return nil, p.fail("invalid expression", markers...)
}
