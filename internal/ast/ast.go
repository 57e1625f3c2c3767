// Package ast defines the Abstract Syntax Tree node types for IFJ23.
//
// Nodes are created by the parser, annotated in place by the semantic
// analyser (declaration ids, resolved types), and consumed read-only by the
// code generator. Analyser-side back references are stable integer ids into
// the analyser's declaration table rather than pointers.
package ast

import (
	"strings"

	"github.com/tskoda/go-swiftc/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// TokenLiteral returns the literal value of the token this node is
	// associated with, for debugging and testing.
	TokenLiteral() string

	// String returns a source-like representation of the node.
	String() string
}

// Expression represents any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement represents a node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node: the implicit global block.
type Program struct {
	Block *Block
}

func (p *Program) TokenLiteral() string {
	if p.Block != nil {
		return p.Block.TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	if p.Block == nil {
		return ""
	}
	return p.Block.String()
}

// Block is a braced (or, for the program body, brace-less) statement list.
// The analyser's scope-linking pre-pass allocates exactly one scope per
// block, keyed by the node itself.
type Block struct {
	Token      token.Token // the '{' token, or the first token for the global block
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return b.Token.Type.String() }

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, stmt := range b.Statements {
		sb.WriteString(stmt.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}
