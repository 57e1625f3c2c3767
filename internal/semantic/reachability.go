package semantic

import (
	"github.com/tskoda/go-swiftc/internal/ast"
)

// isReturnReachable reports whether every path through the block reaches a
// return statement. A block terminates iff it contains a terminating
// statement; a return statement terminates; an if statement terminates iff
// it has an alternate and every branch terminates. Loops never count: a
// zero-iteration while skips its body entirely.
func isReturnReachable(block *ast.Block) bool {
	for _, stmt := range block.Statements {
		if statementTerminates(stmt) {
			return true
		}
	}
	return false
}

func statementTerminates(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.IfStatement:
		if !isReturnReachable(s.Consequent) {
			return false
		}
		switch alt := s.Alternate.(type) {
		case *ast.Block:
			return isReturnReachable(alt)
		case *ast.IfStatement:
			return statementTerminates(alt)
		default:
			return false
		}
	default:
		return false
	}
}
