// Package flow implements the return checker (component G): does every
// path through a function that promises a return value actually return one,
// and is every statement in a block reachable. Grounded on the teacher's
// internal/semantic/flow_analyzer.go (a flat analyzer with an afterReturn
// flag and an addError accumulator), generalized from its linear
// hasReturn/afterReturn tracking to a branch-exhaustive check: kanso's
// FlowAnalyzer never has to reason about if/else (its control flow is
// expression-oriented, with implicit tail-expression returns), so the
// "every path returns" rule for this language's explicit if/else statements
// has no direct teacher analogue and is built fresh in the teacher's
// reporting style.
package flow

import (
	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
)

// CheckFunction verifies fn against two rules: a function with a declared
// return type must return on every path, and no statement may follow one
// that unconditionally terminates its block.
func CheckFunction(fn *ast.FunctionDecl) []zkerrors.CompilerError {
	var errs []zkerrors.CompilerError
	if fn.Body == nil {
		return errs
	}

	checkBlockUnreachable(fn.Body, &errs)

	if fn.ReturnType != nil && !blockTerminates(fn.Body) {
		errs = append(errs, zkerrors.ReturnMissing(fn.Name, fn.Body.End()))
	}

	return errs
}

// stmtTerminates reports whether s unconditionally ends every path that
// reaches it — a return always does; an if only does when both its
// branches do; a break/continue ends the current block's remaining
// statements (the loop itself decides separately whether that counts as a
// return, which it never does here since loops are not proven to execute).
func stmtTerminates(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BreakStmt:
		return true
	case *ast.ContinueStmt:
		return true
	case *ast.IfStmt:
		if v.Else == nil {
			return false
		}
		return stmtTerminates(v.Then) && stmtTerminates(v.Else)
	case *ast.Block:
		return blockTerminates(v)
	default:
		return false
	}
}

// blockTerminates reports whether some statement in b unconditionally
// terminates — the remaining statements, if any, are unreachable and are
// reported separately by checkBlockUnreachable.
func blockTerminates(b *ast.Block) bool {
	for _, item := range b.Items {
		if stmtTerminates(item) {
			return true
		}
	}
	return false
}

// checkBlockUnreachable walks b's statements in order, reporting the first
// statement that follows one that already terminates the block and then
// stopping; the nested blocks (if/while/for bodies) of the statements
// before that point are checked the same way, each on its own, mirroring
// the teacher's "stop after first unreachable statement to avoid noise"
// policy per block. Statements from the first unreachable one on are not
// looked into.
func checkBlockUnreachable(b *ast.Block, errs *[]zkerrors.CompilerError) {
	terminated := false
	for _, item := range b.Items {
		if terminated {
			*errs = append(*errs, zkerrors.UnreachableCode(item.Pos()))
			break
		}
		walkNestedBlocks(item, errs)
		if stmtTerminates(item) {
			terminated = true
		}
	}
}

func walkNestedBlocks(s ast.Stmt, errs *[]zkerrors.CompilerError) {
	switch v := s.(type) {
	case *ast.IfStmt:
		checkBlockUnreachable(v.Then, errs)
		if v.Else != nil {
			walkNestedBlocks(v.Else, errs)
		}
	case *ast.WhileStmt:
		checkBlockUnreachable(v.Body, errs)
	case *ast.ForStmt:
		checkBlockUnreachable(v.Body, errs)
	case *ast.Block:
		checkBlockUnreachable(v, errs)
	}
}
