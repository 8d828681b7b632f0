// Package hybrid implements the hybrid-function detector (component I):
// three fixed passes over a contract's functions that mark which ones
// require a zero-knowledge proof and reject call sites the back-end could
// never inline. This is a literal transcription of
// original_source/zkay/zkay_ast/analysis/hybrid_function_detector.py's
// DirectHybridFunctionDetectionVisitor, IndirectHybridFunctionDetectionVisitor
// and NonInlineableCallDetector, generalized from zkay's visitor-per-node-kind
// dispatch onto this package's explicit AST walk.
package hybrid

import (
	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
)

// Detect runs all three passes over contract in order, mutating
// RequiresVerification / RequiresVerificationIfExternal / IsRecursive (the
// last computed here by markRecursive before the passes run — recursion
// detection walks the call graph that component D's resolver already built
// into CalledFunctions, so it is done once up front rather than repeated
// per pass) and returning every NonInlineableRecursion
// diagnostic raised by pass 3.
func Detect(contract *ast.Contract) []zkerrors.CompilerError {
	byName := make(map[string]*ast.FunctionDecl, len(contract.Functions))
	for _, fn := range contract.Functions {
		byName[fn.Name] = fn
	}
	markRecursive(contract.Functions, byName)

	directPass(contract.Functions)
	indirectPass(contract.Functions, byName)
	return nonInlineablePass(contract.Functions, byName)
}

// markRecursive sets IsRecursive on every function reachable from itself
// through CalledFunctions, via plain cycle detection on the call graph —
// the spec's is_recursive is a derived AST boolean (§3.3) that the parser
// cannot know in advance, so this package computes it here, once, before
// hybrid detection consumes it.
func markRecursive(fns []*ast.FunctionDecl, byName map[string]*ast.FunctionDecl) {
	for _, fn := range fns {
		visited := map[string]bool{}
		fn.IsRecursive = reaches(fn.Name, fn.Name, byName, visited, true)
	}
}

func reaches(target, cur string, byName map[string]*ast.FunctionDecl, visited map[string]bool, first bool) bool {
	if !first && cur == target {
		return true
	}
	if visited[cur] {
		return false
	}
	visited[cur] = true
	fn, ok := byName[cur]
	if !ok {
		return false
	}
	for callee := range fn.CalledFunctions {
		if reaches(target, callee, byName, visited, false) {
			return true
		}
	}
	return false
}

// directPass marks RequiresVerification on any function containing a
// ReclassifyExpr, mirroring visitReclassifyExpr's
// "ast.statement.function.requires_verification = True". It then derives
// RequiresVerificationIfExternal exactly as
// visitConstructorOrFunctionDefinition does: unconditionally once
// RequiresVerification is set, and additionally whenever the function
// can_be_external (IsExternal) and some parameter's declared type is
// privately labeled.
func directPass(fns []*ast.FunctionDecl) {
	for _, fn := range fns {
		if fn.Body == nil {
			continue
		}
		if containsReclassify(fn.Body) {
			fn.RequiresVerification = true
		}
		if fn.RequiresVerification {
			fn.RequiresVerificationIfExternal = true
		}
		if fn.IsExternal {
			for _, p := range fn.Params {
				if paramIsPrivate(p) {
					fn.RequiresVerificationIfExternal = true
					break
				}
			}
		}
	}
}

func paramIsPrivate(p *ast.Param) bool {
	return p.Type != nil && p.Type.Label != nil && p.Type.Label.Kind != ast.AllLabel
}

// indirectPass propagates RequiresVerification across CalledFunctions to a
// fixed point, mirroring IndirectHybridFunctionDetectionVisitor's single
// pass — but since that original pass only runs once per call (not
// iterated), a caller chain longer than one hop needs repeated
// application; this function iterates until no function's flags change,
// which is the fixed-point the spec's invariant 5 (hybrid monotonicity)
// requires.
func indirectPass(fns []*ast.FunctionDecl, byName map[string]*ast.FunctionDecl) {
	for {
		changed := false
		for _, fn := range fns {
			if fn.RequiresVerification {
				continue
			}
			for callee := range fn.CalledFunctions {
				target, ok := byName[callee]
				if ok && target.RequiresVerification {
					fn.RequiresVerification = true
					fn.RequiresVerificationIfExternal = true
					changed = true
					break
				}
			}
		}
		if !changed {
			return
		}
	}
}

// nonInlineablePass rejects any call to a function that both
// RequiresVerificationIfExternal and IsRecursive — the back-end inlines
// every verified callee, which is impossible for a recursive one.
func nonInlineablePass(fns []*ast.FunctionDecl, byName map[string]*ast.FunctionDecl) []zkerrors.CompilerError {
	var errs []zkerrors.CompilerError
	for _, fn := range fns {
		if fn.Body == nil {
			continue
		}
		walkCalls(fn.Body, func(call *ast.CallExpr) {
			target, ok := byName[call.Callee]
			if !ok {
				return
			}
			if target.RequiresVerificationIfExternal && target.IsRecursive {
				errs = append(errs, zkerrors.NonInlineableRecursion(call.Callee, call.Pos()))
			}
		})
	}
	return errs
}

func containsReclassify(b *ast.Block) bool {
	found := false
	walkStmts(b, func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.VarDeclStmt:
			if exprContainsReclassify(st.Init) {
				found = true
			}
		case *ast.RequireStmt:
			if exprContainsReclassify(st.Cond) {
				found = true
			}
		case *ast.AssignStmt:
			if exprContainsReclassify(st.Target) || exprContainsReclassify(st.Value) {
				found = true
			}
		case *ast.ExprStmt:
			if exprContainsReclassify(st.Value) {
				found = true
			}
		case *ast.ReturnStmt:
			if st.Value != nil && exprContainsReclassify(st.Value) {
				found = true
			}
		case *ast.IfStmt:
			if exprContainsReclassify(st.Cond) {
				found = true
			}
		case *ast.WhileStmt:
			if exprContainsReclassify(st.Cond) {
				found = true
			}
		case *ast.ForStmt:
			if st.Cond != nil && exprContainsReclassify(st.Cond) {
				found = true
			}
		}
	})
	return found
}

func exprContainsReclassify(e ast.Expr) bool {
	if e == nil {
		return false
	}
	switch v := e.(type) {
	case *ast.ReclassifyExpr:
		return true
	case *ast.BinaryExpr:
		return exprContainsReclassify(v.Left) || exprContainsReclassify(v.Right)
	case *ast.UnaryExpr:
		return exprContainsReclassify(v.Value)
	case *ast.IndexExpr:
		return exprContainsReclassify(v.Base) || exprContainsReclassify(v.Index)
	case *ast.CallExpr:
		for _, a := range v.Args {
			if exprContainsReclassify(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// walkStmts visits every statement reachable from b, including nested
// blocks, calling fn on each.
func walkStmts(b *ast.Block, fn func(ast.Stmt)) {
	for _, item := range b.Items {
		fn(item)
		switch st := item.(type) {
		case *ast.IfStmt:
			walkStmts(st.Then, fn)
			if nested, ok := st.Else.(*ast.Block); ok {
				walkStmts(nested, fn)
			} else if st.Else != nil {
				walkStmts(&ast.Block{Items: []ast.Stmt{st.Else}}, fn)
			}
		case *ast.WhileStmt:
			walkStmts(st.Body, fn)
		case *ast.ForStmt:
			if st.Init != nil {
				fn(st.Init)
			}
			if st.Post != nil {
				fn(st.Post)
			}
			walkStmts(st.Body, fn)
		case *ast.Block:
			walkStmts(st, fn)
		}
	}
}

// walkCalls visits every CallExpr reachable from b.
func walkCalls(b *ast.Block, fn func(*ast.CallExpr)) {
	walkStmts(b, func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.VarDeclStmt:
			walkExprCalls(st.Init, fn)
		case *ast.RequireStmt:
			walkExprCalls(st.Cond, fn)
		case *ast.AssignStmt:
			walkExprCalls(st.Target, fn)
			walkExprCalls(st.Value, fn)
		case *ast.ExprStmt:
			walkExprCalls(st.Value, fn)
		case *ast.ReturnStmt:
			walkExprCalls(st.Value, fn)
		case *ast.IfStmt:
			walkExprCalls(st.Cond, fn)
		case *ast.WhileStmt:
			walkExprCalls(st.Cond, fn)
		case *ast.ForStmt:
			walkExprCalls(st.Cond, fn)
		}
	})
}

func walkExprCalls(e ast.Expr, fn func(*ast.CallExpr)) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *ast.CallExpr:
		fn(v)
		for _, a := range v.Args {
			walkExprCalls(a, fn)
		}
	case *ast.BinaryExpr:
		walkExprCalls(v.Left, fn)
		walkExprCalls(v.Right, fn)
	case *ast.UnaryExpr:
		walkExprCalls(v.Value, fn)
	case *ast.IndexExpr:
		walkExprCalls(v.Base, fn)
		walkExprCalls(v.Index, fn)
	case *ast.ReclassifyExpr:
		walkExprCalls(v.Value, fn)
	}
}
