// Package alias implements the flow-sensitive alias analysis (component F):
// for every statement, which privacy labels are currently known to denote
// the same principal. This directly ports
// original_source/zkay/zkay_ast/analysis/alias_analysis.py's
// AliasAnalysisVisitor onto this package's AST and internal/partition.State,
// including its deliberately imprecise join at branches and loops (design
// note — the imprecision is load-bearing, not a shortcut: see
// partition.State.SeparateAll).
//
// Per-statement state is not stored on the AST nodes themselves; it lives
// in a side table keyed by ast.NodeID, owned by a Result.
package alias

import (
	"github.com/m-unkel/zkay-go/internal/ast"
	"github.com/m-unkel/zkay-go/internal/label"
	"github.com/m-unkel/zkay-go/internal/partition"
)

// Result holds the before/after partition state computed for every
// statement (and the function body block) visited by one AnalyzeFunction
// call.
type Result struct {
	Before map[ast.NodeID]*partition.State
	After  map[ast.NodeID]*partition.State
}

func newResult() *Result {
	return &Result{Before: map[ast.NodeID]*partition.State{}, After: map[ast.NodeID]*partition.State{}}
}

// BeforeOf returns the partition state in effect immediately before id ran,
// or nil if id was never visited.
func (r *Result) BeforeOf(id ast.NodeID) *partition.State { return r.Before[id] }

// AfterOf returns the partition state in effect immediately after id ran,
// or nil if id was never visited.
func (r *Result) AfterOf(id ast.NodeID) *partition.State { return r.After[id] }

// AnalyzeFunction runs the alias analysis over fn's body, seeding the
// initial state exactly as handle_function_definition does: me, all, every
// state variable of contract, and every parameter of fn, each its own
// singleton class.
func AnalyzeFunction(contract *ast.Contract, fn *ast.FunctionDecl) *Result {
	r := newResult()
	if fn.Body == nil {
		return r
	}

	s := partition.New()
	s.Insert(label.MeLabel)
	s.Insert(label.AllLabel)
	for _, sv := range contract.StateVars {
		s.Insert(label.NewOwner(sv.Name))
	}
	for _, sv := range contract.Globals {
		s.Insert(label.NewOwner(sv.Name))
	}
	for _, p := range fn.Params {
		s.Insert(label.NewOwner(p.Name))
	}

	v := &visitor{result: r}
	v.visitBlock(fn.Body, s)
	return r
}

type visitor struct {
	result *Result
}

// exprLabel returns the privacy label an expression denotes when it
// appears in a label-bearing position (a require(a==b) operand, an
// assignment side) — me for MeExpr, and the identifier itself for any
// IdentExpr, matching privacy_annotation_label()'s behavior for bare
// identifiers and the me literal. Every other expression shape carries no
// label of its own at this stage (type information, which would resolve a
// reveal(...) target to an owner, is not yet available — that happens in
// component H).
func exprLabel(e ast.Expr) (label.Label, bool) {
	switch v := e.(type) {
	case *ast.MeExpr:
		return label.MeLabel, true
	case *ast.IdentExpr:
		return label.NewOwner(v.Name), true
	default:
		return label.Label{}, false
	}
}

// hasSideEffects reports whether evaluating e could call an external or
// otherwise effectful function, which forces the analysis to forget every
// known equivalence (separate_all) before proceeding — the same
// conservative rule the original visitor applies via has_side_effects.
func hasSideEffects(e ast.Expr) bool {
	found := false
	var walkExpr func(ast.Expr)
	walkExpr = func(e ast.Expr) {
		if e == nil || found {
			return
		}
		switch v := e.(type) {
		case *ast.CallExpr:
			found = true
		case *ast.BinaryExpr:
			walkExpr(v.Left)
			walkExpr(v.Right)
		case *ast.UnaryExpr:
			walkExpr(v.Value)
		case *ast.IndexExpr:
			walkExpr(v.Base)
			walkExpr(v.Index)
		case *ast.ReclassifyExpr:
			walkExpr(v.Value)
		}
	}
	walkExpr(e)
	return found
}

func (v *visitor) record(id ast.NodeID, before, after *partition.State) {
	v.result.Before[id] = before
	v.result.After[id] = after
}

// blockDeclaredNames returns the names declared directly by a VarDeclStmt
// at the top level of b — the Go counterpart of Block.names, which is
// populated at parse time in the original and consulted (not recomputed)
// by the visitor; here we recompute it structurally since this tree has no
// separate names table.
func blockDeclaredNames(b *ast.Block) []string {
	var out []string
	for _, item := range b.Items {
		if d, ok := item.(*ast.VarDeclStmt); ok {
			out = append(out, d.Name)
		}
	}
	return out
}

func (v *visitor) visitBlock(b *ast.Block, before *partition.State) *partition.State {
	last := before.Copy()
	for _, name := range blockDeclaredNames(b) {
		last.Insert(label.NewOwner(name))
	}

	for _, stmt := range b.Items {
		v.result.Before[stmt.ID()] = last
		after := v.visitStmt(stmt, last)
		v.result.After[stmt.ID()] = after
		last = after
	}

	out := last.Copy()
	for _, name := range blockDeclaredNames(b) {
		out.Remove(label.NewOwner(name))
	}
	v.record(b.ID(), before, out)
	return out
}

func (v *visitor) visitStmt(s ast.Stmt, before *partition.State) *partition.State {
	switch st := s.(type) {
	case *ast.VarDeclStmt:
		return v.visitVarDecl(st, before)
	case *ast.RequireStmt:
		return v.visitRequire(st, before)
	case *ast.AssignStmt:
		return v.visitAssign(st, before)
	case *ast.ExprStmt:
		return v.visitExprStmt(st, before)
	case *ast.ReturnStmt:
		v.record(st.ID(), before, before)
		return before
	case *ast.BreakStmt:
		v.record(st.ID(), before, before)
		return before
	case *ast.ContinueStmt:
		v.record(st.ID(), before, before)
		return before
	case *ast.IfStmt:
		return v.visitIf(st, before)
	case *ast.WhileStmt:
		return v.visitWhile(st, before)
	case *ast.ForStmt:
		return v.visitFor(st, before)
	case *ast.Block:
		return v.visitBlock(st, before)
	default:
		return before
	}
}

func (v *visitor) visitVarDecl(st *ast.VarDeclStmt, before *partition.State) *partition.State {
	if st.Init != nil && hasSideEffects(st.Init) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}

	after := before.Copy()
	name := label.NewOwner(st.Name)
	if !after.Has(name) {
		after.Insert(name)
	}
	if st.Init != nil {
		if l, ok := exprLabel(st.Init); ok && after.Has(l) {
			after.Merge(name, l)
		}
	}
	v.record(st.ID(), before, after)
	return after
}

func (v *visitor) visitRequire(st *ast.RequireStmt, before *partition.State) *partition.State {
	if hasSideEffects(st.Cond) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}

	after := before.Copy()
	if bin, ok := st.Cond.(*ast.BinaryExpr); ok && bin.Op == "==" {
		lhs, lok := exprLabel(bin.Left)
		rhs, rok := exprLabel(bin.Right)
		if lok && rok && after.Has(lhs) && after.Has(rhs) {
			after.Merge(lhs, rhs)
		}
	}
	v.record(st.ID(), before, after)
	return after
}

func (v *visitor) visitAssign(st *ast.AssignStmt, before *partition.State) *partition.State {
	if hasSideEffects(st.Target) || hasSideEffects(st.Value) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}

	after := before.Copy()
	lhs, lok := exprLabel(st.Target)
	rhs, rok := exprLabel(st.Value)
	if lok && rok && after.Has(rhs) {
		after.MoveTo(lhs, rhs)
	}
	v.record(st.ID(), before, after)
	return after
}

func (v *visitor) visitExprStmt(st *ast.ExprStmt, before *partition.State) *partition.State {
	if hasSideEffects(st.Value) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}
	after := before.Copy()
	v.record(st.ID(), before, after)
	return after
}

func (v *visitor) visitIf(st *ast.IfStmt, before *partition.State) *partition.State {
	if hasSideEffects(st.Cond) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}

	v.visitBlock(st.Then, before)
	if st.Else != nil {
		v.visitStmt(st.Else, before)
	}

	after := before.Copy()
	after.SeparateAll()
	v.record(st.ID(), before, after)
	return after
}

func (v *visitor) visitWhile(st *ast.WhileStmt, before *partition.State) *partition.State {
	if hasSideEffects(st.Cond) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}
	loopBefore := before.Copy()
	loopBefore.SeparateAll()

	v.visitBlock(st.Body, loopBefore)

	v.record(st.ID(), before, loopBefore)
	return loopBefore
}

func (v *visitor) visitFor(st *ast.ForStmt, before *partition.State) *partition.State {
	initSideEffects := st.Init != nil && stmtHasSideEffects(st.Init)
	if initSideEffects || (st.Cond != nil && hasSideEffects(st.Cond)) {
		sep := before.Copy()
		sep.SeparateAll()
		before = sep
	}
	loopBefore := before.Copy()
	loopBefore.SeparateAll()

	cur := loopBefore
	if st.Init != nil {
		cur = v.visitStmt(st.Init, cur)
	}
	v.visitBlock(st.Body, cur)

	v.record(st.ID(), before, loopBefore)
	return loopBefore
}

// stmtHasSideEffects extends hasSideEffects to the single-statement init
// clause of a for-loop (a VarDeclStmt or AssignStmt), since the original's
// has_side_effects is itself defined on any AST node, not just expressions.
func stmtHasSideEffects(s ast.Stmt) bool {
	switch st := s.(type) {
	case *ast.VarDeclStmt:
		return st.Init != nil && hasSideEffects(st.Init)
	case *ast.AssignStmt:
		return hasSideEffects(st.Target) || hasSideEffects(st.Value)
	case *ast.ExprStmt:
		return hasSideEffects(st.Value)
	default:
		return false
	}
}
