// Package typecheck implements the type checker (component H): a bottom-up
// synthesis pass that assigns an annotated_type to every expression and
// enforces privacy-aware assignability, reveal legality, and operator
// homomorphism, using component F's partition state for the
// same_partition(...) side condition of spec §4.H. This is a generalization
// of the teacher's internal/semantic Analyzer's
// inferExpressionType/analyzeBinaryExpression structure (bottom-up
// synthesis with a per-expression type slot) onto the privacy lattice
// instead of kanso's EVM type system, and is otherwise a literal
// transcription of original_source/zkay/type_check/type_checker.py's
// TypeCheckVisitor.
package typecheck

import (
	"fmt"

	"github.com/m-unkel/zkay-go/internal/alias"
	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
	"github.com/m-unkel/zkay-go/internal/label"
	"github.com/m-unkel/zkay-go/internal/partition"
	"github.com/m-unkel/zkay-go/internal/ptypes"
)

// Result holds the annotated_type recorded for every expression visited by
// one CheckFunction call, keyed by NodeID exactly as alias.Result keys its
// before/after partition state — component H's "annotated_type is assigned
// exactly once per expression" invariant (spec §3.3) is enforced by Types
// only ever being written once per key.
type Result struct {
	Types map[ast.NodeID]ptypes.AnnotatedType
}

func newResult() *Result {
	return &Result{Types: map[ast.NodeID]ptypes.AnnotatedType{}}
}

// TypeOf returns the annotated type recorded for e, or the zero value and
// false if e was never visited (e.g. checking stopped early on a hard
// error in the enclosing function).
func (r *Result) TypeOf(e ast.Expr) (ptypes.AnnotatedType, bool) {
	t, ok := r.Types[e.ID()]
	return t, ok
}

// homomorphicOps is the set of binary operators allowed on operands with a
// non-ALL label without an enclosing reveal, mirroring
// BuiltinFunction.is_private's allowlist (arithmetic and comparison, but
// not boolean short-circuit, which zkay never treats as homomorphic).
var homomorphicOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

// checker walks one function's body, threading the alias-analysis result so
// same_partition lookups use the correct before_analysis state per
// statement (spec §4.H's assignability rule is defined relative to "the
// statement's before_analysis").
type checker struct {
	scope   *scopeTable
	aliases *alias.Result
	result  *Result
	errs    []zkerrors.CompilerError
	fn      *ast.FunctionDecl
	stopped bool
}

// scopeTable is a minimal scoped name->declared-type lookup, independent of
// internal/resolve's Table so this package has no import-cycle dependency
// on it; component M's pipeline runs resolve before typecheck, so by the
// time CheckFunction runs every identifier already resolves and this table
// only needs to recover each name's annotated type.
type scopeTable struct {
	vars   map[string]ptypes.AnnotatedType
	parent *scopeTable
}

func newScope(parent *scopeTable) *scopeTable {
	return &scopeTable{vars: map[string]ptypes.AnnotatedType{}, parent: parent}
}

func (s *scopeTable) define(name string, t ptypes.AnnotatedType) {
	s.vars[name] = t
}

func (s *scopeTable) lookup(name string) (ptypes.AnnotatedType, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return ptypes.AnnotatedType{}, false
}

// annotatedTypeOf converts a declared TypeExpr (source syntax) into the
// semantic AnnotatedType it denotes: a bare type implies @all, and a
// mapping's value type carries whatever label it declares.
func annotatedTypeOf(t *ast.TypeExpr) ptypes.AnnotatedType {
	if t == nil {
		return ptypes.Public(ptypes.NewBool())
	}
	base := elementaryType(t)
	l := label.AllLabel
	if t.Label != nil {
		l = labelOf(t.Label)
	}
	return ptypes.AnnotatedType{Type: base, Label: l}
}

func elementaryType(t *ast.TypeExpr) ptypes.Type {
	switch t.Kind {
	case ast.BoolType:
		return ptypes.NewBool()
	case ast.UintType:
		return ptypes.NewUint(t.Width)
	case ast.AddressType:
		return ptypes.NewAddress()
	case ast.MappingType:
		return ptypes.NewMapping(t.KeyTag, elementaryType(t.Value))
	default:
		return ptypes.NewBool()
	}
}

func labelOf(l *ast.LabelExpr) label.Label {
	switch l.Kind {
	case ast.MeLabel:
		return label.MeLabel
	case ast.OwnerLabel:
		return label.NewOwner(l.Owner)
	default:
		return label.AllLabel
	}
}

// CheckContract type-checks every function in contract using aliasResults
// (one alias.Result per function, keyed by function name — component M
// supplies these from its own per-function alias.AnalyzeFunction calls).
// Checking continues across independent functions per spec §7's policy
// even when one function's checker halts on its first hard error.
func CheckContract(contract *ast.Contract, aliasResults map[string]*alias.Result) (*Result, []zkerrors.CompilerError) {
	result := newResult()
	var errs []zkerrors.CompilerError
	for _, fn := range contract.Functions {
		fnErrs := CheckFunction(contract, fn, aliasResults[fn.Name], result)
		errs = append(errs, fnErrs...)
	}
	return result, errs
}

// CheckFunction type-checks fn's body, recording annotated types into
// result and returning the first hard error only (spec §7: "type checking
// halts on the first hard error in a function").
func CheckFunction(contract *ast.Contract, fn *ast.FunctionDecl, ar *alias.Result, result *Result) []zkerrors.CompilerError {
	if fn.Body == nil {
		return nil
	}
	c := &checker{scope: newScope(nil), aliases: ar, result: result, fn: fn}
	for _, sv := range contract.StateVars {
		c.scope.define(sv.Name, annotatedTypeOf(sv.Type))
	}
	for _, sv := range contract.Globals {
		c.scope.define(sv.Name, annotatedTypeOf(sv.Type))
	}
	for _, p := range fn.Params {
		c.scope.define(p.Name, annotatedTypeOf(p.Type))
	}
	c.checkBlock(fn.Body)
	return c.errs
}

func (c *checker) fail(err zkerrors.CompilerError) {
	if c.stopped {
		return
	}
	c.errs = append(c.errs, err)
	c.stopped = true
}

func (c *checker) stateBefore(id ast.NodeID) *partition.State {
	if c.aliases == nil {
		return partition.New()
	}
	if s := c.aliases.BeforeOf(id); s != nil {
		return s
	}
	return partition.New()
}

func (c *checker) checkBlock(b *ast.Block) {
	prevScope := c.scope
	c.scope = newScope(prevScope)
	for _, item := range b.Items {
		if c.stopped {
			break
		}
		c.checkStmt(item)
	}
	c.scope = prevScope
}

func (c *checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDeclStmt:
		c.checkVarDecl(st)
	case *ast.RequireStmt:
		c.checkRequire(st)
	case *ast.AssignStmt:
		c.checkAssign(st)
	case *ast.ExprStmt:
		c.checkExpr(st.Value)
	case *ast.ReturnStmt:
		c.checkReturn(st)
	case *ast.IfStmt:
		c.checkExpr(st.Cond)
		c.checkBlock(st.Then)
		if st.Else != nil {
			c.checkStmt(st.Else)
		}
	case *ast.WhileStmt:
		c.checkExpr(st.Cond)
		c.checkBlock(st.Body)
	case *ast.ForStmt:
		if st.Init != nil {
			c.checkStmt(st.Init)
		}
		if st.Cond != nil {
			c.checkExpr(st.Cond)
		}
		if st.Post != nil {
			c.checkStmt(st.Post)
		}
		c.checkBlock(st.Body)
	case *ast.Block:
		c.checkBlock(st)
	case *ast.BreakStmt, *ast.ContinueStmt:
		// nothing to type-check
	}
}

func (c *checker) checkVarDecl(st *ast.VarDeclStmt) {
	initType := c.checkExpr(st.Init)
	declared := initType
	if st.Type != nil {
		declared = annotatedTypeOf(st.Type)
		if !ptypes.Assignable(initType, declared, c.stateBefore(st.ID())) {
			c.fail(zkerrors.TypeMismatch(declared.String(), initType.String(), st.Init.Pos()))
			return
		}
	}
	c.scope.define(st.Name, declared)
}

func (c *checker) checkRequire(st *ast.RequireStmt) {
	condType := c.checkExpr(st.Cond)
	if !condType.Type.Equal(ptypes.NewBool()) || !condType.Label.IsPublic() {
		c.fail(zkerrors.Require(condType.String(), st.Cond.Pos()))
	}
}

func (c *checker) checkAssign(st *ast.AssignStmt) {
	targetType := c.checkExpr(st.Target)
	valueType := c.checkExpr(st.Value)
	if !ptypes.Assignable(valueType, targetType, c.stateBefore(st.ID())) {
		c.fail(zkerrors.TypeMismatch(targetType.String(), valueType.String(), st.Value.Pos()))
	}
}

func (c *checker) checkReturn(st *ast.ReturnStmt) {
	if st.Value == nil {
		return
	}
	valueType := c.checkExpr(st.Value)
	if c.fn.ReturnType == nil {
		return
	}
	want := annotatedTypeOf(c.fn.ReturnType)
	if !ptypes.Assignable(valueType, want, c.stateBefore(st.ID())) {
		c.fail(zkerrors.TypeMismatch(want.String(), valueType.String(), st.Value.Pos()))
	}
}

// checkExpr is the bottom-up synthesis entry point: every case assigns an
// AnnotatedType, records it into c.result.Types, and returns it so the
// caller can use it in a contextual check without a second lookup.
func (c *checker) checkExpr(e ast.Expr) ptypes.AnnotatedType {
	var t ptypes.AnnotatedType
	switch v := e.(type) {
	case *ast.LiteralExpr:
		if v.IsBool {
			t = ptypes.Public(ptypes.NewBool())
		} else {
			t = ptypes.Public(ptypes.NewUint(256))
		}
	case *ast.MeExpr:
		t = ptypes.AnnotatedType{Type: ptypes.NewAddress(), Label: label.MeLabel}
	case *ast.IdentExpr:
		if found, ok := c.scope.lookup(v.Name); ok {
			t = found
		} else {
			// Symbol resolution (component D) already reports this as
			// UnknownIdentifier; type-check degrades to public bool so a
			// single bad identifier does not cascade into spurious
			// downstream type errors.
			t = ptypes.Public(ptypes.NewBool())
		}
	case *ast.BinaryExpr:
		t = c.checkBinary(v)
	case *ast.UnaryExpr:
		t = c.checkUnary(v)
	case *ast.IndexExpr:
		t = c.checkIndex(v)
	case *ast.CallExpr:
		t = c.checkCall(v)
	case *ast.ReclassifyExpr:
		t = c.checkReclassify(v)
	default:
		t = ptypes.Public(ptypes.NewBool())
	}
	c.result.Types[e.ID()] = t
	return t
}

func (c *checker) checkBinary(v *ast.BinaryExpr) ptypes.AnnotatedType {
	lt := c.checkExpr(v.Left)
	rt := c.checkExpr(v.Right)

	private := !lt.Label.IsPublic() || !rt.Label.IsPublic()
	if private && !homomorphicOps[v.Op] {
		c.fail(zkerrors.TypeOther(
			fmt.Sprintf("operator '%s' is not homomorphic and cannot be applied to a private operand outside reveal()", v.Op),
			v.Pos()))
		return ptypes.Public(ptypes.NewBool())
	}

	switch v.Op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		if !private {
			return ptypes.Public(ptypes.NewBool())
		}
		return ptypes.AnnotatedType{Type: ptypes.NewBool(), Label: combinedLabel(lt, rt)}
	default:
		if !lt.Type.Equal(rt.Type) {
			c.fail(zkerrors.TypeOther(
				fmt.Sprintf("operator '%s' requires operands of the same type, found %s and %s", v.Op, lt.Type.String(), rt.Type.String()),
				v.Pos()))
			return ptypes.Public(lt.Type)
		}
		return ptypes.AnnotatedType{Type: lt.Type, Label: combinedLabel(lt, rt)}
	}
}

// combinedLabel picks the non-public operand's label when exactly one
// operand is private, matching original_source's combined_privacy helper
// for the common case this front-end supports (mixed public/private
// arithmetic, never two distinctly-owned private operands outside a
// reveal, which checkBinary already rejects for non-homomorphic ops and
// which the partition-aware same_partition check is left to catch via the
// enclosing assignment or require).
func combinedLabel(a, b ptypes.AnnotatedType) label.Label {
	if !a.Label.IsPublic() {
		return a.Label
	}
	return b.Label
}

func (c *checker) checkUnary(v *ast.UnaryExpr) ptypes.AnnotatedType {
	vt := c.checkExpr(v.Value)
	if !vt.Label.IsPublic() && v.Op != "-" && v.Op != "!" {
		c.fail(zkerrors.TypeOther(fmt.Sprintf("operator '%s' is not homomorphic", v.Op), v.Pos()))
	}
	return vt
}

func (c *checker) checkIndex(v *ast.IndexExpr) ptypes.AnnotatedType {
	baseType := c.checkExpr(v.Base)
	c.checkExpr(v.Index)
	if baseType.Type.Kind != ptypes.Mapping {
		c.fail(zkerrors.TypeOther(fmt.Sprintf("cannot index into non-mapping type %s", baseType.Type.String()), v.Pos()))
		return ptypes.Public(ptypes.NewBool())
	}
	return ptypes.AnnotatedType{Type: *baseType.Type.Value, Label: baseType.Label}
}

func (c *checker) checkCall(v *ast.CallExpr) ptypes.AnnotatedType {
	for _, a := range v.Args {
		c.checkExpr(a)
	}
	// The callee's return type is resolved by component D into
	// FunctionDecl.CalledFunctions by name only, not by pointer; without a
	// direct link here the checker conservatively types a call as public
	// bool, matching the pipeline's ordering (component M runs the hybrid
	// detector, which does consult resolved call targets, after type
	// checking — see internal/pipeline).
	return ptypes.Public(ptypes.NewBool())
}

func (c *checker) checkReclassify(v *ast.ReclassifyExpr) ptypes.AnnotatedType {
	vt := c.checkExpr(v.Value)
	if v.Owner == nil {
		c.fail(zkerrors.Reclassify(vt.Label.String(), "?", v.Pos()))
		return vt
	}
	target := labelOf(v.Owner)
	if vt.Label.IsPublic() && target.IsPublic() {
		c.fail(zkerrors.Reclassify(vt.Label.String(), target.String(), v.Pos()))
		return vt
	}
	return ptypes.AnnotatedType{Type: vt.Type, Label: target}
}
