package typecheck

import (
	"testing"

	"github.com/m-unkel/zkay-go/internal/alias"
	"github.com/m-unkel/zkay-go/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos() ast.Position { return ast.Position{Line: 1, Column: 1} }
func reg(tr *ast.NodeTracker) *ast.Metadata { return tr.Register(pos(), pos()) }

func uintType(tr *ast.NodeTracker, owner *ast.LabelExpr) *ast.TypeExpr {
	return &ast.TypeExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.UintType, Width: 256, Label: owner}
}

func meLabel(tr *ast.NodeTracker) *ast.LabelExpr {
	return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.MeLabel}
}

func allLabel(tr *ast.NodeTracker) *ast.LabelExpr {
	return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AllLabel}
}

func ownerLabel(tr *ast.NodeTracker, name string) *ast.LabelExpr {
	return &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.OwnerLabel, Owner: name}
}

func intLit(tr *ast.NodeTracker) *ast.LiteralExpr {
	return &ast.LiteralExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}}
}

// Assigning to a declared-public (@all) target is always legal regardless
// of the source's label (spec §4.H: "(T1,L1) ≤ (T2,L2) iff ... L2 = ALL or
// same_partition(L1,L2)") — an @all target is the top of the assignability
// relation, not something that needs an explicit reveal to write into.
func TestAssignmentIntoPublicTargetNeverRejected(t *testing.T) {
	tr := ast.NewNodeTracker()
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, meLabel(tr)), Init: intLit(tr)}
	yDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y", Type: uintType(tr, allLabel(tr)), Init: intLit(tr)}
	assign := &ast.AssignStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Target:   &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y"},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, yDecl, assign}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	assert.Empty(t, errs)
}

// Without an intervening require() aliasing the two owners, assigning
// between two distinctly-owned private targets is rejected: same_partition
// fails for unrelated owner labels.
func TestCrossOwnerAssignmentWithoutAliasingRejected(t *testing.T) {
	tr := ast.NewNodeTracker()
	addrA := &ast.StateVarDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "a", Type: &ast.TypeExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AddressType}}
	addrB := &ast.StateVarDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "b", Type: &ast.TypeExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AddressType}}

	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, ownerLabel(tr, "a")), Init: intLit(tr)}
	yDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y", Type: uintType(tr, ownerLabel(tr, "b")), Init: intLit(tr)}
	assign := &ast.AssignStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Target:   &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y"},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, yDecl, assign}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{
		NodeBase:  ast.NodeBase{Meta: reg(tr)},
		Name:      "C",
		StateVars: []*ast.StateVarDecl{addrA, addrB},
		Functions: []*ast.FunctionDecl{fn},
	}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0300", errs[0].Code)
}

func TestRevealMakesPrivateAssignmentLegal(t *testing.T) {
	tr := ast.NewNodeTracker()
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, meLabel(tr)), Init: intLit(tr)}
	yDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y", Type: uintType(tr, allLabel(tr)), Init: intLit(tr)}
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    allLabel(tr),
	}
	assign := &ast.AssignStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Target:   &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y"},
		Value:    reveal,
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, yDecl, assign}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	assert.Empty(t, errs)
}

func TestRequireAliasedAddressesMakesCrossOwnerAssignmentLegal(t *testing.T) {
	tr := ast.NewNodeTracker()
	addrA := &ast.StateVarDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "a", Type: &ast.TypeExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AddressType}}
	addrB := &ast.StateVarDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "b", Type: &ast.TypeExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AddressType}}

	req := &ast.RequireStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Cond: &ast.BinaryExpr{
			NodeBase: ast.NodeBase{Meta: reg(tr)},
			Op:       "==",
			Left:     &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "a"},
			Right:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "b"},
		},
	}
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, ownerLabel(tr, "a")), Init: intLit(tr)}
	yDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y", Type: uintType(tr, ownerLabel(tr, "b")), Init: intLit(tr)}
	assign := &ast.AssignStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Target:   &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y"},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{req, xDecl, yDecl, assign}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{
		NodeBase:  ast.NodeBase{Meta: reg(tr)},
		Name:      "C",
		StateVars: []*ast.StateVarDecl{addrA, addrB},
		Functions: []*ast.FunctionDecl{fn},
	}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	assert.Empty(t, errs)
}

func TestRequireConditionMustBePublicBool(t *testing.T) {
	tr := ast.NewNodeTracker()
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, meLabel(tr)), Init: intLit(tr)}
	req := &ast.RequireStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Cond: &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"}}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, req}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0302", errs[0].Code)
}

func TestVacuousRevealRejected(t *testing.T) {
	tr := ast.NewNodeTracker()
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, allLabel(tr)), Init: intLit(tr)}
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    allLabel(tr),
	}
	exprStmt := &ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: reveal}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, exprStmt}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0400", errs[0].Code)
}

func TestPrivateOperandRejectedOnNonHomomorphicOp(t *testing.T) {
	tr := ast.NewNodeTracker()
	xDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x", Type: uintType(tr, meLabel(tr)), Init: intLit(tr)}
	yDecl := &ast.VarDeclStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y", Type: uintType(tr, meLabel(tr)), Init: intLit(tr)}
	shift := &ast.ExprStmt{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value: &ast.BinaryExpr{
			NodeBase: ast.NodeBase{Meta: reg(tr)},
			Op:       "&&",
			Left:     &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
			Right:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "y"},
		},
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{xDecl, yDecl, shift}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	ar := alias.AnalyzeFunction(contract, fn)
	r := newResult()
	errs := CheckFunction(contract, fn, ar, r)
	require.Len(t, errs, 1)
	assert.Equal(t, "E0301", errs[0].Code)
}
