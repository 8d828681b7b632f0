package hybrid

import (
	"testing"

	"github.com/m-unkel/zkay-go/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos() ast.Position { return ast.Position{Line: 1, Column: 1} }
func reg(tr *ast.NodeTracker) *ast.Metadata { return tr.Register(pos(), pos()) }

func TestDirectPassMarksReclassifyingFunction(t *testing.T) {
	tr := ast.NewNodeTracker()
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AllLabel},
	}
	exprStmt := &ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: reveal}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{exprStmt}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	errs := Detect(contract)
	assert.Empty(t, errs)
	assert.True(t, fn.RequiresVerification)
	assert.True(t, fn.RequiresVerificationIfExternal)
}

func TestIndirectPassPropagatesAcrossCallers(t *testing.T) {
	tr := ast.NewNodeTracker()
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AllLabel},
	}
	helperBody := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: reveal},
	}}
	helper := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "helper", Body: helperBody}

	call := &ast.CallExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Callee: "helper"}
	callerBody := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: call},
	}}
	caller := &ast.FunctionDecl{
		NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "caller", Body: callerBody,
		CalledFunctions: map[string]bool{"helper": true},
	}

	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{helper, caller}}

	errs := Detect(contract)
	assert.Empty(t, errs)
	assert.True(t, helper.RequiresVerification)
	assert.True(t, caller.RequiresVerification)
}

func TestIndirectPassIsIdempotent(t *testing.T) {
	tr := ast.NewNodeTracker()
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AllLabel},
	}
	body := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: reveal},
	}}
	fn := &ast.FunctionDecl{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "f", Body: body}
	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{fn}}

	Detect(contract)
	before := fn.RequiresVerification
	Detect(contract)
	assert.Equal(t, before, fn.RequiresVerification)
}

func TestNonInlineableRecursiveCallRejected(t *testing.T) {
	tr := ast.NewNodeTracker()
	reveal := &ast.ReclassifyExpr{
		NodeBase: ast.NodeBase{Meta: reg(tr)},
		Value:    &ast.IdentExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "x"},
		Owner:    &ast.LabelExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Kind: ast.AllLabel},
	}
	selfCall := &ast.CallExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Callee: "rec"}
	recBody := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: reveal},
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: selfCall},
	}}
	rec := &ast.FunctionDecl{
		NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "rec", Body: recBody, IsExternal: true,
		CalledFunctions: map[string]bool{"rec": true},
	}

	outerCall := &ast.CallExpr{NodeBase: ast.NodeBase{Meta: reg(tr)}, Callee: "rec"}
	outerBody := &ast.Block{NodeBase: ast.NodeBase{Meta: reg(tr)}, Items: []ast.Stmt{
		&ast.ExprStmt{NodeBase: ast.NodeBase{Meta: reg(tr)}, Value: outerCall},
	}}
	outer := &ast.FunctionDecl{
		NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "outer", Body: outerBody,
		CalledFunctions: map[string]bool{"rec": true},
	}

	contract := &ast.Contract{NodeBase: ast.NodeBase{Meta: reg(tr)}, Name: "C", Functions: []*ast.FunctionDecl{rec, outer}}

	errs := Detect(contract)
	require.NotEmpty(t, errs)
	assert.Equal(t, "E0500", errs[0].Code)
	assert.True(t, rec.IsRecursive)
}
