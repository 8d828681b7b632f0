package circuit

import (
	"testing"

	"github.com/m-unkel/zkay-go/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos() ast.Position { return ast.Position{Line: 1, Column: 1} }

func TestBuilderTracksGuardBalance(t *testing.T) {
	b := NewBuilder()
	assert.True(t, b.Balanced())

	b.PushGuard("cond1", true)
	assert.Equal(t, 1, b.Depth())
	assert.False(t, b.Balanced())

	b.PushGuard("cond2", false)
	assert.Equal(t, 2, b.Depth())

	b.PopGuard()
	assert.Equal(t, 1, b.Depth())

	b.PopGuard()
	assert.Equal(t, 0, b.Depth())
	assert.True(t, b.Balanced())
}

func TestUnmatchedPopPanics(t *testing.T) {
	b := NewBuilder()
	assert.Panics(t, func() { b.PopGuard() })
}

func TestEmitPreservesSourceOrder(t *testing.T) {
	b := NewBuilder()
	tr := ast.NewNodeTracker()
	lit := &ast.LiteralExpr{NodeBase: ast.NodeBase{Meta: tr.Register(pos(), pos())}}

	b.Emit(&Comment{Text: "start"})
	b.Emit(&VarDecl{LHS: "v0", Expr: lit})
	b.Emit(&EncConstraint{Plain: "v0", Rnd: "r0", PK: "pk", Cipher: "c0"})
	b.Emit(&EqConstraint{Tgt: "v0", Val: "c0"})

	require.Len(t, b.Statements(), 4)
	assert.IsType(t, &Comment{}, b.Statements()[0])
	assert.IsType(t, &VarDecl{}, b.Statements()[1])
	assert.IsType(t, &EncConstraint{}, b.Statements()[2])
	assert.IsType(t, &EqConstraint{}, b.Statements()[3])
}

func TestIndentBlockNestsChildStrings(t *testing.T) {
	block := &IndentBlock{Name: "check", Body: []Statement{
		&Comment{Text: "inner"},
		&EqConstraint{Tgt: "a", Val: "b"},
	}}
	s := block.String()
	assert.Contains(t, s, "check {")
	assert.Contains(t, s, "  // inner")
	assert.Contains(t, s, "  eq a == b")
}
