package ast

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p(line int) Position { return Position{Line: line, Column: 1} }

func buildSample(t *testing.T) (*SourceUnit, *FunctionDecl, *IdentExpr) {
	t.Helper()
	tr := NewNodeTracker()

	ident := &IdentExpr{NodeBase: NodeBase{Meta: tr.Register(p(3), p(3))}, Name: "x"}
	ret := &ReturnStmt{NodeBase: NodeBase{Meta: tr.Register(p(3), p(3))}, Value: ident}
	body := &Block{NodeBase: NodeBase{Meta: tr.Register(p(2), p(4))}, Items: []Stmt{ret}}
	uintType := &TypeExpr{NodeBase: NodeBase{Meta: tr.Register(p(2), p(2))}, Kind: UintType, Width: 256}
	fn := &FunctionDecl{
		NodeBase:   NodeBase{Meta: tr.Register(p(2), p(4))},
		Name:       "get",
		ReturnType: uintType,
		Body:       body,
		CalledFunctions: map[string]bool{},
	}
	contract := &Contract{
		NodeBase:  NodeBase{Meta: tr.Register(p(1), p(5))},
		Name:      "Wallet",
		Functions: []*FunctionDecl{fn},
	}
	unit := &SourceUnit{
		NodeBase:  NodeBase{Meta: tr.Register(p(1), p(5))},
		Contracts: []*Contract{contract},
		Tracker:   tr,
	}
	return unit, fn, ident
}

func TestWalkVisitsEveryNode(t *testing.T) {
	unit, _, ident := buildSample(t)

	visited := map[NodeID]bool{}
	Walk(unit, func(n, parent Node) {
		visited[n.ID()] = true
	})

	assert.True(t, visited[unit.ID()])
	assert.True(t, visited[ident.ID()])
	assert.Len(t, visited, 7) // unit, contract, fn, body, return, ident, uint type
}

func TestSetParentsBuildsTree(t *testing.T) {
	unit, fn, ident := buildSample(t)
	SetParents(unit)

	contractMeta := unit.Tracker.Get(unit.Contracts[0].ID())
	require.NotNil(t, contractMeta)
	assert.Equal(t, unit.ID(), contractMeta.ParentID)

	fnMeta := unit.Tracker.Get(fn.ID())
	require.NotNil(t, fnMeta)
	assert.Equal(t, unit.Contracts[0].ID(), fnMeta.ParentID)

	identMeta := unit.Tracker.Get(ident.ID())
	require.NotNil(t, identMeta)
	assert.NotEqual(t, NodeID(0), identMeta.ParentID)
}

func TestLiteralExprHoldsBigInt(t *testing.T) {
	tr := NewNodeTracker()
	lit := &LiteralExpr{NodeBase: NodeBase{Meta: tr.Register(p(1), p(1))}, IntVal: big.NewInt(42)}
	assert.Equal(t, "42", lit.IntVal.String())
}
