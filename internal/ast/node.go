package ast

// Node is implemented by every AST variant. There is no dynamic dispatch
// beyond this: passes switch exhaustively on the concrete type (a sealed
// closed set via the Stmt/Expr marker interfaces below), following the
// teacher's node.go convention of per-type method implementations instead
// of a visitor's double dispatch.
type Node interface {
	ID() NodeID
	Pos() Position
	End() Position
}

// NodeBase is embedded by every concrete node and supplies Node's methods
// from the side-table Metadata record the parser registers for it.
type NodeBase struct {
	Meta *Metadata
}

func (b NodeBase) ID() NodeID    { return b.Meta.ID }
func (b NodeBase) Pos() Position { return b.Meta.Pos }
func (b NodeBase) End() Position { return b.Meta.EndPos }

// Stmt is the sealed set of statement variants.
type Stmt interface {
	Node
	isStmt()
}

// Expr is the sealed set of expression variants.
type Expr interface {
	Node
	isExpr()
}
