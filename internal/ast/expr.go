package ast

import "math/big"

// LiteralExpr is a boolean or integer constant.
type LiteralExpr struct {
	NodeBase
	IsBool  bool
	BoolVal bool
	IntVal  *big.Int
}

func (e *LiteralExpr) isExpr() {}

// IdentExpr references a state variable, parameter, or local by name;
// symbol resolution (component D) binds it to a declaration.
type IdentExpr struct {
	NodeBase
	Name string
}

func (e *IdentExpr) isExpr() {}

// MeExpr is the `me` keyword: the address of the current transaction
// sender.
type MeExpr struct {
	NodeBase
}

func (e *MeExpr) isExpr() {}

// BinaryExpr applies a binary operator. Op is one of:
// + - * / % == != < <= > >= && || .
type BinaryExpr struct {
	NodeBase
	Op    string
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) isExpr() {}

// UnaryExpr applies a unary operator (- or !).
type UnaryExpr struct {
	NodeBase
	Op    string
	Value Expr
}

func (e *UnaryExpr) isExpr() {}

// CallExpr calls a named function with the given arguments.
type CallExpr struct {
	NodeBase
	Callee string
	Args   []Expr
}

func (e *CallExpr) isExpr() {}

// IndexExpr is a mapping lookup `base[index]`.
type IndexExpr struct {
	NodeBase
	Base  Expr
	Index Expr
}

func (e *IndexExpr) isExpr() {}

// ReclassifyExpr is `reveal(value, owner)`: a declassification that retypes
// value's label to owner within the current expression.
type ReclassifyExpr struct {
	NodeBase
	Value Expr
	Owner *LabelExpr
}

func (e *ReclassifyExpr) isExpr() {}
