package ast

// LabelExpr is the source-level spelling of a privacy label: `all` (the
// default, usually omitted), `me`, or a named address identifier.
type LabelExpr struct {
	NodeBase
	Kind  LabelKind
	Owner string // only meaningful when Kind == OwnerLabel
}

func (l *LabelExpr) isExpr() {}

type LabelKind int

const (
	AllLabel LabelKind = iota
	MeLabel
	OwnerLabel
)

// TypeExpr is the source-level spelling of a type: an elementary type
// (optionally annotated with a label), or a mapping.
type TypeExpr struct {
	NodeBase
	Kind TypeKind

	// Uint width in bits, e.g. 256. Zero for non-Uint kinds.
	Width int

	// Mapping only.
	KeyTag string
	Value  *TypeExpr

	// Label is nil for a bare type (implicitly ALL) and non-nil for T@L.
	Label *LabelExpr
}

type TypeKind int

const (
	BoolType TypeKind = iota
	UintType
	AddressType
	MappingType
)
