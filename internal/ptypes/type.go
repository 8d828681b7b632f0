// Package ptypes implements the type algebra: elementary and composite
// types, annotated types T@L, and the assignability relation that mediates
// privacy-aware assignment.
package ptypes

import (
	"fmt"

	"github.com/m-unkel/zkay-go/internal/label"
	"github.com/m-unkel/zkay-go/internal/partition"
)

// ElemKind enumerates the elementary type shapes.
type ElemKind int

const (
	Bool ElemKind = iota
	Uint
	Address
	Mapping
	Function
)

// Type is a closed sum type for the type algebra. Only Bool, Uint, Address
// and Mapping-of-elementary may carry a non-ALL label; Function types never
// carry a label of their own (their components do).
type Type struct {
	Kind ElemKind

	// Uint width in bits, e.g. 256. Zero for non-Uint kinds.
	Width int

	// Mapping: KeyTag is the documentary owner-key tag from
	// `mapping(address!tag => T)`; Value is the mapped-to type.
	KeyTag string
	Value  *Type

	// Function: parameter and return annotated types.
	Params []AnnotatedType
	Return *AnnotatedType
}

func NewBool() Type    { return Type{Kind: Bool} }
func NewUint(w int) Type { return Type{Kind: Uint, Width: w} }
func NewAddress() Type { return Type{Kind: Address} }

// NewMapping builds mapping(address!tag => value).
func NewMapping(tag string, value Type) Type {
	v := value
	return Type{Kind: Mapping, KeyTag: tag, Value: &v}
}

// NewFunction builds a function type from parameter and return annotated types.
func NewFunction(params []AnnotatedType, ret *AnnotatedType) Type {
	return Type{Kind: Function, Params: params, Return: ret}
}

// Equal reports structural type equality, ignoring labels (labels live on
// AnnotatedType, not Type).
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Uint:
		return t.Width == o.Width
	case Mapping:
		return t.KeyTag == o.KeyTag && t.Value.Equal(*o.Value)
	case Function:
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		if (t.Return == nil) != (o.Return == nil) {
			return false
		}
		if t.Return != nil && !t.Return.Equal(*o.Return) {
			return false
		}
		return true
	default:
		return true
	}
}

// CanCarryLabel reports whether this type variant may be annotated with a
// non-ALL label: only elementary types and mappings of elementary types.
func (t Type) CanCarryLabel() bool {
	switch t.Kind {
	case Bool, Uint, Address:
		return true
	case Mapping:
		return t.Value.CanCarryLabel()
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.Kind {
	case Bool:
		return "bool"
	case Uint:
		return fmt.Sprintf("uint%d", t.Width)
	case Address:
		return "address"
	case Mapping:
		if t.KeyTag != "" {
			return fmt.Sprintf("mapping(address!%s => %s)", t.KeyTag, t.Value.String())
		}
		return fmt.Sprintf("mapping(address => %s)", t.Value.String())
	case Function:
		return "function"
	default:
		return "?"
	}
}

// AnnotatedType is the pair (T, L) written T@L in source. Bare T denotes
// (T, ALL).
type AnnotatedType struct {
	Type  Type
	Label label.Label
}

// Public wraps t with the ALL label — the default for a bare type.
func Public(t Type) AnnotatedType {
	return AnnotatedType{Type: t, Label: label.AllLabel}
}

// WithLabel wraps t with an explicit label.
func WithLabel(t Type, l label.Label) AnnotatedType {
	return AnnotatedType{Type: t, Label: l}
}

func (a AnnotatedType) Equal(o AnnotatedType) bool {
	return a.Type.Equal(o.Type) && a.Label.Equal(o.Label)
}

func (a AnnotatedType) String() string {
	if a.Label.IsPublic() {
		return a.Type.String()
	}
	return fmt.Sprintf("%s@%s", a.Type.String(), a.Label.String())
}

// Assignable implements the assignability rule of component H: (T1,L1) is
// assignable to (T2,L2) iff T1 = T2 and (L2 = ALL or same_partition(L1,L2)
// in state).
func Assignable(from, to AnnotatedType, state *partition.State) bool {
	if !from.Type.Equal(to.Type) {
		return false
	}
	if to.Label.IsPublic() {
		return true
	}
	return state.SamePartition(from.Label, to.Label)
}
