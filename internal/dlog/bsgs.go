package dlog

import (
	"fmt"
	"math/big"

	"github.com/m-unkel/zkay-go/internal/ast"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
)

// babyStepCount is m = 2^16: the table size for the baby-step giant-step
// search, giving an O(m) table build and O(m) giant-step scan for the full
// 32-bit scalar range (m^2 = 2^32).
const babyStepCount = 1 << 16

// ComputeDlog recovers the smallest non-negative k < 2^32 with y = [k]Generator,
// using baby-step giant-step. x and y are the u and v coordinates of the
// single target point y (not two separate points); see DESIGN.md's Open
// Question resolution for why the interface takes a point's two
// coordinates rather than two points.
func ComputeDlog(xLEBytes, yLEBytes [32]byte) (string, error) {
	u := FqFromLEBytes(xLEBytes)
	v := FqFromLEBytes(yLEBytes)
	target := Point{U: u, V: v}

	k, ok := computeDlogPoint(target)
	if !ok {
		return "", fmt.Errorf("dlog: not found")
	}
	return k.String(), nil
}

// ComputeDlogWithPos is ComputeDlog wrapped with the §7 DlogNotFound
// diagnostic, for callers that need a source position attached.
func ComputeDlogWithPos(xLEBytes, yLEBytes [32]byte, pos ast.Position) (string, *zkerrors.CompilerError) {
	k, err := ComputeDlog(xLEBytes, yLEBytes)
	if err != nil {
		e := zkerrors.DlogNotFound(pos)
		return "", &e
	}
	return k, nil
}

// computeDlogPoint runs the table-build + giant-step scan directly on an
// affine point, used internally and by tests that already hold a Point.
func computeDlogPoint(target Point) (*big.Int, bool) {
	m := big.NewInt(babyStepCount)

	// Baby steps: table[u-coordinate of [j]Generator] = j, for j in [0, m).
	table := make(map[string]int64, babyStepCount)
	cur := Identity()
	for j := int64(0); j < babyStepCount; j++ {
		key := cur.U.String()
		if _, exists := table[key]; !exists {
			table[key] = j
		}
		cur = Add(cur, Generator)
	}

	gamma := ScalarMul(m, Generator)
	negGamma := Negate(gamma)

	yi := target
	for i := int64(0); i < babyStepCount; i++ {
		if j, ok := table[yi.U.String()]; ok {
			k := new(big.Int).Add(new(big.Int).Mul(big.NewInt(i), m), big.NewInt(j))
			if Equal(ScalarMul(k, Generator), target) {
				return k, true
			}
			// u-coordinate collision between (u,v) and (u,-v): keep scanning.
		}
		yi = Add(yi, negGamma)
	}
	return nil, false
}
