// Package dlog implements Baby Jubjub curve arithmetic, ElGamal encryption
// over that curve, and the baby-step giant-step discrete-log solver used to
// decrypt small-plaintext ciphertexts.
package dlog

import "math/big"

// Q is the prime of Fq, the field Baby Jubjub's coordinates live in — the
// scalar field of BN254.
var Q, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// R is the prime order of Baby Jubjub's prime-order subgroup, the field Fr
// that curve scalars (private keys, randomness) live in.
var R, _ = new(big.Int).SetString("2736030358979909402780800718157159386076813972158567259200215660948447373041", 10)

// Curve coefficients for a*u^2 + v^2 = 1 + d*u^2*v^2 (twisted Edwards form).
var (
	curveA = big.NewInt(168700)
	curveD = big.NewInt(168696)
)

// Generator is zkay's babyjubjub.Point.GENERATOR, the base point every
// BSGS scan and ElGamal embedding in this package is computed against. It
// is deliberately not circomlib's Base8: the two generate different
// subgroups of the curve, and every spec test vector (and every
// original_source crypto test) is a discrete log base this point, not
// Base8.
var Generator = Point{
	U: fqFromDecimal("11904062828411472290643689191857696496057424932476499415469791423656658550213"),
	V: fqFromDecimal("9356450144216313082194365820021861619676443907964402770398322487858544118183"),
}

func fqFromDecimal(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("dlog: bad decimal constant " + s)
	}
	return v.Mod(v, Q)
}

// Point is an affine Baby Jubjub point. The identity element is (0,1).
type Point struct {
	U, V *big.Int
}

// Identity returns the twisted-Edwards identity element (0,1).
func Identity() Point {
	return Point{U: big.NewInt(0), V: big.NewInt(1)}
}

func fqMul(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), Q)
}

func fqAdd(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Add(a, b), Q)
}

func fqSub(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Sub(a, b), Q)
}

func fqInv(a *big.Int) *big.Int {
	return new(big.Int).ModInverse(a, Q)
}

// Add computes unified twisted-Edwards point addition p+q.
func Add(p, q Point) Point {
	// u3 = (u1*v2 + v1*u2) / (1 + d*u1*u2*v1*v2)
	// v3 = (v1*v2 - a*u1*u2) / (1 - d*u1*u2*v1*v2)
	u1v2 := fqMul(p.U, q.V)
	v1u2 := fqMul(p.V, q.U)
	v1v2 := fqMul(p.V, q.V)
	u1u2 := fqMul(p.U, q.U)
	duu_vv := fqMul(fqMul(curveD, u1u2), v1v2)

	uNum := fqAdd(u1v2, v1u2)
	uDen := fqAdd(big.NewInt(1), duu_vv)
	vNum := fqSub(v1v2, fqMul(curveA, u1u2))
	vDen := fqSub(big.NewInt(1), duu_vv)

	return Point{
		U: fqMul(uNum, fqInv(uDen)),
		V: fqMul(vNum, fqInv(vDen)),
	}
}

// Negate returns -p, the additive inverse (-u, v).
func Negate(p Point) Point {
	return Point{U: fqSub(big.NewInt(0), p.U), V: new(big.Int).Set(p.V)}
}

// Equal reports affine coordinate equality.
func Equal(p, q Point) bool {
	return p.U.Cmp(q.U) == 0 && p.V.Cmp(q.V) == 0
}

// ScalarMul computes [k]p via double-and-add, for k a non-negative scalar.
func ScalarMul(k *big.Int, p Point) Point {
	result := Identity()
	addend := p
	kk := new(big.Int).Mod(k, R)
	for i := 0; i < kk.BitLen(); i++ {
		if kk.Bit(i) == 1 {
			result = Add(result, addend)
		}
		addend = Add(addend, addend)
	}
	return result
}

// FqFromLEBytes decodes a 32-byte little-endian encoding into an Fq element.
func FqFromLEBytes(b [32]byte) *big.Int {
	be := make([]byte, 32)
	for i := 0; i < 32; i++ {
		be[i] = b[31-i]
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(be), Q)
}

// FqToLEBytes encodes an Fq element as 32 little-endian bytes.
func FqToLEBytes(v *big.Int) [32]byte {
	be := v.Bytes()
	var out [32]byte
	for i := 0; i < len(be) && i < 32; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}
