package dlog

import "math/big"

// Ciphertext is an ElGamal ciphertext over Baby Jubjub: two curve points
// (c1, c2), each given as its (u,v) coordinate pair.
type Ciphertext struct {
	C1U, C1V *big.Int
	C2U, C2V *big.Int
}

// EncWithRand encrypts plain under public key pk using the supplied
// randomness. plain is embedded as [plain]Generator; the shared secret is
// [random]pk.
func EncWithRand(plain, random *big.Int, pk Point) Ciphertext {
	plainEmbedded := ScalarMul(plain, Generator)
	sharedSecret := ScalarMul(random, pk)
	c1 := ScalarMul(random, Generator)
	c2 := Add(plainEmbedded, sharedSecret)

	return Ciphertext{C1U: c1.U, C1V: c1.V, C2U: c2.U, C2V: c2.V}
}

// Decrypt recovers the embedded point [plain]Generator from a ciphertext given
// the private key sk, then inverts the embedding with the discrete-log
// solver to recover plain itself.
func Decrypt(c Ciphertext, sk *big.Int) (*big.Int, bool) {
	c1 := Point{U: c.C1U, V: c.C1V}
	c2 := Point{U: c.C2U, V: c.C2V}

	sharedSecret := ScalarMul(sk, c1)
	plainEmbedded := Add(c2, Negate(sharedSecret))

	return computeDlogPoint(plainEmbedded)
}

// AddCiphertexts computes the homomorphic sum of two ciphertexts by adding their
// points component-wise: Enc(a) + Enc(b) = Enc(a+b) under the same key.
func AddCiphertexts(a, b Ciphertext) Ciphertext {
	c1 := Add(Point{U: a.C1U, V: a.C1V}, Point{U: b.C1U, V: b.C1V})
	c2 := Add(Point{U: a.C2U, V: a.C2V}, Point{U: b.C2U, V: b.C2V})
	return Ciphertext{C1U: c1.U, C1V: c1.V, C2U: c2.U, C2V: c2.V}
}
