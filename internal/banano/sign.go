// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"bytes"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// SignatureSize is the length of a block signature.
const SignatureSize = 64

// Sign returns the ed25519 signature of msg under k, with blake2b-512 in
// place of SHA-512 as the ledger requires.
func Sign(k PrivateKey, msg []byte) []byte {
	s, prefix := k.expand()
	pub := new(edwards25519.Point).ScalarBaseMult(s).Bytes()

	h, _ := blake2b.New512(nil)
	h.Write(prefix)
	h.Write(msg)
	r, _ := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	R := new(edwards25519.Point).ScalarBaseMult(r).Bytes()

	c := challenge(R, pub, msg)
	S := edwards25519.NewScalar().MultiplyAdd(c, s, r)

	sig := make([]byte, 0, SignatureSize)
	sig = append(sig, R...)
	return append(sig, S.Bytes()...)
}

// Verify reports whether sig is a valid signature of msg by pub.
func Verify(pub PublicKey, msg, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	A, err := new(edwards25519.Point).SetBytes(pub[:])
	if err != nil {
		return false
	}
	S, err := edwards25519.NewScalar().SetCanonicalBytes(sig[32:])
	if err != nil {
		return false
	}

	c := challenge(sig[:32], pub[:], msg)
	minusA := new(edwards25519.Point).Negate(A)
	// R = [S]B - [c]A
	R := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, minusA, S)
	return bytes.Equal(R.Bytes(), sig[:32])
}

func challenge(R, pub, msg []byte) *edwards25519.Scalar {
	h, _ := blake2b.New512(nil)
	h.Write(R)
	h.Write(pub)
	h.Write(msg)
	c, _ := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	return c
}
