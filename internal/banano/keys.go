// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package banano implements the pieces of the Banano ledger format the bot
// signs locally: seed to key derivation, the ban_ account encoding,
// ed25519-blake2b signatures, state block hashing, proof of work and amount
// conversion.
package banano

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// ErrInvalidSeed is returned for seeds that are not 64 hex characters.
var ErrInvalidSeed = errors.New("invalid seed")

// Seed is the 32 byte root secret of a wallet.
type Seed [32]byte

// PrivateKey is an account signing key.
type PrivateKey [32]byte

// PublicKey is the ed25519 point identifying an account.
type PublicKey [32]byte

// ParseSeed decodes a 64 character hex seed in either case.
func ParseSeed(s string) (Seed, error) {
	var seed Seed
	if len(s) != hex.EncodedLen(len(seed)) {
		return seed, fmt.Errorf("%w: want %d hex characters, got %d", ErrInvalidSeed, hex.EncodedLen(len(seed)), len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return seed, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	copy(seed[:], b)
	return seed, nil
}

// String returns the seed as upper case hex.
func (s Seed) String() string {
	return strings.ToUpper(hex.EncodeToString(s[:]))
}

// DeriveKey returns the private key at index: blake2b-256(seed || index).
func DeriveKey(seed Seed, index uint32) PrivateKey {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)

	h, _ := blake2b.New256(nil)
	h.Write(seed[:])
	h.Write(idx[:])

	var key PrivateKey
	copy(key[:], h.Sum(nil))
	return key
}

// Public returns the public key for k.
func (k PrivateKey) Public() PublicKey {
	s, _ := k.expand()
	var pub PublicKey
	copy(pub[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return pub
}

// expand returns the clamped signing scalar and the nonce prefix, the two
// halves of blake2b-512(k).
func (k PrivateKey) expand() (*edwards25519.Scalar, []byte) {
	h := blake2b.Sum512(k[:])
	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		// only possible for a slice that is not 32 bytes long
		panic(err)
	}
	return s, h[32:]
}

// AccountFromSeed returns the account at index for a hex seed.
func AccountFromSeed(seedHex string, index uint32) (string, error) {
	seed, err := ParseSeed(seedHex)
	if err != nil {
		return "", err
	}
	return EncodeAccount(DeriveKey(seed, index).Public()), nil
}
