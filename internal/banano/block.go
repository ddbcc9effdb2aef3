// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"
)

// Block subtypes accepted by the node's process action.
const (
	SubtypeOpen    = "open"
	SubtypeReceive = "receive"
	SubtypeSend    = "send"
)

// ErrInvalidHash is returned for hashes that are not 64 hex characters.
var ErrInvalidHash = errors.New("invalid block hash")

// Hash identifies a block. The zero hash is the previous of an open block.
type Hash [32]byte

// ParseHash decodes a 64 character hex hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return h, nil
}

// String returns the hash as upper case hex, the node's own format.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// IsZero reports whether h is all zeroes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

var statePreamble = Hash{31: 6}

// StateBlock is a universal ledger block. Link is the source block hash for a
// receive and the destination public key for a send.
type StateBlock struct {
	Account        string
	Previous       Hash
	Representative string
	Balance        *uint256.Int
	Link           Hash
	Signature      []byte
	Work           uint64
}

// Hash returns the block hash that is signed and published.
func (b *StateBlock) Hash() (Hash, error) {
	var out Hash
	account, err := DecodeAccount(b.Account)
	if err != nil {
		return out, fmt.Errorf("could not hash block: account: %w", err)
	}
	rep, err := DecodeAccount(b.Representative)
	if err != nil {
		return out, fmt.Errorf("could not hash block: representative: %w", err)
	}
	if b.Balance == nil || b.Balance.BitLen() > 128 {
		return out, fmt.Errorf("could not hash block: %w", ErrInvalidAmount)
	}
	balance := b.Balance.Bytes32()

	h, _ := blake2b.New256(nil)
	h.Write(statePreamble[:])
	h.Write(account[:])
	h.Write(b.Previous[:])
	h.Write(rep[:])
	h.Write(balance[16:])
	h.Write(b.Link[:])
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Sign hashes the block and stores the signature made with k.
func (b *StateBlock) Sign(k PrivateKey) (Hash, error) {
	h, err := b.Hash()
	if err != nil {
		return h, err
	}
	b.Signature = Sign(k, h[:])
	return h, nil
}

// WorkRoot is the value proof of work is computed against: the previous
// block, or the account key for the first block of an account.
func (b *StateBlock) WorkRoot() (Hash, error) {
	if !b.Previous.IsZero() {
		return b.Previous, nil
	}
	pub, err := DecodeAccount(b.Account)
	if err != nil {
		return Hash{}, err
	}
	return Hash(pub), nil
}

type jsonBlock struct {
	Type           string `json:"type"`
	Account        string `json:"account"`
	Previous       string `json:"previous"`
	Representative string `json:"representative"`
	Balance        string `json:"balance"`
	Link           string `json:"link"`
	Signature      string `json:"signature"`
	Work           string `json:"work"`
}

// MarshalJSON renders the block the way the node's process action takes it.
func (b *StateBlock) MarshalJSON() ([]byte, error) {
	balance := "0"
	if b.Balance != nil {
		balance = b.Balance.Dec()
	}
	return json.Marshal(jsonBlock{
		Type:           "state",
		Account:        b.Account,
		Previous:       b.Previous.String(),
		Representative: b.Representative,
		Balance:        balance,
		Link:           b.Link.String(),
		Signature:      strings.ToUpper(hex.EncodeToString(b.Signature)),
		Work:           FormatWork(b.Work),
	})
}
