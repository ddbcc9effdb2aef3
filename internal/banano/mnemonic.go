// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// Mnemonic renders seed as a 24 word BIP39 phrase in the current bip39
// word list, the form most Banano wallets import.
func Mnemonic(seed Seed) (string, error) {
	words, err := bip39.NewMnemonic(seed[:])
	if err != nil {
		return "", fmt.Errorf("could not create a mnemonic set of words: %w", err)
	}
	return words, nil
}

// SeedFromMnemonic reverses Mnemonic.
func SeedFromMnemonic(words string) (Seed, error) {
	var seed Seed
	entropy, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return seed, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}
	if len(entropy) != len(seed) {
		return seed, fmt.Errorf("%w: mnemonic holds %d bytes, want %d", ErrInvalidSeed, len(entropy), len(seed))
	}
	copy(seed[:], entropy)
	return seed, nil
}
