// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"bytes"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// AccountPrefix starts every Banano account.
const AccountPrefix = "ban_"

const (
	keyChars      = 52
	checksumChars = 8
	accountLength = len(AccountPrefix) + keyChars + checksumChars
)

// ErrInvalidAccount is returned when an account string fails to decode.
var ErrInvalidAccount = errors.New("invalid account")

var accountEncoding = base32.NewEncoding("13456789abcdefghijkmnopqrstuwxyz").WithPadding(base32.NoPadding)

// keyPad is prepended to a public key before encoding. 24 zero bits give four
// leading '1' characters followed by the 4 zero padding bits plus the 256 key
// bits the account format expects.
var keyPad = []byte{0, 0, 0}

// EncodeAccount returns the ban_ address for pub.
func EncodeAccount(pub PublicKey) string {
	padded := append(append([]byte{}, keyPad...), pub[:]...)
	key := accountEncoding.EncodeToString(padded)[4:]
	return AccountPrefix + key + accountEncoding.EncodeToString(checksum(pub))
}

// DecodeAccount returns the public key of a ban_ address, verifying its
// checksum.
func DecodeAccount(account string) (PublicKey, error) {
	var pub PublicKey
	if !strings.HasPrefix(account, AccountPrefix) {
		return pub, fmt.Errorf("%w: missing %s prefix", ErrInvalidAccount, AccountPrefix)
	}
	if len(account) != accountLength {
		return pub, fmt.Errorf("%w: want %d characters, got %d", ErrInvalidAccount, accountLength, len(account))
	}
	body := account[len(AccountPrefix):]

	padded, err := accountEncoding.DecodeString("1111" + body[:keyChars])
	if err != nil {
		return pub, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	if !bytes.Equal(padded[:len(keyPad)], keyPad) {
		return pub, fmt.Errorf("%w: key out of range", ErrInvalidAccount)
	}
	copy(pub[:], padded[len(keyPad):])

	sum, err := accountEncoding.DecodeString(body[keyChars:])
	if err != nil {
		return pub, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	if !bytes.Equal(sum, checksum(pub)) {
		return pub, fmt.Errorf("%w: checksum mismatch", ErrInvalidAccount)
	}
	return pub, nil
}

// ValidAccount reports whether account decodes.
func ValidAccount(account string) bool {
	_, err := DecodeAccount(account)
	return err == nil
}

// checksum is blake2b-40 of the key with its bytes reversed.
func checksum(pub PublicKey) []byte {
	h, _ := blake2b.New(5, nil)
	h.Write(pub[:])
	sum := h.Sum(nil)
	for i, j := 0, len(sum)-1; i < j; i, j = i+1, j-1 {
		sum[i], sum[j] = sum[j], sum[i]
	}
	return sum
}
