// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package bantip provides the core of a chat tip bot for the Banano ledger:
// deterministic per-user wallet secrets, draining of pending incoming
// transactions, and the configuration override merge used at startup.
//
// Every chat user owns a wallet whose secret is derived from a process-wide
// salt and the user's platform identifier. Nothing is persisted; the secret
// is recomputed for every command, and every balance question is asked of
// the ledger again.
package bantip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// DeriveSecret returns the wallet secret for userID under salt.
//
// The secret is the lowercase hex SHA256 digest of the salt bytes followed by
// the UTF-8 string form of userID. The same salt and identifier always give
// the same secret, so a returning user maps to the same account. Changing the
// salt moves every user to a different account.
//
// userID may be a string, any integer type, or a fmt.Stringer. Anything else,
// and the empty string, yield an *InvalidInputError.
func DeriveSecret(salt []byte, userID any) (string, error) {
	id, err := userIDString(userID)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func userIDString(userID any) (string, error) {
	var id string
	switch v := userID.(type) {
	case string:
		id = v
	case int:
		id = strconv.Itoa(v)
	case int32:
		id = strconv.FormatInt(int64(v), 10)
	case int64:
		id = strconv.FormatInt(v, 10)
	case uint:
		id = strconv.FormatUint(uint64(v), 10)
	case uint32:
		id = strconv.FormatUint(uint64(v), 10)
	case uint64:
		id = strconv.FormatUint(v, 10)
	case fmt.Stringer:
		id = v.String()
	default:
		return "", &InvalidInputError{Value: userID, Reason: fmt.Sprintf("unsupported identifier type %T", userID)}
	}
	if id == "" {
		return "", &InvalidInputError{Value: userID, Reason: "empty identifier"}
	}
	return id, nil
}

// Deriver binds DeriveSecret to one salt. It is safe for concurrent use.
type Deriver struct {
	salt []byte
}

// NewDeriver copies salt into a new Deriver.
func NewDeriver(salt []byte) *Deriver {
	s := make([]byte, len(salt))
	copy(s, salt)
	return &Deriver{salt: s}
}

// Secret returns the wallet secret for userID.
func (d *Deriver) Secret(userID any) (string, error) {
	return DeriveSecret(d.salt, userID)
}
