// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bantip

import (
	"errors"
	"fmt"
	"time"
)

// InvalidInputError reports an identifier that cannot be turned into a
// wallet secret.
type InvalidInputError struct {
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid user identifier %v: %s", e.Value, e.Reason)
}

// LedgerError wraps any failure of a ledger call: transport errors, node
// rejections and malformed responses alike.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// DrainTimeoutError is returned when DrainPending hits its iteration or
// wall-clock bound while the ledger still reports pending blocks.
type DrainTimeoutError struct {
	Account  string
	Receipts int
	Elapsed  time.Duration
}

func (e *DrainTimeoutError) Error() string {
	return fmt.Sprintf("account %s still has pending blocks after %d receipts in %s", e.Account, e.Receipts, e.Elapsed.Round(time.Millisecond))
}

// asLedgerError wraps err as a *LedgerError unless it already is one.
func asLedgerError(op string, err error) error {
	var lerr *LedgerError
	if errors.As(err, &lerr) {
		return err
	}
	return &LedgerError{Op: op, Err: err}
}
