// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bantip

import (
	"context"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// PendingBlock is an incoming transfer the ledger has recorded but the
// destination account has not received yet.
type PendingBlock struct {
	Hash   string
	Source string
	Amount *uint256.Int
}

// ReceiveResult describes one accepted receive. Either message may be empty.
type ReceiveResult struct {
	Hash           string
	PendingMessage string
	ReceiveMessage string
}

// AccountInfo is the ledger's view of an account. Error carries the node's
// own message for accounts it cannot describe (for example one that has
// never received anything); it is not a transport failure.
type AccountInfo struct {
	Balance           *uint256.Int
	Error             string
	ModifiedTimestamp time.Time
}

// Ledger is the narrow view of the wallet backend the core needs. All calls
// are remote except AccountFromSecret.
type Ledger interface {
	AccountFromSecret(secret string) (string, error)
	// Pending lists at most count pending blocks for account, in the order
	// the ledger returned them.
	Pending(ctx context.Context, account string, count int) ([]PendingBlock, error)
	Receive(ctx context.Context, secret, representative, hash string) (ReceiveResult, error)
	AccountInfo(ctx context.Context, account string) (AccountInfo, error)
}

// DrainOptions bounds a DrainPending call. Zero values mean no bound.
type DrainOptions struct {
	// MaxPending is passed to the ledger as the pending list size.
	MaxPending int
	// MaxIterations caps the number of receives.
	MaxIterations int
	// Timeout caps the wall-clock time spent draining.
	Timeout time.Duration
	Logger  *zap.Logger
}

var timeNow = time.Now

// DrainPending receives every pending block of the account owned by secret,
// one block per round trip, until the ledger reports none left. Each receive
// names representative as the block representative. onReceipt, if not nil,
// is called after every accepted receive.
//
// The pending list is fetched again after each receive, so transfers that
// arrive while draining are picked up too. The first block of each list is
// received; no order is imposed on the ledger's answer.
//
// Ledger failures are returned as *LedgerError and are not retried. When a
// bound in opts is reached while blocks are still pending, a
// *DrainTimeoutError is returned. Cancelling ctx stops the loop between
// round trips.
func DrainPending(ctx context.Context, ledger Ledger, representative, secret string, opts DrainOptions, onReceipt func(ReceiveResult)) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	account, err := ledger.AccountFromSecret(secret)
	if err != nil {
		return asLedgerError("account", err)
	}
	logger = logger.With(zap.String("account", account))

	start := timeNow()
	receipts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		blocks, err := ledger.Pending(ctx, account, opts.MaxPending)
		if err != nil {
			return asLedgerError("pending", err)
		}
		if len(blocks) == 0 {
			logger.Debug("no pending blocks left", zap.Int("receipts", receipts))
			return nil
		}

		elapsed := timeNow().Sub(start)
		if (opts.MaxIterations > 0 && receipts >= opts.MaxIterations) || (opts.Timeout > 0 && elapsed >= opts.Timeout) {
			return &DrainTimeoutError{Account: account, Receipts: receipts, Elapsed: elapsed}
		}

		hash := blocks[0].Hash
		logger.Debug("receiving pending block", zap.String("hash", hash), zap.Int("pending", len(blocks)))
		result, err := ledger.Receive(ctx, secret, representative, hash)
		if err != nil {
			return asLedgerError("receive", err)
		}
		receipts++
		if onReceipt != nil {
			onReceipt(result)
		}
	}
}
