// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package wallet builds, signs and publishes Banano state blocks for
// accounts derived from user secrets. Wallet is the bantip.Ledger used by
// the bot.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/complex-gh/bantip"
	"github.com/complex-gh/bantip/internal/banano"
	"github.com/complex-gh/bantip/internal/entropy"
	"github.com/complex-gh/bantip/internal/node"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// SeedIndex is the account index used for every secret.
const SeedIndex = 0

// ErrInsufficientBalance is returned by Send when the account holds less
// than the requested amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Node is the part of the node API the wallet uses. *node.Client
// implements it.
type Node interface {
	AccountsPending(ctx context.Context, account string, count int) ([]bantip.PendingBlock, error)
	AccountInfo(ctx context.Context, account string) (node.AccountInfo, error)
	BlockAmount(ctx context.Context, hash banano.Hash) (*uint256.Int, error)
	WorkGenerate(ctx context.Context, root banano.Hash) (uint64, error)
	Process(ctx context.Context, block *banano.StateBlock, subtype string) (banano.Hash, error)
}

// Wallet signs blocks locally and publishes them through a Node.
type Wallet struct {
	node       Node
	remoteWork bool
	workers    int
	threshold  uint64
	rand       io.Reader
	logger     *zap.Logger
}

var _ bantip.Ledger = (*Wallet)(nil)

// Option configures a Wallet.
type Option func(*Wallet)

// WithRemoteWork makes the wallet ask the node for proof of work instead of
// computing it.
func WithRemoteWork(remote bool) Option {
	return func(w *Wallet) { w.remoteWork = remote }
}

// WithWorkers sets the number of local proof of work goroutines.
func WithWorkers(n int) Option {
	return func(w *Wallet) { w.workers = n }
}

// WithThreshold overrides banano.DefaultWorkThreshold.
func WithThreshold(t uint64) Option {
	return func(w *Wallet) { w.threshold = t }
}

// WithRandom sets the source of proof of work start offsets.
func WithRandom(r io.Reader) Option {
	return func(w *Wallet) { w.rand = r }
}

// WithLogger sets the wallet logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Wallet) { w.logger = l }
}

// New returns a Wallet publishing through n.
func New(n Node, opts ...Option) (*Wallet, error) {
	w := &Wallet{
		node:      n,
		threshold: banano.DefaultWorkThreshold,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	if w.rand == nil {
		r, err := entropy.NewRandomRatchet()
		if err != nil {
			return nil, err
		}
		w.rand = r
	}
	return w, nil
}

// AccountFromSecret returns the account owned by secret.
func (w *Wallet) AccountFromSecret(secret string) (string, error) {
	return banano.AccountFromSeed(secret, SeedIndex)
}

// Pending lists up to count receivable blocks of account.
func (w *Wallet) Pending(ctx context.Context, account string, count int) ([]bantip.PendingBlock, error) {
	blocks, err := w.node.AccountsPending(ctx, account, count)
	if err != nil {
		return nil, &bantip.LedgerError{Op: "pending", Err: err}
	}
	return blocks, nil
}

// AccountInfo returns the balance of account. An account that was never
// opened is reported through the Error field rather than as a failure.
func (w *Wallet) AccountInfo(ctx context.Context, account string) (bantip.AccountInfo, error) {
	info, err := w.node.AccountInfo(ctx, account)
	if errors.Is(err, node.ErrAccountNotFound) {
		return bantip.AccountInfo{Error: "Account not found"}, nil
	}
	if err != nil {
		return bantip.AccountInfo{}, &bantip.LedgerError{Op: "account_info", Err: err}
	}
	return bantip.AccountInfo{Balance: info.Balance, ModifiedTimestamp: info.ModifiedTimestamp}, nil
}

// Receive pockets the pending block hash into the account owned by secret.
// The first receive of an account opens it.
func (w *Wallet) Receive(ctx context.Context, secret, representative, hash string) (bantip.ReceiveResult, error) {
	key, account, err := keyFromSecret(secret)
	if err != nil {
		return bantip.ReceiveResult{}, err
	}
	link, err := banano.ParseHash(hash)
	if err != nil {
		return bantip.ReceiveResult{}, err
	}
	if !banano.ValidAccount(representative) {
		return bantip.ReceiveResult{}, fmt.Errorf("%w: representative %q", banano.ErrInvalidAccount, representative)
	}

	amount, err := w.node.BlockAmount(ctx, link)
	if err != nil {
		return bantip.ReceiveResult{}, &bantip.LedgerError{Op: "receive", Err: err}
	}

	subtype := banano.SubtypeReceive
	balance := new(uint256.Int)
	var previous banano.Hash
	info, err := w.node.AccountInfo(ctx, account)
	switch {
	case errors.Is(err, node.ErrAccountNotFound):
		subtype = banano.SubtypeOpen
	case err != nil:
		return bantip.ReceiveResult{}, &bantip.LedgerError{Op: "receive", Err: err}
	default:
		previous = info.Frontier
		balance.Set(info.Balance)
	}
	if _, overflow := balance.AddOverflow(balance, amount); overflow {
		return bantip.ReceiveResult{}, fmt.Errorf("%w: balance overflow", banano.ErrInvalidAmount)
	}

	block := &banano.StateBlock{
		Account:        account,
		Previous:       previous,
		Representative: representative,
		Balance:        balance,
		Link:           link,
	}
	published, err := w.publish(ctx, key, block, subtype)
	if err != nil {
		return bantip.ReceiveResult{}, err
	}

	return bantip.ReceiveResult{
		Hash:           published.String(),
		PendingMessage: fmt.Sprintf("pending block %s of %s", link, banano.Describe(amount)),
		ReceiveMessage: fmt.Sprintf("received %s, balance %s", banano.Describe(amount), banano.Describe(balance)),
	}, nil
}

// Send transfers amount raw from the account owned by secret to
// destination and returns the hash of the send block.
func (w *Wallet) Send(ctx context.Context, secret, destination string, amount *uint256.Int) (string, error) {
	key, account, err := keyFromSecret(secret)
	if err != nil {
		return "", err
	}
	dest, err := banano.DecodeAccount(destination)
	if err != nil {
		return "", err
	}
	if amount == nil || amount.IsZero() {
		return "", fmt.Errorf("%w: nothing to send", banano.ErrInvalidAmount)
	}

	info, err := w.node.AccountInfo(ctx, account)
	if errors.Is(err, node.ErrAccountNotFound) {
		return "", fmt.Errorf("%w: account %s is not opened", ErrInsufficientBalance, account)
	}
	if err != nil {
		return "", &bantip.LedgerError{Op: "send", Err: err}
	}
	if info.Balance.Lt(amount) {
		return "", fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, banano.FormatAmount(info.Balance), banano.FormatAmount(amount))
	}

	representative := info.Representative
	if representative == "" {
		representative = account
	}
	block := &banano.StateBlock{
		Account:        account,
		Previous:       info.Frontier,
		Representative: representative,
		Balance:        new(uint256.Int).Sub(info.Balance, amount),
		Link:           banano.Hash(dest),
	}
	published, err := w.publish(ctx, key, block, banano.SubtypeSend)
	if err != nil {
		return "", err
	}
	return published.String(), nil
}

// publish adds work and a signature to block and hands it to the node.
func (w *Wallet) publish(ctx context.Context, key banano.PrivateKey, block *banano.StateBlock, subtype string) (banano.Hash, error) {
	root, err := block.WorkRoot()
	if err != nil {
		return banano.Hash{}, err
	}
	if w.remoteWork {
		block.Work, err = w.node.WorkGenerate(ctx, root)
		if err != nil {
			return banano.Hash{}, &bantip.LedgerError{Op: "work_generate", Err: err}
		}
	} else {
		block.Work, err = banano.GenerateWork(ctx, root, w.threshold, w.workers, w.rand)
		if err != nil {
			return banano.Hash{}, err
		}
	}

	hash, err := block.Sign(key)
	if err != nil {
		return banano.Hash{}, err
	}
	w.logger.Debug("publishing block",
		zap.String("account", block.Account),
		zap.String("subtype", subtype),
		zap.Stringer("hash", hash),
	)

	published, err := w.node.Process(ctx, block, subtype)
	if err != nil {
		return banano.Hash{}, &bantip.LedgerError{Op: "process", Err: err}
	}
	if published != hash {
		w.logger.Warn("node returned a different block hash", zap.Stringer("local", hash), zap.Stringer("node", published))
	}
	return published, nil
}

func keyFromSecret(secret string) (banano.PrivateKey, string, error) {
	seed, err := banano.ParseSeed(secret)
	if err != nil {
		return banano.PrivateKey{}, "", err
	}
	key := banano.DeriveKey(seed, SeedIndex)
	return key, banano.EncodeAccount(key.Public()), nil
}
