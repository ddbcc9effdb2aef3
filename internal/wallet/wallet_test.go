// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/complex-gh/bantip"
	"github.com/complex-gh/bantip/internal/banano"
	"github.com/complex-gh/bantip/internal/entropy"
	"github.com/complex-gh/bantip/internal/node"
	"github.com/holiman/uint256"
	"github.com/matryer/is"
)

const (
	userSecret  = "4d3f03054208a4700bf3ef068d102f948f2bb03f96e9bffe0c9df4cd125f1551"
	userAccount = "ban_33mg54k7byst65sf4ucrc94d8tscpbieheo6rhtrdwmqpzuf86janqo1inu9"
	repAccount  = "ban_3i1aq1cchnmbn9x5rsbap8b15akfh7wj7pwskuzi7ahz8oq6cobd99d4r3b7"
)

// fakeNode is an in-memory ledger for one account.
type fakeNode struct {
	mu        sync.Mutex
	opened    bool
	frontier  banano.Hash
	balance   *uint256.Int
	rep       string
	pending   []bantip.PendingBlock
	processed []*banano.StateBlock
	subtypes  []string
	remote    uint64
	err       error
}

func (n *fakeNode) AccountsPending(_ context.Context, account string, count int) ([]bantip.PendingBlock, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return nil, n.err
	}
	out := append([]bantip.PendingBlock(nil), n.pending...)
	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (n *fakeNode) AccountInfo(_ context.Context, account string) (node.AccountInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return node.AccountInfo{}, n.err
	}
	if !n.opened {
		return node.AccountInfo{}, fmt.Errorf("%w: %s", node.ErrAccountNotFound, account)
	}
	return node.AccountInfo{Frontier: n.frontier, Balance: new(uint256.Int).Set(n.balance), Representative: n.rep}, nil
}

func (n *fakeNode) BlockAmount(_ context.Context, hash banano.Hash) (*uint256.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, b := range n.pending {
		if b.Hash == hash.String() {
			return b.Amount, nil
		}
	}
	return nil, &node.RPCError{Action: "blocks_info", Message: "block not found"}
}

func (n *fakeNode) WorkGenerate(_ context.Context, _ banano.Hash) (uint64, error) {
	return n.remote, nil
}

func (n *fakeNode) Process(_ context.Context, block *banano.StateBlock, subtype string) (banano.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	h, err := block.Hash()
	if err != nil {
		return banano.Hash{}, err
	}
	n.processed = append(n.processed, block)
	n.subtypes = append(n.subtypes, subtype)
	n.opened = true
	n.frontier = h
	n.balance = block.Balance
	n.rep = block.Representative
	for i, b := range n.pending {
		if b.Hash == block.Link.String() {
			n.pending = append(n.pending[:i], n.pending[i+1:]...)
			break
		}
	}
	return h, nil
}

func ban(t *testing.T, s string) *uint256.Int {
	t.Helper()
	v, err := banano.ParseAmount(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func newWallet(t *testing.T, n Node, opts ...Option) *Wallet {
	t.Helper()
	opts = append([]Option{WithThreshold(0), WithWorkers(1), WithRandom(entropy.NewRatchet([]byte("test")))}, opts...)
	w, err := New(n, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// TestReceive_OpensAccount builds an open block for a fresh account.
func TestReceive_OpensAccount(t *testing.T) {
	is := is.New(t)

	link := banano.Hash{0xAA}
	n := &fakeNode{pending: []bantip.PendingBlock{{Hash: link.String(), Source: repAccount, Amount: ban(t, "1.5")}}}
	w := newWallet(t, n)

	res, err := w.Receive(context.Background(), userSecret, repAccount, link.String())
	is.NoErr(err)
	is.Equal(len(n.processed), 1)
	is.Equal(n.subtypes[0], banano.SubtypeOpen)

	b := n.processed[0]
	is.Equal(b.Account, userAccount)
	is.Equal(b.Representative, repAccount)
	is.True(b.Previous.IsZero())
	is.Equal(b.Link, link)
	is.True(b.Balance.Eq(ban(t, "1.5")))

	h, err := b.Hash()
	is.NoErr(err)
	is.Equal(res.Hash, h.String())
	pub, err := banano.DecodeAccount(userAccount)
	is.NoErr(err)
	is.True(banano.Verify(pub, h[:], b.Signature))
	is.Equal(res.ReceiveMessage, "received 1 banano 50 banoshi, balance 1 banano 50 banoshi")
}

// TestReceive_AddsToBalance chains onto the frontier of an open account.
func TestReceive_AddsToBalance(t *testing.T) {
	is := is.New(t)

	frontier := banano.Hash{0x01}
	link := banano.Hash{0xBB}
	n := &fakeNode{
		opened:   true,
		frontier: frontier,
		balance:  ban(t, "2"),
		rep:      userAccount,
		pending:  []bantip.PendingBlock{{Hash: link.String(), Amount: ban(t, "1")}},
		remote:   0x1234,
	}
	w := newWallet(t, n, WithRemoteWork(true))

	_, err := w.Receive(context.Background(), userSecret, repAccount, link.String())
	is.NoErr(err)
	is.Equal(n.subtypes[0], banano.SubtypeReceive)

	b := n.processed[0]
	is.Equal(b.Previous, frontier)
	is.True(b.Balance.Eq(ban(t, "3")))
	is.Equal(b.Work, uint64(0x1234))
}

// TestReceive_Errors wraps node failures and rejects bad input before any
// node call.
func TestReceive_Errors(t *testing.T) {
	is := is.New(t)

	w := newWallet(t, &fakeNode{})
	_, err := w.Receive(context.Background(), "nope", repAccount, banano.Hash{1}.String())
	is.True(errors.Is(err, banano.ErrInvalidSeed))

	_, err = w.Receive(context.Background(), userSecret, "ban_bad", banano.Hash{1}.String())
	is.True(errors.Is(err, banano.ErrInvalidAccount))

	_, err = w.Receive(context.Background(), userSecret, repAccount, "xyz")
	is.True(errors.Is(err, banano.ErrInvalidHash))

	// unknown block
	_, err = w.Receive(context.Background(), userSecret, repAccount, banano.Hash{1}.String())
	var lerr *bantip.LedgerError
	is.True(errors.As(err, &lerr))
	is.Equal(lerr.Op, "receive")
}

// TestSend moves funds to the destination key.
func TestSend(t *testing.T) {
	is := is.New(t)

	n := &fakeNode{opened: true, frontier: banano.Hash{0x02}, balance: ban(t, "10"), rep: repAccount}
	w := newWallet(t, n)

	hash, err := w.Send(context.Background(), userSecret, repAccount, ban(t, "4"))
	is.NoErr(err)
	is.Equal(n.subtypes[0], banano.SubtypeSend)

	b := n.processed[0]
	dest, _ := banano.DecodeAccount(repAccount)
	is.Equal(b.Link, banano.Hash(dest))
	is.True(b.Balance.Eq(ban(t, "6")))
	is.Equal(b.Representative, repAccount)
	is.Equal(b.Previous, banano.Hash{0x02})
	is.Equal(hash, n.frontier.String())
}

// TestSend_Insufficient refuses overdrafts and unopened accounts.
func TestSend_Insufficient(t *testing.T) {
	is := is.New(t)

	n := &fakeNode{opened: true, frontier: banano.Hash{0x02}, balance: ban(t, "1"), rep: repAccount}
	w := newWallet(t, n)
	_, err := w.Send(context.Background(), userSecret, repAccount, ban(t, "2"))
	is.True(errors.Is(err, ErrInsufficientBalance))
	is.Equal(len(n.processed), 0)

	w = newWallet(t, &fakeNode{})
	_, err = w.Send(context.Background(), userSecret, repAccount, ban(t, "2"))
	is.True(errors.Is(err, ErrInsufficientBalance))

	_, err = w.Send(context.Background(), userSecret, "ban_bad", ban(t, "2"))
	is.True(errors.Is(err, banano.ErrInvalidAccount))

	_, err = w.Send(context.Background(), userSecret, repAccount, uint256.NewInt(0))
	is.True(errors.Is(err, banano.ErrInvalidAmount))
}

// TestAccountInfo reports a missing account through the Error field.
func TestAccountInfo(t *testing.T) {
	is := is.New(t)

	w := newWallet(t, &fakeNode{})
	info, err := w.AccountInfo(context.Background(), userAccount)
	is.NoErr(err)
	is.Equal(info.Error, "Account not found")
	is.True(info.Balance == nil)

	w = newWallet(t, &fakeNode{opened: true, balance: ban(t, "5")})
	info, err = w.AccountInfo(context.Background(), userAccount)
	is.NoErr(err)
	is.Equal(info.Error, "")
	is.True(info.Balance.Eq(ban(t, "5")))

	w = newWallet(t, &fakeNode{err: errors.New("boom")})
	_, err = w.AccountInfo(context.Background(), userAccount)
	var lerr *bantip.LedgerError
	is.True(errors.As(err, &lerr))
}

// TestDrainPending_WithWallet receives every pending block through the
// wallet until none are left.
func TestDrainPending_WithWallet(t *testing.T) {
	is := is.New(t)

	n := &fakeNode{pending: []bantip.PendingBlock{
		{Hash: banano.Hash{0x10}.String(), Amount: ban(t, "1")},
		{Hash: banano.Hash{0x11}.String(), Amount: ban(t, "2")},
		{Hash: banano.Hash{0x12}.String(), Amount: ban(t, "0.5")},
	}}
	w := newWallet(t, n)

	var receipts []bantip.ReceiveResult
	err := bantip.DrainPending(context.Background(), w, repAccount, userSecret, bantip.DrainOptions{MaxPending: 10}, func(r bantip.ReceiveResult) {
		receipts = append(receipts, r)
	})
	is.NoErr(err)
	is.Equal(len(receipts), 3)
	is.Equal(n.subtypes, []string{banano.SubtypeOpen, banano.SubtypeReceive, banano.SubtypeReceive})
	is.True(n.balance.Eq(ban(t, "3.5")))
	is.Equal(len(n.pending), 0)
}
