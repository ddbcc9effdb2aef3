// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/complex-gh/bantip"
	"github.com/complex-gh/bantip/internal/banano"
	"github.com/holiman/uint256"
)

// AccountInfo is the node's account_info answer.
type AccountInfo struct {
	Frontier          banano.Hash
	Balance           *uint256.Int
	Representative    string
	ModifiedTimestamp time.Time
}

// AccountsPending lists up to count receivable blocks for account in the
// order the node wrote them. A count below one lets the node pick its default.
func (c *Client) AccountsPending(ctx context.Context, account string, count int) ([]bantip.PendingBlock, error) {
	req := map[string]any{
		"action":   "accounts_pending",
		"accounts": []string{account},
		"source":   true,
	}
	if count > 0 {
		req["count"] = strconv.Itoa(count)
	}

	var resp struct {
		Blocks map[string]json.RawMessage `json:"blocks"`
	}
	if err := c.call(ctx, "accounts_pending", req, &resp); err != nil {
		return nil, err
	}
	return decodePending(resp.Blocks[account])
}

type pendingEntry struct {
	Amount string `json:"amount"`
	Source string `json:"source"`
}

// decodePending walks the hash keyed object by token so the node's order
// survives. The node writes "" for an account with nothing pending.
func decodePending(raw json.RawMessage) ([]bantip.PendingBlock, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte(`""`)) || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("could not decode pending blocks: want object, got %v", tok)
	}

	var blocks []bantip.PendingBlock
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("could not decode pending blocks: %w", err)
		}
		hash, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("could not decode pending blocks: unexpected key %v", tok)
		}

		var entry pendingEntry
		if err := dec.Decode(&entry); err != nil {
			// without source the node writes the amount alone
			return nil, fmt.Errorf("could not decode pending block %s: %w", hash, err)
		}
		amount, err := uint256.FromDecimal(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("could not decode amount of pending block %s: %w", hash, err)
		}
		blocks = append(blocks, bantip.PendingBlock{Hash: hash, Source: entry.Source, Amount: amount})
	}
	return blocks, nil
}

// AccountInfo fetches balance, frontier and representative of account.
func (c *Client) AccountInfo(ctx context.Context, account string) (AccountInfo, error) {
	req := map[string]any{
		"action":         "account_info",
		"account":        account,
		"representative": "true",
	}

	var resp struct {
		Frontier          string `json:"frontier"`
		Balance           string `json:"balance"`
		Representative    string `json:"representative"`
		ModifiedTimestamp string `json:"modified_timestamp"`
	}
	if err := c.call(ctx, "account_info", req, &resp); err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.Message == "Account not found" {
			return AccountInfo{}, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
		}
		return AccountInfo{}, err
	}

	frontier, err := banano.ParseHash(resp.Frontier)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("could not decode account_info frontier: %w", err)
	}
	balance, err := uint256.FromDecimal(resp.Balance)
	if err != nil {
		return AccountInfo{}, fmt.Errorf("could not decode account_info balance: %w", err)
	}
	info := AccountInfo{Frontier: frontier, Balance: balance, Representative: resp.Representative}
	if resp.ModifiedTimestamp != "" {
		secs, err := strconv.ParseInt(resp.ModifiedTimestamp, 10, 64)
		if err != nil {
			return AccountInfo{}, fmt.Errorf("could not decode account_info timestamp: %w", err)
		}
		info.ModifiedTimestamp = time.Unix(secs, 0).UTC()
	}
	return info, nil
}

// BlockAmount returns the amount moved by the block with hash.
func (c *Client) BlockAmount(ctx context.Context, hash banano.Hash) (*uint256.Int, error) {
	req := map[string]any{
		"action":     "blocks_info",
		"hashes":     []string{hash.String()},
		"json_block": "true",
	}

	var resp struct {
		Blocks map[string]struct {
			Amount string `json:"amount"`
		} `json:"blocks"`
	}
	if err := c.call(ctx, "blocks_info", req, &resp); err != nil {
		return nil, err
	}
	block, ok := resp.Blocks[hash.String()]
	if !ok {
		return nil, &RPCError{Action: "blocks_info", Message: "block not found: " + hash.String()}
	}
	amount, err := uint256.FromDecimal(block.Amount)
	if err != nil {
		return nil, fmt.Errorf("could not decode blocks_info amount: %w", err)
	}
	return amount, nil
}

// WorkGenerate asks the node to compute proof of work for root.
func (c *Client) WorkGenerate(ctx context.Context, root banano.Hash) (uint64, error) {
	req := map[string]any{
		"action": "work_generate",
		"hash":   root.String(),
	}

	var resp struct {
		Work string `json:"work"`
	}
	if err := c.call(ctx, "work_generate", req, &resp); err != nil {
		return 0, err
	}
	return banano.ParseWork(resp.Work)
}

// Process publishes a signed block and returns the hash the node assigned.
func (c *Client) Process(ctx context.Context, block *banano.StateBlock, subtype string) (banano.Hash, error) {
	req := map[string]any{
		"action":     "process",
		"json_block": "true",
		"subtype":    subtype,
		"block":      block,
	}

	var resp struct {
		Hash string `json:"hash"`
	}
	if err := c.call(ctx, "process", req, &resp); err != nil {
		return banano.Hash{}, err
	}
	return banano.ParseHash(resp.Hash)
}
