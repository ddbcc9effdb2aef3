// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package node is a client for the JSON RPC API of a Banano node, or of a
// public proxy exposing the same actions.
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrAccountNotFound is returned by AccountInfo for accounts without an open
// block.
var ErrAccountNotFound = errors.New("account not found")

// maxResponseSize caps how much of a node response is read.
const maxResponseSize = 4 << 20

// RPCError is an error reported by the node inside a well formed response.
type RPCError struct {
	Action  string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("node %s: %s", e.Action, e.Message)
}

// Client talks to one node endpoint. It is safe for concurrent use.
type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (30s timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for the API at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// call posts req for action and decodes the answer into resp.
func (c *Client) call(ctx context.Context, action string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not build %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("could not call %s: %w", action, err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("could not read %s response: %w", action, err)
	}
	c.logger.Debug("node call",
		zap.String("action", action),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	var rpcErr struct {
		Error string `json:"error"`
	}
	// A non-JSON body is reported below, by status or by the real decode.
	_ = json.Unmarshal(data, &rpcErr)
	if rpcErr.Error != "" {
		return &RPCError{Action: action, Message: rpcErr.Error}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("could not call %s: unexpected status %s", action, httpResp.Status)
	}
	if err := json.Unmarshal(data, resp); err != nil {
		return fmt.Errorf("could not decode %s response: %w", action, err)
	}
	return nil
}
