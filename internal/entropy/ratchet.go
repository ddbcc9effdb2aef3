// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package entropy provides a random byte source built from a SHA256 hash
// ratchet. A Ratchet seeded from crypto/rand serves production code; one
// seeded with fixed bytes makes tests reproducible.
package entropy

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"
)

// Ratchet is an io.Reader producing a deterministic stream from its seed.
//
// Each refill advances the internal state with SHA256 and emits a second,
// domain separated digest of that state, so output never reveals the state
// that produces the next block. It is safe for concurrent use.
type Ratchet struct {
	mu    sync.Mutex
	state [sha256.Size]byte
	buf   []byte
}

// NewRatchet returns a Ratchet whose stream depends only on seed.
func NewRatchet(seed []byte) *Ratchet {
	return &Ratchet{state: sha256.Sum256(seed)}
}

// NewRandomRatchet seeds a Ratchet with 32 bytes from crypto/rand.
func NewRandomRatchet() (*Ratchet, error) {
	seed := make([]byte, sha256.Size)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("could not seed entropy ratchet: %w", err)
	}
	return NewRatchet(seed), nil
}

// Read fills p and never fails.
func (r *Ratchet) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(p) {
		if len(r.buf) == 0 {
			r.refill()
		}
		c := copy(p[n:], r.buf)
		r.buf = r.buf[c:]
		n += c
	}
	return n, nil
}

func (r *Ratchet) refill() {
	r.state = sha256.Sum256(append([]byte("next"), r.state[:]...))
	out := sha256.Sum256(append([]byte("out"), r.state[:]...))
	r.buf = out[:]
}
