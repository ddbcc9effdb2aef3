// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package entropy

import (
	"bytes"
	"testing"

	"github.com/matryer/is"
)

// TestRatchet_Deterministic verifies equal seeds give equal streams
func TestRatchet_Deterministic(t *testing.T) {
	is := is.New(t)

	a := make([]byte, 100)
	b := make([]byte, 100)
	_, err := NewRatchet([]byte("seed")).Read(a)
	is.NoErr(err)
	_, err = NewRatchet([]byte("seed")).Read(b)
	is.NoErr(err)
	is.Equal(a, b)

	c := make([]byte, 100)
	_, err = NewRatchet([]byte("other")).Read(c)
	is.NoErr(err)
	is.True(!bytes.Equal(a, c))
}

// TestRatchet_ChunkingDoesNotMatter reads the same stream in odd sized pieces.
func TestRatchet_ChunkingDoesNotMatter(t *testing.T) {
	is := is.New(t)

	whole := make([]byte, 77)
	_, _ = NewRatchet([]byte("seed")).Read(whole)

	r := NewRatchet([]byte("seed"))
	var pieces []byte
	for _, n := range []int{1, 31, 2, 40, 3} {
		p := make([]byte, n)
		got, err := r.Read(p)
		is.NoErr(err)
		is.Equal(got, n)
		pieces = append(pieces, p...)
	}
	is.Equal(pieces, whole)
}

// TestNewRandomRatchet produces distinct streams.
func TestNewRandomRatchet(t *testing.T) {
	is := is.New(t)

	a, err := NewRandomRatchet()
	is.NoErr(err)
	b, err := NewRandomRatchet()
	is.NoErr(err)
	pa, pb := make([]byte, 32), make([]byte, 32)
	_, _ = a.Read(pa)
	_, _ = b.Read(pb)
	is.True(!bytes.Equal(pa, pb))
}
