// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkThreshold is the minimum work value the Banano network accepts
// for any block.
const DefaultWorkThreshold uint64 = 0xfffffe0000000000

// checkEvery is how many nonces a worker tries between context checks.
const checkEvery = 1 << 12

var errWorkFound = errors.New("work found")

// WorkValue returns the difficulty value of nonce for root:
// blake2b-64(nonce as little endian || root), read as little endian.
func WorkValue(root Hash, nonce uint64) uint64 {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], nonce)

	h, _ := blake2b.New(8, nil)
	h.Write(n[:])
	h.Write(root[:])
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// ValidWork reports whether nonce meets threshold for root.
func ValidWork(root Hash, nonce, threshold uint64) bool {
	return WorkValue(root, nonce) >= threshold
}

// FormatWork renders a nonce as the node expects: 16 lower case hex digits.
func FormatWork(nonce uint64) string {
	return fmt.Sprintf("%016x", nonce)
}

// ParseWork reads the hex form produced by FormatWork.
func ParseWork(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid work %q: %w", s, err)
	}
	return v, nil
}

// GenerateWork searches for a nonce meeting threshold for root on workers
// goroutines (GOMAXPROCS when workers < 1). Each worker starts at an offset
// read from rand and counts upward. It returns ctx's error if ctx ends first.
func GenerateWork(ctx context.Context, root Hash, threshold uint64, workers int, rand io.Reader) (uint64, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	starts := make([]uint64, workers)
	var b [8]byte
	for i := range starts {
		if _, err := io.ReadFull(rand, b[:]); err != nil {
			return 0, fmt.Errorf("could not seed work search: %w", err)
		}
		starts[i] = binary.BigEndian.Uint64(b[:])
	}

	found := make(chan uint64, 1)
	g, gctx := errgroup.WithContext(ctx)
	for _, start := range starts {
		g.Go(func() error {
			for nonce := start; ; nonce++ {
				if nonce%checkEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if ValidWork(root, nonce, threshold) {
					select {
					case found <- nonce:
					default:
					}
					return errWorkFound
				}
			}
		})
	}

	err := g.Wait()
	select {
	case nonce := <-found:
		return nonce, nil
	default:
	}
	if err == nil || errors.Is(err, errWorkFound) {
		err = ctx.Err()
	}
	return 0, fmt.Errorf("could not generate work: %w", err)
}
