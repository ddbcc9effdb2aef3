// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package bantip

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/matryer/is"
)

const testSalt = "AB000000000000000000000000000000000000000000000000000000000000CD"

type stringerID struct{ id string }

func (s stringerID) String() string { return s.id }

// TestDeriveSecret_KnownValue pins the derivation for a fixed salt and id.
func TestDeriveSecret_KnownValue(t *testing.T) {
	is := is.New(t)

	secret, err := DeriveSecret([]byte(testSalt), "12345")
	is.NoErr(err)
	is.Equal(secret, "4d3f03054208a4700bf3ef068d102f948f2bb03f96e9bffe0c9df4cd125f1551")
	is.Equal(len(secret), 64)
	is.Equal(secret, strings.ToLower(secret))
}

// TestDeriveSecret_Deterministic verifies repeated calls return the same secret
func TestDeriveSecret_Deterministic(t *testing.T) {
	is := is.New(t)

	first, err := DeriveSecret([]byte(testSalt), "12345")
	is.NoErr(err)

	for range 5 {
		again, err := DeriveSecret([]byte(testSalt), "12345")
		is.NoErr(err)
		is.Equal(again, first)
	}
}

// TestDeriveSecret_IntegerAndStringAgree checks that numeric ids use their
// decimal string form.
func TestDeriveSecret_IntegerAndStringAgree(t *testing.T) {
	is := is.New(t)

	fromString, err := DeriveSecret([]byte(testSalt), "12345")
	is.NoErr(err)

	for _, id := range []any{12345, int64(12345), uint64(12345), stringerID{"12345"}} {
		got, err := DeriveSecret([]byte(testSalt), id)
		is.NoErr(err)
		is.Equal(got, fromString)
	}
}

// TestDeriveSecret_NoCollisions derives secrets for sequential ids and
// expects every one to be distinct.
func TestDeriveSecret_NoCollisions(t *testing.T) {
	is := is.New(t)

	seen := make(map[string]int, 10000)
	for i := range 10000 {
		secret, err := DeriveSecret([]byte(testSalt), strconv.Itoa(i))
		is.NoErr(err)
		_, dup := seen[secret]
		is.True(!dup) // collision
		seen[secret] = i
	}
	is.Equal(len(seen), 10000)
}

// TestDeriveSecret_SaltMatters verifies different salts map the same user to
// different secrets.
func TestDeriveSecret_SaltMatters(t *testing.T) {
	is := is.New(t)

	a, err := DeriveSecret([]byte(testSalt), "12345")
	is.NoErr(err)
	b, err := DeriveSecret([]byte(strings.Replace(testSalt, "CD", "CE", 1)), "12345")
	is.NoErr(err)
	is.True(a != b)
}

// TestDeriveSecret_InvalidInput covers identifiers that cannot be rendered.
func TestDeriveSecret_InvalidInput(t *testing.T) {
	cases := map[string]any{
		"nil":    nil,
		"empty":  "",
		"float":  1.5,
		"bytes":  []byte("12345"),
		"struct": struct{}{},
	}

	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			_, err := DeriveSecret([]byte(testSalt), id)
			var invalid *InvalidInputError
			is.True(errors.As(err, &invalid))
		})
	}
}

// TestDeriver_CopiesSalt checks the Deriver is unaffected by later changes to
// the caller's salt slice.
func TestDeriver_CopiesSalt(t *testing.T) {
	is := is.New(t)

	salt := []byte(testSalt)
	d := NewDeriver(salt)
	salt[0] = 'Z'

	got, err := d.Secret("12345")
	is.NoErr(err)
	is.Equal(got, "4d3f03054208a4700bf3ef068d102f948f2bb03f96e9bffe0c9df4cd125f1551")
}
