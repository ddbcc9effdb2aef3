// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package banano

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Decimal places of raw units in one BAN and one banoshi.
const (
	BananoDecimals  = 29
	BanoshiDecimals = 27
)

// ErrInvalidAmount is returned for amounts that are negative, zero where a
// positive value is needed, too precise, or wider than 128 bits.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	rawPerBanano  = new(big.Int).Exp(big.NewInt(10), big.NewInt(BananoDecimals), nil)
	rawPerBanoshi = new(big.Int).Exp(big.NewInt(10), big.NewInt(BanoshiDecimals), nil)

	printer = message.NewPrinter(language.English)
)

// ParseAmount converts a positive decimal BAN amount such as "1.5" into raw.
func ParseAmount(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s is not positive", ErrInvalidAmount, s)
	}
	raw := d.Shift(BananoDecimals)
	if !raw.IsInteger() {
		return nil, fmt.Errorf("%w: %s has more than %d decimals", ErrInvalidAmount, s, BananoDecimals)
	}
	v, overflow := uint256.FromBig(raw.BigInt())
	if overflow || v.BitLen() > 128 {
		return nil, fmt.Errorf("%w: %s is too large", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatAmount renders raw as a grouped BAN amount, e.g. "1,234.5 BAN".
func FormatAmount(raw *uint256.Int) string {
	if raw == nil {
		raw = new(uint256.Int)
	}
	whole, frac := new(big.Int).QuoRem(raw.ToBig(), rawPerBanano, new(big.Int))

	s := printer.Sprintf("%d", whole.Int64())
	if frac.Sign() != 0 {
		digits := frac.String()
		digits = strings.Repeat("0", BananoDecimals-len(digits)) + digits
		s += "." + strings.TrimRight(digits, "0")
	}
	return s + " BAN"
}

// Describe splits raw into banano, banoshi and raw parts and names the
// non-zero ones, e.g. "1 banano 50 banoshi".
func Describe(raw *uint256.Int) string {
	if raw == nil {
		raw = new(uint256.Int)
	}
	banano, rest := new(big.Int).QuoRem(raw.ToBig(), rawPerBanano, new(big.Int))
	banoshi, rest := new(big.Int).QuoRem(rest, rawPerBanoshi, new(big.Int))

	var parts []string
	if banano.Sign() != 0 {
		parts = append(parts, printer.Sprintf("%d banano", banano.Int64()))
	}
	if banoshi.Sign() != 0 {
		parts = append(parts, fmt.Sprintf("%s banoshi", banoshi))
	}
	if rest.Sign() != 0 {
		parts = append(parts, fmt.Sprintf("%s raw", rest))
	}
	if len(parts) == 0 {
		return "0 banano"
	}
	return strings.Join(parts, " ")
}
