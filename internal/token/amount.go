// Package token converts ERC20 amounts between raw base units and
// human-readable decimal strings. All arithmetic is exact: values move
// through big integers and fixed-point decimals, never through floats,
// so a comparison can trust every digit.
package token

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUnits renders a raw base-unit amount with exactly decimals places,
// e.g. raw 1000000000000000000000 at 18 decimals -> "1000.000000000000000000".
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		raw = new(big.Int)
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).StringFixed(int32(decimals))
}

// ParseUnits converts a human-readable amount to raw base units, rejecting
// anything that cannot be represented exactly at the token's scale. Comma
// separators are tolerated: "1,000.5" reads as "1000.5".
func ParseUnits(human string, decimals uint8) (*big.Int, error) {
	d, err := parseAmount(human)
	if err != nil {
		return nil, err
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %q needs more than %d decimal places", human, decimals)
	}
	return shifted.BigInt(), nil
}

// CheckAmountSyntax verifies s parses as a non-negative decimal amount
// without committing to a token scale yet. Lets the CLI reject a bad
// --expected before any network traffic.
func CheckAmountSyntax(s string) error {
	_, err := parseAmount(s)
	return err
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a decimal number: %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount: %q", s)
	}
	return d, nil
}

// GroupDigits inserts thousand separators into the whole part of a decimal
// string: "1234567.25" -> "1,234,567.25".
func GroupDigits(s string) string {
	whole, frac, hasFrac := strings.Cut(s, ".")
	if len(whole) > 3 {
		var out []byte
		for i, c := range whole {
			if i > 0 && (len(whole)-i)%3 == 0 {
				out = append(out, ',')
			}
			out = append(out, byte(c))
		}
		whole = string(out)
	}
	if hasFrac {
		return whole + "." + frac
	}
	return whole
}

// FormatAmount renders an amount for terminal display: grouped digits plus
// the token symbol, e.g. "1,234,567.890123 USDC".
func FormatAmount(raw *big.Int, decimals uint8, symbol string) string {
	s := GroupDigits(FormatUnits(raw, decimals))
	if symbol == "" {
		return s
	}
	return s + " " + symbol
}
