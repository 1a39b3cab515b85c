package rpc

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseHexUint64 converts a hex quantity (with or without "0x" prefix) to
// uint64. Used for values that fit in 64 bits: chain IDs, block heights.
//
// Examples:
//   - "0x172721e" -> 24277534
//   - "0x0" -> 0
//   - "" -> 0 (empty string treated as zero)
func ParseHexUint64(hex string) (uint64, error) {
	hex = strings.TrimPrefix(hex, "0x")
	if hex == "" {
		return 0, nil
	}

	val := new(big.Int)
	_, ok := val.SetString(hex, 16)
	if !ok {
		return 0, fmt.Errorf("invalid hex: %s", hex)
	}
	if !val.IsUint64() {
		return 0, fmt.Errorf("value overflows uint64: %s", hex)
	}
	return val.Uint64(), nil
}

// Uint64ToHex formats n as a 0x-prefixed hex quantity for RPC arguments.
func Uint64ToHex(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}
