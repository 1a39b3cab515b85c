package rpc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"
)

// FunctionSelector computes the 4-byte function selector from a signature
// e.g., "allowance(address,address)" -> 0xdd62ed3e
func FunctionSelector(signature string) []byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	return hasher.Sum(nil)[:4]
}

// EncodeAddress pads an Ethereum address to 32 bytes (left-padded with zeros)
func EncodeAddress(addr string) ([]byte, error) {
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")
	if len(addr) != 40 {
		return nil, fmt.Errorf("invalid address length: expected 40 hex chars, got %d", len(addr))
	}

	addrBytes, err := hex.DecodeString(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address hex: %w", err)
	}

	// Left-pad to 32 bytes (address is 20 bytes, goes in last 20 bytes)
	padded := make([]byte, 32)
	copy(padded[12:], addrBytes)
	return padded, nil
}

// EncodeCalldata creates the calldata for a zero-argument read such as
// decimals() or symbol(): just the selector, hex encoded.
func EncodeCalldata(signature string) string {
	return "0x" + hex.EncodeToString(FunctionSelector(signature))
}

// EncodeAllowanceCalldata creates the calldata for allowance(owner, spender)
func EncodeAllowanceCalldata(owner, spender string) (string, error) {
	selector := FunctionSelector("allowance(address,address)")

	ownerWord, err := EncodeAddress(owner)
	if err != nil {
		return "", fmt.Errorf("failed to encode owner: %w", err)
	}
	spenderWord, err := EncodeAddress(spender)
	if err != nil {
		return "", fmt.Errorf("failed to encode spender: %w", err)
	}

	calldata := append(append(selector, ownerWord...), spenderWord...)
	return "0x" + hex.EncodeToString(calldata), nil
}

// decodeResultBytes strips the 0x prefix and hex-decodes an eth_call result.
func decodeResultBytes(hexResult string) ([]byte, error) {
	hexResult = strings.TrimPrefix(strings.TrimSpace(hexResult), "0x")
	if len(hexResult)%2 != 0 {
		hexResult = "0" + hexResult
	}
	data, err := hex.DecodeString(hexResult)
	if err != nil {
		return nil, fmt.Errorf("invalid hex result: %w", err)
	}
	return data, nil
}

// DecodeUint256 parses an eth_call result into a big.Int. Empty return data
// is an error: it means the target has no code or no such function, and
// silently reading it as zero would fake a real answer.
func DecodeUint256(hexResult string) (*big.Int, error) {
	data, err := decodeResultBytes(hexResult)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty return data")
	}
	if len(data) > 32 {
		data = data[:32]
	}
	return new(big.Int).SetBytes(data), nil
}

// DecodeUint8 parses an eth_call result into a uint8, rejecting values that
// do not fit. ERC20 decimals() is declared uint8; anything wider marks a
// contract that does not implement the interface.
func DecodeUint8(hexResult string) (uint8, error) {
	val, err := DecodeUint256(hexResult)
	if err != nil {
		return 0, err
	}
	if !val.IsUint64() || val.Uint64() > 255 {
		return 0, fmt.Errorf("value %s out of uint8 range", val.String())
	}
	return uint8(val.Uint64()), nil
}

// DecodeString parses an eth_call result declared as a solidity string.
// Most tokens ABI-encode symbol() and name() as a dynamic string; a few old
// contracts (MKR among them) declared them bytes32, so a bare 32-byte word
// is decoded as a null-terminated fixed string instead.
func DecodeString(hexResult string) (string, error) {
	data, err := decodeResultBytes(hexResult)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty return data")
	}

	// bytes32 layout: one word, string bytes up front, zero padded.
	if len(data) == 32 {
		return string(bytes.TrimRight(data, "\x00")), nil
	}

	if len(data) < 64 {
		return "", fmt.Errorf("return data too short for string: %d bytes", len(data))
	}

	offset := new(big.Int).SetBytes(data[:32])
	if !offset.IsUint64() || offset.Uint64() >= uint64(len(data)) || uint64(len(data))-offset.Uint64() < 32 {
		return "", fmt.Errorf("string offset out of range")
	}
	o := offset.Uint64()

	length := new(big.Int).SetBytes(data[o : o+32])
	if !length.IsUint64() || length.Uint64() > uint64(len(data))-o-32 {
		return "", fmt.Errorf("string length out of range")
	}
	l := length.Uint64()

	return string(data[o+32 : o+32+l]), nil
}

// ValidateAddress checks if a string is a valid Ethereum address. All-lower
// and all-upper hex carry no checksum and pass on length and charset alone;
// mixed-case hex must match its EIP-55 form, since a wrong checksum usually
// means a mistyped address.
func ValidateAddress(addr string) error {
	addr = strings.TrimPrefix(addr, "0x")
	if len(addr) != 40 {
		return fmt.Errorf("invalid address length: expected 40 hex chars (with or without 0x prefix)")
	}
	_, err := hex.DecodeString(addr)
	if err != nil {
		return fmt.Errorf("invalid address: contains non-hex characters")
	}
	if hasMixedCase(addr) && addr != checksumHex(strings.ToLower(addr)) {
		return fmt.Errorf("invalid address checksum: mixed-case form does not match EIP-55")
	}
	return nil
}

func hasMixedCase(hexAddr string) bool {
	var lower, upper bool
	for _, c := range hexAddr {
		switch {
		case c >= 'a' && c <= 'f':
			lower = true
		case c >= 'A' && c <= 'F':
			upper = true
		}
	}
	return lower && upper
}

// checksumHex uppercases each hex letter of a lowercase 40-char address
// whose matching nibble of keccak256(lowercase address) is 8 or above.
func checksumHex(lower string) string {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	sum := hasher.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return string(out)
}

// ChecksumAddress returns the EIP-55 mixed-case form of an address.
func ChecksumAddress(addr string) (string, error) {
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}
	return "0x" + checksumHex(strings.ToLower(strings.TrimPrefix(addr, "0x"))), nil
}
