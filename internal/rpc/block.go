package rpc

import (
	"fmt"
	"strconv"
	"strings"
)

// blockTags are the symbolic references eth_call accepts besides heights.
var blockTags = map[string]bool{
	"latest":    true,
	"earliest":  true,
	"pending":   true,
	"safe":      true,
	"finalized": true,
}

// ParseBlockRef normalizes a user-supplied block reference into the form
// the RPC layer expects: tags pass through, decimal heights become 0x hex,
// hex quantities are validated and kept. Anything else is rejected here so
// a typo never reaches the network as a confusing node error.
//
// Examples:
//   - "latest" -> "latest"
//   - "12345" -> "0x3039"
//   - "0x172721e" -> "0x172721e"
//   - "" -> "latest"
func ParseBlockRef(arg string) (string, error) {
	arg = strings.TrimSpace(strings.ToLower(arg))

	if arg == "" {
		return "latest", nil
	}
	if blockTags[arg] {
		return arg, nil
	}

	if strings.HasPrefix(arg, "0x") {
		if _, err := strconv.ParseUint(arg[2:], 16, 64); err != nil {
			return "", fmt.Errorf("invalid block reference %q", arg)
		}
		return arg, nil
	}

	num, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid block reference %q", arg)
	}
	return Uint64ToHex(num), nil
}
