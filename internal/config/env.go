package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvRPCURL is the environment fallback consulted when --rpc is not given.
const EnvRPCURL = "RPC_URL"

// LoadEnv reads KEY=VALUE pairs from a .env file in the current working
// directory and sets them with os.Setenv. A missing file is not an error;
// the system environment simply applies as-is.
//
// Format: one KEY=VALUE per line, # starts a comment, values may be quoted
// with single or double quotes (quotes are stripped).
func LoadEnv() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the first "=" so values may contain "=".
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			value = strings.Trim(value, `"'`)
			os.Setenv(key, value)
		}
	}
}

// ResolveRPC picks the endpoint URL for a single check: the --rpc flag
// wins, then the RPC_URL environment variable; with neither present the
// check fails rather than guessing at a public endpoint.
func ResolveRPC(flagValue string) (string, error) {
	candidate := strings.TrimSpace(flagValue)
	if candidate == "" {
		candidate = strings.TrimSpace(os.Getenv(EnvRPCURL))
	}
	if candidate == "" {
		return "", fmt.Errorf("no RPC endpoint: pass --rpc or set %s", EnvRPCURL)
	}
	if err := CheckURL(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}
