// Package config loads the optional endpoints file used by crosscheck and
// resolves which RPC endpoint a single check talks to. It handles ${VAR}
// environment expansion so API keys stay out of the YAML.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root structure of an endpoints file.
type Config struct {
	Endpoints []Endpoint `yaml:"endpoints"` // RPC endpoints to fan out over
	Defaults  Defaults   `yaml:"defaults"`  // settings shared by all endpoints
}

// Endpoint is a single Ethereum RPC endpoint. Each one can carry its own
// timeout, or it inherits from Defaults.
type Endpoint struct {
	Name    string        `yaml:"name"`              // identifier (e.g. "alchemy", "infura")
	URL     string        `yaml:"url"`               // endpoint URL, supports ${VAR} expansion
	Timeout time.Duration `yaml:"timeout,omitempty"` // per-endpoint override
}

// Defaults holds settings applied to endpoints that do not set their own.
type Defaults struct {
	Timeout time.Duration `yaml:"timeout"` // request timeout (e.g. "10s")
}

// Validate checks the configuration and applies defaults. It may emit
// warnings to stderr for suspicious values but only fails on real errors.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}
	if c.Defaults.Timeout == 0 {
		c.Defaults.Timeout = 30 * time.Second
	}

	warnTimeout := func(scope string, d time.Duration) {
		const low = 500 * time.Millisecond
		const high = 2 * time.Minute
		if d > 0 && d < low {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very low (%s); requests may fail under normal network jitter\n", scope, d)
		}
		if d > high {
			fmt.Fprintf(os.Stderr, "Warning: %s timeout is very high (%s); failures may take a long time to surface\n", scope, d)
		}
	}
	warnTimeout("defaults", c.Defaults.Timeout)

	seen := make(map[string]bool, len(c.Endpoints))
	for i := range c.Endpoints {
		ep := &c.Endpoints[i]
		if ep.Name == "" {
			return fmt.Errorf("endpoint %d: name is required", i+1)
		}
		if seen[ep.Name] {
			return fmt.Errorf("endpoint %s: duplicate name", ep.Name)
		}
		seen[ep.Name] = true

		if ep.Timeout == 0 {
			ep.Timeout = c.Defaults.Timeout
		}
		if err := CheckURL(ep.URL); err != nil {
			return fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}

		warnTimeout(fmt.Sprintf("endpoint %s", ep.Name), ep.Timeout)
	}

	return nil
}

// CheckURL verifies s is an absolute http(s) URL. Everything this tool
// does rides plain JSON-RPC over HTTP, so ws:// and friends are refused
// up front instead of failing deep in the transport.
func CheckURL(s string) error {
	if s == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid url (missing scheme or host)")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url scheme %q (expected http or https)", u.Scheme)
	}
	return nil
}

// Load reads and parses a YAML endpoints file, expanding ${VAR} references
// from the environment before parsing so URLs can carry API keys without
// storing them in the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
