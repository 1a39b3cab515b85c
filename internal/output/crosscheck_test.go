package output

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

func sampleCrosscheck() *CrosscheckView {
	return &CrosscheckView{
		Token:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Symbol:   "USDC",
		Decimals: 6,
		Owner:    "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045",
		Spender:  "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
		Block:    "0x172721e",
		Readings: []EndpointReading{
			{Name: "primary", Raw: big.NewInt(1234567), Head: 24277534, Latency: 80 * time.Millisecond},
			{Name: "backup", Raw: big.NewInt(1234567), Head: 24277534, Latency: 120 * time.Millisecond},
			{Name: "stale", Raw: big.NewInt(999), Head: 24277500, Latency: 95 * time.Millisecond},
			{Name: "broken", Err: errors.New("eth_call: HTTP 502"), Latency: 40 * time.Millisecond},
		},
		Elapsed: 300 * time.Millisecond,
	}
}

func TestCrosscheckGroups(t *testing.T) {
	groups := sampleCrosscheck().Groups()

	if len(groups) != 2 {
		t.Fatalf("Groups() returned %d groups, want 2", len(groups))
	}
	if groups[0].Raw != "1234567" || groups[0].Human != "1.234567" {
		t.Errorf("groups[0] = %+v, want raw 1234567 human 1.234567", groups[0])
	}
	if got, want := strings.Join(groups[0].Endpoints, ","), "primary,backup"; got != want {
		t.Errorf("groups[0].Endpoints = %v, want %v", got, want)
	}
	if groups[1].Raw != "999" {
		t.Errorf("groups[1].Raw = %v, want 999", groups[1].Raw)
	}
}

func TestCrosscheckConsensus(t *testing.T) {
	view := sampleCrosscheck()
	if view.Consensus() {
		t.Error("Consensus() = true for diverging readings")
	}
	if got := view.Reachable(); got != 3 {
		t.Errorf("Reachable() = %d, want 3", got)
	}

	// Drop the diverging endpoint and consensus should hold.
	view.Readings = append(view.Readings[:2], view.Readings[3])
	if !view.Consensus() {
		t.Error("Consensus() = false when all reachable endpoints agree")
	}

	// Errors alone never make a consensus.
	view.Readings = []EndpointReading{{Name: "broken", Err: errors.New("down")}}
	if view.Consensus() {
		t.Error("Consensus() = true with zero reachable endpoints")
	}
}

func TestRenderCrosscheckJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCrosscheckJSON(&buf, sampleCrosscheck()); err != nil {
		t.Fatalf("RenderCrosscheckJSON() error = %v", err)
	}

	payload := decodeJSON(t, &buf)
	if got := payload["consensus"]; got != false {
		t.Errorf("consensus = %v, want false", got)
	}

	endpoints, ok := payload["endpoints"].([]interface{})
	if !ok || len(endpoints) != 4 {
		t.Fatalf("endpoints = %v, want 4 entries", payload["endpoints"])
	}

	first := endpoints[0].(map[string]interface{})
	if got := first["allowanceRaw"]; got != "1234567" {
		t.Errorf("endpoints[0].allowanceRaw = %v, want 1234567", got)
	}
	if got := first["allowanceHuman"]; got != "1.234567" {
		t.Errorf("endpoints[0].allowanceHuman = %v, want 1.234567", got)
	}
	if got := first["error"]; got != nil {
		t.Errorf("endpoints[0].error = %v, want null", got)
	}

	broken := endpoints[3].(map[string]interface{})
	if got := broken["error"]; got != "eth_call: HTTP 502" {
		t.Errorf("endpoints[3].error = %v, want the call error", got)
	}
	if got := broken["allowanceRaw"]; got != nil {
		t.Errorf("endpoints[3].allowanceRaw = %v, want null", got)
	}

	groups, ok := payload["groups"].([]interface{})
	if !ok || len(groups) != 2 {
		t.Fatalf("groups = %v, want 2 entries", payload["groups"])
	}
}

func TestRenderCrosscheckText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	RenderCrosscheckText(&buf, sampleCrosscheck())

	out := buf.String()
	for _, want := range []string{
		"Allowance Crosscheck",
		"primary",
		"✓ OK",
		"✗ eth_call: HTTP 502",
		"✗ ALLOWANCE MISMATCH DETECTED:",
		"1234567 (1.234567 USDC)  →  primary, backup",
		"999 (0.000999 USDC)  →  stale",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCrosscheckTextConsensus(t *testing.T) {
	color.NoColor = true

	view := sampleCrosscheck()
	view.Readings = view.Readings[:2]

	var buf bytes.Buffer
	RenderCrosscheckText(&buf, view)

	out := buf.String()
	if !strings.Contains(out, "✓ CONSENSUS: 2 of 2 endpoints agree") {
		t.Errorf("output is missing the consensus verdict:\n%s", out)
	}
	if strings.Contains(out, "MISMATCH") {
		t.Errorf("output reports a mismatch on agreeing readings:\n%s", out)
	}
}

func TestTruncateError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"short stays whole", "eth_call: HTTP 502", "eth_call: HTTP 502"},
		{"long ascii trimmed", strings.Repeat("x", 60), strings.Repeat("x", 45) + "..."},
		{"multibyte boundary", strings.Repeat("ü", 60), strings.Repeat("ü", 45) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateError(errors.New(tt.msg))
			if got != tt.want {
				t.Errorf("truncateError() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateError() produced invalid UTF-8: %q", got)
			}
		})
	}
}

func TestRenderCrosscheckTextNothingReachable(t *testing.T) {
	color.NoColor = true

	view := sampleCrosscheck()
	view.Readings = []EndpointReading{
		{Name: "a", Err: errors.New("timeout")},
		{Name: "b", Err: errors.New("refused")},
	}

	var buf bytes.Buffer
	RenderCrosscheckText(&buf, view)

	if !strings.Contains(buf.String(), "✗ No endpoints responded successfully") {
		t.Errorf("output is missing the unreachable verdict:\n%s", buf.String())
	}
}
