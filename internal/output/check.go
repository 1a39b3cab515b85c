// Package output renders check results for terminal and JSON consumers.
// Renderers write to an io.Writer supplied by the caller; the commands
// point them at stdout so results stay separate from the stderr log.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/token"
)

// CheckView bundles everything the renderers need to present one
// allowance check: the on-chain snapshot, the optional comparison
// against an expected amount, and how the fetch went.
type CheckView struct {
	Snapshot   *allowance.Snapshot
	Comparison *allowance.Comparison
	Endpoint   string // display name of the endpoint that served the check
	RPCURL     string
	Elapsed    time.Duration
}

// checkJSON is the machine-readable shape of a check result. Pointer
// fields render as null when the value is absent: no expectation was
// supplied, or the endpoint did not answer eth_chainId.
type checkJSON struct {
	ChainID        *uint64 `json:"chainId"`
	RPCURL         string  `json:"rpcUrl"`
	Block          string  `json:"block"`
	TokenAddress   string  `json:"tokenAddress"`
	TokenName      string  `json:"tokenName"`
	TokenSymbol    string  `json:"tokenSymbol"`
	TokenDecimals  uint8   `json:"tokenDecimals"`
	Owner          string  `json:"owner"`
	Spender        string  `json:"spender"`
	AllowanceRaw   string  `json:"allowanceRaw"`
	AllowanceHuman string  `json:"allowanceHuman"`
	ZeroAllowance  bool    `json:"zeroAllowance"`
	ExpectedRaw    *string `json:"expectedRaw"`
	ExpectedHuman  *string `json:"expectedHuman"`
	Result         string  `json:"result"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

// RenderCheckJSON writes the check result as indented JSON.
func RenderCheckJSON(w io.Writer, v *CheckView) error {
	snap := v.Snapshot
	payload := checkJSON{
		RPCURL:         v.RPCURL,
		Block:          snap.BlockRef,
		TokenAddress:   snap.Token,
		TokenName:      snap.Name,
		TokenSymbol:    snap.Symbol,
		TokenDecimals:  snap.Decimals,
		Owner:          snap.Owner,
		Spender:        snap.Spender,
		AllowanceRaw:   snap.Raw.String(),
		AllowanceHuman: snap.Human,
		ZeroAllowance:  snap.Zero(),
		Result:         string(allowance.OutcomeNone),
		ElapsedSeconds: v.Elapsed.Seconds(),
	}
	if snap.ChainID != 0 {
		id := snap.ChainID
		payload.ChainID = &id
	}
	if cmp := v.Comparison; cmp != nil {
		payload.Result = string(cmp.Outcome)
		if cmp.Outcome != allowance.OutcomeNone {
			raw := cmp.ExpectedRaw.String()
			human := cmp.ExpectedHuman
			payload.ExpectedRaw = &raw
			payload.ExpectedHuman = &human
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// RenderCheckText writes the human-readable form of a check result.
func RenderCheckText(w io.Writer, v *CheckView) {
	snap := v.Snapshot

	fmt.Fprintf(w, "\n%s\n", bold("ERC20 Allowance Check"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  Token:        %s (%s)\n", snap.Name, cyan(snap.Symbol))
	fmt.Fprintf(w, "  Contract:     %s\n", snap.Token)
	fmt.Fprintf(w, "  Owner:        %s\n", snap.Owner)
	fmt.Fprintf(w, "  Spender:      %s\n", snap.Spender)
	fmt.Fprintf(w, "  Block:        %s\n", snap.BlockRef)
	if snap.ChainID != 0 {
		fmt.Fprintf(w, "  Chain ID:     %d\n", snap.ChainID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Allowance:    %s\n", bold(token.FormatAmount(snap.Raw, snap.Decimals, snap.Symbol)))
	fmt.Fprintf(w, "  Raw amount:   %s\n", snap.Raw.String())

	if snap.Zero() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", yellow("⚠ Allowance is zero: the spender cannot move any funds"))
	}

	if cmp := v.Comparison; cmp != nil && cmp.Outcome != allowance.OutcomeNone {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Expected:     %s %s\n", token.GroupDigits(cmp.ExpectedHuman), snap.Symbol)
		switch cmp.Outcome {
		case allowance.OutcomeMatch:
			fmt.Fprintf(w, "  %s\n", green("✓ Allowance matches the expected amount"))
		case allowance.OutcomeMismatch:
			fmt.Fprintf(w, "  %s on-chain %s, expected %s\n",
				red("✗ MISMATCH:"), snap.Human, cmp.ExpectedHuman)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Fetched via:  %s (%s)\n", v.Endpoint, formatLatency(v.Elapsed))
}
