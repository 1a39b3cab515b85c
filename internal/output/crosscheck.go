package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/dmagro/allowcheck/internal/token"
)

// EndpointReading is one endpoint's answer during a crosscheck. Raw is
// nil when Err is set; Head is zero when the head lookup failed.
type EndpointReading struct {
	Name    string
	Raw     *big.Int
	Head    uint64
	Latency time.Duration
	Err     error
}

// CrosscheckView holds the per-endpoint readings of one allowance query
// plus the token metadata used to render human amounts.
type CrosscheckView struct {
	Token    string
	Symbol   string
	Decimals uint8
	Owner    string
	Spender  string
	Block    string
	Readings []EndpointReading
	Elapsed  time.Duration
}

// ValueGroup collects the endpoints that reported the same raw value.
type ValueGroup struct {
	Raw       string
	Human     string
	Endpoints []string
}

// Groups buckets successful readings by raw value, in order of first
// appearance so output is stable.
func (v *CrosscheckView) Groups() []ValueGroup {
	index := make(map[string]int)
	var groups []ValueGroup

	for _, r := range v.Readings {
		if r.Err != nil {
			continue
		}
		raw := r.Raw.String()
		i, ok := index[raw]
		if !ok {
			i = len(groups)
			index[raw] = i
			groups = append(groups, ValueGroup{
				Raw:   raw,
				Human: token.FormatUnits(r.Raw, v.Decimals),
			})
		}
		groups[i].Endpoints = append(groups[i].Endpoints, r.Name)
	}
	return groups
}

// Reachable counts readings that came back without error.
func (v *CrosscheckView) Reachable() int {
	n := 0
	for _, r := range v.Readings {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Consensus reports whether every reachable endpoint returned the same
// raw allowance. It is false when nothing was reachable.
func (v *CrosscheckView) Consensus() bool {
	return v.Reachable() > 0 && len(v.Groups()) == 1
}

type crosscheckEndpointJSON struct {
	Name           string  `json:"name"`
	AllowanceRaw   *string `json:"allowanceRaw"`
	AllowanceHuman *string `json:"allowanceHuman"`
	HeadBlock      uint64  `json:"headBlock"`
	LatencyMs      int64   `json:"latencyMs"`
	Error          *string `json:"error"`
}

type crosscheckGroupJSON struct {
	AllowanceRaw   string   `json:"allowanceRaw"`
	AllowanceHuman string   `json:"allowanceHuman"`
	Endpoints      []string `json:"endpoints"`
}

type crosscheckJSON struct {
	TokenAddress   string                   `json:"tokenAddress"`
	TokenSymbol    string                   `json:"tokenSymbol"`
	TokenDecimals  uint8                    `json:"tokenDecimals"`
	Owner          string                   `json:"owner"`
	Spender        string                   `json:"spender"`
	Block          string                   `json:"block"`
	Endpoints      []crosscheckEndpointJSON `json:"endpoints"`
	Groups         []crosscheckGroupJSON    `json:"groups"`
	Consensus      bool                     `json:"consensus"`
	ElapsedSeconds float64                  `json:"elapsedSeconds"`
}

// RenderCrosscheckJSON writes the crosscheck result as indented JSON.
func RenderCrosscheckJSON(w io.Writer, v *CrosscheckView) error {
	endpoints := make([]crosscheckEndpointJSON, 0, len(v.Readings))
	for _, r := range v.Readings {
		e := crosscheckEndpointJSON{
			Name:      r.Name,
			HeadBlock: r.Head,
			LatencyMs: r.Latency.Milliseconds(),
		}
		if r.Err != nil {
			msg := r.Err.Error()
			e.Error = &msg
		} else {
			raw := r.Raw.String()
			human := token.FormatUnits(r.Raw, v.Decimals)
			e.AllowanceRaw = &raw
			e.AllowanceHuman = &human
		}
		endpoints = append(endpoints, e)
	}

	groups := make([]crosscheckGroupJSON, 0)
	for _, g := range v.Groups() {
		groups = append(groups, crosscheckGroupJSON{
			AllowanceRaw:   g.Raw,
			AllowanceHuman: g.Human,
			Endpoints:      g.Endpoints,
		})
	}

	payload := crosscheckJSON{
		TokenAddress:   v.Token,
		TokenSymbol:    v.Symbol,
		TokenDecimals:  v.Decimals,
		Owner:          v.Owner,
		Spender:        v.Spender,
		Block:          v.Block,
		Endpoints:      endpoints,
		Groups:         groups,
		Consensus:      v.Consensus(),
		ElapsedSeconds: v.Elapsed.Seconds(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// RenderCrosscheckText writes the crosscheck table and verdict.
func RenderCrosscheckText(w io.Writer, v *CrosscheckView) {
	fmt.Fprintf(w, "\n%s\n", bold("Allowance Crosscheck"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  Token:        %s (%s)\n", cyan(v.Symbol), v.Token)
	fmt.Fprintf(w, "  Owner:        %s\n", v.Owner)
	fmt.Fprintf(w, "  Spender:      %s\n", v.Spender)
	fmt.Fprintf(w, "  Block:        %s\n", v.Block)
	fmt.Fprintln(w)

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Endpoint", "Allowance", "Raw", "Head Block", "Latency", "Status")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(w)

	for _, r := range v.Readings {
		if r.Err != nil {
			tbl.AddRow(r.Name, "—", "—", "—", formatLatency(r.Latency), red("✗ "+truncateError(r.Err)))
			continue
		}
		head := "—"
		if r.Head != 0 {
			head = fmt.Sprintf("%d", r.Head)
		}
		tbl.AddRow(
			r.Name,
			token.GroupDigits(token.FormatUnits(r.Raw, v.Decimals)),
			r.Raw.String(),
			head,
			formatLatency(r.Latency),
			green("✓ OK"),
		)
	}

	tbl.Print()
	fmt.Fprintln(w)

	if v.Reachable() == 0 {
		fmt.Fprintf(w, "%s\n\n", red("✗ No endpoints responded successfully"))
		return
	}

	groups := v.Groups()
	if len(groups) == 1 {
		fmt.Fprintf(w, "%s %d of %d endpoints agree on the allowance\n\n",
			green("✓ CONSENSUS:"), v.Reachable(), len(v.Readings))
		return
	}

	fmt.Fprintf(w, "%s\n", red("✗ ALLOWANCE MISMATCH DETECTED:"))
	for _, g := range groups {
		fmt.Fprintf(w, "  %s (%s %s)  →  %s\n",
			g.Raw, g.Human, v.Symbol, strings.Join(g.Endpoints, ", "))
	}
	fmt.Fprintln(w, "\nThis may indicate lagging endpoints, stale caches, or incorrect data.")
	fmt.Fprintln(w)
}

// truncateError shortens a call error to one table cell, trimming on
// rune boundaries so multibyte messages stay valid UTF-8.
func truncateError(err error) string {
	msg := err.Error()
	runes := []rune(msg)
	if len(runes) > 48 {
		return string(runes[:45]) + "..."
	}
	return msg
}
