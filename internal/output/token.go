package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/token"
)

// TokenView presents the metadata of a single token contract.
type TokenView struct {
	Metadata *allowance.Metadata
	Endpoint string
	RPCURL   string
	Elapsed  time.Duration
}

// tokenJSON mirrors checkJSON's convention: chainId is null when the
// endpoint did not answer eth_chainId.
type tokenJSON struct {
	ChainID          *uint64 `json:"chainId"`
	RPCURL           string  `json:"rpcUrl"`
	TokenAddress     string  `json:"tokenAddress"`
	TokenName        string  `json:"tokenName"`
	TokenSymbol      string  `json:"tokenSymbol"`
	TokenDecimals    uint8   `json:"tokenDecimals"`
	TotalSupplyRaw   string  `json:"totalSupplyRaw"`
	TotalSupplyHuman string  `json:"totalSupplyHuman"`
	ElapsedSeconds   float64 `json:"elapsedSeconds"`
}

// RenderTokenJSON writes token metadata as indented JSON.
func RenderTokenJSON(w io.Writer, v *TokenView) error {
	meta := v.Metadata
	payload := tokenJSON{
		RPCURL:           v.RPCURL,
		TokenAddress:     meta.Token,
		TokenName:        meta.Name,
		TokenSymbol:      meta.Symbol,
		TokenDecimals:    meta.Decimals,
		TotalSupplyRaw:   meta.TotalSupply.String(),
		TotalSupplyHuman: token.FormatUnits(meta.TotalSupply, meta.Decimals),
		ElapsedSeconds:   v.Elapsed.Seconds(),
	}
	if meta.ChainID != 0 {
		id := meta.ChainID
		payload.ChainID = &id
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// RenderTokenText writes the human-readable form of token metadata.
func RenderTokenText(w io.Writer, v *TokenView) {
	meta := v.Metadata

	fmt.Fprintf(w, "\n%s\n", bold("Token Metadata"))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "  Token:        %s (%s)\n", meta.Name, cyan(meta.Symbol))
	fmt.Fprintf(w, "  Address:      %s\n", meta.Token)
	fmt.Fprintf(w, "  Decimals:     %d\n", meta.Decimals)
	fmt.Fprintf(w, "  Total supply: %s\n", token.FormatAmount(meta.TotalSupply, meta.Decimals, meta.Symbol))
	if meta.ChainID != 0 {
		fmt.Fprintf(w, "  Chain ID:     %d\n", meta.ChainID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Fetched via:  %s (%s)\n", v.Endpoint, formatLatency(v.Elapsed))
}
