// Package allowance reads ERC20 approval state: how much of an owner's
// balance a spender may move, optionally held against an expected value.
package allowance

import (
	"context"
	"math/big"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dmagro/allowcheck/internal/logging"
	"github.com/dmagro/allowcheck/internal/rpc"
	"github.com/dmagro/allowcheck/internal/token"
)

// Placeholders shown when a token does not expose the optional metadata
// reads. Display-only: they never affect arithmetic or exit status.
const (
	UnknownName   = "Unknown"
	UnknownSymbol = "???"
)

// Query identifies one allowance lookup: which token, whose funds, which
// spender, at which block.
type Query struct {
	Token    string
	Owner    string
	Spender  string
	BlockRef string
	Expected string // optional human-units expectation, empty means none
}

// Validate checks every field that can be checked without touching the
// network. Addresses normalize to EIP-55 form and the block reference to
// RPC form; a malformed input fails here, before any request is sent.
func (q *Query) Validate() error {
	var err error
	if q.Token, err = rpc.ChecksumAddress(q.Token); err != nil {
		return failf(FailInvalidAddress, "token: %v", err)
	}
	if q.Owner, err = rpc.ChecksumAddress(q.Owner); err != nil {
		return failf(FailInvalidAddress, "owner: %v", err)
	}
	if q.Spender, err = rpc.ChecksumAddress(q.Spender); err != nil {
		return failf(FailInvalidAddress, "spender: %v", err)
	}

	if q.BlockRef, err = rpc.ParseBlockRef(q.BlockRef); err != nil {
		return failf(FailInvalidBlockRef, "%v", err)
	}

	if q.Expected != "" {
		if err := token.CheckAmountSyntax(q.Expected); err != nil {
			return failf(FailInvalidAmount, "expected amount: %v", err)
		}
	}
	return nil
}

// Snapshot is the state read for one query: the raw allowance plus the
// token metadata needed to present it.
type Snapshot struct {
	Token    string
	Owner    string
	Spender  string
	BlockRef string

	Raw      *big.Int
	Decimals uint8
	Human    string

	Name   string // UnknownName when the token does not expose name()
	Symbol string // UnknownSymbol when the token does not expose symbol()

	ChainID uint64 // 0 when the endpoint does not answer eth_chainId
}

// Zero reports whether the allowance is exactly zero, the state a revoked
// or never-granted approval leaves behind.
func (s *Snapshot) Zero() bool {
	return s.Raw != nil && s.Raw.Sign() == 0
}

// Checker fetches allowance state through one RPC endpoint.
type Checker struct {
	client *rpc.Client
	log    zerolog.Logger
}

func NewChecker(client *rpc.Client) *Checker {
	return &Checker{
		client: client,
		log:    logging.NewLogger("checker"),
	}
}

// Fetch validates the query, then reads the allowance and token metadata.
// The allowance and decimals reads must succeed; name, symbol and chain ID
// degrade to placeholders when the token or endpoint cannot answer them.
// Independent reads run concurrently.
//
// The allowance is read at the query's block reference; metadata reads go
// to the latest block, since decimals and symbol do not change over a
// token's life and historical nodes often prune old state anyway.
func (c *Checker) Fetch(ctx context.Context, q Query) (*Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	calldata, err := rpc.EncodeAllowanceCalldata(q.Owner, q.Spender)
	if err != nil {
		return nil, failf(FailInvalidAddress, "%v", err)
	}

	snap := &Snapshot{
		Token:    q.Token,
		Owner:    q.Owner,
		Spender:  q.Spender,
		BlockRef: q.BlockRef,
		Name:     UnknownName,
		Symbol:   UnknownSymbol,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, latency, err := c.client.CallContract(gctx, q.Token, calldata, q.BlockRef)
		if err != nil {
			return classifyRPC(err, "allowance()")
		}
		raw, err := rpc.DecodeUint256(result)
		if err != nil {
			return failf(FailReverted, "allowance(): %v", err)
		}
		c.log.Debug().Str("raw", raw.String()).Str("block", q.BlockRef).Dur("latency", latency).Msg("allowance fetched")
		snap.Raw = raw
		return nil
	})

	g.Go(func() error {
		result, _, err := c.client.CallContract(gctx, q.Token, rpc.EncodeCalldata("decimals()"), "latest")
		if err != nil {
			return classifyRPC(err, "decimals()")
		}
		dec, err := rpc.DecodeUint8(result)
		if err != nil {
			return failf(FailReverted, "decimals(): %v", err)
		}
		snap.Decimals = dec
		return nil
	})

	g.Go(func() error {
		// Display-only reads. Failures degrade, never abort.
		if result, _, err := c.client.CallContract(gctx, q.Token, rpc.EncodeCalldata("symbol()"), "latest"); err == nil {
			if s, err := rpc.DecodeString(result); err == nil && s != "" {
				snap.Symbol = s
			}
		}
		if result, _, err := c.client.CallContract(gctx, q.Token, rpc.EncodeCalldata("name()"), "latest"); err == nil {
			if s, err := rpc.DecodeString(result); err == nil && s != "" {
				snap.Name = s
			}
		}
		if id, _, err := c.client.ChainID(gctx); err == nil {
			snap.ChainID = id
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Human = token.FormatUnits(snap.Raw, snap.Decimals)

	if snap.Zero() {
		c.log.Debug().Str("spender", snap.Spender).Msg("allowance is zero")
	}
	return snap, nil
}

// Metadata is the descriptive state of a token contract, read without
// reference to any owner or spender.
type Metadata struct {
	Token       string
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	ChainID     uint64
}

// FetchMetadata reads a token's name, symbol, decimals and total supply.
// Decimals and total supply must decode; the string fields degrade the
// same way Fetch degrades them.
func (c *Checker) FetchMetadata(ctx context.Context, tokenAddr string) (*Metadata, error) {
	addr, err := rpc.ChecksumAddress(tokenAddr)
	if err != nil {
		return nil, failf(FailInvalidAddress, "token: %v", err)
	}

	meta := &Metadata{
		Token:  addr,
		Name:   UnknownName,
		Symbol: UnknownSymbol,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, _, err := c.client.CallContract(gctx, addr, rpc.EncodeCalldata("decimals()"), "latest")
		if err != nil {
			return classifyRPC(err, "decimals()")
		}
		dec, err := rpc.DecodeUint8(result)
		if err != nil {
			return failf(FailReverted, "decimals(): %v", err)
		}
		meta.Decimals = dec
		return nil
	})

	g.Go(func() error {
		result, _, err := c.client.CallContract(gctx, addr, rpc.EncodeCalldata("totalSupply()"), "latest")
		if err != nil {
			return classifyRPC(err, "totalSupply()")
		}
		supply, err := rpc.DecodeUint256(result)
		if err != nil {
			return failf(FailReverted, "totalSupply(): %v", err)
		}
		meta.TotalSupply = supply
		return nil
	})

	g.Go(func() error {
		if result, _, err := c.client.CallContract(gctx, addr, rpc.EncodeCalldata("symbol()"), "latest"); err == nil {
			if s, err := rpc.DecodeString(result); err == nil && s != "" {
				meta.Symbol = s
			}
		}
		if result, _, err := c.client.CallContract(gctx, addr, rpc.EncodeCalldata("name()"), "latest"); err == nil {
			if s, err := rpc.DecodeString(result); err == nil && s != "" {
				meta.Name = s
			}
		}
		if id, _, err := c.client.ChainID(gctx); err == nil {
			meta.ChainID = id
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meta, nil
}
