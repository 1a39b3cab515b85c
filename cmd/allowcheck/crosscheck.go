package main

import (
	"context"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/config"
	"github.com/dmagro/allowcheck/internal/endpoint"
	"github.com/dmagro/allowcheck/internal/output"
	"github.com/dmagro/allowcheck/internal/rpc"
)

func crosscheckCmd(opts *globalOptions) *cobra.Command {
	var cfgPath string
	query := allowance.Query{}

	cmd := &cobra.Command{
		Use:   "crosscheck",
		Short: "Read the same allowance from every configured endpoint",
		Long: `Runs the identical allowance read against every endpoint in the YAML
config concurrently and compares the raw answers. Divergence usually means
an endpoint is lagging behind the chain head or serving stale state.

Any divergence, and any endpoint failure, exits 2.

Examples:
  allowcheck crosscheck --config config/endpoints.yaml \
      --token 0xA0b8...eB48 --owner 0xd8dA...6045 --spender 0x1f98...F984
  allowcheck crosscheck --config config/endpoints.yaml --token ... --owner ... --spender ... --block 19000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrosscheck(opts, cfgPath, query)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "config/endpoints.yaml", "endpoints file")
	cmd.Flags().StringVar(&query.Token, "token", "", "ERC20 token contract address")
	cmd.Flags().StringVar(&query.Owner, "owner", "", "address whose funds are approved")
	cmd.Flags().StringVar(&query.Spender, "spender", "", "address approved to spend them")
	cmd.Flags().StringVar(&query.BlockRef, "block", "latest", "block height, 0x hex, or tag")

	for _, name := range []string{"token", "owner", "spender"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

// reading is one endpoint's answer: the raw allowance plus the head block
// it reported, so a lagging endpoint is visible even when values agree.
type reading struct {
	raw     *big.Int
	head    uint64
	latency time.Duration
}

func runCrosscheck(opts *globalOptions, cfgPath string, query allowance.Query) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return report(opts, &allowance.Error{Kind: allowance.FailInvalidEndpoint, Err: err})
	}

	if err := query.Validate(); err != nil {
		return report(opts, err)
	}

	calldata, err := rpc.EncodeAllowanceCalldata(query.Owner, query.Spender)
	if err != nil {
		return report(opts, &allowance.Error{Kind: allowance.FailInvalidAddress, Err: err})
	}

	ctx := context.Background()
	start := time.Now()
	pool := rpc.NewClientPool()

	// Token metadata comes from the first endpoint that can serve it; the
	// decimals of a token are the same everywhere.
	meta, err := fetchMetadataAny(ctx, pool, cfg, query.Token)
	if err != nil {
		return report(opts, err)
	}

	results := endpoint.ExecuteAll(ctx, cfg.Endpoints, func(ctx context.Context, ep config.Endpoint) (reading, error) {
		client := pool.GetOrCreate(rpc.ClientConfig{Name: ep.Name, URL: ep.URL, Timeout: ep.Timeout})

		result, latency, err := client.CallContract(ctx, query.Token, calldata, query.BlockRef)
		if err != nil {
			return reading{latency: latency}, err
		}
		raw, err := rpc.DecodeUint256(result)
		if err != nil {
			return reading{latency: latency}, err
		}

		r := reading{raw: raw, latency: latency}
		if head, _, err := client.BlockNumber(ctx); err == nil {
			r.head = head
		}
		return r, nil
	})

	view := &output.CrosscheckView{
		Token:    query.Token,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Owner:    query.Owner,
		Spender:  query.Spender,
		Block:    query.BlockRef,
		Elapsed:  time.Since(start),
	}
	for _, r := range results {
		view.Readings = append(view.Readings, output.EndpointReading{
			Name:    r.Endpoint,
			Raw:     r.Value.raw,
			Head:    r.Value.head,
			Latency: r.Value.latency,
			Err:     r.Err,
		})
	}

	if opts.jsonOut {
		if err := output.RenderCrosscheckJSON(os.Stdout, view); err != nil {
			return err
		}
	} else {
		output.RenderCrosscheckText(os.Stdout, view)
	}

	if view.Reachable() != len(view.Readings) || !view.Consensus() {
		return errReported
	}
	return nil
}

// fetchMetadataAny tries the configured endpoints in order and returns the
// token metadata from the first one that answers.
func fetchMetadataAny(ctx context.Context, pool *rpc.ClientPool, cfg *config.Config, tokenAddr string) (*allowance.Metadata, error) {
	var lastErr error
	for _, ep := range cfg.Endpoints {
		client := pool.GetOrCreate(rpc.ClientConfig{Name: ep.Name, URL: ep.URL, Timeout: ep.Timeout})
		meta, err := allowance.NewChecker(client).FetchMetadata(ctx, tokenAddr)
		if err == nil {
			return meta, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
