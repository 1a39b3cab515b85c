package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/config"
	"github.com/dmagro/allowcheck/internal/output"
	"github.com/dmagro/allowcheck/internal/rpc"
)

func tokenCmd(opts *globalOptions) *cobra.Command {
	var tokenAddr string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect an ERC20 token's metadata",
		Long: `Reads name, symbol, decimals and totalSupply from an ERC20 contract.

Examples:
  allowcheck token --token 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48
  allowcheck token --token 0x6B175474E89094C44Da98b954EedeAC495271d0F --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts, tokenAddr)
		},
	}

	addClientFlags(cmd, opts)
	cmd.Flags().StringVar(&tokenAddr, "token", "", "ERC20 token contract address")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func runToken(opts *globalOptions, tokenAddr string) error {
	url, err := config.ResolveRPC(opts.rpcURL)
	if err != nil {
		return report(opts, &allowance.Error{Kind: allowance.FailInvalidEndpoint, Err: err})
	}

	client := rpc.NewClient(rpc.ClientConfig{URL: url, Timeout: opts.timeout})
	checker := allowance.NewChecker(client)

	start := time.Now()
	meta, err := checker.FetchMetadata(context.Background(), tokenAddr)
	if err != nil {
		return report(opts, err)
	}

	view := &output.TokenView{
		Metadata: meta,
		Endpoint: client.Name(),
		RPCURL:   url,
		Elapsed:  time.Since(start),
	}
	if opts.jsonOut {
		return output.RenderTokenJSON(os.Stdout, view)
	}
	output.RenderTokenText(os.Stdout, view)
	return nil
}
