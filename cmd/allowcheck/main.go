package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/config"
	"github.com/dmagro/allowcheck/internal/logging"
	"github.com/dmagro/allowcheck/internal/output"
	"github.com/dmagro/allowcheck/internal/rpc"
)

// errReported marks failures the run functions already rendered; main
// still exits non-zero for them but must not print them a second time.
var errReported = errors.New("already reported")

// globalOptions holds the flags shared by the root command and its
// subcommands.
type globalOptions struct {
	rpcURL  string
	timeout time.Duration
	jsonOut bool
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(2)
	}
}

// newRootCmd builds the CLI. The root command itself runs the allowance
// check; `token` and `crosscheck` hang off it as subcommands.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	query := allowance.Query{}

	cmd := &cobra.Command{
		Use:   "allowcheck",
		Short: "Check an ERC20 allowance through a JSON-RPC endpoint",
		Long: `Reads allowance(owner, spender) from an ERC20 token contract at a chosen
block, scales the raw value by the token's decimals with exact arithmetic,
and optionally compares it against an expected human-units amount.

Exit status is 0 on success (including a match and no expectation) and 2 on
a mismatch or any failure, so scripts can branch on it.

Examples:
  allowcheck --token 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 \
      --owner 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045 \
      --spender 0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984
  allowcheck --token 0x6B17...1d0F --owner ... --spender ... --block 19000000 --expected 1000
  allowcheck --rpc https://eth.llamarpc.com --token ... --owner ... --spender ... --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.verbose)
			config.LoadEnv()
			if opts.jsonOut || !output.IsTerminal() {
				output.DisableColors()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, query)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "machine-readable JSON on stdout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug diagnostics on stderr")

	addClientFlags(cmd, opts)
	cmd.Flags().StringVar(&query.Token, "token", "", "ERC20 token contract address")
	cmd.Flags().StringVar(&query.Owner, "owner", "", "address whose funds are approved")
	cmd.Flags().StringVar(&query.Spender, "spender", "", "address approved to spend them")
	cmd.Flags().StringVar(&query.BlockRef, "block", "latest", "block height, 0x hex, or tag (latest|earliest|pending|safe|finalized)")
	cmd.Flags().StringVar(&query.Expected, "expected", "", "expected allowance in human units, compared exactly")

	for _, name := range []string{"token", "owner", "spender"} {
		_ = cmd.MarkFlagRequired(name)
	}

	cmd.AddCommand(tokenCmd(opts), crosscheckCmd(opts))
	return cmd
}

// addClientFlags binds the single-endpoint connection flags on the commands
// that dial one node. crosscheck does not take them: its endpoints and
// per-endpoint timeouts come from the YAML config.
func addClientFlags(cmd *cobra.Command, opts *globalOptions) {
	cmd.Flags().StringVar(&opts.rpcURL, "rpc", "", "JSON-RPC endpoint URL (default $RPC_URL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", rpc.DefaultTimeout, "per-request timeout")
}
