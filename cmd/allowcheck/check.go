package main

import (
	"context"
	"os"
	"time"

	"github.com/dmagro/allowcheck/internal/allowance"
	"github.com/dmagro/allowcheck/internal/config"
	"github.com/dmagro/allowcheck/internal/output"
	"github.com/dmagro/allowcheck/internal/rpc"
)

// runCheck performs the allowance read and comparison behind the root
// command. Failures are rendered here, in the active output mode, and
// collapsed into errReported so main exits 2 without double printing.
func runCheck(opts *globalOptions, query allowance.Query) error {
	url, err := config.ResolveRPC(opts.rpcURL)
	if err != nil {
		return report(opts, &allowance.Error{Kind: allowance.FailInvalidEndpoint, Err: err})
	}

	client := rpc.NewClient(rpc.ClientConfig{URL: url, Timeout: opts.timeout})
	checker := allowance.NewChecker(client)

	start := time.Now()
	snap, err := checker.Fetch(context.Background(), query)
	if err != nil {
		return report(opts, err)
	}

	cmp, err := allowance.Compare(snap, query.Expected)
	if err != nil {
		return report(opts, err)
	}

	view := &output.CheckView{
		Snapshot:   snap,
		Comparison: cmp,
		Endpoint:   client.Name(),
		RPCURL:     url,
		Elapsed:    time.Since(start),
	}
	if opts.jsonOut {
		if err := output.RenderCheckJSON(os.Stdout, view); err != nil {
			return err
		}
	} else {
		output.RenderCheckText(os.Stdout, view)
	}

	if cmp.Outcome == allowance.OutcomeMismatch {
		return errReported
	}
	return nil
}

// report renders a failure in the active output mode. JSON mode keeps
// stdout parseable with an error object; text mode goes to stderr.
func report(opts *globalOptions, err error) error {
	if opts.jsonOut {
		if jerr := output.RenderErrorJSON(os.Stdout, err); jerr == nil {
			return errReported
		}
	}
	output.RenderErrorText(os.Stderr, err)
	return errReported
}
