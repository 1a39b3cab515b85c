package allowance

import (
	"errors"
	"fmt"

	"github.com/dmagro/allowcheck/internal/rpc"
)

// FailureKind labels every way a check can fail. The CLI maps all of them
// to the same non-zero exit code; the kind only drives messages and the
// JSON error shape, so scripts can branch on it without parsing text.
type FailureKind string

const (
	FailInvalidAddress  FailureKind = "invalid_address"
	FailInvalidBlockRef FailureKind = "invalid_block_reference"
	FailInvalidAmount   FailureKind = "invalid_amount"
	FailInvalidEndpoint FailureKind = "invalid_endpoint"
	FailUnreachable     FailureKind = "rpc_unreachable"
	FailReverted        FailureKind = "contract_call_reverted"
)

// Error carries a failure kind alongside the underlying cause.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func failf(kind FailureKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the failure kind of err, defaulting to rpc_unreachable
// for errors that carry no classification of their own.
func KindOf(err error) FailureKind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return FailUnreachable
}

// classifyRPC maps a transport-layer error into the checker's taxonomy: a
// node-reported error on eth_call means the contract rejected the read or
// lacks the function, anything else means the endpoint could not serve it.
func classifyRPC(err error, what string) *Error {
	var ce *rpc.CallError
	if errors.As(err, &ce) && ce.Kind == rpc.KindNode {
		return &Error{Kind: FailReverted, Err: fmt.Errorf("%s: %w", what, err)}
	}
	return &Error{Kind: FailUnreachable, Err: fmt.Errorf("%s: %w", what, err)}
}
