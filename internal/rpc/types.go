package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// Response is a JSON-RPC 2.0 response envelope. Result stays raw so each
// method wrapper can decode its own shape.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object a node embeds in a JSON-RPC response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// ErrorKind classifies why a call failed.
type ErrorKind int

const (
	// KindUnreachable covers transport failures: connection refused, DNS,
	// timeouts, non-200 HTTP statuses and responses that are not valid
	// JSON-RPC envelopes.
	KindUnreachable ErrorKind = iota
	// KindNode means the endpoint itself answered with a JSON-RPC error
	// object, e.g. an eth_call revert or an unsupported method.
	KindNode
)

// CallError wraps a failed call with its classification and the method
// that triggered it.
type CallError struct {
	Method string
	Kind   ErrorKind
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain. Errors that did
// not originate in this package count as unreachable.
func KindOf(err error) ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnreachable
}
