package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// unmarshalHexResult decodes the common case of a result that is a single
// hex-encoded string.
func unmarshalHexResult(raw json.RawMessage, method string) (string, error) {
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return "", &CallError{
			Method: method,
			Kind:   KindUnreachable,
			Err:    fmt.Errorf("unexpected result shape: %w", err),
		}
	}
	return hexStr, nil
}

// ChainID calls eth_chainId and returns the network's chain ID.
func (c *Client) ChainID(ctx context.Context) (uint64, time.Duration, error) {
	resp, latency, err := c.Call(ctx, "eth_chainId")
	if err != nil {
		return 0, latency, err
	}

	hexStr, err := unmarshalHexResult(resp.Result, "eth_chainId")
	if err != nil {
		return 0, latency, err
	}

	id, err := ParseHexUint64(hexStr)
	if err != nil {
		return 0, latency, &CallError{Method: "eth_chainId", Kind: KindUnreachable, Err: err}
	}
	return id, latency, nil
}

// BlockNumber calls eth_blockNumber and returns the endpoint's head height.
func (c *Client) BlockNumber(ctx context.Context) (uint64, time.Duration, error) {
	resp, latency, err := c.Call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, latency, err
	}

	hexStr, err := unmarshalHexResult(resp.Result, "eth_blockNumber")
	if err != nil {
		return 0, latency, err
	}

	num, err := ParseHexUint64(hexStr)
	if err != nil {
		return 0, latency, &CallError{Method: "eth_blockNumber", Kind: KindUnreachable, Err: err}
	}
	return num, latency, nil
}

// CallContract performs a read-only eth_call against a contract and returns
// the raw hex result. The block reference must already be in RPC form, i.e.
// a tag or a 0x hex height (see ParseBlockRef).
func (c *Client) CallContract(ctx context.Context, to, calldata, block string) (string, time.Duration, error) {
	call := map[string]string{
		"to":   to,
		"data": calldata,
	}

	resp, latency, err := c.Call(ctx, "eth_call", call, block)
	if err != nil {
		return "", latency, err
	}

	result, err := unmarshalHexResult(resp.Result, "eth_call")
	if err != nil {
		return "", latency, err
	}
	return result, latency, nil
}
