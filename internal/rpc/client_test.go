package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{Name: "test", URL: url, Timeout: timeout})
}

func TestCallContract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("jsonrpc = %q, want 2.0", req.JSONRPC)
		}
		if req.Method != "eth_call" {
			t.Errorf("method = %q, want eth_call", req.Method)
		}
		if len(req.Params) != 2 {
			t.Fatalf("params length = %d, want 2", len(req.Params))
		}

		call, ok := req.Params[0].(map[string]interface{})
		if !ok {
			t.Fatalf("params[0] is %T, want object", req.Params[0])
		}
		if call["to"] != "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48" {
			t.Errorf("to = %v", call["to"])
		}
		if call["data"] != "0x313ce567" {
			t.Errorf("data = %v", call["data"])
		}
		if req.Params[1] != "latest" {
			t.Errorf("block = %v, want latest", req.Params[1])
		}

		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x0000000000000000000000000000000000000000000000000000000000000006"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	result, latency, err := client.CallContract(context.Background(), "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0x313ce567", "latest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latency <= 0 {
		t.Error("expected positive latency")
	}

	dec, err := DecodeUint8(result)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec != 6 {
		t.Errorf("decimals = %d, want 6", dec)
	}
}

func TestCallContractAtBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		json.NewDecoder(r.Body).Decode(&req)
		if req.Params[1] != "0x172721e" {
			t.Errorf("block = %v, want 0x172721e", req.Params[1])
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x0"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	if _, _, err := client.CallContract(context.Background(), "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0xdd62ed3e", "0x172721e"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCallNodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, _, err := client.CallContract(context.Background(), "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "0x313ce567", "latest")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if KindOf(err) != KindNode {
		t.Errorf("kind = %v, want KindNode", KindOf(err))
	}

	var ce *CallError
	if !errors.As(err, &ce) {
		t.Fatal("error is not a *CallError")
	}
	if ce.Method != "eth_call" {
		t.Errorf("method = %q, want eth_call", ce.Method)
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatal("cause is not a *RPCError")
	}
	if rpcErr.Code != -32000 {
		t.Errorf("code = %d, want -32000", rpcErr.Code)
	}
}

func TestCallHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, _, err := client.Call(context.Background(), "eth_chainId")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if KindOf(err) != KindUnreachable {
		t.Errorf("kind = %v, want KindUnreachable", KindOf(err))
	}
}

func TestCallInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>rate limited</html>`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	_, _, err := client.Call(context.Background(), "eth_chainId")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if KindOf(err) != KindUnreachable {
		t.Errorf("kind = %v, want KindUnreachable", KindOf(err))
	}
}

func TestCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 50*time.Millisecond)
	_, _, err := client.Call(context.Background(), "eth_chainId")
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if KindOf(err) != KindUnreachable {
		t.Errorf("kind = %v, want KindUnreachable", KindOf(err))
	}
}

func TestCallConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, time.Second)
	_, _, err := client.Call(context.Background(), "eth_chainId")
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if KindOf(err) != KindUnreachable {
		t.Errorf("kind = %v, want KindUnreachable", KindOf(err))
	}
}

func TestChainID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		json.NewDecoder(r.Body).Decode(&req)
		if req.Method != "eth_chainId" {
			t.Errorf("method = %q, want eth_chainId", req.Method)
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	id, _, err := client.ChainID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("chain ID = %d, want 1", id)
	}
}

func TestBlockNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":"0x172721e"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5*time.Second)
	num, _, err := client.BlockNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 24277534 {
		t.Errorf("block number = %d, want 24277534", num)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(ClientConfig{URL: "http://localhost:8545"})
	if client.Name() != "http://localhost:8545" {
		t.Errorf("name defaulted to %q, want the URL", client.Name())
	}
	if client.URL() != "http://localhost:8545" {
		t.Errorf("url = %q", client.URL())
	}
}
