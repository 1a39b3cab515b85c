package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmagro/allowcheck/internal/logging"
)

// Client talks JSON-RPC 2.0 to a single Ethereum endpoint over HTTP.
// Calls are single-shot: a failure is reported to the caller, never
// retried, so a check either reflects one real round trip or fails.
type Client struct {
	name       string
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// ClientConfig carries the per-endpoint settings a Client needs.
type ClientConfig struct {
	Name    string
	URL     string
	Timeout time.Duration
}

// DefaultTimeout bounds a request when the config does not say otherwise.
const DefaultTimeout = 30 * time.Second

func NewClient(cfg ClientConfig) *Client {
	name := cfg.Name
	if name == "" {
		name = cfg.URL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		name:       name,
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logging.NewLogger("rpc").With().Str("endpoint", name).Logger(),
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) URL() string { return c.url }

// Call executes one JSON-RPC request and returns the decoded envelope
// along with the observed latency. Failures come back as *CallError so
// callers can tell transport trouble from node-reported errors.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (*Response, time.Duration, error) {
	if params == nil {
		params = []interface{}{}
	}

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, _ := json.Marshal(req)

	start := time.Now()
	resp, err := c.doRequest(ctx, body)
	latency := time.Since(start)

	if err != nil {
		c.log.Debug().Str("method", method).Dur("latency", latency).Err(err).Msg("transport failure")
		return nil, latency, &CallError{Method: method, Kind: KindUnreachable, Err: err}
	}
	if resp.Error != nil {
		c.log.Debug().Str("method", method).Dur("latency", latency).Int("code", resp.Error.Code).Msg("node returned error")
		return nil, latency, &CallError{Method: method, Kind: KindNode, Err: resp.Error}
	}

	c.log.Debug().Str("method", method).Dur("latency", latency).Msg("call ok")
	return resp, latency, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d", httpResp.StatusCode)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	return &resp, nil
}
