// Package rpcclient provides a minimal JSON-RPC 2.0 client over HTTP POST.
//
// The client covers exactly the exchange shape the refresh pipeline needs:
// one request, one response, the result raw. Remote errors carried in the
// response envelope surface as *RPCError so callers can inspect the remote
// code and data.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/erraggy/rpcspec"
)

// DefaultTimeout is the default HTTP timeout for a single call.
const DefaultTimeout = 30 * time.Second

// Client issues JSON-RPC 2.0 calls against a single HTTP endpoint.
//
// A Client is safe for concurrent use. Request ids are assigned from an
// atomic counter; the zero value is not usable, use New.
type Client struct {
	// Endpoint is the HTTP(S) URL calls are POSTed to.
	Endpoint string

	// HTTPClient performs the underlying requests. Defaults to a client
	// with DefaultTimeout.
	HTTPClient *http.Client

	nextID atomic.Int64
}

// New creates a Client for the given endpoint URL.
func New(endpoint string) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// request is the JSON-RPC 2.0 request envelope.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// response is the JSON-RPC 2.0 response envelope.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is the error object carried in a JSON-RPC response envelope.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call issues a single JSON-RPC request and returns the raw result.
//
// A nil params slice is sent as an empty array. Any non-2xx HTTP status or
// a response error envelope is a failure; envelope errors are returned as
// *RPCError.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("rpcclient: failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rpcclient: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", rpcspec.UserAgent())

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: %s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("rpcclient: %s returned HTTP %d", method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: failed to read %s response: %w", method, err)
	}

	var envelope response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("rpcclient: malformed %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}

	return envelope.Result, nil
}

// CallInto issues a call and unmarshals the result into out.
func (c *Client) CallInto(ctx context.Context, out any, method string, params ...any) error {
	raw, err := c.Call(ctx, method, params...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("rpcclient: failed to decode %s result: %w", method, err)
	}
	return nil
}
