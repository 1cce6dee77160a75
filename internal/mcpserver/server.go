// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes rpcspec capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"net/http"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/rpcspec"
	"github.com/erraggy/rpcspec/rpcclient"
)

const serverInstructions = `rpcspec MCP server — patches JSON-RPC API specifications with example overlays and refreshes those examples from live endpoints.

Configuration: defaults are configurable via RPCSPEC_* environment variables set in your MCP client config.

Key settings:
- RPCSPEC_HTTP_TIMEOUT (default: 30s) — timeout for each JSON-RPC call
- RPCSPEC_OVERLAY_DIR (default: overlays) — default root overlay directory`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "rpcspec", Version: rpcspec.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "overlay_apply",
		Description: "Apply the overlay actions under a directory to a specification document. Loads chain-agnostic overlays from the directory root plus, when an rpc_url is given and the chain resolves, the chain-scoped subdirectory. Returns the patched document inline or writes it to a file.",
	}, handleOverlayApply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chain_id",
		Description: "Resolve a JSON-RPC endpoint's canonical decimal chain id. Returns 'unknown' when the endpoint cannot be reached or answers with an empty identifier.",
	}, handleChainID)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh_examples",
		Description: "Harvest fresh request/response examples from a live JSON-RPC endpoint and write them as overlay files under the chain-scoped directory. Needs an endpoint with recent transaction activity; logs-dependent examples are skipped when no block with logs is found.",
	}, handleRefresh)
}

// newCaller builds the JSON-RPC client used by tool handlers.
func newCaller(endpoint string) *rpcclient.Client {
	client := rpcclient.New(endpoint)
	client.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	return client
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
