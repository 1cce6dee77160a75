package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/rpcspec/refresh"
)

type chainIDInput struct {
	RPCURL string `json:"rpc_url" jsonschema:"JSON-RPC endpoint URL"`
}

type chainIDOutput struct {
	ChainID string `json:"chain_id"`
}

func handleChainID(ctx context.Context, _ *mcp.CallToolRequest, input chainIDInput) (*mcp.CallToolResult, chainIDOutput, error) {
	if input.RPCURL == "" {
		return errResult(fmt.Errorf("rpc_url is required")), chainIDOutput{}, nil
	}
	chainID := refresh.ResolveChainID(ctx, newCaller(input.RPCURL), nil)
	return nil, chainIDOutput{ChainID: chainID}, nil
}

type refreshInput struct {
	RPCURL     string  `json:"rpc_url"               jsonschema:"JSON-RPC endpoint URL to harvest examples from"`
	OverlayDir string  `json:"overlay_dir,omitempty" jsonschema:"Root overlay directory to write under. Defaults to RPCSPEC_OVERLAY_DIR."`
	Block      *uint64 `json:"block,omitempty"       jsonschema:"Starting block height for the backward searches. Defaults to the chain head."`
	Label      string  `json:"label,omitempty"       jsonschema:"Human-readable endpoint name used in logs"`
}

type refreshOutput struct {
	Summary string `json:"summary"`
}

func handleRefresh(ctx context.Context, _ *mcp.CallToolRequest, input refreshInput) (*mcp.CallToolResult, refreshOutput, error) {
	if input.RPCURL == "" {
		return errResult(fmt.Errorf("rpc_url is required")), refreshOutput{}, nil
	}
	overlayDir := input.OverlayDir
	if overlayDir == "" {
		overlayDir = cfg.OverlayDir
	}

	target := refresh.Target{
		Endpoint: input.RPCURL,
		Block:    input.Block,
		Label:    input.Label,
	}
	err := refresh.RefreshTarget(ctx, target, refresh.Options{
		OverlayDir: overlayDir,
		Dial:       func(endpoint string) refresh.Caller { return newCaller(endpoint) },
	})
	if err != nil {
		return errResult(err), refreshOutput{}, nil
	}

	return nil, refreshOutput{
		Summary: fmt.Sprintf("refreshed example overlays under %s", overlayDir),
	}, nil
}
