package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/rpcspec/overlay"
	"github.com/erraggy/rpcspec/refresh"
)

type overlayApplyInput struct {
	Spec       string `json:"spec"                  jsonschema:"Path to the specification document (JSON or YAML)"`
	OverlayDir string `json:"overlay_dir,omitempty" jsonschema:"Root overlay directory. Defaults to RPCSPEC_OVERLAY_DIR."`
	RPCURL     string `json:"rpc_url,omitempty"     jsonschema:"Endpoint URL used to resolve the chain-scoped overlay subdirectory"`
	Output     string `json:"output,omitempty"      jsonschema:"File path to write the patched document. If omitted the document is returned inline."`
}

type overlayApplyOutput struct {
	ActionsApplied int    `json:"actions_applied"`
	ChainID        string `json:"chain_id,omitempty"`
	WrittenTo      string `json:"written_to,omitempty"`
	Document       string `json:"document,omitempty"`
	Summary        string `json:"summary"`
}

func handleOverlayApply(ctx context.Context, _ *mcp.CallToolRequest, input overlayApplyInput) (*mcp.CallToolResult, overlayApplyOutput, error) {
	overlayDir := input.OverlayDir
	if overlayDir == "" {
		overlayDir = cfg.OverlayDir
	}

	data, err := os.ReadFile(input.Spec)
	if err != nil {
		return errResult(err), overlayApplyOutput{}, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errResult(fmt.Errorf("failed to parse specification: %w", err)), overlayApplyOutput{}, nil
	}

	actions, err := overlay.Load(overlayDir, false)
	if err != nil {
		return errResult(err), overlayApplyOutput{}, nil
	}

	output := overlayApplyOutput{}
	if input.RPCURL != "" {
		chainID := refresh.ResolveChainID(ctx, newCaller(input.RPCURL), nil)
		output.ChainID = chainID
		if chainID != refresh.ChainUnknown {
			chained, err := overlay.Load(refresh.ChainDir(overlayDir, chainID), true)
			if err != nil {
				return errResult(err), overlayApplyOutput{}, nil
			}
			actions = append(actions, chained...)
		}
	}

	patched, err := overlay.Apply(doc, actions)
	if err != nil {
		return errResult(err), overlayApplyOutput{}, nil
	}
	output.ActionsApplied = len(actions)

	marshaled, err := yaml.Marshal(patched)
	if err != nil {
		return errResult(fmt.Errorf("failed to marshal patched document: %w", err)), overlayApplyOutput{}, nil
	}

	if input.Output != "" {
		if err := os.WriteFile(input.Output, marshaled, 0o644); err != nil {
			return errResult(fmt.Errorf("failed to write output file: %w", err)), overlayApplyOutput{}, nil
		}
		output.WrittenTo = input.Output
	} else {
		output.Document = string(marshaled)
	}

	output.Summary = fmt.Sprintf("applied %d overlay action(s)", output.ActionsApplied)
	return nil, output, nil
}
