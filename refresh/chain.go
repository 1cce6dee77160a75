package refresh

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/erraggy/rpcspec/internal/hexutil"
)

// ChainUnknown is the chain identifier used when the endpoint's network
// cannot be determined. Callers must treat it as "use global overlays
// only", never as fatal.
const ChainUnknown = "unknown"

// ResolveChainID queries the endpoint for its network identifier and
// normalizes it to a canonical base-10 string.
//
// Any failure — network error, RPC error envelope, or an empty identifier —
// degrades to ChainUnknown with a warning rather than propagating. The two
// failure shapes log distinct messages so endpoint trouble can be told
// apart from an endpoint that answered with nothing.
func ResolveChainID(ctx context.Context, caller Caller, log Logger) string {
	if log == nil {
		log = NopLogger{}
	}

	raw, err := caller.Call(ctx, "eth_chainId")
	if err != nil {
		log.Warn("chain id query failed, using global overlays only", "error", err)
		return ChainUnknown
	}

	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		log.Warn("chain id query failed, using global overlays only", "error", err)
		return ChainUnknown
	}

	canonical := hexutil.CanonicalChainID(id)
	if canonical == "" {
		log.Warn("endpoint returned empty chain id, using global overlays only")
		return ChainUnknown
	}

	return canonical
}

// ChainDir returns the chain-scoped overlay directory for the given
// canonical chain id under the overlay root.
func ChainDir(root, chainID string) string {
	return filepath.Join(root, chainID)
}
