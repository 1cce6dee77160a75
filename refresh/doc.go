// Package refresh harvests real request/response examples from a live
// JSON-RPC endpoint and writes them back as overlay files.
//
// A refresh run for one endpoint proceeds in three stages:
//
//  1. Chain resolution: the endpoint is asked for its network identifier,
//     which is normalized to a canonical decimal string and used to pick the
//     chain-scoped overlay subdirectory.
//  2. Context build: the endpoint is probed for interesting sample data — a
//     recent block containing transactions, a transaction within it, a block
//     yielding non-empty event logs, and an address suitable for gas
//     estimation and proof queries. The searches walk the chain backward
//     with an explicit attempt bound.
//  3. Example generation: a fixed set of per-method generators consume the
//     context and each write exactly one overlay file containing a set
//     action targeting that method's first example slot.
//
// Failing to find a block with transactions aborts the run for that
// endpoint; failing to find logs only degrades it, skipping the
// logs-dependent generators with a warning.
package refresh

import (
	"context"
	"encoding/json"
)

// Caller issues a single JSON-RPC request and returns the raw result.
//
// *rpcclient.Client satisfies this interface; tests and alternative
// transports substitute their own implementations.
type Caller interface {
	Call(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}
