package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erraggy/rpcspec/internal/hexutil"
)

// ErrNoSampleBlock is returned when the backward search finds no block with
// transactions within the bound. Without a sample block there is nothing to
// harvest, so the whole context build for the endpoint fails.
var ErrNoSampleBlock = errors.New("refresh: no block with transactions found within the search bound")

// LogsContext is the logs portion of a network context: the block whose
// logs query succeeded, the filter that produced them, and the non-empty
// entries found.
type LogsContext struct {
	// BlockNumber is the height of the block the entries originate from.
	BlockNumber uint64

	// Filter is the eth_getLogs filter object that produced the entries.
	Filter map[string]any

	// Entries are the log records; always non-empty.
	Entries []any
}

// Context is the bundle of live sample data harvested from one endpoint.
//
// It is built once per refresh run, passed read-only to every generator,
// and discarded at the end; it is never persisted.
type Context struct {
	// Endpoint is the probed endpoint URL.
	Endpoint string

	// Label is the human-readable endpoint name used in logs.
	Label string

	// ChainID is the canonical decimal chain identifier, or ChainUnknown.
	ChainID string

	// Dir is the chain-scoped overlay directory examples are written to.
	Dir string

	// BlockNumber and BlockHash identify the reference block.
	BlockNumber uint64
	BlockHash   string

	// Block is the reference block record (without transaction bodies);
	// its transaction list is non-empty.
	Block map[string]any

	// TxHash is the first transaction listed in the reference block, and
	// Tx its full record.
	TxHash string
	Tx     map[string]any

	// Logs is the logs context, or nil when none was found within the
	// search bound. Generators that depend on logs must skip and warn.
	Logs *LogsContext

	// Account is the reference block's designated fee recipient, a
	// general-purpose known active account for gas estimation and proof
	// queries. May be empty.
	Account string
}

// BuildConfig configures a context build for one endpoint.
type BuildConfig struct {
	// Caller issues the JSON-RPC probes. Required.
	Caller Caller

	// Endpoint is the endpoint URL, recorded in the context.
	Endpoint string

	// Label is an optional human-readable endpoint name; defaults to the
	// endpoint URL.
	Label string

	// StartBlock optionally pins the height the backward searches start
	// from; when nil the current chain head is used.
	StartBlock *uint64

	// OverlayRoot is the root overlay directory; the chain-scoped
	// subdirectory is derived from it.
	OverlayRoot string

	// Logger receives build progress and degradation warnings.
	// Defaults to NopLogger.
	Logger Logger
}

// BuildContext probes the endpoint and assembles the sample-data bundle the
// example generators consume.
//
// The block-with-transactions search is fatal when exhausted; the logs
// search only degrades the context (Logs == nil) with a warning.
func BuildContext(ctx context.Context, cfg BuildConfig) (*Context, error) {
	if cfg.Caller == nil {
		return nil, errors.New("refresh: caller is required")
	}
	log := cfg.Logger
	if log == nil {
		log = NopLogger{}
	}

	label := cfg.Label
	if label == "" {
		label = cfg.Endpoint
	}
	log = log.With("endpoint", label)

	chainID := ResolveChainID(ctx, cfg.Caller, log)

	start, err := startHeight(ctx, cfg)
	if err != nil {
		return nil, err
	}

	height, block, err := findBlockWithTransactions(ctx, cfg.Caller, start)
	if err != nil {
		return nil, err
	}
	log.Debug("found block with transactions", "number", height)

	blockHash, _ := block["hash"].(string)
	txHash, err := firstTransactionHash(block)
	if err != nil {
		return nil, fmt.Errorf("refresh: block %d: %w", height, err)
	}

	var tx map[string]any
	raw, err := cfg.Caller.Call(ctx, "eth_getTransactionByHash", txHash)
	if err != nil {
		return nil, fmt.Errorf("refresh: failed to fetch sample transaction %s: %w", txHash, err)
	}
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("refresh: malformed transaction %s: %w", txHash, err)
	}

	logs, err := findLogs(ctx, cfg.Caller, log, height, blockHash)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		log.Warn("no block with logs found within the search bound, logs examples will be skipped")
	}

	account, _ := block["miner"].(string)

	return &Context{
		Endpoint:    cfg.Endpoint,
		Label:       label,
		ChainID:     chainID,
		Dir:         ChainDir(cfg.OverlayRoot, chainID),
		BlockNumber: height,
		BlockHash:   blockHash,
		Block:       block,
		TxHash:      txHash,
		Tx:          tx,
		Logs:        logs,
		Account:     account,
	}, nil
}

// startHeight returns the height the backward searches start from: the
// configured block, or the current chain head.
func startHeight(ctx context.Context, cfg BuildConfig) (uint64, error) {
	if cfg.StartBlock != nil {
		return *cfg.StartBlock, nil
	}
	var head string
	raw, err := cfg.Caller.Call(ctx, "eth_blockNumber")
	if err != nil {
		return 0, fmt.Errorf("refresh: failed to fetch chain head: %w", err)
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, fmt.Errorf("refresh: malformed chain head: %w", err)
	}
	return hexutil.DecodeUint64(head)
}

// findBlockWithTransactions walks backward from start until a block whose
// transaction list is non-empty is found. Exhausting the bound is a hard
// failure: every generator assumes the base block and transaction exist.
func findBlockWithTransactions(ctx context.Context, caller Caller, start uint64) (uint64, map[string]any, error) {
	w := newBlockWalker(caller, start)
	for {
		height, block, err := w.Next(ctx)
		if errors.Is(err, errWalkExhausted) {
			return 0, nil, ErrNoSampleBlock
		}
		if err != nil {
			return 0, nil, err
		}
		if txs, ok := block["transactions"].([]any); ok && len(txs) > 0 {
			return height, block, nil
		}
	}
}

// firstTransactionHash returns the first transaction hash listed in a block
// record, tolerating both bare-hash and hydrated transaction lists.
func firstTransactionHash(block map[string]any) (string, error) {
	txs, _ := block["transactions"].([]any)
	if len(txs) == 0 {
		return "", errors.New("transaction list is empty")
	}
	switch tx := txs[0].(type) {
	case string:
		return tx, nil
	case map[string]any:
		if hash, ok := tx["hash"].(string); ok {
			return hash, nil
		}
	}
	return "", errors.New("transaction list has no usable hash")
}

// findLogs locates a block yielding non-empty event logs.
//
// The chosen block's hash is tried first; on zero entries the search walks
// backward with its own attempt bound, retrying the logs query per candidate
// block hash. Every individual logs query failure is swallowed and treated
// as zero results — logs endpoints are commonly pruned or rate-limited, and
// one failure must not abort the search. Exhaustion returns (nil, nil): the
// context degrades rather than failing.
func findLogs(ctx context.Context, caller Caller, log Logger, startHeight uint64, startHash string) (*LogsContext, error) {
	if entries, filter := queryLogs(ctx, caller, log, startHash); len(entries) > 0 {
		return &LogsContext{BlockNumber: startHeight, Filter: filter, Entries: entries}, nil
	}

	if startHeight == 0 {
		return nil, nil
	}

	w := newBlockWalker(caller, startHeight-1)
	for {
		height, block, err := w.Next(ctx)
		if errors.Is(err, errWalkExhausted) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		hash, ok := block["hash"].(string)
		if !ok {
			continue
		}
		if entries, filter := queryLogs(ctx, caller, log, hash); len(entries) > 0 {
			return &LogsContext{BlockNumber: height, Filter: filter, Entries: entries}, nil
		}
	}
}

// queryLogs fetches the logs for one block hash, collapsing every failure
// into zero results.
func queryLogs(ctx context.Context, caller Caller, log Logger, blockHash string) ([]any, map[string]any) {
	filter := map[string]any{"blockHash": blockHash}
	raw, err := caller.Call(ctx, "eth_getLogs", filter)
	if err != nil {
		log.Debug("logs query failed, treating as empty", "blockHash", blockHash, "error", err)
		return nil, filter
	}
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Debug("malformed logs response, treating as empty", "blockHash", blockHash, "error", err)
		return nil, filter
	}
	return entries, filter
}
