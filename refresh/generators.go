package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/rpcspec/internal/hexutil"
	"github.com/erraggy/rpcspec/overlay"
)

// namedValue is an OpenRPC example param or result: a value with a name.
type namedValue struct {
	Name  string `yaml:"name" json:"name"`
	Value any    `yaml:"value" json:"value"`
}

// example is an OpenRPC example pairing: named params plus a named result.
type example struct {
	Name   string       `yaml:"name" json:"name"`
	Params []namedValue `yaml:"params" json:"params"`
	Result namedValue   `yaml:"result" json:"result"`
}

// methodExample is one generated example tied to the method it documents.
type methodExample struct {
	method  string
	example *example
}

// skipError marks a generator that cannot run against this context.
// Skips degrade the run with a warning; they are never errors.
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return "skipped: " + e.reason }

func skip(reason string) error { return &skipError{reason: reason} }

// generator produces the example(s) for one family of methods. Most emit a
// single methodExample; the filter family shares one live filter id across
// three methods.
type generator struct {
	name  string
	build func(ctx context.Context, caller Caller, c *Context) ([]methodExample, error)
}

// generators is the fixed set of example generators. Each is independent,
// idempotent, and writes only its own output files, so the set runs
// concurrently once the shared context is built.
var generators = []generator{
	{name: "block", build: buildBlockExamples},
	{name: "transaction", build: buildTransactionExamples},
	{name: "logs", build: buildLogsExample},
	{name: "filter", build: buildFilterExamples},
	{name: "proof", build: buildProofExample},
	{name: "estimateGas", build: buildEstimateGasExample},
	{name: "accessList", build: buildAccessListExample},
}

// exampleTarget returns the overlay target addressing a method's first
// example slot.
func exampleTarget(method string) string {
	return fmt.Sprintf("$.methods[?(@.name=='%s')].examples[0]", method)
}

// RunGenerators executes every example generator against the context and
// writes one overlay file per applicable method under c.Dir.
//
// Generators run concurrently: none shares mutable state and each targets a
// distinct output file. A skipped generator logs a warning; a failed one
// fails the run.
func RunGenerators(ctx context.Context, caller Caller, c *Context, log Logger) error {
	if log == nil {
		log = NopLogger{}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, gen := range generators {
		g.Go(func() error {
			examples, err := gen.build(gctx, caller, c)
			var sk *skipError
			if errors.As(err, &sk) {
				log.Warn("skipping example generator", "generator", gen.name, "reason", sk.reason)
				return nil
			}
			if err != nil {
				return fmt.Errorf("refresh: generator %s: %w", gen.name, err)
			}
			for _, me := range examples {
				path := filepath.Join(c.Dir, overlay.SanitizeFileName(me.method)+".yaml")
				action := overlay.Action{
					Target: exampleTarget(me.method),
					Set:    me.example,
				}
				if err := overlay.WriteActionFile(path, action); err != nil {
					return fmt.Errorf("refresh: generator %s: %w", gen.name, err)
				}
				log.Info("wrote example overlay", "method", me.method, "path", path)
			}
			return nil
		})
	}
	return g.Wait()
}

// buildBlockExamples documents block retrieval by number and by hash from
// the same reference block.
func buildBlockExamples(_ context.Context, _ Caller, c *Context) ([]methodExample, error) {
	number := hexutil.EncodeUint64(c.BlockNumber)
	result := namedValue{Name: "block", Value: c.Block}
	return []methodExample{
		{
			method: "eth_getBlockByNumber",
			example: &example{
				Name: "eth_getBlockByNumber example",
				Params: []namedValue{
					{Name: "blockNumber", Value: number},
					{Name: "hydratedTransactions", Value: false},
				},
				Result: result,
			},
		},
		{
			method: "eth_getBlockByHash",
			example: &example{
				Name: "eth_getBlockByHash example",
				Params: []namedValue{
					{Name: "blockHash", Value: c.BlockHash},
					{Name: "hydratedTransactions", Value: false},
				},
				Result: result,
			},
		},
	}, nil
}

// buildTransactionExamples documents the three transaction lookups: by
// hash, and by block (hash- and number-addressed) plus index.
func buildTransactionExamples(_ context.Context, _ Caller, c *Context) ([]methodExample, error) {
	result := namedValue{Name: "transaction", Value: c.Tx}
	index := "0x0" // sample tx is the first listed in the reference block
	return []methodExample{
		{
			method: "eth_getTransactionByHash",
			example: &example{
				Name: "eth_getTransactionByHash example",
				Params: []namedValue{
					{Name: "transactionHash", Value: c.TxHash},
				},
				Result: result,
			},
		},
		{
			method: "eth_getTransactionByBlockHashAndIndex",
			example: &example{
				Name: "eth_getTransactionByBlockHashAndIndex example",
				Params: []namedValue{
					{Name: "blockHash", Value: c.BlockHash},
					{Name: "transactionIndex", Value: index},
				},
				Result: result,
			},
		},
		{
			method: "eth_getTransactionByBlockNumberAndIndex",
			example: &example{
				Name: "eth_getTransactionByBlockNumberAndIndex example",
				Params: []namedValue{
					{Name: "blockNumber", Value: hexutil.EncodeUint64(c.BlockNumber)},
					{Name: "transactionIndex", Value: index},
				},
				Result: result,
			},
		},
	}, nil
}

// buildLogsExample documents eth_getLogs with the filter and entries the
// context build found.
func buildLogsExample(_ context.Context, _ Caller, c *Context) ([]methodExample, error) {
	if c.Logs == nil {
		return nil, skip("no logs context available")
	}
	return []methodExample{{
		method: "eth_getLogs",
		example: &example{
			Name: "eth_getLogs example",
			Params: []namedValue{
				{Name: "filter", Value: c.Logs.Filter},
			},
			Result: namedValue{Name: "logs", Value: c.Logs.Entries},
		},
	}}, nil
}

// buildFilterExamples opens a live filter scoped to the logs context's
// block and first log, then immediately reads filter changes and filter
// logs back through that same filter id.
func buildFilterExamples(ctx context.Context, caller Caller, c *Context) ([]methodExample, error) {
	if c.Logs == nil {
		return nil, skip("no logs context available")
	}

	filter := map[string]any{
		"fromBlock": hexutil.EncodeUint64(c.Logs.BlockNumber),
		"toBlock":   hexutil.EncodeUint64(c.Logs.BlockNumber),
	}
	if first, ok := c.Logs.Entries[0].(map[string]any); ok {
		if addr, ok := first["address"].(string); ok {
			filter["address"] = addr
		}
		if topics, ok := first["topics"].([]any); ok && len(topics) > 0 {
			filter["topics"] = []any{topics[0]}
		}
	}

	var filterID string
	raw, err := caller.Call(ctx, "eth_newFilter", filter)
	if err != nil {
		return nil, fmt.Errorf("eth_newFilter: %w", err)
	}
	if err := json.Unmarshal(raw, &filterID); err != nil {
		return nil, fmt.Errorf("eth_newFilter: malformed filter id: %w", err)
	}

	changes, err := callRaw(ctx, caller, "eth_getFilterChanges", filterID)
	if err != nil {
		return nil, err
	}
	logs, err := callRaw(ctx, caller, "eth_getFilterLogs", filterID)
	if err != nil {
		return nil, err
	}

	idParam := namedValue{Name: "filterIdentifier", Value: filterID}
	return []methodExample{
		{
			method: "eth_newFilter",
			example: &example{
				Name:   "eth_newFilter example",
				Params: []namedValue{{Name: "filter", Value: filter}},
				Result: namedValue{Name: "filterIdentifier", Value: filterID},
			},
		},
		{
			method: "eth_getFilterChanges",
			example: &example{
				Name:   "eth_getFilterChanges example",
				Params: []namedValue{idParam},
				Result: namedValue{Name: "logs", Value: changes},
			},
		},
		{
			method: "eth_getFilterLogs",
			example: &example{
				Name:   "eth_getFilterLogs example",
				Params: []namedValue{idParam},
				Result: namedValue{Name: "logs", Value: logs},
			},
		},
	}, nil
}

// buildProofExample documents eth_getProof for the known active account at
// the reference block.
func buildProofExample(ctx context.Context, caller Caller, c *Context) ([]methodExample, error) {
	if c.Account == "" {
		return nil, skip("no known active account available")
	}

	number := hexutil.EncodeUint64(c.BlockNumber)
	storageKeys := []any{}
	proof, err := callRaw(ctx, caller, "eth_getProof", c.Account, storageKeys, number)
	if err != nil {
		return nil, fmt.Errorf("eth_getProof: %w", err)
	}

	return []methodExample{{
		method: "eth_getProof",
		example: &example{
			Name: "eth_getProof example",
			Params: []namedValue{
				{Name: "address", Value: c.Account},
				{Name: "storageKeys", Value: storageKeys},
				{Name: "block", Value: number},
			},
			Result: namedValue{Name: "accountProof", Value: proof},
		},
	}}, nil
}

// buildEstimateGasExample documents eth_estimateGas with a minimal value
// transfer from the known active account.
func buildEstimateGasExample(ctx context.Context, caller Caller, c *Context) ([]methodExample, error) {
	if c.Account == "" {
		return nil, skip("no known active account available")
	}

	tx := map[string]any{
		"from":  c.Account,
		"to":    c.Account,
		"value": "0x1",
	}
	gas, err := callRaw(ctx, caller, "eth_estimateGas", tx)
	if err != nil {
		return nil, fmt.Errorf("eth_estimateGas: %w", err)
	}

	return []methodExample{{
		method: "eth_estimateGas",
		example: &example{
			Name:   "eth_estimateGas example",
			Params: []namedValue{{Name: "transaction", Value: tx}},
			Result: namedValue{Name: "gasUsed", Value: gas},
		},
	}}, nil
}

// accessListTxFields is the known field set copied from the sample
// transaction when assembling the access-list call object.
var accessListTxFields = []string{
	"from", "to", "gas", "gasPrice", "maxFeePerGas", "maxPriorityFeePerGas", "value", "input",
}

// buildAccessListExample documents eth_createAccessList with a call object
// assembled from the sample transaction.
//
// Only string-valued, non-empty fields from the known field set are copied.
// When both the legacy gas price and the EIP-1559 fee fields are present,
// the legacy gas price is dropped in favor of the newer fields.
func buildAccessListExample(ctx context.Context, caller Caller, c *Context) ([]methodExample, error) {
	tx := make(map[string]any, len(accessListTxFields))
	for _, field := range accessListTxFields {
		if v, ok := c.Tx[field].(string); ok && v != "" {
			tx[field] = v
		}
	}
	if _, hasTip := tx["maxPriorityFeePerGas"]; hasTip {
		delete(tx, "gasPrice")
	} else if _, hasCap := tx["maxFeePerGas"]; hasCap {
		delete(tx, "gasPrice")
	}
	if tx["from"] == nil || tx["to"] == nil {
		return nil, skip("sample transaction has no usable from/to fields")
	}

	number := hexutil.EncodeUint64(c.BlockNumber)
	accessList, err := callRaw(ctx, caller, "eth_createAccessList", tx, number)
	if err != nil {
		return nil, fmt.Errorf("eth_createAccessList: %w", err)
	}

	return []methodExample{{
		method: "eth_createAccessList",
		example: &example{
			Name: "eth_createAccessList example",
			Params: []namedValue{
				{Name: "transaction", Value: tx},
				{Name: "block", Value: number},
			},
			Result: namedValue{Name: "accessList", Value: accessList},
		},
	}}, nil
}

// callRaw issues a call and decodes the result into a generic tree so it
// can be embedded in an example value.
func callRaw(ctx context.Context, caller Caller, method string, params ...any) (any, error) {
	raw, err := caller.Call(ctx, method, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s: malformed result: %w", method, err)
	}
	return out, nil
}
