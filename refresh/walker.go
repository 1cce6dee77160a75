package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erraggy/rpcspec/internal/hexutil"
)

// searchBound is the maximum number of blocks either backward search will
// visit before giving up.
const searchBound = 64

// errWalkExhausted signals that a walker ran out of attempts or reached the
// genesis block without its consumer finding a match.
var errWalkExhausted = errors.New("refresh: block walk exhausted")

// blockWalker is a bounded lazy backward iterator over chain blocks.
//
// Keeping the attempt counter and termination policy in one place makes the
// search bound auditable; consumers just ask for the next candidate until
// one satisfies their predicate or Next reports exhaustion.
type blockWalker struct {
	caller    Caller
	next      uint64
	remaining int
	done      bool
}

// newBlockWalker creates a walker starting at the given height and visiting
// at most searchBound blocks, walking backward one block at a time.
func newBlockWalker(caller Caller, start uint64) *blockWalker {
	return &blockWalker{
		caller:    caller,
		next:      start,
		remaining: searchBound,
	}
}

// Next fetches the next candidate block (without full transaction bodies)
// and returns its height and record. Returns errWalkExhausted once the
// attempt bound is spent or the walk has passed the genesis block. Remote
// fetch failures propagate to the consumer.
func (w *blockWalker) Next(ctx context.Context) (uint64, map[string]any, error) {
	if w.done || w.remaining <= 0 {
		return 0, nil, errWalkExhausted
	}
	w.remaining--

	height := w.next
	if height == 0 {
		w.done = true
	} else {
		w.next = height - 1
	}

	block, err := fetchBlock(ctx, w.caller, height)
	if err != nil {
		return 0, nil, err
	}
	return height, block, nil
}

// fetchBlock fetches one block by height without hydrated transactions.
func fetchBlock(ctx context.Context, caller Caller, height uint64) (map[string]any, error) {
	raw, err := caller.Call(ctx, "eth_getBlockByNumber", hexutil.EncodeUint64(height), false)
	if err != nil {
		return nil, err
	}
	var block map[string]any
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("refresh: malformed block %d: %w", height, err)
	}
	if block == nil {
		return nil, fmt.Errorf("refresh: block %d not found", height)
	}
	return block, nil
}
