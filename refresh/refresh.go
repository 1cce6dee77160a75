package refresh

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/erraggy/rpcspec/rpcclient"
)

// Target names one endpoint to refresh examples from.
type Target struct {
	// Endpoint is the JSON-RPC endpoint URL. Required.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// Block optionally pins the starting height for the backward
	// searches; the current chain head is used when absent.
	Block *uint64 `yaml:"block,omitempty" json:"block,omitempty"`

	// Label is an optional human-readable endpoint name used in logs.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Options configures a refresh run.
type Options struct {
	// OverlayDir is the root overlay directory examples are written under,
	// one chain-id subdirectory per endpoint network.
	OverlayDir string

	// Logger receives run progress and degradation warnings.
	// Defaults to NopLogger.
	Logger Logger

	// Dial constructs the transport for an endpoint. Defaults to
	// rpcclient.New; tests substitute fakes.
	Dial func(endpoint string) Caller
}

// RefreshTarget builds the network context for one endpoint and runs every
// example generator against it.
func RefreshTarget(ctx context.Context, target Target, opts Options) error {
	if target.Endpoint == "" {
		return errors.New("refresh: target endpoint is required")
	}
	log := opts.Logger
	if log == nil {
		log = NopLogger{}
	}

	dial := opts.Dial
	if dial == nil {
		dial = func(endpoint string) Caller { return rpcclient.New(endpoint) }
	}
	caller := dial(target.Endpoint)

	cctx, err := BuildContext(ctx, BuildConfig{
		Caller:      caller,
		Endpoint:    target.Endpoint,
		Label:       target.Label,
		StartBlock:  target.Block,
		OverlayRoot: opts.OverlayDir,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("refresh: context build for %s failed: %w", target.Endpoint, err)
	}

	log.Info("network context built",
		"endpoint", cctx.Label,
		"chainId", cctx.ChainID,
		"block", cctx.BlockNumber,
		"hasLogs", cctx.Logs != nil)

	return RunGenerators(ctx, caller, cctx, log.With("endpoint", cctx.Label))
}

// Refresh runs RefreshTarget for every target concurrently.
//
// Each endpoint's context build and generator run is independent with no
// cross-endpoint shared state; chain-scoped output directories keep the
// written files conflict-free.
func Refresh(ctx context.Context, targets []Target, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			return RefreshTarget(gctx, target, opts)
		})
	}
	return g.Wait()
}
