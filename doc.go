// Package rpcspec provides tools for keeping JSON-RPC API specifications fresh.
//
// rpcspec patches an OpenRPC-shaped specification document with declarative
// overlays and harvests real request/response examples from a live endpoint
// so those overlays never go stale.
//
// # Overview
//
// The library consists of three primary packages:
//
//   - overlay: Load, validate, and apply overlay actions to a specification document
//   - rpcclient: A minimal JSON-RPC 2.0 client over HTTP POST
//   - refresh: Resolve the endpoint's chain, harvest sample chain data, and
//     regenerate per-method example overlays
//
// # Quick Start
//
// Apply the overlays for an endpoint's chain to a specification:
//
//	import (
//		"github.com/erraggy/rpcspec/overlay"
//		"github.com/erraggy/rpcspec/refresh"
//		"github.com/erraggy/rpcspec/rpcclient"
//	)
//
//	client := rpcclient.New("http://localhost:8545")
//	chainID := refresh.ResolveChainID(ctx, client, logger)
//
//	actions, err := overlay.Load("overlays", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if chainID != refresh.ChainUnknown {
//		chained, err := overlay.Load(filepath.Join("overlays", chainID), true)
//		if err != nil {
//			log.Fatal(err)
//		}
//		actions = append(actions, chained...)
//	}
//
//	patched, err := overlay.Apply(doc, actions)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Refresh the example overlays from a live endpoint:
//
//	err := refresh.Refresh(ctx, []refresh.Target{{Endpoint: "http://localhost:8545"}}, refresh.Options{
//		OverlayDir: "overlays",
//		Logger:     refresh.NewSlogAdapter(nil),
//	})
//
// # Overlay Files
//
// An overlay file is YAML or JSON holding one action or a list of actions.
// Each action names a target path and exactly one mutation:
//
//	target: $.methods[?(@.name=='eth_chainId')].examples[0]
//	set:
//	  name: eth_chainId example
//	  params: []
//	  result:
//	    name: chainId
//	    value: "0x1"
//
// Files live directly under the overlay root (chain-agnostic) or one level
// deeper in a directory named after the canonical decimal chain id
// (chain-specific, scanned recursively).
//
// # Command-Line Interface
//
//	# Patch a spec with global plus chain-scoped overlays
//	rpcspec apply -spec openrpc.json -overlays overlays -rpc-url http://localhost:8545
//
//	# Harvest fresh examples from an endpoint
//	rpcspec refresh -rpc-url http://localhost:8545 -overlays overlays
//
// Install the CLI:
//
//	go install github.com/erraggy/rpcspec/cmd/rpcspec@latest
package rpcspec
