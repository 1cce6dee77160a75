// Package overlay patches JSON-RPC specification documents with declarative
// example overlays.
//
// An overlay is an ordered list of actions. Each action selects locations in
// the specification document with a path expression and applies exactly one
// mutation: set (replace the value wholesale), merge (shallow-merge fields
// into an object), or remove (delete the location from its parent).
//
// # Quick Start
//
// Load a directory of overlay files and apply them to a parsed document:
//
//	actions, err := overlay.Load("overlays", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	patched, err := overlay.Apply(doc, actions)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Apply never mutates its input: the document is deep-copied first and the
// caller receives a new tree.
//
// # Overlay Files
//
// An overlay file is YAML or JSON containing a single action object or an
// ordered list of actions:
//
//	target: $.methods[?(@.name=='eth_getBlockByHash')].examples[0]
//	set:
//	  name: eth_getBlockByHash example
//	  params:
//	    - name: blockHash
//	      value: "0x4e3a3754410177e6937ef1f84bba68ea139e8d1a2258c5f85db9f1cd715a1bdd"
//	    - name: hydrated
//	      value: false
//	  result:
//	    name: block
//	    value: {...}
//
// # On-Disk Layout
//
// The root overlay directory holds chain-agnostic files directly and one
// subdirectory per canonical chain-id string holding chain-specific files:
//
//	overlays/
//	  fix-descriptions.yaml        applied for every network
//	  1/
//	    eth_getBlockByHash.yaml    applied only when the endpoint is mainnet
//	  11155111/
//	    eth_getLogs.yaml           applied only when the endpoint is sepolia
//
// The root directory is scanned non-recursively; chain directories are
// scanned recursively so per-network example files nest freely. A missing
// root directory yields zero actions, since overlays are optional.
//
// # Path Expressions
//
// Targets use a small closed expression language:
//   - Child access: $.methods, $.info['title']
//   - Array indices: $.methods[0], $.methods[-1]
//   - Field-equality predicates: $.methods[?(@.name=='eth_chainId')]
//
// A target that matches nothing is an authoring error and fails the whole
// Apply call; a typo must never degrade into a silent no-op.
package overlay
