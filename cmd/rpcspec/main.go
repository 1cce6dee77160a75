package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/rpcspec"
	"github.com/erraggy/rpcspec/internal/mcpserver"
	"github.com/erraggy/rpcspec/overlay"
	"github.com/erraggy/rpcspec/refresh"
	"github.com/erraggy/rpcspec/rpcclient"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("rpcspec v%s\n", rpcspec.Version())
	case "help", "-h", "--help":
		printUsage()
	case "apply":
		if err := handleApply(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "refresh":
		if err := handleRefresh(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := mcpserver.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// applyFlags contains flags for the apply command
type applyFlags struct {
	specPath   string
	overlayDir string
	rpcURL     string
	outPath    string
	verbose    bool
}

func setupApplyFlags() (*flag.FlagSet, *applyFlags) {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	flags := &applyFlags{}

	fs.StringVar(&flags.specPath, "spec", "", "path to the specification document (JSON or YAML)")
	fs.StringVar(&flags.overlayDir, "overlays", "overlays", "root overlay directory")
	fs.StringVar(&flags.rpcURL, "rpc-url", "", "endpoint URL used to resolve the chain-scoped overlay directory")
	fs.StringVar(&flags.outPath, "out", "", "write the patched document to this file instead of stdout")
	fs.BoolVar(&flags.verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: rpcspec apply [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Patch a specification with global plus chain-scoped overlays.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

func handleApply(args []string) error {
	fs, flags := setupApplyFlags()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if flags.specPath == "" {
		fs.Usage()
		return fmt.Errorf("-spec is required")
	}

	log := newLogger(flags.verbose)

	doc, err := readDocument(flags.specPath)
	if err != nil {
		return err
	}

	actions, err := overlay.Load(flags.overlayDir, false)
	if err != nil {
		return err
	}

	if flags.rpcURL != "" {
		chainID := refresh.ResolveChainID(context.Background(), rpcclient.New(flags.rpcURL), log)
		if chainID != refresh.ChainUnknown {
			chained, err := overlay.Load(refresh.ChainDir(flags.overlayDir, chainID), true)
			if err != nil {
				return err
			}
			log.Debug("loaded chain-scoped overlays", "chainId", chainID, "actions", len(chained))
			actions = append(actions, chained...)
		}
	}

	patched, err := overlay.Apply(doc, actions)
	if err != nil {
		return err
	}
	log.Info("applied overlay actions", "count", len(actions))

	return writeDocument(flags.specPath, flags.outPath, patched)
}

// refreshFlags contains flags for the refresh command
type refreshFlags struct {
	rpcURL      string
	targetsPath string
	overlayDir  string
	startBlock  uint64
	label       string
	verbose     bool
}

func setupRefreshFlags() (*flag.FlagSet, *refreshFlags) {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	flags := &refreshFlags{}

	fs.StringVar(&flags.rpcURL, "rpc-url", "", "endpoint URL to harvest examples from")
	fs.StringVar(&flags.targetsPath, "targets", "", "YAML file listing {endpoint, block, label} entries")
	fs.StringVar(&flags.overlayDir, "overlays", "overlays", "root overlay directory to write under")
	fs.Uint64Var(&flags.startBlock, "block", 0, "starting block height for the backward searches (default: chain head)")
	fs.StringVar(&flags.label, "label", "", "human-readable endpoint name used in logs")
	fs.BoolVar(&flags.verbose, "v", false, "enable debug logging")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: rpcspec refresh [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Harvest fresh request/response examples from live endpoints.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	return fs, flags
}

func handleRefresh(args []string) error {
	fs, flags := setupRefreshFlags()
	if err := fs.Parse(args); err != nil {
		return err
	}

	targets, err := collectTargets(fs, flags)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fs.Usage()
		return fmt.Errorf("either -rpc-url or -targets is required")
	}

	return refresh.Refresh(context.Background(), targets, refresh.Options{
		OverlayDir: flags.overlayDir,
		Logger:     newLogger(flags.verbose),
	})
}

// collectTargets merges the single-endpoint flags and the targets file into
// one target list.
func collectTargets(fs *flag.FlagSet, flags *refreshFlags) ([]refresh.Target, error) {
	var targets []refresh.Target

	if flags.rpcURL != "" {
		target := refresh.Target{Endpoint: flags.rpcURL, Label: flags.label}
		blockSet := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "block" {
				blockSet = true
			}
		})
		if blockSet {
			block := flags.startBlock
			target.Block = &block
		}
		targets = append(targets, target)
	}

	if flags.targetsPath != "" {
		data, err := os.ReadFile(flags.targetsPath)
		if err != nil {
			return nil, err
		}
		var listed []refresh.Target
		if err := yaml.Unmarshal(data, &listed); err != nil {
			return nil, fmt.Errorf("failed to parse targets file %s: %w", flags.targetsPath, err)
		}
		targets = append(targets, listed...)
	}

	return targets, nil
}

// readDocument reads a specification document as a generic tree.
func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument marshals the patched document, matching the input format by
// extension, and writes it to outPath or stdout.
func writeDocument(specPath, outPath string, doc any) error {
	format := specPath
	if outPath != "" {
		format = outPath
	}

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(format), ".json") {
		data, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}

// newLogger builds the CLI logger: slog text on stderr, debug when verbose.
func newLogger(verbose bool) refresh.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return refresh.NewSlogAdapter(slog.New(handler))
}

func printUsage() {
	fmt.Println(`rpcspec - JSON-RPC specification overlay and example-refresh tooling

Usage:
  rpcspec <command> [flags]

Commands:
  apply     Patch a specification with global plus chain-scoped overlays
  refresh   Harvest fresh request/response examples from live endpoints
  mcp       Run the MCP server over stdio
  version   Print the version
  help      Show this help

Run 'rpcspec <command> -h' for command-specific flags.`)
}
