package mcpserver

import (
	"log/slog"
	"os"
	"time"
)

// serverConfig holds all configurable MCP server defaults.
// Loaded once at startup from environment variables via loadConfig().
type serverConfig struct {
	// HTTPTimeout bounds each JSON-RPC call made on behalf of a tool.
	HTTPTimeout time.Duration

	// OverlayDir is the default root overlay directory.
	OverlayDir string
}

// cfg is the active server configuration, initialized at package load time.
var cfg = loadConfig()

// loadConfig reads configuration from RPCSPEC_* environment variables.
// Invalid values log a warning and fall back to the hardcoded default.
func loadConfig() *serverConfig {
	return &serverConfig{
		HTTPTimeout: envDuration("RPCSPEC_HTTP_TIMEOUT", 30*time.Second),
		OverlayDir:  envString("RPCSPEC_OVERLAY_DIR", "overlays"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
