package mcpserver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("RPCSPEC_HTTP_TIMEOUT", "")
		t.Setenv("RPCSPEC_OVERLAY_DIR", "")
		c := loadConfig()
		assert.Equal(t, 30*time.Second, c.HTTPTimeout)
		assert.Equal(t, "overlays", c.OverlayDir)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("RPCSPEC_HTTP_TIMEOUT", "5s")
		t.Setenv("RPCSPEC_OVERLAY_DIR", "/data/overlays")
		c := loadConfig()
		assert.Equal(t, 5*time.Second, c.HTTPTimeout)
		assert.Equal(t, "/data/overlays", c.OverlayDir)
	})

	t.Run("invalid duration falls back", func(t *testing.T) {
		t.Setenv("RPCSPEC_HTTP_TIMEOUT", "soon")
		assert.Equal(t, 30*time.Second, loadConfig().HTTPTimeout)

		t.Setenv("RPCSPEC_HTTP_TIMEOUT", "-3s")
		assert.Equal(t, 30*time.Second, loadConfig().HTTPTimeout)
	})
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", sanitizeError(nil))
	assert.Equal(t,
		"open <path>: no such file or directory",
		sanitizeError(errors.New("open /home/alice/specs/eth.yaml: no such file or directory")))
	assert.Equal(t, "plain message", sanitizeError(errors.New("plain message")))
}

func TestHandleOverlayApply(t *testing.T) {
	writeSpec := func(t *testing.T, dir string) string {
		t.Helper()
		spec := filepath.Join(dir, "spec.yaml")
		content := `
openrpc: 1.2.6
info:
  title: Node API
methods:
  - name: eth_chainId
    examples: []
`
		require.NoError(t, os.WriteFile(spec, []byte(content), 0o644))
		return spec
	}

	t.Run("applies global overlays inline", func(t *testing.T) {
		dir := t.TempDir()
		spec := writeSpec(t, dir)
		overlayDir := filepath.Join(dir, "overlays")
		require.NoError(t, os.MkdirAll(overlayDir, 0o755))
		action := "target: $.info\nmerge: {title: Patched API}\n"
		require.NoError(t, os.WriteFile(filepath.Join(overlayDir, "title.yaml"), []byte(action), 0o644))

		_, out, err := handleOverlayApply(context.Background(), nil, overlayApplyInput{
			Spec:       spec,
			OverlayDir: overlayDir,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, out.ActionsApplied)
		assert.Empty(t, out.WrittenTo)

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out.Document), &doc))
		assert.Equal(t, "Patched API", doc["info"].(map[string]any)["title"])
	})

	t.Run("writes output file when requested", func(t *testing.T) {
		dir := t.TempDir()
		spec := writeSpec(t, dir)
		overlayDir := filepath.Join(dir, "overlays")
		outPath := filepath.Join(dir, "patched.yaml")

		_, out, err := handleOverlayApply(context.Background(), nil, overlayApplyInput{
			Spec:       spec,
			OverlayDir: overlayDir,
			Output:     outPath,
		})
		require.NoError(t, err)
		assert.Equal(t, outPath, out.WrittenTo)
		assert.Empty(t, out.Document)

		written, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Contains(t, string(written), "Node API")
	})

	t.Run("missing spec file is a tool error", func(t *testing.T) {
		result, _, err := handleOverlayApply(context.Background(), nil, overlayApplyInput{
			Spec: filepath.Join(t.TempDir(), "missing.yaml"),
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
	})

	t.Run("failing action is a tool error", func(t *testing.T) {
		dir := t.TempDir()
		spec := writeSpec(t, dir)
		overlayDir := filepath.Join(dir, "overlays")
		require.NoError(t, os.MkdirAll(overlayDir, 0o755))
		action := "target: $.nonexistent\nremove: true\n"
		require.NoError(t, os.WriteFile(filepath.Join(overlayDir, "bad.yaml"), []byte(action), 0o644))

		result, _, err := handleOverlayApply(context.Background(), nil, overlayApplyInput{
			Spec:       spec,
			OverlayDir: overlayDir,
		})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
	})
}
