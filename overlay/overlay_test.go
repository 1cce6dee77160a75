package overlay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testDoc builds a small specification document for apply tests.
func testDoc() map[string]any {
	return map[string]any{
		"openrpc": "1.2.6",
		"info": map[string]any{
			"title":   "Test API",
			"version": "1.0.0",
		},
		"methods": []any{
			map[string]any{
				"name":     "eth_chainId",
				"params":   []any{},
				"examples": []any{map[string]any{"name": "old"}},
			},
			map[string]any{
				"name":     "eth_getLogs",
				"params":   []any{},
				"examples": []any{map[string]any{"name": "stale"}},
			},
		},
	}
}

func TestParseActions(t *testing.T) {
	t.Run("single action object", func(t *testing.T) {
		data := []byte(`
target: $.info
merge:
  title: New Title
`)
		actions, err := ParseActions(data)
		if err != nil {
			t.Fatalf("ParseActions error: %v", err)
		}
		if len(actions) != 1 {
			t.Fatalf("len(actions) = %d, want 1", len(actions))
		}
		if actions[0].Target != "$.info" {
			t.Errorf("Target = %q, want %q", actions[0].Target, "$.info")
		}
		if actions[0].Kind() != "merge" {
			t.Errorf("Kind() = %q, want %q", actions[0].Kind(), "merge")
		}
	})

	t.Run("action list", func(t *testing.T) {
		data := []byte(`
- target: $.info
  set:
    title: Replaced
- target: $.methods[0]
  remove: true
`)
		actions, err := ParseActions(data)
		if err != nil {
			t.Fatalf("ParseActions error: %v", err)
		}
		if len(actions) != 2 {
			t.Fatalf("len(actions) = %d, want 2", len(actions))
		}
		if actions[0].Kind() != "set" || actions[1].Kind() != "remove" {
			t.Errorf("kinds = %q, %q; want set, remove", actions[0].Kind(), actions[1].Kind())
		}
	})

	t.Run("JSON source", func(t *testing.T) {
		data := []byte(`{"target": "$.info", "merge": {"x-note": true}}`)
		actions, err := ParseActions(data)
		if err != nil {
			t.Fatalf("ParseActions error: %v", err)
		}
		if len(actions) != 1 {
			t.Fatalf("len(actions) = %d, want 1", len(actions))
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		if _, err := ParseActions([]byte("target: [invalid")); err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})

	t.Run("scalar source rejected", func(t *testing.T) {
		if _, err := ParseActions([]byte(`"just a string"`)); err == nil {
			t.Error("Expected error for scalar source")
		}
	})

	t.Run("action without mutation rejected", func(t *testing.T) {
		_, err := ParseActions([]byte("target: $.info"))
		if err == nil {
			t.Fatal("Expected validation error")
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("error type = %T, want *ParseError", err)
		}
	})

	t.Run("action with two mutations rejected", func(t *testing.T) {
		data := []byte(`
target: $.info
set: {a: 1}
remove: true
`)
		if _, err := ParseActions(data); err == nil {
			t.Error("Expected validation error for two mutation kinds")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid actions", func(t *testing.T) {
		actions := []Action{
			{Target: "$.info", Set: map[string]any{"title": "x"}},
			{Target: "$.methods[0]", Remove: true},
		}
		if errs := Validate(actions); len(errs) != 0 {
			t.Errorf("Validate errors: %v", errs)
		}
		if !IsValid(actions) {
			t.Error("IsValid = false, want true")
		}
	})

	t.Run("missing target", func(t *testing.T) {
		errs := Validate([]Action{{Set: map[string]any{}}})
		if len(errs) == 0 {
			t.Error("Expected error for missing target")
		}
	})

	t.Run("invalid target expression", func(t *testing.T) {
		errs := Validate([]Action{{Target: "methods", Remove: true}})
		if len(errs) == 0 {
			t.Error("Expected error for expression without root")
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("set replaces value wholesale", func(t *testing.T) {
		doc := testDoc()
		example := map[string]any{"name": "fresh", "params": []any{}}
		patched, err := Apply(doc, []Action{{
			Target: "$.methods[?(@.name=='eth_chainId')].examples[0]",
			Set:    example,
		}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}

		methods := patched.(map[string]any)["methods"].([]any)
		examples := methods[0].(map[string]any)["examples"].([]any)
		got := examples[0].(map[string]any)
		if got["name"] != "fresh" {
			t.Errorf("examples[0].name = %v, want fresh", got["name"])
		}
	})

	t.Run("deep-copy isolation", func(t *testing.T) {
		doc := testDoc()
		_, err := Apply(doc, []Action{{
			Target: "$.info",
			Set:    map[string]any{"title": "Changed"},
		}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		if doc["info"].(map[string]any)["title"] != "Test API" {
			t.Error("Apply mutated the caller's document")
		}
	})

	t.Run("set value is isolated from the source action", func(t *testing.T) {
		doc := testDoc()
		payload := map[string]any{"name": "shared"}
		patched, err := Apply(doc, []Action{{Target: "$.info", Set: payload}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		payload["name"] = "mutated-later"
		info := patched.(map[string]any)["info"].(map[string]any)
		if info["name"] != "shared" {
			t.Error("patched document aliases the action's set value")
		}
	})

	t.Run("remove splices array element", func(t *testing.T) {
		doc := map[string]any{
			"items": []any{"a", "b", "c"},
		}
		patched, err := Apply(doc, []Action{{Target: "$.items[1]", Remove: true}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		items := patched.(map[string]any)["items"].([]any)
		if len(items) != 2 {
			t.Fatalf("len(items) = %d, want 2", len(items))
		}
		if items[0] != "a" || items[1] != "c" {
			t.Errorf("items = %v, want [a c]", items)
		}
	})

	t.Run("remove deletes object key", func(t *testing.T) {
		doc := testDoc()
		patched, err := Apply(doc, []Action{{Target: "$.info.title", Remove: true}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		info := patched.(map[string]any)["info"].(map[string]any)
		if _, exists := info["title"]; exists {
			t.Error("title key still present after remove")
		}
		if info["version"] != "1.0.0" {
			t.Error("sibling key lost during remove")
		}
	})

	t.Run("remove by predicate splices matching elements", func(t *testing.T) {
		doc := testDoc()
		patched, err := Apply(doc, []Action{{
			Target: "$.methods[?(@.name=='eth_getLogs')]",
			Remove: true,
		}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		methods := patched.(map[string]any)["methods"].([]any)
		if len(methods) != 1 {
			t.Fatalf("len(methods) = %d, want 1", len(methods))
		}
		if methods[0].(map[string]any)["name"] != "eth_chainId" {
			t.Errorf("remaining method = %v, want eth_chainId", methods[0])
		}
	})

	t.Run("merge preserves unnamed keys and overwrites named", func(t *testing.T) {
		doc := testDoc()
		patched, err := Apply(doc, []Action{{
			Target: "$.info",
			Merge:  map[string]any{"title": "Merged", "x-extra": true},
		}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		info := patched.(map[string]any)["info"].(map[string]any)
		if info["title"] != "Merged" {
			t.Errorf("title = %v, want Merged", info["title"])
		}
		if info["version"] != "1.0.0" {
			t.Errorf("version = %v, want 1.0.0", info["version"])
		}
		if info["x-extra"] != true {
			t.Errorf("x-extra = %v, want true", info["x-extra"])
		}
	})

	t.Run("merge is shallow", func(t *testing.T) {
		doc := map[string]any{
			"config": map[string]any{
				"nested": map[string]any{"keep": 1, "other": 2},
			},
		}
		patched, err := Apply(doc, []Action{{
			Target: "$.config",
			Merge:  map[string]any{"nested": map[string]any{"replaced": true}},
		}})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		nested := patched.(map[string]any)["config"].(map[string]any)["nested"].(map[string]any)
		if _, exists := nested["keep"]; exists {
			t.Error("merge recursed into nested object; want wholesale replacement")
		}
		if nested["replaced"] != true {
			t.Errorf("nested = %v, want {replaced: true}", nested)
		}
	})

	t.Run("merge into array element fails", func(t *testing.T) {
		doc := testDoc()
		_, err := Apply(doc, []Action{{
			Target: "$.methods[0]",
			Merge:  map[string]any{"summary": "x"},
		}})
		if err == nil {
			t.Fatal("Expected error for merge into array element")
		}
		var ae *ApplyError
		if !errors.As(err, &ae) {
			t.Errorf("error type = %T, want *ApplyError", err)
		}
	})

	t.Run("merge into scalar fails", func(t *testing.T) {
		doc := testDoc()
		_, err := Apply(doc, []Action{{
			Target: "$.info.title",
			Merge:  map[string]any{"a": 1},
		}})
		if err == nil {
			t.Error("Expected error for merge into scalar")
		}
	})

	t.Run("unmatched target fails fast", func(t *testing.T) {
		doc := testDoc()
		_, err := Apply(doc, []Action{
			{Target: "$.info", Merge: map[string]any{"x-first": true}},
			{Target: "$.nonexistent", Remove: true},
		})
		if err == nil {
			t.Fatal("Expected error for unmatched target")
		}
		var ae *ApplyError
		if !errors.As(err, &ae) {
			t.Fatalf("error type = %T, want *ApplyError", err)
		}
		if ae.ActionIndex != 1 {
			t.Errorf("ActionIndex = %d, want 1", ae.ActionIndex)
		}
	})

	t.Run("root target fails", func(t *testing.T) {
		doc := testDoc()
		if _, err := Apply(doc, []Action{{Target: "$", Set: map[string]any{}}}); err == nil {
			t.Error("Expected error for root target")
		}
	})

	t.Run("actions apply left to right", func(t *testing.T) {
		doc := testDoc()
		patched, err := Apply(doc, []Action{
			{Target: "$.info.title", Set: "first"},
			{Target: "$.info.title", Set: "second"},
		})
		if err != nil {
			t.Fatalf("Apply error: %v", err)
		}
		if got := patched.(map[string]any)["info"].(map[string]any)["title"]; got != "second" {
			t.Errorf("title = %v, want second", got)
		}
	})
}

func TestLoad(t *testing.T) {
	writeFile := func(t *testing.T, dir, name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("single plus list yields three actions in order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.yaml", "target: $.info\nmerge: {a: 1}\n")
		writeFile(t, dir, "b.yaml", `
- target: $.info
  merge: {b: 2}
- target: $.info
  merge: {c: 3}
`)

		actions, err := Load(dir, false)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if len(actions) != 3 {
			t.Fatalf("len(actions) = %d, want 3", len(actions))
		}
		// Enumeration is lexical, then in-file order.
		if _, ok := actions[0].Merge["a"]; !ok {
			t.Errorf("actions[0] = %+v, want merge of a", actions[0])
		}
		if _, ok := actions[2].Merge["c"]; !ok {
			t.Errorf("actions[2] = %+v, want merge of c", actions[2])
		}
	})

	t.Run("missing root directory yields empty", func(t *testing.T) {
		actions, err := Load(filepath.Join(t.TempDir(), "does-not-exist"), false)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if len(actions) != 0 {
			t.Errorf("len(actions) = %d, want 0", len(actions))
		}
	})

	t.Run("skips hidden entries and foreign extensions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".hidden.yaml", "target: $.info\nremove: true\n")
		writeFile(t, dir, "notes.txt", "not an overlay")
		writeFile(t, dir, "real.YML", "target: $.info\nmerge: {a: 1}\n")

		actions, err := Load(dir, false)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if len(actions) != 1 {
			t.Errorf("len(actions) = %d, want 1", len(actions))
		}
	})

	t.Run("recursion only when requested", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "1")
		if err := os.MkdirAll(filepath.Join(sub, "nested"), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, dir, "root.yaml", "target: $.info\nmerge: {root: true}\n")
		writeFile(t, sub, "chain.yaml", "target: $.info\nmerge: {chain: true}\n")
		writeFile(t, filepath.Join(sub, "nested"), "deep.yaml", "target: $.info\nmerge: {deep: true}\n")

		flat, err := Load(dir, false)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if len(flat) != 1 {
			t.Errorf("non-recursive len = %d, want 1", len(flat))
		}

		deep, err := Load(dir, true)
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		if len(deep) != 3 {
			t.Errorf("recursive len = %d, want 3", len(deep))
		}
	})

	t.Run("malformed file is a hard failure", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bad.yaml", "target: [unclosed")
		if _, err := Load(dir, false); err == nil {
			t.Error("Expected error for malformed overlay file")
		}
	})
}

func TestWriteActionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1", "eth_chainId.yaml")

	action := Action{
		Target: "$.methods[?(@.name=='eth_chainId')].examples[0]",
		Set:    map[string]any{"name": "eth_chainId example"},
	}
	if err := WriteActionFile(path, action); err != nil {
		t.Fatalf("WriteActionFile error: %v", err)
	}

	loaded, err := ParseActionsFile(path)
	if err != nil {
		t.Fatalf("ParseActionsFile error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("len(loaded) = %d, want 1", len(loaded))
	}
	if loaded[0].Target != action.Target {
		t.Errorf("Target = %q, want %q", loaded[0].Target, action.Target)
	}
	if loaded[0].Kind() != "set" {
		t.Errorf("Kind() = %q, want set", loaded[0].Kind())
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"eth_getBlockByNumber", "eth_getBlockByNumber"},
		{"debug/traceCall", "debug_traceCall"},
		{"weird name!", "weird_name_"},
		{"v1.0-rc", "v1.0-rc"},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
