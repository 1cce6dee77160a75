package overlay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v4"
)

// ParseActions parses overlay actions from YAML or JSON bytes.
//
// A source may contain a single action object or an ordered list of actions;
// both forms normalize to a slice. The parsed actions are validated before
// being returned.
func ParseActions(data []byte) ([]Action, error) {
	// yaml.Unmarshal handles both YAML and JSON
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Cause: err}
	}

	var actions []Action
	switch raw.(type) {
	case []any:
		if err := yaml.Unmarshal(data, &actions); err != nil {
			return nil, &ParseError{Cause: err}
		}
	case map[string]any:
		var a Action
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, &ParseError{Cause: err}
		}
		actions = []Action{a}
	default:
		return nil, &ParseError{Cause: fmt.Errorf("source must contain an action object or a list of actions")}
	}

	if errs := Validate(actions); len(errs) > 0 {
		return nil, &ParseError{Cause: errs[0]}
	}

	return actions, nil
}

// ParseActionsFile parses overlay actions from a file path.
//
// Supports both YAML (.yaml, .yml) and JSON (.json) files.
func ParseActionsFile(path string) ([]Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	actions, err := ParseActions(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Cause: err}
	}

	return actions, nil
}

// MarshalActions serializes actions to YAML bytes. A single action is
// marshaled as a bare object, a longer list as a sequence, mirroring the two
// source forms ParseActions accepts.
func MarshalActions(actions []Action) ([]byte, error) {
	var doc any = actions
	if len(actions) == 1 {
		doc = actions[0]
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("overlay: failed to marshal: %w", err)
	}
	return data, nil
}

// WriteActionFile writes a single action to path as YAML, creating parent
// directories as needed. Writes are not transactional: each overlay file is
// independently regenerable, so a partial run leaves only stale siblings.
func WriteActionFile(path string, action Action) error {
	if errs := Validate([]Action{action}); len(errs) > 0 {
		return errs[0]
	}
	data, err := MarshalActions([]Action{action})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("overlay: failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("overlay: failed to write %s: %w", path, err)
	}
	return nil
}

// SanitizeFileName derives a safe file stem from a method name: every
// character outside [A-Za-z0-9._-] is replaced with an underscore.
func SanitizeFileName(name string) string {
	out := []byte(name)
	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '.' || ch == '_' || ch == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
