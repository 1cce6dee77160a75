package overlay

import (
	"os"
	"path/filepath"
	"strings"
)

// Load reads every overlay file under dir and returns the combined actions
// in file enumeration order (lexical), then in-file order.
//
// Hidden entries (names beginning with a dot) are skipped. Only files with
// a .json, .yaml, or .yml extension (case insensitive) are parsed; other
// files are ignored silently. Subdirectories are descended into only when
// recursive is true. A missing root directory is not an error — overlays
// are optional — and yields an empty slice; any other filesystem error or
// malformed file propagates.
func Load(dir string, recursive bool) ([]Action, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var actions []Action
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if !recursive {
				continue
			}
			nested, err := Load(path, true)
			if err != nil {
				return nil, err
			}
			actions = append(actions, nested...)
			continue
		}

		switch strings.ToLower(filepath.Ext(name)) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}

		parsed, err := ParseActionsFile(path)
		if err != nil {
			return nil, err
		}
		actions = append(actions, parsed...)
	}

	return actions, nil
}
