package overlay

import (
	"fmt"

	"github.com/erraggy/rpcspec/internal/specpath"
)

// Apply applies a list of actions to a specification document and returns
// the patched document.
//
// The input document is deep-copied before any mutation, so the caller's
// tree is never modified. Actions are applied strictly in order, each fully
// applied before the next begins. Application fails fast: any action whose
// target does not resolve or whose mutation is invalid aborts the whole
// call with an *ApplyError — there is no partial-success mode, and actions
// already applied before the failure point are not rolled back.
func Apply(doc any, actions []Action) (any, error) {
	if errs := Validate(actions); len(errs) > 0 {
		return nil, errs[0]
	}

	copied := deepCopy(doc)

	for i, action := range actions {
		if err := applyAction(copied, action, i); err != nil {
			return nil, err
		}
	}

	return copied, nil
}

// applyAction applies a single action to the document in place.
func applyAction(doc any, action Action, index int) error {
	path, err := specpath.Parse(action.Target)
	if err != nil {
		return &ApplyError{ActionIndex: index, Target: action.Target, Cause: err}
	}

	matches, err := path.Resolve(doc)
	if err != nil {
		return &ApplyError{ActionIndex: index, Target: action.Target, Cause: err}
	}

	switch action.Kind() {
	case "remove":
		// Matches within one array resolve in ascending index order;
		// removing in reverse keeps the remaining indices valid as
		// elements splice out.
		for i := len(matches) - 1; i >= 0; i-- {
			if err := matches[i].Remove(); err != nil {
				return &ApplyError{ActionIndex: index, Target: action.Target, Cause: err}
			}
		}

	case "merge":
		for _, m := range matches {
			if err := mergeMatch(m, action.Merge); err != nil {
				return &ApplyError{ActionIndex: index, Target: action.Target, Cause: err}
			}
		}

	case "set":
		for _, m := range matches {
			if err := m.Replace(deepCopy(action.Set)); err != nil {
				return &ApplyError{ActionIndex: index, Target: action.Target, Cause: err}
			}
		}

	default:
		return &ApplyError{
			ActionIndex: index,
			Target:      action.Target,
			Cause:       fmt.Errorf("action has no mutation"),
		}
	}

	return nil
}

// mergeMatch shallow-merges fields into the matched slot.
//
// Merging into an array element is a target-authoring error, and the current
// value must be an object or absent. The result is a fresh object holding
// the union of the existing fields and the merge fields, merge fields
// winning on collision. Nested objects are replaced wholesale.
func mergeMatch(m *specpath.Match, fields map[string]any) error {
	if m.IsArrayElement() {
		return fmt.Errorf("cannot merge into array element %s", m.Key())
	}

	var existing map[string]any
	switch cur := m.Value().(type) {
	case nil:
	case map[string]any:
		existing = cur
	default:
		return fmt.Errorf("cannot merge into %T value at key %q", cur, m.Key())
	}

	merged := make(map[string]any, len(existing)+len(fields))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = deepCopy(v)
	}

	return m.Replace(merged)
}

// deepCopy creates a deep copy of a document tree.
//
// Unlike JSON marshal/unmarshal round-trips, this preserves exact numeric
// types and float precision.
func deepCopy(v any) any {
	switch val := v.(type) {
	case nil:
		return nil

	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = deepCopy(v)
		}
		return result

	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = deepCopy(v)
		}
		return result

	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		// Primitives are immutable, return as-is
		return val

	default:
		// Unknown types pass through unchanged; the resolver can only
		// traverse maps and slices anyway.
		return val
	}
}
