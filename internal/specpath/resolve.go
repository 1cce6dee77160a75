package specpath

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrRootMatch is returned when an expression resolves to the document root.
// The root has no parent container, so it cannot be patched in place.
var ErrRootMatch = errors.New("specpath: expression matches the document root")

// NoMatchError is returned when an expression matches zero locations.
//
// Overlay authors are expected to target existing nodes; a silent no-op
// would mask a typo in the target expression.
type NoMatchError struct {
	// Expr is the path expression that failed to match.
	Expr string
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("specpath: %q matched no locations", e.Expr)
}

// Match is a mutation handle for one location matched by a path expression.
//
// A match records the immediate parent container and the key or index within
// it, never the value alone, because the patching engine needs to mutate the
// slot in place. For array elements the match also retains the slot holding
// the parent slice so removal can splice and write the shortened slice back.
type Match struct {
	loc *location
}

// location is a node reached during evaluation, chained to its parent.
type location struct {
	value  any
	parent *location
	key    string // set when parent.value is a map
	index  int    // set when parent.value is a slice
	inList bool
}

// Resolve evaluates the path against the document and returns a mutation
// handle for every matching location.
//
// The document should be a map[string]any or []any structure (typically from
// JSON/YAML unmarshaling). Returns *NoMatchError when nothing matches and
// ErrRootMatch when the expression selects the root itself.
func (p *Path) Resolve(doc any) ([]*Match, error) {
	current := []*location{{value: doc}}

	for _, seg := range p.segments {
		current = applySegment(current, seg)
		if len(current) == 0 {
			return nil, &NoMatchError{Expr: p.raw}
		}
	}

	matches := make([]*Match, 0, len(current))
	for _, loc := range current {
		if loc.parent == nil {
			return nil, ErrRootMatch
		}
		matches = append(matches, &Match{loc: loc})
	}
	return matches, nil
}

// applySegment applies a segment to the current locations and returns the results.
func applySegment(current []*location, seg segment) []*location {
	var results []*location

	for _, loc := range current {
		switch s := seg.(type) {
		case childSegment:
			if m, ok := loc.value.(map[string]any); ok {
				if val, exists := m[s.Key]; exists {
					results = append(results, &location{value: val, parent: loc, key: s.Key})
				}
			}

		case indexSegment:
			if arr, ok := loc.value.([]any); ok {
				idx := s.Index
				if idx < 0 {
					idx = len(arr) + idx // negative counts from the end
				}
				if idx >= 0 && idx < len(arr) {
					results = append(results, &location{value: arr[idx], parent: loc, index: idx, inList: true})
				}
			}

		case filterSegment:
			// Predicates iterate into a collection and select matching members.
			switch v := loc.value.(type) {
			case []any:
				for i, elem := range v {
					if fieldEquals(elem, s.Field, s.Value) {
						results = append(results, &location{value: elem, parent: loc, index: i, inList: true})
					}
				}
			case map[string]any:
				for key, val := range v {
					if fieldEquals(val, s.Field, s.Value) {
						results = append(results, &location{value: val, parent: loc, key: key})
					}
				}
			}
		}
	}

	return results
}

// fieldEquals reports whether the value is an object whose named field equals
// the literal. Numeric types are normalized first since YAML unmarshaling
// produces a mix of int and float64.
func fieldEquals(value any, field string, literal any) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}
	got, exists := m[field]
	if !exists {
		return false
	}

	left := normalizeNumber(got)
	right := normalizeNumber(literal)
	if left == right {
		return true
	}
	return reflect.DeepEqual(left, right)
}

// normalizeNumber converts all numeric types to float64 for comparison.
func normalizeNumber(v any) any {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

// Value returns the matched value.
func (m *Match) Value() any {
	return m.loc.value
}

// IsArrayElement reports whether the matched slot is an element of an array.
func (m *Match) IsArrayElement() bool {
	return m.loc.inList
}

// Key returns the key of the matched slot when the parent is an object, or
// the decimal index when the parent is an array. Intended for diagnostics.
func (m *Match) Key() string {
	if m.loc.inList {
		return fmt.Sprintf("%d", m.loc.index)
	}
	return m.loc.key
}

// Replace sets the matched slot to the given value.
func (m *Match) Replace(value any) error {
	parent := m.loc.parent
	switch container := parent.value.(type) {
	case map[string]any:
		container[m.loc.key] = value
		return nil
	case []any:
		if m.loc.index < 0 || m.loc.index >= len(container) {
			return fmt.Errorf("specpath: index %d out of bounds", m.loc.index)
		}
		container[m.loc.index] = value
		return nil
	default:
		return fmt.Errorf("specpath: cannot replace within %T", parent.value)
	}
}

// Remove deletes the matched slot from its parent.
//
// Object parents drop the key. Array parents splice: the element is excised
// and later elements shift down by one, which requires writing the shortened
// slice back into the slot holding the parent array.
func (m *Match) Remove() error {
	parent := m.loc.parent
	switch container := parent.value.(type) {
	case map[string]any:
		delete(container, m.loc.key)
		return nil
	case []any:
		idx := m.loc.index
		if idx < 0 || idx >= len(container) {
			return fmt.Errorf("specpath: index %d out of bounds", idx)
		}
		spliced := append(container[:idx:idx], container[idx+1:]...)
		return replaceContainer(parent, spliced)
	default:
		return fmt.Errorf("specpath: cannot remove within %T", parent.value)
	}
}

// replaceContainer writes a new container value into the slot holding loc.
func replaceContainer(loc *location, value any) error {
	if loc.parent == nil {
		return errors.New("specpath: cannot splice the document root")
	}
	holder := &Match{loc: loc}
	if err := holder.Replace(value); err != nil {
		return err
	}
	loc.value = value
	return nil
}
