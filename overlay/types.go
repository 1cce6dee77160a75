package overlay

// Action represents a single declarative mutation of a specification document.
//
// Each action targets locations selected by a path expression and carries
// exactly one mutation: replace the value wholesale (set), shallow-merge
// fields into an object (merge), or delete the location from its parent
// (remove).
type Action struct {
	// Target is a path expression selecting the locations to operate on.
	// This field is required and must resolve to at least one location.
	Target string `yaml:"target" json:"target"`

	// Description is an optional human-readable explanation of the action.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Set replaces the matched location's value wholesale.
	Set any `yaml:"set,omitempty" json:"set,omitempty"`

	// Merge shallow-merges the given key/value pairs into the matched
	// location, which must currently be an object (or null). Nested objects
	// are replaced wholesale, not recursively merged. Merge fields win on
	// key collision.
	Merge map[string]any `yaml:"merge,omitempty" json:"merge,omitempty"`

	// Remove, when true, deletes the matched location from its parent.
	Remove bool `yaml:"remove,omitempty" json:"remove,omitempty"`
}

// Kind returns the action's mutation kind: "set", "merge", or "remove".
// Returns an empty string when no mutation is present.
func (a Action) Kind() string {
	switch {
	case a.Remove:
		return "remove"
	case a.Merge != nil:
		return "merge"
	case a.Set != nil:
		return "set"
	default:
		return ""
	}
}

// kindCount returns how many mutation kinds the action carries. A
// well-formed action carries exactly one.
func (a Action) kindCount() int {
	n := 0
	if a.Set != nil {
		n++
	}
	if a.Merge != nil {
		n++
	}
	if a.Remove {
		n++
	}
	return n
}
