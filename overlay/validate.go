package overlay

import (
	"fmt"

	"github.com/erraggy/rpcspec/internal/specpath"
)

// Validate checks a list of actions for structural errors.
//
// Returns a slice of validation errors. An empty slice indicates the actions
// are valid. Validation checks include:
//   - Required target with valid path syntax
//   - Exactly one mutation kind per action (set, merge, or remove)
func Validate(actions []Action) []ValidationError {
	var errs []ValidationError
	for i, action := range actions {
		errs = append(errs, validateAction(action, i)...)
	}
	return errs
}

// validateAction validates a single action.
func validateAction(action Action, index int) []ValidationError {
	var errs []ValidationError
	pathPrefix := fmt.Sprintf("actions[%d]", index)

	if action.Target == "" {
		errs = append(errs, ValidationError{
			Path:    pathPrefix + ".target",
			Message: "target is required",
		})
	} else if _, err := specpath.Parse(action.Target); err != nil {
		errs = append(errs, ValidationError{
			Path:    pathPrefix + ".target",
			Message: fmt.Sprintf("invalid path expression: %v", err),
		})
	}

	if n := action.kindCount(); n != 1 {
		errs = append(errs, ValidationError{
			Path:    pathPrefix,
			Message: "action must specify exactly one of set, merge, remove",
		})
	}

	return errs
}

// IsValid is a convenience function that returns true if the actions have no
// validation errors.
func IsValid(actions []Action) bool {
	return len(Validate(actions)) == 0
}
