package queryir

import (
	"errors"
	"fmt"
)

// InvalidPredicateError reports structurally invalid query input detected
// before anything reaches storage.
type InvalidPredicateError struct {
	// Attribute names the offending attribute, if known.
	Attribute string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *InvalidPredicateError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("invalid predicate on %s: %s", e.Attribute, e.Reason)
	}
	return fmt.Sprintf("invalid predicate: %s", e.Reason)
}

// IsInvalidPredicate returns true if err is or wraps an InvalidPredicateError.
func IsInvalidPredicate(err error) bool {
	var ipe *InvalidPredicateError
	return errors.As(err, &ipe)
}
