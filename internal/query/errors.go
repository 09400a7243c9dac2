package query

import (
	"errors"
	"fmt"
)

// NonUniqueResultError is returned by SingleResult when more than one
// instance matches.
type NonUniqueResultError struct {
	// Limit is the number of rows fetched; reaching it means "more than one".
	Limit int
}

// Error implements the error interface.
func (e *NonUniqueResultError) Error() string {
	return fmt.Sprintf("query returned more than one result (fetched %d rows)", e.Limit)
}

// StorageError wraps a failure reported by the storage collaborator.
type StorageError struct {
	// Op is the step that failed: "query", "scan" or "iterate".
	Op string

	// Err is the underlying error, unchanged.
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNonUniqueResult returns true if err is or wraps a NonUniqueResultError.
func IsNonUniqueResult(err error) bool {
	var nue *NonUniqueResultError
	return errors.As(err, &nue)
}

// IsStorageError returns true if err is or wraps a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
