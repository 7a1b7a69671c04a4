package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrStateNotFound indicates no operation state exists for the user,
	// either because none was saved or because it expired.
	ErrStateNotFound = errors.New("operation state not found")

	// ErrItemNotFound indicates an item was not found by the given ID.
	ErrItemNotFound = errors.New("item not found")

	// ErrTermNotFound indicates a term was not found in the taxonomy.
	ErrTermNotFound = errors.New("term not found")

	// ErrLogEntryNotFound indicates a log entry was not found.
	ErrLogEntryNotFound = errors.New("log entry not found")
)

// IsStateNotFound reports whether err means the operation state is absent
// or expired.
func IsStateNotFound(err error) bool {
	return errors.Is(err, ErrStateNotFound)
}

// IsItemNotFound reports whether err means the item does not exist.
func IsItemNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsTermNotFound reports whether err means the term does not exist.
func IsTermNotFound(err error) bool {
	return errors.Is(err, ErrTermNotFound)
}

// StoreError wraps storage errors with the operation and key involved.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, key string, err error) *StoreError {
	return &StoreError{Op: op, Key: key, Err: err}
}
