package rules

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when deleting an item name the store does not hold.
var ErrNotFound = errors.New("rule not found")

// ValidationError reports an empty or malformed rule field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PersistenceError reports that the backend rejected a full-table write.
// The in-memory mutation that triggered the write has already been applied.
type PersistenceError struct {
	Backend string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting rules to %s: %v", e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is (or wraps) a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
