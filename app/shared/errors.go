package shared

import (
	"database/sql"
	"errors"
	"fmt"
)

// Error taxonomy shared by every module. Callers match with errors.Is.
var (
	// ErrNotFound means a tournament, match or team does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the entity is not in a state that allows the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrTransientStore wraps repository I/O failures. Retrying is safe.
	ErrTransientStore = errors.New("transient store error")
	// ErrLoggingFailure marks an audit write that failed. It is never returned to callers.
	ErrLoggingFailure = errors.New("audit logging failure")
)

// StoreError classifies a driver error. sql.ErrNoRows becomes ErrNotFound,
// everything else ErrTransientStore. The cause stays in the chain.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTransientStore) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrTransientStore, err)
}

// InvalidStateError describes an entity found in the wrong state.
type InvalidStateError struct {
	Entity   string
	ID       string
	Actual   string
	Expected string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s, expected %s", e.Entity, e.ID, e.Actual, e.Expected)
}

// Unwrap lets errors.Is match ErrInvalidState.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// IsRetryable reports whether err is worth retrying from scratch.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) {
		return false
	}
	return true
}
