package tracker

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when an application is missing or does not belong to the user.
var ErrNotFound = errors.New("application not found")

// ErrMissingUser is returned when an operation is invoked without a principal id.
var ErrMissingUser = errors.New("user id is required")

// ─── Typed errors ────────────────────────────────────────────────────────────

// ValidationError wraps a user-facing validation message. It is produced
// before any store call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// PersistenceError reports a failed read or write against the record store.
// Stack holds the call stack at the point the failure was wrapped.
type PersistenceError struct {
	Op    string
	Err   error
	Stack []byte
}

// NewPersistenceError wraps err as a PersistenceError for operation op.
func NewPersistenceError(op string, err error) *PersistenceError {
	if err == nil {
		err = errors.New("unknown store failure")
	}
	var stack []byte
	if se, ok := err.(*goerrors.Error); ok {
		stack = se.Stack()
	} else {
		stack = goerrors.Wrap(err, 1).Stack()
	}
	return &PersistenceError{Op: op, Err: err, Stack: stack}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
