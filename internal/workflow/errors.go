package workflow

import (
	"errors"
	"fmt"

	"go-glass-dispatch/internal/store"
)

// --- Sentinel Errors ---
// Callers check these with errors.Is; they always arrive wrapped in a
// *ValidationError carrying the specifics.

var (
	ErrMissingField      = errors.New("required field is missing")
	ErrInvalidField      = errors.New("field value is not allowed")
	ErrEmptyItems        = errors.New("order must have at least one item")
	ErrInvalidItem       = errors.New("order item is invalid")
	ErrInvalidTransition = errors.New("status change is not allowed")
	ErrInvalidStatus     = errors.New("unknown status")
	ErrNotEditable       = errors.New("order can no longer be changed")
	ErrOrderNotApproved  = errors.New("order is not approved")
	ErrNotStaged         = errors.New("order is not staged on this slip")
	ErrItemAlreadyLoaded = errors.New("item is already on a loading slip")
	ErrItemMoved         = errors.New("item was moved to a remainder order")
	ErrNothingRemaining  = errors.New("no items left for a remainder order")
	ErrEmptySelection    = errors.New("select at least one item before submitting")
)

// ErrVersionConflict is returned when the caller's version is stale.
var ErrVersionConflict = store.ErrVersionConflict

// ValidationError wraps a sentinel with human-readable details.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced order, slip or item that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

// AuthorizationError reports an actor whose role may not perform an action.
// The workflow never raises it; the HTTP layer does, before calling in.
type AuthorizationError struct {
	Role   string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

func checkVersion(current, expected int) error {
	if expected != 0 && current != expected {
		return fmt.Errorf("%w (have %d, sent %d)", ErrVersionConflict, current, expected)
	}
	return nil
}
