package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store and service functions when the requested
// entity does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field). Handlers should map this to HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrNoSelectedTrip is returned by the modifier when a change needs the
// currently selected trip as its implicit target but none is selected.
var ErrNoSelectedTrip = errors.New("沒有選中的行程")

// ErrTripNotFound is returned when a change names a trip (explicitly or via
// the selected-trip fallback) that is not in the trips collection.
var ErrTripNotFound = errors.New("找不到指定的行程")

// ModificationError is the typed error for a single failed change. It is
// caught inside the apply batch and recorded per change — it never aborts or
// rolls back sibling changes and never escapes the batch boundary.
type ModificationError struct {
	ChangeID string
	Message  string
}

// NewModificationError builds a ModificationError for the given change id.
func NewModificationError(changeID, message string) *ModificationError {
	return &ModificationError{ChangeID: changeID, Message: message}
}

func (e *ModificationError) Error() string {
	if e.ChangeID == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (change %s)", e.Message, e.ChangeID)
}
