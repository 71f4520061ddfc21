package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the registry and the stores. Stores return these
// (optionally wrapped) so services and handlers can translate them without
// string matching.
var (
	// ErrNotFound: the apartment has no current occupant
	ErrNotFound = errors.New("tenant not found")
	// ErrInvalidDate: a date-ordering rule was violated
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnavailable: transient lock contention or storage failure, safe to retry
	ErrUnavailable = errors.New("store unavailable")
	// ErrCorrupted: the backing store holds unreadable data, not retryable
	ErrCorrupted = errors.New("store corrupted")
)

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates the field errors of a rejected request. It is
// always recoverable by the caller correcting its input.
type ValidationError []FieldError

func (e ValidationError) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AsValidationError unwraps a ValidationError from err if there is one
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
