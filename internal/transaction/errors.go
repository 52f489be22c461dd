package transaction

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the single error kind for malformed total requests.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes why a payload was rejected. It matches ErrInvalidInput
// with errors.Is.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
