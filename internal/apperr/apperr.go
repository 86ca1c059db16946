package apperr

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrForbidden = errors.New("forbidden")

// ValidationError carries a field-level message for 400 responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
