package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers every missing resource, users included.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers uniqueness violations: identity clashes, duplicate
	// reviews and store-level constraint races.
	ErrConflict = errors.New("conflict")

	// ErrInvalidConfirmationCode is returned when the presented code does not
	// match the stored one (or no code is outstanding).
	ErrInvalidConfirmationCode = errors.New("invalid confirmation code")
)

// FieldError reports a bad value for a named field. Handlers render it as a
// 400 with field-level detail.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
