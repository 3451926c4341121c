// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller is neither the owner nor an admin.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState indicates a state transition blocked by policy,
	// such as cancelling an order that is already out for delivery.
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientStock indicates a product has less stock than requested.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrProductNotFound indicates an order referenced a missing product.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = errors.New("email already in use")
)

// ValidationError describes a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
