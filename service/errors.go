package service

import (
	"errors"
	"fmt"
)

// Typed failure outcomes. The bot layer matches these with errors.Is to
// render user-facing messages without inspecting error text.
var (
	// ErrCodeNotFound indicates an unknown reward code
	ErrCodeNotFound = errors.New("reward code not found")

	// ErrWrongGuild indicates the code belongs to a different guild
	ErrWrongGuild = errors.New("reward code belongs to a different guild")

	// ErrAlreadyRedeemed indicates the user has already redeemed the code
	ErrAlreadyRedeemed = errors.New("reward code already redeemed by this user")

	// ErrEventNotFound indicates an unknown event id
	ErrEventNotFound = errors.New("event not found")
)

// ValidationError indicates caller input rejected before any mutation
// was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
