package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConversationNotFound is returned when the conversation id resolves
	// to nothing.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrModelService is returned when the model service fails at the
	// transport level. Fatal for the turn; no retry is attempted because
	// partial output may already have been shown to the user.
	ErrModelService = errors.New("model service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
