// Package usecase implements the business logic for the tasks feature.
package usecase

import "errors"

var (
	// ErrTaskNotFound is returned when no task matches both the ID and the owner.
	// A task owned by someone else is reported the same way.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidQuery is returned when list parameters cannot be honoured.
	ErrInvalidQuery = errors.New("invalid query")
)

// ValidationError reports a task field that violates a rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
