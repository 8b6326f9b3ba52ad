// Package usecase implements the business logic for the users feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to store a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned by Login for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when a session is not in the user's active set.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidUpdate is returned when a profile update names a field outside the allow-list.
	ErrInvalidUpdate = errors.New("invalid update")

	// ErrAvatarNotFound is returned when the user or their avatar does not exist.
	ErrAvatarNotFound = errors.New("avatar not found")

	// ErrAvatarTooLarge is returned when an uploaded avatar exceeds MaxAvatarSize.
	ErrAvatarTooLarge = errors.New("avatar exceeds maximum size")

	// ErrAvatarFileType is returned when an uploaded avatar has a disallowed extension.
	ErrAvatarFileType = errors.New("avatar must be a png or jpg image")

	// ErrInvalidImage is returned when an uploaded avatar cannot be decoded.
	ErrInvalidImage = errors.New("avatar image could not be decoded")
)

// ValidationError reports an input that violates a field rule.
// Its message is safe to show to the client.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
