package usecase

import (
	"context"

	"task_backend/internal/feature/users/domain/entity"
)

// UserChanges holds the fields of a profile update. Nil fields are left untouched.
// Password, when set, is already hashed.
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists on a duplicate email.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Update applies every non-nil field of changes in a single write, or none of them.
	Update(ctx context.Context, id string, changes UserChanges) error

	// Delete removes the user record. It returns ErrUserNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// SessionRepository abstracts the storage of active-session sets.
type SessionRepository interface {
	// Create appends a session to the user's set.
	Create(ctx context.Context, session *entity.Session) error

	// Exists reports whether the (userID, id) session is active and unexpired.
	Exists(ctx context.Context, userID, id string) (bool, error)

	// Revoke removes exactly one session. It returns ErrSessionNotFound when absent.
	Revoke(ctx context.Context, userID, id string) error

	// RevokeAllByUserID clears the user's whole set.
	RevokeAllByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes expired sessions and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// AvatarRepository abstracts the storage of avatar images.
type AvatarRepository interface {
	// SaveAvatar stores data as the user's avatar. It returns ErrUserNotFound for unknown users.
	SaveAvatar(ctx context.Context, userID string, data []byte) error

	// DeleteAvatar clears the avatar. Clearing a missing avatar is not an error.
	DeleteAvatar(ctx context.Context, userID string) error

	// FindAvatar returns ErrAvatarNotFound when the user or the avatar does not exist.
	FindAvatar(ctx context.Context, userID string) ([]byte, error)
}

// TaskPurger removes the tasks owned by a deleted user.
type TaskPurger interface {
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
