package usecase

import (
	"context"

	"task_backend/internal/feature/tasks/domain/entity"
)

// SortField is a task attribute the list can be ordered by.
type SortField string

const (
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
)

// ListOptions are the validated list parameters handed to the store.
type ListOptions struct {
	Completed *bool
	Limit     int // 0 means no limit
	Skip      int
	SortBy    SortField
	Desc      bool
}

// TaskChanges holds the fields of a task update. Nil fields are left untouched.
type TaskChanges struct {
	Description *string
	Completed   *bool
}

// IsEmpty reports whether no field is set.
func (c TaskChanges) IsEmpty() bool {
	return c.Description == nil && c.Completed == nil
}

// TaskRepository abstracts the persistence layer for tasks.
// Every lookup and mutation is scoped by owner.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error

	// List returns the owner's tasks filtered, ordered and paged by opts.
	List(ctx context.Context, ownerID string, opts ListOptions) ([]*entity.Task, error)

	// FindByID returns ErrTaskNotFound unless a task has both id and ownerID.
	FindByID(ctx context.Context, id, ownerID string) (*entity.Task, error)

	// Update applies every non-nil field in a single write scoped by id and owner.
	Update(ctx context.Context, id, ownerID string, changes TaskChanges) error

	// Delete removes the task scoped by id and owner.
	Delete(ctx context.Context, id, ownerID string) error

	// DeleteByOwner removes all tasks of the owner and returns how many were removed.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
