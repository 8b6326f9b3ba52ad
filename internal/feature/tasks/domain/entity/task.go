// Package entity defines the domain entities for the tasks feature.
package entity

import "time"

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          string
	Description string
	Completed   bool
	// Owner is the ID of the user who created the task. It never changes.
	Owner     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
