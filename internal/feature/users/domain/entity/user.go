// Package entity defines the domain entities for the users feature.
package entity

import "time"

// User represents a registered account.
type User struct {
	// ID is an opaque unique identifier (UUID string).
	ID string

	Name string

	// Email is unique across all users and stored normalized (trimmed, lower-case).
	Email string

	// Password is the bcrypt hash. It never holds plaintext and is never serialized.
	Password string

	// Age is non-negative.
	Age int

	CreatedAt time.Time
	UpdatedAt time.Time
}
