package entity

import "time"

// Session is one entry of a user's active-session set.
// A bearer token is accepted only while its session exists.
type Session struct {
	ID        string    // JWT ID (jti) of the issued token
	UserID    string    // Owning user
	CreatedAt time.Time // Issue time; sessions are ordered by it
	ExpiresAt time.Time // Token expiry
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
