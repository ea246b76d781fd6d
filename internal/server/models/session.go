// Package models holds the plain data types shared by the server layers.
package models

import "time"

// Session is an issued admin session. It is valid while
// now - IssuedAt <= ttl.
type Session struct {
	Token    string
	IssuedAt time.Time
}

// Expired reports whether the session is past ttl at now.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.IssuedAt) > ttl
}
