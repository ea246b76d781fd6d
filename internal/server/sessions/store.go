// Package sessions issues and validates admin session tokens.
//
// A token is valid while now - issued_at <= ttl. Expiry is enforced lazily:
// an expired token is removed the first time IsValid looks at it, and there
// is no background sweeper. Absent, expired and malformed tokens are a
// normal "no", never an error.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the session table. Implementations are safe for concurrent use.
type Store interface {
	// Create issues a fresh random token stamped with the current time.
	Create(ctx context.Context) (string, error)

	// IsValid reports whether token is live, evicting it if it has expired.
	IsValid(ctx context.Context, token string) bool

	// Revoke removes token. Unknown tokens are not an error.
	Revoke(ctx context.Context, token string) error

	// Ping checks that the backing storage is reachable.
	Ping(ctx context.Context) error
}

type options struct {
	now func() time.Time
}

type Option func(*options)

// WithClock replaces time.Now, letting tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// tokenKey is what SQL backends persist instead of the bearer token.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
