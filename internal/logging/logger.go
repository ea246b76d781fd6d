// Package logging defines the structured-logging interface used by the CDN
// server and the slog-backed implementation wired in at startup.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "file stored", "name", name, "size", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)

	// Warn is for unusual but non-fatal conditions, e.g. a rejected login.
	Warn(ctx context.Context, msg string, args ...any)

	// Error is reserved for server-side failures. Caller mistakes such as a
	// bad file name or a missing file are not errors.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
