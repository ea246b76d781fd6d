// Package common defines shared constants and sentinel errors used across
// the CDN server and its command-line client. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Registry-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrInvalidName     = errors.New("invalid name")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrStorageFailure  = errors.New("storage failure")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrQuotaExceeded  = errors.New("daily upload limit exceeded")
	ErrTooManyLogins  = errors.New("too many login attempts")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
