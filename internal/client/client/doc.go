// Package client is the HTTP client the CDN command-line tool uses to reach
// the server's JSON API.
//
// HTTPClient implements Client over /api/login, /api/logout, /upload,
// /api/files and /health. Login stores a bearer token in memory and every
// later request carries it. Non-2xx responses are mapped onto the sentinels
// in package common (ErrorUnauthorized, ErrorNotFound, ErrInvalidName,
// ErrPayloadTooLarge, ErrQuotaExceeded, ErrorInternal), so callers match them
// with errors.Is. Transport failures wrap ErrUnavailable.
//
// HTTPClient is safe for concurrent use.
package client
