package common

// SessionCookieName is the browser cookie carrying the admin session token.
const SessionCookieName = "admin_session"

// AuthorizationHeaderName carries "Bearer <jwt>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the API token in the Authorization header.
const BearerPrefix = "Bearer "

// SessionTokenBytes is the amount of randomness behind a session token.
const SessionTokenBytes = 32
