// Package services contains the CDN's boundary operations. AuthService
// guards the admin area; FileService runs uploads, listings, reads and
// deletions against the file registry.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/KaityXD/choas-lib/internal/logging"
	"github.com/KaityXD/choas-lib/internal/server/auth"
	"github.com/KaityXD/choas-lib/internal/server/sessions"
	"golang.org/x/sync/semaphore"
)

// APIToken is a bearer token for non-browser clients.
type APIToken struct {
	Token     string
	ExpiresAt time.Time
}

// MaxConcurrentLogins bounds password checks in flight. Each check runs
// argon2id with a 64 MiB working set; attempts beyond the bound are refused
// with ErrTooManyLogins instead of queueing.
const MaxConcurrentLogins = 2

// PasswordVerifier checks a candidate admin password.
// *cryptox.Secret is the production implementation.
type PasswordVerifier interface {
	Enabled() bool
	Verify(candidate []byte) bool
}

// AuthService verifies the admin password and manages sessions.
type AuthService struct {
	store     sessions.Store
	secret    PasswordVerifier
	logins    *semaphore.Weighted
	jwtSecret []byte
	ttl       time.Duration
	log       logging.Logger
}

// NewAuthService builds an AuthService. A nil or disabled secret makes every
// login fail.
func NewAuthService(store sessions.Store, secret PasswordVerifier, jwtSecret []byte, ttl time.Duration, l logging.Logger) *AuthService {
	return &AuthService{
		store:     store,
		secret:    secret,
		logins:    semaphore.NewWeighted(MaxConcurrentLogins),
		jwtSecret: jwtSecret,
		ttl:       ttl,
		log:       l.With("module", "auth"),
	}
}

// Login checks password and, on success, opens a new session.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if !s.logins.TryAcquire(1) {
		s.log.Warn(ctx, "login shed", "limit", MaxConcurrentLogins)
		return "", common.ErrTooManyLogins
	}
	ok := s.secret != nil && s.secret.Verify([]byte(password))
	s.logins.Release(1)

	if !ok {
		s.log.Warn(ctx, "login rejected", "enabled", s.secret != nil && s.secret.Enabled())
		return "", common.ErrorUnauthorized
	}

	token, err := s.store.Create(ctx)
	if err != nil {
		s.log.Error(ctx, "error creating session", "error", err)
		return "", fmt.Errorf("error creating session: %w", err)
	}

	s.log.Info(ctx, "admin logged in")
	return token, nil
}

// Authenticate reports whether token names a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	return s.store.IsValid(ctx, token)
}

// Logout revokes token. Unknown tokens are fine.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.Revoke(ctx, token); err != nil {
		s.log.Error(ctx, "error revoking session", "error", err)
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// IssueAPIToken wraps sessionToken into a signed bearer token that expires
// together with the session.
func (s *AuthService) IssueAPIToken(sessionToken string) (*APIToken, error) {
	tok, exp, err := auth.GenerateToken(sessionToken, s.jwtSecret, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}
	return &APIToken{Token: tok, ExpiresAt: exp}, nil
}

// SessionFromAPIToken returns the session behind a bearer token. The token
// is refused once its session is revoked or expired, even if the signature
// is still good.
func (s *AuthService) SessionFromAPIToken(ctx context.Context, bearer string) (string, error) {
	session, err := auth.GetSessionFromToken(bearer, s.jwtSecret)
	if err != nil {
		if !errors.Is(err, common.ErrTokenExpired) {
			s.log.Debug(ctx, "bearer token rejected", "error", err)
		}
		return "", common.ErrorUnauthorized
	}
	if !s.store.IsValid(ctx, session) {
		return "", common.ErrorUnauthorized
	}
	return session, nil
}
