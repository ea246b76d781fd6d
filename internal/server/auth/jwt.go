// Package auth signs and verifies the bearer tokens handed to API clients.
package auth

import (
	"errors"
	"time"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the admin session a bearer token stands for.
type Claims struct {
	jwt.RegisteredClaims
	Session string `json:"sid"`
}

// GenerateToken wraps sessionToken into an HS256 JWT that expires after
// validity.
func GenerateToken(sessionToken string, secretKey []byte, validity time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Session: sessionToken,
	})

	s, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// GetSessionFromToken verifies tokenString and returns the wrapped session
// token. Expired tokens yield common.ErrTokenExpired, everything else that
// fails verification common.ErrInvalidToken.
func GetSessionFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return "", common.ErrTokenExpired
	}
	if err != nil || !token.Valid || claims.Session == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Session, nil
}
