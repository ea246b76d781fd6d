// Package cryptox verifies the admin password without keeping it in memory:
// only an argon2id digest and its random salt are retained.
package cryptox

import (
	"crypto/subtle"

	"github.com/KaityXD/choas-lib/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// DeriveKey stretches password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// Secret is a verifier for a single configured password.
// The zero value, or one built from an empty password, rejects everything.
type Secret struct {
	salt []byte
	key  []byte
}

// NewSecret derives a verifier from password using a fresh salt.
func NewSecret(password []byte) *Secret {
	if len(password) == 0 {
		return &Secret{}
	}
	salt := common.GenerateRandByteArray(saltSize)
	return &Secret{salt: salt, key: DeriveKey(password, salt)}
}

// Enabled reports whether a password was configured.
func (s *Secret) Enabled() bool {
	return s != nil && len(s.key) > 0
}

// Verify compares candidate in constant time.
func (s *Secret) Verify(candidate []byte) bool {
	if !s.Enabled() {
		return false
	}
	derived := DeriveKey(candidate, s.salt)
	defer common.WipeByteArray(derived)
	return subtle.ConstantTimeCompare(derived, s.key) == 1
}
