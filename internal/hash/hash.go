// Package hash derives and checks salted scrypt hashes of passwords and
// refresh tokens. Hashes are stored as "<hex-salt>.<hex-digest>".
package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const separator = "."

var ErrEmptySecret = errors.New("secret cannot be empty")

type Params struct {
	N       int
	R       int
	P       int
	KeyLen  int
	SaltLen int
}

var DefaultParams = Params{N: 16384, R: 8, P: 1, KeyLen: 64, SaltLen: 9}

type Scrypt struct {
	params Params
}

func NewScrypt(p Params) (*Scrypt, error) {
	if p.SaltLen < 8 {
		return nil, fmt.Errorf("salt length %d is below 8 bytes", p.SaltLen)
	}
	if p.KeyLen < 16 {
		return nil, fmt.Errorf("key length %d is below 16 bytes", p.KeyLen)
	}
	// scrypt validates N/r/p itself; run it once so bad params fail here.
	if _, err := scrypt.Key([]byte("probe"), make([]byte, p.SaltLen), p.N, p.R, p.P, p.KeyLen); err != nil {
		return nil, fmt.Errorf("scrypt params: %w", err)
	}
	return &Scrypt{params: p}, nil
}

func (s *Scrypt) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, s.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest, err := scrypt.Key([]byte(secret), salt, s.params.N, s.params.R, s.params.P, s.params.KeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return hex.EncodeToString(salt) + separator + hex.EncodeToString(digest), nil
}

// Verify reports whether secret matches stored. Malformed input and
// derivation errors report false.
func (s *Scrypt) Verify(secret, stored string) bool {
	if secret == "" {
		return false
	}

	saltHex, digestHex, ok := strings.Cut(stored, separator)
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := hex.DecodeString(digestHex)
	if err != nil || len(expected) == 0 {
		return false
	}

	computed, err := scrypt.Key([]byte(secret), salt, s.params.N, s.params.R, s.params.P, len(expected))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(computed, expected) == 1
}
