package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewHasher and the auth.hasher config key.
const (
	HasherBcrypt = "bcrypt"
	HasherSHA256 = "sha256"
)

// ErrHasherUnknown is returned by NewHasher for an unrecognized name.
var ErrHasherUnknown = errors.New("unknown password hasher")

// Hasher turns passwords into stored hashes and checks candidates against them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// NewHasher returns the hasher registered under name. An empty name selects
// bcrypt.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", HasherBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case HasherSHA256:
		return SHA256Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrHasherUnknown, name)
	}
}

// BcryptHasher salts and stretches passwords with bcrypt. The password is
// first reduced to a base64 SHA-256 digest, which keeps bcrypt's 72-byte
// input limit from truncating or rejecting long passwords. Verify also
// accepts legacy SHA-256 hex digests so older stores keep working.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

func (h BcryptHasher) Verify(hash, password string) bool {
	if isLegacyDigest(hash) {
		return SHA256Hasher{}.Verify(hash, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

// prehash returns the 44-byte base64 SHA-256 digest of password.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// SHA256Hasher stores the lowercase hex SHA-256 digest of the password. It is
// deterministic and unsalted; use it only for compatibility with legacy data.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(hash, password string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(want)) == 1
}

// isLegacyDigest reports whether hash looks like a SHA-256 hex digest.
func isLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
