package password

import (
	"crypto/subtle"
	"errors"
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrPasswordTooLong is returned when a password exceeds 1024 bytes.
	ErrPasswordTooLong = errors.New("password exceeds maximum length")
)

// Matcher turns plaintext passwords into stored secrets and checks
// candidates against them. Implementations must be safe for concurrent use.
type Matcher interface {
	Hash(password string) (string, error)
	Verify(password, stored string) (bool, error)
}

// Rehasher is implemented by matchers whose stored secrets can fall behind
// the current cost settings. Callers rehash after a successful Verify.
type Rehasher interface {
	NeedsRehash(stored string) (bool, error)
}

// Plaintext stores passwords as given and compares them byte for byte in
// constant time.
type Plaintext struct{}

// Hash returns password unchanged.
func (Plaintext) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return password, nil
}

// Verify reports whether password equals stored exactly.
func (Plaintext) Verify(password, stored string) (bool, error) {
	if password == "" || stored == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
}

// New returns the matcher registered under name: "plaintext" (or empty) or
// "argon2id".
func New(name string, cfg Config) (Matcher, error) {
	switch name {
	case "", "plaintext":
		return Plaintext{}, nil
	case algorithmID:
		return NewArgon2(cfg)
	default:
		return nil, errors.New("unsupported password matcher")
	}
}
