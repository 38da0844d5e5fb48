package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID  = "argon2id"
	maxPassBytes = 1024
)

// Floors below which NewArgon2 refuses to run and stored hashes are rejected.
var argon2Floor = Config{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   16,
}

// ErrMalformedHash is wrapped by Verify and NeedsRehash when a stored secret
// is not a usable argon2id PHC string.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Config holds Argon2id cost parameters. Memory is in KiB.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns the cost parameters used when a deployment
// opts into hashed credentials without tuning them.
func DefaultArgon2Config() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c Config) check() error {
	switch {
	case c.Memory < argon2Floor.Memory:
		return fmt.Errorf("argon2 memory must be >= %d KiB", argon2Floor.Memory)
	case c.Time < argon2Floor.Time:
		return fmt.Errorf("argon2 time must be >= %d", argon2Floor.Time)
	case c.Parallelism < argon2Floor.Parallelism:
		return fmt.Errorf("argon2 parallelism must be >= %d", argon2Floor.Parallelism)
	case c.SaltLength < argon2Floor.SaltLength:
		return fmt.Errorf("argon2 salt length must be >= %d", argon2Floor.SaltLength)
	case c.KeyLength < argon2Floor.KeyLength:
		return fmt.Errorf("argon2 key length must be >= %d", argon2Floor.KeyLength)
	}
	return nil
}

// Argon2 is a [Matcher] storing PHC-encoded Argon2id hashes.
type Argon2 struct {
	cost Config
}

var (
	_ Matcher  = (*Argon2)(nil)
	_ Rehasher = (*Argon2)(nil)
)

// NewArgon2 validates cfg and returns an Argon2 matcher.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &Argon2{cost: cfg}, nil
}

// Hash derives a fresh salted hash of password. Bytes are hashed as given,
// without Unicode normalization.
func (a *Argon2) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPassBytes {
		return "", ErrPasswordTooLong
	}

	h := phc{
		memory:  a.cost.Memory,
		time:    a.cost.Time,
		threads: a.cost.Parallelism,
		salt:    make([]byte, a.cost.SaltLength),
	}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("argon2 salt: %w", err)
	}
	h.key = h.derive(password, a.cost.KeyLength)
	return h.String(), nil
}

// Verify reports whether password matches stored. A malformed stored value
// is an error; a wrong or oversized password is not.
func (a *Argon2) Verify(password, stored string) (bool, error) {
	if len(password) > maxPassBytes {
		return false, nil
	}
	h, err := parsePHC(stored)
	if err != nil {
		return false, err
	}

	candidate := h.derive(password, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(candidate, h.key) == 1, nil
}

// NeedsRehash reports whether stored was produced with weaker parameters
// than a's configuration, or with a different key length.
func (a *Argon2) NeedsRehash(stored string) (bool, error) {
	h, err := parsePHC(stored)
	if err != nil {
		return false, err
	}
	return h.memory < a.cost.Memory ||
		h.time < a.cost.Time ||
		h.threads < a.cost.Parallelism ||
		uint32(len(h.key)) != a.cost.KeyLength, nil
}

// phc is one decoded $argon2id$v=19$m=..,t=..,p=..$salt$key string.
type phc struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (h phc) derive(password string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, keyLen)
}

func (h phc) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version, h.memory, h.time, h.threads,
		base64.StdEncoding.EncodeToString(h.salt),
		base64.StdEncoding.EncodeToString(h.key))
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedHash, reason)
}

func parsePHC(s string) (phc, error) {
	var h phc

	// "", algorithm, version, params, salt, key
	fields := strings.Split(s, "$")
	if len(fields) != 6 || fields[0] != "" {
		return h, malformed("expected 5 $-separated fields")
	}
	if fields[1] != algorithmID {
		return h, malformed("algorithm " + strconv.Quote(fields[1]))
	}
	if fields[2] != "v="+strconv.Itoa(argon2.Version) {
		return h, malformed("version " + strconv.Quote(fields[2]))
	}
	if err := h.parseParams(fields[3]); err != nil {
		return h, err
	}

	var err error
	if h.salt, err = base64.StdEncoding.DecodeString(fields[4]); err != nil {
		return h, malformed("salt encoding")
	}
	if uint32(len(h.salt)) < argon2Floor.SaltLength {
		return h, malformed("salt too short")
	}
	if h.key, err = base64.StdEncoding.DecodeString(fields[5]); err != nil {
		return h, malformed("key encoding")
	}
	if len(h.key) == 0 {
		return h, malformed("empty key")
	}
	return h, nil
}

// parseParams reads "m=<KiB>,t=<passes>,p=<threads>" in any order. Every key
// must appear exactly once.
func (h *phc) parseParams(s string) error {
	seen := map[string]bool{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || seen[k] {
			return malformed("parameter " + strconv.Quote(pair))
		}
		seen[k] = true

		bits := 32
		if k == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(v, 10, bits)
		if err != nil {
			return malformed("parameter " + strconv.Quote(pair))
		}

		switch k {
		case "m":
			h.memory = uint32(n)
		case "t":
			h.time = uint32(n)
		case "p":
			h.threads = uint8(n)
		default:
			return malformed("unknown parameter " + strconv.Quote(k))
		}
	}

	if len(seen) != 3 {
		return malformed("missing parameters")
	}
	if h.memory < argon2Floor.Memory || h.time < argon2Floor.Time || h.threads < argon2Floor.Parallelism {
		return malformed("parameters below minimum")
	}
	return nil
}
