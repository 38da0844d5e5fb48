package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/password"
)

// Seed user created by [WithSeed].
const (
	SeedUserID       = "user-1"
	SeedUserEmail    = "john.doe@ancorit.com"
	SeedUserName     = "Test User"
	SeedUserPassword = "LetMeIn!"
)

// Option configures a [Memory] directory.
type Option func(*Memory)

// WithMatcher sets how credentials are stored and compared. The default is
// [password.Plaintext].
func WithMatcher(m password.Matcher) Option {
	return func(d *Memory) {
		if m != nil {
			d.matcher = m
		}
	}
}

// WithSeed adds the development user john.doe@ancorit.com.
func WithSeed() Option {
	return func(d *Memory) {
		d.seed = true
	}
}

// Memory is an in-process [notesauth.Directory]. Users live only as long as
// the value; nothing is persisted.
type Memory struct {
	mu          sync.RWMutex
	byID        map[string]notesauth.User
	idByEmail   map[string]string
	credentials map[string]string

	matcher password.Matcher
	seed    bool
}

var _ notesauth.Directory = (*Memory)(nil)

// NewMemory returns an empty directory, or a seeded one with [WithSeed].
func NewMemory(opts ...Option) (*Memory, error) {
	d := &Memory{
		byID:        make(map[string]notesauth.User),
		idByEmail:   make(map[string]string),
		credentials: make(map[string]string),
		matcher:     password.Plaintext{},
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.seed {
		user := notesauth.User{ID: SeedUserID, Email: SeedUserEmail, Name: SeedUserName}
		if err := d.Create(context.Background(), user, SeedUserPassword); err != nil {
			return nil, fmt.Errorf("seed directory: %w", err)
		}
	}

	return d, nil
}

// FindByEmail returns the user registered under email. Emails match exactly.
func (d *Memory) FindByEmail(_ context.Context, email string) (notesauth.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.idByEmail[email]
	if !ok {
		return notesauth.User{}, false, nil
	}
	user, ok := d.byID[id]
	return user, ok, nil
}

func (d *Memory) FindByID(_ context.Context, id string) (notesauth.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.byID[id]
	return user, ok, nil
}

// Create registers user with the given password. It fails with a
// [validation.Errors] value when a field is blank or the email is malformed,
// and with an error wrapping [notesauth.ErrConflict] when the id or email is
// already taken.
func (d *Memory) Create(_ context.Context, user notesauth.User, pass string) error {
	if err := validateUser(user, pass); err != nil {
		return err
	}

	stored, err := d.matcher.Hash(pass)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byID[user.ID]; exists {
		return fmt.Errorf("%w: id %q", notesauth.ErrConflict, user.ID)
	}
	if _, exists := d.idByEmail[user.Email]; exists {
		return fmt.Errorf("%w: email %q", notesauth.ErrConflict, user.Email)
	}

	d.byID[user.ID] = user
	d.idByEmail[user.Email] = user.ID
	d.credentials[user.Email] = stored
	return nil
}

// VerifyPassword reports whether pass matches the credential stored for
// email. Unknown emails report false.
func (d *Memory) VerifyPassword(_ context.Context, email, pass string) (bool, error) {
	d.mu.RLock()
	stored, ok := d.credentials[email]
	d.mu.RUnlock()

	if !ok {
		return false, nil
	}
	match, err := d.matcher.Verify(pass, stored)
	if err != nil || !match {
		return match, err
	}
	d.rehash(email, pass, stored)
	return true, nil
}

// rehash replaces a credential stored under weaker matcher settings. Failure
// leaves the old credential in place.
func (d *Memory) rehash(email, pass, stored string) {
	r, ok := d.matcher.(password.Rehasher)
	if !ok {
		return
	}
	if stale, err := r.NeedsRehash(stored); err != nil || !stale {
		return
	}
	fresh, err := d.matcher.Hash(pass)
	if err != nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.credentials[email] == stored {
		d.credentials[email] = fresh
	}
}

// Len returns the number of registered users.
func (d *Memory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

func validateUser(user notesauth.User, pass string) error {
	return validation.Errors{
		"id":       validation.Validate(strings.TrimSpace(user.ID), validation.Required),
		"email":    validation.Validate(strings.TrimSpace(user.Email), validation.Required, is.Email),
		"name":     validation.Validate(strings.TrimSpace(user.Name), validation.Required),
		"password": validation.Validate(pass, validation.Required),
	}.Filter()
}
