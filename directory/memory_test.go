package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/password"
)

func newSeeded(t *testing.T, opts ...Option) *Memory {
	t.Helper()

	d, err := NewMemory(append([]Option{WithSeed()}, opts...)...)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return d
}

func TestSeedUser(t *testing.T) {
	d := newSeeded(t)
	ctx := context.Background()

	user, ok, err := d.FindByEmail(ctx, SeedUserEmail)
	if err != nil || !ok {
		t.Fatalf("expected seed user by email, ok=%v err=%v", ok, err)
	}
	want := notesauth.User{ID: SeedUserID, Email: SeedUserEmail, Name: SeedUserName}
	if user != want {
		t.Fatalf("expected %+v, got %+v", want, user)
	}

	byID, ok, _ := d.FindByID(ctx, SeedUserID)
	if !ok || byID != want {
		t.Fatalf("expected seed user by id, got %+v ok=%v", byID, ok)
	}

	if d.Len() != 1 {
		t.Fatalf("expected 1 user, got %d", d.Len())
	}
}

func TestUnseededIsEmpty(t *testing.T) {
	d, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	if d.Len() != 0 {
		t.Fatalf("expected empty directory, got %d users", d.Len())
	}
	if _, ok, _ := d.FindByEmail(context.Background(), SeedUserEmail); ok {
		t.Fatal("unexpected seed user")
	}
}

func TestVerifyPassword(t *testing.T) {
	d := newSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
		pass  string
		want  bool
	}{
		{name: "correct", email: SeedUserEmail, pass: SeedUserPassword, want: true},
		{name: "wrong", email: SeedUserEmail, pass: "wrong", want: false},
		{name: "case differs", email: SeedUserEmail, pass: "letmein!", want: false},
		{name: "empty", email: SeedUserEmail, pass: "", want: false},
		{name: "unknown email", email: "nobody@ancorit.com", pass: SeedUserPassword, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.VerifyPassword(ctx, tt.email, tt.pass)
			if err != nil {
				t.Fatalf("VerifyPassword: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCreateConflicts(t *testing.T) {
	d := newSeeded(t)
	ctx := context.Background()

	err := d.Create(ctx, notesauth.User{ID: SeedUserID, Email: "other@ancorit.com", Name: "Other"}, "pw")
	if !errors.Is(err, notesauth.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate id, got %v", err)
	}

	err = d.Create(ctx, notesauth.User{ID: "user-2", Email: SeedUserEmail, Name: "Other"}, "pw")
	if !errors.Is(err, notesauth.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	if d.Len() != 1 {
		t.Fatalf("conflicting creates must not add users, got %d", d.Len())
	}
}

func TestCreateValidation(t *testing.T) {
	d := newSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		user  notesauth.User
		pass  string
		field string
	}{
		{name: "blank id", user: notesauth.User{ID: " ", Email: "a@ancorit.com", Name: "A"}, pass: "pw", field: "id"},
		{name: "blank email", user: notesauth.User{ID: "a", Name: "A"}, pass: "pw", field: "email"},
		{name: "bad email", user: notesauth.User{ID: "a", Email: "not-an-email", Name: "A"}, pass: "pw", field: "email"},
		{name: "blank name", user: notesauth.User{ID: "a", Email: "a@ancorit.com"}, pass: "pw", field: "name"},
		{name: "blank password", user: notesauth.User{ID: "a", Email: "a@ancorit.com", Name: "A"}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Create(ctx, tt.user, tt.pass)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
			if _, ok := verrs[tt.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.field, verrs)
			}
		})
	}
}

func TestArgon2Matcher(t *testing.T) {
	cfg := password.DefaultArgon2Config()
	cfg.Memory = 8 * 1024
	cfg.Time = 1
	matcher, err := password.NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	d := newSeeded(t, WithMatcher(matcher))
	ctx := context.Background()

	if stored := d.credentials[SeedUserEmail]; stored == SeedUserPassword {
		t.Fatal("expected hashed credential")
	}

	ok, err := d.VerifyPassword(ctx, SeedUserEmail, SeedUserPassword)
	if err != nil || !ok {
		t.Fatalf("expected password to verify, ok=%v err=%v", ok, err)
	}
	ok, _ = d.VerifyPassword(ctx, SeedUserEmail, "wrong")
	if ok {
		t.Fatal("expected wrong password to fail")
	}
}

func TestVerifyRehashesStaleCredential(t *testing.T) {
	weak := password.DefaultArgon2Config()
	weak.Memory = 8 * 1024
	weak.Time = 1
	oldMatcher, err := password.NewArgon2(weak)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	d := newSeeded(t, WithMatcher(oldMatcher))
	before := d.credentials[SeedUserEmail]

	stronger := weak
	stronger.Time = 2
	d.matcher, err = password.NewArgon2(stronger)
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	ctx := context.Background()
	if ok, _ := d.VerifyPassword(ctx, SeedUserEmail, "wrong"); ok {
		t.Fatal("expected wrong password to fail")
	}
	if d.credentials[SeedUserEmail] != before {
		t.Fatal("failed verification must not rehash")
	}

	ok, err := d.VerifyPassword(ctx, SeedUserEmail, SeedUserPassword)
	if err != nil || !ok {
		t.Fatalf("expected password to verify, ok=%v err=%v", ok, err)
	}
	after := d.credentials[SeedUserEmail]
	if after == before {
		t.Fatal("expected stale credential to be rehashed")
	}
	if stale, _ := d.matcher.(password.Rehasher).NeedsRehash(after); stale {
		t.Fatal("rehashed credential still stale")
	}

	ok, err = d.VerifyPassword(ctx, SeedUserEmail, SeedUserPassword)
	if err != nil || !ok {
		t.Fatalf("expected rehashed password to verify, ok=%v err=%v", ok, err)
	}
}

func TestConcurrentCreateAndLookup(t *testing.T) {
	d := newSeeded(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = d.Create(ctx, notesauth.User{ID: "dup", Email: "dup@ancorit.com", Name: "Dup"}, "pw")
		}()
		go func() {
			defer wg.Done()
			_, _, _ = d.FindByID(ctx, SeedUserID)
		}()
	}
	wg.Wait()

	if d.Len() != 2 {
		t.Fatalf("expected exactly one concurrent create to win, got %d users", d.Len())
	}
}
