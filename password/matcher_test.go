package password

import (
	"errors"
	"testing"
)

func TestPlaintextMatcher(t *testing.T) {
	var m Matcher = Plaintext{}

	stored, err := m.Hash("LetMeIn!")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if stored != "LetMeIn!" {
		t.Fatalf("expected plaintext to be stored as given, got %q", stored)
	}

	tests := []struct {
		candidate string
		want      bool
	}{
		{"LetMeIn!", true},
		{"letmein!", false},
		{"LetMeIn! ", false},
		{"LetMeIn", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := m.Verify(tt.candidate, stored)
		if err != nil {
			t.Fatalf("Verify(%q) error: %v", tt.candidate, err)
		}
		if got != tt.want {
			t.Fatalf("Verify(%q) = %v, want %v", tt.candidate, got, tt.want)
		}
	}

	if _, err := m.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestNewSelectsMatcher(t *testing.T) {
	m, err := New("", Config{})
	if err != nil {
		t.Fatalf("New(\"\") error: %v", err)
	}
	if _, ok := m.(Plaintext); !ok {
		t.Fatalf("expected Plaintext default, got %T", m)
	}

	m, err = New("argon2id", testCost())
	if err != nil {
		t.Fatalf("New(argon2id) error: %v", err)
	}
	if _, ok := m.(*Argon2); !ok {
		t.Fatalf("expected *Argon2, got %T", m)
	}

	if _, err := New("bcrypt", Config{}); err == nil {
		t.Fatal("expected unknown matcher to be rejected")
	}
	if _, err := New("argon2id", Config{}); err == nil {
		t.Fatal("expected invalid argon2 config to be rejected")
	}
}
