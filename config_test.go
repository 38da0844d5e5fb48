package notesauth

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret")
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with secret",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "missing secret",
			mutate: func(c *Config) {
				c.JWT.Secret = nil
			},
			wantValid: false,
		},
		{
			name: "access ttl zero",
			mutate: func(c *Config) {
				c.JWT.AccessTTL = 0
			},
			wantValid: false,
		},
		{
			name: "refresh shorter than access",
			mutate: func(c *Config) {
				c.JWT.RefreshTTL = time.Minute
			},
			wantValid: false,
		},
		{
			name: "jwt leeway valid",
			mutate: func(c *Config) {
				c.JWT.Leeway = 45 * time.Second
			},
			wantValid: true,
		},
		{
			name: "jwt leeway invalid",
			mutate: func(c *Config) {
				c.JWT.Leeway = 3 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "hs512 valid",
			mutate: func(c *Config) {
				c.JWT.SigningMethod = "HS512"
			},
			wantValid: true,
		},
		{
			name: "jwt signing invalid",
			mutate: func(c *Config) {
				c.JWT.SigningMethod = "rs256"
			},
			wantValid: false,
		},
		{
			name: "ed25519 without keys",
			mutate: func(c *Config) {
				c.JWT.SigningMethod = "ed25519"
			},
			wantValid: false,
		},
		{
			name: "redis backend valid",
			mutate: func(c *Config) {
				c.Refresh.Backend = "redis"
			},
			wantValid: true,
		},
		{
			name: "redis backend blank prefix",
			mutate: func(c *Config) {
				c.Refresh.Backend = "redis"
				c.Refresh.RedisPrefix = " "
			},
			wantValid: false,
		},
		{
			name: "unknown backend",
			mutate: func(c *Config) {
				c.Refresh.Backend = "postgres"
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildConfigImmutabilityAgainstExternalMutation(t *testing.T) {
	cfg := validTestConfig()
	secret := cfg.JWT.Secret

	engine, err := New().WithConfig(cfg).WithDirectory(newStubDirectory()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	pair, err := engine.issuePair(User{ID: "user-1", Email: "a@b.c", Name: "A"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	secret[0] ^= 0xFF
	if _, ok := engine.tokens.Verify(pair.AccessToken); !ok {
		t.Fatal("expected engine to keep its own copy of the signing secret")
	}
}
