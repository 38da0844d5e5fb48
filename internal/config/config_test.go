package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("default server.port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Auth.AccessTTL != time.Hour {
		t.Errorf("default auth.access_ttl = %v, want 1h", cfg.Auth.AccessTTL)
	}
	if cfg.Auth.RefreshTTL != 7*24*time.Hour {
		t.Errorf("default auth.refresh_ttl = %v, want 168h", cfg.Auth.RefreshTTL)
	}
	if cfg.Auth.SigningMethod != "hs256" {
		t.Errorf("default auth.signing_method = %q, want hs256", cfg.Auth.SigningMethod)
	}
	if cfg.Auth.Provider != "token" {
		t.Errorf("default auth.provider = %q, want token", cfg.Auth.Provider)
	}
	if cfg.Refresh.Backend != "memory" {
		t.Errorf("default refresh.backend = %q, want memory", cfg.Refresh.Backend)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:5101" {
		t.Errorf("default cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestDefaultsRequireSecret(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without a signing secret")
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Setenv("NOTES_CONFIG", "")
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
  read_timeout: 5s
  cors_origins:
    - https://notes.example.com
auth:
  secret: yaml-secret
  signing_method: hs512
  access_ttl: 30m
  refresh_ttl: 48h
  issuer: notes
refresh:
  backend: redis
  redis_addr: redis:6379
  redis_prefix: tokens
logging:
  level: debug
  format: text
observability:
  metrics:
    latency: true
  audit:
    enabled: true
    sink: stdout
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("unset field must keep default, got %v", cfg.Server.WriteTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://notes.example.com" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Auth.Secret != "yaml-secret" || cfg.Auth.SigningMethod != "hs512" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Auth.AccessTTL != 30*time.Minute || cfg.Auth.RefreshTTL != 48*time.Hour {
		t.Errorf("ttls = %v / %v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if cfg.Refresh.Backend != "redis" || cfg.Refresh.RedisPrefix != "tokens" {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}

	engine := cfg.EngineConfig()
	if engine.JWT.Issuer != "notes" || string(engine.JWT.Secret) != "yaml-secret" {
		t.Errorf("engine jwt = %+v", engine.JWT)
	}
	if !engine.Audit.Enabled || !engine.Metrics.EnableLatencyHistograms {
		t.Errorf("engine observability = %+v %+v", engine.Audit, engine.Metrics)
	}
	if engine.Refresh.Backend != "redis" || engine.Refresh.RedisPrefix != "tokens" {
		t.Errorf("engine refresh = %+v", engine.Refresh)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NOTES_CONFIG", "")
	t.Setenv("NOTES_SECRET_KEY", "env-secret")
	t.Setenv("NOTES_ALGORITHM", "HS384")
	t.Setenv("NOTES_ACCESS_TOKEN_EXPIRY_HOURS", "2")
	t.Setenv("NOTES_REFRESH_TOKEN_EXPIRY_DAYS", "3")
	t.Setenv("NOTES_PORT", "8081")
	t.Setenv("NOTES_CORS_ORIGINS", "http://a.test, http://b.test")

	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "auth:\n  secret: from-yaml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("env must override yaml, got %q", cfg.Auth.Secret)
	}
	if cfg.Auth.SigningMethod != "hs384" {
		t.Errorf("signing method = %q", cfg.Auth.SigningMethod)
	}
	if cfg.Auth.AccessTTL != 2*time.Hour || cfg.Auth.RefreshTTL != 72*time.Hour {
		t.Errorf("ttls = %v / %v", cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvOverrideRejectsBadNumber(t *testing.T) {
	t.Setenv("NOTES_CONFIG", "")
	t.Setenv("NOTES_SECRET_KEY", "s")
	t.Setenv("NOTES_ACCESS_TOKEN_EXPIRY_HOURS", "soon")

	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "{}\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-numeric hours")
	}
}

func TestSecretFileReference(t *testing.T) {
	t.Setenv("NOTES_CONFIG", "")
	t.Setenv("NOTES_SECRET_KEY", "")
	dir := t.TempDir()
	secretPath := writeFile(t, dir, "secret", "  from-file\n")
	path := writeFile(t, dir, "config.yaml", "auth:\n  secret_file: "+secretPath+"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Secret != "from-file" {
		t.Errorf("secret = %q, want from-file", cfg.Auth.Secret)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "mock without allow", mutate: func(c *Config) { c.Auth.Provider = "mock" }, want: "allow_mock"},
		{name: "unknown provider", mutate: func(c *Config) { c.Auth.Provider = "oauth" }, want: "auth.provider"},
		{name: "bad matcher", mutate: func(c *Config) { c.Auth.PasswordMatcher = "md5" }, want: "password_matcher"},
		{name: "redis without addr", mutate: func(c *Config) { c.Refresh.Backend = "redis"; c.Refresh.RedisAddr = "" }, want: "redis_addr"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: "logging.level"},
		{name: "bad metrics path", mutate: func(c *Config) { c.Observability.Metrics.Path = "metrics" }, want: "metrics.path"},
		{name: "engine ttl", mutate: func(c *Config) { c.Auth.AccessTTL = 0 }, want: "AccessTTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.Secret = "s"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	cfg := Defaults()
	cfg.Auth.Secret = "s"
	cfg.Auth.Provider = "mock"
	cfg.Auth.AllowMock = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock with allow_mock should validate: %v", err)
	}
}
