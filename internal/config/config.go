// Package config loads the notes service configuration.
//
// Configuration is layered:
//  1. Built-in defaults
//  2. YAML config file (explicit path, NOTES_CONFIG env, ./config.yaml)
//  3. Environment variable overrides (NOTES_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/ancorit/notesauth"
)

// Config holds all configuration for the notes service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Refresh       RefreshConfig       `yaml:"refresh"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8000
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 10s
	CORSOrigins     []string      `yaml:"cors_origins"`     // default: http://localhost:5101
}

// AuthConfig holds token and credential settings.
type AuthConfig struct {
	Provider        string        `yaml:"provider"`         // "token" or "mock", default: "token"
	AllowMock       bool          `yaml:"allow_mock"`       // must be true for provider=mock
	SigningMethod   string        `yaml:"signing_method"`   // default: "hs256"
	Secret          string        `yaml:"secret"`           // required for HMAC
	SecretFile      string        `yaml:"secret_file"`      // _file variant for secret
	PrivateKeyFile  string        `yaml:"private_key_file"` // ed25519 PEM
	PublicKeyFile   string        `yaml:"public_key_file"`  // ed25519 PEM
	AccessTTL       time.Duration `yaml:"access_ttl"`       // default: 1h
	RefreshTTL      time.Duration `yaml:"refresh_ttl"`      // default: 168h
	Issuer          string        `yaml:"issuer"`
	Audience        string        `yaml:"audience"`
	Leeway          time.Duration `yaml:"leeway"`
	PasswordMatcher string        `yaml:"password_matcher"` // "plaintext" or "argon2id", default: "plaintext"
	SeedUser        bool          `yaml:"seed_user"`        // default: true

	privateKey []byte
	publicKey  []byte
}

// RefreshConfig selects the refresh token store.
type RefreshConfig struct {
	Backend           string `yaml:"backend"` // "memory" or "redis", default: "memory"
	RedisAddr         string `yaml:"redis_addr"`
	RedisPassword     string `yaml:"redis_password"`
	RedisPasswordFile string `yaml:"redis_password_file"`
	RedisDB           int    `yaml:"redis_db"`
	RedisPrefix       string `yaml:"redis_prefix"` // default: "nrt"
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error; default: info
	Format string `yaml:"format"` // json or text; default: json
}

// ObservabilityConfig holds metrics and audit settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Audit   AuditConfig   `yaml:"audit"`
}

// MetricsConfig holds Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
	Latency bool   `yaml:"latency"` // resolve latency histogram
}

// AuditConfig controls audit event delivery.
type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Sink       string `yaml:"sink"` // "log" or "stdout", default: "log"
	BufferSize int    `yaml:"buffer_size"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:5101"},
		},
		Auth: AuthConfig{
			Provider:        "token",
			SigningMethod:   "hs256",
			AccessTTL:       time.Hour,
			RefreshTTL:      7 * 24 * time.Hour,
			PasswordMatcher: "plaintext",
			SeedUser:        true,
		},
		Refresh: RefreshConfig{
			Backend:     "memory",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "nrt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Audit: AuditConfig{
				Sink:       "log",
				BufferSize: 1024,
			},
		},
	}
}

// EngineConfig maps the service configuration onto the auth engine's.
func (c *Config) EngineConfig() notesauth.Config {
	cfg := notesauth.DefaultConfig()
	cfg.JWT.AccessTTL = c.Auth.AccessTTL
	cfg.JWT.RefreshTTL = c.Auth.RefreshTTL
	cfg.JWT.SigningMethod = c.Auth.SigningMethod
	cfg.JWT.Secret = []byte(c.Auth.Secret)
	cfg.JWT.PrivateKey = c.Auth.privateKey
	cfg.JWT.PublicKey = c.Auth.publicKey
	cfg.JWT.Issuer = c.Auth.Issuer
	cfg.JWT.Audience = c.Auth.Audience
	cfg.JWT.Leeway = c.Auth.Leeway

	cfg.Refresh.Backend = c.Refresh.Backend
	cfg.Refresh.RedisPrefix = c.Refresh.RedisPrefix

	cfg.Audit.Enabled = c.Observability.Audit.Enabled
	if c.Observability.Audit.BufferSize > 0 {
		cfg.Audit.BufferSize = c.Observability.Audit.BufferSize
	}

	cfg.Metrics.Enabled = c.Observability.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = c.Observability.Metrics.Latency
	return cfg
}
