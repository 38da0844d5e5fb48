package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks cross-field constraints and the engine configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Auth.Provider {
	case "token":
	case "mock":
		if !c.Auth.AllowMock {
			errs = append(errs, errors.New("auth.provider mock requires auth.allow_mock: true"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.provider must be \"token\" or \"mock\", got %q", c.Auth.Provider))
	}

	switch c.Auth.PasswordMatcher {
	case "plaintext", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("auth.password_matcher must be \"plaintext\" or \"argon2id\", got %q", c.Auth.PasswordMatcher))
	}

	if c.Refresh.Backend == "redis" && strings.TrimSpace(c.Refresh.RedisAddr) == "" {
		errs = append(errs, errors.New("refresh.redis_addr is required when refresh.backend is redis"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, errors.New("observability.metrics.path must start with /"))
	}
	switch c.Observability.Audit.Sink {
	case "log", "stdout":
	default:
		errs = append(errs, fmt.Errorf("observability.audit.sink must be log or stdout, got %q", c.Observability.Audit.Sink))
	}

	engineCfg := c.EngineConfig()
	if err := engineCfg.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	return errors.Join(errs...)
}
