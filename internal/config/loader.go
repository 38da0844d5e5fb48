package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the configuration from defaults, an optional YAML file, NOTES_*
// environment variables, and _file secret references, then validates it.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv("NOTES_CONFIG"); envPath != "" {
		return envPath
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// loadYAMLFile parses path into cfg. Fields absent from the file keep their
// current values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps NOTES_* variables onto cfg. Token lifetimes are
// accepted in hours and days.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NOTES_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTES_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("NOTES_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("NOTES_AUTH_PROVIDER"); v != "" {
		cfg.Auth.Provider = v
	}
	if v := os.Getenv("NOTES_SECRET_KEY"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("NOTES_ALGORITHM"); v != "" {
		cfg.Auth.SigningMethod = strings.ToLower(v)
	}
	if v := os.Getenv("NOTES_ACCESS_TOKEN_EXPIRY_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTES_ACCESS_TOKEN_EXPIRY_HOURS: %w", err)
		}
		cfg.Auth.AccessTTL = time.Duration(hours) * time.Hour
	}
	if v := os.Getenv("NOTES_REFRESH_TOKEN_EXPIRY_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTES_REFRESH_TOKEN_EXPIRY_DAYS: %w", err)
		}
		cfg.Auth.RefreshTTL = time.Duration(days) * 24 * time.Hour
	}

	if v := os.Getenv("NOTES_REFRESH_BACKEND"); v != "" {
		cfg.Refresh.Backend = v
	}
	if v := os.Getenv("NOTES_REDIS_ADDR"); v != "" {
		cfg.Refresh.RedisAddr = v
	}
	if v := os.Getenv("NOTES_REDIS_PASSWORD"); v != "" {
		cfg.Refresh.RedisPassword = v
	}

	if v := os.Getenv("NOTES_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NOTES_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.SecretFile != "" && cfg.Auth.Secret == "" {
		val, err := readSecretFile(cfg.Auth.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.secret_file: %w", err)
		}
		cfg.Auth.Secret = val
	}

	if cfg.Auth.PrivateKeyFile != "" {
		data, err := os.ReadFile(cfg.Auth.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("auth.private_key_file: %w", err)
		}
		cfg.Auth.privateKey = data
	}
	if cfg.Auth.PublicKeyFile != "" {
		data, err := os.ReadFile(cfg.Auth.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("auth.public_key_file: %w", err)
		}
		cfg.Auth.publicKey = data
	}

	if cfg.Refresh.RedisPasswordFile != "" && cfg.Refresh.RedisPassword == "" {
		val, err := readSecretFile(cfg.Refresh.RedisPasswordFile)
		if err != nil {
			return fmt.Errorf("refresh.redis_password_file: %w", err)
		}
		cfg.Refresh.RedisPassword = val
	}

	return nil
}

// readSecretFile returns the file content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
