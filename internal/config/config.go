package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tonghaoch/transaction-service-go/internal/state"
)

// DefaultMaxBodyBytes caps request bodies at 1 MiB.
const DefaultMaxBodyBytes int64 = 1 << 20

// Config represents the application configuration stored in config.json.
type Config struct {
	Auth            AuthConfig `json:"auth"`
	CORS            CORSConfig `json:"cors"`
	MaxBodyBytes    int64      `json:"maxBodyBytes" validate:"gte=1"`
	MaxTransactions int        `json:"maxTransactions" validate:"gte=0"`
}

type AuthConfig struct {
	APIKeys []string `json:"apiKeys"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowedOrigins" validate:"min=1,dive,required"`
}

var (
	current *Config
	mu      sync.RWMutex

	validate = validator.New()
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Auth:            AuthConfig{APIKeys: []string{}},
		CORS:            CORSConfig{AllowedOrigins: []string{"*"}},
		MaxBodyBytes:    DefaultMaxBodyBytes,
		MaxTransactions: 0,
	}
}

// Validate checks the struct constraints of cfg.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads the config from disk, creating it with defaults if it doesn't exist.
func Load() error {
	configPath := state.ConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := save(cfg); err != nil {
				return err
			}
			Set(cfg)
			slog.Info("created default config", "path", configPath)
			return nil
		}
		return err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		slog.Warn("failed to parse config, using defaults", "path", configPath, "error", err)
		cfg = Default()
	}

	// Apply defaults for missing fields
	if cfg.Auth.APIKeys == nil {
		cfg.Auth.APIKeys = []string{}
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("config failed validation, using defaults", "path", configPath, "error", err)
		cfg = Default()
	}

	Set(cfg)
	return nil
}

func save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(state.ConfigPath(), data, 0600)
}

// Get returns the current config. Thread-safe.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return Default()
	}
	return current
}

// Set replaces the current config. The caller must not mutate cfg afterwards.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
}

// AddAPIKeys appends keys to the current config without touching the file.
func AddAPIKeys(keys ...string) {
	if len(keys) == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	base := current
	if base == nil {
		base = Default()
	}
	next := *base
	next.Auth.APIKeys = append(append([]string{}, base.Auth.APIKeys...), keys...)
	current = &next
}

// GetAPIKeys returns the configured API keys (normalized).
func GetAPIKeys() []string {
	return normalizeAPIKeys(Get().Auth.APIKeys)
}

// normalizeAPIKeys trims, deduplicates, and filters empty API keys.
func normalizeAPIKeys(keys []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, k)
	}
	return result
}
