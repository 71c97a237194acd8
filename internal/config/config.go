// Package config loads application configuration from a file, environment
// variables and flags, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	// APIKey is the Gemini API key. APIKeyFile points at a file holding the
	// key instead; the file wins only when APIKey itself is unset.
	APIKey     string `mapstructure:"api_key"`
	APIKeyFile string `mapstructure:"api_key_file"`

	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`

	// Concurrency bounds parallel resume extractions in a scoring batch.
	Concurrency int `mapstructure:"concurrency"`

	ListenAddr string `mapstructure:"listen_addr"`

	Gmail GmailConfig `mapstructure:"gmail"`
}

// GmailConfig configures the optional Gmail attachment source.
type GmailConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
	TokenPath       string `mapstructure:"token_path"`
}

// SetDefaults registers the configuration defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("model", "gemini-2.5-flash")
	v.SetDefault("max_retries", 3)
	v.SetDefault("timeout", "90s")
	v.SetDefault("concurrency", 4)
	v.SetDefault("listen_addr", ":8080")
}

// Load reads the configuration out of v, resolves the API key and validates
// the result. Environment variables use the PARSEHIRE_ prefix; the bare
// GEMINI_API_KEY is accepted as well so the key can be shared with other
// tools.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("PARSEHIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "PARSEHIRE_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.resolveAPIKey(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveAPIKey reads the key file when no literal key is set.
func (c *Config) resolveAPIKey() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey != "" || c.APIKeyFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return fmt.Errorf("read api key file: %w", err)
	}
	c.APIKey = strings.TrimSpace(string(data))
	return nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api key is required: set api_key, api_key_file or GEMINI_API_KEY")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Gmail.CredentialsPath != "" {
		if _, err := os.Stat(c.Gmail.CredentialsPath); err != nil {
			return fmt.Errorf("gmail credentials file not found: %w", err)
		}
	}
	return nil
}
