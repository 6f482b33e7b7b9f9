// Package config loads server configuration from an optional YAML file
// with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration.
type Config struct {
	Addr           string
	PageSize       int
	Labels         []string
	VoteThreshold  int
	SessionTTL     time.Duration
	SessionSecret  string
	TokenTTL       time.Duration
	DatabaseURL    string
	ExportFilename string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:           ":8080",
		PageSize:       10,
		Labels:         []string{"entailment", "contradiction", "neutral", "implicature"},
		VoteThreshold:  2,
		SessionTTL:     12 * time.Hour,
		TokenTTL:       24 * time.Hour,
		ExportFilename: "updated_labeled.json",
	}
}

// fileConfig is the YAML shape; durations are written as Go duration
// strings ("2h", "30m").
type fileConfig struct {
	Addr           string   `yaml:"addr"`
	PageSize       int      `yaml:"page_size"`
	Labels         []string `yaml:"labels"`
	VoteThreshold  int      `yaml:"vote_threshold"`
	SessionTTL     string   `yaml:"session_ttl"`
	SessionSecret  string   `yaml:"session_secret"`
	TokenTTL       string   `yaml:"token_ttl"`
	DatabaseURL    string   `yaml:"database_url"`
	ExportFilename string   `yaml:"export_filename"`
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("parse config file: %w", err)
			}
			if err := cfg.applyFile(fc); err != nil {
				return cfg, err
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(fc fileConfig) error {
	if fc.Addr != "" {
		c.Addr = fc.Addr
	}
	if fc.PageSize > 0 {
		c.PageSize = fc.PageSize
	}
	if len(fc.Labels) > 0 {
		c.Labels = fc.Labels
	}
	if fc.VoteThreshold > 0 {
		c.VoteThreshold = fc.VoteThreshold
	}
	if fc.SessionSecret != "" {
		c.SessionSecret = fc.SessionSecret
	}
	if fc.DatabaseURL != "" {
		c.DatabaseURL = fc.DatabaseURL
	}
	if fc.ExportFilename != "" {
		c.ExportFilename = fc.ExportFilename
	}
	if fc.SessionTTL != "" {
		d, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("parse session_ttl: %w", err)
		}
		c.SessionTTL = d
	}
	if fc.TokenTTL != "" {
		d, err := time.ParseDuration(fc.TokenTTL)
		if err != nil {
			return fmt.Errorf("parse token_ttl: %w", err)
		}
		c.TokenTTL = d
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		c.Addr = addr
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	if v := os.Getenv("VOTE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.VoteThreshold = n
		}
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SessionTTL = d
		}
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("EXPORT_FILENAME"); v != "" {
		c.ExportFilename = v
	}
}
