package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file inside a book directory.
const FileName = "taxledger.yaml"

// Environment overrides, read by ApplyEnv.
const (
	EnvLogLevel   = "TAXLEDGER_LOG_LEVEL"
	EnvAutoCommit = "TAXLEDGER_AUTO_COMMIT"
)

// Config represents the top-level taxledger.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Git      GitConfig      `yaml:"git"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the brokerage.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// LedgerConfig holds defaults for entering and exporting entries.
type LedgerConfig struct {
	DefaultJurisdiction string `yaml:"default_jurisdiction"`
	ExportSort          string `yaml:"export_sort"`      // load, delivery or client
	ExportAscending     bool   `yaml:"export_ascending"` // unset sorts highest first
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig sets the structured log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads a taxledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Ledger: LedgerConfig{
			DefaultJurisdiction: "Ontario",
			ExportSort:          "load",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "taxledger",
			AuthorEmail: "taxledger@localhost",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ApplyEnv overrides settings from the environment. Unset or unparsable
// values leave the file setting in place.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	c.Git.AutoCommit = getenvBool(EnvAutoCommit, c.Git.AutoCommit)
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
