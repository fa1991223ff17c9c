// Package config holds runtime settings: built-in defaults, overlaid by an
// optional YAML file, then by A2C_* environment variables. Command-line
// flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// DBPath is the progress database file. Empty means the default
	// location under the XDG data directory.
	DBPath string `yaml:"db_path" env:"A2C_DB"`

	Content ContentConfig `yaml:"content" envPrefix:"A2C_CONTENT_"`
	Logging LoggingConfig `yaml:"logging" envPrefix:"A2C_LOG_"`
}

// ContentConfig locates the published catalog.
type ContentConfig struct {
	// Root is a local directory serving the catalog. Ignored when BaseURL
	// is set.
	Root string `yaml:"root" env:"ROOT"`

	// BaseURL serves the catalog over HTTP.
	BaseURL string `yaml:"base_url" env:"URL"`

	// IndexPath is the index document, relative to Root or BaseURL.
	IndexPath string `yaml:"index_path" env:"INDEX_PATH"`

	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Concurrency int           `yaml:"concurrency" env:"CONCURRENCY"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // console, json
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Root:        ".",
			IndexPath:   "catalog/catalog_index.xml",
			Timeout:     30 * time.Second,
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist) and the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Content.BaseURL == "" && c.Content.Root == "" {
		return fmt.Errorf("content: either root or base_url is required")
	}
	if c.Content.IndexPath == "" {
		return fmt.Errorf("content.index_path is required")
	}
	if c.Content.Timeout <= 0 {
		return fmt.Errorf("content.timeout must be positive, got %s", c.Content.Timeout)
	}
	if c.Content.Concurrency < 1 {
		return fmt.Errorf("content.concurrency must be at least 1, got %d", c.Content.Concurrency)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// Remote reports whether the catalog is fetched over HTTP.
func (c *Config) Remote() bool {
	return c.Content.BaseURL != ""
}
