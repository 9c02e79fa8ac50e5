// Package config loads ctxgen configuration from an optional .ctxgen.yaml
// file at the project root. Missing files yield defaults; command-line flags
// override anything loaded here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = ".ctxgen.yaml"

// Report formats accepted by Config.Format.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatHTML     = "html"
)

// Config represents ctxgen configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// CacheDir is the cache directory, relative to the project root
	CacheDir string `yaml:"cache_dir"`

	// Output is the generated context file, relative to the project root
	Output string `yaml:"output"`

	// Format selects the report format: md, json, or html
	Format string `yaml:"format"`

	// TokenBudget is the soft cap that triggers the oversize warning
	TokenBudget int `yaml:"token_budget"`

	// Clip copies the generated report to the clipboard after a build
	Clip bool `yaml:"clip"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "info",
		CacheDir:    ".context-cache",
		Output:      "PROJECT_CONTEXT.md",
		Format:      FormatMarkdown,
		TokenBudget: 8000,
		Clip:        false,
	}
}

// Load reads .ctxgen.yaml from root, merged over defaults.
// A missing file is not an error; a malformed file is.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks configuration values for consistency
func (c *Config) Validate() error {
	switch c.Format {
	case FormatMarkdown, FormatJSON, FormatHTML:
	default:
		return fmt.Errorf("format must be md, json, or html, got %q", c.Format)
	}

	if c.TokenBudget < 0 {
		return fmt.Errorf("token_budget must be non-negative, got %d", c.TokenBudget)
	}

	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}

	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}

	return nil
}
