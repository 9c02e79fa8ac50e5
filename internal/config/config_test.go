package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ".context-cache", cfg.CacheDir)
	assert.Equal(t, "PROJECT_CONTEXT.md", cfg.Output)
	assert.Equal(t, "md", cfg.Format)
	assert.Equal(t, 8000, cfg.TokenBudget)
	assert.False(t, cfg.Clip)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := `log_level: debug
cache_dir: .cache
token_budget: 12000
clip: true
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ".cache", cfg.CacheDir)
	assert.Equal(t, 12000, cfg.TokenBudget)
	assert.True(t, cfg.Clip)
	// Untouched fields keep their defaults.
	assert.Equal(t, "PROJECT_CONTEXT.md", cfg.Output)
	assert.Equal(t, "md", cfg.Format)
}

func TestLoadMalformedYAML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("format: [unclosed"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown format", func(c *Config) { c.Format = "pdf" }},
		{"negative budget", func(c *Config) { c.TokenBudget = -1 }},
		{"empty cache dir", func(c *Config) { c.CacheDir = "" }},
		{"empty output", func(c *Config) { c.Output = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("format: pdf\n"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}
