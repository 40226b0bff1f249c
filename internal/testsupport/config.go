package testsupport

import (
	"path/filepath"
	"testing"

	"strollcast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Cache.Dir = filepath.Join(base, "cache")
	cfg.Synthesis.APIKey = "test"
	cfg.Synthesis.MaxConcurrent = 2
	cfg.Catalog.Path = filepath.Join(base, "catalog.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithVoices overrides the voice identifiers on the test config.
func WithVoices(eric, maya string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Voices.Eric = eric
		cfg.Voices.Maya = maya
	}
}

// WithNormalization toggles loudness normalization on the test config.
func WithNormalization(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Normalization.Enabled = enabled
	}
}
