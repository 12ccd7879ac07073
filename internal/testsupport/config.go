package testsupport

import (
	"path/filepath"
	"testing"

	"seoflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Dry-run is enabled so no provider credentials are needed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DryRun = true
	cfg.Site.Niche = "home fitness"
	cfg.Site.SiteURL = "https://example.com"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithLiveProviders disables dry-run and sets placeholder credentials so
// validation paths for live mode can be exercised.
func WithLiveProviders() ConfigOption {
	return func(cfg *config.Config) {
		cfg.DryRun = false
		cfg.OpenAI.APIKey = "test-key"
		cfg.DataForSEO.Login = "test-login"
		cfg.DataForSEO.Password = "test-password"
	}
}

// WithRecordLimit overrides the per-run record limit.
func WithRecordLimit(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.RecordLimit = limit
	}
}
