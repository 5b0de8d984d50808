package testsupport

import (
	"path/filepath"
	"testing"

	"storyvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.CMS.APIToken = "test"
	cfg.Downloads.MinFreeMB = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithBaseURL overrides the remote API base URL on the test config.
func WithBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.CMS.BaseURL = url
	}
}

// WithConcurrency overrides the download concurrency on the test config.
func WithConcurrency(n int) ConfigOption {
	return func(c *config.Config) {
		c.Downloads.Concurrency = n
	}
}

// WithMinFreeMB overrides the free-space floor on the test config.
func WithMinFreeMB(mb int64) ConfigOption {
	return func(c *config.Config) {
		c.Downloads.MinFreeMB = mb
	}
}
