package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyvault/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Downloads.Concurrency != 4 {
		t.Fatalf("default concurrency = %d", cfg.Downloads.Concurrency)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Paths.CacheDir) {
		t.Fatalf("cache_dir not expanded: %q", cfg.Paths.CacheDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
cache_dir = "` + filepath.Join(dir, "cache") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[cms]
base_url = "https://cms.example.com/api/"
request_timeout = 0

[downloads]
concurrency = -2

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q, exists = %v", resolved, exists)
	}
	if cfg.CMS.BaseURL != "https://cms.example.com/api" {
		t.Fatalf("base_url not trimmed: %q", cfg.CMS.BaseURL)
	}
	if cfg.CMS.RequestTimeout != 30 {
		t.Fatalf("request_timeout not defaulted: %d", cfg.CMS.RequestTimeout)
	}
	if cfg.Downloads.Concurrency != 4 {
		t.Fatalf("concurrency not defaulted: %d", cfg.Downloads.Concurrency)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not normalized: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[cms]
base_url = "ftp://cms.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for ftp base_url")
	}
}

func TestAPITokenEnvFallback(t *testing.T) {
	t.Setenv("STORYVAULT_API_TOKEN", "env-token")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CMS.APIToken != "env-token" {
		t.Fatalf("api token = %q, want env fallback", cfg.CMS.APIToken)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.CacheDir = "/tmp/sv-cache"
	if got := cfg.DatabasePath(); got != "/tmp/sv-cache/storyvault.db" {
		t.Fatalf("DatabasePath = %q", got)
	}
	if got := cfg.ImagesDir(); got != "/tmp/sv-cache/images" {
		t.Fatalf("ImagesDir = %q", got)
	}
	if got := cfg.LockPath(); got != "/tmp/sv-cache/storyvault.lock" {
		t.Fatalf("LockPath = %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[cms]") {
		t.Fatal("sample config missing [cms] section")
	}
}
